package config

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"

	"github.com/hikari-dev/pjsk-card/internal/domain"
)

// Config carries everything the core is parameterized with: validation
// bounds and steps, defaults for a fresh card, persistence knobs, and the
// closed persona catalog.
type Config struct {
	// Text processing options
	AdaptiveTextSizing bool `yaml:"adaptive_text_sizing"`

	// Messaging options
	ShowSuccessMessages bool `yaml:"show_success_messages"`
	MentionUserOnRender bool `yaml:"mention_user_on_render"`

	// Rendering options
	DefaultCurveIntensity float64 `yaml:"default_curve_intensity"`
	EnableTextShadow      bool    `yaml:"enable_text_shadow"`
	DefaultEmojiSet       string  `yaml:"default_emoji_set"`

	// Persistence options
	PersistenceEnabled bool `yaml:"persistence_enabled"`
	StateTTLHours      int  `yaml:"state_ttl_hours"`

	// Validation ranges
	FontSizeMin  int `yaml:"font_size_min"`
	FontSizeMax  int `yaml:"font_size_max"`
	FontSizeStep int `yaml:"font_size_step"`

	LineSpacingMin  float64 `yaml:"line_spacing_min"`
	LineSpacingMax  float64 `yaml:"line_spacing_max"`
	LineSpacingStep float64 `yaml:"line_spacing_step"`

	OffsetMin  int `yaml:"offset_min"`
	OffsetMax  int `yaml:"offset_max"`
	OffsetStep int `yaml:"offset_step"`

	MaxTextLength int `yaml:"max_text_length"`

	// Defaults for a fresh card
	DefaultText        string  `yaml:"default_text"`
	DefaultFontSize    int     `yaml:"default_font_size"`
	DefaultLineSpacing float64 `yaml:"default_line_spacing"`
	DefaultRole        string  `yaml:"default_role"`

	// Closed persona set with alias lists
	Personas []domain.Persona `yaml:"personas"`
}

// Default returns the built-in configuration, matching the shipped persona
// catalog and the documented bound/step constants.
func Default() *Config {
	return &Config{
		AdaptiveTextSizing:  true,
		ShowSuccessMessages: true,
		MentionUserOnRender: false,

		DefaultCurveIntensity: 0.5,
		EnableTextShadow:      true,
		DefaultEmojiSet:       "apple",

		PersistenceEnabled: true,
		StateTTLHours:      24,

		FontSizeMin:  18,
		FontSizeMax:  84,
		FontSizeStep: 4,

		LineSpacingMin:  0.60,
		LineSpacingMax:  3.00,
		LineSpacingStep: 0.10,

		OffsetMin:  -240,
		OffsetMax:  240,
		OffsetStep: 12,

		MaxTextLength: 120,

		DefaultText:        "这是一个新的卡面",
		DefaultFontSize:    42,
		DefaultLineSpacing: 1.20,
		DefaultRole:        "初音未来",

		Personas: DefaultPersonas(),
	}
}

// DefaultPersonas is the shipped character catalog.
func DefaultPersonas() []domain.Persona {
	return []domain.Persona{
		{Name: "初音未来", Group: "MORE MORE JUMP!", Aliases: []string{"初音未来", "初音", "miku", "hatsune", "hatsune miku"}},
		{Name: "星乃一歌", Group: "Leo/need", Aliases: []string{"星乃一歌", "一歌", "ichika"}},
		{Name: "天马咲希", Group: "Leo/need", Aliases: []string{"天马咲希", "咲希", "saki"}},
		{Name: "望月穗波", Group: "Leo/need", Aliases: []string{"望月穗波", "穗波", "honami"}},
		{Name: "日野森志步", Group: "Leo/need", Aliases: []string{"日野森志步", "志步", "shiho"}},
		{Name: "东云彰人", Group: "Vivid BAD SQUAD", Aliases: []string{"东云彰人", "彰人", "akito"}},
		{Name: "青柳冬弥", Group: "Vivid BAD SQUAD", Aliases: []string{"青柳冬弥", "冬弥", "toya"}},
		{Name: "小豆泽心羽", Group: "Nightcord at 25:00", Aliases: []string{"小豆泽心羽", "心羽", "kohane"}},
	}
}

// TTL converts the configured hour count into a duration.
func (c *Config) TTL() time.Duration {
	return time.Duration(c.StateTTLHours) * time.Hour
}

// Load reads the YAML config at url. A missing file is not an error: the
// default config is written there and returned, so a fresh deployment
// bootstraps itself. A file that exists but cannot be parsed is an error.
func Load(ctx context.Context, url string) (*Config, error) {
	fs := afs.New()

	if ok, _ := fs.Exists(ctx, url); ok {
		data, err := fs.DownloadWithURL(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", url, err)
		}
		cfg := Default()
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", url, err)
		}
		return cfg, nil
	}

	cfg := Default()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encoding default config: %w", err)
	}
	if err := fs.Upload(ctx, url, 0644, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("writing default config %s: %w", url, err)
	}
	return cfg, nil
}

// Runtime is the process wiring read from env vars: which session backend
// to use and where the two backing files live.
type Runtime struct {
	ConfigURL      string
	StateURL       string
	SessionBackend string // "memory" or "redis"
	RedisAddr      string
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// LoadRuntime reads all env vars and builds the runtime wiring.
func LoadRuntime() *Runtime {
	return &Runtime{
		ConfigURL:      getEnv("PJSK_CONFIG_PATH", "config/pjsk_config.yaml"),
		StateURL:       getEnv("PJSK_STATE_PATH", "data/pjsk_states.json"),
		SessionBackend: getEnv("PJSK_SESSION_BACKEND", "memory"),
		RedisAddr:      getEnv("PJSK_REDIS_ADDR", "localhost:6379"),
	}
}

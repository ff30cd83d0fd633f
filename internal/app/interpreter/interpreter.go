package interpreter

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/hikari-dev/pjsk-card/internal/domain"
	"github.com/hikari-dev/pjsk-card/internal/observability"
)

// spacingEpsilon guards the "boundary reached" vs "changed" comparison for
// the float-valued line spacing, so rounding noise never reports a change.
const spacingEpsilon = 1e-6

// Rules carries the numeric bounds and steps every mutation is clamped
// against.
type Rules struct {
	FontSizeMin  int
	FontSizeMax  int
	FontSizeStep int

	LineSpacingMin  float64
	LineSpacingMax  float64
	LineSpacingStep float64

	OffsetMin  int
	OffsetMax  int
	OffsetStep int

	MaxTextLength int
}

// Interpreter resolves alias-rich adjustment commands and applies the
// resulting mutation to a RenderConfig. All alias tables are fixed at
// construction time.
type Interpreter struct {
	rules    Rules
	personas *AliasTable
	catalog  *domain.PersonaCatalog
	rng      *rand.Rand
}

// Option tweaks interpreter construction, test hooks mostly.
type Option func(*Interpreter)

// WithRand injects a deterministic random source for the persona
// random-selection flag.
func WithRand(rng *rand.Rand) Option {
	return func(i *Interpreter) { i.rng = rng }
}

// New builds an interpreter over the given rules and persona catalog. It
// fails when the persona alias lists are ambiguous.
func New(rules Rules, catalog *domain.PersonaCatalog, opts ...Option) (*Interpreter, error) {
	groups := make(map[string][]string)
	for _, p := range catalog.Personas() {
		groups[p.Name] = p.Aliases
	}
	personas, err := NewAliasTable(groups)
	if err != nil {
		return nil, fmt.Errorf("building persona alias table: %w", err)
	}

	i := &Interpreter{
		rules:    rules,
		personas: personas,
		catalog:  catalog,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// ResolvePersona maps free text to a canonical persona name.
func (i *Interpreter) ResolvePersona(raw string) (string, bool) {
	return i.personas.Resolve(raw)
}

// Apply interprets one adjustment message ("字号.大", "位置 下 24", ...)
// against cfg and mutates it in place, returning a user-facing confirmation
// headline. On any error cfg is left untouched: every rule reads the current
// value, computes the replacement and assigns exactly once after all
// validation passed.
func (i *Interpreter) Apply(cfg *domain.RenderConfig, message string) (string, error) {
	firstToken, remainder := FirstToken(message)
	commandToken, variants := SplitDotted(firstToken)

	command, ok := commandAliases.Resolve(commandToken)
	if !ok {
		return "", &domain.ValidationError{Message: fmt.Sprintf("未识别的子指令：%s", commandToken)}
	}

	if command == cmdText {
		return i.applyText(cfg, remainder)
	}

	args := SplitArgs(remainder)
	var variant string
	if len(variants) > 0 {
		variant = variants[0]
	}

	switch command {
	case cmdFontSize:
		return i.applyFontSize(cfg, variant, args)
	case cmdLineSpacing:
		return i.applyLineSpacing(cfg, variant, args)
	case cmdCurve:
		return i.applyCurve(cfg, variant, args)
	case cmdPosition:
		return i.applyPosition(cfg, variants, args)
	case cmdRole:
		return i.applyRole(cfg, remainder, args)
	}
	return "", &domain.ValidationError{Message: fmt.Sprintf("未支持的子指令：%s", commandToken)}
}

func (i *Interpreter) applyText(cfg *domain.RenderConfig, remainder string) (string, error) {
	sanitized := whitespaceRun.ReplaceAllString(strings.TrimSpace(remainder), " ")
	if sanitized == "" {
		return "", &domain.ValidationError{Message: "请提供要更新的文本内容。"}
	}
	if len([]rune(sanitized)) > i.rules.MaxTextLength {
		return "", &domain.ValidationError{Message: fmt.Sprintf("文本长度不可超过 %d 个字符。", i.rules.MaxTextLength)}
	}
	cfg.Text = sanitized
	observability.Logger().Debug("card text updated", "text", sanitized)
	return "📝 文本已更新", nil
}

func (i *Interpreter) applyFontSize(cfg *domain.RenderConfig, variant string, args []string) (string, error) {
	if variant != "" {
		action, ok := sizeVariants.Resolve(variant)
		if !ok {
			return "", &domain.ValidationError{Message: "未识别的字号调整方式。"}
		}
		previous := cfg.FontSize
		if action == variantIncrease {
			cfg.FontSize = clampInt(previous+i.rules.FontSizeStep, i.rules.FontSizeMin, i.rules.FontSizeMax)
			if cfg.FontSize == previous {
				return fmt.Sprintf("🔠 字号已达到上限（%dpx）", cfg.FontSize), nil
			}
			return fmt.Sprintf("🔠 字号已增至 %dpx", cfg.FontSize), nil
		}
		cfg.FontSize = clampInt(previous-i.rules.FontSizeStep, i.rules.FontSizeMin, i.rules.FontSizeMax)
		if cfg.FontSize == previous {
			return fmt.Sprintf("🔠 字号已达到下限（%dpx）", cfg.FontSize), nil
		}
		return fmt.Sprintf("🔠 字号已降至 %dpx", cfg.FontSize), nil
	}

	if len(args) == 0 {
		return "", &domain.ValidationError{Message: "请提供字号数值，例如：字号 48。"}
	}
	value, err := ParseInt(args[0])
	if err != nil {
		return "", err
	}
	clamped := clampInt(value, i.rules.FontSizeMin, i.rules.FontSizeMax)
	cfg.FontSize = clamped
	if clamped != value {
		return fmt.Sprintf("🔠 字号已设置为 %dpx（范围 %d-%d）", clamped, i.rules.FontSizeMin, i.rules.FontSizeMax), nil
	}
	return fmt.Sprintf("🔠 字号已设置为 %dpx", clamped), nil
}

func (i *Interpreter) applyLineSpacing(cfg *domain.RenderConfig, variant string, args []string) (string, error) {
	if variant != "" {
		action, ok := sizeVariants.Resolve(variant)
		if !ok {
			return "", &domain.ValidationError{Message: "未识别的行距调整方式。"}
		}
		previous := cfg.LineSpacing
		if action == variantIncrease {
			cfg.LineSpacing = round2(clampFloat(previous+i.rules.LineSpacingStep, i.rules.LineSpacingMin, i.rules.LineSpacingMax))
			if math.Abs(cfg.LineSpacing-previous) < spacingEpsilon {
				return fmt.Sprintf("📏 行距已达到上限（%.2f）", cfg.LineSpacing), nil
			}
			return fmt.Sprintf("📏 行距已增至 %.2f", cfg.LineSpacing), nil
		}
		cfg.LineSpacing = round2(clampFloat(previous-i.rules.LineSpacingStep, i.rules.LineSpacingMin, i.rules.LineSpacingMax))
		if math.Abs(cfg.LineSpacing-previous) < spacingEpsilon {
			return fmt.Sprintf("📏 行距已达到下限（%.2f）", cfg.LineSpacing), nil
		}
		return fmt.Sprintf("📏 行距已降至 %.2f", cfg.LineSpacing), nil
	}

	if len(args) == 0 {
		return "", &domain.ValidationError{Message: "请提供行距数值，例如：行距 1.8。"}
	}
	value, err := ParseFloat(args[0])
	if err != nil {
		return "", err
	}
	clamped := round2(clampFloat(value, i.rules.LineSpacingMin, i.rules.LineSpacingMax))
	cfg.LineSpacing = clamped
	if math.Abs(clamped-value) > spacingEpsilon {
		return fmt.Sprintf("📏 行距已设置为 %.2f（范围 %.2f-%.2f）", clamped, i.rules.LineSpacingMin, i.rules.LineSpacingMax), nil
	}
	return fmt.Sprintf("📏 行距已设置为 %.2f", clamped), nil
}

func (i *Interpreter) applyCurve(cfg *domain.RenderConfig, variant string, args []string) (string, error) {
	action, ok := curveVariants.Resolve(variant)
	if !ok && len(args) > 0 {
		action, ok = curveVariants.Resolve(args[0])
	}
	if !ok {
		action = curveToggle
	}

	switch action {
	case curveOn:
		cfg.CurveEnabled = true
		return "〰️ 曲线已开启", nil
	case curveOff:
		cfg.CurveEnabled = false
		return "〰️ 曲线已关闭", nil
	}
	cfg.CurveEnabled = !cfg.CurveEnabled
	if cfg.CurveEnabled {
		return "〰️ 曲线已开启", nil
	}
	return "〰️ 曲线已关闭", nil
}

func (i *Interpreter) applyPosition(cfg *domain.RenderConfig, variants []string, args []string) (string, error) {
	var direction string
	var ok bool
	remaining := args

	if len(variants) > 0 {
		direction, ok = directionAliases.Resolve(variants[0])
	}
	if !ok && len(remaining) > 0 {
		direction, ok = directionAliases.Resolve(remaining[0])
		if ok {
			remaining = remaining[1:]
		}
	}
	if !ok {
		return "", &domain.ValidationError{Message: "请指定方向，例如：位置.上 或 位置 下。"}
	}

	amount := i.rules.OffsetStep
	if len(remaining) > 0 {
		parsed, err := ParsePositiveInt(remaining[0])
		if err != nil {
			return "", err
		}
		amount = parsed
	}

	switch direction {
	case dirUp:
		previous := cfg.OffsetY
		cfg.OffsetY = clampInt(previous-amount, i.rules.OffsetMin, i.rules.OffsetMax)
		applied := previous - cfg.OffsetY
		if applied == 0 {
			return fmt.Sprintf("📍 已到达上边界（Y=%d）", cfg.OffsetY), nil
		}
		return fmt.Sprintf("📍 向上移动 %d，当前 Y=%d", applied, cfg.OffsetY), nil
	case dirDown:
		previous := cfg.OffsetY
		cfg.OffsetY = clampInt(previous+amount, i.rules.OffsetMin, i.rules.OffsetMax)
		applied := cfg.OffsetY - previous
		if applied == 0 {
			return fmt.Sprintf("📍 已到达下边界（Y=%d）", cfg.OffsetY), nil
		}
		return fmt.Sprintf("📍 向下移动 %d，当前 Y=%d", applied, cfg.OffsetY), nil
	case dirLeft:
		previous := cfg.OffsetX
		cfg.OffsetX = clampInt(previous-amount, i.rules.OffsetMin, i.rules.OffsetMax)
		applied := previous - cfg.OffsetX
		if applied == 0 {
			return fmt.Sprintf("📍 已到达左边界（X=%d）", cfg.OffsetX), nil
		}
		return fmt.Sprintf("📍 向左移动 %d，当前 X=%d", applied, cfg.OffsetX), nil
	}

	previous := cfg.OffsetX
	cfg.OffsetX = clampInt(previous+amount, i.rules.OffsetMin, i.rules.OffsetMax)
	applied := cfg.OffsetX - previous
	if applied == 0 {
		return fmt.Sprintf("📍 已到达右边界（X=%d）", cfg.OffsetX), nil
	}
	return fmt.Sprintf("📍 向右移动 %d，当前 X=%d", applied, cfg.OffsetX), nil
}

// randomFlag requests a random persona instead of a named one.
const randomFlag = "-r"

func (i *Interpreter) applyRole(cfg *domain.RenderConfig, remainder string, args []string) (string, error) {
	if len(args) > 0 && strings.ToLower(args[0]) == randomFlag {
		newRole := i.pickRandomRole(cfg.Role)
		cfg.Role = newRole
		return fmt.Sprintf("🧑‍🎤 角色已随机切换为 %s", newRole), nil
	}

	candidate := strings.TrimSpace(remainder)
	if candidate == "" {
		return "", &domain.ValidationError{Message: "请提供角色名称，或使用 -r 随机切换。"}
	}
	resolved, ok := i.personas.Resolve(candidate)
	if !ok {
		return "", &domain.ValidationError{Message: fmt.Sprintf("未识别的角色：%s", candidate)}
	}
	cfg.Role = resolved
	return fmt.Sprintf("🧑‍🎤 角色已切换为 %s", resolved), nil
}

// pickRandomRole draws uniformly from the catalog excluding the current
// role, falling back to the full set when that would leave nothing.
func (i *Interpreter) pickRandomRole(exclude string) string {
	names := i.catalog.Names()
	candidates := make([]string, 0, len(names))
	for _, name := range names {
		if name != exclude {
			candidates = append(candidates, name)
		}
	}
	if len(candidates) == 0 {
		candidates = names
	}
	return candidates[i.rng.Intn(len(candidates))]
}

func clampInt(value, minimum, maximum int) int {
	if value < minimum {
		return minimum
	}
	if value > maximum {
		return maximum
	}
	return value
}

func clampFloat(value, minimum, maximum float64) float64 {
	return math.Max(minimum, math.Min(maximum, value))
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

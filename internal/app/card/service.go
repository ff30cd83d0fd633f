package card

import (
	"context"
	"strings"

	"github.com/hikari-dev/pjsk-card/internal/adapters/renderer"
	"github.com/hikari-dev/pjsk-card/internal/app/interpreter"
	"github.com/hikari-dev/pjsk-card/internal/config"
	"github.com/hikari-dev/pjsk-card/internal/domain"
	"github.com/hikari-dev/pjsk-card/internal/observability"
)

// adaptiveTargetWidth is the text width the adaptive sizing aims at.
const adaptiveTargetWidth = 400

// RendererSource lends out the ready renderer; renderer.Manager implements
// it.
type RendererSource interface {
	Acquire(ctx context.Context) (domain.Renderer, error)
}

// Service coordinates one command end to end: two-tier state retrieval,
// interpretation, persistence of the mutated configuration, and the render
// request. Mutations are committed to both store tiers before the renderer
// runs, so a render failure never loses state.
type Service struct {
	cfg       *config.Config
	interp    *interpreter.Interpreter
	catalog   *domain.PersonaCatalog
	sessions  domain.SessionStore
	durable   domain.DurableStore
	renderers RendererSource
}

// RulesFromConfig maps the configured bounds and steps onto the
// interpreter's rule set.
func RulesFromConfig(cfg *config.Config) interpreter.Rules {
	return interpreter.Rules{
		FontSizeMin:     cfg.FontSizeMin,
		FontSizeMax:     cfg.FontSizeMax,
		FontSizeStep:    cfg.FontSizeStep,
		LineSpacingMin:  cfg.LineSpacingMin,
		LineSpacingMax:  cfg.LineSpacingMax,
		LineSpacingStep: cfg.LineSpacingStep,
		OffsetMin:       cfg.OffsetMin,
		OffsetMax:       cfg.OffsetMax,
		OffsetStep:      cfg.OffsetStep,
		MaxTextLength:   cfg.MaxTextLength,
	}
}

func NewService(
	cfg *config.Config,
	interp *interpreter.Interpreter,
	catalog *domain.PersonaCatalog,
	sessions domain.SessionStore,
	durable domain.DurableStore,
	renderers RendererSource,
) *Service {
	return &Service{
		cfg:       cfg,
		interp:    interp,
		catalog:   catalog,
		sessions:  sessions,
		durable:   durable,
		renderers: renderers,
	}
}

// defaultConfig builds a fresh RenderConfig from the configured defaults.
func (s *Service) defaultConfig() *domain.RenderConfig {
	return &domain.RenderConfig{
		Text:        s.cfg.DefaultText,
		FontSize:    s.cfg.DefaultFontSize,
		LineSpacing: s.cfg.DefaultLineSpacing,
		Role:        s.cfg.DefaultRole,
	}
}

// lookupState checks the session tier first and falls back to the durable
// tier, promoting a durable hit back into the session store. Store-tier IO
// trouble degrades to a miss; it is never surfaced to the user.
func (s *Service) lookupState(ctx context.Context, key domain.SessionKey) *domain.RenderConfig {
	log := observability.LoggerFromContext(ctx)

	cfg, err := s.sessions.Get(ctx, key)
	if err != nil {
		log.Warn("session store read failed", "key", key.String(), "error", err)
	}
	if cfg != nil {
		return cfg
	}

	if !s.cfg.PersistenceEnabled {
		return nil
	}
	cfg, err = s.durable.Get(ctx, key, s.cfg.TTL())
	if err != nil {
		log.Warn("durable store read failed", "key", key.String(), "error", err)
		return nil
	}
	if cfg == nil {
		return nil
	}
	if err := s.sessions.Set(ctx, key, cfg); err != nil {
		log.Warn("promoting durable state failed", "key", key.String(), "error", err)
	}
	log.Info("session rehydrated from durable store", "key", key.String())
	return cfg
}

// requireState is lookupState for commands that need prior state.
func (s *Service) requireState(ctx context.Context, key domain.SessionKey) (*domain.RenderConfig, error) {
	if cfg := s.lookupState(ctx, key); cfg != nil {
		return cfg, nil
	}
	return nil, &domain.MissingStateError{Message: "未找到历史渲染，请先执行 /pjsk.draw。"}
}

// commit writes the mutated configuration to both store tiers.
func (s *Service) commit(ctx context.Context, key domain.SessionKey, cfg *domain.RenderConfig) {
	log := observability.LoggerFromContext(ctx)

	if err := s.sessions.Set(ctx, key, cfg); err != nil {
		log.Warn("session store write failed", "key", key.String(), "error", err)
	}
	if s.cfg.PersistenceEnabled {
		if err := s.durable.Set(ctx, key, cfg); err != nil {
			log.Warn("durable store write failed", "key", key.String(), "error", err)
		}
	}
}

// Draw creates or refreshes the card for a session. The message is either
// empty (keep/create defaults), plain text (set as card text), or a
// flag-style creation string.
func (s *Service) Draw(ctx context.Context, key domain.SessionKey, message string) (*Reply, error) {
	log := observability.LoggerFromContext(ctx).With("key", key.String())
	message = strings.TrimSpace(message)

	cfg := s.lookupState(ctx, key)
	created := cfg == nil
	if created {
		cfg = s.defaultConfig()
	} else {
		cfg = cfg.Clone()
	}

	if interpreter.IsCreateFlags(message) {
		values := interpreter.ParseCreateFlags(message)
		if err := s.interp.ApplyCreate(cfg, values); err != nil {
			return nil, err
		}
	} else if message != "" {
		cfg.Text = interpreter.SanitizeText(message, s.cfg.MaxTextLength)
	}

	s.commit(ctx, key, cfg)

	headline := "🎨 已重新渲染"
	if created {
		headline = "🎨 已完成初始渲染"
	}
	log.Info("card drawn", "created", created)
	return s.renderReply(ctx, cfg, headline), nil
}

// Adjust applies one adjustment command to the existing card. An empty
// message yields the command guide instead. Interpreter failures propagate
// untouched for the boundary to format.
func (s *Service) Adjust(ctx context.Context, key domain.SessionKey, message string) (*Reply, error) {
	log := observability.LoggerFromContext(ctx).With("key", key.String())

	if strings.TrimSpace(message) == "" {
		return &Reply{Text: guidanceText()}, nil
	}

	current, err := s.requireState(ctx, key)
	if err != nil {
		return nil, err
	}

	next := current.Clone()
	headline, err := s.interp.Apply(next, message)
	if err != nil {
		return nil, err
	}

	s.commit(ctx, key, next)
	log.Info("card adjusted", "headline", headline)
	return s.renderReply(ctx, next, headline), nil
}

// Status reports the current configuration without mutating or rendering.
func (s *Service) Status(ctx context.Context, key domain.SessionKey) (*Reply, error) {
	cfg, err := s.requireState(ctx, key)
	if err != nil {
		return nil, err
	}
	return &Reply{Text: summaryText(cfg, "🎨 当前配置")}, nil
}

// PersonaList lists the selectable personas grouped by unit.
func (s *Service) PersonaList() *Reply {
	return &Reply{Text: personaListText(s.catalog)}
}

// CleanupExpired removes durable entries past the configured TTL, for host
// maintenance tasks.
func (s *Service) CleanupExpired(ctx context.Context) (int, error) {
	if !s.cfg.PersistenceEnabled {
		return 0, nil
	}
	return s.durable.CleanupExpired(ctx, s.cfg.TTL())
}

// States exposes every durable snapshot for diagnostics.
func (s *Service) States(ctx context.Context) (map[string]*domain.RenderConfig, error) {
	return s.durable.All(ctx)
}

// renderReply asks the external renderer for the card image. State is
// already committed at this point: a renderer failure turns into a short
// user-visible notice, never a lost mutation.
func (s *Service) renderReply(ctx context.Context, cfg *domain.RenderConfig, headline string) *Reply {
	if !s.cfg.ShowSuccessMessages {
		headline = ""
	}
	text := summaryText(cfg, headline)

	r, err := s.renderers.Acquire(ctx)
	if err == nil {
		var image []byte
		image, err = r.Render(ctx, s.renderRequest(cfg))
		if err == nil {
			return &Reply{Text: text, Image: image}
		}
	}

	observability.LoggerFromContext(ctx).Error("render failed", "error", err)
	return &Reply{Text: ErrorText("渲染失败，配置已保存，请稍后重试。")}
}

func (s *Service) renderRequest(cfg *domain.RenderConfig) domain.RenderRequest {
	fontSize := cfg.FontSize
	if s.cfg.AdaptiveTextSizing {
		// shrink-to-fit only; the stored font size stays authoritative
		if fitted := renderer.AdaptiveFontSize(cfg.Text, adaptiveTargetWidth, s.cfg.FontSizeMin, fontSize); fitted < fontSize {
			fontSize = fitted
		}
	}

	// The draw position is the centered base for the (possibly shrunk) text
	// block plus the user's stored offsets, which are deltas from center.
	baseX, baseY := renderer.CenteredOffsets(cfg.Text, fontSize, cfg.LineSpacing, s.cfg.OffsetMin, s.cfg.OffsetMax)

	return domain.RenderRequest{
		Text:           cfg.Text,
		Role:           cfg.Role,
		FontSize:       fontSize,
		LineSpacing:    cfg.LineSpacing,
		CurveEnabled:   cfg.CurveEnabled,
		OffsetX:        baseX + cfg.OffsetX,
		OffsetY:        baseY + cfg.OffsetY,
		CurveIntensity: s.cfg.DefaultCurveIntensity,
		ShadowEnabled:  s.cfg.EnableTextShadow,
		EmojiSet:       s.cfg.DefaultEmojiSet,
	}
}

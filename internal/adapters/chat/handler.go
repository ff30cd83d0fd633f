package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/hikari-dev/pjsk-card/internal/app/card"
	"github.com/hikari-dev/pjsk-card/internal/app/interpreter"
	"github.com/hikari-dev/pjsk-card/internal/domain"
	"github.com/hikari-dev/pjsk-card/internal/observability"
)

// Recognized command heads, with bilingual aliases.
var (
	drawCommands   = map[string]bool{"pjsk.draw": true, "pjsk.绘制": true}
	adjustCommands = map[string]bool{"pjsk.调整": true, "pjsk.adjust": true}
	statusCommands = map[string]bool{"pjsk.状态": true, "pjsk.status": true}
	listCommands   = map[string]bool{"pjsk.人物列表": true, "pjsk.list": true}
)

// Handler is the chat boundary: it resolves the session key, routes the
// raw command text into the card service and converts typed adjustment
// errors into formatted replies. Only here does the error taxonomy become
// user-facing text.
type Handler struct {
	svc     *card.Service
	mention bool
}

// Option adjusts handler behavior.
type Option func(*Handler)

// WithMention prefixes successful replies with the sender's display name,
// for platforms where the host wants an explicit ping.
func WithMention(enabled bool) Option {
	return func(h *Handler) { h.mention = enabled }
}

func NewHandler(svc *card.Service, opts ...Option) *Handler {
	h := &Handler{svc: svc}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle processes one inbound event. It returns an error only for
// infrastructure trouble (reply sink failures, unexpected internal errors);
// user-addressable failures are answered on the replier and return nil.
func (h *Handler) Handle(ctx context.Context, ev Event, out Replier) error {
	ctx = observability.WithRequestID(ctx, uuid.NewString())
	log := observability.LoggerFromContext(ctx)

	head, remainder := interpreter.FirstToken(ev.Message())
	command := strings.ToLower(head)

	key := SessionKeyFor(ev)
	log = log.With("command", command, "key", key.String())

	var (
		reply *card.Reply
		err   error
	)
	switch {
	case drawCommands[command]:
		reply, err = h.svc.Draw(ctx, key, remainder)
	case adjustCommands[command]:
		reply, err = h.svc.Adjust(ctx, key, remainder)
	case statusCommands[command]:
		reply, err = h.svc.Status(ctx, key)
	case listCommands[command]:
		reply = h.svc.PersonaList()
	default:
		// Not ours; the host framework routes other commands elsewhere.
		return nil
	}

	if err != nil {
		var validation *domain.ValidationError
		var missing *domain.MissingStateError
		switch {
		case errors.As(err, &validation):
			log.Info("command rejected", "reason", validation.Message)
			return out.Reply(card.ErrorText(validation.Message), nil)
		case errors.As(err, &missing):
			log.Info("command without prior state")
			return out.Reply(card.ErrorText(missing.Message), nil)
		default:
			log.Error("command failed", "error", err)
			return out.Reply(card.ErrorText("处理指令时出现内部错误，请稍后重试。"), nil)
		}
	}

	text := reply.Text
	if h.mention {
		if name, ok := ev.SenderName(); ok && name != "" {
			text = "@" + name + "\n" + text
		}
	}

	log.Info("command handled")
	return out.Reply(text, reply.Image)
}

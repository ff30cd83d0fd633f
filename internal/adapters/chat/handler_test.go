package chat_test

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hikari-dev/pjsk-card/internal/adapters/chat"
	"github.com/hikari-dev/pjsk-card/internal/adapters/renderer"
	filestore "github.com/hikari-dev/pjsk-card/internal/adapters/storage/file"
	memstore "github.com/hikari-dev/pjsk-card/internal/adapters/storage/memory"
	"github.com/hikari-dev/pjsk-card/internal/app/card"
	"github.com/hikari-dev/pjsk-card/internal/app/interpreter"
	"github.com/hikari-dev/pjsk-card/internal/config"
	"github.com/hikari-dev/pjsk-card/internal/domain"
)

type fakeEvent struct {
	channel    string
	sessionID  string
	senderID   string
	senderName string
	message    string
}

func (e fakeEvent) Channel() string { return e.channel }
func (e fakeEvent) SessionID() (string, bool) {
	return e.sessionID, e.sessionID != ""
}
func (e fakeEvent) SenderID() (string, bool) {
	return e.senderID, e.senderID != ""
}
func (e fakeEvent) SenderName() (string, bool) {
	return e.senderName, e.senderName != ""
}
func (e fakeEvent) Message() string { return e.message }

type recordingReplier struct {
	texts  []string
	images [][]byte
}

func (r *recordingReplier) Reply(text string, image []byte) error {
	r.texts = append(r.texts, text)
	r.images = append(r.images, image)
	return nil
}

func (r *recordingReplier) last(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, r.texts)
	return r.texts[len(r.texts)-1]
}

var handlerSeq int

func newTestHandler(t *testing.T, opts ...chat.Option) *chat.Handler {
	t.Helper()
	handlerSeq++

	cfg := config.Default()
	catalog := domain.NewPersonaCatalog(cfg.Personas)
	interp, err := interpreter.New(card.RulesFromConfig(cfg), catalog,
		interpreter.WithRand(rand.New(rand.NewSource(11))))
	require.NoError(t, err)

	url := fmt.Sprintf("mem://localhost/chattest/%s-%d/state.json", t.Name(), handlerSeq)
	svc := card.NewService(cfg, interp, catalog,
		memstore.NewSessionStore(),
		filestore.NewStore(url),
		renderer.NewManager(nil))
	return chat.NewHandler(svc, opts...)
}

func TestSessionKeyFallbackOrder(t *testing.T) {
	key := chat.SessionKeyFor(fakeEvent{channel: "qq", sessionID: "s1", senderID: "u1", senderName: "alice"})
	assert.Equal(t, "qq:s1", key.String())

	key = chat.SessionKeyFor(fakeEvent{channel: "qq", senderID: "u1", senderName: "alice"})
	assert.Equal(t, "qq:u1", key.String())

	key = chat.SessionKeyFor(fakeEvent{channel: "qq", senderName: "alice"})
	assert.Equal(t, "qq:alice", key.String())

	key = chat.SessionKeyFor(fakeEvent{channel: "qq"})
	assert.Equal(t, "qq:unknown", key.String())

	key = chat.SessionKeyFor(fakeEvent{})
	assert.Equal(t, "unknown:unknown", key.String())
}

func TestHandleDraw(t *testing.T) {
	h := newTestHandler(t)
	out := &recordingReplier{}

	err := h.Handle(context.Background(), fakeEvent{channel: "qq", senderID: "u1", message: "pjsk.draw hello"}, out)
	require.NoError(t, err)
	assert.Contains(t, out.last(t), "已完成初始渲染")
	assert.Contains(t, out.last(t), "文本：hello")
	assert.NotEmpty(t, out.images[len(out.images)-1])
}

func TestHandleAdjustFlow(t *testing.T) {
	ctx := context.Background()
	h := newTestHandler(t)
	out := &recordingReplier{}
	ev := func(msg string) fakeEvent {
		return fakeEvent{channel: "qq", senderID: "u1", message: msg}
	}

	require.NoError(t, h.Handle(ctx, ev("pjsk.draw hello"), out))
	require.NoError(t, h.Handle(ctx, ev("pjsk.调整 字号.大"), out))
	assert.Contains(t, out.last(t), "字号已增至 46px")

	require.NoError(t, h.Handle(ctx, ev("pjsk.状态"), out))
	assert.Contains(t, out.last(t), "当前配置")
	assert.Contains(t, out.last(t), "字号：46px")
}

func TestHandleFullWidthSpaceSeparator(t *testing.T) {
	ctx := context.Background()
	h := newTestHandler(t)
	out := &recordingReplier{}
	ev := func(msg string) fakeEvent {
		return fakeEvent{channel: "qq", senderID: "u1", message: msg}
	}

	require.NoError(t, h.Handle(ctx, ev("pjsk.draw hello"), out))
	require.NoError(t, h.Handle(ctx, ev("pjsk.调整　字号.大"), out))
	assert.Contains(t, out.last(t), "字号已增至 46px")
}

func TestHandleAdjustBeforeDraw(t *testing.T) {
	h := newTestHandler(t)
	out := &recordingReplier{}

	err := h.Handle(context.Background(), fakeEvent{channel: "qq", senderID: "u1", message: "pjsk.调整 字号 48"}, out)
	require.NoError(t, err, "user-addressable failures are replies, not errors")
	assert.Contains(t, out.last(t), "⚠️")
	assert.Contains(t, out.last(t), "未找到历史渲染")
	assert.Nil(t, out.images[len(out.images)-1])
}

func TestHandleValidationFailure(t *testing.T) {
	ctx := context.Background()
	h := newTestHandler(t)
	out := &recordingReplier{}
	ev := func(msg string) fakeEvent {
		return fakeEvent{channel: "qq", senderID: "u1", message: msg}
	}

	require.NoError(t, h.Handle(ctx, ev("pjsk.draw hello"), out))
	require.NoError(t, h.Handle(ctx, ev("pjsk.调整 人物 nobody"), out))
	assert.Contains(t, out.last(t), "⚠️")
	assert.Contains(t, out.last(t), "未识别的角色：nobody")
}

func TestHandlePersonaList(t *testing.T) {
	h := newTestHandler(t)
	out := &recordingReplier{}

	require.NoError(t, h.Handle(context.Background(), fakeEvent{channel: "qq", senderID: "u1", message: "pjsk.人物列表"}, out))
	assert.Contains(t, out.last(t), "可用角色")
	assert.Contains(t, out.last(t), "初音未来")
}

func TestHandleIgnoresForeignCommands(t *testing.T) {
	h := newTestHandler(t)
	out := &recordingReplier{}

	require.NoError(t, h.Handle(context.Background(), fakeEvent{channel: "qq", senderID: "u1", message: "weather tomorrow"}, out))
	assert.Empty(t, out.texts)
}

func TestHandleMentionPrefix(t *testing.T) {
	h := newTestHandler(t, chat.WithMention(true))
	out := &recordingReplier{}

	ev := fakeEvent{channel: "qq", senderID: "u1", senderName: "alice", message: "pjsk.draw hello"}
	require.NoError(t, h.Handle(context.Background(), ev, out))
	assert.True(t, len(out.texts) == 1)
	assert.Contains(t, out.texts[0], "@alice\n")
}

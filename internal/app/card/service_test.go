package card_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hikari-dev/pjsk-card/internal/adapters/renderer"
	filestore "github.com/hikari-dev/pjsk-card/internal/adapters/storage/file"
	memstore "github.com/hikari-dev/pjsk-card/internal/adapters/storage/memory"
	"github.com/hikari-dev/pjsk-card/internal/app/card"
	"github.com/hikari-dev/pjsk-card/internal/app/interpreter"
	"github.com/hikari-dev/pjsk-card/internal/config"
	"github.com/hikari-dev/pjsk-card/internal/domain"
)

var storeSeq int

type fixture struct {
	svc      *card.Service
	sessions *memstore.SessionStore
	durable  *filestore.Store
	mock     *renderer.Mock
	manager  *renderer.Manager
	cfg      *config.Config
	url      string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	storeSeq++
	url := fmt.Sprintf("mem://localhost/cardtest/%s-%d/state.json", t.Name(), storeSeq)
	return newFixtureAt(t, url)
}

func newFixtureAt(t *testing.T, url string) *fixture {
	t.Helper()

	cfg := config.Default()
	catalog := domain.NewPersonaCatalog(cfg.Personas)
	interp, err := interpreter.New(card.RulesFromConfig(cfg), catalog,
		interpreter.WithRand(rand.New(rand.NewSource(7))))
	require.NoError(t, err)

	sessions := memstore.NewSessionStore()
	durable := filestore.NewStore(url)
	mock := renderer.NewMock()
	manager := renderer.NewManager(func(ctx context.Context) (domain.Renderer, error) {
		return mock, nil
	})

	return &fixture{
		svc:      card.NewService(cfg, interp, catalog, sessions, durable, manager),
		sessions: sessions,
		durable:  durable,
		mock:     mock,
		manager:  manager,
		cfg:      cfg,
		url:      url,
	}
}

func TestAdjustWithoutPriorStateFails(t *testing.T) {
	f := newFixture(t)
	key := domain.NewSessionKey("qq", "user-1")

	_, err := f.svc.Adjust(context.Background(), key, "字号 48")
	var missing *domain.MissingStateError
	require.True(t, errors.As(err, &missing))
}

func TestAdjustWithEmptyMessageShowsGuidance(t *testing.T) {
	f := newFixture(t)
	key := domain.NewSessionKey("qq", "user-1")

	reply, err := f.svc.Adjust(context.Background(), key, "   ")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "指令指南")
	assert.Nil(t, reply.Image)
}

func TestDrawAdjustScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	key := domain.NewSessionKey("qq", "user-1")

	// fresh session, created with text "hello"
	reply, err := f.svc.Draw(ctx, key, "hello")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "已完成初始渲染")
	assert.Contains(t, reply.Text, "文本：hello")
	assert.NotEmpty(t, reply.Image)

	state, err := f.sessions.Get(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, 42, state.FontSize)
	assert.Equal(t, "初音未来", state.Role)

	// absolute font size beyond the bound clamps and says so
	reply, err = f.svc.Adjust(ctx, key, "字号 999")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "字号已设置为 84px（范围 18-84）")

	state, _ = f.sessions.Get(ctx, key)
	assert.Equal(t, 84, state.FontSize)

	// two default-step moves up
	_, err = f.svc.Adjust(ctx, key, "位置.上")
	require.NoError(t, err)
	_, err = f.svc.Adjust(ctx, key, "位置.上")
	require.NoError(t, err)

	state, _ = f.sessions.Get(ctx, key)
	assert.Equal(t, -2*f.cfg.OffsetStep, state.OffsetY)

	// persona alias resolves to the canonical name
	_, err = f.svc.Adjust(ctx, key, "人物 miku")
	require.NoError(t, err)
	state, _ = f.sessions.Get(ctx, key)
	assert.Equal(t, "初音未来", state.Role)

	// failed persona change leaves the stored persona untouched
	_, err = f.svc.Adjust(ctx, key, "人物 not-a-real-persona")
	var validation *domain.ValidationError
	require.True(t, errors.As(err, &validation))
	assert.Contains(t, validation.Message, "not-a-real-persona")
	state, _ = f.sessions.Get(ctx, key)
	assert.Equal(t, "初音未来", state.Role)
}

func TestDrawRefreshKeepsStateAndReplacesText(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	key := domain.NewSessionKey("qq", "user-1")

	_, err := f.svc.Draw(ctx, key, "first")
	require.NoError(t, err)
	_, err = f.svc.Adjust(ctx, key, "字号 60")
	require.NoError(t, err)

	reply, err := f.svc.Draw(ctx, key, "second")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "已重新渲染")

	state, _ := f.sessions.Get(ctx, key)
	assert.Equal(t, "second", state.Text)
	assert.Equal(t, 60, state.FontSize, "refresh keeps prior adjustments")
}

func TestDrawWithCreateFlags(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	key := domain.NewSessionKey("qq", "user-1")

	_, err := f.svc.Draw(ctx, key, `-n "hello world" -s 48 -c -x 12 -y -6 -r saki -l 1.8`)
	require.NoError(t, err)

	state, _ := f.sessions.Get(ctx, key)
	require.NotNil(t, state)
	assert.Equal(t, "hello world", state.Text)
	assert.Equal(t, 48, state.FontSize)
	assert.InDelta(t, 1.8, state.LineSpacing, 1e-9)
	assert.True(t, state.CurveEnabled)
	assert.Equal(t, 12, state.OffsetX)
	assert.Equal(t, -6, state.OffsetY)
	assert.Equal(t, "天马咲希", state.Role)
}

func TestRenderPositionComposedFromCenteredBase(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	key := domain.NewSessionKey("qq", "user-1")

	// "hello" at font 42 / spacing 1.2 centers at base X=10, Y clamped to
	// the upper offset bound; fresh stored offsets are zero
	reply, err := f.svc.Draw(ctx, key, "hello")
	require.NoError(t, err)
	assert.Contains(t, string(reply.Image), "offset=10,240")

	// stored offsets shift the rendered position from that base
	reply, err = f.svc.Adjust(ctx, key, "位置.上")
	require.NoError(t, err)
	assert.Contains(t, string(reply.Image), "offset=10,228")

	state, _ := f.sessions.Get(ctx, key)
	assert.Equal(t, -f.cfg.OffsetStep, state.OffsetY, "stored offset stays a user delta")
}

func TestDurableRehydration(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	key := domain.NewSessionKey("qq", "user-1")

	_, err := f.svc.Draw(ctx, key, "hello")
	require.NoError(t, err)
	_, err = f.svc.Adjust(ctx, key, "字号 60")
	require.NoError(t, err)

	// a new process: fresh session store, same durable document
	f2 := newFixtureAt(t, f.url)
	reply, err := f2.svc.Adjust(ctx, key, "字号.大")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "字号已增至 64px")

	state, _ := f2.sessions.Get(ctx, key)
	require.NotNil(t, state, "durable hit was promoted into the session store")
	assert.Equal(t, 64, state.FontSize)
}

func TestRenderFailureKeepsCommittedState(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	key := domain.NewSessionKey("qq", "user-1")

	_, err := f.svc.Draw(ctx, key, "hello")
	require.NoError(t, err)

	f.mock.FailWith(errors.New("browser crashed"))
	reply, err := f.svc.Adjust(ctx, key, "字号 60")
	require.NoError(t, err, "render failure is a reply, not an error")
	assert.Contains(t, reply.Text, "渲染失败")
	assert.NotContains(t, reply.Text, "browser crashed", "internal error text stays internal")
	assert.Nil(t, reply.Image)

	state, _ := f.sessions.Get(ctx, key)
	assert.Equal(t, 60, state.FontSize, "mutation committed before the render")

	durable, err := f.durable.All(ctx)
	require.NoError(t, err)
	require.Contains(t, durable, key.String())
	assert.Equal(t, 60, durable[key.String()].FontSize)
}

func TestStatusDoesNotRender(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	key := domain.NewSessionKey("qq", "user-1")

	_, err := f.svc.Draw(ctx, key, "hello")
	require.NoError(t, err)
	before := f.mock.RenderCount()

	reply, err := f.svc.Status(ctx, key)
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "当前配置")
	assert.Contains(t, reply.Text, "文本：hello")
	assert.Equal(t, before, f.mock.RenderCount())
}

func TestPersonaList(t *testing.T) {
	f := newFixture(t)

	reply := f.svc.PersonaList()
	assert.Contains(t, reply.Text, "Leo/need")
	assert.Contains(t, reply.Text, "星乃一歌")
	assert.Contains(t, reply.Text, "初音未来")
}

func TestCleanupExpiredDisabledPersistence(t *testing.T) {
	f := newFixture(t)
	f.cfg.PersistenceEnabled = false

	removed, err := f.svc.CleanupExpired(context.Background())
	require.NoError(t, err)
	assert.Zero(t, removed)
}

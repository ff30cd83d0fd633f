package config_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"

	"github.com/hikari-dev/pjsk-card/internal/config"
)

var seq int

func testURL(t *testing.T) string {
	t.Helper()
	seq++
	return fmt.Sprintf("mem://localhost/cfgtest/%s-%d/config.yaml", t.Name(), seq)
}

func TestDefault(t *testing.T) {
	cfg := config.Default()

	assert.Equal(t, 18, cfg.FontSizeMin)
	assert.Equal(t, 84, cfg.FontSizeMax)
	assert.Equal(t, 4, cfg.FontSizeStep)
	assert.InDelta(t, 0.60, cfg.LineSpacingMin, 1e-9)
	assert.InDelta(t, 3.00, cfg.LineSpacingMax, 1e-9)
	assert.InDelta(t, 0.10, cfg.LineSpacingStep, 1e-9)
	assert.Equal(t, -240, cfg.OffsetMin)
	assert.Equal(t, 240, cfg.OffsetMax)
	assert.Equal(t, 12, cfg.OffsetStep)
	assert.Equal(t, 120, cfg.MaxTextLength)

	assert.Equal(t, 42, cfg.DefaultFontSize)
	assert.InDelta(t, 1.20, cfg.DefaultLineSpacing, 1e-9)
	assert.Equal(t, "初音未来", cfg.DefaultRole)

	assert.True(t, cfg.PersistenceEnabled)
	assert.Equal(t, 24*time.Hour, cfg.TTL())
	assert.NotEmpty(t, cfg.Personas)
}

func TestLoadBootstrapsMissingFile(t *testing.T) {
	ctx := context.Background()
	url := testURL(t)

	cfg, err := config.Load(ctx, url)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	// the default document was written out
	fs := afs.New()
	ok, err := fs.Exists(ctx, url)
	require.NoError(t, err)
	assert.True(t, ok)

	// a second load reads the written file back
	again, err := config.Load(ctx, url)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadAppliesOverrides(t *testing.T) {
	ctx := context.Background()
	url := testURL(t)

	doc := []byte("font_size_max: 64\ndefault_role: 星乃一歌\npersistence_enabled: false\n")
	fs := afs.New()
	require.NoError(t, fs.Upload(ctx, url, 0644, bytes.NewReader(doc)))

	cfg, err := config.Load(ctx, url)
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.FontSizeMax)
	assert.Equal(t, "星乃一歌", cfg.DefaultRole)
	assert.False(t, cfg.PersistenceEnabled)

	// untouched fields keep their defaults
	assert.Equal(t, 18, cfg.FontSizeMin)
	assert.Equal(t, 42, cfg.DefaultFontSize)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	ctx := context.Background()
	url := testURL(t)

	fs := afs.New()
	require.NoError(t, fs.Upload(ctx, url, 0644, bytes.NewReader([]byte("font_size_max: [oops"))))

	_, err := config.Load(ctx, url)
	require.Error(t, err)
}

func TestLoadRuntimeDefaults(t *testing.T) {
	rt := config.LoadRuntime()
	assert.Equal(t, "config/pjsk_config.yaml", rt.ConfigURL)
	assert.Equal(t, "data/pjsk_states.json", rt.StateURL)
	assert.Equal(t, "memory", rt.SessionBackend)
	assert.Equal(t, "localhost:6379", rt.RedisAddr)
}

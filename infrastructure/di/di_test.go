package di

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ideaboard/infrastructure/config"
	"ideaboard/infrastructure/expansion"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func memoryConfig() *config.Config {
	cfg := config.Defaults()
	cfg.StorageBackend = config.BackendMemory
	return cfg
}

func TestInitializeContainer(t *testing.T) {
	ctx := context.Background()

	container, cleanup, err := InitializeContainer(ctx, memoryConfig())
	require.NoError(t, err)
	t.Cleanup(cleanup)

	assert.NotNil(t, container.Metrics)
	assert.IsType(t, &expansion.Client{}, container.Expander)
	assert.Empty(t, container.Controller.Snapshot())

	node, ok := container.Controller.Add(ctx, "Idea A")
	require.True(t, ok)

	raw, err := container.Storage.Get(ctx, container.DomainConfig.StorageKey)
	require.NoError(t, err)
	assert.Contains(t, string(raw), node.ID)
}

func TestInitializeContainer_LoadsSavedWorkspace(t *testing.T) {
	ctx := context.Background()
	cfg := config.Defaults()
	cfg.StorageBackend = config.BackendFile
	cfg.DataDir = t.TempDir()

	first, cleanup, err := InitializeContainer(ctx, cfg)
	require.NoError(t, err)
	_, ok := first.Controller.Add(ctx, "Survives restart")
	require.True(t, ok)
	cleanup()

	second, cleanup, err := InitializeContainer(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(cleanup)

	snapshot := second.Controller.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, "Survives restart", snapshot[0].Content)
	assert.Nil(t, second.Controller.Selected())
}

func TestInitializeContainer_Fallback(t *testing.T) {
	cfg := memoryConfig()
	cfg.ExpansionFallback = true
	cfg.EnableMetrics = false

	container, cleanup, err := InitializeContainer(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(cleanup)

	assert.IsType(t, &expansion.Fallback{}, container.Expander)
	assert.Nil(t, container.Metrics)
}

func TestProvideExpander_FollowsServerAddress(t *testing.T) {
	cfg := memoryConfig()
	cfg.ServerAddress = ":9191"

	expander := ProvideExpander(cfg, ProvideLocalGenerator(), zap.NewNop())

	client, ok := expander.(*expansion.Client)
	require.True(t, ok)
	assert.Equal(t, "http://localhost:9191/api/expand", client.Endpoint())
}

func TestInitializeContainer_BadBackend(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	cfg := memoryConfig()
	cfg.StorageBackend = config.BackendSQLite
	cfg.SQLitePath = filepath.Join(blocker, "board.db")

	_, _, err := InitializeContainer(context.Background(), cfg)

	assert.Error(t, err)
}

func TestProvideLogLevel(t *testing.T) {
	cfg := memoryConfig()

	cfg.LogLevel = "debug"
	assert.Equal(t, zapcore.DebugLevel, ProvideLogLevel(cfg).Level())

	cfg.LogLevel = "loud"
	assert.Equal(t, zapcore.InfoLevel, ProvideLogLevel(cfg).Level())
}

func TestProvideConfigWatcher_AppliesLogLevel(t *testing.T) {
	for _, key := range []string{"LOG_LEVEL", "STORAGE_BACKEND", "EXPANSION_URL"} {
		t.Setenv(key, "")
	}
	path := filepath.Join(t.TempDir(), "ideaboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: info\n"), 0o644))
	t.Setenv(config.ConfigFileEnv, path)

	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	level := ProvideLogLevel(cfg)

	_, stop, err := ProvideConfigWatcher(cfg, level, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(stop)

	require.NoError(t, os.WriteFile(path, []byte("log_level: error\n"), 0o644))

	assert.Eventually(t, func() bool {
		return level.Level() == zapcore.ErrorLevel
	}, 5*time.Second, 20*time.Millisecond)
}

package persistence

import (
	"context"
	"path/filepath"
	"testing"

	"ideaboard/infrastructure/config"
	"ideaboard/infrastructure/persistence/kv/file"
	"ideaboard/infrastructure/persistence/kv/memory"
	"ideaboard/infrastructure/persistence/kv/redis"
	"ideaboard/infrastructure/persistence/kv/sqlite"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewKeyValueStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	tests := []struct {
		name     string
		mutate   func(*config.Config)
		wantType interface{}
	}{
		{"memory", func(c *config.Config) { c.StorageBackend = config.BackendMemory }, &memory.Store{}},
		{"file", func(c *config.Config) {
			c.StorageBackend = config.BackendFile
			c.DataDir = t.TempDir()
		}, &file.Store{}},
		{"redis", func(c *config.Config) {
			c.StorageBackend = config.BackendRedis
			c.RedisAddr = mr.Addr()
		}, &redis.Store{}},
		{"sqlite", func(c *config.Config) {
			c.StorageBackend = config.BackendSQLite
			c.SQLitePath = filepath.Join(t.TempDir(), "board.db")
		}, &sqlite.Store{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Defaults()
			tt.mutate(cfg)

			store, err := NewKeyValueStore(ctx, cfg, zap.NewNop())

			require.NoError(t, err)
			assert.IsType(t, tt.wantType, store)
			require.NoError(t, store.Set(ctx, "k", []byte("v")))
			got, err := store.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, []byte("v"), got)
			assert.NoError(t, store.Close())
		})
	}
}

func TestNewKeyValueStore_Unknown(t *testing.T) {
	cfg := config.Defaults()
	cfg.StorageBackend = "postgres"

	_, err := NewKeyValueStore(context.Background(), cfg, zap.NewNop())

	assert.Error(t, err)
}

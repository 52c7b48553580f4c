package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		ConfigFileEnv, "SERVER_ADDRESS", "ENVIRONMENT", "STORAGE_BACKEND", "DATA_DIR",
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "REDIS_PREFIX", "SQLITE_PATH",
		"AWS_REGION", "TABLE_NAME", "DYNAMODB_TABLE", "EXPANSION_URL", "EXPANSION_TIMEOUT",
		"EXPANSION_FALLBACK", "IS_LAMBDA", "AWS_LAMBDA_FUNCTION_NAME", "LOG_LEVEL",
		"ENABLE_METRICS", "ENABLE_CORS",
	} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfig_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_BACKEND", "Redis")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("EXPANSION_URL", "https://assist.example.com")
	t.Setenv("EXPANSION_TIMEOUT", "750ms")
	t.Setenv("EXPANSION_FALLBACK", "true")
	t.Setenv("ENABLE_CORS", "no")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, BackendRedis, cfg.StorageBackend)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, "https://assist.example.com", cfg.ExpansionURL)
	assert.Equal(t, 750*time.Millisecond, cfg.ExpansionTimeout)
	assert.True(t, cfg.ExpansionFallback)
	assert.False(t, cfg.EnableCORS)
}

func TestLoadConfig_InvalidNumbersKeepDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("REDIS_DB", "abc")
	t.Setenv("EXPANSION_TIMEOUT", "soon")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, 10*time.Second, cfg.ExpansionTimeout)
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "ideaboard.yaml")
	writeFile(t, path, `
storage_backend: sqlite
sqlite_path: /tmp/board.db
log_level: debug
expansion_timeout: 3s
`)
	t.Setenv(ConfigFileEnv, path)
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, cfg.StorageBackend)
	assert.Equal(t, "/tmp/board.db", cfg.SQLitePath)
	assert.Equal(t, 3*time.Second, cfg.ExpansionTimeout)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, path, cfg.ConfigFile)
}

func TestLoadConfig_FileErrors(t *testing.T) {
	clearEnv(t)

	t.Run("missing file", func(t *testing.T) {
		t.Setenv(ConfigFileEnv, filepath.Join(t.TempDir(), "absent.yaml"))
		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("bad yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		writeFile(t, path, "storage_backend: [unclosed")
		t.Setenv(ConfigFileEnv, path)
		_, err := LoadConfig()
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"unknown backend", func(c *Config) { c.StorageBackend = "postgres" }, true},
		{"relative url", func(c *Config) { c.ExpansionURL = "/api" }, true},
		{"non http url", func(c *Config) { c.ExpansionURL = "ftp://host" }, true},
		{"zero timeout", func(c *Config) { c.ExpansionTimeout = 0 }, true},
		{"dynamodb without table", func(c *Config) {
			c.StorageBackend = BackendDynamoDB
			c.DynamoDBTable = ""
		}, true},
		{"memory", func(c *Config) { c.StorageBackend = BackendMemory }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)

			err := cfg.Validate()

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEffectiveExpansionURL(t *testing.T) {
	tests := []struct {
		name    string
		address string
		url     string
		want    string
	}{
		{"default address", ":8080", "", "http://localhost:8080"},
		{"other port", ":9090", "", "http://localhost:9090"},
		{"all interfaces", "0.0.0.0:7000", "", "http://localhost:7000"},
		{"explicit host", "127.0.0.1:7000", "", "http://127.0.0.1:7000"},
		{"explicit url wins", ":9090", "https://assist.example.com", "https://assist.example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			cfg.ServerAddress = tt.address
			cfg.ExpansionURL = tt.url

			assert.Equal(t, tt.want, cfg.EffectiveExpansionURL())
			assert.NoError(t, cfg.Validate())
		})
	}
}

func TestOverride_AppliesImmediately(t *testing.T) {
	cfg := Defaults()

	cfg.Override(func(c *Config) { c.ServerAddress = ":9191" })

	assert.Equal(t, ":9191", cfg.ServerAddress)
	assert.Equal(t, "http://localhost:9191", cfg.EffectiveExpansionURL())
}

func TestWatcher_ReloadKeepsOverrides(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "ideaboard.yaml")
	writeFile(t, path, "log_level: info\n")
	t.Setenv(ConfigFileEnv, path)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	cfg.Override(func(c *Config) { c.LogLevel = "error" })

	w, err := NewWatcher(cfg, 20*time.Millisecond, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(w.Stop)

	changed := make(chan *Config, 4)
	w.OnChange(func(c *Config) { changed <- c })

	writeFile(t, path, "log_level: debug\nstorage_backend: memory\n")

	select {
	case c := <-changed:
		assert.Equal(t, BackendMemory, c.StorageBackend)
		assert.Equal(t, "error", c.LogLevel)
	case <-time.After(5 * time.Second):
		t.Fatal("config change not observed")
	}
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "ideaboard.yaml")
	writeFile(t, path, "log_level: info\n")
	t.Setenv(ConfigFileEnv, path)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	w, err := NewWatcher(cfg, 20*time.Millisecond, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(w.Stop)

	changed := make(chan *Config, 4)
	w.OnChange(func(c *Config) { changed <- c })

	writeFile(t, path, "log_level: debug\n")

	select {
	case c := <-changed:
		assert.Equal(t, "debug", c.LogLevel)
		assert.Equal(t, "debug", w.Config().LogLevel)
	case <-time.After(5 * time.Second):
		t.Fatal("config change not observed")
	}
}

func TestWatcher_InvalidReloadKeepsPrevious(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "ideaboard.yaml")
	writeFile(t, path, "log_level: info\n")
	t.Setenv(ConfigFileEnv, path)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	w, err := NewWatcher(cfg, 10*time.Millisecond, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(w.Stop)

	called := make(chan struct{}, 1)
	w.OnChange(func(*Config) { called <- struct{}{} })

	writeFile(t, path, "storage_backend: postgres\n")

	select {
	case <-called:
		t.Fatal("callback ran for an invalid config")
	case <-time.After(300 * time.Millisecond):
	}
	assert.Same(t, cfg, w.Config())
}

func TestWatcher_NoFile(t *testing.T) {
	w, err := NewWatcher(Defaults(), 0, zap.NewNop())

	require.NoError(t, err)
	w.Stop()
	w.Stop()
}

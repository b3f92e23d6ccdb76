package confloader

import (
	"os"
	"path/filepath"
	"testing"
)

type testConfig struct {
	Row struct {
		Engine string `koanf:"engine"`
	} `koanf:"row"`
	Cache struct {
		Capacity int  `koanf:"capacity"`
		Enabled  bool `koanf:"enabled"`
	} `koanf:"cache"`
}

func TestNewLoader(t *testing.T) {
	l := NewLoader()
	if l == nil {
		t.Fatal("NewLoader() returned nil")
	}
	if l.envPrefix != DefaultEnvPrefix {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, DefaultEnvPrefix)
	}
}

func TestNewLoader_WithOptions(t *testing.T) {
	l := NewLoader(
		WithEnvPrefix("TEST_"),
		WithConfigFile("/path/to/config.yaml"),
	)

	if l.envPrefix != "TEST_" {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, "TEST_")
	}
	if l.filePath != "/path/to/config.yaml" {
		t.Errorf("filePath = %q, want %q", l.filePath, "/path/to/config.yaml")
	}
}

func TestLoader_LoadFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
row:
  engine: "lsm"
cache:
  capacity: 1024
  enabled: true
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	l := NewLoader()
	if err := l.LoadFile(configPath); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if engine := l.GetString("row.engine"); engine != "lsm" {
		t.Errorf("row.engine = %q, want %q", engine, "lsm")
	}

	if !l.GetBool("cache.enabled") {
		t.Error("cache.enabled should be true")
	}
}

func TestLoader_LoadFile_NotFound(t *testing.T) {
	l := NewLoader()
	err := l.LoadFile("/nonexistent/config.yaml")
	if err == nil {
		t.Error("LoadFile() should return error for nonexistent file")
	}
}

func TestLoader_LoadFile_Empty(t *testing.T) {
	l := NewLoader()
	// Empty path should not error
	if err := l.LoadFile(""); err != nil {
		t.Errorf("LoadFile(\"\") should not error, got: %v", err)
	}
}

func TestLoader_LoadEnv(t *testing.T) {
	t.Setenv("HYBRIDDB_ROW_ENGINE", "append")
	t.Setenv("HYBRIDDB_CACHE_ENABLED", "true")

	l := NewLoader()
	if err := l.LoadEnv(); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}

	if engine := l.GetString("row.engine"); engine != "append" {
		t.Errorf("row.engine = %q, want %q", engine, "append")
	}
	if !l.GetBool("cache.enabled") {
		t.Error("cache.enabled should be true")
	}
}

func TestLoader_LoadEnv_CustomPrefix(t *testing.T) {
	t.Setenv("MYAPP_ROW_ENGINE", "lsm")

	l := NewLoader(WithEnvPrefix("MYAPP_"))
	if err := l.LoadEnv(); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}

	if engine := l.GetString("row.engine"); engine != "lsm" {
		t.Errorf("row.engine = %q, want %q", engine, "lsm")
	}
}

func TestLoader_LoadMap(t *testing.T) {
	l := NewLoader()

	data := map[string]any{
		"row.engine": "append",
		"debug":      true,
	}

	if err := l.LoadMap(data); err != nil {
		t.Fatalf("LoadMap() error = %v", err)
	}

	if engine := l.GetString("row.engine"); engine != "append" {
		t.Errorf("row.engine = %q, want %q", engine, "append")
	}

	if !l.GetBool("debug") {
		t.Error("debug should be true")
	}
}

func TestLoader_Load_Priority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
row:
  engine: "append"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	// Environment should override the file.
	t.Setenv("HYBRIDDB_ROW_ENGINE", "lsm")

	l := NewLoader(WithConfigFile(configPath))

	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Row.Engine != "lsm" {
		t.Errorf("Engine = %q, want %q (env should override file)", cfg.Row.Engine, "lsm")
	}
}

func TestLoader_Unmarshal(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
row:
  engine: "lsm"
cache:
  capacity: 2048
  enabled: true
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	l := NewLoader(WithConfigFile(configPath))

	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Row.Engine != "lsm" {
		t.Errorf("Engine = %q, want %q", cfg.Row.Engine, "lsm")
	}
	if !cfg.Cache.Enabled {
		t.Error("Enabled should be true")
	}
	if cfg.Cache.Capacity != 2048 {
		t.Errorf("Capacity = %d, want %d", cfg.Cache.Capacity, 2048)
	}
}

func TestLoader_IsLoaded(t *testing.T) {
	l := NewLoader()

	if l.IsLoaded() {
		t.Error("IsLoaded() should be false before Load()")
	}

	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !l.IsLoaded() {
		t.Error("IsLoaded() should be true after Load()")
	}
}

func TestLoader_All(t *testing.T) {
	l := NewLoader()
	l.LoadMap(map[string]any{
		"key1": "value1",
		"key2": "value2",
	})

	all := l.All()
	if len(all) < 2 {
		t.Errorf("All() returned %d keys, want at least 2", len(all))
	}
}

func TestLoader_Keys(t *testing.T) {
	l := NewLoader()
	l.LoadMap(map[string]any{
		"key1": "value1",
		"key2": "value2",
	})

	keys := l.Keys()
	if len(keys) < 2 {
		t.Errorf("Keys() returned %d keys, want at least 2", len(keys))
	}
}

func TestLoader_GetInt(t *testing.T) {
	l := NewLoader()
	l.LoadMap(map[string]any{
		"port": 8080,
	})

	if port := l.GetInt("port"); port != 8080 {
		t.Errorf("GetInt(port) = %d, want %d", port, 8080)
	}
}

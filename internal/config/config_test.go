package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if cfg.MaxFiles != DefaultMaxFiles {
		t.Errorf("max files = %d", cfg.MaxFiles)
	}
	if cfg.Output != DefaultOutput {
		t.Errorf("output = %q", cfg.Output)
	}
	if cfg.EngineTimeout() != 10*time.Second {
		t.Errorf("engine timeout = %v", cfg.EngineTimeout())
	}
	if cfg.WatchDebounce() != 500*time.Millisecond {
		t.Errorf("watch debounce = %v", cfg.WatchDebounce())
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	content := `max_files = 500
output = "index.dsl"
languages = ["python", "shell"]
ignore = ["vendor/**"]
engine_timeout_ms = 3000
`
	if err := os.WriteFile(filepath.Join(root, FileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(root)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.MaxFiles != 500 {
		t.Errorf("max files = %d", cfg.MaxFiles)
	}
	if cfg.Output != "index.dsl" {
		t.Errorf("output = %q", cfg.Output)
	}
	if !reflect.DeepEqual(cfg.Languages, []string{"python", "shell"}) {
		t.Errorf("languages = %v", cfg.Languages)
	}
	if !reflect.DeepEqual(cfg.Ignore, []string{"vendor/**"}) {
		t.Errorf("ignore = %v", cfg.Ignore)
	}
	if cfg.EngineTimeout() != 3*time.Second {
		t.Errorf("engine timeout = %v", cfg.EngineTimeout())
	}
	// Unset keys keep their defaults.
	if cfg.MaxFileSize != DefaultMaxFileSize {
		t.Errorf("max file size = %d", cfg.MaxFileSize)
	}
}

func TestLoadMalformed(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, FileName), []byte("max_files = [not toml"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(root); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadClampsNonPositive(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	content := "max_files = -1\nmax_file_size = 0\nengine_timeout_ms = -5\n"
	if err := os.WriteFile(filepath.Join(root, FileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(root)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.MaxFiles != DefaultMaxFiles || cfg.MaxFileSize != DefaultMaxFileSize || cfg.EngineTimeoutMs != DefaultEngineTimeout {
		t.Errorf("clamping failed: %+v", cfg)
	}
}

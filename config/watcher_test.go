package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewConfigWatcher_MissingFile(t *testing.T) {
	_, err := NewConfigWatcher(filepath.Join(t.TempDir(), "absent.toml"))
	if err == nil {
		t.Fatal("expected error watching a missing file")
	}
}

func TestConfigWatcher_OwnWriteConsumedOnce(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "gwa.toml")
	if err := os.WriteFile(configPath, []byte(""), DefaultFilePermissions); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cw, err := NewConfigWatcher(configPath)
	if err != nil {
		t.Fatalf("NewConfigWatcher: %v", err)
	}
	defer cw.Stop()

	if cw.checkOwnWrite() {
		t.Error("own-write flag should start clear")
	}
	cw.MarkOwnWrite()
	if !cw.checkOwnWrite() {
		t.Error("own-write flag should be set after MarkOwnWrite")
	}
	if cw.checkOwnWrite() {
		t.Error("own-write flag should clear after one check")
	}
}

func TestConfigWatcher_ReloadOnWrite(t *testing.T) {
	// Reload goes through the full cascade; point HOME at a scratch dir so
	// the test never reads or creates files under the real user config.
	t.Setenv("HOME", t.TempDir())
	Reset()
	defer Reset()

	configPath := filepath.Join(t.TempDir(), "gwa.toml")
	if err := os.WriteFile(configPath, []byte("[sampler]\niterations = 1000\n"), DefaultFilePermissions); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cw, err := NewConfigWatcher(configPath)
	if err != nil {
		t.Fatalf("NewConfigWatcher: %v", err)
	}
	defer cw.Stop()
	cw.debouncePeriod = 50 * time.Millisecond

	reloaded := make(chan *Config, 1)
	cw.OnReload(func(cfg *Config) error {
		select {
		case reloaded <- cfg:
		default:
		}
		return nil
	})
	cw.Start()

	if err := os.WriteFile(configPath, []byte("[sampler]\niterations = 2000\n"), DefaultFilePermissions); err != nil {
		t.Fatalf("rewriting config: %v", err)
	}

	select {
	case cfg := <-reloaded:
		if cfg == nil {
			t.Error("reload callback received nil config")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("reload callback never fired after config write")
	}
}

func TestGlobalWatcher(t *testing.T) {
	defer SetGlobalWatcher(nil)

	if GetGlobalWatcher() != nil {
		t.Error("global watcher should start nil")
	}

	configPath := filepath.Join(t.TempDir(), "gwa.toml")
	if err := os.WriteFile(configPath, []byte(""), DefaultFilePermissions); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	cw, err := NewConfigWatcher(configPath)
	if err != nil {
		t.Fatalf("NewConfigWatcher: %v", err)
	}
	defer cw.Stop()

	SetGlobalWatcher(cw)
	if GetGlobalWatcher() != cw {
		t.Error("global watcher should round-trip")
	}
}

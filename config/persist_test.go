package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCreateBackup_Rotation(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "gwa.toml")

	write := func(content string) {
		if err := os.WriteFile(configPath, []byte(content), DefaultFilePermissions); err != nil {
			t.Fatalf("writing config: %v", err)
		}
	}
	read := func(path string) string {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("reading %s: %v", path, err)
		}
		return string(data)
	}

	// No file yet: backup is a no-op
	if err := createBackup(configPath); err != nil {
		t.Fatalf("backup of missing file should succeed: %v", err)
	}

	// One backup
	write("v1")
	if err := createBackup(configPath); err != nil {
		t.Fatalf("createBackup: %v", err)
	}
	if got := read(configPath + ".back1"); got != "v1" {
		t.Errorf("back1 = %q, want v1", got)
	}

	// Second backup rotates
	write("v2")
	if err := createBackup(configPath); err != nil {
		t.Fatalf("createBackup: %v", err)
	}
	if got := read(configPath + ".back1"); got != "v2" {
		t.Errorf("back1 = %q, want v2", got)
	}
	if got := read(configPath + ".back2"); got != "v1" {
		t.Errorf("back2 = %q, want v1", got)
	}

	// Third and fourth: oldest falls off the end
	write("v3")
	if err := createBackup(configPath); err != nil {
		t.Fatalf("createBackup: %v", err)
	}
	write("v4")
	if err := createBackup(configPath); err != nil {
		t.Fatalf("createBackup: %v", err)
	}

	if got := read(configPath + ".back1"); got != "v4" {
		t.Errorf("back1 = %q, want v4", got)
	}
	if got := read(configPath + ".back2"); got != "v3" {
		t.Errorf("back2 = %q, want v3", got)
	}
	if got := read(configPath + ".back3"); got != "v2" {
		t.Errorf("back3 = %q, want v2", got)
	}
	if _, err := os.Stat(configPath + ".back4"); !os.IsNotExist(err) {
		t.Error("back4 should never exist")
	}
}

func TestIsBackupFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/home/u/.gwa/gwa.toml.back1", true},
		{"/home/u/.gwa/gwa.toml.back3", true},
		{"/home/u/.gwa/config.toml.back2", true},
		{"/home/u/.gwa/gwa.toml", false},
		{"/etc/gwa/config.toml", false},
	}
	for _, tt := range tests {
		if got := isBackupFile(tt.path); got != tt.want {
			t.Errorf("isBackupFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

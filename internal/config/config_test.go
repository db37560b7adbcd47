package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want 8080", cfg.ServerPort)
	}
	if cfg.FeedURL != "ws://localhost:4000/socket" {
		t.Errorf("FeedURL = %q", cfg.FeedURL)
	}
	if cfg.ItemsPerPage != 5 {
		t.Errorf("ItemsPerPage = %d, want 5", cfg.ItemsPerPage)
	}
	if cfg.RefreshInterval() != time.Second {
		t.Errorf("RefreshInterval = %v, want 1s", cfg.RefreshInterval())
	}
	if cfg.NoticeDismiss() != 2*time.Second {
		t.Errorf("NoticeDismiss = %v, want 2s", cfg.NoticeDismiss())
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	viper.Reset()
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("ITEMS_PER_PAGE", "10")
	t.Setenv("NOTICE_DISMISS_MS", "500")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerPort != 9090 {
		t.Errorf("ServerPort = %d, want 9090", cfg.ServerPort)
	}
	if cfg.ItemsPerPage != 10 {
		t.Errorf("ItemsPerPage = %d, want 10", cfg.ItemsPerPage)
	}
	if cfg.NoticeDismiss() != 500*time.Millisecond {
		t.Errorf("NoticeDismiss = %v, want 500ms", cfg.NoticeDismiss())
	}
}

func TestLoadFileThenEnvPrecedence(t *testing.T) {
	viper.Reset()
	dir := t.TempDir()
	contents := "SERVER_PORT=7070\nFEED_URL=ws://feed.example:4000/socket\n"
	if err := os.WriteFile(filepath.Join(dir, "app.env"), []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SERVER_PORT", "7171")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerPort != 7171 {
		t.Errorf("env should win over file: ServerPort = %d, want 7171", cfg.ServerPort)
	}
	if cfg.FeedURL != "ws://feed.example:4000/socket" {
		t.Errorf("FeedURL = %q", cfg.FeedURL)
	}
}

func TestLoadRejectsNonPositivePageSize(t *testing.T) {
	viper.Reset()
	t.Setenv("ITEMS_PER_PAGE", "0")
	if _, err := Load(t.TempDir()); err == nil {
		t.Fatal("expected error for ITEMS_PER_PAGE=0")
	}
}

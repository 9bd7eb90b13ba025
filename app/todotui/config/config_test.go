package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jrazmi/todolist/app/todotui/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ServerURL != config.DefaultServerURL || cfg.PageSize != config.DefaultPageSize {
		t.Errorf("config = %+v", cfg)
	}
	if cfg.Keyring.Account != "default" || cfg.Keyring.Disabled {
		t.Errorf("keyring = %+v", cfg.Keyring)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "server_url: https://todo.example.com/api/v1\npage_size: 5\nkeyring:\n  disabled: true\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ServerURL != "https://todo.example.com/api/v1" || cfg.PageSize != 5 || !cfg.Keyring.Disabled {
		t.Errorf("config = %+v", cfg)
	}
}

func TestLoadRejectsBadPageSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("page_size: 500\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := config.Load(path); err == nil {
		t.Error("expected error for page_size 500")
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server_url: [unclosed\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := config.Load(path); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

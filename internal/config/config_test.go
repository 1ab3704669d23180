package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "empty config",
			cfg:     Config{},
			wantErr: true,
		},
		{
			name: "valid config",
			cfg: Config{
				ProviderURL: "https://awqat.example.com",
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Defaults(t *testing.T) {
	cfg := Config{}
	if got := cfg.Listen(); got != DefaultListenAddr {
		t.Errorf("Listen() = %q, want %q", got, DefaultListenAddr)
	}
	if got := cfg.PollInterval(); got != DefaultLocationPollInterval {
		t.Errorf("PollInterval() = %s, want %s", got, DefaultLocationPollInterval)
	}

	cfg.ListenAddr = "0.0.0.0:9000"
	cfg.LocationPollInterval = 5 * time.Minute
	if got := cfg.Listen(); got != "0.0.0.0:9000" {
		t.Errorf("Listen() = %q, want configured address", got)
	}
	if got := cfg.PollInterval(); got != 5*time.Minute {
		t.Errorf("PollInterval() = %s, want 5m", got)
	}
}

func TestLoadSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")

	// Missing file yields an empty config, not an error.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() on missing file: %v", err)
	}
	if cfg.IsConfigured() {
		t.Error("empty config should not be configured")
	}

	cfg.ProviderURL = "https://awqat.example.com"
	cfg.ProviderEmail = "user@example.com"
	cfg.NotifyWebhookURL = "https://hooks.example.com/prayer"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save(): %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat config: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("config file mode = %v, want 0600", info.Mode().Perm())
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load(): %v", err)
	}
	if loaded.ProviderURL != cfg.ProviderURL || loaded.ProviderEmail != cfg.ProviderEmail {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
	if !loaded.IsConfigured() {
		t.Error("loaded config should be configured")
	}
}

func TestConfig_ResolveDataDir(t *testing.T) {
	cfg := Config{DataDir: "/var/lib/awqat"}
	dir, err := cfg.ResolveDataDir()
	if err != nil {
		t.Fatalf("ResolveDataDir(): %v", err)
	}
	if dir != "/var/lib/awqat" {
		t.Errorf("ResolveDataDir() = %q", dir)
	}
}

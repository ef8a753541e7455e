package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if len(cfg.Pools) == 0 {
		t.Fatal("default config has no pools")
	}
}

func TestValidateAppliesDefaults(t *testing.T) {
	cfg := Config{Pools: []Pool{{Name: "Local", Host: "127.0.0.1", Port: 3333}}}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.Worker == "" || cfg.Password == "" || cfg.ClientName == "" {
		t.Fatal("credentials not defaulted")
	}
	if cfg.ConnectTimeoutSecs == 0 || cfg.RecvTimeoutSecs == 0 || cfg.PollAttempts == 0 || cfg.Concurrency == 0 {
		t.Fatal("timeouts not defaulted")
	}
	if cfg.Pools[0].Name != "local" {
		t.Fatalf("pool name not normalized: %q", cfg.Pools[0].Name)
	}
}

func TestValidateRejectsBadPools(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"missing host", Config{Pools: []Pool{{Name: "a", Port: 1}}}},
		{"missing port", Config{Pools: []Pool{{Name: "a", Host: "h"}}}},
		{"duplicate", Config{Pools: []Pool{{Name: "a", Host: "h", Port: 1}, {Name: "A", Host: "h2", Port: 2}}}},
		{"watch without metrics", Config{Pools: []Pool{{Name: "a", Host: "h", Port: 1}}, WatchCron: "@hourly"}},
	}
	for _, tc := range cases {
		if err := tc.cfg.Validate(); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
pools:
  - name: local
    host: 127.0.0.1
    port: 3333
worker: bitcoincash:qtestworker
debug: true
poll_attempts: 3
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.Worker != "bitcoincash:qtestworker" {
		t.Fatalf("worker = %q", cfg.Worker)
	}
	if !cfg.Debug || cfg.PollAttempts != 3 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if _, ok := cfg.FindPool("LOCAL"); !ok {
		t.Fatal("FindPool should be case-insensitive")
	}
}

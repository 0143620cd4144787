package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleYAML = `
logging:
  level: debug
  console: true
clients:
  - kind: discord
    alias: ops-discord
    webhook_url: https://discord.com/api/webhooks/1/abc
    rate_per_sec: 5
  - kind: slack
    alias: ops-slack
    webhook_url: https://hooks.slack.com/services/T1/B1/x
    timeout: 5s
  - kind: telegram
    alias: oncall
    token: "123:abc"
    chat_id: -100200300
groups:
  alerts: [ops-discord, ops-slack, oncall]
  deploys: [ops-discord]
probe:
  enabled: true
  schedule: "@every 90s"
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestParseYAML(t *testing.T) {
	m := NewManager(writeFile(t, "config.yaml", sampleYAML))
	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Logging.Level != "debug" || !cfg.Logging.Console {
		t.Fatalf("logging = %+v", cfg.Logging)
	}
	if len(cfg.Clients) != 3 {
		t.Fatalf("clients = %d, want 3", len(cfg.Clients))
	}
	if cfg.Clients[2].Kind != "telegram" || cfg.Clients[2].ChatID != -100200300 {
		t.Fatalf("telegram client = %+v", cfg.Clients[2])
	}
	if got := cfg.Groups["alerts"]; len(got) != 3 {
		t.Fatalf("alerts members = %v", got)
	}
	if cfg.Probe == nil || !cfg.Probe.Enabled || cfg.Probe.Schedule != "@every 90s" {
		t.Fatalf("probe = %+v", cfg.Probe)
	}
	if m.Get() != cfg {
		t.Fatalf("Get() did not return committed config")
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	m := NewManager(writeFile(t, "config.yaml", sampleYAML+"\nbogus: 1\n"))
	if _, err := m.Load(); err == nil {
		t.Fatalf("Load accepted unknown top-level field")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		mut  func(c *Config)
		want string
	}{
		{"empty alias", func(c *Config) { c.Clients[0].Alias = "" }, "alias is required"},
		{"dup alias", func(c *Config) { c.Clients[1].Alias = c.Clients[0].Alias }, "duplicate alias"},
		{"unknown kind", func(c *Config) { c.Clients[0].Kind = "pager" }, "unknown kind"},
		{"discord url missing", func(c *Config) { c.Clients[0].WebhookURL = "" }, "webhook_url is required"},
		{"telegram chat missing", func(c *Config) { c.Clients[2].ChatID = 0 }, "token and chat_id"},
		{"bad timeout", func(c *Config) { c.Clients[0].Timeout = "soon" }, "invalid duration"},
		{"unknown member", func(c *Config) { c.Groups["alerts"] = []string{"nobody"} }, "unknown client alias"},
		{"empty group", func(c *Config) { c.Groups["alerts"] = nil }, "at least one member"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := NewManager(writeFile(t, "config.yaml", sampleYAML))
			cfg, err := m.Load()
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			tc.mut(cfg)
			err = cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("Validate = %v, want %q", err, tc.want)
			}
		})
	}
}

func TestParseJSON(t *testing.T) {
	js := `{
  "logging": {"console": true},
  "clients": [{"kind": "webhook", "alias": "generic", "url": "https://example.com/hook"}],
  "groups": {"alerts": ["generic"]}
}`
	m := NewManager(writeFile(t, "config.json", js))
	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Clients[0].URL != "https://example.com/hook" {
		t.Fatalf("client = %+v", cfg.Clients[0])
	}
}

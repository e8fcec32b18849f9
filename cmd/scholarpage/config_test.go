package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/eringen/scholarpage/content"
)

const sampleConfig = `
site:
  name: "Jane Doe"
  url: "https://jane.example.edu"
server:
  addr: ":8080"
  static_dir: "assets"
  page_cache_ttl: "2m"
editor:
  max_snapshots: 5
  draft_debounce: "750ms"
analytics:
  enabled: true
publish:
  bucket: "homepage"
  path_style: true
`

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SCHOLARPAGE_ADMIN_SESSION_SECRET", "s3cret")
	t.Setenv("SCHOLARPAGE_SERVER_ADDR", ":9090")
	t.Setenv("SCHOLARPAGE_EDITOR_MAX_SNAPSHOTS", "20")

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Name != "Jane Doe" || cfg.URL != "https://jane.example.edu" {
		t.Errorf("site = %q %q", cfg.Name, cfg.URL)
	}
	if cfg.StaticDir != "assets" || cfg.PageCacheTTL != 2*time.Minute || cfg.DraftDebounce != 750*time.Millisecond {
		t.Errorf("server/editor = %q %v %v", cfg.StaticDir, cfg.PageCacheTTL, cfg.DraftDebounce)
	}
	if !cfg.AnalyticsEnabled || cfg.Publish.Bucket != "homepage" || !cfg.Publish.PathStyle {
		t.Errorf("analytics/publish = %v %+v", cfg.AnalyticsEnabled, cfg.Publish)
	}
	// Environment wins over the file.
	if cfg.Addr != ":9090" || cfg.MaxSnapshots != 20 || cfg.SessionSecret != "s3cret" {
		t.Errorf("env overlay: addr %q, snapshots %d, secret %q", cfg.Addr, cfg.MaxSnapshots, cfg.SessionSecret)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should fall back to env: %v", err)
	}
	if cfg.Name != "" {
		t.Errorf("name = %q", cfg.Name)
	}
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"SCHOLARPAGE_SITE_URL":             "site.url",
		"SCHOLARPAGE_SERVER_STATIC_DIR":    "server.static_dir",
		"SCHOLARPAGE_ADMIN_SESSION_SECRET": "admin.session_secret",
	}
	for in, want := range tests {
		if got := envKey(in); got != want {
			t.Errorf("envKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		if got := confirm(strings.NewReader(tt.in), &out, "Proceed?"); got != tt.want {
			t.Errorf("confirm(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if !strings.Contains(out.String(), "Proceed? [y/N]") {
			t.Errorf("prompt = %q", out.String())
		}
	}
}

func TestExportEncoder(t *testing.T) {
	s := content.Site{}
	s.Profile.Name = map[string]string{"en": "Jane Doe"}
	for _, format := range []string{"json", "js", "md"} {
		enc, err := exportEncoder(format)
		if err != nil {
			t.Fatalf("exportEncoder(%q): %v", format, err)
		}
		var buf bytes.Buffer
		if err := enc(&buf, s); err != nil {
			t.Fatalf("%s export: %v", format, err)
		}
		if !strings.Contains(buf.String(), "Jane Doe") {
			t.Errorf("%s export missing name: %s", format, buf.String())
		}
	}
	if _, err := exportEncoder("pdf"); err == nil {
		t.Error("expected an error for an unknown format")
	}
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigGeneratesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, shouldExit, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !shouldExit || cfg != nil {
		t.Fatalf("expected shouldExit with nil config, got %v %v", shouldExit, cfg)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not written: %v", err)
	}

	// 生成的默认文件缺少 listing_url，应当校验失败
	if _, _, err := LoadConfig(path); err == nil {
		t.Fatal("expected validation error for generated default config")
	}
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte("portal:\n  listing_url: \"https://portal/lista.php?blocoConsulta=7\"\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Crawl.Retries != 1 || cfg.Crawl.TimeoutSeconds != 30 {
		t.Errorf("unexpected crawl defaults: %+v", cfg.Crawl)
	}
	if cfg.Portal.EntrySelector != ".usado a" || cfg.Portal.DetailScope != ".fieldset-1" {
		t.Errorf("unexpected selector defaults: %+v", cfg.Portal)
	}
	if cfg.Report.Locale != "en" || !cfg.Output.Prompt {
		t.Errorf("unexpected report/output defaults")
	}
}

func TestParseEnvOverride(t *testing.T) {
	t.Setenv("NAC_LISTING_FILE", "saved.html")
	t.Setenv("NAC_TIMEOUT_SECONDS", "5")

	cfg, err := Parse([]byte("{}"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Input.ListingFile != "saved.html" {
		t.Errorf("listing file = %q", cfg.Input.ListingFile)
	}
	if cfg.Crawl.TimeoutSeconds != 5 {
		t.Errorf("timeout = %d", cfg.Crawl.TimeoutSeconds)
	}
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"retries", "input:\n  listing_file: x\ncrawl:\n  retries: 2\n", "retries"},
		{"timeout", "input:\n  listing_file: x\ncrawl:\n  timeout_seconds: 0\n", "timeout"},
		{"locale", "input:\n  listing_file: x\nreport:\n  locale: fr\n", "locale"},
		{"source", "portal:\n  listing_url: \"\"\n", "listing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

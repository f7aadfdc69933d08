package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFileMissingReturnsDefaults(t *testing.T) {
	t.Setenv("ATSSCAN_STUB_FALLBACK", "")
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.StubFallback {
		t.Fatalf("expected stub fallback on by default")
	}
	if cfg.RequestTimeout != "10s" || cfg.Concurrency != 4 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadFileJSON5(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	data := `{
  // trailing commas and comments are allowed
  default_regions: ["Canada"],
  stub_fallback: false,
  platform_delays: {lever: "2s"},
  concurrency: 2,
}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.StubFallback {
		t.Fatalf("expected stub fallback disabled")
	}
	if len(cfg.DefaultRegions) != 1 || cfg.DefaultRegions[0] != "Canada" {
		t.Fatalf("unexpected regions: %v", cfg.DefaultRegions)
	}
	if cfg.DefaultDelay != "1s" {
		t.Fatalf("expected unset keys to keep defaults, got %q", cfg.DefaultDelay)
	}

	sc, err := cfg.ScraperConfig()
	if err != nil {
		t.Fatalf("scraper config: %v", err)
	}
	if sc.PlatformDelays["lever"] != 2*time.Second {
		t.Fatalf("unexpected lever delay: %v", sc.PlatformDelays)
	}
	if sc.RequestTimeout != 10*time.Second || sc.Concurrency != 2 {
		t.Fatalf("unexpected scraper config: %+v", sc)
	}
}

func TestScraperConfigRejectsBadDurations(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RequestTimeout = "soon"
	if _, err := cfg.ScraperConfig(); err == nil {
		t.Fatalf("expected error for bad duration")
	}

	cfg = DefaultConfig()
	cfg.PlatformDelays = map[string]string{"lever": "-1s"}
	if _, err := cfg.ScraperConfig(); err == nil {
		t.Fatalf("expected error for negative delay")
	}
}

func TestDefaultConfigReadsEnv(t *testing.T) {
	t.Setenv("ATSSCAN_DEFAULT_REGIONS", "Canada, USA,")
	t.Setenv("ATSSCAN_STUB_FALLBACK", "false")
	t.Setenv("ATSSCAN_CONCURRENCY", "not-a-number")

	cfg := DefaultConfig()
	if len(cfg.DefaultRegions) != 2 || cfg.DefaultRegions[1] != "USA" {
		t.Fatalf("unexpected regions: %v", cfg.DefaultRegions)
	}
	if cfg.StubFallback {
		t.Fatalf("expected env to disable stub fallback")
	}
	if cfg.Concurrency != 4 {
		t.Fatalf("expected invalid int to fall back, got %d", cfg.Concurrency)
	}
}

func TestInitDirIsIdempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), DirName)

	created, err := InitDir(dir)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("expected config and proxies files, got %v", created)
	}

	created, err = InitDir(dir)
	if err != nil {
		t.Fatalf("second init: %v", err)
	}
	if len(created) != 0 {
		t.Fatalf("expected nothing created on second init, got %v", created)
	}

	if _, err := LoadFile(filepath.Join(dir, ConfigFileName)); err != nil {
		t.Fatalf("written config does not load: %v", err)
	}
}

func TestReadProxiesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ProxiesFileName)
	data := "# comment\nhttp://one:8080\n\n  socks5://two:1080  \n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write proxies: %v", err)
	}

	proxies, err := readProxiesFile(path)
	if err != nil {
		t.Fatalf("read proxies: %v", err)
	}
	if len(proxies) != 2 || proxies[1] != "socks5://two:1080" {
		t.Fatalf("unexpected proxies: %v", proxies)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, DotEnvFileName), []byte("ATSSCAN_DOTENV_MARKER=loaded\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Chdir(dir)
	t.Setenv("ATSSCAN_DOTENV_MARKER", "")
	os.Unsetenv("ATSSCAN_DOTENV_MARKER")

	if err := LoadDotEnv(); err != nil {
		t.Fatalf("load .env: %v", err)
	}
	if got := os.Getenv("ATSSCAN_DOTENV_MARKER"); got != "loaded" {
		t.Fatalf("expected .env value, got %q", got)
	}
}

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jimezsa/atsscan/internal/models"
	"github.com/joho/godotenv"
	"github.com/yosuke-furukawa/json5/encoding/json5"
)

const (
	DirName         = "atsscan"
	ConfigFileName  = "config.json"
	ProxiesFileName = "proxies.txt"
	DotEnvFileName  = ".env"
)

// Config contains default scan settings. Durations are Go duration strings ("10s", "800ms").
type Config struct {
	DefaultRegions  []string          `json:"default_regions"`
	DefaultCities   []string          `json:"default_cities"`
	DefaultJobTypes []string          `json:"default_job_types"`
	RequestTimeout  string            `json:"request_timeout"`
	DefaultDelay    string            `json:"default_delay"`
	PlatformDelays  map[string]string `json:"platform_delays"`
	StubFallback    bool              `json:"stub_fallback"`
	Concurrency     int               `json:"concurrency"`
	DatabaseURL     string            `json:"database_url"`
	RosterPath      string            `json:"roster_path"`
}

func DefaultConfig() Config {
	return Config{
		DefaultRegions:  envList("ATSSCAN_DEFAULT_REGIONS"),
		DefaultCities:   envList("ATSSCAN_DEFAULT_CITIES"),
		DefaultJobTypes: envList("ATSSCAN_DEFAULT_JOB_TYPES"),
		RequestTimeout:  envString("ATSSCAN_REQUEST_TIMEOUT", "10s"),
		DefaultDelay:    envString("ATSSCAN_DEFAULT_DELAY", "1s"),
		PlatformDelays:  map[string]string{"ashby": "800ms"},
		StubFallback:    envBool("ATSSCAN_STUB_FALLBACK", true),
		Concurrency:     envInt("ATSSCAN_CONCURRENCY", 4),
		DatabaseURL:     envString("ATSSCAN_DATABASE_URL", ""),
		RosterPath:      envString("ATSSCAN_ROSTER", ""),
	}
}

// ScraperConfig resolves the duration strings into runtime adapter options.
func (c Config) ScraperConfig() (models.ScraperConfig, error) {
	timeout, err := parseDuration("request_timeout", c.RequestTimeout)
	if err != nil {
		return models.ScraperConfig{}, err
	}
	delay, err := parseDuration("default_delay", c.DefaultDelay)
	if err != nil {
		return models.ScraperConfig{}, err
	}

	delays := make(map[string]time.Duration, len(c.PlatformDelays))
	for platform, raw := range c.PlatformDelays {
		parsed, err := parseDuration("platform_delays."+platform, raw)
		if err != nil {
			return models.ScraperConfig{}, err
		}
		delays[platform] = parsed
	}

	return models.ScraperConfig{
		RequestTimeout: timeout,
		DefaultDelay:   delay,
		PlatformDelays: delays,
		StubFallback:   c.StubFallback,
		Concurrency:    c.Concurrency,
	}, nil
}

func parseDuration(field, value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("config %s: %w", field, err)
	}
	if parsed < 0 {
		return 0, fmt.Errorf("config %s: negative duration %q", field, value)
	}
	return parsed, nil
}

func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, DirName), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

func ProxiesPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ProxiesFileName), nil
}

// LoadDotEnv reads .env from the working directory into the process environment. Variables
// already set win, and a missing file is not an error.
func LoadDotEnv() error {
	err := godotenv.Load(DotEnvFileName)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", DotEnvFileName, err)
	}
	return nil
}

func Load() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), err
	}
	return LoadFile(path)
}

// LoadFile overlays the json5 file at path onto DefaultConfig. A missing or blank file yields the
// defaults.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return cfg, nil
	}

	if err := json5.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// Init writes default config.json and proxies.txt if they don't already exist.
func Init() ([]string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	return InitDir(dir)
}

func InitDir(dir string) ([]string, error) {
	var created []string

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return created, err
	}

	configPath := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		if err := writeConfig(configPath, DefaultConfig()); err != nil {
			return created, err
		}
		created = append(created, configPath)
	}

	proxiesPath := filepath.Join(dir, ProxiesFileName)
	if _, err := os.Stat(proxiesPath); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(proxiesPath, []byte(""), 0o644); err != nil {
			return created, err
		}
		created = append(created, proxiesPath)
	}

	return created, nil
}

func writeConfig(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func LoadProxies(flagValue string) ([]string, error) {
	if strings.TrimSpace(flagValue) != "" {
		return SplitCSV(flagValue), nil
	}

	if env := strings.TrimSpace(os.Getenv("ATSSCAN_PROXIES")); env != "" {
		return SplitCSV(env), nil
	}

	path, err := ProxiesPath()
	if err != nil {
		return nil, err
	}
	return readProxiesFile(path)
}

func readProxiesFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var proxies []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		proxies = append(proxies, line)
	}
	return proxies, nil
}

func envString(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func envInt(key string, fallback int) int {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func envBool(key string, fallback bool) bool {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func envList(key string) []string {
	return SplitCSV(os.Getenv(key))
}

// SplitCSV splits a comma-separated value, dropping blanks.
func SplitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

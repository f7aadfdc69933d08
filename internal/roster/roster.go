// Package roster loads the companies queried on each ATS platform.
package roster

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jimezsa/atsscan/internal/scraper"
	"github.com/yosuke-furukawa/json5/encoding/json5"
	"gopkg.in/yaml.v3"
)

const (
	JSONFileName = "companies.json"
	YAMLFileName = "companies.yaml"
)

// Roster maps a platform key to its companies, in query order.
type Roster struct {
	companies map[string][]string
}

// New normalizes platform names and drops blank or duplicate companies.
func New(entries map[string][]string) *Roster {
	r := &Roster{companies: map[string][]string{}}
	for platform, companies := range entries {
		key := scraper.PlatformKey(platform)
		if key == "" {
			continue
		}
		seen := map[string]struct{}{}
		for _, company := range r.companies[key] {
			seen[strings.ToLower(company)] = struct{}{}
		}
		for _, company := range companies {
			company = strings.TrimSpace(company)
			if company == "" {
				continue
			}
			if _, ok := seen[strings.ToLower(company)]; ok {
				continue
			}
			seen[strings.ToLower(company)] = struct{}{}
			r.companies[key] = append(r.companies[key], company)
		}
	}
	return r
}

// Default is the built-in roster used when no roster file exists.
func Default() *Roster {
	return New(map[string][]string{
		scraper.PlatformGreenhouse:      {"cohere", "wealthsimple", "faire", "figma", "stripe", "databricks"},
		scraper.PlatformLever:           {"plaid", "benchling", "dnb", "outreach"},
		scraper.PlatformAshby:           {"ramp", "notion", "linear", "replit"},
		scraper.PlatformSmartRecruiters: {"Visa", "Bosch", "Ubisoft"},
	})
}

// Companies returns a copy of the companies for platform; unknown platforms have none.
func (r *Roster) Companies(platform string) []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.companies[scraper.PlatformKey(platform)]...)
}

// Platforms returns the platform keys that have at least one company, sorted.
func (r *Roster) Platforms() []string {
	keys := make([]string, 0, len(r.companies))
	for key, companies := range r.companies {
		if len(companies) > 0 {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// Load reads a roster file; the format follows the extension (.yaml/.yml, otherwise json5).
func Load(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	entries := map[string][]string{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &entries)
	default:
		err = json5.Unmarshal(data, &entries)
	}
	if err != nil {
		return nil, fmt.Errorf("parse roster %s: %w", path, err)
	}
	return New(entries), nil
}

// Resolve loads path when given. Otherwise it looks for companies.json then companies.yaml in
// dir, and falls back to Default.
func Resolve(path string, dir string) (*Roster, string, error) {
	if strings.TrimSpace(path) != "" {
		r, err := Load(path)
		return r, path, err
	}
	for _, name := range []string{JSONFileName, YAMLFileName} {
		candidate := filepath.Join(dir, name)
		r, err := Load(candidate)
		if err == nil {
			return r, candidate, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, candidate, err
		}
	}
	return Default(), "", nil
}

// Save writes the roster as JSON keyed by platform key.
func (r *Roster) Save(path string) error {
	data, err := json.MarshalIndent(r.companies, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

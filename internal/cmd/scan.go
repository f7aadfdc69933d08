package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jimezsa/atsscan/internal/config"
	"github.com/jimezsa/atsscan/internal/export"
	"github.com/jimezsa/atsscan/internal/filter"
	"github.com/jimezsa/atsscan/internal/models"
	"github.com/jimezsa/atsscan/internal/network"
	"github.com/jimezsa/atsscan/internal/ratelimit"
	"github.com/jimezsa/atsscan/internal/roster"
	"github.com/jimezsa/atsscan/internal/scan"
	"github.com/jimezsa/atsscan/internal/scraper"
	"github.com/jimezsa/atsscan/internal/seen"
	"github.com/jimezsa/atsscan/internal/store"
	"github.com/muesli/termenv"
)

type ScanCmd struct {
	Roles       string        `arg:"" optional:"" help:"Roles to match (comma-separated). Optional when --roles-file is provided."`
	Platforms   string        `help:"Comma-separated ATS platforms (default: all with an adapter)." default:"all"`
	Regions     string        `help:"Comma-separated countries, e.g. Canada,USA (default: config default_regions)."`
	Cities      string        `help:"Comma-separated cities (default: config default_cities)."`
	JobTypes    string        `name:"job-types" help:"Comma-separated job types: Full Time, Contract, Fulltime-Remote, Contract-Remote, Part-time, Remote."`
	RolesFile   string        `help:"Path to JSON file with roles (top-level string array or object with roles array)."`
	Format      string        `help:"Output format: table, csv, tsv, json, md, xlsx." enum:",table,csv,tsv,json,md,xlsx" default:""`
	Links       string        `help:"Table link display: short or full." enum:"short,full" default:"full"`
	Output      string        `name:"output" short:"o" help:"Write output to a file."`
	Proxies     string        `help:"Comma-separated proxy URLs." env:"ATSSCAN_PROXIES"`
	Roster      string        `help:"Path to companies roster (json5 or yaml)." env:"ATSSCAN_ROSTER"`
	NoStub      bool          `help:"Skip platforms without an adapter instead of generating sample postings."`
	Timeout     time.Duration `help:"Overall scan deadline; partial results are kept (0 = none)."`
	DatabaseURL string        `name:"database-url" help:"Postgres URL for scan records." env:"ATSSCAN_DATABASE_URL"`
	Seen        string        `help:"Path to seen postings JSON file."`
	NewOnly     bool          `help:"Output only unseen postings (requires --seen)."`
	SeenUpdate  bool          `help:"Merge unseen postings into --seen after the scan (requires --seen)."`
}

const maxRoles = 10

func (s *ScanCmd) Run(ctx *Context) error {
	if err := s.validateSeenFlags(); err != nil {
		return err
	}

	roles, err := resolveRoles(s.Roles, s.RolesFile)
	if err != nil {
		return err
	}

	cfg := ctx.Config
	scraperCfg, err := cfg.ScraperConfig()
	if err != nil {
		return err
	}

	proxies, err := config.LoadProxies(s.Proxies)
	if err != nil {
		return err
	}
	var rotator *network.Rotator
	if len(proxies) > 0 {
		rotator, err = network.NewRotator(proxies, network.DefaultBanDuration)
		if err != nil {
			return err
		}
	}

	companies, rosterSource, err := roster.Resolve(firstNonEmpty(s.Roster, cfg.RosterPath), ctx.ConfigDir)
	if err != nil {
		return err
	}
	if rosterSource != "" {
		ctx.Logger.Debug().Str("roster", rosterSource).Msg("roster loaded")
	}

	registry, err := scraper.Build(scraper.BuildConfig{
		Rotator:      rotator,
		Roster:       companies,
		Limiter:      ratelimit.New(scraperCfg.DefaultDelay, scraperCfg.PlatformDelays),
		Timeout:      scraperCfg.RequestTimeout,
		Logger:       ctx.Logger,
		StubFallback: scraperCfg.StubFallback && !s.NoStub,
	})
	if err != nil {
		return err
	}

	criteria := models.Criteria{
		Platforms: resolvePlatforms(s.Platforms, registry.Names()),
		Roles:     roles,
		Regions:   listOrDefault(s.Regions, cfg.DefaultRegions),
		Cities:    listOrDefault(s.Cities, cfg.DefaultCities),
		JobTypes:  listOrDefault(s.JobTypes, cfg.DefaultJobTypes),
	}
	warnUnknownFilters(ctx, criteria)

	runCtx := context.Background()
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, s.Timeout)
		defer cancel()
	}

	scanStore, closeStore, err := openStore(runCtx, firstNonEmpty(s.DatabaseURL, cfg.DatabaseURL))
	if err != nil {
		return err
	}
	defer closeStore()

	orchestrator := scan.NewOrchestrator(registry, ctx.Logger, scraperCfg.Concurrency)
	service := scan.NewService(scanStore, orchestrator, ctx.Logger)

	stopIndicator := startScanIndicator(ctx)
	result, err := service.Run(runCtx, criteria)
	if stopIndicator != nil {
		stopIndicator()
	}
	if err != nil {
		return err
	}

	reportPlatformFailures(ctx, result.Reports)
	return s.writeResult(ctx, result)
}

func (s *ScanCmd) validateSeenFlags() error {
	hasSeen := strings.TrimSpace(s.Seen) != ""
	if s.NewOnly && !hasSeen {
		return fmt.Errorf("--new-only requires --seen")
	}
	if s.SeenUpdate && !hasSeen {
		return fmt.Errorf("--seen-update requires --seen")
	}
	if hasSeen && pathsEqual(s.Output, s.Seen) {
		return fmt.Errorf("--output path must differ from --seen")
	}
	return nil
}

func (s *ScanCmd) writeResult(ctx *Context, result scan.Result) error {
	postings := result.Postings

	var unseen []models.Posting
	if strings.TrimSpace(s.Seen) != "" {
		history, err := seen.ReadPostingsAllowMissing(s.Seen)
		if err != nil {
			return fmt.Errorf("read --seen: %w", err)
		}
		unseen, _ = seen.Diff(postings, history)
	}

	output := postings
	if s.NewOnly {
		output = unseen
	}

	format, err := resolveFormat(ctx, s.Format, s.Output)
	if err != nil {
		return err
	}
	if err := writePostings(ctx, output, format, s.Output, s.Links); err != nil {
		return err
	}

	if s.SeenUpdate {
		if err := updateSeenHistory(s.Seen, unseen); err != nil {
			return err
		}
	}

	summary := postings
	if strings.TrimSpace(s.Seen) != "" {
		summary = unseen
	}
	printScanSummary(ctx, result.ScanID, summary)
	return nil
}

// writePostings writes to outputPath when set, otherwise to ctx.Out.
func writePostings(ctx *Context, postings []models.Posting, format export.Format, outputPath string, links string) error {
	if format == export.FormatXLSX && outputPath == "" {
		return fmt.Errorf("xlsx output requires --output")
	}

	writer := ctx.Out
	if outputPath != "" {
		file, err := os.Create(outputPath)
		if err != nil {
			return err
		}
		defer file.Close()
		writer = file
	}

	colorEnabled := ctx.UI != nil && ctx.UI.ColorEnabled && outputPath == ""
	hyperlinks := colorEnabled && isTTY(writer)
	linkStyle := export.LinkStyleFull
	if strings.EqualFold(links, string(export.LinkStyleShort)) {
		linkStyle = export.LinkStyleShort
	}
	return export.WritePostings(writer, postings, format, export.WriteOptions{
		ColorEnabled: colorEnabled,
		Hyperlinks:   hyperlinks,
		LinkStyle:    linkStyle,
	})
}

// openStore returns Postgres when databaseURL is set and an in-memory store otherwise.
func openStore(ctx context.Context, databaseURL string) (scan.Store, func(), error) {
	if strings.TrimSpace(databaseURL) == "" {
		return store.NewMemory(), func() {}, nil
	}

	pool, err := store.NewPostgresPool(ctx, databaseURL)
	if err != nil {
		return nil, nil, err
	}
	pg := store.NewPostgres(pool)
	if err := pg.EnsureSchema(ctx); err != nil {
		pg.Close()
		return nil, nil, err
	}
	return pg, pg.Close, nil
}

func pathsEqual(a, b string) bool {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return false
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA == nil && errB == nil {
		return absA == absB
	}
	return filepath.Clean(a) == filepath.Clean(b)
}

func updateSeenHistory(seenPath string, postings []models.Posting) error {
	history, err := seen.ReadPostingsAllowMissing(seenPath)
	if err != nil {
		return fmt.Errorf("read --seen: %w", err)
	}

	merged, _ := seen.Merge(history, postings)
	if err := seen.WritePostings(seenPath, merged); err != nil {
		return fmt.Errorf("write --seen: %w", err)
	}

	return nil
}

func printScanSummary(ctx *Context, scanID string, postings []models.Posting) {
	if ctx == nil || ctx.Err == nil {
		return
	}
	_, _ = fmt.Fprintf(ctx.Err, "%s\n", formatScanSummary(scanID, postings))
}

func formatScanSummary(scanID string, postings []models.Posting) string {
	counts := countPostingsByPlatform(postings)
	if len(counts) == 0 {
		return fmt.Sprintf("summary: scan_id=%s postings=0 by_platform=none", scanID)
	}

	parts := make([]string, 0, len(counts))
	for _, count := range counts {
		parts = append(parts, fmt.Sprintf("%s:%d", count.platform, count.total))
	}

	return fmt.Sprintf("summary: scan_id=%s postings=%d by_platform=%s", scanID, len(postings), strings.Join(parts, ", "))
}

type platformCount struct {
	platform string
	total    int
}

func countPostingsByPlatform(postings []models.Posting) []platformCount {
	totals := make(map[string]int, len(postings))
	for _, posting := range postings {
		platform := strings.ToLower(strings.TrimSpace(posting.Platform))
		if platform == "" {
			platform = "unknown"
		}
		totals[platform]++
	}

	counts := make([]platformCount, 0, len(totals))
	for platform, total := range totals {
		counts = append(counts, platformCount{platform: platform, total: total})
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].platform < counts[j].platform
	})
	return counts
}

func reportPlatformFailures(ctx *Context, reports []scan.Report) {
	if ctx == nil || ctx.UI == nil {
		return
	}

	var lines []string
	for _, report := range reports {
		switch {
		case report.Skipped:
			lines = append(lines, fmt.Sprintf("  %s: no adapter (stub fallback disabled)", report.Platform))
		case report.Err != nil:
			lines = append(lines, fmt.Sprintf("  %s: %v", report.Platform, report.Err))
		case report.Stub && ctx.Verbose:
			lines = append(lines, fmt.Sprintf("  %s: no adapter; sample postings generated", report.Platform))
		}
	}
	if len(lines) == 0 {
		return
	}

	ctx.UI.Warnf("\nPlatform warnings:")
	for _, line := range lines {
		ctx.UI.Warnf("%s", line)
	}
}

func warnUnknownFilters(ctx *Context, criteria models.Criteria) {
	if ctx == nil || ctx.UI == nil {
		return
	}
	for _, region := range criteria.Regions {
		if len(filter.RegionHints(region)) == 0 {
			ctx.UI.Warnf("unknown region %q matches no locations (known: %s)", region, strings.Join(filter.Countries(), ", "))
		}
	}
	for _, jobType := range criteria.JobTypes {
		if !filter.KnownJobType(jobType) {
			ctx.UI.Warnf("unknown job type %q matches no postings (known: %s)", jobType, strings.Join(filter.JobTypes(), ", "))
		}
	}
}

// resolvePlatforms expands "all" to the registered adapters and dedupes the rest by platform key.
func resolvePlatforms(raw string, registered []string) []string {
	requested := config.SplitCSV(raw)
	if len(requested) == 0 || (len(requested) == 1 && strings.EqualFold(requested[0], "all")) {
		return registered
	}

	out := make([]string, 0, len(requested))
	keys := make(map[string]struct{}, len(requested))
	for _, platform := range requested {
		key := scraper.PlatformKey(platform)
		if _, ok := keys[key]; ok {
			continue
		}
		keys[key] = struct{}{}
		out = append(out, platform)
	}
	return out
}

func listOrDefault(raw string, fallback []string) []string {
	if values := config.SplitCSV(raw); len(values) > 0 {
		return values
	}
	return append([]string(nil), fallback...)
}

func resolveRoles(raw string, rolesFile string) ([]string, error) {
	positional := config.SplitCSV(raw)
	var fromFile []string
	if strings.TrimSpace(rolesFile) != "" {
		var err error
		fromFile, err = loadRolesFromJSON(rolesFile)
		if err != nil {
			return nil, err
		}
	}
	return mergeAndNormalizeRoles(positional, fromFile)
}

func mergeAndNormalizeRoles(primary []string, secondary []string) ([]string, error) {
	roles := make([]string, 0, len(primary)+len(secondary))
	seenRoles := make(map[string]struct{}, len(primary)+len(secondary))

	appendUnique := func(rawRole string) {
		role := strings.TrimSpace(rawRole)
		if role == "" {
			return
		}
		normalized := strings.ToLower(role)
		if _, exists := seenRoles[normalized]; exists {
			return
		}
		seenRoles[normalized] = struct{}{}
		roles = append(roles, role)
	}

	for _, role := range primary {
		appendUnique(role)
	}
	for _, role := range secondary {
		appendUnique(role)
	}

	if len(roles) == 0 {
		return nil, fmt.Errorf("at least one non-empty role is required")
	}
	if len(roles) > maxRoles {
		return nil, fmt.Errorf("too many roles: max %d", maxRoles)
	}

	return roles, nil
}

func loadRolesFromJSON(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read --roles-file %q: %w", path, err)
	}

	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("parse --roles-file %q: %w", path, err)
	}

	switch value := decoded.(type) {
	case []any:
		return parseStringArray(value, path, "root array")
	case map[string]any:
		rawRoles, ok := value["roles"]
		if !ok {
			return nil, fmt.Errorf("invalid --roles-file %q: expected top-level string array or object with \"roles\" string array", path)
		}
		roles, ok := rawRoles.([]any)
		if !ok {
			return nil, fmt.Errorf("invalid --roles-file %q: field \"roles\" must be an array of strings", path)
		}
		return parseStringArray(roles, path, "roles")
	default:
		return nil, fmt.Errorf("invalid --roles-file %q: expected top-level string array or object with \"roles\" string array", path)
	}
}

func parseStringArray(values []any, path string, fieldName string) ([]string, error) {
	out := make([]string, 0, len(values))
	for idx, rawValue := range values {
		value, ok := rawValue.(string)
		if !ok {
			return nil, fmt.Errorf("invalid --roles-file %q: %s[%d] must be a string", path, fieldName, idx)
		}
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		out = append(out, value)
	}
	return out, nil
}

// resolveFormat picks the explicit format, then global --json/--plain, then the output file
// extension, then table on a terminal and CSV elsewhere.
func resolveFormat(ctx *Context, format string, outputPath string) (export.Format, error) {
	if format != "" {
		return export.ParseFormat(format)
	}
	if ctx.JSONOutput {
		return export.FormatJSON, nil
	}
	if ctx.PlainText {
		return export.FormatTSV, nil
	}
	if outputPath != "" {
		switch strings.ToLower(filepath.Ext(outputPath)) {
		case ".xlsx":
			return export.FormatXLSX, nil
		case ".json":
			return export.FormatJSON, nil
		case ".md":
			return export.FormatMarkdown, nil
		case ".tsv":
			return export.FormatTSV, nil
		default:
			return export.FormatCSV, nil
		}
	}
	if isTTY(ctx.Out) {
		return export.FormatTable, nil
	}
	return export.FormatCSV, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func isTTY(out io.Writer) bool {
	output := termenv.NewOutput(out)
	return output.ColorProfile() != termenv.Ascii
}

func startScanIndicator(ctx *Context) func() {
	if ctx == nil || ctx.Err == nil || ctx.UI == nil {
		return nil
	}
	if !isTTY(ctx.Err) {
		return nil
	}

	done := make(chan struct{})
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)
		start := time.Now()
		frames := []string{"|", "/", "-", "\\"}
		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()
		index := 0

		for {
			select {
			case <-done:
				fmt.Fprint(ctx.Err, "\r\033[2K")
				return
			case <-ticker.C:
				seconds := int(time.Since(start).Seconds())
				frame := frames[index%len(frames)]
				fmt.Fprintf(ctx.Err, "\r\033[2KScanning... %ds %s", seconds, frame)
				index++
			}
		}
	}()

	return func() {
		close(done)
		<-stopped
	}
}

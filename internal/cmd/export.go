package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var errNoDatabase = errors.New("a database URL is required (--database-url or ATSSCAN_DATABASE_URL)")

// ExportCmd re-exports the postings of a stored scan.
type ExportCmd struct {
	ScanID      string `arg:"" help:"Scan ID printed in the scan summary."`
	Format      string `help:"Output format: csv, tsv, json, md, xlsx (default: from --output extension)." enum:",table,csv,tsv,json,md,xlsx" default:""`
	Output      string `name:"output" short:"o" help:"Write output to a file (default: scan-<id>.xlsx)."`
	DatabaseURL string `name:"database-url" help:"Postgres URL for scan records." env:"ATSSCAN_DATABASE_URL"`
}

func (e *ExportCmd) Run(ctx *Context) error {
	databaseURL := firstNonEmpty(e.DatabaseURL, ctx.Config.DatabaseURL)
	if strings.TrimSpace(databaseURL) == "" {
		return errNoDatabase
	}

	runCtx := context.Background()
	scanStore, closeStore, err := openStore(runCtx, databaseURL)
	if err != nil {
		return err
	}
	defer closeStore()

	record, err := scanStore.GetScan(runCtx, e.ScanID)
	if err != nil {
		return err
	}
	postings, err := scanStore.ListPostings(runCtx, record.ID)
	if err != nil {
		return err
	}
	if len(postings) == 0 {
		return fmt.Errorf("no postings found for scan %s (status %s)", record.ID, record.Status)
	}

	output := e.Output
	if output == "" && e.Format == "" {
		output = fmt.Sprintf("scan-%s.xlsx", record.ID)
	}
	format, err := resolveFormat(ctx, e.Format, output)
	if err != nil {
		return err
	}
	if err := writePostings(ctx, postings, format, output, "full"); err != nil {
		return err
	}
	if output != "" && ctx.UI != nil {
		ctx.UI.Successf("Exported %d postings to %s", len(postings), output)
	}
	return nil
}

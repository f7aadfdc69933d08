package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"text/tabwriter"

	"github.com/jimezsa/atsscan/internal/models"
	"github.com/jimezsa/atsscan/internal/ui"
	"github.com/muesli/termenv"
	"github.com/xuri/excelize/v2"
)

type Format string

const (
	FormatTable    Format = "table"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
	FormatTSV      Format = "tsv"
	FormatXLSX     Format = "xlsx"
)

// SheetName is the worksheet written by FormatXLSX.
const SheetName = "Jobs"

type WriteOptions struct {
	ColorEnabled bool
	Hyperlinks   bool
	LinkStyle    LinkStyle
}

type LinkStyle string

const (
	LinkStyleShort LinkStyle = "short"
	LinkStyleFull  LinkStyle = "full"
)

// ParseFormat maps a user-supplied format name; empty means table.
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "tsv":
		return FormatTSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	case "table", "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unknown format: %s", value)
	}
}

func WritePostings(w io.Writer, postings []models.Posting, format Format, opts WriteOptions) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, postings)
	case FormatCSV:
		return writeCSV(w, postings, ',')
	case FormatTSV:
		return writeCSV(w, postings, '\t')
	case FormatMarkdown:
		return writeMarkdown(w, postings)
	case FormatXLSX:
		return writeXLSX(w, postings)
	default:
		return writeTable(w, postings, opts)
	}
}

func writeJSON(w io.Writer, postings []models.Posting) error {
	if postings == nil {
		postings = []models.Posting{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(postings)
}

func writeCSV(w io.Writer, postings []models.Posting, delim rune) error {
	writer := csv.NewWriter(w)
	writer.Comma = delim
	if err := writer.Write(sheetHeader()); err != nil {
		return err
	}
	for _, posting := range postings {
		if err := writer.Write(sheetRow(posting)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeXLSX(w io.Writer, postings []models.Posting) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return err
	}

	header := toRow(sheetHeader())
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return err
	}
	for i, posting := range postings {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := toRow(sheetRow(posting))
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(SheetName, "A", "C", 24); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetName, "D", "D", 60); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetName, "E", "F", 24); err != nil {
		return err
	}

	_, err := f.WriteTo(w)
	return err
}

func toRow(values []string) []any {
	row := make([]any, len(values))
	for i, value := range values {
		row[i] = value
	}
	return row
}

func writeTable(w io.Writer, postings []models.Posting, opts WriteOptions) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(tableHeader(), "\t"))
	output := termenv.NewOutput(w)
	for _, posting := range postings {
		fmt.Fprintln(tw, strings.Join(tableRow(posting, output, opts), "\t"))
	}
	return tw.Flush()
}

func writeMarkdown(w io.Writer, postings []models.Posting) error {
	if len(postings) == 0 {
		_, err := fmt.Fprintln(w, "No results.")
		return err
	}
	for _, posting := range postings {
		urlLine := "  URL: -"
		if link := safe(posting.URL); link != "" {
			urlLine = fmt.Sprintf("  URL: [Open listing](<%s>)", link)
		}
		location := safe(posting.Location)
		if location == "" {
			location = "-"
		}
		lines := []string{
			fmt.Sprintf("- **%s** (%s)", safe(posting.Title), safe(posting.Company)),
			fmt.Sprintf("  Location: %s", location),
			fmt.Sprintf("  ATS: %s", safe(posting.Platform)),
			fmt.Sprintf("  Type: %s", safe(posting.EmploymentKind)),
			urlLine,
		}
		for _, line := range lines {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}

// sheetHeader is the column order shared by CSV, TSV and XLSX.
func sheetHeader() []string {
	return []string{
		"ATS System",
		"Company",
		"Position",
		"Link",
		"Location",
		"Job Type",
	}
}

func sheetRow(posting models.Posting) []string {
	return []string{
		posting.Platform,
		posting.Company,
		posting.Title,
		posting.URL,
		posting.Location,
		posting.EmploymentKind,
	}
}

func safe(value string) string {
	return strings.TrimSpace(value)
}

func tableHeader() []string {
	return []string{
		"ats",
		"company",
		"position",
		"location",
		"type",
		"link",
	}
}

func tableRow(posting models.Posting, output *termenv.Output, opts WriteOptions) []string {
	link := safe(posting.URL)
	displayURL := "-"
	if link != "" {
		displayURL = link
		if opts.LinkStyle == LinkStyleShort && opts.Hyperlinks {
			displayURL = shortURLLabel(link)
		}
		displayURL = ui.ColorizeLink(output, opts.ColorEnabled, displayURL)
		if opts.Hyperlinks {
			displayURL = hyperlink(link, displayURL)
		}
	}
	location := safe(posting.Location)
	if location == "" {
		location = "-"
	}
	return []string{
		safe(posting.Platform),
		safe(posting.Company),
		safe(posting.Title),
		location,
		safe(posting.EmploymentKind),
		displayURL,
	}
}

func hyperlink(url string, text string) string {
	const esc = "\x1b"
	return esc + "]8;;" + url + esc + "\\" + text + esc + "]8;;" + esc + "\\"
}

func shortURLLabel(raw string) string {
	const maxLen = 60
	label := strings.TrimSpace(raw)
	if parsed, err := url.Parse(raw); err == nil {
		host := strings.TrimPrefix(parsed.Host, "www.")
		if host != "" {
			label = host + parsed.Path
		}
	}
	label = strings.TrimSpace(label)
	if label == "" {
		label = raw
	}
	if len(label) > maxLen {
		label = label[:maxLen-3] + "..."
	}
	return label
}

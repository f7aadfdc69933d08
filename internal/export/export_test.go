package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/jimezsa/atsscan/internal/models"
	"github.com/xuri/excelize/v2"
)

var samplePostings = []models.Posting{
	{
		Platform:       "Greenhouse",
		Company:        "acme",
		Title:          "ML Engineer",
		URL:            "https://boards.greenhouse.io/acme/jobs/1",
		Location:       "Toronto, ON",
		EmploymentKind: models.KindFullTime,
	},
	{
		Platform:       "Lever",
		Company:        "globex",
		Title:          "Data Engineer, \"Platform\"",
		URL:            "https://jobs.lever.co/globex/2",
		EmploymentKind: models.KindContract,
	},
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{
		"":         FormatTable,
		"CSV":      FormatCSV,
		"markdown": FormatMarkdown,
		" xlsx ":   FormatXLSX,
		"excel":    FormatXLSX,
		"tsv":      FormatTSV,
		"json":     FormatJSON,
	}
	for input, want := range cases {
		got, err := ParseFormat(input)
		if err != nil {
			t.Fatalf("ParseFormat(%q) error: %v", input, err)
		}
		if got != want {
			t.Fatalf("ParseFormat(%q) = %q, want %q", input, got, want)
		}
	}
	if _, err := ParseFormat("pdf"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestWriteCSVColumns(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePostings(&buf, samplePostings, FormatCSV, WriteOptions{}); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header and 2 rows, got %d", len(records))
	}
	want := []string{"ATS System", "Company", "Position", "Link", "Location", "Job Type"}
	if strings.Join(records[0], "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected header: %v", records[0])
	}
	if records[2][2] != `Data Engineer, "Platform"` || records[2][4] != "" {
		t.Fatalf("unexpected row: %v", records[2])
	}
}

func TestWriteTSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePostings(&buf, samplePostings[:1], FormatTSV, WriteOptions{}); err != nil {
		t.Fatalf("write tsv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if got := strings.Split(lines[1], "\t"); len(got) != 6 || got[5] != "Full Time" {
		t.Fatalf("unexpected tsv row: %q", lines[1])
	}
}

func TestWriteJSONEmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePostings(&buf, nil, FormatJSON, WriteOptions{}); err != nil {
		t.Fatalf("write json: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Fatalf("expected empty array, got %q", buf.String())
	}

	buf.Reset()
	if err := WritePostings(&buf, samplePostings, FormatJSON, WriteOptions{}); err != nil {
		t.Fatalf("write json: %v", err)
	}
	var decoded []models.Posting
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if len(decoded) != 2 || decoded[1].EmploymentKind != models.KindContract {
		t.Fatalf("unexpected decoded postings: %+v", decoded)
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePostings(&buf, samplePostings, FormatXLSX, WriteOptions{}); err != nil {
		t.Fatalf("write xlsx: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer f.Close()

	if sheets := f.GetSheetList(); len(sheets) != 1 || sheets[0] != SheetName {
		t.Fatalf("unexpected sheets: %v", sheets)
	}
	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "ATS System" || rows[0][5] != "Job Type" {
		t.Fatalf("unexpected header: %v", rows[0])
	}
	if rows[1][3] != "https://boards.greenhouse.io/acme/jobs/1" {
		t.Fatalf("unexpected link cell: %v", rows[1])
	}
}

func TestWriteMarkdown(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePostings(&buf, nil, FormatMarkdown, WriteOptions{}); err != nil {
		t.Fatalf("write md: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "No results." {
		t.Fatalf("unexpected empty markdown: %q", buf.String())
	}

	buf.Reset()
	if err := WritePostings(&buf, samplePostings[1:], FormatMarkdown, WriteOptions{}); err != nil {
		t.Fatalf("write md: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"**Data Engineer, \"Platform\"** (globex)", "Location: -", "ATS: Lever", "[Open listing](<https://jobs.lever.co/globex/2>)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("markdown missing %q:\n%s", want, out)
		}
	}
}

func TestWriteTableShortLinks(t *testing.T) {
	var buf bytes.Buffer
	opts := WriteOptions{Hyperlinks: true, LinkStyle: LinkStyleShort}
	if err := WritePostings(&buf, samplePostings[:1], FormatTable, opts); err != nil {
		t.Fatalf("write table: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "boards.greenhouse.io/acme/jobs/1") {
		t.Fatalf("expected short link label, got %q", out)
	}
	if !strings.Contains(out, "\x1b]8;;https://boards.greenhouse.io/acme/jobs/1") {
		t.Fatalf("expected hyperlink escape, got %q", out)
	}
}

func TestShortURLLabelTruncates(t *testing.T) {
	long := "https://www.example.com/" + strings.Repeat("a", 100)
	label := shortURLLabel(long)
	if len(label) != 60 || !strings.HasSuffix(label, "...") {
		t.Fatalf("unexpected label %q", label)
	}
	if !strings.HasPrefix(label, "example.com/") {
		t.Fatalf("expected www. stripped, got %q", label)
	}
}

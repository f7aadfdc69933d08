package scraper

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jimezsa/atsscan/internal/filter"
	"github.com/jimezsa/atsscan/internal/models"
)

const (
	ashbyAPIBase   = "https://api.ashbyhq.com/posting-api/job-board"
	ashbyBoardBase = "https://jobs.ashbyhq.com"
)

type Ashby struct {
	board     *board
	apiBase   string
	boardBase string
}

func NewAshby(opts Options) *Ashby {
	a := &Ashby{
		board:     newBoard(PlatformAshby, opts),
		apiBase:   firstNonEmpty(opts.APIBase, ashbyAPIBase),
		boardBase: firstNonEmpty(opts.BoardBase, ashbyBoardBase),
	}
	a.board.pageURL = a.boardURL
	a.board.structured = a.fetchAPI
	a.board.html = a.fetchBoard
	return a
}

func (a *Ashby) Name() string {
	return PlatformAshby
}

func (a *Ashby) Fetch(ctx context.Context, criteria models.Criteria) ([]models.Posting, error) {
	return a.board.fetch(ctx, criteria)
}

func (a *Ashby) boardURL(company string) string {
	return joinURL(a.boardBase, companySlug(company))
}

type ashbyJobBoard struct {
	Jobs []ashbyJob `json:"jobs"`
}

type ashbyJob struct {
	Title          string `json:"title"`
	Location       string `json:"location"`
	EmploymentType string `json:"employmentType"`
	JobURL         string `json:"jobUrl"`
	IsRemote       bool   `json:"isRemote"`
	IsListed       *bool  `json:"isListed"`
}

func (a *Ashby) fetchAPI(ctx context.Context, company string) ([]rawPosting, error) {
	var payload ashbyJobBoard
	if err := fetchJSON(ctx, a.board.client, joinURL(a.apiBase, companySlug(company)), &payload); err != nil {
		return nil, err
	}
	if payload.Jobs == nil {
		return nil, fmt.Errorf("%w: missing jobs", errMalformed)
	}

	raws := make([]rawPosting, 0, len(payload.Jobs))
	for _, job := range payload.Jobs {
		if job.IsListed != nil && !*job.IsListed {
			continue
		}
		raws = append(raws, rawPosting{
			Title:    job.Title,
			URL:      job.JobURL,
			Location: job.Location,
			Kind:     job.EmploymentType,
			Remote:   job.IsRemote,
		})
	}
	return raws, nil
}

func (a *Ashby) fetchBoard(ctx context.Context, company string) ([]rawPosting, error) {
	doc, err := fetchDocument(ctx, a.board.client, a.boardURL(company))
	if err != nil {
		return nil, err
	}
	slug := companySlug(company)
	return parseBoardPage(doc, func(doc *goquery.Document) []rawPosting {
		return parseAshbyBoard(doc, slug)
	})
}

// parseAshbyBoard reads posting anchors of the form /<company>/<posting-id>. Cards render the
// title in a heading followed by "Department • Location • Employment type" details.
func parseAshbyBoard(doc *goquery.Document, slug string) []rawPosting {
	var raws []rawPosting
	seen := map[string]struct{}{}
	prefix := "/" + strings.ToLower(slug) + "/"

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		lower := strings.ToLower(href)
		idx := strings.Index(lower, prefix)
		if idx < 0 || len(strings.Trim(lower[idx+len(prefix):], "/")) == 0 {
			return
		}
		if strings.HasSuffix(lower, "/application") {
			return
		}
		if _, ok := seen[href]; ok {
			return
		}

		title := cleanText(s.Find("h1, h2, h3, h4").First().Text())
		if title == "" {
			title = cleanText(s.Text())
		}
		if title == "" {
			return
		}
		seen[href] = struct{}{}

		details := strings.TrimSpace(strings.Replace(cleanText(s.Text()), title, "", 1))
		location, kind := splitAshbyDetails(details)
		raws = append(raws, rawPosting{
			Title:    title,
			URL:      href,
			Location: location,
			Kind:     kind,
		})
	})

	return raws
}

// splitAshbyDetails reads a card's "Department • Location • Type" line. A lone part is only taken
// as the location when it reads like one; otherwise it is a department.
func splitAshbyDetails(details string) (string, string) {
	var kind string
	var rest []string
	for _, part := range strings.Split(details, "•") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if kind == "" && isEmploymentText(part) {
			kind = part
			continue
		}
		rest = append(rest, part)
	}
	switch len(rest) {
	case 0:
		return "", kind
	case 1:
		if filter.LooksLikeLocation(rest[0]) {
			return rest[0], kind
		}
		return "", kind
	default:
		return strings.Join(rest[1:], ", "), kind
	}
}

func isEmploymentText(value string) bool {
	value = strings.ToLower(value)
	for _, needle := range []string{"full time", "full-time", "fulltime", "part time", "part-time", "contract", "intern", "temporary", "permanent"} {
		if strings.Contains(value, needle) {
			return true
		}
	}
	return false
}

package scraper

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jimezsa/atsscan/internal/models"
)

const (
	greenhouseAPIBase   = "https://boards-api.greenhouse.io/v1/boards"
	greenhouseBoardBase = "https://boards.greenhouse.io"
)

type Greenhouse struct {
	board     *board
	apiBase   string
	boardBase string
}

func NewGreenhouse(opts Options) *Greenhouse {
	g := &Greenhouse{
		board:     newBoard(PlatformGreenhouse, opts),
		apiBase:   firstNonEmpty(opts.APIBase, greenhouseAPIBase),
		boardBase: firstNonEmpty(opts.BoardBase, greenhouseBoardBase),
	}
	g.board.pageURL = g.boardURL
	g.board.structured = g.fetchAPI
	g.board.html = g.fetchBoard
	return g
}

func (g *Greenhouse) Name() string {
	return PlatformGreenhouse
}

func (g *Greenhouse) Fetch(ctx context.Context, criteria models.Criteria) ([]models.Posting, error) {
	return g.board.fetch(ctx, criteria)
}

func (g *Greenhouse) boardURL(company string) string {
	return joinURL(g.boardBase, companySlug(company))
}

type greenhouseJobsResponse struct {
	Jobs []greenhouseJob `json:"jobs"`
}

type greenhouseJob struct {
	Title       string `json:"title"`
	AbsoluteURL string `json:"absolute_url"`
	Location    struct {
		Name string `json:"name"`
	} `json:"location"`
}

func (g *Greenhouse) fetchAPI(ctx context.Context, company string) ([]rawPosting, error) {
	var payload greenhouseJobsResponse
	if err := fetchJSON(ctx, g.board.client, joinURL(g.apiBase, companySlug(company), "jobs"), &payload); err != nil {
		return nil, err
	}
	if payload.Jobs == nil {
		return nil, fmt.Errorf("%w: missing jobs", errMalformed)
	}

	raws := make([]rawPosting, 0, len(payload.Jobs))
	for _, job := range payload.Jobs {
		raws = append(raws, rawPosting{
			Title:    job.Title,
			URL:      job.AbsoluteURL,
			Location: job.Location.Name,
		})
	}
	return raws, nil
}

func (g *Greenhouse) fetchBoard(ctx context.Context, company string) ([]rawPosting, error) {
	doc, err := fetchDocument(ctx, g.board.client, g.boardURL(company))
	if err != nil {
		return nil, err
	}
	return parseBoardPage(doc, parseGreenhouseBoard)
}

func parseGreenhouseBoard(doc *goquery.Document) []rawPosting {
	var raws []rawPosting

	// Classic boards.
	doc.Find(".opening").Each(func(_ int, s *goquery.Selection) {
		anchor := s.Find("a").First()
		raws = append(raws, rawPosting{
			Title:    anchor.Text(),
			URL:      strings.TrimSpace(anchor.AttrOr("href", "")),
			Location: s.Find(".location").First().Text(),
		})
	})

	// job-boards.greenhouse.io layout.
	doc.Find("tr.job-post").Each(func(_ int, s *goquery.Selection) {
		anchor := s.Find("a").First()
		title := s.Find("p.body--medium").First().Text()
		if strings.TrimSpace(title) == "" {
			title = anchor.Text()
		}
		raws = append(raws, rawPosting{
			Title:    title,
			URL:      strings.TrimSpace(anchor.AttrOr("href", "")),
			Location: s.Find("p.body--metadata").First().Text(),
		})
	})

	return raws
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

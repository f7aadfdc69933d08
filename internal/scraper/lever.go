package scraper

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jimezsa/atsscan/internal/models"
)

const (
	leverAPIBase   = "https://api.lever.co/v0/postings"
	leverBoardBase = "https://jobs.lever.co"
)

type Lever struct {
	board     *board
	apiBase   string
	boardBase string
}

func NewLever(opts Options) *Lever {
	l := &Lever{
		board:     newBoard(PlatformLever, opts),
		apiBase:   firstNonEmpty(opts.APIBase, leverAPIBase),
		boardBase: firstNonEmpty(opts.BoardBase, leverBoardBase),
	}
	l.board.pageURL = l.boardURL
	l.board.structured = l.fetchAPI
	l.board.html = l.fetchBoard
	return l
}

func (l *Lever) Name() string {
	return PlatformLever
}

func (l *Lever) Fetch(ctx context.Context, criteria models.Criteria) ([]models.Posting, error) {
	return l.board.fetch(ctx, criteria)
}

func (l *Lever) boardURL(company string) string {
	return joinURL(l.boardBase, companySlug(company))
}

type leverPosting struct {
	Text          string `json:"text"`
	HostedURL     string `json:"hostedUrl"`
	WorkplaceType string `json:"workplaceType"`
	Categories    struct {
		Location   string `json:"location"`
		Commitment string `json:"commitment"`
		Team       string `json:"team"`
	} `json:"categories"`
}

func (l *Lever) fetchAPI(ctx context.Context, company string) ([]rawPosting, error) {
	var payload []leverPosting
	if err := fetchJSON(ctx, l.board.client, joinURL(l.apiBase, companySlug(company))+"?mode=json", &payload); err != nil {
		return nil, err
	}

	raws := make([]rawPosting, 0, len(payload))
	for _, post := range payload {
		raws = append(raws, rawPosting{
			Title:    post.Text,
			URL:      post.HostedURL,
			Location: post.Categories.Location,
			Kind:     post.Categories.Commitment,
			Remote:   strings.EqualFold(post.WorkplaceType, "remote"),
		})
	}
	return raws, nil
}

func (l *Lever) fetchBoard(ctx context.Context, company string) ([]rawPosting, error) {
	doc, err := fetchDocument(ctx, l.board.client, l.boardURL(company))
	if err != nil {
		return nil, err
	}
	return parseBoardPage(doc, parseLeverBoard)
}

func parseLeverBoard(doc *goquery.Document) []rawPosting {
	var raws []rawPosting

	doc.Find(".posting").Each(func(_ int, s *goquery.Selection) {
		anchor := s.Find("a.posting-title").First()
		if anchor.Length() == 0 {
			anchor = s.Find("a").First()
		}
		title := s.Find("[data-qa='posting-name']").First().Text()
		if strings.TrimSpace(title) == "" {
			title = s.Find("h5").First().Text()
		}

		location := s.Find(".sort-by-location").First().Text()
		if strings.TrimSpace(location) == "" {
			location = s.Find(".location").First().Text()
		}
		workplace := strings.ToLower(s.Find(".workplaceTypes").First().Text())

		raws = append(raws, rawPosting{
			Title:    title,
			URL:      strings.TrimSpace(anchor.AttrOr("href", "")),
			Location: location,
			Kind:     s.Find(".sort-by-commitment").First().Text(),
			Remote:   strings.Contains(workplace, "remote"),
		})
	})

	return raws
}

package scraper

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jimezsa/atsscan/internal/models"
)

const (
	smartRecruitersAPIBase   = "https://api.smartrecruiters.com/v1/companies"
	smartRecruitersBoardBase = "https://careers.smartrecruiters.com"
	smartRecruitersJobsBase  = "https://jobs.smartrecruiters.com"
	smartRecruitersPageSize  = 100
)

type SmartRecruiters struct {
	board     *board
	apiBase   string
	boardBase string
}

func NewSmartRecruiters(opts Options) *SmartRecruiters {
	s := &SmartRecruiters{
		board:     newBoard(PlatformSmartRecruiters, opts),
		apiBase:   firstNonEmpty(opts.APIBase, smartRecruitersAPIBase),
		boardBase: firstNonEmpty(opts.BoardBase, smartRecruitersBoardBase),
	}
	s.board.pageURL = s.boardURL
	s.board.structured = s.fetchAPI
	s.board.html = s.fetchBoard
	return s
}

func (s *SmartRecruiters) Name() string {
	return PlatformSmartRecruiters
}

func (s *SmartRecruiters) Fetch(ctx context.Context, criteria models.Criteria) ([]models.Posting, error) {
	return s.board.fetch(ctx, criteria)
}

func (s *SmartRecruiters) boardURL(company string) string {
	return joinURL(s.boardBase, strings.TrimSpace(company))
}

type smartRecruitersPage struct {
	Content []smartRecruitersPosting `json:"content"`
}

type smartRecruitersPosting struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location struct {
		City         string `json:"city"`
		Region       string `json:"region"`
		Country      string `json:"country"`
		FullLocation string `json:"fullLocation"`
		Remote       bool   `json:"remote"`
	} `json:"location"`
	TypeOfEmployment struct {
		Label string `json:"label"`
	} `json:"typeOfEmployment"`
}

func (s *SmartRecruiters) fetchAPI(ctx context.Context, company string) ([]rawPosting, error) {
	company = strings.TrimSpace(company)
	target := fmt.Sprintf("%s?limit=%d", joinURL(s.apiBase, company, "postings"), smartRecruitersPageSize)

	var payload smartRecruitersPage
	if err := fetchJSON(ctx, s.board.client, target, &payload); err != nil {
		return nil, err
	}
	if payload.Content == nil {
		return nil, fmt.Errorf("%w: missing content", errMalformed)
	}

	raws := make([]rawPosting, 0, len(payload.Content))
	for _, post := range payload.Content {
		location := post.Location.FullLocation
		if location == "" {
			location = joinNonEmpty(", ", post.Location.City, post.Location.Region, strings.ToUpper(post.Location.Country))
		}
		raws = append(raws, rawPosting{
			Title:    post.Name,
			URL:      joinURL(smartRecruitersJobsBase, company, post.ID),
			Location: location,
			Kind:     post.TypeOfEmployment.Label,
			Remote:   post.Location.Remote,
		})
	}
	return raws, nil
}

func (s *SmartRecruiters) fetchBoard(ctx context.Context, company string) ([]rawPosting, error) {
	doc, err := fetchDocument(ctx, s.board.client, s.boardURL(company))
	if err != nil {
		return nil, err
	}
	return parseBoardPage(doc, parseSmartRecruitersBoard)
}

func parseSmartRecruitersBoard(doc *goquery.Document) []rawPosting {
	var raws []rawPosting

	doc.Find("li.opening-job").Each(func(_ int, s *goquery.Selection) {
		anchor := s.Find("a").First()
		title := s.Find(".job-title").First().Text()
		if strings.TrimSpace(title) == "" {
			title = anchor.Text()
		}
		location := s.Find(".job-location").First().Text()
		if strings.TrimSpace(location) == "" {
			location = s.Closest("section").Find(".opening-title").First().Text()
		}
		raws = append(raws, rawPosting{
			Title:    title,
			URL:      strings.TrimSpace(anchor.AttrOr("href", "")),
			Location: location,
			Kind:     s.Find(".job-desc").First().Text(),
		})
	})

	return raws
}

func joinNonEmpty(sep string, values ...string) string {
	parts := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		parts = append(parts, value)
	}
	return strings.Join(parts, sep)
}

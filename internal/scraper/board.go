package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/jimezsa/atsscan/internal/filter"
	"github.com/jimezsa/atsscan/internal/models"
	"github.com/jimezsa/atsscan/internal/network"
	"github.com/jimezsa/atsscan/internal/ratelimit"
	"github.com/rs/zerolog"
)

// Options configures a board adapter. APIBase and BoardBase override the platform's public
// endpoints, mostly for fixtures.
type Options struct {
	Client    Doer
	Companies []string
	Limiter   *ratelimit.Limiter
	Timeout   time.Duration
	Logger    zerolog.Logger
	APIBase   string
	BoardBase string
}

// rawPosting is one record as parsed from a platform, before normalization.
type rawPosting struct {
	Title    string
	URL      string
	Location string
	Kind     string
	Remote   bool
}

type boardSource func(ctx context.Context, company string) ([]rawPosting, error)

// board runs the per-company loop shared by all adapters: structured source first, HTML board
// second, skip the company when both fail.
type board struct {
	platform   string
	companies  []string
	client     Doer
	limiter    *ratelimit.Limiter
	timeout    time.Duration
	logger     zerolog.Logger
	pageURL    func(company string) string
	structured boardSource
	html       boardSource
}

func newBoard(platform string, opts Options) *board {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = network.DefaultTimeout
	}
	return &board{
		platform:  platform,
		companies: append([]string(nil), opts.Companies...),
		client:    opts.Client,
		limiter:   opts.Limiter,
		timeout:   timeout,
		logger:    opts.Logger.With().Str("platform", platform).Logger(),
	}
}

func (b *board) fetch(ctx context.Context, criteria models.Criteria) ([]models.Posting, error) {
	if b.client == nil {
		return nil, fmt.Errorf("%s: no http client", b.platform)
	}

	matcher := filter.NewMatcher(criteria)
	var postings []models.Posting
	for i, company := range b.companies {
		if err := ctx.Err(); err != nil {
			b.logger.Warn().Err(err).Int("remaining", len(b.companies)-i).Msg("scan deadline reached; stopping")
			break
		}

		raws, err := b.fetchCompany(ctx, company)
		if err != nil {
			b.logger.Warn().Str("company", company).Err(err).Msg("company skipped")
			continue
		}

		base := b.pageURL(company)
		kept := 0
		for _, raw := range raws {
			posting, ok := toPosting(b.platform, company, base, raw)
			if !ok || !matcher.Accept(posting) {
				continue
			}
			postings = append(postings, posting)
			kept++
		}
		b.logger.Debug().Str("company", company).Int("parsed", len(raws)).Int("kept", kept).Msg("company scanned")
	}
	return postings, nil
}

func (b *board) fetchCompany(ctx context.Context, company string) ([]rawPosting, error) {
	var errs []error
	if b.structured != nil {
		raws, err := b.attempt(ctx, company, b.structured)
		if err == nil {
			return raws, nil
		}
		if ctx.Err() != nil {
			return nil, err
		}
		b.logger.Debug().Str("company", company).Err(err).Msg("structured source failed; trying board page")
		errs = append(errs, fmt.Errorf("api: %w", err))
	}
	if b.html != nil {
		raws, err := b.attempt(ctx, company, b.html)
		if err == nil {
			return raws, nil
		}
		errs = append(errs, fmt.Errorf("board: %w", err))
	}
	if len(errs) == 0 {
		return nil, ErrNotImplemented
	}
	return nil, errors.Join(errs...)
}

func (b *board) attempt(ctx context.Context, company string, source boardSource) ([]rawPosting, error) {
	if err := b.limiter.Wait(ctx, b.platform); err != nil {
		return nil, err
	}
	reqCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	return source(reqCtx, company)
}

// parseBoardPage runs the platform selectors and falls back to embedded JSON-LD when they find
// nothing. A page with neither is an empty board, not an error.
func parseBoardPage(doc *goquery.Document, parse func(*goquery.Document) []rawPosting) ([]rawPosting, error) {
	if raws := parse(doc); len(raws) > 0 {
		return raws, nil
	}
	return parseJSONLDPostings(doc), nil
}

func toPosting(platform, company, base string, raw rawPosting) (models.Posting, bool) {
	title := cleanText(raw.Title)
	if title == "" {
		return models.Posting{}, false
	}
	link := absoluteURL(strings.TrimSuffix(base, "/")+"/", strings.TrimSpace(raw.URL))
	if link == "" {
		return models.Posting{}, false
	}
	location := cleanText(raw.Location)
	return models.Posting{
		Platform:       platform,
		Company:        company,
		Title:          title,
		URL:            link,
		Location:       location,
		EmploymentKind: filter.NormalizeKind(raw.Kind, title, location),
		Remote:         raw.Remote,
	}, true
}

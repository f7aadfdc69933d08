package scraper

import (
	"context"
	"errors"

	fhttp "github.com/bogdanfinn/fhttp"
	"github.com/jimezsa/atsscan/internal/models"
)

var ErrNotImplemented = errors.New("adapter not implemented")

// Adapter fetches accepted postings from one ATS platform for every company in its roster.
// Per-company failures are logged and skipped inside Fetch.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context, criteria models.Criteria) ([]models.Posting, error)
}

// Doer sends HTTP requests. *network.Client satisfies it.
type Doer interface {
	Do(req *fhttp.Request) (*fhttp.Response, error)
}

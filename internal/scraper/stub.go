package scraper

import (
	"context"
	"fmt"
	"strings"

	"github.com/jimezsa/atsscan/internal/models"
)

const (
	stubRoles    = 2
	stubLocation = "Toronto, ON (Remote)"
)

// Stub fabricates sample postings for a platform that has no adapter yet. Output depends only on
// the platform name and the first two roles, and is not filtered.
type Stub struct {
	platform string
}

func NewStub(platform string) *Stub {
	return &Stub{platform: strings.TrimSpace(platform)}
}

func (s *Stub) Name() string {
	return s.platform
}

func (s *Stub) Fetch(ctx context.Context, criteria models.Criteria) ([]models.Posting, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.platform == "" {
		return nil, nil
	}
	roles := make([]string, 0, stubRoles)
	for _, role := range criteria.Roles {
		role = strings.TrimSpace(role)
		if role == "" {
			continue
		}
		roles = append(roles, role)
		if len(roles) == stubRoles {
			break
		}
	}

	slug := PlatformKey(s.platform)
	postings := make([]models.Posting, 0, len(roles))
	for i, role := range roles {
		postings = append(postings, models.Posting{
			Platform:       s.platform,
			Company:        s.platform + " Partner Co (sample)",
			Title:          role,
			URL:            fmt.Sprintf("https://example.com/jobs/%s/%d", slug, i+1),
			Location:       stubLocation,
			EmploymentKind: models.KindFullTime,
		})
	}
	return postings, nil
}

package scraper

import (
	"context"
	"testing"

	"github.com/jimezsa/atsscan/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const leverPostingsJSON = `[
  {
    "text": "Senior Backend Engineer",
    "hostedUrl": "https://jobs.lever.co/acme/1111",
    "workplaceType": "remote",
    "categories": {"location": "Toronto", "commitment": "Full-time", "team": "Platform"}
  },
  {
    "text": "Backend Engineer (Contract)",
    "hostedUrl": "https://jobs.lever.co/acme/2222",
    "workplaceType": "onsite",
    "categories": {"location": "Montreal", "commitment": "Contractor"}
  }
]`

func TestLeverAPI(t *testing.T) {
	doer := newFixtureDoer(map[string]fixture{
		"https://api.test/boards/acme?mode=json": {body: leverPostingsJSON},
	})
	adapter := NewLever(testOptions(doer, "acme"))

	postings, err := adapter.Fetch(context.Background(), models.Criteria{
		Roles:    []string{"Backend Engineer"},
		Regions:  []string{"Canada"},
		JobTypes: []string{"Fulltime-Remote"},
	})
	require.NoError(t, err)
	require.Len(t, postings, 1)

	assert.Equal(t, PlatformLever, postings[0].Platform)
	assert.Equal(t, "Toronto", postings[0].Location)
	assert.True(t, postings[0].Remote)
	assert.Equal(t, models.KindFullTime, postings[0].EmploymentKind)
	assert.Equal(t, "https://jobs.lever.co/acme/1111", postings[0].URL)
}

func TestLeverAPIContract(t *testing.T) {
	doer := newFixtureDoer(map[string]fixture{
		"https://api.test/boards/acme?mode=json": {body: leverPostingsJSON},
	})
	adapter := NewLever(testOptions(doer, "acme"))

	postings, err := adapter.Fetch(context.Background(), models.Criteria{
		Roles:    []string{"Backend Engineer"},
		JobTypes: []string{"Contract"},
	})
	require.NoError(t, err)
	require.Len(t, postings, 1)
	assert.Equal(t, "https://jobs.lever.co/acme/2222", postings[0].URL)
	assert.Equal(t, models.KindContract, postings[0].EmploymentKind)
}

func TestParseLeverBoard(t *testing.T) {
	html := `
<html><body>
  <div class="posting">
    <a class="posting-title" href="https://jobs.lever.co/acme/3333">
      <h5 data-qa="posting-name">Data Engineer</h5>
      <div class="posting-categories">
        <span class="sort-by-location">Ottawa</span>
        <span class="sort-by-commitment">Full-time</span>
        <span class="workplaceTypes">Hybrid</span>
      </div>
    </a>
  </div>
  <div class="posting">
    <a class="posting-title" href="/acme/4444">
      <h5>Analytics Engineer</h5>
      <span class="location">Calgary</span>
      <span class="workplaceTypes">Remote</span>
    </a>
  </div>
</body></html>`

	raws := parseLeverBoard(mustDoc(t, html))
	require.Len(t, raws, 2)

	assert.Equal(t, "Data Engineer", cleanText(raws[0].Title))
	assert.Equal(t, "Ottawa", raws[0].Location)
	assert.Equal(t, "Full-time", raws[0].Kind)
	assert.False(t, raws[0].Remote)

	assert.Equal(t, "Analytics Engineer", raws[1].Title)
	assert.Equal(t, "/acme/4444", raws[1].URL)
	assert.Equal(t, "Calgary", raws[1].Location)
	assert.True(t, raws[1].Remote)
}

func TestLeverBoardFallback(t *testing.T) {
	doer := newFixtureDoer(map[string]fixture{
		"https://api.test/boards/acme?mode=json": {status: 429},
		"https://boards.test/acme": {body: `<div class="posting"><a class="posting-title" href="/acme/5"><h5>Data Engineer</h5><span class="location">Toronto</span></a></div>`},
	})
	adapter := NewLever(testOptions(doer, "acme"))

	postings, err := adapter.Fetch(context.Background(), models.Criteria{Roles: []string{"Data Engineer"}})
	require.NoError(t, err)
	require.Len(t, postings, 1)
	assert.Equal(t, "https://boards.test/acme/5", postings[0].URL)
}

func TestLeverIsolatesCompanyFailures(t *testing.T) {
	doer := newFixtureDoer(map[string]fixture{
		"https://api.test/boards/broken?mode=json": {err: errConnReset},
		"https://boards.test/broken":               {status: 503},
		"https://api.test/boards/acme?mode=json":   {body: leverPostingsJSON},
	})
	adapter := NewLever(testOptions(doer, "broken", "acme"))

	postings, err := adapter.Fetch(context.Background(), models.Criteria{Roles: []string{"Backend Engineer"}})
	require.NoError(t, err)
	require.Len(t, postings, 2)
	for _, p := range postings {
		assert.Equal(t, "acme", p.Company)
	}
	assert.Len(t, doer.Requests(), 3)
}

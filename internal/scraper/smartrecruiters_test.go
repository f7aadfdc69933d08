package scraper

import (
	"context"
	"testing"

	"github.com/jimezsa/atsscan/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmartRecruitersAPI(t *testing.T) {
	doer := newFixtureDoer(map[string]fixture{
		"https://api.test/boards/Acme/postings?limit=100": {body: `{
  "offset": 0,
  "limit": 100,
  "totalFound": 2,
  "content": [
    {"id": "744000001", "name": "Site Reliability Engineer", "location": {"city": "Toronto", "region": "ON", "country": "ca", "remote": true}, "typeOfEmployment": {"label": "Full-time"}},
    {"id": "744000002", "name": "Site Reliability Engineer", "location": {"fullLocation": "Austin, TX, United States"}, "typeOfEmployment": {"label": "Full-time"}}
  ]
}`},
	})
	adapter := NewSmartRecruiters(testOptions(doer, "Acme"))

	postings, err := adapter.Fetch(context.Background(), models.Criteria{
		Roles:   []string{"Site Reliability Engineer"},
		Regions: []string{"Canada"},
	})
	require.NoError(t, err)
	require.Len(t, postings, 1)

	assert.Equal(t, models.Posting{
		Platform:       PlatformSmartRecruiters,
		Company:        "Acme",
		Title:          "Site Reliability Engineer",
		URL:            "https://jobs.smartrecruiters.com/Acme/744000001",
		Location:       "Toronto, ON, CA",
		EmploymentKind: models.KindFullTime,
		Remote:         true,
	}, postings[0])
}

func TestParseSmartRecruitersBoard(t *testing.T) {
	html := `
<html><body>
  <section>
    <h3 class="opening-title">Toronto, ON, Canada</h3>
    <ul>
      <li class="opening-job">
        <a href="https://jobs.smartrecruiters.com/Acme/1"><h4 class="job-title">QA Engineer</h4></a>
        <span class="job-desc">Contract</span>
      </li>
      <li class="opening-job">
        <a href="https://jobs.smartrecruiters.com/Acme/2">Support Engineer</a>
        <span class="job-location">Halifax, NS</span>
      </li>
    </ul>
  </section>
</body></html>`

	raws := parseSmartRecruitersBoard(mustDoc(t, html))
	require.Len(t, raws, 2)

	assert.Equal(t, "QA Engineer", raws[0].Title)
	assert.Equal(t, "Toronto, ON, Canada", raws[0].Location)
	assert.Equal(t, "Contract", raws[0].Kind)
	assert.Equal(t, "Support Engineer", raws[1].Title)
	assert.Equal(t, "Halifax, NS", raws[1].Location)
}

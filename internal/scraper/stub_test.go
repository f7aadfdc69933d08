package scraper

import (
	"context"
	"testing"

	"github.com/jimezsa/atsscan/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubIsDeterministic(t *testing.T) {
	stub := NewStub("Workday")
	criteria := models.Criteria{Roles: []string{"", "Data Analyst", "ML Engineer", "Product Manager"}}

	first, err := stub.Fetch(context.Background(), criteria)
	require.NoError(t, err)
	second, err := stub.Fetch(context.Background(), criteria)
	require.NoError(t, err)

	require.Len(t, first, 2)
	assert.Equal(t, first, second)

	assert.Equal(t, "Workday", stub.Name())
	assert.Equal(t, models.Posting{
		Platform:       "Workday",
		Company:        "Workday Partner Co (sample)",
		Title:          "Data Analyst",
		URL:            "https://example.com/jobs/workday/1",
		Location:       "Toronto, ON (Remote)",
		EmploymentKind: models.KindFullTime,
	}, first[0])
	assert.Equal(t, "ML Engineer", first[1].Title)
	assert.Equal(t, "https://example.com/jobs/workday/2", first[1].URL)
}

func TestStubSingleRole(t *testing.T) {
	postings, err := NewStub("Taleo").Fetch(context.Background(), models.Criteria{Roles: []string{"Designer"}})
	require.NoError(t, err)
	assert.Len(t, postings, 1)
}

func TestStubHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	postings, err := NewStub("Workday").Fetch(ctx, models.Criteria{Roles: []string{"Designer"}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, postings)
}

func TestStubWithoutPlatformProducesNothing(t *testing.T) {
	postings, err := NewStub("  ").Fetch(context.Background(), models.Criteria{Roles: []string{"Designer"}})
	require.NoError(t, err)
	assert.Empty(t, postings)
}

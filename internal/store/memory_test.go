package store

import (
	"context"
	"testing"

	"github.com/jimezsa/atsscan/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCriteria = models.Criteria{
	Platforms: []string{"Greenhouse"},
	Roles:     []string{"ML Engineer"},
	Regions:   []string{"Canada"},
}

var testPostings = []models.Posting{
	{Platform: "Greenhouse", Company: "acme", Title: "ML Engineer", URL: "https://example.com/1", Location: "Toronto, ON", EmploymentKind: models.KindFullTime},
	{Platform: "Greenhouse", Company: "acme", Title: "Senior ML Engineer", URL: "https://example.com/2", Location: "", EmploymentKind: "Internship"},
}

// exerciseStore runs the scan lifecycle against any store implementation.
func exerciseStore(t *testing.T, s interface {
	CreateScan(context.Context, models.Criteria) (models.Scan, error)
	MarkProcessing(context.Context, string) error
	InsertPostings(context.Context, string, []models.Posting) error
	CompleteScan(context.Context, string, int) error
	FailScan(context.Context, string, string) error
	GetScan(context.Context, string) (models.Scan, error)
	ListPostings(context.Context, string) ([]models.Posting, error)
}) {
	t.Helper()
	ctx := context.Background()

	scan, err := s.CreateScan(ctx, testCriteria)
	require.NoError(t, err)
	require.NotEmpty(t, scan.ID)
	assert.Equal(t, models.ScanPending, scan.Status)

	require.NoError(t, s.MarkProcessing(ctx, scan.ID))
	got, err := s.GetScan(ctx, scan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ScanProcessing, got.Status)
	assert.Equal(t, testCriteria, got.Criteria)

	require.NoError(t, s.InsertPostings(ctx, scan.ID, testPostings[:1]))
	require.NoError(t, s.InsertPostings(ctx, scan.ID, testPostings[1:]))
	require.NoError(t, s.CompleteScan(ctx, scan.ID, len(testPostings)))

	got, err = s.GetScan(ctx, scan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ScanCompleted, got.Status)
	assert.Equal(t, 2, got.TotalFound)
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))

	postings, err := s.ListPostings(ctx, scan.ID)
	require.NoError(t, err)
	assert.Equal(t, testPostings, postings)

	failed, err := s.CreateScan(ctx, testCriteria)
	require.NoError(t, err)
	require.NoError(t, s.FailScan(ctx, failed.ID, "insert postings: boom"))
	got, err = s.GetScan(ctx, failed.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ScanFailed, got.Status)
	assert.Equal(t, "insert postings: boom", got.ErrorMessage)

	missing := "00000000-0000-0000-0000-000000000000"
	_, err = s.GetScan(ctx, missing)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.MarkProcessing(ctx, missing), ErrNotFound)
	assert.ErrorIs(t, s.CompleteScan(ctx, "not-a-scan", 0), ErrNotFound)
	_, err = s.ListPostings(ctx, missing)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryLifecycle(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestMemoryListPostingsReturnsCopy(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	scan, err := m.CreateScan(ctx, testCriteria)
	require.NoError(t, err)
	require.NoError(t, m.InsertPostings(ctx, scan.ID, testPostings))

	postings, err := m.ListPostings(ctx, scan.ID)
	require.NoError(t, err)
	postings[0].Title = "changed"

	again, err := m.ListPostings(ctx, scan.ID)
	require.NoError(t, err)
	assert.Equal(t, "ML Engineer", again[0].Title)
}

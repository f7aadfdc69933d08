package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jimezsa/atsscan/internal/models"
)

// Memory is a process-local store, used when no database is configured.
type Memory struct {
	mu       sync.RWMutex
	scans    map[string]models.Scan
	postings map[string][]models.Posting
	now      func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		scans:    map[string]models.Scan{},
		postings: map[string][]models.Posting{},
		now:      time.Now,
	}
}

func (m *Memory) CreateScan(_ context.Context, criteria models.Criteria) (models.Scan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	scan := models.Scan{
		ID:        uuid.NewString(),
		Criteria:  criteria,
		Status:    models.ScanPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.scans[scan.ID] = scan
	return scan, nil
}

func (m *Memory) MarkProcessing(_ context.Context, scanID string) error {
	return m.update(scanID, func(scan *models.Scan) {
		scan.Status = models.ScanProcessing
	})
}

func (m *Memory) InsertPostings(_ context.Context, scanID string, postings []models.Posting) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.scans[scanID]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, scanID)
	}
	m.postings[scanID] = append(m.postings[scanID], postings...)
	return nil
}

func (m *Memory) CompleteScan(_ context.Context, scanID string, total int) error {
	return m.update(scanID, func(scan *models.Scan) {
		scan.Status = models.ScanCompleted
		scan.TotalFound = total
		scan.ErrorMessage = ""
	})
}

func (m *Memory) FailScan(_ context.Context, scanID string, message string) error {
	return m.update(scanID, func(scan *models.Scan) {
		scan.Status = models.ScanFailed
		scan.ErrorMessage = message
	})
}

func (m *Memory) GetScan(_ context.Context, scanID string) (models.Scan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	scan, ok := m.scans[scanID]
	if !ok {
		return models.Scan{}, fmt.Errorf("%w: %s", ErrNotFound, scanID)
	}
	return scan, nil
}

func (m *Memory) ListPostings(_ context.Context, scanID string) ([]models.Posting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.scans[scanID]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, scanID)
	}
	return append([]models.Posting(nil), m.postings[scanID]...), nil
}

func (m *Memory) update(scanID string, apply func(*models.Scan)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	scan, ok := m.scans[scanID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, scanID)
	}
	apply(&scan)
	scan.UpdatedAt = m.now().UTC()
	m.scans[scanID] = scan
	return nil
}

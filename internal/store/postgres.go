package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimezsa/atsscan/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS scans (
	id            UUID PRIMARY KEY,
	filters       JSONB NOT NULL,
	status        TEXT NOT NULL,
	total_found   INTEGER NOT NULL DEFAULT 0,
	error_message TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS postings (
	id              BIGSERIAL PRIMARY KEY,
	scan_id         UUID NOT NULL REFERENCES scans(id) ON DELETE CASCADE,
	position        INTEGER NOT NULL,
	platform        TEXT NOT NULL,
	company         TEXT NOT NULL,
	title           TEXT NOT NULL,
	url             TEXT NOT NULL,
	location        TEXT NOT NULL,
	employment_kind TEXT NOT NULL,
	remote          BOOLEAN NOT NULL DEFAULT false
);

ALTER TABLE postings ADD COLUMN IF NOT EXISTS remote BOOLEAN NOT NULL DEFAULT false;

CREATE INDEX IF NOT EXISTS postings_scan_id_idx ON postings (scan_id, position);
`

var postingColumns = []string{"scan_id", "position", "platform", "company", "title", "url", "location", "employment_kind", "remote"}

// NewPostgresPool creates and verifies a pgxpool connection pool.
func NewPostgresPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	return pool, nil
}

type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// EnsureSchema creates the scans and postings tables when missing.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (p *Postgres) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

func (p *Postgres) CreateScan(ctx context.Context, criteria models.Criteria) (models.Scan, error) {
	filters, err := json.Marshal(criteria)
	if err != nil {
		return models.Scan{}, fmt.Errorf("encode filters: %w", err)
	}

	id := uuid.New()
	scan := models.Scan{
		ID:       id.String(),
		Criteria: criteria,
		Status:   models.ScanPending,
	}
	err = p.pool.QueryRow(ctx, `
		INSERT INTO scans (id, filters, status)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at`,
		id, filters, string(scan.Status),
	).Scan(&scan.CreatedAt, &scan.UpdatedAt)
	if err != nil {
		return models.Scan{}, fmt.Errorf("insert scan: %w", err)
	}
	return scan, nil
}

func (p *Postgres) MarkProcessing(ctx context.Context, scanID string) error {
	return p.exec(ctx, scanID, `UPDATE scans SET status = $2, updated_at = now() WHERE id = $1`,
		string(models.ScanProcessing))
}

// InsertPostings appends postings with COPY, keeping their order.
func (p *Postgres) InsertPostings(ctx context.Context, scanID string, postings []models.Posting) error {
	if len(postings) == 0 {
		return nil
	}

	id, err := parseID(scanID)
	if err != nil {
		return err
	}

	var offset int
	if err := p.pool.QueryRow(ctx, `SELECT COALESCE(MAX(position) + 1, 0) FROM postings WHERE scan_id = $1`, id).Scan(&offset); err != nil {
		return fmt.Errorf("posting offset: %w", err)
	}

	_, err = p.pool.CopyFrom(ctx, pgx.Identifier{"postings"}, postingColumns,
		pgx.CopyFromSlice(len(postings), func(i int) ([]any, error) {
			posting := postings[i]
			return []any{
				id,
				offset + i,
				posting.Platform,
				posting.Company,
				posting.Title,
				posting.URL,
				posting.Location,
				posting.EmploymentKind,
				posting.Remote,
			}, nil
		}))
	if err != nil {
		return fmt.Errorf("copy postings: %w", err)
	}
	return nil
}

func (p *Postgres) CompleteScan(ctx context.Context, scanID string, total int) error {
	return p.exec(ctx, scanID, `
		UPDATE scans SET status = $2, total_found = $3, error_message = '', updated_at = now()
		WHERE id = $1`,
		string(models.ScanCompleted), total)
}

func (p *Postgres) FailScan(ctx context.Context, scanID string, message string) error {
	return p.exec(ctx, scanID, `UPDATE scans SET status = $2, error_message = $3, updated_at = now() WHERE id = $1`,
		string(models.ScanFailed), message)
}

func (p *Postgres) GetScan(ctx context.Context, scanID string) (models.Scan, error) {
	id, err := parseID(scanID)
	if err != nil {
		return models.Scan{}, err
	}

	var (
		scan    models.Scan
		filters []byte
		status  string
	)
	err = p.pool.QueryRow(ctx, `
		SELECT id::text, filters, status, total_found, error_message, created_at, updated_at
		FROM scans WHERE id = $1`, id,
	).Scan(&scan.ID, &filters, &status, &scan.TotalFound, &scan.ErrorMessage, &scan.CreatedAt, &scan.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Scan{}, fmt.Errorf("%w: %s", ErrNotFound, scanID)
	}
	if err != nil {
		return models.Scan{}, fmt.Errorf("get scan: %w", err)
	}
	if err := json.Unmarshal(filters, &scan.Criteria); err != nil {
		return models.Scan{}, fmt.Errorf("decode filters: %w", err)
	}
	scan.Status = models.ScanStatus(status)
	return scan, nil
}

func (p *Postgres) ListPostings(ctx context.Context, scanID string) ([]models.Posting, error) {
	scan, err := p.GetScan(ctx, scanID)
	if err != nil {
		return nil, err
	}

	rows, err := p.pool.Query(ctx, `
		SELECT platform, company, title, url, location, employment_kind, remote
		FROM postings WHERE scan_id = $1 ORDER BY position`, uuid.MustParse(scan.ID))
	if err != nil {
		return nil, fmt.Errorf("list postings: %w", err)
	}
	postings, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Posting, error) {
		var posting models.Posting
		err := row.Scan(&posting.Platform, &posting.Company, &posting.Title, &posting.URL, &posting.Location, &posting.EmploymentKind, &posting.Remote)
		return posting, err
	})
	if err != nil {
		return nil, fmt.Errorf("list postings: %w", err)
	}
	return postings, nil
}

// exec runs a status update; args follow the scan id, which is bound as $1.
func (p *Postgres) exec(ctx context.Context, scanID string, query string, args ...any) error {
	id, err := parseID(scanID)
	if err != nil {
		return err
	}
	tag, err := p.pool.Exec(ctx, query, append([]any{id}, args...)...)
	if err != nil {
		return fmt.Errorf("update scan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, scanID)
	}
	return nil
}

// parseID maps malformed ids to ErrNotFound; such ids can never name a stored scan.
func parseID(scanID string) (uuid.UUID, error) {
	id, err := uuid.Parse(scanID)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("%w: %s", ErrNotFound, scanID)
	}
	return id, nil
}

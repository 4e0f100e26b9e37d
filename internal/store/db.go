package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"

	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/jobs"
)

type Store struct {
	db *sql.DB
}

func NewStore(connStr string) (*Store, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) RunMigrations(schemaPath string) error {
	content, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, string(content)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	return nil
}

func clampLimit(limit int, defaultLimit, maxLimit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

// SyncRun records one orchestrated fetch for a company, successful or not.
type SyncRun struct {
	ID        int       `json:"id"`
	CompanyID string    `json:"company_id"`
	Source    string    `json:"source"`
	Method    string    `json:"method"`
	Success   bool      `json:"success"`
	JobCount  int       `json:"job_count"`
	Error     string    `json:"error,omitempty"`
	StartedAt time.Time `json:"started_at"`
}

func (s *Store) SaveJob(ctx context.Context, companyID string, job jobs.Job) error {
	rawData, err := json.Marshal(job.RawData)
	if err != nil {
		return fmt.Errorf("failed to encode raw data: %w", err)
	}

	var postedAt any
	if t, perr := time.Parse(time.RFC3339, job.PostedDate); perr == nil {
		postedAt = t
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO jobs (job_id, company_id, title, description, location, department, employment_type, posted_at, apply_url, source, processed_at, raw_data)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (job_id) DO UPDATE SET
    title = EXCLUDED.title,
    description = EXCLUDED.description,
    location = EXCLUDED.location,
    department = EXCLUDED.department,
    employment_type = EXCLUDED.employment_type,
    posted_at = COALESCE(jobs.posted_at, EXCLUDED.posted_at),
    apply_url = EXCLUDED.apply_url,
    source = EXCLUDED.source,
    processed_at = EXCLUDED.processed_at,
    raw_data = EXCLUDED.raw_data,
    updated_at = NOW()
`, job.ID, companyID, job.Title, job.Description, job.Location, job.Department, job.Type, postedAt, job.ApplyURL, job.Source, job.ProcessedAt, rawData)
	return err
}

func (s *Store) GetJobs(ctx context.Context, companyID string, limit, offset int) ([]jobs.Job, error) {
	limit = clampLimit(limit, 20, 200)
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT job_id, title, description, location, department, employment_type, posted_at, apply_url, source, processed_at, raw_data
FROM jobs
WHERE ($1 = '' OR company_id = $1)
ORDER BY COALESCE(posted_at, processed_at) DESC
LIMIT $2 OFFSET $3
`, companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []jobs.Job
	for rows.Next() {
		var (
			j        jobs.Job
			postedAt sql.NullTime
			rawData  []byte
		)

		if err := rows.Scan(
			&j.ID,
			&j.Title,
			&j.Description,
			&j.Location,
			&j.Department,
			&j.Type,
			&postedAt,
			&j.ApplyURL,
			&j.Source,
			&j.ProcessedAt,
			&rawData,
		); err != nil {
			return nil, err
		}

		if postedAt.Valid {
			j.PostedDate = postedAt.Time.UTC().Format(time.RFC3339)
		}
		if len(rawData) > 0 {
			var raw jobs.RawRecord
			if err := json.Unmarshal(rawData, &raw); err == nil {
				j.RawData = raw
			}
		}

		out = append(out, j)
	}
	return out, rows.Err()
}

func (s *Store) SaveSyncRun(ctx context.Context, run SyncRun) (int, error) {
	var id int
	err := s.db.QueryRowContext(ctx, `
INSERT INTO sync_runs (company_id, source, method, success, job_count, error, started_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id
`, run.CompanyID, run.Source, run.Method, run.Success, run.JobCount, run.Error, run.StartedAt).Scan(&id)
	return id, err
}

func (s *Store) ListSyncRuns(ctx context.Context, limit, offset int) ([]SyncRun, error) {
	limit = clampLimit(limit, 20, 200)
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, company_id, source, method, success, job_count, COALESCE(error, ''), started_at
FROM sync_runs
ORDER BY started_at DESC
LIMIT $1 OFFSET $2
`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []SyncRun
	for rows.Next() {
		var run SyncRun
		if err := rows.Scan(
			&run.ID,
			&run.CompanyID,
			&run.Source,
			&run.Method,
			&run.Success,
			&run.JobCount,
			&run.Error,
			&run.StartedAt,
		); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

func (s *Store) DeleteOldJobs(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	res, err := s.db.ExecContext(ctx, `
DELETE FROM jobs
WHERE COALESCE(posted_at, processed_at) < $1
`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

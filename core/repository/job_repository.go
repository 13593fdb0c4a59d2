package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"img2latex-console/core/models"
)

// ErrNotFound is returned when a job has no stored snapshot
var ErrNotFound = errors.New("not found")

// JobRepository stores the latest observed snapshot of each job
type JobRepository struct {
	db  *DB
	now func() time.Time
}

// NewJobRepository creates a new job repository
func NewJobRepository(db *DB) *JobRepository {
	return &JobRepository{db: db, now: time.Now}
}

// RecordSnapshot upserts job and, when the status changed (from is set) or
// the job was just submitted, appends a job event in the same transaction.
// A DONE job with an artifacts path also records an adapter artifact.
// Snapshots without logs or artifacts path, as the job list returns them,
// keep the stored values.
func (r *JobRepository) RecordSnapshot(ctx context.Context, job *models.TrainingJob, from *models.JobStatus, reason string) error {
	configJSON, err := json.Marshal(job.Config)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	logs := job.Logs
	if logs == nil {
		logs = []string{}
	}
	logsJSON, err := json.Marshal(logs)
	if err != nil {
		return fmt.Errorf("encode logs: %w", err)
	}

	var updatedAt sql.NullTime
	if job.UpdatedAt != nil && !job.UpdatedAt.IsZero() {
		updatedAt = sql.NullTime{Time: job.UpdatedAt.UTC(), Valid: true}
	}
	var artifactsPath sql.NullString
	if job.ArtifactsPath != nil {
		artifactsPath = sql.NullString{String: *job.ArtifactsPath, Valid: true}
	}
	createdAt := job.CreatedAt.Time
	if createdAt.IsZero() {
		createdAt = r.now()
	}
	now := r.now().UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO jobs (id, status, config_json, logs_json, artifacts_path, created_at, updated_at, observed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			status = excluded.status,
			config_json = excluded.config_json,
			logs_json = CASE WHEN excluded.logs_json = '[]' THEN jobs.logs_json ELSE excluded.logs_json END,
			artifacts_path = COALESCE(excluded.artifacts_path, jobs.artifacts_path),
			updated_at = excluded.updated_at,
			observed_at = excluded.observed_at
	`
	_, err = tx.ExecContext(ctx, query,
		job.ID.String(),
		string(job.Status),
		string(configJSON),
		string(logsJSON),
		artifactsPath,
		createdAt.UTC(),
		updatedAt,
		now,
	)
	if err != nil {
		return fmt.Errorf("upsert job %s: %w", job.ID, err)
	}

	if from != nil || reason == models.ReasonSubmitted {
		if err := r.createJobEventTx(ctx, tx, job.ID, from, job.Status, reason, now); err != nil {
			return err
		}
	}

	if job.Status == models.JobStatusDone && artifactsPath.Valid {
		if err := createArtifactTx(ctx, tx, job.ID, models.ArtifactTypeAdapter, artifactsPath.String, now); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *JobRepository) createJobEventTx(ctx context.Context, tx *sql.Tx, jobID models.JobID, fromStatus *models.JobStatus, toStatus models.JobStatus, reason string, at time.Time) error {
	query := `
		INSERT INTO job_events (job_id, at, from_status, to_status, reason)
		VALUES ($1, $2, $3, $4, $5)
	`

	var fromStatusStr sql.NullString
	if fromStatus != nil {
		fromStatusStr = sql.NullString{String: string(*fromStatus), Valid: true}
	}

	if _, err := tx.ExecContext(ctx, query, jobID.String(), at, fromStatusStr, string(toStatus), reason); err != nil {
		return fmt.Errorf("insert job event for %s: %w", jobID, err)
	}
	return nil
}

// GetJob retrieves the stored snapshot of a job
func (r *JobRepository) GetJob(ctx context.Context, id models.JobID) (*models.TrainingJob, error) {
	query := `
		SELECT id, status, config_json, logs_json, artifacts_path, created_at, updated_at
		FROM jobs
		WHERE id = $1
	`
	job, err := scanJob(r.db.QueryRowContext(ctx, query, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	return job, err
}

// ListJobs lists stored snapshots, most recent first
func (r *JobRepository) ListJobs(ctx context.Context, status *models.JobStatus, limit int) ([]models.TrainingJob, error) {
	query := `
		SELECT id, status, config_json, logs_json, artifacts_path, created_at, updated_at
		FROM jobs
	`
	args := []interface{}{}
	argIndex := 1

	if status != nil {
		query += fmt.Sprintf(" WHERE status = $%d", argIndex)
		args = append(args, string(*status))
		argIndex++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argIndex)
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := []models.TrainingJob{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row rowScanner) (*models.TrainingJob, error) {
	var (
		job           models.TrainingJob
		id            string
		status        string
		configJSON    string
		logsJSON      string
		artifactsPath sql.NullString
		createdAt     time.Time
		updatedAt     sql.NullTime
	)

	if err := row.Scan(&id, &status, &configJSON, &logsJSON, &artifactsPath, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	job.ID = models.JobID(id)
	job.Status = models.JobStatus(status)
	job.CreatedAt = models.NewTimestamp(createdAt)
	if err := json.Unmarshal([]byte(configJSON), &job.Config); err != nil {
		return nil, fmt.Errorf("decode config of job %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(logsJSON), &job.Logs); err != nil {
		return nil, fmt.Errorf("decode logs of job %s: %w", id, err)
	}
	if artifactsPath.Valid {
		job.ArtifactsPath = &artifactsPath.String
	}
	if updatedAt.Valid {
		ts := models.NewTimestamp(updatedAt.Time)
		job.UpdatedAt = &ts
	}
	return &job, nil
}

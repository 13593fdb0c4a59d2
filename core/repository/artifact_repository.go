package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"img2latex-console/core/models"
)

// ArtifactRepository handles database operations for job artifacts
type ArtifactRepository struct {
	db *DB
}

// NewArtifactRepository creates a new artifact repository
func NewArtifactRepository(db *DB) *ArtifactRepository {
	return &ArtifactRepository{db: db}
}

// ListArtifacts retrieves artifacts, newest first, optionally filtered by job and type
func (r *ArtifactRepository) ListArtifacts(ctx context.Context, jobID *models.JobID, artifactType *models.ArtifactType) ([]models.JobArtifact, error) {
	query := `
		SELECT id, job_id, type, uri, created_at
		FROM job_artifacts
		WHERE 1 = 1
	`
	args := []interface{}{}
	argIndex := 1

	if jobID != nil {
		query += fmt.Sprintf(" AND job_id = $%d", argIndex)
		args = append(args, jobID.String())
		argIndex++
	}
	if artifactType != nil {
		query += fmt.Sprintf(" AND type = $%d", argIndex)
		args = append(args, string(*artifactType))
		argIndex++
	}

	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	artifacts := []models.JobArtifact{}
	for rows.Next() {
		var artifact models.JobArtifact
		var id, typ string

		if err := rows.Scan(&artifact.ID, &id, &typ, &artifact.URI, &artifact.CreatedAt); err != nil {
			return nil, err
		}
		artifact.JobID = models.JobID(id)
		artifact.Type = models.ArtifactType(typ)
		artifacts = append(artifacts, artifact)
	}

	return artifacts, rows.Err()
}

// CreateArtifact records an artifact; recording the same one twice is a no-op
func (r *ArtifactRepository) CreateArtifact(ctx context.Context, jobID models.JobID, artifactType models.ArtifactType, uri string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := createArtifactTx(ctx, tx, jobID, artifactType, uri, time.Now().UTC()); err != nil {
		return err
	}
	return tx.Commit()
}

func createArtifactTx(ctx context.Context, tx *sql.Tx, jobID models.JobID, artifactType models.ArtifactType, uri string, at time.Time) error {
	query := `
		INSERT INTO job_artifacts (job_id, type, uri, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (job_id, type, uri) DO NOTHING
	`
	if _, err := tx.ExecContext(ctx, query, jobID.String(), string(artifactType), uri, at); err != nil {
		return fmt.Errorf("insert artifact for %s: %w", jobID, err)
	}
	return nil
}

package repository

import (
	"context"
	"database/sql"

	"img2latex-console/core/models"
)

// EventRepository handles database operations for job events
type EventRepository struct {
	db *DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{db: db}
}

// GetJobEvents retrieves the transitions observed for a job, oldest first
func (r *EventRepository) GetJobEvents(ctx context.Context, jobID models.JobID, limit int) ([]models.JobEvent, error) {
	query := `
		SELECT id, job_id, at, from_status, to_status, reason
		FROM job_events
		WHERE job_id = $1
		ORDER BY id ASC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, jobID.String(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []models.JobEvent{}
	for rows.Next() {
		var event models.JobEvent
		var id string
		var fromStatus sql.NullString
		var toStatus string

		if err := rows.Scan(&event.ID, &id, &event.At, &fromStatus, &toStatus, &event.Reason); err != nil {
			return nil, err
		}

		event.JobID = models.JobID(id)
		event.ToStatus = models.JobStatus(toStatus)
		if fromStatus.Valid {
			status := models.JobStatus(fromStatus.String)
			event.FromStatus = &status
		}

		events = append(events, event)
	}

	return events, rows.Err()
}

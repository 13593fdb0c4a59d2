package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"img2latex-console/core/models"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// Subject suffixes appended to the configured prefix
const (
	StatusSuffix  = ".status"
	SettledSuffix = ".settled"
)

// TransitionEvent is the message published for every status change
type TransitionEvent struct {
	JobID         models.JobID      `json:"job_id"`
	From          *models.JobStatus `json:"from,omitempty"`
	To            models.JobStatus  `json:"to"`
	ArtifactsPath *string           `json:"artifacts_path,omitempty"`
	At            int64             `json:"at"`
}

// Conn is the subset of *nats.Conn the publisher uses
type Conn interface {
	Publish(subject string, data []byte) error
	FlushTimeout(timeout time.Duration) error
	Close()
}

// Publisher sends job transitions to NATS
type Publisher struct {
	conn    Conn
	subject string
	logger  logrus.FieldLogger
}

// Connect dials NATS and returns a publisher for subject
func Connect(url, subject string, logger logrus.FieldLogger) (*Publisher, error) {
	nc, err := nats.Connect(url, nats.Name("img2latex-console"))
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", url, err)
	}
	return NewPublisher(nc, subject, logger), nil
}

// NewPublisher wraps an existing connection
func NewPublisher(conn Conn, subject string, logger logrus.FieldLogger) *Publisher {
	return &Publisher{conn: conn, subject: subject, logger: logger}
}

// PublishTransition publishes job's new status, and a settled message once
// the job reaches DONE or FAILED
func (p *Publisher) PublishTransition(ctx context.Context, job *models.TrainingJob, from *models.JobStatus) error {
	data, err := json.Marshal(TransitionEvent{
		JobID:         job.ID,
		From:          from,
		To:            job.Status,
		ArtifactsPath: job.ArtifactsPath,
		At:            time.Now().Unix(),
	})
	if err != nil {
		return fmt.Errorf("serialize transition: %w", err)
	}

	if err := p.conn.Publish(p.subject+StatusSuffix, data); err != nil {
		return fmt.Errorf("publish %s: %w", p.subject+StatusSuffix, err)
	}
	if job.IsSettled() {
		if err := p.conn.Publish(p.subject+SettledSuffix, data); err != nil {
			return fmt.Errorf("publish %s: %w", p.subject+SettledSuffix, err)
		}
	}

	p.logger.WithFields(logrus.Fields{
		"job_id": job.ID,
		"status": job.Status,
	}).Debug("Published transition")
	return nil
}

// Close flushes pending messages and closes the connection
func (p *Publisher) Close() {
	if err := p.conn.FlushTimeout(2 * time.Second); err != nil {
		p.logger.WithError(err).Warn("Failed to flush NATS connection")
	}
	p.conn.Close()
}

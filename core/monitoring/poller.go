package monitoring

import (
	"context"
	"fmt"
	"time"

	"img2latex-console/core/models"

	"github.com/sirupsen/logrus"
)

// DefaultPollInterval is the delay between two status queries
const DefaultPollInterval = 2 * time.Second

// StatusSource fetches the latest snapshot of a job
type StatusSource interface {
	GetJobStatus(ctx context.Context, id models.JobID) (*models.TrainingJob, error)
}

// TickerFunc starts a ticker and returns its channel and stop func
type TickerFunc func(d time.Duration) (<-chan time.Time, func())

func realTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// PollError is returned when a loop gives up after consecutive failed queries
type PollError struct {
	JobID    models.JobID
	Failures int
	Err      error
}

func (e *PollError) Error() string {
	return fmt.Sprintf("polling job %s stopped after %d consecutive failures: %v", e.JobID, e.Failures, e.Err)
}

func (e *PollError) Unwrap() error { return e.Err }

// ApplyFunc receives each fetched snapshot and reports whether polling continues
type ApplyFunc func(job *models.TrainingJob) bool

// Poller queries one job's status at a fixed interval
type Poller struct {
	source      StatusSource
	interval    time.Duration
	maxFailures int
	newTicker   TickerFunc
	logger      logrus.FieldLogger
}

// NewPoller creates a poller. maxFailures of 0 keeps polling through any
// number of failed queries.
func NewPoller(source StatusSource, interval time.Duration, maxFailures int, logger logrus.FieldLogger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		source:      source,
		interval:    interval,
		maxFailures: maxFailures,
		newTicker:   realTicker,
		logger:      logger,
	}
}

// WithTicker replaces the ticker source
func (p *Poller) WithTicker(f TickerFunc) *Poller {
	p.newTicker = f
	return p
}

// Interval returns the delay between queries
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Poll issues one status query per tick until apply returns false, ctx is
// cancelled, or maxFailures consecutive queries fail. With immediate set, one
// query runs before the first tick. Queries never overlap.
func (p *Poller) Poll(ctx context.Context, id models.JobID, immediate bool, apply ApplyFunc) error {
	failures := 0

	if immediate {
		if done, err := p.query(ctx, id, &failures, apply); done {
			return err
		}
	}

	ticks, stop := p.newTicker(p.interval)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticks:
			if done, err := p.query(ctx, id, &failures, apply); done {
				return err
			}
		}
	}
}

// query runs one status query and reports whether the loop is finished
func (p *Poller) query(ctx context.Context, id models.JobID, failures *int, apply ApplyFunc) (bool, error) {
	job, err := p.source.GetJobStatus(ctx, id)

	// a response that lands after cancellation belongs to a torn-down loop
	if ctx.Err() != nil {
		return true, ctx.Err()
	}

	if err != nil {
		*failures++
		p.logger.WithError(err).WithFields(logrus.Fields{
			"job_id":   id,
			"failures": *failures,
		}).Warn("Status query failed")

		if p.maxFailures > 0 && *failures >= p.maxFailures {
			return true, &PollError{JobID: id, Failures: *failures, Err: err}
		}
		return false, nil
	}

	*failures = 0
	if !apply(job) {
		return true, nil
	}
	return false, nil
}

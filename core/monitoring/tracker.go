package monitoring

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"img2latex-console/core/models"
	"img2latex-console/core/training"

	"github.com/sirupsen/logrus"
)

// ErrJobNotFound is returned when selecting a job nobody knows about
var ErrJobNotFound = errors.New("training job not found")

// hookTimeout bounds recorder and notifier calls
const hookTimeout = 5 * time.Second

// Backend is the subset of the API client the tracker needs
type Backend interface {
	StatusSource
	ListTrainingJobs(ctx context.Context) ([]models.TrainingJob, error)
}

// Recorder persists snapshots and the transitions between them
type Recorder interface {
	RecordSnapshot(ctx context.Context, job *models.TrainingJob, from *models.JobStatus, reason string) error
}

// Notifier publishes status transitions
type Notifier interface {
	PublishTransition(ctx context.Context, job *models.TrainingJob, from *models.JobStatus) error
}

// Tracker owns the active job, the job list and the polling loop of the
// active job. At most one loop runs at a time; switching the active job or
// closing the tracker tears the loop down before anything else happens.
type Tracker struct {
	submitter *training.Submitter
	backend   Backend
	poller    *Poller
	jobs      *JobList
	recorder  Recorder
	notifier  Notifier
	listener  func(models.TrainingJob)
	logger    logrus.FieldLogger

	baseCtx    context.Context
	baseCancel context.CancelFunc

	mu         sync.Mutex
	active     *models.TrainingJob
	generation uint64
	cancel     context.CancelFunc
	done       chan struct{}
	lastErr    error
}

// NewTracker creates a tracker. Call Close to stop polling.
func NewTracker(submitter *training.Submitter, backend Backend, poller *Poller, logger logrus.FieldLogger) *Tracker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Tracker{
		submitter:  submitter,
		backend:    backend,
		poller:     poller,
		jobs:       NewJobList(),
		logger:     logger,
		baseCtx:    ctx,
		baseCancel: cancel,
	}
}

// WithRecorder persists every applied snapshot
func (t *Tracker) WithRecorder(r Recorder) *Tracker {
	t.recorder = r
	return t
}

// WithNotifier publishes every status transition
func (t *Tracker) WithNotifier(n Notifier) *Tracker {
	t.notifier = n
	return t
}

// WithListener is called with every applied snapshot. It runs on the
// polling goroutine and must not call Select or Submit.
func (t *Tracker) WithListener(f func(models.TrainingJob)) *Tracker {
	t.listener = f
	return t
}

// Submit creates a training job, makes it active and starts polling it.
// The first status query happens one interval later. On failure the active
// job is left untouched.
func (t *Tracker) Submit(ctx context.Context, cfg models.TrainingConfig, datasetSize int) (*models.TrainingJob, error) {
	job, err := t.submitter.Submit(ctx, cfg, datasetSize)
	if err != nil {
		return nil, err
	}

	t.jobs.Add(job)
	t.afterApply(t.baseCtx, job, nil, models.ReasonSubmitted)
	t.activate(job, false)

	return job.Clone(), nil
}

// SubmitChecked fetches the dataset size from the backend, then submits
func (t *Tracker) SubmitChecked(ctx context.Context, cfg models.TrainingConfig) (*models.TrainingJob, error) {
	size, err := t.submitter.DatasetSize(ctx)
	if err != nil {
		return nil, err
	}
	return t.Submit(ctx, cfg, size)
}

// Select makes a listed job active and queries its status immediately,
// then every interval while it has not settled
func (t *Tracker) Select(ctx context.Context, id models.JobID) (*models.TrainingJob, error) {
	job, ok := t.jobs.Get(id)
	if !ok {
		if err := t.Refresh(ctx); err != nil {
			return nil, err
		}
		if job, ok = t.jobs.Get(id); !ok {
			return nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
		}
	}

	t.activate(job, true)
	return job, nil
}

// Refresh reloads the job list from the backend. The active job keeps its
// polled snapshot and stays listed even when the backend omits it.
func (t *Tracker) Refresh(ctx context.Context) error {
	jobs, err := t.backend.ListTrainingJobs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list training jobs: %w", err)
	}

	t.mu.Lock()
	previous := make(map[models.JobID]models.JobStatus, t.jobs.Len())
	for _, job := range t.jobs.All() {
		previous[job.ID] = job.Status
	}
	var activeID models.JobID
	t.jobs.Load(jobs)
	if t.active != nil {
		activeID = t.active.ID
		t.jobs.Add(t.active)
	}
	t.mu.Unlock()

	if t.recorder == nil {
		return nil
	}
	for i := range jobs {
		job := &jobs[i]
		if job.ID == activeID {
			continue
		}
		var from *models.JobStatus
		if prev, ok := previous[job.ID]; ok && prev != job.Status {
			from = &prev
		}
		if err := t.recorder.RecordSnapshot(ctx, job, from, models.ReasonRefreshed); err != nil {
			t.logger.WithError(err).WithField("job_id", job.ID).Error("Failed to record job snapshot")
		}
	}
	return nil
}

// Active returns the active job, or nil
func (t *Tracker) Active() *models.TrainingJob {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active.Clone()
}

// Jobs returns every known job, most recent first
func (t *Tracker) Jobs() []models.TrainingJob {
	return t.jobs.All()
}

// Job returns one known job
func (t *Tracker) Job(id models.JobID) (*models.TrainingJob, bool) {
	return t.jobs.Get(id)
}

// Polling reports whether a loop is running for the active job
func (t *Tracker) Polling() bool {
	t.mu.Lock()
	done := t.done
	t.mu.Unlock()

	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

// LastError returns why the current loop gave up, if it did
func (t *Tracker) LastError() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastErr
}

// Wait blocks until the current loop exits or ctx is done
func (t *Tracker) Wait(ctx context.Context) error {
	t.mu.Lock()
	done := t.done
	t.mu.Unlock()

	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the polling loop and waits for it to exit
func (t *Tracker) Close() {
	t.baseCancel()

	t.mu.Lock()
	done := t.done
	t.mu.Unlock()

	if done != nil {
		<-done
	}
}

// activate installs job as active, tears down the previous loop and starts
// a new one unless the job has settled and no refresh was asked for
func (t *Tracker) activate(job *models.TrainingJob, immediate bool) {
	t.mu.Lock()
	prevCancel, prevDone := t.cancel, t.done

	t.generation++
	gen := t.generation
	t.active = job.Clone()
	t.lastErr = nil

	ctx, cancel := context.WithCancel(t.baseCtx)
	done := make(chan struct{})
	t.cancel, t.done = cancel, done
	t.mu.Unlock()

	if prevCancel != nil {
		prevCancel()
		<-prevDone
	}

	if job.IsSettled() && !immediate {
		cancel()
		close(done)
		return
	}

	go t.run(ctx, gen, job.ID, immediate, done)
}

func (t *Tracker) run(ctx context.Context, gen uint64, id models.JobID, immediate bool, done chan struct{}) {
	defer close(done)

	log := t.logger.WithFields(logrus.Fields{"job_id": id})
	log.Debug("Polling started")

	err := t.poller.Poll(ctx, id, immediate, func(job *models.TrainingJob) bool {
		return t.apply(ctx, gen, job)
	})

	switch {
	case err == nil:
		log.Debug("Polling finished")
	case errors.Is(err, context.Canceled):
		log.Debug("Polling cancelled")
	default:
		log.WithError(err).Warn("Polling stopped")
		t.mu.Lock()
		if t.generation == gen {
			t.lastErr = err
		}
		t.mu.Unlock()
	}
}

// apply installs snap as the active snapshot and list entry. Snapshots from
// a superseded loop and snapshots moving a known status backwards are
// dropped. Unknown statuses are always applied.
func (t *Tracker) apply(ctx context.Context, gen uint64, snap *models.TrainingJob) bool {
	t.mu.Lock()
	if gen != t.generation || t.active == nil || snap.ID != t.active.ID {
		t.mu.Unlock()
		return false
	}

	prev := t.active
	if !snap.Status.IsKnown() {
		t.logger.WithFields(logrus.Fields{
			"job_id": snap.ID,
			"status": snap.Status,
		}).Warn("Unknown job status, continuing to poll")
	} else if prev.Status.IsKnown() && snap.Status.Rank() < prev.Status.Rank() {
		t.mu.Unlock()
		t.logger.WithFields(logrus.Fields{
			"job_id": snap.ID,
			"from":   prev.Status,
			"to":     snap.Status,
		}).Warn("Ignoring backwards status transition")
		return !prev.IsSettled()
	}

	// the status endpoint may omit created_at; keep the list ordering stable
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = prev.CreatedAt
	}

	t.active = snap.Clone()
	t.jobs.Replace(snap)
	t.mu.Unlock()

	var from *models.JobStatus
	if prev.Status != snap.Status {
		s := prev.Status
		from = &s
	}
	t.afterApply(ctx, snap, from, models.ReasonPolled)

	return !snap.IsSettled()
}

// afterApply runs the recorder, notifier and listener for an applied snapshot.
// from is nil when the status did not change, except on submission.
func (t *Tracker) afterApply(ctx context.Context, job *models.TrainingJob, from *models.JobStatus, reason string) {
	hookCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), hookTimeout)
	defer cancel()

	log := t.logger.WithFields(logrus.Fields{"job_id": job.ID})
	transition := from != nil || reason == models.ReasonSubmitted

	if t.recorder != nil {
		if err := t.recorder.RecordSnapshot(hookCtx, job, from, reason); err != nil {
			log.WithError(err).Error("Failed to record job snapshot")
		}
	}
	if t.notifier != nil && transition {
		if err := t.notifier.PublishTransition(hookCtx, job, from); err != nil {
			log.WithError(err).Error("Failed to publish job transition")
		}
	}
	if transition {
		log.WithField("status", job.Status).Info("Job status changed")
	}
	if t.listener != nil {
		t.listener(*job.Clone())
	}
}

package monitoring

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"img2latex-console/core/models"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

type statusReply struct {
	job *models.TrainingJob
	err error
}

// fakeAPI scripts status replies per job. The last reply of a job repeats.
type fakeAPI struct {
	mu       sync.Mutex
	replies  map[models.JobID][]statusReply
	blocked  map[models.JobID]chan struct{}
	calls    []models.JobID
	list     []models.TrainingJob
	listErr  error
	pairs    int
	nextID   int
	submits  []models.TrainingConfig
	submitFn func(cfg models.TrainingConfig) (*models.SubmitResult, error)
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		replies: map[models.JobID][]statusReply{},
		blocked: map[models.JobID]chan struct{}{},
		pairs:   10,
	}
}

func (f *fakeAPI) script(id models.JobID, replies ...statusReply) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[id] = append(f.replies[id], replies...)
}

// block makes status queries of id wait until the returned func is called
func (f *fakeAPI) block(id models.JobID) func() {
	ch := make(chan struct{})
	f.mu.Lock()
	f.blocked[id] = ch
	f.mu.Unlock()
	return func() { close(ch) }
}

func (f *fakeAPI) GetJobStatus(ctx context.Context, id models.JobID) (*models.TrainingJob, error) {
	f.mu.Lock()
	f.calls = append(f.calls, id)
	queue := f.replies[id]
	var reply statusReply
	switch {
	case len(queue) == 0:
		reply = statusReply{err: errors.New("no scripted reply")}
	case len(queue) == 1:
		reply = queue[0]
	default:
		reply = queue[0]
		f.replies[id] = queue[1:]
	}
	release := f.blocked[id]
	f.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
		}
	}
	if reply.err != nil {
		return nil, reply.err
	}
	return reply.job.Clone(), nil
}

func (f *fakeAPI) ListTrainingJobs(ctx context.Context) ([]models.TrainingJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.TrainingJob, len(f.list))
	copy(out, f.list)
	return out, nil
}

func (f *fakeAPI) SubmitTraining(ctx context.Context, cfg models.TrainingConfig) (*models.SubmitResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submits = append(f.submits, cfg)
	if f.submitFn != nil {
		return f.submitFn(cfg)
	}
	f.nextID++
	return &models.SubmitResult{ID: models.JobID(fmt.Sprintf("job-%d", f.nextID)), Status: models.JobStatusQueued}, nil
}

func (f *fakeAPI) ListPairs(ctx context.Context, limit int) (*models.PairsPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &models.PairsPage{Pairs: make([]models.DatasetPair, f.pairs), Total: f.pairs}, nil
}

func (f *fakeAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeAPI) callLog() []models.JobID {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.JobID, len(f.calls))
	copy(out, f.calls)
	return out
}

// manualTicker hands the poller one shared, unbuffered tick channel. A send
// only succeeds while a loop is waiting on it.
type manualTicker struct {
	ch chan time.Time
}

func newManualTicker() *manualTicker {
	return &manualTicker{ch: make(chan time.Time)}
}

func (m *manualTicker) ticker(time.Duration) (<-chan time.Time, func()) {
	return m.ch, func() {}
}

func (m *manualTicker) tick(t *testing.T) {
	t.Helper()
	select {
	case m.ch <- time.Now():
	case <-time.After(time.Second):
		t.Fatalf("no polling loop received the tick")
	}
}

func (m *manualTicker) noTick(t *testing.T) {
	t.Helper()
	select {
	case m.ch <- time.Now():
		t.Fatalf("a polling loop received an unexpected tick")
	case <-time.After(50 * time.Millisecond):
	}
}

func snapshot(id models.JobID, status models.JobStatus, logs ...string) *models.TrainingJob {
	return &models.TrainingJob{
		ID:        id,
		Status:    status,
		Config:    models.DefaultTrainingConfig(),
		Logs:      logs,
		CreatedAt: models.NewTimestamp(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)),
	}
}

func reply(id models.JobID, status models.JobStatus, logs ...string) statusReply {
	return statusReply{job: snapshot(id, status, logs...)}
}

func nullLogger() logrus.FieldLogger {
	logger, _ := test.NewNullLogger()
	return logger
}

func waitJob(t *testing.T, ch <-chan models.TrainingJob) models.TrainingJob {
	t.Helper()
	select {
	case job := <-ch:
		return job
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for an applied snapshot")
	}
	return models.TrainingJob{}
}

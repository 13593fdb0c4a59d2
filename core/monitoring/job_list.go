package monitoring

import (
	"sort"
	"sync"

	"img2latex-console/core/models"
)

// JobList holds every known training job, most recent first
type JobList struct {
	jobs []*models.TrainingJob
	mu   sync.RWMutex
}

// NewJobList creates an empty job list
func NewJobList() *JobList {
	return &JobList{
		jobs: make([]*models.TrainingJob, 0),
	}
}

// Load replaces the whole list with jobs
func (l *JobList) Load(jobs []models.TrainingJob) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.jobs = make([]*models.TrainingJob, 0, len(jobs))
	for i := range jobs {
		l.jobs = append(l.jobs, jobs[i].Clone())
	}
	l.sortLocked()
}

// Add inserts job, or replaces the entry with the same id
func (l *JobList) Add(job *models.TrainingJob) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if i := l.indexLocked(job.ID); i >= 0 {
		l.jobs[i] = job.Clone()
		return
	}
	l.jobs = append([]*models.TrainingJob{job.Clone()}, l.jobs...)
	l.sortLocked()
}

// Replace swaps the entry with the same id for job.
// Returns false when the job is not in the list.
func (l *JobList) Replace(job *models.TrainingJob) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexLocked(job.ID)
	if i < 0 {
		return false
	}
	l.jobs[i] = job.Clone()
	return true
}

// Get returns a copy of the job with the given id
func (l *JobList) Get(id models.JobID) (*models.TrainingJob, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	i := l.indexLocked(id)
	if i < 0 {
		return nil, false
	}
	return l.jobs[i].Clone(), true
}

// All returns copies of every job, most recent first
func (l *JobList) All() []models.TrainingJob {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.TrainingJob, 0, len(l.jobs))
	for _, job := range l.jobs {
		out = append(out, *job.Clone())
	}
	return out
}

// Len returns the number of jobs
func (l *JobList) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.jobs)
}

func (l *JobList) indexLocked(id models.JobID) int {
	for i, job := range l.jobs {
		if job.ID == id {
			return i
		}
	}
	return -1
}

// sortLocked orders by created_at descending; ties keep insertion order
func (l *JobList) sortLocked() {
	sort.SliceStable(l.jobs, func(i, j int) bool {
		return l.jobs[i].CreatedAt.After(l.jobs[j].CreatedAt.Time)
	})
}

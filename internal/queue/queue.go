package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/clobrano/newscast/internal/models"
)

// Queue is an in-memory job list mirrored to a JSON file.
type Queue struct {
	mu           sync.Mutex
	jobs         []*models.Job
	persistPath  string
	notification chan struct{}
}

// New loads persistPath if it exists. Jobs that were processing when the
// previous run stopped go back to pending.
func New(persistPath string) (*Queue, error) {
	q := &Queue{
		jobs:         make([]*models.Job, 0),
		persistPath:  persistPath,
		notification: make(chan struct{}, 1),
	}

	if err := q.load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	for _, job := range q.jobs {
		if job.Status == models.JobStatusProcessing {
			job.Status = models.JobStatusPending
			job.UpdatedAt = time.Now()
		}
	}

	return q, nil
}

// Enqueue adds job unless a pending or processing job already targets the
// same input file. It reports whether the job was added.
func (q *Queue) Enqueue(job *models.Job) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if job.FilePath != "" {
		for _, j := range q.jobs {
			if j.FilePath == job.FilePath && j.Status != models.JobStatusFailed && j.Status != models.JobStatusCompleted {
				return false, nil
			}
		}
	}

	stored := *job
	q.jobs = append(q.jobs, &stored)
	q.signal()

	return true, q.persist()
}

// Dequeue marks the oldest pending job as processing and returns a copy of
// it. Changes to the copy are only visible to others after Update.
func (q *Queue) Dequeue() *models.Job {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, job := range q.jobs {
		if job.Status == models.JobStatusPending {
			job.Status = models.JobStatusProcessing
			job.UpdatedAt = time.Now()
			q.persist()
			claimed := *job
			return &claimed
		}
	}
	return nil
}

// Update stores a copy of job in place of the queued job with the same ID.
func (q *Queue) Update(job *models.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, j := range q.jobs {
		if j.ID == job.ID {
			stored := *job
			q.jobs[i] = &stored
			return q.persist()
		}
	}
	return nil
}

func (q *Queue) Remove(jobID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, j := range q.jobs {
		if j.ID == jobID {
			q.jobs = append(q.jobs[:i], q.jobs[i+1:]...)
			return q.persist()
		}
	}
	return nil
}

// Get returns a copy of the job with id.
func (q *Queue) Get(jobID string) (models.Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, j := range q.jobs {
		if j.ID == jobID {
			return *j, true
		}
	}
	return models.Job{}, false
}

// List returns copies of all jobs, newest first.
func (q *Queue) List() []models.Job {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]models.Job, 0, len(q.jobs))
	for _, j := range q.jobs {
		out = append(out, *j)
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].CreatedAt.After(out[b].CreatedAt)
	})
	return out
}

func (q *Queue) Wait() <-chan struct{} {
	return q.notification
}

func (q *Queue) Notify() {
	q.signal()
}

func (q *Queue) signal() {
	select {
	case q.notification <- struct{}{}:
	default:
	}
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

func (q *Queue) PendingCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	count := 0
	for _, job := range q.jobs {
		if job.Status == models.JobStatusPending {
			count++
		}
	}
	return count
}

// persist writes through a temp file so a crash never leaves half a queue.
func (q *Queue) persist() error {
	if q.persistPath == "" {
		return nil
	}

	data, err := json.MarshalIndent(q.jobs, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(q.persistPath), ".queue-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), q.persistPath)
}

func (q *Queue) load() error {
	if q.persistPath == "" {
		return nil
	}

	data, err := os.ReadFile(q.persistPath)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, &q.jobs)
}

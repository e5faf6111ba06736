package background

import (
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// JobScheduler owns the process-wide gocron scheduler and tracks jobs by name
type JobScheduler struct {
	scheduler gocron.Scheduler
	jobJobs   map[string]gocron.Job
	mu        sync.RWMutex
}

// NewJobScheduler creates a new job scheduler
func NewJobScheduler() (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	return &JobScheduler{
		scheduler: scheduler,
		jobJobs:   make(map[string]gocron.Job),
	}, nil
}

// Start starts the job scheduler
func (js *JobScheduler) Start() error {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
	return nil
}

// Stop stops the job scheduler; every pending run is cancelled
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

// AddJob schedules taskFn every interval. A job with the same name is replaced.
// Runs of one job never overlap; a run that is still busy pushes the next one back.
func (js *JobScheduler) AddJob(name string, interval time.Duration, taskFn interface{}, params ...interface{}) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	if existing, ok := js.jobJobs[name]; ok {
		if err := js.scheduler.RemoveJob(existing.ID()); err != nil {
			log.Printf("WARN: failed to remove job %s before replacing it: %v", name, err)
		}
		delete(js.jobJobs, name)
	}

	job, err := js.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(taskFn, params...),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}

	js.jobJobs[name] = job
	log.Printf("DEBUG: Added job: %s every %s", name, interval)
	return nil
}

// RemoveJob removes a job from the scheduler
func (js *JobScheduler) RemoveJob(name string) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	if job, exists := js.jobJobs[name]; exists {
		err := js.scheduler.RemoveJob(job.ID())
		delete(js.jobJobs, name)
		return err
	}

	return nil
}

// HasJob reports whether a job with the given name is scheduled
func (js *JobScheduler) HasJob(name string) bool {
	js.mu.RLock()
	defer js.mu.RUnlock()
	_, ok := js.jobJobs[name]
	return ok
}

// GetJobStatus returns information about scheduled jobs
func (js *JobScheduler) GetJobStatus() map[string]interface{} {
	js.mu.RLock()
	defer js.mu.RUnlock()

	status := make(map[string]interface{})
	status["total_jobs"] = len(js.jobJobs)
	jobs := make([]string, 0, len(js.jobJobs))

	for name := range js.jobJobs {
		jobs = append(jobs, name)
	}

	status["jobs"] = jobs

	return status
}

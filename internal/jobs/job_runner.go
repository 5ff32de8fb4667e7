package jobs

import (
	"sort"

	"filmrental-backend/internal/config"
	"filmrental-backend/internal/logger"
	"filmrental-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	services *Services
	config   *config.Config
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Rental service.RentalService
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(services *Services, cfg *config.Config) *JobRunner {
	return &JobRunner{
		services: services,
		config:   cfg,
	}
}

// Config returns the configuration the runner was built with
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// Jobs maps the CLI name of every job to its entry point
func (jr *JobRunner) Jobs() map[string]func() {
	return map[string]func(){
		"send-overdue-reminders": jr.SendOverdueReminders,
		"all-nightly":            jr.RunAllNightlyJobs,
	}
}

// JobNames returns the sorted CLI names accepted by Lookup
func (jr *JobRunner) JobNames() []string {
	jobs := jr.Jobs()
	names := make([]string, 0, len(jobs))
	for name := range jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup finds a job by its CLI name
func (jr *JobRunner) Lookup(name string) (func(), bool) {
	job, ok := jr.Jobs()[name]
	return job, ok
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// RunAllNightlyJobs runs all nightly jobs (for manual execution)
func (jr *JobRunner) RunAllNightlyJobs() {
	jr.SendOverdueReminders()
}

package cron

import "context"

// Job is a unit of scheduled work executed by the cron worker.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Registry holds the jobs a cron service will execute each cycle. It is not
// safe for concurrent mutation; register everything before Service starts.
type Registry struct {
	jobs []Job
}

// NewRegistry builds a registry preloaded with the provided jobs. Nil jobs
// are ignored.
func NewRegistry(jobs ...Job) *Registry {
	registry := &Registry{}
	for _, job := range jobs {
		registry.Register(job)
	}
	return registry
}

// Register appends a job; it runs after all previously registered jobs.
func (r *Registry) Register(job Job) {
	if job == nil {
		return
	}
	r.jobs = append(r.jobs, job)
}

// Jobs returns a copy of the registered jobs in registration order.
func (r *Registry) Jobs() []Job {
	return append([]Job(nil), r.jobs...)
}

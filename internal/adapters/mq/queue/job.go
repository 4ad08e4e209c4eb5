package queue

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Task is the unit of work a job carries.
type Task func(ctx context.Context) (any, error)

// Result is what a worker hands back for a job.
type Result struct {
	Value any
	Err   error
}

// Job is one queued piece of analysis work.
type Job struct {
	ID         string
	Kind       string
	Task       Task
	EnqueuedAt time.Time

	reply chan Result
}

// NewJob builds a job and returns the channel its single result arrives on.
func NewJob(kind string, task Task) (Job, <-chan Result) {
	reply := make(chan Result, 1)
	return Job{
		ID:         uuid.NewString(),
		Kind:       kind,
		Task:       task,
		EnqueuedAt: time.Now(),
		reply:      reply,
	}, reply
}

// Reply delivers the job's result. Only the first call has an effect; a job
// built without NewJob drops its result.
func (j Job) Reply(r Result) {
	if j.reply == nil {
		return
	}
	select {
	case j.reply <- r:
	default:
	}
}

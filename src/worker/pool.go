package worker

import (
	"context"
	"runtime"
	"sync"

	"github.com/rs/zerolog/log"
)

// Job is one unit of blocking work, such as an interactive capture.
type Job struct {
	Name string
	Run  func(ctx context.Context)
}

// Pool is a fixed-size worker pool with a 1-slot input queue (strict back-pressure).
type Pool struct {
	jobs chan queued
	wg   sync.WaitGroup
}

type queued struct {
	ctx context.Context
	job Job
}

// New creates a worker pool. Size defaults to NumCPU when size<=0. Queue is 1 slot.
func New(size int) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	p := &Pool{jobs: make(chan queued, 1)}
	p.start(size)
	return p
}

func (p *Pool) start(n int) {
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for q := range p.jobs {
				p.run(q)
			}
		}()
	}
}

func (p *Pool) run(q queued) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("job", q.job.Name).Msg("worker job panicked")
		}
	}()
	log.Debug().Str("job", q.job.Name).Msg("worker: job started")
	q.job.Run(q.ctx)
	log.Debug().Str("job", q.job.Name).Msg("worker: job finished")
}

// Submit enqueues a job if the single-slot queue is free. Returns false if dropped.
func (p *Pool) Submit(ctx context.Context, job Job) bool {
	select {
	case p.jobs <- queued{ctx: ctx, job: job}:
		return true
	default:
		return false
	}
}

// Close stops the pool after draining current work.
func (p *Pool) Close() {
	close(p.jobs)
	p.wg.Wait()
}

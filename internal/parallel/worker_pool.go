// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"context"
	"sync"
	"time"

	"risklens/internal/observability"
	"risklens/internal/resilience"
)

// WorkerPool runs independent jobs on a fixed set of goroutines
type WorkerPool struct {
	workers  int
	jobs     chan *Job
	results  chan *Result
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	observer *observability.StandardObserver
}

// Job is one unit of work. Index identifies its slot in the caller's output.
type Job struct {
	Index int
	Run   func() interface{}
}

// Result represents a finished job
type Result struct {
	Index    int
	Value    interface{}
	Error    error
	Duration time.Duration
}

// NewWorkerPool creates a new worker pool
func NewWorkerPool(ctx context.Context, workers int, observer *observability.StandardObserver) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)

	return &WorkerPool{
		workers:  workers,
		jobs:     make(chan *Job, workers*2),
		results:  make(chan *Result, workers*2),
		ctx:      ctx,
		cancel:   cancel,
		observer: observer,
	}
}

// Workers returns the number of worker goroutines
func (wp *WorkerPool) Workers() int {
	return wp.workers
}

// Start initializes worker goroutines
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Close signals that no more jobs will be submitted
func (wp *WorkerPool) Close() {
	close(wp.jobs)
}

// Stop waits for the workers and closes the results channel. Close must be called first.
func (wp *WorkerPool) Stop() {
	wp.wg.Wait()
	close(wp.results)
	wp.cancel()
}

// Submit adds a job to the queue. It returns false once the pool context is done.
func (wp *WorkerPool) Submit(job *Job) bool {
	select {
	case wp.jobs <- job:
		return true
	case <-wp.ctx.Done():
		return false
	}
}

// Results returns the results channel
func (wp *WorkerPool) Results() <-chan *Result {
	return wp.results
}

// worker processes jobs from the queue
func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for job := range wp.jobs {
		if wp.ctx.Err() != nil {
			// drain without running so Close/Stop can complete
			continue
		}
		result := wp.processJob(job, id)

		select {
		case wp.results <- result:
		case <-wp.ctx.Done():
		}
	}
}

// processJob executes a single job, converting a panic into the job's error
func (wp *WorkerPool) processJob(job *Job, workerID int) (result *Result) {
	start := time.Now()
	result = &Result{Index: job.Index}

	defer func() {
		if r := recover(); r != nil {
			result.Value = nil
			result.Error = resilience.NewPanicError("worker job", r)
			wp.observer.LogOperation(observability.StandardObservabilityData{
				Component: "worker_pool",
				Operation: "process_job",
				Success:   false,
				Error:     result.Error.Error(),
				Metadata:  map[string]interface{}{"worker_id": workerID, "index": job.Index},
			})
		}
		result.Duration = time.Since(start)
	}()

	result.Value = job.Run()
	return result
}

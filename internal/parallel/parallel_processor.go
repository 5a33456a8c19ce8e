// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"context"
	"runtime"
	"time"

	"risklens/internal/observability"
)

// MaxWorkers caps the default pool size to avoid resource exhaustion
const MaxWorkers = 8

// Options tunes a Map call
type Options struct {
	Workers   int // 0 means DefaultWorkers()
	Observer  *observability.StandardObserver
	Component string // used in timing records
	Operation string
}

// ProcessingStats tracks batch processing statistics
type ProcessingStats struct {
	TotalItems  int           `json:"total_items"`
	FailedItems int           `json:"failed_items"`
	WorkerCount int           `json:"worker_count"`
	Duration    time.Duration `json:"duration_ms"`
}

// DefaultWorkers returns NumCPU capped at MaxWorkers
func DefaultWorkers() int {
	workers := runtime.NumCPU()
	if workers > MaxWorkers {
		workers = MaxWorkers
	}
	return workers
}

// Map applies fn to every item on a worker pool and returns the outputs in input order.
// An item whose fn panics, or that never ran because ctx ended, gets fallback(item).
func Map[T, R any](ctx context.Context, items []T, fn func(T) R, fallback func(T) R, opts Options) ([]R, ProcessingStats) {
	start := time.Now()
	out := make([]R, len(items))
	stats := ProcessingStats{TotalItems: len(items)}
	if len(items) == 0 {
		return out, stats
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	if workers > len(items) {
		workers = len(items)
	}
	stats.WorkerCount = workers

	component, operation := opts.Component, opts.Operation
	if component == "" {
		component = "parallel"
	}
	if operation == "" {
		operation = "map"
	}
	finishTiming := opts.Observer.StartTiming(component, operation, "batch")

	pool := NewWorkerPool(ctx, workers, opts.Observer)
	pool.Start()

	// Submit jobs in a separate goroutine to prevent deadlock
	go func() {
		defer pool.Close()
		for i := range items {
			item := items[i]
			if !pool.Submit(&Job{Index: i, Run: func() interface{} { return fn(item) }}) {
				return
			}
		}
	}()
	go pool.Stop()

	filled := make([]bool, len(items))
	for result := range pool.Results() {
		if result.Error != nil {
			stats.FailedItems++
			continue
		}
		if v, ok := result.Value.(R); ok {
			out[result.Index] = v
			filled[result.Index] = true
		} else {
			stats.FailedItems++
		}
	}

	for i, ok := range filled {
		if ok {
			continue
		}
		if fallback != nil {
			out[i] = fallback(items[i])
		}
	}

	stats.Duration = time.Since(start)
	finishTiming(stats.FailedItems == 0, map[string]interface{}{
		"total_items":  stats.TotalItems,
		"failed_items": stats.FailedItems,
		"worker_count": workers,
	})

	return out, stats
}

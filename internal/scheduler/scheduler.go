package scheduler

import (
	"context"
	"sync"

	"github.com/vk/runr/internal/ctxlog"
	"github.com/vk/runr/internal/executor"
	"github.com/vk/runr/internal/script"
	"github.com/vk/runr/internal/vars"
)

// DefaultWorkers is the concurrency ceiling for a parallel group when no
// override is configured.
const DefaultWorkers = 4

// Result is the outcome of walking a step sequence.
type Result struct {
	// Aborted is set when a step ended in a fatal failure.
	Aborted bool
	// AbortedAt is the index of the aborting step within its sequence.
	AbortedAt int
	// Err is the failure cause of the aborting step.
	Err error
	// Tolerated counts failures that proceed_on_failure let through; they
	// are surfaced to the user as warnings after the run.
	Tolerated int
}

// Scheduler executes step sequences against an Executor.
type Scheduler struct {
	exec    *executor.Executor
	workers int
}

// New creates a scheduler with the given parallel-group concurrency ceiling.
// Non-positive values fall back to DefaultWorkers.
func New(exec *executor.Executor, workers int) *Scheduler {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Scheduler{exec: exec, workers: workers}
}

// Run walks the sequence in order. A fatal single-step failure or a fatal
// lane in a parallel group aborts the walk; skipped and tolerated outcomes
// continue it.
func (s *Scheduler) Run(ctx context.Context, steps []script.Step, store *vars.Store) Result {
	result := Result{}
	for i := range steps {
		step := steps[i]
		if step.IsParallel() {
			groupResult := s.runGroup(ctx, step.Group, store)
			result.Tolerated += groupResult.Tolerated
			if groupResult.Aborted {
				result.Aborted = true
				result.AbortedAt = i
				result.Err = groupResult.Err
				return result
			}
			continue
		}

		outcome, err := s.exec.Execute(ctx, step.Single, store)
		switch outcome {
		case executor.FailedFatal:
			result.Aborted = true
			result.AbortedAt = i
			result.Err = err
			return result
		case executor.FailedTolerated:
			result.Tolerated++
		}
	}
	return result
}

// runGroup fans the lanes out to a bounded worker pool and blocks until
// every lane has finished (the join barrier). Each lane reads from a fork of
// the store taken at group start, so sibling lanes never observe each
// other's captures; a lane that is itself a parallel group recurses.
// A fatal lane does not interrupt lanes that are already running; the group
// drains fully and then reports the abort.
func (s *Scheduler) runGroup(ctx context.Context, lanes []script.Step, store *vars.Store) Result {
	logger := ctxlog.FromContext(ctx)
	logger.Info("Starting parallel group.", "lanes", len(lanes), "workers", s.workers)

	workers := s.workers
	if workers > len(lanes) {
		workers = len(lanes)
	}

	// Every lane's view of the store is forked up front, so each lane sees
	// the state as of the moment the group started, not as of the moment a
	// worker slot freed up for it.
	forks := make([]*vars.Store, len(lanes))
	for i := range lanes {
		forks[i] = store.Fork()
	}

	laneChan := make(chan int)
	var wg sync.WaitGroup
	var mu sync.Mutex
	group := Result{}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range laneChan {
				laneResult := s.runLane(ctx, lanes[idx], forks[idx])
				mu.Lock()
				group.Tolerated += laneResult.Tolerated
				if laneResult.Aborted && !group.Aborted {
					group.Aborted = true
					group.AbortedAt = idx
					group.Err = laneResult.Err
				}
				mu.Unlock()
			}
		}()
	}

	for idx := range lanes {
		laneChan <- idx
	}
	close(laneChan)
	wg.Wait()

	if group.Aborted {
		logger.Error("Parallel group failed.", "lane", group.AbortedAt)
	} else {
		logger.Info("Parallel group complete.", "lanes", len(lanes))
	}
	return group
}

// runLane executes one lane of a parallel group against its forked store.
func (s *Scheduler) runLane(ctx context.Context, lane script.Step, forked *vars.Store) Result {
	if lane.IsParallel() {
		// Nested groups are unusual but legal; they get their own pool.
		return s.runGroup(ctx, lane.Group, forked)
	}

	result := Result{}
	outcome, err := s.exec.Execute(ctx, lane.Single, forked)
	switch outcome {
	case executor.FailedFatal:
		result.Aborted = true
		result.Err = err
	case executor.FailedTolerated:
		result.Tolerated++
	}
	return result
}

// Package worker is the Initial Fill Engine's group runner (spec §4.5):
// spawns up to min(|group|, MAX_WORKERS) concurrent workers over one
// group's tasks, collects failures, and retries only the failed tasks
// after a fixed back-off — indefinitely, since a resource fill has no
// iteration cap (spec §5).
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/vlaanderen-mow/amsync/common"
)

// Task is one unit of group work — typically "fill this resource".
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// RunGroup executes tasks with up to maxWorkers concurrent workers. Tasks
// that fail are retried — and only those — after retryDelay, repeating
// until every task in the group has succeeded once or ctx is cancelled.
func RunGroup(ctx context.Context, tasks []Task, maxWorkers int, retryDelay time.Duration) error {
	remaining := tasks
	for len(remaining) > 0 {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		workers := maxWorkers
		if workers > len(remaining) {
			workers = len(remaining)
		}
		failed := runOnce(ctx, remaining, workers)
		if len(failed) == 0 {
			return nil
		}

		common.Logger.WithField("failed_count", len(failed)).Warn("group has failed tasks, retrying after back-off")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryDelay):
		}
		remaining = failed
	}
	return nil
}

// runOnce dispatches tasks across workers concurrent workers and returns
// the subset that failed.
func runOnce(ctx context.Context, tasks []Task, workers int) []Task {
	taskCh := make(chan Task)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var failed []Task

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for task := range taskCh {
				common.Logger.WithField("worker", workerID).WithField("task", task.Name).Info("starting task")
				if err := task.Run(ctx); err != nil {
					common.Logger.WithField("worker", workerID).WithField("task", task.Name).WithField("error", err).Error("task failed")
					mu.Lock()
					failed = append(failed, task)
					mu.Unlock()
					continue
				}
				common.Logger.WithField("worker", workerID).WithField("task", task.Name).Info("task completed")
			}
		}(i)
	}

	for _, task := range tasks {
		taskCh <- task
	}
	close(taskCh)
	wg.Wait()

	return failed
}

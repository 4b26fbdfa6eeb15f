package cli

import (
	"context"
	"errors"
	"log"
	"sync"
)

// startBackground runs the scheduler and the source watcher until the
// returned stop function is called or ctx ends.
func startBackground(ctx context.Context) (stop func()) {
	if deps == nil {
		return func() {}
	}
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup

	if sched := deps.Scheduler; sched != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("scheduler: %v", err)
			}
		}()
	}

	if watch := deps.Watch; watch != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("watcher: %v", err)
			}
		}()
	}

	return func() {
		cancel()
		if deps.Scheduler != nil {
			_ = deps.Scheduler.Stop()
		}
		wg.Wait()
	}
}

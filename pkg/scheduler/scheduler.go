// Package scheduler implements Ven's single-threaded cooperative task
// scheduler (spec.md §5): `spawn` enqueues work but only one task's VM
// ever runs at a time, serialized on a weight-1 semaphore so closures a
// task shares with its spawner are never touched concurrently.
package scheduler

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/rmay/venlang/pkg/value"
)

// Task is one spawned unit of work (spec.md §5), identified for trace
// messages and future `ask`/`join`-style builtins that need to name which
// task they're waiting on.
type Task struct {
	ID string
}

// Scheduler implements pkg/vm.Scheduler: it runs every spawned closure to
// completion on its own goroutine, but admits only one at a time through
// slot, so "cooperative, no work stealing" (spec.md §5) holds even though
// tasks are backed by real goroutines.
type Scheduler struct {
	slot  *semaphore.Weighted
	group *errgroup.Group
	ctx   context.Context
}

// New constructs a Scheduler bound to ctx; cancel ctx to stop admitting
// new tasks and unblock any in-flight Spawn waiting on the slot.
func New(ctx context.Context) *Scheduler {
	group, gctx := errgroup.WithContext(ctx)
	return &Scheduler{
		slot:  semaphore.NewWeighted(1),
		group: group,
		ctx:   gctx,
	}
}

// Spawn runs run as a Task on its own goroutine once the single
// cooperative slot is free. Ven has no separate `join`/`await` surface
// (spec.md §5 names only `spawn` and blocking builtins as suspension
// points), so the call that triggers a spawn also collects its result —
// the slot still guarantees only one task's Machine ever executes at a
// time, which is what keeps scopes shared with the spawner safe to touch
// without a lock.
func (s *Scheduler) Spawn(run func() (value.Value, error)) (value.Value, error) {
	task := Task{ID: uuid.NewString()}
	type result struct {
		v   value.Value
		err error
	}
	out := make(chan result, 1)
	if err := s.slot.Acquire(s.ctx, 1); err != nil {
		return nil, err
	}
	s.group.Go(func() error {
		defer s.slot.Release(1)
		v, err := run()
		out <- result{v: v, err: err}
		return err
	})
	r := <-out
	if r.err != nil {
		return nil, fmt.Errorf("task %s: %w", task.ID, r.err)
	}
	return r.v, nil
}

// Wait blocks until every task spawned through s has finished, returning
// the first error any of them produced (errgroup.Group semantics).
func (s *Scheduler) Wait() error {
	return s.group.Wait()
}

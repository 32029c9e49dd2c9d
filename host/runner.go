package host

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// System is one unit of per-cycle work, e.g. a producer or a consumer.
type System interface {
	Update(ctx context.Context, cycle uint64) error
}

// SystemFunc adapts a function to System.
type SystemFunc func(ctx context.Context, cycle uint64) error

func (f SystemFunc) Update(ctx context.Context, cycle uint64) error {
	return f(ctx, cycle)
}

// PanicError is returned by Step when a system panics.
type PanicError struct {
	Stage string
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("stage %s: panic: %v", e.Stage, e.Value)
}

// Unwrap returns the panic value if it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

type stage struct {
	name    string
	systems []System
}

// Runner drives cycles: every stage in order, the systems of a stage
// concurrently, then one Swap of the registry.
//
// Systems of the same stage that write the same event type must use
// WriteNoGrow with capacity reserved in an earlier stage.
type Runner struct {
	reg    *Registry
	log    *Logger
	stages []stage
	cycle  atomic.Uint64
}

// NewRunner returns a runner swapping reg. A nil logger disables logging.
func NewRunner(reg *Registry, logger *Logger) *Runner {
	return &Runner{reg: reg, log: logger}
}

// AddStage appends a stage. Not safe to call while the runner is running.
func (r *Runner) AddStage(name string, systems ...System) {
	r.stages = append(r.stages, stage{name: name, systems: systems})
}

// Cycle returns the number of completed cycles.
func (r *Runner) Cycle() uint64 {
	return r.cycle.Load()
}

// Step runs one cycle. If a stage fails the cycle is abandoned without a
// swap and the error is returned.
func (r *Runner) Step(ctx context.Context) error {
	cycle := r.cycle.Load()
	start := time.Now()

	for _, st := range r.stages {
		if err := r.runStage(ctx, st, cycle); err != nil {
			r.log.Err().
				Uint64("cycle", cycle).
				Str("stage", st.name).
				Err(err).
				Log("cycle failed")
			return fmt.Errorf("cycle %d: %w", cycle, err)
		}
	}

	r.reg.Swap()
	r.cycle.Add(1)

	r.log.Trace().
		Uint64("cycle", cycle).
		Dur("took", time.Since(start)).
		Log("cycle done")

	return nil
}

func (r *Runner) runStage(ctx context.Context, st stage, cycle uint64) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, s := range st.systems {
		g.Go(func() (err error) {
			defer func() {
				if v := recover(); v != nil {
					err = &PanicError{Stage: st.name, Value: v, Stack: debug.Stack()}
				}
			}()
			return s.Update(gctx, cycle)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("stage %s: %w", st.name, err)
	}
	return nil
}

// Run steps once per tick until ctx is done or a step fails.
// A non-positive tickRate runs cycles back to back.
func (r *Runner) Run(ctx context.Context, tickRate time.Duration) error {
	r.log.Info().
		Dur("tick_rate", tickRate).
		Int("stages", len(r.stages)).
		Log("runner started")

	if tickRate <= 0 {
		for {
			if err := ctx.Err(); err != nil {
				return r.stopped(err)
			}
			if err := r.Step(ctx); err != nil {
				return err
			}
		}
	}

	ticker := time.NewTicker(tickRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return r.stopped(ctx.Err())
		case <-ticker.C:
			if err := r.Step(ctx); err != nil {
				return err
			}
		}
	}
}

func (r *Runner) stopped(err error) error {
	r.log.Info().
		Uint64("cycles", r.cycle.Load()).
		Log("runner stopped")
	return err
}

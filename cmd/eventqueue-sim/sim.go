package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aradilov/eventqueue/host"
	"github.com/valyala/fastrand"
)

var (
	errMismatch = fmt.Errorf("consumer saw unexpected events")
	errDone     = fmt.Errorf("cycle limit reached")
)

// hit is the simulated event: producer p emits seq 0, 1, 2, ... over the
// whole run.
type hit struct {
	Producer int
	Seq      uint64
	Damage   uint32
}

type simOptions struct {
	Cycles    int // zero runs until ctx is done
	Producers int
	Consumers int
	Events    int // per producer per cycle
	TickRate  time.Duration
}

type simResult struct {
	Cycles   uint64
	Written  uint64
	Consumed []uint64
	Stats    []host.TypeStats
}

// consumer checks that every producer's events arrive in order, once.
type consumer struct {
	id       int
	next     []uint64
	consumed uint64
}

func (c *consumer) observe(h hit) error {
	if h.Producer < 0 || h.Producer >= len(c.next) {
		return fmt.Errorf("%w: consumer %d: unknown producer %d", errMismatch, c.id, h.Producer)
	}
	if want := c.next[h.Producer]; h.Seq != want {
		return fmt.Errorf("%w: consumer %d: producer %d: seq %d, want %d", errMismatch, c.id, h.Producer, h.Seq, want)
	}
	c.next[h.Producer]++
	c.consumed++
	return nil
}

func runSim(ctx context.Context, cfg host.Config, opts simOptions, logger *host.Logger) (simResult, error) {
	if opts.Producers < 1 || opts.Consumers < 0 || opts.Events < 0 || opts.Cycles < 0 {
		return simResult{}, fmt.Errorf("invalid options: %+v", opts)
	}

	reg, err := host.NewRegistry(cfg, logger)
	if err != nil {
		return simResult{}, err
	}
	defer reg.Close()

	run := host.NewRunner(reg, logger)
	perCycle := opts.Producers * opts.Events

	run.AddStage("reserve", host.SystemFunc(func(context.Context, uint64) error {
		return host.EnsureCapacity[hit](reg, perCycle)
	}))

	producers := make([]host.System, opts.Producers)
	for p := range producers {
		var seq uint64
		producers[p] = host.SystemFunc(func(context.Context, uint64) error {
			w, err := host.Writer[hit](reg)
			if err != nil {
				return err
			}
			for range opts.Events {
				w.WriteNoGrow(hit{Producer: p, Seq: seq, Damage: fastrand.Uint32n(100)})
				seq++
			}
			return nil
		})
	}
	run.AddStage("produce", producers...)

	consumers := make([]*consumer, opts.Consumers)
	systems := make([]host.System, opts.Consumers)
	for i := range consumers {
		r, err := host.Reader[hit](reg)
		if err != nil {
			return simResult{}, err
		}
		c := &consumer{id: i, next: make([]uint64, opts.Producers)}
		consumers[i] = c
		systems[i] = host.SystemFunc(func(context.Context, uint64) error {
			it := r.Read()
			for h := range it.All() {
				if err := c.observe(h); err != nil {
					return err
				}
			}
			return it.Err()
		})
	}
	if len(systems) != 0 {
		run.AddStage("consume", systems...)
	}

	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	if opts.Cycles > 0 {
		last := uint64(opts.Cycles - 1)
		run.AddStage("limit", host.SystemFunc(func(_ context.Context, cycle uint64) error {
			if cycle == last {
				cancel(errDone)
			}
			return nil
		}))
	}

	err = run.Run(runCtx, opts.TickRate)
	if err != nil && !errors.Is(err, runCtx.Err()) {
		return simResult{}, err
	}

	res := simResult{
		Cycles:   run.Cycle(),
		Consumed: make([]uint64, len(consumers)),
		Stats:    reg.Stats(),
	}
	if e, ok := host.Lookup[hit](reg); ok {
		res.Written = e.WriteCounter()
	}
	want := res.Cycles * uint64(perCycle)
	if res.Written != want {
		return res, fmt.Errorf("%w: written %d, want %d", errMismatch, res.Written, want)
	}
	for i, c := range consumers {
		res.Consumed[i] = c.consumed
		if c.consumed != want {
			return res, fmt.Errorf("%w: consumer %d consumed %d, want %d", errMismatch, i, c.consumed, want)
		}
	}
	return res, nil
}

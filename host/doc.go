// Package host integrates eventqueue with a cycle-based host.
//
// A Registry owns one queue per event type, created lazily on first access.
// A Runner executes ordered stages of systems once per cycle and swaps every
// registered queue when the last stage is done, which is the only place the
// swap barrier is crossed.
//
//	reg, _ := host.NewRegistry(host.DefaultConfig(), nil)
//	run := host.NewRunner(reg, nil)
//	run.AddStage("produce", host.SystemFunc(func(ctx context.Context, cycle uint64) error {
//		w, err := host.Writer[Hit](reg)
//		if err != nil {
//			return err
//		}
//		w.Write(Hit{})
//		return nil
//	}))
//	_ = run.Run(ctx, reg.Config().TickRate)
package host

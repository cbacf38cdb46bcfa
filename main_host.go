//go:build !tinygo

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"seesaw/app"
	"seesaw/hal"
)

func main() {
	var hcfg hal.HeadlessConfig
	var acfg app.Config
	flag.BoolVar(&hcfg.Enabled, "headless", false, "Run without a window.")
	flag.IntVar(&hcfg.Hz, "hz", 60, "Tick rate in headless mode.")
	flag.Uint64Var(&hcfg.Ticks, "ticks", 0, "Stop after N ticks in headless mode (0 = run forever).")
	flag.IntVar(&acfg.FFTSize, "fft-size", 1024, "Samples per frame (power of two).")
	flag.IntVar(&acfg.TopBins, "top", 5, "Peak bins to report.")
	flag.IntVar(&acfg.FrameRate, "rate", 50, "Producer frames per second.")
	flag.DurationVar(&acfg.Timeout, "timeout", 100*time.Millisecond, "Acquire timeout for both sides.")
	flag.Parse()

	if hcfg.Enabled {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := hal.RunHeadless(ctx, func(h hal.HAL) func() error {
			return app.NewWithConfig(h, acfg)
		}, hcfg); err != nil {
			if err == context.Canceled {
				return
			}
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := hal.RunWindow(func(h hal.HAL) func() error {
		return app.NewWithConfig(h, acfg)
	}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

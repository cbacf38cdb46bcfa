//go:build tinygo

package main

import (
	"seesaw/app"
	"seesaw/hal"
)

func main() {
	// A smaller transform and frame rate keep the software FFT inside
	// the frame budget on the RP2040.
	app.RunWithConfig(hal.New(), app.Config{
		FFTSize:   512,
		FrameRate: 25,
	})
}

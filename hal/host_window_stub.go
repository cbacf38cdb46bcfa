//go:build !tinygo && !cgo

package hal

import "errors"

// RunWindow without cgo has no display backend; -headless still works.
func RunWindow(_ func(HAL) func() error) error {
	return errors.New("hal: windowed mode needs a cgo-enabled build, use -headless instead")
}

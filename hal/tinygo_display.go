//go:build tinygo && (rp2040 || rp2350)

package hal

import (
	"machine"

	"tinygo.org/x/drivers/st7789"
)

// Display geometry for the ST7789 1.14" panel (Pico display pack).
const (
	displayWidth  = 240
	displayHeight = 135
)

// tinyGoFramebuffer renders into RAM and blits the whole frame to the
// panel on Present. The panel wants big-endian RGB565; the buffer is
// little-endian like the host's, so Present swaps into a scratch line.
type tinyGoFramebuffer struct {
	drv     st7789.Device
	ok      bool
	buf     []byte
	scratch []byte
}

func newTinyGoFramebuffer() *tinyGoFramebuffer {
	f := &tinyGoFramebuffer{
		buf:     make([]byte, displayWidth*displayHeight*2),
		scratch: make([]byte, displayWidth*2),
	}

	spi := machine.SPI0
	if err := spi.Configure(machine.SPIConfig{
		SCK:       machine.GP18,
		SDO:       machine.GP19,
		Frequency: 62_500_000,
	}); err != nil {
		return f
	}

	f.drv = st7789.New(spi,
		machine.GP12, // reset
		machine.GP16, // dc
		machine.GP17, // cs
		machine.GP13, // backlight
	)
	f.drv.Configure(st7789.Config{
		Width:    displayWidth,
		Height:   displayHeight,
		Rotation: st7789.ROTATION_90,
	})
	f.ok = true
	return f
}

func (f *tinyGoFramebuffer) Width() int          { return displayWidth }
func (f *tinyGoFramebuffer) Height() int         { return displayHeight }
func (f *tinyGoFramebuffer) Format() PixelFormat { return PixelFormatRGB565 }
func (f *tinyGoFramebuffer) StrideBytes() int    { return displayWidth * 2 }
func (f *tinyGoFramebuffer) Buffer() []byte      { return f.buf }

func (f *tinyGoFramebuffer) ClearRGB(r, g, b uint8) {
	pixel := rgb565(r, g, b)
	lo := byte(pixel)
	hi := byte(pixel >> 8)
	for i := 0; i < len(f.buf); i += 2 {
		f.buf[i] = lo
		f.buf[i+1] = hi
	}
}

func (f *tinyGoFramebuffer) Present() error {
	if !f.ok {
		return ErrNotImplemented
	}
	for y := 0; y < displayHeight; y++ {
		row := f.buf[y*displayWidth*2 : (y+1)*displayWidth*2]
		for i := 0; i < len(row); i += 2 {
			f.scratch[i] = row[i+1]
			f.scratch[i+1] = row[i]
		}
		if err := f.drv.DrawRGBBitmap8(0, int16(y), f.scratch, displayWidth, 1); err != nil {
			return err
		}
	}
	return nil
}

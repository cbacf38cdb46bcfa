package app

import (
	"fmt"
	"image/color"

	"seesaw/hal"
	"seesaw/pingpong"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

var (
	colorBG       = color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xff}
	colorFG       = color.RGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}
	colorDim      = color.RGBA{R: 0x88, G: 0x88, B: 0x88, A: 0xff}
	colorHeaderBG = color.RGBA{R: 0x18, G: 0x18, B: 0x18, A: 0xff}
	colorBar      = color.RGBA{R: 0x4a, G: 0xd1, B: 0xff, A: 0xff}
	colorBarDim   = color.RGBA{R: 0x20, G: 0x60, B: 0x80, A: 0xff}
)

const (
	headerH = 14
	statusH = 12
)

type renderer struct {
	fb      hal.Framebuffer
	d       *fbDisplay
	fftSize int
	font    tinyfont.Fonter
}

func newRenderer(disp hal.Display, fftSize int) *renderer {
	r := &renderer{fftSize: fftSize, font: &proggy.TinySZ8pt7b}
	if disp == nil {
		return r
	}
	r.fb = disp.Framebuffer()
	if r.fb != nil {
		r.d = newFBDisplay(r.fb)
	}
	return r
}

// draw paints the top bins as vertical bars, tallest first, plus a
// header and a stats footer.
func (r *renderer) draw(bins []uint16, st pingpong.Stats) {
	if r.d == nil {
		return
	}
	w := int16(r.fb.Width())
	h := int16(r.fb.Height())

	r.d.FillRectangle(0, 0, w, headerH, colorHeaderBG)
	r.d.FillRectangle(0, headerH, w, h-headerH-statusH, colorBG)
	r.d.FillRectangle(0, h-statusH, w, statusH, colorHeaderBG)

	tinyfont.WriteLine(r.d, r.font, 4, 10, "seesaw spectrum", colorFG)

	plotH := h - headerH - statusH - 4
	baseY := h - statusH - 2
	half := r.fftSize / 2
	for rank, bin := range bins {
		// Bar height falls off with rank so the ordering is visible.
		bh := plotH - int16(rank)*(plotH/int16(len(bins)+1))
		if bh < 4 {
			bh = 4
		}
		x := int16(int(bin) * int(w) / half)
		c := colorBar
		if rank > 0 {
			c = colorBarDim
		}
		r.d.FillRectangle(x-1, baseY-bh, 3, bh, c)
	}

	status := fmt.Sprintf("w:%d r:%d ov:%d to:%d",
		st.TotalWrites(), st.TotalReads(), st.Overruns, st.Timeouts)
	tinyfont.WriteLine(r.d, r.font, 4, h-3, status, colorDim)

	_ = r.d.Display()
}

// fbDisplay adapts hal.Framebuffer to the drivers.Displayer surface
// tinyfont draws on.
type fbDisplay struct {
	fb hal.Framebuffer
}

func newFBDisplay(fb hal.Framebuffer) *fbDisplay {
	return &fbDisplay{fb: fb}
}

func (d *fbDisplay) Size() (x, y int16) {
	if d.fb == nil {
		return 0, 0
	}
	return int16(d.fb.Width()), int16(d.fb.Height())
}

func (d *fbDisplay) SetPixel(x, y int16, c color.RGBA) {
	if d.fb == nil || d.fb.Format() != hal.PixelFormatRGB565 {
		return
	}
	buf := d.fb.Buffer()
	if buf == nil {
		return
	}
	ix := int(x)
	iy := int(y)
	if ix < 0 || ix >= d.fb.Width() || iy < 0 || iy >= d.fb.Height() {
		return
	}
	pixel := rgb565From888(c.R, c.G, c.B)
	off := iy*d.fb.StrideBytes() + ix*2
	if off < 0 || off+1 >= len(buf) {
		return
	}
	buf[off] = byte(pixel)
	buf[off+1] = byte(pixel >> 8)
}

func (d *fbDisplay) Display() error {
	if d.fb == nil {
		return nil
	}
	return d.fb.Present()
}

func (d *fbDisplay) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	if d.fb == nil || d.fb.Format() != hal.PixelFormatRGB565 {
		return nil
	}
	buf := d.fb.Buffer()
	if buf == nil {
		return nil
	}

	w := d.fb.Width()
	h := d.fb.Height()
	x0 := clampInt(int(x), 0, w)
	y0 := clampInt(int(y), 0, h)
	x1 := clampInt(int(x)+int(width), 0, w)
	y1 := clampInt(int(y)+int(height), 0, h)
	if x0 >= x1 || y0 >= y1 {
		return nil
	}

	pixel := rgb565From888(c.R, c.G, c.B)
	lo := byte(pixel)
	hi := byte(pixel >> 8)
	stride := d.fb.StrideBytes()
	for py := y0; py < y1; py++ {
		row := py * stride
		for px := x0; px < x1; px++ {
			off := row + px*2
			if off < 0 || off+1 >= len(buf) {
				continue
			}
			buf[off] = lo
			buf[off+1] = hi
		}
	}
	return nil
}

func (d *fbDisplay) SetRotation(rotation drivers.Rotation) error {
	_ = rotation
	return nil
}

func rgb565From888(r, g, b uint8) uint16 {
	return uint16((uint16(r>>3)&0x1F)<<11 | (uint16(g>>2)&0x3F)<<5 | (uint16(b>>3) & 0x1F))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

//go:build tinygo && (rp2040 || rp2350)

package hal

import (
	"machine"
	"unsafe"

	"seesaw/pingpong"
)

type tinyGoHAL struct {
	logger *uartLogger
	led    *pinLED
	fb     Framebuffer
	t      *tinyGoTime
	toCons *sioMailbox
	toProd *sioMailbox
}

// sharedRegion is the statically reserved cross-core window. Both cores
// address the same SRAM, so a package-level array is shared by
// construction; the uint64 backing keeps the control block overlay
// 8-byte aligned.
var sharedRegion [pingpong.RegionSize / 8]uint64

// New returns the Pico HAL implementation.
//
// UART: UART0 on GP0 (TX) / GP1 (RX), 115200 8N1. Core 0 runs the
// consumer side; StartProducerCore hands core 1 to the producer.
func New() HAL {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GP0,
		RX:       machine.GP1,
	})

	ledPin := machine.LED
	ledPin.Configure(machine.PinConfig{Mode: machine.PinOutput})

	return &tinyGoHAL{
		logger: &uartLogger{uart: uart},
		led:    &pinLED{pin: ledPin},
		fb:     newTinyGoFramebuffer(),
		t:      newTinyGoTime(),
		toCons: &sioMailbox{},
		toProd: &sioMailbox{},
	}
}

func (h *tinyGoHAL) Logger() Logger   { return h.logger }
func (h *tinyGoHAL) LED() LED         { return h.led }
func (h *tinyGoHAL) Display() Display { return tinyGoDisplay{fb: h.fb} }
func (h *tinyGoHAL) Time() Time       { return h.t }

func (h *tinyGoHAL) SharedMem() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(&sharedRegion[0])), pingpong.RegionSize)
}

func (h *tinyGoHAL) ToConsumer() Mailbox { return h.toCons }
func (h *tinyGoHAL) ToProducer() Mailbox { return h.toProd }

// StartProducerCore launches fn bare on core 1. Goroutines stay on
// core 0, so the producer must pace itself with sleeps, which the
// protocol's bounded busy-wait does anyway.
func (h *tinyGoHAL) StartProducerCore(fn func()) {
	machine.Core1.Start(fn)
}

type tinyGoDisplay struct {
	fb Framebuffer
}

func (d tinyGoDisplay) Framebuffer() Framebuffer { return d.fb }

type pinLED struct {
	pin machine.Pin
}

func (l *pinLED) High() { l.pin.High() }
func (l *pinLED) Low()  { l.pin.Low() }

type uartLogger struct {
	uart *machine.UART
}

func (l *uartLogger) WriteLineString(s string) {
	for i := 0; i < len(s); i++ {
		l.uart.WriteByte(s[i])
	}
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}

func (l *uartLogger) WriteLineBytes(b []byte) {
	for i := 0; i < len(b); i++ {
		l.uart.WriteByte(b[i])
	}
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}

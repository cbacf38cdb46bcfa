//go:build !tinygo

package hal

import (
	"fmt"
	"os"
	"sync"
	"unsafe"

	"seesaw/pingpong"
)

type hostHAL struct {
	logger *hostLogger
	led    *hostLED
	fb     *hostFramebuffer
	t      *hostTime
	region []byte
	toCons *hostMailbox
	toProd *hostMailbox
}

// New returns a host HAL implementation. The "cores" are goroutines,
// the shared region is ordinary memory, and the doorbells are
// capacity-one channels; the protocol cannot tell the difference.
func New() HAL {
	logger := &hostLogger{w: os.Stdout}
	return &hostHAL{
		logger: logger,
		led:    &hostLED{logger: logger},
		fb:     newHostFramebuffer(320, 240),
		t:      newHostTime(),
		region: newHostRegion(),
		toCons: newHostMailbox(),
		toProd: newHostMailbox(),
	}
}

// newHostRegion allocates the simulated shared region. Backing it with
// uint64 words guarantees the 8-byte alignment the control block
// overlay requires.
func newHostRegion() []byte {
	words := make([]uint64, pingpong.RegionSize/8)
	return unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), pingpong.RegionSize)
}

func (h *hostHAL) Logger() Logger     { return h.logger }
func (h *hostHAL) LED() LED           { return h.led }
func (h *hostHAL) Display() Display   { return hostDisplay{fb: h.fb} }
func (h *hostHAL) Time() Time         { return h.t }
func (h *hostHAL) SharedMem() []byte  { return h.region }
func (h *hostHAL) ToConsumer() Mailbox { return h.toCons }
func (h *hostHAL) ToProducer() Mailbox { return h.toProd }

func (h *hostHAL) StartProducerCore(fn func()) { go fn() }

type hostDisplay struct {
	fb *hostFramebuffer
}

func (d hostDisplay) Framebuffer() Framebuffer { return d.fb }

type hostLogger struct {
	mu sync.Mutex
	w  *os.File
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}

type hostLED struct {
	mu     sync.Mutex
	on     bool
	logger *hostLogger
}

func (l *hostLED) High() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.on {
		l.on = true
		l.logger.WriteLineString("LED: on")
	}
}

func (l *hostLED) Low() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.on {
		l.on = false
		l.logger.WriteLineString("LED: off")
	}
}

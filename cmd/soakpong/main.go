//go:build !tinygo

// Command soakpong hammers the double-buffer handoff on the host: a
// producer goroutine writes sequenced patterned frames, a consumer
// goroutine verifies every byte, and the tool reports protocol
// counters at the end. Exit status is nonzero on any corruption.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"sync/atomic"
	"time"
	"unsafe"

	"seesaw/pingpong"
)

var (
	flagFrames   = flag.Int("frames", 10000, "frames to deliver before stopping")
	flagSize     = flag.Int("size", 4096, "payload bytes per frame")
	flagTimeout  = flag.Duration("timeout", pingpong.DefaultTimeout, "acquire timeout for both sides")
	flagStall    = flag.Duration("stall", 0, "artificial consumer delay per frame, to provoke overruns")
	flagProgress = flag.Int("progress", 0, "print a progress line every N frames (0 disables)")
)

// chanBell is the host stand-in for the doorbell line: a capacity-1
// channel, so pending rings coalesce.
type chanBell struct {
	ch chan struct{}
}

func newChanBell() *chanBell { return &chanBell{ch: make(chan struct{}, 1)} }

func (b *chanBell) Notify() error {
	select {
	case b.ch <- struct{}{}:
	default:
	}
	return nil
}

type stdoutLog struct{}

func (stdoutLog) WriteLineString(s string) { fmt.Println(s) }

func micros() uint64 {
	return uint64(time.Now().UnixMicro())
}

func fillFrame(dst []byte, seq uint32) {
	dst[0] = byte(seq)
	dst[1] = byte(seq >> 8)
	dst[2] = byte(seq >> 16)
	dst[3] = byte(seq >> 24)
	for i := 4; i < len(dst); i++ {
		dst[i] = byte(seq) + byte(i)
	}
}

func checkFrame(src []byte, seq uint32) error {
	got := uint32(src[0]) | uint32(src[1])<<8 | uint32(src[2])<<16 | uint32(src[3])<<24
	if got != seq {
		return fmt.Errorf("frame %d: sequence header reads %d", seq, got)
	}
	for i := 4; i < len(src); i++ {
		if src[i] != byte(seq)+byte(i) {
			return fmt.Errorf("frame %d: byte %d is %#02x, want %#02x", seq, i, src[i], byte(seq)+byte(i))
		}
	}
	return nil
}

func main() {
	flag.Parse()
	if *flagSize < 4 || *flagSize > pingpong.BufferSize {
		fmt.Fprintf(os.Stderr, "soakpong: -size must be in [4, %d]\n", pingpong.BufferSize)
		os.Exit(2)
	}

	backing := make([]uint64, pingpong.RegionSize/8)
	region := unsafe.Slice((*byte)(unsafe.Pointer(&backing[0])), pingpong.RegionSize)

	sess, err := pingpong.Attach(region, micros)
	if err != nil {
		fmt.Fprintln(os.Stderr, "soakpong:", err)
		os.Exit(1)
	}
	sess.Init(pingpong.Config{Timeout: *flagTimeout})

	toConsumer := newChanBell()
	toProducer := newChanBell()

	cons, err := pingpong.NewConsumer(sess, pingpong.ConsumerConfig{Notify: toProducer, Log: stdoutLog{}})
	if err != nil {
		fmt.Fprintln(os.Stderr, "soakpong:", err)
		os.Exit(1)
	}
	prod, err := pingpong.NewProducer(sess, pingpong.ProducerConfig{Notify: toConsumer, Log: stdoutLog{}})
	if err != nil {
		fmt.Fprintln(os.Stderr, "soakpong:", err)
		os.Exit(1)
	}

	var failed atomic.Bool
	start := time.Now()
	prodDone := make(chan struct{})

	go func() {
		defer close(prodDone)
		for seq := uint32(0); seq < uint32(*flagFrames); {
			h, err := prod.AcquireForWrite(sess.Timeout())
			if errors.Is(err, pingpong.ErrTimeout) {
				continue
			}
			if err != nil {
				fmt.Fprintln(os.Stderr, "soakpong: producer:", err)
				failed.Store(true)
				return
			}
			fillFrame(h.Bytes()[:*flagSize], seq)
			if err := prod.Commit(h); err != nil {
				fmt.Fprintln(os.Stderr, "soakpong: producer:", err)
				failed.Store(true)
				return
			}
			seq++
		}
	}()

	for seq := uint32(0); seq < uint32(*flagFrames); {
		h, err := cons.AcquireForRead(0)
		if errors.Is(err, pingpong.ErrTimeout) {
			select {
			case <-toConsumer.ch:
			case <-time.After(time.Millisecond):
			}
			continue
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, "soakpong: consumer:", err)
			failed.Store(true)
			break
		}
		if err := checkFrame(h.Bytes()[:*flagSize], seq); err != nil {
			fmt.Fprintln(os.Stderr, "soakpong:", err)
			failed.Store(true)
		}
		if *flagStall > 0 {
			time.Sleep(*flagStall)
		}
		if err := cons.Release(h); err != nil {
			fmt.Fprintln(os.Stderr, "soakpong: consumer:", err)
			failed.Store(true)
			break
		}
		seq++
		if *flagProgress > 0 && seq%uint32(*flagProgress) == 0 {
			fmt.Printf("soakpong: %d/%d frames\n", seq, *flagFrames)
		}
	}

	<-prodDone
	elapsed := time.Since(start)
	st := sess.Stats()
	fmt.Printf("soakpong: %d frames of %d bytes in %v (%.0f frames/s)\n",
		st.TotalReads(), *flagSize, elapsed.Round(time.Millisecond),
		float64(st.TotalReads())/elapsed.Seconds())
	fmt.Println(st.String())

	if failed.Load() || st.StateErrors != 0 {
		os.Exit(1)
	}
}

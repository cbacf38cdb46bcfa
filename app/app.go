// Package app wires the handoff protocol to the platform and runs the
// spectrum demo: a tone generator on the producer core feeding q15
// frames to an FFT consumer that renders the loudest bins.
package app

import (
	"fmt"
	"time"

	"seesaw/dsp"
	"seesaw/hal"
	"seesaw/pingpong"
)

type Config struct {
	// FFTSize is the samples per frame; power of two, at most
	// pingpong.BufferSize/2.
	FFTSize int
	// TopBins is how many peak bins the consumer reports.
	TopBins int
	// Timeout bounds blocking acquires on both sides.
	Timeout time.Duration
	// FrameRate is the producer's target frames per second.
	FrameRate int
}

func (c *Config) fillDefaults() {
	if c.FFTSize == 0 {
		c.FFTSize = 1024
	}
	if c.TopBins == 0 {
		c.TopBins = 5
	}
	if c.Timeout == 0 {
		c.Timeout = pingpong.DefaultTimeout
	}
	if c.FrameRate == 0 {
		c.FrameRate = 50
	}
}

type system struct {
	h    hal.HAL
	cfg  Config
	sess *pingpong.Session
	prod *pingpong.Producer
	cons *pingpong.Consumer
	an   *dsp.Spectrum
	rend *renderer

	// wake carries doorbell rings to the consumer loop; capacity 1 so
	// bursts coalesce the way a latched interrupt would.
	wake chan struct{}

	signal []int16
	frames uint32
}

// New initializes the shared region and starts both sides with the
// default config.
func New(h hal.HAL) func() error {
	return NewWithConfig(h, Config{})
}

// Run starts the demo and blocks forever (TinyGo/native entrypoint).
func Run(h hal.HAL) {
	_ = New(h)
	select {}
}

func NewWithConfig(h hal.HAL, cfg Config) func() error {
	sys, err := newSystem(h, cfg)
	if err != nil {
		h.Logger().WriteLineString("app: " + err.Error())
		return func() error { return err }
	}
	sys.start()
	return func() error { return nil }
}

func RunWithConfig(h hal.HAL, cfg Config) {
	_ = NewWithConfig(h, cfg)
	select {}
}

func newSystem(h hal.HAL, cfg Config) (*system, error) {
	cfg.fillDefaults()
	if cfg.FFTSize*2 > pingpong.BufferSize {
		return nil, fmt.Errorf("app: FFT size %d exceeds buffer capacity", cfg.FFTSize)
	}

	sess, err := pingpong.Attach(h.SharedMem(), h.Time().NowMicros)
	if err != nil {
		return nil, err
	}
	sess.Init(pingpong.Config{Timeout: cfg.Timeout})

	cons, err := pingpong.NewConsumer(sess, pingpong.ConsumerConfig{
		Notify: h.ToProducer(),
		Log:    h.Logger(),
	})
	if err != nil {
		return nil, err
	}
	prod, err := pingpong.NewProducer(sess, pingpong.ProducerConfig{
		Notify: h.ToConsumer(),
		Log:    h.Logger(),
	})
	if err != nil {
		return nil, err
	}

	an, err := dsp.NewSpectrum(cfg.FFTSize)
	if err != nil {
		return nil, err
	}

	sys := &system{
		h:      h,
		cfg:    cfg,
		sess:   sess,
		prod:   prod,
		cons:   cons,
		an:     an,
		rend:   newRenderer(h.Display(), cfg.FFTSize),
		wake:   make(chan struct{}, 1),
		signal: make([]int16, cfg.FFTSize),
	}
	return sys, nil
}

func (s *system) start() {
	s.h.ToConsumer().SetHandler(s.ringConsumer)
	if ch := s.h.Time().Ticks(); ch != nil {
		go s.tickLoop(ch)
	}
	s.h.StartProducerCore(s.produceLoop)
	go s.consumeLoop()
}

// statsTicks is how many base ticks (1 ms each) pass between stats
// lines.
const statsTicks = 1000

// tickLoop rides the platform tick stream and emits the protocol
// counters line once a second. It returns when the stream closes.
func (s *system) tickLoop(ch <-chan uint64) {
	for seq := range ch {
		if seq%statsTicks == 0 {
			s.h.Logger().WriteLineString(s.sess.Stats().String())
		}
	}
}

func (s *system) ringConsumer() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

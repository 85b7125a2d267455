// Package sonar captures HC-SR04 range measurements: a trigger pulse on an
// output pin, then an echo whose high-time is proportional to round-trip
// distance. Edge timestamps arrive on the gpio event goroutine; the width is
// handed to the control loop through a single-slot atomic cell.
package sonar

import (
	"sync/atomic"
	"time"

	"canesense/internal/gpio"
)

// CMPerMicrosecond folds the round-trip halving and the unit conversion for
// ~340 m/s sound speed into one constant.
const CMPerMicrosecond = 0.017

var (
	sleep   = time.Sleep
	afterFn = time.After
)

// Sample is one cycle's range measurement. A width of zero means no echo
// was observed within the observation window; it is "no obstacle", never
// "zero distance".
type Sample struct {
	EchoWidthUS uint32
}

func (s Sample) NoEcho() bool { return s.EchoWidthUS == 0 }

func (s Sample) DistanceCM() float64 { return float64(s.EchoWidthUS) * CMPerMicrosecond }

// Cell is a single-producer/single-consumer slot for the published echo
// width. The producer is the edge-event goroutine, the consumer is the
// control loop; the sequence counter lets the consumer distinguish a fresh
// publication from a stale one, so a missed echo is reported explicitly
// instead of silently reusing the previous width.
type Cell struct {
	// Packed (seq << 32) | width so one atomic word carries both.
	v atomic.Uint64
}

func (c *Cell) publish(widthUS uint32) {
	seq := uint32(c.v.Load()>>32) + 1
	c.v.Store(uint64(seq)<<32 | uint64(widthUS))
}

func (c *Cell) load() (widthUS, seq uint32) {
	v := c.v.Load()
	return uint32(v), uint32(v >> 32)
}

// Pin is the trigger output contract.
type Pin interface {
	Set(on bool) error
}

// Config carries the pulse and observation timing.
type Config struct {
	// Settle holds the trigger low before the pulse.
	Settle time.Duration
	// Pulse is the trigger high time; the HC-SR04 wants at least 10 µs.
	Pulse time.Duration
	// Window bounds the wait for the falling echo edge after the pulse.
	Window time.Duration
}

// Sampler owns the trigger pin and the echo cell.
//
// Measure must only be called from the control loop; HandleEdge must only be
// called from the gpio event goroutine.
type Sampler struct {
	trig Pin
	cfg  Config

	cell    Cell
	notify  chan struct{}
	lastSeq uint32

	// Edge-goroutine-local pulse tracking.
	riseAt   time.Duration
	haveRise bool
}

func New(trig Pin, cfg Config) *Sampler {
	if cfg.Settle <= 0 {
		cfg.Settle = 2 * time.Millisecond
	}
	if cfg.Pulse <= 0 {
		cfg.Pulse = 10 * time.Microsecond
	}
	if cfg.Window <= 0 {
		cfg.Window = 50 * time.Millisecond
	}
	return &Sampler{trig: trig, cfg: cfg, notify: make(chan struct{}, 1)}
}

// HandleEdge consumes one kernel edge event. The rising edge marks the echo
// start; the falling edge publishes the width and signals the waiting
// measurement. It never blocks.
func (s *Sampler) HandleEdge(e gpio.EdgeEvent) {
	switch e.Edge {
	case gpio.RisingEdge:
		s.riseAt = e.Timestamp
		s.haveRise = true
	case gpio.FallingEdge:
		if !s.haveRise {
			return
		}
		s.haveRise = false
		width := (e.Timestamp - s.riseAt).Microseconds()
		if width <= 0 {
			// Sub-microsecond or out-of-order timestamps are noise.
			return
		}
		s.cell.publish(uint32(width))
		select {
		case s.notify <- struct{}{}:
		default:
		}
	}
}

// Measure fires one trigger pulse and waits at most the observation window
// for a published echo. There is no error return: trigger-pin failures and
// missed echoes both surface as a no-echo sample.
func (s *Sampler) Measure() Sample {
	// Drop any completion signal left over from a late echo of the
	// previous cycle; the sequence check below handles its width.
	select {
	case <-s.notify:
	default:
	}

	_ = s.trig.Set(false)
	sleep(s.cfg.Settle)
	_ = s.trig.Set(true)
	sleep(s.cfg.Pulse)
	_ = s.trig.Set(false)

	select {
	case <-s.notify:
	case <-afterFn(s.cfg.Window):
	}

	width, seq := s.cell.load()
	if seq == s.lastSeq {
		// Nothing new was published this cycle.
		return Sample{}
	}
	s.lastSeq = seq
	return Sample{EchoWidthUS: width}
}

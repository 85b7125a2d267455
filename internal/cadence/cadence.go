// Package cadence implements a small duty-cycle sequencer: a declarative
// list of (level, duration) phases advanced by the control loop's elapsed
// time. The buzzer cadence, the motor pulse train and the heartbeat LED are
// three instances differing only in their phase table and looping mode.
//
// A Sequencer is deterministic and self-contained. Not safe for concurrent
// use; the control loop is its only caller.
package cadence

import "time"

// Phase is one step of a duty cycle: an output level held for a duration.
// Durations must be positive.
type Phase struct {
	On       bool
	Duration time.Duration
}

type Sequencer struct {
	phases []Phase
	loop   bool

	running bool
	idx     int
	elapsed time.Duration
}

// NewLoop returns a sequencer that cycles through phases indefinitely once
// started.
func NewLoop(phases ...Phase) *Sequencer {
	return &Sequencer{phases: phases, loop: true}
}

// NewOneShot returns a sequencer that stops itself after the final phase.
func NewOneShot(phases ...Phase) *Sequencer {
	return &Sequencer{phases: phases}
}

// Start resets to the first phase and begins running. Restarting an already
// running sequencer snaps it back to phase one.
func (s *Sequencer) Start() {
	s.running = true
	s.idx = 0
	s.elapsed = 0
}

// Stop halts the sequencer and resets all phase state, ready for a clean
// Start later. Stopping an idle sequencer is a no-op.
func (s *Sequencer) Stop() {
	s.running = false
	s.idx = 0
	s.elapsed = 0
}

// Advance consumes dt of elapsed time, crossing as many phase boundaries as
// dt covers. A one-shot sequencer stops itself when the last phase ends.
func (s *Sequencer) Advance(dt time.Duration) {
	if !s.running || len(s.phases) == 0 {
		return
	}
	s.elapsed += dt
	for s.elapsed >= s.phases[s.idx].Duration {
		s.elapsed -= s.phases[s.idx].Duration
		s.idx++
		if s.idx < len(s.phases) {
			continue
		}
		if s.loop {
			s.idx = 0
			continue
		}
		s.Stop()
		return
	}
}

// On reports the current output level. An idle sequencer is always off.
func (s *Sequencer) On() bool {
	return s.running && s.phases[s.idx].On
}

func (s *Sequencer) Running() bool { return s.running }

// Period is the summed duration of all phases.
func (s *Sequencer) Period() time.Duration {
	var sum time.Duration
	for _, p := range s.phases {
		sum += p.Duration
	}
	return sum
}

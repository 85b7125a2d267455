package cadence

import (
	"testing"
	"time"
)

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func TestLoop_PhaseProgression(t *testing.T) {
	s := NewLoop(
		Phase{On: true, Duration: ms(100)},
		Phase{On: false, Duration: ms(100)},
		Phase{On: true, Duration: ms(100)},
		Phase{On: false, Duration: ms(700)},
	)
	if s.Period() != ms(1000) {
		t.Fatalf("period=%s want 1s", s.Period())
	}
	if s.On() {
		t.Fatalf("idle sequencer must be off")
	}

	s.Start()
	if !s.On() {
		t.Fatalf("expected tone right after Start")
	}

	// Walk a full period in 25ms steps and collect on-time.
	var onTime time.Duration
	for i := 0; i < 40; i++ {
		if s.On() {
			onTime += ms(25)
		}
		s.Advance(ms(25))
	}
	if onTime != ms(200) {
		t.Fatalf("on-time over one period=%s want 200ms", onTime)
	}
	// Back at phase one.
	if !s.On() {
		t.Fatalf("expected tone at start of second period")
	}
}

func TestLoop_AdvanceSpanningMultiplePhases(t *testing.T) {
	s := NewLoop(
		Phase{On: true, Duration: ms(100)},
		Phase{On: false, Duration: ms(100)},
	)
	s.Start()
	s.Advance(ms(350)) // 3.5 phases in one step
	if s.On() {
		t.Fatalf("expected off phase after 350ms")
	}
	s.Advance(ms(50))
	if !s.On() {
		t.Fatalf("expected wrap to on phase at 400ms")
	}
}

func TestOneShot_StopsAfterLastPhase(t *testing.T) {
	s := NewOneShot(
		Phase{On: true, Duration: ms(100)},
		Phase{On: false, Duration: ms(100)},
		Phase{On: true, Duration: ms(100)},
	)
	if s.Period() != ms(300) {
		t.Fatalf("period=%s want 300ms", s.Period())
	}

	s.Start()
	s.Advance(ms(250))
	if !s.On() || !s.Running() {
		t.Fatalf("expected final pulse still active at 250ms")
	}
	s.Advance(ms(50))
	if s.Running() || s.On() {
		t.Fatalf("expected one-shot finished at 300ms")
	}
}

func TestStop_ResetsToFirstPhase(t *testing.T) {
	s := NewLoop(
		Phase{On: true, Duration: ms(100)},
		Phase{On: false, Duration: ms(100)},
	)
	s.Start()
	s.Advance(ms(150))
	s.Stop()
	if s.On() || s.Running() {
		t.Fatalf("expected off after Stop")
	}
	s.Start()
	if !s.On() {
		t.Fatalf("expected restart from first phase")
	}
}

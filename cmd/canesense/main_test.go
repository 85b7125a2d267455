package main

import (
	"context"
	"testing"
	"time"

	"canesense/internal/sim"
)

func TestPacedSource_AdvancesOncePerPoll(t *testing.T) {
	script, err := sim.ParseScriptYAML([]byte(`
version: 1
keyframes:
  - t: 0s
    distance_cm: 30
  - t: 125ms
    distance_cm: 60
`))
	if err != nil {
		t.Fatalf("ParseScriptYAML: %v", err)
	}
	src := sim.NewSource(script)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := &pacedSource{src: src, dt: 125 * time.Millisecond, done: cancel}

	// First poll samples t=0.
	if _, err := p.Pressed(); err != nil {
		t.Fatalf("Pressed: %v", err)
	}
	if got := src.Measure().DistanceCM(); got < 29 || got > 31 {
		t.Fatalf("first cycle distance=%v want ~30", got)
	}

	// Second poll steps to t=125ms.
	if _, err := p.Pressed(); err != nil {
		t.Fatalf("Pressed: %v", err)
	}
	if got := src.Measure().DistanceCM(); got < 59 || got > 61 {
		t.Fatalf("second cycle distance=%v want ~60", got)
	}

	// Third poll runs past the script end and stops the run.
	if _, err := p.Pressed(); err != nil {
		t.Fatalf("Pressed: %v", err)
	}
	select {
	case <-ctx.Done():
	default:
		t.Fatalf("expected context canceled after script end")
	}
}

func TestLogPin_TransitionsOnly(t *testing.T) {
	p := &logPin{name: "buzzer"}

	states := []bool{false, false, true, true, false}
	for _, s := range states {
		if err := p.Set(s); err != nil {
			t.Fatalf("Set(%v): %v", s, err)
		}
	}
	if p.on {
		t.Fatalf("pin left on after final off")
	}
}

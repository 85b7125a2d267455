package sim

import (
	"math"
	"testing"
	"time"

	"canesense/internal/tilt"
)

const script = `
version: 1
keyframes:
  - t: 0s
    distance_cm: 30
  - t: 1s
    distance_cm: 95
    pitch_deg: 10
  - t: 2s
    distance_cm: 0
    button: true
  - t: 3s
    distance_cm: 30
`

func TestParseScriptYAML(t *testing.T) {
	s, err := ParseScriptYAML([]byte(script))
	if err != nil {
		t.Fatalf("ParseScriptYAML: %v", err)
	}
	if len(s.Keyframes) != 4 {
		t.Fatalf("keyframes=%d want 4", len(s.Keyframes))
	}
	if s.Duration != 3*time.Second {
		t.Fatalf("duration=%s want 3s (derived from last keyframe)", s.Duration)
	}
}

func TestParseScriptYAML_Rejections(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"bad version", "version: 2\nkeyframes:\n  - t: 0s\n"},
		{"no keyframes", "version: 1\n"},
		{"out of order", "version: 1\nkeyframes:\n  - t: 2s\n  - t: 1s\n"},
		{"negative distance", "version: 1\nkeyframes:\n  - t: 0s\n    distance_cm: -1\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseScriptYAML([]byte(tc.in)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestSource_StepHoldReplay(t *testing.T) {
	s, err := ParseScriptYAML([]byte(script))
	if err != nil {
		t.Fatalf("ParseScriptYAML: %v", err)
	}
	src := NewSource(s)

	if got := src.Measure().DistanceCM(); math.Abs(got-30) > 0.02 {
		t.Fatalf("t=0 distance=%v want ~30", got)
	}

	// Still the first keyframe just before t=1s.
	src.Advance(999 * time.Millisecond)
	if got := src.Measure().DistanceCM(); math.Abs(got-30) > 0.02 {
		t.Fatalf("t=999ms distance=%v want ~30", got)
	}

	src.Advance(1 * time.Millisecond)
	if got := src.Measure().DistanceCM(); math.Abs(got-95) > 0.02 {
		t.Fatalf("t=1s distance=%v want ~95", got)
	}
	raw, err := src.ReadRaw()
	if err != nil {
		t.Fatalf("ReadRaw: %v", err)
	}
	pose := tilt.FromAccel(float64(raw.Ax), float64(raw.Ay), float64(raw.Az))
	if math.Abs(pose.PitchDeg-10) > 0.01 {
		t.Fatalf("pitch=%v want ~10", pose.PitchDeg)
	}

	// t=2s: echo gone, button pressed.
	src.Advance(1 * time.Second)
	if !src.Measure().NoEcho() {
		t.Fatalf("expected no echo at t=2s")
	}
	pressed, err := src.Pressed()
	if err != nil || !pressed {
		t.Fatalf("pressed=%v err=%v want true", pressed, err)
	}

	if src.Finished() {
		t.Fatalf("not finished at t=2s")
	}
	src.Advance(1*time.Second + time.Millisecond)
	if !src.Finished() {
		t.Fatalf("expected finished past 3s")
	}
}

// Package sim drives the control loop without hardware: a yaml keyframe
// script describes distance, pitch and button state over time, and a Source
// replays it as scripted sonar, orientation and button inputs.
package sim

import (
	"fmt"
	"math"
	"os"
	"time"

	"canesense/internal/sensors/mpu6050"
	"canesense/internal/sonar"
	"gopkg.in/yaml.v3"
)

// Script is a deterministic bench scenario.
//
// Time is expressed as Go duration strings (e.g. "0s", "250ms", "10s").
// If Duration is zero, it is derived from the latest keyframe time.
// Keyframes must use non-decreasing t values; values hold until the next
// keyframe (step interpolation, so button presses stay crisp).
//
// YAML schema (v1):
//
//	version: 1
//	duration: 10s
//	keyframes:
//	  - t: 0s
//	    distance_cm: 30
//	    pitch_deg: 0
//	  - t: 2s
//	    distance_cm: 95
//	  - t: 4s
//	    distance_cm: 30
//
// Keep this struct stable: scripts are test fixtures.
type Script struct {
	Version   int           `yaml:"version"`
	Duration  time.Duration `yaml:"duration"`
	Keyframes []Keyframe    `yaml:"keyframes"`
}

// Keyframe is a time-stamped input state. A distance of zero models a
// missing echo.
type Keyframe struct {
	T          time.Duration `yaml:"t"`
	DistanceCM float64       `yaml:"distance_cm"`
	PitchDeg   float64       `yaml:"pitch_deg"`
	Button     bool          `yaml:"button"`
}

func ParseScriptYAML(b []byte) (Script, error) {
	var s Script
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Script{}, err
	}
	if s.Version != 1 {
		return Script{}, fmt.Errorf("sim: unsupported script version %d", s.Version)
	}
	if len(s.Keyframes) == 0 {
		return Script{}, fmt.Errorf("sim: script has no keyframes")
	}
	last := time.Duration(-1)
	for i, k := range s.Keyframes {
		if k.T < last {
			return Script{}, fmt.Errorf("sim: keyframe %d out of order", i)
		}
		if k.DistanceCM < 0 {
			return Script{}, fmt.Errorf("sim: keyframe %d has negative distance", i)
		}
		last = k.T
	}
	if s.Duration == 0 {
		s.Duration = last
	}
	return s, nil
}

func LoadScript(path string) (Script, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Script{}, err
	}
	return ParseScriptYAML(b)
}

// Source replays a script. It implements the control loop's Sonar, IMU and
// Button contracts; the runner advances the timeline once per cycle.
type Source struct {
	script Script
	now    time.Duration
}

func NewSource(script Script) *Source {
	return &Source{script: script}
}

// Advance moves the timeline forward one cycle.
func (s *Source) Advance(dt time.Duration) {
	s.now += dt
}

// Finished reports whether the timeline has run past the script's duration.
func (s *Source) Finished() bool {
	return s.now > s.script.Duration
}

func (s *Source) at() Keyframe {
	cur := s.script.Keyframes[0]
	for _, k := range s.script.Keyframes {
		if k.T > s.now {
			break
		}
		cur = k
	}
	return cur
}

func (s *Source) Measure() sonar.Sample {
	d := s.at().DistanceCM
	if d <= 0 {
		return sonar.Sample{}
	}
	return sonar.Sample{EchoWidthUS: uint32(math.Round(d / sonar.CMPerMicrosecond))}
}

// ReadRaw synthesizes an accelerometer frame whose tilt estimate reproduces
// the scripted pitch: gravity rotated about Y only, so roll stays zero.
func (s *Source) ReadRaw() (mpu6050.Raw, error) {
	const g = 16384.0
	rad := s.at().PitchDeg * math.Pi / 180.0
	return mpu6050.Raw{
		Ax: int16(math.Round(-g * math.Sin(rad))),
		Az: int16(math.Round(g * math.Cos(rad))),
	}, nil
}

func (s *Source) Pressed() (bool, error) {
	return s.at().Button, nil
}

// Package tilt derives a single-frame tilt estimate from raw accelerometer
// readings and applies the zero-point calibration baseline.
//
// There is intentionally no filtering or gyro fusion here: each frame stands
// alone, and the cane's calibration button defines the reference pose.
package tilt

import "math"

const degPerRad = 180.0 / math.Pi

// Pose is the accelerometer-only attitude estimate in degrees.
type Pose struct {
	RollDeg  float64
	PitchDeg float64
}

// FromAccel computes roll and pitch from raw accelerometer components.
// Units cancel; only the ratios matter.
//
//	roll  = atan2(ay, az)
//	pitch = atan(-ax / sqrt(ay² + az²))
func FromAccel(ax, ay, az float64) Pose {
	return Pose{
		RollDeg:  math.Atan2(ay, az) * degPerRad,
		PitchDeg: math.Atan(-ax/math.Sqrt(ay*ay+az*az)) * degPerRad,
	}
}

// CompensateCM projects a raw range measurement onto the ground plane using
// the cosine of pitch. For fixed distance the result is non-increasing as
// |pitch| grows from zero.
func CompensateCM(distanceCM, pitchDeg float64) float64 {
	return distanceCM * math.Cos(pitchDeg/degPerRad)
}

// Baseline is the zero-point reference captured by a calibration press.
// The zero value (0,0) is the startup baseline. It is replaced wholesale by
// the control loop and never mutated in place.
type Baseline struct {
	ZeroPitchDeg   float64
	ZeroDistanceCM float64
}

// Reading is the derived per-frame view of a range measurement against the
// baseline. It is computed fresh each cycle and never stored.
type Reading struct {
	PitchRelDeg       float64
	DistanceCompCM    float64
	DistanceRelCM     float64
	DistanceCompRelCM float64
}

// Relative compensates distanceCM for the pose's pitch and expresses pitch
// and distance relative to the baseline.
func (b Baseline) Relative(p Pose, distanceCM float64) Reading {
	comp := CompensateCM(distanceCM, p.PitchDeg)
	return Reading{
		PitchRelDeg:       p.PitchDeg - b.ZeroPitchDeg,
		DistanceCompCM:    comp,
		DistanceRelCM:     distanceCM - b.ZeroDistanceCM,
		DistanceCompRelCM: comp - b.ZeroDistanceCM,
	}
}

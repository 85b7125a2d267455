// Package gpio wraps the Linux GPIO character device for the handful of
// lines the cane uses: plain outputs (trigger, buzzer, motor, LED), the
// pulled-up calibration button, and the echo line watched for both edges.
//
// Lines are looked up by name (e.g. "GPIO24") across all gpiochips, the way
// Pi kernels expose header pins.
package gpio

import "time"

// Edge identifies which transition an EdgeEvent reports.
type Edge int

const (
	RisingEdge Edge = iota
	FallingEdge
)

// EdgeEvent is one kernel edge event on a watched input line.
//
// Timestamp is the kernel's monotonic event timestamp, not wall-clock time;
// only differences between timestamps are meaningful.
type EdgeEvent struct {
	Edge      Edge
	Timestamp time.Duration
}

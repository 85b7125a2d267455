// Package diag emits the per-cycle diagnostic text stream. Downstream
// relay/visualization tools parse these lines by field order and label, so
// the formats here are a compatibility surface: do not reword them.
package diag

import (
	"fmt"
	"io"

	"canesense/internal/sensors/mpu6050"
)

// Recorder writes CRLF-terminated diagnostic records to one sink, typically
// a serial port or stdout.
type Recorder struct {
	w io.Writer
}

func NewRecorder(w io.Writer) *Recorder {
	return &Recorder{w: w}
}

func (r *Recorder) printf(format string, args ...any) {
	if r == nil || r.w == nil {
		return
	}
	// Diagnostics are best-effort; a broken sink must never stall the loop.
	_, _ = fmt.Fprintf(r.w, format, args...)
}

func (r *Recorder) Banner() {
	r.printf("HC-SR04 + MPU6050 demo\r\n")
}

func (r *Recorder) InitResult(ok bool) {
	state := "FAIL"
	if ok {
		state = "OK"
	}
	r.printf("MPU6050 init: %s\r\n", state)
}

func (r *Recorder) Distance(cm float64) {
	r.printf("distance: %.2f cm\r\n", cm)
}

func (r *Recorder) MPU(raw mpu6050.Raw, rollDeg, pitchDeg, pitchRelDeg float64) {
	r.printf("MPU ax:%d ay:%d az:%d gx:%d gy:%d gz:%d roll:%.2f pitch:%.2f pitch_rel:%.2f\r\n",
		raw.Ax, raw.Ay, raw.Az, raw.Gx, raw.Gy, raw.Gz, rollDeg, pitchDeg, pitchRelDeg)
}

func (r *Recorder) Compensated(compCM, relCM, compRelCM float64) {
	r.printf("distance_comp: %.2f cm distance_rel: %.2f cm distance_comp_rel: %.2f cm\r\n",
		compCM, relCM, compRelCM)
}

func (r *Recorder) ReadFail() {
	r.printf("MPU read fail\r\n")
}

func (r *Recorder) Calibrated(zeroPitchDeg, zeroDistanceCM float64) {
	r.printf("Calibrated: zero_pitch=%.2f deg, zero_distance=%.2f cm\r\n",
		zeroPitchDeg, zeroDistanceCM)
}

// CalibrationDroppedReadFail records a calibration request discarded because
// the orientation read failed on the same cycle.
func (r *Recorder) CalibrationDroppedReadFail() {
	r.printf("Calibrated: button pressed but MPU read fail\r\n")
}

// CalibrationNotReady records a calibration request discarded because the
// orientation sensor never initialized.
func (r *Recorder) CalibrationNotReady() {
	r.printf("Calibrated: button pressed (MPU not ready)\r\n")
}

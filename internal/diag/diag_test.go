package diag

import (
	"bytes"
	"testing"

	"canesense/internal/sensors/mpu6050"
)

func TestRecorder_FrozenFormats(t *testing.T) {
	var buf bytes.Buffer
	r := NewRecorder(&buf)

	r.Distance(51.0)
	r.MPU(mpu6050.Raw{Ax: -120, Ay: 35, Az: 16300, Gx: 1, Gy: -2, Gz: 3}, 0.12, -0.42, -0.42)
	r.Compensated(50.99, 51.0, 50.99)

	want := "distance: 51.00 cm\r\n" +
		"MPU ax:-120 ay:35 az:16300 gx:1 gy:-2 gz:3 roll:0.12 pitch:-0.42 pitch_rel:-0.42\r\n" +
		"distance_comp: 50.99 cm distance_rel: 51.00 cm distance_comp_rel: 50.99 cm\r\n"
	if got := buf.String(); got != want {
		t.Fatalf("records:\n%q\nwant:\n%q", got, want)
	}
}

func TestRecorder_CalibrationRecords(t *testing.T) {
	var buf bytes.Buffer
	r := NewRecorder(&buf)

	r.Calibrated(-1.25, 51.0)
	r.CalibrationDroppedReadFail()
	r.CalibrationNotReady()

	want := "Calibrated: zero_pitch=-1.25 deg, zero_distance=51.00 cm\r\n" +
		"Calibrated: button pressed but MPU read fail\r\n" +
		"Calibrated: button pressed (MPU not ready)\r\n"
	if got := buf.String(); got != want {
		t.Fatalf("records:\n%q\nwant:\n%q", got, want)
	}
}

func TestRecorder_NilSinkIsSafe(t *testing.T) {
	var r *Recorder
	r.Distance(1)
	r.ReadFail()

	NewRecorder(nil).Distance(1)
}

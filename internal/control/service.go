// Package control runs the per-cycle orchestration: button edge and
// calibration lifecycle, range and orientation sampling, tilt-compensated
// relative distance, alert stepping, heartbeat, and the diagnostic record.
package control

import (
	"context"
	"log"
	"time"

	"canesense/internal/alert"
	"canesense/internal/cadence"
	"canesense/internal/diag"
	"canesense/internal/sensors/mpu6050"
	"canesense/internal/sonar"
	"canesense/internal/tilt"
)

// Sonar yields one range sample per cycle. No error: a missed echo is a
// no-echo sample.
type Sonar interface {
	Measure() sonar.Sample
}

// IMU yields one raw orientation frame per cycle, or an error on a bus
// transaction failure.
type IMU interface {
	ReadRaw() (mpu6050.Raw, error)
}

// Button reports the calibration button level, pressed = true.
type Button interface {
	Pressed() (bool, error)
}

// Pin drives one actuator output.
type Pin interface {
	Set(on bool) error
}

type Config struct {
	// Interval is the target cycle cadence.
	Interval time.Duration
	Alert    alert.Config
}

// Deps are the hardware (or scripted) collaborators. IMU may be nil when
// sensor init failed at startup: the loop then runs ultrasonic-only and
// skips all orientation-dependent analysis for the process lifetime.
type Deps struct {
	Sonar  Sonar
	IMU    IMU
	Button Button

	Buzzer Pin
	Motor  Pin
	LED    Pin

	Rec *diag.Recorder
}

func heartbeatPhases() []cadence.Phase {
	return []cadence.Phase{
		{On: true, Duration: 100 * time.Millisecond},
		{On: false, Duration: 100 * time.Millisecond},
		{On: true, Duration: 100 * time.Millisecond},
		{On: false, Duration: 100 * time.Millisecond},
		{On: true, Duration: 300 * time.Millisecond},
		{On: false, Duration: 300 * time.Millisecond},
	}
}

// Service owns every piece of loop state. Nothing here is shared with other
// goroutines; the only cross-goroutine datum in the system is the sonar echo
// cell, which the sonar package already guards.
type Service struct {
	cfg  Config
	deps Deps

	alerts    *alert.Coordinator
	heartbeat *cadence.Sequencer
	baseline  tilt.Baseline

	prevPressed      bool
	calibratePending bool
}

func New(cfg Config, deps Deps) *Service {
	if cfg.Interval <= 0 {
		cfg.Interval = 125 * time.Millisecond
	}
	s := &Service{
		cfg:       cfg,
		deps:      deps,
		alerts:    alert.New(cfg.Alert),
		heartbeat: cadence.NewLoop(heartbeatPhases()...),
	}
	s.heartbeat.Start()
	return s
}

// Run executes the loop until ctx is canceled, then forces all actuators
// off. No cycle error is fatal: the loop degrades and keeps going.
func (s *Service) Run(ctx context.Context) error {
	t := time.NewTicker(s.cfg.Interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			s.allOff()
			return ctx.Err()
		case <-t.C:
			s.step(s.cfg.Interval)
		}
	}
}

func (s *Service) allOff() {
	s.setPin(s.deps.Buzzer, false)
	s.setPin(s.deps.Motor, false)
	s.setPin(s.deps.LED, false)
}

func (s *Service) setPin(p Pin, on bool) {
	if p == nil {
		return
	}
	if err := p.Set(on); err != nil {
		log.Printf("control: pin set failed: %v", err)
	}
}

// step runs exactly one cycle. dt is the elapsed time the cycle represents;
// Run always passes the configured interval, tests pass whatever they need.
func (s *Service) step(dt time.Duration) {
	s.pollButton()

	smp := s.deps.Sonar.Measure()
	s.deps.Rec.Distance(smp.DistanceCM())

	if s.deps.IMU == nil {
		// Orientation disabled since startup: ultrasonic-only operation,
		// no alert analysis, and calibration has nothing to capture.
		s.alerts.TickCooldown(dt)
		if s.calibratePending {
			s.calibratePending = false
			s.deps.Rec.CalibrationNotReady()
		}
	} else if raw, err := s.deps.IMU.ReadRaw(); err != nil {
		// Skip this cycle's alert evaluation; actuators hold their level,
		// but the motor cooldown keeps counting elapsed time.
		log.Printf("control: mpu read failed: %v", err)
		s.deps.Rec.ReadFail()
		s.alerts.TickCooldown(dt)
		if s.calibratePending {
			s.calibratePending = false
			s.deps.Rec.CalibrationDroppedReadFail()
		}
	} else {
		s.evaluate(raw, smp, dt)
	}

	// The heartbeat advances whether or not the sensor chain is healthy.
	s.heartbeat.Advance(dt)
	s.setPin(s.deps.LED, s.heartbeat.On())
}

func (s *Service) pollButton() {
	if s.deps.Button == nil {
		return
	}
	pressed, err := s.deps.Button.Pressed()
	if err != nil {
		log.Printf("control: button read failed: %v", err)
		return
	}
	// Released->pressed edge only; holding does not re-trigger.
	if pressed && !s.prevPressed && !s.calibratePending {
		s.calibratePending = true
	}
	s.prevPressed = pressed
}

func (s *Service) evaluate(raw mpu6050.Raw, smp sonar.Sample, dt time.Duration) {
	pose := tilt.FromAccel(float64(raw.Ax), float64(raw.Ay), float64(raw.Az))

	// A pending calibration captures this frame's raw pitch and raw
	// distance, so re-evaluating the same frame yields zero relatives.
	if s.calibratePending {
		s.calibratePending = false
		s.baseline = tilt.Baseline{ZeroPitchDeg: pose.PitchDeg, ZeroDistanceCM: smp.DistanceCM()}
		s.deps.Rec.Calibrated(s.baseline.ZeroPitchDeg, s.baseline.ZeroDistanceCM)
	}

	rd := s.baseline.Relative(pose, smp.DistanceCM())

	out := s.alerts.Step(alert.Input{
		EchoWidthUS:       smp.EchoWidthUS,
		DistanceCompRelCM: rd.DistanceCompRelCM,
	}, dt)
	s.setPin(s.deps.Buzzer, out.Buzzer)
	s.setPin(s.deps.Motor, out.Motor)

	s.deps.Rec.MPU(raw, pose.RollDeg, pose.PitchDeg, rd.PitchRelDeg)
	s.deps.Rec.Compensated(rd.DistanceCompCM, rd.DistanceRelCM, rd.DistanceCompRelCM)
}

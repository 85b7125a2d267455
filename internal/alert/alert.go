// Package alert decides, once per control cycle, whether a qualifying
// drop/obstacle event is present and drives the buzzer cadence and the
// vibration-motor pulse train. All timing is consumed as per-cycle elapsed
// time, so the coordinator is fully deterministic under test.
package alert

import (
	"time"

	"canesense/internal/cadence"
)

// Config carries the hit predicate and cooldown tuning.
type Config struct {
	// SafetyMarginCM is the compensated relative distance above which a
	// frame qualifies as a drop/hole in the ground ahead.
	SafetyMarginCM float64
	// HitNeed is the number of consecutive qualifying frames required
	// before any actuator starts.
	HitNeed int
	// MotorCooldown is the quiescent interval after a motor pulse train
	// starts during which no new pulse train may begin.
	MotorCooldown time.Duration
}

// Input is one cycle's measurement view.
type Input struct {
	// EchoWidthUS of zero means no echo was observed; that is never a hit.
	EchoWidthUS       uint32
	DistanceCompRelCM float64
}

// Outputs are the actuator levels for this cycle.
type Outputs struct {
	Buzzer bool
	Motor  bool

	HitCount       int
	CooldownActive bool
}

// Buzzer: two short tones then a long rest, 1 s period, looping while the
// alert holds. Motor: a one-shot double pulse.
func buzzerPhases() []cadence.Phase {
	return []cadence.Phase{
		{On: true, Duration: 100 * time.Millisecond},
		{On: false, Duration: 100 * time.Millisecond},
		{On: true, Duration: 100 * time.Millisecond},
		{On: false, Duration: 700 * time.Millisecond},
	}
}

func motorPhases() []cadence.Phase {
	return []cadence.Phase{
		{On: true, Duration: 100 * time.Millisecond},
		{On: false, Duration: 100 * time.Millisecond},
		{On: true, Duration: 100 * time.Millisecond},
	}
}

// Coordinator is the alert state machine. Not safe for concurrent use; it is
// owned by the control loop.
type Coordinator struct {
	cfg Config

	hitCount int

	buzzer *cadence.Sequencer
	motor  *cadence.Sequencer

	// motorLatched blocks retriggering while set; it clears on any
	// non-qualifying frame, while cooldownLeft alone gates new starts.
	motorLatched bool
	cooldownLeft time.Duration
}

func New(cfg Config) *Coordinator {
	if cfg.SafetyMarginCM == 0 {
		cfg.SafetyMarginCM = 50.0
	}
	if cfg.HitNeed <= 0 {
		cfg.HitNeed = 2
	}
	if cfg.MotorCooldown <= 0 {
		cfg.MotorCooldown = 5 * time.Second
	}
	return &Coordinator{
		cfg:    cfg,
		buzzer: cadence.NewLoop(buzzerPhases()...),
		motor:  cadence.NewOneShot(motorPhases()...),
	}
}

// TickCooldown consumes dt of the motor cooldown without evaluating the hit
// predicate. The control loop calls it on cycles whose alert evaluation is
// skipped, so the cooldown tracks elapsed time like a free-running timer.
func (c *Coordinator) TickCooldown(dt time.Duration) {
	if c.cooldownLeft > 0 {
		c.cooldownLeft -= dt
		if c.cooldownLeft < 0 {
			c.cooldownLeft = 0
		}
	}
}

// Step consumes one cycle's input plus the elapsed time since the previous
// cycle and returns the actuator levels.
//
// The cooldown timer always runs to completion, including across clears.
// Everything else resets the instant the hit predicate goes false.
func (c *Coordinator) Step(in Input, dt time.Duration) Outputs {
	c.TickCooldown(dt)

	hit := in.EchoWidthUS > 0 && in.DistanceCompRelCM > c.cfg.SafetyMarginCM
	if !hit {
		c.hitCount = 0
		c.buzzer.Stop()
		c.motor.Stop()
		c.motorLatched = false
		return Outputs{CooldownActive: c.cooldownLeft > 0}
	}

	c.hitCount++
	if c.hitCount >= c.cfg.HitNeed {
		if !c.buzzer.Running() {
			// Fresh alert: cadence restarts from the first tone, and the
			// motor fires only if neither cooldown nor the latch blocks it.
			c.buzzer.Start()
			if c.cooldownLeft == 0 && !c.motorLatched {
				c.motor.Start()
				c.motorLatched = true
				c.cooldownLeft = c.cfg.MotorCooldown
			}
		} else {
			c.buzzer.Advance(dt)
			c.motor.Advance(dt)
		}
	}

	return Outputs{
		Buzzer:         c.buzzer.On(),
		Motor:          c.motor.On(),
		HitCount:       c.hitCount,
		CooldownActive: c.cooldownLeft > 0,
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"canesense/internal/alert"
	"canesense/internal/config"
	"canesense/internal/control"
	"canesense/internal/diag"
	"canesense/internal/gpio"
	"canesense/internal/i2c"
	"canesense/internal/sensors/mpu6050"
	"canesense/internal/sim"
	"canesense/internal/sonar"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "./canesense.yaml", "Path to YAML config")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var sink io.Writer = os.Stdout
	if cfg.Serial.Device != "" {
		f, err := diag.OpenSerial(cfg.Serial.Device, cfg.Serial.Baud)
		if err != nil {
			log.Fatalf("serial open failed: %v", err)
		}
		defer f.Close()
		sink = f
	}
	rec := diag.NewRecorder(sink)

	log.Printf("canesense starting")

	if cfg.Sim.Enable {
		err = runSim(ctx, cancel, cfg, rec)
	} else {
		err = runLive(ctx, cfg, rec)
	}
	if err != nil {
		log.Fatalf("run failed: %v", err)
	}
	log.Printf("canesense stopping")
}

func alertConfig(cfg config.Config) alert.Config {
	return alert.Config{
		SafetyMarginCM: cfg.Alert.SafetyMarginCM,
		HitNeed:        cfg.Alert.HitNeed,
		MotorCooldown:  cfg.Alert.MotorCooldown,
	}
}

func runLive(ctx context.Context, cfg config.Config, rec *diag.Recorder) error {
	trig, err := gpio.OpenOutput(cfg.GPIO.Trig, false)
	if err != nil {
		return fmt.Errorf("trig: %w", err)
	}
	defer trig.Close()

	buzzer, err := gpio.OpenOutput(cfg.GPIO.Buzzer, false)
	if err != nil {
		return fmt.Errorf("buzzer: %w", err)
	}
	defer buzzer.Close()

	motor, err := gpio.OpenOutput(cfg.GPIO.Motor, false)
	if err != nil {
		return fmt.Errorf("motor: %w", err)
	}
	defer motor.Close()

	// The heartbeat LED sinks current, so it lights on logic 0.
	led, err := gpio.OpenOutput(cfg.GPIO.LED, true)
	if err != nil {
		return fmt.Errorf("led: %w", err)
	}
	defer led.Close()

	button, err := gpio.OpenButton(cfg.GPIO.Button)
	if err != nil {
		return fmt.Errorf("button: %w", err)
	}
	defer button.Close()

	sampler := sonar.New(trig, sonar.Config{Window: cfg.Loop.EchoWindow})
	echo, err := gpio.OpenEdgeInput(cfg.GPIO.Echo, sampler.HandleEdge)
	if err != nil {
		return fmt.Errorf("echo: %w", err)
	}
	defer echo.Close()

	bus, err := i2c.Open(fmt.Sprintf("/dev/i2c-%d", cfg.I2C.Bus))
	if err != nil {
		return fmt.Errorf("i2c: %w", err)
	}
	defer bus.Close()

	rec.Banner()

	// A dead orientation sensor is not fatal: the loop runs ultrasonic-only
	// and calibration requests are reported as not ready.
	var imu control.IMU
	if dev, err := mpu6050.New(bus.Dev(cfg.I2C.Addr)); err != nil {
		log.Printf("mpu6050 init failed, continuing without orientation: %v", err)
		rec.InitResult(false)
	} else {
		rec.InitResult(true)
		imu = dev
	}

	svc := control.New(
		control.Config{Interval: cfg.Loop.Interval, Alert: alertConfig(cfg)},
		control.Deps{
			Sonar:  sampler,
			IMU:    imu,
			Button: button,
			Buzzer: buzzer,
			Motor:  motor,
			LED:    led,
			Rec:    rec,
		})

	if err := svc.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func runSim(ctx context.Context, cancel context.CancelFunc, cfg config.Config, rec *diag.Recorder) error {
	script, err := sim.LoadScript(cfg.Sim.Script)
	if err != nil {
		return fmt.Errorf("sim script: %w", err)
	}
	src := sim.NewSource(script)
	paced := &pacedSource{src: src, dt: cfg.Loop.Interval, done: cancel}

	log.Printf("sim: replaying %s (%s)", cfg.Sim.Script, script.Duration)
	rec.Banner()
	rec.InitResult(true)

	svc := control.New(
		control.Config{Interval: cfg.Loop.Interval, Alert: alertConfig(cfg)},
		control.Deps{
			Sonar:  src,
			IMU:    src,
			Button: paced,
			Buzzer: &logPin{name: "buzzer"},
			Motor:  &logPin{name: "motor"},
			LED:    &logPin{name: "led"},
			Rec:    rec,
		})

	if err := svc.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// pacedSource advances the scripted timeline once per control cycle. The
// button poll is the first read of every cycle, so stepping there keeps the
// sonar, orientation and button reads of one cycle on the same script time.
// It ends the run once the script has played out.
type pacedSource struct {
	src     *sim.Source
	dt      time.Duration
	done    context.CancelFunc
	started bool
}

func (p *pacedSource) Pressed() (bool, error) {
	if p.started {
		p.src.Advance(p.dt)
	}
	p.started = true
	if p.src.Finished() {
		p.done()
	}
	return p.src.Pressed()
}

// logPin stands in for an actuator line in sim mode, logging transitions
// only so steady states do not flood the process log.
type logPin struct {
	name string
	on   bool
	set  bool
}

func (p *logPin) Set(on bool) error {
	if p.set && on == p.on {
		return nil
	}
	p.on = on
	p.set = true
	log.Printf("sim: %s %s", p.name, onOff(on))
	return nil
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

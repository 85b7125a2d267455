package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Serial SerialConfig `yaml:"serial"`
	I2C    I2CConfig    `yaml:"i2c"`
	GPIO   GPIOConfig   `yaml:"gpio"`
	Loop   LoopConfig   `yaml:"loop"`
	Alert  AlertConfig  `yaml:"alert"`
	Sim    SimConfig    `yaml:"sim"`
}

// SerialConfig selects the diagnostic stream sink. An empty device means
// stdout.
type SerialConfig struct {
	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`
}

type I2CConfig struct {
	Bus  int    `yaml:"bus"`
	Addr uint16 `yaml:"addr"`
}

// GPIOConfig names the kernel GPIO lines, e.g. "GPIO24" on a Pi.
type GPIOConfig struct {
	Trig   string `yaml:"trig"`
	Echo   string `yaml:"echo"`
	Button string `yaml:"button"`
	Buzzer string `yaml:"buzzer"`
	Motor  string `yaml:"motor"`
	LED    string `yaml:"led"`
}

type LoopConfig struct {
	Interval   time.Duration `yaml:"interval"`
	EchoWindow time.Duration `yaml:"echo_window"`
}

type AlertConfig struct {
	SafetyMarginCM float64       `yaml:"safety_margin_cm"`
	HitNeed        int           `yaml:"hit_need"`
	MotorCooldown  time.Duration `yaml:"motor_cooldown"`
}

// SimConfig enables the hardware-free bench mode driven by a keyframe
// script.
type SimConfig struct {
	Enable bool   `yaml:"enable"`
	Script string `yaml:"script"`
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}

	if err := DefaultAndValidate(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultAndValidate fills zero values with the hardware defaults and
// rejects configurations the loop cannot run with.
func DefaultAndValidate(cfg *Config) error {
	if cfg.Serial.Baud == 0 {
		cfg.Serial.Baud = 9600
	}

	if cfg.I2C.Bus == 0 {
		cfg.I2C.Bus = 1
	}
	if cfg.I2C.Addr == 0 {
		cfg.I2C.Addr = 0x68
	}
	if cfg.I2C.Addr > 0x7F {
		return fmt.Errorf("i2c.addr 0x%X out of 7-bit range", cfg.I2C.Addr)
	}

	if cfg.GPIO.Trig == "" {
		cfg.GPIO.Trig = "GPIO23"
	}
	if cfg.GPIO.Echo == "" {
		cfg.GPIO.Echo = "GPIO24"
	}
	if cfg.GPIO.Button == "" {
		cfg.GPIO.Button = "GPIO17"
	}
	if cfg.GPIO.Buzzer == "" {
		cfg.GPIO.Buzzer = "GPIO25"
	}
	if cfg.GPIO.Motor == "" {
		cfg.GPIO.Motor = "GPIO12"
	}
	if cfg.GPIO.LED == "" {
		cfg.GPIO.LED = "GPIO13"
	}

	if cfg.Loop.Interval <= 0 {
		cfg.Loop.Interval = 125 * time.Millisecond
	}
	if cfg.Loop.EchoWindow <= 0 {
		cfg.Loop.EchoWindow = 50 * time.Millisecond
	}
	if cfg.Loop.EchoWindow >= cfg.Loop.Interval {
		return fmt.Errorf("loop.echo_window must be shorter than loop.interval")
	}

	if cfg.Alert.SafetyMarginCM == 0 {
		cfg.Alert.SafetyMarginCM = 50.0
	}
	if cfg.Alert.SafetyMarginCM < 0 {
		return fmt.Errorf("alert.safety_margin_cm must be positive")
	}
	if cfg.Alert.HitNeed == 0 {
		cfg.Alert.HitNeed = 2
	}
	if cfg.Alert.HitNeed < 0 {
		return fmt.Errorf("alert.hit_need must be positive")
	}
	if cfg.Alert.MotorCooldown == 0 {
		cfg.Alert.MotorCooldown = 5 * time.Second
	}
	if cfg.Alert.MotorCooldown < 0 {
		return fmt.Errorf("alert.motor_cooldown must be positive")
	}

	if cfg.Sim.Enable && cfg.Sim.Script == "" {
		return fmt.Errorf("sim.script is required when sim.enable is true")
	}

	return nil
}

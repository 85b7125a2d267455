package mpu6050

import (
	"fmt"
	"time"

	"canesense/internal/i2c"
)

var sleep = time.Sleep

// Minimal MPU-6050 driver.
//
// Focus: wake + identity probe + raw accel/gyro burst reads for the tilt
// estimate. Register choices mirror the InvenSense register map:
// - PWR_MGMT_1 at 0x6B, write 0x00 to leave sleep mode.
// - WHO_AM_I at 0x75 should return 0x68.
// - ACCEL_XOUT_H at 0x3B starts the 14-byte accel/temp/gyro block.

const (
	addrDefault = 0x68

	regPwrMgmt1   = 0x6B
	regWhoAmI     = 0x75
	whoAmIVal     = 0x68
	regAccelXoutH = 0x3B

	wakeSettle = 100 * time.Millisecond
)

// Raw is one frame of raw big-endian sensor readings.
//
// Gyro values are reported but not integrated; the tilt estimate is
// accelerometer-only.
type Raw struct {
	Ax, Ay, Az int16
	Gx, Gy, Gz int16
}

type Device struct {
	dev regIO
}

type regIO interface {
	ReadRegU8(reg byte) (byte, error)
	ReadReg(reg byte, dst []byte) error
	WriteReg(reg, value byte) error
}

func DefaultAddress() uint16 { return addrDefault }

func New(dev *i2c.Dev) (*Device, error) {
	if dev == nil {
		return nil, fmt.Errorf("mpu6050: dev is nil")
	}
	return newWithIO(dev)
}

func newWithIO(dev regIO) (*Device, error) {
	if dev == nil {
		return nil, fmt.Errorf("mpu6050: dev is nil")
	}
	d := &Device{dev: dev}

	// Wake from sleep (the device powers up asleep), then give it time to
	// settle before probing identity.
	if err := d.dev.WriteReg(regPwrMgmt1, 0x00); err != nil {
		return nil, fmt.Errorf("mpu6050: wake failed: %w", err)
	}
	sleep(wakeSettle)

	who, err := d.dev.ReadRegU8(regWhoAmI)
	if err != nil {
		return nil, fmt.Errorf("mpu6050: whoami read failed: %w", err)
	}
	if who != whoAmIVal {
		return nil, fmt.Errorf("mpu6050: whoami=0x%02X want 0x%02X", who, whoAmIVal)
	}

	return d, nil
}

// ReadRaw reads the accel and gyro registers in one burst.
//
// Any bus-transaction failure surfaces as an error for that frame; the
// device is not re-initialized.
func (d *Device) ReadRaw() (Raw, error) {
	if d == nil {
		return Raw{}, fmt.Errorf("mpu6050: device is nil")
	}

	// 14 contiguous bytes: accel xyz, temp, gyro xyz.
	buf := make([]byte, 14)
	if err := d.dev.ReadReg(regAccelXoutH, buf); err != nil {
		return Raw{}, fmt.Errorf("mpu6050: read sensors failed: %w", err)
	}

	return Raw{
		Ax: int16(buf[0])<<8 | int16(buf[1]),
		Ay: int16(buf[2])<<8 | int16(buf[3]),
		Az: int16(buf[4])<<8 | int16(buf[5]),
		Gx: int16(buf[8])<<8 | int16(buf[9]),
		Gy: int16(buf[10])<<8 | int16(buf[11]),
		Gz: int16(buf[12])<<8 | int16(buf[13]),
	}, nil
}

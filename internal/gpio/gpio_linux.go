//go:build linux

package gpio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/warthog618/go-gpiocdev"
)

const consumer = "canesense"

// requestLine finds lineName on any gpiochip and requests it with opts.
//
// Pi 5 kernel variants can expose header GPIOs on different chips, so try
// the common ones first and then everything under /dev.
func requestLine(lineName string, opts ...gpiocdev.LineReqOption) (*gpiocdev.Chip, *gpiocdev.Line, error) {
	chipCandidates := []string{"/dev/gpiochip0", "/dev/gpiochip4"}
	entries, _ := os.ReadDir("/dev")
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, "gpiochip") {
			chipCandidates = append(chipCandidates, filepath.Join("/dev", name))
		}
	}

	for _, chipPath := range chipCandidates {
		chip, err := gpiocdev.NewChip(chipPath)
		if err != nil {
			continue
		}
		offset, err := chip.FindLine(lineName)
		if err != nil {
			_ = chip.Close()
			continue
		}
		line, err := chip.RequestLine(offset, opts...)
		if err != nil {
			_ = chip.Close()
			continue
		}
		return chip, line, nil
	}

	return nil, nil, fmt.Errorf("gpio: line %q not found (or busy)", lineName)
}

// Output drives a single digital output line. activeLow inverts the logic
// level, for loads like the heartbeat LED that light on logic 0.
type Output struct {
	chip      *gpiocdev.Chip
	line      *gpiocdev.Line
	activeLow bool
}

func OpenOutput(lineName string, activeLow bool) (*Output, error) {
	initial := 0
	if activeLow {
		initial = 1
	}
	chip, line, err := requestLine(lineName, gpiocdev.AsOutput(initial), gpiocdev.WithConsumer(consumer))
	if err != nil {
		return nil, err
	}
	return &Output{chip: chip, line: line, activeLow: activeLow}, nil
}

func (o *Output) Set(on bool) error {
	if o == nil || o.line == nil {
		return fmt.Errorf("gpio: output not initialized")
	}
	v := 0
	if on != o.activeLow {
		v = 1
	}
	return o.line.SetValue(v)
}

func (o *Output) Close() error {
	if o == nil || o.line == nil {
		return nil
	}
	// Leave the load de-asserted on shutdown.
	_ = o.Set(false)
	err := o.line.Close()
	o.line = nil
	if o.chip != nil {
		_ = o.chip.Close()
		o.chip = nil
	}
	return err
}

// Button is the calibration button input: pull-up, pressed = logic 0.
type Button struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

func OpenButton(lineName string) (*Button, error) {
	chip, line, err := requestLine(lineName, gpiocdev.AsInput, gpiocdev.WithPullUp, gpiocdev.WithConsumer(consumer))
	if err != nil {
		return nil, err
	}
	return &Button{chip: chip, line: line}, nil
}

func (b *Button) Pressed() (bool, error) {
	if b == nil || b.line == nil {
		return false, fmt.Errorf("gpio: button not initialized")
	}
	v, err := b.line.Value()
	if err != nil {
		return false, err
	}
	return v == 0, nil
}

func (b *Button) Close() error {
	if b == nil || b.line == nil {
		return nil
	}
	err := b.line.Close()
	b.line = nil
	if b.chip != nil {
		_ = b.chip.Close()
		b.chip = nil
	}
	return err
}

// EdgeInput watches an input line for both edges and forwards kernel edge
// events to handler. The handler runs on the gpiocdev event goroutine and
// must not block; the sonar sampler's echo publication obeys that.
type EdgeInput struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

func OpenEdgeInput(lineName string, handler func(EdgeEvent)) (*EdgeInput, error) {
	eh := func(evt gpiocdev.LineEvent) {
		e := EdgeEvent{Edge: RisingEdge, Timestamp: evt.Timestamp}
		if evt.Type == gpiocdev.LineEventFallingEdge {
			e.Edge = FallingEdge
		}
		handler(e)
	}
	chip, line, err := requestLine(lineName,
		gpiocdev.AsInput,
		gpiocdev.WithPullDown,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(eh),
		gpiocdev.WithConsumer(consumer))
	if err != nil {
		return nil, err
	}
	return &EdgeInput{chip: chip, line: line}, nil
}

func (e *EdgeInput) Close() error {
	if e == nil || e.line == nil {
		return nil
	}
	err := e.line.Close()
	e.line = nil
	if e.chip != nil {
		_ = e.chip.Close()
		e.chip = nil
	}
	return err
}

//go:build !linux

package gpio

import "fmt"

// Stub implementation for non-Linux platforms.

type Output struct{}

func OpenOutput(lineName string, activeLow bool) (*Output, error) {
	return nil, fmt.Errorf("gpio: unsupported OS (need linux)")
}

func (o *Output) Set(on bool) error { return fmt.Errorf("gpio: unsupported OS") }
func (o *Output) Close() error      { return nil }

type Button struct{}

func OpenButton(lineName string) (*Button, error) {
	return nil, fmt.Errorf("gpio: unsupported OS (need linux)")
}

func (b *Button) Pressed() (bool, error) { return false, fmt.Errorf("gpio: unsupported OS") }
func (b *Button) Close() error           { return nil }

type EdgeInput struct{}

func OpenEdgeInput(lineName string, handler func(EdgeEvent)) (*EdgeInput, error) {
	return nil, fmt.Errorf("gpio: unsupported OS (need linux)")
}

func (e *EdgeInput) Close() error { return nil }

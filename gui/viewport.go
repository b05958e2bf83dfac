package gui

import (
	"sync"
)

// ViewPort is the unit the GUI stacks within a layer. It receives input
// while enabled and front-most.
type ViewPort struct {
	input   func(event InputEvent)
	mu      sync.Mutex
	enabled bool
}

// NewViewPort returns a disabled view port with no input callback.
func NewViewPort() *ViewPort {
	return &ViewPort{}
}

// SetEnabled toggles whether the view port is eligible for input.
func (x *ViewPort) SetEnabled(enabled bool) {
	x.mu.Lock()
	x.enabled = enabled
	x.mu.Unlock()
}

// Enabled reports whether the view port is eligible for input.
func (x *ViewPort) Enabled() bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.enabled
}

// SetInputCallback sets the function receiving routed input. It is called
// on the goroutine that called [Gui.SendInput], and must not block.
func (x *ViewPort) SetInputCallback(fn func(event InputEvent)) {
	x.mu.Lock()
	x.input = fn
	x.mu.Unlock()
}

func (x *ViewPort) inputCallback() func(event InputEvent) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if !x.enabled {
		return nil
	}
	return x.input
}

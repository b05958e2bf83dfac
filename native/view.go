package native

import (
	"sync"

	"github.com/joeycumines/go-viewdispatcher/gui"
)

// View is an opaque widget handle, as stored by the loop's view registry.
// The loop only consults its input and previous callbacks; what the widget
// draws is its own business.
type View struct {
	input    func(event gui.InputEvent) bool
	previous func() uint32
	mu       sync.Mutex
}

// NewView returns a view that consumes no input and has no previous view.
func NewView() *View {
	return &View{}
}

// SetInputCallback sets fn to receive input while the view is current.
// Returning true consumes the event.
func (x *View) SetInputCallback(fn func(event gui.InputEvent) bool) {
	x.mu.Lock()
	x.input = fn
	x.mu.Unlock()
}

// SetPreviousCallback sets fn to select the view that Back returns to.
// It may return [ViewNone] or [ViewIgnore].
func (x *View) SetPreviousCallback(fn func() uint32) {
	x.mu.Lock()
	x.previous = fn
	x.mu.Unlock()
}

func (x *View) handleInput(event gui.InputEvent) bool {
	x.mu.Lock()
	fn := x.input
	x.mu.Unlock()
	return fn != nil && fn(event)
}

func (x *View) previousView() uint32 {
	x.mu.Lock()
	fn := x.previous
	x.mu.Unlock()
	if fn == nil {
		return ViewNone
	}
	return fn()
}

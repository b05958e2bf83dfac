// Package native implements the single-threaded view dispatch loop that the
// root package wraps, together with the callback ABI it exposes.
//
// # Callback ABI
//
// Callbacks are registered as plain functions plus one opaque context
// pointer, shared by every category and set via
// [Loop.SetEventCallbackContext]. The loop never interprets the pointer, it
// only passes it back:
//
//	NavigationEventCallback func(ctx unsafe.Pointer) bool
//	CustomEventCallback     func(ctx unsafe.Pointer, event uint32) bool
//	TickEventCallback       func(ctx unsafe.Pointer)
//
// A category with no registered callback costs nothing per event. Custom
// events sent while no custom event callback is registered are dequeued and
// dropped.
//
// # Threading
//
// [Loop.Run] blocks the calling goroutine, and every callback runs nested
// inside it, on that goroutine. Callbacks may call any Loop method,
// including [Loop.Stop], which is observed between events.
// [Loop.Stop] and [Loop.SendCustomEvent] may also be called from other
// goroutines.
package native

import (
	"context"
	"errors"
	"time"
	"unsafe"

	"github.com/joeycumines/go-viewdispatcher/gui"
)

type (
	// NavigationEventCallback handles a Back press not consumed by the
	// current view, returning whether it was handled. An unhandled
	// navigation event stops the loop.
	NavigationEventCallback func(ctx unsafe.Pointer) bool

	// CustomEventCallback handles an event queued by
	// [Loop.SendCustomEvent], returning whether it was handled.
	CustomEventCallback func(ctx unsafe.Pointer, event uint32) bool

	// TickEventCallback is called periodically while the loop runs.
	TickEventCallback func(ctx unsafe.Pointer)

	// Loop is the native view dispatcher, as required by the root package.
	// [ViewDispatcher] is the implementation; the nativetest package
	// provides a recording double.
	Loop interface {
		// SetEventCallbackContext sets the pointer passed to every callback.
		SetEventCallbackContext(ctx unsafe.Pointer)
		// SetNavigationEventCallback registers cb for Back presses the
		// current view leaves unhandled. Nil unregisters it.
		SetNavigationEventCallback(cb NavigationEventCallback)
		// SetCustomEventCallback registers cb for queued custom events.
		// Nil unregisters it, and custom events are then dropped.
		SetCustomEventCallback(cb CustomEventCallback)
		// SetTickEventCallback registers cb to be called every period.
		// A non-positive period disables ticks.
		SetTickEventCallback(cb TickEventCallback, period time.Duration)
		// EnableQueue must be called before custom events or input can be
		// queued.
		EnableQueue()
		// AttachToGUI binds the loop's view port to g, in the layer
		// selected by t.
		AttachToGUI(g *gui.Gui, t Type)
		// AddView registers view under id, which must not be in use.
		AddView(id uint32, view *View)
		// RemoveView unregisters id, which must be registered.
		RemoveView(id uint32)
		// SwitchToView makes id, which must be registered, the current view.
		SwitchToView(id uint32)
		// Run dispatches events until Stop is observed.
		Run() error
		// Stop requests that Run return. It is level-triggered: a request
		// made while not running is consumed by the next Run.
		Stop()
		// SendToFront moves the loop's view port to the front of its layer.
		SendToFront()
		// SendToBack moves the loop's view port to the back of its layer.
		SendToBack()
		// SendCustomEvent queues event for the custom event callback. The
		// queue must be enabled.
		SendCustomEvent(event uint32)
		// Free releases the loop, detaching it from the GUI. It must be
		// called exactly once.
		Free()
	}

	// ContextRunner is implemented by loops that can observe a context
	// directly while running. RunContext behaves like Run, and returns
	// ctx.Err() once ctx is done, without leaving a pending stop request
	// behind.
	ContextRunner interface {
		RunContext(ctx context.Context) error
	}
)

// Type selects how the loop is attached to the screen.
type Type uint8

const (
	TypeDesktop Type = iota
	TypeWindow
	TypeFullscreen
)

// String returns the type name.
func (t Type) String() string {
	switch t {
	case TypeDesktop:
		return "Desktop"
	case TypeWindow:
		return "Window"
	case TypeFullscreen:
		return "Fullscreen"
	default:
		return "Unknown"
	}
}

// Layer returns the GUI layer for t.
func (t Type) Layer() gui.Layer {
	switch t {
	case TypeDesktop:
		return gui.LayerDesktop
	case TypeWindow:
		return gui.LayerWindow
	default:
		return gui.LayerFullscreen
	}
}

// Reserved view ids.
const (
	// ViewNone is returned by a previous callback when there is no
	// previous view. Switching to it hides the loop's view port.
	ViewNone uint32 = 0xFFFFFFFF
	// ViewIgnore is returned by a previous callback to swallow the event.
	ViewIgnore uint32 = 0xFFFFFFFE
)

var (
	// ErrViewNotRegistered is the panic cause for view operations on an
	// unregistered id.
	ErrViewNotRegistered = errors.New("native: view not registered")

	// ErrViewExists is the panic cause for AddView with an id in use.
	ErrViewExists = errors.New("native: view id already registered")

	// ErrReservedViewID is the panic cause for AddView with a reserved id.
	ErrReservedViewID = errors.New("native: reserved view id")

	// ErrQueueDisabled is the panic cause for queueing events before
	// EnableQueue.
	ErrQueueDisabled = errors.New("native: queue not enabled")

	// ErrAlreadyAttached is the panic cause for attaching twice.
	ErrAlreadyAttached = errors.New("native: already attached to gui")

	// ErrFreed is the panic cause for using a freed loop.
	ErrFreed = errors.New("native: loop has been freed")

	// ErrAlreadyRunning is returned by Run when the loop is running, e.g.
	// when called from a callback.
	ErrAlreadyRunning = errors.New("native: loop is already running")
)

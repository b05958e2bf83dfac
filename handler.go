package viewdispatcher

import (
	"strings"
	"time"
)

type (
	// Handler is the application value driving a [Dispatcher]. It may be any
	// value: each optional callback category is a separate interface, and a
	// category the handler does not implement keeps its default, at no
	// per-event cost.
	//
	// The categories are [NavigationEventHandler], [CustomEventHandler] and
	// [TickEventHandler] (with [TickPeriodHandler]). [CapabilitySet] narrows
	// them further, and [HandlerFuncs] configures them explicitly.
	//
	// The dispatcher owns the handler until [Dispatcher.Close], which closes
	// it if it implements io.Closer.
	Handler = any

	// NavigationEventHandler handles a Back press the current view did not
	// consume. Returning false (the default) stops the dispatcher.
	NavigationEventHandler interface {
		OnNavigationEvent(d *Dispatcher) bool
	}

	// CustomEventHandler receives events sent via
	// [Dispatcher.SendCustomEvent]. Without it, custom events are never
	// delivered.
	CustomEventHandler interface {
		OnCustomEvent(d *Dispatcher, event uint32) bool
	}

	// TickEventHandler is called periodically while the dispatcher runs, at
	// the period given by [TickPeriodHandler].
	TickEventHandler interface {
		OnTickEvent(d *Dispatcher)
	}

	// TickPeriodHandler sets the tick period, read once by [New]. The
	// default is zero, which disables ticks.
	TickPeriodHandler interface {
		TickPeriod() time.Duration
	}

	// CapabilitySet may be implemented by a handler to restrict which of its
	// implemented categories are registered.
	CapabilitySet interface {
		Capabilities() Capability
	}
)

// Capability is a set of callback categories.
type Capability uint8

const (
	// CapabilityNavigation is set for a [NavigationEventHandler].
	CapabilityNavigation Capability = 1 << iota
	// CapabilityCustomEvent is set for a [CustomEventHandler].
	CapabilityCustomEvent
	// CapabilityTick is set for a [TickEventHandler].
	CapabilityTick

	// CapabilityNone registers no callbacks.
	CapabilityNone Capability = 0
	// CapabilityAll is every known category.
	CapabilityAll = CapabilityNavigation | CapabilityCustomEvent | CapabilityTick
)

// Has reports whether every category in o is in c.
func (c Capability) Has(o Capability) bool { return c&o == o }

// String joins the category names with "|", or returns "None".
func (c Capability) String() string {
	if c == CapabilityNone {
		return "None"
	}
	var parts []string
	if c.Has(CapabilityNavigation) {
		parts = append(parts, "Navigation")
	}
	if c.Has(CapabilityCustomEvent) {
		parts = append(parts, "CustomEvent")
	}
	if c.Has(CapabilityTick) {
		parts = append(parts, "Tick")
	}
	if c&^CapabilityAll != 0 {
		parts = append(parts, "Unknown")
	}
	return strings.Join(parts, "|")
}

// Capabilities returns the categories h overrides, i.e. those [New] will
// register callbacks for.
func Capabilities(h Handler) (c Capability) {
	if _, ok := h.(NavigationEventHandler); ok {
		c |= CapabilityNavigation
	}
	if _, ok := h.(CustomEventHandler); ok {
		c |= CapabilityCustomEvent
	}
	if _, ok := h.(TickEventHandler); ok {
		c |= CapabilityTick
	}
	if s, ok := h.(CapabilitySet); ok {
		c &= s.Capabilities()
	}
	return c
}

// HandlerFuncs is a [Handler] built from optional functions. Nil fields are
// not registered.
type HandlerFuncs struct {
	Navigation  func(d *Dispatcher) bool
	CustomEvent func(d *Dispatcher, event uint32) bool
	Tick        func(d *Dispatcher)
	Period      time.Duration
}

var (
	_ NavigationEventHandler = HandlerFuncs{}
	_ CustomEventHandler     = HandlerFuncs{}
	_ TickEventHandler       = HandlerFuncs{}
	_ TickPeriodHandler      = HandlerFuncs{}
	_ CapabilitySet          = HandlerFuncs{}
)

// OnNavigationEvent calls h.Navigation, returning false if it is nil.
func (h HandlerFuncs) OnNavigationEvent(d *Dispatcher) bool {
	return h.Navigation != nil && h.Navigation(d)
}

// OnCustomEvent calls h.CustomEvent, returning false if it is nil.
func (h HandlerFuncs) OnCustomEvent(d *Dispatcher, event uint32) bool {
	return h.CustomEvent != nil && h.CustomEvent(d, event)
}

// OnTickEvent calls h.Tick, if non-nil.
func (h HandlerFuncs) OnTickEvent(d *Dispatcher) {
	if h.Tick != nil {
		h.Tick(d)
	}
}

// TickPeriod returns h.Period.
func (h HandlerFuncs) TickPeriod() time.Duration { return h.Period }

// Capabilities reports the categories whose func is non-nil.
func (h HandlerFuncs) Capabilities() (c Capability) {
	if h.Navigation != nil {
		c |= CapabilityNavigation
	}
	if h.CustomEvent != nil {
		c |= CapabilityCustomEvent
	}
	if h.Tick != nil {
		c |= CapabilityTick
	}
	return c
}

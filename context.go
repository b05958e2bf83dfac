package viewdispatcher

import (
	"unsafe"
)

// dispatchContext is the record every native callback receives as its
// opaque context. It is allocated once by New and referenced by the native
// loop until Close, so its address is stable for the whole registration.
type dispatchContext struct {
	handler Handler

	// resolved by the capability gate, nil if not registered
	navigation NavigationEventHandler
	custom     CustomEventHandler
	tick       TickEventHandler

	// non-owning handle passed to the handler
	view Dispatcher
}

func contextOf(ctx unsafe.Pointer) *dispatchContext {
	return (*dispatchContext)(ctx)
}

func navigationTrampoline(ctx unsafe.Pointer) bool {
	c := contextOf(ctx)
	return c.navigation.OnNavigationEvent(&c.view)
}

func customEventTrampoline(ctx unsafe.Pointer, event uint32) bool {
	c := contextOf(ctx)
	return c.custom.OnCustomEvent(&c.view, event)
}

func tickTrampoline(ctx unsafe.Pointer) {
	c := contextOf(ctx)
	c.tick.OnTickEvent(&c.view)
}

// Package viewdispatcher binds application handlers to a native view
// dispatcher loop.
//
// A [Dispatcher] owns one [native.Loop]. [New] allocates the loop, attaches
// it to the GUI record, and registers a callback for each category the
// handler implements: [NavigationEventHandler], [CustomEventHandler] and
// [TickEventHandler]. Categories the handler does not implement are never
// registered, so the native loop applies its defaults without calling back.
//
// All callbacks run on the goroutine blocked in [Dispatcher.Run], and
// receive a non-owning *Dispatcher that may be used to switch views, send
// events, or stop the loop. Stop is level-triggered: it takes effect once
// the current callback returns.
package viewdispatcher

// Package output tracks the displays announced by the compositor and
// drives the surface lifecycle of each one.
//
// Every Output moves through the states
//
//	StateUnbound → StateAwaitingFirstConfigure → StatePresenting
//
// and reaches StateClosed from any of them, when either its layer role
// is closed or the output global is retracted. A bound Output owns at
// most one outstanding frame callback, tracked by its [FrameSlot]; no
// redraw is issued while the slot is [SlotAwaitingPresentation].
//
// Configure events that arrive while presenting are recorded and applied
// on the next redraw of that Output, never immediately.
package output

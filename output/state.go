package output

// State is the lifecycle state of an Output's surface.
type State uint8

const (
	// StateUnbound is the initial state, and the permanent state of
	// outputs that did not match the selector.
	StateUnbound State = iota
	// StateAwaitingFirstConfigure means a layer surface was committed and
	// the compositor has not configured it yet.
	StateAwaitingFirstConfigure
	// StatePresenting means the presentation chain exists.
	StatePresenting
	// StateClosed is terminal; every resource has been released.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnbound:
		return "Unbound"
	case StateAwaitingFirstConfigure:
		return "AwaitingFirstConfigure"
	case StatePresenting:
		return "Presenting"
	case StateClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// FrameSlot is the single-slot backpressure for frame callbacks.
type FrameSlot uint8

const (
	SlotIdle FrameSlot = iota
	SlotAwaitingPresentation
)

func (s FrameSlot) String() string {
	switch s {
	case SlotIdle:
		return "Idle"
	case SlotAwaitingPresentation:
		return "AwaitingPresentation"
	default:
		return "Unknown"
	}
}

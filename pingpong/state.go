package pingpong

// State is the lifecycle position of one buffer. Each buffer is in
// exactly one state at any instant; the values are part of the shared
// layout and must not be reordered.
type State uint32

const (
	// StateIdle: unowned, available for the producer to claim.
	StateIdle State = iota
	// StateWriting: owned by the producer, payload being filled.
	StateWriting
	// StateReady: published, waiting for the consumer to claim.
	StateReady
	// StateReading: owned by the consumer, payload being drained.
	StateReading
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWriting:
		return "writing"
	case StateReady:
		return "ready"
	case StateReading:
		return "reading"
	default:
		return "invalid"
	}
}

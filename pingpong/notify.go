package pingpong

// Notifier rings the peer core's doorbell. Implementations must be
// fire-and-forget: the call may fail but must never block on the peer.
// hal.Mailbox satisfies this.
type Notifier interface {
	Notify() error
}

// Logger is the subset of hal.Logger the protocol needs to report
// non-fatal notification failures.
type Logger interface {
	WriteLineString(s string)
}

// bridge turns completed transitions into doorbell rings. A failed ring
// is logged and dropped, never retried and never rolled back: the state
// machine is the single source of truth, and the peer's next poll will
// find the buffer regardless.
type bridge struct {
	peer Notifier
	log  Logger
	name string
}

func (b bridge) ring() {
	if b.peer == nil {
		return
	}
	if err := b.peer.Notify(); err != nil && b.log != nil {
		b.log.WriteLineString("pingpong: " + b.name + " notify dropped: " + err.Error())
	}
}

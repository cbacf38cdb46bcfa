package pingpong

// Handle grants exclusive access to one buffer's payload between an
// acquire and the matching Commit or Release. It is stack-scoped by
// contract: after the closing call the handle is dead, and any further
// use fails with ErrInvalidState instead of touching shared state.
type Handle struct {
	id   int
	data []byte
	s    *Session
	done bool
}

// ID returns the buffer id, 0 or 1.
func (h *Handle) ID() int { return h.id }

// Bytes is the buffer payload region. Valid only while the handle is live.
func (h *Handle) Bytes() []byte { return h.data }

// Size returns the payload capacity in bytes.
func (h *Handle) Size() int { return len(h.data) }

// checkHandle validates a handle against the session that owns it.
func checkHandle(h *Handle, s *Session) error {
	if h == nil || h.s != s || h.id < 0 || h.id >= BufferCount {
		return ErrInvalidArgument
	}
	return nil
}

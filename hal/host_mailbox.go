//go:build !tinygo

package hal

import "sync"

// hostMailbox simulates a one-direction interrupt line. The capacity-one
// doorbell channel makes pending rings coalesce exactly like a latched
// IRQ: N notifies before the handler runs produce one to N invocations,
// never a queue of N.
type hostMailbox struct {
	mu      sync.Mutex
	bell    chan struct{}
	handler func()
}

func newHostMailbox() *hostMailbox {
	m := &hostMailbox{bell: make(chan struct{}, 1)}
	go m.dispatch()
	return m
}

func (m *hostMailbox) Notify() error {
	select {
	case m.bell <- struct{}{}:
	default:
		// Already latched; a doorbell carries no data to lose.
	}
	return nil
}

func (m *hostMailbox) SetHandler(fn func()) {
	m.mu.Lock()
	m.handler = fn
	m.mu.Unlock()
}

func (m *hostMailbox) dispatch() {
	for range m.bell {
		m.mu.Lock()
		fn := m.handler
		m.mu.Unlock()
		if fn != nil {
			fn()
		}
	}
}

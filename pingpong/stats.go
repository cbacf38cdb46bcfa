package pingpong

import (
	"fmt"
	"sync/atomic"
)

// Stats is a snapshot of the session's diagnostic counters. Counters
// are monotonic for the session and never drive correctness decisions;
// the write timestamps double as the consumer's FIFO ordering key.
type Stats struct {
	Writes      [BufferCount]uint32
	Reads       [BufferCount]uint32
	LastWriteTS [BufferCount]uint64
	LastReadTS  [BufferCount]uint64
	Overruns    uint32
	Timeouts    uint32
	StateErrors uint32
}

// Stats reads every counter atomically. The snapshot is per-field
// consistent, not globally consistent; good enough for diagnostics.
func (s *Session) Stats() Stats {
	cb := s.cb
	var st Stats
	for i := 0; i < BufferCount; i++ {
		st.Writes[i] = atomic.LoadUint32(&cb.writeCount[i])
		st.Reads[i] = atomic.LoadUint32(&cb.readCount[i])
		st.LastWriteTS[i] = atomic.LoadUint64(&cb.lastWriteTS[i])
		st.LastReadTS[i] = atomic.LoadUint64(&cb.lastReadTS[i])
	}
	st.Overruns = atomic.LoadUint32(&cb.overrunCount)
	st.Timeouts = atomic.LoadUint32(&cb.timeoutCount)
	st.StateErrors = atomic.LoadUint32(&cb.stateErrCount)
	return st
}

// TotalWrites sums both buffers' publish counts.
func (st Stats) TotalWrites() uint32 { return st.Writes[0] + st.Writes[1] }

// TotalReads sums both buffers' release counts.
func (st Stats) TotalReads() uint32 { return st.Reads[0] + st.Reads[1] }

func (st Stats) String() string {
	return fmt.Sprintf("writes=%d/%d reads=%d/%d overruns=%d timeouts=%d stateErrs=%d",
		st.Writes[0], st.Writes[1], st.Reads[0], st.Reads[1],
		st.Overruns, st.Timeouts, st.StateErrors)
}

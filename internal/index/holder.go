package index

import "sync/atomic"

// Holder publishes the serving Snapshot. A rebuild swaps in a complete
// new snapshot; in-flight readers keep the one they loaded.
type Holder struct {
	current atomic.Pointer[Snapshot]
}

func NewHolder() *Holder {
	return &Holder{}
}

// Current returns the serving snapshot, or nil when no index is loaded.
func (h *Holder) Current() *Snapshot {
	return h.current.Load()
}

// Swap atomically replaces the serving snapshot and returns the previous
// one.
func (h *Holder) Swap(s *Snapshot) *Snapshot {
	return h.current.Swap(s)
}

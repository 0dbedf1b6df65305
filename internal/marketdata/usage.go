package marketdata

import (
	"sync"

	"github.com/duelist/stockduel/internal/contracts"
)

// UsageStats counts provider calls by kind. It satisfies
// contracts.UsageRecorder and is shared by the sourcer and the
// lifecycle service so one place answers "how hard are we hitting the
// provider".
type UsageStats struct {
	mu     sync.Mutex
	counts map[string]*KindStats
}

// KindStats is the tally for one call kind
type KindStats struct {
	Calls    int `json:"calls"`
	Failures int `json:"failures"`
}

// NewUsageStats creates an empty tally
func NewUsageStats() *UsageStats {
	return &UsageStats{counts: make(map[string]*KindStats)}
}

var _ contracts.UsageRecorder = (*UsageStats)(nil)

// RecordCall ticks one provider call
func (u *UsageStats) RecordCall(kind string, ok bool) {
	u.mu.Lock()
	defer u.mu.Unlock()

	st, exists := u.counts[kind]
	if !exists {
		st = &KindStats{}
		u.counts[kind] = st
	}
	st.Calls++
	if !ok {
		st.Failures++
	}
}

// Snapshot returns a copy of the current tallies
func (u *UsageStats) Snapshot() map[string]KindStats {
	u.mu.Lock()
	defer u.mu.Unlock()

	out := make(map[string]KindStats, len(u.counts))
	for kind, st := range u.counts {
		out[kind] = *st
	}
	return out
}

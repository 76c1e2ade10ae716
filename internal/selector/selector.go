// Package selector implements per-route round-robin upstream selection.
//
// The cursor is an atomic integer rather than a mutex-guarded field, per the
// hot-path contention guidance for this design: every inbound request on a
// route advances it, and no lock should be held across the network I/O that
// follows selection.
package selector

import (
	"sync/atomic"

	"github.com/samims/reverse-proxy/internal/config"
)

// Selector holds the mutable round-robin cursor for one route.
type Selector struct {
	upstreams []config.Upstream
	cursor    atomic.Uint64
}

// New builds a Selector over a route's non-empty upstream pool.
func New(upstreams []config.Upstream) *Selector {
	return &Selector{upstreams: upstreams}
}

// Next atomically advances the cursor and returns the selected upstream.
// Over any window of k*len(upstreams) sequential selections, each upstream
// is chosen exactly k times.
func (s *Selector) Next() config.Upstream {
	idx := s.cursor.Add(1) - 1
	return s.upstreams[idx%uint64(len(s.upstreams))]
}

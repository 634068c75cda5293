package session

import "sync/atomic"

// Generation is an epoch counter. Work captures Current when it starts
// and only publishes its result if the epoch is not Stale by then. A nil
// Generation never goes stale.
type Generation struct {
	n atomic.Uint64
}

func (g *Generation) Current() uint64 {
	if g == nil {
		return 0
	}
	return g.n.Load()
}

// Advance invalidates all work started before it.
func (g *Generation) Advance() uint64 {
	if g == nil {
		return 0
	}
	return g.n.Add(1)
}

func (g *Generation) Stale(epoch uint64) bool {
	return g.Current() != epoch
}

// Package sequencer serializes operations per pool for embedders that accept
// requests concurrently. The engine itself takes no locks.
package sequencer

import (
	"context"

	"github.com/puzpuzpuz/xsync/v4"
)

// Sequencer keeps one slot per key for its whole lifetime. Keys are pool
// addresses, a small set known up front, so slots are never evicted.
type Sequencer struct {
	slots *xsync.Map[string, chan struct{}]
}

func New() *Sequencer {
	return &Sequencer{slots: xsync.NewMap[string, chan struct{}]()}
}

// Do runs fn once no other Do call for key is running. Calls for different
// keys proceed in parallel. Waiting is abandoned when ctx is done.
func (s *Sequencer) Do(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	slot, ok := s.slots.Load(key)
	if !ok {
		slot, _ = s.slots.LoadOrStore(key, make(chan struct{}, 1))
	}
	select {
	case slot <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-slot }()
	return fn(ctx)
}

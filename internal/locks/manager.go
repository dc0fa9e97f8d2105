package locks

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Manager hands out named in-process locks. A transaction acquires every
// lock it needs in one call; names are deduplicated and taken in sorted
// order so two transactions over overlapping collections can never
// deadlock.
type Manager struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

func NewManager() *Manager {
	return &Manager{locks: make(map[string]chan struct{})}
}

func (m *Manager) lockFor(name string) chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.locks[name]
	if !ok {
		ch = make(chan struct{}, 1)
		m.locks[name] = ch
	}
	return ch
}

// Acquire blocks until every named lock is held and returns the release
// function. Acquisition respects ctx, so a caller can bail out while
// waiting; once all locks are held the transaction runs to completion.
func (m *Manager) Acquire(ctx context.Context, names ...string) (func(), error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("at least one lock name required")
	}

	ordered := dedupeSorted(names)
	held := make([]chan struct{}, 0, len(ordered))

	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			<-held[i]
		}
	}

	for _, name := range ordered {
		ch := m.lockFor(name)
		select {
		case ch <- struct{}{}:
			held = append(held, ch)
		case <-ctx.Done():
			release()
			return nil, fmt.Errorf("waiting for lock %q: %w", name, ctx.Err())
		}
	}
	return release, nil
}

func dedupeSorted(names []string) []string {
	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.Strings(sorted)

	out := sorted[:0]
	for i, name := range sorted {
		if i == 0 || name != sorted[i-1] {
			out = append(out, name)
		}
	}
	return out
}

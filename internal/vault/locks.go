package vault

import (
	"context"
	"slices"
	"sync"
)

// locker serializes read-modify-write cycles per alias.
type locker interface {
	// acquire blocks until every alias is held or ctx is done. The returned
	// release must be called exactly once.
	acquire(ctx context.Context, aliases ...Alias) (release func(), err error)
}

// aliasLocks hands out one single-slot semaphore per alias. Multiple
// aliases are always taken in sorted order so two cycles cannot deadlock.
type aliasLocks struct {
	mu    sync.Mutex
	slots map[Alias]chan struct{}
}

func newAliasLocks() *aliasLocks {
	return &aliasLocks{slots: make(map[Alias]chan struct{})}
}

func (l *aliasLocks) slot(a Alias) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.slots[a]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[a] = ch
	}
	return ch
}

func (l *aliasLocks) acquire(ctx context.Context, aliases ...Alias) (func(), error) {
	sorted := slices.Clone(aliases)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	held := make([]chan struct{}, 0, len(sorted))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			<-held[i]
		}
	}

	for _, a := range sorted {
		ch := l.slot(a)
		select {
		case ch <- struct{}{}:
			held = append(held, ch)
		case <-ctx.Done():
			release()
			return nil, ctx.Err()
		}
	}

	var once sync.Once
	return func() { once.Do(release) }, nil
}

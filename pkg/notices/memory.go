package notices

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Ramsey-B/primrose/pkg/models"
)

type entry struct {
	notice    models.RecoverableError
	expiresAt time.Time
}

// MemoryBoard is an in-process Board. Notices expire after ttl; zero keeps them.
type MemoryBoard struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryBoard(ttl time.Duration) *MemoryBoard {
	return &MemoryBoard{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (b *MemoryBoard) Record(_ context.Context, notice models.RecoverableError) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	e := entry{notice: notice}
	if b.ttl > 0 {
		e.expiresAt = b.now().Add(b.ttl)
	}
	b.entries[notice.Token.String()] = e
	return nil
}

func (b *MemoryBoard) List(_ context.Context) ([]models.RecoverableError, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.evict()
	out := make([]models.RecoverableError, 0, len(b.entries))
	for _, e := range b.entries {
		out = append(out, e.notice)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Token.Timestamp.Before(out[j].Token.Timestamp)
	})
	return out, nil
}

func (b *MemoryBoard) Get(_ context.Context, token string) (*models.RecoverableError, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.evict()
	e, ok := b.entries[token]
	if !ok {
		return nil, ErrNotFound
	}
	notice := e.notice
	return &notice, nil
}

func (b *MemoryBoard) Dismiss(_ context.Context, token string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.evict()
	if _, ok := b.entries[token]; !ok {
		return ErrNotFound
	}
	delete(b.entries, token)
	return nil
}

// evict drops expired entries. Callers hold mu.
func (b *MemoryBoard) evict() {
	now := b.now()
	for token, e := range b.entries {
		if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
			delete(b.entries, token)
		}
	}
}

package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"kudos/internal/kudo/models"
	id "kudos/pkg/domain"
)

type entry struct {
	kudo models.Kudo
	seq  uint64
}

// InMemory keeps the ledger in process memory.
type InMemory struct {
	mu      sync.RWMutex
	entries []entry
	seq     uint64

	locksMu sync.Mutex
	locks   map[id.UserID]*senderLock
}

// senderLock is dropped from the map once no caller holds or waits on it.
type senderLock struct {
	mu   sync.Mutex
	refs int
}

func NewInMemory() *InMemory {
	return &InMemory{locks: make(map[id.UserID]*senderLock)}
}

func (s *InMemory) acquire(sender id.UserID) *senderLock {
	s.locksMu.Lock()
	l, ok := s.locks[sender]
	if !ok {
		l = &senderLock{}
		s.locks[sender] = l
	}
	l.refs++
	s.locksMu.Unlock()

	l.mu.Lock()
	return l
}

func (s *InMemory) release(sender id.UserID, l *senderLock) {
	l.mu.Unlock()

	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(s.locks, sender)
	}
}

func (s *InMemory) RunForSender(ctx context.Context, sender id.UserID, fn func(ctx context.Context) error) error {
	l := s.acquire(sender)
	defer s.release(sender, l)
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}

// lockCount reports how many sender locks are live.
func (s *InMemory) lockCount() int {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	return len(s.locks)
}

func (s *InMemory) Append(_ context.Context, k *models.Kudo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.entries = append(s.entries, entry{kudo: *k, seq: s.seq})
	return nil
}

func (s *InMemory) CountSentSince(_ context.Context, sender id.UserID, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, e := range s.entries {
		if e.kudo.SenderID == sender && !e.kudo.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (s *InMemory) ListReceived(_ context.Context, receiver id.UserID) ([]*models.Kudo, error) {
	s.mu.RLock()
	matched := make([]entry, 0)
	for _, e := range s.entries {
		if e.kudo.ReceiverID == receiver {
			matched = append(matched, e)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].kudo.CreatedAt.Equal(matched[j].kudo.CreatedAt) {
			return matched[i].kudo.CreatedAt.After(matched[j].kudo.CreatedAt)
		}
		return matched[i].seq > matched[j].seq
	})

	out := make([]*models.Kudo, len(matched))
	for i := range matched {
		k := matched[i].kudo
		out[i] = &k
	}
	return out, nil
}

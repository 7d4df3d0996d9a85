package services

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"
)

// ReplayStore remembers which Stripe event ids were already accepted.
type ReplayStore interface {
	IsProcessed(ctx context.Context, eventID string) (bool, error)
	// MarkProcessed records eventID and reports false if it was already recorded.
	MarkProcessed(ctx context.Context, eventID string) (bool, error)
}

// MemoryReplayStore keeps the most recent ids in insertion order and evicts
// the oldest once capacity is reached. Contents are lost on restart.
type MemoryReplayStore struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	index    map[string]*list.Element
	now      func() time.Time
}

type processedRecord struct {
	id          string
	processedAt time.Time
}

func NewMemoryReplayStore(capacity int) *MemoryReplayStore {
	if capacity < 1 {
		capacity = 1
	}
	return &MemoryReplayStore{
		capacity: capacity,
		order:    list.New(),
		index:    make(map[string]*list.Element, capacity),
		now:      time.Now,
	}
}

func (s *MemoryReplayStore) IsProcessed(_ context.Context, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.index[eventID]
	return ok, nil
}

func (s *MemoryReplayStore) MarkProcessed(_ context.Context, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[eventID]; ok {
		return false, nil
	}
	for s.order.Len() >= s.capacity {
		oldest := s.order.Front()
		s.order.Remove(oldest)
		delete(s.index, oldest.Value.(processedRecord).id)
	}
	s.index[eventID] = s.order.PushBack(processedRecord{id: eventID, processedAt: s.now()})
	return true, nil
}

func (s *MemoryReplayStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

// IsExpired reports whether an event created at createdAt is older than maxAge.
// An event exactly maxAge old is still accepted.
func IsExpired(createdAt, now time.Time, maxAge time.Duration) bool {
	return now.Sub(createdAt) > maxAge
}

type ReplayVerdict int

const (
	ReplayAccepted ReplayVerdict = iota
	ReplayDuplicate
	ReplayExpired
)

func (v ReplayVerdict) String() string {
	switch v {
	case ReplayAccepted:
		return "accepted"
	case ReplayDuplicate:
		return "duplicate"
	case ReplayExpired:
		return "expired"
	default:
		return "unknown"
	}
}

type ReplayChecker interface {
	Check(ctx context.Context, event stripe.Event) (ReplayVerdict, error)
}

// ReplayGuard rejects duplicate and stale deliveries. An accepted event is
// marked before any downstream processing, so each id is processed at most once.
type ReplayGuard struct {
	store  ReplayStore
	maxAge time.Duration
	now    func() time.Time
	logger *zap.Logger
}

func NewReplayGuard(store ReplayStore, maxAge time.Duration, logger *zap.Logger) *ReplayGuard {
	return &ReplayGuard{
		store:  store,
		maxAge: maxAge,
		now:    time.Now,
		logger: logger,
	}
}

func (g *ReplayGuard) Check(ctx context.Context, event stripe.Event) (ReplayVerdict, error) {
	seen, err := g.store.IsProcessed(ctx, event.ID)
	if err != nil {
		return ReplayAccepted, fmt.Errorf("check processed event %s: %w", event.ID, err)
	}
	if seen {
		g.logger.Warn("Event already processed, possible replay",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
		)
		return ReplayDuplicate, nil
	}

	createdAt := time.Unix(event.Created, 0)
	now := g.now()
	if IsExpired(createdAt, now, g.maxAge) {
		g.logger.Warn("Event too old, possible replay",
			zap.String("event_id", event.ID),
			zap.Duration("age", now.Sub(createdAt)),
		)
		return ReplayExpired, nil
	}

	marked, err := g.store.MarkProcessed(ctx, event.ID)
	if err != nil {
		return ReplayAccepted, fmt.Errorf("mark processed event %s: %w", event.ID, err)
	}
	if !marked {
		g.logger.Warn("Concurrent delivery of the same event", zap.String("event_id", event.ID))
		return ReplayDuplicate, nil
	}
	return ReplayAccepted, nil
}

package purchases

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

const defaultFeedBufferSize = 16

// Snapshot is the full ordered list of committed purchases at one commit.
// Version grows by one per published commit. Purchases is shared between
// subscribers and must be treated as read-only.
type Snapshot struct {
	Version   uint64
	Purchases []Purchase
}

// FeedConfig describes the tuning knobs of a Feed.
type FeedConfig struct {
	BufferSize int
	Logger     *zap.Logger
}

// Feed broadcasts snapshots to every active subscription in publish order.
type Feed struct {
	mu          sync.Mutex
	subscribers map[int64]*Subscription
	nextID      int64
	version     uint64
	bufferSize  int
	logger      *zap.Logger
}

// NewFeed constructs an empty Feed.
func NewFeed(cfg FeedConfig) *Feed {
	bufferSize := cfg.BufferSize
	if bufferSize <= 0 {
		bufferSize = defaultFeedBufferSize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &Feed{
		subscribers: make(map[int64]*Subscription),
		bufferSize:  bufferSize,
		logger:      logger,
	}
}

// Subscription is a live handle on a Feed. Snapshots arrive on C in publish
// order. Close, or the end of the subscribing context, stops new deliveries;
// snapshots already buffered on C stay readable until C is closed.
type Subscription struct {
	id     int64
	feed   *Feed
	stream chan Snapshot

	mu      sync.Mutex
	pending []Snapshot
	wake    chan struct{}

	done      chan struct{}
	closeOnce sync.Once
}

// Subscribe registers a subscription whose first delivery is the supplied purchases
// at the feed's current version.
func (f *Feed) Subscribe(ctx context.Context, current []Purchase) *Subscription {
	f.mu.Lock()
	f.nextID++
	subscription := &Subscription{
		id:     f.nextID,
		feed:   f,
		stream: make(chan Snapshot, f.bufferSize),
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	subscription.enqueue(Snapshot{Version: f.version, Purchases: current})
	f.subscribers[subscription.id] = subscription
	count := len(f.subscribers)
	f.mu.Unlock()

	f.logger.Debug("feed subscriber registered",
		zap.Int64("subscriber_id", subscription.id),
		zap.Int("subscribers", count))

	go subscription.pump(ctx)
	return subscription
}

// Publish records a new commit and queues its snapshot for every subscriber.
// It never blocks on slow consumers.
func (f *Feed) Publish(purchases []Purchase) Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.version++
	snapshot := Snapshot{Version: f.version, Purchases: purchases}
	for _, subscriber := range f.subscribers {
		subscriber.enqueue(snapshot)
	}
	return snapshot
}

// Version reports the version of the most recently published snapshot.
func (f *Feed) Version() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.version
}

// SubscriberCount reports the number of active subscriptions.
func (f *Feed) SubscriberCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers)
}

func (f *Feed) unregister(subscriberID int64) {
	f.mu.Lock()
	delete(f.subscribers, subscriberID)
	count := len(f.subscribers)
	f.mu.Unlock()

	f.logger.Debug("feed subscriber removed",
		zap.Int64("subscriber_id", subscriberID),
		zap.Int("subscribers", count))
}

// C returns the snapshot stream. It is closed once the subscription ends and
// any snapshots it still buffers have been drained.
func (s *Subscription) C() <-chan Snapshot {
	return s.stream
}

// Close stops new deliveries. Snapshots published after Close are never sent;
// up to the buffer size of earlier ones may still be received from C.
// It is safe to call more than once and never affects writes.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.feed.unregister(s.id)
		close(s.done)
	})
}

func (s *Subscription) enqueue(snapshot Snapshot) {
	s.mu.Lock()
	s.pending = append(s.pending, snapshot)
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Subscription) dequeue() (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return Snapshot{}, false
	}
	next := s.pending[0]
	s.pending[0] = Snapshot{}
	s.pending = s.pending[1:]
	return next, true
}

func (s *Subscription) pump(ctx context.Context) {
	defer close(s.stream)
	for {
		next, ok := s.dequeue()
		if !ok {
			select {
			case <-s.wake:
				continue
			case <-s.done:
				return
			case <-ctx.Done():
				s.Close()
				return
			}
		}
		select {
		case s.stream <- next:
		case <-s.done:
			return
		case <-ctx.Done():
			s.Close()
			return
		}
	}
}

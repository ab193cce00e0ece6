package notes

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"note-shelf/internal/logger"
)

// Subscriber is one live connection receiving its owner's note events.
type Subscriber struct {
	OwnerID string
	Ch      chan NoteEvent
	Done    chan struct{}
}

// ConnInfo holds connection metadata
type ConnInfo struct {
	ID          ulid.ULID
	ConnectedAt time.Time
	Subscriber  *Subscriber
}

// ownerSubs holds subscribers for a specific owner
type ownerSubs struct {
	mu sync.RWMutex
	m  map[ulid.ULID]ConnInfo
}

// Hub fans note events out to the connections of the note's owner. Events
// never cross owners.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]*ownerSubs
	connIndex   map[ulid.ULID]string
	bufferSize  int
	dropped     uint64
}

// NewHub creates a new event hub with configurable buffer size
func NewHub(bufferSize int) *Hub {
	return &Hub{
		subscribers: make(map[string]*ownerSubs),
		connIndex:   make(map[ulid.ULID]string),
		bufferSize:  bufferSize,
	}
}

// Subscribe registers a connection for ownerID and returns its subscriber
// plus a cancel func that unsubscribes it.
func (h *Hub) Subscribe(connID ulid.ULID, ownerID string) (*Subscriber, func()) {
	log := logger.L()
	if log.Enabled(context.Background(), slog.LevelDebug) {
		log.Debug("subscribing connection", "conn_id", connID.String(), "user_id", ownerID)
	}

	sub := &Subscriber{
		OwnerID: ownerID,
		Ch:      make(chan NoteEvent, h.bufferSize),
		Done:    make(chan struct{}),
	}

	h.mu.Lock()
	bucket, exists := h.subscribers[ownerID]
	if !exists {
		bucket = &ownerSubs{m: make(map[ulid.ULID]ConnInfo)}
		h.subscribers[ownerID] = bucket
	}
	h.connIndex[connID] = ownerID
	// bucket insert happens under the hub lock so Unsubscribe cannot prune
	// the bucket between creation and insert
	bucket.mu.Lock()
	bucket.m[connID] = ConnInfo{ID: connID, ConnectedAt: time.Now(), Subscriber: sub}
	bucket.mu.Unlock()
	h.mu.Unlock()

	return sub, func() { h.Unsubscribe(connID) }
}

// Unsubscribe removes a subscriber and closes its channels. Safe to call
// more than once.
func (h *Hub) Unsubscribe(connID ulid.ULID) {
	log := logger.L()
	if log.Enabled(context.Background(), slog.LevelDebug) {
		log.Debug("unsubscribing connection", "conn_id", connID.String())
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	ownerID, ok := h.connIndex[connID]
	if !ok {
		return
	}
	delete(h.connIndex, connID)

	bucket := h.subscribers[ownerID]
	if bucket == nil {
		return
	}

	bucket.mu.Lock()
	info, exists := bucket.m[connID]
	delete(bucket.m, connID)
	empty := len(bucket.m) == 0
	if exists {
		close(info.Subscriber.Ch)
		close(info.Subscriber.Done)
	}
	bucket.mu.Unlock()

	if empty {
		delete(h.subscribers, ownerID)
	}
}

// Broadcast delivers ev to every subscriber of ev.Note.OwnerID
func (h *Hub) Broadcast(_ context.Context, ev NoteEvent) {
	if ev.Note == nil || ev.Note.OwnerID == "" {
		return
	}

	log := logger.L()
	if log.Enabled(context.Background(), slog.LevelDebug) {
		log.Debug("broadcasting event", "user_id", ev.Note.OwnerID, "event_type", ev.Type)
	}

	bucket := h.bucket(ev.Note.OwnerID)
	if bucket == nil {
		return
	}

	bucket.mu.RLock()
	for _, info := range bucket.m {
		sendOrDrop(info.Subscriber.Ch, ev, func() {
			atomic.AddUint64(&h.dropped, 1)
			log.Warn("outbox full, dropping event", "conn_id", info.ID.String(), "user_id", info.Subscriber.OwnerID, "event_type", ev.Type)
		})
	}
	bucket.mu.RUnlock()
}

// SubscriberCount returns the number of live subscribers across owners.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, bucket := range h.subscribers {
		bucket.mu.RLock()
		total += len(bucket.m)
		bucket.mu.RUnlock()
	}
	return total
}

// sendOrDrop is the only place that can decide to drop an event.
func sendOrDrop(ch chan NoteEvent, ev NoteEvent, onDrop func()) {
	select {
	case ch <- ev:
	default:
		onDrop()
	}
}

// Stats returns the live subscriber count and the number of dropped events.
func (h *Hub) Stats() (subscribers int, dropped uint64) {
	return h.SubscriberCount(), atomic.LoadUint64(&h.dropped)
}

func (h *Hub) bucket(ownerID string) *ownerSubs {
	h.mu.RLock()
	b := h.subscribers[ownerID]
	h.mu.RUnlock()
	return b
}

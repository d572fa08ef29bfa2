package session

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dshills/mcpizza/internal/order"
	"github.com/dshills/mcpizza/pkg/types"
)

// DefaultSessionID is used when the transport carries no session identity
const DefaultSessionID = "default"

// Registry maps a session id to at most one active order.
//
// Tool calls for different sessions run independently. Lock serializes calls
// within one session so a price or submit in flight is never interleaved with
// a line mutation on the same order.
type Registry struct {
	mu     sync.RWMutex
	orders map[string]*order.Order

	locksMu sync.Mutex
	locks   map[string]*sessionLock
}

// sessionLock is a per-session mutex with a count of holders and waiters
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{
		orders: make(map[string]*order.Order),
		locks:  make(map[string]*sessionLock),
	}
}

// Lock acquires the per-session mutex and returns its release func.
// Callers hold it for the whole tool invocation. The mutex is dropped on
// release once nobody else waits for it and the session holds no order, so
// cleared and lookup-only sessions do not accumulate.
func (r *Registry) Lock(sessionID string) (unlock func()) {
	sessionID = normalize(sessionID)

	r.locksMu.Lock()
	l, ok := r.locks[sessionID]
	if !ok {
		l = &sessionLock{}
		r.locks[sessionID] = l
	}
	l.refs++
	r.locksMu.Unlock()

	l.mu.Lock()
	var once sync.Once
	return func() {
		once.Do(func() { r.release(sessionID, l) })
	}
}

func (r *Registry) release(sessionID string, l *sessionLock) {
	r.locksMu.Lock()
	defer r.locksMu.Unlock()

	l.mu.Unlock()
	l.refs--
	if l.refs > 0 {
		return
	}
	r.mu.RLock()
	_, active := r.orders[sessionID]
	r.mu.RUnlock()
	if !active {
		delete(r.locks, sessionID)
	}
}

// lockCount reports how many session mutexes are live
func (r *Registry) lockCount() int {
	r.locksMu.Lock()
	defer r.locksMu.Unlock()
	return len(r.locks)
}

// Create installs o as the session's active order. It fails with
// ErrAlreadyActive when an order exists and replace is false; with replace
// the previous order is discarded and returned.
func (r *Registry) Create(sessionID string, o *order.Order, replace bool) (previous *order.Order, err error) {
	if o == nil {
		return nil, types.InvalidField("order", "is required")
	}
	sessionID = normalize(sessionID)

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.orders[sessionID]; ok {
		if !replace {
			return nil, fmt.Errorf("%w: order %s (status %s)", types.ErrAlreadyActive, existing.ID(), existing.Status())
		}
		previous = existing
	}
	r.orders[sessionID] = o
	return previous, nil
}

// Get returns the session's active order or ErrNoActiveOrder
func (r *Registry) Get(sessionID string) (*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[normalize(sessionID)]
	if !ok {
		return nil, types.ErrNoActiveOrder
	}
	return o, nil
}

// Clear discards the session's active order. Clearing an empty session is
// not an error; the removed order, if any, is returned.
func (r *Registry) Clear(sessionID string) *order.Order {
	sessionID = normalize(sessionID)

	r.mu.Lock()
	defer r.mu.Unlock()

	o := r.orders[sessionID]
	delete(r.orders, sessionID)
	return o
}

// Sessions lists session ids holding an active order, sorted
func (r *Registry) Sessions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.orders))
	for id := range r.orders {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func normalize(sessionID string) string {
	if sessionID == "" {
		return DefaultSessionID
	}
	return sessionID
}

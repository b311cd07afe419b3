package ui

import (
	"sync"
	"time"

	"github.com/Rrens/crewchat/internal/session"
)

// DefaultToastTTL is how long a notification stays visible
const DefaultToastTTL = 2 * time.Second

// Toast is one visible notification
type Toast struct {
	ID    uint64
	Level session.Level
	Text  string
}

// Toaster keeps notifications visible for a fixed time. It implements
// session.Notifier.
type Toaster struct {
	ttl time.Duration

	mu      sync.Mutex
	toasts  []Toast
	timers  map[uint64]*time.Timer
	next    uint64
	changes chan struct{}
	closed  bool
}

func NewToaster(ttl time.Duration) *Toaster {
	if ttl <= 0 {
		ttl = DefaultToastTTL
	}
	return &Toaster{
		ttl:     ttl,
		timers:  make(map[uint64]*time.Timer),
		changes: make(chan struct{}, 1),
	}
}

// Notify shows n until the TTL elapses
func (t *Toaster) Notify(n session.Notification) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.next++
	id := t.next
	t.toasts = append(t.toasts, Toast{ID: id, Level: n.Level, Text: n.Text})
	t.timers[id] = time.AfterFunc(t.ttl, func() { t.dismiss(id) })
	t.mu.Unlock()

	t.signal()
}

func (t *Toaster) dismiss(id uint64) {
	t.mu.Lock()
	delete(t.timers, id)
	toasts := t.toasts[:0]
	for _, toast := range t.toasts {
		if toast.ID != id {
			toasts = append(toasts, toast)
		}
	}
	t.toasts = toasts
	t.mu.Unlock()

	t.signal()
}

// Active returns the visible toasts, oldest first
func (t *Toaster) Active() []Toast {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Toast{}, t.toasts...)
}

// Changes is signalled whenever a toast appears or expires
func (t *Toaster) Changes() <-chan struct{} {
	return t.changes
}

// Close stops pending timers
func (t *Toaster) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	for id, timer := range t.timers {
		timer.Stop()
		delete(t.timers, id)
	}
}

func (t *Toaster) signal() {
	select {
	case t.changes <- struct{}{}:
	default:
	}
}

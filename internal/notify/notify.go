// Package notify keeps short-lived user notifications ("toasts") that
// dismiss themselves after a timeout.
package notify

import (
	"sort"
	"sync"
	"time"
)

// Kind is the severity of a notification
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindWarning Kind = "warning"
)

// Default lifetimes. Errors stay up longer so they can be read.
const (
	DefaultTimeout      = 3 * time.Second
	DefaultErrorTimeout = 5 * time.Second
)

// Notification is a single message shown to the user
type Notification struct {
	ID        int           `json:"id"`
	Kind      Kind          `json:"kind"`
	Message   string        `json:"message"`
	CreatedAt time.Time     `json:"created_at"`
	Timeout   time.Duration `json:"timeout"`
}

type entry struct {
	n     Notification
	timer *time.Timer
}

// Notifier owns the id sequence and the set of visible notifications.
// Ids start at 1 and are never reused within one Notifier.
type Notifier struct {
	Timeout      time.Duration
	ErrorTimeout time.Duration
	// OnDismiss, when set, is called after a notification is removed.
	OnDismiss func(Notification)

	mu     sync.Mutex
	nextID int
	active map[int]*entry
}

// NewNotifier creates a Notifier with the default lifetimes
func NewNotifier() *Notifier {
	return &Notifier{
		Timeout:      DefaultTimeout,
		ErrorTimeout: DefaultErrorTimeout,
		active:       make(map[int]*entry),
	}
}

// Show records a notification and schedules its dismissal
func (n *Notifier) Show(kind Kind, message string) Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextID++
	note := Notification{
		ID:        n.nextID,
		Kind:      kind,
		Message:   message,
		CreatedAt: time.Now(),
		Timeout:   n.timeoutFor(kind),
	}
	id := note.ID
	n.active[id] = &entry{
		n:     note,
		timer: time.AfterFunc(note.Timeout, func() { n.Dismiss(id) }),
	}
	return note
}

// Success is shorthand for Show(KindSuccess, message)
func (n *Notifier) Success(message string) Notification {
	return n.Show(KindSuccess, message)
}

// Error is shorthand for Show(KindError, message)
func (n *Notifier) Error(message string) Notification {
	return n.Show(KindError, message)
}

// Warning is shorthand for Show(KindWarning, message)
func (n *Notifier) Warning(message string) Notification {
	return n.Show(KindWarning, message)
}

// Dismiss removes a notification. It reports false when the id is not visible.
func (n *Notifier) Dismiss(id int) bool {
	n.mu.Lock()
	e, ok := n.active[id]
	if ok {
		e.timer.Stop()
		delete(n.active, id)
	}
	onDismiss := n.OnDismiss
	n.mu.Unlock()

	if ok && onDismiss != nil {
		onDismiss(e.n)
	}
	return ok
}

// Active lists visible notifications, oldest first
func (n *Notifier) Active() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]Notification, 0, len(n.active))
	for _, e := range n.active {
		out = append(out, e.n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Close stops every pending timer and clears the visible set
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	for id, e := range n.active {
		e.timer.Stop()
		delete(n.active, id)
	}
}

func (n *Notifier) timeoutFor(kind Kind) time.Duration {
	if kind == KindError {
		return n.ErrorTimeout
	}
	return n.Timeout
}

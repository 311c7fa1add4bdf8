// ABOUTME: Process-wide tracker of usernames connected to the public room
// ABOUTME: Mutex-guarded set with deterministic sorted snapshots for broadcast

package presence

import (
	"sort"
	"sync"
)

// Tracker records which authenticated users currently hold an open
// public-room socket. It mirrors live connections only: state is lost on
// restart, and a multi-process deployment would need a shared backend
// behind the same interface.
type Tracker struct {
	mu    sync.RWMutex
	users map[string]int // username -> open connection count
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{users: make(map[string]int)}
}

// Add records a connection for the given user.
// A user with multiple open sockets stays present until the last one is removed.
func (t *Tracker) Add(user string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.users[user]++
}

// Remove drops one connection for the given user.
// Removing an absent user is a no-op, so double-disconnects are safe.
func (t *Tracker) Remove(user string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, ok := t.users[user]
	if !ok {
		return
	}
	if n <= 1 {
		delete(t.users, user)
		return
	}
	t.users[user] = n - 1
}

// Snapshot returns the online usernames sorted ascending, so every client
// renders the same order.
func (t *Tracker) Snapshot() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]string, 0, len(t.users))
	for user := range t.users {
		out = append(out, user)
	}
	sort.Strings(out)
	return out
}

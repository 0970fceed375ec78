package utility

import (
	"sync"
	"time"
)

// Feedback is one submitted feedback entry.
type Feedback struct {
	Topic   string
	Message string
	UserID  string
	GuildID string
	At      time.Time
}

// Inbox collects feedback submissions in memory until someone reads
// them out.
type Inbox struct {
	mu      sync.Mutex
	entries []Feedback
}

// NewInbox creates an empty inbox.
func NewInbox() *Inbox {
	return &Inbox{}
}

// Add appends an entry.
func (i *Inbox) Add(f Feedback) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.entries = append(i.entries, f)
}

// All returns the entries in arrival order.
func (i *Inbox) All() []Feedback {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := make([]Feedback, len(i.entries))
	copy(out, i.entries)
	return out
}

// Len is the number of entries waiting.
func (i *Inbox) Len() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.entries)
}

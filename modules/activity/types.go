// Package activity keeps a short feed of recent task changes built from task events.
package activity

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry kinds recorded in the feed.
const (
	TypeCreated = "task_created"
	TypeUpdated = "task_updated"
	TypeToggled = "task_toggled"
	TypeDeleted = "task_deleted"
)

// DefaultMaxEntries is the number of entries retained by the feed.
const DefaultMaxEntries = 100

// Entry is a single line of the activity feed.
type Entry struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	TaskID    int64     `json:"taskId"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// RecentActivityRequest is the request for the recent-activity service.
type RecentActivityRequest struct {
	Limit int `json:"limit,omitempty"`
}

// RecentActivityResponse lists entries newest first.
type RecentActivityResponse struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
}

// Feed is a bounded, thread-safe log of entries. Once full the oldest entry is dropped.
type Feed struct {
	mu         sync.RWMutex
	entries    []Entry
	maxEntries int
}

// NewFeed creates a feed holding at most maxEntries entries.
func NewFeed(maxEntries int) *Feed {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Feed{
		entries:    make([]Entry, 0, maxEntries),
		maxEntries: maxEntries,
	}
}

// Record appends an entry, assigning an id when missing.
func (f *Feed) Record(e Entry) Entry {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.entries = append(f.entries, e)
	if len(f.entries) > f.maxEntries {
		excess := len(f.entries) - f.maxEntries
		f.entries = append(f.entries[:0:0], f.entries[excess:]...)
	}
	return e
}

// Recent returns up to limit entries, newest first. A non-positive limit returns all.
func (f *Feed) Recent(limit int) []Entry {
	f.mu.RLock()
	defer f.mu.RUnlock()

	n := len(f.entries)
	if limit <= 0 || limit > n {
		limit = n
	}

	result := make([]Entry, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		result = append(result, f.entries[i])
	}
	return result
}

// Len returns the number of retained entries.
func (f *Feed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.entries)
}

package failure

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/physiq/internal/ring"
)

// DefaultLogCapacity bounds the error log.
const DefaultLogCapacity = 1000

// Entry is one logged failure.
type Entry struct {
	ID         string            `json:"id"`
	Timestamp  time.Time         `json:"timestamp"`
	Kind       Kind              `json:"kind"`
	Code       string            `json:"code"`
	Stage      Stage             `json:"stage"`
	Message    string            `json:"message"`
	Context    map[string]string `json:"context,omitempty"`
	Resolved   bool              `json:"resolved"`
	RetryCount int               `json:"retry_count"`
}

// ErrorLog is an append-only ring buffer of entries. When full, the oldest
// entry is overwritten. It is safe for concurrent use.
type ErrorLog struct {
	mu      sync.Mutex
	entries *ring.Buffer[Entry]
}

// NewErrorLog returns a log holding at most capacity entries.
func NewErrorLog(capacity int) *ErrorLog {
	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}
	return &ErrorLog{entries: ring.New[Entry](capacity)}
}

// Append stores e, assigning an ID if it has none, and returns the stored entry.
func (l *ErrorLog) Append(e Entry) Entry {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries.Push(e)
	return e
}

// Len returns the number of stored entries.
func (l *ErrorLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.entries.Len()
}

// CountSince counts entries of kind logged at or after since.
func (l *ErrorLog) CountSince(kind Kind, since time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	l.entries.Each(func(e *Entry) {
		if e.Kind == kind && !e.Timestamp.Before(since) {
			n++
		}
	})
	return n
}

// Entries returns a copy of all entries, oldest first.
func (l *ErrorLog) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.entries.Snapshot()
}

// MarkResolved flags the entry with id as resolved. It reports whether the
// entry is still in the log.
func (l *ErrorLog) MarkResolved(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	found := false
	l.entries.Each(func(e *Entry) {
		if e.ID == id {
			e.Resolved = true
			found = true
		}
	})
	return found
}

// Reset empties the log.
func (l *ErrorLog) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries.Reset()
}

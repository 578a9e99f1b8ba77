package ratelimit

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"
)

// Record is one tracked provider call.
type Record struct {
	Time   time.Time `json:"t"`
	Tokens int       `json:"tokens"`
	Cost   float64   `json:"cost"`
}

// Ledger stores usage records per provider, ordered oldest first.
// Implementations must be safe for concurrent use.
type Ledger interface {
	Append(ctx context.Context, provider string, r Record) error

	// Since returns the records at or after since, oldest first.
	Since(ctx context.Context, provider string, since time.Time) ([]Record, error)

	// Prune drops records strictly before cutoff.
	Prune(ctx context.Context, provider string, cutoff time.Time) error
}

// DefaultMaxRecords caps a provider's in-memory log.
const DefaultMaxRecords = 100_000

// MemoryLedger keeps records in process memory.
type MemoryLedger struct {
	mu      sync.Mutex
	records map[string][]Record
	max     int
}

// NewMemoryLedger returns a ledger holding at most maxRecords per provider,
// evicting the oldest. maxRecords <= 0 uses DefaultMaxRecords.
func NewMemoryLedger(maxRecords int) *MemoryLedger {
	if maxRecords <= 0 {
		maxRecords = DefaultMaxRecords
	}
	return &MemoryLedger{records: make(map[string][]Record), max: maxRecords}
}

func (m *MemoryLedger) Append(_ context.Context, provider string, r Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	recs := m.records[provider]
	i := sort.Search(len(recs), func(i int) bool { return recs[i].Time.After(r.Time) })
	recs = slices.Insert(recs, i, r)
	if over := len(recs) - m.max; over > 0 {
		recs = slices.Delete(recs, 0, over)
	}
	m.records[provider] = recs
	return nil
}

func (m *MemoryLedger) Since(_ context.Context, provider string, since time.Time) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	recs := m.records[provider]
	i := sort.Search(len(recs), func(i int) bool { return !recs[i].Time.Before(since) })
	return slices.Clone(recs[i:]), nil
}

func (m *MemoryLedger) Prune(_ context.Context, provider string, cutoff time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	recs := m.records[provider]
	i := sort.Search(len(recs), func(i int) bool { return !recs[i].Time.Before(cutoff) })
	if i > 0 {
		m.records[provider] = slices.Delete(recs, 0, i)
	}
	return nil
}

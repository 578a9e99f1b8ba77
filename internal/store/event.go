package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"
)

// sequenceCounter hands out the global monotonic sequence number shared by
// every event table, so events of different types can be ordered against
// each other. The table is created by the initial migration.
//
// The mutex serializes within the process; the RETURNING clause makes the
// increment atomic at the database level.
type sequenceCounter struct {
	mu sync.Mutex
	db *sql.DB
}

// Next atomically returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var seq int64
	err := sc.db.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}

// eventRepo implements EventRepo with plain SQL and the sequence counter.
type eventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// queryFilter builds the WHERE/LIMIT suffix for QueryOpts.
func queryFilter(opts QueryOpts) (string, []any) {
	where := " WHERE 1=1"
	var args []any
	if opts.After > 0 {
		where += " AND sequence > ?"
		args = append(args, opts.After)
	}
	if opts.Before > 0 {
		where += " AND sequence < ?"
		args = append(args, opts.Before)
	}
	if !opts.From.IsZero() {
		where += " AND timestamp_ms >= ?"
		args = append(args, opts.From.UnixMilli())
	}
	if !opts.To.IsZero() {
		where += " AND timestamp_ms <= ?"
		args = append(args, opts.To.UnixMilli())
	}
	return where, args
}

func limitClause(opts QueryOpts) string {
	if opts.Limit > 0 {
		return fmt.Sprintf(" LIMIT %d", opts.Limit)
	}
	return ""
}

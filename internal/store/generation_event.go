package store

import (
	"context"
	"fmt"
	"time"
)

func (r *eventRepo) AppendGeneration(ctx context.Context, data GenerationEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO generation_events
		(sequence, timestamp_ms, question_id, topic, difficulty, success, fallback,
		 refinement_attempted, refinement_applied, quality_score, attempts, duration_ms,
		 error_kind, stage)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		seqNum, toMillis(data.Timestamp), data.QuestionID, data.Topic, data.Difficulty,
		data.Success, data.Fallback, data.RefinementAttempted, data.RefinementApplied,
		data.QualityScore, data.Attempts, data.DurationMs, data.ErrorKind, data.Stage,
	)
	if err != nil {
		return fmt.Errorf("save generation event: %w", err)
	}
	return nil
}

// QueryGenerations returns generation events newest first.
func (r *eventRepo) QueryGenerations(ctx context.Context, opts QueryOpts) ([]GenerationEventRecord, error) {
	where, args := queryFilter(opts)
	rows, err := r.db.QueryContext(ctx, `SELECT id, sequence, timestamp_ms, question_id, topic,
		difficulty, success, fallback, refinement_attempted, refinement_applied,
		quality_score, attempts, duration_ms, error_kind, stage
		FROM generation_events`+where+` ORDER BY sequence DESC`+limitClause(opts), args...)
	if err != nil {
		return nil, fmt.Errorf("query generation events: %w", err)
	}
	defer rows.Close()

	var out []GenerationEventRecord
	for rows.Next() {
		var e GenerationEventRecord
		var ts int64
		if err := rows.Scan(&e.ID, &e.Sequence, &ts, &e.QuestionID, &e.Topic,
			&e.Difficulty, &e.Success, &e.Fallback, &e.RefinementAttempted,
			&e.RefinementApplied, &e.QualityScore, &e.Attempts, &e.DurationMs,
			&e.ErrorKind, &e.Stage); err != nil {
			return nil, fmt.Errorf("scan generation event: %w", err)
		}
		e.Timestamp = fromMillis(ts)
		out = append(out, e)
	}
	return out, rows.Err()
}

// GenerationSummary aggregates all stored generations per topic. Average
// quality only counts successful generations.
func (r *eventRepo) GenerationSummary(ctx context.Context) ([]TopicSummary, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT topic, COUNT(*),
		COALESCE(SUM(CASE WHEN success THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN fallback THEN 1 ELSE 0 END), 0),
		COALESCE(AVG(CASE WHEN success THEN quality_score END), 0),
		CAST(COALESCE(AVG(duration_ms), 0) AS INTEGER)
		FROM generation_events GROUP BY topic ORDER BY topic`)
	if err != nil {
		return nil, fmt.Errorf("query generation summary: %w", err)
	}
	defer rows.Close()

	var out []TopicSummary
	for rows.Next() {
		var s TopicSummary
		if err := rows.Scan(&s.Topic, &s.Total, &s.Successful, &s.Fallbacks, &s.AvgQuality, &s.AvgDurationMs); err != nil {
			return nil, fmt.Errorf("scan generation summary: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *eventRepo) AppendError(ctx context.Context, data ErrorEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO error_events
		(sequence, timestamp_ms, kind, code, stage, message) VALUES (?, ?, ?, ?, ?, ?)`,
		seqNum, toMillis(data.Timestamp), data.Kind, data.Code, data.Stage, data.Message,
	)
	if err != nil {
		return fmt.Errorf("save error event: %w", err)
	}
	return nil
}

// ErrorCounts counts stored errors per kind at or after since.
func (r *eventRepo) ErrorCounts(ctx context.Context, since time.Time) ([]ErrorKindCount, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT kind, COUNT(*) FROM error_events
		WHERE timestamp_ms >= ? GROUP BY kind ORDER BY kind`, since.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("query error counts: %w", err)
	}
	defer rows.Close()

	var out []ErrorKindCount
	for rows.Next() {
		var c ErrorKindCount
		if err := rows.Scan(&c.Kind, &c.Count); err != nil {
			return nil, fmt.Errorf("scan error count: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

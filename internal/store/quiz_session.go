package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

func (r *eventRepo) AppendQuizSession(ctx context.Context, data QuizSessionData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(tableQuizSession).
		Columns(
			"id", "sequence", "timestamp", "source", "subject", "difficulty",
			"question_count", "time_limit_secs", "answered", "correct",
			"elapsed_ms", "end_reason",
		).
		Values(
			data.ID,
			seqNum,
			time.Now().UnixMilli(),
			data.Source,
			data.Subject,
			data.Difficulty,
			data.QuestionCount,
			int(data.TimeLimit/time.Second),
			data.Answered,
			data.Correct,
			data.Elapsed.Milliseconds(),
			data.EndReason,
		).
		Query()

	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save quiz session: %w", err)
	}
	return nil
}

func (r *eventRepo) RecentQuizSessions(ctx context.Context, limit int) ([]QuizSession, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select(
			"id", "sequence", "timestamp", "source", "subject", "difficulty",
			"question_count", "time_limit_secs", "answered", "correct",
			"elapsed_ms", "end_reason",
		).
		From(entsql.Table(tableQuizSession)).
		OrderBy(entsql.Desc("sequence"))
	if limit > 0 {
		sel.Limit(limit)
	}

	query, args := sel.Query()
	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query quiz sessions: %w", err)
	}
	defer rows.Close()

	var out []QuizSession
	for rows.Next() {
		var (
			s             QuizSession
			ts, elapsedMs int64
			limitSecs     int
		)
		err := rows.Scan(
			&s.ID, &s.Sequence, &ts, &s.Source, &s.Subject, &s.Difficulty,
			&s.QuestionCount, &limitSecs, &s.Answered, &s.Correct,
			&elapsedMs, &s.EndReason,
		)
		if err != nil {
			return nil, fmt.Errorf("scan quiz session: %w", err)
		}
		s.Timestamp = time.UnixMilli(ts).UTC()
		s.TimeLimit = time.Duration(limitSecs) * time.Second
		s.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		out = append(out, s)
	}
	return out, rows.Err()
}

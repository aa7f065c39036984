package audit

import (
	"context"
	"database/sql"
	"time"
)

// Event is one row of the append-only progress write log. The log exists so
// an operator can reconstruct how a student's record reached its current
// state after a support question.
type Event struct {
	Offset    int64  `json:"offset"`
	UserID    string `json:"user_id"`
	TopicID   string `json:"topic_id"`
	Kind      string `json:"kind"` // "insert", "update" or "upsert"
	DataJSON  string `json:"data"`
	CreatedAt int64  `json:"created_at"`
}

type EventRepo struct{ db *sql.DB }

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

func (r *EventRepo) Append(ctx context.Context, e Event) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO progress_events (user_id, topic_id, kind, data, created_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		e.UserID, e.TopicID, e.Kind, e.DataJSON, time.Now().Unix())
	return err
}

// Recent returns up to limit events, newest first.
func (r *EventRepo) Recent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT offset_id, user_id, topic_id, kind, data, created_at
		 FROM progress_events ORDER BY offset_id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Offset, &e.UserID, &e.TopicID, &e.Kind, &e.DataJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

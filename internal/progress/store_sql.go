package progress

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Get(ctx context.Context, userID, topicID string) (Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT user_id,topic_id,completed,score,completed_at,updated_at FROM progress WHERE user_id=$1 AND topic_id=$2`,
		userID, topicID)
	return scanRecord(row)
}

func (s *SQLStore) ListByUser(ctx context.Context, userID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id,topic_id,completed,score,completed_at,updated_at FROM progress WHERE user_id=$1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLStore) Insert(ctx context.Context, rec Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO progress (user_id,topic_id,completed,score,completed_at,updated_at) VALUES ($1,$2,$3,$4,$5,$6)`,
		rec.UserID, rec.TopicID, rec.Completed, scoreArg(rec), completedAtArg(rec), rec.UpdatedAt.Unix())
	if isDuplicateKey(err) {
		return ErrDuplicateKey
	}
	return err
}

func (s *SQLStore) Update(ctx context.Context, rec Record) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE progress SET completed=$1, score=$2, completed_at=$3, updated_at=$4 WHERE user_id=$5 AND topic_id=$6`,
		rec.Completed, scoreArg(rec), completedAtArg(rec), rec.UpdatedAt.Unix(), rec.UserID, rec.TopicID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Upsert writes the full record keyed on (user_id, topic_id) in one atomic
// statement, so a retried identical submission lands on the same row.
func (s *SQLStore) Upsert(ctx context.Context, rec Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO progress (user_id,topic_id,completed,score,completed_at,updated_at) VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (user_id,topic_id) DO UPDATE SET completed=EXCLUDED.completed, score=EXCLUDED.score,
			completed_at=EXCLUDED.completed_at, updated_at=EXCLUDED.updated_at`,
		rec.UserID, rec.TopicID, rec.Completed, scoreArg(rec), completedAtArg(rec), rec.UpdatedAt.Unix())
	return err
}

func scoreArg(rec Record) any {
	if rec.Score == nil {
		return nil
	}
	return *rec.Score
}

func completedAtArg(rec Record) any {
	if rec.CompletedAt == nil {
		return nil
	}
	return rec.CompletedAt.Unix()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var rec Record
	var score sql.NullInt64
	var completedAt sql.NullInt64
	var updatedAt int64
	if err := row.Scan(&rec.UserID, &rec.TopicID, &rec.Completed, &score, &completedAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	if score.Valid {
		v := int(score.Int64)
		rec.Score = &v
	}
	if completedAt.Valid {
		t := time.Unix(completedAt.Int64, 0).UTC()
		rec.CompletedAt = &t
	}
	rec.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return rec, nil
}

func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed") // sqlite
}

package topic

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) PutTopic(ctx context.Context, t Topic) (Topic, error) {
	qj, err := json.Marshal(t.Questions)
	if err != nil {
		return Topic{}, err
	}
	if t.CreatedAt == 0 {
		t.CreatedAt = time.Now().Unix()
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO topics (id,title,description,content,example,questions_json,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, description=EXCLUDED.description,
			content=EXCLUDED.content, example=EXCLUDED.example, questions_json=EXCLUDED.questions_json`,
		t.ID, t.Title, t.Description, t.Content, t.Example, string(qj), t.CreatedAt)
	if err != nil {
		return Topic{}, err
	}
	return s.GetTopic(ctx, t.ID)
}

func (s *SQLStore) GetTopic(ctx context.Context, id string) (Topic, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,title,description,content,example,questions_json,created_at FROM topics WHERE id=$1`, id)
	return scanTopic(row)
}

func (s *SQLStore) ListTopics(ctx context.Context, order Order) ([]Topic, error) {
	dir := "DESC"
	if order == OrderOldestFirst {
		dir = "ASC"
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,title,description,content,example,questions_json,created_at FROM topics ORDER BY created_at `+dir)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Topic
	for rows.Next() {
		t, err := scanTopic(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLStore) DeleteTopic(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM topics WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTopic(row rowScanner) (Topic, error) {
	var t Topic
	var qjson string
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Content, &t.Example, &qjson, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Topic{}, ErrNotFound
		}
		return Topic{}, err
	}
	if err := json.Unmarshal([]byte(qjson), &t.Questions); err != nil {
		return Topic{}, err
	}
	return t, nil
}

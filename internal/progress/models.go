package progress

import "time"

// Record tracks one student's progress through one topic. At most one record
// exists per (user, topic) pair; that pair is the natural key for upserts.
// Only the latest exam attempt's score is kept.
type Record struct {
	UserID      string     `json:"user_id"`
	TopicID     string     `json:"topic_id"`
	Completed   bool       `json:"completed"`
	Score       *int       `json:"score,omitempty"`        // 0..100
	CompletedAt *time.Time `json:"completed_at,omitempty"` // stamped by exam submission
	UpdatedAt   time.Time  `json:"updated_at"`
}

// RecordSet is a student's records keyed by topic id. It replaces the
// free-form topic-id-to-fields map the UI used to hold.
type RecordSet map[string]Record

func NewRecordSet(records []Record) RecordSet {
	s := make(RecordSet, len(records))
	for _, r := range records {
		s.Apply(r)
	}
	return s
}

func (s RecordSet) Lookup(topicID string) (Record, bool) {
	r, ok := s[topicID]
	return r, ok
}

// Apply folds rec in, keeping the newer of rec and whatever is already held
// for the topic. A late-arriving result for a superseded request is dropped
// instead of overwriting; the return value reports whether rec was kept.
func (s RecordSet) Apply(rec Record) bool {
	if cur, ok := s[rec.TopicID]; ok && rec.UpdatedAt.Before(cur.UpdatedAt) {
		return false
	}
	s[rec.TopicID] = rec
	return true
}

package progress

import (
	"github.com/html-hub/learninghub/internal/exam"
	"github.com/html-hub/learninghub/internal/topic"
)

// Summary is the dashboard view of one student's progress. It is derived,
// never stored: recomputing it from the full record set on every load keeps
// it from drifting from the authoritative records.
type Summary struct {
	CompletedCount   int `json:"completed_count"`
	TotalCount       int `json:"total_count"`
	Percentage       int `json:"percentage"`
	ExamsPassedCount int `json:"exams_passed_count"`
}

// Summarize folds one user's records against the topic set. Pure; a student
// with no topics gets an all-zero summary rather than a division by zero.
func Summarize(topics []topic.Topic, records []Record) Summary {
	s := Summary{TotalCount: len(topics)}
	for _, rec := range records {
		if rec.Completed {
			s.CompletedCount++
		}
		if rec.Score != nil && *rec.Score >= exam.PassThreshold {
			s.ExamsPassedCount++
		}
	}
	if s.TotalCount > 0 {
		s.Percentage = (s.CompletedCount*100*2 + s.TotalCount) / (s.TotalCount * 2)
	}
	return s
}

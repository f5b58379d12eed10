package models

import (
	"time"

	"gorm.io/datatypes"
)

// QuizResult is the immutable record of one completed attempt. Rows are
// append-only: never updated or deleted once written. UserID and QuizID are
// plain references without database-level cascade so historical results
// survive quiz deletion.
type QuizResult struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	UserID uint `json:"user_id" gorm:"not null;index"`
	QuizID uint `json:"quiz_id" gorm:"not null;index"`

	Score          int `json:"score" gorm:"not null"`
	TotalQuestions int `json:"total_questions" gorm:"not null"`
	TimeTaken      int `json:"time_taken" gorm:"not null;default:0"` // seconds, caller-reported

	CompletedAt time.Time `json:"completed_at" gorm:"not null;index"`

	// Verbatim snapshot of the submitted question-id -> answer mapping,
	// kept for audit and history. It is never re-graded.
	Answers datatypes.JSON `json:"answers" gorm:"type:jsonb"`
}

func (QuizResult) TableName() string {
	return "quiz_results"
}

package events

import "time"

// ResultRecordedEvent is published after a quiz submission has been
// committed. Consumers (notifications, analytics) are external; the service
// never reads these back.
type ResultRecordedEvent struct {
	EventID        string    `json:"event_id"`
	UserID         uint      `json:"user_id"`
	QuizID         uint      `json:"quiz_id"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	Percentage     float64   `json:"percentage"`
	TimeTaken      int       `json:"time_taken"`
	CompletedAt    time.Time `json:"completed_at"`
}

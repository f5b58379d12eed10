package models

import (
	"time"
)

type User struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Username string `json:"username" gorm:"uniqueIndex;not null;size:80" validate:"required,min=3,max=80"`
	Email    string `json:"email" gorm:"uniqueIndex;not null;size:120" validate:"required,email,max=120"`

	// Bcrypt hash, never the raw credential.
	PasswordHash string `json:"-" gorm:"not null;size:200"`

	// Aggregate stats, mutated only by the result ledger. Both are
	// monotonically non-decreasing: total_score equals the sum of score
	// over the user's results, quizzes_taken equals their count.
	TotalScore   int `json:"total_score" gorm:"not null;default:0"`
	QuizzesTaken int `json:"quizzes_taken" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

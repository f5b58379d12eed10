package models

import (
	"time"

	"gorm.io/datatypes"
)

type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "Easy"
	DifficultyMedium DifficultyLevel = "Medium"
	DifficultyHard   DifficultyLevel = "Hard"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
	TextAnswer     QuestionType = "text"
)

type Quiz struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Title       string          `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description *string         `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	Category    string          `json:"category" gorm:"not null;size:100;index" validate:"required,max=100"`
	Difficulty  DifficultyLevel `json:"difficulty" gorm:"not null;size:20;index" validate:"required,difficulty_level"`
	TimeLimit   int             `json:"time_limit" gorm:"not null;default:300" validate:"min=0"` // seconds

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Questions are owned exclusively by the quiz: deleting the quiz
	// deletes them at the database level.
	Questions []Question `json:"questions" gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

type Question struct {
	ID     uint         `json:"id" gorm:"primaryKey"`
	QuizID uint         `json:"quiz_id" gorm:"not null;index"`
	Text   string       `json:"question_text" gorm:"type:text;not null" validate:"required"`
	Type   QuestionType `json:"question_type" gorm:"not null;size:20" validate:"required,question_type"`

	// Ordered option strings, present only for multiple_choice and
	// true_false questions.
	Options datatypes.JSON `json:"options" gorm:"type:jsonb"`

	CorrectAnswer string `json:"correct_answer" gorm:"not null;size:500" validate:"required,max=500"`
	Points        int    `json:"points" gorm:"not null;default:1" validate:"required,min=1"`

	// Display and grading sequence within the quiz. Not unique.
	Position int `json:"order" gorm:"not null;default:0;column:position"`
}

func (Question) TableName() string {
	return "questions"
}

package services

import (
	"context"
	"io"
	"time"

	"github.com/openquiz/quiz-service/internal/models"
	"github.com/openquiz/quiz-service/internal/repositories"
)

// ===== SERVICE INTERFACES =====

type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
}

type QuizService interface {
	List(ctx context.Context, req *ListQuizzesRequest) ([]*QuizSummary, error)
	Get(ctx context.Context, id uint) (*QuizDetail, error)
	Create(ctx context.Context, req *CreateQuizRequest) (*QuizDetail, error)
	Delete(ctx context.Context, id uint) error
}

type ResultService interface {
	// Submit grades the submission, persists the immutable result snapshot
	// and bumps the user's aggregates in one transaction.
	Submit(ctx context.Context, quizID, userID uint, req *SubmitQuizRequest) (*SubmitQuizResponse, error)

	Leaderboard(ctx context.Context, limit int) ([]repositories.LeaderboardEntry, error)
	UserStats(ctx context.Context, userID uint) (*UserStatsResponse, error)
}

type CatalogExchangeService interface {
	ExportQuizzes(ctx context.Context) ([]byte, error)
	ImportQuizzes(ctx context.Context, reader io.Reader) (*ImportResult, error)
}

// ServiceManager bundles the services for handler wiring.
type ServiceManager interface {
	Auth() AuthService
	Quiz() QuizService
	Result() ResultService
	Catalog() CatalogExchangeService
}

// ===== REQUEST STRUCTS =====

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=80"`
	Email    string `json:"email" validate:"required,email,max=120"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ListQuizzesRequest struct {
	Category   *string `json:"category" validate:"omitempty,max=100"`
	Difficulty *string `json:"difficulty" validate:"omitempty,difficulty_level"`
}

type CreateQuestionRequest struct {
	Text          string   `json:"question_text" validate:"required"`
	Type          string   `json:"question_type" validate:"required,question_type"`
	Options       []string `json:"options" validate:"omitempty,max=10,dive,required"`
	CorrectAnswer string   `json:"correct_answer" validate:"required,max=500"`
	Points        int      `json:"points" validate:"required,min=1"`
	Order         int      `json:"order" validate:"min=0"`
}

type CreateQuizRequest struct {
	Title       string                  `json:"title" validate:"required,min=1,max=200"`
	Description *string                 `json:"description" validate:"omitempty,max=1000"`
	Category    string                  `json:"category" validate:"required,max=100"`
	Difficulty  string                  `json:"difficulty" validate:"required,difficulty_level"`
	TimeLimit   int                     `json:"time_limit" validate:"min=0"`
	Questions   []CreateQuestionRequest `json:"questions" validate:"omitempty,dive"`
}

type SubmitQuizRequest struct {
	// Question id (decimal string) -> submitted answer. May be incomplete;
	// unanswered questions earn no points.
	Answers map[string]string `json:"answers" validate:"required"`

	// Caller-reported seconds; trusted as-is, not enforced server-side.
	TimeTaken int `json:"time_taken" validate:"min=0"`
}

// ===== RESPONSE STRUCTS =====

type AuthResponse struct {
	AccessToken string `json:"access_token"`
	UserID      uint   `json:"user_id"`
	Username    string `json:"username"`
}

type QuizSummary struct {
	ID            uint                   `json:"id"`
	Title         string                 `json:"title"`
	Description   *string                `json:"description"`
	Category      string                 `json:"category"`
	Difficulty    models.DifficultyLevel `json:"difficulty"`
	TimeLimit     int                    `json:"time_limit"`
	QuestionCount int                    `json:"question_count"`
}

// QuestionView is a question as shown to a quiz taker: the correct answer
// is withheld.
type QuestionView struct {
	ID      uint                `json:"id"`
	Text    string              `json:"question_text"`
	Type    models.QuestionType `json:"question_type"`
	Options []string            `json:"options,omitempty"`
	Points  int                 `json:"points"`
	Order   int                 `json:"order"`
}

type QuizDetail struct {
	ID          uint                   `json:"id"`
	Title       string                 `json:"title"`
	Description *string                `json:"description"`
	Category    string                 `json:"category"`
	Difficulty  models.DifficultyLevel `json:"difficulty"`
	TimeLimit   int                    `json:"time_limit"`
	Questions   []QuestionView         `json:"questions"`
}

// SubmitQuizResponse echoes the grading outcome only, never the raw answers.
type SubmitQuizResponse struct {
	Score          int     `json:"score"`
	TotalQuestions int     `json:"total_questions"`
	Percentage     float64 `json:"percentage"`
	TimeTaken      int     `json:"time_taken"`
}

type RecentResultView struct {
	QuizTitle      string    `json:"quiz_title"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	Percentage     float64   `json:"percentage"`
	CompletedAt    time.Time `json:"completed_at"`
}

type UserStatsResponse struct {
	Username      string             `json:"username"`
	TotalScore    int                `json:"total_score"`
	QuizzesTaken  int                `json:"quizzes_taken"`
	RecentResults []RecentResultView `json:"recent_results"`
}

type ImportResult struct {
	TotalRows      int               `json:"total_rows"`
	QuizzesCreated int               `json:"quizzes_created"`
	ErrorCount     int               `json:"error_count"`
	Errors         []ValidationError `json:"errors,omitempty"`
}

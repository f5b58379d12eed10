package repositories

import (
	"context"
	"time"

	"github.com/openquiz/quiz-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type QuizFilters struct {
	Category   *string                 `json:"category"`
	Difficulty *models.DifficultyLevel `json:"difficulty"`
}

// ===== PROJECTION STRUCTS =====

// LeaderboardEntry is the per-user projection returned by the leaderboard
// query: aggregate stats only, never credentials.
type LeaderboardEntry struct {
	Username     string `json:"username"`
	TotalScore   int    `json:"total_score"`
	QuizzesTaken int    `json:"quizzes_taken"`
}

// RecentResult is a QuizResult row joined with its quiz title at read time.
// QuizTitle is nil when the referenced quiz no longer exists.
type RecentResult struct {
	QuizID         uint      `json:"quiz_id"`
	QuizTitle      *string   `json:"quiz_title"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	TimeTaken      int       `json:"time_taken"`
	CompletedAt    time.Time `json:"completed_at"`
}

// ===== REPOSITORY INTERFACES =====

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// IncrementStats adds scoreDelta to total_score and one to
	// quizzes_taken as a single relative UPDATE so concurrent
	// submissions never lose an update.
	IncrementStats(ctx context.Context, id uint, scoreDelta int) error

	// TopByScore returns at most limit users ordered by total_score
	// descending; ties go to the earlier registration, then lower id.
	TopByScore(ctx context.Context, limit int) ([]LeaderboardEntry, error)
}

type QuizRepository interface {
	Create(ctx context.Context, quiz *models.Quiz) error
	GetByIDWithQuestions(ctx context.Context, id uint) (*models.Quiz, error)
	List(ctx context.Context, filters QuizFilters) ([]*models.Quiz, error)
	Delete(ctx context.Context, id uint) error
}

type ResultRepository interface {
	Create(ctx context.Context, result *models.QuizResult) error
	GetRecentByUser(ctx context.Context, userID uint, limit int) ([]RecentResult, error)
}

// Repository aggregates the entity repositories and the transaction
// boundary. WithTransaction runs fn against a repository bound to a single
// database transaction; any error rolls the whole attempt back.
type Repository interface {
	User() UserRepository
	Quiz() QuizRepository
	Result() ResultRepository

	WithTransaction(ctx context.Context, fn func(Repository) error) error
	Ping(ctx context.Context) error
	Close() error
}

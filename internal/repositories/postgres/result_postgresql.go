package postgres

import (
	"context"

	"github.com/openquiz/quiz-service/internal/models"
	"github.com/openquiz/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

type ResultPostgreSQL struct {
	db *gorm.DB
}

func NewResultPostgreSQL(db *gorm.DB) repositories.ResultRepository {
	return &ResultPostgreSQL{db: db}
}

func (r *ResultPostgreSQL) Create(ctx context.Context, result *models.QuizResult) error {
	return r.db.WithContext(ctx).Create(result).Error
}

// GetRecentByUser resolves each result's quiz title at read time via a left
// join; quiz_title comes back NULL for results whose quiz has since been
// deleted.
func (r *ResultPostgreSQL) GetRecentByUser(ctx context.Context, userID uint, limit int) ([]repositories.RecentResult, error) {
	var results []repositories.RecentResult
	if err := r.db.WithContext(ctx).
		Model(&models.QuizResult{}).
		Select("quiz_results.quiz_id, quizzes.title AS quiz_title, quiz_results.score, quiz_results.total_questions, quiz_results.time_taken, quiz_results.completed_at").
		Joins("LEFT JOIN quizzes ON quizzes.id = quiz_results.quiz_id").
		Where("quiz_results.user_id = ?", userID).
		Order("quiz_results.completed_at DESC, quiz_results.id DESC").
		Limit(limit).
		Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

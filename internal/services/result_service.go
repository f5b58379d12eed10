package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/openquiz/quiz-service/internal/cache"
	"github.com/openquiz/quiz-service/internal/events"
	"github.com/openquiz/quiz-service/internal/models"
	"github.com/openquiz/quiz-service/internal/repositories"
	"github.com/openquiz/quiz-service/internal/validator"
	"gorm.io/datatypes"
)

const (
	DefaultLeaderboardLimit = 10
	recentResultsLimit      = 5

	leaderboardCacheTTL = time.Minute
)

type resultService struct {
	repo        repositories.Repository
	logger      *slog.Logger
	validator   *validator.Validator
	leaderboard cache.LeaderboardCache
	publisher   events.Publisher
}

func NewResultService(
	repo repositories.Repository,
	logger *slog.Logger,
	validator *validator.Validator,
	leaderboard cache.LeaderboardCache,
	publisher events.Publisher,
) ResultService {
	return &resultService{
		repo:        repo,
		logger:      logger,
		validator:   validator,
		leaderboard: leaderboard,
		publisher:   publisher,
	}
}

// Submit grades the submission against the quiz's current questions, writes
// the immutable QuizResult snapshot and bumps the user's aggregates. All
// three happen in one transaction: either the whole attempt persists or
// none of it does.
func (s *resultService) Submit(ctx context.Context, quizID, userID uint, req *SubmitQuizRequest) (*SubmitQuizResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var response *SubmitQuizResponse
	completedAt := time.Now().UTC()

	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		quiz, err := tx.Quiz().GetByIDWithQuestions(ctx, quizID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrQuizNotFound
			}
			return fmt.Errorf("failed to get quiz: %w", err)
		}

		score, totalPossible := ScoreQuiz(quiz.Questions, req.Answers)

		// The raw answer mapping is snapshotted verbatim for audit,
		// whether or not anything matched.
		snapshot, err := json.Marshal(req.Answers)
		if err != nil {
			return fmt.Errorf("failed to encode answer snapshot: %w", err)
		}

		result := &models.QuizResult{
			UserID:         userID,
			QuizID:         quizID,
			Score:          score,
			TotalQuestions: len(quiz.Questions),
			TimeTaken:      req.TimeTaken,
			CompletedAt:    completedAt,
			Answers:        datatypes.JSON(snapshot),
		}
		if err := tx.Result().Create(ctx, result); err != nil {
			return fmt.Errorf("failed to create result: %w", err)
		}

		// Relative increment in the same transaction as the insert, so
		// concurrent submissions by the same user cannot lose an update.
		if err := tx.User().IncrementStats(ctx, userID, score); err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to update user stats: %w", err)
		}

		response = &SubmitQuizResponse{
			Score:          score,
			TotalQuestions: len(quiz.Questions),
			Percentage:     Percentage(score, totalPossible),
			TimeTaken:      req.TimeTaken,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Quiz submitted",
		"quiz_id", quizID,
		"user_id", userID,
		"score", response.Score,
		"total_questions", response.TotalQuestions,
		"percentage", response.Percentage)

	// Post-commit bookkeeping; failures here never fail the submission.
	if err := s.leaderboard.Invalidate(ctx); err != nil {
		s.logger.Warn("Failed to invalidate leaderboard cache", "error", err)
	}
	if err := s.publisher.PublishResultRecorded(ctx, &events.ResultRecordedEvent{
		UserID:         userID,
		QuizID:         quizID,
		Score:          response.Score,
		TotalQuestions: response.TotalQuestions,
		Percentage:     response.Percentage,
		TimeTaken:      response.TimeTaken,
		CompletedAt:    completedAt,
	}); err != nil {
		s.logger.Warn("Failed to publish result event", "error", err)
	}

	return response, nil
}

func (s *resultService) Leaderboard(ctx context.Context, limit int) ([]repositories.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}

	// Only the default projection is cached; other limits go straight to
	// the store.
	cacheable := limit == DefaultLeaderboardLimit
	if cacheable {
		entries, err := s.leaderboard.Get(ctx)
		if err != nil {
			s.logger.Warn("Leaderboard cache read failed", "error", err)
		} else if entries != nil {
			return entries, nil
		}
	}

	entries, err := s.repo.User().TopByScore(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}

	if cacheable {
		if err := s.leaderboard.Set(ctx, entries, leaderboardCacheTTL); err != nil {
			s.logger.Warn("Leaderboard cache write failed", "error", err)
		}
	}
	return entries, nil
}

func (s *resultService) UserStats(ctx context.Context, userID uint) (*UserStatsResponse, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	recent, err := s.repo.Result().GetRecentByUser(ctx, userID, recentResultsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent results: %w", err)
	}

	stats := &UserStatsResponse{
		Username:      user.Username,
		TotalScore:    user.TotalScore,
		QuizzesTaken:  user.QuizzesTaken,
		RecentResults: make([]RecentResultView, 0, len(recent)),
	}

	for _, r := range recent {
		if r.QuizTitle == nil {
			// A result whose quiz has vanished is a data-integrity edge
			// case; surface it rather than invent a title.
			return nil, fmt.Errorf("quiz %d referenced by result history: %w", r.QuizID, ErrQuizNotFound)
		}
		stats.RecentResults = append(stats.RecentResults, RecentResultView{
			QuizTitle:      *r.QuizTitle,
			Score:          r.Score,
			TotalQuestions: r.TotalQuestions,
			Percentage:     Percentage(r.Score, r.TotalQuestions),
			CompletedAt:    r.CompletedAt,
		})
	}
	return stats, nil
}

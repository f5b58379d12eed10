package postgres

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/openquiz/quiz-service/internal/cache"
	"github.com/openquiz/quiz-service/internal/events"
	"github.com/openquiz/quiz-service/internal/models"
	"github.com/openquiz/quiz-service/internal/repositories"
	"github.com/openquiz/quiz-service/internal/services"
	"github.com/openquiz/quiz-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) string {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
}

func newTestStore(t *testing.T, ctx context.Context) (*gorm.DB, repositories.Repository) {
	t.Helper()
	requireDocker(t)

	dsn := startPostgres(t, ctx)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Quiz{},
		&models.Question{},
		&models.QuizResult{},
	))

	return db, NewRepository(db)
}

func seedQuiz(t *testing.T, ctx context.Context, repo repositories.Repository) *models.Quiz {
	t.Helper()
	quiz := &models.Quiz{
		Title:      "Python Basics",
		Category:   "Programming",
		Difficulty: models.DifficultyEasy,
		TimeLimit:  300,
		Questions: []models.Question{
			{Text: "What is the correct way to create a list in Python?", Type: models.MultipleChoice, CorrectAnswer: "[]", Points: 1, Position: 0},
			{Text: "Python is case-sensitive", Type: models.TrueFalse, CorrectAnswer: "True", Points: 1, Position: 1},
		},
	}
	require.NoError(t, repo.Quiz().Create(ctx, quiz))
	return quiz
}

func seedUser(t *testing.T, ctx context.Context, repo repositories.Repository, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "irrelevant",
	}
	require.NoError(t, repo.User().Create(ctx, user))
	return user
}

func TestQuizDeleteRemovesQuestionsButKeepsResults(t *testing.T) {
	ctx := context.Background()
	db, repo := newTestStore(t, ctx)

	user := seedUser(t, ctx, repo, "alice")
	quiz := seedQuiz(t, ctx, repo)

	require.NoError(t, repo.Result().Create(ctx, &models.QuizResult{
		UserID:         user.ID,
		QuizID:         quiz.ID,
		Score:          1,
		TotalQuestions: 2,
		TimeTaken:      120,
		CompletedAt:    time.Now().UTC(),
		Answers:        datatypes.JSON(`{"1":"[]","2":"false"}`),
	}))

	require.NoError(t, repo.Quiz().Delete(ctx, quiz.ID))

	// The cascade takes the questions with the quiz.
	var questionCount int64
	require.NoError(t, db.Model(&models.Question{}).Where("quiz_id = ?", quiz.ID).Count(&questionCount).Error)
	assert.Zero(t, questionCount)

	// The result ledger is untouched; only the title resolution degrades.
	var resultCount int64
	require.NoError(t, db.Model(&models.QuizResult{}).Where("quiz_id = ?", quiz.ID).Count(&resultCount).Error)
	assert.EqualValues(t, 1, resultCount)

	recent, err := repo.Result().GetRecentByUser(ctx, user.ID, 5)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Nil(t, recent[0].QuizTitle)
	assert.Equal(t, 1, recent[0].Score)
}

func TestConcurrentSubmissionsDoNotLoseUpdates(t *testing.T) {
	ctx := context.Background()
	_, repo := newTestStore(t, ctx)

	user := seedUser(t, ctx, repo, "alice")
	quiz := seedQuiz(t, ctx, repo)

	service := services.NewResultService(
		repo,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		validator.New(),
		cache.NewNoopLeaderboardCache(),
		events.NewNoopPublisher(),
	)

	const workers = 8
	const submissionsPerWorker = 5
	answers := map[string]string{
		services.AnswerKey(quiz.Questions[0].ID): "[]",
		services.AnswerKey(quiz.Questions[1].ID): "true",
	}

	var wg sync.WaitGroup
	errs := make(chan error, workers*submissionsPerWorker)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < submissionsPerWorker; i++ {
				_, err := service.Submit(ctx, quiz.ID, user.ID, &services.SubmitQuizRequest{
					Answers:   answers,
					TimeTaken: 30,
				})
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	// Every submission scores 2 points; the aggregates must equal the
	// exact sum and count with nothing lost to interleaving.
	updated, err := repo.User().GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, workers*submissionsPerWorker*2, updated.TotalScore)
	assert.Equal(t, workers*submissionsPerWorker, updated.QuizzesTaken)

	recent, err := repo.Result().GetRecentByUser(ctx, user.ID, 5)
	require.NoError(t, err)
	assert.Len(t, recent, 5)
}

func TestTopByScoreOrdersAndLimits(t *testing.T) {
	ctx := context.Background()
	_, repo := newTestStore(t, ctx)

	// 12 users so the top-10 cut is visible; two of them tie on 50.
	for i := 0; i < 12; i++ {
		user := seedUser(t, ctx, repo, fmt.Sprintf("user%02d", i))
		score := (i + 1) * 5
		if i == 11 {
			score = 50 // ties with user09
		}
		for s := 0; s < score; s += 5 {
			require.NoError(t, repo.User().IncrementStats(ctx, user.ID, 5))
		}
	}

	entries, err := repo.User().TopByScore(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 10)

	for i := 1; i < len(entries); i++ {
		assert.GreaterOrEqual(t, entries[i-1].TotalScore, entries[i].TotalScore)
	}

	assert.Equal(t, 55, entries[0].TotalScore)
	assert.Equal(t, "user10", entries[0].Username)

	// Ties resolve to the earlier registration.
	assert.Equal(t, "user09", entries[1].Username)
	assert.Equal(t, "user11", entries[2].Username)
}

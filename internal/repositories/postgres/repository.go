package postgres

import (
	"context"

	"github.com/openquiz/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

type gormRepository struct {
	db *gorm.DB

	user   repositories.UserRepository
	quiz   repositories.QuizRepository
	result repositories.ResultRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &gormRepository{
		db:     db,
		user:   NewUserPostgreSQL(db),
		quiz:   NewQuizPostgreSQL(db),
		result: NewResultPostgreSQL(db),
	}
}

func (r *gormRepository) User() repositories.UserRepository     { return r.user }
func (r *gormRepository) Quiz() repositories.QuizRepository     { return r.quiz }
func (r *gormRepository) Result() repositories.ResultRepository { return r.result }

// WithTransaction binds a fresh repository to one database transaction and
// runs fn against it. A non-nil error from fn rolls everything back.
func (r *gormRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

func (r *gormRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *gormRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

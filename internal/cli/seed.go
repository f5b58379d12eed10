package cli

import (
	"context"
	"fmt"

	"github.com/openquiz/quiz-service/internal/config"
	"github.com/openquiz/quiz-service/internal/repositories"
	"github.com/openquiz/quiz-service/internal/repositories/postgres"
	"github.com/openquiz/quiz-service/internal/services"
	"github.com/openquiz/quiz-service/internal/utils"
	"github.com/openquiz/quiz-service/internal/validator"
	"github.com/openquiz/quiz-service/pkg"
	"github.com/spf13/cobra"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the sample quiz catalog into an empty database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context())
		},
	}
}

func runSeed(ctx context.Context) error {
	repo, quizService, err := newCatalogTools()
	if err != nil {
		return err
	}
	defer repo.Close()

	existing, err := repo.Quiz().List(ctx, repositories.QuizFilters{})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		fmt.Printf("catalog already has %d quizzes, nothing to do\n", len(existing))
		return nil
	}

	for _, req := range sampleCatalog() {
		if _, err := quizService.Create(ctx, req); err != nil {
			return fmt.Errorf("failed to seed %q: %w", req.Title, err)
		}
		fmt.Printf("seeded %q\n", req.Title)
	}
	return nil
}

// newCatalogTools wires the minimal stack shared by the catalog commands.
func newCatalogTools() (repositories.Repository, services.QuizService, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return nil, nil, err
	}

	repo := postgres.NewRepository(db)
	logger := utils.ToSlogLogger(utils.NewDevelopmentLogger())
	return repo, services.NewQuizService(repo, logger, validator.New()), nil
}

func sampleCatalog() []*services.CreateQuizRequest {
	pythonDescription := "Test your knowledge of Python fundamentals"
	dataScienceDescription := "Basic concepts in data science and analytics"

	return []*services.CreateQuizRequest{
		{
			Title:       "Python Basics",
			Description: &pythonDescription,
			Category:    "Programming",
			Difficulty:  "Easy",
			TimeLimit:   300,
			Questions: []services.CreateQuestionRequest{
				{
					Text:          "What is the correct way to create a list in Python?",
					Type:          "multiple_choice",
					Options:       []string{"[]", "{}", "()", "all of the above"},
					CorrectAnswer: "[]",
					Points:        1,
				},
				{
					Text:          "Python is case-sensitive",
					Type:          "true_false",
					Options:       []string{"True", "False"},
					CorrectAnswer: "True",
					Points:        1,
					Order:         1,
				},
			},
		},
		{
			Title:       "Data Science Fundamentals",
			Description: &dataScienceDescription,
			Category:    "Data Science",
			Difficulty:  "Medium",
			TimeLimit:   600,
			Questions: []services.CreateQuestionRequest{
				{
					Text:          "What does SQL stand for?",
					Type:          "text",
					CorrectAnswer: "Structured Query Language",
					Points:        2,
				},
				{
					Text:          "Which library is commonly used for data manipulation in Python?",
					Type:          "multiple_choice",
					Options:       []string{"NumPy", "Pandas", "Matplotlib", "All of the above"},
					CorrectAnswer: "Pandas",
					Points:        2,
					Order:         1,
				},
			},
		},
	}
}

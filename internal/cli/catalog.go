package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/openquiz/quiz-service/internal/services"
	"github.com/openquiz/quiz-service/internal/utils"
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the quiz catalog to an xlsx workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "quizzes.xlsx", "destination file")
	return cmd
}

func newImportCmd() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import quizzes from an xlsx workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), input)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "quizzes.xlsx", "source file")
	return cmd
}

func runExport(ctx context.Context, output string) error {
	repo, quizService, err := newCatalogTools()
	if err != nil {
		return err
	}
	defer repo.Close()

	logger := utils.ToSlogLogger(utils.NewDevelopmentLogger())
	catalog := services.NewCatalogExchangeService(repo, quizService, logger)

	data, err := catalog.ExportQuizzes(ctx)
	if err != nil {
		return err
	}

	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	fmt.Printf("exported catalog to %s\n", output)
	return nil
}

func runImport(ctx context.Context, input string) error {
	repo, quizService, err := newCatalogTools()
	if err != nil {
		return err
	}
	defer repo.Close()

	file, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", input, err)
	}
	defer file.Close()

	logger := utils.ToSlogLogger(utils.NewDevelopmentLogger())
	catalog := services.NewCatalogExchangeService(repo, quizService, logger)

	result, err := catalog.ImportQuizzes(ctx, file)
	if err != nil {
		return err
	}

	fmt.Printf("rows: %d, quizzes created: %d, errors: %d\n",
		result.TotalRows, result.QuizzesCreated, result.ErrorCount)
	for _, importErr := range result.Errors {
		fmt.Printf("  %s: %s\n", importErr.Field, importErr.Message)
	}
	return nil
}

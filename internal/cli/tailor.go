package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"resumeforge/internal/ai"
	"resumeforge/internal/common"
	"resumeforge/internal/resume"
	"resumeforge/internal/types"

	"github.com/spf13/cobra"
)

var tailorCmd = &cobra.Command{
	Use:   "tailor [resume-file] [job-description-file]",
	Short: "Tailor resume sections for a specific job description",
	Long: `Tailor a resume for a specific job description using AI.
The command takes two arguments: the path to a resume sections file (JSON,
as produced by 'import' or the generate API) and the path to the job
description file (plain text). The AI's proposal is validated and merged
against the original sections, so protected sections are never modified
and malformed output is discarded.`,
	Args: cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if tailorConfig.OutputFormat == "" {
			tailorConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(tailorConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runTailor,
}

var tailorConfig common.CommandConfig

func init() {
	tailorCmd.Flags().StringVarP(&tailorConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	tailorCmd.Flags().StringVar(&tailorConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	// Add completion for format flag
	_ = tailorCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

// tailorFileInput pairs the parsed resume sections with the job description
type tailorFileInput struct {
	Sections       []types.ResumeSection
	JobDescription string
}

func runTailor(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	// Create AI service for tailor operation
	tailorAIConfig := cfg.GetTailorConfig()
	aiService, err := ai.NewService(&tailorAIConfig, "tailor", logger)
	if err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}

	createInput := func(contents []string) (tailorFileInput, error) {
		if len(contents) != 2 {
			return tailorFileInput{}, fmt.Errorf("expected 2 file paths, got %d", len(contents))
		}
		var sections []types.ResumeSection
		if err := json.Unmarshal([]byte(contents[0]), &sections); err != nil {
			return tailorFileInput{}, fmt.Errorf("resume file is not a valid sections document: %w", err)
		}
		if len(sections) == 0 {
			return tailorFileInput{}, fmt.Errorf("resume file contains no sections")
		}
		return tailorFileInput{
			Sections:       sections,
			JobDescription: contents[1],
		}, nil
	}

	logDetails := func(input tailorFileInput, cfg common.CommandConfig) {
		logger.Info("Starting resume tailoring",
			"section_count", len(input.Sections),
			"job_chars", len(input.JobDescription),
			"output_format", cfg.OutputFormat)
	}

	// Run the full pipeline: serialize, propose, validate, merge
	tailorOperation := func(ctx context.Context, input tailorFileInput) (types.TailorResult, *ai.TokenUsage, error) {
		aiInput := types.TailorInput{
			ResumeText:     resume.Serialize(input.Sections),
			JobDescription: input.JobDescription,
		}
		output, tokenUsage, err := aiService.Provider.TailorSections(ctx, aiInput)
		if err != nil {
			return types.TailorResult{}, tokenUsage, err
		}

		proposed := resume.ValidateProposed(output.Sections, logger)
		merged, changes := resume.Merge(input.Sections, proposed, output.Changes, logger)
		return types.TailorResult{Sections: merged, Changes: changes}, tokenUsage, nil
	}

	err = common.RunAICommand(
		cmd.Context(),
		logger,
		tailorConfig,
		args,
		createInput,
		tailorOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to tailor resume: %w", err)
	}
	logger.Info("Resume tailoring completed successfully")
	return nil
}

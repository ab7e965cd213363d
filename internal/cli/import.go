package cli

import (
	"fmt"
	"os"

	"resumeforge/internal/ai"
	"resumeforge/internal/common"
	"resumeforge/internal/importer"
	"resumeforge/internal/types"
	"resumeforge/internal/utils"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import [pdf-file]",
	Short: "Import a PDF resume into structured sections",
	Long: `Import an existing PDF resume and convert it into structured,
editable sections. Text is extracted from the PDF locally, then AI
structures it into typed sections. Sections that come back malformed are
dropped rather than failing the import.

The JSON output can be fed back into 'tailor' and 'analyze'.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if importConfig.OutputFormat == "" {
			importConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(importConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runImport,
}

var importConfig common.CommandConfig

func init() {
	importCmd.Flags().StringVarP(&importConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	importCmd.Flags().StringVar(&importConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	// Add completion for format flag
	_ = importCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	// Create AI service for the structure operation
	structureAIConfig := cfg.GetStructureConfig()
	aiService, err := ai.NewService(&structureAIConfig, "structure", logger)
	if err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}

	// The PDF is binary, so it bypasses the text-file pipeline the other
	// commands share and is streamed to the importer directly.
	file, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open PDF file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Warn("Failed to close PDF file", "filename", args[0], "error", err)
		}
	}()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat PDF file: %w", err)
	}

	logger.Info("Starting PDF import",
		"filename", args[0],
		"size", utils.FormatFileSize(info.Size()),
		"output_format", importConfig.OutputFormat)

	imp := importer.NewImporter(aiService.Provider, cfg.App.MaxUploadSize, logger)
	sections, tokenUsage, err := imp.Import(cmd.Context(), file, info.Size())
	if err != nil {
		return fmt.Errorf("failed to import resume: %w", err)
	}

	if tokenUsage != nil {
		logger.Info("AI token usage",
			"input_tokens", tokenUsage.InputTokens,
			"output_tokens", tokenUsage.OutputTokens,
			"total_tokens", tokenUsage.TotalTokens)
	}

	outputHandler := common.NewOutputHandler(logger)
	if err := outputHandler.HandleOutput(types.ImportResult{Sections: sections}, importConfig); err != nil {
		return err
	}

	logger.Info("PDF import completed successfully", "section_count", len(sections))
	return nil
}

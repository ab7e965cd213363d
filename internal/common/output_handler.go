package common

import (
	"fmt"

	"resumeforge/internal/errors"
	"resumeforge/internal/formatters"
)

// CommandConfig holds the output settings shared by every CLI command.
type CommandConfig struct {
	OutputFile   string
	OutputFormat string
}

// OutputHandler formats command results and routes them to a file or stdout.
type OutputHandler struct {
	registry *formatters.FormatterRegistry
	logger   *errors.Logger
}

// NewOutputHandler creates an output handler backed by the global formatter
// registry.
func NewOutputHandler(logger *errors.Logger) *OutputHandler {
	return &OutputHandler{
		registry: formatters.GlobalRegistry,
		logger:   logger,
	}
}

// HandleOutput renders data in the configured format and writes it to the
// configured destination. No output file means stdout.
func (oh *OutputHandler) HandleOutput(data any, config CommandConfig) error {
	rendered, err := oh.registry.Format(data, config.OutputFormat)
	if err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("Failed to format output as %s", config.OutputFormat), err)
	}

	if config.OutputFile == "" {
		fmt.Print(rendered)
		return nil
	}

	if err := WriteOutputFile(config.OutputFile, rendered); err != nil {
		return err
	}

	oh.logger.Info("Output written successfully",
		"file", config.OutputFile, "format", config.OutputFormat)
	return nil
}

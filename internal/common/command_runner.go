package common

import (
	"context"
	"fmt"
	"os"

	"resumeforge/internal/ai"
	"resumeforge/internal/errors"
)

// CreateInputFunc builds the operation input from the raw file contents,
// which arrive in the same order as the command arguments.
type CreateInputFunc[Input any] func(contents []string) (Input, error)

// LogDetailsFunc announces the operation before the AI call starts.
type LogDetailsFunc[Input any] func(input Input, cfg CommandConfig)

// AIOperationFunc runs the AI operation and reports its token usage.
type AIOperationFunc[Input, Output any] func(context.Context, Input) (Output, *ai.TokenUsage, error)

// RunAICommand is the shared pipeline for file-driven CLI commands: read the
// argument files, build the input, run the operation, report token usage, and
// hand the result to the output formatter.
func RunAICommand[Input, Output any](
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	args []string,
	createInput CreateInputFunc[Input],
	aiOperation AIOperationFunc[Input, Output],
	logDetails LogDetailsFunc[Input],
) error {
	contents, err := ReadInputFiles(logger, args...)
	if err != nil {
		return err
	}

	input, err := createInput(contents)
	if err != nil {
		return fmt.Errorf("failed to create input from file contents: %w", err)
	}

	logDetails(input, cmdConfig)

	result, tokenUsage, err := aiOperation(ctx, input)
	if err != nil {
		return err
	}

	if tokenUsage != nil {
		if logger != nil {
			logger.Info("AI token usage",
				"input_tokens", tokenUsage.InputTokens,
				"output_tokens", tokenUsage.OutputTokens,
				"total_tokens", tokenUsage.TotalTokens)
		} else {
			fmt.Fprintf(os.Stderr, "AI token usage: input=%d, output=%d, total=%d\n",
				tokenUsage.InputTokens, tokenUsage.OutputTokens, tokenUsage.TotalTokens)
		}
	}

	return NewOutputHandler(logger).HandleOutput(result, cmdConfig)
}

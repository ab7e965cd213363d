package ai

import (
	"context"

	"resumeforge/internal/types"
)

// Provider is the interface AI backends implement.
// All generation methods return token usage information - callers can ignore it if not needed.
type Provider interface {
	TailorSections(ctx context.Context, input types.TailorInput) (types.TailorOutput, *TokenUsage, error)
	AnalyzeATS(ctx context.Context, input types.AnalyzeInput) (types.AnalyzeOutput, *TokenUsage, error)
	StructureResume(ctx context.Context, input types.ImportInput) (types.ImportOutput, *TokenUsage, error)
	EmbedText(ctx context.Context, text string) ([]float32, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	Close() error
}

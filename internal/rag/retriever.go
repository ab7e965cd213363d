// Package rag augments ATS analysis with reference snippets retrieved by
// vector similarity against the job description.
package rag

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"resumeforge/internal/errors"
	"resumeforge/internal/store"
)

// Embedder produces an embedding vector for a piece of text.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// SnippetSearcher finds the snippets nearest to a query embedding.
type SnippetSearcher interface {
	Search(ctx context.Context, embedding []float32, k int) ([]store.ReferenceSnippet, error)
}

// Retriever fetches reference context for a job description. A nil Retriever
// is valid and always returns empty context, which lets callers skip the
// feature-availability check at every call site.
type Retriever struct {
	embedder Embedder
	searcher SnippetSearcher
	topK     int
	logger   *errors.Logger
}

// NewRetriever constructs a Retriever. topK <= 0 defaults to 3.
func NewRetriever(embedder Embedder, searcher SnippetSearcher, topK int, logger *errors.Logger) *Retriever {
	if topK <= 0 {
		topK = 3
	}
	return &Retriever{
		embedder: embedder,
		searcher: searcher,
		topK:     topK,
		logger:   logger,
	}
}

// Retrieve returns a formatted context block for the job description, or an
// empty string when retrieval is unavailable or fails. Retrieval failure is
// logged and degrades to un-augmented analysis rather than failing the
// request.
func (r *Retriever) Retrieve(ctx context.Context, jobDescription string) string {
	if r == nil || strings.TrimSpace(jobDescription) == "" {
		return ""
	}

	tracer := otel.Tracer("resumeforge.rag")
	ctx, span := tracer.Start(ctx, "rag.retrieve")
	defer span.End()
	span.SetAttributes(attribute.Int("rag.top_k", r.topK))

	embedding, err := r.embedder.EmbedText(ctx, jobDescription)
	if err != nil {
		span.RecordError(err)
		if r.logger != nil {
			r.logger.Warn("Retrieval embedding failed, continuing without context", "error", err)
		}
		return ""
	}

	snippets, err := r.searcher.Search(ctx, embedding, r.topK)
	if err != nil {
		span.RecordError(err)
		if r.logger != nil {
			r.logger.Warn("Reference snippet search failed, continuing without context", "error", err)
		}
		return ""
	}

	span.SetAttributes(attribute.Int("rag.snippets_found", len(snippets)))
	if len(snippets) == 0 {
		return ""
	}

	return formatSnippets(snippets)
}

// formatSnippets renders snippets as a block suitable for prompt injection.
func formatSnippets(snippets []store.ReferenceSnippet) string {
	var b strings.Builder
	for i, s := range snippets {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "[%s] %s", s.Role, strings.TrimSpace(s.Content))
	}
	return b.String()
}

// Package importer turns uploaded PDF resumes into canonical resume
// sections: text extraction, AI structuring, then the same normalization
// pass the reconciliation layer applies.
package importer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dslipak/pdf"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"resumeforge/internal/ai"
	forgeErrors "resumeforge/internal/errors"
	"resumeforge/internal/resume"
	"resumeforge/internal/types"
)

// Structurer is the single AI operation the importer needs.
type Structurer interface {
	StructureResume(ctx context.Context, input types.ImportInput) (types.ImportOutput, *ai.TokenUsage, error)
}

// Importer extracts text from PDF uploads and structures it into sections.
type Importer struct {
	structurer Structurer
	maxSize    int64
	logger     *forgeErrors.Logger
}

// NewImporter constructs an Importer. maxSize caps the accepted upload size
// in bytes; zero means no cap here (the HTTP layer enforces its own).
func NewImporter(structurer Structurer, maxSize int64, logger *forgeErrors.Logger) *Importer {
	return &Importer{
		structurer: structurer,
		maxSize:    maxSize,
		logger:     logger,
	}
}

// ExtractText pulls plain text from a PDF. Returns an extraction error when
// the file is not a readable PDF or yields no text.
func (imp *Importer) ExtractText(r io.ReaderAt, size int64) (string, error) {
	if imp.maxSize > 0 && size > imp.maxSize {
		return "", forgeErrors.NewValidationError(forgeErrors.ErrCodeInvalidRequest,
			fmt.Sprintf("upload of %d bytes exceeds the %d byte limit", size, imp.maxSize), nil)
	}

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", forgeErrors.NewIOError(forgeErrors.ErrCodeExtractionFailed,
			"file is not a readable PDF", err)
	}

	var buf bytes.Buffer
	content, err := reader.GetPlainText()
	if err != nil {
		return "", forgeErrors.NewIOError(forgeErrors.ErrCodeExtractionFailed,
			"failed to extract text from PDF", err)
	}
	if _, err := buf.ReadFrom(content); err != nil {
		return "", forgeErrors.NewIOError(forgeErrors.ErrCodeExtractionFailed,
			"failed to read extracted text", err)
	}

	text := strings.TrimSpace(buf.String())
	if text == "" {
		return "", forgeErrors.NewIOError(forgeErrors.ErrCodeExtractionFailed,
			"PDF contained no extractable text", nil)
	}
	return text, nil
}

// Import extracts text from the upload, structures it with the AI provider
// and canonicalizes the resulting sections.
func (imp *Importer) Import(ctx context.Context, r io.ReaderAt, size int64) ([]types.ResumeSection, *ai.TokenUsage, error) {
	tracer := otel.Tracer("resumeforge.importer")
	ctx, span := tracer.Start(ctx, "importer.import")
	defer span.End()
	span.SetAttributes(attribute.Int64("import.upload_bytes", size))

	text, err := imp.ExtractText(r, size)
	if err != nil {
		span.RecordError(err)
		return nil, nil, err
	}
	span.SetAttributes(attribute.Int("import.extracted_chars", len(text)))

	return imp.ImportText(ctx, text)
}

// ImportText structures already-extracted resume text and canonicalizes the
// resulting sections.
func (imp *Importer) ImportText(ctx context.Context, text string) ([]types.ResumeSection, *ai.TokenUsage, error) {
	tracer := otel.Tracer("resumeforge.importer")
	ctx, span := tracer.Start(ctx, "importer.structure")
	defer span.End()

	output, usage, err := imp.structurer.StructureResume(ctx, types.ImportInput{ResumeText: text})
	if err != nil {
		span.RecordError(err)
		return nil, usage, err
	}

	structured := len(output.Sections)
	sections := resume.Canonicalize(output.Sections)
	span.SetAttributes(attribute.Int("import.sections", len(sections)))

	if dropped := structured - len(sections); dropped > 0 && imp.logger != nil {
		imp.logger.Warn("Dropped malformed sections from structured resume",
			"structured", structured,
			"kept", len(sections),
			"dropped", dropped)
	}

	if len(sections) == 0 {
		return nil, usage, forgeErrors.NewAIError(forgeErrors.ErrCodeAIResponseParse,
			"AI structuring produced no usable sections", nil)
	}

	return sections, usage, nil
}

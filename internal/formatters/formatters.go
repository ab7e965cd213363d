package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"resumeforge/internal/resume"
	"resumeforge/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	// Register default formatters
	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "TailorResult", &TailorTextFormatter{})
	registry.RegisterFormatter("markdown", "TailorResult", &TailorMarkdownFormatter{})
	registry.RegisterFormatter("text", "AnalyzeOutput", &AnalyzeTextFormatter{})
	registry.RegisterFormatter("markdown", "AnalyzeOutput", &AnalyzeMarkdownFormatter{})
	registry.RegisterFormatter("text", "ImportResult", &ImportTextFormatter{})
	registry.RegisterFormatter("markdown", "ImportResult", &ImportMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.TailorResult:
		return "TailorResult"
	case types.AnalyzeOutput:
		return "AnalyzeOutput"
	case types.ImportResult:
		return "ImportResult"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// TailorTextFormatter handles text formatting for tailor results
type TailorTextFormatter struct{}

func (ttf *TailorTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.TailorResult)
	if !ok {
		return "", fmt.Errorf("expected TailorResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== TAILORED RESUME ===\n\n")
	output.WriteString(resume.Serialize(result.Sections))

	output.WriteString("=== CHANGES ===\n")
	if len(result.Changes) == 0 {
		output.WriteString("No changes applied.\n")
		return output.String(), nil
	}
	for i, change := range result.Changes {
		output.WriteString(fmt.Sprintf("%d. [%s] %s\n", i+1, change.ChangeType, change.SectionTitle))
		output.WriteString("   ")
		output.WriteString(change.Description)
		output.WriteString("\n")
	}

	return output.String(), nil
}

func (ttf *TailorTextFormatter) SupportedType() string {
	return "TailorResult"
}

// TailorMarkdownFormatter handles markdown formatting for tailor results
type TailorMarkdownFormatter struct{}

func (tmf *TailorMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.TailorResult)
	if !ok {
		return "", fmt.Errorf("expected TailorResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Tailored Resume\n\n")
	output.WriteString(resume.Serialize(result.Sections))

	output.WriteString("# Changes\n\n")
	if len(result.Changes) == 0 {
		output.WriteString("No changes applied.\n")
		return output.String(), nil
	}
	for _, change := range result.Changes {
		output.WriteString(fmt.Sprintf("- **%s** (%s): %s\n",
			change.SectionTitle, change.ChangeType, change.Description))
	}

	return output.String(), nil
}

func (tmf *TailorMarkdownFormatter) SupportedType() string {
	return "TailorResult"
}

// AnalyzeTextFormatter handles text formatting for ATS analysis results
type AnalyzeTextFormatter struct{}

func (atf *AnalyzeTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.AnalyzeOutput)
	if !ok {
		return "", fmt.Errorf("expected AnalyzeOutput, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== ATS ANALYSIS ===\n\n")
	output.WriteString(fmt.Sprintf("Overall Score: %d/100\n\n", result.OverallScore))

	for _, category := range result.Categories {
		output.WriteString(fmt.Sprintf("%s: %d/100\n", category.Name, category.Score))
		if category.Feedback != "" {
			output.WriteString("  ")
			output.WriteString(category.Feedback)
			output.WriteString("\n")
		}
	}
	output.WriteString("\n")

	if len(result.KeywordAnalysis.MatchedKeywords) > 0 {
		output.WriteString("Matched Keywords:\n")
		for _, keyword := range result.KeywordAnalysis.MatchedKeywords {
			output.WriteString(fmt.Sprintf("- %s\n", keyword))
		}
		output.WriteString("\n")
	}
	if len(result.KeywordAnalysis.MissingKeywords) > 0 {
		output.WriteString("Missing Keywords:\n")
		for _, keyword := range result.KeywordAnalysis.MissingKeywords {
			output.WriteString(fmt.Sprintf("- %s\n", keyword))
		}
		output.WriteString("\n")
	}

	if len(result.Suggestions) > 0 {
		output.WriteString("=== SUGGESTIONS ===\n")
		for i, suggestion := range result.Suggestions {
			output.WriteString(fmt.Sprintf("%d. %s\n", i+1, suggestion))
		}
	}

	return output.String(), nil
}

func (atf *AnalyzeTextFormatter) SupportedType() string {
	return "AnalyzeOutput"
}

// AnalyzeMarkdownFormatter handles markdown formatting for ATS analysis results
type AnalyzeMarkdownFormatter struct{}

func (amf *AnalyzeMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.AnalyzeOutput)
	if !ok {
		return "", fmt.Errorf("expected AnalyzeOutput, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# ATS Analysis\n\n")
	output.WriteString(fmt.Sprintf("**Overall Score:** %d/100\n\n", result.OverallScore))

	if len(result.Categories) > 0 {
		output.WriteString("## Categories\n\n")
		for _, category := range result.Categories {
			output.WriteString(fmt.Sprintf("### %s: %d/100\n\n", category.Name, category.Score))
			if category.Feedback != "" {
				output.WriteString(category.Feedback)
				output.WriteString("\n\n")
			}
		}
	}

	output.WriteString("## Keywords\n\n")
	if len(result.KeywordAnalysis.MatchedKeywords) > 0 {
		output.WriteString("### Matched\n")
		for _, keyword := range result.KeywordAnalysis.MatchedKeywords {
			output.WriteString(fmt.Sprintf("- %s\n", keyword))
		}
		output.WriteString("\n")
	}
	if len(result.KeywordAnalysis.MissingKeywords) > 0 {
		output.WriteString("### Missing\n")
		for _, keyword := range result.KeywordAnalysis.MissingKeywords {
			output.WriteString(fmt.Sprintf("- %s\n", keyword))
		}
		output.WriteString("\n")
	}

	if len(result.Suggestions) > 0 {
		output.WriteString("## Suggestions\n\n")
		for i, suggestion := range result.Suggestions {
			output.WriteString(fmt.Sprintf("%d. %s\n", i+1, suggestion))
		}
	}

	return output.String(), nil
}

func (amf *AnalyzeMarkdownFormatter) SupportedType() string {
	return "AnalyzeOutput"
}

// ImportTextFormatter handles text formatting for import results
type ImportTextFormatter struct{}

func (itf *ImportTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.ImportResult)
	if !ok {
		return "", fmt.Errorf("expected ImportResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString(fmt.Sprintf("=== IMPORTED RESUME (%d sections) ===\n\n", len(result.Sections)))
	output.WriteString(resume.Serialize(result.Sections))

	return output.String(), nil
}

func (itf *ImportTextFormatter) SupportedType() string {
	return "ImportResult"
}

// ImportMarkdownFormatter handles markdown formatting for import results
type ImportMarkdownFormatter struct{}

func (imf *ImportMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.ImportResult)
	if !ok {
		return "", fmt.Errorf("expected ImportResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Imported Resume\n\n")
	output.WriteString(resume.Serialize(result.Sections))

	return output.String(), nil
}

func (imf *ImportMarkdownFormatter) SupportedType() string {
	return "ImportResult"
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()

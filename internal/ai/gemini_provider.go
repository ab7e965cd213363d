package ai

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"net"
	"net/http"
	"time"

	"resumeforge/internal/config"
	forgeErrors "resumeforge/internal/errors"
	"resumeforge/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

// GeminiProvider implements Provider for Google Gemini
type GeminiProvider struct {
	client         *genai.Client
	httpClient     *http.Client
	config         *config.OperationAIConfig
	circuitBreaker *GenerateBreaker
	modelBreaker   *ModelBreaker
	logger         *forgeErrors.Logger
}

// Ensure GeminiProvider implements Provider
var _ Provider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a new Gemini provider instance for a specific operation
func NewGeminiProvider(cfg *config.OperationAIConfig, operationType string, logger *forgeErrors.Logger) (*GeminiProvider, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, forgeErrors.NewAIError(forgeErrors.ErrCodeAIServiceFailed,
			"Failed to create Gemini client", err)
	}

	return &GeminiProvider{
		client: client,
		httpClient: &http.Client{
			Timeout: *cfg.Timeout,
		},
		config:         cfg,
		circuitBreaker: NewGenerateBreaker(operationType, cfg, logger),
		modelBreaker:   NewModelBreaker(operationType, cfg, logger),
		logger:         logger,
	}, nil
}

// ModelInfo represents information about the AI model
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}

// GetModelInfo checks the readiness and availability of the configured model
func (g *GeminiProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	modelInfo := &ModelInfo{
		Name:      g.config.Model,
		Available: false,
	}

	checkCtx, cancel := context.WithTimeout(ctx, modelCheckTimeout)
	defer cancel()

	model, err := g.modelBreaker.ExecuteModel(func() (*genai.Model, error) {
		return g.client.Models.Get(checkCtx, g.config.Model, &genai.GetModelConfig{})
	})
	if err != nil {
		modelInfo.Error = fmt.Sprintf("Failed to get model info: %v", err)

		g.logger.Warn("Model availability check failed",
			"model", g.config.Model,
			"provider", g.config.Provider,
			"error", err.Error())
		return modelInfo
	}

	modelInfo.Available = true
	if model.DisplayName != "" {
		modelInfo.DisplayName = model.DisplayName
	}
	if model.Version != "" {
		modelInfo.Version = model.Version
	}

	g.logger.Debug("Model availability check successful",
		"model", g.config.Model,
		"provider", g.config.Provider,
		"display_name", modelInfo.DisplayName,
		"version", modelInfo.Version)

	return modelInfo
}

// modelCheckTimeout bounds the availability probe so health checks stay fast
const modelCheckTimeout = 10 * time.Second

// executeWithRetry executes an AI operation with retry logic and exponential backoff
func (g *GeminiProvider) executeWithRetry(ctx context.Context, operation string, fn func() (*genai.GenerateContentResponse, error)) (*genai.GenerateContentResponse, error) {
	var lastErr error

	for attempt := 0; attempt <= *g.config.MaxRetries; attempt++ {
		if attempt > 0 {
			g.logger.Warn("Retrying AI operation",
				"operation", operation,
				"attempt", attempt,
				"max_retries", *g.config.MaxRetries,
				"error", lastErr.Error())

			// Exponential backoff with jitter to prevent thundering herd
			baseDelay := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			jitterMax := big.NewInt(int64(float64(baseDelay) * 0.1))
			jitterBig, _ := rand.Int(rand.Reader, jitterMax)
			jitter := time.Duration(jitterBig.Int64())
			backoff := min(baseDelay+jitter, 30*time.Second)

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, err := fn()
		if err == nil {
			if attempt > 0 {
				g.logger.Info("AI operation succeeded after retry",
					"operation", operation,
					"successful_attempt", attempt+1,
					"total_attempts", attempt+1)
			}
			return result, nil
		}

		lastErr = err

		// Don't retry on certain errors (auth, invalid input, etc.)
		if !g.isRetryableError(err) {
			g.logger.Debug("Error is not retryable, stopping retry attempts",
				"operation", operation,
				"error", err.Error())
			break
		}
	}

	g.logger.LogError(lastErr, "AI operation failed after all retry attempts",
		"operation", operation,
		"total_attempts", *g.config.MaxRetries+1)

	return nil, fmt.Errorf("operation '%s' failed after %d retries: %w", operation, *g.config.MaxRetries, lastErr)
}

// isRetryableError determines if an error should trigger a retry
func (g *GeminiProvider) isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// Network errors (timeouts, connection refused) are worth retrying
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	// Google API errors carry HTTP status codes
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}

	return false
}

// executeAIOperation is a generic helper to run AI operations with common tracing, circuit breaker, and parsing logic.
func executeAIOperation[Out any](
	g *GeminiProvider,
	ctx context.Context,
	operationName string,
	userPrompt string,
	systemPrompt string,
	genaiConfig *genai.GenerateContentConfig,
	spanAttributes ...attribute.KeyValue,
) (Out, *TokenUsage, error) {
	var output Out
	tracer := otel.Tracer("resumeforge.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini."+operationName)
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", g.config.Model),
		attribute.Float64("ai.temperature", float64(*g.config.Temperature)),
	)
	span.SetAttributes(spanAttributes...)

	if *g.config.UseSystemPrompts && systemPrompt != "" {
		genaiConfig.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	result, err := g.circuitBreaker.Execute(func() (*genai.GenerateContentResponse, error) {
		return g.executeWithRetry(ctx, operationName, func() (*genai.GenerateContentResponse, error) {
			return g.client.Models.GenerateContent(ctx, g.config.Model, genai.Text(userPrompt), genaiConfig)
		})
	})

	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return output, nil, forgeErrors.NewAIError(forgeErrors.ErrCodeAIServiceFailed, "Failed to generate content for "+operationName, err)
	}

	if err := json.Unmarshal([]byte(result.Text()), &output); err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return output, nil, forgeErrors.NewAIError(forgeErrors.ErrCodeAIResponseParse, "Failed to parse AI response for "+operationName, err)
	}

	tokenUsage := extractTokenUsage(result)
	if tokenUsage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", tokenUsage.InputTokens),
			attribute.Int64("ai.tokens.output", tokenUsage.OutputTokens),
			attribute.Int64("ai.tokens.total", tokenUsage.TotalTokens),
		)
	}

	span.SetAttributes(attribute.Bool("success", true))
	return output, tokenUsage, nil
}

// TailorSections implements Provider for section-level resume tailoring
func (g *GeminiProvider) TailorSections(ctx context.Context, input types.TailorInput) (types.TailorOutput, *TokenUsage, error) {
	systemPrompt, userPrompt := g.getPromptsForTailor(input.ResumeText, input.JobDescription)
	config := g.buildTailorConfig()

	output, tokenUsage, err := executeAIOperation[types.TailorOutput](
		g,
		ctx,
		"tailor_sections",
		userPrompt,
		systemPrompt,
		config,
		attribute.Int("input.resume_length", len(input.ResumeText)),
		attribute.Int("input.job_length", len(input.JobDescription)),
	)

	if err != nil {
		return types.TailorOutput{}, nil, err
	}

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.Int("output.sections", len(output.Sections)),
			attribute.Int("output.changes", len(output.Changes)),
		)
	}

	return output, tokenUsage, nil
}

// AnalyzeATS implements Provider for ATS compatibility scoring
func (g *GeminiProvider) AnalyzeATS(ctx context.Context, input types.AnalyzeInput) (types.AnalyzeOutput, *TokenUsage, error) {
	systemPrompt, userPrompt := g.getPromptsForAnalyze(input)
	config := g.buildAnalyzeSchema()

	output, tokenUsage, err := executeAIOperation[types.AnalyzeOutput](
		g,
		ctx,
		"analyze_ats",
		userPrompt,
		systemPrompt,
		config,
		attribute.Int("input.resume_length", len(input.ResumeText)),
		attribute.Int("input.job_length", len(input.JobDescription)),
		attribute.Bool("input.has_retrieval_context", input.RetrievalContext != ""),
	)

	if err != nil {
		return types.AnalyzeOutput{}, nil, err
	}

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.Int("ats.overall_score", output.OverallScore),
			attribute.Int("ats.categories", len(output.Categories)),
			attribute.Int("ats.missing_keywords", len(output.KeywordAnalysis.MissingKeywords)),
		)
	}

	return output, tokenUsage, nil
}

// StructureResume implements Provider for converting extracted resume text into sections
func (g *GeminiProvider) StructureResume(ctx context.Context, input types.ImportInput) (types.ImportOutput, *TokenUsage, error) {
	systemPrompt, userPrompt := g.getPromptsForStructure(input.ResumeText)
	config := g.buildStructureConfig()

	output, tokenUsage, err := executeAIOperation[types.ImportOutput](
		g,
		ctx,
		"structure_resume",
		userPrompt,
		systemPrompt,
		config,
		attribute.Int("input.text_length", len(input.ResumeText)),
	)

	if err != nil {
		return types.ImportOutput{}, nil, err
	}

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.Int("output.sections", len(output.Sections)),
		)
	}

	return output, tokenUsage, nil
}

// EmbedText implements Provider for embedding generation used by retrieval
func (g *GeminiProvider) EmbedText(ctx context.Context, text string) ([]float32, error) {
	tracer := otel.Tracer("resumeforge.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini.embed_text")
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", g.config.EmbedModel),
		attribute.Int("input.text_length", len(text)),
	)

	result, err := g.client.Models.EmbedContent(ctx, g.config.EmbedModel, genai.Text(text), &genai.EmbedContentConfig{})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return nil, forgeErrors.NewAIError(forgeErrors.ErrCodeAIServiceFailed, "Failed to embed text", err)
	}

	if len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		span.SetAttributes(attribute.Bool("success", false))
		return nil, forgeErrors.NewAIError(forgeErrors.ErrCodeAIResponseParse, "Embedding response contained no values", nil)
	}

	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Int("output.dimensions", len(result.Embeddings[0].Values)),
	)
	return result.Embeddings[0].Values, nil
}

// GetCircuitBreakerStats returns circuit breaker statistics
func (g *GeminiProvider) GetCircuitBreakerStats() map[string]any {
	stats := map[string]any{
		"ai_operations":    g.circuitBreaker.GetStats(),
		"model_operations": g.modelBreaker.GetModelStats(),
	}

	// Overall health - both breakers must be healthy
	aiHealthy := g.circuitBreaker.IsHealthy()
	modelHealthy := g.modelBreaker.IsModelHealthy()
	stats["overall_healthy"] = aiHealthy && modelHealthy

	return stats
}

// Close implements Provider
func (g *GeminiProvider) Close() error {
	// Gemini client doesn't have a Close method in current single-shot usage
	return nil
}

// buildTailorConfig creates the generation config for tailor requests.
// Section content is polymorphic (object for summaries, arrays for experience),
// which response schemas cannot express, so the prompt carries the shape contract
// and we only pin the JSON MIME type.
func (g *GeminiProvider) buildTailorConfig() *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}

	if *g.config.Temperature > 0 {
		config.Temperature = g.config.Temperature
	}

	return config
}

// buildStructureConfig creates the generation config for structure requests.
// Same polymorphic-content caveat as buildTailorConfig.
func (g *GeminiProvider) buildStructureConfig() *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}

	if *g.config.Temperature > 0 {
		config.Temperature = g.config.Temperature
	}

	return config
}

// buildAnalyzeSchema creates the schema for ATS analysis requests
func (g *GeminiProvider) buildAnalyzeSchema() *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"overallScore": {Type: genai.TypeInteger},
				"categories": {
					Type: genai.TypeArray,
					Items: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"name":     {Type: genai.TypeString},
							"score":    {Type: genai.TypeInteger},
							"feedback": {Type: genai.TypeString},
						},
						Required: []string{"name", "score", "feedback"},
					},
				},
				"suggestions": {
					Type:  genai.TypeArray,
					Items: &genai.Schema{Type: genai.TypeString},
				},
				"keywordAnalysis": {
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"matchedKeywords": {
							Type:  genai.TypeArray,
							Items: &genai.Schema{Type: genai.TypeString},
						},
						"missingKeywords": {
							Type:  genai.TypeArray,
							Items: &genai.Schema{Type: genai.TypeString},
						},
					},
					Required: []string{"matchedKeywords", "missingKeywords"},
				},
			},
			Required: []string{"overallScore", "categories", "suggestions", "keywordAnalysis"},
		},
	}

	if *g.config.Temperature > 0 {
		config.Temperature = g.config.Temperature
	}

	return config
}

// getPromptsForTailor returns system and user prompts for tailoring
func (g *GeminiProvider) getPromptsForTailor(resumeText, jobDescription string) (string, string) {
	systemPrompt := g.getSystemPrompt("tailor")
	userPrompt := g.getUserPrompt("tailor")

	formattedUserPrompt := fmt.Sprintf(userPrompt, resumeText, jobDescription)

	return systemPrompt, formattedUserPrompt
}

// getPromptsForAnalyze returns system and user prompts for ATS analysis
func (g *GeminiProvider) getPromptsForAnalyze(input types.AnalyzeInput) (string, string) {
	systemPrompt := g.getSystemPrompt("analyze")
	userPrompt := g.getUserPrompt("analyze")

	retrievalBlock := ""
	if input.RetrievalContext != "" {
		retrievalBlock = fmt.Sprintf("\n**Reference resumes from similar successful candidates:**\n-----\n%s\n-----", input.RetrievalContext)
	}
	formattedUserPrompt := fmt.Sprintf(userPrompt, input.ResumeText, input.JobDescription, retrievalBlock)

	return systemPrompt, formattedUserPrompt
}

// getPromptsForStructure returns system and user prompts for resume structuring
func (g *GeminiProvider) getPromptsForStructure(resumeText string) (string, string) {
	systemPrompt := g.getSystemPrompt("structure")
	userPrompt := g.getUserPrompt("structure")

	formattedUserPrompt := fmt.Sprintf(userPrompt, resumeText)

	return systemPrompt, formattedUserPrompt
}

// getSystemPrompt returns the appropriate system prompt
func (g *GeminiProvider) getSystemPrompt(promptType string) string {
	loadedPrompts, configPrompts := g.getPrompts(promptType)
	var configSystemPrompts *config.SystemPrompts
	if configPrompts != nil {
		configSystemPrompts = &configPrompts.SystemPrompts
	} else {
		// Empty struct avoids nil pointer panics
		configSystemPrompts = &config.SystemPrompts{}
	}

	switch promptType {
	case "tailor":
		return resolvePrompt(
			loadedPrompts.SystemPrompts.TailorSections,
			configSystemPrompts.TailorSections,
			DefaultSystemPrompts.TailorSections,
		)
	case "analyze":
		return resolvePrompt(
			loadedPrompts.SystemPrompts.AnalyzeATS,
			configSystemPrompts.AnalyzeATS,
			DefaultSystemPrompts.AnalyzeATS,
		)
	case "structure":
		return resolvePrompt(
			loadedPrompts.SystemPrompts.StructureResume,
			configSystemPrompts.StructureResume,
			DefaultSystemPrompts.StructureResume,
		)
	default:
		return ""
	}
}

// getUserPrompt returns the appropriate user prompt template
func (g *GeminiProvider) getUserPrompt(promptType string) string {
	loadedPrompts, configPrompts := g.getPrompts(promptType)
	var configUserPrompts *config.UserPrompts
	if configPrompts != nil {
		configUserPrompts = &configPrompts.UserPrompts
	} else {
		// Empty struct avoids nil pointer panics
		configUserPrompts = &config.UserPrompts{}
	}

	switch promptType {
	case "tailor":
		return resolvePrompt(
			loadedPrompts.UserPrompts.TailorSections,
			configUserPrompts.TailorSections,
			DefaultUserPrompts.TailorSections,
		)
	case "analyze":
		return resolvePrompt(
			loadedPrompts.UserPrompts.AnalyzeATS,
			configUserPrompts.AnalyzeATS,
			DefaultUserPrompts.AnalyzeATS,
		)
	case "structure":
		return resolvePrompt(
			loadedPrompts.UserPrompts.StructureResume,
			configUserPrompts.StructureResume,
			DefaultUserPrompts.StructureResume,
		)
	default:
		return ""
	}
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// extractTokenUsage extracts token usage information from Gemini API responses
func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}

// getPrompts returns the appropriate prompts for the operation, prioritizing loaded content over config
func (g *GeminiProvider) getPrompts(operationType string) (config.OperationLoadedPrompts, *config.PromptConfig) {
	loadedPrompts := config.GetPromptsForOperation(operationType)
	configPrompts := &g.config.CustomPrompts
	return loadedPrompts, configPrompts
}

// resolvePrompt selects the correct prompt string based on a clear priority order:
// 1. A prompt loaded from a file.
// 2. A prompt defined directly in the configuration.
// 3. A hardcoded default prompt.
func resolvePrompt(loadedFromFile, fromConfig, fromDefault string) string {
	if loadedFromFile != "" {
		return loadedFromFile
	}
	if fromConfig != "" {
		return fromConfig
	}
	return fromDefault
}

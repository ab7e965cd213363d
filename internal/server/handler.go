package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"resumeforge/internal/ai"
	forgeErrors "resumeforge/internal/errors"
	"resumeforge/internal/observability"
	"resumeforge/internal/resume"
	"resumeforge/internal/types"
)

// createTailorHandler wraps the tailor-resume handler with observability
func (s *Server) createTailorHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumeforge.api")
		ctx, span := tracer.Start(ctx, "api.tailor_resume")
		defer span.End()

		var req TailorResumeRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}
		if err := s.validate.Struct(req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request", validationDetails(err), http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.JobDescription) == "" {
			writeErrorResponse(w, "Missing job description", "jobDescription field is required", http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("request.section_count", len(req.Sections)),
			attribute.Int("request.job_length", len(req.JobDescription)),
			attribute.String("operation", "tailor"),
		)

		input := types.TailorInput{
			ResumeText:     resume.Serialize(req.Sections),
			JobDescription: req.JobDescription,
		}

		tailorConfig := s.AppConfig.GetTailorConfig()
		aiService, err := ai.NewService(&tailorConfig, "tailor", s.Logger)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "service_creation"))
			writeErrorResponse(w, "Failed to create AI service", err.Error(), http.StatusInternalServerError)
			return
		}

		metrics := om.GetMetrics()
		var output types.TailorOutput
		err = metrics.TrackAIOperationWithTokens(ctx, "tailor", func(ctx context.Context) *observability.AIOperationResult {
			result, tokenUsage, aiErr := aiService.Provider.TailorSections(ctx, input)
			output = result
			return &observability.AIOperationResult{
				Error:      aiErr,
				TokenUsage: (*observability.TokenUsage)(tokenUsage),
			}
		}, om)

		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "ai_processing"))
			metrics.RecordBusinessMetric(ctx, "resume_tailored", false, om,
				attribute.String("error", err.Error()))
			writeAIError(w, "Failed to tailor resume", err)
			return
		}

		// Untrusted AI output passes validation, then reconciliation against
		// the original sections. A malformed proposal never fails the request.
		proposed := resume.ValidateProposed(output.Sections, s.Logger)
		merged, changes := resume.Merge(req.Sections, proposed, output.Changes, s.Logger)

		metrics.RecordBusinessMetric(ctx, "resume_tailored", true, om,
			attribute.Int("output.section_count", len(merged)),
			attribute.Int("output.change_count", len(changes)))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("response.section_count", len(merged)),
			attribute.Int("response.change_count", len(changes)),
		)

		writeJSONResponse(w, TailorResumeResponse{
			Success:          true,
			TailoredSections: merged,
			Changes:          changes,
		})
	}
}

// createAnalyzeHandler wraps the analyze-ats handler with observability
func (s *Server) createAnalyzeHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumeforge.api")
		ctx, span := tracer.Start(ctx, "api.analyze_ats")
		defer span.End()

		var req AnalyzeATSRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}
		if err := s.validate.Struct(req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request", validationDetails(err), http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("request.section_count", len(req.Sections)),
			attribute.Int("request.job_length", len(req.JobDescription)),
			attribute.String("operation", "analyze"),
		)

		// Retrieval degrades to an empty context when unavailable; a nil
		// retriever is safe to call.
		retrievalContext := s.retriever.Retrieve(ctx, req.JobDescription)
		span.SetAttributes(attribute.Bool("rag.augmented", retrievalContext != ""))

		input := types.AnalyzeInput{
			ResumeText:       resume.Serialize(req.Sections),
			JobDescription:   req.JobDescription,
			RetrievalContext: retrievalContext,
		}

		analyzeConfig := s.AppConfig.GetAnalyzeConfig()
		aiService, err := ai.NewService(&analyzeConfig, "analyze", s.Logger)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "service_creation"))
			writeErrorResponse(w, "Failed to create AI service", err.Error(), http.StatusInternalServerError)
			return
		}

		metrics := om.GetMetrics()
		var result types.AnalyzeOutput
		err = metrics.TrackAIOperationWithTokens(ctx, "analyze", func(ctx context.Context) *observability.AIOperationResult {
			output, tokenUsage, aiErr := aiService.Provider.AnalyzeATS(ctx, input)
			result = output
			return &observability.AIOperationResult{
				Error:      aiErr,
				TokenUsage: (*observability.TokenUsage)(tokenUsage),
			}
		}, om)

		if err != nil {
			span.RecordError(err)
			metrics.RecordBusinessMetric(ctx, "ats_analyzed", false, om)
			writeAIError(w, "Failed to analyze resume", err)
			return
		}

		metrics.RecordBusinessMetric(ctx, "ats_analyzed", true, om,
			attribute.Int("overall_score", result.OverallScore))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("overall_score", result.OverallScore),
		)

		writeJSONResponse(w, result)
	}
}

// createRateLimitMiddleware adds observability to rate limiting
func (s *Server) createRateLimitMiddleware(om *observability.ObservabilityManager) func(http.HandlerFunc) http.HandlerFunc {
	originalMiddleware := s.rateLimitMiddleware()

	return func(next http.HandlerFunc) http.HandlerFunc {
		return originalMiddleware(func(w http.ResponseWriter, r *http.Request) {
			// Check if this request was rate limited by examining the response
			// We'll wrap the ResponseWriter to detect rate limit responses
			wrapper := &responseWrapper{ResponseWriter: w, statusCode: 200}

			next(wrapper, r)

			// If rate limited, record metric
			if wrapper.statusCode == http.StatusTooManyRequests {
				metrics := om.GetMetrics()
				metrics.RecordBusinessMetric(r.Context(), "rate_limit_hit", true, om,
					attribute.String("endpoint", r.URL.Path),
					attribute.String("method", r.Method))
			}
		})
	}
}

// writeAIError maps an AI failure to the response the client sees, keeping
// transport failures distinguishable from model-output-format failures.
func writeAIError(w http.ResponseWriter, message string, err error) {
	var appErr *forgeErrors.AppError
	if errors.As(err, &appErr) && appErr.Code == forgeErrors.ErrCodeAIResponseParse {
		writeErrorResponse(w, "Failed to parse AI response", err.Error(), http.StatusInternalServerError)
		return
	}
	writeErrorResponse(w, message, err.Error(), http.StatusInternalServerError)
}

// writeJSONResponse encodes v as the success response
func writeJSONResponse(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

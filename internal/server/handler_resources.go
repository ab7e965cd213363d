package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"resumeforge/internal/ai"
	"resumeforge/internal/ats"
	"resumeforge/internal/billing"
	forgeErrors "resumeforge/internal/errors"
	"resumeforge/internal/importer"
	"resumeforge/internal/observability"
	"resumeforge/internal/resume"
	"resumeforge/internal/store"
	"resumeforge/internal/types"
)

// webhookSignatureHeader carries the gateway's HMAC signature.
const webhookSignatureHeader = "X-Webhook-Signature"

// GenerateResumeResponse is the success body for the generate endpoint
type GenerateResumeResponse struct {
	Success  bool                  `json:"success"`
	ResumeID string                `json:"resumeId,omitempty"`
	Sections []types.ResumeSection `json:"sections"`
	ATSScore ats.Breakdown         `json:"atsScore"`
	PDF      string                `json:"pdf,omitempty"` // base64-encoded document when rendering is enabled
}

// createImportHandler wraps the import-pdf handler with observability
func (s *Server) createImportHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumeforge.api")
		ctx, span := tracer.Start(ctx, "api.import_pdf")
		defer span.End()

		maxUpload := s.AppConfig.App.MaxUploadSize
		if maxUpload > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing file upload", "multipart field 'file' is required", http.StatusBadRequest)
			return
		}
		defer func() {
			if err := file.Close(); err != nil {
				s.Logger.Debug("Failed to close upload", "error", err)
			}
		}()

		span.SetAttributes(
			attribute.Int64("request.upload_bytes", header.Size),
			attribute.String("operation", "import"),
		)

		structureConfig := s.AppConfig.GetStructureConfig()
		aiService, err := ai.NewService(&structureConfig, "structure", s.Logger)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "service_creation"))
			writeErrorResponse(w, "Failed to create AI service", err.Error(), http.StatusInternalServerError)
			return
		}

		imp := importer.NewImporter(aiService.Provider, maxUpload, s.Logger)

		metrics := om.GetMetrics()
		var sections []types.ResumeSection
		err = metrics.TrackAIOperationWithTokens(ctx, "structure", func(ctx context.Context) *observability.AIOperationResult {
			imported, tokenUsage, impErr := imp.Import(ctx, file, header.Size)
			sections = imported
			return &observability.AIOperationResult{
				Error:      impErr,
				TokenUsage: (*observability.TokenUsage)(tokenUsage),
			}
		}, om)

		if err != nil {
			span.RecordError(err)
			metrics.RecordBusinessMetric(ctx, "resume_imported", false, om)
			writeImportError(w, err)
			return
		}

		metrics.RecordBusinessMetric(ctx, "resume_imported", true, om,
			attribute.Int("output.section_count", len(sections)))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("response.section_count", len(sections)),
		)

		writeJSONResponse(w, ImportResponse{
			Success:  true,
			Sections: sections,
			Message:  fmt.Sprintf("Imported %d sections", len(sections)),
		})
	}
}

// writeImportError maps importer failures onto HTTP statuses: bad uploads are
// the client's fault, AI failures are ours.
func writeImportError(w http.ResponseWriter, err error) {
	var appErr *forgeErrors.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case forgeErrors.ErrCodeInvalidRequest, forgeErrors.ErrCodeExtractionFailed:
			writeErrorResponse(w, "Invalid PDF upload", err.Error(), http.StatusBadRequest)
			return
		}
	}
	writeAIError(w, "Failed to import resume", err)
}

// createGenerateHandler builds sections from a typed form, scores them,
// renders a PDF and persists the result.
func (s *Server) createGenerateHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumeforge.api")
		ctx, span := tracer.Start(ctx, "api.generate_resume")
		defer span.End()

		var req GenerateResumeRequest
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

		sections := buildSectionsFromForm(req)
		if len(sections) == 0 {
			writeErrorResponse(w, "Empty resume", "the form produced no usable sections", http.StatusBadRequest)
			return
		}

		score := ats.Score(sections, "")
		span.SetAttributes(
			attribute.Int("response.section_count", len(sections)),
			attribute.Float64("ats.score", score.Total),
		)

		metrics := om.GetMetrics()
		response := GenerateResumeResponse{
			Success:  true,
			Sections: sections,
			ATSScore: score,
		}

		if s.renderer != nil {
			pdf, err := s.renderer.RenderResume(ctx, sections)
			if err != nil {
				span.RecordError(err)
				metrics.RecordBusinessMetric(ctx, "resume_generated", false, om)
				writeErrorResponse(w, "Failed to render resume", err.Error(), http.StatusInternalServerError)
				return
			}
			response.PDF = base64.StdEncoding.EncodeToString(pdf)
		}

		if s.resumes != nil {
			title := req.Title
			if title == "" {
				title = "Untitled resume"
			}
			total := score.Total
			id, err := s.resumes.Save(ctx, store.Resume{
				Title:    title,
				Sections: sections,
				ATSScore: &total,
			})
			if err != nil {
				span.RecordError(err)
				metrics.RecordBusinessMetric(ctx, "resume_generated", false, om)
				writeErrorResponse(w, "Failed to save resume", err.Error(), http.StatusInternalServerError)
				return
			}
			response.ResumeID = id
		}

		metrics.RecordBusinessMetric(ctx, "resume_generated", true, om,
			attribute.Bool("rendered", response.PDF != ""),
			attribute.Bool("persisted", response.ResumeID != ""))
		span.SetAttributes(attribute.Bool("success", true))

		writeJSONResponse(w, response)
	}
}

// buildSectionsFromForm converts the typed generate form into canonical
// sections using the same normalization pass the importer applies.
func buildSectionsFromForm(req GenerateResumeRequest) []types.ResumeSection {
	var proposed []types.ProposedSection

	addSection := func(sectionType types.SectionType, content any) {
		raw, err := json.Marshal(content)
		if err != nil {
			return
		}
		proposed = append(proposed, types.ProposedSection{Type: sectionType, Content: raw})
	}

	addSection(types.SectionPersonalInfo, req.PersonalInfo)
	if req.Summary != "" {
		addSection(types.SectionProfessionalSummary, types.SummaryPayload{Text: req.Summary})
	}
	if len(req.Experience) > 0 {
		addSection(types.SectionExperience, req.Experience)
	}
	if len(req.Education) > 0 {
		addSection(types.SectionEducation, req.Education)
	}
	if len(req.Skills) > 0 {
		addSection(types.SectionSkills, types.SkillsPayload{Categories: req.Skills})
	}
	if len(req.Projects) > 0 {
		addSection(types.SectionProjects, req.Projects)
	}

	return resume.Canonicalize(proposed)
}

// createWebhookHandler verifies and dispatches payment-gateway events
func (s *Server) createWebhookHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumeforge.api")
		ctx, span := tracer.Start(ctx, "api.subscription_webhook")
		defer span.End()

		metrics := om.GetMetrics()

		body, err := io.ReadAll(r.Body)
		if err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Failed to read request body", err.Error(), http.StatusBadRequest)
			return
		}

		secret := s.AppConfig.Billing.WebhookSecret
		signature := r.Header.Get(webhookSignatureHeader)
		if !billing.VerifySignature(body, signature, secret) {
			span.SetAttributes(attribute.String("error.type", "signature"))
			s.Logger.Warn("Rejected webhook with missing or invalid signature",
				"client_ip", getClientIP(r))
			metrics.RecordBusinessMetric(ctx, "webhook_processed", false, om,
				attribute.String("reason", "invalid_signature"))
			writeErrorResponse(w, "Invalid signature", "missing or invalid webhook signature", http.StatusBadRequest)
			return
		}

		event, err := billing.ParseEvent(body)
		if err != nil {
			span.RecordError(err)
			metrics.RecordBusinessMetric(ctx, "webhook_processed", false, om,
				attribute.String("reason", "malformed_body"))
			writeErrorResponse(w, "Invalid webhook body", err.Error(), http.StatusBadRequest)
			return
		}

		if !billing.WithinSkew(event, s.AppConfig.Billing.TimestampSkew, time.Now()) {
			span.SetAttributes(attribute.String("error.type", "stale"))
			metrics.RecordBusinessMetric(ctx, "webhook_processed", false, om,
				attribute.String("reason", "stale_timestamp"))
			writeErrorResponse(w, "Stale webhook", "event timestamp outside the accepted window", http.StatusBadRequest)
			return
		}

		span.SetAttributes(attribute.String("webhook.event", event.Name))

		if s.billing == nil {
			// Verified but nowhere to apply it; acknowledge so the gateway
			// stops retrying.
			s.Logger.Warn("Webhook received but billing is not wired to storage", "event", event.Name)
			writeJSONResponse(w, map[string]any{"received": true, "processed": false})
			return
		}

		if err := s.billing.Process(ctx, event); err != nil {
			span.RecordError(err)
			metrics.RecordBusinessMetric(ctx, "webhook_processed", false, om,
				attribute.String("event", event.Name))
			writeErrorResponse(w, "Failed to process webhook", err.Error(), http.StatusInternalServerError)
			return
		}

		metrics.RecordBusinessMetric(ctx, "webhook_processed", true, om,
			attribute.String("event", event.Name))
		span.SetAttributes(attribute.Bool("success", true))

		writeJSONResponse(w, map[string]any{"received": true, "processed": true})
	}
}

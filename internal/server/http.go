package server

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"

	"resumeforge/internal/ai"
	"resumeforge/internal/billing"
	"resumeforge/internal/config"
	forgeErrors "resumeforge/internal/errors"
	"resumeforge/internal/rag"
	"resumeforge/internal/render"
	"resumeforge/internal/store"
	"resumeforge/internal/types"
)

// TailorResumeRequest is the body for POST /api/tailor-resume
type TailorResumeRequest struct {
	Sections       []types.ResumeSection `json:"sections" validate:"required,min=1"`
	JobDescription string                `json:"jobDescription" validate:"required"`
}

// AnalyzeATSRequest is the body for POST /api/analyze-ats
type AnalyzeATSRequest struct {
	Sections       []types.ResumeSection `json:"sections" validate:"required,min=1"`
	JobDescription string                `json:"jobDescription"`
}

// GenerateResumeRequest is the typed form for POST /api/resume/generate.
// Sections are built directly from these fields, no AI involved.
type GenerateResumeRequest struct {
	Title        string                    `json:"title"`
	PersonalInfo types.PersonalInfoPayload `json:"personalInfo" validate:"required"`
	Summary      string                    `json:"summary"`
	Experience   []types.ExperienceEntry   `json:"experience"`
	Education    []types.EducationEntry    `json:"education"`
	Skills       []types.SkillCategory     `json:"skills"`
	Projects     []types.ProjectEntry      `json:"projects"`
}

// TailorResumeResponse is the success body for the tailor endpoint
type TailorResumeResponse struct {
	Success          bool                  `json:"success"`
	TailoredSections []types.ResumeSection `json:"tailoredSections"`
	Changes          []types.Change        `json:"changes"`
}

// ImportResponse is the success body for the PDF import endpoint
type ImportResponse struct {
	Success  bool                  `json:"success"`
	Sections []types.ResumeSection `json:"sections"`
	Message  string                `json:"message,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// TLS Configuration
	TLSConfig config.TLSConfig

	// API Authentication
	APIKeys map[string]bool

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	// Logger
	Logger *forgeErrors.Logger

	// Request validation
	validate *validator.Validate

	// Wired during Start according to feature availability
	pool          *pgxpool.Pool
	embedService  *ai.Service
	resumes       *store.ResumeRepo
	subscriptions *store.SubscriptionRepo
	retriever     *rag.Retriever
	renderer      *render.Renderer
	billing       *billing.Processor
	promptWatcher *config.PromptWatcher
}

// ServerConfig holds configuration for creating a Server instance
// (Refactored to reduce long parameter list in NewServer)
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	TLSConfig      config.TLSConfig
	APIKeys        []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(appCfg *config.Config, cfg ServerConfig, logger *forgeErrors.Logger) *Server {
	// Convert API keys slice to map for O(1) lookup
	apiKeyMap := make(map[string]bool)
	for _, key := range cfg.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			cfg.RateLimit.RequestsPerMin,
			cfg.RateLimit.Window,
			cfg.RateLimit.BurstCapacity,
			logger,
		)
	}

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		TLSConfig:      cfg.TLSConfig,
		APIKeys:        apiKeyMap,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		Logger:         logger,
		validate:       validator.New(validator.WithRequiredStructEnabled()),
	}
}

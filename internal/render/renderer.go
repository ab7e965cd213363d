// Package render builds a printable HTML document from canonical resume
// sections and prints it to PDF through a headless Chrome instance.
package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"resumeforge/internal/config"
	forgeErrors "resumeforge/internal/errors"
	"resumeforge/internal/types"
)

// Paper dimensions in inches per page format.
const (
	a4Width      = 8.27
	a4Height     = 11.69
	letterWidth  = 8.5
	letterHeight = 11.0
)

const defaultRenderTimeout = 60 * time.Second

// Renderer prints resume documents to PDF via chromedp.
type Renderer struct {
	chromePath string
	timeout    time.Duration
	paperW     float64
	paperH     float64
	logger     *forgeErrors.Logger
}

// NewRenderer builds a Renderer from configuration. CHROME_PATH in the
// environment takes precedence over the configured binary path.
func NewRenderer(cfg config.RenderConfig, logger *forgeErrors.Logger) *Renderer {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRenderTimeout
	}

	chromePath := cfg.ChromePath
	if p := os.Getenv("CHROME_PATH"); p != "" {
		chromePath = p
	}

	width, height := a4Width, a4Height
	if cfg.PageFormat == "Letter" {
		width, height = letterWidth, letterHeight
	}

	return &Renderer{
		chromePath: chromePath,
		timeout:    timeout,
		paperW:     width,
		paperH:     height,
		logger:     logger,
	}
}

// RenderResume builds the HTML document for the given sections and prints it.
func (r *Renderer) RenderResume(ctx context.Context, sections []types.ResumeSection) ([]byte, error) {
	tracer := otel.Tracer("render")
	ctx, span := tracer.Start(ctx, "render.pdf")
	defer span.End()
	span.SetAttributes(attribute.Int("resume.sections", len(sections)))

	html, err := BuildHTML(sections)
	if err != nil {
		return nil, err
	}

	pdf, err := r.printHTML(ctx, html)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("render.pdf_bytes", len(pdf)))
	return pdf, nil
}

func (r *Renderer) printHTML(ctx context.Context, html string) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if r.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.chromePath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancelRun := context.WithTimeout(browserCtx, r.timeout)
	defer cancelRun()

	// Chrome needs a real file to print; serve the document from a temp dir.
	tmpDir, err := os.MkdirTemp("", "resumeforge-render-")
	if err != nil {
		return nil, forgeErrors.NewIOError(forgeErrors.ErrCodeRenderFailed,
			"failed to create render workspace", err)
	}
	defer os.RemoveAll(tmpDir)

	htmlPath := filepath.Join(tmpDir, "resume.html")
	if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
		return nil, forgeErrors.NewIOError(forgeErrors.ErrCodeRenderFailed,
			"failed to write render document", err)
	}

	var pdfBuf []byte
	err = chromedp.Run(runCtx,
		chromedp.Navigate("file://"+htmlPath),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var printErr error
			pdfBuf, _, printErr = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(r.paperW).
				WithPaperHeight(r.paperH).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return printErr
		}),
	)
	if err != nil {
		return nil, forgeErrors.NewInternalError(forgeErrors.ErrCodeRenderFailed,
			fmt.Sprintf("chrome failed to print the document within %s", r.timeout), err)
	}
	return pdfBuf, nil
}

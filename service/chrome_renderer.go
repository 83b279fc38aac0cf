package service

import (
	"context"
	"fmt"
	"image/color"
	"log"
	"os"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"wordmark/export"
	"wordmark/models"
)

// svgSnapshotJS wraps the serialized card in a foreignObject so the vector
// export keeps the live DOM styling
const svgSnapshotJS = `
	(function() {
		const node = document.getElementById(%q);
		if (!node) {
			throw new Error('display card not found');
		}
		const rect = node.getBoundingClientRect();
		const w = Math.ceil(rect.width);
		const h = Math.ceil(rect.height);
		const html = new XMLSerializer().serializeToString(node);
		return '<svg xmlns="http://www.w3.org/2000/svg" width="' + (w * %g) + '" height="' + (h * %g) + '" viewBox="0 0 ' + w + ' ' + h + '">' +
			'<foreignObject x="0" y="0" width="100%%" height="100%%">' + html + '</foreignObject></svg>';
	})();
`

// detectChromePath detects the path to Chrome/Chromium executable
// Checks the configured path first, then common installation paths
func detectChromePath(configured string) string {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured
		}
		log.Printf("⚠️  Configured Chrome path %s not found, falling back to detection", configured)
	}

	// Common paths to check
	paths := []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/snap/bin/chromium",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// ChromeRenderer screenshots the #display-card element of the render page
// in a headless browser. The browser tab is shared, so renders are serialized.
type ChromeRenderer struct {
	baseURL    string
	chromePath string
	pages      *RenderPages

	mu          sync.Mutex
	allocCancel context.CancelFunc
	tabCtx      context.Context
	tabCancel   context.CancelFunc
}

var _ export.Renderer = (*ChromeRenderer)(nil)

// NewChromeRenderer creates a renderer that loads pages from baseURL. Captured
// designs are published through pages, which the server at baseURL must
// serve. The browser is started on first use.
func NewChromeRenderer(baseURL, chromePath string, pages *RenderPages) *ChromeRenderer {
	return &ChromeRenderer{
		baseURL:    baseURL,
		chromePath: detectChromePath(chromePath),
		pages:      pages,
	}
}

// ChromeAvailable reports whether a browser binary can be found
func ChromeAvailable(configured string) bool {
	return detectChromePath(configured) != ""
}

// ensureBrowser starts the browser and its single tab. Caller must hold mu.
func (r *ChromeRenderer) ensureBrowser() error {
	if r.tabCtx != nil {
		return nil
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox, // Required for running in Docker/containers
		chromedp.Flag("hide-scrollbars", true),
	)
	if r.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.chromePath))
	}

	// the browser outlives any single request
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(tabCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		return page.Enable().Do(ctx)
	})); err != nil {
		tabCancel()
		allocCancel()
		return fmt.Errorf("failed to start browser: %w", err)
	}

	log.Printf("✓ Headless browser started (path=%q)", r.chromePath)
	r.allocCancel, r.tabCtx, r.tabCancel = allocCancel, tabCtx, tabCancel
	return nil
}

// Render implements export.Renderer
func (r *ChromeRenderer) Render(ctx context.Context, surface export.Surface, opts export.RenderOptions) ([]byte, error) {
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}
	if err := export.CheckOutputSize(surface, scale); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureBrowser(); err != nil {
		return nil, err
	}

	// bound the browser actions by the caller's context without closing the tab
	runCtx, cancel := context.WithCancel(r.tabCtx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	path, release := r.pages.PathFor(surface)
	defer release()
	renderURL := r.baseURL + path
	selector := "#" + DisplayCardID
	viewport := models.DefaultViewport

	load := chromedp.Tasks{
		chromedp.EmulateViewport(int64(viewport.Width), int64(viewport.Height)),
		chromedp.Navigate(renderURL),
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Sleep(200 * time.Millisecond), // Wait for fonts and layout
	}

	start := time.Now()
	var out []byte
	var err error

	switch opts.Format {
	case models.FormatSVG:
		var svg string
		err = chromedp.Run(runCtx, load,
			chromedp.Evaluate(fmt.Sprintf(svgSnapshotJS, DisplayCardID, scale, scale), &svg),
		)
		out = []byte(svg)
	case models.FormatPNG, models.FormatJPEG, models.FormatWebP:
		var buf []byte
		err = chromedp.Run(runCtx, load,
			chromedp.ScreenshotScale(selector, scale, &buf, chromedp.ByQuery),
		)
		if err == nil {
			out, err = TranscodePNG(buf, opts.Format, r.cardBackground(surface))
		}
	default:
		err = fmt.Errorf("unsupported format: %s", opts.Format)
	}

	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("failed to render %s: %w", renderURL, err)
	}
	log.Printf("📸 Rendered %s as %s at %gx in %s", surface.ID(), opts.Format, scale, time.Since(start).Round(time.Millisecond))
	return out, nil
}

func (r *ChromeRenderer) cardBackground(surface export.Surface) color.Color {
	if ds, ok := surface.(DesignSurface); ok {
		return ParseColor(ds.Design().Card.Color)
	}
	return nil
}

// Close shuts the browser down
func (r *ChromeRenderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tabCancel != nil {
		r.tabCancel()
		r.allocCancel()
		r.tabCtx, r.tabCancel, r.allocCancel = nil, nil, nil
		log.Printf("✓ Headless browser stopped")
	}
}

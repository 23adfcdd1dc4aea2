// Package shotstyle serves a single-page screenshot styler built with Go,
// Echo, and templ.
//
// A visitor pastes or drops a screenshot onto the page. The server renders it
// onto a padded canvas with rounded corners, a soft shadow and a thin border,
// and offers the result for download or copies it to the host clipboard.
// Each browser session gets its own editor, kept in memory only.
package shotstyle

import (
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/shotstyle/clipboard"
	"github.com/eringen/shotstyle/editor"
	"github.com/eringen/shotstyle/render"
)

// App is the central shotstyle application. It wires together the renderer,
// the per-session editors, handlers and middleware.
type App struct {
	Config    Config
	Echo      *echo.Echo
	Renderer  *render.Renderer
	Workspace *Workspace

	clipboard     editor.Clipboard
	uploadLimiter *UploadLimiter
	customRoutes  []func(*App)
	staticDir     string
	stopSweeper   func()
	ready         bool
}

// New creates a new shotstyle App with the given configuration.
func New(cfg Config, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		staticDir: "public",
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Setup validates the configuration and installs middleware and routes.
// Start calls it; tests call it directly and drive a.Echo.
func (a *App) Setup() error {
	if a.ready {
		return nil
	}
	// Validate required config
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("shotstyle: SessionSecret is required")
	}

	style, err := a.Config.style()
	if err != nil {
		return fmt.Errorf("shotstyle: load style: %w", err)
	}
	a.Renderer, err = render.NewRenderer(style)
	if err != nil {
		return fmt.Errorf("shotstyle: init renderer: %w", err)
	}

	if a.clipboard == nil {
		sys := clipboard.System{}
		if err := sys.Available(); err != nil {
			a.Echo.Logger.Warnf("host clipboard unavailable, copy is disabled: %v", err)
		} else {
			a.clipboard = sys
		}
	}

	a.Workspace = NewWorkspace(a.Config.EditorTTL, a.newEditor)
	a.stopSweeper = a.Workspace.StartSweeper(a.Config.EditorTTL / 2)

	a.uploadLimiter = NewUploadLimiter(a.Config.UploadsPerMinute, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()

	// Apply custom routes
	for _, fn := range a.customRoutes {
		fn(a)
	}

	a.ready = true
	return nil
}

// Start sets the app up and runs the server until it stops.
func (a *App) Start() error {
	if err := a.Setup(); err != nil {
		return err
	}
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) newEditor() *editor.Editor {
	opts := []editor.Option{
		editor.WithDragDrop(!a.Config.DisableDragDrop),
		editor.WithLogger(a.Echo.Logger),
	}
	if a.clipboard != nil {
		opts = append(opts, editor.WithClipboard(a.clipboard))
	}
	return editor.New(a.Renderer, opts...)
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Embedded page script; user assets fall through to the static dir.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/editor.js", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))
	e.Static("/public", a.staticDir)

	e.GET("/", a.handleHome)

	api := e.Group("/api")
	api.GET("/state", a.handleState)
	api.POST("/paste", a.handlePaste)
	api.POST("/drop", a.handleDrop)
	api.POST("/drag", a.handleDrag)
	api.GET("/canvas.png", a.handleCanvas)
	api.GET("/download", a.handleDownload)
	api.POST("/copy", a.handleCopy)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.stopSweeper != nil {
		a.stopSweeper()
	}
	if a.uploadLimiter != nil {
		a.uploadLimiter.Stop()
	}
	return a.Echo.Close()
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

package shotstyle

import (
	"time"

	"github.com/eringen/shotstyle/editor"
	"github.com/eringen/shotstyle/render"
)

// Config holds all configuration for a shotstyle server.
type Config struct {
	Name string // Page title (default "Changelog image yassifier")
	Addr string // Listen address (default ":3000")

	SessionSecret string // Required: session cookie secret
	CookieSecure  bool   // Set true for HTTPS

	EditorTTL        time.Duration // Idle time before a session's editor is dropped (default 30min)
	MaxUploadSize    int64         // Largest accepted image payload in bytes (default 10MB)
	UploadsPerMinute int           // Paste/drop uploads allowed per IP per minute (default 60)
	DisableDragDrop  bool          // Accept pasted images only

	Style     render.Style // Canvas style (default render.DefaultStyle)
	StyleFile string       // YAML style file, used when Style is zero
}

func (c *Config) setDefaults() {
	if c.Name == "" {
		c.Name = "Changelog image yassifier"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.EditorTTL == 0 {
		c.EditorTTL = 30 * time.Minute
	}
	if c.MaxUploadSize == 0 {
		c.MaxUploadSize = 10 << 20
	}
	if c.UploadsPerMinute == 0 {
		c.UploadsPerMinute = 60
	}
}

// style resolves the canvas style: explicit Style, then StyleFile, then
// the default.
func (c *Config) style() (render.Style, error) {
	if c.Style != (render.Style{}) {
		return c.Style, nil
	}
	if c.StyleFile != "" {
		return render.LoadStyle(c.StyleFile)
	}
	return render.DefaultStyle(), nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App after the built-in routes are set up.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithClipboard sets the clipboard that Copy writes to. Without it the
// server copies to the host clipboard.
func WithClipboard(cb editor.Clipboard) Option {
	return func(a *App) {
		a.clipboard = cb
	}
}

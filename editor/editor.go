// Package editor holds the state of one screenshot editing session: the
// current source image, its rendered canvas and the transient UI flags.
//
// Input arrives as clipboard items or dropped files. The first image payload
// is decoded, rendered and published as the new current image, replacing the
// previous one. The rendered canvas can then be copied to a clipboard or
// downloaded as a PNG.
package editor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"sync"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/eringen/shotstyle/render"
)

// DownloadName is the file name offered for downloads.
const DownloadName = "styled-image.png"

// CopiedFor is how long the copied indicator stays on after a copy.
const CopiedFor = 2000 * time.Millisecond

var (
	// ErrNoImage is returned by export actions before any image was loaded.
	ErrNoImage = errors.New("editor: no image loaded")
	// ErrNoClipboard is returned by Copy when no clipboard is configured.
	ErrNoClipboard = errors.New("editor: clipboard unavailable")
)

// Item is one clipboard item or dropped file.
type Item struct {
	MediaType string
	Data      []byte
}

// Clipboard receives PNG images on copy.
type Clipboard interface {
	WriteImage(png []byte) error
}

// Logger is the subset of echo.Logger the editor writes to.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
}

// Snapshot is the published result of one acquisition.
type Snapshot struct {
	Source     image.Image
	Canvas     *image.RGBA
	Layout     render.Layout
	PNG        []byte
	Generation uint64
}

// State is the externally visible editor state.
type State struct {
	HasImage   bool   `json:"has_image"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	Generation uint64 `json:"generation"`
	Copied     bool   `json:"copied"`
	Dragging   bool   `json:"dragging"`
	DragDrop   bool   `json:"drag_drop"`
	Notice     string `json:"notice,omitempty"`
}

// Editor is one editing session. It is safe for concurrent use.
type Editor struct {
	renderer  *render.Renderer
	clipboard Clipboard
	logger    Logger
	dragDrop  bool
	afterFunc func(time.Duration, func())

	mu        sync.Mutex
	started   uint64 // sequence of the latest acquisition started
	published uint64 // sequence of the snapshot currently shown
	current   *Snapshot
	copied    bool
	dragging  bool
	notice    string
}

// Option configures an Editor.
type Option func(*Editor)

// WithDragDrop enables or disables drag-and-drop input (default enabled).
func WithDragDrop(enabled bool) Option {
	return func(e *Editor) { e.dragDrop = enabled }
}

// WithClipboard sets the clipboard used by Copy.
func WithClipboard(cb Clipboard) Option {
	return func(e *Editor) { e.clipboard = cb }
}

// WithLogger sets the logger for swallowed failures.
func WithLogger(l Logger) Option {
	return func(e *Editor) { e.logger = l }
}

// WithAfterFunc replaces time.AfterFunc for the copied indicator timer.
func WithAfterFunc(fn func(time.Duration, func())) Option {
	return func(e *Editor) { e.afterFunc = fn }
}

// New creates an Editor that renders with r.
func New(r *render.Renderer, opts ...Option) *Editor {
	e := &Editor{
		renderer: r,
		dragDrop: true,
		afterFunc: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = log.New("editor")
	}
	return e
}

// Paste loads the first item whose media type mentions "image". It reports
// whether an image item was found; non-image payloads are ignored silently.
func (e *Editor) Paste(ctx context.Context, items []Item) (bool, error) {
	for _, it := range items {
		if strings.Contains(it.MediaType, "image") {
			return true, e.Load(ctx, it.Data)
		}
	}
	return false, nil
}

// Drop clears the dragging flag and loads the first dropped file if it is an
// image/* payload. Other files, and all drops while drag-and-drop is
// disabled, are ignored.
func (e *Editor) Drop(ctx context.Context, files []Item) (bool, error) {
	if !e.dragDrop {
		return false, nil
	}
	e.mu.Lock()
	e.dragging = false
	e.mu.Unlock()

	if len(files) == 0 || !strings.HasPrefix(files[0].MediaType, "image/") {
		return false, nil
	}
	return true, e.Load(ctx, files[0].Data)
}

// DragOver turns on the cosmetic drop highlight.
func (e *Editor) DragOver() {
	e.setDragging(true)
}

// DragLeave turns off the drop highlight.
func (e *Editor) DragLeave() {
	e.setDragging(false)
}

func (e *Editor) setDragging(v bool) {
	if !e.dragDrop {
		return
	}
	e.mu.Lock()
	e.dragging = v
	e.mu.Unlock()
}

// Load decodes data, renders it and publishes it as the current image.
//
// Acquisitions are ordered by start: a result is dropped if a later-started
// acquisition has already been published. On decode failure the current
// image is kept and a notice is recorded.
func (e *Editor) Load(ctx context.Context, data []byte) error {
	return e.load(ctx, e.begin(), data)
}

func (e *Editor) load(ctx context.Context, seq uint64, data []byte) error {
	src, format, err := e.renderer.Decode(data)
	if err != nil {
		e.logger.Warnf("decode pasted image: %v", err)
		if errors.Is(err, render.ErrTooManyPixels) {
			e.setNotice(seq, "That image is too large to style.")
		} else {
			e.setNotice(seq, "That file could not be read as an image.")
		}
		return err
	}
	canvas, layout, err := e.renderer.Render(src)
	if err != nil {
		e.logger.Warnf("render %s image: %v", format, err)
		e.setNotice(seq, "That image could not be rendered.")
		return fmt.Errorf("render image: %w", err)
	}
	png, err := render.PNG(canvas)
	if err != nil {
		e.logger.Warnf("encode canvas: %v", err)
		e.setNotice(seq, "The styled image could not be encoded.")
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	e.publish(&Snapshot{
		Source:     src,
		Canvas:     canvas,
		Layout:     layout,
		PNG:        png,
		Generation: seq,
	})
	return nil
}

// begin assigns the next acquisition sequence number.
func (e *Editor) begin() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.started++
	return e.started
}

// publish makes snap current unless a later acquisition is already shown.
func (e *Editor) publish(snap *Snapshot) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if snap.Generation < e.published {
		e.logger.Infof("discarding stale image %d, %d already shown", snap.Generation, e.published)
		return false
	}
	e.published = snap.Generation
	e.current = snap
	e.notice = ""
	return true
}

// setNotice records a failure of acquisition seq. Failures of acquisitions
// older than the image on screen are not shown.
func (e *Editor) setNotice(seq uint64, msg string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if seq < e.published {
		return
	}
	e.notice = msg
}

// Snapshot returns the current image, or nil before the first load.
func (e *Editor) Snapshot() *Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// State returns the current UI state.
func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := State{
		Copied:   e.copied,
		Dragging: e.dragging,
		DragDrop: e.dragDrop,
		Notice:   e.notice,
	}
	if e.current != nil {
		b := e.current.Source.Bounds()
		st.HasImage = true
		st.Width, st.Height = b.Dx(), b.Dy()
		st.Generation = e.current.Generation
	}
	return st
}

// Copied reports whether the copied indicator is on.
func (e *Editor) Copied() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.copied
}

// Copy writes the canvas PNG to the clipboard. On success the copied
// indicator turns on and turns off CopiedFor later; every timer fires,
// even if a later copy turned the indicator on again. Failures are logged
// and leave the indicator untouched.
func (e *Editor) Copy(ctx context.Context) error {
	snap := e.Snapshot()
	if snap == nil {
		return ErrNoImage
	}
	if e.clipboard == nil {
		e.logger.Warnf("copy image to clipboard: %v", ErrNoClipboard)
		return ErrNoClipboard
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.clipboard.WriteImage(snap.PNG); err != nil {
		e.logger.Warnf("copy image to clipboard: %v", err)
		return fmt.Errorf("copy image: %w", err)
	}

	e.mu.Lock()
	e.copied = true
	e.mu.Unlock()
	e.afterFunc(CopiedFor, func() {
		e.mu.Lock()
		e.copied = false
		e.mu.Unlock()
	})
	return nil
}

// Download returns the canvas PNG and the file name to save it under.
func (e *Editor) Download() ([]byte, string, error) {
	snap := e.Snapshot()
	if snap == nil {
		return nil, "", ErrNoImage
	}
	return snap.PNG, DownloadName, nil
}

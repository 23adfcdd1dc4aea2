package shotstyle

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/eringen/shotstyle/clipboard"
	"github.com/eringen/shotstyle/editor"
	"github.com/eringen/shotstyle/render"
)

type failingClipboard struct{}

func (failingClipboard) WriteImage([]byte) error { return errors.New("denied") }

func testStyle() render.Style {
	s := render.DefaultStyle()
	s.CanvasWidth, s.CanvasHeight = 150, 82
	s.Padding = 6
	s.CornerRadius = 2
	s.ShadowBlur = 2
	return s
}

func newTestApp(t *testing.T, cfg Config, opts ...Option) *App {
	t.Helper()
	cfg.SessionSecret = "test-secret-test-secret-test-sec"
	if cfg.Style == (render.Style{}) {
		cfg.Style = testStyle()
	}
	// Tests never touch the host clipboard.
	opts = append([]Option{WithClipboard(&clipboard.Memory{})}, opts...)
	a := New(cfg, opts...)
	if err := a.Setup(); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

// client replays cookies between requests like a browser.
type client struct {
	t       *testing.T
	app     *App
	cookies map[string]*http.Cookie
}

func newClient(t *testing.T, a *App) *client {
	c := &client{t: t, app: a, cookies: make(map[string]*http.Cookie)}
	// The first GET issues the session and CSRF cookies.
	if res := c.do(httptest.NewRequest(http.MethodGet, "/api/state", nil)); res.Code != http.StatusOK {
		t.Fatalf("GET /api/state = %d", res.Code)
	}
	return c
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	c.t.Helper()
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	if ck, ok := c.cookies["_csrf"]; ok && req.Method != http.MethodGet {
		req.Header.Set(csrfHeaderKey, ck.Value)
	}
	rec := httptest.NewRecorder()
	c.app.Echo.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		c.cookies[ck.Name] = ck
	}
	return rec
}

type part struct {
	field, mediaType string
	data             []byte
}

func (c *client) upload(path string, parts ...part) *httptest.ResponseRecorder {
	c.t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for i, p := range parts {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+p.field+`"; filename="blob`+string(rune('a'+i))+`"`)
		h.Set("Content-Type", p.mediaType)
		w, err := mw.CreatePart(h)
		if err != nil {
			c.t.Fatal(err)
		}
		if _, err := w.Write(p.data); err != nil {
			c.t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		c.t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req)
}

func (c *client) state() editor.State {
	c.t.Helper()
	rec := c.do(httptest.NewRequest(http.MethodGet, "/api/state", nil))
	return decodeState(c.t, rec)
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) editor.State {
	t.Helper()
	var st editor.State
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode state %q: %v", rec.Body.String(), err)
	}
	return st
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 0x20, G: 0x80, B: 0xC0, A: 0xFF})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestSetupRequiresSessionSecret(t *testing.T) {
	a := New(Config{Style: testStyle()})
	if err := a.Setup(); err == nil {
		t.Fatal("expected error without SessionSecret")
	}
}

func TestSetupRejectsMissingStyleFile(t *testing.T) {
	a := New(Config{SessionSecret: "s", StyleFile: "does/not/exist.yaml"})
	if err := a.Setup(); err == nil {
		t.Fatal("expected error for missing style file")
	}
}

func TestHomeShowsDropZone(t *testing.T) {
	a := newTestApp(t, Config{}, WithClipboard(&clipboard.Memory{}))
	c := newClient(t, a)
	rec := c.do(httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET / = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Paste your screenshots") || !strings.Contains(body, "Changelog image yassifier") {
		t.Fatalf("home page = %q", body)
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control = %q", got)
	}
}

func TestPasteRendersCanvas(t *testing.T) {
	a := newTestApp(t, Config{}, WithClipboard(&clipboard.Memory{}))
	c := newClient(t, a)

	rec := c.upload("/api/paste",
		part{"item", "text/plain", []byte("hello")},
		part{"item", "image/png", testPNG(t, 30, 20)},
	)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /api/paste = %d %s", rec.Code, rec.Body.String())
	}
	st := decodeState(t, rec)
	if !st.HasImage || st.Width != 30 || st.Height != 20 {
		t.Fatalf("state = %+v", st)
	}

	rec = c.do(httptest.NewRequest(http.MethodGet, "/api/canvas.png", nil))
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("GET /api/canvas.png = %d %s", rec.Code, rec.Header().Get("Content-Type"))
	}
	img, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatalf("canvas is not a PNG: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 150, 82) {
		t.Fatalf("canvas bounds = %v", img.Bounds())
	}

	rec = c.do(httptest.NewRequest(http.MethodGet, "/api/download", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/download = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="styled-image.png"` {
		t.Errorf("Content-Disposition = %q", got)
	}
}

func TestPasteNonImageIsIgnored(t *testing.T) {
	a := newTestApp(t, Config{})
	c := newClient(t, a)
	rec := c.upload("/api/paste", part{"item", "text/html", []byte("<b>hi</b>")})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("POST /api/paste = %d, want 204", rec.Code)
	}
	if c.state().HasImage {
		t.Fatal("non-image paste loaded an image")
	}
	rec = c.do(httptest.NewRequest(http.MethodGet, "/api/canvas.png", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("GET /api/canvas.png = %d, want 404", rec.Code)
	}
}

func TestDropMalformedImage(t *testing.T) {
	a := newTestApp(t, Config{})
	c := newClient(t, a)
	rec := c.upload("/api/drop", part{"file", "image/png", []byte("not really a png")})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("POST /api/drop = %d, want 422", rec.Code)
	}
	var body apiError
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body.Error == "" {
		t.Fatalf("error body = %q", rec.Body.String())
	}
	st := c.state()
	if st.HasImage || st.Notice == "" {
		t.Fatalf("state = %+v", st)
	}
}

func TestDropSniffsMissingMediaType(t *testing.T) {
	a := newTestApp(t, Config{})
	c := newClient(t, a)
	rec := c.upload("/api/drop", part{"file", "application/octet-stream", testPNG(t, 8, 8)})
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /api/drop = %d %s", rec.Code, rec.Body.String())
	}
}

func TestDragDropDisabled(t *testing.T) {
	a := newTestApp(t, Config{DisableDragDrop: true})
	c := newClient(t, a)
	rec := c.upload("/api/drop", part{"file", "image/png", testPNG(t, 8, 8)})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("POST /api/drop = %d, want 204", rec.Code)
	}
	rec = c.upload("/api/paste", part{"item", "image/png", testPNG(t, 8, 8)})
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /api/paste = %d, want 200", rec.Code)
	}
}

func TestDragToggle(t *testing.T) {
	a := newTestApp(t, Config{})
	c := newClient(t, a)
	drag := func(state string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/drag", strings.NewReader("state="+state))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return c.do(req)
	}
	if st := decodeState(t, drag("over")); !st.Dragging {
		t.Fatal("drag over did not set dragging")
	}
	if st := decodeState(t, drag("leave")); st.Dragging {
		t.Fatal("drag leave did not clear dragging")
	}
	if rec := drag("sideways"); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad drag state = %d, want 400", rec.Code)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	a := newTestApp(t, Config{})
	alice := newClient(t, a)
	bob := newClient(t, a)
	if rec := alice.upload("/api/paste", part{"item", "image/png", testPNG(t, 8, 8)}); rec.Code != http.StatusOK {
		t.Fatalf("paste = %d", rec.Code)
	}
	if bob.state().HasImage {
		t.Fatal("second session sees the first session's image")
	}
	if a.Workspace.Len() != 2 {
		t.Fatalf("workspace holds %d editors, want 2", a.Workspace.Len())
	}
}

func TestCopy(t *testing.T) {
	mem := &clipboard.Memory{}
	a := newTestApp(t, Config{}, WithClipboard(mem))
	c := newClient(t, a)

	rec := c.do(httptest.NewRequest(http.MethodPost, "/api/copy", nil))
	if rec.Code != http.StatusConflict {
		t.Fatalf("copy without image = %d, want 409", rec.Code)
	}

	c.upload("/api/paste", part{"item", "image/png", testPNG(t, 8, 8)})
	rec = c.do(httptest.NewRequest(http.MethodPost, "/api/copy", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("copy = %d %s", rec.Code, rec.Body.String())
	}
	if !decodeState(t, rec).Copied {
		t.Fatal("copied indicator not set")
	}
	data, err := mem.ReadImage()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Fatalf("clipboard holds no PNG: %v", err)
	}
}

func TestCopyFailure(t *testing.T) {
	a := newTestApp(t, Config{}, WithClipboard(failingClipboard{}))
	c := newClient(t, a)
	c.upload("/api/paste", part{"item", "image/png", testPNG(t, 8, 8)})
	rec := c.do(httptest.NewRequest(http.MethodPost, "/api/copy", nil))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("copy = %d, want 502", rec.Code)
	}
	if c.state().Copied {
		t.Fatal("failed copy set the indicator")
	}
}

func TestPostWithoutCSRFIsForbidden(t *testing.T) {
	a := newTestApp(t, Config{})
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/copy", nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("POST without token = %d, want 403", rec.Code)
	}
}

func TestUploadRateLimit(t *testing.T) {
	a := newTestApp(t, Config{UploadsPerMinute: 1})
	c := newClient(t, a)
	c.upload("/api/paste", part{"item", "image/png", testPNG(t, 8, 8)})
	rec := c.upload("/api/paste", part{"item", "image/png", testPNG(t, 8, 8)})
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second upload = %d, want 429", rec.Code)
	}
}

// hugePNG declares a w x h image in a few dozen bytes.
func hugePNG(w, h uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	chunk := func(typ string, data []byte) {
		_ = binary.Write(&buf, binary.BigEndian, uint32(len(data)))
		buf.WriteString(typ)
		buf.Write(data)
		_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(append([]byte(typ), data...)))
	}
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], w)
	binary.BigEndian.PutUint32(ihdr[4:], h)
	ihdr[8], ihdr[9] = 8, 6
	chunk("IHDR", ihdr)
	chunk("IEND", nil)
	return buf.Bytes()
}

func TestPasteRejectsPixelBomb(t *testing.T) {
	a := newTestApp(t, Config{})
	c := newClient(t, a)
	c.upload("/api/paste", part{"item", "image/png", testPNG(t, 8, 8)})

	rec := c.upload("/api/paste", part{"item", "image/png", hugePNG(40000, 40000)})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("POST /api/paste = %d, want 422", rec.Code)
	}
	st := c.state()
	if !st.HasImage || st.Width != 8 || st.Notice == "" {
		t.Fatalf("state = %+v", st)
	}
}

func TestUploadTooLarge(t *testing.T) {
	a := newTestApp(t, Config{MaxUploadSize: 64})
	c := newClient(t, a)
	rec := c.upload("/api/paste", part{"item", "image/png", bytes.Repeat([]byte{1}, 512)})
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("upload = %d, want 413", rec.Code)
	}
}

func TestNotFoundPage(t *testing.T) {
	a := newTestApp(t, Config{})
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("GET /nope = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Page not found") {
		t.Fatalf("404 body = %q", rec.Body.String())
	}
}

func TestEditorScript(t *testing.T) {
	a := newTestApp(t, Config{})
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/public/editor.js", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /public/editor.js = %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !bytes.Contains(body, []byte(`addEventListener("paste"`)) {
		t.Fatal("editor.js missing paste listener")
	}
}

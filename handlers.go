package shotstyle

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/shotstyle/editor"
	"github.com/eringen/shotstyle/render"
	"github.com/eringen/shotstyle/views"
)

// apiError is the JSON body of failed API calls.
type apiError struct {
	Error string `json:"error"`
}

func (a *App) handleHome(c echo.Context) error {
	ed, err := a.editorFor(c)
	if err != nil {
		return err
	}
	st := ed.State()
	return renderPage(c, http.StatusOK, views.Page(views.PageData{
		Name:       a.Config.Name,
		CSRFToken:  CsrfToken(c),
		HasImage:   st.HasImage,
		Generation: st.Generation,
		Copied:     st.Copied,
		DragDrop:   st.DragDrop,
		Notice:     st.Notice,
		Width:      a.Renderer.Style().CanvasWidth,
		Height:     a.Renderer.Style().CanvasHeight,
	}))
}

func (a *App) handleState(c echo.Context) error {
	ed, err := a.editorFor(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ed.State())
}

func (a *App) handlePaste(c echo.Context) error {
	return a.handleUpload(c, pasteField, func(ed *editor.Editor, items []editor.Item) (bool, error) {
		return ed.Paste(c.Request().Context(), items)
	})
}

func (a *App) handleDrop(c echo.Context) error {
	return a.handleUpload(c, dropField, func(ed *editor.Editor, items []editor.Item) (bool, error) {
		return ed.Drop(c.Request().Context(), items)
	})
}

// handleUpload answers 204 when the payload held no image, 422 when the image
// could not be decoded and the new state otherwise.
func (a *App) handleUpload(c echo.Context, field string, load func(*editor.Editor, []editor.Item) (bool, error)) error {
	if !a.uploadLimiter.Allow(c.RealIP()) {
		return c.JSON(http.StatusTooManyRequests, apiError{"Too many uploads. Try again later."})
	}
	ed, err := a.editorFor(c)
	if err != nil {
		return err
	}
	items, err := a.readItems(c, field)
	if err != nil {
		if errors.Is(err, errTooLarge) {
			return c.JSON(http.StatusRequestEntityTooLarge, apiError{"Image too large."})
		}
		return c.JSON(http.StatusBadRequest, apiError{err.Error()})
	}

	ok, err := load(ed, items)
	switch {
	case errors.Is(err, render.ErrDecode):
		return c.JSON(http.StatusUnprocessableEntity, apiError{ed.State().Notice})
	case err != nil:
		return err
	case !ok:
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, ed.State())
}

func (a *App) handleDrag(c echo.Context) error {
	ed, err := a.editorFor(c)
	if err != nil {
		return err
	}
	switch c.FormValue("state") {
	case "over":
		ed.DragOver()
	case "leave":
		ed.DragLeave()
	default:
		return c.JSON(http.StatusBadRequest, apiError{`state must be "over" or "leave"`})
	}
	return c.JSON(http.StatusOK, ed.State())
}

func (a *App) handleCanvas(c echo.Context) error {
	ed, err := a.editorFor(c)
	if err != nil {
		return err
	}
	data, _, err := ed.Download()
	if errors.Is(err, editor.ErrNoImage) {
		return c.NoContent(http.StatusNotFound)
	}
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "image/png", data)
}

func (a *App) handleDownload(c echo.Context) error {
	ed, err := a.editorFor(c)
	if err != nil {
		return err
	}
	data, name, err := ed.Download()
	if errors.Is(err, editor.ErrNoImage) {
		return c.NoContent(http.StatusNotFound)
	}
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Blob(http.StatusOK, "image/png", data)
}

func (a *App) handleCopy(c echo.Context) error {
	ed, err := a.editorFor(c)
	if err != nil {
		return err
	}
	err = ed.Copy(c.Request().Context())
	switch {
	case errors.Is(err, editor.ErrNoImage):
		return c.JSON(http.StatusConflict, apiError{"Paste an image first."})
	case err != nil:
		// Already logged by the editor.
		return c.JSON(http.StatusBadGateway, apiError{"Failed to copy image to clipboard."})
	}
	return c.JSON(http.StatusOK, ed.State())
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = renderPage(c, http.StatusNotFound, views.NotFound(a.Config.Name))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = renderPage(c, code, views.ServerError(a.Config.Name))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}

// renderPage buffers a templ component so a failed render still yields a
// clean error response.
func renderPage(c echo.Context, code int, cmp templ.Component) error {
	var buf bytes.Buffer
	if err := cmp.Render(c.Request().Context(), &buf); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return c.HTMLBlob(code, buf.Bytes())
}

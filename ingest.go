package shotstyle

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/shotstyle/editor"
)

const (
	pasteField = "item"
	dropField  = "file"
	// maxItems caps how many clipboard items or files one request may carry.
	maxItems = 8
)

var errTooLarge = errors.New("payload too large")

// readItems reads the multipart parts named field as editor items. The
// media type comes from each part's header, falling back to sniffing.
func (a *App) readItems(c echo.Context, field string) ([]editor.Item, error) {
	req := c.Request()
	req.Body = http.MaxBytesReader(c.Response(), req.Body, a.Config.MaxUploadSize*maxItems + 1<<20)

	form, err := c.MultipartForm()
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, errTooLarge
		}
		return nil, fmt.Errorf("parse upload: %w", err)
	}
	defer form.RemoveAll()

	files := form.File[field]
	if len(files) > maxItems {
		files = files[:maxItems]
	}
	items := make([]editor.Item, 0, len(files))
	for _, fh := range files {
		if fh.Size > a.Config.MaxUploadSize {
			return nil, errTooLarge
		}
		data, err := readPart(fh)
		if err != nil {
			return nil, err
		}
		mediaType := fh.Header.Get(echo.HeaderContentType)
		if mediaType == "" || mediaType == echo.MIMEOctetStream {
			mediaType = http.DetectContentType(data)
		}
		items = append(items, editor.Item{MediaType: mediaType, Data: data})
	}
	return items, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read upload %s: %w", fh.Filename, err)
	}
	return data, nil
}

// Package clipboard reads and writes PNG images on the system clipboard.
package clipboard

import (
	"errors"
	"fmt"
	"sync"

	"golang.design/x/clipboard"
)

// ErrEmpty is returned by ReadImage when the clipboard holds no image.
var ErrEmpty = errors.New("clipboard: no image on clipboard")

var (
	initOnce sync.Once
	initErr  error
)

// System is the host clipboard. The zero value is ready to use; the
// platform clipboard is initialized on first access.
type System struct{}

func ready() error {
	initOnce.Do(func() {
		// Init panics in builds without cgo.
		defer func() {
			if r := recover(); r != nil {
				initErr = fmt.Errorf("clipboard: init: %v", r)
			}
		}()
		if err := clipboard.Init(); err != nil {
			initErr = fmt.Errorf("clipboard: init: %w", err)
		}
	})
	return initErr
}

// Available reports whether the host clipboard can be used, for example
// false on a headless Linux box without X11.
func (System) Available() error {
	return ready()
}

// WriteImage places png on the clipboard as image/png.
func (System) WriteImage(png []byte) error {
	if err := ready(); err != nil {
		return err
	}
	clipboard.Write(clipboard.FmtImage, png)
	return nil
}

// ReadImage returns the PNG image currently on the clipboard.
func (System) ReadImage() ([]byte, error) {
	if err := ready(); err != nil {
		return nil, err
	}
	data := clipboard.Read(clipboard.FmtImage)
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	return data, nil
}

// Memory is an in-process clipboard, used when the host has none.
type Memory struct {
	mu   sync.Mutex
	data []byte
}

// WriteImage stores png.
func (m *Memory) WriteImage(png []byte) error {
	m.mu.Lock()
	m.data = append([]byte(nil), png...)
	m.mu.Unlock()
	return nil
}

// ReadImage returns the last stored image.
func (m *Memory) ReadImage() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.data) == 0 {
		return nil, ErrEmpty
	}
	return append([]byte(nil), m.data...), nil
}

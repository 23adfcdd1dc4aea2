// Package render paints a screenshot onto a fixed-size canvas with padding,
// a rounded-corner mask, a soft drop shadow and a thin border.
//
// Rendering is deterministic: the same Style and source image always produce
// a pixel-identical canvas.
package render

import (
	"errors"
	"fmt"
	"image/color"
)

var (
	// ErrEmptyImage is returned for images with a non-positive width or height.
	ErrEmptyImage = errors.New("render: image has no pixels")
	// ErrDecode wraps every failure to decode a source image.
	ErrDecode = errors.New("render: decode image")
	// ErrTooManyPixels is returned, wrapped in ErrDecode, for images whose
	// declared size exceeds Style.MaxPixels.
	ErrTooManyPixels = errors.New("render: image exceeds pixel limit")
)

// DefaultMaxPixels caps decoded source images at 50 megapixels.
const DefaultMaxPixels = 50_000_000

// Style holds the visual constants of the canvas. It is passed by value and
// never mutated by the renderer.
type Style struct {
	CanvasWidth  int
	CanvasHeight int
	Padding      float64
	CornerRadius float64

	Background color.NRGBA

	ShadowColor   color.NRGBA
	ShadowBlur    float64
	ShadowOffsetX float64
	ShadowOffsetY float64

	BorderColor color.NRGBA
	BorderWidth float64

	// MaxPixels is the largest width*height accepted from a source image.
	// Zero means DefaultMaxPixels.
	MaxPixels int
}

// DefaultStyle returns the 1500x824 off-white canvas with a 60px padding,
// 18px corners, an 8% black shadow (blur 16, offset 0,4) and a 1px 8% black
// border.
func DefaultStyle() Style {
	return Style{
		CanvasWidth:   1500,
		CanvasHeight:  824,
		Padding:       60,
		CornerRadius:  18,
		Background:    color.NRGBA{R: 0xF8, G: 0xF5, B: 0xF0, A: 0xFF},
		ShadowColor:   color.NRGBA{A: alpha(0.08)},
		ShadowBlur:    16,
		ShadowOffsetX: 0,
		ShadowOffsetY: 4,
		BorderColor:   color.NRGBA{A: alpha(0.08)},
		BorderWidth:   1,
		MaxPixels:     DefaultMaxPixels,
	}
}

// Validate reports whether the style can produce a canvas.
func (s Style) Validate() error {
	switch {
	case s.CanvasWidth <= 0 || s.CanvasHeight <= 0:
		return fmt.Errorf("render: canvas size %dx%d must be positive", s.CanvasWidth, s.CanvasHeight)
	case s.Padding < 0:
		return fmt.Errorf("render: padding %g must not be negative", s.Padding)
	case s.availableWidth() <= 0 || s.availableHeight() <= 0:
		return fmt.Errorf("render: padding %g leaves no drawable area on a %dx%d canvas",
			s.Padding, s.CanvasWidth, s.CanvasHeight)
	case s.CornerRadius < 0:
		return fmt.Errorf("render: corner radius %g must not be negative", s.CornerRadius)
	case s.ShadowBlur < 0:
		return fmt.Errorf("render: shadow blur %g must not be negative", s.ShadowBlur)
	case s.BorderWidth < 0:
		return fmt.Errorf("render: border width %g must not be negative", s.BorderWidth)
	case s.MaxPixels < 0:
		return fmt.Errorf("render: max pixels %d must not be negative", s.MaxPixels)
	}
	return nil
}

func (s Style) maxPixels() int {
	if s.MaxPixels == 0 {
		return DefaultMaxPixels
	}
	return s.MaxPixels
}

func (s Style) availableWidth() float64 {
	return float64(s.CanvasWidth) - 2*s.Padding
}

func (s Style) availableHeight() float64 {
	return float64(s.CanvasHeight) - 2*s.Padding
}

// alpha converts a CSS opacity in [0,1] to an 8-bit alpha.
func alpha(opacity float64) uint8 {
	return uint8(opacity*255 + 0.5)
}

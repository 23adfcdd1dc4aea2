package render

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Renderer paints source images with a fixed Style.
type Renderer struct {
	style Style
}

// NewRenderer validates style and returns a Renderer that uses it.
func NewRenderer(style Style) (*Renderer, error) {
	if err := style.Validate(); err != nil {
		return nil, err
	}
	return &Renderer{style: style}, nil
}

// Style returns the renderer's style.
func (r *Renderer) Style() Style {
	return r.style
}

// Render repaints a full canvas for src. The layering order is fixed:
// background, shadow and shape fill, the image clipped to the shape, then the
// unclipped border.
func (r *Renderer) Render(src image.Image) (*image.RGBA, Layout, error) {
	s := r.style
	sb := src.Bounds()
	layout, err := ComputeLayout(s, sb.Dx(), sb.Dy())
	if err != nil {
		return nil, Layout{}, err
	}

	canvas := image.NewRGBA(image.Rect(0, 0, s.CanvasWidth, s.CanvasHeight))
	bounds := canvas.Bounds()
	draw.Draw(canvas, bounds, image.NewUniform(s.Background), image.Point{}, draw.Src)

	shape := rect{layout.X, layout.Y, layout.Width, layout.Height}
	radius := layout.radius(s.CornerRadius)

	r.drawShadow(canvas, shape, radius)

	clip := fillMask(bounds, shape, radius)
	draw.DrawMask(canvas, bounds, image.NewUniform(s.Background), image.Point{}, clip, image.Point{}, draw.Over)

	s2d := f64.Aff3{
		layout.Scale, 0, layout.X - float64(sb.Min.X)*layout.Scale,
		0, layout.Scale, layout.Y - float64(sb.Min.Y)*layout.Scale,
	}
	draw.CatmullRom.Transform(canvas, s2d, src, sb, draw.Over, &draw.Options{
		DstMask:  clip,
		DstMaskP: bounds.Min,
	})

	if s.BorderWidth > 0 && s.BorderColor.A > 0 {
		border := strokeMask(bounds, shape, radius, s.BorderWidth)
		draw.DrawMask(canvas, bounds, image.NewUniform(s.BorderColor), image.Point{}, border, bounds.Min, draw.Over)
	}

	return canvas, layout, nil
}

// drawShadow composites the blurred, offset shape in the shadow color.
// The blur sigma is half the blur radius, as in CSS and canvas shadows.
func (r *Renderer) drawShadow(canvas *image.RGBA, shape rect, radius float64) {
	s := r.style
	if s.ShadowColor.A == 0 {
		return
	}
	sigma := s.ShadowBlur / 2
	shadow := shape.offset(s.ShadowOffsetX, s.ShadowOffsetY)
	area := shadow.bounds(int(math.Ceil(3*sigma)) + 2)

	mask := fillMask(area, shadow, radius)
	var blurred image.Image = mask
	mp := area.Min
	if sigma > 0 {
		// imaging returns a zero-origin image.
		blurred = imaging.Blur(mask, sigma)
		mp = image.Point{}
	}
	draw.DrawMask(canvas, area, image.NewUniform(s.ShadowColor), image.Point{}, blurred, mp, draw.Over)
}

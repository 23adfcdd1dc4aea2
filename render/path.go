package render

import (
	"image"
	"math"

	"golang.org/x/image/vector"
)

// rect is a float rectangle in canvas coordinates.
type rect struct {
	x, y, w, h float64
}

func (r rect) offset(dx, dy float64) rect {
	return rect{r.x + dx, r.y + dy, r.w, r.h}
}

// inset shrinks r by d on every side; a negative d grows it.
func (r rect) inset(d float64) rect {
	return rect{r.x + d, r.y + d, r.w - 2*d, r.h - 2*d}
}

// bounds returns the smallest integer rectangle covering r grown by pad.
func (r rect) bounds(pad int) image.Rectangle {
	return image.Rect(
		int(math.Floor(r.x))-pad,
		int(math.Floor(r.y))-pad,
		int(math.Ceil(r.x+r.w))+pad,
		int(math.Ceil(r.y+r.h))+pad,
	)
}

// roundedRect adds a closed rounded-rectangle subpath to z, translated by
// -origin. Corners are quadratic curves with their control point on the
// rectangle corner. With reverse set the subpath winds counter-clockwise so
// it cuts a hole out of an enclosing clockwise subpath.
func roundedRect(z *vector.Rasterizer, origin image.Point, r rect, radius float64, reverse bool) {
	if r.w <= 0 || r.h <= 0 {
		return
	}
	radius = math.Max(0, math.Min(radius, math.Min(r.w, r.h)/2))

	ox, oy := float64(origin.X), float64(origin.Y)
	x0, y0 := r.x-ox, r.y-oy
	x1, y1 := x0+r.w, y0+r.h
	pt := func(x, y float64) (float32, float32) { return float32(x), float32(y) }

	if !reverse {
		z.MoveTo(pt(x0+radius, y0))
		z.LineTo(pt(x1-radius, y0))
		quad(z, x1, y0, x1, y0+radius)
		z.LineTo(pt(x1, y1-radius))
		quad(z, x1, y1, x1-radius, y1)
		z.LineTo(pt(x0+radius, y1))
		quad(z, x0, y1, x0, y1-radius)
		z.LineTo(pt(x0, y0+radius))
		quad(z, x0, y0, x0+radius, y0)
	} else {
		z.MoveTo(pt(x0+radius, y0))
		quad(z, x0, y0, x0, y0+radius)
		z.LineTo(pt(x0, y1-radius))
		quad(z, x0, y1, x0+radius, y1)
		z.LineTo(pt(x1-radius, y1))
		quad(z, x1, y1, x1, y1-radius)
		z.LineTo(pt(x1, y0+radius))
		quad(z, x1, y0, x1-radius, y0)
	}
	z.ClosePath()
}

func quad(z *vector.Rasterizer, bx, by, cx, cy float64) {
	z.QuadTo(float32(bx), float32(by), float32(cx), float32(cy))
}

// fillMask rasterizes the rounded rectangle into an alpha mask covering area.
func fillMask(area image.Rectangle, r rect, radius float64) *image.Alpha {
	z := vector.NewRasterizer(area.Dx(), area.Dy())
	roundedRect(z, area.Min, r, radius, false)
	return drawMask(z, area)
}

// strokeMask rasterizes a border of the given width centered on the rounded
// rectangle outline.
func strokeMask(area image.Rectangle, r rect, radius, width float64) *image.Alpha {
	z := vector.NewRasterizer(area.Dx(), area.Dy())
	half := width / 2
	roundedRect(z, area.Min, r.inset(-half), radius+half, false)
	roundedRect(z, area.Min, r.inset(half), radius-half, true)
	return drawMask(z, area)
}

func drawMask(z *vector.Rasterizer, area image.Rectangle) *image.Alpha {
	mask := image.NewAlpha(area)
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	return mask
}

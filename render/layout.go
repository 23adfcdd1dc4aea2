package render

import "math"

// Layout is the geometry of the scaled image on the canvas.
type Layout struct {
	Scale  float64
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// ComputeLayout fits an imgW x imgH image into the padded canvas area with a
// uniform scale and centers it. Images smaller than the area are scaled up.
func ComputeLayout(s Style, imgW, imgH int) (Layout, error) {
	if imgW <= 0 || imgH <= 0 {
		return Layout{}, ErrEmptyImage
	}
	scale := math.Min(s.availableWidth()/float64(imgW), s.availableHeight()/float64(imgH))
	w := float64(imgW) * scale
	h := float64(imgH) * scale
	return Layout{
		Scale:  scale,
		X:      (float64(s.CanvasWidth) - w) / 2,
		Y:      (float64(s.CanvasHeight) - h) / 2,
		Width:  w,
		Height: h,
	}, nil
}

// radius clamps r so that opposite corners never overlap.
func (l Layout) radius(r float64) float64 {
	return math.Min(r, math.Min(l.Width, l.Height)/2)
}

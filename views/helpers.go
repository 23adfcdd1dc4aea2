package views

import "strconv"

// canvasURL cache-busts the canvas image per published generation.
func canvasURL(generation uint64) string {
	return "/api/canvas.png?v=" + strconv.FormatUint(generation, 10)
}

func copyLabel(copied bool) string {
	if copied {
		return "Copied!"
	}
	return "Copy image"
}

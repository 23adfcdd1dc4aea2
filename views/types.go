package views

// PageData carries the editor state into the page template. It mirrors
// editor.State so views stay free of server imports.
type PageData struct {
	Name       string // page title and heading
	CSRFToken  string
	HasImage   bool
	Generation uint64 // cache-busts the canvas image URL
	Copied     bool
	DragDrop   bool
	Notice     string
	Width      int // canvas size, for the img aspect ratio
	Height     int
}

package views

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func renderString(t *testing.T, d PageData) string {
	t.Helper()
	var buf bytes.Buffer
	if err := Page(d).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return buf.String()
}

func TestPageEmptyState(t *testing.T) {
	html := renderString(t, PageData{Name: "Styler", CSRFToken: "tok", DragDrop: true, Width: 1500, Height: 824})
	for _, want := range []string{
		`<title>Styler</title>`,
		`content="tok"`,
		`<section id="dropzone" class="dropzone">`,
		`<section id="preview" hidden>`,
		`drag and drop an image`,
		`Drop to replace image`,
		`<img id="canvas" width="1500" height="824"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestPageWithImage(t *testing.T) {
	html := renderString(t, PageData{Name: "Styler", HasImage: true, Generation: 7, Copied: true, Width: 10, Height: 5})
	for _, want := range []string{
		`<section id="dropzone" class="dropzone" hidden>`,
		`<section id="preview">`,
		`src="/api/canvas.png?v=7"`,
		`>Copied!</button>`,
		`Paste another image to replace`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(html, "Drop to replace image") {
		t.Error("drop overlay shown with drag-and-drop disabled")
	}
}

func TestPageEscapesText(t *testing.T) {
	html := renderString(t, PageData{Name: `<script>x</script>`, Notice: `a & b`})
	if strings.Contains(html, `<script>x</script>`) {
		t.Error("name not escaped")
	}
	if !strings.Contains(html, `a &amp; b`) {
		t.Error("notice not escaped")
	}
}

func TestErrorPages(t *testing.T) {
	var buf bytes.Buffer
	if err := NotFound("Styler").Render(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Page not found") {
		t.Errorf("404 page = %q", buf.String())
	}
	if strings.Contains(buf.String(), "csrf-token") {
		t.Error("error page carries a csrf token meta tag")
	}
	buf.Reset()
	if err := ServerError("Styler").Render(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Something went wrong") {
		t.Errorf("500 page = %q", buf.String())
	}
}

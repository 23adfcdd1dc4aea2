package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/eringen/shotstyle"
	"github.com/eringen/shotstyle/editor"
	"github.com/eringen/shotstyle/watch"
)

// outputSuffix marks files written by watch so they are not styled again.
const outputSuffix = "-styled"

func runWatch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	stylePath := fs.String("style", shotstyle.EnvOr("SHOTSTYLE_STYLE", ""), "YAML style file")
	outDir := fs.String("out", "", "output directory (default: the watched directory)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: shotstyle watch [-style file] [-out dir] <dir>")
	}
	dir := fs.Arg(0)
	if *outDir == "" {
		*outDir = dir
	}

	ed, err := newEditor(*stylePath, false)
	if err != nil {
		return err
	}
	w, err := watch.New(isOutput, dir)
	if err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	defer w.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Watching %s, writing to %s (Ctrl+C to stop)\n", dir, *outDir)
	for {
		select {
		case <-ctx.Done():
			return nil
		case path, ok := <-w.Events:
			if !ok {
				return nil
			}
			out, err := styleFile(ctx, ed, path, *outDir)
			if err != nil {
				logger.Warnf("%v", err)
				continue
			}
			fmt.Printf("Wrote %s\n", out)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warnf("watch: %v", err)
		}
	}
}

// styleFile drops path onto the editor and writes the canvas next to it in
// outDir. It returns the output path.
func styleFile(ctx context.Context, ed *editor.Editor, path, outDir string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	ok, err := ed.Drop(ctx, []editor.Item{{MediaType: mediaType(path, data), Data: data}})
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	if !ok {
		return "", fmt.Errorf("%s: not an image", path)
	}
	png, _, err := ed.Download()
	if err != nil {
		return "", err
	}
	out := outputPath(path, outDir)
	if err := os.WriteFile(out, png, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", out, err)
	}
	return out, nil
}

// mediaType sniffs data, falling back to the extension for formats the
// sniffer does not know, such as TIFF.
func mediaType(path string, data []byte) string {
	mt := http.DetectContentType(data)
	if strings.HasPrefix(mt, "image/") || !watch.IsImageFile(path) {
		return mt
	}
	return "image/" + strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

func outputPath(path, outDir string) string {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outDir, name+outputSuffix+".png")
}

func isOutput(path string) bool {
	base := filepath.Base(path)
	return strings.HasSuffix(strings.TrimSuffix(base, filepath.Ext(base)), outputSuffix)
}

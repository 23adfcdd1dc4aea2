package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/eringen/shotstyle"
	"github.com/eringen/shotstyle/clipboard"
	"github.com/eringen/shotstyle/editor"
	"github.com/eringen/shotstyle/render"
)

// exportFlags are shared by render and paste.
type exportFlags struct {
	style   *string
	out     *string
	copyOut *bool
}

func addExportFlags(fs *flag.FlagSet) exportFlags {
	return exportFlags{
		style:   fs.String("style", shotstyle.EnvOr("SHOTSTYLE_STYLE", ""), "YAML style file"),
		out:     fs.String("o", editor.DownloadName, "output PNG file"),
		copyOut: fs.Bool("copy", false, "also copy the result to the clipboard"),
	}
}

func runRender(args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	f := addExportFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: shotstyle render [-style file] [-o out] [-copy] <image>")
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	ed, err := newEditor(*f.style, *f.copyOut)
	if err != nil {
		return err
	}
	ctx := context.Background()
	if err := ed.Load(ctx, data); err != nil {
		return fmt.Errorf("%s: %w", fs.Arg(0), err)
	}
	return export(ctx, ed, *f.out, *f.copyOut)
}

// newEditor builds an editor for one-shot CLI use. The host clipboard is
// only touched when withClipboard is set.
func newEditor(stylePath string, withClipboard bool) (*editor.Editor, error) {
	style := render.DefaultStyle()
	if stylePath != "" {
		var err error
		if style, err = render.LoadStyle(stylePath); err != nil {
			return nil, err
		}
	}
	r, err := render.NewRenderer(style)
	if err != nil {
		return nil, err
	}
	opts := []editor.Option{editor.WithLogger(logger)}
	if withClipboard {
		opts = append(opts, editor.WithClipboard(clipboard.System{}))
	}
	return editor.New(r, opts...), nil
}

// export writes the current canvas to out and optionally to the clipboard.
func export(ctx context.Context, ed *editor.Editor, out string, copyOut bool) error {
	data, _, err := ed.Download()
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Printf("Wrote %s\n", out)
	if copyOut {
		if err := ed.Copy(ctx); err != nil {
			return err
		}
		fmt.Println("Copied to clipboard")
	}
	return nil
}

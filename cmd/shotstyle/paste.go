package main

import (
	"context"
	"errors"
	"flag"

	"github.com/eringen/shotstyle/clipboard"
	"github.com/eringen/shotstyle/editor"
)

func runPaste(args []string) error {
	fs := flag.NewFlagSet("paste", flag.ContinueOnError)
	f := addExportFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	data, err := clipboard.System{}.ReadImage()
	if err != nil {
		return err
	}
	ed, err := newEditor(*f.style, *f.copyOut)
	if err != nil {
		return err
	}
	ctx := context.Background()
	ok, err := ed.Paste(ctx, []editor.Item{{MediaType: "image/png", Data: data}})
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("no image on the clipboard")
	}
	return export(ctx, ed, *f.out, *f.copyOut)
}

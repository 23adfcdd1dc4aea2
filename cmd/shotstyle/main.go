package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/labstack/gommon/log"
)

// version is set at build time via ldflags.
var version = "dev"

var logger = log.New("shotstyle")

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(os.Args[2:])
	case "render":
		err = runRender(os.Args[2:])
	case "paste":
		err = runPaste(os.Args[2:])
	case "watch":
		err = runWatch(os.Args[2:])
	case "version":
		fmt.Printf("shotstyle %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`shotstyle - Style screenshots for changelogs and docs

Usage:
  shotstyle <command> [arguments]

Commands:
  serve                                 Run the web editor
  render [-style f] [-o out] [-copy] <image>
                                        Style an image file
  paste [-style f] [-o out] [-copy]     Style the image on the clipboard
  watch [-style f] [-out dir] <dir>     Style every image saved into dir
  version                               Print the shotstyle version
  help                                  Show this help message

Environment:
  SHOTSTYLE_ADDR            Listen address for serve (default :3000)
  SHOTSTYLE_SESSION_SECRET  Session cookie secret (random per run when unset)
  SHOTSTYLE_STYLE           Default YAML style file
  SHOTSTYLE_COOKIE_SECURE   Set to true behind HTTPS
  SHOTSTYLE_NO_DRAGDROP     Set to true to accept pasted images only

Examples:
  shotstyle render -o release.png screenshot.png
  shotstyle paste -copy
  shotstyle watch ~/Desktop`)
}

package shotstyle

import "embed"

// EmbeddedAssets contains static assets shipped with the server:
// editor.js, the page script that forwards paste and drop events.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS

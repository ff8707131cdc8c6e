// Package web embeds the HTML templates served by the auth pages.
package web

import "embed"

// Templates holds templates/*.html. layout.html defines the shared
// document shell; every other file defines a "content" block.
//
//go:embed templates/*.html
var Templates embed.FS

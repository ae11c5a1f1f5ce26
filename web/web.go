// Package web embeds the browser client served at /.
package web

import "embed"

//go:embed static
var StaticFiles embed.FS

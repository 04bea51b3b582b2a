// Package web carries the server-rendered templates compiled into the binary.
package web

import "embed"

//go:embed templates/*.html
var Templates embed.FS

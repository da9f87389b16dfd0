// Package static embeds the console stylesheet and script.
package static

import "embed"

// FS holds every file served under /static/.
//
//go:embed console.css console.js
var FS embed.FS

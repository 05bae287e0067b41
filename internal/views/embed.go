// ABOUTME: Embeds the page fragment templates into the binary using go:embed
// ABOUTME: Provides templateFS for parsing templates at startup

package views

import "embed"

//go:embed templates/*.html
var templateFS embed.FS

// ABOUTME: Embeds the console page templates into the binary using go:embed
// ABOUTME: Provides templateFS for parsing the login and shell pages

package console

import "embed"

//go:embed templates/*.html
var templateFS embed.FS

// ABOUTME: Render generation counter for one shell instance (browser tab) of a session
// ABOUTME: Generations only compete within a view, so tabs never supersede each other

package session

import (
	"sync/atomic"

	"github.com/hurricanesoft/hs-console/internal/client"
)

const (
	maxViews     = 16
	maxViewIDLen = 64
)

// View is the render state of one shell instance.
type View struct {
	ID string

	session    *Session
	generation atomic.Uint64
}

// Credentials returns the owning session's credentials.
func (v *View) Credentials() client.Credentials {
	return v.session.Credentials()
}

// NextGeneration starts a new render and returns its generation.
func (v *View) NextGeneration() uint64 {
	return v.generation.Add(1)
}

// CurrentGeneration returns the generation of the most recently started render.
func (v *View) CurrentGeneration() uint64 {
	return v.generation.Load()
}

// ABOUTME: Template rendering for the full console pages
// ABOUTME: The login page and the app shell share base.html

package console

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"

	"github.com/hurricanesoft/hs-console/internal/session"
	"github.com/hurricanesoft/hs-console/internal/views"
)

// Template data types
type loginData struct {
	Title     string
	User      string
	Error     string
	CSRFToken string
}

type shellData struct {
	Title       string
	User        string
	CSRFToken   string
	Active      string
	Nav         []views.NavEntry
	Badges      session.Badges
	InitialPath string
	Loading     string
	// ViewID identifies this shell instance to the render generation check
	ViewID string
}

// BadgeCount returns the count shown on a nav entry's badge.
func (d shellData) BadgeCount(badge string) int {
	switch badge {
	case "msg":
		return d.Badges.Msg
	case "mail":
		return d.Badges.Mail
	}
	return 0
}

const productName = "HurricaneSoft"

func parsePage(name string) (*template.Template, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/base.html", "templates/"+name)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}
	return tmpl, nil
}

// renderLogin renders the login page
func (c *Console) renderLogin(w http.ResponseWriter, status int, data loginData) {
	data.Title = productName + " 登入"
	c.renderPage(w, c.loginTmpl, status, data)
}

// renderShell renders the app shell
func (c *Console) renderShell(w http.ResponseWriter, data shellData) {
	data.Title = productName + " Dashboard"
	c.renderPage(w, c.shellTmpl, http.StatusOK, data)
}

func (c *Console) renderPage(w http.ResponseWriter, tmpl *template.Template, status int, data any) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		c.logger.Error("failed to render page", "template", tmpl.Name(), "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

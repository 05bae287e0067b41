// ABOUTME: Browser console for HurricaneSoft: login, app shell, page fragments, and actions
// ABOUTME: Holds the signed session cookie and CSRF handling; API work is delegated per session

package console

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/hurricanesoft/hs-console/internal/assets"
	"github.com/hurricanesoft/hs-console/internal/auth"
	"github.com/hurricanesoft/hs-console/internal/client"
	"github.com/hurricanesoft/hs-console/internal/dedupe"
	"github.com/hurricanesoft/hs-console/internal/session"
	"github.com/hurricanesoft/hs-console/internal/views"
)

const (
	// SessionCookieName is the name of the session cookie
	SessionCookieName = "hs_console_session"

	// CSRFCookieName is the name of the CSRF token cookie
	CSRFCookieName = "hs_console_csrf"

	// GenerationHeader carries the render generation of a view response.
	GenerationHeader = "X-View-Generation"

	// ViewHeader identifies the shell instance (browser tab) making a request.
	ViewHeader = "X-View-ID"
)

// Login page messages.
const (
	msgMissingCredentials = "請輸入帳號密碼"
	msgLoginFailed        = "登入失敗，請確認帳號密碼"
	msgBadRequest         = "請求無效，請重新整理後再試"
)

// Config holds console configuration
type Config struct {
	// BaseURL is the external URL of the console, shown in logs only
	BaseURL string

	// SessionDuration bounds the session cookie lifetime
	SessionDuration time.Duration
}

// Console handles the browser-facing routes.
type Console struct {
	sessions *session.Supervisor
	router   *views.Router
	api      Mutations
	tokens   auth.SessionTokens
	submits  *dedupe.Cache
	config   Config
	logger   *slog.Logger

	loginTmpl *template.Template
	shellTmpl *template.Template
}

// New creates a console. submits may be nil to disable duplicate-submission checks.
func New(sessions *session.Supervisor, router *views.Router, api Mutations, tokens auth.SessionTokens, submits *dedupe.Cache, cfg Config) (*Console, error) {
	if cfg.SessionDuration <= 0 {
		cfg.SessionDuration = 12 * time.Hour
	}

	c := &Console{
		sessions: sessions,
		router:   router,
		api:      api,
		tokens:   tokens,
		submits:  submits,
		config:   cfg,
		logger:   slog.Default().With("component", "console"),
	}

	var err error
	if c.loginTmpl, err = parsePage("login.html"); err != nil {
		return nil, err
	}
	if c.shellTmpl, err = parsePage("shell.html"); err != nil {
		return nil, err
	}
	return c, nil
}

// RegisterRoutes registers all console routes on the given mux
func (c *Console) RegisterRoutes(mux *http.ServeMux) {
	// Public routes
	mux.HandleFunc("GET /login", c.handleLoginPage)
	mux.HandleFunc("POST /login", c.handleLogin)
	mux.HandleFunc("POST /logout", c.handleLogout)
	mux.Handle("GET /static/", http.StripPrefix("/static/", assets.FileServer()))

	// Session routes
	mux.HandleFunc("GET /{$}", c.requireSession(c.handleShell))
	mux.HandleFunc("GET /view/{page}", c.requireSession(c.handleView))
	mux.HandleFunc("GET /view/{page}/{id}", c.requireSession(c.handleDetail))
	mux.HandleFunc("POST /action/{page}/{op}", c.requireSession(c.handleAction))
	mux.HandleFunc("GET /ws", c.requireSession(c.handleEvents))

	c.logger.Info("console routes registered", "base_url", c.config.BaseURL)
}

// sessionHandler is a handler that runs with a live session.
type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *session.Session)

// requireSession wraps a handler to require a live session
func (c *Console) requireSession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := c.sessionFromRequest(r)
		if err != nil {
			c.toLogin(w, r)
			return
		}
		next(w, r, sess)
	}
}

// sessionFromRequest resolves the session cookie to a live session.
func (c *Console) sessionFromRequest(r *http.Request) (*session.Session, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil, err
	}
	id, err := c.tokens.Verify(cookie.Value)
	if err != nil {
		return nil, err
	}
	sess, ok := c.sessions.Lookup(id)
	if !ok {
		return nil, errors.New("session not found")
	}
	return sess, nil
}

// toLogin sends the browser to the login page. htmx requests get HX-Redirect
// because a plain redirect would be followed inside the fragment swap.
func (c *Console) toLogin(w http.ResponseWriter, r *http.Request) {
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", "/login")
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// unauthenticated ends sess after an upstream 401 and sends the browser to login.
func (c *Console) unauthenticated(w http.ResponseWriter, r *http.Request, sess *session.Session, err error) {
	c.sessions.Expire(sess, err)
	clearCookie(w, SessionCookieName)
	c.toLogin(w, r)
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// ensureCSRFToken returns the CSRF cookie value, setting a new one if absent
func (c *Console) ensureCSRFToken(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(CSRFCookieName)
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}

	token, err := generateSecureToken(32)
	if err != nil {
		c.logger.Error("failed to generate CSRF token", "error", err)
		token = "" // Will fail validation, but won't crash
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
	return token
}

// validateCSRF checks the CSRF token from form against cookie
func (c *Console) validateCSRF(r *http.Request) bool {
	cookie, err := r.Cookie(CSRFCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}

	formToken := r.FormValue("csrf_token")
	if formToken == "" {
		// Also check header for htmx requests
		formToken = r.Header.Get("X-CSRF-Token")
	}

	return formToken != "" && formToken == cookie.Value
}

// setSessionCookie issues the signed cookie for sess
func (c *Console) setSessionCookie(w http.ResponseWriter, r *http.Request, sess *session.Session) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl > c.config.SessionDuration {
		ttl = c.config.SessionDuration
	}
	token, err := c.tokens.Issue(sess.ID, ttl)
	if err != nil {
		return fmt.Errorf("issuing session token: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// handleLoginPage renders the login page
func (c *Console) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	// If already logged in, go to the shell
	if _, err := c.sessionFromRequest(r); err == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	csrfToken := c.ensureCSRFToken(w, r)
	c.renderLogin(w, http.StatusOK, loginData{CSRFToken: csrfToken})
}

// handleLogin probes the submitted credentials and starts a session
func (c *Console) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		c.renderLogin(w, http.StatusBadRequest, loginData{Error: msgBadRequest, CSRFToken: c.ensureCSRFToken(w, r)})
		return
	}

	if !c.validateCSRF(r) {
		c.renderLogin(w, http.StatusForbidden, loginData{Error: msgBadRequest, CSRFToken: c.ensureCSRFToken(w, r)})
		return
	}

	user := r.FormValue("username")
	data := loginData{User: user, CSRFToken: c.ensureCSRFToken(w, r)}

	sess, err := c.sessions.Login(r.Context(), user, r.FormValue("password"))
	if err != nil {
		status := http.StatusUnauthorized
		data.Error = msgLoginFailed
		if errors.Is(err, session.ErrMissingCredentials) {
			status = http.StatusBadRequest
			data.Error = msgMissingCredentials
		}
		c.renderLogin(w, status, data)
		return
	}

	if err := c.setSessionCookie(w, r, sess); err != nil {
		c.logger.Error("failed to set session cookie", "error", err)
		c.sessions.Logout(sess.ID)
		data.Error = msgLoginFailed
		c.renderLogin(w, http.StatusInternalServerError, data)
		return
	}

	c.logger.Info("console login successful", "user", sess.User)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleLogout ends the current session
func (c *Console) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err == nil {
		// Don't block logout on a bad token
		if !c.validateCSRF(r) {
			c.logger.Warn("logout request with invalid CSRF token")
		}
	}

	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if id, err := c.tokens.Verify(cookie.Value); err == nil {
			c.sessions.Logout(id)
		}
	}

	clearCookie(w, SessionCookieName)
	clearCookie(w, CSRFCookieName)

	if isHTMX(r) {
		w.Header().Set("HX-Redirect", "/login")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// handleShell renders the app shell; the content area loads the requested page
func (c *Console) handleShell(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	page := views.ParsePage(r.URL.Query().Get("page"), r.URL.Query())
	initial := "/view/" + page.Nav()
	if q := views.Query(page).Encode(); q != "" {
		initial += "?" + q
	}
	if nf, ok := page.(views.NotFoundPage); ok {
		initial = "/view/" + url.PathEscape(nf.Requested)
	}

	c.renderShell(w, shellData{
		User:        sess.User,
		CSRFToken:   c.ensureCSRFToken(w, r),
		Active:      page.Nav(),
		Nav:         views.Navigation,
		Badges:      sess.Badges(),
		InitialPath: initial,
		Loading:     views.TextLoading,
		ViewID:      uuid.NewString(),
	})
}

// handleView renders one page into the content area
func (c *Console) handleView(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	page := views.ParsePage(r.PathValue("page"), r.URL.Query())
	c.show(w, r, sess, page, views.Chrome{CSRFToken: c.ensureCSRFToken(w, r)})
}

// handleDetail renders a record detail card. Details belong to the page that
// is showing, so they do not start a new generation.
func (c *Console) handleDetail(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	page := views.ParseDetail(r.PathValue("page"), r.PathValue("id"))
	chrome := views.Chrome{CSRFToken: c.ensureCSRFToken(w, r)}

	body, err := c.router.Renderer().Render(r.Context(), sess.Credentials(), page, chrome)
	if err != nil {
		c.renderError(w, r, sess, err)
		return
	}
	writeFragment(w, body)
}

// show renders page through the router and writes it unless a newer render started.
func (c *Console) show(w http.ResponseWriter, r *http.Request, sess *session.Session, page views.Page, chrome views.Chrome) {
	out, err := c.router.Show(r.Context(), sess.View(r.Header.Get(ViewHeader)), page, chrome)
	if err != nil {
		c.renderError(w, r, sess, err)
		return
	}

	w.Header().Set(GenerationHeader, strconv.FormatUint(out.Generation, 10))
	if out.Stale {
		// htmx leaves the target alone on 204
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeFragment(w, out.Body)
}

func (c *Console) renderError(w http.ResponseWriter, r *http.Request, sess *session.Session, err error) {
	if client.IsUnauthenticated(err) {
		c.unauthenticated(w, r, sess, err)
		return
	}
	if r.Context().Err() != nil {
		// The browser went away
		return
	}
	c.logger.Error("failed to render view", "error", err)
	http.Error(w, views.TextError, http.StatusInternalServerError)
}

func writeFragment(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(body)
}

// generateSecureToken creates a cryptographically secure random token
func generateSecureToken(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

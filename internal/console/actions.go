// ABOUTME: Action endpoints: validate a form, perform one API mutation, then reload the page
// ABOUTME: Empty input issues no request and duplicate submissions run at most once

package console

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hurricanesoft/hs-console/internal/client"
	"github.com/hurricanesoft/hs-console/internal/dedupe"
	"github.com/hurricanesoft/hs-console/internal/session"
	"github.com/hurricanesoft/hs-console/internal/views"
)

// Mutations is the part of the upstream client that actions write through.
type Mutations interface {
	AddTodo(ctx context.Context, creds client.Credentials, title string) error
	SetTodoDone(ctx context.Context, creds client.Credentials, id string, done bool) error
	AddMemo(ctx context.Context, creds client.Credentials, title, content string) error
	AddLedgerEntry(ctx context.Context, creds client.Credentials, e client.NewLedgerEntry) error
	AddAnnouncement(ctx context.Context, creds client.Credentials, title, content string) error
	AckAnnouncement(ctx context.Context, creds client.Credentials, id string) error
	SendMessage(ctx context.Context, creds client.Credentials, to, body string) error
	SendMail(ctx context.Context, creds client.Credentials, to, subject, body string) error
	RunHealthChecks(ctx context.Context, creds client.Credentials) ([]client.HealthCheck, error)
}

var (
	errUnknownAction = errors.New("unknown action")
	errEmptyInput    = errors.New("empty input")
)

// Toast texts
const (
	toastAdded     = "已新增"
	toastPublished = "已發佈"
	toastSent      = "已傳送"
	toastReplied   = "已回覆"
	toastMailed    = "已寄出"
	toastChecked   = "已重新檢查"
	toastFailed    = "操作失敗"
)

// mutation is one validated action ready to run.
type mutation struct {
	toast  string
	target string
	run    func(ctx context.Context, api Mutations, creds client.Credentials) error
}

// mutationFor validates form for page/op. errEmptyInput means the form was
// missing a required value and nothing should be sent.
func mutationFor(page, op string, form url.Values) (mutation, error) {
	field := func(name string) string { return strings.TrimSpace(form.Get(name)) }

	switch page + "/" + op {
	case "todo/add":
		title := field("title")
		if title == "" {
			return mutation{}, errEmptyInput
		}
		return mutation{toast: toastAdded, run: func(ctx context.Context, api Mutations, creds client.Credentials) error {
			return api.AddTodo(ctx, creds, title)
		}}, nil

	case "todo/done":
		id := field("id")
		done, err := strconv.ParseBool(field("done"))
		if id == "" || err != nil {
			return mutation{}, errEmptyInput
		}
		return mutation{target: id, run: func(ctx context.Context, api Mutations, creds client.Credentials) error {
			return api.SetTodoDone(ctx, creds, id, done)
		}}, nil

	case "memo/add":
		title, content := field("title"), field("content")
		if title == "" && content == "" {
			return mutation{}, errEmptyInput
		}
		return mutation{toast: toastAdded, run: func(ctx context.Context, api Mutations, creds client.Credentials) error {
			return api.AddMemo(ctx, creds, title, content)
		}}, nil

	case "account/add":
		desc := field("description")
		amount, err := strconv.ParseFloat(field("amount"), 64)
		if desc == "" || err != nil || amount == 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
			return mutation{}, errEmptyInput
		}
		entryType := client.EntryExpense
		if field("type") == client.EntryIncome {
			entryType = client.EntryIncome
		}
		entry := client.NewLedgerEntry{Description: desc, Amount: amount, Type: entryType}
		if d, err := time.ParseInLocation("2006-01-02", field("date"), time.Local); err == nil {
			entry.Date = d
		}
		return mutation{toast: toastAdded, run: func(ctx context.Context, api Mutations, creds client.Credentials) error {
			return api.AddLedgerEntry(ctx, creds, entry)
		}}, nil

	case "announce/add":
		title := field("title")
		if title == "" {
			return mutation{}, errEmptyInput
		}
		content := field("content")
		return mutation{toast: toastPublished, run: func(ctx context.Context, api Mutations, creds client.Credentials) error {
			return api.AddAnnouncement(ctx, creds, title, content)
		}}, nil

	case "announce/ack":
		id := field("id")
		if id == "" {
			return mutation{}, errEmptyInput
		}
		return mutation{target: id, run: func(ctx context.Context, api Mutations, creds client.Credentials) error {
			return api.AckAnnouncement(ctx, creds, id)
		}}, nil

	case "msg/send", "msg/reply":
		to, body := field("to"), field("body")
		if to == "" || body == "" {
			return mutation{}, errEmptyInput
		}
		toast := toastSent
		if op == "reply" {
			toast = toastReplied
		}
		return mutation{toast: toast, run: func(ctx context.Context, api Mutations, creds client.Credentials) error {
			return api.SendMessage(ctx, creds, to, body)
		}}, nil

	case "mail/send":
		to, subject, body := field("to"), field("subject"), field("body")
		if to == "" || body == "" {
			return mutation{}, errEmptyInput
		}
		return mutation{toast: toastMailed, run: func(ctx context.Context, api Mutations, creds client.Credentials) error {
			return api.SendMail(ctx, creds, to, subject, body)
		}}, nil

	case "health/run":
		return mutation{toast: toastChecked, run: func(ctx context.Context, api Mutations, creds client.Credentials) error {
			_, err := api.RunHealthChecks(ctx, creds)
			return err
		}}, nil
	}

	return mutation{}, errUnknownAction
}

// handleAction runs one mutation and answers with the reloaded page
func (c *Console) handleAction(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	if !c.validateCSRF(r) {
		http.Error(w, "invalid CSRF token", http.StatusForbidden)
		return
	}

	pageID, op := r.PathValue("page"), r.PathValue("op")
	m, err := mutationFor(pageID, op, r.PostForm)
	switch {
	case errors.Is(err, errUnknownAction):
		http.NotFound(w, r)
		return
	case errors.Is(err, errEmptyInput):
		// Nothing to submit; leave the page as it is
		w.WriteHeader(http.StatusNoContent)
		return
	}

	key := ""
	if submitID := r.PostFormValue("submit_id"); submitID != "" && c.submits != nil {
		key = dedupe.Key(sess.ID, strings.Join([]string{submitID, pageID, op, m.target}, "|"))
		if !c.submits.Claim(key) {
			c.logger.Debug("dropping duplicate submission", "page", pageID, "op", op)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}

	chrome := views.Chrome{CSRFToken: c.ensureCSRFToken(w, r), Toast: m.toast}
	if err := m.run(r.Context(), c.api, sess.Credentials()); err != nil {
		if key != "" {
			c.submits.Release(key)
		}
		if client.IsUnauthenticated(err) {
			c.unauthenticated(w, r, sess, err)
			return
		}
		c.logger.Warn("action failed", "page", pageID, "op", op, "error", err)
		chrome.Toast, chrome.ToastErr = toastFailed, true
	}

	c.show(w, r, sess, views.ParsePage(pageID, r.PostForm), chrome)
}

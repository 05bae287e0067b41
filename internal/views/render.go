// ABOUTME: Page renderers: fetch from the API, filter locally, and execute the page template
// ABOUTME: Request failures become inline placeholders; authentication failures propagate

package views

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"

	"github.com/hurricanesoft/hs-console/internal/client"
)

// API is the part of the upstream client the renderers read from.
type API interface {
	Dashboard(ctx context.Context, creds client.Credentials) (client.Summary, error)
	ListTodos(ctx context.Context, creds client.Credentials) ([]client.Todo, error)
	ListMemos(ctx context.Context, creds client.Credentials) ([]client.Memo, error)
	ReadMemo(ctx context.Context, creds client.Credentials, id string) (client.Memo, error)
	ListLedger(ctx context.Context, creds client.Credentials) ([]client.LedgerEntry, error)
	ListAnnouncements(ctx context.Context, creds client.Credentials) ([]client.Announcement, error)
	FetchInbox(ctx context.Context, creds client.Credentials) (client.Inbox, error)
	ReadMessage(ctx context.Context, creds client.Credentials, id string) (client.Message, error)
	ListMail(ctx context.Context, creds client.Credentials) ([]client.Message, error)
	ReadMail(ctx context.Context, creds client.Credentials, id string) (client.Message, error)
	HealthStatus(ctx context.Context, creds client.Credentials) ([]client.HealthCheck, error)
}

// Chrome is per-request presentation state that is not fetched from the API.
type Chrome struct {
	CSRFToken string
	Toast     string
	ToastErr  bool
}

// fragment names a template and the data it executes with.
type fragment struct {
	name string
	data any
}

// viewData is what every page template receives.
type viewData struct {
	Nav      string
	SubmitID string
	Chrome
	Data any
}

// Placeholder is the data of the inline error and empty-state template.
type Placeholder struct {
	Message string
}

// Renderer executes page templates against API data.
type Renderer struct {
	api    API
	tmpl   *template.Template
	md     goldmark.Markdown
	now    func() time.Time
	logger *slog.Logger
}

// NewRenderer parses the embedded templates.
func NewRenderer(api API, logger *slog.Logger) (*Renderer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Renderer{
		api:    api,
		md:     goldmark.New(),
		now:    time.Now,
		logger: logger,
	}

	tmpl, err := template.New("views").Funcs(r.funcs()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing view templates: %w", err)
	}
	r.tmpl = tmpl
	return r, nil
}

// Render produces the markup of p. Authentication failures are returned as
// errors; any other API failure renders the page's error placeholder.
func (r *Renderer) Render(ctx context.Context, creds client.Credentials, p Page, chrome Chrome) ([]byte, error) {
	frag, err := p.render(ctx, r, creds)
	if err != nil {
		if client.IsUnauthenticated(err) {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		r.logger.Warn("page fetch failed", "page", p.Nav(), "error", err)
		frag = fragment{name: "placeholder", data: Placeholder{Message: failureText(p, err)}}
	}

	return r.execute(frag, viewData{
		Nav:      p.Nav(),
		SubmitID: uuid.NewString(),
		Chrome:   chrome,
		Data:     frag.data,
	})
}

// Placeholder renders a bare placeholder message, such as the loading text.
func (r *Renderer) Placeholder(msg string) ([]byte, error) {
	return r.execute(fragment{name: "placeholder"}, viewData{Data: Placeholder{Message: msg}})
}

func (r *Renderer) execute(frag fragment, data viewData) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, frag.name, data); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", frag.name, err)
	}
	return buf.Bytes(), nil
}

// Loading and failure texts shown in the content area.
const (
	TextLoading  = "載入中…"
	TextNotFound = "頁面不存在"
	TextError    = "錯誤"
)

func failureText(p Page, err error) string {
	switch p.(type) {
	case DashboardPage:
		return "無法載入儀表板: " + errorDetail(err)
	case HealthPage:
		return "無法取得狀態"
	case TodoPage:
		return TextError + ": " + errorDetail(err)
	default:
		return TextError
	}
}

func errorDetail(err error) string {
	var reqErr *client.RequestError
	if errors.As(err, &reqErr) && reqErr.Status != 0 {
		return fmt.Sprintf("HTTP %d", reqErr.Status)
	}
	return "連線失敗"
}

// Page data types

type dashboardData struct {
	Summary client.Summary
}

type todoData struct {
	Filter  TodoFilter
	Filters []TodoFilter
	Items   []client.Todo
}

type memoData struct {
	Search string
	Items  []client.Memo
}

type accountData struct {
	LedgerSummary
}

type announceData struct {
	Items []client.Announcement
}

type msgData struct {
	Messages []client.Message
}

type healthData struct {
	Checks []client.HealthCheck
}

type mailData struct {
	Search string
	Items  []client.Message
}

type notFoundData struct {
	Placeholder
	Requested string
}

func (DashboardPage) render(ctx context.Context, r *Renderer, creds client.Credentials) (fragment, error) {
	s, err := r.api.Dashboard(ctx, creds)
	if err != nil {
		return fragment{}, err
	}
	return fragment{name: "page:dashboard", data: dashboardData{Summary: s}}, nil
}

func (p TodoPage) render(ctx context.Context, r *Renderer, creds client.Credentials) (fragment, error) {
	todos, err := r.api.ListTodos(ctx, creds)
	if err != nil {
		return fragment{}, err
	}
	f := parseTodoFilter(string(p.Filter))
	return fragment{name: "page:todo", data: todoData{
		Filter:  f,
		Filters: []TodoFilter{TodoAll, TodoPending, TodoDone},
		Items:   FilterTodos(todos, f),
	}}, nil
}

func (p MemoPage) render(ctx context.Context, r *Renderer, creds client.Credentials) (fragment, error) {
	memos, err := r.api.ListMemos(ctx, creds)
	if err != nil {
		return fragment{}, err
	}
	return fragment{name: "page:memo", data: memoData{Search: p.Search, Items: SearchMemos(memos, p.Search)}}, nil
}

func (p AccountPage) render(ctx context.Context, r *Renderer, creds client.Credentials) (fragment, error) {
	month := p.Month
	if !ValidMonth(month) {
		month = CurrentMonth(r.now())
	}
	entries, err := r.api.ListLedger(ctx, creds)
	if err != nil {
		return fragment{}, err
	}
	return fragment{name: "page:account", data: accountData{SummarizeMonth(entries, month)}}, nil
}

func (AnnouncePage) render(ctx context.Context, r *Renderer, creds client.Credentials) (fragment, error) {
	items, err := r.api.ListAnnouncements(ctx, creds)
	if err != nil {
		return fragment{}, err
	}
	return fragment{name: "page:announce", data: announceData{Items: items}}, nil
}

func (MsgPage) render(ctx context.Context, r *Renderer, creds client.Credentials) (fragment, error) {
	inbox, err := r.api.FetchInbox(ctx, creds)
	if err != nil {
		return fragment{}, err
	}
	return fragment{name: "page:msg", data: msgData{Messages: inbox.Messages}}, nil
}

func (HealthPage) render(ctx context.Context, r *Renderer, creds client.Credentials) (fragment, error) {
	checks, err := r.api.HealthStatus(ctx, creds)
	if err != nil {
		return fragment{}, err
	}
	return fragment{name: "page:health", data: healthData{Checks: checks}}, nil
}

func (p MailPage) render(ctx context.Context, r *Renderer, creds client.Credentials) (fragment, error) {
	mail, err := r.api.ListMail(ctx, creds)
	if err != nil {
		return fragment{}, err
	}
	return fragment{name: "page:mail", data: mailData{Search: p.Search, Items: SearchMail(mail, p.Search)}}, nil
}

func (p NotFoundPage) render(context.Context, *Renderer, client.Credentials) (fragment, error) {
	return fragment{name: "placeholder", data: notFoundData{
		Placeholder: Placeholder{Message: TextNotFound},
		Requested:   p.Requested,
	}}, nil
}

func (p MemoDetail) render(ctx context.Context, r *Renderer, creds client.Credentials) (fragment, error) {
	m, err := r.api.ReadMemo(ctx, creds, p.ID)
	if err != nil {
		return fragment{}, err
	}
	return fragment{name: "detail:memo", data: m}, nil
}

func (p MsgDetail) render(ctx context.Context, r *Renderer, creds client.Credentials) (fragment, error) {
	m, err := r.api.ReadMessage(ctx, creds, p.ID)
	if err != nil {
		return fragment{}, err
	}
	return fragment{name: "detail:msg", data: m}, nil
}

func (p MailDetail) render(ctx context.Context, r *Renderer, creds client.Credentials) (fragment, error) {
	m, err := r.api.ReadMail(ctx, creds, p.ID)
	if err != nil {
		return fragment{}, err
	}
	return fragment{name: "detail:mail", data: m}, nil
}

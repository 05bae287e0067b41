// ABOUTME: Sealed set of console pages and parsing of page identifiers
// ABOUTME: Every variant renders itself, so a page without a renderer does not compile

package views

import (
	"context"
	"net/url"
	"strings"

	"github.com/hurricanesoft/hs-console/internal/client"
)

// Page is one renderable view. The unexported method seals the set to this package.
type Page interface {
	// Nav is the sidebar entry highlighted while the page is shown.
	Nav() string
	render(ctx context.Context, r *Renderer, creds client.Credentials) (fragment, error)
}

// NavEntry is one sidebar link.
type NavEntry struct {
	ID    string
	Label string
	Icon  string
	Badge string // poller badge shown next to the entry, if any
}

// Navigation lists the sidebar entries in display order.
var Navigation = []NavEntry{
	{ID: "dashboard", Label: "儀表板", Icon: "🏠"},
	{ID: "todo", Label: "待辦事項", Icon: "📋"},
	{ID: "memo", Label: "備忘錄", Icon: "📝"},
	{ID: "account", Label: "記帳", Icon: "💰"},
	{ID: "announce", Label: "公告", Icon: "📢"},
	{ID: "msg", Label: "訊息", Icon: "💬", Badge: "msg"},
	{ID: "mail", Label: "郵件", Icon: "📧", Badge: "mail"},
	{ID: "health", Label: "系統健康", Icon: "🏥"},
}

// TodoFilter selects which todos are listed.
type TodoFilter string

const (
	TodoAll     TodoFilter = "all"
	TodoPending TodoFilter = "pending"
	TodoDone    TodoFilter = "done"
)

func parseTodoFilter(s string) TodoFilter {
	switch TodoFilter(s) {
	case TodoPending, TodoDone:
		return TodoFilter(s)
	default:
		return TodoAll
	}
}

type (
	// DashboardPage shows the aggregate summary cards.
	DashboardPage struct{}
	// TodoPage lists todos under a filter.
	TodoPage struct{ Filter TodoFilter }
	// MemoPage lists memos matching an optional search.
	MemoPage struct{ Search string }
	// AccountPage shows one month of the ledger. An empty month means the current one.
	AccountPage struct{ Month string }
	// AnnouncePage lists announcements.
	AnnouncePage struct{}
	// MsgPage shows the internal message inbox.
	MsgPage struct{}
	// HealthPage lists service health checks.
	HealthPage struct{}
	// MailPage lists mail matching an optional search.
	MailPage struct{ Search string }
	// NotFoundPage is shown for unknown page identifiers.
	NotFoundPage struct{ Requested string }

	// MemoDetail is the detail card of one memo.
	MemoDetail struct{ ID string }
	// MsgDetail is the detail card of one message, with a reply form.
	MsgDetail struct{ ID string }
	// MailDetail is the detail card of one mail.
	MailDetail struct{ ID string }
)

func (DashboardPage) Nav() string { return "dashboard" }
func (TodoPage) Nav() string      { return "todo" }
func (MemoPage) Nav() string      { return "memo" }
func (AccountPage) Nav() string   { return "account" }
func (AnnouncePage) Nav() string  { return "announce" }
func (MsgPage) Nav() string       { return "msg" }
func (HealthPage) Nav() string    { return "health" }
func (MailPage) Nav() string      { return "mail" }
func (NotFoundPage) Nav() string  { return "" }
func (MemoDetail) Nav() string    { return "memo" }
func (MsgDetail) Nav() string     { return "msg" }
func (MailDetail) Nav() string    { return "mail" }

// ParsePage maps a page identifier and its query parameters to a Page.
// Unknown identifiers yield NotFoundPage.
func ParsePage(id string, q url.Values) Page {
	switch strings.TrimSpace(id) {
	case "", "dashboard":
		return DashboardPage{}
	case "todo":
		return TodoPage{Filter: parseTodoFilter(q.Get("filter"))}
	case "memo":
		return MemoPage{Search: q.Get("q")}
	case "account":
		return AccountPage{Month: q.Get("month")}
	case "announce":
		return AnnouncePage{}
	case "msg":
		return MsgPage{}
	case "health":
		return HealthPage{}
	case "mail":
		return MailPage{Search: q.Get("q")}
	default:
		return NotFoundPage{Requested: id}
	}
}

// ParseDetail maps a page identifier and record id to a detail Page.
// Pages without details yield NotFoundPage.
func ParseDetail(id, recordID string) Page {
	if recordID == "" {
		return NotFoundPage{Requested: id}
	}
	switch id {
	case "memo":
		return MemoDetail{ID: recordID}
	case "msg":
		return MsgDetail{ID: recordID}
	case "mail":
		return MailDetail{ID: recordID}
	default:
		return NotFoundPage{Requested: id + "/" + recordID}
	}
}

// Query returns the query string that reproduces p through ParsePage.
func Query(p Page) url.Values {
	q := url.Values{}
	switch v := p.(type) {
	case TodoPage:
		if v.Filter != "" && v.Filter != TodoAll {
			q.Set("filter", string(v.Filter))
		}
	case MemoPage:
		if v.Search != "" {
			q.Set("q", v.Search)
		}
	case MailPage:
		if v.Search != "" {
			q.Set("q", v.Search)
		}
	case AccountPage:
		if v.Month != "" {
			q.Set("month", v.Month)
		}
	}
	return q
}

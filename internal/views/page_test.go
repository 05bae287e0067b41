// ABOUTME: Tests for page identifier parsing
// ABOUTME: Unknown ids map to the not-found page and query parameters round-trip

package views

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePage(t *testing.T) {
	tests := []struct {
		id   string
		q    string
		want Page
	}{
		{id: "", want: DashboardPage{}},
		{id: "dashboard", want: DashboardPage{}},
		{id: "todo", want: TodoPage{Filter: TodoAll}},
		{id: "todo", q: "filter=done", want: TodoPage{Filter: TodoDone}},
		{id: "todo", q: "filter=bogus", want: TodoPage{Filter: TodoAll}},
		{id: "memo", q: "q=milk", want: MemoPage{Search: "milk"}},
		{id: "account", q: "month=2024-05", want: AccountPage{Month: "2024-05"}},
		{id: "announce", want: AnnouncePage{}},
		{id: "msg", want: MsgPage{}},
		{id: "health", want: HealthPage{}},
		{id: "mail", q: "q=invoice", want: MailPage{Search: "invoice"}},
		{id: "settings", want: NotFoundPage{Requested: "settings"}},
	}

	for _, tt := range tests {
		t.Run(tt.id+"?"+tt.q, func(t *testing.T) {
			q, err := url.ParseQuery(tt.q)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, ParsePage(tt.id, q))
		})
	}
}

func TestParseDetail(t *testing.T) {
	assert.Equal(t, MemoDetail{ID: "3"}, ParseDetail("memo", "3"))
	assert.Equal(t, MsgDetail{ID: "4"}, ParseDetail("msg", "4"))
	assert.Equal(t, MailDetail{ID: "5"}, ParseDetail("mail", "5"))
	assert.Equal(t, NotFoundPage{Requested: "todo/1"}, ParseDetail("todo", "1"))
	assert.Equal(t, NotFoundPage{Requested: "memo"}, ParseDetail("memo", ""))
}

func TestQueryRoundTrip(t *testing.T) {
	pages := []Page{
		DashboardPage{},
		TodoPage{Filter: TodoPending},
		MemoPage{Search: "a b"},
		AccountPage{Month: "2023-12"},
		MailPage{Search: "x"},
	}
	for _, p := range pages {
		assert.Equal(t, p, ParsePage(p.Nav(), Query(p)))
	}
}

func TestNavigationCoversPages(t *testing.T) {
	for _, entry := range Navigation {
		p := ParsePage(entry.ID, nil)
		assert.NotEqual(t, NotFoundPage{Requested: entry.ID}, p, "nav entry %q has no page", entry.ID)
		assert.Equal(t, entry.ID, p.Nav())
	}
}

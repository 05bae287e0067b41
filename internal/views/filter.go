// ABOUTME: Local filtering and aggregation applied to fetched lists before rendering
// ABOUTME: Todo state filter, memo and mail search, and the monthly ledger summary

package views

import (
	"strings"
	"time"

	"github.com/hurricanesoft/hs-console/internal/client"
)

// FilterTodos keeps the todos matching f.
func FilterTodos(todos []client.Todo, f TodoFilter) []client.Todo {
	if f == TodoAll || f == "" {
		return todos
	}
	out := make([]client.Todo, 0, len(todos))
	for _, t := range todos {
		if t.Done == (f == TodoDone) {
			out = append(out, t)
		}
	}
	return out
}

// SearchMemos keeps memos whose title, or content when the title is empty,
// contains q. An empty q keeps everything.
func SearchMemos(memos []client.Memo, q string) []client.Memo {
	if q == "" {
		return memos
	}
	out := make([]client.Memo, 0, len(memos))
	for _, m := range memos {
		if strings.Contains(firstNonEmpty(m.Title, m.Body), q) {
			out = append(out, m)
		}
	}
	return out
}

// SearchMail keeps mail whose subject, else sender, else body contains q.
// An empty q keeps everything.
func SearchMail(mail []client.Message, q string) []client.Message {
	if q == "" {
		return mail
	}
	out := make([]client.Message, 0, len(mail))
	for _, m := range mail {
		if strings.Contains(firstNonEmpty(m.Subject, m.From, m.Body), q) {
			out = append(out, m)
		}
	}
	return out
}

// LedgerSummary is one month of ledger entries with its totals.
type LedgerSummary struct {
	Month   string
	Entries []client.LedgerEntry
	Income  float64
	Expense float64
}

// Net is income minus expense.
func (s LedgerSummary) Net() float64 {
	return s.Income - s.Expense
}

// SummarizeMonth keeps entries whose date starts with month ("2006-01") and
// sums income and expense over them. Entries of any other type are listed but
// not counted.
func SummarizeMonth(entries []client.LedgerEntry, month string) LedgerSummary {
	s := LedgerSummary{Month: month}
	for _, e := range entries {
		if !strings.HasPrefix(e.Date, month) {
			continue
		}
		s.Entries = append(s.Entries, e)
		switch e.Type {
		case client.EntryIncome:
			s.Income += e.Amount
		case client.EntryExpense:
			s.Expense += e.Amount
		}
	}
	return s
}

// CurrentMonth formats now as a ledger month.
func CurrentMonth(now time.Time) string {
	return now.Format("2006-01")
}

// ValidMonth reports whether s looks like "2006-01".
func ValidMonth(s string) bool {
	_, err := time.Parse("2006-01", s)
	return err == nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// ABOUTME: Tests for local list filtering and the monthly ledger summary
// ABOUTME: Covers todo state filters, first-alias search, and month prefix aggregation

package views

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hurricanesoft/hs-console/internal/client"
)

func TestSummarizeMonth(t *testing.T) {
	entries := []client.LedgerEntry{
		{ID: "1", Description: "salary", Date: "2024-05-01", Type: client.EntryIncome, Amount: 3000},
		{ID: "2", Description: "rent", Date: "2024-05-03 09:00:00", Type: client.EntryExpense, Amount: 1200},
		{ID: "3", Description: "lunch", Date: "2024-05-31", Type: client.EntryExpense, Amount: 12.5},
		{ID: "4", Description: "april bonus", Date: "2024-04-30", Type: client.EntryIncome, Amount: 500},
		{ID: "5", Description: "next year", Date: "2025-05-01", Type: client.EntryExpense, Amount: 99},
		{ID: "6", Description: "undated", Type: client.EntryIncome, Amount: 1},
		{ID: "7", Description: "transfer", Date: "2024-05-10", Type: "transfer", Amount: 40},
	}

	s := SummarizeMonth(entries, "2024-05")

	var ids []string
	for _, e := range s.Entries {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"1", "2", "3", "7"}, ids, "only dates starting with the month")
	assert.Equal(t, 3000.0, s.Income)
	assert.Equal(t, 1212.5, s.Expense)
	assert.Equal(t, 1787.5, s.Net())
	assert.Equal(t, "2024-05", s.Month)
}

func TestSummarizeMonth_Empty(t *testing.T) {
	s := SummarizeMonth(nil, "2024-05")
	assert.Empty(t, s.Entries)
	assert.Zero(t, s.Net())
}

func TestFilterTodos(t *testing.T) {
	todos := []client.Todo{
		{ID: "1", Done: true},
		{ID: "2"},
		{ID: "3", Done: true},
	}

	assert.Len(t, FilterTodos(todos, TodoAll), 3)
	assert.Len(t, FilterTodos(todos, ""), 3)
	assert.Equal(t, []client.Todo{{ID: "2"}}, FilterTodos(todos, TodoPending))
	assert.Equal(t, []client.Todo{{ID: "1", Done: true}, {ID: "3", Done: true}}, FilterTodos(todos, TodoDone))
}

func TestSearchMemos_UsesTitleThenContent(t *testing.T) {
	memos := []client.Memo{
		{ID: "1", Title: "grocery list", Body: "milk"},
		{ID: "2", Title: "", Body: "buy milk"},
		{ID: "3", Title: "other", Body: "milk again"},
	}

	got := SearchMemos(memos, "milk")
	var ids []string
	for _, m := range got {
		ids = append(ids, m.ID)
	}
	// The body is only searched when the title is empty.
	assert.Equal(t, []string{"2"}, ids)
	assert.Len(t, SearchMemos(memos, ""), 3)
}

func TestSearchMail(t *testing.T) {
	mail := []client.Message{
		{ID: "1", Subject: "invoice", From: "acct@example.com"},
		{ID: "2", From: "boss@example.com", Body: "invoice attached"},
		{ID: "3", Body: "your invoice"},
	}

	var ids []string
	for _, m := range SearchMail(mail, "invoice") {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"1", "3"}, ids)

	ids = nil
	for _, m := range SearchMail(mail, "boss") {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"2"}, ids)
}

func TestCurrentMonth(t *testing.T) {
	assert.Equal(t, "2024-05", CurrentMonth(time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC)))
	assert.True(t, ValidMonth("2024-05"))
	assert.False(t, ValidMonth("2024-5-1"))
	assert.False(t, ValidMonth(""))
}

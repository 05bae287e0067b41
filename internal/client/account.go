// ABOUTME: Bookkeeping (ledger) endpoints of the HurricaneSoft API
// ABOUTME: List and add income/expense entries

package client

import (
	"context"
	"fmt"
	"time"
)

// Ledger entry types.
const (
	EntryIncome  = "income"
	EntryExpense = "expense"
)

// LedgerEntry is one bookkeeping record.
type LedgerEntry struct {
	ID          string
	Description string
	Date        string
	Type        string
	Amount      float64
}

// LedgerEntryFromRecord interprets an upstream ledger record.
func LedgerEntryFromRecord(r Record) LedgerEntry {
	return LedgerEntry{
		ID:          r.ID(),
		Description: r.Str("description", "desc", "title", "note"),
		Date:        r.Str("date", "created"),
		Type:        r.Str("type"),
		Amount:      r.Float("amount"),
	}
}

// NewLedgerEntry is the payload for AddLedgerEntry.
type NewLedgerEntry struct {
	Description string
	Amount      float64
	Type        string
	// Date defaults to today when zero.
	Date time.Time
}

// ListLedger fetches all ledger entries.
func (c *Client) ListLedger(ctx context.Context, creds Credentials) ([]LedgerEntry, error) {
	doc, err := c.get(ctx, creds, "/api/account/list")
	if err != nil {
		return nil, err
	}

	recs := doc.List("items")
	entries := make([]LedgerEntry, 0, len(recs))
	for _, r := range recs {
		entries = append(entries, LedgerEntryFromRecord(r))
	}
	return entries, nil
}

// AddLedgerEntry records an entry. Description must be set and amount nonzero.
func (c *Client) AddLedgerEntry(ctx context.Context, creds Credentials, e NewLedgerEntry) error {
	if e.Description == "" {
		return fmt.Errorf("ledger description is required")
	}
	if e.Amount == 0 {
		return fmt.Errorf("ledger amount must be nonzero")
	}
	if e.Type != EntryIncome && e.Type != EntryExpense {
		return fmt.Errorf("ledger type must be %s or %s, got %q", EntryIncome, EntryExpense, e.Type)
	}
	date := e.Date
	if date.IsZero() {
		date = time.Now()
	}
	return c.post(ctx, creds, "/api/account/add", map[string]any{
		"description": e.Description,
		"amount":      e.Amount,
		"type":        e.Type,
		"date":        date.Format("2006-01-02"),
	})
}

package salon

import (
	"sort"
	"strconv"
	"time"
)

// ExpiryState describes how close earned points are to expiring.
type ExpiryState string

const (
	ExpiryExpired ExpiryState = "expired"
	ExpirySoon    ExpiryState = "expiring"
	ExpiryValid   ExpiryState = "valid"
)

const expiryWarnDays = 7

// ExpiryBadge is the expiry hint shown under an earn transaction.
type ExpiryBadge struct {
	State    ExpiryState `json:"state"`
	DaysLeft int         `json:"days_left"`
	Text     string      `json:"text"`
}

// HistoryEntry is one rendered row of the transaction history.
type HistoryEntry struct {
	ID          int64        `json:"id"`
	Description string       `json:"description"`
	Date        string       `json:"date"`
	Amount      string       `json:"amount"`
	Positive    bool         `json:"positive"`
	Expiry      *ExpiryBadge `json:"expiry,omitempty"`
	Remaining   string       `json:"remaining,omitempty"`
}

// HistoryView is the rendered transaction history.
type HistoryView struct {
	Entries []HistoryEntry `json:"entries"`
	Empty   string         `json:"empty,omitempty"`
}

// RenderHistory maps ledger transactions to display rows relative to now.
func RenderHistory(history []Transaction, now time.Time, locale string) HistoryView {
	if len(history) == 0 {
		return HistoryView{Entries: []HistoryEntry{}, Empty: Message("empty.history", locale)}
	}
	entries := make([]HistoryEntry, 0, len(history))
	for _, tx := range history {
		entry := HistoryEntry{
			ID:          tx.ID,
			Description: tx.Description,
			Amount:      signedAmount(tx.Amount),
			Positive:    tx.Amount > 0,
		}
		if created, ok := parseTimestamp(tx.CreatedAt); ok {
			entry.Date = created.Format("02.01.2006")
		}
		if tx.TransactionType == "earn" {
			if expires, ok := parseTimestamp(deref(tx.ExpiresAt)); ok {
				entry.Expiry = expiryBadge(now, expires, locale)
			}
			if tx.RemainingAmount != nil {
				entry.Remaining = formatMessage("history.remaining", locale, *tx.RemainingAmount)
			}
		}
		entries = append(entries, entry)
	}
	return HistoryView{Entries: entries}
}

func expiryBadge(now, expires time.Time, locale string) *ExpiryBadge {
	if expires.Before(now) {
		return &ExpiryBadge{State: ExpiryExpired, Text: Message("expiry.expired", locale)}
	}
	days := daysUntil(now, expires)
	if days <= expiryWarnDays {
		return &ExpiryBadge{
			State:    ExpirySoon,
			DaysLeft: days,
			Text:     formatMessage("expiry.expiring", locale, days, pluralDays(days, locale)),
		}
	}
	return &ExpiryBadge{
		State:    ExpiryValid,
		DaysLeft: days,
		Text:     formatMessage("expiry.valid_until", locale, expires.Format("02.01.2006")),
	}
}

func signedAmount(amount int) string {
	if amount > 0 {
		return "+" + strconv.Itoa(amount)
	}
	return strconv.Itoa(amount)
}

// MergeFeed combines transactions and visits into one list, newest first.
// Entries with equal times keep transactions ahead of visits; entries with
// unreadable times sink to the end.
func MergeFeed(history []Transaction, visits []Visit) []FeedItem {
	feed := make([]FeedItem, 0, len(history)+len(visits))
	for i := range history {
		tx := history[i]
		at, _ := parseTimestamp(tx.CreatedAt)
		feed = append(feed, FeedItem{Kind: FeedTransaction, At: at, Transaction: &tx})
	}
	for i := range visits {
		visit := visits[i]
		at, _ := parseTimestamp(visit.VisitDatetime)
		feed = append(feed, FeedItem{Kind: FeedVisit, At: at, Visit: &visit})
	}
	sort.SliceStable(feed, func(i, j int) bool {
		return feed[i].At.After(feed[j].At)
	})
	return feed
}

package salon

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Record is one admin entity. Each kind has its own concrete type.
type Record interface {
	RecordKind() EntityKind
	RecordKey() string
}

func (User) RecordKind() EntityKind      { return KindUsers }
func (Master) RecordKind() EntityKind    { return KindMasters }
func (Service) RecordKind() EntityKind   { return KindServices }
func (Promotion) RecordKind() EntityKind { return KindPromotions }
func (Broadcast) RecordKind() EntityKind { return KindBroadcasts }
func (BotButton) RecordKind() EntityKind { return KindBotButtons }
func (Setting) RecordKind() EntityKind   { return KindSettings }

func (u User) RecordKey() string      { return strconv.FormatInt(u.ID, 10) }
func (m Master) RecordKey() string    { return strconv.FormatInt(m.ID, 10) }
func (s Service) RecordKey() string   { return strconv.FormatInt(s.ID, 10) }
func (p Promotion) RecordKey() string { return strconv.FormatInt(p.ID, 10) }
func (b Broadcast) RecordKey() string { return strconv.FormatInt(b.ID, 10) }
func (b BotButton) RecordKey() string { return strconv.FormatInt(b.ID, 10) }
func (s Setting) RecordKey() string   { return s.Key }

// DecodeRecord decodes one backend record of kind.
func DecodeRecord(kind EntityKind, raw json.RawMessage) (Record, error) {
	var (
		record Record
		err    error
	)
	switch kind {
	case KindUsers:
		record, err = decodeAs[User](raw)
	case KindMasters:
		record, err = decodeAs[Master](raw)
	case KindServices:
		record, err = decodeAs[Service](raw)
	case KindPromotions:
		record, err = decodeAs[Promotion](raw)
	case KindBroadcasts:
		record, err = decodeAs[Broadcast](raw)
	case KindBotButtons:
		record, err = decodeAs[BotButton](raw)
	case KindSettings:
		record, err = decodeAs[Setting](raw)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("salon: decode %s record: %w", kind, err)
	}
	return record, nil
}

// DecodeRecords decodes a backend list of kind.
func DecodeRecords(kind EntityKind, raws []json.RawMessage) ([]Record, error) {
	out := make([]Record, 0, len(raws))
	for _, raw := range raws {
		record, err := DecodeRecord(kind, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, nil
}

func decodeAs[T Record](raw json.RawMessage) (Record, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Summary is the one-line list rendering of a record.
type Summary struct {
	Key      string `json:"key"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	Inactive bool   `json:"inactive,omitempty"`
}

// Summarize renders a record for the admin list.
func Summarize(record Record) Summary {
	summary := Summary{Key: record.RecordKey()}
	switch r := record.(type) {
	case User:
		summary.Title = r.Name
		summary.Subtitle = fmt.Sprintf("%s · %d · %s", r.Phone, r.Balance, strings.ToUpper(string(r.Level)))
		summary.Inactive = !r.Active
	case Master:
		summary.Title = r.Name
		summary.Subtitle = r.Specialization
	case Service:
		summary.Title = r.Title
		summary.Subtitle = FormatPrice(r.Price)
		if category := strings.TrimSpace(r.Category); category != "" {
			summary.Subtitle = category + " · " + summary.Subtitle
		}
		summary.Inactive = !r.IsActive
	case Promotion:
		summary.Title = r.Title
		summary.Subtitle = deref(r.EndDate)
		summary.Inactive = !r.IsActive
	case Broadcast:
		summary.Title = truncate(r.Message, 60)
		summary.Subtitle = fmt.Sprintf("%s · %s · %d/%d", r.Status, r.RecipientType, r.SentCount, r.SentCount+r.FailedCount)
	case BotButton:
		summary.Title = r.ButtonText
		summary.Subtitle = fmt.Sprintf("%s · row %d #%d", r.HandlerType, r.RowNumber, r.OrderInRow)
		summary.Inactive = !r.IsActive
	case Setting:
		summary.Title = r.Key
		summary.Subtitle = fmt.Sprintf("%v (%s)", r.Value, r.Type)
	}
	return summary
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}

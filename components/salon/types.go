package salon

import (
	"context"
	"time"
)

// HandlerType tells the bot how to react when a keyboard button is pressed.
type HandlerType string

const (
	HandlerBook    HandlerType = "book"
	HandlerInfo    HandlerType = "info"
	HandlerProfile HandlerType = "profile"
	HandlerAdmin   HandlerType = "admin"
)

// HandlerTypes lists every handler accepted by the backend.
func HandlerTypes() []HandlerType {
	return []HandlerType{HandlerBook, HandlerInfo, HandlerProfile, HandlerAdmin}
}

// Valid reports whether the handler is one of the known values.
func (h HandlerType) Valid() bool {
	for _, known := range HandlerTypes() {
		if h == known {
			return true
		}
	}
	return false
}

// BotButton is a reply-keyboard button configured by admins.
// ID is zero while the button is an unsaved draft.
type BotButton struct {
	ID           int64       `json:"id,omitempty" yaml:"id"`
	ButtonText   string      `json:"button_text" yaml:"button_text"`
	ResponseText string      `json:"response_text" yaml:"response_text,omitempty"`
	HandlerType  HandlerType `json:"handler_type" yaml:"handler_type,omitempty"`
	RowNumber    int         `json:"row_number" yaml:"-"`
	OrderInRow   int         `json:"order_in_row" yaml:"-"`
	WebAppURL    *string     `json:"web_app_url" yaml:"web_app_url,omitempty"`
	IsAdminOnly  bool        `json:"is_admin_only" yaml:"is_admin_only,omitempty"`
	IsActive     bool        `json:"is_active" yaml:"is_active"`
}

// IsDraft reports whether the button has not been persisted yet.
func (b BotButton) IsDraft() bool {
	return b.ID == 0
}

// Row groups buttons sharing a row_number in display order. A row with no
// buttons is a client-only placeholder.
type Row struct {
	Number  int         `json:"number"`
	Buttons []BotButton `json:"buttons"`
}

// ButtonPosition is the row/order tuple persisted by a reorder call.
type ButtonPosition struct {
	ID         int64 `json:"id"`
	RowNumber  int   `json:"row_number"`
	OrderInRow int   `json:"order_in_row"`
}

// Selection identifies the button being edited: nothing, the draft, or a
// persisted id.
type Selection struct {
	ID    int64 `json:"id,omitempty"`
	Draft bool  `json:"draft,omitempty"`
}

// NoSelection is the empty selection.
var NoSelection = Selection{}

// SelectDraft selects the unsaved draft.
func SelectDraft() Selection { return Selection{Draft: true} }

// SelectID selects a persisted button.
func SelectID(id int64) Selection { return Selection{ID: id} }

// IsNone reports whether nothing is selected.
func (s Selection) IsNone() bool { return !s.Draft && s.ID == 0 }

// EditorState is a snapshot of the bot-buttons editor.
type EditorState struct {
	Selected   Selection  `json:"selected"`
	Draft      *BotButton `json:"draft,omitempty"`
	Rows       []Row      `json:"rows"`
	ExtraRows  []int      `json:"extra_rows"`
	DirtyOrder bool       `json:"dirty_order"`
	DragID     int64      `json:"drag_id,omitempty"`
}

// ButtonGateway is the REST surface the editor persists through.
type ButtonGateway interface {
	ListButtons(ctx context.Context) ([]BotButton, error)
	CreateButton(ctx context.Context, button BotButton) (BotButton, error)
	UpdateButton(ctx context.Context, id int64, button BotButton) (BotButton, error)
	DeleteButton(ctx context.Context, id int64) error
	ReorderButtons(ctx context.Context, items []ButtonPosition) error
}

// Confirmer asks the operator to approve destructive actions.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// Alerter surfaces a blocking, user-facing failure message.
type Alerter interface {
	Alert(ctx context.Context, message string)
}

// UserLevel is the loyalty tier of a client.
type UserLevel string

const (
	LevelNew     UserLevel = "new"
	LevelRegular UserLevel = "regular"
	LevelVIP     UserLevel = "vip"
)

// User is a loyalty program member.
type User struct {
	ID         int64     `json:"id"`
	TgID       int64     `json:"tg_id,omitempty"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	Balance    int       `json:"balance"`
	Level      UserLevel `json:"level"`
	Active     bool      `json:"active"`
	YClientsID *int64    `json:"yclients_id,omitempty"`
	CreatedAt  string    `json:"created_at,omitempty"`
}

// Transaction is a loyalty ledger entry.
type Transaction struct {
	ID              int64   `json:"id"`
	UserID          int64   `json:"user_id,omitempty"`
	Amount          int     `json:"amount"`
	TransactionType string  `json:"transaction_type"`
	Description     string  `json:"description"`
	CreatedAt       string  `json:"created_at"`
	ExpiresAt       *string `json:"expires_at,omitempty"`
	RemainingAmount *int    `json:"remaining_amount,omitempty"`
	VisitID         *int64  `json:"visit_id,omitempty"`
}

// Visit is a booking record synced from the salon CRM.
type Visit struct {
	VisitID       int64    `json:"visit_id"`
	VisitDatetime string   `json:"visit_datetime"`
	Services      []string `json:"services"`
	Master        string   `json:"master"`
	Amount        *float64 `json:"amount,omitempty"`
	Status        string   `json:"status"`
}

// Profile is the payload returned by the profile endpoint.
type Profile struct {
	User    User          `json:"user"`
	IsAdmin bool          `json:"is_admin"`
	History []Transaction `json:"history"`
	Visits  []Visit       `json:"visits"`
}

// Promotion is a marketing card.
type Promotion struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DetailText  *string `json:"detail_text,omitempty"`
	Conditions  *string `json:"conditions,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
	EndDate     *string `json:"end_date,omitempty"`
	ActionURL   *string `json:"action_url,omitempty"`
	ActionText  *string `json:"action_text,omitempty"`
	IsActive    bool    `json:"is_active"`
	Order       *int    `json:"order,omitempty"`
}

// Service is a bookable salon service.
type Service struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	ImageURL    *string `json:"image_url,omitempty"`
	IsActive    bool    `json:"is_active"`
	Order       *int    `json:"order,omitempty"`
}

// Master is a salon specialist.
type Master struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Specialization string  `json:"specialization"`
	PhotoURL       *string `json:"photo_url,omitempty"`
	Order          *int    `json:"order,omitempty"`
}

// Content is the public storefront payload.
type Content struct {
	Promotions []Promotion `json:"promotions"`
	Services   []Service   `json:"services"`
	Masters    []Master    `json:"masters"`
	BookingURL string      `json:"booking_url,omitempty"`
}

// RecipientType selects the audience of a broadcast.
type RecipientType string

const (
	RecipientAll       RecipientType = "all"
	RecipientSelected  RecipientType = "selected"
	RecipientByBalance RecipientType = "by_balance"
	RecipientByDate    RecipientType = "by_date"
)

// BroadcastStatus tracks delivery progress on the backend.
type BroadcastStatus string

const (
	BroadcastPending   BroadcastStatus = "pending"
	BroadcastScheduled BroadcastStatus = "scheduled"
	BroadcastSending   BroadcastStatus = "sending"
	BroadcastCompleted BroadcastStatus = "completed"
	BroadcastFailed    BroadcastStatus = "failed"
)

// Broadcast is a mass message to bot users.
type Broadcast struct {
	ID               int64           `json:"id"`
	Message          string          `json:"message"`
	ImageURL         *string         `json:"image_url,omitempty"`
	RecipientType    RecipientType   `json:"recipient_type"`
	RecipientIDs     []int64         `json:"recipient_ids,omitempty"`
	FilterBalanceMin *int            `json:"filter_balance_min,omitempty"`
	FilterBalanceMax *int            `json:"filter_balance_max,omitempty"`
	ScheduledAt      *string         `json:"scheduled_at,omitempty"`
	Status           BroadcastStatus `json:"status"`
	SentCount        int             `json:"sent_count"`
	FailedCount      int             `json:"failed_count"`
	CreatedAt        string          `json:"created_at,omitempty"`
}

// SettingType controls how a setting value is coerced before saving.
type SettingType string

const (
	SettingString  SettingType = "string"
	SettingNumber  SettingType = "number"
	SettingFloat   SettingType = "float"
	SettingBoolean SettingType = "boolean"
)

// Setting is a runtime-tunable backend value.
type Setting struct {
	Key         string      `json:"key"`
	Value       any         `json:"value"`
	Type        SettingType `json:"type"`
	Description string      `json:"description"`
}

// FeedItemKind tags entries of the merged profile feed.
type FeedItemKind string

const (
	FeedTransaction FeedItemKind = "transaction"
	FeedVisit       FeedItemKind = "visit"
)

// FeedItem is one entry of the merged transaction + visit history.
type FeedItem struct {
	Kind        FeedItemKind `json:"item_type"`
	At          time.Time    `json:"at"`
	Transaction *Transaction `json:"transaction,omitempty"`
	Visit       *Visit       `json:"visit,omitempty"`
}

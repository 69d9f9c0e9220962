package salon

import (
	"fmt"
	"strings"
)

// EntityKind is the admin tab an entity belongs to.
type EntityKind string

const (
	KindUsers      EntityKind = "users"
	KindMasters    EntityKind = "masters"
	KindServices   EntityKind = "services"
	KindPromotions EntityKind = "promotions"
	KindBroadcasts EntityKind = "broadcasts"
	KindBotButtons EntityKind = "bot-buttons"
	KindSettings   EntityKind = "settings"
)

// Kinds lists every admin tab in display order.
func Kinds() []EntityKind {
	return []EntityKind{
		KindUsers,
		KindMasters,
		KindServices,
		KindPromotions,
		KindBroadcasts,
		KindBotButtons,
		KindSettings,
	}
}

// ParseKind resolves a tab name, accepting snake or kebab case.
func ParseKind(raw string) (EntityKind, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "_", "-")
	for _, kind := range Kinds() {
		if string(kind) == normalized {
			return kind, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, raw)
}

// Capabilities lists what the admin panel may do with a kind.
type Capabilities struct {
	Create bool
	Update bool
	Delete bool
	Move   bool
}

// KindSpec describes one admin tab.
type KindSpec struct {
	Kind         EntityKind
	Path         string
	Capabilities Capabilities
	// Fields are the form fields in display order.
	Fields []string
}

// SpecFor returns the tab description for kind.
func SpecFor(kind EntityKind) (KindSpec, error) {
	switch kind {
	case KindUsers:
		return KindSpec{
			Kind:         kind,
			Path:         "/api/admin/users",
			Capabilities: Capabilities{Update: true},
			Fields:       []string{"name", "phone", "balance", "level", "active"},
		}, nil
	case KindMasters:
		return KindSpec{
			Kind:         kind,
			Path:         "/api/admin/masters",
			Capabilities: Capabilities{Create: true, Update: true, Delete: true, Move: true},
			Fields:       []string{"name", "specialization", "photo_url"},
		}, nil
	case KindServices:
		return KindSpec{
			Kind:         kind,
			Path:         "/api/admin/services",
			Capabilities: Capabilities{Create: true, Update: true, Delete: true, Move: true},
			Fields:       []string{"title", "price", "category", "description", "image_url", "is_active"},
		}, nil
	case KindPromotions:
		return KindSpec{
			Kind:         kind,
			Path:         "/api/admin/promotions",
			Capabilities: Capabilities{Create: true, Update: true, Delete: true, Move: true},
			Fields: []string{
				"title", "description", "detail_text", "conditions", "image_url",
				"end_date", "action_url", "action_text", "is_active",
			},
		}, nil
	case KindBroadcasts:
		return KindSpec{
			Kind:         kind,
			Path:         "/api/admin/broadcasts",
			Capabilities: Capabilities{Create: true, Delete: true},
			Fields: []string{
				"message", "image_url", "recipient_type", "recipient_ids",
				"filter_balance_min", "filter_balance_max", "scheduled_at",
			},
		}, nil
	case KindBotButtons:
		return KindSpec{
			Kind:         kind,
			Path:         "/api/admin/bot-buttons",
			// Writes go through Editor so the layout and duplicate-text rules apply.
			Capabilities: Capabilities{},
			Fields: []string{
				"button_text", "response_text", "handler_type", "row_number",
				"order_in_row", "web_app_url", "is_admin_only", "is_active",
			},
		}, nil
	case KindSettings:
		return KindSpec{
			Kind:         kind,
			Path:         "/api/settings",
			Capabilities: Capabilities{Update: true},
			Fields:       []string{"key", "value", "type", "description"},
		}, nil
	}
	return KindSpec{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

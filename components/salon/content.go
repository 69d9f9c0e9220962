package salon

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// DefaultBookingURL is used until the backend supplies its own booking link.
const DefaultBookingURL = "https://yclients.com"

// ContentSource fetches the public storefront payload.
type ContentSource interface {
	FetchContent(ctx context.Context) (Content, error)
}

// Card is a read-only display item derived from a content record.
type Card struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Subtitle   string `json:"subtitle,omitempty"`
	Body       string `json:"body,omitempty"`
	Badge      string `json:"badge,omitempty"`
	ImageURL   string `json:"image_url,omitempty"`
	ActionText string `json:"action_text,omitempty"`
}

// CardList holds rendered cards or the empty-state message when there are
// none.
type CardList struct {
	Cards []Card `json:"cards"`
	Empty string `json:"empty,omitempty"`
}

// RenderPromotions maps promotions to cards.
func RenderPromotions(promotions []Promotion, locale string) CardList {
	if len(promotions) == 0 {
		return CardList{Cards: []Card{}, Empty: Message("empty.promotions", locale)}
	}
	cards := make([]Card, 0, len(promotions))
	for _, p := range promotions {
		card := Card{
			ID:         p.ID,
			Title:      p.Title,
			Body:       p.Description,
			ImageURL:   deref(p.ImageURL),
			ActionText: promotionActionText(p, locale),
		}
		if end := deref(p.EndDate); end != "" {
			if t, ok := parseTimestamp(end); ok {
				card.Badge = formatMessage("promotion.until", locale, t.Format("02.01.2006"))
			} else {
				card.Badge = formatMessage("promotion.until", locale, end)
			}
		}
		cards = append(cards, card)
	}
	return CardList{Cards: cards}
}

// RenderServices maps services to cards with the price as badge.
func RenderServices(services []Service, locale string) CardList {
	if len(services) == 0 {
		return CardList{Cards: []Card{}, Empty: Message("empty.services", locale)}
	}
	cards := make([]Card, 0, len(services))
	for _, s := range services {
		cards = append(cards, Card{
			ID:       s.ID,
			Title:    s.Title,
			Subtitle: s.Category,
			Body:     s.Description,
			Badge:    FormatPrice(s.Price),
			ImageURL: deref(s.ImageURL),
		})
	}
	return CardList{Cards: cards}
}

// RenderMasters maps masters to cards.
func RenderMasters(masters []Master, locale string) CardList {
	if len(masters) == 0 {
		return CardList{Cards: []Card{}, Empty: Message("empty.masters", locale)}
	}
	cards := make([]Card, 0, len(masters))
	for _, m := range masters {
		subtitle := strings.TrimSpace(m.Specialization)
		if subtitle == "" {
			subtitle = Message("master.default_title", locale)
		}
		cards = append(cards, Card{
			ID:         m.ID,
			Title:      m.Name,
			Subtitle:   subtitle,
			ImageURL:   deref(m.PhotoURL),
			ActionText: Message("promotion.action_text", locale),
		})
	}
	return CardList{Cards: cards}
}

// FormatPrice renders a price in roubles.
func FormatPrice(price float64) string {
	return strconv.FormatFloat(price, 'f', -1, 64) + " ₽"
}

// PromotionView is the detail screen of one promotion.
type PromotionView struct {
	Promotion  Promotion `json:"promotion"`
	EndDate    string    `json:"end_date,omitempty"`
	ActionText string    `json:"action_text"`
	ActionURL  string    `json:"action_url"`
}

// PromotionDetail finds a promotion in content and resolves its call to
// action: the promotion link, then the content booking link, then fallback.
func PromotionDetail(content Content, id int64, fallbackBookingURL, locale string) (PromotionView, error) {
	for _, p := range content.Promotions {
		if p.ID != id {
			continue
		}
		view := PromotionView{
			Promotion:  p,
			ActionText: promotionActionText(p, locale),
			ActionURL:  firstNonEmpty(deref(p.ActionURL), content.BookingURL, fallbackBookingURL, "#"),
		}
		if end := deref(p.EndDate); end != "" {
			if t, ok := parseTimestamp(end); ok {
				view.EndDate = t.Format("02.01.2006")
			}
		}
		return view, nil
	}
	return PromotionView{}, fmt.Errorf("%w: promotion %d", ErrNotFound, id)
}

// StorefrontCards renders every content section at once.
type StorefrontCards struct {
	Promotions CardList `json:"promotions"`
	Services   CardList `json:"services"`
	Masters    CardList `json:"masters"`
}

// RenderContent renders all three storefront sections.
func RenderContent(content Content, locale string) StorefrontCards {
	return StorefrontCards{
		Promotions: RenderPromotions(content.Promotions, locale),
		Services:   RenderServices(content.Services, locale),
		Masters:    RenderMasters(content.Masters, locale),
	}
}

func promotionActionText(p Promotion, locale string) string {
	if text := strings.TrimSpace(deref(p.ActionText)); text != "" {
		return text
	}
	return Message("promotion.action_text", locale)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

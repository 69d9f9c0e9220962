package salon

import (
	"fmt"
	"strings"
)

// messages holds user-facing strings keyed by message id then locale. The
// "default" locale is Russian, matching the audience of the bot.
var messages = map[string]map[string]string{
	"buttons.load_failed":    {"default": "Не удалось загрузить кнопки", "en": "Could not load buttons"},
	"buttons.order_failed":   {"default": "Не удалось сохранить порядок", "en": "Could not save button order"},
	"buttons.save_failed":    {"default": "Не удалось сохранить кнопку", "en": "Could not save button"},
	"buttons.delete_failed":  {"default": "Не удалось удалить кнопку", "en": "Could not delete button"},
	"buttons.invalid":        {"default": "Проверьте поля кнопки", "en": "Check the button fields"},
	"buttons.confirm_delete": {"default": "Удалить эту кнопку?", "en": "Delete this button?"},
	"admin.load_failed":      {"default": "Ошибка загрузки", "en": "Load failed"},
	"admin.save_failed":      {"default": "Ошибка сохранения", "en": "Save failed"},
	"admin.delete_failed":    {"default": "Ошибка удаления", "en": "Delete failed"},
	"admin.move_failed":      {"default": "Ошибка перемещения", "en": "Move failed"},
	"admin.upload_failed":    {"default": "Ошибка загрузки файла", "en": "Upload failed"},
	"admin.confirm_delete":   {"default": "Удалить запись?", "en": "Delete this record?"},
	"broadcast.confirm_send": {"default": "Отправить рассылку сейчас?", "en": "Send this broadcast now?"},
	"broadcast.send_failed":  {"default": "Ошибка отправки рассылки", "en": "Broadcast send failed"},
	"empty.promotions":       {"default": "Скоро здесь появятся акции", "en": "Promotions are coming soon"},
	"empty.services":         {"default": "Услуги скоро появятся", "en": "Services are coming soon"},
	"empty.masters":          {"default": "Список мастеров пуст", "en": "No masters yet"},
	"empty.history":          {"default": "История операций пуста", "en": "No transactions yet"},
	"master.default_title":   {"default": "Специалист", "en": "Specialist"},
	"promotion.action_text":  {"default": "Записаться", "en": "Book now"},
	"promotion.until":        {"default": "до %s", "en": "until %s"},
	"profile.default_name":   {"default": "Красотка", "en": "Guest"},
	"transaction.manual":     {"default": "Ручное изменение баланса", "en": "Manual balance adjustment"},
	"expiry.expired":         {"default": "Истекли", "en": "Expired"},
	"expiry.expiring":        {"default": "Осталось %d %s", "en": "%d %s left"},
	"expiry.valid_until":     {"default": "Действуют до %s", "en": "Valid until %s"},
	"history.remaining":      {"default": "Остаток: %d", "en": "Remaining: %d"},
	"visit.label":            {"default": "Визит", "en": "Visit"},
	"chart.balance_title":    {"default": "Баланс баллов", "en": "Points balance"},
	"chart.balance_series":   {"default": "Баланс", "en": "Balance"},
	"keyboard.book":          {"default": "📅 Записаться", "en": "📅 Book"},
	"keyboard.profile":       {"default": "👤 Мой профиль", "en": "👤 My profile"},
	"keyboard.services":      {"default": "🌸 Наши услуги", "en": "🌸 Our services"},
	"keyboard.bonuses":       {"default": "🎁 Бонусы", "en": "🎁 Bonuses"},
	"keyboard.contacts":      {"default": "📍 Контакты", "en": "📍 Contacts"},
	"keyboard.support":       {"default": "💬 Поддержка", "en": "💬 Support"},
	"keyboard.admin":         {"default": "⚙️ Админка", "en": "⚙️ Admin"},
	"layout.unknown_ids":     {"default": "Неизвестные кнопки", "en": "Unknown buttons"},
}

// Message returns the localized string for key, falling back to the key
// itself when unknown.
func Message(key, locale string) string {
	return ResolveLocalizedValue(messages[key], locale, key)
}

// ResolveLocalizedValue selects the best translation for the provided locale
// and falls back to the supplied value. Keys are matched case-insensitively,
// and language-region pairs (`ru-ru`) fall back to their base language.
func ResolveLocalizedValue(values map[string]string, locale, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	for _, candidate := range localeCandidates(locale) {
		for key, value := range values {
			if strings.EqualFold(key, candidate) && value != "" {
				return value
			}
		}
	}
	return fallback
}

func localeCandidates(locale string) []string {
	locale = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(locale), "_", "-"))
	if locale == "" {
		return []string{"default"}
	}
	candidates := []string{locale}
	if idx := strings.Index(locale, "-"); idx > 0 {
		candidates = append(candidates, locale[:idx])
	}
	return append(candidates, "default")
}

// pluralDays returns the day noun agreeing with n.
func pluralDays(n int, locale string) string {
	if base := localeCandidates(locale)[0]; strings.HasPrefix(base, "en") {
		if n == 1 {
			return "day"
		}
		return "days"
	}
	mod10, mod100 := n%10, n%100
	switch {
	case mod10 == 1 && mod100 != 11:
		return "день"
	case mod10 >= 2 && mod10 <= 4 && (mod100 < 12 || mod100 > 14):
		return "дня"
	default:
		return "дней"
	}
}

func formatMessage(key, locale string, args ...any) string {
	return fmt.Sprintf(Message(key, locale), args...)
}

package salon

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// KeyboardAudience is who the reply keyboard is rendered for.
type KeyboardAudience struct {
	Admin bool
	// BaseURL is the Mini App origin. Web app buttons are only offered when
	// it is served over https.
	BaseURL string
	Locale  string
}

// KeyboardPreview is the reply keyboard the bot would send. Telegram web app
// targets are reported by button text alongside the markup.
type KeyboardPreview struct {
	Markup   tgbotapi.ReplyKeyboardMarkup `json:"markup"`
	WebApps  map[string]string            `json:"web_apps,omitempty"`
	Fallback bool                         `json:"fallback,omitempty"`
}

// KeyboardMarkup renders rows the way the bot shows them: inactive buttons
// are dropped, admin-only buttons are hidden from non-admins and rows left
// empty are skipped. With nothing to show the built-in keyboard is used.
func KeyboardMarkup(rows []Row, audience KeyboardAudience) KeyboardPreview {
	preview := KeyboardPreview{WebApps: map[string]string{}}
	var keyboard [][]tgbotapi.KeyboardButton
	for _, row := range BuildRows(flattenRows(rows), nil) {
		var line []tgbotapi.KeyboardButton
		for _, button := range row.Buttons {
			if !button.IsActive || (button.IsAdminOnly && !audience.Admin) {
				continue
			}
			text := strings.TrimSpace(button.ButtonText)
			if text == "" {
				continue
			}
			line = append(line, tgbotapi.NewKeyboardButton(text))
			if url := deref(button.WebAppURL); url != "" && isSecureURL(url) {
				preview.WebApps[text] = url
			}
		}
		if len(line) > 0 {
			keyboard = append(keyboard, line)
		}
	}
	if len(keyboard) == 0 {
		keyboard = defaultKeyboard(audience, preview.WebApps)
		preview.Fallback = true
	}
	preview.Markup = tgbotapi.ReplyKeyboardMarkup{
		Keyboard:       keyboard,
		ResizeKeyboard: true,
	}
	if len(preview.WebApps) == 0 {
		preview.WebApps = nil
	}
	return preview
}

func defaultKeyboard(audience KeyboardAudience, webApps map[string]string) [][]tgbotapi.KeyboardButton {
	msg := func(key string) string { return Message(key, audience.Locale) }
	book := msg("keyboard.book")
	if isSecureURL(audience.BaseURL) {
		webApps[book] = strings.TrimRight(audience.BaseURL, "/")
	}
	keyboard := [][]tgbotapi.KeyboardButton{
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(book)),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(msg("keyboard.profile")),
			tgbotapi.NewKeyboardButton(msg("keyboard.services")),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(msg("keyboard.bonuses")),
			tgbotapi.NewKeyboardButton(msg("keyboard.contacts")),
		),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(msg("keyboard.support"))),
	}
	if audience.Admin {
		keyboard = append(keyboard, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(msg("keyboard.admin"))))
	}
	return keyboard
}

func isSecureURL(raw string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(raw)), "https://")
}

package salon

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
)

var scheduleLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// NormalizeForm converts raw form values into the payload the backend
// expects for kind. Only fields known to the kind are kept; loc is the time
// zone scheduled dates are entered in.
func NormalizeForm(kind EntityKind, fields map[string]any, loc *time.Location) (map[string]any, error) {
	if loc == nil {
		loc = time.Local
	}
	out := map[string]any{}
	var err error
	switch kind {
	case KindUsers:
		copyStrings(out, fields, "name", "phone", "level")
		err = firstErr(
			setInt(out, fields, "balance"),
			setBool(out, fields, "active"),
		)
	case KindMasters:
		copyStrings(out, fields, "name", "specialization")
		setNullable(out, fields, "photo_url")
	case KindServices:
		copyStrings(out, fields, "title", "category", "description")
		setNullable(out, fields, "image_url")
		err = firstErr(
			setFloat(out, fields, "price"),
			setBool(out, fields, "is_active"),
		)
	case KindPromotions:
		copyStrings(out, fields, "title", "description")
		setNullable(out, fields, "detail_text", "conditions", "image_url", "end_date", "action_url")
		text := strings.TrimSpace(cast.ToString(fields["action_text"]))
		if text == "" {
			text = Message("promotion.action_text", "")
		}
		out["action_text"] = text
		err = setBool(out, fields, "is_active")
	case KindBroadcasts:
		err = normalizeBroadcast(out, fields, loc)
	case KindBotButtons:
		copyStrings(out, fields, "button_text", "response_text", "handler_type")
		setNullable(out, fields, "web_app_url")
		err = firstErr(
			setInt(out, fields, "row_number"),
			setInt(out, fields, "order_in_row"),
			setBool(out, fields, "is_admin_only"),
			setBool(out, fields, "is_active"),
		)
	case KindSettings:
		if v, ok := fields["value"]; ok {
			out["value"] = v
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func normalizeBroadcast(out, fields map[string]any, loc *time.Location) error {
	copyStrings(out, fields, "message")
	setNullable(out, fields, "image_url")
	recipient := RecipientType(strings.TrimSpace(cast.ToString(fields["recipient_type"])))
	if recipient == "" {
		recipient = RecipientAll
	}
	out["recipient_type"] = string(recipient)

	out["scheduled_at"] = nil
	if raw := strings.TrimSpace(cast.ToString(fields["scheduled_at"])); raw != "" {
		at, err := parseSchedule(raw, loc)
		if err != nil {
			return err
		}
		out["scheduled_at"] = at.UTC().Format(time.RFC3339)
	}

	switch recipient {
	case RecipientSelected:
		ids, err := parseIDList(fields["recipient_ids"])
		if err != nil {
			return err
		}
		out["recipient_ids"] = ids
	case RecipientByBalance:
		for _, key := range []string{"filter_balance_min", "filter_balance_max"} {
			raw := strings.TrimSpace(cast.ToString(fields[key]))
			if raw == "" {
				out[key] = nil
				continue
			}
			n, err := cast.ToIntE(raw)
			if err != nil {
				return &ValidationError{Field: key, Reason: "must be a whole number"}
			}
			out[key] = n
		}
	}
	return nil
}

func parseSchedule(raw string, loc *time.Location) (time.Time, error) {
	for _, layout := range scheduleLayouts {
		if layout == time.RFC3339 {
			if t, err := time.Parse(layout, raw); err == nil {
				return t, nil
			}
			continue
		}
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &ValidationError{Field: "scheduled_at", Reason: fmt.Sprintf("unrecognized date %q", raw)}
}

func parseIDList(raw any) ([]int64, error) {
	var parts []string
	switch v := raw.(type) {
	case nil:
	case string:
		parts = strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' || r == '\n' })
	default:
		for _, item := range cast.ToSlice(v) {
			parts = append(parts, cast.ToString(item))
		}
	}
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := cast.ToInt64E(strings.TrimSpace(part))
		if err != nil || id <= 0 {
			return nil, &ValidationError{Field: "recipient_ids", Reason: fmt.Sprintf("invalid id %q", part)}
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, &ValidationError{Field: "recipient_ids", Reason: "is required for selected recipients"}
	}
	return ids, nil
}

func copyStrings(out, fields map[string]any, keys ...string) {
	for _, key := range keys {
		if v, ok := fields[key]; ok {
			out[key] = strings.TrimSpace(cast.ToString(v))
		}
	}
}

// setNullable trims a string field and sends null when it is blank.
func setNullable(out, fields map[string]any, keys ...string) {
	for _, key := range keys {
		v, ok := fields[key]
		if !ok {
			continue
		}
		if s := strings.TrimSpace(cast.ToString(v)); s != "" {
			out[key] = s
		} else {
			out[key] = nil
		}
	}
}

func setInt(out, fields map[string]any, key string) error {
	v, ok := fields[key]
	if !ok {
		return nil
	}
	n, err := cast.ToIntE(trimmed(v))
	if err != nil {
		return &ValidationError{Field: key, Reason: "must be a whole number"}
	}
	out[key] = n
	return nil
}

func setFloat(out, fields map[string]any, key string) error {
	v, ok := fields[key]
	if !ok {
		return nil
	}
	n, err := cast.ToFloat64E(trimmed(v))
	if err != nil {
		return &ValidationError{Field: key, Reason: "must be a number"}
	}
	out[key] = n
	return nil
}

func setBool(out, fields map[string]any, key string) error {
	v, ok := fields[key]
	if !ok {
		return nil
	}
	b, err := toBool(v)
	if err != nil {
		return &ValidationError{Field: key, Reason: "must be true or false"}
	}
	out[key] = b
	return nil
}

// toBool also accepts the checkbox value "on".
func toBool(v any) (bool, error) {
	if s, ok := v.(string); ok {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "on", "yes":
			return true, nil
		case "", "off", "no":
			return false, nil
		}
	}
	return cast.ToBoolE(v)
}

func trimmed(v any) any {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return v
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// CoerceSetting converts a raw setting value to the Go type matching typ.
func CoerceSetting(typ SettingType, raw any) (any, error) {
	var (
		value any
		err   error
	)
	switch typ {
	case SettingNumber:
		value, err = cast.ToIntE(trimmed(raw))
	case SettingFloat:
		value, err = cast.ToFloat64E(trimmed(raw))
	case SettingBoolean:
		value, err = toBool(raw)
	default:
		value, err = cast.ToStringE(raw)
	}
	if err != nil {
		return nil, &ValidationError{Field: "value", Reason: fmt.Sprintf("is not a valid %s", typ)}
	}
	return value, nil
}

// UploadFolder maps an upload field prefix to the storage folder.
func UploadFolder(prefix string) string {
	switch strings.TrimSpace(prefix) {
	case "master-photo":
		return "masters"
	case "service-image":
		return "services"
	case "promotion-image":
		return "promotions"
	case "broadcast-image":
		return "broadcasts"
	}
	return "images"
}

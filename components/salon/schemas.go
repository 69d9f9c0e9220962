package salon

var (
	nullableString = map[string]any{"type": []string{"string", "null"}}
	nullableURL    = map[string]any{"type": []string{"string", "null"}, "pattern": "^(https?://|/)"}
	nullableInt    = map[string]any{"type": []string{"integer", "null"}}
)

// kindSchema returns the JSON schema for the payload sent when saving a
// record of kind.
func kindSchema(kind EntityKind) map[string]any {
	switch kind {
	case KindUsers:
		return objectSchema([]string{"name"}, map[string]any{
			"name":    map[string]any{"type": "string", "minLength": 1},
			"phone":   map[string]any{"type": "string"},
			"balance": map[string]any{"type": "integer"},
			"level":   map[string]any{"enum": []string{string(LevelNew), string(LevelRegular), string(LevelVIP)}},
			"active":  map[string]any{"type": "boolean"},
		})
	case KindMasters:
		return objectSchema([]string{"name"}, map[string]any{
			"name":           map[string]any{"type": "string", "minLength": 1},
			"specialization": map[string]any{"type": "string"},
			"photo_url":      nullableURL,
		})
	case KindServices:
		return objectSchema([]string{"title", "price"}, map[string]any{
			"title":       map[string]any{"type": "string", "minLength": 1},
			"price":       map[string]any{"type": "number", "minimum": 0},
			"category":    map[string]any{"type": "string"},
			"description": map[string]any{"type": "string"},
			"image_url":   nullableURL,
			"is_active":   map[string]any{"type": "boolean"},
		})
	case KindPromotions:
		return objectSchema([]string{"title"}, map[string]any{
			"title":       map[string]any{"type": "string", "minLength": 1},
			"description": map[string]any{"type": "string"},
			"detail_text": nullableString,
			"conditions":  nullableString,
			"image_url":   nullableURL,
			"end_date":    map[string]any{"type": []string{"string", "null"}, "pattern": `^\d{4}-\d{2}-\d{2}`},
			"action_url":  nullableURL,
			"action_text": map[string]any{"type": "string", "minLength": 1},
			"is_active":   map[string]any{"type": "boolean"},
		})
	case KindBroadcasts:
		return objectSchema([]string{"message", "recipient_type"}, map[string]any{
			"message":   map[string]any{"type": "string", "minLength": 1},
			"image_url": nullableURL,
			"recipient_type": map[string]any{"enum": []string{
				string(RecipientAll), string(RecipientSelected), string(RecipientByBalance), string(RecipientByDate),
			}},
			"recipient_ids":      map[string]any{"type": "array", "items": map[string]any{"type": "integer"}, "minItems": 1},
			"filter_balance_min": nullableInt,
			"filter_balance_max": nullableInt,
			"scheduled_at":       nullableString,
		})
	case KindBotButtons:
		handlers := make([]string, 0, len(HandlerTypes()))
		for _, h := range HandlerTypes() {
			handlers = append(handlers, string(h))
		}
		return objectSchema([]string{"button_text", "response_text", "handler_type", "row_number", "order_in_row"}, map[string]any{
			"button_text":   map[string]any{"type": "string", "minLength": 1},
			"response_text": map[string]any{"type": "string", "minLength": 1},
			"handler_type":  map[string]any{"enum": handlers},
			"row_number":    map[string]any{"type": "integer", "minimum": 1},
			"order_in_row":  map[string]any{"type": "integer", "minimum": 0},
			"web_app_url":   map[string]any{"type": []string{"string", "null"}},
			"is_admin_only": map[string]any{"type": "boolean"},
			"is_active":     map[string]any{"type": "boolean"},
		})
	case KindSettings:
		return objectSchema([]string{"value"}, map[string]any{
			"value": map[string]any{"type": []string{"string", "number", "boolean"}},
		})
	}
	return nil
}

func objectSchema(required []string, properties map[string]any) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

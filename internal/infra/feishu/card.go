package feishu

import (
	"fmt"
	"strings"
)

// Card action value keys
const (
	ValueDecision = "decision"
	ValueAccount  = "account"
)

// ConfirmationCard builds an interactive card with accept and reject
// buttons. Both buttons carry correlationID.
func ConfirmationCard(title, correlationID, acceptLabel, rejectLabel string) map[string]any {
	button := func(label, kind, decision string) map[string]any {
		return map[string]any{
			"tag":  "button",
			"text": map[string]any{"tag": "plain_text", "content": label},
			"type": kind,
			"value": map[string]any{
				ValueDecision: decision,
				ValueAccount:  correlationID,
			},
		}
	}

	return map[string]any{
		"config": map[string]any{
			"wide_screen_mode": true,
		},
		"elements": []any{
			map[string]any{
				"tag":  "div",
				"text": map[string]any{"tag": "lark_md", "content": title},
			},
			map[string]any{
				"tag": "action",
				"actions": []any{
					button(acceptLabel, "primary", "accept"),
					button(rejectLabel, "danger", "reject"),
				},
			},
		},
	}
}

// ActionValue reads a string from a card action value
func ActionValue(action *CardAction, key string) string {
	if action == nil || action.Value == nil {
		return ""
	}
	v, ok := action.Value[key]
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

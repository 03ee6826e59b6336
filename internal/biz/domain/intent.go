package domain

import "strings"

// Intent is the classifier's reading of an utterance
type Intent struct {
	ActionIncomplete bool
	Action           string
	Parameters       map[string]any
	Speech           string // Text for the user, a follow-up question when incomplete
}

// Param returns a string parameter, trying each key in order
func (i *Intent) Param(keys ...string) string {
	for _, k := range keys {
		v, ok := i.Parameters[k]
		if !ok || v == nil {
			continue
		}
		switch val := v.(type) {
		case string:
			if s := strings.TrimSpace(val); s != "" {
				return s
			}
		case []any:
			var parts []string
			for _, p := range val {
				if s, ok := p.(string); ok && strings.TrimSpace(s) != "" {
					parts = append(parts, strings.TrimSpace(s))
				}
			}
			if len(parts) > 0 {
				return strings.Join(parts, ", ")
			}
		}
	}
	return ""
}

// ClassifyRequest is one utterance sent to the classifier
type ClassifyRequest struct {
	SessionID string
	Utterance string
	Timezone  string
}

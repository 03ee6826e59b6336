package domain

import (
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// ChatType represents the chat type
type ChatType string

const (
	ChatTypeGroup ChatType = "group"
	ChatTypeP2P   ChatType = "p2p"
)

// InboundMessage represents a chat message delivered by a messaging gateway
type InboundMessage struct {
	ID         string
	SenderID   string
	ChannelID  string
	Text       string
	ChatType   ChatType
	Mentions   Mentions // name -> platform mention markup, scoped to this message
	CreateTime time.Time
}

// IsDirect checks if the message arrived in a one-to-one chat
func (m *InboundMessage) IsDirect() bool {
	return m.ChatType == ChatTypeP2P
}

// IsAfter checks if the message is after the specified time
func (m *InboundMessage) IsAfter(t time.Time) bool {
	return m.CreateTime.After(t)
}

// Mentions maps a display name, as it appears in the text sent to the
// classifier, back to the platform mention markup it replaced.
type Mentions map[string]string

// Restore replaces the first whole-word occurrence of every known name in
// text with its mention markup. Longer names win over names they start
// with, and inserted markup is never rescanned.
func (m Mentions) Restore(text string) string {
	names := make([]string, 0, len(m))
	for name := range m {
		if name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return text
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})

	used := make(map[string]bool, len(names))
	var sb strings.Builder
	for i := 0; i < len(text); {
		matched := ""
		if i == 0 || !isWordRune(lastRune(text[:i])) {
			for _, name := range names {
				if used[name] || !strings.HasPrefix(text[i:], name) {
					continue
				}
				end := i + len(name)
				if end < len(text) && isWordRune(firstRune(text[end:])) {
					continue
				}
				matched = name
				break
			}
		}
		if matched != "" {
			used[matched] = true
			sb.WriteString(m[matched])
			i += len(matched)
			continue
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		sb.WriteString(text[i : i+size])
		i += size
	}
	return sb.String()
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func firstRune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

func lastRune(s string) rune {
	r, _ := utf8.DecodeLastRuneInString(s)
	return r
}

// Clone returns an independent copy
func (m Mentions) Clone() Mentions {
	if m == nil {
		return nil
	}
	out := make(Mentions, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

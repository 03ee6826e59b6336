package feishu

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseTextContent_ReplacesMentions(t *testing.T) {
	mentions := []Mention{
		{Key: "@_user_1", Name: "Alice", OpenID: "ou_a"},
		{Key: "@_user_2", Name: "Bob", OpenID: "ou_b"},
	}

	got := parseTextContent(`{"text":"meet with @_user_1 @_user_2 tomorrow"}`, mentions)
	want := "meet with Alice, Bob, tomorrow"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestParseTextContent_Invalid(t *testing.T) {
	if got := parseTextContent("not json", nil); got != "" {
		t.Errorf("Expected empty content, got %q", got)
	}
}

func TestParsePostContent(t *testing.T) {
	content := `{"title":"","content":[[{"tag":"text","text":"sync with "},{"tag":"at","user_id":"@_user_1"},{"tag":"text","text":" friday"}]]}`
	got := parsePostContent(content, []Mention{{Key: "@_user_1", Name: "Alice", OpenID: "ou_a"}})
	if got != "sync with Alice, friday" {
		t.Errorf("Expected mention replaced, got %q", got)
	}
}

func TestMention_Markup(t *testing.T) {
	m := Mention{Name: "Alice", OpenID: "ou_a"}
	if m.Markup() != "<at id=ou_a></at>" {
		t.Errorf("Unexpected markup %q", m.Markup())
	}
	if (Mention{Name: "Bob"}).Markup() != "Bob" {
		t.Error("Expected plain name without open_id")
	}
}

func TestConfirmationCard(t *testing.T) {
	card := ConfirmationCard("Remind you to pay rent?", "ou_user", "Yes", "No")

	data, err := json.Marshal(card)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	s := string(data)
	for _, want := range []string{`"Remind you to pay rent?"`, `"decision":"accept"`, `"decision":"reject"`, `"account":"ou_user"`, `"content":"Yes"`} {
		if !strings.Contains(s, want) {
			t.Errorf("Expected card JSON to contain %s, got %s", want, s)
		}
	}
}

func TestActionValue(t *testing.T) {
	action := &CardAction{Value: map[string]any{"decision": " accept ", "n": 3}}
	if ActionValue(action, ValueDecision) != "accept" {
		t.Errorf("Expected accept, got %q", ActionValue(action, ValueDecision))
	}
	if ActionValue(action, "n") != "3" {
		t.Errorf("Expected 3, got %q", ActionValue(action, "n"))
	}
	if ActionValue(nil, ValueDecision) != "" || ActionValue(action, "missing") != "" {
		t.Error("Expected empty values")
	}
}

func TestTruncate_KeepsRunesWhole(t *testing.T) {
	if got := truncate("提醒我交房租", 2); got != "提醒..." {
		t.Errorf("Expected %q, got %q", "提醒...", got)
	}
}

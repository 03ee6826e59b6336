package openai

import "testing"

func TestParseClassification(t *testing.T) {
	content := "```json\n{\"action_incomplete\":false,\"action\":\"remind.add\",\"parameters\":{\"any\":\"pay rent\",\"date\":\"2024-03-10\"},\"speech\":\"Remind you?\"}\n```"

	c, err := ParseClassification(content)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if c.Action != "remind.add" || c.ActionIncomplete {
		t.Errorf("Unexpected classification: %+v", c)
	}
	if c.Parameters["date"] != "2024-03-10" {
		t.Errorf("Expected date parameter, got %v", c.Parameters)
	}
}

func TestParseClassification_Invalid(t *testing.T) {
	for _, content := range []string{"", "YES", "{}"} {
		if _, err := ParseClassification(content); err == nil {
			t.Errorf("Expected error for %q", content)
		}
	}
}

package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestRewriteMentions(t *testing.T) {
	users := []*discordgo.User{
		{ID: "111", Username: "alice", GlobalName: "Alice"},
		{ID: "222", Username: "bob"},
	}

	got, mentions := RewriteMentions("meet <@111> and <@!222> tomorrow <@999>", users)
	want := "meet Alice, and bob, tomorrow <@999>"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
	if mentions["Alice"] != "<@111>" || mentions["bob"] != "<@222>" {
		t.Errorf("Unexpected mentions %v", mentions)
	}
	if len(mentions) != 2 {
		t.Errorf("Expected 2 mentions, got %d", len(mentions))
	}
}

func TestCustomIDRoundTrip(t *testing.T) {
	decision, corr, ok := ParseCustomID(CustomID("accept", "123456"))
	if !ok || decision != "accept" || corr != "123456" {
		t.Errorf("Unexpected parse: %s %s %v", decision, corr, ok)
	}

	for _, bad := range []string{"", "accept:1", "other:accept:1", "confirm:accept:"} {
		if _, _, ok := ParseCustomID(bad); ok {
			t.Errorf("Expected %q to be rejected", bad)
		}
	}
}

func TestConfirmationComponents(t *testing.T) {
	comps := ConfirmationComponents("42", "Yes", "No")
	row, ok := comps[0].(discordgo.ActionsRow)
	if !ok || len(row.Components) != 2 {
		t.Fatalf("Expected one row with two buttons, got %+v", comps)
	}
	accept := row.Components[0].(discordgo.Button)
	if accept.Label != "Yes" || accept.CustomID != "confirm:accept:42" {
		t.Errorf("Unexpected accept button %+v", accept)
	}
}

func TestTruncate_KeepsRunesWhole(t *testing.T) {
	if got := truncate("café ☕ later", 5); got != "café ..." {
		t.Errorf("Expected %q, got %q", "café ...", got)
	}
}

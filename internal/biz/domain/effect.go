package domain

// EffectKind is the kind of outbound effect
type EffectKind string

const (
	EffectText    EffectKind = "text"
	EffectConfirm EffectKind = "confirm"
)

// Effect is something the bot must deliver to the user after a transition
type Effect struct {
	Kind      EffectKind
	ChannelID string
	Text      string // Message text, or the card title for confirmations
	// CorrelationID identifies whose pending action a confirmation card resolves
	CorrelationID string
}

// TextEffect creates a plain message effect
func TextEffect(channelID, text string) Effect {
	return Effect{Kind: EffectText, ChannelID: channelID, Text: text}
}

// ConfirmEffect creates an accept/reject card effect
func ConfirmEffect(channelID, title, accountID string) Effect {
	return Effect{Kind: EffectConfirm, ChannelID: channelID, Text: title, CorrelationID: accountID}
}

// Decision is the user's answer on a confirmation card
type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

// ParseDecision maps a button value to a decision. Legacy good/bad values are accepted.
func ParseDecision(s string) (Decision, bool) {
	switch s {
	case "accept", "good", "yes":
		return DecisionAccept, true
	case "reject", "bad", "no":
		return DecisionReject, true
	}
	return "", false
}

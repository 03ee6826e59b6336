package domain

import (
	"encoding/json"
	"fmt"
)

// Actions understood by the bot
const (
	ActionRemindAdd  = "remind.add"
	ActionMeetingAdd = "meeting.add"
)

// PendingAction is a fully specified request waiting for the user's
// confirmation. The only implementations are RemindAdd and MeetingAdd.
type PendingAction interface {
	Action() string
	// Title is the text shown on the confirmation card
	Title() string
	pendingAction()
}

// RemindAdd asks for an all-day reminder on Date
type RemindAdd struct {
	Subject string
	Date    Date
	Summary string
}

// MeetingAdd asks for a meeting with Participants on Date.
// Summary already has participant mentions restored.
type MeetingAdd struct {
	Subject      string
	Date         Date
	Participants Mentions
	Summary      string
}

func (RemindAdd) Action() string  { return ActionRemindAdd }
func (MeetingAdd) Action() string { return ActionMeetingAdd }

func (r RemindAdd) Title() string {
	if r.Summary != "" {
		return r.Summary
	}
	return r.Subject
}

func (m MeetingAdd) Title() string {
	if m.Summary != "" {
		return m.Summary
	}
	return m.Subject
}

func (RemindAdd) pendingAction()  {}
func (MeetingAdd) pendingAction() {}

type pendingRecord struct {
	Action       string   `json:"action"`
	Subject      string   `json:"subject"`
	Date         string   `json:"date"`
	Summary      string   `json:"summary,omitempty"`
	Participants Mentions `json:"participants,omitempty"`
}

// EncodePending serializes a pending action for storage. nil encodes to nil.
func EncodePending(p PendingAction) ([]byte, error) {
	var rec pendingRecord
	switch v := p.(type) {
	case nil:
		return nil, nil
	case RemindAdd:
		rec = pendingRecord{Action: ActionRemindAdd, Subject: v.Subject, Date: v.Date.String(), Summary: v.Summary}
	case MeetingAdd:
		rec = pendingRecord{Action: ActionMeetingAdd, Subject: v.Subject, Date: v.Date.String(), Summary: v.Summary, Participants: v.Participants}
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownAction, p)
	}
	return json.Marshal(rec)
}

// DecodePending restores a stored pending action. Empty input means no
// pending action. An unrecognized action tag is an error.
func DecodePending(data []byte) (PendingAction, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var rec pendingRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode pending action: %w", err)
	}
	date, err := ParseDate(rec.Date)
	if err != nil && rec.Action != "" {
		return nil, fmt.Errorf("decode pending action: %w", err)
	}
	switch rec.Action {
	case ActionRemindAdd:
		return RemindAdd{Subject: rec.Subject, Date: date, Summary: rec.Summary}, nil
	case ActionMeetingAdd:
		return MeetingAdd{Subject: rec.Subject, Date: date, Participants: rec.Participants, Summary: rec.Summary}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, rec.Action)
	}
}

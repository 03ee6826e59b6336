package usecase

import (
	"fmt"
	"strings"
)

// BotMessages contains the user-facing copy of the bot
type BotMessages struct {
	LinkPrompt       string // %s is the link URL
	Busy             string
	Canceled         string
	Added            string // %s is the event link
	CalendarFailed   string
	Relink           string // %s is the link URL
	ClassifierDown   string
	MissingDate      string
	Fallback         string
	Failure          string
	LinkSucceeded    string
	LinkFailed       string
	AcceptLabel      string
	RejectLabel      string
	ConfirmSubmitted string
}

// DefaultBotMessages contains default bot copy
var DefaultBotMessages = BotMessages{
	LinkPrompt:       "Hello! This is scheduler bot. I can help you schedule reminders and meetings on your Google Calendar. Please visit %s to set up Google Calendar.",
	Busy:             "Please complete previous request!",
	Canceled:         "Okay, I canceled that request.",
	Added:            "Done! I added it to your calendar: %s",
	CalendarFailed:   "I couldn't add that to your calendar. Press Yes again to retry, or No to cancel.",
	Relink:           "Your Google Calendar access has expired. Please visit %s to reconnect, then press Yes again.",
	ClassifierDown:   "Sorry, I can't understand requests right now. Please send your message again in a moment.",
	MissingDate:      "I couldn't work out the date for that. Could you say it again with a date?",
	Fallback:         "Sorry, I didn't get that.",
	Failure:          "Something went wrong on my side. Please try again.",
	LinkSucceeded:    "Your Google Calendar is connected. Tell me what to schedule!",
	LinkFailed:       "Connecting Google Calendar failed. Please ask me for a new link and try again.",
	AcceptLabel:      "Yes",
	RejectLabel:      "No",
	ConfirmSubmitted: "Got it, working on it...",
}

// WithDefaults fills empty fields from DefaultBotMessages
func (m BotMessages) WithDefaults() BotMessages {
	d := DefaultBotMessages
	fill := func(dst *string, def string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = def
		}
	}
	fill(&m.LinkPrompt, d.LinkPrompt)
	fill(&m.Busy, d.Busy)
	fill(&m.Canceled, d.Canceled)
	fill(&m.Added, d.Added)
	fill(&m.CalendarFailed, d.CalendarFailed)
	fill(&m.Relink, d.Relink)
	fill(&m.ClassifierDown, d.ClassifierDown)
	fill(&m.MissingDate, d.MissingDate)
	fill(&m.Fallback, d.Fallback)
	fill(&m.Failure, d.Failure)
	fill(&m.LinkSucceeded, d.LinkSucceeded)
	fill(&m.LinkFailed, d.LinkFailed)
	fill(&m.AcceptLabel, d.AcceptLabel)
	fill(&m.RejectLabel, d.RejectLabel)
	fill(&m.ConfirmSubmitted, d.ConfirmSubmitted)
	return m
}

func (m BotMessages) linkPrompt(url string) string {
	return fmt.Sprintf(m.LinkPrompt, url)
}

func (m BotMessages) relink(url string) string {
	return fmt.Sprintf(m.Relink, url)
}

func (m BotMessages) added(link string) string {
	if link == "" {
		return strings.TrimSuffix(strings.TrimSpace(strings.ReplaceAll(m.Added, "%s", "")), ":")
	}
	return fmt.Sprintf(m.Added, link)
}

package domain

import "time"

// ScheduledItem is a confirmed reminder or meeting owned by an account.
// It is immutable once created.
type ScheduledItem struct {
	ID        string
	AccountID string
	Kind      string // remind.add or meeting.add
	Subject   string
	Day       Date
	CreatedAt time.Time
}

// CalendarEvent is an all-day event to be written to a calendar
type CalendarEvent struct {
	CalendarID  string
	Summary     string
	Description string
	Start       Date
	End         Date // exclusive
}

// CreatedEvent is what the calendar returns for an inserted event
type CreatedEvent struct {
	ID       string
	HTMLLink string
}

// AllDayEvent builds the event for a day: it starts on day and ends on the
// next day, since calendar end dates are exclusive.
func AllDayEvent(summary string, day Date) CalendarEvent {
	return CalendarEvent{
		CalendarID: "primary",
		Summary:    summary,
		Start:      day,
		End:        day.AddDays(1),
	}
}

package app

// Event represents a single calendar entry
type Event struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Calendar holds the events of one named calendar
type Calendar struct {
	Events []Event `json:"events"`
}

// CalendarData represents the complete persisted data structure
type CalendarData struct {
	Calendars map[string]*Calendar `json:"calendars"`
	Metadata  map[string]string    `json:"metadata"`
}

func newCalendarData() *CalendarData {
	return &CalendarData{
		Calendars: make(map[string]*Calendar),
		Metadata:  make(map[string]string),
	}
}

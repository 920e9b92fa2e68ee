package app

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/klabast/wb-services/kalender-grid/internal/grid"
)

// Reminder is a VALARM offset: HH:MM on the day DaysBefore the event.
type Reminder struct {
	DaysBefore int
	Time       string
}

// remindersFromQuery reads the reminder2Days/reminder1Day/reminderSameDay
// switches with their time2Days/time1Day/timeSameDay values.
func remindersFromQuery(r *http.Request) []Reminder {
	q := r.URL.Query()
	var out []Reminder
	for _, rm := range []struct {
		flag, at string
		days     int
	}{
		{"reminder2Days", "time2Days", 2},
		{"reminder1Day", "time1Day", 1},
		{"reminderSameDay", "timeSameDay", 0},
	} {
		if q.Get(rm.flag) == "true" && q.Get(rm.at) != "" {
			out = append(out, Reminder{DaysBefore: rm.days, Time: q.Get(rm.at)})
		}
	}
	return out
}

// summary is the event title shown in calendar apps.
func (a *App) summary(e Event) string {
	if e.Description != "" {
		return e.Description
	}
	return a.Config.TypeLabel(e.Type)
}

// newICSCalendar returns a calendar carrying the common header properties.
func newICSCalendar(name string) *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetProductId(ICSProductID)
	cal.SetXWRCalName(name)
	cal.SetXWRTimezone(ICSTimezone)
	cal.SetCalscale("GREGORIAN")
	return cal
}

// addICSEvent appends e as an all-day VEVENT. The UID derives from the
// event ID so it stays stable across exports.
func (a *App) addICSEvent(cal *ics.Calendar, calendar string, e Event, stamp time.Time) (*ics.VEvent, bool) {
	d, err := parseEventDate(e.Date)
	if err != nil {
		return nil, false
	}
	ev := cal.AddEvent(e.ID + "@" + ICSDomain)
	ev.SetDtStampTime(stamp)
	ev.SetAllDayStartAt(d.Time())
	ev.SetAllDayEndAt(d.Next().Time())
	ev.SetSummary(a.summary(e))
	ev.SetDescription(fmt.Sprintf("%s in %s", a.Config.TypeLabel(e.Type), calendar))
	ev.SetLocation(calendar)
	if e.Type != "" {
		ev.SetProperty(ics.ComponentPropertyCategories, e.Type)
	}
	return ev, true
}

// GenerateICS writes an iCalendar download with optional reminders
func (a *App) GenerateICS(w http.ResponseWriter, r *http.Request, calendar, filename string, events []Event) {
	cal := newICSCalendar("Kalender " + calendar)
	reminders := remindersFromQuery(r)
	stamp := a.now().UTC()

	for _, e := range events {
		ev, ok := a.addICSEvent(cal, calendar, e, stamp)
		if !ok {
			continue
		}
		for _, rm := range reminders {
			trigger, ok := alarmTrigger(rm.DaysBefore, rm.Time)
			if !ok {
				continue
			}
			alarm := ev.AddAlarm()
			alarm.SetAction(ics.ActionDisplay)
			alarm.SetTrigger(trigger)
			alarm.SetProperty(ics.ComponentPropertyDescription, "Erinnerung: "+a.summary(e))
		}
	}

	writeICS(w, cal, filename+".ics")
}

// GenerateSubscriptionICS writes an iCalendar subscription feed.
// Unlike GenerateICS there is no attachment header and no VALARM blocks,
// and the feed is marked METHOD:PUBLISH with a refresh interval.
func (a *App) GenerateSubscriptionICS(w http.ResponseWriter, calendar string, events []Event) {
	cal := newICSCalendar("Kalender " + calendar)
	cal.SetMethod(ics.MethodPublish)
	cal.SetXPublishedTTL("PT1H")
	stamp := a.now().UTC()

	for _, e := range events {
		a.addICSEvent(cal, calendar, e, stamp)
	}

	writeICS(w, cal, "")
}

// writeICS serializes cal before touching the response so a failure can
// still be reported as an error status. An empty attachment name serves the
// calendar inline.
func writeICS(w http.ResponseWriter, cal *ics.Calendar, attachment string) {
	var buf bytes.Buffer
	if err := cal.SerializeTo(&buf); err != nil {
		log.Printf("Error serializing ICS: %v", err)
		http.Error(w, ErrFailedToGenerateICS, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	if attachment != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", attachment))
	}
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("Error writing ICS: %v", err)
	}
}

// alarmTrigger converts "HH:MM on the day daysBefore the event" into an
// ISO 8601 duration relative to the all-day event start at midnight.
func alarmTrigger(daysBefore int, alarmTime string) (string, bool) {
	hh, mm, ok := strings.Cut(alarmTime, ":")
	if !ok {
		return "", false
	}
	hour, err1 := strconv.Atoi(hh)
	minute, err2 := strconv.Atoi(mm)
	if err1 != nil || err2 != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return "", false
	}

	totalMinutes := -daysBefore*24*60 + hour*60 + minute
	sign := ""
	if totalMinutes < 0 {
		sign = "-"
		totalMinutes = -totalMinutes
	}

	days := totalMinutes / (24 * 60)
	hours := totalMinutes % (24 * 60) / 60
	minutes := totalMinutes % 60
	return fmt.Sprintf("%sP%dDT%dH%dM", sign, days, hours, minutes), true
}

// GenerateCSV writes the events as a CSV download
func (a *App) GenerateCSV(w http.ResponseWriter, filename string, events []Event) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", filename))

	cw := csv.NewWriter(w)
	rows := [][]string{{"Datum", "Typ", "Bezeichnung", "Beschreibung"}}
	for _, e := range events {
		rows = append(rows, []string{e.Date, e.Type, a.Config.TypeLabel(e.Type), e.Description})
	}
	if err := cw.WriteAll(rows); err != nil {
		log.Printf("Error writing CSV: %v", err)
	}
}

// GenerateJSON writes the events as a JSON download
func (a *App) GenerateJSON(w http.ResponseWriter, calendar, filename string, first, last grid.Date, events []Event) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.json", filename))

	data := map[string]any{
		"calendar": calendar,
		"start":    first,
		"end":      last,
		"events":   events,
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON export: %v", err)
		http.Error(w, ErrFailedToGenerateJSON, http.StatusInternalServerError)
	}
}

// ParseICS reads the all-day events of an iCalendar stream. CATEGORIES
// becomes the event type and SUMMARY the description.
func ParseICS(r io.Reader) ([]Event, error) {
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("parse ics: %w", err)
	}

	var events []Event
	for _, ev := range cal.Events() {
		start, err := ev.GetAllDayStartAt()
		if err != nil {
			if start, err = ev.GetStartAt(); err != nil {
				log.Printf("[import] skipping event %s: %v", ev.Id(), err)
				continue
			}
		}

		e := Event{
			ID:   uuid.NewString(),
			Date: grid.NewDate(start.Year(), int(start.Month()), start.Day()).String(),
		}
		if p := ev.GetProperty(ics.ComponentPropertySummary); p != nil {
			e.Description = p.Value
		}
		if p := ev.GetProperty(ics.ComponentPropertyCategories); p != nil {
			e.Type, _, _ = strings.Cut(p.Value, ",")
		}
		events = append(events, e)
	}
	return events, nil
}

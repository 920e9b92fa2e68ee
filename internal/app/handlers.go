package app

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/klabast/wb-services/kalender-grid/internal/grid"
)

// App serves the calendar grid API on top of an event store.
type App struct {
	Config Config
	Store  *Store

	auth *Credentials
	now  func() time.Time
}

// New returns an App for cfg and store. creds may be nil (no auth).
func New(cfg Config, store *Store, creds *Credentials) *App {
	return &App{Config: cfg, Store: store, auth: creds, now: time.Now}
}

// Routes registers every endpoint. Edit endpoints are only mounted in edit
// mode and sit behind Basic Auth.
func (a *App) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/config", a.GetConfig)
	mux.HandleFunc("/api/grid", a.HandleGrid)
	mux.HandleFunc("/api/grid/header", a.HandleHeader)
	mux.HandleFunc("/api/download", a.HandleDownload)
	mux.HandleFunc("/api/subscribe/", a.HandleSubscribe)

	if a.Config.EditMode {
		mux.HandleFunc("/api/events/add", a.RequireAuth(a.AddEvent))
		mux.HandleFunc("/api/events/delete", a.RequireAuth(a.DeleteEvent))
		mux.HandleFunc("/api/events/move", a.RequireAuth(a.MoveEvent))
		mux.HandleFunc("/api/calendar/commit", a.RequireAuth(a.HandleCalendarCommit))
		mux.HandleFunc("/api/calendar/revert", a.RequireAuth(a.HandleCalendarRevert))
		mux.HandleFunc("/api/calendar/status", a.RequireAuth(a.HandleCalendarStatus))
	}
	return mux
}

// GetConfig returns the application configuration
func (a *App) GetConfig(w http.ResponseWriter, r *http.Request) {
	today := grid.DateOf(a.now())
	config := map[string]any{
		"calendars":      a.Store.Calendars(),
		"eventTypes":     a.Config.EventTypes,
		"firstDayOfWeek": a.Config.FirstDayOfWeek,
		"prefill":        a.Config.Prefill,
		"postfill":       a.Config.Postfill,
		"header":         grid.HeaderLabels(grid.WeekdayLabels[:], a.Config.FirstDayOfWeek),
		"today":          today,
		"editMode":       a.Config.EditMode,
	}
	if a.Config.Holidays {
		config["holidays"] = NRWHolidays(today.Year)
	}
	writeJSON(w, config)
}

// HandleGrid returns the month grid for the query parameters
// calendar, start, duration, firstDay, prefill, postfill, month and types.
func (a *App) HandleGrid(w http.ResponseWriter, r *http.Request) {
	req, err := a.parseGridRequest(r)
	if err != nil {
		http.Error(w, ErrInvalidGrid+": "+err.Error(), http.StatusBadRequest)
		return
	}
	g, err := a.BuildGrid(req)
	if err != nil {
		writeGridError(w, err)
		return
	}
	months, err := g.Get()
	if err != nil {
		writeGridError(w, err)
		return
	}

	first, last, _ := g.Range()
	writeJSON(w, map[string]any{
		"start":          g.Start(),
		"duration":       g.Duration(),
		"firstDayOfWeek": g.FirstDayOfWeek(),
		"first":          first,
		"last":           last,
		"header":         g.Header(),
		"months":         months,
	})
}

// HandleHeader returns the weekday labels rotated to firstDay.
func (a *App) HandleHeader(w http.ResponseWriter, r *http.Request) {
	k, err := queryInt(r, "firstDay", a.Config.FirstDayOfWeek)
	if err != nil || k < 0 || k > 6 {
		http.Error(w, ErrInvalidGrid+": firstDay", http.StatusBadRequest)
		return
	}
	writeJSON(w, grid.HeaderLabels(grid.WeekdayLabels[:], k))
}

// HandleDownload exports the events on the real days of a grid as ICS, CSV
// or JSON.
func (a *App) HandleDownload(w http.ResponseWriter, r *http.Request) {
	req, err := a.parseGridRequest(r)
	if err != nil {
		http.Error(w, ErrInvalidGrid+": "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Calendar == "" {
		http.Error(w, ErrMissingCalendar, http.StatusBadRequest)
		return
	}
	g, err := a.BuildGrid(req)
	if err != nil {
		writeGridError(w, err)
		return
	}

	events := GridEvents(g)
	filename := exportName(req.Calendar, g)

	switch r.URL.Query().Get("format") {
	case "ics":
		a.GenerateICS(w, r, req.Calendar, filename, events)
	case "csv":
		a.GenerateCSV(w, filename, events)
	case "json":
		first, last, _ := g.Range()
		a.GenerateJSON(w, req.Calendar, filename, first, last, events)
	default:
		http.Error(w, ErrInvalidFormat, http.StatusBadRequest)
	}
}

// HandleSubscribe serves an ICS feed for a calendar with events from the
// start of the previous year onwards.
// URL: /api/subscribe/{calendar}?types=a,b
func (a *App) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	calendar := strings.TrimPrefix(r.URL.Path, "/api/subscribe/")
	if calendar == "" {
		http.Error(w, ErrMissingCalendar, http.StatusBadRequest)
		return
	}

	minDate := grid.NewDate(a.now().Year()-1, 1, 1).String()
	var events []Event
	for _, e := range FilterEventsByType(a.Store.Events(calendar), r.URL.Query().Get("types")) {
		if e.Date >= minDate {
			events = append(events, e)
		}
	}

	a.GenerateSubscriptionICS(w, calendar, events)
}

// AddEvent adds a new event to a calendar (edit mode only)
func (a *App) AddEvent(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) || !a.RequireEditMode(w) {
		return
	}

	var req struct {
		Calendar    string `json:"calendar"`
		Date        string `json:"date"`
		Type        string `json:"type"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Calendar == "" {
		http.Error(w, ErrMissingCalendar, http.StatusBadRequest)
		return
	}

	e, added, err := a.Store.AddEvent(req.Calendar, Event{
		Date:        req.Date,
		Type:        req.Type,
		Description: req.Description,
	})
	switch {
	case err != nil && !added:
		http.Error(w, ErrInvalidDateFormat, http.StatusBadRequest)
		return
	case err != nil:
		log.Printf("Error saving tmp calendar: %v", err)
		http.Error(w, ErrFailedToSave, http.StatusInternalServerError)
		return
	}

	status := "ok"
	if !added {
		status = "exists"
	}
	writeJSON(w, map[string]any{"status": status, "event": e})
}

// DeleteEvent deletes an event by ID (edit mode only)
func (a *App) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) || !a.RequireEditMode(w) {
		return
	}

	var req struct {
		Calendar string `json:"calendar"`
		ID       string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	found, err := a.Store.DeleteEvent(req.Calendar, req.ID)
	if err != nil {
		log.Printf("Error saving tmp calendar: %v", err)
		http.Error(w, ErrFailedToSave, http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, ErrEventNotFound, http.StatusNotFound)
		return
	}
	writeStatus(w, "ok")
}

// MoveEvent moves an event to a different date (edit mode only)
func (a *App) MoveEvent(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) || !a.RequireEditMode(w) {
		return
	}

	var req struct {
		Calendar string `json:"calendar"`
		ID       string `json:"id"`
		NewDate  string `json:"new_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := parseEventDate(req.NewDate); err != nil {
		http.Error(w, ErrInvalidDateFormat, http.StatusBadRequest)
		return
	}

	found, err := a.Store.MoveEvent(req.Calendar, req.ID, req.NewDate)
	if err != nil {
		log.Printf("Error saving tmp calendar: %v", err)
		http.Error(w, ErrFailedToSave, http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, ErrEventNotFound, http.StatusNotFound)
		return
	}
	writeStatus(w, "ok")
}

// HandleCalendarCommit commits temporary changes
func (a *App) HandleCalendarCommit(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) || !a.RequireEditMode(w) {
		return
	}
	if err := a.Store.Commit(); err != nil {
		log.Printf("Error committing calendar: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeStatus(w, "ok")
}

// HandleCalendarRevert reverts temporary changes
func (a *App) HandleCalendarRevert(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) || !a.RequireEditMode(w) {
		return
	}
	if err := a.Store.Revert(); err != nil {
		log.Printf("Error reverting calendar: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeStatus(w, "ok")
}

// HandleCalendarStatus returns whether there are unsaved changes
func (a *App) HandleCalendarStatus(w http.ResponseWriter, r *http.Request) {
	if !a.RequireEditMode(w) {
		return
	}
	writeJSON(w, map[string]bool{"has_changes": a.Store.HasTmpChanges()})
}

// writeGridError maps grid validation errors to 400 and anything else to 500.
func writeGridError(w http.ResponseWriter, err error) {
	if errors.Is(err, grid.ErrInvalid) {
		http.Error(w, ErrInvalidGrid+": "+err.Error(), http.StatusBadRequest)
		return
	}
	log.Printf("Error building grid: %v", err)
	http.Error(w, ErrInternalServer, http.StatusInternalServerError)
}

package app

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/klabast/wb-services/kalender-grid/internal/grid"
)

// GridRequest describes a grid to build from stored events.
type GridRequest struct {
	Calendar string
	Start    string
	Duration int
	FirstDay int
	Prefill  bool
	Postfill bool
	// Month restricts the result to one "YYYY-MM" month.
	Month string
	// Types is a comma separated event type filter.
	Types string
}

// parseGridRequest reads grid parameters from the query, falling back to the
// configured defaults and the current month.
func (a *App) parseGridRequest(r *http.Request) (GridRequest, error) {
	q := r.URL.Query()
	req := GridRequest{
		Calendar: q.Get("calendar"),
		Start:    q.Get("start"),
		Month:    q.Get("month"),
		Types:    q.Get("types"),
	}
	if req.Start == "" {
		req.Start = grid.DateOf(a.now()).MonthKey().String()
	}

	var err error
	if req.Duration, err = queryInt(r, "duration", 0); err != nil {
		return req, fmt.Errorf("duration: %w", err)
	}
	if req.FirstDay, err = queryInt(r, "firstDay", a.Config.FirstDayOfWeek); err != nil {
		return req, fmt.Errorf("firstDay: %w", err)
	}
	if req.Prefill, err = queryBool(r, "prefill", a.Config.Prefill); err != nil {
		return req, fmt.Errorf("prefill: %w", err)
	}
	if req.Postfill, err = queryBool(r, "postfill", a.Config.Postfill); err != nil {
		return req, fmt.Errorf("postfill: %w", err)
	}
	return req, nil
}

// BuildGrid builds the grid for req and attaches the calendar's events, the
// holidays and today's marker to the cells the grid covers.
func (a *App) BuildGrid(req GridRequest) (*grid.Grid, error) {
	g, err := grid.New(grid.Options{
		Start:          req.Start,
		Duration:       req.Duration,
		FirstDayOfWeek: req.FirstDay,
		Prefill:        req.Prefill,
		Postfill:       req.Postfill,
	})
	if err != nil {
		return nil, err
	}

	first, last, ok := g.Range()
	if !ok {
		return g, nil
	}

	if a.Config.Holidays {
		for d, name := range HolidaysBetween(first, last) {
			g.Add(d, nil, grid.Properties{PropHoliday: name})
		}
	}
	if today := grid.DateOf(a.now()); !today.Before(first) && !today.After(last) {
		g.Add(today, nil, grid.Properties{PropToday: true})
	}

	if req.Calendar != "" {
		for _, e := range FilterEventsByType(a.Store.Events(req.Calendar), req.Types) {
			d, err := parseEventDate(e.Date)
			if err != nil {
				continue
			}
			if _, ok := g.Cell(d); ok {
				g.Add(d, e, nil)
			}
		}
	}

	if req.Month != "" {
		g = g.Filter(req.Month)
	}
	return g, nil
}

// GridEvents returns the events attached to the real days of g, in date order.
func GridEvents(g *grid.Grid) []Event {
	months, err := g.Get()
	if err != nil {
		return nil
	}
	events := []Event{}
	for _, m := range months {
		for _, c := range m.Days() {
			if c.IsExtra {
				continue
			}
			for _, ev := range c.Events {
				if e, ok := ev.(Event); ok {
					events = append(events, e)
				}
			}
		}
	}
	return events
}

// exportName builds the download file stem for a calendar and grid range.
func exportName(calendar string, g *grid.Grid) string {
	name := "kalender"
	if calendar != "" {
		name += "_" + strings.ReplaceAll(calendar, " ", "_")
	}
	if first, last, ok := g.Range(); ok {
		name += "_" + first.String() + "_" + last.String()
	}
	return name
}

package app

import (
	"encoding/json"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"
)

// RequireMethod validates that the request uses the specified HTTP method
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// RequireEditMode validates that edit mode is enabled
func (a *App) RequireEditMode(w http.ResponseWriter) bool {
	if !a.Config.EditMode {
		http.Error(w, ErrEditModeDisabled, http.StatusForbidden)
		return false
	}
	return true
}

// SortEventsByDate sorts events by date in ascending order
func SortEventsByDate(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date < events[j].Date
	})
}

// FilterEventsByType keeps events whose type is in the comma separated list.
// An empty list keeps everything.
func FilterEventsByType(events []Event, typesFilter string) []Event {
	if typesFilter == "" {
		return events
	}
	typeMap := make(map[string]bool)
	for _, t := range strings.Split(typesFilter, ",") {
		typeMap[strings.TrimSpace(t)] = true
	}

	var filtered []Event
	for _, e := range events {
		if typeMap[e.Type] {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// writeJSON encodes v as the response body
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeStatus(w http.ResponseWriter, status string) {
	writeJSON(w, map[string]string{"status": status})
}

// queryInt returns the integer query parameter or def when it is absent.
func queryInt(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

// queryBool returns the boolean query parameter or def when it is absent.
func queryBool(r *http.Request, key string, def bool) (bool, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	return strconv.ParseBool(v)
}

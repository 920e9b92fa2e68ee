package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/klabast/wb-services/kalender-grid/internal/grid"
)

// Store keeps the events of all calendars in memory, backed by a JSON file.
// Edits are auto-saved to a tmp file until committed.
type Store struct {
	mu   sync.RWMutex
	path string
	data *CalendarData
}

// NewStore returns an empty store persisted at path.
func NewStore(path string) *Store {
	return &Store{path: path, data: newCalendarData()}
}

// Path returns the main data file.
func (s *Store) Path() string {
	return s.path
}

// Load loads the calendar data from the main file. A missing file leaves the
// store empty.
func (s *Store) Load() error {
	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		log.Printf("[store] no data file at %s, starting empty", s.path)
		s.mu.Lock()
		s.data = newCalendarData()
		s.mu.Unlock()
		return nil
	}
	return s.loadFromFile(s.path)
}

// LoadWithTmpCheck loads unsaved edits from the tmp file if one exists,
// otherwise the main file.
func (s *Store) LoadWithTmpCheck() error {
	tmpFile := s.path + TmpSuffix

	if _, err := os.Stat(tmpFile); err == nil {
		log.Printf("⚠️  Found temporary calendar file: %s (loading unsaved changes)", tmpFile)
		return s.loadFromFile(tmpFile)
	}

	return s.Load()
}

func (s *Store) loadFromFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("read %s: %w", filename, err)
	}

	loaded := newCalendarData()
	if err := json.Unmarshal(data, loaded); err != nil {
		return fmt.Errorf("decode %s: %w", filename, err)
	}
	if loaded.Calendars == nil {
		loaded.Calendars = make(map[string]*Calendar)
	}
	if loaded.Metadata == nil {
		loaded.Metadata = make(map[string]string)
	}
	for _, cal := range loaded.Calendars {
		for i := range cal.Events {
			if cal.Events[i].ID == "" {
				cal.Events[i].ID = uuid.NewString()
			}
		}
		SortEventsByDate(cal.Events)
	}

	s.mu.Lock()
	s.data = loaded
	s.mu.Unlock()

	return nil
}

// Save writes the calendar data to the main file, keeping the previous file
// as a backup. Pending edits in the tmp file are left alone.
func (s *Store) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}

	if _, err := os.Stat(s.path); err == nil {
		backupFile := s.path + BackupSuffix
		if err := os.Rename(s.path, backupFile); err != nil {
			log.Printf("Warning: failed to create backup: %v", err)
		}
	}

	stagingFile := s.path + StagingSuffix
	if err := os.WriteFile(stagingFile, data, FilePermissions); err != nil {
		return err
	}

	return os.Rename(stagingFile, s.path)
}

// SavePending writes the calendar data to the tmp file, making it an
// uncommitted change like the edit-mode operations.
func (s *Store) SavePending() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saveTmpLocked()
}

// saveTmpLocked auto-saves edits to the tmp file (caller must hold lock)
func (s *Store) saveTmpLocked() error {
	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path+TmpSuffix, data, FilePermissions)
}

// Commit makes the tmp file the new main file, moving the old one into the
// backup directory with a timestamp.
func (s *Store) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmpFile := s.path + TmpSuffix

	if _, err := os.Stat(tmpFile); os.IsNotExist(err) {
		return fmt.Errorf("no temporary changes to commit")
	}

	backupDirPath := filepath.Join(filepath.Dir(s.path), BackupDir)
	if err := os.MkdirAll(backupDirPath, 0755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		timestamp := time.Now().Unix()
		backupFile := filepath.Join(backupDirPath, fmt.Sprintf("%d_%s%s", timestamp, filepath.Base(s.path), BackupSuffix))
		if err := os.Rename(s.path, backupFile); err != nil {
			return fmt.Errorf("failed to create backup: %w", err)
		}
		log.Printf("✅ Backup created: %s", backupFile)
	}

	if err := os.Rename(tmpFile, s.path); err != nil {
		return fmt.Errorf("failed to commit changes: %w", err)
	}

	log.Printf("✅ Changes committed to %s", s.path)
	return nil
}

// Revert discards tmp changes and reloads the main file
func (s *Store) Revert() error {
	tmpFile := s.path + TmpSuffix

	if _, err := os.Stat(tmpFile); os.IsNotExist(err) {
		return fmt.Errorf("no temporary changes to revert")
	}

	if err := os.Remove(tmpFile); err != nil {
		return fmt.Errorf("failed to remove tmp file: %w", err)
	}

	if err := s.Load(); err != nil {
		return fmt.Errorf("failed to reload calendar: %w", err)
	}

	log.Printf("✅ Changes reverted, reloaded from %s", s.path)
	return nil
}

// HasTmpChanges reports whether unsaved edits exist
func (s *Store) HasTmpChanges() bool {
	_, err := os.Stat(s.path + TmpSuffix)
	return err == nil
}

// Calendars returns the sorted calendar names.
func (s *Store) Calendars() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.data.Calendars))
	for name := range s.data.Calendars {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Events returns a copy of a calendar's events, sorted by date.
func (s *Store) Events(calendar string) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cal, ok := s.data.Calendars[calendar]
	if !ok {
		return []Event{}
	}
	return slices.Clone(cal.Events)
}

// AddEvent stores e in calendar unless an event with the same date and type
// exists. It reports whether the event was added.
func (s *Store) AddEvent(calendar string, e Event) (Event, bool, error) {
	d, err := parseEventDate(e.Date)
	if err != nil {
		return Event{}, false, err
	}
	e.Date = d.String()

	s.mu.Lock()
	defer s.mu.Unlock()

	cal := s.calendarLocked(calendar)
	for _, existing := range cal.Events {
		if existing.Date == e.Date && existing.Type == e.Type {
			return existing, false, nil
		}
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	cal.Events = append(cal.Events, e)
	SortEventsByDate(cal.Events)

	if err := s.saveTmpLocked(); err != nil {
		return e, true, fmt.Errorf("save tmp calendar: %w", err)
	}
	return e, true, nil
}

// DeleteEvent removes the event with id. It reports whether one was found.
func (s *Store) DeleteEvent(calendar, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cal, ok := s.data.Calendars[calendar]
	if !ok {
		return false, nil
	}
	n := len(cal.Events)
	cal.Events = slices.DeleteFunc(cal.Events, func(e Event) bool { return e.ID == id })
	if len(cal.Events) == n {
		return false, nil
	}

	if err := s.saveTmpLocked(); err != nil {
		return true, fmt.Errorf("save tmp calendar: %w", err)
	}
	return true, nil
}

// MoveEvent changes the date of the event with id.
func (s *Store) MoveEvent(calendar, id, newDate string) (bool, error) {
	d, err := parseEventDate(newDate)
	if err != nil {
		return false, err
	}
	newDate = d.String()

	s.mu.Lock()
	defer s.mu.Unlock()

	cal, ok := s.data.Calendars[calendar]
	if !ok {
		return false, nil
	}
	i := slices.IndexFunc(cal.Events, func(e Event) bool { return e.ID == id })
	if i < 0 {
		return false, nil
	}
	cal.Events[i].Date = newDate
	SortEventsByDate(cal.Events)

	if err := s.saveTmpLocked(); err != nil {
		return true, fmt.Errorf("save tmp calendar: %w", err)
	}
	return true, nil
}

// Import adds events in bulk, skipping duplicates, and returns how many were
// added. source is recorded in the metadata. The caller persists with Save
// or SavePending.
func (s *Store) Import(calendar, source string, events []Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cal := s.calendarLocked(calendar)
	added := 0
	for _, e := range events {
		d, err := parseEventDate(e.Date)
		if err != nil {
			log.Printf("[store] skipping event %q: %v", e.Description, err)
			continue
		}
		e.Date = d.String()
		dup := slices.ContainsFunc(cal.Events, func(existing Event) bool {
			return existing.Date == e.Date && existing.Type == e.Type && existing.Description == e.Description
		})
		if dup {
			continue
		}
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		cal.Events = append(cal.Events, e)
		added++
	}
	SortEventsByDate(cal.Events)
	s.data.Metadata[MetadataCreatedAt] = time.Now().UTC().Format(time.RFC3339)
	if source != "" {
		s.data.Metadata[MetadataSource] = source
	}
	return added
}

func (s *Store) calendarLocked(name string) *Calendar {
	cal, ok := s.data.Calendars[name]
	if !ok {
		cal = &Calendar{Events: []Event{}}
		s.data.Calendars[name] = cal
	}
	return cal
}

// parseEventDate accepts full dates only.
func parseEventDate(s string) (grid.Date, error) {
	d, partial, err := grid.ParseDate(s)
	if err != nil || partial {
		return grid.Date{}, fmt.Errorf("%s: %q", ErrInvalidDateFormat, s)
	}
	return d, nil
}

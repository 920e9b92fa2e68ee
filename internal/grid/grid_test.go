package grid

import (
	"encoding/json"
	"errors"
	"slices"
	"testing"
)

// snapshot lists every cell as "date" or "date*" for extra days.
func snapshot(g *Grid) []string {
	var out []string
	for _, c := range g.Cells() {
		s := c.Date.String()
		if c.IsExtra {
			s += "*"
		}
		out = append(out, s)
	}
	return out
}

func realCells(g *Grid) []*Cell {
	var out []*Cell
	for _, c := range g.Cells() {
		if !c.IsExtra {
			out = append(out, c)
		}
	}
	return out
}

func mustNew(t *testing.T, opts Options) *Grid {
	t.Helper()
	g, err := New(opts)
	if err != nil {
		t.Fatalf("New(%+v) failed: %v", opts, err)
	}
	return g
}

func TestNewRange(t *testing.T) {
	tests := []struct {
		name     string
		start    string
		duration int
		want     []Date
	}{
		{
			name:     "Month rollover",
			start:    "2012-01-30",
			duration: 3,
			want:     []Date{{2012, 1, 30}, {2012, 1, 31}, {2012, 2, 1}},
		},
		{
			name:     "Leap year",
			start:    "2012-02-28",
			duration: 3,
			want:     []Date{{2012, 2, 28}, {2012, 2, 29}, {2012, 3, 1}},
		},
		{
			name:     "Year rollover",
			start:    "2012-12-30",
			duration: 3,
			want:     []Date{{2012, 12, 30}, {2012, 12, 31}, {2013, 1, 1}},
		},
		{
			name:     "Single day",
			start:    "2012-12-03",
			duration: 1,
			want:     []Date{{2012, 12, 3}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := mustNew(t, Options{Start: tt.start, Duration: tt.duration})

			var got []Date
			for _, c := range g.Cells() {
				if c.IsExtra {
					t.Errorf("Unexpected extra day %v without padding", c.Date)
				}
				got = append(got, c.Date)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("Days = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewLongRange(t *testing.T) {
	g := mustNew(t, Options{Start: "2011-12-15", Duration: 400})

	cells := g.Cells()
	if len(cells) != 400 {
		t.Fatalf("Expected 400 days, got %d", len(cells))
	}
	if cells[0].Date != (Date{2011, 12, 15}) {
		t.Errorf("First day = %v, want 2011-12-15", cells[0].Date)
	}
	if want := (Date{2011, 12, 15}).AddDays(399); cells[399].Date != want {
		t.Errorf("Last day = %v, want %v", cells[399].Date, want)
	}
	for i := 1; i < len(cells); i++ {
		if cells[i].Date != cells[i-1].Date.Next() {
			t.Fatalf("Gap between %v and %v", cells[i-1].Date, cells[i].Date)
		}
	}
}

func TestNewZeroDurationUsesMonthLength(t *testing.T) {
	g := mustNew(t, Options{Start: "2012-11", Duration: 0})

	months, err := g.Get()
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if len(months) != 1 || months[0].Key().String() != "2012-11" {
		t.Fatalf("Expected only month 2012-11, got %d months", len(months))
	}
	if got := len(realCells(g)); got != 30 {
		t.Errorf("Expected 30 real days, got %d", got)
	}
	if g.Duration() != 30 {
		t.Errorf("Duration() = %d, want 30", g.Duration())
	}
}

func TestNewStartDate(t *testing.T) {
	g := mustNew(t, Options{StartDate: Date{2024, 2, 1}})
	if got := len(g.Cells()); got != 29 {
		t.Errorf("Expected 29 days for February 2024, got %d", got)
	}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name  string
		opts  Options
		field string
	}{
		{name: "Unparsable start", opts: Options{Start: "someday"}, field: "start date"},
		{name: "Impossible start", opts: Options{Start: "2013-02-29"}, field: "start date"},
		{name: "Invalid StartDate", opts: Options{StartDate: Date{2013, 2, 30}}, field: "start date"},
		{name: "Missing start", opts: Options{}, field: "start date"},
		{name: "Negative duration", opts: Options{Start: "2012-12-03", Duration: -1}, field: "duration"},
		{name: "Huge duration", opts: Options{Start: "2012-12-03", Duration: MaxDuration + 1}, field: "duration"},
		{name: "First day too large", opts: Options{Start: "2012-12-03", FirstDayOfWeek: 7}, field: "first day of week"},
		{name: "First day negative", opts: Options{Start: "2012-12-03", FirstDayOfWeek: -1}, field: "first day of week"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := New(tt.opts)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if g != nil {
				t.Error("Expected no grid on validation error")
			}
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("Expected errors.Is(err, ErrInvalid), got %v", err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Expected *ValidationError, got %T", err)
			}
			if verr.Field != tt.field {
				t.Errorf("Field = %q, want %q", verr.Field, tt.field)
			}
			if err := tt.opts.Validate(); err == nil {
				t.Error("Validate() should fail as well")
			}
		})
	}
}

func TestGetOnNilGrid(t *testing.T) {
	var g *Grid
	months, err := g.Get()
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("Expected ErrInvalid, got %v", err)
	}
	if months != nil {
		t.Error("Expected no months")
	}
}

func TestNilGridOperations(t *testing.T) {
	g, err := New(Options{Start: "2012-13-01"})
	if err == nil || g != nil {
		t.Fatalf("New with bad start = %v, %v; want nil grid and error", g, err)
	}

	if c := g.Add(Date{2012, 12, 3}, "x", Properties{"k": 1}); c != nil {
		t.Errorf("Add on nil grid = %v, want nil", c)
	}
	g.Fill("x", nil, true)
	g.Sort()
	g.Adjust()
	if got := g.Filter("2012-12"); got != nil {
		t.Errorf("Filter on nil grid = %v, want nil", got)
	}
	if got := g.Header(); !slices.Equal(got, WeekdayLabels[:]) {
		t.Errorf("Header on nil grid = %v", got)
	}
	if g.Len() != 0 || g.Cells() != nil {
		t.Error("nil grid should have no cells")
	}
	if _, ok := g.Cell(Date{2012, 12, 3}); ok {
		t.Error("Cell on nil grid should report missing")
	}
	if _, _, ok := g.Range(); ok {
		t.Error("Range on nil grid should report empty")
	}
	if g.Start() != (Date{}) || g.Duration() != 0 || g.FirstDayOfWeek() != 0 {
		t.Error("getters on nil grid should return zero values")
	}
	for name, err := range map[string]error{
		"SetStartDate":      g.SetStartDate("2012-12-01"),
		"SetDuration":       g.SetDuration(3),
		"SetFirstDayOfWeek": g.SetFirstDayOfWeek(2),
		"AdjustTo":          g.AdjustTo(2),
	} {
		if !errors.Is(err, ErrInvalid) {
			t.Errorf("%s on nil grid = %v, want ErrInvalid", name, err)
		}
	}
}

func TestAddMergesIntoSameCell(t *testing.T) {
	g := mustNew(t, Options{Start: "2012-12-03", Duration: 14})
	d := Date{2012, 12, 5}
	before := g.Len()

	g.Add(d, nil, Properties{"color": "red", "note": "keep"})
	c := g.Add(d, "dentist", Properties{"color": "blue"})
	g.Add(d, "gym", nil)
	g.Add(d, "", nil)

	if g.Len() != before {
		t.Errorf("Add duplicated cells: %d -> %d", before, g.Len())
	}
	if c.Meta["color"] != "blue" {
		t.Errorf("Expected caller value to win, got %v", c.Meta["color"])
	}
	if c.Meta["note"] != "keep" {
		t.Errorf("Expected existing metadata to survive, got %v", c.Meta["note"])
	}
	if !c.HasEvent {
		t.Error("Expected HasEvent after adding an event")
	}
	if c.IsExtra {
		t.Error("Real day must stay real")
	}
	if !slices.Equal(c.Events, []any{"dentist", "gym"}) {
		t.Errorf("Events = %v, want [dentist gym]", c.Events)
	}
}

func TestAddOverridesFlags(t *testing.T) {
	g := mustNew(t, Options{Start: "2012-12-03", Duration: 14, Prefill: true})

	extra, ok := g.Cell(Date{2012, 12, 2})
	if !ok || !extra.IsExtra {
		t.Fatal("Expected 2012-12-02 to be padding")
	}

	g.Add(extra.Date, "party", nil)
	if !extra.IsExtra {
		t.Error("Adding an event must keep the padding flag")
	}
	if !extra.HasEvent || len(extra.Events) != 1 {
		t.Error("Expected the event on the padding day")
	}

	g.Add(extra.Date, nil, Properties{PropExtra: false, PropHasEvent: false, PropEvents: "ignored"})
	if extra.IsExtra || extra.HasEvent {
		t.Error("Explicit properties should override the flags")
	}
	if len(extra.Events) != 1 {
		t.Error("Events must not be replaced through properties")
	}
	if _, ok := extra.Meta[PropEvents]; ok {
		t.Error("Reserved keys must not land in metadata")
	}
}

func TestAddOutsideRange(t *testing.T) {
	g := mustNew(t, Options{Start: "2012-12-03", Duration: 14})

	if c := g.Add(Date{2013, 2, 30}, "x", nil); c != nil {
		t.Error("Expected nil for a non-existent date")
	}

	g.Add(Date{2013, 1, 10}, "later", nil)
	months, _ := g.Get()
	if len(months) != 2 {
		t.Fatalf("Expected a new month bucket, got %d months", len(months))
	}
	if months[1].Key() != (MonthKey{2013, 1}) {
		t.Errorf("Expected 2013-01 second, got %v", months[1].Key())
	}
}

func TestFill(t *testing.T) {
	t.Run("Real days only", func(t *testing.T) {
		g := mustNew(t, Options{Start: "2012-12-03", Duration: 14, Prefill: true, Postfill: true})
		g.Fill("standup", Properties{"kind": "meeting"}, false)

		for _, c := range g.Cells() {
			if c.IsExtra {
				if c.HasEvent || len(c.Events) != 0 || c.Meta != nil {
					t.Errorf("Padding day %v should be untouched", c.Date)
				}
				continue
			}
			if !c.HasEvent || !slices.Equal(c.Events, []any{"standup"}) {
				t.Errorf("Real day %v missing event: %v", c.Date, c.Events)
			}
			if c.Meta["kind"] != "meeting" {
				t.Errorf("Real day %v missing properties", c.Date)
			}
		}
	})

	t.Run("Including extra days", func(t *testing.T) {
		g := mustNew(t, Options{Start: "2012-12-03", Duration: 14, Prefill: true, Postfill: true})
		g.Fill("standup", nil, true)

		for _, c := range g.Cells() {
			if !c.HasEvent {
				t.Errorf("Day %v missing event", c.Date)
			}
		}
	})
}

func TestSortIsIdempotent(t *testing.T) {
	g := mustNew(t, Options{Start: "2012-12-20", Duration: 3})
	g.Add(Date{2013, 2, 1}, nil, nil)
	g.Add(Date{2012, 11, 30}, nil, nil)
	g.Add(Date{2012, 12, 10}, nil, nil)
	g.Add(Date{2012, 12, 2}, nil, nil)

	g.Sort()
	once := snapshot(g)
	g.Sort()
	twice := snapshot(g)

	if !slices.Equal(once, twice) {
		t.Errorf("Second Sort() changed order:\n%v\n%v", once, twice)
	}
	want := []string{
		"2012-11-30",
		"2012-12-02", "2012-12-10", "2012-12-20", "2012-12-21", "2012-12-22",
		"2013-02-01",
	}
	if !slices.Equal(once, want) {
		t.Errorf("Sort() = %v, want %v", once, want)
	}
}

func TestHeader(t *testing.T) {
	tests := []struct {
		firstDay int
		want     []string
	}{
		{0, []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}},
		{1, []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}},
		{2, []string{"Tue", "Wed", "Thu", "Fri", "Sat", "Sun", "Mon"}},
		{6, []string{"Sat", "Sun", "Mon", "Tue", "Wed", "Thu", "Fri"}},
	}

	for _, tt := range tests {
		g := mustNew(t, Options{Start: "2012-12", FirstDayOfWeek: tt.firstDay})
		if got := g.Header(); !slices.Equal(got, tt.want) {
			t.Errorf("Header() with first day %d = %v, want %v", tt.firstDay, got, tt.want)
		}
	}

	if got := HeaderLabels([]string{"a", "b"}, 1); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("HeaderLabels() should leave a short list alone, got %v", got)
	}
}

func TestFilter(t *testing.T) {
	g := mustNew(t, Options{Start: "2012-11-01", Duration: 30 + 31 + 31, Prefill: true, Postfill: true})
	original := snapshot(g)

	dec := g.Filter("2012-12")
	if dec == g {
		t.Fatal("Expected a new grid")
	}

	months, err := dec.Get()
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	var keys []string
	for _, m := range months {
		keys = append(keys, m.Key().String())
	}
	// December 2012 starts on a Saturday and ends on a Monday.
	if !slices.Equal(keys, []string{"2012-11", "2012-12", "2013-01"}) {
		t.Errorf("Months = %v", keys)
	}
	if got := len(realCells(dec)); got != 31 {
		t.Errorf("Expected 31 real days, got %d", got)
	}
	first, last, _ := dec.Range()
	if first != (Date{2012, 11, 25}) || last != (Date{2013, 1, 5}) {
		t.Errorf("Range() = %v..%v, want 2012-11-25..2013-01-05", first, last)
	}
	if dec.Len() != 42 {
		t.Errorf("Expected 6 full weeks, got %d days", dec.Len())
	}

	dec.Add(Date{2012, 12, 5}, "copy only", Properties{"x": 1})
	if c, _ := g.Cell(Date{2012, 12, 5}); c.HasEvent || c.Meta != nil {
		t.Error("Mutating the filtered grid changed the original")
	}
	if got := snapshot(g); !slices.Equal(got, original) {
		t.Error("Filter() mutated the original grid")
	}
}

func TestFilterCopiesEvents(t *testing.T) {
	g := mustNew(t, Options{Start: "2012-12", Prefill: true, Postfill: true})
	g.Add(Date{2012, 12, 24}, "eve", nil)

	cp := g.Filter("2012-12")
	c, ok := cp.Cell(Date{2012, 12, 24})
	if !ok || !slices.Equal(c.Events, []any{"eve"}) {
		t.Fatal("Expected events to be copied")
	}
	c.Events[0] = "changed"
	orig, _ := g.Cell(Date{2012, 12, 24})
	if orig.Events[0] != "eve" {
		t.Error("Event slices must not be shared")
	}
}

func TestFilterUnknownMonth(t *testing.T) {
	g := mustNew(t, Options{Start: "2012-12-03", Duration: 14})

	for _, key := range []string{"2013-05", "not a month", ""} {
		if got := g.Filter(key); got != g {
			t.Errorf("Filter(%q) should return the receiver", key)
		}
	}
}

func TestGetJSON(t *testing.T) {
	g := mustNew(t, Options{Start: "2012-11-01", Duration: 2})
	g.Add(Date{2012, 11, 1}, "a", Properties{"holiday": "All Saints"})

	months, err := g.Get()
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	b, err := json.Marshal(months)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	want := `{"2012-11":{"year":2012,"month":11,"days":{` +
		`"1":{"events":["a"],"hasEvent":true,"holiday":"All Saints","isExtra":false},` +
		`"2":{"events":[],"hasEvent":false,"isExtra":false}}}}`
	if string(b) != want {
		t.Errorf("JSON =\n%s\nwant\n%s", b, want)
	}
}

func TestGetKeepsNumericDayOrder(t *testing.T) {
	g := mustNew(t, Options{Start: "2012-11"})
	months, _ := g.Get()

	var days []int
	for _, c := range months[0].Days() {
		days = append(days, c.Date.Day)
	}
	if !slices.IsSorted(days) || len(days) != 30 {
		t.Errorf("Days out of order: %v", days)
	}
}

func TestSetters(t *testing.T) {
	g := mustNew(t, Options{Start: "2012-11", Prefill: true, Postfill: true})
	g.Fill("x", nil, false)

	if err := g.SetStartDate("2013-02"); err != nil {
		t.Fatalf("SetStartDate() failed: %v", err)
	}
	if got := len(realCells(g)); got != 28 {
		t.Errorf("Expected derived duration of 28 days, got %d", got)
	}
	for _, c := range g.Cells() {
		if c.HasEvent {
			t.Fatal("Rebuilding should discard events")
		}
	}

	if err := g.SetDuration(10); err != nil {
		t.Fatalf("SetDuration() failed: %v", err)
	}
	if got := len(realCells(g)); got != 10 {
		t.Errorf("Expected 10 real days, got %d", got)
	}

	before := snapshot(g)
	if err := g.SetDuration(-3); !errors.Is(err, ErrInvalid) {
		t.Errorf("Expected ErrInvalid, got %v", err)
	}
	if err := g.SetStartDate("tomorrow"); !errors.Is(err, ErrInvalid) {
		t.Errorf("Expected ErrInvalid, got %v", err)
	}
	if err := g.SetFirstDayOfWeek(8); !errors.Is(err, ErrInvalid) {
		t.Errorf("Expected ErrInvalid, got %v", err)
	}
	if got := snapshot(g); !slices.Equal(got, before) {
		t.Error("Rejected values must leave the grid alone")
	}

	if err := g.SetFirstDayOfWeek(3); err != nil {
		t.Fatalf("SetFirstDayOfWeek() failed: %v", err)
	}
	if g.FirstDayOfWeek() != 3 {
		t.Errorf("FirstDayOfWeek() = %d, want 3", g.FirstDayOfWeek())
	}
	first, _, _ := g.Range()
	if Weekday(first) != 3 {
		t.Errorf("Expected grid to start on a Wednesday after Get, got %v", first)
	}
}

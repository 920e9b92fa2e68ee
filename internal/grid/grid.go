// Package grid builds month-view calendar grids: a contiguous range of days
// bucketed by month, padded with extra days so that the displayed weeks are
// complete for a chosen first day of week, with events attached per day.
package grid

import (
	"cmp"
	"maps"
	"slices"
)

// MaxDuration caps the number of real days a grid may hold.
const MaxDuration = 3660

// WeekdayLabels are the column labels, index 0 = Sunday.
var WeekdayLabels = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Options configure a new grid.
type Options struct {
	// Start is "YYYY-MM-DD" or "YYYY-MM". It takes precedence over StartDate.
	Start     string
	StartDate Date
	// Duration is the number of real days. Zero means the length of the
	// start date's month.
	Duration       int
	FirstDayOfWeek int
	Prefill        bool
	Postfill       bool
}

// Validate checks the options without building a grid.
func (o Options) Validate() error {
	_, _, err := o.resolve()
	return err
}

func (o Options) resolve() (start Date, duration int, err error) {
	switch {
	case o.Start != "":
		d, _, perr := ParseDate(o.Start)
		if perr != nil {
			return Date{}, 0, invalid("start date", o.Start, "expected YYYY-MM-DD or YYYY-MM")
		}
		start = d
	case o.StartDate != (Date{}):
		if !o.StartDate.Valid() {
			return Date{}, 0, invalid("start date", o.StartDate, "no such day")
		}
		start = o.StartDate
	default:
		return Date{}, 0, invalid("start date", "", "required")
	}

	if err := checkFirstDay(o.FirstDayOfWeek); err != nil {
		return Date{}, 0, err
	}

	duration, err = resolveDuration(start, o.Duration)
	if err != nil {
		return Date{}, 0, err
	}
	return start, duration, nil
}

func resolveDuration(start Date, n int) (int, error) {
	switch {
	case n < 0:
		return 0, invalid("duration", n, "must not be negative")
	case n > MaxDuration:
		return 0, invalid("duration", n, "too large")
	case n == 0:
		return DaysIn(start.Year, start.Month), nil
	}
	return n, nil
}

func checkFirstDay(k int) error {
	if k < 0 || k > 6 {
		return invalid("first day of week", k, "must be between 0 and 6")
	}
	return nil
}

// Grid is a calendar grid. It is not safe for concurrent mutation.
// A nil *Grid, as returned by a failed New, reads as empty: mutators are
// no-ops or return ErrInvalid, Filter returns nil and Header the default
// labels.
type Grid struct {
	start        Date
	duration     int
	autoDuration bool
	firstDay     int
	prefill      bool
	postfill     bool

	months     map[MonthKey]*Month
	order      []MonthKey
	normalized bool
}

// New validates opts and builds the grid: real days first, then padding.
func New(opts Options) (*Grid, error) {
	start, duration, err := opts.resolve()
	if err != nil {
		return nil, err
	}
	g := &Grid{
		start:        start,
		duration:     duration,
		autoDuration: opts.Duration == 0,
		firstDay:     opts.FirstDayOfWeek,
		prefill:      opts.Prefill,
		postfill:     opts.Postfill,
	}
	g.populate()
	return g, nil
}

func (g *Grid) populate() {
	g.months = make(map[MonthKey]*Month)
	g.order = nil

	d := g.start
	for range g.duration {
		g.Add(d, nil, nil)
		d = d.Next()
	}
	g.Adjust()
}

// Start returns the first real day of the configured range.
func (g *Grid) Start() Date {
	if g == nil {
		return Date{}
	}
	return g.start
}

// Duration returns the number of real days of the configured range.
func (g *Grid) Duration() int {
	if g == nil {
		return 0
	}
	return g.duration
}

// FirstDayOfWeek returns the alignment weekday, 0 = Sunday.
func (g *Grid) FirstDayOfWeek() int {
	if g == nil {
		return 0
	}
	return g.firstDay
}

// SetStartDate moves the range to start and rebuilds the grid. Attached
// events and metadata are discarded.
func (g *Grid) SetStartDate(start string) error {
	if g == nil {
		return ErrInvalid
	}
	d, _, err := ParseDate(start)
	if err != nil {
		return invalid("start date", start, "expected YYYY-MM-DD or YYYY-MM")
	}
	g.start = d
	if g.autoDuration {
		g.duration = DaysIn(d.Year, d.Month)
	}
	g.populate()
	return nil
}

// SetDuration changes the number of real days and rebuilds the grid. Zero
// selects the length of the start date's month.
func (g *Grid) SetDuration(n int) error {
	if g == nil {
		return ErrInvalid
	}
	duration, err := resolveDuration(g.start, n)
	if err != nil {
		return err
	}
	g.duration = duration
	g.autoDuration = n == 0
	g.populate()
	return nil
}

// SetFirstDayOfWeek changes the alignment weekday. The padding follows on
// the next Adjust or Get.
func (g *Grid) SetFirstDayOfWeek(k int) error {
	if g == nil {
		return ErrInvalid
	}
	if err := checkFirstDay(k); err != nil {
		return err
	}
	if k != g.firstDay {
		g.firstDay = k
		g.normalized = false
	}
	return nil
}

// Header returns WeekdayLabels rotated so that index 0 is the first day of week.
func (g *Grid) Header() []string {
	return HeaderLabels(WeekdayLabels[:], g.FirstDayOfWeek())
}

// HeaderLabels rotates seven labels so that index 0 is labels[firstDay].
func HeaderLabels(labels []string, firstDay int) []string {
	if len(labels) != 7 || checkFirstDay(firstDay) != nil {
		return slices.Clone(labels)
	}
	out := make([]string, 0, 7)
	out = append(out, labels[firstDay:]...)
	return append(out, labels[:firstDay]...)
}

// Add makes sure a cell exists at d, merges props into it and appends event
// unless it is nil or "". It returns nil for a date that does not exist.
func (g *Grid) Add(d Date, event any, props Properties) *Cell {
	if g == nil || !d.Valid() {
		return nil
	}
	c := g.ensure(d)
	c.merge(props)
	c.addEvent(event)
	g.normalized = false
	return c
}

// Fill adds event and props to every cell. Extra cells are skipped unless
// includeExtra is set.
func (g *Grid) Fill(event any, props Properties, includeExtra bool) {
	for _, c := range g.Cells() {
		if c.IsExtra && !includeExtra {
			continue
		}
		g.Add(c.Date, event, props)
	}
}

// Cell returns the cell at d.
func (g *Grid) Cell(d Date) (*Cell, bool) {
	if g == nil {
		return nil, false
	}
	m, ok := g.months[d.MonthKey()]
	if !ok {
		return nil, false
	}
	return m.Day(d.Day)
}

// Cells returns every cell in grid order.
func (g *Grid) Cells() []*Cell {
	if g == nil {
		return nil
	}
	out := make([]*Cell, 0, g.Len())
	for _, k := range g.order {
		out = append(out, g.months[k].Days()...)
	}
	return out
}

// Len returns the number of cells, real and extra.
func (g *Grid) Len() int {
	if g == nil {
		return 0
	}
	n := 0
	for _, m := range g.months {
		n += m.Len()
	}
	return n
}

// Range returns the first and last day of the normalized grid.
func (g *Grid) Range() (first, last Date, ok bool) {
	if g == nil {
		return Date{}, Date{}, false
	}
	g.normalize()
	cells := g.Cells()
	if len(cells) == 0 {
		return Date{}, Date{}, false
	}
	return cells[0].Date, cells[len(cells)-1].Date, true
}

// Sort orders months chronologically and days ascending within each month.
func (g *Grid) Sort() {
	if g == nil {
		return
	}
	slices.SortStableFunc(g.order, func(a, b MonthKey) int {
		return cmp.Or(cmp.Compare(a.Year, b.Year), cmp.Compare(a.Month, b.Month))
	})
	for _, k := range g.order {
		slices.Sort(g.months[k].order)
	}
}

// Get normalizes the grid and returns its months. A nil grid yields ErrInvalid.
// The returned months share cells with the grid.
func (g *Grid) Get() (Months, error) {
	if g == nil {
		return nil, ErrInvalid
	}
	g.normalize()
	out := make(Months, 0, len(g.order))
	for _, k := range g.order {
		out = append(out, g.months[k])
	}
	return out, nil
}

// Filter returns an independent copy holding only the month named by key
// ("YYYY-MM"), re-padded on its own. For an unknown key it returns g itself.
func (g *Grid) Filter(key string) *Grid {
	if g == nil {
		return nil
	}
	k, err := ParseMonthKey(key)
	if err != nil {
		return g
	}
	m, ok := g.months[k]
	if !ok {
		return g
	}

	cp := g.shell()
	cp.months[k] = m.clone()
	cp.order = []MonthKey{k}

	realDays := 0
	for _, c := range cp.months[k].Days() {
		if c.IsExtra {
			continue
		}
		if realDays == 0 || c.Date.Before(cp.start) {
			cp.start = c.Date
		}
		realDays++
	}
	if realDays > 0 {
		cp.duration = realDays
		cp.autoDuration = false
	}
	cp.Adjust()
	return cp
}

func (g *Grid) shell() *Grid {
	return &Grid{
		start:        g.start,
		duration:     g.duration,
		autoDuration: g.autoDuration,
		firstDay:     g.firstDay,
		prefill:      g.prefill,
		postfill:     g.postfill,
		months:       make(map[MonthKey]*Month, len(g.months)),
	}
}

func (g *Grid) normalize() {
	if !g.normalized {
		g.Adjust()
	}
}

func (g *Grid) ensure(d Date) *Cell {
	key := d.MonthKey()
	m, ok := g.months[key]
	if !ok {
		m = newMonth(key)
		g.months[key] = m
		g.order = append(g.order, key)
	}
	c, ok := m.days[d.Day]
	if !ok {
		c = &Cell{Date: d}
		m.insert(c)
	}
	return c
}

func (g *Grid) remove(d Date) {
	if m, ok := g.months[d.MonthKey()]; ok {
		m.remove(d.Day)
	}
}

// prune drops months without cells.
func (g *Grid) prune() {
	maps.DeleteFunc(g.months, func(_ MonthKey, m *Month) bool {
		return m.Len() == 0
	})
	g.order = slices.DeleteFunc(g.order, func(k MonthKey) bool {
		_, ok := g.months[k]
		return !ok
	})
}

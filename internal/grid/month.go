package grid

import (
	"bytes"
	"encoding/json"
	"slices"
	"strconv"
)

// Month holds the cells of one calendar month.
type Month struct {
	Year  int
	Month int

	days  map[int]*Cell
	order []int
}

func newMonth(key MonthKey) *Month {
	return &Month{
		Year:  key.Year,
		Month: key.Month,
		days:  make(map[int]*Cell),
	}
}

// Key returns the month's key.
func (m *Month) Key() MonthKey {
	return MonthKey{Year: m.Year, Month: m.Month}
}

// Len returns the number of cells in the month.
func (m *Month) Len() int {
	return len(m.days)
}

// Day returns the cell for day of month.
func (m *Month) Day(day int) (*Cell, bool) {
	c, ok := m.days[day]
	return c, ok
}

// Days returns the cells in grid order.
func (m *Month) Days() []*Cell {
	out := make([]*Cell, 0, len(m.order))
	for _, d := range m.order {
		out = append(out, m.days[d])
	}
	return out
}

func (m *Month) insert(c *Cell) {
	m.days[c.Date.Day] = c
	m.order = append(m.order, c.Date.Day)
}

func (m *Month) remove(day int) {
	if _, ok := m.days[day]; !ok {
		return
	}
	delete(m.days, day)
	if i := slices.Index(m.order, day); i >= 0 {
		m.order = slices.Delete(m.order, i, i+1)
	}
}

func (m *Month) clone() *Month {
	cp := newMonth(m.Key())
	for _, d := range m.order {
		cp.insert(m.days[d].clone())
	}
	return cp
}

// MarshalJSON writes {"year":..,"month":..,"days":{..}} with days in grid order.
func (m *Month) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"year":`)
	buf.WriteString(strconv.Itoa(m.Year))
	buf.WriteString(`,"month":`)
	buf.WriteString(strconv.Itoa(m.Month))
	buf.WriteString(`,"days":{`)
	for i, d := range m.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strconv.Itoa(d))
		buf.WriteString(`":`)
		b, err := json.Marshal(m.days[d])
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteString("}}")
	return buf.Bytes(), nil
}

// Months is the normalized read shape of a grid, in chronological order.
type Months []*Month

// MarshalJSON writes an object keyed by "YYYY-MM" preserving order.
func (ms Months) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range ms {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(m.Key().String())
		buf.WriteString(`":`)
		b, err := json.Marshal(m)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

package app

import (
	"github.com/klabast/wb-services/kalender-grid/internal/grid"
)

// NRWHolidays returns all public holidays in NRW for the given year
func NRWHolidays(year int) map[grid.Date]string {
	holidays := map[grid.Date]string{
		grid.NewDate(year, 1, 1):   "Neujahr",
		grid.NewDate(year, 5, 1):   "Tag der Arbeit",
		grid.NewDate(year, 10, 3):  "Tag der Deutschen Einheit",
		grid.NewDate(year, 11, 1):  "Allerheiligen",
		grid.NewDate(year, 12, 25): "1. Weihnachtstag",
		grid.NewDate(year, 12, 26): "2. Weihnachtstag",
	}

	// Easter-based holidays (movable)
	easter := calculateEaster(year)
	holidays[easter.AddDays(-2)] = "Karfreitag"
	holidays[easter.AddDays(1)] = "Ostermontag"
	holidays[easter.AddDays(39)] = "Christi Himmelfahrt"
	holidays[easter.AddDays(50)] = "Pfingstmontag"
	holidays[easter.AddDays(60)] = "Fronleichnam"

	return holidays
}

// HolidaysBetween returns the holidays from first through last inclusive.
func HolidaysBetween(first, last grid.Date) map[grid.Date]string {
	out := make(map[grid.Date]string)
	for year := first.Year; year <= last.Year; year++ {
		for d, name := range NRWHolidays(year) {
			if !d.Before(first) && !d.After(last) {
				out[d] = name
			}
		}
	}
	return out
}

// calculateEaster calculates Easter Sunday using the Meeus/Jones/Butcher algorithm
func calculateEaster(year int) grid.Date {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := ((h + l - 7*m + 114) % 31) + 1

	return grid.NewDate(year, month, day)
}

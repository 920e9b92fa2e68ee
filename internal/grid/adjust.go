package grid

// Adjust aligns the padded edges of the grid to the first day of week, drops
// empty months and sorts. Running it twice in a row changes nothing the
// second time.
func (g *Grid) Adjust() {
	if g == nil {
		return
	}
	g.Sort()
	if g.prefill {
		g.alignLeading()
	}
	if g.postfill {
		g.alignTrailing()
	}
	g.prune()
	g.Sort()
	g.normalized = true
}

// AdjustTo sets the first day of week and adjusts. An out of range value is
// rejected and leaves the grid untouched.
func (g *Grid) AdjustTo(firstDay int) error {
	if err := g.SetFirstDayOfWeek(firstDay); err != nil {
		return err
	}
	g.Adjust()
	return nil
}

// alignLeading makes the grid start on the first day of week. Padding is
// measured from the earliest real day: surplus extra days in front of the
// target are removed, missing ones inserted. Cells must be sorted.
func (g *Grid) alignLeading() {
	cells := g.Cells()
	if len(cells) == 0 {
		return
	}
	anchor := cells[0].Date
	for _, c := range cells {
		if !c.IsExtra {
			anchor = c.Date
			break
		}
	}

	target := anchor
	for i := 0; i < 7 && Weekday(target) != g.firstDay; i++ {
		target = target.Prev()
	}

	// Everything in front of the anchor is padding.
	for _, c := range cells {
		if !c.Date.Before(target) {
			break
		}
		g.remove(c.Date)
	}
	for d := target; d.Before(anchor); d = d.Next() {
		g.ensureExtra(d)
	}
}

// alignTrailing makes the day after the grid's last cell fall on the first
// day of week, measured from the latest real day. Cells must be sorted.
func (g *Grid) alignTrailing() {
	g.Sort()
	cells := g.Cells()
	if len(cells) == 0 {
		return
	}
	anchor := cells[len(cells)-1].Date
	for i := len(cells) - 1; i >= 0; i-- {
		if !cells[i].IsExtra {
			anchor = cells[i].Date
			break
		}
	}

	target := anchor
	for i := 0; i < 7 && Weekday(target.Next()) != g.firstDay; i++ {
		target = target.Next()
	}

	for i := len(cells) - 1; i >= 0; i-- {
		if !cells[i].Date.After(target) {
			break
		}
		g.remove(cells[i].Date)
	}
	for d := anchor.Next(); !d.After(target); d = d.Next() {
		g.ensureExtra(d)
	}
}

func (g *Grid) ensureExtra(d Date) {
	if _, ok := g.Cell(d); ok {
		return
	}
	c := g.ensure(d)
	c.IsExtra = true
}

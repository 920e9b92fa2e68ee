package grid

import (
	"encoding/json"
	"maps"
	"slices"
)

// Reserved property keys. They map onto the typed fields of a Cell instead of
// its metadata.
const (
	PropExtra    = "isExtra"
	PropHasEvent = "hasEvent"
	PropEvents   = "events"
)

// Properties are merged into a cell by Add. Bool values under PropExtra and
// PropHasEvent override the typed flags, PropEvents is ignored and every other
// key lands in Cell.Meta, replacing an existing value.
type Properties map[string]any

// Cell is one day of the grid.
type Cell struct {
	Date     Date
	IsExtra  bool
	HasEvent bool
	Events   []any
	Meta     map[string]any
}

func (c *Cell) merge(props Properties) {
	for k, v := range props {
		switch k {
		case PropExtra:
			if b, ok := v.(bool); ok {
				c.IsExtra = b
			}
		case PropHasEvent:
			if b, ok := v.(bool); ok {
				c.HasEvent = b
			}
		case PropEvents:
		default:
			if c.Meta == nil {
				c.Meta = make(map[string]any, len(props))
			}
			c.Meta[k] = v
		}
	}
}

func (c *Cell) addEvent(event any) {
	if isEmptyEvent(event) {
		return
	}
	c.Events = append(c.Events, event)
	c.HasEvent = true
}

func (c *Cell) clone() *Cell {
	cp := *c
	cp.Events = slices.Clone(c.Events)
	cp.Meta = maps.Clone(c.Meta)
	return &cp
}

// MarshalJSON flattens metadata next to the typed fields.
func (c *Cell) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Meta)+3)
	for k, v := range c.Meta {
		out[k] = v
	}
	events := c.Events
	if events == nil {
		events = []any{}
	}
	out[PropExtra] = c.IsExtra
	out[PropHasEvent] = c.HasEvent
	out[PropEvents] = events
	return json.Marshal(out)
}

func isEmptyEvent(event any) bool {
	switch v := event.(type) {
	case nil:
		return true
	case string:
		return v == ""
	}
	return false
}

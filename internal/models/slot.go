package models

// Slot represents one selectable appointment option discovered on an
// acceptance page. Slots are rebuilt on every page evaluation and never
// persisted across requests. Score is computed per selection run and
// deliberately not stored here.
type Slot struct {
	Value     string `json:"value"`
	Label     string `json:"label"` // never empty when Value is non-empty
	ElementID string `json:"element_id,omitempty"`
	GroupName string `json:"group_name,omitempty"`
}

// ParsedSlotLabel holds facts extracted from a slot label by pattern
// matching. All fields are best-effort; empty means "not found", which
// is a valid outcome rather than an error.
type ParsedSlotLabel struct {
	Date      string `json:"date,omitempty"`       // MM/DD/YYYY or YYYY-MM-DD literal
	DayOfWeek string `json:"day_of_week,omitempty"`
	TimeRange string `json:"time_range,omitempty"` // "start - end" expression
}

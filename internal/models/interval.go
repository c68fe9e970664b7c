package models

// Interval is a span of clock time on one calendar date. Dates are
// YYYY-MM-DD and times are zero-padded HH:MM, so both compare as strings.
type Interval struct {
	Date  string `json:"date"`
	Start string `json:"start_time"`
	End   string `json:"end_time"`
}

package types

// Precipitation is one rainfall record. Prcp is nil when the station did not
// report a value for the day.
type Precipitation struct {
	Date string   `json:"date"`
	Prcp *float64 `json:"prcp"`
}

// Observation is one temperature reading for a station.
type Observation struct {
	Date    string  `json:"date"`
	Tobs    float64 `json:"tobs"`
	Station string  `json:"station"`
}

// Summary holds the aggregate temperature over a date range. All fields are
// nil when no measurement matched.
type Summary struct {
	Min     *float64 `json:"min"`
	Average *float64 `json:"average"`
	Max     *float64 `json:"max"`
}

// DateBounds are the earliest and latest measurement dates in the store.
type DateBounds struct {
	First string
	Last  string
}

func (b DateBounds) Empty() bool {
	return b.First == "" && b.Last == ""
}

type ErrorResponse struct {
	Error string `json:"error"`
}

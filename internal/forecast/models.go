package forecast

import "time"

// Period is one hour-long record from the NWS hourly forecast series.
// Periods arrive ordered by start time ascending and non-overlapping.
type Period struct {
	StartTime     time.Time `json:"startTime"`
	Temperature   int       `json:"temperature"`
	ShortForecast string    `json:"shortForecast"`
}

// hourlyResponse covers only the fields we use from the NWS hourly
// forecast payload.
type hourlyResponse struct {
	Properties struct {
		Periods []Period `json:"periods"`
	} `json:"properties"`
}

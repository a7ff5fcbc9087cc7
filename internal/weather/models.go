package weather

import (
	"encoding/json"
	"fmt"
)

// Unavailable is the sentinel reported for temperature and short forecast
// when no forecast period covers the meeting hour.
const Unavailable = "forecast unavailable"

// Temperature is a forecast temperature that may be unavailable. It marshals
// to the integer value, or to the sentinel string when no period matched.
type Temperature struct {
	Value int
	Known bool
}

func (t Temperature) MarshalJSON() ([]byte, error) {
	if !t.Known {
		return json.Marshal(Unavailable)
	}
	return json.Marshal(t.Value)
}

func (t *Temperature) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		t.Value, t.Known = n, true
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s != Unavailable {
		return fmt.Errorf("invalid temperature value %q", s)
	}
	*t = Temperature{}
	return nil
}

// ForecastResult is the weather answer for a course's next meeting.
// ForecastTime is empty when the forecast feed returned no periods at all.
type ForecastResult struct {
	Course            string      `json:"course"`
	NextCourseMeeting string      `json:"nextCourseMeeting"`
	ForecastTime      string      `json:"forecastTime,omitempty"`
	Temperature       Temperature `json:"temperature"`
	ShortForecast     string      `json:"shortForecast"`
}

// Cache is the contract the in-memory forecast cache must satisfy. Entries
// are memoized for the process lifetime; identical keys always carry
// identical values, so overwrites from concurrent misses are harmless.
type Cache interface {
	Get(key string) (ForecastResult, bool)
	Put(key string, result ForecastResult)
	Snapshot() map[string]ForecastResult
}

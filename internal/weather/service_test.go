package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rylanturner02/weather-microservice/internal/common"
	"github.com/rylanturner02/weather-microservice/internal/course"
	"github.com/rylanturner02/weather-microservice/internal/forecast"
	"github.com/rylanturner02/weather-microservice/internal/upstream"
)

// mapCache is a minimal in-test Cache implementation so these tests do not
// depend on the store package.
type mapCache struct {
	data map[string]ForecastResult
	puts int
}

func newMapCache() *mapCache {
	return &mapCache{data: make(map[string]ForecastResult)}
}

func (c *mapCache) Get(key string) (ForecastResult, bool) {
	r, ok := c.data[key]
	return r, ok
}

func (c *mapCache) Put(key string, result ForecastResult) {
	c.puts++
	c.data[key] = result
}

func (c *mapCache) Snapshot() map[string]ForecastResult {
	out := make(map[string]ForecastResult, len(c.data))
	for k, v := range c.data {
		out[k] = v
	}
	return out
}

// testClock is a Wednesday morning; CS 340 meets MWF at 12:30 PM, so the
// next meeting resolves to 12:30 the same day.
var testClock = time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)

const testMeetingKey = "CS 340 ADA_2024-01-10_12:30"

type upstreamCounters struct {
	directory int64
	points    int64
	hourly    int64
}

// newTestService wires a Service against fake directory and NWS servers.
// periodsJSON is the body of the hourly forecast response.
func newTestService(t *testing.T, directoryStatus int, periodsJSON string) (*Service, *mapCache, *upstreamCounters) {
	t.Helper()
	counters := &upstreamCounters{}

	directorySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&counters.directory, 1)
		if directoryStatus != http.StatusOK {
			w.WriteHeader(directoryStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"course": "CS 340 ADA", "Start Time": "12:30 PM", "Days of Week": "MWF"}`)
	}))
	t.Cleanup(directorySrv.Close)

	nwsSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/points/"):
			atomic.AddInt64(&counters.points, 1)
			fmt.Fprint(w, `{"properties": {"gridId": "ILX"}}`)
		case strings.HasPrefix(r.URL.Path, "/gridpoints/"):
			atomic.AddInt64(&counters.hourly, 1)
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, `{"properties": {"periods": %s}}`, periodsJSON)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(nwsSrv.Close)

	directory := course.NewDirectoryClient(directorySrv.Client(), directorySrv.URL)
	nws := forecast.NewClient(
		nwsSrv.Client(), "course-weather-test/1.0",
		nwsSrv.URL, nwsSrv.URL+"/gridpoints/ILX/96,72/forecast/hourly",
		40.1125, -88.2284,
	)

	cache := newMapCache()
	svc := NewService(directory, nws, cache)
	svc.now = func() time.Time { return testClock }
	return svc, cache, counters
}

// Periods surrounding the 12:30 meeting; the 12:00Z period should match.
const matchingPeriods = `[
	{"startTime": "2024-01-10T11:00:00Z", "temperature": 31, "shortForecast": "Cloudy"},
	{"startTime": "2024-01-10T12:00:00Z", "temperature": 34, "shortForecast": "Sunny"},
	{"startTime": "2024-01-10T13:00:00Z", "temperature": 36, "shortForecast": "Sunny"}
]`

func TestLookupReturnsMatchedForecast(t *testing.T) {
	svc, _, _ := newTestService(t, http.StatusOK, matchingPeriods)

	result, err := svc.Lookup(context.Background(), "cs 340")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Course != "CS 340" {
		t.Errorf("Course = %q", result.Course)
	}
	if result.NextCourseMeeting != "2024-01-10 12:30:00" {
		t.Errorf("NextCourseMeeting = %q", result.NextCourseMeeting)
	}
	if result.ForecastTime != "2024-01-10 12:00:00" {
		t.Errorf("ForecastTime = %q", result.ForecastTime)
	}
	if !result.Temperature.Known || result.Temperature.Value != 34 {
		t.Errorf("Temperature = %+v, want 34", result.Temperature)
	}
	if result.ShortForecast != "Sunny" {
		t.Errorf("ShortForecast = %q", result.ShortForecast)
	}
}

func TestLookupMemoizesPerMeetingMinute(t *testing.T) {
	svc, cache, counters := newTestService(t, http.StatusOK, matchingPeriods)

	first, err := svc.Lookup(context.Background(), "cs 340")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Different spelling of the same course resolves to the same cache key.
	second, err := svc.Lookup(context.Background(), "CS340")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first != second {
		t.Fatalf("cached result differs: %+v vs %+v", first, second)
	}
	if counters.points != 1 || counters.hourly != 1 {
		t.Fatalf("forecast upstreams hit %d/%d times, want 1/1", counters.points, counters.hourly)
	}
	if counters.directory != 2 {
		t.Fatalf("directory hit %d times, want 2 (cache only guards forecast calls)", counters.directory)
	}
	if cache.puts != 1 {
		t.Fatalf("cache.Put called %d times, want 1", cache.puts)
	}
	if _, ok := cache.Get(testMeetingKey); !ok {
		t.Fatalf("expected cache entry under %q, have %v", testMeetingKey, cache.Snapshot())
	}
}

func TestLookupBadCourseCode(t *testing.T) {
	svc, _, counters := newTestService(t, http.StatusOK, matchingPeriods)

	_, err := svc.Lookup(context.Background(), "hello")
	if !errors.Is(err, course.ErrBadCourseCode) {
		t.Fatalf("error = %v, want ErrBadCourseCode", err)
	}
	if counters.directory != 0 {
		t.Fatal("directory should not be consulted for unparseable input")
	}
}

func TestLookupCourseNotFound(t *testing.T) {
	svc, _, counters := newTestService(t, http.StatusNotFound, matchingPeriods)

	_, err := svc.Lookup(context.Background(), "cs 999")
	if !errors.Is(err, course.ErrCourseNotFound) {
		t.Fatalf("error = %v, want ErrCourseNotFound", err)
	}
	if counters.points != 0 || counters.hourly != 0 {
		t.Fatal("forecast upstreams should not be hit when the course is unknown")
	}
}

func TestLookupPlaceholderWhenNoPeriodMatches(t *testing.T) {
	// Periods from a different day; nothing covers the meeting hour.
	farPeriods := `[
		{"startTime": "2024-01-20T11:00:00Z", "temperature": 20, "shortForecast": "Snow"},
		{"startTime": "2024-01-20T12:00:00Z", "temperature": 21, "shortForecast": "Snow"}
	]`
	svc, cache, _ := newTestService(t, http.StatusOK, farPeriods)

	result, err := svc.Lookup(context.Background(), "cs 340")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.ShortForecast != Unavailable {
		t.Errorf("ShortForecast = %q, want sentinel", result.ShortForecast)
	}
	if result.Temperature.Known {
		t.Errorf("Temperature should be unavailable, got %+v", result.Temperature)
	}
	if result.NextCourseMeeting != "2024-01-10 12:30:00" {
		t.Errorf("scheduling info must survive a forecast miss, got %q", result.NextCourseMeeting)
	}
	// Forecast time falls back to the last period seen.
	if result.ForecastTime != "2024-01-20 12:00:00" {
		t.Errorf("ForecastTime = %q, want last period start", result.ForecastTime)
	}

	body, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(body), `"temperature":"forecast unavailable"`) {
		t.Errorf("temperature sentinel missing from %s", body)
	}

	// Placeholder results are memoized like any other.
	if _, ok := cache.Get(testMeetingKey); !ok {
		t.Fatal("placeholder result should be cached")
	}
}

func TestLookupEmptyPeriodSeries(t *testing.T) {
	svc, _, _ := newTestService(t, http.StatusOK, `[]`)

	result, err := svc.Lookup(context.Background(), "cs 340")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.ForecastTime != "" {
		t.Errorf("ForecastTime = %q, want empty for an empty series", result.ForecastTime)
	}

	body, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(body), "forecastTime") {
		t.Errorf("forecastTime should be omitted entirely, got %s", body)
	}
}

func TestLookupUpstreamFailureCarriesStatus(t *testing.T) {
	counters := &upstreamCounters{}

	directorySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"course": "CS 340 ADA", "Start Time": "12:30 PM", "Days of Week": "MWF"}`)
	}))
	t.Cleanup(directorySrv.Close)

	nwsSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/points/") {
			atomic.AddInt64(&counters.points, 1)
			fmt.Fprint(w, `{}`)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(nwsSrv.Close)

	directory := course.NewDirectoryClient(directorySrv.Client(), directorySrv.URL)
	nws := forecast.NewClient(
		nwsSrv.Client(), "course-weather-test/1.0",
		nwsSrv.URL, nwsSrv.URL+"/gridpoints/ILX/96,72/forecast/hourly",
		40.1125, -88.2284,
	)
	svc := NewService(directory, nws, newMapCache())
	svc.now = func() time.Time { return testClock }

	_, err := svc.Lookup(context.Background(), "cs 340")

	var ue *upstream.Error
	if !errors.As(err, &ue) {
		t.Fatalf("error = %v, want *upstream.Error", err)
	}
	if ue.Stage != "forecast" || ue.StatusCode != http.StatusNotFound {
		t.Fatalf("upstream error = %+v, want forecast/404", ue)
	}
	if counters.points != 1 {
		t.Fatal("grid point gate should run before the forecast fetch")
	}
}

func TestMeetingTimeRoundTripsThroughResult(t *testing.T) {
	svc, _, _ := newTestService(t, http.StatusOK, matchingPeriods)

	result, err := svc.Lookup(context.Background(), "cs 340")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	meeting, err := common.ParseDateTime(result.NextCourseMeeting)
	if err != nil {
		t.Fatalf("re-parsing nextCourseMeeting: %v", err)
	}

	// The re-parsed meeting reconstructs the exact key the cache used.
	if got := cacheKey("CS 340 ADA", meeting); got != testMeetingKey {
		t.Fatalf("round-tripped key = %q, want %q", got, testMeetingKey)
	}
}

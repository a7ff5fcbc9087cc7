package weather

import (
	"context"
	"fmt"
	"time"

	"github.com/rylanturner02/weather-microservice/internal/common"
	"github.com/rylanturner02/weather-microservice/internal/course"
	"github.com/rylanturner02/weather-microservice/internal/forecast"
	"github.com/rylanturner02/weather-microservice/internal/schedule"
)

// Service orchestrates a lookup: course directory, next-meeting resolution,
// the forecast cache, and the NWS clients.
type Service struct {
	directory *course.DirectoryClient
	forecast  *forecast.Client
	cache     Cache
	now       func() time.Time
}

// NewService creates a new Service. The cache is owned by the caller so its
// lifecycle (and clearing in tests) stays under the caller's control.
func NewService(directory *course.DirectoryClient, forecastClient *forecast.Client, cache Cache) *Service {
	return &Service{
		directory: directory,
		forecast:  forecastClient,
		cache:     cache,
		now:       time.Now,
	}
}

// Lookup resolves a free-text course code to the weather forecast for the
// course's next meeting. Results are memoized per course and meeting minute;
// a cache hit performs no upstream calls beyond the directory lookup.
func (s *Service) Lookup(ctx context.Context, courseCodeText string) (ForecastResult, error) {
	code, err := course.Parse(courseCodeText)
	if err != nil {
		return ForecastResult{}, err
	}

	section, err := s.directory.GetSection(ctx, code)
	if err != nil {
		return ForecastResult{}, err
	}

	days, err := schedule.ParseDays(section.DaysOfWeek)
	if err != nil {
		return ForecastResult{}, fmt.Errorf("course %s: %w", section.Course, err)
	}

	meeting, err := schedule.NextMeeting(section.StartTime, days, s.now())
	if err != nil {
		return ForecastResult{}, fmt.Errorf("course %s: %w", section.Course, err)
	}

	key := cacheKey(section.Course, meeting)
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}

	result, err := s.fetchForecast(ctx, code.Label(), meeting)
	if err != nil {
		return ForecastResult{}, err
	}

	s.cache.Put(key, result)
	return result, nil
}

// cacheKey is minute-precise so two requests whose resolved next meeting
// rounds to the same minute share an entry.
func cacheKey(courseLabel string, meeting time.Time) string {
	return fmt.Sprintf("%s_%s", courseLabel, meeting.Format("2006-01-02_15:04"))
}

// fetchForecast runs the grid-point validity check and the hourly forecast
// fetch, then matches the meeting time against the returned periods. The
// course label is passed in explicitly; nothing here reads request state.
func (s *Service) fetchForecast(ctx context.Context, courseLabel string, meeting time.Time) (ForecastResult, error) {
	if err := s.forecast.CheckGridPoint(ctx); err != nil {
		return ForecastResult{}, err
	}

	periods, err := s.forecast.HourlyForecast(ctx)
	if err != nil {
		return ForecastResult{}, err
	}

	result := ForecastResult{
		Course:            courseLabel,
		NextCourseMeeting: common.FormatDateTime(meeting),
		ShortForecast:     Unavailable,
	}

	if period, ok := forecast.Match(meeting, periods); ok {
		result.ForecastTime = common.FormatDateTime(period.StartTime)
		result.Temperature = Temperature{Value: period.Temperature, Known: true}
		result.ShortForecast = period.ShortForecast
		return result, nil
	}

	// No hour-aligned period: keep the scheduling fields and report the
	// forecast as unavailable. The forecast time falls back to the last
	// period seen, or stays empty when the feed had no periods at all.
	if len(periods) > 0 {
		result.ForecastTime = common.FormatDateTime(periods[len(periods)-1].StartTime)
	}
	return result, nil
}

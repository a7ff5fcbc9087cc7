package course

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/rylanturner02/weather-microservice/internal/upstream"
)

// ErrCourseNotFound is returned when the course directory has no entry for
// the requested subject and number.
var ErrCourseNotFound = errors.New("course not found")

// Section holds the scheduling fields the directory reports for a course.
// The field names mirror the directory's JSON keys.
type Section struct {
	Course     string `json:"course"`
	StartTime  string `json:"Start Time"`
	DaysOfWeek string `json:"Days of Week"`
}

// DirectoryClient fetches course metadata from the courses microservice.
type DirectoryClient struct {
	baseURL string
	httpCfg upstream.Config
	circuit *gobreaker.CircuitBreaker
}

func NewDirectoryClient(client *http.Client, baseURL string) *DirectoryClient {
	return &DirectoryClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCfg: upstream.Config{Client: client},
		circuit: upstream.NewBreaker("course-directory"),
	}
}

// GetSection looks up the section for a parsed course code. Any non-200
// response is treated as the course not existing.
func (d *DirectoryClient) GetSection(ctx context.Context, code Code) (Section, error) {
	buildRequest := func() (*http.Request, error) {
		u := fmt.Sprintf("%s/%s/%s/", d.baseURL, code.Subject, code.Number)
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := upstream.Do(ctx, d.httpCfg, d.circuit, buildRequest)
	if err != nil {
		var ue *upstream.Error
		if errors.As(err, &ue) {
			return Section{}, fmt.Errorf("%w: %s (status %d)", ErrCourseNotFound, code.Label(), ue.StatusCode)
		}
		return Section{}, fmt.Errorf("course directory request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Section{}, fmt.Errorf("%w: %s (status %d)", ErrCourseNotFound, code.Label(), resp.StatusCode)
	}

	var section Section
	if err := json.NewDecoder(resp.Body).Decode(&section); err != nil {
		return Section{}, fmt.Errorf("decoding course directory response: %w", err)
	}
	return section, nil
}

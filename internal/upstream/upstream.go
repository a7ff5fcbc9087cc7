package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// Config bundles the shared HTTP client and outbound request settings used
// by the course directory and forecast clients.
type Config struct {
	Client *http.Client

	// UserAgent is set on every outbound request when non-empty. The NWS
	// API returns 403 for requests without one.
	UserAgent string
}

var (
	ErrCircuitOpen  = errors.New("circuit breaker open")
	errNoHTTPClient = errors.New("http client not configured")
)

// Error reports a failed upstream stage along with the HTTP status code it
// returned.
type Error struct {
	Stage      string
	StatusCode int
}

func (e *Error) Error() string {
	if e.Stage == "" {
		return fmt.Sprintf("upstream returned status code %d", e.StatusCode)
	}
	return fmt.Sprintf("failed to fetch %s data, status code %d", e.Stage, e.StatusCode)
}

// WithStage annotates an upstream error with the stage that produced it, so
// callers can tell a grid-point failure from a forecast failure.
func WithStage(err error, stage string) error {
	var ue *Error
	if errors.As(err, &ue) {
		return &Error{Stage: stage, StatusCode: ue.StatusCode}
	}
	return fmt.Errorf("%s request failed: %w", stage, err)
}

// NewBreaker builds a circuit breaker with the settings shared by all
// upstream clients.
func NewBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
}

// Do executes a single HTTP request through the circuit breaker. There is no
// retry loop: a failure surfaces immediately, and the breaker only exists to
// fail fast while an upstream is known to be down.
//
// Rate limiting and server errors (429, 5xx) count as breaker failures and
// come back as *Error. Other status codes are returned to the caller as a
// normal response so domain-level handling (e.g. 404 = course not found)
// does not trip the breaker.
func Do(
	ctx context.Context,
	cfg Config,
	cb *gobreaker.CircuitBreaker,
	buildRequest func() (*http.Request, error),
) (*http.Response, error) {
	if cfg.Client == nil {
		return nil, errNoHTTPClient
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	req, err := buildRequest()
	if err != nil {
		return nil, err
	}

	// Ensure the request obeys context cancellation.
	req = req.WithContext(ctx)

	if cfg.UserAgent != "" {
		req.Header.Set("User-Agent", cfg.UserAgent)
	}

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := cfg.Client.Do(req)
		if execErr != nil {
			return nil, execErr
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			return nil, &Error{StatusCode: resp.StatusCode}
		}

		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
		}
		return nil, err
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return resp, nil
}

package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelvins/geocoder"
)

var validate = validator.New()

type AppConfig struct {
	Port string

	// CoursesURL is the base URL of the course directory microservice.
	CoursesURL string `validate:"required,url"`

	// NWS endpoints. HourlyForecastURL points at the grid cell covering the
	// campus coordinates.
	NWSBaseURL        string `validate:"required,url"`
	HourlyForecastURL string `validate:"required,url"`
	UserAgent         string

	// Campus coordinates the forecast is fetched for.
	Latitude  float64 `validate:"latitude"`
	Longitude float64 `validate:"longitude"`

	// Optional campus street address; when set together with a geocoder API
	// key it overrides the explicit coordinates.
	GeocoderAPIKey string
	CampusStreet   string
	CampusCity     string
	CampusState    string
	CampusCountry  string

	HTTPTimeout   time.Duration
	ProbeInterval time.Duration
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.CoursesURL = getenvDefault("COURSES_MICROSERVICE_URL", "http://127.0.0.1:34000")
	cfg.NWSBaseURL = getenvDefault("NWS_BASE_URL", "https://api.weather.gov")
	cfg.HourlyForecastURL = getenvDefault("FORECAST_HOURLY_URL", "https://api.weather.gov/gridpoints/ILX/96,72/forecast/hourly")
	cfg.UserAgent = getenvDefault("NWS_USER_AGENT", "course-weather/1.0 (weather-ops@example.edu)")

	cfg.Latitude = getenvFloat("WEATHER_LATITUDE", 40.1125)
	cfg.Longitude = getenvFloat("WEATHER_LONGITUDE", -88.2284)

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "10s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	// Upstream probe interval: default 15 minutes, "0" disables.
	probeStr := getenvDefault("PROBE_INTERVAL", "15m")
	probe, err := time.ParseDuration(probeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PROBE_INTERVAL: %w", err)
	}
	cfg.ProbeInterval = probe

	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")
	cfg.CampusStreet = os.Getenv("CAMPUS_STREET")
	cfg.CampusCity = os.Getenv("CAMPUS_CITY")
	cfg.CampusState = os.Getenv("CAMPUS_STATE")
	cfg.CampusCountry = os.Getenv("CAMPUS_COUNTRY")

	if err := cfg.resolveCampusLocation(); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// resolveCampusLocation geocodes the campus street address into coordinates
// when an address and API key are configured.
func (c *AppConfig) resolveCampusLocation() error {
	if c.GeocoderAPIKey == "" || c.CampusCity == "" {
		return nil
	}

	geocoder.ApiKey = c.GeocoderAPIKey
	address := geocoder.Address{
		Street:  c.CampusStreet,
		City:    c.CampusCity,
		State:   c.CampusState,
		Country: c.CampusCountry,
	}

	location, err := geocoder.Geocoding(address)
	if err != nil {
		return fmt.Errorf("geocoding campus address: %w", err)
	}

	c.Latitude = location.Latitude
	c.Longitude = location.Longitude
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

package httpapi

import (
	_ "embed"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/rylanturner02/weather-microservice/internal/course"
	"github.com/rylanturner02/weather-microservice/internal/upstream"
	"github.com/rylanturner02/weather-microservice/internal/weather"
)

var validate = validator.New()

//go:embed index.html
var indexHTML []byte

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service, cache weather.Cache) {
	app.Get("/", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.Send(indexHTML)
	})

	app.Post("/weather", func(c *fiber.Ctx) error {
		var req weatherRequest
		req.Course = c.FormValue("course")
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "course form parameter is required")
		}

		result, err := service.Lookup(c.Context(), req.Course)
		if err != nil {
			return lookupStatus(err)
		}
		return c.JSON(result)
	})

	app.Get("/weatherCache", func(c *fiber.Ctx) error {
		return c.JSON(cache.Snapshot())
	})
}

// weatherRequest holds the form parameters of the weather lookup.
type weatherRequest struct {
	Course string `validate:"required"`
}

// lookupStatus maps service errors onto HTTP statuses: bad input and unknown
// courses are the client's fault, upstream failures are a bad gateway.
func lookupStatus(err error) error {
	switch {
	case errors.Is(err, course.ErrBadCourseCode):
		return fiber.NewError(fiber.StatusBadRequest, "invalid course code")
	case errors.Is(err, course.ErrCourseNotFound):
		return fiber.NewError(fiber.StatusBadRequest, "Course not found")
	}

	var ue *upstream.Error
	if errors.As(err, &ue) {
		return fiber.NewError(fiber.StatusBadGateway, ue.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather data")
}

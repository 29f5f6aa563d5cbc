package httpapi

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/i474232898/mollier-diagram/internal/config"
	"github.com/i474232898/mollier-diagram/internal/mollier"
	"github.com/i474232898/mollier-diagram/internal/psychro"
	"github.com/i474232898/mollier-diagram/internal/render"
	"github.com/i474232898/mollier-diagram/internal/store"
)

var validate = validator.New()

// DiagramService is what the HTTP layer needs from mollier.Service.
type DiagramService interface {
	Refresh(ctx context.Context) (mollier.Diagram, error)
	Latest() (mollier.Diagram, error)
	Range(from, to time.Time) ([]mollier.Diagram, error)
	PressureKPa() float64
}

// ErrorHandler is the centralized Fiber error handler.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service DiagramService) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	v1 := app.Group("/api/v1")

	v1.Get("/diagram", func(c *fiber.Ctx) error {
		d, err := service.Latest()
		if err != nil {
			return storeError(err, "no diagram has been assembled yet")
		}
		return c.JSON(d)
	})

	v1.Get("/diagram/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		diagrams, err := service.Range(req.From, req.To)
		if err != nil {
			return storeError(err, "no diagrams in requested range")
		}
		return c.JSON(fiber.Map{
			"from":     req.From,
			"to":       req.To,
			"diagrams": diagrams,
		})
	})

	v1.Post("/diagram/refresh", func(c *fiber.Ctx) error {
		d, err := service.Refresh(c.UserContext())
		if err != nil {
			if errors.Is(err, mollier.ErrSuperseded) {
				return fiber.NewError(fiber.StatusConflict, err.Error())
			}
			return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
		}
		return c.JSON(d)
	})

	v1.Get("/diagram/chart", func(c *fiber.Ctx) error {
		var req chartQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		d, err := service.Latest()
		if err != nil {
			return storeError(err, "no diagram has been assembled yet")
		}

		opts := render.Options{Format: req.Format, Width: req.Width, Height: req.Height}
		var buf bytes.Buffer
		if err := render.Render(&buf, d, opts); err != nil {
			if errors.Is(err, render.ErrInvalidOptions) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to render diagram")
		}
		c.Set(fiber.HeaderContentType, opts.ContentType())
		return c.Send(buf.Bytes())
	})

	v1.Get("/curves", func(c *fiber.Ctx) error {
		pressure := service.PressureKPa()
		if s := c.Query("pressure"); s != "" {
			p, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "pressure must be a number in kPa")
			}
			pressure = p
		}
		if err := config.CheckPressureKPa(pressure); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(fiber.Map{
			"pressureKPa": pressure,
			"curves":      mollier.ReferenceCurves(pressure),
		})
	})

	v1.Get("/psychrometrics", func(c *fiber.Ctx) error {
		var req pointQuery
		if err := req.bind(c, service.PressureKPa()); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := config.CheckPressureKPa(req.PressureKPa); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		state, err := psychro.Compute(req.TemperatureC, req.RelativeHumidityPct, req.PressureKPa)
		if err != nil {
			if psychro.IsDomainError(err) {
				return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
					"error":   true,
					"reason":  psychro.Reason(err),
					"message": err.Error(),
				})
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to compute air state")
		}
		return c.JSON(state)
	})
}

func storeError(err error, notFound string) error {
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, notFound)
	}
	return fiber.NewError(fiber.StatusInternalServerError, "failed to read diagram store")
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	From time.Time `validate:"required"`
	To   time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// chartQuery holds query parameters for the chart endpoint. Zero sizes fall
// back to the renderer defaults.
type chartQuery struct {
	Format string `validate:"omitempty,oneof=png svg"`
	Width  int    `validate:"omitempty,min=200,max=4096"`
	Height int    `validate:"omitempty,min=200,max=4096"`
}

func (q *chartQuery) bind(c *fiber.Ctx) error {
	q.Format = strings.ToLower(c.Query("format", render.FormatPNG))
	var err error
	if q.Width, err = queryInt(c, "width"); err != nil {
		return err
	}
	if q.Height, err = queryInt(c, "height"); err != nil {
		return err
	}
	return nil
}

// pointQuery holds query parameters for the single-point calculator.
type pointQuery struct {
	TemperatureC        float64
	RelativeHumidityPct float64
	PressureKPa         float64
}

func (q *pointQuery) bind(c *fiber.Ctx, defaultPressureKPa float64) error {
	var err error
	if q.TemperatureC, err = queryFloat(c, "temperature", nil); err != nil {
		return err
	}
	if q.RelativeHumidityPct, err = queryFloat(c, "humidity", nil); err != nil {
		return err
	}
	q.PressureKPa, err = queryFloat(c, "pressure", &defaultPressureKPa)
	return err
}

func queryInt(c *fiber.Ctx, key string) (int, error) {
	s := c.Query(key)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New(key + " must be an integer")
	}
	return n, nil
}

// queryFloat reads a required float parameter, or an optional one when def
// is non-nil.
func queryFloat(c *fiber.Ctx, key string, def *float64) (float64, error) {
	s := c.Query(key)
	if s == "" {
		if def != nil {
			return *def, nil
		}
		return 0, errors.New(key + " query parameter is required")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.New(key + " must be a number")
	}
	return v, nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}

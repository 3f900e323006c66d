package httpapi

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/covid-charts/internal/fetch"
	"github.com/i474232898/covid-charts/internal/logger"
	"github.com/i474232898/covid-charts/internal/selector"
	"github.com/i474232898/covid-charts/internal/session"
	"github.com/i474232898/covid-charts/internal/view"
)

// SessionCookie names the cookie carrying the visitor's session id.
const SessionCookie = "covid_session"

var validate = validator.New()

// Handler serves the chart page and the view API.
type Handler struct {
	sessions   *session.Store
	renderWait time.Duration
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, sessions *session.Store, renderWait time.Duration) {
	h := &Handler{sessions: sessions, renderWait: renderWait}

	app.Get("/", h.index)
	app.Post("/refresh", h.refresh)

	v1 := app.Group("/api/v1")
	v1.Get("/views/:view", h.viewModel)
}

// selectionQuery holds the optional region choices of a page request.
type selectionQuery struct {
	Country  string `query:"country" validate:"omitempty,max=100"`
	Province string `query:"province" validate:"omitempty,max=100"`
}

// viewQuery identifies one view section and an optional region to select.
type viewQuery struct {
	View   string `validate:"required,oneof=country province"`
	Region string `validate:"omitempty,max=100"`
}

func (h *Handler) index(c *fiber.Ctx) error {
	var q selectionQuery
	if err := c.QueryParser(&q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	page := h.page(c)

	if q.Country != "" {
		if err := page.Country.Select(q.Country); err != nil {
			return selectError(err)
		}
	}
	if q.Province != "" {
		if err := page.Province.Select(q.Province); err != nil {
			return selectError(err)
		}
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), h.renderWait)
	defer cancel()
	page.Wait(ctx)

	country := page.Country.Model()
	province := page.Province.Model()

	return c.Render("index", fiber.Map{
		"Country":  country,
		"Province": province,
		"Loading":  country.State == fetch.Loading || province.State == fetch.Loading,
	})
}

func (h *Handler) refresh(c *fiber.Ctx) error {
	h.page(c).Reload()
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (h *Handler) viewModel(c *fiber.Ctx) error {
	q := viewQuery{
		View:   c.Params("view"),
		Region: c.Query("region"),
	}
	if err := validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	page := h.page(c)

	var v view.View = page.Country
	if q.View == "province" {
		v = page.Province
	}

	if q.Region != "" {
		if err := v.Select(q.Region); err != nil {
			return selectError(err)
		}
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), h.renderWait)
	defer cancel()
	v.Wait(ctx)

	return c.JSON(v.Model())
}

// page returns the visitor's page, issuing a session cookie for new visitors.
func (h *Handler) page(c *fiber.Ctx) *view.Page {
	id, page, created := h.sessions.GetOrCreate(c.Cookies(SessionCookie))
	if created {
		logger.Log.WithField("session", id).Debug("session created")
		c.Cookie(&fiber.Cookie{
			Name:     SessionCookie,
			Value:    id,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
	return page
}

// ErrorHandler renders every handler error as a JSON body with its status code.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	if code >= fiber.StatusInternalServerError {
		logger.Log.WithError(err).WithField("path", c.Path()).Error("request failed")
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

func selectError(err error) error {
	if errors.Is(err, selector.ErrUnknownRegion) {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, "failed to select region")
}

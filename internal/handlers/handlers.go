package handlers

import (
	"errors"
	"strconv"

	"githubActivityWidget/internal/activity"
	"githubActivityWidget/internal/logger"
	"githubActivityWidget/internal/model"
	"githubActivityWidget/internal/widget"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type HTTP struct {
	service activity.Service
}

func NewHTTP(s activity.Service) *HTTP {
	return &HTTP{
		service: s,
	}
}

func (h *HTTP) Register(app *fiber.App) {
	app.Get("/activity/:username", h.GetActivity)
	app.Get("/renders/:id", h.GetRenderById)
	app.Get("/renders", h.GetRenders)
}

// GetActivity serves the widget fragment. An upstream status other than 200
// still answers 200 with an empty container; X-Upstream-Status tells them apart.
func (h *HTTP) GetActivity(c *fiber.Ctx) error {
	username := c.Params("username")

	rec, err := h.service.Render(c.UserContext(), username)
	switch {
	case errors.Is(err, widget.ErrInvalidUsername):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid username"})
	case errors.Is(err, model.ErrMalformedResponse):
		logger.Lg.Warn("malformed feed", zap.String("username", username), zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "malformed response from github"})
	case err != nil:
		logger.Lg.Error("render failed", zap.String("username", username), zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "github unavailable"})
	}

	c.Set("X-Upstream-Status", strconv.Itoa(rec.Status))
	c.Set("X-Render-Id", rec.ID)
	c.Type("html", "utf-8")
	return c.SendString(rec.HTML)
}

func (h *HTTP) GetRenderById(c *fiber.Ctx) error {
	id := c.Params("id")

	rec, err := h.service.GetByID(c.UserContext(), id)
	if errors.Is(err, activity.ErrRenderNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "render not found",
		})
	}
	if err != nil {
		logger.Lg.Error("get render", zap.String("id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "render lookup failed"})
	}

	return c.JSON(rec)
}

func (h *HTTP) GetRenders(c *fiber.Ctx) error {
	renders, err := h.service.GetRecent(c.UserContext())
	if err != nil {
		logger.Lg.Error("get renders", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "render lookup failed"})
	}
	return c.JSON(renders)
}

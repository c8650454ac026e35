// Package api exposes the dashboard workspaces over HTTP with fiber.
package api

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/insightdelivered/statement-desk/internal/backend"
	"github.com/insightdelivered/statement-desk/internal/editlist"
	"github.com/insightdelivered/statement-desk/internal/notice"
	"github.com/insightdelivered/statement-desk/internal/workspace"
)

// Response is the JSON envelope of every non-2xx reply and of the
// form-submission routes.
type Response struct {
	Success     bool              `json:"success"`
	Error       string            `json:"error,omitempty"`
	Message     string            `json:"message,omitempty"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
}

// Handler holds the workspaces served by the API.
type Handler struct {
	Directory *workspace.Directory
	Sessions  *workspace.Sessions
	History   *workspace.History
	Uploader  *workspace.Uploader
	Feed      *notice.Feed
	Logger    *slog.Logger
	StaticDir string
	Version   string
}

// App builds the fiber application with every route mounted.
func (h *Handler) App() *fiber.App {
	if h.Logger == nil {
		h.Logger = slog.Default()
	}
	app := fiber.New(fiber.Config{
		AppName:               "statement-desk",
		BodyLimit:             32 << 20,
		DisableStartupMessage: true,
		// Params and queries end up in sessions, prompts and filters that
		// outlive the request.
		Immutable: true,
		ErrorHandler:          errorHandler(h.Logger),
	})
	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(requestLogger(h.Logger))

	h.RegisterRoutes(app)
	return app
}

// RegisterRoutes sets up the HTTP routes.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	v := app.Group("/api")
	v.Get("/health", h.HandleHealth)
	v.Get("/notices", h.handleNotices)

	h.registerClients(v.Group("/clients"))
	h.registerUploads(v.Group("/uploads"))
	h.registerLedger(v.Group("/statements/:accountId"), workspace.KindStatement)
	h.registerLedger(v.Group("/classification/:accountId"), workspace.KindClassification)

	// Serve the SPA: real files as-is, index.html for client routes.
	if h.StaticDir != "" {
		app.Static("/", h.StaticDir)
		app.Get("/*", func(c *fiber.Ctx) error {
			if strings.HasPrefix(c.Path(), "/api/") {
				return fiber.ErrNotFound
			}
			return c.SendFile(filepath.Join(h.StaticDir, "index.html"))
		})
	}
}

// HandleHealth reports liveness.
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"engine":  "fiber",
		"version": h.Version,
	})
}

func (h *Handler) handleNotices(c *fiber.Ctx) error {
	if h.Feed == nil {
		return c.JSON([]notice.Notice{})
	}
	after := c.QueryInt("after", 0)
	if after < 0 {
		after = 0
	}
	return c.JSON(h.Feed.Since(uint64(after)))
}

func requestLogger(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			status = statusOf(err)
		}
		logger.Debug("request",
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"duration", time.Since(start),
		)
		return err
	}
}

func statusOf(err error) int {
	var fe *fiber.Error
	var se *backend.StatusError
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.As(err, new(*editlist.ValidationError)):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, editlist.ErrNotFound), errors.Is(err, os.ErrNotExist):
		return fiber.StatusNotFound
	case errors.Is(err, editlist.ErrBusy),
		errors.Is(err, editlist.ErrEditInProgress),
		errors.Is(err, editlist.ErrPromptPending):
		return fiber.StatusConflict
	case errors.Is(err, editlist.ErrNotEditing),
		errors.Is(err, editlist.ErrNoPrompt),
		errors.Is(err, editlist.ErrUnknownField),
		errors.Is(err, editlist.ErrReadOnlyField),
		errors.Is(err, editlist.ErrNotSortable):
		return fiber.StatusBadRequest
	case errors.As(err, &se):
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}

func errorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := statusOf(err)
		resp := Response{Success: false, Error: err.Error()}

		var se *backend.StatusError
		if ve, ok := editlist.AsValidation(err); ok {
			resp.Error = "Please fill in all required fields correctly"
			resp.FieldErrors = ve.Fields
		} else if errors.As(err, &se) && se.Message != "" {
			resp.Error = se.Message
		}
		if status >= fiber.StatusInternalServerError {
			logger.Error("request failed", "method", c.Method(), "path", c.Path(), "err", err)
		}
		return c.Status(status).JSON(resp)
	}
}

// pageQuery holds the page, pageSize, sort and order query parameters.
type pageQuery struct {
	Page     int
	PageSize int
	Sort     string
	Order    string
}

func readPage(c *fiber.Ctx) pageQuery {
	return pageQuery{
		Page:     c.QueryInt("page", 0),
		PageSize: c.QueryInt("pageSize", 0),
		Sort:     c.Query("sort"),
		Order:    c.Query("order"),
	}
}

func (q pageQuery) desc() bool {
	return strings.EqualFold(q.Order, "desc") || strings.EqualFold(q.Order, "descend")
}

type fieldPatch struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func parsePatch(c *fiber.Ctx) (fieldPatch, error) {
	var p fieldPatch
	if err := c.BodyParser(&p); err != nil {
		return p, fiber.NewError(fiber.StatusBadRequest, "invalid body: "+err.Error())
	}
	if p.Field == "" {
		return p, fiber.NewError(fiber.StatusBadRequest, "field is required")
	}
	return p, nil
}

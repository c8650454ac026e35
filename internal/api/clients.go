package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/insightdelivered/statement-desk/internal/editlist"
	"github.com/insightdelivered/statement-desk/internal/models"
	"github.com/insightdelivered/statement-desk/internal/workspace"
)

func (h *Handler) registerClients(r fiber.Router) {
	r.Get("/", h.handleListClients)
	r.Get("/search", h.handleSearchClients)
	r.Post("/", h.handleCreateClient)
	r.Put("/:id", h.handleUpdateClient)
	r.Post("/:id/select", h.handleSelectClient)
	r.Get("/:id/statements", h.handleClientStatements)
	r.Delete("/selection", func(c *fiber.Ctx) error {
		h.Directory.ClearSelection()
		return c.SendStatus(fiber.StatusNoContent)
	})

	mountList(r, func(c *fiber.Ctx) (*editlist.List[models.Client], error) {
		return h.Directory.Clients, nil
	})
}

func (h *Handler) handleListClients(c *fiber.Ctx) error {
	return c.JSON(h.Directory.Clients.Rows())
}

func (h *Handler) handleSearchClients(c *fiber.Ctx) error {
	return c.JSON(h.Directory.Search(c.Query("q"), c.QueryInt("limit", 10)))
}

func (h *Handler) handleCreateClient(c *fiber.Ctx) error {
	var in models.Client
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body: "+err.Error())
	}
	msg, err := h.Directory.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(Response{Success: true, Message: msg})
}

func (h *Handler) handleUpdateClient(c *fiber.Ctx) error {
	var in models.Client
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body: "+err.Error())
	}
	msg, err := h.Directory.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(Response{Success: true, Message: msg})
}

func (h *Handler) handleSelectClient(c *fiber.Ctx) error {
	client, err := h.Directory.Select(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(client)
}

// handleClientStatements lists one client's statements; each row's accountId
// opens it under /api/statements.
func (h *Handler) handleClientStatements(c *fiber.Ctx) error {
	q := readPage(c)
	v, err := h.Directory.Statements(c.UserContext(), c.Params("id"), workspace.StatementQuery{
		Page:     q.Page,
		PageSize: q.PageSize,
		Sort:     q.Sort,
		Desc:     q.desc(),
	})
	if err != nil {
		return err
	}
	return c.JSON(v)
}

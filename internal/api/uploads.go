package api

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/insightdelivered/statement-desk/internal/workspace"
)

func (h *Handler) registerUploads(r fiber.Router) {
	r.Get("/", h.handleHistory)
	r.Post("/reload", h.handleReloadHistory)
	r.Post("/", h.handleUpload)
}

func (h *Handler) handleHistory(c *fiber.Ctx) error {
	q := readPage(c)
	h.History.SetFilter(workspace.HistoryFilter{
		ClientName:     c.Query("clientName"),
		AccessCode:     c.Query("accessCode"),
		BankName:       c.Query("bankName"),
		MonthReference: c.Query("monthReference"),
	})
	if q.Page > 0 || q.PageSize > 0 {
		h.History.SetPage(max(q.Page, 1), q.PageSize)
	}
	if err := h.History.SortBy(q.Sort, q.desc()); err != nil {
		return err
	}
	v, err := h.History.View()
	if err != nil {
		return err
	}
	return c.JSON(v)
}

func (h *Handler) handleReloadHistory(c *fiber.Ctx) error {
	if err := h.History.Load(c.UserContext()); err != nil {
		return err
	}
	v, err := h.History.View()
	if err != nil {
		return err
	}
	return c.JSON(v)
}

// handleUpload accepts the statement form: monthReference and the PDF in
// pdfFile (or file).
func (h *Handler) handleUpload(c *fiber.Ctx) error {
	req := workspace.UploadRequest{MonthReference: c.FormValue("monthReference")}

	fh, err := c.FormFile("pdfFile")
	if err != nil {
		fh, err = c.FormFile("file")
	}
	if err == nil {
		f, err := fh.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Failed to read uploaded file.")
		}
		defer f.Close()
		if req.PDF, err = io.ReadAll(f); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Failed to read uploaded file.")
		}
		req.FileName = fh.Filename
	}

	res, err := h.Uploader.Submit(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":   true,
		"message":   res.Message,
		"report":    res.Report,
		"processed": res.Processed,
	})
}

package api

import (
	"bytes"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/insightdelivered/statement-desk/internal/editlist"
	"github.com/insightdelivered/statement-desk/internal/models"
	"github.com/insightdelivered/statement-desk/internal/workspace"
	"github.com/insightdelivered/statement-desk/internal/writer"
)

// HeaderView is the account field group above a transaction table.
type HeaderView struct {
	Value   models.AccountInfo `json:"value"`
	Editing bool               `json:"editing"`
}

// LedgerView is an opened statement as the screen renders it.
type LedgerView struct {
	Kind       workspace.Kind                    `json:"kind"`
	AccountID  string                            `json:"accountId"`
	Header     HeaderView                        `json:"header"`
	Statistics *models.Statistics                `json:"statistics,omitempty"`
	Rows       editlist.View[models.Transaction] `json:"rows"`
	Error      string                            `json:"error,omitempty"`
}

func ledgerView(l *workspace.Ledger) LedgerView {
	return LedgerView{
		Kind:       l.Kind(),
		AccountID:  l.AccountID(),
		Header:     HeaderView{Value: l.Header.Value(), Editing: l.Header.Editing()},
		Statistics: l.Statistics(),
		Rows:       l.Rows.View(),
	}
}

func (h *Handler) registerLedger(r fiber.Router, kind workspace.Kind) {
	resolve := func(c *fiber.Ctx) (*workspace.Ledger, error) {
		id := c.Params("accountId")
		l, ok := h.Sessions.Get(kind, id)
		if !ok {
			return nil, fmt.Errorf("%s %s is not open: %w", kind, id, editlist.ErrNotFound)
		}
		return l, nil
	}
	with := func(fn func(c *fiber.Ctx, l *workspace.Ledger) error) fiber.Handler {
		return func(c *fiber.Ctx) error {
			l, err := resolve(c)
			if err != nil {
				return err
			}
			return fn(c, l)
		}
	}
	header := func(c *fiber.Ctx, l *workspace.Ledger) error {
		return c.JSON(HeaderView{Value: l.Header.Value(), Editing: l.Header.Editing()})
	}

	// Opening always refetches. A failed load still returns the ledger so
	// previously loaded rows stay visible.
	r.Post("/open", func(c *fiber.Ctx) error {
		l, err := h.Sessions.Open(c.UserContext(), kind, c.Params("accountId"))
		v := ledgerView(l)
		if err != nil {
			v.Error = err.Error()
			return c.Status(statusOf(err)).JSON(v)
		}
		return c.JSON(v)
	})

	r.Get("/", with(func(c *fiber.Ctx, l *workspace.Ledger) error {
		return c.JSON(ledgerView(l))
	}))

	r.Delete("/", func(c *fiber.Ctx) error {
		if !h.Sessions.Close(kind, c.Params("accountId")) {
			return fmt.Errorf("%s %s is not open: %w", kind, c.Params("accountId"), editlist.ErrNotFound)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Get("/export.csv", with(func(c *fiber.Ctx, l *workspace.Ledger) error {
		var buf bytes.Buffer
		w := &writer.CSVWriter{IncludeHeader: c.Query("header") != "false"}
		if err := w.Write(&buf, l.Draft()); err != nil {
			return fmt.Errorf("csv generation failed: %w", err)
		}
		c.Attachment(l.AccountID() + ".csv")
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		return c.Send(buf.Bytes())
	}))

	r.Get("/header", with(header))

	r.Post("/header/edit", with(func(c *fiber.Ctx, l *workspace.Ledger) error {
		l.Header.Begin()
		return header(c, l)
	}))

	r.Patch("/header", with(func(c *fiber.Ctx, l *workspace.Ledger) error {
		p, err := parsePatch(c)
		if err != nil {
			return err
		}
		if err := l.Header.Set(p.Field, p.Value); err != nil {
			return err
		}
		return header(c, l)
	}))

	r.Post("/header/save", with(func(c *fiber.Ctx, l *workspace.Ledger) error {
		if err := l.Header.Save(c.UserContext()); err != nil {
			return err
		}
		return header(c, l)
	}))

	r.Post("/header/cancel", with(func(c *fiber.Ctx, l *workspace.Ledger) error {
		if err := l.Header.Cancel(); err != nil {
			return err
		}
		return header(c, l)
	}))

	mountList(r, func(c *fiber.Ctx) (*editlist.List[models.Transaction], error) {
		l, err := resolve(c)
		if err != nil {
			return nil, err
		}
		return l.Rows, nil
	})
}

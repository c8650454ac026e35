package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/insightdelivered/statement-desk/internal/editlist"
)

// mountList exposes the row state machine of a list under r. resolve picks
// the list for the request.
func mountList[T any](r fiber.Router, resolve func(c *fiber.Ctx) (*editlist.List[T], error)) {
	with := func(fn func(c *fiber.Ctx, l *editlist.List[T]) error) fiber.Handler {
		return func(c *fiber.Ctx) error {
			l, err := resolve(c)
			if err != nil {
				return err
			}
			return fn(c, l)
		}
	}
	view := func(c *fiber.Ctx, l *editlist.List[T]) error {
		return c.JSON(l.View())
	}

	r.Get("/rows", with(func(c *fiber.Ctx, l *editlist.List[T]) error {
		q := readPage(c)
		if q.Sort != "" || q.Order != "" {
			if err := l.SortBy(q.Sort, q.desc()); err != nil {
				return err
			}
		}
		if q.Page > 0 || q.PageSize > 0 {
			page := q.Page
			if page <= 0 {
				page = l.View().Pagination.Current
			}
			l.SetPage(page, q.PageSize)
		}
		return view(c, l)
	}))

	r.Post("/rows", with(func(c *fiber.Ctx, l *editlist.List[T]) error {
		id, err := l.StartNewRow()
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id, "view": l.View()})
	}))

	r.Post("/rows/:id/edit", with(func(c *fiber.Ctx, l *editlist.List[T]) error {
		if err := l.StartEdit(c.Params("id")); err != nil {
			return err
		}
		return view(c, l)
	}))

	r.Patch("/rows/:id", with(func(c *fiber.Ctx, l *editlist.List[T]) error {
		p, err := parsePatch(c)
		if err != nil {
			return err
		}
		if err := l.UpdateField(c.Params("id"), p.Field, p.Value); err != nil {
			return err
		}
		return view(c, l)
	}))

	r.Post("/commit", with(func(c *fiber.Ctx, l *editlist.List[T]) error {
		if err := l.Commit(c.UserContext()); err != nil {
			return err
		}
		return view(c, l)
	}))

	r.Post("/cancel", with(func(c *fiber.Ctx, l *editlist.List[T]) error {
		if err := l.Cancel(); err != nil {
			return err
		}
		return view(c, l)
	}))

	r.Post("/rows/:id/delete", with(func(c *fiber.Ctx, l *editlist.List[T]) error {
		p, err := l.RequestDelete(c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(p)
	}))

	r.Post("/delete/confirm", with(func(c *fiber.Ctx, l *editlist.List[T]) error {
		if err := l.ConfirmDelete(c.UserContext()); err != nil {
			return err
		}
		return view(c, l)
	}))

	r.Post("/delete/decline", with(func(c *fiber.Ctx, l *editlist.List[T]) error {
		if err := l.DeclineDelete(); err != nil {
			return err
		}
		return view(c, l)
	}))

	r.Post("/reload", with(func(c *fiber.Ctx, l *editlist.List[T]) error {
		if err := l.Load(c.UserContext()); err != nil {
			return err
		}
		return view(c, l)
	}))
}

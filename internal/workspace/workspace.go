// Package workspace binds the generic editable list to the dashboard screens:
// statement history, transaction classification, the client registry, the
// upload history and the statement upload form.
package workspace

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/insightdelivered/statement-desk/internal/backend"
	"github.com/insightdelivered/statement-desk/internal/models"
	"github.com/insightdelivered/statement-desk/internal/notice"
)

// Backend is the part of the backend client the workspaces use.
type Backend interface {
	ListClients(ctx context.Context) ([]models.Client, error)
	CreateClient(ctx context.Context, in models.Client) (backend.Result, error)
	UpdateClient(ctx context.Context, id string, in models.Client) (backend.Result, error)
	DeleteClient(ctx context.Context, id string) (backend.Result, error)

	ListStatements(ctx context.Context) ([]models.Statement, error)
	GetStatement(ctx context.Context, accountID string) (models.Statement, error)
	PutStatement(ctx context.Context, accountID string, s models.Statement) error
	DeleteTransaction(ctx context.Context, id string) (backend.Result, error)
	ProcessStatement(ctx context.Context, u backend.Upload) (backend.Processed, error)

	TriggerClassification(ctx context.Context) error
	GetClassification(ctx context.Context, accountID string) (models.Classification, error)
}

// Deps are shared by every workspace.
type Deps struct {
	Backend  Backend
	Notifier notice.Notifier
	Logger   *slog.Logger
	PageSize int
	// Now is the clock used for new-row dates.
	Now func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Notifier == nil {
		d.Notifier = notice.Discard
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// backendMessage prefers the backend's own error text over fallback.
func backendMessage(err error, fallback string) string {
	var se *backend.StatusError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return fallback
}

package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/insightdelivered/statement-desk/internal/backend"
	"github.com/insightdelivered/statement-desk/internal/editlist"
	"github.com/insightdelivered/statement-desk/internal/extractor"
	"github.com/insightdelivered/statement-desk/internal/forms"
	"github.com/insightdelivered/statement-desk/internal/notice"
)

// UploadRequest is a statement PDF submitted for the selected client.
type UploadRequest struct {
	MonthReference string
	FileName       string
	PDF            []byte
}

// UploadResult is what a successful upload reports back.
type UploadResult struct {
	Message   string           `json:"message"`
	Report    extractor.Report `json:"report"`
	Processed json.RawMessage  `json:"processed,omitempty"`
}

// Uploader submits statements for the client selected in the directory.
type Uploader struct {
	deps    Deps
	logger  *slog.Logger
	dir     *Directory
	history *History
	guard   *editlist.Guard
}

// NewUploader builds an uploader. history, when set, is reloaded after each
// successful upload.
func NewUploader(deps Deps, dir *Directory, history *History) *Uploader {
	deps = deps.withDefaults()
	return &Uploader{
		deps:    deps,
		logger:  deps.Logger.With("workspace", "upload"),
		dir:     dir,
		history: history,
		guard:   editlist.NewGuard(),
	}
}

// Submit validates the form, inspects the PDF locally and forwards it to the
// backend. Nothing is sent when validation fails.
func (u *Uploader) Submit(ctx context.Context, req UploadRequest) (UploadResult, error) {
	client, _ := u.dir.Selected()
	in := forms.UploadInput{
		ClientID:       client.ID.String(),
		AccessCode:     client.AccessCode,
		ClientName:     client.ClientName,
		MonthReference: req.MonthReference,
		FileName:       req.FileName,
		FileSize:       len(req.PDF),
	}
	if err := forms.CheckUpload(in); err != nil {
		u.deps.Notifier.Notify(notice.Failure("upload", "Please fill in all required fields correctly", err))
		return UploadResult{}, err
	}

	report, err := extractor.Inspect(req.PDF)
	switch {
	case errors.Is(err, extractor.ErrNotPDF):
		verr := &editlist.ValidationError{Fields: map[string]string{"fileName": "Please upload a PDF statement!"}}
		u.deps.Notifier.Notify(notice.Failure("upload", "Please fill in all required fields correctly", verr))
		return UploadResult{}, verr
	case err != nil:
		// The backend has its own extractors; a file we cannot read may still be fine.
		u.logger.Warn("local inspection failed", "file", req.FileName, "err", err)
	default:
		u.logger.Info("inspected upload", "file", req.FileName, "pages", report.Pages, "readable", report.Readable, "bank", report.BankName)
	}

	release, err := u.guard.Acquire(editlist.ActionPersist)
	if err != nil {
		return UploadResult{}, err
	}
	defer release()

	u.deps.Notifier.Notify(notice.Info("upload", "Uploading statement..."))
	processed, err := u.deps.Backend.ProcessStatement(ctx, backend.Upload{
		AccessCode:     in.AccessCode,
		ClientName:     in.ClientName,
		ClientID:       in.ClientID,
		MonthReference: in.MonthReference,
		FileName:       in.FileName,
		PDF:            req.PDF,
	})
	if err != nil {
		u.deps.Notifier.Notify(notice.Failure("upload", backendMessage(err, "Failed to submit statement"), err))
		return UploadResult{}, fmt.Errorf("process statement: %w", err)
	}

	msg := processed.DatabaseOperation.Message
	if msg == "" {
		msg = "Statement uploaded successfully"
	}
	u.deps.Notifier.Notify(notice.Success("upload", msg))

	if u.history != nil {
		if err := u.history.Load(ctx); err != nil {
			u.logger.Warn("history reload failed", "err", err)
		}
	}
	return UploadResult{Message: msg, Report: report, Processed: processed.Raw}, nil
}

package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/insightdelivered/statement-desk/internal/editlist"
	"github.com/insightdelivered/statement-desk/internal/models"
	"github.com/insightdelivered/statement-desk/internal/notice"
)

// Kind selects the screen a ledger backs.
type Kind string

const (
	// KindStatement is the statement history screen.
	KindStatement Kind = "statement"
	// KindClassification is the transaction classification screen.
	KindClassification Kind = "classification"
)

// Ledger is one statement opened for editing: an account field group above an
// editable transaction list. Header saves and row commits both replace the
// whole statement on the backend.
type Ledger struct {
	kind      Kind
	accountID string
	deps      Deps
	logger    *slog.Logger

	Header *editlist.Form[models.AccountInfo]
	Rows   *editlist.List[models.Transaction]

	mu    sync.Mutex
	doc   models.Statement
	stats *models.Statistics
}

// NewLedger builds a ledger without loading it.
func NewLedger(kind Kind, accountID string, deps Deps) *Ledger {
	deps = deps.withDefaults()
	l := &Ledger{
		kind:      kind,
		accountID: accountID,
		deps:      deps,
		logger:    deps.Logger.With("workspace", string(kind), "accountId", accountID),
	}

	layout := StatementDateLayout
	if kind == KindClassification {
		layout = ClassificationDateLayout
	}
	opts := editlist.Options{
		PageSize:        deps.PageSize,
		Notifier:        deps.Notifier,
		Logger:          l.logger,
		Guard:           editlist.NewGuard(),
		RefetchOnCreate: true,
	}
	l.Header = editlist.NewForm(headerSchema(kind == KindClassification), l.saveHeader, opts)
	l.Rows = editlist.New(accountID, transactionSchema(layout, deps.Now), ledgerStore{l}, opts)
	return l
}

func (l *Ledger) Kind() Kind        { return l.kind }
func (l *Ledger) AccountID() string { return l.accountID }

// Open loads the statement. The statement screen first asks the backend to
// classify pending transactions; a failed trigger only raises a notice.
func (l *Ledger) Open(ctx context.Context) error {
	if l.kind == KindStatement {
		if err := l.deps.Backend.TriggerClassification(ctx); err != nil {
			l.logger.Warn("classification trigger failed", "err", err)
			l.deps.Notifier.Notify(notice.Failure("classification", "Failed to fetch classification data", err))
		}
	}
	return l.Rows.Load(ctx)
}

// Statistics is the classification summary, nil on the statement screen.
func (l *Ledger) Statistics() *models.Statistics {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stats == nil {
		return nil
	}
	s := *l.stats
	return &s
}

// Draft is the statement as it would be saved now: the header value and the
// transaction overlay, with provisional ids dropped.
func (l *Ledger) Draft() models.Statement {
	return l.compose(l.Header.Value(), l.Rows.Rows())
}

func (l *Ledger) compose(info models.AccountInfo, rows []models.Transaction) models.Statement {
	l.mu.Lock()
	doc := l.doc
	l.mu.Unlock()

	if doc.AccountID == "" {
		doc.AccountID = l.accountID
	}
	doc.AccountInfo = info
	doc.Transactions = slices.Clone(rows)
	if doc.Transactions == nil {
		doc.Transactions = []models.Transaction{}
	}
	for i, t := range doc.Transactions {
		if editlist.IsProvisional(t.ID.String()) {
			doc.Transactions[i].ID = ""
		}
	}
	return doc
}

func (l *Ledger) saveHeader(ctx context.Context, info models.AccountInfo) error {
	return l.deps.Backend.PutStatement(ctx, l.accountID, l.compose(info, l.Rows.Rows()))
}

func (l *Ledger) fetch(ctx context.Context) (models.Statement, *models.Statistics, error) {
	switch l.kind {
	case KindClassification:
		c, err := l.deps.Backend.GetClassification(ctx, l.accountID)
		if err != nil {
			return models.Statement{}, nil, err
		}
		doc := models.Statement{
			ID:           c.AccountInfo.ID,
			AccountID:    l.accountID,
			ClientID:     c.AccountInfo.ClientID,
			CreatedAt:    c.AccountInfo.CreatedAt,
			AccountInfo:  c.AccountInfo.Nested(),
			Transactions: c.Transactions,
		}
		stats := c.Statistics
		return doc, &stats, nil
	default:
		doc, err := l.deps.Backend.GetStatement(ctx, l.accountID)
		return doc, nil, err
	}
}

// ledgerStore is the remote side of the transaction list.
type ledgerStore struct {
	l *Ledger
}

func (s ledgerStore) Fetch(ctx context.Context, key string) ([]models.Transaction, error) {
	doc, stats, err := s.l.fetch(ctx)
	if err != nil {
		return nil, err
	}
	s.l.mu.Lock()
	s.l.doc = doc
	s.l.stats = stats
	s.l.mu.Unlock()
	s.l.Header.Seed(doc.AccountInfo)
	return doc.Transactions, nil
}

func (s ledgerStore) PersistAll(ctx context.Context, key string, rows []models.Transaction) error {
	return s.l.deps.Backend.PutStatement(ctx, key, s.l.compose(s.l.Header.Value(), rows))
}

func (s ledgerStore) Delete(ctx context.Context, key string, id string) error {
	if _, err := s.l.deps.Backend.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	return nil
}

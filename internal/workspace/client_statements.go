package workspace

import (
	"context"
	"fmt"

	"github.com/insightdelivered/statement-desk/internal/editlist"
	"github.com/insightdelivered/statement-desk/internal/models"
	"github.com/insightdelivered/statement-desk/internal/notice"
)

// StatementSummary is one statement of a client. AccountID opens it in the
// statement workspace.
type StatementSummary struct {
	Number           int     `json:"number"`
	AccountID        string  `json:"accountId"`
	BankName         string  `json:"bankName"`
	AccountNumber    string  `json:"accountNumber"`
	AccountHolder    string  `json:"accountHolder"`
	BeginningBalance float64 `json:"beginningBalance"`
	EndingBalance    float64 `json:"endingBalance"`
	Transactions     int     `json:"transactions"`
}

// StatementQuery selects the page and order of a client's statements.
type StatementQuery struct {
	Page     int
	PageSize int
	Sort     string
	Desc     bool
}

// ClientStatementsView is a page of one client's statements.
type ClientStatementsView struct {
	Client     models.Client       `json:"client"`
	Rows       []StatementSummary  `json:"rows"`
	Pagination editlist.Pagination `json:"pagination"`
	PageSizes  []int               `json:"pageSizeOptions"`
	Sort       string              `json:"sort,omitempty"`
	Desc       bool                `json:"desc,omitempty"`
}

var summaryLess = map[string]func(a, b StatementSummary) bool{
	"bankName":         func(a, b StatementSummary) bool { return a.BankName < b.BankName },
	"accountNumber":    func(a, b StatementSummary) bool { return a.AccountNumber < b.AccountNumber },
	"accountHolder":    func(a, b StatementSummary) bool { return a.AccountHolder < b.AccountHolder },
	"beginningBalance": func(a, b StatementSummary) bool { return a.BeginningBalance < b.BeginningBalance },
	"endingBalance":    func(a, b StatementSummary) bool { return a.EndingBalance < b.EndingBalance },
}

// belongsTo matches by client id, falling back to the access code for
// listings that only embed the client summary.
func belongsTo(s models.Statement, c models.Client) bool {
	if s.ClientID != "" {
		return s.ClientID == c.ID
	}
	return s.Client != nil && c.AccessCode != "" && s.Client.AccessCode == c.AccessCode
}

func statementSummary(s models.Statement) StatementSummary {
	bank := s.AccountInfo.BankName
	if bank == "" {
		bank = "-"
	}
	return StatementSummary{
		AccountID:        s.AccountID,
		BankName:         bank,
		AccountNumber:    s.AccountInfo.AccountNumber,
		AccountHolder:    s.AccountInfo.AccountHolder,
		BeginningBalance: s.AccountInfo.Balances.Beginning,
		EndingBalance:    s.AccountInfo.Balances.Ending,
		Transactions:     len(s.Transactions),
	}
}

// Statements lists the statements of a registered client, fetched fresh on
// every call.
func (d *Directory) Statements(ctx context.Context, clientID string, q StatementQuery) (ClientStatementsView, error) {
	client, ok := d.Clients.Get(clientID)
	if !ok {
		return ClientStatementsView{}, fmt.Errorf("client %s: %w", clientID, editlist.ErrNotFound)
	}
	if q.Sort != "" {
		if _, ok := summaryLess[q.Sort]; !ok {
			return ClientStatementsView{}, fmt.Errorf("%w: %q", editlist.ErrNotSortable, q.Sort)
		}
	}

	statements, err := d.deps.Backend.ListStatements(ctx)
	if err != nil {
		d.logger.Warn("fetch client statements failed", "client", clientID, "err", err)
		d.deps.Notifier.Notify(notice.Failure("clients", "Failed to fetch bank statements", err))
		return ClientStatementsView{}, fmt.Errorf("fetch statements of client %s: %w", clientID, err)
	}

	rows := []StatementSummary{}
	for _, s := range statements {
		if belongsTo(s, client) {
			rows = append(rows, statementSummary(s))
		}
	}
	if less, ok := summaryLess[q.Sort]; ok {
		rows = editlist.SortStable(rows, less, q.Desc)
	}

	size := q.PageSize
	if size <= 0 {
		size = d.deps.PageSize
	}
	if size <= 0 {
		size = editlist.DefaultPageSize
	}
	page := editlist.Pagination{Current: max(q.Page, 1), PageSize: size, Total: len(rows)}.Clamp()

	visible := editlist.VisibleSlice(rows, page.Current, page.PageSize)
	out := ClientStatementsView{
		Client:     client,
		Rows:       make([]StatementSummary, 0, len(visible)),
		Pagination: page,
		PageSizes:  editlist.PageSizeOptions,
		Sort:       q.Sort,
		Desc:       q.Desc && q.Sort != "",
	}
	for i, r := range visible {
		r.Number = editlist.RowNumber(page.Current, page.PageSize, i)
		out.Rows = append(out.Rows, r)
	}
	return out, nil
}

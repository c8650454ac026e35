package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/SierraSoftworks/connor"

	"github.com/insightdelivered/statement-desk/internal/editlist"
	"github.com/insightdelivered/statement-desk/internal/models"
	"github.com/insightdelivered/statement-desk/internal/notice"
)

// HistoryRow is one uploaded statement as the upload history table shows it.
type HistoryRow struct {
	Number               int    `json:"number"`
	ID                   string `json:"id"`
	AccountID            string `json:"accountId"`
	CreatedAt            string `json:"createdAt"`
	AccessCode           string `json:"accessCode"`
	ClientName           string `json:"clientName"`
	FinancialInstitution string `json:"financialInstitution"`
	MonthReference       string `json:"monthReference"`
	Status               string `json:"status"`
	Transactions         int    `json:"transactions"`

	created time.Time
	month   time.Time
}

// HistoryFilter narrows the upload history. Client name, access code and
// month are case-insensitive substring matches; the bank must match exactly.
type HistoryFilter struct {
	ClientName     string `json:"clientName"`
	AccessCode     string `json:"accessCode"`
	BankName       string `json:"bankName"`
	MonthReference string `json:"monthReference"`
}

// HistoryOptions feed the filter inputs.
type HistoryOptions struct {
	ClientNames []string `json:"clientNames"`
	AccessCodes []string `json:"accessCodes"`
	Banks       []string `json:"banks"`
}

// HistoryView is a rendered page of the upload history.
type HistoryView struct {
	Rows       []HistoryRow        `json:"rows"`
	Pagination editlist.Pagination `json:"pagination"`
	PageSizes  []int               `json:"pageSizeOptions"`
	Filter     HistoryFilter       `json:"filter"`
	Options    HistoryOptions      `json:"options"`
	Sort       string              `json:"sort,omitempty"`
	Desc       bool                `json:"desc,omitempty"`
	Loading    bool                `json:"loading"`
}

var historyLess = map[string]func(a, b HistoryRow) bool{
	"createdAt":            func(a, b HistoryRow) bool { return a.created.Before(b.created) },
	"accessCode":           func(a, b HistoryRow) bool { return a.AccessCode < b.AccessCode },
	"clientName":           func(a, b HistoryRow) bool { return a.ClientName < b.ClientName },
	"financialInstitution": func(a, b HistoryRow) bool { return a.FinancialInstitution < b.FinancialInstitution },
	"monthReference":       func(a, b HistoryRow) bool { return a.month.Before(b.month) },
	"status":               func(a, b HistoryRow) bool { return a.Status < b.Status },
}

// History is the read-only client upload history.
type History struct {
	deps   Deps
	logger *slog.Logger
	guard  *editlist.Guard

	mu     sync.Mutex
	rows   []HistoryRow
	filter HistoryFilter
	page   editlist.Pagination
	sortBy string
	desc   bool
}

func NewHistory(deps Deps) *History {
	deps = deps.withDefaults()
	size := deps.PageSize
	if size <= 0 {
		size = editlist.DefaultPageSize
	}
	return &History{
		deps:   deps,
		logger: deps.Logger.With("workspace", "history"),
		guard:  editlist.NewGuard(),
		page:   editlist.Pagination{Current: 1, PageSize: size},
	}
}

// Load fetches every statement. On failure the previous rows are kept.
func (h *History) Load(ctx context.Context) error {
	release, err := h.guard.Acquire(editlist.ActionFetch)
	if err != nil {
		return err
	}
	defer release()

	statements, err := h.deps.Backend.ListStatements(ctx)
	if err != nil {
		h.logger.Warn("fetch failed", "err", err)
		h.deps.Notifier.Notify(notice.Failure("history", "Failed to fetch bank statements", err))
		return fmt.Errorf("fetch bank statements: %w", err)
	}
	rows := make([]HistoryRow, 0, len(statements))
	for _, s := range statements {
		rows = append(rows, historyRow(s))
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.rows = rows
	return nil
}

func historyRow(s models.Statement) HistoryRow {
	r := HistoryRow{
		ID:                   s.ID.String(),
		AccountID:            s.AccountID,
		CreatedAt:            s.CreatedAt,
		FinancialInstitution: s.AccountInfo.BankName,
		MonthReference:       "-",
		Status:               s.AccountInfo.Status,
		Transactions:         len(s.Transactions),
	}
	if s.Client != nil {
		r.ClientName = s.Client.ClientName
		r.AccessCode = s.Client.AccessCode
	} else {
		r.ClientName = s.ClientName
	}
	if t, err := time.Parse(time.RFC3339, s.CreatedAt); err == nil {
		r.created = t
		r.CreatedAt = t.Format("02/01/2006")
	}
	if t, err := time.Parse("2006-01", s.AccountInfo.MonthReference); err == nil {
		r.month = t
		r.MonthReference = t.Format("Jan/2006")
	}
	return r
}

// SetFilter replaces the filter. A changed filter goes back to the first
// page.
func (h *History) SetFilter(f HistoryFilter) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if f == h.filter {
		return
	}
	h.filter = f
	h.page.Current = 1
}

func (h *History) SetPage(page, size int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if size > 0 {
		h.page.PageSize = size
	}
	h.page.Current = page
}

func (h *History) SortBy(field string, desc bool) error {
	if field != "" {
		if _, ok := historyLess[field]; !ok {
			return fmt.Errorf("%w: %q", editlist.ErrNotSortable, field)
		}
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sortBy, h.desc = field, desc && field != ""
	return nil
}

// query turns the filter into a connor document filter over matchDoc.
func (f HistoryFilter) query() map[string]interface{} {
	q := map[string]interface{}{}
	contains := func(field, v string) {
		if v = strings.TrimSpace(v); v != "" {
			q[field] = map[string]interface{}{"$contains": strings.ToLower(v)}
		}
	}
	contains("clientName", f.ClientName)
	contains("accessCode", f.AccessCode)
	contains("monthReference", f.MonthReference)
	if v := strings.TrimSpace(f.BankName); v != "" {
		q["bankName"] = map[string]interface{}{"$eq": v}
	}
	return q
}

func (r HistoryRow) matchDoc() map[string]interface{} {
	return map[string]interface{}{
		"clientName":     strings.ToLower(r.ClientName),
		"accessCode":     strings.ToLower(r.AccessCode),
		"monthReference": strings.ToLower(r.MonthReference),
		"bankName":       r.FinancialInstitution,
	}
}

func filterRows(rows []HistoryRow, f HistoryFilter) ([]HistoryRow, error) {
	q := f.query()
	if len(q) == 0 {
		return rows, nil
	}
	out := make([]HistoryRow, 0, len(rows))
	for _, r := range rows {
		ok, err := connor.Match(q, r.matchDoc())
		if err != nil {
			return nil, fmt.Errorf("filter: %w", err)
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// View filters, sorts and pages the history.
func (h *History) View() (HistoryView, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rows, err := filterRows(h.rows, h.filter)
	if err != nil {
		return HistoryView{}, err
	}
	if less, ok := historyLess[h.sortBy]; ok {
		rows = editlist.SortStable(rows, less, h.desc)
	}

	h.page.Total = len(rows)
	h.page = h.page.Clamp()
	visible := editlist.VisibleSlice(rows, h.page.Current, h.page.PageSize)
	out := HistoryView{
		Rows:       make([]HistoryRow, 0, len(visible)),
		Pagination: h.page,
		PageSizes:  editlist.PageSizeOptions,
		Filter:     h.filter,
		Options:    historyOptions(h.rows),
		Sort:       h.sortBy,
		Desc:       h.desc,
		Loading:    h.guard.Busy(editlist.ActionFetch),
	}
	for i, r := range visible {
		r.Number = editlist.RowNumber(h.page.Current, h.page.PageSize, i)
		out.Rows = append(out.Rows, r)
	}
	return out, nil
}

func historyOptions(rows []HistoryRow) HistoryOptions {
	distinct := func(get func(HistoryRow) string) []string {
		seen := map[string]bool{}
		out := []string{}
		for _, r := range rows {
			if v := get(r); v != "" && !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
		sort.Strings(out)
		return out
	}
	return HistoryOptions{
		ClientNames: distinct(func(r HistoryRow) string { return r.ClientName }),
		AccessCodes: distinct(func(r HistoryRow) string { return r.AccessCode }),
		Banks:       distinct(func(r HistoryRow) string { return r.FinancialInstitution }),
	}
}

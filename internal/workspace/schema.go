package workspace

import (
	"fmt"
	"strings"
	"time"

	"github.com/insightdelivered/statement-desk/internal/editlist"
	"github.com/insightdelivered/statement-desk/internal/forms"
	"github.com/insightdelivered/statement-desk/internal/models"
)

// Date layouts of new transaction rows.
const (
	StatementDateLayout      = "01/02/2006"
	ClassificationDateLayout = "2006-01-02"
)

var dateLayouts = []string{StatementDateLayout, ClassificationDateLayout, "02/01/2006", time.RFC3339}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// dateLess orders parseable dates chronologically before unparseable ones,
// which fall back to string order.
func dateLess(a, b string) bool {
	ta, okA := parseDate(a)
	tb, okB := parseDate(b)
	switch {
	case okA && okB:
		return ta.Before(tb)
	case okA != okB:
		return okA
	}
	return a < b
}

func transactionSchema(layout string, now func() time.Time) editlist.Schema[models.Transaction] {
	return editlist.Schema[models.Transaction]{
		Name:  "transaction",
		ID:    func(t models.Transaction) string { return t.ID.String() },
		SetID: func(t models.Transaction, id string) models.Transaction { t.ID = models.ID(id); return t },
		New: func() models.Transaction {
			return models.Transaction{Date: now().Format(layout), Type: models.TypeCredit}
		},
		Fields: []editlist.Field[models.Transaction]{
			editlist.Text("date", "Date",
				func(t models.Transaction) string { return t.Date },
				func(t *models.Transaction, v string) { t.Date = strings.TrimSpace(v) },
			).MustHave().SortedBy(func(a, b models.Transaction) bool { return dateLess(a.Date, b.Date) }),
			editlist.Text("description", "Description",
				func(t models.Transaction) string { return t.Description },
				func(t *models.Transaction, v string) { t.Description = v },
			),
			editlist.Number("amount", "Amount",
				func(t models.Transaction) float64 { return t.Amount },
				func(t *models.Transaction, v float64) { t.Amount = v },
			),
			editlist.Text("type", "Type",
				func(t models.Transaction) string { return t.Type },
				func(t *models.Transaction, v string) { t.Type = strings.ToLower(strings.TrimSpace(v)) },
			).MustHave(),
		},
		Validate: func(t models.Transaction) map[string]string {
			problems := map[string]string{}
			if t.Type != "" && t.Type != models.TypeCredit && t.Type != models.TypeDebit {
				problems["type"] = fmt.Sprintf("Type must be %s or %s", models.TypeCredit, models.TypeDebit)
			}
			if t.Date != "" {
				if _, ok := parseDate(t.Date); !ok {
					problems["date"] = "Date is not a valid date"
				}
			}
			return problems
		},
	}
}

// headerSchema describes the account field group above a transaction table.
func headerSchema(withMonth bool) editlist.Schema[models.AccountInfo] {
	fields := []editlist.Field[models.AccountInfo]{
		editlist.Text("bankName", "Bank Name",
			func(a models.AccountInfo) string { return a.BankName },
			func(a *models.AccountInfo, v string) { a.BankName = v },
		).MustHave(),
		editlist.Text("accountNumber", "Account Number",
			func(a models.AccountInfo) string { return a.AccountNumber },
			func(a *models.AccountInfo, v string) { a.AccountNumber = v },
		),
		editlist.Number("beginningBalance", "Beginning Balance",
			func(a models.AccountInfo) float64 { return a.Balances.Beginning },
			func(a *models.AccountInfo, v float64) { a.Balances.Beginning = v },
		),
		editlist.Number("endingBalance", "Ending Balance",
			func(a models.AccountInfo) float64 { return a.Balances.Ending },
			func(a *models.AccountInfo, v float64) { a.Balances.Ending = v },
		),
	}
	if withMonth {
		fields = append(fields, editlist.Text("monthReference", "Month Reference",
			func(a models.AccountInfo) string { return a.MonthReference },
			func(a *models.AccountInfo, v string) { a.MonthReference = strings.TrimSpace(v) },
		))
	}
	return editlist.Schema[models.AccountInfo]{Name: "account", Fields: fields}
}

func clientSchema() editlist.Schema[models.Client] {
	text := func(name, label string, get func(models.Client) string, set func(*models.Client, string)) editlist.Field[models.Client] {
		return editlist.Text(name, label, get, set).MustHave()
	}
	return editlist.Schema[models.Client]{
		Name:  "client",
		ID:    func(c models.Client) string { return c.ID.String() },
		SetID: func(c models.Client, id string) models.Client { c.ID = models.ID(id); return c },
		New:   func() models.Client { return models.Client{ClientType: models.ClientBusiness} },
		Fields: []editlist.Field[models.Client]{
			text("clientName", "Client Name",
				func(c models.Client) string { return c.ClientName },
				func(c *models.Client, v string) { c.ClientName = v }),
			text("accessCode", "Access Code",
				func(c models.Client) string { return c.AccessCode },
				func(c *models.Client, v string) { c.AccessCode = v }),
			text("contactName", "Contact Name",
				func(c models.Client) string { return c.ContactName },
				func(c *models.Client, v string) { c.ContactName = v }),
			text("contactPhone", "Contact Phone",
				func(c models.Client) string { return c.ContactPhone },
				func(c *models.Client, v string) { c.ContactPhone = v }),
			text("clientType", "Client Type",
				func(c models.Client) string { return c.ClientType },
				func(c *models.Client, v string) { c.ClientType = v }),
		},
		Validate: func(c models.Client) map[string]string {
			if ve, ok := editlist.AsValidation(forms.CheckClient(c)); ok {
				return ve.Fields
			}
			return nil
		},
	}
}

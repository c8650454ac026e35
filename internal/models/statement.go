package models

import "encoding/json"

// Transaction types as the backend spells them.
const (
	TypeCredit = "credit"
	TypeDebit  = "debit"
)

// Transaction represents a single parsed bank statement transaction.
type Transaction struct {
	ID          ID              `json:"id,omitempty"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Amount      float64         `json:"amount"`
	Type        string          `json:"type"` // credit or debit
	Split       json.RawMessage `json:"split"`
}

// Balances holds the opening and closing balance of a statement.
type Balances struct {
	Beginning float64 `json:"beginning"`
	Ending    float64 `json:"ending"`
}

// Period is the statement date range.
type Period struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// AccountInfo holds the account metadata of a statement.
type AccountInfo struct {
	BankName        string   `json:"bankName"`
	AccountNumber   string   `json:"accountNumber"`
	AccountHolder   string   `json:"accountHolder"`
	Balances        Balances `json:"balances"`
	StatementPeriod Period   `json:"statementPeriod"`
	MonthReference  string   `json:"monthReference,omitempty"`
	Status          string   `json:"status,omitempty"`
}

// Statement is a processed bank statement with its transactions.
type Statement struct {
	ID           ID            `json:"id,omitempty"`
	AccountID    string        `json:"accountId"`
	ClientID     ID            `json:"clientId,omitempty"`
	ClientName   string        `json:"clientName,omitempty"`
	CreatedAt    string        `json:"createdAt,omitempty"`
	Client       *ClientRef    `json:"client,omitempty"`
	AccountInfo  AccountInfo   `json:"accountInfo"`
	Transactions []Transaction `json:"transactions"`
}

// ClassifiedAccount is the flattened account info returned with a
// classification result.
type ClassifiedAccount struct {
	ID                ID      `json:"id"`
	BankName          string  `json:"bankName"`
	AccountHolder     string  `json:"accountHolder"`
	AccountNumber     string  `json:"accountNumber"`
	StatementFromDate string  `json:"statementFromDate"`
	StatementToDate   string  `json:"statementToDate"`
	BeginningBalance  float64 `json:"beginningBalance"`
	EndingBalance     float64 `json:"endingBalance"`
	ClientID          ID      `json:"clientId"`
	PdfURL            string  `json:"pdfUrl"`
	PdfFileName       string  `json:"pdfFileName"`
	PdfUploadDate     string  `json:"pdfUploadDate"`
	PdfFileSize       string  `json:"pdfFileSize"`
	MonthReference    string  `json:"monthReference"`
	Status            string  `json:"status"`
	CreatedAt         string  `json:"createdAt"`
	UpdatedAt         string  `json:"updatedAt"`
}

// Statistics summarises how many transactions were classified.
type Statistics struct {
	Classified int `json:"classified"`
	Total      int `json:"total"`
}

// Classification is the result of classifying a statement's transactions.
type Classification struct {
	Success      bool              `json:"success"`
	Message      string            `json:"message"`
	Statistics   Statistics        `json:"statistics"`
	AccountInfo  ClassifiedAccount `json:"accountInfo"`
	Transactions []Transaction     `json:"transactions"`
}

// Nested converts the flattened classification account info into the
// nested shape the statement endpoints accept.
func (a ClassifiedAccount) Nested() AccountInfo {
	return AccountInfo{
		BankName:      a.BankName,
		AccountNumber: a.AccountNumber,
		AccountHolder: a.AccountHolder,
		Balances: Balances{
			Beginning: a.BeginningBalance,
			Ending:    a.EndingBalance,
		},
		StatementPeriod: Period{
			From: a.StatementFromDate,
			To:   a.StatementToDate,
		},
		MonthReference: a.MonthReference,
		Status:         a.Status,
	}
}

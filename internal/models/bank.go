package models

// BankType identifies a statement issuer recognised from PDF text.
type BankType string

const (
	BankMetro    BankType = "metro"
	BankHSBC     BankType = "hsbc"
	BankBarclays BankType = "barclays"
)

// BankNames maps a bank type to the name the backend stores.
var BankNames = map[BankType]string{
	BankMetro:    "Metro Bank",
	BankHSBC:     "HSBC",
	BankBarclays: "Barclays",
}

package models

import "github.com/shopspring/decimal"

type FdEntry struct {
	Base
	Customer1ID     string          `json:"customer1Id"`
	Customer2ID     string          `json:"customer2Id,omitempty"`
	Product         string          `json:"product"`
	DepositDate     string          `json:"depositDate"`
	AmountDeposited decimal.Decimal `json:"amountDeposited"`
	MaturityDate    string          `json:"maturityDate"`
	InterestRate    decimal.Decimal `json:"interestRate"`
	Nominee1        string          `json:"nominee1"`
	Nominee2        string          `json:"nominee2,omitempty"`
	CifID           string          `json:"cifId"`
	ChequeNumber    string          `json:"chequeNumber"`
	ChequeDate      string          `json:"chequeDate"`
	BankName        string          `json:"bankName"`
}

func (FdEntry) ClientRefs() map[string]string {
	return map[string]string{"customer1Id": "customer1", "customer2Id": "customer2"}
}

package models

import "github.com/shopspring/decimal"

type Insurance struct {
	Base
	CustomerID     string          `json:"customerId"`
	Product        string          `json:"product"`
	PolicyDate     string          `json:"policyDate"`
	SumAssured     decimal.Decimal `json:"sumAssured"`
	MaturityDate   string          `json:"maturityDate"`
	Plan           string          `json:"plan"`
	Terms          string          `json:"terms"`
	PremiumMode    string          `json:"premiumMode"`
	PremiumAmount  decimal.Decimal `json:"premiumAmount"`
	NomineeName    string          `json:"nomineeName"`
	NomineeDob     string          `json:"nomineeDob"`
	NomineeAddress string          `json:"nomineeAddress"`
	ChequeNumber   string          `json:"chequeNumber"`
	ChequeDate     string          `json:"chequeDate"`
	BankName       string          `json:"bankName"`
}

var PremiumModes = []string{"Monthly", "Quarterly", "Half-Yearly", "Yearly", "Single"}

func (Insurance) ClientRefs() map[string]string {
	return map[string]string{"customerId": "customer"}
}

package models

import "github.com/shopspring/decimal"

type MediclaimAddress struct {
	Line    string `json:"line"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

type PolicyDetails struct {
	Company      string          `json:"company"`
	Product      string          `json:"product"`
	PolicyNumber string          `json:"policyNumber"`
	SumInsured   decimal.Decimal `json:"sumInsured"`
	StartDate    string          `json:"startDate"`
	EndDate      string          `json:"endDate"`
}

type BankDetails struct {
	BankName     string `json:"bankName"`
	ChequeNumber string `json:"chequeNumber"`
	ChequeDate   string `json:"chequeDate"`
}

type PaymentInfo struct {
	PremiumAmount decimal.Decimal `json:"premiumAmount"`
	PaymentMode   string          `json:"paymentMode"`
	BankDetails   BankDetails     `json:"bankDetails"`
}

type Mediclaim struct {
	Base
	PolicyType     string           `json:"policyType"`
	CustomerID     string           `json:"customerId"`
	InsuredMembers []string         `json:"insuredMembers"`
	Address        MediclaimAddress `json:"address"`
	PolicyDetails  PolicyDetails    `json:"policyDetails"`
	PaymentInfo    PaymentInfo      `json:"paymentInfo"`
}

const (
	PolicyTypeSingle = "Single"
	PolicyTypeFamily = "Family"
)

func (Mediclaim) ClientRefs() map[string]string {
	return map[string]string{"customerId": "customer"}
}

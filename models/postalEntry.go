package models

import "github.com/shopspring/decimal"

type PostalEntry struct {
	Base
	Customer1ID         string          `json:"customer1Id"`
	Customer2ID         string          `json:"customer2Id,omitempty"`
	Product             string          `json:"product"`
	SubProduct          string          `json:"subProduct"`
	DepositDate         string          `json:"depositDate"`
	Amount              decimal.Decimal `json:"amount"`
	MaturityDate        string          `json:"maturityDate"`
	InterestRate        decimal.Decimal `json:"interestRate"`
	NomineeName         string          `json:"nomineeName"`
	NomineeDob          string          `json:"nomineeDob"`
	NomineeRelation     string          `json:"nomineeRelation"`
	IsNomineeMinor      bool            `json:"isNomineeMinor"`
	NomineeGuardianName string          `json:"nomineeGuardianName,omitempty"`
	ChequeNo            string          `json:"chequeNo"`
	ChequeDate          string          `json:"chequeDate"`
	BankName            string          `json:"bankName"`
	PostOfficeName      string          `json:"postOfficeName"`
	AgentCode           string          `json:"agentCode"`
	Remark              string          `json:"remark"`
	CifID1              string          `json:"cifId1"`
	CifID2              string          `json:"cifId2,omitempty"`
}

func (PostalEntry) ClientRefs() map[string]string {
	return map[string]string{"customer1Id": "customer1", "customer2Id": "customer2"}
}

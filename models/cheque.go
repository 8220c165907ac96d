package models

// Cheque is a post-office cheque entry.
type Cheque struct {
	Base
	RdChequeEntry string `json:"rdChequeEntry"`
	ChequeFrom    string `json:"chequeFrom"`
	ChequeTo      string `json:"chequeTo"`
	BankName      string `json:"bankName"`
	DueDate       string `json:"dueDate"`
}

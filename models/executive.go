package models

import "github.com/shopspring/decimal"

// Executive is a staff record managed by the admin. Executives have no login.
type Executive struct {
	Base
	Name        string          `json:"name"`
	EmployeeID  string          `json:"employeeId"`
	PhoneNumber string          `json:"phoneNumber"`
	Email       string          `json:"email"`
	Designation string          `json:"designation"`
	LeaveLeft   int             `json:"leaveLeft"`
	LeaveUsed   int             `json:"leaveUsed"`
	Salary      decimal.Decimal `json:"salary"`
}

package models

type PhoneLog struct {
	Base
	EmployeeID      string `json:"employeeId"`
	EmployeeName    string `json:"employeeName"`
	Email           string `json:"email"`
	PhoneNumber     string `json:"phoneNumber"`
	TaskDescription string `json:"taskDescription"`
}

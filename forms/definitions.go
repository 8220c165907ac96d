package forms

import "strings"

var ClientForm = &Definition{
	Name: "client",
	Steps: []Step{
		{Title: "Personal details", Fields: []Field{
			{Name: "name", Label: "Name", Required: true},
			{Name: "familyName", Label: "Family name", Required: true},
			{Name: "dob", Label: "Date of birth", Required: true, Tag: tagDate},
			{Name: "number", Label: "Mobile number", Required: true, Tag: tagPhone},
			{Name: "whatsappNumber", Label: "WhatsApp number", Tag: tagPhone},
			{Name: "email", Label: "Email", Tag: tagEmail},
			{Name: "maritalStatus", Label: "Marital status", Tag: "oneof=Yes No"},
			{Name: "spouseName", Label: "Spouse name", RequiredWhen: equals("maritalStatus", "Yes")},
		}},
		{Title: "Documents", Fields: []Field{
			{Name: "address", Label: "Address"},
			{Name: "birthCity", Label: "Birth city"},
			{Name: "panCard", Label: "PAN card", Tag: "pan"},
			{Name: "aadhaarCard", Label: "Aadhaar card", Tag: "aadhaar"},
			{Name: "passportNumber", Label: "Passport number", Tag: "alphanum"},
			{Name: "voterNumber", Label: "Voter ID"},
			{Name: "canteenCardNumber", Label: "Canteen card number"},
		}},
		{Title: "Location", Fields: []Field{
			{Name: "city", Label: "City"},
			{Name: "state", Label: "State"},
			{Name: "location", Label: "Location"},
			{Name: "area", Label: "Area"},
		}},
	},
}

var FamilyMemberForm = &Definition{
	Name: "familyMember",
	Steps: []Step{
		{Title: "Family member", Fields: []Field{
			{Name: "relation", Label: "Relation", Required: true, Tag: "oneof=Wife Husband Father Mother Children Other"},
			{Name: "name", Label: "Name", Required: true},
			{Name: "dob", Label: "Date of birth", Tag: tagDate},
			{Name: "birthCity", Label: "Birth city"},
			{Name: "aadhaarCard", Label: "Aadhaar card", Tag: "aadhaar"},
			{Name: "panCard", Label: "PAN card", Tag: "pan"},
			{Name: "passportNumber", Label: "Passport number", Tag: "alphanum"},
			{Name: "number", Label: "Mobile number", Tag: tagPhone},
			{Name: "email", Label: "Email", Tag: tagEmail},
		}},
	},
}

func atLeastOneCustomer(f Fields) Errors {
	if f.String("customer1Id") == "" && f.String("customer2Id") == "" {
		return Errors{"customers": "At least one customer name is required."}
	}
	return nil
}

var FdEntryForm = &Definition{
	Name: "fdEntry",
	Steps: []Step{
		{Title: "Customers", Fields: []Field{
			{Name: "customer1Id", Label: "Customer 1"},
			{Name: "customer2Id", Label: "Customer 2"},
			{Name: "product", Label: "Product", Required: true},
		}, Checks: []Check{atLeastOneCustomer}},
		{Title: "Deposit", Fields: []Field{
			{Name: "depositDate", Label: "Deposit date", Required: true, Tag: tagDate},
			{Name: "amountDeposited", Label: "Amount deposited", Required: true, Tag: tagMoney},
			{Name: "maturityDate", Label: "Maturity date", Required: true, Tag: tagDate},
			{Name: "interestRate", Label: "Interest rate", Required: true, Tag: tagMoney},
		}},
		{Title: "Nominees and cheque", Fields: []Field{
			{Name: "nominee1", Label: "Nominee 1"},
			{Name: "nominee2", Label: "Nominee 2"},
			{Name: "cifId", Label: "CIF ID"},
			{Name: "chequeNumber", Label: "Cheque number"},
			{Name: "chequeDate", Label: "Cheque date", Tag: tagDate},
			{Name: "bankName", Label: "Bank name"},
		}},
	},
}

var InsuranceForm = &Definition{
	Name: "insurance",
	Steps: []Step{
		{Title: "Policy", Fields: []Field{
			{Name: "customerId", Label: "Customer", Required: true},
			{Name: "product", Label: "Product", Required: true},
			{Name: "policyDate", Label: "Policy date", Required: true, Tag: tagDate},
			{Name: "sumAssured", Label: "Sum assured", Required: true, Tag: tagMoney},
		}},
		{Title: "Plan", Fields: []Field{
			{Name: "maturityDate", Label: "Maturity date", Required: true, Tag: tagDate},
			{Name: "plan", Label: "Plan", Required: true},
			{Name: "terms", Label: "Terms", Required: true},
			{Name: "premiumMode", Label: "Premium mode", Required: true, Tag: "oneof=Monthly Quarterly Half-Yearly Yearly Single"},
		}},
		{Title: "Premium and nominee", Fields: []Field{
			{Name: "premiumAmount", Label: "Premium amount", Required: true, Tag: tagMoney},
			{Name: "nomineeName", Label: "Nominee name", Required: true},
			{Name: "nomineeDob", Label: "Nominee date of birth", Required: true, Tag: tagDate},
			{Name: "nomineeAddress", Label: "Nominee address", Required: true},
		}},
		{Title: "Cheque", Fields: []Field{
			{Name: "chequeNumber", Label: "Cheque number", Required: true},
			{Name: "chequeDate", Label: "Cheque date", Required: true, Tag: tagDate},
			{Name: "bankName", Label: "Bank name", Required: true},
		}},
	},
}

var PostalEntryForm = &Definition{
	Name: "postalEntry",
	Steps: []Step{
		{Title: "Deposit", Fields: []Field{
			{Name: "customer1Id", Label: "Customer 1", Required: true},
			{Name: "customer2Id", Label: "Customer 2"},
			{Name: "product", Label: "Product"},
			{Name: "subProduct", Label: "Sub product"},
			{Name: "depositDate", Label: "Deposit date", Tag: tagDate},
			{Name: "amount", Label: "Amount", Tag: tagMoney},
			{Name: "maturityDate", Label: "Maturity date", Tag: tagDate},
			{Name: "interestRate", Label: "Interest rate", Tag: tagMoney},
		}},
		{Title: "Nominee", Fields: []Field{
			{Name: "nomineeName", Label: "Nominee name"},
			{Name: "nomineeDob", Label: "Nominee date of birth", Tag: tagDate},
			{Name: "nomineeRelation", Label: "Nominee relation"},
			{Name: "isNomineeMinor", Label: "Nominee is a minor"},
			{Name: "nomineeGuardianName", Label: "Guardian name", RequiredWhen: truthy("isNomineeMinor")},
		}},
		{Title: "Payment", Fields: []Field{
			{Name: "chequeNo", Label: "Cheque number"},
			{Name: "chequeDate", Label: "Cheque date", Tag: tagDate},
			{Name: "bankName", Label: "Bank name"},
			{Name: "postOfficeName", Label: "Post office"},
			{Name: "agentCode", Label: "Agent code"},
			{Name: "remark", Label: "Remark"},
			{Name: "cifId1", Label: "CIF ID 1"},
			{Name: "cifId2", Label: "CIF ID 2"},
		}},
	},
}

func familyNeedsMembers(f Fields) bool {
	return f.String("policyType") == "Family"
}

func paidByCheque(f Fields) bool {
	return strings.EqualFold(f.String("paymentInfo.paymentMode"), "Cheque")
}

var MediclaimForm = &Definition{
	Name: "mediclaim",
	Steps: []Step{
		{Title: "Insured", Fields: []Field{
			{Name: "policyType", Label: "Policy type", Required: true, Tag: "oneof=Single Family"},
			{Name: "customerId", Label: "Customer", Required: true},
			{Name: "insuredMembers", Label: "Insured members", RequiredWhen: familyNeedsMembers},
			{Name: "address.line", Label: "Address", Required: true},
			{Name: "address.city", Label: "City", Required: true},
			{Name: "address.state", Label: "State", Required: true},
			{Name: "address.pincode", Label: "Pincode", Required: true, Tag: "pincode"},
		}},
		{Title: "Policy", Fields: []Field{
			{Name: "policyDetails.company", Label: "Insurance company", Required: true},
			{Name: "policyDetails.product", Label: "Product", Required: true},
			{Name: "policyDetails.policyNumber", Label: "Policy number", Required: true},
			{Name: "policyDetails.sumInsured", Label: "Sum insured", Required: true, Tag: tagMoney},
			{Name: "policyDetails.startDate", Label: "Start date", Required: true, Tag: tagDate},
			{Name: "policyDetails.endDate", Label: "End date", Required: true, Tag: tagDate},
		}},
		{Title: "Payment", Fields: []Field{
			{Name: "paymentInfo.premiumAmount", Label: "Premium amount", Required: true, Tag: tagMoney},
			{Name: "paymentInfo.paymentMode", Label: "Payment mode", Required: true},
			{Name: "paymentInfo.bankDetails.bankName", Label: "Bank name", RequiredWhen: paidByCheque},
			{Name: "paymentInfo.bankDetails.chequeNumber", Label: "Cheque number", RequiredWhen: paidByCheque},
			{Name: "paymentInfo.bankDetails.chequeDate", Label: "Cheque date", RequiredWhen: paidByCheque, Tag: tagDate},
		}},
	},
}

func passwordsMatch(f Fields) Errors {
	if f.String("password") != "" && f.String("password") != f.String("confirmPassword") {
		return Errors{"confirmPassword": "Passwords do not match!"}
	}
	return nil
}

var EmployeeSignupForm = &Definition{
	Name: "employeeSignup",
	Steps: []Step{
		{Title: "Employee", Fields: []Field{
			{Name: "name", Label: "Name", Required: true},
			{Name: "email", Label: "Email", Required: true, Tag: tagEmail},
			{Name: "dob", Label: "Date of birth", Tag: tagDate},
			{Name: "permission", Label: "Permission", Required: true, Tag: "oneof=read write all"},
			{Name: "password", Label: "Password", Required: true, Tag: "min=6"},
			{Name: "confirmPassword", Label: "Confirm password", Required: true},
		}, Checks: []Check{passwordsMatch}},
	},
}

var EmployeeForm = &Definition{
	Name: "employee",
	Steps: []Step{
		{Title: "Employee", Fields: []Field{
			{Name: "name", Label: "Name", Required: true},
			{Name: "dob", Label: "Date of birth", Tag: tagDate},
			{Name: "permission", Label: "Permission", Required: true, Tag: "oneof=read write all"},
		}},
	},
}

var ExecutiveForm = &Definition{
	Name: "executive",
	Steps: []Step{
		{Title: "Executive", Fields: []Field{
			{Name: "name", Label: "Name", Required: true},
			{Name: "employeeId", Label: "Employee ID", Required: true},
			{Name: "phoneNumber", Label: "Phone number", Required: true, Tag: tagPhone},
			{Name: "email", Label: "Email", Required: true, Tag: tagEmail},
			{Name: "designation", Label: "Designation", Required: true},
			{Name: "leaveLeft", Label: "Leave left", Required: true, Tag: tagCount},
			{Name: "leaveUsed", Label: "Leave used", Required: true, Tag: tagCount},
			{Name: "salary", Label: "Salary", Required: true, Tag: tagMoney},
		}},
	},
}

var PhoneLogForm = &Definition{
	Name: "phoneLog",
	Steps: []Step{
		{Title: "Call", Fields: []Field{
			{Name: "employeeId", Label: "Employee ID", Required: true},
			{Name: "employeeName", Label: "Employee name", Required: true},
			{Name: "email", Label: "Email", Required: true, Tag: tagEmail},
			{Name: "phoneNumber", Label: "Phone number", Required: true, Tag: tagPhone},
			{Name: "taskDescription", Label: "Task description", Required: true},
		}},
	},
}

var ChequeForm = &Definition{
	Name: "cheque",
	Steps: []Step{
		{Title: "Cheque", Fields: []Field{
			{Name: "rdChequeEntry", Label: "RD cheque entry", Required: true},
			{Name: "chequeFrom", Label: "Cheque from", Required: true},
			{Name: "chequeTo", Label: "Cheque to", Required: true},
			{Name: "bankName", Label: "Bank name", Required: true},
			{Name: "dueDate", Label: "Due date", Required: true, Tag: tagDate},
		}},
	},
}

var LocationForm = &Definition{
	Name:  "location",
	Steps: []Step{{Title: "Location", Fields: []Field{{Name: "name", Label: "Location name", Required: true}}}},
}

var AreaForm = &Definition{
	Name:  "area",
	Steps: []Step{{Title: "Area", Fields: []Field{{Name: "name", Label: "Area name", Required: true}}}},
}

// ByResource maps an API resource to the form that validates its writes.
var ByResource = map[string]*Definition{
	"clients":        ClientForm,
	"employees":      EmployeeForm,
	"executives":     ExecutiveForm,
	"fd-entries":     FdEntryForm,
	"insurances":     InsuranceForm,
	"mediclaims":     MediclaimForm,
	"postal-entries": PostalEntryForm,
	"phone-logs":     PhoneLogForm,
	"cheques":        ChequeForm,
	"locations":      LocationForm,
	"areas":          AreaForm,
}

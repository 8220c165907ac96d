package reports

import (
	"strconv"
	"strings"
)

// OfficeLetterhead is the office's printed header.
var OfficeLetterhead = Letterhead{
	Title:    "Prajapati",
	Subtitle: "Wealth Management",
	Email:    "Email ID: prajapatiinvest@gmail.com",
	Phone:    "(O): 93200008698 / 9324660329 / 8080892517",
}

var RunsheetColumns = []Column{
	{Header: "NO", Width: 10},
	{Header: "Name & Address", Width: 60},
	{Header: "Pick Up & Delivery", Width: 60},
	{Header: "Remarks & Signs", Width: 50},
}

// RunsheetStop is one client visit on a courier runsheet.
type RunsheetStop struct {
	Name           string
	City           string
	Location       string
	PickupDelivery string
}

func RunsheetTable(stops []RunsheetStop) Table {
	rows := make([][]string, len(stops))
	for i, s := range stops {
		loc := strings.TrimSpace(s.Location)
		if loc == "" {
			loc = "N/A"
		}
		rows[i] = []string{
			strconv.Itoa(i + 1),
			s.Name + "\n" + s.City + "\n" + loc,
			s.PickupDelivery,
			"",
		}
	}
	return Table{Columns: RunsheetColumns, Rows: rows}
}

// Runsheet renders the printable runsheet for the named courier and date.
func Runsheet(stops []RunsheetStop, name, date string) ([]byte, int, error) {
	head := OfficeLetterhead
	head.ShowNameDate = true
	head.Name = name
	head.Date = date
	return ToPDF(RunsheetTable(stops), PDFOptions{Letterhead: head})
}

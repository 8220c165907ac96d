package reports

import (
	"bytes"
	"math"
	"reflect"
	"strings"
	"testing"

	"bitbucket.org/prajapati/wealth_backend/docstore"
)

func TestPlanPages(t *testing.T) {
	cases := []struct {
		name     string
		heights  []float64
		capacity float64
		want     []PageRange
	}{
		{"empty", nil, 50, []PageRange{{0, 0}}},
		{"one page", []float64{10, 10, 10}, 50, []PageRange{{0, 3}}},
		{"exact fit", []float64{25, 25, 25, 25}, 50, []PageRange{{0, 2}, {2, 4}}},
		{"oversized row", []float64{10, 80, 10}, 50, []PageRange{{0, 1}, {1, 2}, {2, 3}}},
	}
	for _, tc := range cases {
		if got := PlanPages(tc.heights, tc.capacity); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestPlanPages_UniformRowsMatchCeil(t *testing.T) {
	for _, n := range []int{1, 5, 23, 100} {
		heights := make([]float64, n)
		for i := range heights {
			heights[i] = 10
		}
		got := len(PlanPages(heights, 50))
		want := int(math.Ceil(float64(n) * 10 / 50))
		if got != want {
			t.Fatalf("n=%d: pages = %d, want %d", n, got, want)
		}
	}
}

func TestRunsheet(t *testing.T) {
	stops := make([]RunsheetStop, 40)
	for i := range stops {
		stops[i] = RunsheetStop{Name: "Client", City: "Pune", PickupDelivery: "Collect cheque"}
	}
	data, pages, err := Runsheet(stops, "Ramesh", "2024-06-01")
	if err != nil {
		t.Fatalf("Runsheet: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF")
	}

	l, err := newLayout(RunsheetTable(stops), PDFOptions{})
	if err != nil {
		t.Fatalf("newLayout: %v", err)
	}
	rowH := l.rowHeight(l.rowLines[0])
	perPage := math.Floor(l.capacity() / rowH)
	want := int(math.Ceil(float64(len(stops)) / perPage))
	if pages != want || pages < 2 {
		t.Fatalf("pages = %d, want %d", pages, want)
	}
}

func TestRunsheetTable(t *testing.T) {
	table := RunsheetTable([]RunsheetStop{{Name: "Asha", City: "Pune", PickupDelivery: "Docs"}})
	if len(table.Columns) != 4 || table.Columns[1].Width != 60 || table.Columns[3].Header != "Remarks & Signs" {
		t.Fatalf("columns = %+v", table.Columns)
	}
	row := table.Rows[0]
	if row[0] != "1" || row[1] != "Asha\nPune\nN/A" || row[2] != "Docs" || row[3] != "" {
		t.Fatalf("row = %q", row)
	}
}

func TestRecordTable(t *testing.T) {
	cols := []Column{{Header: "Name", Width: 40}, {Header: "City", Key: "Address_City", Width: 40}, {Header: "Note", Width: 40}}
	table := NumberRows(RecordTable(cols, []docstore.Data{
		{"name": "Asha", "address": map[string]any{"city": "Pune"}},
	}), "#", 10)
	want := []string{"1", "Asha", "Pune", "-"}
	if !reflect.DeepEqual(table.Rows[0], want) {
		t.Fatalf("row = %q, want %q", table.Rows[0], want)
	}
	if _, _, err := ToPDF(table, PDFOptions{Landscape: true, FontSize: 8, Letterhead: OfficeLetterhead}); err != nil {
		t.Fatalf("ToPDF: %v", err)
	}
	if !strings.HasPrefix(table.Columns[0].Header, "#") {
		t.Fatalf("numbering column missing")
	}
}

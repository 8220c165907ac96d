package reports

import (
	"bytes"
	"reflect"
	"testing"

	"bitbucket.org/prajapati/wealth_backend/docstore"
	"github.com/xuri/excelize/v2"
)

func TestFlatten(t *testing.T) {
	rec := map[string]any{
		"name":    "Asha",
		"address": map[string]any{"city": "Pune", "pincode": "411001"},
		"familyMembers": []any{
			map[string]any{"name": "Ravi", "relation": "Husband"},
			map[string]any{"name": "Mira", "relation": "Children"},
		},
		"insuredMembers": []any{"Asha", "Ravi"},
		"isNomineeMinor": true,
	}
	got := map[string]any{}
	for _, c := range Flatten(rec) {
		got[c.Key] = c.Value
	}
	want := map[string]any{
		"Name":                     "Asha",
		"Address_City":             "Pune",
		"Address_Pincode":          "411001",
		"FamilyMembers_1_Name":     "Ravi",
		"FamilyMembers_1_Relation": "Husband",
		"FamilyMembers_2_Name":     "Mira",
		"FamilyMembers_2_Relation": "Children",
		"InsuredMembers":           "Asha, Ravi",
		"IsNomineeMinor":           true,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Flatten = %v, want %v", got, want)
	}
}

func TestFlattenAll_HeaderUnionInFirstSeenOrder(t *testing.T) {
	records := []docstore.Data{
		{"name": "A", "city": "Pune"},
		{"name": "B", "email": "b@x.in", "address": map[string]any{"line": "1 Rd"}},
	}
	table := FlattenAll(records, "Name")
	want := []string{"Name", "City", "Address_Line", "Email"}
	if !reflect.DeepEqual(table.Header, want) {
		t.Fatalf("header = %v, want %v", table.Header, want)
	}
}

func TestToSpreadsheet_RoundTrip(t *testing.T) {
	records := []docstore.Data{
		{"id": "c1", "name": "Asha", "amount": 50000.0, "address": map[string]any{"city": "Pune"}},
		{"id": "c2", "name": "Ravi", "familyMembers": []any{map[string]any{"name": "Mira"}}},
		{"id": "c3", "tags": []any{"gold", "nri"}},
	}
	data, err := ToSpreadsheet("FD Entries", records, "Id")
	if err != nil {
		t.Fatalf("ToSpreadsheet: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 1 || sheets[0] != "FD Entries" {
		t.Fatalf("sheets = %v", sheets)
	}
	rows, err := f.GetRows("FD Entries")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != len(records)+1 {
		t.Fatalf("rows = %d, want %d", len(rows), len(records)+1)
	}
	header := rows[0]
	col := map[string]int{}
	for i, h := range header {
		col[h] = i
	}
	for _, key := range []string{"Id", "Name", "Amount", "Address_City", "FamilyMembers_1_Name", "Tags"} {
		if _, ok := col[key]; !ok {
			t.Fatalf("header %v missing %s", header, key)
		}
	}
	if header[0] != "Id" {
		t.Fatalf("leading column = %s", header[0])
	}
	cell := func(row int, key string) string {
		r := rows[row]
		if col[key] >= len(r) {
			return ""
		}
		return r[col[key]]
	}
	if cell(1, "Address_City") != "Pune" || cell(1, "Amount") != "50000" {
		t.Fatalf("row 1 = %v", rows[1])
	}
	if cell(2, "FamilyMembers_1_Name") != "Mira" {
		t.Fatalf("row 2 = %v", rows[2])
	}
	if cell(3, "Tags") != "gold, nri" {
		t.Fatalf("row 3 = %v", rows[3])
	}
}

func TestSheetName(t *testing.T) {
	cases := map[string]string{
		"":                                      "Sheet1",
		"Clients":                               "Clients",
		"a/b":                                   "a_b",
		"A very long sheet name that overflows": "A very long sheet name that ove",
	}
	for in, want := range cases {
		if got := sheetName(in); got != want {
			t.Fatalf("sheetName(%q) = %q, want %q", in, got, want)
		}
	}
}

package reports

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"bitbucket.org/prajapati/wealth_backend/docstore"
	"bitbucket.org/prajapati/wealth_backend/utils"
	"github.com/xuri/excelize/v2"
)

const SpreadsheetContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Cell is one flattened column of a record.
type Cell struct {
	Key   string
	Value any
}

// Flatten turns a record into single-level cells. Nested keys join with "_"
// and every segment is capitalized, so address.city becomes Address_City.
// Arrays of objects are numbered from 1; arrays of scalars become one
// comma-separated cell. Keys of a map are visited in sorted order.
func Flatten(record map[string]any) []Cell {
	var cells []Cell
	flattenInto(&cells, "", record)
	return cells
}

func flattenInto(cells *[]Cell, prefix string, m map[string]any) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		flattenValue(cells, joinKey(prefix, utils.UppercaseFirst(k)), m[k])
	}
}

func flattenValue(cells *[]Cell, key string, v any) {
	switch t := v.(type) {
	case map[string]any:
		flattenInto(cells, key, t)
	case docstore.Data:
		flattenInto(cells, key, t)
	case []any:
		if !hasObjects(t) {
			*cells = append(*cells, Cell{Key: key, Value: joinScalars(t)})
			return
		}
		for i, item := range t {
			flattenValue(cells, joinKey(key, strconv.Itoa(i+1)), item)
		}
	case []string:
		*cells = append(*cells, Cell{Key: key, Value: strings.Join(t, ", ")})
	default:
		*cells = append(*cells, Cell{Key: key, Value: v})
	}
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "_" + key
}

func hasObjects(items []any) bool {
	for _, item := range items {
		if _, ok := item.(map[string]any); ok {
			return true
		}
	}
	return false
}

func joinScalars(items []any) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, FormatValue(item))
	}
	return strings.Join(parts, ", ")
}

// FormatValue renders a flattened value as cell text.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "Yes"
		}
		return "No"
	}
	return fmt.Sprint(v)
}

// FlatTable is a set of flattened records sharing one header. The header is
// the union of every record's keys in the order they are first seen.
type FlatTable struct {
	Header []string
	Rows   []map[string]any
}

// FlattenAll flattens records. Keys named in leading come first in the
// header when any record has them.
func FlattenAll(records []docstore.Data, leading ...string) FlatTable {
	seen := map[string]bool{}
	var header []string
	rows := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		row := map[string]any{}
		for _, c := range Flatten(rec) {
			row[c.Key] = c.Value
			if !seen[c.Key] {
				seen[c.Key] = true
				header = append(header, c.Key)
			}
		}
		rows = append(rows, row)
	}
	if len(leading) > 0 {
		header = leadWith(header, leading)
	}
	return FlatTable{Header: header, Rows: rows}
}

func leadWith(header, leading []string) []string {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	out := make([]string, 0, len(header))
	first := map[string]bool{}
	for _, l := range leading {
		if present[l] && !first[l] {
			first[l] = true
			out = append(out, l)
		}
	}
	for _, h := range header {
		if !first[h] {
			out = append(out, h)
		}
	}
	return out
}

// ToSpreadsheet writes records to a one-sheet workbook: a header row, then
// one row per record.
func ToSpreadsheet(sheet string, records []docstore.Data, leading ...string) ([]byte, error) {
	sheet = sheetName(sheet)
	table := FlattenAll(records, leading...)

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	header := make([]any, len(table.Header))
	for i, h := range table.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}
	for i, row := range table.Rows {
		values := make([]any, len(table.Header))
		for j, key := range table.Header {
			values[j] = cellValue(row[key])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func cellValue(v any) any {
	switch v.(type) {
	case nil:
		return ""
	case string, float64, int, int64:
		return v
	}
	return FormatValue(v)
}

// Excel limits sheet names to 31 characters and forbids a few symbols.
func sheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" {
		name = "Sheet1"
	}
	if r := []rune(name); len(r) > 31 {
		name = string(r[:31])
	}
	return name
}

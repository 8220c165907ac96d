package handlers

import (
	"bufio"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"bitbucket.org/prajapati/wealth_backend/docstore"
	"bitbucket.org/prajapati/wealth_backend/models/reports"
	"github.com/xuri/excelize/v2"
)

func TestExport_Spreadsheet(t *testing.T) {
	api := newTestAPI(t)
	token := api.adminToken(t)
	first := api.createClient(t, token, validClient("Asha"))
	api.createClient(t, token, validClient("Bina"))

	w := api.do(t, http.MethodGet, "/api/clients/export?format=xlsx&ids="+first, token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != reports.SpreadsheetContentType {
		t.Fatalf("content type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "clients_") {
		t.Fatalf("content disposition = %q", cd)
	}
	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Clients")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want header + 1", len(rows))
	}
	if got := strings.Join(rows[0][:3], ","); got != "ClientNumber,Name,FamilyName" {
		t.Fatalf("leading header = %s", got)
	}
	if rows[1][0] != "PI0001" || rows[1][1] != "Asha" {
		t.Fatalf("row = %v", rows[1])
	}
}

func TestExport_PDF(t *testing.T) {
	api := newTestAPI(t)
	token := api.adminToken(t)
	api.createClient(t, token, validClient("Asha"))

	w := api.do(t, http.MethodGet, "/api/clients/export?format=pdf", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")) {
		t.Fatalf("body is not a PDF")
	}
	if w := api.do(t, http.MethodGet, "/api/clients/export?format=csv", token, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("unknown format: status %d, want 400", w.Code)
	}
}

func TestRunsheet(t *testing.T) {
	api := newTestAPI(t)
	token := api.adminToken(t)
	id := api.createClient(t, token, validClient("Asha"))

	q := url.Values{}
	q.Set("ids", id)
	q.Set("name", "Ravi Kumar")
	q.Set("date", "2024-01-05")
	q.Set("pickup["+id+"]", "Collect KYC documents")
	w := api.do(t, http.MethodGet, "/api/clients/runsheet?"+q.Encode(), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")) {
		t.Fatalf("body is not a PDF")
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "Runsheet_Ravi_Kumar_2024-01-05.pdf") {
		t.Fatalf("content disposition = %q", cd)
	}

	if w := api.do(t, http.MethodGet, "/api/clients/runsheet", token, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("no ids: status %d, want 400", w.Code)
	}
}

func TestSelectIDs(t *testing.T) {
	views := []docstore.Data{{"id": "a"}, {"id": "b"}, {"id": "c"}}
	cases := []struct {
		ids  []string
		want string
	}{
		{nil, "a,b,c"},
		{[]string{"c", "a"}, "a,c"},
		{[]string{"b, c"}, "b,c"},
		{[]string{"zz"}, ""},
	}
	for _, tc := range cases {
		var got []string
		for _, v := range selectIDs(views, tc.ids) {
			got = append(got, v["id"].(string))
		}
		if strings.Join(got, ",") != tc.want {
			t.Fatalf("selectIDs(%v) = %v, want %s", tc.ids, got, tc.want)
		}
	}
}

// readEvent returns the data line of the next SSE event named name.
func readEvent(t *testing.T, r *bufio.Reader, name string) string {
	t.Helper()
	event := ""
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("read stream: %v", err)
		}
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:") && event == name:
			return strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		}
	}
}

func TestStream_SnapshotAfterChange(t *testing.T) {
	api := newTestAPI(t)
	token := api.adminToken(t)
	srv := httptest.NewServer(api.engine)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/locations/stream", nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("token", token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	r := bufio.NewReader(resp.Body)

	if first := readEvent(t, r, "snapshot"); first != "[]" {
		t.Fatalf("first snapshot = %s, want []", first)
	}
	if _, err := api.repos.Locations.CreateFields(context.Background(), docstore.Data{"name": "Thane"}); err != nil {
		t.Fatalf("create location: %v", err)
	}
	if next := readEvent(t, r, "snapshot"); !strings.Contains(next, `"name":"Thane"`) {
		t.Fatalf("snapshot after change = %s", next)
	}
}

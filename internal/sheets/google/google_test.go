package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), "", "家計簿")
	if err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	_, err := New(context.Background(), "sheet-id", "家計簿")
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFetchTransactions_NilService(t *testing.T) {
	c := &Client{spreadsheetID: "test"}
	if _, err := c.FetchTransactions(context.Background()); err == nil {
		t.Fatal("expected error with nil service")
	}
}

func TestFetchTransactions_FakeAPI(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"range": "家計簿!A1:G3",
			"majorDimension": "ROWS",
			"values": [
				["日付","金額（円）","中項目","計算対象"],
				["2024/05/03","3,000","食費","1"],
				["2024/05/10","2,000","立替（全額）","1"]
			]
		}`))
	}))
	defer srv.Close()

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	c := NewWithService(svc, "sheet-id", "")

	txs, err := c.FetchTransactions(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(txs))
	}
	if txs[1].SubCategory != "立替（全額）" || txs[1].Amount != "2,000" {
		t.Fatalf("unexpected row: %+v", txs[1])
	}
	if !strings.Contains(gotPath, "/spreadsheets/sheet-id/values/") {
		t.Fatalf("unexpected request path %q", gotPath)
	}
}

func TestFetchTransactions_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":403,"message":"denied"}}`, http.StatusForbidden)
	}))
	defer srv.Close()

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if _, err := NewWithService(svc, "sheet-id", "家計簿").FetchTransactions(context.Background()); err == nil {
		t.Fatal("expected error from API")
	}
}

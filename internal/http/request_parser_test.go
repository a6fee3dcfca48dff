package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"warikan/internal/core"
)

func TestParsePeriodParams(t *testing.T) {
	tests := []struct {
		name    string
		query   url.Values
		want    PeriodParams
		wantErr bool
	}{
		{
			name:  "both values provided",
			query: url.Values{"year": {"2024"}, "month": {"12"}},
			want:  PeriodParams{Year: 2024, Month: 12, HasYear: true, HasMonth: true},
		},
		{
			name:  "only year",
			query: url.Values{"year": {"2023"}},
			want:  PeriodParams{Year: 2023, HasYear: true},
		},
		{
			name:  "blank values are missing",
			query: url.Values{"year": {" "}, "month": {""}},
			want:  PeriodParams{},
		},
		{
			name:  "out of range month still parses",
			query: url.Values{"year": {"2024"}, "month": {"13"}},
			want:  PeriodParams{Year: 2024, Month: 13, HasYear: true, HasMonth: true},
		},
		{
			name:    "non numeric month",
			query:   url.Values{"month": {"may"}},
			wantErr: true,
		},
		{
			name:    "non numeric year",
			query:   url.Values{"year": {"20x4"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePeriodParams(tt.query)
			if tt.wantErr {
				if !errors.Is(err, ErrBadParam) {
					t.Fatalf("error = %v, want ErrBadParam", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParsePeriodParams() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPeriodParams_Resolve(t *testing.T) {
	def := core.Period{Year: 2025, Month: 3}

	tests := []struct {
		name   string
		params PeriodParams
		want   core.Period
	}{
		{"nothing given", PeriodParams{}, def},
		{"year only keeps default month", PeriodParams{Year: 2024, HasYear: true}, core.Period{Year: 2024, Month: 3}},
		{"month only keeps default year", PeriodParams{Month: 7, HasMonth: true}, core.Period{Year: 2025, Month: 7}},
		{"both", PeriodParams{Year: 2023, Month: 1, HasYear: true, HasMonth: true}, core.Period{Year: 2023, Month: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.params.Resolve(def); got != tt.want {
				t.Errorf("Resolve() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRequestBodyParser_JSON(t *testing.T) {
	body := `{"id": "123", "name": "test", "amount": 42.5}`
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	parser := NewRequestBodyParser(req)
	err := parser.Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if !parser.IsJSON() {
		t.Error("Expected IsJSON() to be true")
	}

	if id := parser.Get("id"); id != "123" {
		t.Errorf("Get('id') = %q, want '123'", id)
	}

	if name := parser.Get("name"); name != "test" {
		t.Errorf("Get('name') = %q, want 'test'", name)
	}

	if amount := parser.Get("amount"); amount != "42.5" {
		t.Errorf("Get('amount') = %q, want '42.5'", amount)
	}
}

func TestRequestBodyParser_FormData(t *testing.T) {
	body := "id=456&name=form+test&value=100"
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	parser := NewRequestBodyParser(req)
	err := parser.Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if parser.IsJSON() {
		t.Error("Expected IsJSON() to be false for form data")
	}

	if id := parser.Get("id"); id != "456" {
		t.Errorf("Get('id') = %q, want '456'", id)
	}

	if name := parser.Get("name"); name != "form test" {
		t.Errorf("Get('name') = %q, want 'form test'", name)
	}
}

func TestRequestBodyParser_EmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(""))

	parser := NewRequestBodyParser(req)
	err := parser.Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if val := parser.Get("nonexistent"); val != "" {
		t.Errorf("Get('nonexistent') = %q, want empty string", val)
	}
}

func TestRequireMethod(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		allowed []string
		wantErr bool
	}{
		{"POST allowed", http.MethodPost, []string{http.MethodPost}, false},
		{"DELETE allowed with multiple", http.MethodDelete, []string{http.MethodDelete, http.MethodPost}, false},
		{"GET not allowed", http.MethodGet, []string{http.MethodPost}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/test", nil)
			result := RequireMethod(req, tt.allowed...)

			if tt.wantErr && result == nil {
				t.Error("Expected error response but got nil")
			}
			if !tt.wantErr && result != nil {
				t.Error("Expected nil but got error response")
			}
		})
	}
}

func TestRequirePOST(t *testing.T) {
	postReq := httptest.NewRequest(http.MethodPost, "/test", nil)
	if result := RequirePOST(postReq); result != nil {
		t.Error("RequirePOST should allow POST requests")
	}

	getReq := httptest.NewRequest(http.MethodGet, "/test", nil)
	if result := RequirePOST(getReq); result == nil {
		t.Error("RequirePOST should reject GET requests")
	}
}

func TestRequireGET(t *testing.T) {
	tests := []struct {
		method  string
		wantErr bool
	}{
		{http.MethodGet, false},
		{http.MethodHead, false},
		{http.MethodPost, true},
		{http.MethodPut, true},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/test", nil)
			result := RequireGET(req)

			if tt.wantErr && result == nil {
				t.Error("Expected error response but got nil")
			}
			if !tt.wantErr && result != nil {
				t.Error("Expected nil but got error response")
			}
		})
	}
}

func TestRequireMethod_WritesAllowHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/advances", nil)
	w := httptest.NewRecorder()
	RequirePOST(req).Write(w)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", w.Code)
	}
	if got := w.Header().Get("Allow"); got != http.MethodPost {
		t.Errorf("Allow = %q, want POST", got)
	}
}

func TestRequestBodyParser_Values(t *testing.T) {
	body := `{"year": 2024, "month": 5, "amount": "3,000"}`
	req := httptest.NewRequest(http.MethodPost, "/advances", strings.NewReader(body))

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !parser.IsJSON() {
		t.Error("body starting with { should be read as JSON")
	}

	params, err := ParsePeriodParams(parser.Values())
	if err != nil {
		t.Fatalf("ParsePeriodParams() error = %v", err)
	}
	if params.Year != 2024 || params.Month != 5 {
		t.Errorf("params = %+v, want 2024/5", params)
	}
	if got := parser.Get("amount"); got != "3,000" {
		t.Errorf("Get('amount') = %q, want '3,000'", got)
	}
}

func TestRequestBodyParser_InvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/advances", strings.NewReader(`{"year":`))
	req.Header.Set("Content-Type", "application/json")

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err == nil {
		t.Fatal("expected error for truncated JSON")
	}
	if parser.IsJSON() {
		t.Error("IsJSON() should be false after a failed parse")
	}
}

package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"mitcash/internal/categories"
	"mitcash/internal/core"
	"mitcash/internal/prefs"
	"mitcash/internal/services"
	"mitcash/internal/store/memory"
)

func newTestServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()

	mem := memory.New()
	txService := services.NewTransactionService(mem, nil)
	prefsStore, err := prefs.Open(filepath.Join(t.TempDir(), "prefs.json"))
	if err != nil {
		t.Fatalf("prefs.Open: %v", err)
	}
	registry := categories.New(nil)

	s := NewServer(Options{
		Addr:         ":0",
		Dashboard:    services.NewDashboardService(mem, registry),
		Transactions: txService,
		Propagator:   services.NewRecurringPropagator(mem, txService),
		Registry:     registry,
		Prefs:        prefsStore,
	})
	t.Cleanup(func() { s.Shutdown(context.Background()) })
	return s, mem
}

func doRequest(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func seedMarchData(t *testing.T, mem *memory.Store) {
	t.Helper()
	ctx := context.Background()
	fixtures := []core.Transaction{
		{Kind: core.KindIncome, Date: core.NewDate(2026, 3, 1), Amount: core.Money{Cents: 500000}, Source: "Salary"},
		{Kind: core.KindExpense, Date: core.NewDate(2026, 3, 5), Amount: core.Money{Cents: 120000}, Description: "Rent March", Category: "Rent"},
		{Kind: core.KindExpense, Date: core.NewDate(2026, 3, 10), Amount: core.Money{Cents: 30000}, Description: "Supermarket run", Category: "Groceries"},
	}
	for _, tx := range fixtures {
		if _, err := mem.Create(ctx, tx); err != nil {
			t.Fatal(err)
		}
	}
}

func TestHealthEndpoints(t *testing.T) {
	s, _ := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doRequest(t, s, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rec.Code)
		}
	}
}

func TestSummaryEndpoint(t *testing.T) {
	s, mem := newTestServer(t)
	seedMarchData(t, mem)

	rec := doRequest(t, s, http.MethodGet, "/api/summary?year=2026&month=3", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var ms services.MonthSummary
	decodeInto(t, rec, &ms)
	if ms.Summary.TotalIncome.Cents != 500000 {
		t.Errorf("TotalIncome = %d, want 500000", ms.Summary.TotalIncome.Cents)
	}
	if ms.Summary.NetSavings.Cents != 350000 {
		t.Errorf("NetSavings = %d, want 350000", ms.Summary.NetSavings.Cents)
	}
	if len(ms.Categories) != 2 {
		t.Errorf("Categories = %+v", ms.Categories)
	}
}

func TestSummaryRejectsBadPeriod(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/api/summary?year=2026&month=13", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSearchEndpoint(t *testing.T) {
	s, mem := newTestServer(t)
	seedMarchData(t, mem)

	rec := doRequest(t, s, http.MethodGet, "/api/search?q=gro", "")
	var res searchResponse
	decodeInto(t, rec, &res)
	if res.Status != "ok" || len(res.Results) != 1 {
		t.Fatalf("response = %+v", res)
	}
	if res.Results[0].Transaction.Category != "Groceries" {
		t.Errorf("matched %+v, want the Groceries expense", res.Results[0])
	}

	rec = doRequest(t, s, http.MethodGet, "/api/search?q=x", "")
	decodeInto(t, rec, &res)
	if res.Status != "too_short" {
		t.Errorf("short query status = %q, want too_short", res.Status)
	}
}

func TestCreateListTransaction(t *testing.T) {
	s, _ := newTestServer(t)

	body := `{"date":"2026-03-14","amount":"82.50","description":"Hardware store","category":"Utilities"}`
	rec := doRequest(t, s, http.MethodPost, "/api/transactions/expenses", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var created createResponse
	decodeInto(t, rec, &created)
	if !created.Success || created.ID == "" {
		t.Fatalf("create response = %+v", created)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/transactions/expenses?year=2026&month=3", "")
	var list listResponse
	decodeInto(t, rec, &list)
	if !list.Success || len(list.Records) != 1 {
		t.Fatalf("list = %+v", list)
	}
	if list.Records[0].Amount.Cents != 8250 {
		t.Errorf("amount = %d, want 8250", list.Records[0].Amount.Cents)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	s, _ := newTestServer(t)

	cases := []struct {
		name string
		body string
		want int
	}{
		{"unknown kind in path", "", http.StatusBadRequest},
		{"bad amount", `{"date":"2026-03-14","amount":"abc","description":"X","category":"Other"}`, http.StatusUnprocessableEntity},
		{"missing category", `{"date":"2026-03-14","amount":"10","description":"X"}`, http.StatusUnprocessableEntity},
		{"malformed json", `{`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			target := "/api/transactions/expenses"
			if tc.name == "unknown kind in path" {
				target = "/api/transactions/stocks"
				tc.body = `{"date":"2026-03-14","amount":"10","description":"X","category":"Other"}`
			}
			rec := doRequest(t, s, http.MethodPost, target, tc.body)
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tc.want, rec.Body.String())
			}
		})
	}
}

func TestListTransactionsCategoryFilter(t *testing.T) {
	s, mem := newTestServer(t)
	seedMarchData(t, mem)

	rec := doRequest(t, s, http.MethodGet, "/api/transactions/expenses?year=2026&month=3&category=Groceries", "")
	var list listResponse
	decodeInto(t, rec, &list)
	if len(list.Records) != 1 || list.Records[0].Category != "Groceries" {
		t.Fatalf("filtered list = %+v, want the single Groceries expense", list.Records)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/transactions/expenses?all=true&category=Utilities", "")
	decodeInto(t, rec, &list)
	if len(list.Records) != 0 {
		t.Errorf("filtered all list = %d records, want 0", len(list.Records))
	}
}

func TestWriteRejectsUnregisteredCategory(t *testing.T) {
	s, _ := newTestServer(t)

	body := `{"date":"2026-03-14","amount":"10","description":"X","category":"NotARealCategory"}`
	rec := doRequest(t, s, http.MethodPost, "/api/transactions/expenses", body)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("create with unknown category = %d, want 422", rec.Code)
	}

	rec = doRequest(t, s, http.MethodPost, "/api/transactions/expenses",
		`{"date":"2026-03-14","amount":"10","description":"X","category":"Groceries"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create with built-in category = %d, body = %s", rec.Code, rec.Body.String())
	}
	var created createResponse
	decodeInto(t, rec, &created)

	rec = doRequest(t, s, http.MethodPut, "/api/transactions/expenses/"+created.ID,
		`{"date":"2026-03-14","amount":"10","description":"X","category":"NotARealCategory"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("update with unknown category = %d, want 422", rec.Code)
	}

	// A freshly added custom category is immediately usable.
	doRequest(t, s, http.MethodPost, "/api/categories", `{"name":"Pets","color":"#000000"}`)
	rec = doRequest(t, s, http.MethodPost, "/api/transactions/expenses",
		`{"date":"2026-03-15","amount":"25","description":"Vet","category":"Pets"}`)
	if rec.Code != http.StatusCreated {
		t.Errorf("create with custom category = %d", rec.Code)
	}
}

func TestUpdateDeleteTransaction(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/transactions/income",
		`{"date":"2026-03-01","amount":"5000","source":"Salary"}`)
	var created createResponse
	decodeInto(t, rec, &created)

	rec = doRequest(t, s, http.MethodPut, "/api/transactions/income/"+created.ID,
		`{"date":"2026-03-01","amount":"5200","source":"Salary"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, s, http.MethodDelete, "/api/transactions/income/"+created.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = doRequest(t, s, http.MethodDelete, "/api/transactions/income/"+created.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestSummaryCacheInvalidatedByWrite(t *testing.T) {
	s, mem := newTestServer(t)
	seedMarchData(t, mem)

	doRequest(t, s, http.MethodGet, "/api/summary?year=2026&month=3", "")

	doRequest(t, s, http.MethodPost, "/api/transactions/expenses",
		`{"date":"2026-03-20","amount":"100","description":"Car service","category":"Transportation"}`)

	rec := doRequest(t, s, http.MethodGet, "/api/summary?year=2026&month=3", "")
	var ms services.MonthSummary
	decodeInto(t, rec, &ms)
	if ms.Summary.TotalExpenses.Cents != 160000 {
		t.Errorf("TotalExpenses after write = %d, want 160000 (stale cache?)", ms.Summary.TotalExpenses.Cents)
	}
}

func TestPropagateEndpoint(t *testing.T) {
	s, mem := newTestServer(t)
	src := core.Transaction{
		Kind:        core.KindBill,
		Date:        core.NewDate(2026, 1, 31),
		Amount:      core.Money{Cents: 8000},
		Description: "Internet",
		Category:    "Utilities",
		Recurring:   true,
	}
	if _, err := mem.Create(context.Background(), src); err != nil {
		t.Fatal(err)
	}

	rec := doRequest(t, s, http.MethodPost, "/api/recurring/bills/propagate?year=2026&month=2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var res services.PropagationResult
	decodeInto(t, rec, &res)
	if res.Created != 1 || res.SourcesFound != 1 {
		t.Errorf("result = %+v", res)
	}
}

func TestCategoryEndpoints(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/categories", `{"name":"Pets","color":"#000000"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add status = %d", rec.Code)
	}

	rec = doRequest(t, s, http.MethodPost, "/api/categories", `{"name":"Pets","color":"#ffffff"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate add status = %d, want 409", rec.Code)
	}

	rec = doRequest(t, s, http.MethodPost, "/api/categories", `{"name":"Rent","color":"#ffffff"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("built-in name add status = %d, want 409", rec.Code)
	}

	rec = doRequest(t, s, http.MethodDelete, "/api/categories/Rent", "")
	if rec.Code != http.StatusForbidden {
		t.Errorf("remove built-in status = %d, want 403", rec.Code)
	}

	rec = doRequest(t, s, http.MethodDelete, "/api/categories/Pets", "")
	if rec.Code != http.StatusOK {
		t.Errorf("remove custom status = %d, want 200", rec.Code)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/categories", "")
	var res categoriesResponse
	decodeInto(t, rec, &res)
	if len(res.Categories) != 7 {
		t.Errorf("categories = %d, want the 7 built-ins", len(res.Categories))
	}
}

func TestDarkModePreference(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodPut, "/api/prefs/dark-mode", `{"enabled":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("set status = %d", rec.Code)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/prefs", "")
	var res prefsResponse
	decodeInto(t, rec, &res)
	if !res.DarkMode {
		t.Error("expected dark mode to persist")
	}
}

func TestSessionWithoutGate(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/session", "")
	var res sessionResponse
	decodeInto(t, rec, &res)
	if !res.SignedIn {
		t.Error("gateless server should report signed in")
	}

	rec = doRequest(t, s, http.MethodPost, "/api/session", `{"id_token":"x"}`)
	if rec.Code != http.StatusNotImplemented {
		t.Errorf("sign-in without gate status = %d, want 501", rec.Code)
	}
}

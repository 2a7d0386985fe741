package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"budgetup/internal/core"
	"budgetup/internal/currency"
	"budgetup/internal/log"
	"budgetup/internal/middleware/ratelimit"
	"budgetup/internal/middleware/trace"
	"budgetup/internal/storage"
	"budgetup/internal/store"
)

func newTestServer(t *testing.T, opts ...Option) (*Server, *store.Store, *currency.Service) {
	t.Helper()
	st, err := store.Open(context.Background(), storage.NewMemoryStore(), store.WithLogger(log.Discard()))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	svc := currency.NewService(st, currency.WithLogger(log.Discard()))
	srv := NewServer(":0", st, svc, log.Discard(), opts...)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv, st, svc
}

func do(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func TestHealthAndReady(t *testing.T) {
	srv, st, _ := newTestServer(t)

	rr := do(t, srv, http.MethodGet, "/healthz", "")
	if rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Fatalf("healthz status=%d body=%q", rr.Code, rr.Body.String())
	}

	rr = do(t, srv, http.MethodGet, "/readyz", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("readyz status=%d", rr.Code)
	}
	ready := decodeBody[readyResponse](t, rr)
	if ready.Key != st.Key() {
		t.Errorf("key = %q, want %q", ready.Key, st.Key())
	}
	if ready.MigrationVersion != 2 {
		t.Errorf("migrationVersion = %d, want 2", ready.MigrationVersion)
	}
}

func TestResponsesCarryRequestIDAndSecurityHeaders(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/convert", nil)
	req.Header.Set(trace.HeaderRequestID, "req-123")
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", rr.Code)
	}
	if got := rr.Header().Get(trace.HeaderRequestID); got != "req-123" {
		t.Errorf("request id header = %q", got)
	}
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing nosniff header")
	}
	body := decodeBody[ErrorBody](t, rr)
	if body.RequestID != "req-123" {
		t.Errorf("error body request id = %q", body.RequestID)
	}
	if !strings.Contains(body.Error, "amount is required") {
		t.Errorf("error = %q", body.Error)
	}
}

func TestConvert(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rr := do(t, srv, http.MethodGet, "/api/convert?amount=100&from=usd&to=EUR", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	got := decodeBody[convertResponse](t, rr)
	if got.From != "USD" || got.To != "EUR" {
		t.Errorf("pair = %s->%s", got.From, got.To)
	}
	if got.Rate != 0.85 || got.Converted != 85 {
		t.Errorf("rate=%v converted=%v", got.Rate, got.Converted)
	}
	if !strings.Contains(got.Formatted, "85") {
		t.Errorf("formatted = %q", got.Formatted)
	}
}

func TestConvertDefaultsToActiveCurrency(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rr := do(t, srv, http.MethodGet, "/api/convert?amount=12,5", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	got := decodeBody[convertResponse](t, rr)
	if got.From != core.DefaultCurrency || got.To != core.DefaultCurrency {
		t.Errorf("pair = %s->%s", got.From, got.To)
	}
	if got.Converted != 12.5 || got.Rate != 1 {
		t.Errorf("converted=%v rate=%v", got.Converted, got.Rate)
	}
}

func TestConvertRejectsBadInput(t *testing.T) {
	srv, _, _ := newTestServer(t)

	for _, target := range []string{
		"/api/convert?amount=abc",
		"/api/convert?amount=1&from=XXX",
		"/api/convert?amount=1&to=ZZZ",
	} {
		rr := do(t, srv, http.MethodGet, target, "")
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s status=%d, want 400", target, rr.Code)
		}
	}
}

func TestFormat(t *testing.T) {
	srv, _, svc := newTestServer(t)

	rr := do(t, srv, http.MethodGet, "/api/format?amount=42.5&currency=EUR", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	got := decodeBody[formatResponse](t, rr)
	if got.Locale != svc.Locale() {
		t.Errorf("locale = %q, want %q", got.Locale, svc.Locale())
	}
	if got.Formatted != svc.FormatIn(42.5, "EUR", "") {
		t.Errorf("formatted = %q", got.Formatted)
	}
}

func TestCurrencyLifecycle(t *testing.T) {
	srv, st, _ := newTestServer(t)

	rr := do(t, srv, http.MethodGet, "/api/currency", "")
	state := decodeBody[currencyState](t, rr)
	if state.Currency != core.DefaultCurrency || state.Symbol != "$" {
		t.Fatalf("initial state = %+v", state)
	}

	rr = do(t, srv, http.MethodPut, "/api/currency", `{"currency":"ghs"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("set status=%d body=%s", rr.Code, rr.Body.String())
	}
	state = decodeBody[currencyState](t, rr)
	if state.Currency != "GHS" {
		t.Errorf("currency = %s", state.Currency)
	}
	if st.DefaultCurrency() != "GHS" {
		t.Errorf("store preference = %s", st.DefaultCurrency())
	}

	rr = do(t, srv, http.MethodPut, "/api/currency", `{"currency":"XYZ"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid status=%d", rr.Code)
	}
	if body := decodeBody[ErrorBody](t, rr); body.Error != "Invalid currency code: XYZ" {
		t.Errorf("error = %q", body.Error)
	}

	rr = do(t, srv, http.MethodGet, "/api/currency", "")
	if state = decodeBody[currencyState](t, rr); state.Error == "" || state.Currency != "GHS" {
		t.Errorf("state after failure = %+v", state)
	}

	rr = do(t, srv, http.MethodDelete, "/api/currency/error", "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("clear status=%d", rr.Code)
	}
	rr = do(t, srv, http.MethodGet, "/api/currency", "")
	if state = decodeBody[currencyState](t, rr); state.Error != "" {
		t.Errorf("error not cleared: %q", state.Error)
	}
}

func TestSetCurrencyRejectsMalformedBody(t *testing.T) {
	srv, _, _ := newTestServer(t)

	for _, body := range []string{`{"currency":`, `{"code":"EUR"}`, `{"currency":"EUR"}{}`} {
		rr := do(t, srv, http.MethodPut, "/api/currency", body)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("body %s: status=%d, want 400", body, rr.Code)
		}
	}
}

func TestTransactions(t *testing.T) {
	srv, st, _ := newTestServer(t)

	rr := do(t, srv, http.MethodPost, "/api/transactions",
		`{"type":"expense","amount":50,"currency":"EUR","description":"Groceries","category":"Food","date":"2026-03-01"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", rr.Code, rr.Body.String())
	}
	created := decodeBody[transactionView](t, rr)
	if created.ID == "" || rr.Header().Get("Location") != "/api/transactions/"+created.ID {
		t.Errorf("location = %q id = %q", rr.Header().Get("Location"), created.ID)
	}
	if created.Currency != "EUR" || created.OriginalAmount == nil || *created.OriginalAmount != 50 {
		t.Errorf("created = %+v", created.Transaction)
	}
	if created.DisplayCurrency != core.DefaultCurrency || created.DisplayAmount != 59 {
		t.Errorf("display = %v %s", created.DisplayAmount, created.DisplayCurrency)
	}
	if !created.Date.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date = %v", created.Date)
	}

	rr = do(t, srv, http.MethodGet, "/api/transactions", "")
	list := decodeBody[[]transactionView](t, rr)
	if len(list) != 1 || list[0].ID != created.ID {
		t.Fatalf("list = %+v", list)
	}

	rr = do(t, srv, http.MethodDelete, "/api/transactions/"+created.ID, "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status=%d", rr.Code)
	}
	if n := len(st.Snapshot().Transactions); n != 0 {
		t.Errorf("transactions left = %d", n)
	}

	rr = do(t, srv, http.MethodDelete, "/api/transactions/"+created.ID, "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("second delete status=%d, want 404", rr.Code)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	srv, _, _ := newTestServer(t)

	cases := []struct {
		name string
		body string
		want int
	}{
		{"missing description", `{"type":"income","amount":10,"category":"Salary"}`, http.StatusUnprocessableEntity},
		{"negative amount", `{"type":"income","amount":-1,"description":"x","category":"Salary"}`, http.StatusUnprocessableEntity},
		{"bad type", `{"type":"transfer","amount":1,"description":"x","category":"Salary"}`, http.StatusUnprocessableEntity},
		{"bad currency", `{"type":"income","amount":1,"currency":"XXX","description":"x","category":"Salary"}`, http.StatusUnprocessableEntity},
		{"bad date", `{"type":"income","amount":1,"description":"x","category":"Salary","date":"01/02/2026"}`, http.StatusBadRequest},
		{"unknown field", `{"kind":"income"}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := do(t, srv, http.MethodPost, "/api/transactions", tc.body)
			if rr.Code != tc.want {
				t.Errorf("status=%d, want %d body=%s", rr.Code, tc.want, rr.Body.String())
			}
		})
	}
}

func TestSummary(t *testing.T) {
	srv, st, _ := newTestServer(t)
	ctx := context.Background()
	day := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	if _, err := st.AddTransaction(ctx, core.Transaction{Type: core.Income, Amount: 100, Description: "Pay", Category: "Salary", Date: day}); err != nil {
		t.Fatal(err)
	}
	if _, err := st.AddTransaction(ctx, core.Transaction{Type: core.Expense, Amount: 40, Description: "Rent", Category: "Home", Date: day}); err != nil {
		t.Fatal(err)
	}

	rr := do(t, srv, http.MethodGet, "/api/summary", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	got := decodeBody[summaryResponse](t, rr)
	if got.Summary.Transactions != 2 {
		t.Errorf("transactions = %d", got.Summary.Transactions)
	}
	if got.Totals.Income != 100 || got.Totals.Expenses != 40 || got.Totals.Balance != 60 {
		t.Errorf("totals = %+v", got.Totals)
	}
	if got.Formatted.Balance == "" {
		t.Error("formatted balance is empty")
	}
}

func TestCacheEndpoints(t *testing.T) {
	srv, _, svc := newTestServer(t)

	do(t, srv, http.MethodGet, "/api/convert?amount=1&from=USD&to=EUR", "")
	if svc.CacheStats().TotalSize == 0 {
		t.Fatal("expected cached entries after convert")
	}

	rr := do(t, srv, http.MethodGet, "/api/cache/stats", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("stats status=%d", rr.Code)
	}
	stats := decodeBody[cacheStatsResponse](t, rr)
	if stats.Currency.TotalSize == 0 || stats.Requests < 2 {
		t.Errorf("stats = %+v", stats)
	}

	rr = do(t, srv, http.MethodDelete, "/api/cache", "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("clear status=%d", rr.Code)
	}
	if svc.CacheStats().TotalSize != 0 {
		t.Error("cache not cleared")
	}
}

func TestCurrencies(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rr := do(t, srv, http.MethodGet, "/api/currencies", "")
	list := decodeBody[[]currencyInfo](t, rr)
	if len(list) != len(core.Currencies()) {
		t.Fatalf("currencies = %d", len(list))
	}
	if list[0].Code == "" || list[0].Symbol == "" {
		t.Errorf("first = %+v", list[0])
	}
}

func TestWriteRequestsAreRateLimited(t *testing.T) {
	srv, _, _ := newTestServer(t, WithRateLimit(ratelimit.Config{RequestsPerMinute: 2}))

	for i := 0; i < 2; i++ {
		if rr := do(t, srv, http.MethodDelete, "/api/cache", ""); rr.Code != http.StatusNoContent {
			t.Fatalf("request %d status=%d", i, rr.Code)
		}
	}
	rr := do(t, srv, http.MethodDelete, "/api/cache", "")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("status=%d, want 429", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}

	// Reads are not limited.
	if rr := do(t, srv, http.MethodGet, "/api/currency", ""); rr.Code != http.StatusOK {
		t.Errorf("read status=%d", rr.Code)
	}
}

func TestShutdownIsIdempotent(t *testing.T) {
	srv, _, _ := newTestServer(t)
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("first shutdown: %v", err)
	}
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("second shutdown: %v", err)
	}
}

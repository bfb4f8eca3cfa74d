package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"sunduq/internal/core"
	"sunduq/internal/services"
	"sunduq/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	ledger := services.NewLedgerService(storage.NewMemoryStore(), nil)
	return NewServer(":0", ledger, nil, Options{})
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)
	if rec := do(t, s, http.MethodGet, "/healthz", nil); rec.Code != http.StatusOK {
		t.Errorf("healthz = %d", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/readyz", nil); rec.Code != http.StatusOK {
		t.Errorf("readyz = %d", rec.Code)
	}
}

func TestFundLifecycle(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/funds", nil)
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("empty funds = %d %q", rec.Code, rec.Body.String())
	}

	rec = do(t, s, http.MethodPost, "/api/funds", core.FundTransaction{
		Currency: core.CurrencyYER, Amount: core.Money{Cents: 500000_00},
		Source: "قيادة المنطقة", Date: "2024-01-01",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create fund = %d %s", rec.Code, rec.Body.String())
	}
	created := decode[core.FundTransaction](t, rec)
	if created.ID == "" {
		t.Error("created fund has no ID")
	}

	funds := decode[[]core.FundTransaction](t, do(t, s, http.MethodGet, "/api/funds", nil))
	if len(funds) != 1 {
		t.Errorf("funds = %+v", funds)
	}
}

func TestCreateFundValidation(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/api/funds", core.FundTransaction{
		Currency: core.CurrencyYER, Amount: core.Money{Cents: 1}, Date: "2024-01-01",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid fund = %d %s", rec.Code, rec.Body.String())
	}
}

func TestExpenseLifecycle(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/expenses", core.Expense{
		Type: core.TypeVoucher, Currency: core.CurrencyYER, Amount: core.Money{Cents: 120000_00},
		Beneficiary: "الكتيبة الأولى", Date: "2024-01-10",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create expense = %d %s", rec.Code, rec.Body.String())
	}
	created := decode[core.Expense](t, rec)
	if created.DocumentNumber != "0001" {
		t.Errorf("document number = %q", created.DocumentNumber)
	}

	created.Beneficiary = "قيادة اللواء"
	rec = do(t, s, http.MethodPut, "/api/expenses/"+created.ID, created)
	if rec.Code != http.StatusOK {
		t.Fatalf("update expense = %d %s", rec.Code, rec.Body.String())
	}
	updated := decode[core.Expense](t, rec)
	if updated.DocumentNumber != "0001" {
		t.Error("edit must not renumber the document")
	}

	if rec := do(t, s, http.MethodDelete, "/api/expenses/"+created.ID, nil); rec.Code != http.StatusNoContent {
		t.Errorf("delete = %d", rec.Code)
	}
	if rec := do(t, s, http.MethodDelete, "/api/expenses/"+created.ID, nil); rec.Code != http.StatusNotFound {
		t.Errorf("delete missing = %d", rec.Code)
	}
}

func TestExpenseValidationStatus(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/api/expenses", core.Expense{
		Type: core.TypeVoucher, Currency: core.CurrencyYER, Amount: core.Money{Cents: 1_00},
		Date: "2024-01-10",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("voucher without beneficiary = %d %s", rec.Code, rec.Body.String())
	}
}

func TestNextDocumentNumberEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/expenses/next-number?type=VOUCHER", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("next-number = %d", rec.Code)
	}
	body := decode[map[string]string](t, rec)
	if body["documentNumber"] != "0001" {
		t.Errorf("next number = %q", body["documentNumber"])
	}

	if rec := do(t, s, http.MethodGet, "/api/expenses/next-number?type=WRONG", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad type = %d", rec.Code)
	}
}

func seedLedger(t *testing.T, s *Server) {
	t.Helper()
	if rec := do(t, s, http.MethodPost, "/api/funds", core.FundTransaction{
		Currency: core.CurrencyYER, Amount: core.Money{Cents: 500000_00},
		Source: "قيادة المنطقة", Date: "2024-01-01",
	}); rec.Code != http.StatusCreated {
		t.Fatalf("seed fund = %d", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, "/api/expenses", core.Expense{
		Type: core.TypeVoucher, Currency: core.CurrencyYER, Amount: core.Money{Cents: 120000_00},
		Beneficiary: "الكتيبة الأولى", Date: "2024-01-10", VoucherSubCategory: core.VoucherExpense,
	}); rec.Code != http.StatusCreated {
		t.Fatalf("seed expense = %d", rec.Code)
	}
}

func TestTransactionsAndFilters(t *testing.T) {
	s := newTestServer(t)
	seedLedger(t, s)

	transactions := decode[[]core.UnifiedTransaction](t, do(t, s, http.MethodGet, "/api/transactions", nil))
	if len(transactions) != 2 || transactions[0].Date != "2024-01-10" {
		t.Errorf("transactions = %+v", transactions)
	}

	filtered := decode[[]core.UnifiedTransaction](t, do(t, s, http.MethodGet, "/api/transactions?type=FUND", nil))
	if len(filtered) != 1 {
		t.Errorf("filtered = %+v", filtered)
	}

	groups := decode[[]core.DateGroup](t, do(t, s, http.MethodGet, "/api/transactions?grouped=true", nil))
	if len(groups) != 2 {
		t.Errorf("groups = %+v", groups)
	}
}

func TestSummaryReflectsMutations(t *testing.T) {
	s := newTestServer(t)
	seedLedger(t, s)

	summary := decode[[]core.BalanceSummary](t, do(t, s, http.MethodGet, "/api/summary", nil))
	if summary[0].Balance.Cents != 380000_00 {
		t.Errorf("summary = %+v", summary)
	}

	// A second read comes from the cache, a mutation purges it.
	if rec := do(t, s, http.MethodPost, "/api/expenses", core.Expense{
		Type: core.TypeVoucher, Currency: core.CurrencyYER, Amount: core.Money{Cents: 80000_00},
		Beneficiary: "أحمد", Date: "2024-01-11",
	}); rec.Code != http.StatusCreated {
		t.Fatal("second expense failed")
	}

	summary = decode[[]core.BalanceSummary](t, do(t, s, http.MethodGet, "/api/summary", nil))
	if summary[0].Balance.Cents != 300000_00 {
		t.Errorf("summary after mutation = %+v", summary)
	}
}

func TestReportEndpoint(t *testing.T) {
	s := newTestServer(t)
	seedLedger(t, s)

	report := decode[core.Report](t, do(t, s, http.MethodGet, "/api/report", nil))
	if report.Count != 2 {
		t.Errorf("report = %+v", report)
	}
}

func TestExportCSV(t *testing.T) {
	s := newTestServer(t)
	seedLedger(t, s)

	rec := do(t, s, http.MethodGet, "/api/export/csv?start=2024-01-01&end=2024-01-31", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="financial_report_2024-01-01_2024-01-31.csv"` {
		t.Errorf("disposition = %q", got)
	}
	if !strings.HasPrefix(rec.Body.String(), "\ufeff") {
		t.Error("export must start with the UTF-8 BOM")
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	s := newTestServer(t)

	settings := decode[core.Settings](t, do(t, s, http.MethodGet, "/api/settings", nil))
	if settings != core.DefaultSettings() {
		t.Errorf("fresh settings = %+v", settings)
	}

	settings.UnitName = "صندوق الكتيبة"
	if rec := do(t, s, http.MethodPut, "/api/settings", settings); rec.Code != http.StatusOK {
		t.Fatalf("save settings = %d", rec.Code)
	}

	reloaded := decode[core.Settings](t, do(t, s, http.MethodGet, "/api/settings", nil))
	if reloaded.UnitName != "صندوق الكتيبة" {
		t.Errorf("reloaded = %+v", reloaded)
	}
}

func TestOrdersRoundTrip(t *testing.T) {
	s := newTestServer(t)

	orders := []core.Order{{Title: "طلب وقود", Date: "2024-02-01", Status: core.StatusPending}}
	if rec := do(t, s, http.MethodPut, "/api/orders", orders); rec.Code != http.StatusOK {
		t.Fatalf("replace orders = %d", rec.Code)
	}

	listed := decode[[]core.Order](t, do(t, s, http.MethodGet, "/api/orders", nil))
	if len(listed) != 1 || listed[0].Status != core.StatusPending {
		t.Errorf("orders = %+v", listed)
	}
}

func TestBackupAndRestore(t *testing.T) {
	s := newTestServer(t)
	seedLedger(t, s)

	rec := do(t, s, http.MethodGet, "/api/backup", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("backup = %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "backup_brigade_fund_") {
		t.Errorf("disposition = %q", rec.Header().Get("Content-Disposition"))
	}
	exported := rec.Body.Bytes()

	fresh := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/restore", bytes.NewReader(exported))
	restoreRec := httptest.NewRecorder()
	fresh.Server.Handler.ServeHTTP(restoreRec, req)
	if restoreRec.Code != http.StatusOK {
		t.Fatalf("restore = %d %s", restoreRec.Code, restoreRec.Body.String())
	}

	funds := decode[[]core.FundTransaction](t, do(t, fresh, http.MethodGet, "/api/funds", nil))
	if len(funds) != 1 {
		t.Errorf("restored funds = %+v", funds)
	}
}

func TestRestoreRejectsInvalid(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/restore", strings.NewReader(`{"version":1,"funds":[]}`))
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid restore = %d %s", rec.Code, rec.Body.String())
	}
}

func TestAnalyzeReceiptDisabled(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/api/receipts/analyze", analyzeRequest{
		Image: "aGVsbG8=", MimeType: "image/png",
	})
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("disabled analyzer = %d %s", rec.Code, rec.Body.String())
	}
}

func TestDecodeImageDataURL(t *testing.T) {
	image, mimeType, err := decodeImage(analyzeRequest{Image: "data:image/png;base64,aGVsbG8="})
	if err != nil {
		t.Fatal(err)
	}
	if string(image) != "hello" || mimeType != "image/png" {
		t.Errorf("decoded = %q %q", image, mimeType)
	}

	if _, _, err := decodeImage(analyzeRequest{Image: "%%%"}); err == nil {
		t.Error("expected error for invalid base64")
	}
}

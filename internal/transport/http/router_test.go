package http

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/cloud-ru/finplan-go/internal/config"
	"github.com/cloud-ru/finplan-go/internal/logging"
	"github.com/cloud-ru/finplan-go/internal/storage"
	"github.com/cloud-ru/finplan-go/internal/tools"
)

const loanBody = `{"principal":25000,"annual_rate_percent":8.5,"term_count":5,"term_unit":"years","start_date":"2025-01-15"}`

func newTestServer(t *testing.T, cfg *config.Config) (*httptest.Server, *storage.MemoryStore) {
	t.Helper()
	if cfg == nil {
		cfg = config.Default()
	}
	logger := logging.Discard()
	registry := tools.NewRegistry(cfg, noop.NewTracerProvider().Tracer("test"), logger,
		tools.WithClock(func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }))
	store := storage.NewMemoryStore()

	srv := httptest.NewServer(NewRouter(cfg, registry, store, logger))
	t.Cleanup(srv.Close)
	return srv, store
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestHealthAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp := get(t, srv.URL+"/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var health map[string]interface{}
	decode(t, resp, &health)
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, 10.0, health["tools"])

	resp = get(t, srv.URL+"/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListTools(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	var body struct {
		Tools []tools.Tool `json:"tools"`
	}
	decode(t, get(t, srv.URL+"/api/v1/tools"), &body)
	require.Len(t, body.Tools, 10)
	assert.Equal(t, "budget_summary", body.Tools[0].Name)
}

func TestCalculate(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp := post(t, srv.URL+"/api/v1/calculations/loan_amortization", loanBody)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		PeriodicPayment json.Number `json:"periodic_payment"`
		TermMonths      int         `json:"term_months"`
		Schedule        []struct {
			DueDate          string      `json:"due_date"`
			RemainingBalance json.Number `json:"remaining_balance"`
		} `json:"schedule"`
	}
	decode(t, resp, &body)
	assert.Equal(t, "512.91", body.PeriodicPayment.String())
	assert.Equal(t, 60, body.TermMonths)
	require.Len(t, body.Schedule, 60)
	assert.Equal(t, "2025-02-15", body.Schedule[0].DueDate)
	assert.Equal(t, "0.00", body.Schedule[59].RemainingBalance.String())
}

func TestCalculateErrors(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
		wantCode   string
		wantField  string
	}{
		{"validation", "/api/v1/calculations/loan_amortization", `{"principal":0,"term_count":12}`, http.StatusBadRequest, "VALIDATION_FAILED", "principal"},
		{"unknown field", "/api/v1/calculations/loan_amortization", `{"principal":1000,"term_count":12,"color":"red"}`, http.StatusBadRequest, "INVALID_REQUEST", ""},
		{"malformed json", "/api/v1/calculations/loan_amortization", `{"principal":`, http.StatusBadRequest, "INVALID_REQUEST", ""},
		{"unknown tool", "/api/v1/calculations/crypto_moonshot", `{}`, http.StatusNotFound, "TOOL_NOT_FOUND", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, srv.URL+tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			var body struct {
				Success bool `json:"success"`
				Error   struct {
					ErrorCode string          `json:"error_code"`
					Details   json.RawMessage `json:"details"`
				} `json:"error"`
			}
			decode(t, resp, &body)
			assert.False(t, body.Success)
			assert.Equal(t, tt.wantCode, body.Error.ErrorCode)
			if tt.wantField != "" {
				var details struct {
					Field string `json:"field"`
				}
				require.NoError(t, json.Unmarshal(body.Error.Details, &details))
				assert.Equal(t, tt.wantField, details.Field)
			}
		})
	}
}

func TestExport(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp := post(t, srv.URL+"/api/v1/calculations/loan_amortization/export?format=csv", loanBody)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "loan_amortization.csv")

	records, err := csv.NewReader(resp.Body).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 61)

	resp = post(t, srv.URL+"/api/v1/calculations/loan_amortization/export", loanBody)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Schedule"}, f.GetSheetList())

	resp = post(t, srv.URL+"/api/v1/calculations/loan_amortization/export?format=pdf", loanBody)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = post(t, srv.URL+"/api/v1/calculations/budget_summary/export", `{"monthly_income":1000}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestCalculateAndSaveRecords(t *testing.T) {
	srv, store := newTestServer(t, nil)

	resp := post(t, srv.URL+"/api/v1/users/42/calculations/loan_amortization", loanBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var saved struct {
		Record storage.Record  `json:"record"`
		Result json.RawMessage `json:"result"`
	}
	decode(t, resp, &saved)
	assert.Equal(t, int64(42), saved.Record.UserID)
	assert.Equal(t, storage.KindEMI, saved.Record.Kind)
	assert.Equal(t, "loan_amortization", saved.Record.Tool)
	assert.NotContains(t, string(saved.Record.Summary), "schedule")
	assert.Contains(t, string(saved.Result), "schedule")
	assert.JSONEq(t, loanBody, string(saved.Record.Input))

	resp = post(t, srv.URL+"/api/v1/users/42/calculations/budget_summary", `{"monthly_income":3000,"categories":[{"name":"rent","planned":1000,"actual":1100}]}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var list struct {
		Records []storage.Record `json:"records"`
		Count   int              `json:"count"`
	}
	decode(t, get(t, srv.URL+"/api/v1/users/42/records"), &list)
	assert.Equal(t, 2, list.Count)

	decode(t, get(t, srv.URL+"/api/v1/users/42/records?kind=emi"), &list)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, saved.Record.ID, list.Records[0].ID)

	resp = get(t, srv.URL+"/api/v1/records/"+saved.Record.ID.String())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rec storage.Record
	decode(t, resp, &rec)
	assert.Equal(t, saved.Record.ID, rec.ID)

	stored, err := store.ListByUser(context.Background(), 42, storage.KindBudget)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestRecordsErrors(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	assert.Equal(t, http.StatusBadRequest, get(t, srv.URL+"/api/v1/users/abc/records").StatusCode)
	assert.Equal(t, http.StatusBadRequest, get(t, srv.URL+"/api/v1/users/1/records?kind=pension").StatusCode)
	assert.Equal(t, http.StatusBadRequest, get(t, srv.URL+"/api/v1/records/not-a-uuid").StatusCode)
	assert.Equal(t, http.StatusNotFound, get(t, srv.URL+"/api/v1/records/6f1c3a52-6a0e-4c61-8f0e-0d7f6bcb2f44").StatusCode)
	assert.Equal(t, http.StatusBadRequest, post(t, srv.URL+"/api/v1/users/0/calculations/loan_amortization", loanBody).StatusCode)
}

func TestRateLimit(t *testing.T) {
	cfg := config.Default()
	cfg.RateLimitRPS = 0.001
	cfg.RateLimitBurst = 1
	srv, _ := newTestServer(t, cfg)

	assert.Equal(t, http.StatusOK, get(t, srv.URL+"/api/v1/tools").StatusCode)
	assert.Equal(t, http.StatusTooManyRequests, get(t, srv.URL+"/api/v1/tools").StatusCode)
	// health не ограничивается
	assert.Equal(t, http.StatusOK, get(t, srv.URL+"/health").StatusCode)
}

func TestNotFoundRoute(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	assert.Equal(t, http.StatusNotFound, get(t, srv.URL+"/nope").StatusCode)
}

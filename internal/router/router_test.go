package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/navid-fn/carrier-sales/internal/handler"
	"github.com/navid-fn/carrier-sales/internal/handoff"
	"github.com/navid-fn/carrier-sales/internal/model"
	"github.com/navid-fn/carrier-sales/internal/repository"
	"github.com/navid-fn/carrier-sales/internal/service"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

const testKey = "testkey123"

type stubDispatcher struct {
	err error
}

func (d stubDispatcher) Dispatch(context.Context, handoff.Transfer) error { return d.err }
func (d stubDispatcher) Close() error { return nil }

func newTestRouter(t *testing.T, limiter *rate.Limiter, dispatcher handoff.Dispatcher) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger, _ := test.NewNullLogger()

	loads := repository.NewLoadRepository([]model.Load{
		{LoadID: "L001", Origin: "Chicago, IL", Destination: "Dallas, TX", EquipmentType: "Dry Van", LoadboardRate: decimal.NewFromInt(1500)},
		{LoadID: "L002", Origin: "Atlanta, GA", Destination: "Miami, FL", EquipmentType: "Reefer", LoadboardRate: decimal.NewFromInt(1200)},
	})
	calls := repository.NewMemoryCallRepository()

	return NewRouter(&Config{
		LoadHandler:        handler.NewLoadHandler(service.NewLoadService(loads)),
		CallMetricsHandler: handler.NewCallMetricsHandler(service.NewCallMetricsService(calls, logger), logger),
		TransferHandler:    handler.NewTransferHandler(service.NewTransferService(dispatcher), logger),
		DashboardHandler:   handler.NewDashboardHandler(service.NewDashboardService(calls), testKey, logger),
		APIKey:             testKey,
		Limiter:            limiter,
		Logger:             logger,
	})
}

func do(r http.Handler, method, path, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	if key != "" {
		req.Header.Set("x-api-key", key)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func TestProtectedRoutesRequireAPIKey(t *testing.T) {
	r := newTestRouter(t, nil, stubDispatcher{})

	routes := []struct{ method, path string }{
		{http.MethodGet, "/"},
		{http.MethodGet, "/loads"},
		{http.MethodGet, "/call-metrics"},
		{http.MethodPost, "/call-metrics"},
		{http.MethodPost, "/transfer-sales"},
		{http.MethodGet, "/dashboard/data"},
	}
	for _, rt := range routes {
		for _, key := range []string{"", "wrong"} {
			t.Run(rt.method+" "+rt.path+" key="+key, func(t *testing.T) {
				w := do(r, rt.method, rt.path, key, `{"message":"x"}`)
				assert.Equal(t, http.StatusUnauthorized, w.Code)

				var body map[string]string
				decode(t, w, &body)
				assert.Equal(t, map[string]string{"status": "error", "message": "Invalid or missing API key"}, body)
			})
		}
	}

	var stored []map[string]any
	decode(t, do(r, http.MethodGet, "/call-metrics", testKey, ""), &stored)
	assert.Empty(t, stored, "rejected requests store nothing")
}

func TestHome(t *testing.T) {
	r := newTestRouter(t, nil, stubDispatcher{})
	w := do(r, http.MethodGet, "/", testKey, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Body.String())
}

func TestSearchLoads(t *testing.T) {
	r := newTestRouter(t, nil, stubDispatcher{})

	w := do(r, http.MethodGet, "/loads?origin=chicago&unknown=zzz", testKey, "")
	require.Equal(t, http.StatusOK, w.Code)
	var res service.LoadSearchResult
	decode(t, w, &res)
	assert.Equal(t, "Matched 1 loads.", res.Message)
	assert.True(t, strings.HasPrefix(res.Results, "load_id: L001, origin: Chicago, IL"))

	w = do(r, http.MethodGet, "/loads?equipment_type=flatbed", testKey, "")
	decode(t, w, &res)
	assert.Equal(t, service.LoadSearchResult{Message: "No matching records found.", Results: ""}, res)
}

func TestCallMetricsRoundTrip(t *testing.T) {
	r := newTestRouter(t, nil, stubDispatcher{})

	w := do(r, http.MethodPost, "/call-metrics", testKey,
		`{"mc_number":"MC1","outcome":"successful","sentiment":"positive","call_duration":100,"load_accepted":true,"rate_difference":-50}`)
	require.Equal(t, http.StatusOK, w.Code)
	var status map[string]string
	decode(t, w, &status)
	assert.Equal(t, map[string]string{"status": "success", "message": "Call metrics logged successfully"}, status)

	w = do(r, http.MethodPost, "/call-metrics", testKey, `{"mc_number":"MC2","outcome":"failed","load_accepted":"false"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/call-metrics", testKey, "")
	require.Equal(t, http.StatusOK, w.Code)
	var all []map[string]any
	decode(t, w, &all)
	require.Len(t, all, 2)
	assert.Equal(t, "MC1", all[0]["mc_number"])
	assert.Equal(t, -50.0, all[0]["rate_difference"])
	assert.Equal(t, true, all[0]["load_accepted"])
	assert.NotContains(t, all[0], "id")
	assert.Contains(t, all[0], "timestamp")

	w = do(r, http.MethodGet, "/call-metrics?load_accepted=True", testKey, "")
	var accepted []map[string]any
	decode(t, w, &accepted)
	require.Len(t, accepted, 1)
	assert.Equal(t, "MC1", accepted[0]["mc_number"])

	w = do(r, http.MethodGet, "/call-metrics?outcome=succ", testKey, "")
	var none []map[string]any
	decode(t, w, &none)
	assert.Empty(t, none, "call filters match exactly")
}

func TestLogCallMetricsErrors(t *testing.T) {
	r := newTestRouter(t, nil, stubDispatcher{})

	w := do(r, http.MethodPost, "/call-metrics", testKey, `{"call_duration":[1,2]}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]string
	decode(t, w, &body)
	assert.Equal(t, "error", body["status"])
	assert.Contains(t, body["message"], "call_duration")

	w = do(r, http.MethodPost, "/call-metrics", testKey, `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOversizedBodiesAreRejected(t *testing.T) {
	r := newTestRouter(t, nil, stubDispatcher{})
	huge := `{"mc_number":"MC1","carrier_name":"` + strings.Repeat("x", 2<<20) + `"}`

	for _, path := range []string{"/call-metrics", "/transfer-sales"} {
		t.Run(path, func(t *testing.T) {
			w := do(r, http.MethodPost, path, testKey, huge)
			assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

			var body map[string]string
			decode(t, w, &body)
			assert.Equal(t, "error", body["status"])
		})
	}

	var stored []map[string]any
	decode(t, do(r, http.MethodGet, "/call-metrics", testKey, ""), &stored)
	assert.Empty(t, stored)
}

func TestTransferSales(t *testing.T) {
	r := newTestRouter(t, nil, stubDispatcher{})

	w := do(r, http.MethodPost, "/transfer-sales", testKey, `{"message":"MC1 booked L001"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	decode(t, w, &body)
	assert.Equal(t, "Sales transferred successfully: MC1 booked L001", body["message"])

	w = do(r, http.MethodPost, "/transfer-sales", testKey, `{"note":"x"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	decode(t, w, &body)
	assert.Equal(t, map[string]string{"status": "error", "message": "Missing message field"}, body)

	failing := newTestRouter(t, nil, stubDispatcher{err: errors.New("sink down")})
	w = do(failing, http.MethodPost, "/transfer-sales", testKey, `{"message":"x"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestDashboardData(t *testing.T) {
	r := newTestRouter(t, nil, stubDispatcher{})

	w := do(r, http.MethodGet, "/dashboard/data", testKey, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"charts": {},
		"metrics": {
			"total_calls": 0, "successful_calls": 0, "success_rate": 0,
			"avg_call_duration": 0, "avg_negotiation_rounds": 0, "loads_accepted": 0
		}
	}`, w.Body.String())

	for _, body := range []string{
		`{"outcome":"successful","call_duration":100,"load_accepted":true}`,
		`{"outcome":"successful","call_duration":200,"load_accepted":true}`,
		`{"outcome":"failed","call_duration":50}`,
	} {
		require.Equal(t, http.StatusOK, do(r, http.MethodPost, "/call-metrics", testKey, body).Code)
	}

	w = do(r, http.MethodGet, "/dashboard/data", testKey, "")
	var data struct {
		Metrics map[string]float64 `json:"metrics"`
		Charts  map[string]any     `json:"charts"`
	}
	decode(t, w, &data)
	assert.Equal(t, 66.67, data.Metrics["success_rate"])
	assert.Equal(t, 116.67, data.Metrics["avg_call_duration"])
	assert.Contains(t, data.Charts, "outcomes")
	assert.Contains(t, data.Charts, "rate_negotiation", "absent rate_difference defaults to a present zero")
}

func TestDashboardPageIsPublic(t *testing.T) {
	r := newTestRouter(t, nil, stubDispatcher{})

	w := do(r, http.MethodGet, "/dashboard", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), `const API_KEY = "testkey123";`)
	assert.Contains(t, w.Body.String(), "/dashboard/data")
}

func TestHealthAndMetricsArePublic(t *testing.T) {
	r := newTestRouter(t, nil, stubDispatcher{})

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/healthz", "", "").Code)

	do(r, http.MethodGet, "/loads", testKey, "")
	w := do(r, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "carrier_sales_http_requests_total")
	assert.Contains(t, w.Body.String(), `route="/loads"`)
}

func TestRateLimit(t *testing.T) {
	r := newTestRouter(t, rate.NewLimiter(rate.Limit(0.001), 2), stubDispatcher{})

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/", testKey, "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/", testKey, "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodGet, "/", testKey, "").Code)
}

func TestNewLimiter(t *testing.T) {
	assert.Nil(t, NewLimiter(0, 10))
	l := NewLimiter(5, 0)
	require.NotNil(t, l)
	assert.Equal(t, 1, l.Burst())
}

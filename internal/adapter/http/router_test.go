package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/salonledger/internal/adapter/http/dto"
	"github.com/iho/salonledger/internal/adapter/http/handler"
	apimiddleware "github.com/iho/salonledger/internal/adapter/http/middleware"
	"github.com/iho/salonledger/internal/adapter/repository/memory"
	"github.com/iho/salonledger/internal/infrastructure/metrics"
	"github.com/iho/salonledger/internal/usecase"
)

type counterIDs struct {
	mu sync.Mutex
	n  int
}

func (g *counterIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.n++

	return fmt.Sprintf("id-%04d", g.n)
}

// newRouterConfig wires the handlers to real use cases over the memory store.
func newRouterConfig(opts ...func(*RouterConfig)) RouterConfig {
	store := memory.NewStore()
	txm := memory.NewTxManager(store)
	ids := &counterIDs{}
	locker := usecase.NewCashBoxLocker()

	comandas := memory.NewComandaRepository(store)
	transfers := memory.NewTransferRecordRepository(store)
	outbox := memory.NewOutboxRepository(store)

	provider := usecase.NewExchangeRateProvider(txm, memory.NewRateRepository(store), outbox, nil, ids, nil,
		zerolog.Nop(), usecase.RateProviderConfig{})
	converter := usecase.NewCurrencyConverter(provider)
	calc := usecase.NewPaymentCalculator(converter, nil)

	ledger := usecase.NewLedgerUseCase(txm, comandas, outbox, calc, locker, ids, nil, usecase.LedgerConfig{})
	transfer := usecase.NewTransferUseCase(txm, comandas, transfers, outbox, locker, ids, nil, nil)
	recon := usecase.NewReconciliationUseCase(comandas, transfers)

	cfg := RouterConfig{
		RateHandler:    handler.NewRateHandler(provider, converter),
		ComandaHandler: handler.NewComandaHandler(ledger, converter),
		CashBoxHandler: handler.NewCashBoxHandler(ledger, transfer, recon),
		HealthHandler:  handler.NewHealthHandler(nil, nil),
		Logger:         zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	rl := apimiddleware.NewRateLimiter(1, 1)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.RateLimiter = rl
	}))

	req1 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req1.RemoteAddr = "1.2.3.4:1234"
	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, req1)
	if rec1.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", rec1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req2.RemoteAddr = "1.2.3.4:1234"
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", rec2.Code)
	}
}

func TestNewRouter_IdempotencyMiddlewareInvokesStore(t *testing.T) {
	store := &stubIdempotencyStore{}
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.IdempotencyStore = store
	}))

	body := `{"value":"1000","captured_by":"admin"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/rates", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apimiddleware.IdempotencyKeyHeader, "key-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if !store.checkCalled {
		t.Fatalf("expected idempotency store to be used")
	}

	if !store.updated {
		t.Fatalf("expected the successful response to be stored, got %d", rec.Code)
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.MetricsHandler = promhttp.Handler()
	}))

	chiRoutes, ok := router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"GET /metrics",
		"POST /api/v1/rates/",
		"GET /api/v1/rates/current",
		"GET /api/v1/rates/history",
		"GET /api/v1/rates/convert",
		"POST /api/v1/comandas/",
		"GET /api/v1/comandas/{id}",
		"PUT /api/v1/comandas/{id}",
		"POST /api/v1/comandas/{id}/validate",
		"POST /api/v1/comandas/{id}/cancel",
		"GET /api/v1/cash-boxes/{box}/comandas",
		"GET /api/v1/cash-boxes/{box}/candidates",
		"POST /api/v1/cash-boxes/{box}/transfers",
		"GET /api/v1/cash-boxes/{box}/transfers",
		"GET /api/v1/cash-boxes/{box}/summary",
		"GET /api/v1/cash-boxes/{box}/summary/business-units",
		"GET /api/v1/cash-boxes/{box}/summary/staff",
		"GET /api/v1/transfers/{id}",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

func TestNewRouter_DayAtTheSalon(t *testing.T) {
	reg := prometheus.NewRegistry()
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.Metrics = metrics.NewWithRegisterer(reg)
	}))

	// no rate yet: canonical comandas with ARS lines cannot settle
	rec := do(t, router, http.MethodGet, "/api/v1/rates/current", "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/v1/rates", `{"value":"1000","captured_by":"admin"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	create := func(body string) dto.ComandaResponse {
		t.Helper()

		rec := do(t, router, http.MethodPost, "/api/v1/comandas", body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var c dto.ComandaResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))

		return c
	}

	// canonical: ARS line and ARS payment settle in USD at the rate
	haircut := create(`{
		"kind":"income","cash_box":"petty","created_by":"reception","business_unit":"hair",
		"items":[{"product_id":"cut","staff_id":"ana","unit_price":{"amount":"20","currency":"USD"},"quantity":1},
		         {"product_id":"wash","staff_id":"bea","unit_price":{"amount":"10000","currency":"ARS"},"quantity":1}],
		"payments":[{"kind":"cash","amount":{"amount":"30000","currency":"ARS"}}]
	}`)
	assert.Equal(t, int64(1), haircut.SequenceNumber)

	// native: a frozen ARS price settles in ARS
	color := create(`{
		"kind":"income","cash_box":"petty","created_by":"reception","business_unit":"color",
		"items":[{"product_id":"color","unit_price":{"amount":"45000","currency":"ARS"},"quantity":1,"frozen":true}],
		"payments":[{"kind":"transfer","amount":{"amount":"45000","currency":"ARS"}}]
	}`)
	require.Len(t, color.Items, 1)
	require.NotNil(t, color.Items[0].AdvisoryUSD)
	assert.Equal(t, "45.00", color.Items[0].AdvisoryUSD.Amount)

	unbalanced := create(`{
		"kind":"income","cash_box":"petty","created_by":"reception",
		"items":[{"product_id":"nails","unit_price":{"amount":"15","currency":"USD"},"quantity":1}],
		"payments":[{"kind":"card","amount":{"amount":"10","currency":"USD"}}]
	}`)

	for _, id := range []string{haircut.ID, color.ID} {
		rec = do(t, router, http.MethodPost, "/api/v1/comandas/"+id+"/validate", "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec = do(t, router, http.MethodPost, "/api/v1/comandas/"+unbalanced.ID+"/validate", "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// fix the payment and validate again
	rec = do(t, router, http.MethodPut, "/api/v1/comandas/"+unbalanced.ID, `{
		"items":[{"product_id":"nails","unit_price":{"amount":"15","currency":"USD"},"quantity":1}],
		"payments":[{"kind":"card","amount":{"amount":"15","currency":"USD"}}]
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, router, http.MethodPost, "/api/v1/comandas/"+unbalanced.ID+"/validate", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var summary dto.SummaryResponse
	rec = do(t, router, http.MethodGet, "/api/v1/cash-boxes/petty/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, "45.00", summary.IncomeUSD)
	assert.Equal(t, "45000.00", summary.IncomeARS)
	assert.Equal(t, 3, summary.TransactionCount)

	rec = do(t, router, http.MethodGet, "/api/v1/cash-boxes/petty/candidates", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var candidates dto.ComandaListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &candidates))
	assert.Len(t, candidates.Comandas, 3)

	rec = do(t, router, http.MethodPost, "/api/v1/cash-boxes/petty/transfers",
		`{"performed_by":"manager","partial":true,"requested_usd":"40","requested_ars":"45000"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var result dto.TransferResultResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.NotNil(t, result.Record)
	assert.Equal(t, 3, result.Moved)
	assert.Equal(t, "5.00", result.Record.ResidualUSD)
	assert.Equal(t, "0.00", result.Record.ResidualARS)

	// transferred comandas can no longer be cancelled
	rec = do(t, router, http.MethodPost, "/api/v1/comandas/"+haircut.ID+"/cancel", `{"cancelled_by":"manager"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/v1/cash-boxes/main/summary", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, "40.00", summary.TransfersInUSD)
	assert.Equal(t, "45000.00", summary.TransfersInARS)

	rec = do(t, router, http.MethodGet, "/api/v1/transfers/"+result.Record.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/v1/cash-boxes/main/transfers", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var history []dto.TransferRecordResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	assert.Len(t, history, 1)

	// the second sweep has nothing left to move
	rec = do(t, router, http.MethodPost, "/api/v1/cash-boxes/petty/transfers", `{"performed_by":"manager"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

type stubIdempotencyStore struct {
	checkCalled bool
	updated     bool
}

func (s *stubIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	s.checkCalled = true
	return false, nil, nil
}

func (s *stubIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	s.updated = true
	return nil
}

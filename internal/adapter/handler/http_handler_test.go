package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/rental-booking/internal/adapter/storage"
	"github.com/rl1809/rental-booking/internal/auth"
	"github.com/rl1809/rental-booking/internal/core/domain"
	"github.com/rl1809/rental-booking/internal/core/pricing"
	"github.com/rl1809/rental-booking/internal/core/service"
	"github.com/rl1809/rental-booking/internal/port"
)

const testSecret = "test-secret"

type testServer struct {
	handler *HTTPHandler
	routes  http.Handler
	store   *storage.MemoryAdapter
	base    time.Time
}

func newTestServer(t *testing.T, cache port.CacheRepository, opts Options) *testServer {
	t.Helper()

	cfg := pricing.DefaultConfig()
	cfg.Variant = domain.VariantBasic
	engine := pricing.NewEngine(cfg)

	store := storage.NewMemoryAdapter()
	catalog := service.NewCatalogService(store, cache)
	quotes := service.NewQuoteService(store, catalog, engine)
	svc := Services{
		Catalog:      catalog,
		Availability: service.NewAvailabilityService(store, cache, catalog),
		Quotes:       quotes,
		Bookings:     service.NewBookingService(store, catalog, quotes, service.DefaultRetryPolicy()),
		Lifecycle:    service.NewLifecycleService(store, cache, catalog, service.DefaultRetryPolicy()),
	}

	opts.JWTSecret = testSecret
	h := NewHTTPHandler(svc, store, cache, opts)
	return &testServer{
		handler: h,
		routes:  h.Routes(),
		store:   store,
		// Midnight at least two days out, so every window is in the future.
		base: time.Now().UTC().Add(72 * time.Hour).Truncate(24 * time.Hour),
	}
}

func token(t *testing.T, subject, role string) string {
	t.Helper()
	tok, err := auth.Issue(testSecret, subject, role, time.Hour)
	require.NoError(t, err)
	return tok
}

func (s *testServer) at(hour int) time.Time {
	return s.base.Add(time.Duration(hour) * time.Hour)
}

func (s *testServer) do(t *testing.T, method, path, tok string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	s.routes.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) registerItem(t *testing.T, stock int) domain.Item {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/items", token(t, "owner-1", auth.RoleOwner), map[string]interface{}{
		"name":       "Kayak",
		"totalStock": stock,
		"pricingTiers": []map[string]interface{}{
			{"unit": "hour", "rate": "50"},
			{"unit": "day", "rate": "300"},
		},
		"deposit":        map[string]interface{}{"type": "flat", "value": "20"},
		"lateFeePercent": "10",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var item domain.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
	return item
}

func (s *testServer) book(t *testing.T, tok, itemID string, qty, from, to int) *httptest.ResponseRecorder {
	t.Helper()
	return s.do(t, http.MethodPost, "/bookings", tok, map[string]interface{}{
		"itemId":   itemID,
		"start":    s.at(from).Format(time.RFC3339),
		"end":      s.at(to).Format(time.RFC3339),
		"quantity": qty,
	})
}

type errorResponse struct {
	Error struct {
		Kind    string                 `json:"kind"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func decodeBooking(t *testing.T, rec *httptest.ResponseRecorder) domain.Booking {
	t.Helper()
	var b domain.Booking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b), rec.Body.String())
	return b
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t, storage.NopCache{}, Options{})

	rec := s.do(t, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","store":"ok","cache":"ok"}`, rec.Body.String())
}

func TestHealthCheck_CacheDownIsDegraded(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	s := newTestServer(t, storage.NewRedisAdapter(client, storage.RedisOptions{}), Options{})
	mr.Close()

	rec := s.do(t, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body["status"])
}

func TestBookingScenarioOverHTTP(t *testing.T) {
	s := newTestServer(t, storage.NopCache{}, Options{})
	item := s.registerItem(t, 5)

	rec := s.book(t, token(t, "cust-a", auth.RoleCustomer), item.ID, 5, 10, 14)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	a := decodeBooking(t, rec)
	assert.Equal(t, domain.StatusPending, a.Status)
	assert.Equal(t, "cust-a", a.CustomerID)
	assert.Equal(t, "200", a.Price.UnitTotal.String())

	rec = s.book(t, token(t, "cust-b", auth.RoleCustomer), item.ID, 1, 10, 14)
	require.Equal(t, http.StatusConflict, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "conflict", body.Error.Kind)
	assert.Equal(t, float64(0), body.Error.Details["freeQuantity"])
	assert.Equal(t, float64(1), body.Error.Details["requestedQuantity"])
	assert.Equal(t, float64(5), body.Error.Details["totalStock"])

	rec = s.book(t, token(t, "cust-c", auth.RoleCustomer), item.ID, 5, 14, 18)
	assert.Equal(t, http.StatusCreated, rec.Code, "a window starting at the previous end does not overlap")

	rec = s.book(t, token(t, "cust-d", auth.RoleCustomer), item.ID, 1, 12, 16)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodGet, "/items/"+item.ID+"/bookings", token(t, "cust-a", auth.RoleCustomer), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/items/"+item.ID+"/bookings", token(t, "ops", auth.RoleAdmin), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []domain.Booking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 2)
}

func TestCreateBooking_RequiresToken(t *testing.T) {
	s := newTestServer(t, storage.NopCache{}, Options{})
	item := s.registerItem(t, 1)

	rec := s.book(t, "", item.ID, 1, 10, 12)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", decodeError(t, rec).Error.Kind)

	rec = s.book(t, "not-a-jwt", item.ID, 1, 10, 12)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateBooking_Validation(t *testing.T) {
	s := newTestServer(t, storage.NopCache{}, Options{})
	item := s.registerItem(t, 2)
	tok := token(t, "cust-1", auth.RoleCustomer)

	tests := []struct {
		name string
		body interface{}
		want int
	}{
		{"malformed json", `{"itemId":`, http.StatusBadRequest},
		{"unknown field", `{"itemId":"x","bogus":1}`, http.StatusBadRequest},
		{"missing item", map[string]interface{}{
			"start": s.at(10).Format(time.RFC3339), "end": s.at(12).Format(time.RFC3339), "quantity": 1,
		}, http.StatusBadRequest},
		{"zero quantity", map[string]interface{}{
			"itemId": item.ID, "start": s.at(10).Format(time.RFC3339), "end": s.at(12).Format(time.RFC3339), "quantity": 0,
		}, http.StatusBadRequest},
		{"end before start", map[string]interface{}{
			"itemId": item.ID, "start": s.at(12).Format(time.RFC3339), "end": s.at(10).Format(time.RFC3339), "quantity": 1,
		}, http.StatusBadRequest},
		{"unknown item", map[string]interface{}{
			"itemId": "missing", "start": s.at(10).Format(time.RFC3339), "end": s.at(12).Format(time.RFC3339), "quantity": 1,
		}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/bookings", tok, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestAvailabilityEndpoint(t *testing.T) {
	s := newTestServer(t, storage.NopCache{}, Options{})
	item := s.registerItem(t, 3)

	query := func(qty int) string {
		return fmt.Sprintf("/availability?itemId=%s&start=%s&end=%s&quantity=%d",
			item.ID, s.at(10).Format(time.RFC3339), s.at(12).Format(time.RFC3339), qty)
	}

	rec := s.do(t, http.MethodGet, query(3), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"available":true,"freeQuantity":3,"totalStock":3}`, rec.Body.String())

	require.Equal(t, http.StatusCreated, s.book(t, token(t, "c", auth.RoleCustomer), item.ID, 2, 11, 13).Code)

	rec = s.do(t, http.MethodGet, query(2), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"available":false,"freeQuantity":1,"totalStock":3}`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/availability?itemId="+item.ID+"&start=yesterday&end=today", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/availability?itemId=nope&start=%s&end=%s",
		s.at(10).Format(time.RFC3339), s.at(12).Format(time.RFC3339)), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPriceEndpoint(t *testing.T) {
	s := newTestServer(t, storage.NopCache{}, Options{})
	item := s.registerItem(t, 3)

	rec := s.do(t, http.MethodPost, "/price", "", map[string]interface{}{
		"itemId":   item.ID,
		"start":    s.at(10).Format(time.RFC3339),
		"end":      s.at(10).Add(30 * time.Minute).Format(time.RFC3339),
		"quantity": 2,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var price domain.PriceBreakdown
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &price))
	assert.Equal(t, domain.UnitHour, price.Unit)
	assert.Equal(t, int64(1), price.UnitCount)
	assert.Equal(t, "100", price.Subtotal.String())
}

func TestCancelBooking(t *testing.T) {
	s := newTestServer(t, storage.NopCache{}, Options{})
	item := s.registerItem(t, 2)
	owner := token(t, "cust-1", auth.RoleCustomer)

	rec := s.book(t, owner, item.ID, 1, 10, 12)
	require.Equal(t, http.StatusCreated, rec.Code)
	b := decodeBooking(t, rec)

	success := true
	rec = s.do(t, http.MethodPost, "/bookings/"+b.ID+"/payment", token(t, "psp", auth.RoleGateway),
		PaymentHTTPRequest{Success: &success, Reference: "pay-1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/bookings/"+b.ID+"/cancel", token(t, "cust-2", auth.RoleCustomer), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/bookings/"+b.ID+"/cancel", owner, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp CancelHTTPResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, domain.StatusCancelled, resp.Booking.Status)
	assert.Equal(t, domain.PaymentRefunded, resp.Booking.PaymentStatus)
	assert.True(t, resp.RefundAmount.Equal(resp.Booking.RefundAmount))
	assert.True(t, resp.RefundAmount.IsPositive())

	rec = s.do(t, http.MethodPost, "/bookings/"+b.ID+"/cancel", owner, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "booking already cancelled", decodeError(t, rec).Error.Message)
}

func TestUpdateStatus(t *testing.T) {
	s := newTestServer(t, storage.NopCache{}, Options{})
	item := s.registerItem(t, 2)
	customer := token(t, "cust-1", auth.RoleCustomer)
	admin := token(t, "ops", auth.RoleAdmin)

	b := decodeBooking(t, s.book(t, customer, item.ID, 1, 10, 12))
	path := "/bookings/" + b.ID + "/status"

	rec := s.do(t, http.MethodPatch, path, customer, StatusHTTPRequest{Status: "confirmed"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPatch, path, admin, StatusHTTPRequest{Status: "teleported"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPatch, path, admin, StatusHTTPRequest{Status: "returned"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec).Error.Message, "pending")

	rec = s.do(t, http.MethodPatch, path, admin, StatusHTTPRequest{Status: "confirmed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, domain.StatusConfirmed, decodeBooking(t, rec).Status)

	// A booking confirmed ahead of payment can still be paid.
	success := true
	rec = s.do(t, http.MethodPost, "/bookings/"+b.ID+"/payment", token(t, "psp", auth.RoleGateway),
		PaymentHTTPRequest{Success: &success, Reference: "pay-1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var paid PaymentHTTPResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &paid))
	assert.True(t, paid.Applied)
	assert.Equal(t, domain.StatusConfirmed, paid.Booking.Status)
	assert.Equal(t, domain.PaymentPaid, paid.Booking.PaymentStatus)
}

func TestGetBooking_HidesOtherCustomers(t *testing.T) {
	s := newTestServer(t, storage.NopCache{}, Options{})
	item := s.registerItem(t, 2)
	b := decodeBooking(t, s.book(t, token(t, "cust-1", auth.RoleCustomer), item.ID, 1, 10, 12))

	rec := s.do(t, http.MethodGet, "/bookings/"+b.ID, token(t, "cust-1", auth.RoleCustomer), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/bookings/"+b.ID, token(t, "cust-2", auth.RoleCustomer), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/bookings/"+b.ID, token(t, "ops", auth.RoleAdmin), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestApplyPayment_Idempotent(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	s := newTestServer(t, storage.NewRedisAdapter(client, storage.RedisOptions{}), Options{})

	item := s.registerItem(t, 1)
	b := decodeBooking(t, s.book(t, token(t, "cust-1", auth.RoleCustomer), item.ID, 1, 10, 12))
	gateway := token(t, "psp", auth.RoleGateway)
	success := true

	rec := s.do(t, http.MethodPost, "/bookings/"+b.ID+"/payment", token(t, "cust-1", auth.RoleCustomer),
		PaymentHTTPRequest{Success: &success, Reference: "pay-1"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/bookings/"+b.ID+"/payment", gateway, map[string]string{"reference": "pay-1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "success is required")

	for i, wantApplied := range []bool{true, false} {
		rec = s.do(t, http.MethodPost, "/bookings/"+b.ID+"/payment", gateway,
			PaymentHTTPRequest{Success: &success, Reference: "pay-1"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp PaymentHTTPResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, wantApplied, resp.Applied, "delivery %d", i+1)
		assert.Equal(t, domain.StatusConfirmed, resp.Booking.Status)
		assert.Equal(t, domain.PaymentPaid, resp.Booking.PaymentStatus)
	}
}

func TestRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	s := newTestServer(t, storage.NewRedisAdapter(client, storage.RedisOptions{}), Options{RateLimit: 2, RateWindow: time.Minute})

	item := s.registerItem(t, 10)
	tok := token(t, "cust-1", auth.RoleCustomer)

	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusCreated, s.book(t, tok, item.ID, 1, 10+i, 11+i).Code)
	}

	rec := s.book(t, tok, item.ID, 1, 20, 21)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, "rate_limited", decodeError(t, rec).Error.Kind)

	rec = s.book(t, token(t, "cust-2", auth.RoleCustomer), item.ID, 1, 20, 21)
	assert.Equal(t, http.StatusCreated, rec.Code)

	mr.Close()
	rec = s.book(t, tok, item.ID, 1, 22, 23)
	assert.Equal(t, http.StatusCreated, rec.Code, "limiter fails open without redis")
}

func TestRegisterItem_RequiresOwnerOrAdmin(t *testing.T) {
	s := newTestServer(t, storage.NopCache{}, Options{})

	rec := s.do(t, http.MethodPost, "/items", token(t, "cust-1", auth.RoleCustomer), map[string]interface{}{"name": "x"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/items", token(t, "ops", auth.RoleAdmin), map[string]interface{}{
		"name":            "Bike",
		"totalStock":      1,
		"pricingTiers":    []map[string]interface{}{{"unit": "hour", "rate": "5"}},
		"minRentalPeriod": "soon",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec).Error.Message, "minRentalPeriod")
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name        string
		production  bool
		err         error
		wantStatus  int
		wantKind    string
		wantMessage string
		wantCause   bool
	}{
		{"internal error in development", false, errors.New("db exploded"), http.StatusInternalServerError, "internal", "internal error", true},
		{"internal error in production", true, errors.New("db exploded"), http.StatusInternalServerError, "internal", "internal error", false},
		{"retryable", false, domain.Retryable(3, port.ErrWriteConflict), http.StatusServiceUnavailable, "retryable", "", true},
		{"retryable in production", true, domain.Retryable(3, port.ErrWriteConflict), http.StatusServiceUnavailable, "retryable", "", false},
		{"wrapped not found", false, fmt.Errorf("load: %w", domain.ErrBookingNotFound), http.StatusNotFound, "not_found", "booking not found", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHTTPHandler(Services{}, storage.NewMemoryAdapter(), storage.NopCache{}, Options{Production: tt.production})
			rec := httptest.NewRecorder()
			h.writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tt.wantKind, body.Error.Kind)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, body.Error.Message)
			}
			_, hasCause := body.Error.Details["cause"]
			assert.Equal(t, tt.wantCause, hasCause)
			if tt.wantStatus == http.StatusServiceUnavailable {
				assert.Equal(t, "1", rec.Header().Get("Retry-After"))
			}
		})
	}
}

func TestConcurrentBookingsNeverOversell(t *testing.T) {
	s := newTestServer(t, storage.NopCache{}, Options{})
	item := s.registerItem(t, 4)

	tokens := make([]string, 30)
	for i := range tokens {
		tokens[i] = token(t, fmt.Sprintf("cust-%d", i), auth.RoleCustomer)
	}

	var created atomic.Int32
	var wg sync.WaitGroup
	for i := range tokens {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			rec := s.book(t, tokens[n], item.ID, 1, 9+n%3, 13)
			switch rec.Code {
			case http.StatusCreated:
				created.Add(1)
			case http.StatusConflict:
			default:
				t.Errorf("unexpected status %d: %s", rec.Code, rec.Body.String())
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(4), created.Load())
	overlap, err := s.store.OverlapQuantity(t.Context(), item.ID, domain.NewTimeWindow(s.at(12), s.at(13)))
	require.NoError(t, err)
	assert.Equal(t, 4, overlap)
}

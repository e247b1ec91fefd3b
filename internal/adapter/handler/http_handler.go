package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/rl1809/rental-booking/internal/auth"
	"github.com/rl1809/rental-booking/internal/core/domain"
	"github.com/rl1809/rental-booking/internal/core/service"
	"github.com/rl1809/rental-booking/internal/metrics"
	"github.com/rl1809/rental-booking/internal/port"
)

const maxBodyBytes = 1 << 20

type Options struct {
	JWTSecret string

	// Production hides wrapped error causes from responses.
	Production bool

	// RateLimit is the number of booking attempts per subject per RateWindow.
	// Zero disables limiting.
	RateLimit  int
	RateWindow time.Duration
}

type Services struct {
	Catalog      *service.CatalogService
	Availability *service.AvailabilityService
	Quotes       *service.QuoteService
	Bookings     *service.BookingService
	Lifecycle    *service.LifecycleService
}

type HTTPHandler struct {
	catalog      *service.CatalogService
	availability *service.AvailabilityService
	quotes       *service.QuoteService
	bookings     *service.BookingService
	lifecycle    *service.LifecycleService

	store     port.BookingStore
	cache     port.CacheRepository
	validator *requestValidator
	opts      Options
}

func NewHTTPHandler(svc Services, store port.BookingStore, cache port.CacheRepository, opts Options) *HTTPHandler {
	if opts.RateWindow <= 0 {
		opts.RateWindow = time.Minute
	}
	return &HTTPHandler{
		catalog:      svc.Catalog,
		availability: svc.Availability,
		quotes:       svc.Quotes,
		bookings:     svc.Bookings,
		lifecycle:    svc.Lifecycle,
		store:        store,
		cache:        cache,
		validator:    newRequestValidator(),
		opts:         opts,
	}
}

// Routes builds the router. The result is wrapped for OpenTelemetry tracing.
func (h *HTTPHandler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Get("/health", h.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/availability", h.CheckAvailability)
	r.With(h.optionalAuth).Post("/price", h.Quote)

	r.Route("/items", func(r chi.Router) {
		r.With(h.authenticate, h.requireRole(auth.RoleAdmin, auth.RoleOwner)).Post("/", h.RegisterItem)
		r.With(h.authenticate, h.requireRole(auth.RoleAdmin, auth.RoleOwner)).Get("/{id}/bookings", h.ListItemBookings)
	})

	r.With(h.authenticate, h.requireRole(auth.RoleAdmin)).Post("/coupons", h.RegisterCoupon)

	r.Route("/bookings", func(r chi.Router) {
		r.Use(h.authenticate)
		r.With(h.rateLimit).Post("/", h.CreateBooking)
		r.Get("/{id}", h.GetBooking)
		r.Post("/{id}/cancel", h.CancelBooking)
		r.With(h.requireRole(auth.RoleAdmin)).Patch("/{id}/status", h.UpdateStatus)
		r.With(h.requireRole(auth.RoleAdmin, auth.RoleGateway)).Post("/{id}/payment", h.ApplyPayment)
	})

	return otelhttp.NewHandler(r, "rental-booking")
}

func (h *HTTPHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	window, err := parseWindow(q.Get("start"), q.Get("end"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	quantity := 1
	if raw := q.Get("quantity"); raw != "" {
		quantity, err = strconv.Atoi(raw)
		if err != nil {
			h.writeError(w, r, domain.Validation("quantity must be an integer, got %q", raw))
			return
		}
	}

	a, err := h.availability.CheckAvailability(r.Context(), q.Get("itemId"), window, quantity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *HTTPHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req QuoteHTTPRequest
	if !h.decode(w, r, &req) {
		return
	}

	var customerID string
	if claims, ok := claimsFrom(r.Context()); ok {
		customerID = claims.Subject
	}

	price, err := h.quotes.Quote(r.Context(), service.QuoteRequest{
		ItemID:     req.ItemID,
		CustomerID: customerID,
		Window:     req.Window(),
		Quantity:   req.Quantity,
		CouponCode: req.CouponCode,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, price)
}

func (h *HTTPHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req BookingHTTPRequest
	if !h.decode(w, r, &req) {
		return
	}
	claims, _ := claimsFrom(r.Context())

	booking, err := h.bookings.CreateBooking(r.Context(), service.BookingRequest{
		ItemID:     req.ItemID,
		CustomerID: claims.Subject,
		Window:     req.Window(),
		Quantity:   req.Quantity,
		CouponCode: req.CouponCode,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (h *HTTPHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := h.bookings.GetBooking(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if claims, _ := claimsFrom(r.Context()); claims.Role == auth.RoleCustomer && booking.CustomerID != claims.Subject {
		// Customers cannot probe for other customers' bookings.
		h.writeError(w, r, domain.ErrBookingNotFound)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *HTTPHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())
	customerID := claims.Subject
	if claims.Role == auth.RoleAdmin {
		customerID = ""
	}

	booking, err := h.lifecycle.Cancel(r.Context(), chi.URLParam(r, "id"), customerID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CancelHTTPResponse{RefundAmount: booking.RefundAmount, Booking: booking})
}

func (h *HTTPHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusHTTPRequest
	if !h.decode(w, r, &req) {
		return
	}
	to := domain.BookingStatus(req.Status)
	if !to.Valid() {
		h.writeError(w, r, domain.Validation("unknown status %q", req.Status))
		return
	}
	var at time.Time
	if req.At != nil {
		at = req.At.UTC()
	}

	booking, err := h.lifecycle.Transition(r.Context(), chi.URLParam(r, "id"), to, at)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *HTTPHandler) ApplyPayment(w http.ResponseWriter, r *http.Request) {
	var req PaymentHTTPRequest
	if !h.decode(w, r, &req) {
		return
	}

	booking, applied, err := h.lifecycle.ApplyPaymentResult(r.Context(), chi.URLParam(r, "id"), *req.Success, req.Reference)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, PaymentHTTPResponse{Applied: applied, Booking: booking})
}

func (h *HTTPHandler) ListItemBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.bookings.ListItemBookings(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if bookings == nil {
		bookings = []domain.Booking{}
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (h *HTTPHandler) RegisterItem(w http.ResponseWriter, r *http.Request) {
	var req ItemHTTPRequest
	if !h.decode(w, r, &req) {
		return
	}
	claims, _ := claimsFrom(r.Context())
	item, err := req.toItem(claims.Subject)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	created, err := h.catalog.RegisterItem(r.Context(), item)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *HTTPHandler) RegisterCoupon(w http.ResponseWriter, r *http.Request) {
	var coupon domain.Coupon
	if !h.decode(w, r, &coupon) {
		return
	}
	if err := h.catalog.RegisterCoupon(r.Context(), coupon); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, coupon)
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{"status": "ok", "store": "ok", "cache": "ok"}
	code := http.StatusOK
	if err := h.store.Ping(ctx); err != nil {
		status["status"], status["store"] = "unavailable", err.Error()
		code = http.StatusServiceUnavailable
	}
	// The cache never gates a booking, so losing it only degrades.
	if err := h.cache.Ping(ctx); err != nil {
		status["cache"] = err.Error()
		if code == http.StatusOK {
			status["status"] = "degraded"
		}
	}
	writeJSON(w, code, status)
}

// decode reads and validates a JSON body, writing the error response itself.
func (h *HTTPHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		h.writeError(w, r, domain.Validation("invalid request body: %v", err))
		return false
	}
	if err := h.validator.Validate(dst); err != nil {
		h.writeError(w, r, err)
		return false
	}
	return true
}

func parseWindow(start, end string) (domain.TimeWindow, error) {
	s, err := time.Parse(time.RFC3339, start)
	if err != nil {
		return domain.TimeWindow{}, domain.Validation("start must be RFC 3339, got %q", start)
	}
	e, err := time.Parse(time.RFC3339, end)
	if err != nil {
		return domain.TimeWindow{}, domain.Validation("end must be RFC 3339, got %q", end)
	}
	return domain.NewTimeWindow(s, e), nil
}

type errorBody struct {
	Kind    domain.ErrorKind       `json:"kind"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindRetryable:
		return http.StatusServiceUnavailable
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindRateLimited:
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

// writeError is the only place domain errors become HTTP responses.
func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := domain.KindOf(err)
	body := errorBody{Kind: kind, Message: err.Error()}
	details := map[string]interface{}{}

	var conflict *domain.ConflictError
	var derr *domain.Error
	switch {
	case errors.As(err, &conflict):
		details["freeQuantity"] = conflict.FreeQuantity
		details["requestedQuantity"] = conflict.RequestedQuantity
		details["totalStock"] = conflict.TotalStock
	case errors.As(err, &derr):
		body.Message = derr.Message
		if derr.Err != nil && !h.opts.Production {
			details["cause"] = derr.Err.Error()
		}
	default:
		body.Message = "internal error"
		if !h.opts.Production {
			details["cause"] = err.Error()
		}
		log.WithFields(log.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"request_id": middleware.GetReqID(r.Context()),
		}).WithError(err).Error("unhandled error")
	}

	switch kind {
	case domain.KindRetryable:
		w.Header().Set("Retry-After", "1")
	case domain.KindRateLimited:
		w.Header().Set("Retry-After", strconv.Itoa(int(h.opts.RateWindow.Seconds())))
	}
	if len(details) > 0 {
		body.Details = details
	}
	writeJSON(w, statusFor(kind), map[string]errorBody{"error": body})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

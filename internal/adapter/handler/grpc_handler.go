package handler

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/rl1809/rental-booking/internal/port"
)

// BookingServiceName is the service name reported by the gRPC health server
// alongside the overall ("") status.
const BookingServiceName = "rental.booking"

// GRPCHandler serves grpc.health.v1 backed by store reachability.
type GRPCHandler struct {
	health *health.Server
	store  port.BookingStore
}

func NewGRPCHandler(store port.BookingStore) *GRPCHandler {
	return &GRPCHandler{
		health: health.NewServer(),
		store:  store,
	}
}

func (h *GRPCHandler) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.health)
	reflection.Register(s)
}

// Check pings the store once and publishes the result.
func (h *GRPCHandler) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := h.store.Ping(ctx); err != nil {
		log.WithError(err).Warn("store ping failed, reporting NOT_SERVING")
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(BookingServiceName, status)
	return status
}

// Watch refreshes the health status until ctx is done.
func (h *GRPCHandler) Watch(ctx context.Context, interval time.Duration) {
	h.Check(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Check(ctx)
		}
	}
}

// Shutdown marks every service NOT_SERVING so clients drain before the server stops.
func (h *GRPCHandler) Shutdown() {
	h.health.Shutdown()
}

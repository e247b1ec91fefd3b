package resilience

import (
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/rl1809/rental-booking/internal/metrics"
)

// CircuitBreaker wraps gobreaker with metrics and structured logging.
type CircuitBreaker struct {
	cb     *gobreaker.CircuitBreaker
	name   string
	ignore func(err error) bool
}

type BreakerSettings struct {
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	// Ignore marks errors that are expected results rather than failures.
	Ignore func(err error) bool
}

func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests: 3,
		Interval:    15 * time.Second,
		Timeout:     30 * time.Second,
	}
}

func NewCircuitBreaker(name string, s BreakerSettings) *CircuitBreaker {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		IsSuccessful: func(err error) bool {
			return err == nil || (s.Ignore != nil && s.Ignore(err))
		},
		OnStateChange: func(cbName string, from gobreaker.State, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(cbName).Set(stateValue(to))
			log.WithFields(log.Fields{
				"circuit": cbName,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
		},
	})

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	return &CircuitBreaker{cb: cb, name: name, ignore: s.Ignore}
}

// Execute runs fn through the breaker. When the breaker is open fn is not called
// and ErrOpen is returned.
func (c *CircuitBreaker) Execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := c.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, ErrOpen
	}
	if err != nil && (c.ignore == nil || !c.ignore(err)) {
		metrics.CircuitBreakerFailures.WithLabelValues(c.name).Inc()
	}
	return result, err
}

func (c *CircuitBreaker) State() string {
	return c.cb.State().String()
}

var ErrOpen = errors.New("circuit breaker open")

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateOpen:
		return 1
	case gobreaker.StateHalfOpen:
		return 2
	default:
		return 0
	}
}

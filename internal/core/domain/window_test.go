package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hhmm string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", "2030-06-03 "+hhmm)
	if err != nil {
		panic(err)
	}
	return t
}

func TestTimeWindow_Overlaps(t *testing.T) {
	base := NewTimeWindow(at("10:00"), at("14:00"))

	tests := []struct {
		name  string
		other TimeWindow
		want  bool
	}{
		{"identical", NewTimeWindow(at("10:00"), at("14:00")), true},
		{"inside", NewTimeWindow(at("11:00"), at("12:00")), true},
		{"straddles start", NewTimeWindow(at("09:00"), at("10:01")), true},
		{"straddles end", NewTimeWindow(at("13:59"), at("18:00")), true},
		{"ends exactly at start", NewTimeWindow(at("08:00"), at("10:00")), false},
		{"starts exactly at end", NewTimeWindow(at("14:00"), at("18:00")), false},
		{"disjoint", NewTimeWindow(at("15:00"), at("16:00")), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Overlaps(tt.other))
			assert.Equal(t, tt.want, tt.other.Overlaps(base))
		})
	}
}

func TestTimeWindow_ValidateFuture(t *testing.T) {
	now := at("10:00")

	t.Run("zero length", func(t *testing.T) {
		err := NewTimeWindow(at("11:00"), at("11:00")).ValidateFuture(now)
		assert.True(t, errors.Is(err, ErrValidation))
	})

	t.Run("end before start", func(t *testing.T) {
		err := NewTimeWindow(at("12:00"), at("11:00")).ValidateFuture(now)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("within clock skew", func(t *testing.T) {
		err := NewTimeWindow(now.Add(-30*time.Second), at("11:00")).ValidateFuture(now)
		assert.NoError(t, err)
	})

	t.Run("beyond clock skew", func(t *testing.T) {
		err := NewTimeWindow(now.Add(-2*time.Minute), at("11:00")).ValidateFuture(now)
		require.Error(t, err)
		assert.Equal(t, KindValidation, KindOf(err))
	})
}

func TestValidateQuantity(t *testing.T) {
	assert.NoError(t, ValidateQuantity(1))
	assert.ErrorIs(t, ValidateQuantity(0), ErrValidation)
	assert.ErrorIs(t, ValidateQuantity(-3), ErrValidation)
}

func TestNewAvailability(t *testing.T) {
	a := NewAvailability(5, 5, 1)
	assert.False(t, a.Available)
	assert.Equal(t, 0, a.FreeQuantity)

	a = NewAvailability(5, 7, 1)
	assert.Equal(t, 0, a.FreeQuantity, "free quantity is floored at zero")

	a = NewAvailability(5, 2, 3)
	assert.True(t, a.Available)
	assert.False(t, a.ForQuantity(4).Available)

	assert.Equal(t, 3, AdvisoryQuantity(5, 2))
	assert.Equal(t, 0, AdvisoryQuantity(5, 9))
}

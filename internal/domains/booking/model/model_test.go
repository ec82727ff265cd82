package model_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"kodesha/internal/domains/booking/model"
)

func date(value string) time.Time {
	t, _ := time.Parse(time.DateOnly, value)

	return t
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                 string
		aIn, aOut, bIn, bOut string
		want                 bool
	}{
		{name: "shared night", aIn: "2025-06-10", aOut: "2025-06-13", bIn: "2025-06-12", bOut: "2025-06-15", want: true},
		{name: "checkout equals checkin", aIn: "2025-06-10", aOut: "2025-06-13", bIn: "2025-06-13", bOut: "2025-06-15", want: false},
		{name: "checkin equals checkout", aIn: "2025-06-13", aOut: "2025-06-15", bIn: "2025-06-10", bOut: "2025-06-13", want: false},
		{name: "contained", aIn: "2025-06-10", aOut: "2025-06-20", bIn: "2025-06-12", bOut: "2025-06-14", want: true},
		{name: "identical", aIn: "2025-06-10", aOut: "2025-06-13", bIn: "2025-06-10", bOut: "2025-06-13", want: true},
		{name: "disjoint", aIn: "2025-06-01", aOut: "2025-06-03", bIn: "2025-06-10", bOut: "2025-06-13", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := model.Overlaps(date(tt.aIn), date(tt.aOut), date(tt.bIn), date(tt.bOut))
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, model.Overlaps(date(tt.bIn), date(tt.bOut), date(tt.aIn), date(tt.aOut)))
		})
	}
}

func TestTotalPrice(t *testing.T) {
	nights := model.Nights(date("2025-06-10"), date("2025-06-13"))
	total := model.TotalPrice(nights, decimal.RequireFromString("100.00"))

	assert.Equal(t, 3, nights)
	assert.Equal(t, "300.00", total.StringFixed(2))

	odd := model.TotalPrice(3, decimal.RequireFromString("0.10"))
	assert.True(t, odd.Equal(decimal.RequireFromString("0.30")))
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, model.StatusPending.CanTransitionTo(model.StatusConfirmed))
	assert.True(t, model.StatusPending.CanTransitionTo(model.StatusCancelled))
	assert.True(t, model.StatusConfirmed.CanTransitionTo(model.StatusCompleted))
	assert.True(t, model.StatusConfirmed.CanTransitionTo(model.StatusCancelled))
	assert.False(t, model.StatusPending.CanTransitionTo(model.StatusCompleted))
	assert.False(t, model.StatusCancelled.CanTransitionTo(model.StatusConfirmed))
	assert.False(t, model.StatusCompleted.CanTransitionTo(model.StatusCancelled))
	assert.True(t, model.StatusCompleted.Terminal())
	assert.False(t, model.StatusCancelled.Occupying())
}

func TestCanCancel(t *testing.T) {
	today := date("2025-06-10")

	tests := []struct {
		name    string
		booking model.Booking
		want    bool
	}{
		{name: "future pending", booking: model.Booking{Status: model.StatusPending, CheckIn: date("2025-06-11")}, want: true},
		{name: "future confirmed", booking: model.Booking{Status: model.StatusConfirmed, CheckIn: date("2025-06-20")}, want: true},
		{name: "checks in today", booking: model.Booking{Status: model.StatusConfirmed, CheckIn: date("2025-06-10")}, want: false},
		{name: "already started", booking: model.Booking{Status: model.StatusConfirmed, CheckIn: date("2025-06-09")}, want: false},
		{name: "already cancelled", booking: model.Booking{Status: model.StatusCancelled, CheckIn: date("2025-06-20")}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.booking.CanCancel(today))
		})
	}
}

func TestCanComplete(t *testing.T) {
	today := date("2025-06-10")

	assert.True(t, model.Booking{Status: model.StatusConfirmed, CheckOut: date("2025-06-09")}.CanComplete(today))
	assert.False(t, model.Booking{Status: model.StatusConfirmed, CheckOut: date("2025-06-11")}.CanComplete(today))
	assert.False(t, model.Booking{Status: model.StatusConfirmed, CheckOut: date("2025-06-10")}.CanComplete(today))
	assert.False(t, model.Booking{Status: model.StatusPending, CheckOut: date("2025-06-01")}.CanComplete(today))
}

func TestNewReference(t *testing.T) {
	pattern := regexp.MustCompile(`^BK\d{8}$`)

	for range 50 {
		assert.Regexp(t, pattern, model.NewReference())
	}
}

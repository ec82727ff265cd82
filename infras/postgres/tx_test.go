package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"kodesha/infras/postgres"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		code       string
		constraint string
	}{
		{
			name:       "unique violation",
			err:        &pq.Error{Code: "23505", Constraint: "bookings_booking_reference_key"},
			code:       "23505",
			constraint: "bookings_booking_reference_key",
		},
		{
			name:       "wrapped exclusion violation",
			err:        fmt.Errorf("failed to insert data (booking): %w", &pq.Error{Code: "23P01", Constraint: "bookings_no_overlap"}),
			code:       "23P01",
			constraint: "bookings_no_overlap",
		},
		{
			name: "plain error",
			err:  errors.New("connection refused"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, postgres.ErrorCode(tt.err))
			assert.Equal(t, tt.constraint, postgres.ConstraintName(tt.err))
		})
	}
}

func TestTxFromContext_Empty(t *testing.T) {
	tx, ok := postgres.TxFromContext(context.Background())

	assert.False(t, ok)
	assert.Nil(t, tx)
}

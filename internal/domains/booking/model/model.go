package model

import (
	"encoding/binary"
	"fmt"
	"kodesha/shared/model"
	"kodesha/shared/timezone"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID              = "id"
	FieldReference       = "booking_reference"
	FieldPropertyID      = "property_id"
	FieldHostID          = "host_id"
	FieldGuestID         = "guest_id"
	FieldCheckIn         = "check_in"
	FieldCheckOut        = "check_out"
	FieldGuests          = "guests"
	FieldTotalPrice      = "total_price"
	FieldStatus          = "status"
	FieldSpecialRequests = "special_requests"

	ConstraintReference = "bookings_booking_reference_key"
	ConstraintNoOverlap = "bookings_no_overlap"

	referencePrefix = "BK"
	referenceSpace  = 100_000_000
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// OccupyingStatuses hold their dates against other bookings.
var OccupyingStatuses = []Status{StatusPending, StatusConfirmed}

var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCancelled, StatusCompleted},
}

func (s Status) Occupying() bool {
	return s == StatusPending || s == StatusConfirmed
}

func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}

	return false
}

type Booking struct {
	ID              string          `db:"id"`
	Reference       string          `db:"booking_reference"`
	PropertyID      string          `db:"property_id"`
	HostID          string          `db:"host_id"          table:"properties"`
	GuestID         string          `db:"guest_id"`
	CheckIn         time.Time       `db:"check_in"`
	CheckOut        time.Time       `db:"check_out"`
	Guests          int             `db:"guests"`
	TotalPrice      decimal.Decimal `db:"total_price"`
	Status          Status          `db:"status"`
	SpecialRequests string          `db:"special_requests"`
	model.Metadata
}

func (Booking) GetJoinQuery() string {
	return "JOIN properties ON properties.id = bookings.property_id"
}

func (b Booking) Nights() int {
	return Nights(b.CheckIn, b.CheckOut)
}

// CanCancel reports whether the stay can still be called off on the given day.
// Once check-in has arrived the booking is locked in.
func (b Booking) CanCancel(today time.Time) bool {
	return b.Status.Occupying() && b.CheckIn.After(today)
}

// CanComplete reports whether the sweeper may close the booking on the given day.
func (b Booking) CanComplete(today time.Time) bool {
	return b.Status == StatusConfirmed && b.CheckOut.Before(today)
}

func (b Booking) IsGuest(userID string) bool {
	return userID != "" && b.GuestID == userID
}

func (b Booking) IsHost(userID string) bool {
	return userID != "" && b.HostID == userID
}

// Overlaps is the half-open interval test: [aIn, aOut) and [bIn, bOut) share at least one night.
// A stay that checks out on the day another checks in does not overlap it.
func Overlaps(aIn, aOut, bIn, bOut time.Time) bool {
	return aIn.Before(bOut) && bIn.Before(aOut)
}

func Nights(checkIn, checkOut time.Time) int {
	return timezone.DaysBetween(checkIn, checkOut)
}

func TotalPrice(nights int, pricePerNight decimal.Decimal) decimal.Decimal {
	return pricePerNight.Mul(decimal.NewFromInt(int64(nights)))
}

// NewReference returns a booking reference such as BK04817263.
func NewReference() string {
	id := uuid.New()
	n := binary.BigEndian.Uint64(id[:8]) % referenceSpace

	return fmt.Sprintf("%s%08d", referencePrefix, n)
}

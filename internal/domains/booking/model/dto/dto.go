package dto

import (
	"kodesha/internal/domains/booking/model"
	"kodesha/shared"
	"kodesha/shared/constant"
	gDto "kodesha/shared/dto"
	gModel "kodesha/shared/model"
	"kodesha/shared/timezone"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Scope selects whose bookings a listing returns.
type Scope string

const (
	ScopeMine    Scope = "mine"
	ScopeHosting Scope = "hosting"
	ScopeAll     Scope = "all"
)

type CreateBookingRequest struct {
	PropertyID      string `json:"property_id"      validate:"required,uuid"`
	CheckIn         string `json:"check_in"         validate:"required,date"`
	CheckOut        string `json:"check_out"        validate:"required,date"`
	Guests          int    `json:"guests"           validate:"required,min=1"`
	SpecialRequests string `json:"special_requests" validate:"omitempty,max=1000"`
}

// Dates parses the requested stay. The request must have passed validation.
func (c *CreateBookingRequest) Dates() (checkIn, checkOut time.Time, err error) {
	return parseDates(c.CheckIn, c.CheckOut)
}

func (c *CreateBookingRequest) ToModel(user string, checkIn, checkOut time.Time, total decimal.Decimal) model.Booking {
	now := timezone.Now()

	return model.Booking{
		ID:              uuid.NewString(),
		Reference:       model.NewReference(),
		PropertyID:      c.PropertyID,
		GuestID:         user,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		Guests:          c.Guests,
		TotalPrice:      total,
		Status:          model.StatusPending,
		SpecialRequests: c.SpecialRequests,
		Metadata: gModel.Metadata{
			CreatedAt:  now,
			ModifiedAt: now,
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

type CancelBookingRequest struct {
	Confirm bool `json:"confirm"`
}

type AvailabilityRequest struct {
	PropertyID string `json:"property_id" validate:"required,uuid"`
	CheckIn    string `json:"check_in"    validate:"required,date"`
	CheckOut   string `json:"check_out"   validate:"required,date"`
}

func (a *AvailabilityRequest) Dates() (checkIn, checkOut time.Time, err error) {
	return parseDates(a.CheckIn, a.CheckOut)
}

type AvailabilityResponse struct {
	Available  bool            `json:"available"`
	Nights     int             `json:"nights"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

type BookingResponse struct {
	ID              string          `json:"id"`
	Reference       string          `json:"booking_reference"`
	PropertyID      string          `json:"property_id"`
	GuestID         string          `json:"guest_id"`
	CheckIn         string          `json:"check_in"`
	CheckOut        string          `json:"check_out"`
	Nights          int             `json:"nights"`
	Guests          int             `json:"guests"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	Status          string          `json:"status"`
	SpecialRequests string          `json:"special_requests,omitempty"`
	CanCancel       bool            `json:"can_cancel"`
	gDto.Metadata
}

func (r *BookingResponse) FromModel(model model.Booking) {
	r.ID = model.ID
	r.Reference = model.Reference
	r.PropertyID = model.PropertyID
	r.GuestID = model.GuestID
	r.CheckIn = model.CheckIn.Format(constant.DateOnlyFormat)
	r.CheckOut = model.CheckOut.Format(constant.DateOnlyFormat)
	r.Nights = model.Nights()
	r.Guests = model.Guests
	r.TotalPrice = model.TotalPrice
	r.Status = string(model.Status)
	r.SpecialRequests = model.SpecialRequests
	r.CanCancel = model.CanCancel(timezone.Today())
	r.Metadata.FromModel(model.Metadata)
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetBookingsResponse) FromModels(models []model.Booking, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		r.Bookings[i].FromModel(mod)
	}
}

type CompleteBookingsResponse struct {
	Completed int64 `json:"completed"`
}

func parseDates(rawCheckIn, rawCheckOut string) (checkIn, checkOut time.Time, err error) {
	checkIn, err = timezone.ParseDate(rawCheckIn)
	if err != nil {
		return checkIn, checkOut, err
	}

	checkOut, err = timezone.ParseDate(rawCheckOut)

	return checkIn, checkOut, err
}

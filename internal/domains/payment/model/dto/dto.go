package dto

import (
	"kodesha/internal/domains/payment/model"
	"kodesha/shared/constant"
	gDto "kodesha/shared/dto"
	gModel "kodesha/shared/model"
	"kodesha/shared/timezone"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EarningsAvailable   = "available"
	EarningsUnavailable = "unavailable"

	MessageProcessing = "payment is still processing"
)

type SelectMethodRequest struct {
	Method      string `json:"method"       validate:"required,oneof=card_gateway mtn_momo airtel_money"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,max=20"`
}

// NewPayment drafts the payment of a booking with the configured defaults.
func NewPayment(bookingID string, method model.Method, amount decimal.Decimal, currency, user string) model.Payment {
	now := timezone.Now()

	return model.Payment{
		ID:        uuid.NewString(),
		BookingID: bookingID,
		Method:    method,
		Amount:    amount,
		Currency:  currency,
		Status:    model.StatusPending,
		Metadata: gModel.Metadata{
			CreatedAt:  now,
			ModifiedAt: now,
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

type PaymentResponse struct {
	ID                string          `json:"id"`
	BookingID         string          `json:"booking_id"`
	BookingReference  string          `json:"booking_reference"`
	Method            string          `json:"method"`
	MethodLabel       string          `json:"method_label"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	Status            string          `json:"status"`
	PayerContact      string          `json:"payer_contact,omitempty"`
	ProviderReference string          `json:"provider_reference,omitempty"`
	TransactionID     string          `json:"transaction_id,omitempty"`
	PaidAt            string          `json:"paid_at,omitempty"`
	gDto.Metadata
}

func (r *PaymentResponse) FromModel(model model.Payment) {
	r.ID = model.ID
	r.BookingID = model.BookingID
	r.BookingReference = model.BookingReference
	r.Method = string(model.Method)
	r.MethodLabel = model.Method.Label()
	r.Amount = model.Amount
	r.Currency = model.Currency
	r.Status = string(model.Status)
	r.PayerContact = model.PayerContact
	r.ProviderReference = model.ProviderRef()
	r.TransactionID = model.TransactionID

	if model.PaidAt != nil {
		r.PaidAt = model.PaidAt.Format(constant.DateFormat)
	}

	r.Metadata.FromModel(model.Metadata)
}

type RequestPaymentResponse struct {
	ProviderReference string `json:"provider_reference"`
	Status            string `json:"status"`
	Method            string `json:"method"`
	ApproveURL        string `json:"approve_url,omitempty"`
}

type PaymentStatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

type EarningsResponse struct {
	Status  string          `json:"status"`
	Revenue []model.Revenue `json:"revenue,omitempty"`
}

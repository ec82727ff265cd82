package model

import (
	"fmt"
	"kodesha/shared/model"
	"time"

	"github.com/shopspring/decimal"
)

const (
	TableName  = "payments"
	EntityName = "payment"

	FieldID                = "id"
	FieldBookingID         = "booking_id"
	FieldMethod            = "method"
	FieldProviderPaymentID = "provider_payment_id"
	FieldAmount            = "amount"
	FieldCurrency          = "currency"
	FieldStatus            = "status"
	FieldPayerContact      = "payer_contact"
	FieldTransactionID     = "transaction_id"
	FieldProviderReference = "provider_reference"
	FieldPaidAt            = "paid_at"
)

// Method is the closed set of payment rails.
type Method string

const (
	MethodCardGateway Method = "card_gateway"
	MethodMTN         Method = "mtn_momo"
	MethodAirtel      Method = "airtel_money"
)

var Methods = []Method{MethodCardGateway, MethodMTN, MethodAirtel}

func ParseMethod(value string) (Method, error) {
	for _, method := range Methods {
		if string(method) == value {
			return method, nil
		}
	}

	return "", fmt.Errorf("unsupported payment method %q", value)
}

func (m Method) IsMobileMoney() bool {
	return m == MethodMTN || m == MethodAirtel
}

func (m Method) Label() string {
	switch m {
	case MethodCardGateway:
		return "Card"
	case MethodMTN:
		return "MTN Mobile Money"
	case MethodAirtel:
		return "Airtel Money"
	default:
		return string(m)
	}
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
	StatusRefunded  Status = "refunded"
)

// Settled payments never move again except completed → refunded.
func (s Status) Settled() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusRefunded
}

// Open payments may still switch method or be requested again.
func (s Status) Open() bool {
	return s == StatusPending || s == StatusFailed
}

type Payment struct {
	ID                string          `db:"id"`
	BookingID         string          `db:"booking_id"`
	Method            Method          `db:"method"`
	ProviderPaymentID *string         `db:"provider_payment_id"`
	Amount            decimal.Decimal `db:"amount"`
	Currency          string          `db:"currency"`
	Status            Status          `db:"status"`
	PayerContact      string          `db:"payer_contact"`
	TransactionID     string          `db:"transaction_id"`
	ProviderReference string          `db:"provider_reference"`
	PaidAt            *time.Time      `db:"paid_at"`

	BookingReference string          `db:"booking_reference" table:"bookings"`
	BookingStatus    string          `db:"booking_status"    table:"bookings"   column:"status"`
	BookingTotal     decimal.Decimal `db:"booking_total"     table:"bookings"   column:"total_price"`
	GuestID          string          `db:"guest_id"          table:"bookings"`
	HostID           string          `db:"host_id"           table:"properties"`
	model.Metadata
}

func (Payment) GetJoinQuery() string {
	return "JOIN bookings ON bookings.id = payments.booking_id JOIN properties ON properties.id = bookings.property_id"
}

func (p Payment) Requested() bool {
	return p.ProviderPaymentID != nil && *p.ProviderPaymentID != ""
}

func (p Payment) ProviderRef() string {
	if p.ProviderPaymentID == nil {
		return ""
	}

	return *p.ProviderPaymentID
}

func (p Payment) IsPayer(userID string) bool {
	return userID != "" && p.GuestID == userID
}

// Revenue is the completed payment volume of one currency.
type Revenue struct {
	Currency string          `db:"currency" json:"currency"`
	Total    decimal.Decimal `db:"total"    json:"total"`
}

package model

import (
	"kodesha/shared/model"

	"github.com/shopspring/decimal"
)

const (
	TableName  = "properties"
	EntityName = "property"

	FieldID            = "id"
	FieldHostID        = "host_id"
	FieldTitle         = "title"
	FieldPricePerNight = "price_per_night"
	FieldMaxGuests     = "max_guests"
	FieldActive        = "active"
)

// Property is the slice of a listing the booking workflow depends on.
type Property struct {
	ID            string          `db:"id"              json:"id"`
	HostID        string          `db:"host_id"         json:"host_id"`
	Title         string          `db:"title"           json:"title"`
	PricePerNight decimal.Decimal `db:"price_per_night" json:"price_per_night"`
	MaxGuests     int             `db:"max_guests"      json:"max_guests"`
	Active        bool            `db:"active"          json:"active"`
	model.Metadata
}

func (p Property) IsHost(userID string) bool {
	return userID != "" && p.HostID == userID
}

package dto

import (
	"kodesha/shared/constant"
	"kodesha/shared/model"
	"kodesha/shared/timezone"
	"time"
)

// Metadata is the audit block embedded in every resource response.
type Metadata struct {
	CreatedAt  string `json:"created_at"`
	ModifiedAt string `json:"modified_at,omitempty"`
	CreatedBy  string `json:"created_by,omitempty"`
	ModifiedBy string `json:"modified_by,omitempty"`
}

func (m *Metadata) FromModel(model model.Metadata) {
	m.CreatedAt = formatTimestamp(model.CreatedAt)
	m.ModifiedAt = formatTimestamp(model.ModifiedAt)
	m.CreatedBy = model.CreatedBy
	m.ModifiedBy = model.ModifiedBy
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return timezone.Format(t, constant.DateFormat)
}

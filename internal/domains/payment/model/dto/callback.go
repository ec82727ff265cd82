package dto

import (
	"encoding/json"
	"fmt"
	"kodesha/internal/domains/payment/model"
	"strings"
)

// CallbackNotification is the union of the notification bodies the rails post back.
// Only the reference is trusted; status is always re-read from the provider.
type CallbackNotification struct {
	// card gateway webhook
	Resource struct {
		ID                string `json:"id"`
		SupplementaryData struct {
			RelatedIDs struct {
				OrderID string `json:"order_id"`
			} `json:"related_ids"`
		} `json:"supplementary_data"`
	} `json:"resource"`

	// mtn_momo
	ReferenceID string `json:"referenceId"`

	// airtel_money
	Transaction struct {
		ID string `json:"id"`
	} `json:"transaction"`
}

// ParseCallback extracts the provider reference a notification refers to.
// fallback is used when the body does not carry one, e.g. the X-Reference-Id header.
func ParseCallback(method model.Method, body []byte, fallback string) (string, error) {
	var notification CallbackNotification

	if len(body) > 0 {
		if err := json.Unmarshal(body, &notification); err != nil {
			return "", fmt.Errorf("failed to decode callback body: %w", err)
		}
	}

	var reference string

	switch method {
	case model.MethodCardGateway:
		reference = notification.Resource.SupplementaryData.RelatedIDs.OrderID
		if reference == "" {
			reference = notification.Resource.ID
		}
	case model.MethodMTN:
		reference = notification.ReferenceID
	case model.MethodAirtel:
		reference = notification.Transaction.ID
	}

	if reference == "" {
		reference = fallback
	}

	return strings.TrimSpace(reference), nil
}

package provider

import (
	"context"
	"kodesha/infras/otel"
	"kodesha/internal/domains/payment/model"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"
)

const (
	cardTokenPath  = "/v1/oauth2/token"
	cardOrdersPath = "/v2/checkout/orders"

	cardIntentCapture = "CAPTURE"
	cardLinkApprove   = "approve"
	cardUserAction    = "PAY_NOW"
	cardNoShipping    = "NO_SHIPPING"

	headerRequestID = "PayPal-Request-Id"
)

type CardGatewayConfig struct {
	Config
	BrandName string
	ReturnURL string
	CancelURL string
}

type cardAmount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type cardPurchaseUnit struct {
	ReferenceID string     `json:"reference_id"`
	Description string     `json:"description,omitempty"`
	Amount      cardAmount `json:"amount"`
}

type cardApplicationContext struct {
	BrandName          string `json:"brand_name,omitempty"`
	ReturnURL          string `json:"return_url,omitempty"`
	CancelURL          string `json:"cancel_url,omitempty"`
	UserAction         string `json:"user_action"`
	ShippingPreference string `json:"shipping_preference"`
}

type cardOrderRequest struct {
	Intent             string                 `json:"intent"`
	PurchaseUnits      []cardPurchaseUnit     `json:"purchase_units"`
	ApplicationContext cardApplicationContext `json:"application_context"`
}

type cardLink struct {
	Href string `json:"href"`
	Rel  string `json:"rel"`
}

type cardCapture struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type cardOrder struct {
	ID     string     `json:"id"`
	Status string     `json:"status"`
	Links  []cardLink `json:"links"`
	Payer  struct {
		EmailAddress string `json:"email_address"`
	} `json:"payer"`
	PurchaseUnits []struct {
		Payments struct {
			Captures []cardCapture `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
}

func (o cardOrder) approveURL() string {
	for _, link := range o.Links {
		if link.Rel == cardLinkApprove {
			return link.Href
		}
	}

	return ""
}

func (o cardOrder) result() Result {
	res := Result{
		Status:        mapCardStatus(o.Status),
		TransactionID: o.ID,
		PayerContact:  o.Payer.EmailAddress,
	}

	for _, unit := range o.PurchaseUnits {
		for _, capture := range unit.Payments.Captures {
			res.TransactionID = capture.ID
		}
	}

	if res.Status == StatusFailed {
		res.Reason = o.Status
	}

	return res
}

func mapCardStatus(status string) Status {
	switch status {
	case "COMPLETED":
		return StatusSuccessful
	case "VOIDED", "DECLINED", "FAILED":
		return StatusFailed
	default:
		return StatusPending
	}
}

type cardGateway struct {
	cfg    CardGatewayConfig
	client *apiClient
}

// NewCardGateway creates the hosted-checkout card adapter: an order is created, approved by the payer and captured.
func NewCardGateway(cfg CardGatewayConfig, otel otel.Otel) Provider {
	httpClient := newOAuthClient(cfg.Config, cardTokenPath, oauth2.AuthStyleInHeader, nil)

	return &cardGateway{
		cfg:    cfg,
		client: newAPIClient(model.MethodCardGateway, cfg.Config, httpClient, otel),
	}
}

func (c *cardGateway) Method() model.Method {
	return model.MethodCardGateway
}

func (c *cardGateway) RequestPayment(ctx context.Context, req Request) (Response, error) {
	body := cardOrderRequest{
		Intent: cardIntentCapture,
		PurchaseUnits: []cardPurchaseUnit{{
			ReferenceID: req.Reference,
			Description: req.Note,
			Amount: cardAmount{
				CurrencyCode: req.Currency,
				Value:        req.Amount.StringFixed(2),
			},
		}},
		ApplicationContext: cardApplicationContext{
			BrandName:          c.cfg.BrandName,
			ReturnURL:          c.cfg.ReturnURL,
			CancelURL:          c.cfg.CancelURL,
			UserAction:         cardUserAction,
			ShippingPreference: cardNoShipping,
		},
	}

	var order cardOrder

	err := c.client.do(ctx, call{
		operation: "create_order",
		method:    http.MethodPost,
		path:      cardOrdersPath,
		headers:   map[string]string{headerRequestID: req.Reference},
		body:      body,
		expect:    []int{http.StatusOK, http.StatusCreated},
		out:       &order,
	})
	if err != nil {
		return Response{}, err
	}

	return Response{
		ProviderReference: order.ID,
		Status:            StatusPending,
		ApproveURL:        order.approveURL(),
	}, nil
}

func (c *cardGateway) CheckStatus(ctx context.Context, providerReference string) (Result, error) {
	var order cardOrder

	err := c.client.do(ctx, call{
		operation: "get_order",
		method:    http.MethodGet,
		path:      cardOrdersPath + "/" + url.PathEscape(providerReference),
		expect:    []int{http.StatusOK},
		out:       &order,
	})
	if err != nil {
		return Result{}, err
	}

	return order.result(), nil
}

func (c *cardGateway) Capture(ctx context.Context, providerReference string) (Result, error) {
	var order cardOrder

	err := c.client.do(ctx, call{
		operation: "capture_order",
		method:    http.MethodPost,
		path:      cardOrdersPath + "/" + url.PathEscape(providerReference) + "/capture",
		headers:   map[string]string{headerRequestID: providerReference + "-capture"},
		body:      struct{}{},
		expect:    []int{http.StatusOK, http.StatusCreated},
		out:       &order,
	})
	if err != nil {
		return Result{}, err
	}

	return order.result(), nil
}

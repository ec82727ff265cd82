package provider

import (
	"context"
	"kodesha/infras/otel"
	"kodesha/internal/domains/payment/model"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const (
	mtnTokenPath   = "/collection/token/"
	mtnRequestPath = "/collection/v1_0/requesttopay"

	headerSubscriptionKey   = "Ocp-Apim-Subscription-Key"
	headerTargetEnvironment = "X-Target-Environment"
	headerReferenceID       = "X-Reference-Id"
	headerCallbackURL       = "X-Callback-Url"

	mtnPartyMSISDN = "MSISDN"
)

type MTNConfig struct {
	Config
	SubscriptionKey string
	CallbackURL     string
}

type mtnParty struct {
	PartyIDType string `json:"partyIdType"`
	PartyID     string `json:"partyId"`
}

type mtnRequestToPay struct {
	Amount       string   `json:"amount"`
	Currency     string   `json:"currency"`
	ExternalID   string   `json:"externalId"`
	Payer        mtnParty `json:"payer"`
	PayerMessage string   `json:"payerMessage"`
	PayeeNote    string   `json:"payeeNote"`
}

type mtnStatus struct {
	Status                 string   `json:"status"`
	FinancialTransactionID string   `json:"financialTransactionId"`
	Reason                 string   `json:"reason"`
	Payer                  mtnParty `json:"payer"`
}

func mapMTNStatus(status string) Status {
	switch status {
	case "SUCCESSFUL":
		return StatusSuccessful
	case "FAILED", "REJECTED", "TIMEOUT", "EXPIRED":
		return StatusFailed
	default:
		return StatusPending
	}
}

type mtn struct {
	cfg    MTNConfig
	client *apiClient
}

// NewMTN creates the MTN MoMo collection adapter. Completion is only observable by polling.
func NewMTN(cfg MTNConfig, otel otel.Otel) Provider {
	headers := map[string]string{
		headerSubscriptionKey:   cfg.SubscriptionKey,
		headerTargetEnvironment: cfg.Environment,
	}

	httpClient := newOAuthClient(cfg.Config, mtnTokenPath, oauth2.AuthStyleInHeader, headers)

	return &mtn{
		cfg:    cfg,
		client: newAPIClient(model.MethodMTN, cfg.Config, httpClient, otel),
	}
}

func (m *mtn) Method() model.Method {
	return model.MethodMTN
}

func (m *mtn) RequestPayment(ctx context.Context, req Request) (Response, error) {
	referenceID := uuid.NewString()

	headers := map[string]string{headerReferenceID: referenceID}
	if m.cfg.CallbackURL != "" {
		headers[headerCallbackURL] = m.cfg.CallbackURL
	}

	err := m.client.do(ctx, call{
		operation: "request_to_pay",
		method:    http.MethodPost,
		path:      mtnRequestPath,
		headers:   headers,
		body: mtnRequestToPay{
			Amount:       req.Amount.StringFixed(0),
			Currency:     req.Currency,
			ExternalID:   req.Reference,
			Payer:        mtnParty{PartyIDType: mtnPartyMSISDN, PartyID: req.PayerContact},
			PayerMessage: req.Note,
			PayeeNote:    req.Reference,
		},
		expect: []int{http.StatusAccepted},
	})
	if err != nil {
		return Response{}, err
	}

	return Response{ProviderReference: referenceID, Status: StatusPending}, nil
}

func (m *mtn) CheckStatus(ctx context.Context, providerReference string) (Result, error) {
	var status mtnStatus

	err := m.client.do(ctx, call{
		operation: "request_to_pay_status",
		method:    http.MethodGet,
		path:      mtnRequestPath + "/" + url.PathEscape(providerReference),
		expect:    []int{http.StatusOK},
		out:       &status,
	})
	if err != nil {
		return Result{}, err
	}

	return Result{
		Status:        mapMTNStatus(status.Status),
		TransactionID: status.FinancialTransactionID,
		PayerContact:  status.Payer.PartyID,
		Reason:        status.Reason,
	}, nil
}

package provider

import (
	"context"
	"kodesha/infras/otel"
	"kodesha/internal/domains/payment/model"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
)

const (
	airtelTokenPath   = "/auth/oauth2/token"
	airtelPaymentPath = "/merchant/v1/payments/"
	airtelStatusPath  = "/standard/v1/payments/"

	headerCountry  = "X-Country"
	headerCurrency = "X-Currency"
)

type AirtelConfig struct {
	Config
	Country  string
	Currency string
}

type airtelPaymentRequest struct {
	Reference  string `json:"reference"`
	Subscriber struct {
		Country  string `json:"country"`
		Currency string `json:"currency"`
		MSISDN   string `json:"msisdn"`
	} `json:"subscriber"`
	Transaction struct {
		Amount   string `json:"amount"`
		Country  string `json:"country"`
		Currency string `json:"currency"`
		ID       string `json:"id"`
	} `json:"transaction"`
}

type airtelStatus struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
	ResultCode string `json:"result_code"`
}

type airtelPaymentResponse struct {
	Data struct {
		Transaction struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"transaction"`
	} `json:"data"`
	Status airtelStatus `json:"status"`
}

type airtelEnquiryResponse struct {
	Data struct {
		Transaction struct {
			ID            string `json:"id"`
			Status        string `json:"status"`
			Message       string `json:"message"`
			AirtelMoneyID string `json:"airtel_money_id"`
		} `json:"transaction"`
	} `json:"data"`
	Status airtelStatus `json:"status"`
}

func mapAirtelStatus(status string) Status {
	switch status {
	case "TS":
		return StatusSuccessful
	case "TF", "TE":
		return StatusFailed
	default:
		return StatusPending
	}
}

type airtel struct {
	cfg    AirtelConfig
	client *apiClient
}

// NewAirtel creates the Airtel Money collection adapter. The transaction id doubles as the provider reference.
func NewAirtel(cfg AirtelConfig, otel otel.Otel) Provider {
	headers := map[string]string{
		headerCountry:  cfg.Country,
		headerCurrency: cfg.Currency,
	}

	httpClient := newOAuthClient(cfg.Config, airtelTokenPath, oauth2.AuthStyleInParams, headers)

	return &airtel{
		cfg:    cfg,
		client: newAPIClient(model.MethodAirtel, cfg.Config, httpClient, otel),
	}
}

func (a *airtel) Method() model.Method {
	return model.MethodAirtel
}

func (a *airtel) RequestPayment(ctx context.Context, req Request) (Response, error) {
	var body airtelPaymentRequest

	body.Reference = req.Note
	body.Subscriber.Country = a.cfg.Country
	body.Subscriber.Currency = req.Currency
	body.Subscriber.MSISDN = req.PayerContact
	body.Transaction.Amount = req.Amount.StringFixed(0)
	body.Transaction.Country = a.cfg.Country
	body.Transaction.Currency = req.Currency
	body.Transaction.ID = req.Reference

	var resp airtelPaymentResponse

	err := a.client.do(ctx, call{
		operation: "payment",
		method:    http.MethodPost,
		path:      airtelPaymentPath,
		body:      body,
		expect:    []int{http.StatusOK, http.StatusCreated, http.StatusAccepted},
		out:       &resp,
	})
	if err != nil {
		return Response{}, err
	}

	if resp.Status.Code != "" && !resp.Status.Success {
		return Response{}, &Error{
			Provider:  model.MethodAirtel,
			Operation: "payment",
			Body:      resp.Status.Message,
			Err:       errRejected(resp.Status.ResultCode, resp.Status.Message),
		}
	}

	return Response{ProviderReference: req.Reference, Status: StatusPending}, nil
}

func (a *airtel) CheckStatus(ctx context.Context, providerReference string) (Result, error) {
	var resp airtelEnquiryResponse

	err := a.client.do(ctx, call{
		operation: "enquiry",
		method:    http.MethodGet,
		path:      airtelStatusPath + url.PathEscape(providerReference),
		expect:    []int{http.StatusOK},
		out:       &resp,
	})
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Status:        mapAirtelStatus(strings.ToUpper(resp.Data.Transaction.Status)),
		TransactionID: resp.Data.Transaction.AirtelMoneyID,
	}

	if res.Status == StatusFailed {
		res.Reason = resp.Data.Transaction.Message
	}

	return res, nil
}

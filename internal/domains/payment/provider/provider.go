package provider

import (
	"context"
	"errors"
	"fmt"
	"kodesha/config"
	"kodesha/internal/domains/payment/model"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the provider-neutral outcome of a payment attempt.
type Status string

const (
	StatusSuccessful Status = "SUCCESSFUL"
	StatusFailed     Status = "FAILED"
	StatusPending    Status = "PENDING"
)

const (
	EnvironmentSandbox = "sandbox"
	EnvironmentLive    = "live"
)

var ErrUnsupportedMethod = errors.New("no provider registered for payment method")

type Request struct {
	Amount       decimal.Decimal
	Currency     string
	PayerContact string
	Reference    string
	Note         string
}

type Response struct {
	ProviderReference string
	Status            Status
	ApproveURL        string
}

type Result struct {
	Status        Status
	TransactionID string
	PayerContact  string
	Reason        string
}

// Provider is one payment rail. Request-to-pay rails report completion only through CheckStatus.
type Provider interface {
	Method() model.Method
	RequestPayment(ctx context.Context, req Request) (Response, error)
	CheckStatus(ctx context.Context, providerReference string) (Result, error)
}

// Capturer is implemented by rails that finalize an approved order with a second call.
type Capturer interface {
	Capture(ctx context.Context, providerReference string) (Result, error)
}

// Config carries the credentials of one rail. It is built explicitly and injected per adapter.
type Config struct {
	APIKey      string
	APISecret   string
	BaseURL     string
	Environment string
	MaxRetry    uint
	Timeout     time.Duration
}

func ConfigFrom(p config.Provider) Config {
	environment := p.Environment
	if environment != EnvironmentLive {
		environment = EnvironmentSandbox
	}

	maxRetry := p.MaxRetry
	if maxRetry == 0 {
		maxRetry = 1
	}

	timeout := time.Duration(p.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return Config{
		APIKey:      p.APIKey,
		APISecret:   p.APISecret,
		BaseURL:     p.BaseURL,
		Environment: environment,
		MaxRetry:    maxRetry,
		Timeout:     timeout,
	}
}

// Error is returned when a provider cannot be reached or answers unexpectedly.
type Error struct {
	Provider   model.Method
	Operation  string
	StatusCode int
	Body       string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Provider, e.Operation, e.StatusCode, e.Body)
	}

	return fmt.Sprintf("%s %s: %v", e.Provider, e.Operation, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// InvalidInputError rejects payer details before any provider call is made.
type InvalidInputError struct {
	Field   string
	Message string
}

func (e *InvalidInputError) Error() string {
	return e.Message
}

type Registry struct {
	providers map[model.Method]Provider
}

func NewRegistry(providers ...Provider) *Registry {
	registry := &Registry{providers: make(map[model.Method]Provider, len(providers))}

	for _, p := range providers {
		registry.providers[p.Method()] = p
	}

	return registry
}

func (r *Registry) Get(method model.Method) (Provider, error) {
	p, ok := r.providers[method]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMethod, method)
	}

	return p, nil
}

func errRejected(code, message string) error {
	return fmt.Errorf("rejected with code %s: %s", code, message)
}

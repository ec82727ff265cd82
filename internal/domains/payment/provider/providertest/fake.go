// Package providertest offers a scripted payment provider for tests.
package providertest

import (
	"context"
	"kodesha/internal/domains/payment/model"
	"kodesha/internal/domains/payment/provider"
	"sync"
)

// Fake replays queued results in order; the last one repeats once the queue drains.
type Fake struct {
	PaymentMethod model.Method
	Response      provider.Response
	RequestErr    error
	StatusErr     error

	mu       sync.Mutex
	results  []provider.Result
	requests []provider.Request
	checks   []string
}

func New(method model.Method, results ...provider.Result) *Fake {
	return &Fake{
		PaymentMethod: method,
		Response:      provider.Response{ProviderReference: "ref-" + string(method), Status: provider.StatusPending},
		results:       results,
	}
}

func (f *Fake) Method() model.Method {
	return f.PaymentMethod
}

func (f *Fake) RequestPayment(_ context.Context, req provider.Request) (provider.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, req)

	if f.RequestErr != nil {
		return provider.Response{}, f.RequestErr
	}

	return f.Response, nil
}

func (f *Fake) CheckStatus(_ context.Context, providerReference string) (provider.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.checks = append(f.checks, providerReference)

	if f.StatusErr != nil {
		return provider.Result{}, f.StatusErr
	}

	return f.next(), nil
}

func (f *Fake) next() provider.Result {
	if len(f.results) == 0 {
		return provider.Result{Status: provider.StatusPending}
	}

	res := f.results[0]
	if len(f.results) > 1 {
		f.results = f.results[1:]
	}

	return res
}

func (f *Fake) Requests() []provider.Request {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]provider.Request(nil), f.requests...)
}

func (f *Fake) Checks() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.checks...)
}

// Capturing is a Fake for rails that need an explicit capture.
type Capturing struct {
	*Fake
	CaptureErr error
	captures   []string
}

func NewCapturing(method model.Method, results ...provider.Result) *Capturing {
	return &Capturing{Fake: New(method, results...)}
}

func (c *Capturing) Capture(_ context.Context, providerReference string) (provider.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.captures = append(c.captures, providerReference)

	if c.CaptureErr != nil {
		return provider.Result{}, c.CaptureErr
	}

	return c.next(), nil
}

func (c *Capturing) Captures() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]string(nil), c.captures...)
}

package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"kodesha/infras/otel"
	"kodesha/internal/domains/payment/model"
	"kodesha/shared/constant"
	"kodesha/shared/metrics"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	resultOK    = "ok"
	resultError = "error"

	maxErrorBody = 512
)

// headerTransport stamps static headers on every outgoing request, token calls included.
type headerTransport struct {
	headers map[string]string
	base    http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())

	for key, value := range t.headers {
		req.Header.Set(key, value)
	}

	return t.base.RoundTrip(req)
}

// newOAuthClient returns an HTTP client that fetches and caches a client-credentials token.
func newOAuthClient(cfg Config, tokenPath string, style oauth2.AuthStyle, headers map[string]string) *http.Client {
	base := &http.Client{
		Transport: &headerTransport{headers: headers, base: http.DefaultTransport},
		Timeout:   cfg.Timeout,
	}

	cc := clientcredentials.Config{
		ClientID:     cfg.APIKey,
		ClientSecret: cfg.APISecret,
		TokenURL:     strings.TrimRight(cfg.BaseURL, "/") + tokenPath,
		AuthStyle:    style,
	}

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)

	httpClient := cc.Client(ctx)
	httpClient.Timeout = cfg.Timeout

	return httpClient
}

type call struct {
	operation string
	method    string
	path      string
	headers   map[string]string
	body      any
	expect    []int
	out       any
}

// apiClient performs JSON calls against one provider with bounded retries.
type apiClient struct {
	provider model.Method
	baseURL  string
	http     *http.Client
	maxRetry uint
	otel     otel.Otel
}

func newAPIClient(provider model.Method, cfg Config, httpClient *http.Client, otel otel.Otel) *apiClient {
	return &apiClient{
		provider: provider,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		http:     httpClient,
		maxRetry: cfg.MaxRetry,
		otel:     otel,
	}
}

func (c *apiClient) do(ctx context.Context, req call) (err error) {
	ctx, scope := c.otel.NewScope(ctx, constant.OtelExternalScopeName,
		constant.OtelExternalScopeName+"."+string(c.provider)+"."+req.operation)
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	var payload []byte
	if req.body != nil {
		payload, err = json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", req.operation, err)
		}
	}

	start := time.Now()

	_, err = backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, c.attempt(ctx, req, payload)
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(c.maxRetry))

	result := resultOK
	if err != nil {
		result = resultError
	}

	metrics.ObserveProviderCall(string(c.provider), req.operation, result, time.Since(start).Seconds())

	if err != nil {
		log.Error().Err(err).Str("provider", string(c.provider)).Str("operation", req.operation).Msg("provider call failed")

		var provErr *Error
		if errors.As(err, &provErr) {
			return provErr
		}

		return &Error{Provider: c.provider, Operation: req.operation, Err: err}
	}

	return nil
}

func (c *apiClient) attempt(ctx context.Context, req call, payload []byte) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, body)
	if err != nil {
		return backoff.Permanent(err)
	}

	if payload != nil {
		httpReq.Header.Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)
	}

	httpReq.Header.Set("Accept", constant.ContentTypeJSON)

	for key, value := range req.headers {
		httpReq.Header.Set(key, value)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil && retrieveErr.Response.StatusCode < http.StatusInternalServerError {
			return backoff.Permanent(err)
		}

		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if !slices.Contains(req.expect, resp.StatusCode) {
		provErr := &Error{
			Provider:   c.provider,
			Operation:  req.operation,
			StatusCode: resp.StatusCode,
			Body:       truncate(string(raw), maxErrorBody),
		}

		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			return provErr
		}

		return backoff.Permanent(provErr)
	}

	if req.out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	if err := json.Unmarshal(raw, req.out); err != nil {
		return backoff.Permanent(fmt.Errorf("failed to decode %s response: %w", req.operation, err))
	}

	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n]
}

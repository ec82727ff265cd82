package provider

import (
	"kodesha/config"
	"kodesha/infras/otel"

	"github.com/rs/zerolog/log"
)

// FromConfig builds the registry of every rail that has an endpoint configured.
func FromConfig(cfg *config.Config, otel otel.Otel) *Registry {
	rails := cfg.Payment.Providers
	providers := make([]Provider, 0, 3)

	if rails.CardGateway.BaseURL != "" {
		providers = append(providers, NewCardGateway(CardGatewayConfig{
			Config:    ConfigFrom(rails.CardGateway.Provider),
			BrandName: rails.CardGateway.BrandName,
			ReturnURL: rails.CardGateway.ReturnURL,
			CancelURL: rails.CardGateway.CancelURL,
		}, otel))
	}

	if rails.MTN.BaseURL != "" {
		providers = append(providers, NewMTN(MTNConfig{
			Config:          ConfigFrom(rails.MTN.Provider),
			SubscriptionKey: rails.MTN.SubscriptionKey,
			CallbackURL:     rails.MTN.CallbackURL,
		}, otel))
	}

	if rails.Airtel.BaseURL != "" {
		providers = append(providers, NewAirtel(AirtelConfig{
			Config:   ConfigFrom(rails.Airtel.Provider),
			Country:  rails.Airtel.Country,
			Currency: rails.Airtel.Currency,
		}, otel))
	}

	registry := NewRegistry(providers...)

	for _, p := range providers {
		log.Info().Str("method", string(p.Method())).Msg("payment provider enabled")
	}

	if len(providers) == 0 {
		log.Warn().Msg("no payment provider configured")
	}

	return registry
}

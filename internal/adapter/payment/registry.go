package payment

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/polkiloo/youwow/internal/config"
)

// Registry holds the providers configured at startup.
type Registry struct {
	active    Provider
	providers map[string]Provider
}

// NewRegistry builds every configured provider. Missing credentials for the
// active provider are fatal; other providers are registered only when their
// credentials are present.
func NewRegistry(cfg config.PaymentConfig, appURL string, client *http.Client, logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}

	builders := map[string]func() (Provider, error){
		ProviderOnePlat: func() (Provider, error) {
			return NewOnePlat(OnePlatConfig{ShopID: cfg.OnePlatShopID, Secret: cfg.OnePlatSecret}, client, logger)
		},
		ProviderFreeKassa: func() (Provider, error) {
			return NewFreeKassa(FreeKassaConfig{
				MerchantID:  cfg.FreeKassaMerchantID,
				SecretWord1: cfg.FreeKassaSecretWord1,
				SecretWord2: cfg.FreeKassaSecretWord2,
				APIKey:      cfg.FreeKassaAPIKey,
			}, client, logger)
		},
		ProviderYooKassa: func() (Provider, error) {
			return NewYooKassa(YooKassaConfig{
				ShopID:    cfg.YooKassaShopID,
				SecretKey: cfg.YooKassaSecretKey,
				ReturnURL: appURL + "/payment/success",
			}, client, logger)
		},
	}

	if _, ok := builders[cfg.Provider]; !ok {
		return nil, &ProviderError{Provider: cfg.Provider, Op: "configure", Err: ErrUnknownProvider}
	}

	r := &Registry{providers: make(map[string]Provider, len(builders))}
	for name, build := range builders {
		provider, err := build()
		if err != nil {
			if name == cfg.Provider {
				return nil, err
			}
			if errors.Is(err, ErrConfiguration) {
				logger.Debug("payment provider not configured", slog.String("provider", name))
				continue
			}
			return nil, err
		}
		r.providers[name] = provider
	}
	r.active = r.providers[cfg.Provider]

	logger.Info("payment providers ready",
		slog.String("active", cfg.Provider),
		slog.Int("registered", len(r.providers)),
	)
	return r, nil
}

// NewStaticRegistry wraps already constructed providers; the first is active.
func NewStaticRegistry(active Provider, others ...Provider) *Registry {
	r := &Registry{active: active, providers: map[string]Provider{active.Name(): active}}
	for _, p := range others {
		r.providers[p.Name()] = p
	}
	return r
}

// Active returns the provider used for new payments.
func (r *Registry) Active() Provider {
	return r.active
}

// Get returns a registered provider by name.
func (r *Registry) Get(name string) (Provider, bool) {
	p, ok := r.providers[name]
	return p, ok
}

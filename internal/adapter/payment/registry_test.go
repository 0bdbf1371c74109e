package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polkiloo/youwow/internal/config"
)

func TestNewRegistryActiveProviderNeedsCredentials(t *testing.T) {
	_, err := NewRegistry(config.PaymentConfig{Provider: ProviderOnePlat}, "http://app", nil, nil)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestNewRegistryUnknownProvider(t *testing.T) {
	_, err := NewRegistry(config.PaymentConfig{Provider: "paypal"}, "http://app", nil, nil)
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestNewRegistrySkipsUnconfiguredProviders(t *testing.T) {
	r, err := NewRegistry(config.PaymentConfig{
		Provider:             ProviderFreeKassa,
		FreeKassaMerchantID:  "1",
		FreeKassaSecretWord1: "a",
		FreeKassaSecretWord2: "b",
		OnePlatShopID:        "2",
		OnePlatSecret:        "c",
	}, "http://app", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, ProviderFreeKassa, r.Active().Name())
	_, ok := r.Get(ProviderOnePlat)
	assert.True(t, ok)
	_, ok = r.Get(ProviderYooKassa)
	assert.False(t, ok)
}

func TestNewStaticRegistry(t *testing.T) {
	op := newTestOnePlat(t, "")
	fk := newTestFreeKassa(t, FreeKassaConfig{})

	r := NewStaticRegistry(op, fk)

	assert.Same(t, op, r.Active())
	got, ok := r.Get(ProviderFreeKassa)
	assert.True(t, ok)
	assert.Same(t, fk, got)
}

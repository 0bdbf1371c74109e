package payment

import (
	"context"
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polkiloo/youwow/internal/domain/model"
)

const (
	onePlatShop   = "42"
	onePlatSecret = "top-secret"
	// Body fields in delivery order, without signatures.
	onePlatFields = `"payment_id":"77","guid":"g-1","merchant_id":"order-1","user_id":"u@example.com","status":1,"amount":590,"amount_to_shop":560,"amount_to_pay":600,"expired":"2026-01-01 10:00:00"`
)

func onePlatSignature() string {
	mac := hmac.New(sha256.New, []byte(onePlatSecret))
	mac.Write([]byte("{" + onePlatFields + "}"))
	return hex.EncodeToString(mac.Sum(nil))
}

func onePlatSignatureV2() string {
	sum := md5.Sum([]byte("order-1" + "590" + onePlatShop + onePlatSecret))
	return hex.EncodeToString(sum[:])
}

func onePlatBody(sig, sigV2 string) []byte {
	return []byte(`{"signature":"` + sig + `","signature_v2":"` + sigV2 + `",` + onePlatFields + `}`)
}

func newTestOnePlat(t *testing.T, baseURL string) *OnePlat {
	t.Helper()
	p, err := NewOnePlat(OnePlatConfig{ShopID: onePlatShop, Secret: onePlatSecret, BaseURL: baseURL}, nil, nil)
	require.NoError(t, err)
	return p
}

func TestNewOnePlatRequiresCredentials(t *testing.T) {
	_, err := NewOnePlat(OnePlatConfig{ShopID: "1"}, nil, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfiguration)
	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, ProviderOnePlat, perr.Provider)
	assert.Contains(t, err.Error(), "ONEPLAT_SECRET")
}

func TestOnePlatVerifyWebhookSignatureOR(t *testing.T) {
	p := newTestOnePlat(t, "")

	cases := []struct {
		name  string
		sig   string
		sigV2 string
		ok    bool
	}{
		{name: "both valid", sig: onePlatSignature(), sigV2: onePlatSignatureV2(), ok: true},
		{name: "only hmac valid", sig: onePlatSignature(), sigV2: "deadbeef", ok: true},
		{name: "only md5 valid", sig: "deadbeef", sigV2: onePlatSignatureV2(), ok: true},
		{name: "only md5 present", sig: "", sigV2: onePlatSignatureV2(), ok: true},
		{name: "both wrong", sig: "deadbeef", sigV2: "cafebabe", ok: false},
		{name: "both empty", sig: "", sigV2: "", ok: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			event, err := p.VerifyWebhook(context.Background(), WebhookRequest{Body: onePlatBody(tc.sig, tc.sigV2)})
			if !tc.ok {
				assert.ErrorIs(t, err, ErrInvalidSignature)
				assert.Nil(t, event)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "order-1", event.OrderID)
			assert.Equal(t, "g-1", event.PaymentID)
			assert.Equal(t, model.PaymentStatusPaid, event.Status)
			assert.Equal(t, 590.0, event.Amount)
			assert.Equal(t, 560.0, event.AmountToShop)
			assert.Equal(t, "u@example.com", event.UserID)
			assert.Equal(t, ProviderOnePlat, event.Provider)
		})
	}
}

func TestOnePlatVerifyWebhookWrongSecret(t *testing.T) {
	p, err := NewOnePlat(OnePlatConfig{ShopID: onePlatShop, Secret: "other"}, nil, nil)
	require.NoError(t, err)

	_, err = p.VerifyWebhook(context.Background(), WebhookRequest{Body: onePlatBody(onePlatSignature(), onePlatSignatureV2())})
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestOnePlatVerifyWebhookRejections(t *testing.T) {
	p := newTestOnePlat(t, "")

	_, err := p.VerifyWebhook(context.Background(), WebhookRequest{Body: []byte(`"text"`)})
	assert.ErrorIs(t, err, ErrInvalidWebhookType)

	_, err = p.VerifyWebhook(context.Background(), WebhookRequest{Body: []byte(`{"signature":"x","amount":1}`)})
	assert.ErrorIs(t, err, ErrMissingParams)

	foreign := []byte(`{"signature":"x","merchant_id":"order-1","shop_id":"999","amount":590}`)
	_, err = p.VerifyWebhook(context.Background(), WebhookRequest{Body: foreign})
	assert.ErrorIs(t, err, ErrInvalidMerchant)
}

func TestOnePlatVerifyWebhookShopHeader(t *testing.T) {
	p := newTestOnePlat(t, "")
	body := onePlatBody(onePlatSignature(), onePlatSignatureV2())

	_, err := p.VerifyWebhook(context.Background(), WebhookRequest{Body: body, Header: http.Header{"X-Shop": {"999"}}})
	assert.ErrorIs(t, err, ErrInvalidMerchant)

	event, err := p.VerifyWebhook(context.Background(), WebhookRequest{Body: body, Header: http.Header{"X-Shop": {onePlatShop}}})
	require.NoError(t, err)
	assert.Equal(t, "order-1", event.OrderID)

	withShop := []byte(`{"signature":"x","merchant_id":"order-1","shop":"999","amount":590}`)
	_, err = p.VerifyWebhook(context.Background(), WebhookRequest{Body: withShop})
	assert.ErrorIs(t, err, ErrInvalidMerchant)
}

func TestOnePlatCreatePayment(t *testing.T) {
	var got onePlatCreateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/merchant/order/create/by-api", r.URL.Path)
		assert.Equal(t, onePlatShop, r.Header.Get("x-shop"))
		assert.Equal(t, onePlatSecret, r.Header.Get("x-secret"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"success":true,"guid":"g-9","url":"https://pay.example/g-9","payment":{"id":9}}`))
	}))
	defer srv.Close()

	p := newTestOnePlat(t, srv.URL)

	res, err := p.CreatePayment(context.Background(), CreatePaymentRequest{OrderID: "order-1", UserID: "u", Amount: 590, Email: "u@example.com"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "g-9", res.PaymentID)
	assert.Equal(t, "https://pay.example/g-9", res.PaymentURL)
	assert.Empty(t, res.ConfirmationToken)
	assert.Equal(t, "order-1", got.MerchantOrderID)
	assert.Equal(t, int64(590), got.Amount)
	assert.Equal(t, "card", got.Method)

	res, err = p.CreatePayment(context.Background(), CreatePaymentRequest{OrderID: "order-1", Amount: 590, UseWidget: true})
	require.NoError(t, err)
	assert.Equal(t, "g-9", res.ConfirmationToken)
	assert.Empty(t, res.PaymentURL)
}

func TestOnePlatCreatePaymentRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false}`))
	}))
	defer srv.Close()

	_, err := newTestOnePlat(t, srv.URL).CreatePayment(context.Background(), CreatePaymentRequest{OrderID: "o", Amount: 1})
	assert.ErrorIs(t, err, ErrRejected)
}

func TestOnePlatGetPaymentStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/merchant/order/info/g-1/by-api", r.URL.Path)
		_, _ = w.Write([]byte(`{"success":true,"payment":{"status":2}}`))
	}))
	defer srv.Close()

	res, err := newTestOnePlat(t, srv.URL).GetPaymentStatus(context.Background(), "g-1")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPaid, res.Status)
	assert.True(t, res.Paid)
}

func TestOnePlatGetPaymentStatusServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestOnePlat(t, srv.URL).GetPaymentStatus(context.Background(), "g-1")
	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "status", perr.Op)
}

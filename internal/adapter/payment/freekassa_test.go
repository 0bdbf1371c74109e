package payment

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polkiloo/youwow/internal/domain/model"
)

const (
	fkMerchant = "777"
	fkWord1    = "word-one"
	fkWord2    = "word-two"
)

func fkSign(merchant, amount, secret, order string) string {
	sum := md5.Sum([]byte(merchant + ":" + amount + ":" + secret + ":" + order))
	return hex.EncodeToString(sum[:])
}

func fkForm(sign string) url.Values {
	return url.Values{
		"MERCHANT_ID":       {fkMerchant},
		"AMOUNT":            {"590"},
		"intid":             {"123456"},
		"MERCHANT_ORDER_ID": {"order-1"},
		"P_EMAIL":           {"u@example.com"},
		"CUR_ID":            {"36"},
		"SIGN":              {sign},
		"commission":        {"20.5"},
		"us_user":           {"u@example.com"},
	}
}

func newTestFreeKassa(t *testing.T, cfg FreeKassaConfig) *FreeKassa {
	t.Helper()
	if cfg.MerchantID == "" {
		cfg.MerchantID = fkMerchant
	}
	cfg.SecretWord1 = fkWord1
	cfg.SecretWord2 = fkWord2
	p, err := NewFreeKassa(cfg, nil, nil)
	require.NoError(t, err)
	return p
}

func TestNewFreeKassaRequiresCredentials(t *testing.T) {
	_, err := NewFreeKassa(FreeKassaConfig{MerchantID: fkMerchant}, nil, nil)
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Contains(t, err.Error(), "FK_SECRET_WORD_2")
}

func TestFreeKassaVerifyWebhookAccepts(t *testing.T) {
	p := newTestFreeKassa(t, FreeKassaConfig{})

	event, err := p.VerifyWebhook(context.Background(), WebhookRequest{
		Form:     fkForm(fkSign(fkMerchant, "590", fkWord2, "order-1")),
		RemoteIP: "168.119.157.136",
	})

	require.NoError(t, err)
	assert.Equal(t, "order-1", event.OrderID)
	assert.Equal(t, "123456", event.PaymentID)
	assert.Equal(t, model.PaymentStatusPaid, event.Status)
	assert.Equal(t, 590.0, event.Amount)
	assert.InDelta(t, 569.5, event.AmountToShop, 0.001)
	assert.Equal(t, "u@example.com", event.UserID)
}

func TestFreeKassaVerifyWebhookWrongSecret(t *testing.T) {
	p := newTestFreeKassa(t, FreeKassaConfig{})

	_, err := p.VerifyWebhook(context.Background(), WebhookRequest{
		Form:     fkForm(fkSign(fkMerchant, "590", "guessed", "order-1")),
		RemoteIP: "51.250.54.238",
	})
	assert.ErrorIs(t, err, ErrInvalidSignature)

	// secret word 1 signs checkouts, never notifications
	_, err = p.VerifyWebhook(context.Background(), WebhookRequest{
		Form:     fkForm(fkSign(fkMerchant, "590", fkWord1, "order-1")),
		RemoteIP: "51.250.54.238",
	})
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestFreeKassaVerifyWebhookRejectsForeignIP(t *testing.T) {
	p := newTestFreeKassa(t, FreeKassaConfig{})

	_, err := p.VerifyWebhook(context.Background(), WebhookRequest{
		Form:     fkForm(fkSign(fkMerchant, "590", fkWord2, "order-1")),
		RemoteIP: "10.0.0.1",
	})
	assert.ErrorIs(t, err, ErrForbiddenSource)
}

func TestFreeKassaVerifyWebhookMerchantAndParams(t *testing.T) {
	p := newTestFreeKassa(t, FreeKassaConfig{})
	ip := "178.154.197.79"

	form := fkForm(fkSign("555", "590", fkWord2, "order-1"))
	form.Set("MERCHANT_ID", "555")
	_, err := p.VerifyWebhook(context.Background(), WebhookRequest{Form: form, RemoteIP: ip})
	assert.ErrorIs(t, err, ErrInvalidMerchant)

	form = fkForm("whatever")
	form.Del("AMOUNT")
	_, err = p.VerifyWebhook(context.Background(), WebhookRequest{Form: form, RemoteIP: ip})
	assert.ErrorIs(t, err, ErrMissingParams)
}

func TestFreeKassaCreatePayment(t *testing.T) {
	p := newTestFreeKassa(t, FreeKassaConfig{})

	res, err := p.CreatePayment(context.Background(), CreatePaymentRequest{OrderID: "order-1", Amount: 590, Email: "u@example.com"})
	require.NoError(t, err)

	parsed, err := url.Parse(res.PaymentURL)
	require.NoError(t, err)
	q := parsed.Query()
	assert.Equal(t, fkMerchant, q.Get("m"))
	assert.Equal(t, "590", q.Get("oa"))
	assert.Equal(t, "order-1", q.Get("o"))
	assert.Equal(t, "u@example.com", q.Get("em"))

	sum := md5.Sum([]byte(fkMerchant + ":590:" + fkWord1 + ":RUB:order-1"))
	assert.Equal(t, hex.EncodeToString(sum[:]), q.Get("s"))
	assert.Equal(t, "order-1", res.PaymentID)
}

func TestFreeKassaGetPaymentStatus(t *testing.T) {
	var body map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"type":"success","orders":[{"merchant_order_id":"order-1","status":1}]}`))
	}))
	defer srv.Close()

	p := newTestFreeKassa(t, FreeKassaConfig{APIKey: "api-key", APIURL: srv.URL})
	p.now = func() time.Time { return time.Unix(0, 1000) }

	res, err := p.GetPaymentStatus(context.Background(), "order-1")
	require.NoError(t, err)
	assert.True(t, res.Paid)

	// values sorted by key: nonce, orderId, shopId
	expected := hmacSHA256Hex("api-key", []byte("1000|order-1|"+fkMerchant))
	assert.Equal(t, expected, body["signature"])
}

func TestFreeKassaGetPaymentStatusNeedsAPIKey(t *testing.T) {
	p := newTestFreeKassa(t, FreeKassaConfig{})

	_, err := p.GetPaymentStatus(context.Background(), "order-1")
	assert.ErrorIs(t, err, ErrConfiguration)
}

package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/polkiloo/youwow/internal/domain/model"
)

const (
	defaultFreeKassaCheckoutURL = "https://pay.freekassa.com/"
	defaultFreeKassaAPIURL      = "https://api.freekassa.com/v1"
	defaultFreeKassaCurrency    = "RUB"
)

// FreeKassaAllowedIPs are the notification source addresses published by FreeKassa.
var FreeKassaAllowedIPs = []string{
	"168.119.157.136",
	"168.119.60.227",
	"178.154.197.79",
	"51.250.54.238",
}

// FreeKassaConfig configures the FreeKassa provider.
type FreeKassaConfig struct {
	MerchantID  string
	SecretWord1 string
	SecretWord2 string
	APIKey      string
	CheckoutURL string
	APIURL      string
	Currency    string
	AllowedIPs  []string
}

// FreeKassa issues hosted checkout URLs and accepts form-encoded notifications
// from an IP allowlist.
type FreeKassa struct {
	cfg     FreeKassaConfig
	allowed map[string]struct{}
	client  *http.Client
	logger  *slog.Logger
	now     func() time.Time
}

func NewFreeKassa(cfg FreeKassaConfig, client *http.Client, logger *slog.Logger) (*FreeKassa, error) {
	var missing []string
	if cfg.MerchantID == "" {
		missing = append(missing, "FK_MERCHANT_ID")
	}
	if cfg.SecretWord1 == "" {
		missing = append(missing, "FK_SECRET_WORD_1")
	}
	if cfg.SecretWord2 == "" {
		missing = append(missing, "FK_SECRET_WORD_2")
	}
	if len(missing) > 0 {
		return nil, missingConfig(ProviderFreeKassa, missing...)
	}
	if cfg.CheckoutURL == "" {
		cfg.CheckoutURL = defaultFreeKassaCheckoutURL
	}
	if cfg.APIURL == "" {
		cfg.APIURL = defaultFreeKassaAPIURL
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	if cfg.Currency == "" {
		cfg.Currency = defaultFreeKassaCurrency
	}
	if len(cfg.AllowedIPs) == 0 {
		cfg.AllowedIPs = FreeKassaAllowedIPs
	}
	allowed := make(map[string]struct{}, len(cfg.AllowedIPs))
	for _, ip := range cfg.AllowedIPs {
		allowed[ip] = struct{}{}
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FreeKassa{cfg: cfg, allowed: allowed, client: client, logger: logger, now: time.Now}, nil
}

func (p *FreeKassa) Name() string { return ProviderFreeKassa }

// CreatePayment builds a signed checkout link; no API round trip is needed.
func (p *FreeKassa) CreatePayment(_ context.Context, req CreatePaymentRequest) (*CreatePaymentResult, error) {
	amount := formatAmount(req.Amount)
	sign := md5Hex(strings.Join([]string{p.cfg.MerchantID, amount, p.cfg.SecretWord1, p.cfg.Currency, req.OrderID}, ":"))

	q := url.Values{}
	q.Set("m", p.cfg.MerchantID)
	q.Set("oa", amount)
	q.Set("currency", p.cfg.Currency)
	q.Set("o", req.OrderID)
	q.Set("s", sign)
	if req.Email != "" {
		q.Set("em", req.Email)
	}
	if req.Method != "" {
		q.Set("i", req.Method)
	}
	if req.UserID != "" {
		q.Set("us_user", req.UserID)
	}

	checkout := p.cfg.CheckoutURL + "?" + q.Encode()
	data, _ := json.Marshal(map[string]string{"checkout_url": checkout})

	return &CreatePaymentResult{
		Success:     true,
		GUID:        req.OrderID,
		PaymentID:   req.OrderID,
		PaymentURL:  checkout,
		PaymentData: data,
	}, nil
}

// VerifyWebhook checks source address, merchant and SIGN in that order.
func (p *FreeKassa) VerifyWebhook(_ context.Context, req WebhookRequest) (*model.PaymentEvent, error) {
	if _, ok := p.allowed[req.RemoteIP]; !ok {
		return nil, ErrForbiddenSource
	}

	form := req.Form
	merchantID := form.Get("MERCHANT_ID")
	amount := form.Get("AMOUNT")
	orderID := form.Get("MERCHANT_ORDER_ID")
	sign := form.Get("SIGN")
	if merchantID == "" || amount == "" || orderID == "" || sign == "" {
		return nil, ErrMissingParams
	}
	if merchantID != p.cfg.MerchantID {
		return nil, ErrInvalidMerchant
	}

	expected := md5Hex(merchantID + ":" + amount + ":" + p.cfg.SecretWord2 + ":" + orderID)
	if !equalSignature(expected, sign) {
		return nil, ErrInvalidSignature
	}

	total, _ := strconv.ParseFloat(amount, 64)
	toShop := total
	if commission, err := strconv.ParseFloat(form.Get("commission"), 64); err == nil {
		toShop = total - commission
	}

	// FreeKassa only notifies about completed payments.
	return &model.PaymentEvent{
		Provider:     ProviderFreeKassa,
		OrderID:      orderID,
		PaymentID:    form.Get("intid"),
		Status:       model.PaymentStatusPaid,
		Amount:       total,
		AmountToShop: toShop,
		UserID:       form.Get("us_user"),
	}, nil
}

type freeKassaOrdersResponse struct {
	Type   string `json:"type"`
	Orders []struct {
		MerchantOrderID string `json:"merchant_order_id"`
		Status          int    `json:"status"`
	} `json:"orders"`
}

// GetPaymentStatus queries the orders API by our order id. It requires FK_API_KEY.
func (p *FreeKassa) GetPaymentStatus(ctx context.Context, paymentID string) (*StatusResult, error) {
	if p.cfg.APIKey == "" {
		return nil, &ProviderError{Provider: ProviderFreeKassa, Op: "status", Err: fmt.Errorf("%w: [FK_API_KEY]", ErrConfiguration)}
	}

	params := map[string]string{
		"shopId":  p.cfg.MerchantID,
		"nonce":   strconv.FormatInt(p.now().UnixNano(), 10),
		"orderId": paymentID,
	}
	params["signature"] = p.apiSignature(params)

	payload, err := json.Marshal(params)
	if err != nil {
		return nil, &ProviderError{Provider: ProviderFreeKassa, Op: "status", Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.APIURL+"/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, &ProviderError{Provider: ProviderFreeKassa, Op: "status", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &ProviderError{Provider: ProviderFreeKassa, Op: "status", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderError{Provider: ProviderFreeKassa, Op: "status", Err: err}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		p.logger.Warn("freekassa status request failed", slog.Int("status", resp.StatusCode))
		return nil, &ProviderError{Provider: ProviderFreeKassa, Op: "status", Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var out freeKassaOrdersResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &ProviderError{Provider: ProviderFreeKassa, Op: "status", Err: fmt.Errorf("decode response: %w", err)}
	}
	for _, o := range out.Orders {
		if o.MerchantOrderID == paymentID {
			return newStatusResult(MapFreeKassaStatus(o.Status)), nil
		}
	}
	return newStatusResult(model.PaymentStatusPending), nil
}

// apiSignature is HMAC-SHA256 over the values joined by "|" in key order.
func (p *FreeKassa) apiSignature(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	values := make([]string, 0, len(keys))
	for _, k := range keys {
		values = append(values, params[k])
	}
	return hmacSHA256Hex(p.cfg.APIKey, []byte(strings.Join(values, "|")))
}

package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/polkiloo/youwow/internal/domain/model"
)

const defaultOnePlatBaseURL = "https://1plat.cash/api"

// OnePlatConfig configures the 1plat provider.
type OnePlatConfig struct {
	ShopID  string
	Secret  string
	BaseURL string
}

// OnePlat issues redirect URLs or widget tokens and signs webhooks twice:
// HMAC-SHA256 over the canonical payload and MD5 over a field string.
type OnePlat struct {
	cfg    OnePlatConfig
	client *http.Client
	logger *slog.Logger
}

// NewOnePlat validates credentials and constructs the provider.
func NewOnePlat(cfg OnePlatConfig, client *http.Client, logger *slog.Logger) (*OnePlat, error) {
	var missing []string
	if cfg.ShopID == "" {
		missing = append(missing, "ONEPLAT_SHOP_ID")
	}
	if cfg.Secret == "" {
		missing = append(missing, "ONEPLAT_SECRET")
	}
	if len(missing) > 0 {
		return nil, missingConfig(ProviderOnePlat, missing...)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultOnePlatBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OnePlat{cfg: cfg, client: client, logger: logger}, nil
}

func (p *OnePlat) Name() string { return ProviderOnePlat }

type onePlatCreateRequest struct {
	MerchantOrderID string `json:"merchant_order_id"`
	UserID          string `json:"user_id"`
	Amount          int64  `json:"amount"`
	Email           string `json:"email"`
	Method          string `json:"method"`
}

type onePlatCreateResponse struct {
	Success bool   `json:"success"`
	GUID    string `json:"guid"`
	URL     string `json:"url"`
	Payment struct {
		ID json.RawMessage `json:"id"`
	} `json:"payment"`
}

type onePlatInfoResponse struct {
	Success bool `json:"success"`
	Payment struct {
		Status json.RawMessage `json:"status"`
	} `json:"payment"`
}

func (p *OnePlat) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*CreatePaymentResult, error) {
	method := req.Method
	if method == "" {
		method = "card"
	}
	payload, err := json.Marshal(onePlatCreateRequest{
		MerchantOrderID: req.OrderID,
		UserID:          req.UserID,
		Amount:          int64(req.Amount),
		Email:           req.Email,
		Method:          method,
	})
	if err != nil {
		return nil, &ProviderError{Provider: ProviderOnePlat, Op: "create", Err: err}
	}

	body, err := p.do(ctx, http.MethodPost, "/merchant/order/create/by-api", payload)
	if err != nil {
		return nil, &ProviderError{Provider: ProviderOnePlat, Op: "create", Err: err}
	}

	var resp onePlatCreateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &ProviderError{Provider: ProviderOnePlat, Op: "create", Err: fmt.Errorf("decode response: %w", err)}
	}
	if !resp.Success || resp.GUID == "" {
		return nil, &ProviderError{Provider: ProviderOnePlat, Op: "create", Err: ErrRejected}
	}

	result := &CreatePaymentResult{
		Success:     true,
		GUID:        resp.GUID,
		PaymentID:   resp.GUID,
		PaymentData: body,
	}
	if req.UseWidget {
		result.ConfirmationToken = resp.GUID
	} else {
		result.PaymentURL = resp.URL
	}
	return result, nil
}

func (p *OnePlat) GetPaymentStatus(ctx context.Context, paymentID string) (*StatusResult, error) {
	body, err := p.do(ctx, http.MethodGet, "/merchant/order/info/"+paymentID+"/by-api", nil)
	if err != nil {
		return nil, &ProviderError{Provider: ProviderOnePlat, Op: "status", Err: err}
	}
	var resp onePlatInfoResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &ProviderError{Provider: ProviderOnePlat, Op: "status", Err: fmt.Errorf("decode response: %w", err)}
	}
	if !resp.Success {
		return nil, &ProviderError{Provider: ProviderOnePlat, Op: "status", Err: ErrRejected}
	}
	return newStatusResult(MapOnePlatStatus(rawText(resp.Payment.Status))), nil
}

// VerifyWebhook accepts the payload when either signature matches.
func (p *OnePlat) VerifyWebhook(_ context.Context, req WebhookRequest) (*model.PaymentEvent, error) {
	canonical, fields, err := canonicalObject(req.Body, "signature", "signature_v2")
	if err != nil {
		if errors.Is(err, errNotObject) {
			return nil, ErrInvalidWebhookType
		}
		return nil, fmt.Errorf("%w: %v", ErrMissingParams, err)
	}

	merchantID := rawText(fields["merchant_id"])
	if merchantID == "" {
		return nil, ErrMissingParams
	}
	if shopID := notifiedShop(fields, req.Header); shopID != "" && shopID != p.cfg.ShopID {
		return nil, ErrInvalidMerchant
	}

	amount := rawText(fields["amount"])
	sig := rawText(fields["signature"])
	sigV2 := rawText(fields["signature_v2"])

	expected := hmacSHA256Hex(p.cfg.Secret, canonical)
	expectedV2 := md5Hex(merchantID + amount + p.cfg.ShopID + p.cfg.Secret)

	// Either scheme is sufficient.
	if !equalSignature(expected, sig) && !equalSignature(expectedV2, sigV2) {
		return nil, ErrInvalidSignature
	}

	paymentID := rawText(fields["guid"])
	if paymentID == "" {
		paymentID = rawText(fields["payment_id"])
	}

	return &model.PaymentEvent{
		Provider:     ProviderOnePlat,
		OrderID:      merchantID,
		PaymentID:    paymentID,
		Status:       MapOnePlatStatus(rawText(fields["status"])),
		Amount:       rawFloat(fields["amount"]),
		AmountToShop: rawFloat(fields["amount_to_shop"]),
		UserID:       rawText(fields["user_id"]),
	}, nil
}

// notifiedShop returns the shop a notification claims to be for. 1plat sends
// it either as a body field or as the x-shop header mirrored from API calls;
// without either, signature_v2 still binds the payload to our shop.
func notifiedShop(fields map[string]json.RawMessage, header http.Header) string {
	for _, key := range []string{"shop_id", "shop"} {
		if v := rawText(fields[key]); v != "" {
			return v
		}
	}
	return strings.TrimSpace(header.Get("x-shop"))
}

func (p *OnePlat) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, p.cfg.BaseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-shop", p.cfg.ShopID)
	req.Header.Set("x-secret", p.cfg.Secret)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		p.logger.Warn("oneplat request failed", slog.String("path", path), slog.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return body, nil
}

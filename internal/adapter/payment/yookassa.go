package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/polkiloo/youwow/internal/domain/model"
)

const defaultYooKassaBaseURL = "https://api.yookassa.ru/v3"

// YooKassaConfig configures the widget based provider.
type YooKassaConfig struct {
	ShopID    string
	SecretKey string
	BaseURL   string
	ReturnURL string
}

// YooKassa creates embedded widget payments. Its notifications are unsigned,
// so every notification is confirmed against the payments API.
type YooKassa struct {
	cfg    YooKassaConfig
	client *http.Client
	logger *slog.Logger
}

func NewYooKassa(cfg YooKassaConfig, client *http.Client, logger *slog.Logger) (*YooKassa, error) {
	var missing []string
	if cfg.ShopID == "" {
		missing = append(missing, "YOOKASSA_SHOP_ID")
	}
	if cfg.SecretKey == "" {
		missing = append(missing, "YOOKASSA_SECRET_KEY")
	}
	if len(missing) > 0 {
		return nil, missingConfig(ProviderYooKassa, missing...)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultYooKassaBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &YooKassa{cfg: cfg, client: client, logger: logger}, nil
}

func (p *YooKassa) Name() string { return ProviderYooKassa }

type yooAmount struct {
	Value    string `json:"value"`
	Currency string `json:"currency,omitempty"`
}

type yooConfirmation struct {
	Type              string `json:"type"`
	ReturnURL         string `json:"return_url,omitempty"`
	ConfirmationToken string `json:"confirmation_token,omitempty"`
	ConfirmationURL   string `json:"confirmation_url,omitempty"`
}

type yooPaymentRequest struct {
	Amount       yooAmount         `json:"amount"`
	Capture      bool              `json:"capture"`
	Confirmation yooConfirmation   `json:"confirmation"`
	Description  string            `json:"description,omitempty"`
	Metadata     map[string]string `json:"metadata"`
}

type yooPayment struct {
	ID           string          `json:"id"`
	Status       string          `json:"status"`
	Paid         bool            `json:"paid"`
	Amount       yooAmount       `json:"amount"`
	IncomeAmount *yooAmount      `json:"income_amount"`
	Confirmation yooConfirmation `json:"confirmation"`
	Metadata     struct {
		OrderID string `json:"order_id"`
		UserID  string `json:"user_id"`
	} `json:"metadata"`
	Recipient struct {
		AccountID string `json:"account_id"`
	} `json:"recipient"`
}

type yooNotification struct {
	Type   string     `json:"type"`
	Event  string     `json:"event"`
	Object yooPayment `json:"object"`
}

func (p *YooKassa) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*CreatePaymentResult, error) {
	confirmation := yooConfirmation{Type: "embedded"}
	if !req.UseWidget {
		confirmation = yooConfirmation{Type: "redirect", ReturnURL: p.cfg.ReturnURL}
	}
	description := req.Description
	if description == "" {
		description = "Order " + req.OrderID
	}

	payload, err := json.Marshal(yooPaymentRequest{
		Amount:       yooAmount{Value: fmt.Sprintf("%.2f", req.Amount), Currency: "RUB"},
		Capture:      true,
		Confirmation: confirmation,
		Description:  description,
		Metadata:     map[string]string{"order_id": req.OrderID, "user_id": req.UserID},
	})
	if err != nil {
		return nil, &ProviderError{Provider: ProviderYooKassa, Op: "create", Err: err}
	}

	body, err := p.do(ctx, http.MethodPost, "/payments", payload)
	if err != nil {
		return nil, &ProviderError{Provider: ProviderYooKassa, Op: "create", Err: err}
	}

	var out yooPayment
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &ProviderError{Provider: ProviderYooKassa, Op: "create", Err: fmt.Errorf("decode response: %w", err)}
	}
	if out.ID == "" {
		return nil, &ProviderError{Provider: ProviderYooKassa, Op: "create", Err: ErrRejected}
	}

	return &CreatePaymentResult{
		Success:           true,
		GUID:              out.ID,
		PaymentID:         out.ID,
		PaymentURL:        out.Confirmation.ConfirmationURL,
		ConfirmationToken: out.Confirmation.ConfirmationToken,
		PaymentData:       body,
	}, nil
}

func (p *YooKassa) GetPaymentStatus(ctx context.Context, paymentID string) (*StatusResult, error) {
	out, err := p.fetch(ctx, paymentID)
	if err != nil {
		return nil, &ProviderError{Provider: ProviderYooKassa, Op: "status", Err: err}
	}
	return newStatusResult(MapYooKassaStatus(out.Status)), nil
}

// VerifyWebhook validates the envelope, then trusts only the status reported
// by the payments API for the referenced payment.
func (p *YooKassa) VerifyWebhook(ctx context.Context, req WebhookRequest) (*model.PaymentEvent, error) {
	var n yooNotification
	if err := json.Unmarshal(req.Body, &n); err != nil {
		return nil, ErrInvalidWebhookType
	}
	if n.Type != "notification" || !strings.HasPrefix(n.Event, "payment.") {
		return nil, ErrInvalidWebhookType
	}
	if n.Object.ID == "" {
		return nil, ErrMissingParams
	}
	if n.Object.Recipient.AccountID != "" && n.Object.Recipient.AccountID != p.cfg.ShopID {
		return nil, ErrInvalidMerchant
	}

	confirmed, err := p.fetch(ctx, n.Object.ID)
	if err != nil {
		return nil, &ProviderError{Provider: ProviderYooKassa, Op: "verify", Err: err}
	}
	if confirmed.Status != n.Object.Status {
		p.logger.Warn("yookassa notification status mismatch",
			slog.String("payment_id", n.Object.ID),
			slog.String("notified", n.Object.Status),
			slog.String("actual", confirmed.Status),
		)
		return nil, ErrInvalidSignature
	}

	orderID := confirmed.Metadata.OrderID
	if orderID == "" {
		return nil, ErrMissingParams
	}

	amount := parseAmount(confirmed.Amount.Value)
	toShop := amount
	if confirmed.IncomeAmount != nil {
		toShop = parseAmount(confirmed.IncomeAmount.Value)
	}

	return &model.PaymentEvent{
		Provider:     ProviderYooKassa,
		OrderID:      orderID,
		PaymentID:    confirmed.ID,
		Status:       MapYooKassaStatus(confirmed.Status),
		Amount:       amount,
		AmountToShop: toShop,
		UserID:       confirmed.Metadata.UserID,
	}, nil
}

func (p *YooKassa) fetch(ctx context.Context, paymentID string) (*yooPayment, error) {
	body, err := p.do(ctx, http.MethodGet, "/payments/"+paymentID, nil)
	if err != nil {
		return nil, err
	}
	var out yooPayment
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

func (p *YooKassa) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, p.cfg.BaseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(p.cfg.ShopID, p.cfg.SecretKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotence-Key", uuid.NewString())
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
		p.logger.Warn("yookassa request failed", slog.String("path", path), slog.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return body, nil
}

func parseAmount(v string) float64 {
	f, _ := strconv.ParseFloat(v, 64)
	return f
}

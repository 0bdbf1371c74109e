package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/youwow/internal/adapter/payment"
	domainErrors "github.com/polkiloo/youwow/internal/domain/errors"
	"github.com/polkiloo/youwow/internal/server/http/dto"
	"github.com/polkiloo/youwow/internal/usecase"
)

const maxWebhookBody = 64 << 10

// PaymentHandler creates payments and accepts provider webhooks.
type PaymentHandler struct {
	facade PaymentFacade
	logger *slog.Logger
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(facade PaymentFacade, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{facade: facade, logger: logger}
}

// Create handles POST /api/payments.
func (h *PaymentHandler) Create(c *gin.Context) {
	var req dto.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.OrderID == "" {
		abortWithError(c, http.StatusBadRequest, "orderId is required")
		return
	}

	result, err := h.facade.CreatePayment(c.Request.Context(), usecase.CheckoutRequest{
		OrderID:   req.OrderID,
		Method:    req.Method,
		UseWidget: req.UseWidget,
	})
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrInvalidInput):
			abortWithError(c, http.StatusBadRequest, msgInvalidOrderID)
		case errors.Is(err, domainErrors.ErrNotFound):
			abortWithError(c, http.StatusNotFound, msgOrderNotFound)
		case errors.Is(err, domainErrors.ErrOrderAlreadyProcessed):
			abortWithError(c, http.StatusConflict, "order is already paid")
		case errors.Is(err, payment.ErrConfiguration):
			abortWithError(c, http.StatusInternalServerError, "payment provider is not configured")
		default:
			h.logger.Error("create payment failed", slog.String("order_id", req.OrderID), slog.String("error", err.Error()))
			abortWithError(c, http.StatusBadGateway, "payment provider is unavailable")
		}
		return
	}

	c.JSON(http.StatusOK, dto.CreatePaymentResponse{
		Success:           result.Success,
		PaymentID:         result.PaymentID,
		PaymentURL:        result.PaymentURL,
		ConfirmationToken: result.ConfirmationToken,
		PaymentData:       result.PaymentData,
	})
}

// OnePlat handles POST /api/webhooks/oneplat.
func (h *PaymentHandler) OnePlat(c *gin.Context) {
	h.webhook(c, payment.ProviderOnePlat, "OK")
}

// FreeKassa handles POST /api/webhooks/freekassa.
func (h *PaymentHandler) FreeKassa(c *gin.Context) {
	h.webhook(c, payment.ProviderFreeKassa, "YES")
}

// YooKassa handles POST /api/webhooks/yookassa.
func (h *PaymentHandler) YooKassa(c *gin.Context) {
	h.webhook(c, payment.ProviderYooKassa, "OK")
}

func (h *PaymentHandler) webhook(c *gin.Context, provider, ack string) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.String(http.StatusBadRequest, "bad request")
		return
	}

	req := payment.WebhookRequest{
		Body:     body,
		RemoteIP: c.ClientIP(),
		Header:   c.Request.Header,
	}
	if c.ContentType() != gin.MIMEJSON {
		req.Form, _ = url.ParseQuery(string(body))
	}

	if _, err := h.facade.HandleWebhook(c.Request.Context(), provider, req); err != nil {
		status := webhookStatus(provider, err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("webhook processing failed", slog.String("provider", provider), slog.String("error", err.Error()))
		}
		c.String(status, http.StatusText(status))
		return
	}

	c.String(http.StatusOK, ack)
}

func webhookStatus(provider string, err error) int {
	switch {
	case errors.Is(err, payment.ErrConfiguration):
		return http.StatusInternalServerError
	case errors.Is(err, payment.ErrInvalidSignature), errors.Is(err, payment.ErrForbiddenSource):
		return http.StatusForbidden
	case errors.Is(err, payment.ErrInvalidMerchant):
		if provider == payment.ProviderFreeKassa {
			return http.StatusBadRequest
		}
		return http.StatusForbidden
	case errors.Is(err, payment.ErrMissingParams), errors.Is(err, payment.ErrInvalidWebhookType):
		return http.StatusBadRequest
	case errors.Is(err, domainErrors.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domainErrors.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, new(*payment.ProviderError)):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

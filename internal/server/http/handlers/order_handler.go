package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/youwow/internal/domain/errors"
	"github.com/polkiloo/youwow/internal/domain/model"
	"github.com/polkiloo/youwow/internal/server/http/dto"
	"github.com/polkiloo/youwow/internal/usecase"
)

const (
	msgProcessingStarted = "Processing started"
	msgAlreadyProcessed  = "Order already processed"
	msgOrderNotFound     = "Order not found"
	msgInvalidOrderID    = "Invalid order id"
	msgServiceBusy       = "Service is busy, please try again later"
	msgInternal          = "Internal server error"
)

// OrderHandler manages the public order endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Create handles POST /api/orders.
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.facade.CreateOrder(c.Request.Context(), usecase.CreateOrderRequest{
		ServiceType: model.ServiceType(strings.ToLower(strings.TrimSpace(req.ServiceType))),
		Email:       req.Email,
		Name:        req.Name,
		Input:       req.InputData,
		Ref:         req.Ref,
	})
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrInvalidInput):
			abortWithError(c, http.StatusBadRequest, "invalid order form")
		case errors.Is(err, domainErrors.ErrUnsupportedService):
			abortWithError(c, http.StatusBadRequest, "service is not available")
		default:
			abortWithError(c, http.StatusInternalServerError, msgInternal)
		}
		return
	}

	c.JSON(http.StatusCreated, toOrderResponse(order))
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.facade.Order(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrInvalidInput):
			abortWithError(c, http.StatusBadRequest, msgInvalidOrderID)
		case errors.Is(err, domainErrors.ErrNotFound):
			abortWithError(c, http.StatusNotFound, msgOrderNotFound)
		default:
			abortWithError(c, http.StatusInternalServerError, msgInternal)
		}
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

// Process handles POST /api/process. A duplicate trigger is a conflict,
// not an error of the order.
func (h *OrderHandler) Process(c *gin.Context) {
	var req dto.ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.OrderID) == "" {
		c.JSON(http.StatusBadRequest, dto.ProcessResponse{Message: "orderId is required"})
		return
	}

	order, err := h.facade.TriggerProcessing(c.Request.Context(), strings.TrimSpace(req.OrderID))
	if err != nil {
		status, message := processFailure(err)
		c.JSON(status, dto.ProcessResponse{OrderID: req.OrderID, Message: message})
		return
	}

	c.JSON(http.StatusOK, dto.ProcessResponse{Success: true, OrderID: order.ID, Message: msgProcessingStarted})
}

// VerifyPayment handles POST /api/orders/:id/verify-payment.
func (h *OrderHandler) VerifyPayment(c *gin.Context) {
	order, err := h.facade.VerifyPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domainErrors.ErrPaymentNotConfirmed) {
			abortWithError(c, http.StatusPaymentRequired, "payment is not confirmed yet")
			return
		}
		status, message := processFailure(err)
		abortWithError(c, status, message)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

// ServiceOptions handles GET /api/service-options. Only active services are listed.
func (h *OrderHandler) ServiceOptions(c *gin.Context) {
	options, err := h.facade.ServiceOptions(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, msgInternal)
		return
	}
	response := make([]dto.ServiceOptionResponse, 0, len(options))
	for _, o := range options {
		if o.IsActive {
			response = append(response, toServiceOptionResponse(o))
		}
	}
	c.JSON(http.StatusOK, response)
}

func processFailure(err error) (int, string) {
	switch {
	case errors.Is(err, domainErrors.ErrInvalidInput):
		return http.StatusBadRequest, msgInvalidOrderID
	case errors.Is(err, domainErrors.ErrNotFound):
		return http.StatusNotFound, msgOrderNotFound
	case errors.Is(err, domainErrors.ErrOrderAlreadyProcessed):
		return http.StatusConflict, msgAlreadyProcessed
	case errors.Is(err, domainErrors.ErrQueueFull):
		return http.StatusServiceUnavailable, msgServiceBusy
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

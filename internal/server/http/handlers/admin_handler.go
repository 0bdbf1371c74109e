package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/youwow/internal/domain/errors"
	"github.com/polkiloo/youwow/internal/domain/model"
	"github.com/polkiloo/youwow/internal/server/http/dto"
	"github.com/polkiloo/youwow/internal/usecase"
)

const dateLayout = "2006-01-02"

// AdminHandler serves partner, payout and catalog management.
type AdminHandler struct {
	facade AdminFacade
	logger *slog.Logger
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(facade AdminFacade, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{facade: facade, logger: logger}
}

// Partners handles GET /api/admin/partners.
func (h *AdminHandler) Partners(c *gin.Context) {
	partners, err := h.facade.Partners(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response := make([]dto.PartnerResponse, 0, len(partners))
	for i := range partners {
		response = append(response, toPartnerResponse(&partners[i]))
	}
	c.JSON(http.StatusOK, response)
}

// CreatePartner handles POST /api/admin/partners.
func (h *AdminHandler) CreatePartner(c *gin.Context) {
	var req dto.PartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	partner := model.Partner{ID: req.ID, Status: model.PartnerStatus(req.Status)}
	applyPartnerRequest(&partner, req)

	created, err := h.facade.CreatePartner(c.Request.Context(), partner)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.audit(c, "partner created", created.ID)
	c.JSON(http.StatusCreated, toPartnerResponse(created))
}

// Partner handles GET /api/admin/partners/:id.
func (h *AdminHandler) Partner(c *gin.Context) {
	partner, err := h.facade.Partner(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toPartnerResponse(partner))
}

// UpdatePartner handles PUT /api/admin/partners/:id. Omitted fields keep
// their stored values.
func (h *AdminHandler) UpdatePartner(c *gin.Context) {
	var req dto.PartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	partner, err := h.facade.Partner(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	applyPartnerRequest(partner, req)
	if req.Status != "" {
		partner.Status = model.PartnerStatus(req.Status)
	}

	updated, err := h.facade.UpdatePartner(c.Request.Context(), *partner)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.audit(c, "partner updated", updated.ID)
	c.JSON(http.StatusOK, toPartnerResponse(updated))
}

// SetPartnerStatus handles PATCH /api/admin/partners/:id/status.
func (h *AdminHandler) SetPartnerStatus(c *gin.Context) {
	var req dto.PartnerStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	partner, err := h.facade.SetPartnerStatus(c.Request.Context(), c.Param("id"), model.PartnerStatus(req.Status))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.audit(c, "partner status changed", partner.ID)
	c.JSON(http.StatusOK, toPartnerResponse(partner))
}

// Stats handles GET /api/admin/partners/:id/stats.
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.facade.PartnerStats(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.PartnerStatsResponse{
		Conversions:       stats.Conversions,
		TotalCommission:   stats.TotalCommission,
		PendingCommission: stats.PendingCommission,
		PaidCommission:    stats.PaidCommission,
		Revenue:           stats.Revenue,
	})
}

// Conversions handles GET /api/admin/partners/:id/conversions.
func (h *AdminHandler) Conversions(c *gin.Context) {
	conversions, err := h.facade.PartnerConversions(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response := make([]dto.ConversionResponse, 0, len(conversions))
	for _, cv := range conversions {
		response = append(response, dto.ConversionResponse{
			ID:          cv.ID,
			OrderID:     cv.OrderID,
			ServiceType: string(cv.ServiceType),
			Amount:      cv.Amount,
			Commission:  cv.Commission,
			ConvertedAt: cv.ConvertedAt,
			IsPaidOut:   cv.IsPaidOut,
		})
	}
	c.JSON(http.StatusOK, response)
}

// Payouts handles GET /api/admin/partners/:id/payouts.
func (h *AdminHandler) Payouts(c *gin.Context) {
	payouts, err := h.facade.Payouts(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response := make([]dto.PayoutResponse, 0, len(payouts))
	for i := range payouts {
		response = append(response, toPayoutResponse(&payouts[i]))
	}
	c.JSON(http.StatusOK, response)
}

// CreatePayout handles POST /api/admin/partners/:id/payouts.
func (h *AdminHandler) CreatePayout(c *gin.Context) {
	var req dto.PayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	start, errStart := ParsePeriodBound(req.PeriodStart, false)
	end, errEnd := ParsePeriodBound(req.PeriodEnd, true)
	if errStart != nil || errEnd != nil {
		abortWithError(c, http.StatusBadRequest, "period dates must be YYYY-MM-DD")
		return
	}

	payout, err := h.facade.CreatePayout(c.Request.Context(), usecase.PayoutRequest{
		PartnerID:     c.Param("id"),
		PeriodStart:   start,
		PeriodEnd:     end,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.audit(c, "payout created", payout.PartnerID)
	c.JSON(http.StatusCreated, toPayoutResponse(payout))
}

// ServiceOptions handles GET /api/admin/service-options.
func (h *AdminHandler) ServiceOptions(c *gin.Context) {
	options, err := h.facade.ServiceOptions(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response := make([]dto.ServiceOptionResponse, 0, len(options))
	for _, o := range options {
		response = append(response, toServiceOptionResponse(o))
	}
	c.JSON(http.StatusOK, response)
}

// SetServiceOption handles PUT /api/admin/service-options/:type.
func (h *AdminHandler) SetServiceOption(c *gin.Context) {
	var req dto.ServiceOptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	option := model.ServiceOption{
		ServiceType: model.ServiceType(strings.ToLower(c.Param("type"))),
		Title:       req.Title,
		Price:       req.Price,
		IsActive:    req.IsActive,
	}
	if err := h.facade.SetServiceOption(c.Request.Context(), option); err != nil {
		h.fail(c, err)
		return
	}
	h.audit(c, "service option updated", string(option.ServiceType))
	c.JSON(http.StatusOK, toServiceOptionResponse(option))
}

func (h *AdminHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainErrors.ErrInvalidInput), errors.Is(err, domainErrors.ErrInvalidAmount):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, domainErrors.ErrNotFound):
		abortWithError(c, http.StatusNotFound, "not found")
	case errors.Is(err, domainErrors.ErrAlreadyExists):
		abortWithError(c, http.StatusConflict, "already exists")
	case errors.Is(err, domainErrors.ErrNoPendingConversions):
		abortWithError(c, http.StatusConflict, "no unpaid conversions in period")
	default:
		h.logger.Error("admin request failed", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
		abortWithError(c, http.StatusInternalServerError, msgInternal)
	}
}

func (h *AdminHandler) audit(c *gin.Context, action, subject string) {
	h.logger.Info(action, slog.Int64("admin_id", CurrentUserID(c)), slog.String("subject", subject))
}

func applyPartnerRequest(p *model.Partner, req dto.PartnerRequest) {
	if req.Name != "" {
		p.Name = req.Name
	}
	if req.Website != "" {
		p.Website = &req.Website
	}
	if req.PaymentInfo != "" {
		p.PaymentInfo = &req.PaymentInfo
	}
	if req.Notes != "" {
		p.Notes = &req.Notes
	}
	if req.CommissionRate != nil {
		p.CommissionRate = *req.CommissionRate
	}
}

// ParsePeriodBound parses a payout period date. Date-only end bounds cover
// the whole day.
func ParsePeriodBound(value string, end bool) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	if end {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/youwow/internal/domain/model"
	"github.com/polkiloo/youwow/internal/server/http/dto"
	"github.com/polkiloo/youwow/internal/server/http/middleware"
)

// CurrentUserID extracts authenticated admin identifier from context.
func CurrentUserID(c *gin.Context) int64 {
	val, ok := c.Get(middleware.UserIDContextKey)
	if !ok {
		return 0
	}
	id, _ := val.(int64)
	return id
}

func abortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, dto.ErrorResponse{Error: message})
}

func toOrderResponse(order *model.Order) dto.OrderResponse {
	return dto.OrderResponse{
		ID:                  order.ID,
		ServiceType:         string(order.ServiceType),
		CustomerEmail:       order.CustomerEmail,
		CustomerName:        order.CustomerName,
		InputData:           order.InputData,
		Amount:              order.Amount,
		Status:              string(order.Status),
		PaymentID:           order.PaymentID,
		PaymentProvider:     order.PaymentProvider,
		PartnerID:           order.PartnerID,
		ResultURL:           order.ResultURL,
		ResultMetadata:      order.ResultMetadata,
		ErrorMessage:        order.ErrorMessage,
		CreatedAt:           order.CreatedAt,
		UpdatedAt:           order.UpdatedAt,
		ProcessingStartedAt: order.ProcessingStartedAt,
		CompletedAt:         order.CompletedAt,
	}
}

func toPartnerResponse(p *model.Partner) dto.PartnerResponse {
	return dto.PartnerResponse{
		ID:             p.ID,
		Name:           p.Name,
		Website:        p.Website,
		PaymentInfo:    p.PaymentInfo,
		CommissionRate: p.CommissionRate,
		Notes:          p.Notes,
		Status:         string(p.Status),
		CreatedAt:      p.CreatedAt,
	}
}

func toPayoutResponse(p *model.PartnerPayout) dto.PayoutResponse {
	return dto.PayoutResponse{
		ID:               p.ID,
		PartnerID:        p.PartnerID,
		Amount:           p.Amount,
		ConversionsCount: p.ConversionsCount,
		PeriodStart:      p.PeriodStart,
		PeriodEnd:        p.PeriodEnd,
		PaymentMethod:    p.PaymentMethod,
		Notes:            p.Notes,
		CreatedAt:        p.CreatedAt,
	}
}

func toServiceOptionResponse(o model.ServiceOption) dto.ServiceOptionResponse {
	return dto.ServiceOptionResponse{
		ServiceType: string(o.ServiceType),
		Title:       o.Title,
		Price:       o.Price,
		IsActive:    o.IsActive,
	}
}

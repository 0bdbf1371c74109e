package dto

import (
	"encoding/json"
	"time"
)

// CreateOrderRequest is a submitted gift form.
type CreateOrderRequest struct {
	ServiceType string          `json:"serviceType"`
	Email       string          `json:"email"`
	Name        string          `json:"name,omitempty"`
	InputData   json.RawMessage `json:"inputData,omitempty"`
	Ref         string          `json:"ref,omitempty"`
}

// OrderResponse mirrors the order row.
type OrderResponse struct {
	ID                  string          `json:"id"`
	ServiceType         string          `json:"service_type"`
	CustomerEmail       string          `json:"customer_email"`
	CustomerName        *string         `json:"customer_name,omitempty"`
	InputData           json.RawMessage `json:"input_data,omitempty"`
	Amount              float64         `json:"amount"`
	Status              string          `json:"status"`
	PaymentID           *string         `json:"payment_id,omitempty"`
	PaymentProvider     *string         `json:"payment_provider,omitempty"`
	PartnerID           *string         `json:"partner_id,omitempty"`
	ResultURL           *string         `json:"result_url,omitempty"`
	ResultMetadata      json.RawMessage `json:"result_metadata,omitempty"`
	ErrorMessage        *string         `json:"error_message,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
	ProcessingStartedAt *time.Time      `json:"processing_started_at,omitempty"`
	CompletedAt         *time.Time      `json:"completed_at,omitempty"`
}

// ProcessRequest triggers generation of a paid order.
type ProcessRequest struct {
	OrderID string `json:"orderId"`
}

// ProcessResponse reports the outcome of a processing trigger.
type ProcessResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId,omitempty"`
	Message string `json:"message"`
}

// ErrorResponse is the JSON body of rejected API calls.
type ErrorResponse struct {
	Error string `json:"error"`
}

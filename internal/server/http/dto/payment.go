package dto

import "encoding/json"

// CreatePaymentRequest asks for a checkout of an existing order.
type CreatePaymentRequest struct {
	OrderID   string `json:"orderId"`
	Method    string `json:"method,omitempty"`
	UseWidget bool   `json:"useWidget,omitempty"`
}

// CreatePaymentResponse carries a redirect URL or a widget token.
type CreatePaymentResponse struct {
	Success           bool            `json:"success"`
	PaymentID         string          `json:"paymentId"`
	PaymentURL        string          `json:"paymentUrl,omitempty"`
	ConfirmationToken string          `json:"confirmationToken,omitempty"`
	PaymentData       json.RawMessage `json:"paymentData,omitempty"`
}

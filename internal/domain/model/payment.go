package model

// PaymentStatus is the provider agnostic payment state.
type PaymentStatus int

const (
	PaymentStatusPending        PaymentStatus = 0
	PaymentStatusPaid           PaymentStatus = 1
	PaymentStatusWaitingCapture PaymentStatus = 2
	PaymentStatusCanceled       PaymentStatus = 3
)

func (s PaymentStatus) String() string {
	switch s {
	case PaymentStatusPaid:
		return "paid"
	case PaymentStatusWaitingCapture:
		return "waiting_for_capture"
	case PaymentStatusCanceled:
		return "canceled"
	default:
		return "pending"
	}
}

// PaymentEvent is a verified, normalized provider notification.
type PaymentEvent struct {
	Provider     string
	OrderID      string
	PaymentID    string
	Status       PaymentStatus
	Amount       float64
	AmountToShop float64
	UserID       string
}

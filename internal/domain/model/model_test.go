package model

import "testing"

func TestOrderStatusValues(t *testing.T) {
	cases := []struct {
		name  string
		got   OrderStatus
		value string
	}{
		{"pending", OrderStatusPending, "pending"},
		{"paid", OrderStatusPaid, "paid"},
		{"processing", OrderStatusProcessing, "processing"},
		{"completed", OrderStatusCompleted, "completed"},
		{"failed", OrderStatusFailed, "failed"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if string(tc.got) != tc.value {
				t.Fatalf("expected %s, got %s", tc.value, tc.got)
			}
		})
	}
}

func TestOrderStatusClaimable(t *testing.T) {
	claimable := map[OrderStatus]bool{
		OrderStatusPending:    true,
		OrderStatusPaid:       true,
		OrderStatusProcessing: false,
		OrderStatusCompleted:  false,
		OrderStatusFailed:     false,
	}
	for status, want := range claimable {
		if got := status.Claimable(); got != want {
			t.Errorf("%s: expected claimable=%v, got %v", status, want, got)
		}
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderStatusPending, OrderStatusPaid, true},
		{OrderStatusPending, OrderStatusProcessing, true},
		{OrderStatusPaid, OrderStatusProcessing, true},
		{OrderStatusPaid, OrderStatusFailed, true},
		{OrderStatusProcessing, OrderStatusCompleted, true},
		{OrderStatusProcessing, OrderStatusFailed, true},
		{OrderStatusPending, OrderStatusFailed, false},
		{OrderStatusPending, OrderStatusCompleted, false},
		{OrderStatusCompleted, OrderStatusFailed, false},
		{OrderStatusFailed, OrderStatusProcessing, false},
		{OrderStatusCompleted, OrderStatusProcessing, false},
	}

	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.want, got)
		}
	}

	for _, status := range []OrderStatus{OrderStatusCompleted, OrderStatusFailed} {
		if !status.IsTerminal() {
			t.Errorf("expected %s to be terminal", status)
		}
	}
}

func TestPaymentStatusScale(t *testing.T) {
	cases := []struct {
		status PaymentStatus
		value  int
		name   string
	}{
		{PaymentStatusPending, 0, "pending"},
		{PaymentStatusPaid, 1, "paid"},
		{PaymentStatusWaitingCapture, 2, "waiting_for_capture"},
		{PaymentStatusCanceled, 3, "canceled"},
	}

	for _, tc := range cases {
		if int(tc.status) != tc.value {
			t.Fatalf("expected %d, got %d", tc.value, tc.status)
		}
		if tc.status.String() != tc.name {
			t.Fatalf("expected %s, got %s", tc.name, tc.status.String())
		}
	}
}

func TestPartnerStatusValid(t *testing.T) {
	for _, s := range []PartnerStatus{PartnerStatusActive, PartnerStatusInactive, PartnerStatusArchived} {
		if !s.Valid() {
			t.Errorf("expected %s to be valid", s)
		}
	}
	if PartnerStatus("deleted").Valid() {
		t.Error("expected unknown status to be invalid")
	}
}

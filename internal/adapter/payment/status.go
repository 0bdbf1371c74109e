package payment

import (
	"strings"

	"github.com/polkiloo/youwow/internal/domain/model"
)

var statusNames = map[string]model.PaymentStatus{
	"pending":             model.PaymentStatusPending,
	"draft":               model.PaymentStatusPending,
	"awaiting_payment":    model.PaymentStatusPending,
	"created":             model.PaymentStatusPending,
	"new":                 model.PaymentStatusPending,
	"succeeded":           model.PaymentStatusPaid,
	"paid":                model.PaymentStatusPaid,
	"confirmed":           model.PaymentStatusPaid,
	"success":             model.PaymentStatusPaid,
	"waiting_for_capture": model.PaymentStatusWaitingCapture,
	"canceled":            model.PaymentStatusCanceled,
	"cancelled":           model.PaymentStatusCanceled,
	"failed":              model.PaymentStatusCanceled,
}

// 1plat reports numeric codes: -1 draft, 0 awaiting payment, 1 paid,
// 2 confirmed, -2 canceled.
var onePlatCodes = map[string]model.PaymentStatus{
	"-1": model.PaymentStatusPending,
	"0":  model.PaymentStatusPending,
	"1":  model.PaymentStatusPaid,
	"2":  model.PaymentStatusPaid,
	"-2": model.PaymentStatusCanceled,
}

// FreeKassa API order codes: 0 new, 1 paid, 8 error, 9 canceled.
var freeKassaCodes = map[int]model.PaymentStatus{
	0: model.PaymentStatusPending,
	1: model.PaymentStatusPaid,
	8: model.PaymentStatusCanceled,
	9: model.PaymentStatusCanceled,
}

// NormalizeStatus maps a textual provider status. Unknown values are pending.
func NormalizeStatus(status string) model.PaymentStatus {
	if s, ok := statusNames[strings.ToLower(strings.TrimSpace(status))]; ok {
		return s
	}
	return model.PaymentStatusPending
}

// MapOnePlatStatus accepts both numeric codes and textual statuses.
func MapOnePlatStatus(status string) model.PaymentStatus {
	if s, ok := onePlatCodes[strings.TrimSpace(status)]; ok {
		return s
	}
	return NormalizeStatus(status)
}

// MapYooKassaStatus maps YooKassa payment object statuses.
func MapYooKassaStatus(status string) model.PaymentStatus {
	return NormalizeStatus(status)
}

// MapFreeKassaStatus maps FreeKassa API order codes.
func MapFreeKassaStatus(code int) model.PaymentStatus {
	if s, ok := freeKassaCodes[code]; ok {
		return s
	}
	return model.PaymentStatusPending
}

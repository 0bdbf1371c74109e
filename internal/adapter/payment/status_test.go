package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/polkiloo/youwow/internal/domain/model"
)

func TestNormalizeStatusTable(t *testing.T) {
	cases := map[string]model.PaymentStatus{
		"pending":             0,
		"draft":               0,
		"awaiting_payment":    0,
		"succeeded":           1,
		"paid":                1,
		"Confirmed":           1,
		"waiting_for_capture": 2,
		"canceled":            3,
		"failed":              3,
		"":                    0,
		"something-new":       0,
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeStatus(in), "status %q", in)
	}
}

func TestMapOnePlatStatus(t *testing.T) {
	cases := map[string]model.PaymentStatus{
		"-1":       model.PaymentStatusPending,
		"0":        model.PaymentStatusPending,
		"1":        model.PaymentStatusPaid,
		"2":        model.PaymentStatusPaid,
		"-2":       model.PaymentStatusCanceled,
		"paid":     model.PaymentStatusPaid,
		"canceled": model.PaymentStatusCanceled,
		"42":       model.PaymentStatusPending,
	}
	for in, want := range cases {
		assert.Equal(t, want, MapOnePlatStatus(in), "status %q", in)
	}
}

func TestMapYooKassaStatus(t *testing.T) {
	assert.Equal(t, model.PaymentStatusPending, MapYooKassaStatus("pending"))
	assert.Equal(t, model.PaymentStatusWaitingCapture, MapYooKassaStatus("waiting_for_capture"))
	assert.Equal(t, model.PaymentStatusPaid, MapYooKassaStatus("succeeded"))
	assert.Equal(t, model.PaymentStatusCanceled, MapYooKassaStatus("canceled"))
}

func TestMapFreeKassaStatus(t *testing.T) {
	assert.Equal(t, model.PaymentStatusPending, MapFreeKassaStatus(0))
	assert.Equal(t, model.PaymentStatusPaid, MapFreeKassaStatus(1))
	assert.Equal(t, model.PaymentStatusCanceled, MapFreeKassaStatus(8))
	assert.Equal(t, model.PaymentStatusCanceled, MapFreeKassaStatus(9))
	assert.Equal(t, model.PaymentStatusPending, MapFreeKassaStatus(5))
}

func TestCanonicalObjectKeepsOrderAndDropsKeys(t *testing.T) {
	raw := []byte(`{ "b": 1, "signature": "x", "a": {"z": [1, 2], "y": "<&>"}, "c": null }`)

	canonical, fields, err := canonicalObject(raw, "signature")

	assert.NoError(t, err)
	assert.Equal(t, `{"b":1,"a":{"z":[1,2],"y":"<&>"},"c":null}`, string(canonical))
	assert.Equal(t, "x", rawText(fields["signature"]))
	assert.Equal(t, "", rawText(fields["c"]))
}

func TestCanonicalObjectRejectsNonObject(t *testing.T) {
	_, _, err := canonicalObject([]byte(`[1,2]`))
	assert.ErrorIs(t, err, errNotObject)
}

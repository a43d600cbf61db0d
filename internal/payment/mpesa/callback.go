package mpesa

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tbourn/go-vendor-backend/internal/services"
)

// ErrMalformedCallback is returned for bodies that are not STK callbacks.
var ErrMalformedCallback = errors.New("mpesa: malformed callback")

// CallbackEnvelope is the body Daraja posts to the callback URL.
type CallbackEnvelope struct {
	Body struct {
		STKCallback STKCallback `json:"stkCallback"`
	} `json:"Body"`
}

// STKCallback is the result of one STK push.
type STKCallback struct {
	MerchantRequestID string `json:"MerchantRequestID"`
	CheckoutRequestID string `json:"CheckoutRequestID"`
	ResultCode        int    `json:"ResultCode"`
	ResultDesc        string `json:"ResultDesc"`
	CallbackMetadata  *struct {
		Item []MetadataItem `json:"Item"`
	} `json:"CallbackMetadata,omitempty"`
}

// MetadataItem is a name/value pair. Value is a number or a string depending
// on the item.
type MetadataItem struct {
	Name  string          `json:"Name"`
	Value json.RawMessage `json:"Value,omitempty"`
}

// Item returns the metadata value called name as text.
func (cb STKCallback) Item(name string) (string, bool) {
	if cb.CallbackMetadata == nil {
		return "", false
	}
	for _, it := range cb.CallbackMetadata.Item {
		if it.Name != name || len(it.Value) == 0 {
			continue
		}
		var s string
		if err := json.Unmarshal(it.Value, &s); err == nil {
			return s, true
		}
		return strings.TrimSpace(string(it.Value)), true
	}
	return "", false
}

// ParseCallback decodes a Daraja callback body into a PaymentCallback.
func ParseCallback(body []byte) (services.PaymentCallback, error) {
	var env CallbackEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return services.PaymentCallback{}, fmt.Errorf("%w: %v", ErrMalformedCallback, err)
	}
	cb := env.Body.STKCallback
	if strings.TrimSpace(cb.CheckoutRequestID) == "" {
		return services.PaymentCallback{}, fmt.Errorf("%w: missing CheckoutRequestID", ErrMalformedCallback)
	}
	out := services.PaymentCallback{
		CheckoutRequestID: cb.CheckoutRequestID,
		ResultCode:        cb.ResultCode,
		ResultDesc:        cb.ResultDesc,
	}
	if cb.ResultCode == 0 {
		out.ReceiptNumber, _ = cb.Item("MpesaReceiptNumber")
	}
	return out, nil
}

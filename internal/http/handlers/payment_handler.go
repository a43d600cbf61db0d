// Payment HTTP handlers.
//
//   - POST /customer/pay                    (push an M-Pesa prompt to the payer)
//   - GET  /customer/payment-status/{id}    (poll a transaction)
//   - POST /mpesa/callback                  (gateway settlement callback)
//
// Idempotency:
// When the client sends an Idempotency-Key and an earlier payment exists for
// the same route, caller and key, that transaction is returned with 200 and
// `Idempotency-Replayed: true` instead of prompting the payer again.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-vendor-backend/internal/domain"
	"github.com/tbourn/go-vendor-backend/internal/http/middleware"
	"github.com/tbourn/go-vendor-backend/internal/payment/mpesa"
	"github.com/tbourn/go-vendor-backend/internal/services"
)

//
// DTOs
//

// PayRequest is the JSON payload for initiating a payment.
type PayRequest struct {
	VendorID string  `json:"vendor_id" example:"vendor-42"`
	Phone    string  `json:"phone" example:"0712345678"`
	Amount   float64 `json:"amount" example:"150"`
}

// PaymentResponse describes a transaction. The payer's phone is not echoed.
type PaymentResponse struct {
	TransactionID     string    `json:"transaction_id"`
	CheckoutRequestID string    `json:"checkout_request_id" example:"ws_CO_010420251000001234"`
	VendorID          string    `json:"vendor_id"`
	Amount            float64   `json:"amount"`
	Status            string    `json:"status" enums:"PENDING,COMPLETED,FAILED"`
	ReceiptNumber     *string   `json:"receipt_number,omitempty"`
	ResultDesc        *string   `json:"result_desc,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// CallbackAck is the acknowledgement body the gateway expects.
type CallbackAck struct {
	ResultCode int    `json:"ResultCode"`
	ResultDesc string `json:"ResultDesc"`
}

func paymentResponse(tx *domain.Transaction) PaymentResponse {
	return PaymentResponse{
		TransactionID:     tx.ID,
		CheckoutRequestID: tx.CheckoutRequestID,
		VendorID:          tx.VendorID,
		Amount:            tx.Amount,
		Status:            tx.Status,
		ReceiptNumber:     tx.ReceiptNumber,
		ResultDesc:        tx.ResultDesc,
		CreatedAt:         tx.CreatedAt,
		UpdatedAt:         tx.UpdatedAt,
	}
}

//
// Handlers
//

// Pay godoc
// @ID          initiatePayment
// @Summary     Pay a vendor via M-Pesa
// @Description Sends an STK push prompt to the payer's phone and records a PENDING transaction. Supports idempotency via the Idempotency-Key header.
// @Tags        Payments
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header  string               false  "Idempotency key for safe retries"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       body             body    handlers.PayRequest  true   "Payment"
//
// @Success     201  {object}  handlers.PaymentResponse
// @Success     200  {object}  handlers.PaymentResponse  "Idempotent replay"
// @Header      200  {string}  Idempotency-Replayed  "true when served from a previous request"
// @Failure     400  {object}  handlers.ErrorResponse  "Validation failed"
// @Failure     404  {object}  handlers.ErrorResponse  "Vendor not found"
// @Failure     502  {object}  handlers.ErrorResponse  "Gateway error"
// @Failure     503  {object}  handlers.ErrorResponse  "Payments disabled"
// @Router      /customer/pay [post]
func (h *Handlers) Pay(c *gin.Context) {
	var req PayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	scope, key, _ := middleware.IdempotencyFrom(c)

	tx, replayed, err := h.pay.Initiate(c.Request.Context(), services.PaymentRequest{
		VendorID:  req.VendorID,
		Phone:     req.Phone,
		Amount:    req.Amount,
		IdemScope: scope,
		IdemKey:   key,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	if replayed {
		c.Header("Idempotency-Replayed", "true")
		ok(c, http.StatusOK, paymentResponse(tx))
		return
	}
	ok(c, http.StatusCreated, paymentResponse(tx))
}

// PaymentStatus godoc
// @ID          paymentStatus
// @Summary     Payment status
// @Description Looks a transaction up by checkout request id or transaction id.
// @Tags        Payments
// @Produce     json
//
// @Param       id  path  string  true  "Checkout request ID or transaction ID"
//
// @Success     200  {object}  handlers.PaymentResponse
// @Failure     404  {object}  handlers.ErrorResponse  "Transaction not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Storage failure"
// @Router      /customer/payment-status/{id} [get]
func (h *Handlers) PaymentStatus(c *gin.Context) {
	tx, err := h.pay.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, paymentResponse(tx))
}

// MPesaCallback godoc
// @ID          mpesaCallback
// @Summary     M-Pesa settlement callback
// @Description Receives the STK push result and settles the matching transaction once. Unknown checkout ids are acknowledged; storage failures return 500 so the gateway retries.
// @Tags        Payments
// @Accept      json
// @Produce     json
//
// @Param       body  body  mpesa.CallbackEnvelope  true  "Daraja callback"
//
// @Success     200  {object}  handlers.CallbackAck
// @Failure     400  {object}  handlers.CallbackAck
// @Failure     500  {object}  handlers.CallbackAck
// @Router      /mpesa/callback [post]
func (h *Handlers) MPesaCallback(c *gin.Context) {
	lg := middleware.LoggerFrom(c)
	body, err := c.GetRawData()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, CallbackAck{ResultCode: 1, ResultDesc: "Rejected"})
		return
	}
	cb, err := mpesa.ParseCallback(body)
	if err != nil {
		lg.Warn().Err(err).Msg("malformed mpesa callback")
		c.AbortWithStatusJSON(http.StatusBadRequest, CallbackAck{ResultCode: 1, ResultDesc: "Rejected"})
		return
	}

	tx, err := h.pay.HandleCallback(c.Request.Context(), cb)
	switch {
	case errors.Is(err, services.ErrTransactionNotFound):
		lg.Warn().Str("checkout_request_id", cb.CheckoutRequestID).Msg("callback for unknown transaction")
	case err != nil:
		lg.Error().Err(err).Str("checkout_request_id", cb.CheckoutRequestID).Msg("callback not applied")
		c.AbortWithStatusJSON(http.StatusInternalServerError, CallbackAck{ResultCode: 1, ResultDesc: "Failed"})
		return
	default:
		lg.Info().Str("transaction_id", tx.ID).Str("status", tx.Status).Msg("callback applied")
	}
	ok(c, http.StatusOK, CallbackAck{ResultCode: 0, ResultDesc: "Accepted"})
}

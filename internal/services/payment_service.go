// Package services – PaymentService
//
// This file implements customer push-payments to vendors. Initiation asks
// the PaymentGateway to prompt the customer's phone and records a PENDING
// transaction; the gateway later reports the outcome through HandleCallback,
// which settles the transaction exactly once.
//
// Initiation is idempotent per (scope, Idempotency-Key): a retried request
// returns the original transaction without prompting the phone again.
package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-vendor-backend/internal/domain"
	"github.com/tbourn/go-vendor-backend/internal/repo"
)

// ErrPaymentGateway wraps failures reported by the payment gateway.
var ErrPaymentGateway = errors.New("payment gateway error")

// STKPushRequest asks the gateway to prompt Phone for Amount.
type STKPushRequest struct {
	Phone       string
	Amount      int64
	AccountRef  string
	Description string
}

// STKPushResponse identifies an accepted prompt.
type STKPushResponse struct {
	CheckoutRequestID string
	MerchantRequestID string
	CustomerMessage   string
}

// PaymentGateway is the push-payment provider.
type PaymentGateway interface {
	STKPush(ctx context.Context, req STKPushRequest) (*STKPushResponse, error)
}

// PaymentCallback is the gateway's asynchronous outcome report. ResultCode 0
// means the customer paid.
type PaymentCallback struct {
	CheckoutRequestID string
	ResultCode        int
	ResultDesc        string
	ReceiptNumber     string
}

// PaymentRequest is a customer's request to pay a vendor.
type PaymentRequest struct {
	VendorID string
	Phone    string
	Amount   float64
	// IdemScope and IdemKey enable replay protection when both are set.
	IdemScope string
	IdemKey   string
}

// PaymentService coordinates the gateway and transaction persistence.
type PaymentService struct {
	DB             *gorm.DB
	Gateway        PaymentGateway
	IdempotencyTTL time.Duration
	Now            func() time.Time
}

// NewPaymentService returns a PaymentService. A nil gateway disables
// initiation (ErrPaymentsDisabled) while status reads keep working.
func NewPaymentService(db *gorm.DB, gw PaymentGateway, idemTTL time.Duration) *PaymentService {
	if idemTTL <= 0 {
		idemTTL = 24 * time.Hour
	}
	return &PaymentService{DB: db, Gateway: gw, IdempotencyTTL: idemTTL, Now: utcNow}
}

// Initiate validates the request, pushes the payment prompt and records a
// PENDING transaction. replayed is true when an earlier transaction was
// returned for the same idempotency key.
func (s *PaymentService) Initiate(ctx context.Context, req PaymentRequest) (tx *domain.Transaction, replayed bool, err error) {
	ctx, span := otel.Tracer("services/PaymentService").Start(ctx, "Initiate",
		trace.WithAttributes(attribute.String("vendor.id", req.VendorID)),
	)
	defer span.End()

	if s.Gateway == nil {
		return nil, false, ErrPaymentsDisabled
	}
	vendorID, err := normalizeVendorID(req.VendorID)
	if err != nil {
		return nil, false, err
	}
	phone, err := NormalizePhone(req.Phone)
	if err != nil {
		return nil, false, err
	}
	amount, err := wholeAmount(req.Amount)
	if err != nil {
		return nil, false, err
	}

	idem := req.IdemScope != "" && req.IdemKey != ""
	if idem {
		prev, err := s.replay(ctx, req.IdemScope, req.IdemKey)
		if err != nil {
			return nil, false, err
		}
		if prev != nil {
			span.SetAttributes(attribute.Bool("idempotent.replay", true))
			return prev, true, nil
		}
	}

	if _, err := repo.GetAvailability(ctx, s.DB, vendorID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, false, ErrVendorNotFound
		}
		return nil, false, persistence("load vendor", err)
	}

	resp, err := s.Gateway.STKPush(ctx, STKPushRequest{
		Phone:       phone,
		Amount:      amount,
		AccountRef:  vendorID,
		Description: "Payment to " + vendorID,
	})
	if err != nil {
		span.RecordError(err)
		return nil, false, fmt.Errorf("%w: %v", ErrPaymentGateway, err)
	}

	now := s.now()
	tx = &domain.Transaction{
		ID:                uuid.NewString(),
		VendorID:          vendorID,
		CustomerPhone:     phone,
		Amount:            float64(amount),
		CheckoutRequestID: resp.CheckoutRequestID,
		MerchantRequestID: resp.MerchantRequestID,
		Status:            domain.TxPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := repo.CreateTransaction(ctx, s.DB, tx); err != nil {
		return nil, false, persistence("create transaction", err)
	}
	paymentsTotal.WithLabelValues(domain.TxPending).Inc()

	if idem {
		if _, err := repo.CreateIdempotency(ctx, s.DB, req.IdemScope, req.IdemKey, tx.ID, http.StatusCreated, s.IdempotencyTTL); err != nil &&
			!errors.Is(err, repo.ErrDuplicate) {
			log.Warn().Err(err).Str("transaction_id", tx.ID).Msg("idempotency record not stored")
		}
	}
	log.Info().Str("transaction_id", tx.ID).Str("vendor_id", vendorID).Int64("amount", amount).Msg("payment initiated")
	return tx, false, nil
}

// HandleCallback settles the transaction named by cb. Repeated callbacks for
// a settled transaction return it unchanged.
func (s *PaymentService) HandleCallback(ctx context.Context, cb PaymentCallback) (*domain.Transaction, error) {
	ctx, span := otel.Tracer("services/PaymentService").Start(ctx, "HandleCallback",
		trace.WithAttributes(attribute.String("payment.checkout_id", cb.CheckoutRequestID)),
	)
	defer span.End()

	checkoutID := strings.TrimSpace(cb.CheckoutRequestID)
	if checkoutID == "" {
		return nil, invalid("checkout_request_id", "must not be empty")
	}

	status := domain.TxFailed
	var receipt *string
	if cb.ResultCode == 0 {
		status = domain.TxCompleted
		if r := strings.TrimSpace(cb.ReceiptNumber); r != "" {
			receipt = &r
		}
	}
	var desc *string
	if d := strings.TrimSpace(cb.ResultDesc); d != "" {
		desc = &d
	}

	settled, err := repo.SettleTransaction(ctx, s.DB, checkoutID, status, receipt, desc, s.now())
	if err != nil {
		return nil, persistence("settle transaction", err)
	}
	tx, err := repo.GetTransactionByCheckoutID(ctx, s.DB, checkoutID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, persistence("load transaction", err)
	}
	if settled {
		paymentsTotal.WithLabelValues(status).Inc()
		log.Info().Str("transaction_id", tx.ID).Str("status", status).Msg("payment settled")
	}
	return tx, nil
}

// Status returns a transaction by checkout request id or transaction id.
func (s *PaymentService) Status(ctx context.Context, id string) (*domain.Transaction, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, invalid("id", "must not be empty")
	}
	tx, err := repo.GetTransactionByCheckoutID(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		tx, err = repo.GetTransaction(ctx, s.DB, id)
	}
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, persistence("load transaction", err)
	}
	return tx, nil
}

func (s *PaymentService) replay(ctx context.Context, scope, key string) (*domain.Transaction, error) {
	rec, err := repo.GetIdempotency(ctx, s.DB, scope, key, s.now())
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, persistence("idempotency lookup", err)
	}
	tx, err := repo.GetTransaction(ctx, s.DB, rec.TransactionID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil
		}
		return nil, persistence("load transaction", err)
	}
	return tx, nil
}

func (s *PaymentService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return utcNow()
}

var kenyanMSISDN = regexp.MustCompile(`^254[17]\d{8}$`)

// NormalizePhone converts 07XXXXXXXX, 01XXXXXXXX, +2547XXXXXXXX and
// 2547XXXXXXXX forms into the 2547XXXXXXXX form the gateway expects.
func NormalizePhone(raw string) (string, error) {
	p := strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(raw))
	p = strings.TrimPrefix(p, "+")
	if strings.HasPrefix(p, "0") && len(p) == 10 {
		p = "254" + p[1:]
	}
	if !kenyanMSISDN.MatchString(p) {
		return "", invalid("phone", "expected a Kenyan mobile number such as 0712345678")
	}
	return p, nil
}

func wholeAmount(a float64) (int64, error) {
	if math.IsNaN(a) || math.IsInf(a, 0) || a < 1 || a != math.Trunc(a) {
		return 0, invalid("amount", "must be a whole number of at least 1")
	}
	return int64(a), nil
}

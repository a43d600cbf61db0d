package domain

import "time"

// Transaction statuses.
const (
	TxPending   = "PENDING"
	TxCompleted = "COMPLETED"
	TxFailed    = "FAILED"
)

// Transaction records a customer push-payment to a vendor. A row is created
// as PENDING when the gateway accepts the request and is settled exactly once
// by the gateway callback.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - VendorID: vendor being paid (indexed for admin views).
//   - CustomerPhone: MSISDN the payment prompt was pushed to.
//   - Amount: positive amount in the gateway currency.
//   - CheckoutRequestID: gateway correlation id, unique.
//   - MerchantRequestID: secondary gateway reference.
//   - ReceiptNumber: gateway receipt, set on completion.
//   - Status: PENDING, COMPLETED or FAILED.
//   - ResultDesc: gateway result description, set on settlement.
type Transaction struct {
	ID                string    `json:"id"                       gorm:"type:char(36);primaryKey"`
	VendorID          string    `json:"vendor_id"                gorm:"type:varchar(64);not null;index"`
	CustomerPhone     string    `json:"customer_phone"           gorm:"type:varchar(15);not null"`
	Amount            float64   `json:"amount"                   gorm:"not null;check:chk_tx_amount,amount > 0"`
	CheckoutRequestID string    `json:"checkout_request_id"      gorm:"type:varchar(64);not null;uniqueIndex"`
	MerchantRequestID string    `json:"merchant_request_id"      gorm:"type:varchar(64)"`
	ReceiptNumber     *string   `json:"receipt_number,omitempty" gorm:"type:varchar(32)"`
	Status            string    `json:"status"                   gorm:"type:varchar(16);not null;index;check:chk_tx_status,status IN ('PENDING','COMPLETED','FAILED')"`
	ResultDesc        *string   `json:"result_desc,omitempty"    gorm:"type:varchar(255)"`
	CreatedAt         time.Time `json:"created_at"               gorm:"index"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TableName returns the database table name for Transaction.
func (Transaction) TableName() string { return "transactions" }

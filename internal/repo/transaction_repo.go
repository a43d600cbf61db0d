// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// Transaction model.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-vendor-backend/internal/domain"
)

// ErrDuplicateCheckout is returned when a transaction with the same gateway
// checkout request id already exists.
var ErrDuplicateCheckout = errors.New("duplicate checkout request id")

// CreateTransaction inserts tx.
func CreateTransaction(ctx context.Context, db *gorm.DB, tx *domain.Transaction) error {
	if err := db.WithContext(ctx).Create(tx).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateCheckout
		}
		return err
	}
	return nil
}

// GetTransaction fetches a transaction by its id, or ErrNotFound.
func GetTransaction(ctx context.Context, db *gorm.DB, id string) (*domain.Transaction, error) {
	var t domain.Transaction
	if err := db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// GetTransactionByCheckoutID fetches a transaction by gateway checkout id.
func GetTransactionByCheckoutID(ctx context.Context, db *gorm.DB, checkoutID string) (*domain.Transaction, error) {
	var t domain.Transaction
	if err := db.WithContext(ctx).Where("checkout_request_id = ?", checkoutID).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// SettleTransaction moves a PENDING transaction to status. It reports false
// when the transaction is missing or was already settled.
func SettleTransaction(ctx context.Context, db *gorm.DB, checkoutID, status string, receipt, desc *string, now time.Time) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.Transaction{}).
		Where("checkout_request_id = ? AND status = ?", checkoutID, domain.TxPending).
		Updates(map[string]any{
			"status":         status,
			"receipt_number": receipt,
			"result_desc":    desc,
			"updated_at":     now,
		})
	return res.RowsAffected > 0, res.Error
}

// CountTransactions returns the total number of transactions.
func CountTransactions(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Transaction{}).Count(&total).Error
	return total, err
}

// ListTransactionsPage returns transactions newest first.
func ListTransactionsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Transaction, error) {
	var out []domain.Transaction
	err := db.WithContext(ctx).
		Order("created_at DESC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

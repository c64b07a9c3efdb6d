package models

import (
	"strings"
	"time"
)

// TransactionType is the direction of a transaction.
type TransactionType string

const (
	TransactionBuy  TransactionType = "buy"
	TransactionSell TransactionType = "sell"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == TransactionBuy || t == TransactionSell
}

// Transaction is an immutable record of a buy or sell event against one
// asset. Fields are never edited after creation; a transaction can only be
// deleted.
type Transaction struct {
	ID      string          `json:"id" badgerhold:"key"`
	AssetID string          `json:"asset_id" badgerhold:"index"`
	Type    TransactionType `json:"type"`
	Amount  float64         `json:"amount"`
	Price   float64         `json:"price"`
	Total   float64         `json:"total"` // amount * price, computed on create
	Date    time.Time       `json:"date"`
	Notes   string          `json:"notes,omitempty"`
}

// Validate checks the caller-supplied fields before the transaction is
// written. Total is derived, so it is not validated here.
func (tx *Transaction) Validate() error {
	if strings.TrimSpace(tx.AssetID) == "" {
		return validationError("transaction asset_id is required")
	}
	if !tx.Type.Valid() {
		return validationError("unknown transaction type %q", tx.Type)
	}
	if tx.Amount <= 0 {
		return validationError("transaction amount must be positive")
	}
	if tx.Price < 0 {
		return validationError("transaction price must not be negative")
	}
	if tx.Date.IsZero() {
		return validationError("transaction date is required")
	}
	return nil
}

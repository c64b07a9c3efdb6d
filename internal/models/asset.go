// Package models defines data structures for Folio
package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned by stores when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrValidation marks errors caused by bad caller input. Handlers map it to
// a 400 response.
var ErrValidation = errors.New("validation failed")

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrValidation)...)
}

// AssetType classifies a tracked holding. The set is closed.
type AssetType string

const (
	AssetStockTW AssetType = "stock_tw" // Taiwan-listed equity
	AssetStockUS AssetType = "stock_us" // US-listed equity
	AssetCrypto  AssetType = "crypto"
	AssetCash    AssetType = "cash"
	AssetDeFi    AssetType = "defi"
	AssetWallet  AssetType = "wallet" // self-custody wallet holding
)

// Valid reports whether t is one of the known asset types.
func (t AssetType) Valid() bool {
	switch t {
	case AssetStockTW, AssetStockUS, AssetCrypto, AssetCash, AssetDeFi, AssetWallet:
		return true
	}
	return false
}

// LivePriced reports whether assets of this type are eligible for
// automatic price lookups. Cash, DeFi positions, and wallet balances
// have no quote source and keep their manually entered price.
func (t AssetType) LivePriced() bool {
	switch t {
	case AssetStockTW, AssetStockUS, AssetCrypto:
		return true
	}
	return false
}

// Asset represents a tracked holding.
type Asset struct {
	ID               string    `json:"id" badgerhold:"key"`
	Name             string    `json:"name"`
	Type             AssetType `json:"type"`
	Symbol           string    `json:"symbol,omitempty"`
	Amount           float64   `json:"amount"`
	Cost             float64   `json:"cost"`
	CurrentPrice     float64   `json:"current_price"`
	MarketValue      float64   `json:"market_value"`
	Profit           float64   `json:"profit"`
	ProfitPercentage float64   `json:"profit_percentage"`
	LastUpdated      time.Time `json:"last_updated"`
	Notes            string    `json:"notes,omitempty"`

	// Typed metadata, present only for the matching asset type.
	DeFi   *DeFiMetadata   `json:"defi,omitempty"`
	Wallet *WalletMetadata `json:"wallet,omitempty"`
}

// DeFiMetadata describes a decentralized-finance position.
// JSON tags match the legacy notes payload so old records decode directly.
type DeFiMetadata struct {
	Protocol     string  `json:"protocol"`
	PositionType string  `json:"type"` // e.g. "lending", "staking", "lp"
	Blockchain   string  `json:"blockchain"`
	APY          float64 `json:"apy,omitempty"`
	HealthFactor float64 `json:"healthFactor,omitempty"`
	RiskLevel    string  `json:"riskLevel,omitempty"`
}

// WalletMetadata describes a self-custody wallet holding.
type WalletMetadata struct {
	Address    string `json:"address"`
	Blockchain string `json:"blockchain"`
}

// Derived holds the recomputed fields produced by Derive.
type Derived struct {
	MarketValue      float64
	Profit           float64
	ProfitPercentage float64
	LastUpdated      time.Time
}

// Derive computes an asset's derived fields from amount, cost basis, and
// unit price. Pure apart from the caller-supplied clock value.
//
// When cost is zero the profit percentage is 0 — never Inf or NaN.
func Derive(amount, cost, price float64, now time.Time) Derived {
	marketValue := amount * price
	profit := marketValue - cost

	var profitPct float64
	if cost != 0 {
		profitPct = profit / cost * 100
	}

	return Derived{
		MarketValue:      marketValue,
		Profit:           profit,
		ProfitPercentage: profitPct,
		LastUpdated:      now,
	}
}

// Recalculate applies Derive to the asset's own fields.
// Every mutation path (create, edit, price update, transaction posting)
// goes through here so the derived fields cannot drift.
func (a *Asset) Recalculate(now time.Time) {
	d := Derive(a.Amount, a.Cost, a.CurrentPrice, now)
	a.MarketValue = d.MarketValue
	a.Profit = d.Profit
	a.ProfitPercentage = d.ProfitPercentage
	a.LastUpdated = d.LastUpdated
}

// ErrOversell is returned when a sell transaction exceeds the held amount.
var ErrOversell = errors.New("sell amount exceeds held amount")

// ApplyTransaction adjusts the asset's amount and cost basis for a posted
// transaction and recalculates derived fields. Buys add amount and
// amount*price to cost; sells subtract both. A sell larger than the held
// amount is rejected with ErrOversell.
func (a *Asset) ApplyTransaction(tx *Transaction, now time.Time) error {
	switch tx.Type {
	case TransactionBuy:
		a.Amount += tx.Amount
		a.Cost += tx.Amount * tx.Price
	case TransactionSell:
		if tx.Amount > a.Amount {
			return fmt.Errorf("%w: selling %.8g of %.8g held", ErrOversell, tx.Amount, a.Amount)
		}
		a.Amount -= tx.Amount
		a.Cost -= tx.Amount * tx.Price
	default:
		return fmt.Errorf("unknown transaction type %q", tx.Type)
	}

	a.Recalculate(now)
	return nil
}

// Validate checks the fields a caller must supply before an asset is written.
func (a *Asset) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return validationError("asset name is required")
	}
	if !a.Type.Valid() {
		return validationError("unknown asset type %q", a.Type)
	}
	if a.Amount < 0 {
		return validationError("asset amount must not be negative")
	}
	if a.CurrentPrice < 0 {
		return validationError("asset price must not be negative")
	}
	if a.Type.LivePriced() && strings.TrimSpace(a.Symbol) == "" {
		return validationError("symbol is required for %s assets", a.Type)
	}
	return nil
}

// DecodeNotesMetadata migrates the legacy convention of stashing structured
// JSON in the notes field. If the asset is a DeFi or wallet holding with no
// typed metadata yet and notes holds a JSON object, the object is decoded
// into the matching variant and notes is cleared.
func (a *Asset) DecodeNotesMetadata() {
	trimmed := strings.TrimSpace(a.Notes)
	if !strings.HasPrefix(trimmed, "{") {
		return
	}

	switch a.Type {
	case AssetDeFi:
		if a.DeFi != nil {
			return
		}
		var meta DeFiMetadata
		if err := json.Unmarshal([]byte(trimmed), &meta); err == nil && meta.Protocol != "" {
			a.DeFi = &meta
			a.Notes = ""
		}
	case AssetWallet:
		if a.Wallet != nil {
			return
		}
		var meta WalletMetadata
		if err := json.Unmarshal([]byte(trimmed), &meta); err == nil && meta.Address != "" {
			a.Wallet = &meta
			a.Notes = ""
		}
	}
}

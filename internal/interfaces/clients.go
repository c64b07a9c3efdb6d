// Package interfaces defines service contracts for Folio
package interfaces

import "context"

// EquityQuoteClient looks up the latest traded price for an equity symbol.
// The symbol is passed exactly as it should appear in the upstream request;
// market suffixing (e.g. ".TW") is the caller's concern.
type EquityQuoteClient interface {
	GetPrice(ctx context.Context, symbol string) (float64, error)
}

// CryptoQuoteClient looks up the latest price for a coin identifier,
// denominated in the service's reference currency.
type CryptoQuoteClient interface {
	GetPrice(ctx context.Context, id string) (float64, error)
}

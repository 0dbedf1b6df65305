package contracts

import "errors"

// Error taxonomy for the duel engine. Callers match with errors.Is.
var (
	// ErrInvalidInput marks a request rejected before any external call
	// (bad size, timeframe or entry count). Never retried.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound marks an unknown bracket or personality id.
	ErrNotFound = errors.New("not found")

	// ErrInvalidSize marks an unsupported bracket size given to the
	// match builder. Fatal, never retried.
	ErrInvalidSize = errors.New("invalid bracket size")

	// ErrIncompleteData marks a scoring attempt before every entry has
	// an end price. Fatal to that call.
	ErrIncompleteData = errors.New("incomplete entry data")

	// ErrUnavailable marks an unreachable market-data provider. Retryable;
	// sourcing degrades to the fallback pool when retries exhaust.
	ErrUnavailable = errors.New("market data unavailable")

	// ErrSymbolNotFound marks an unknown symbol at the provider.
	ErrSymbolNotFound = errors.New("symbol not found")
)

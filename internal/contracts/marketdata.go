package contracts

import "context"

// Quote is a point-in-time snapshot for one symbol
type Quote struct {
	Symbol        string   `json:"symbol"`
	Name          string   `json:"name"`
	Price         float64  `json:"price"`
	ChangePercent float64  `json:"change_percent"`
	Sector        string   `json:"sector"`
	MarketCap     float64  `json:"market_cap"`
	PERatio       *float64 `json:"pe_ratio,omitempty"`
	DividendYield *float64 `json:"dividend_yield,omitempty"`
	AssetType     string   `json:"asset_type"` // stock, etf
}

// CandidateStock is a symbol with the metrics the AI picker ranks on
type CandidateStock struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	ChangePercent float64 `json:"change_percent"` // recent % change
	Sector        string  `json:"sector"`
	MarketCap     float64 `json:"market_cap"`
	PERatio       float64 `json:"pe_ratio"`       // 0 when unknown
	DividendYield float64 `json:"dividend_yield"` // 0 when unknown
	Growth        float64 `json:"growth"`         // revenue/earnings growth, 0 when unknown
	AssetType     string  `json:"asset_type"`
}

// MarketData is the external quote provider.
//
// GetQuote fails with ErrSymbolNotFound or ErrUnavailable. Search never
// fails; it returns an empty list on no matches or transient errors.
type MarketData interface {
	GetQuote(ctx context.Context, symbol string) (*Quote, error)
	Search(ctx context.Context, query string, limit int) []CandidateStock
}

// UsageRecorder receives a tick for every provider call. Injected into
// the sourcer and the lifecycle service instead of a global counter.
type UsageRecorder interface {
	RecordCall(kind string, ok bool)
}

// NopUsageRecorder discards all usage ticks
type NopUsageRecorder struct{}

func (NopUsageRecorder) RecordCall(string, bool) {}

package domain

import (
	"time"
)

// TradeTick is one row of the analytics engine's per-trade time series,
// as loaded by the ingestion loader.
type TradeTick struct {
	ID             uint    `gorm:"primaryKey" json:"-"`
	RunID          string  `gorm:"index" json:"run_id"`
	Timestamp      int64   `gorm:"index" json:"timestamp"` // nanoseconds
	SequenceNum    int64   `json:"sequence_num"`
	TradePrice     float64 `json:"trade_price"`
	TradeQuantity  int64   `json:"trade_quantity"`
	Spread         float64 `json:"spread"`
	SpreadBps      float64 `json:"spread_bps"`
	Microprice     float64 `json:"microprice"`
	Imbalance      float64 `json:"imbalance"`
	TickVol        float64 `json:"tick_vol"`
	DepthImbalance float64 `json:"depth_imbalance"`
	AggressorSide  string  `gorm:"index" json:"aggressor_side"`
}

// RunSummary holds the aggregate analytics metrics of one replay run.
type RunSummary struct {
	RunID     string    `gorm:"primaryKey" json:"run_id"`
	CreatedAt time.Time `json:"created_at"`

	TradeCount int64 `json:"trade_count"`

	CurrentSpreadBps      float64 `json:"current_spread_bps"`
	AvgSpreadBps          float64 `json:"avg_spread_bps"`
	MinSpreadBps          float64 `json:"min_spread_bps"`
	MaxSpreadBps          float64 `json:"max_spread_bps"`
	AvgEffectiveSpreadBps float64 `json:"avg_effective_spread_bps"`
	SpreadSamples         int64   `json:"spread_samples"`

	Microprice float64 `json:"microprice"`

	CurrentImbalance float64 `json:"current_imbalance"`
	BuyVolume        float64 `json:"buy_volume"`
	SellVolume       float64 `json:"sell_volume"`

	TickVolatility    float64 `json:"tick_volatility"`
	TickReturnCount   int64   `json:"tick_return_count"`
	TimeBarVolatility float64 `json:"time_bar_volatility"`
	TimeBarCount      int64   `json:"time_bar_count"`

	KyleLambda            float64 `json:"kyle_lambda"`
	AvgTemporaryImpactBps float64 `json:"avg_temporary_impact_bps"`
	AvgPermanentImpactBps float64 `json:"avg_permanent_impact_bps"`
	ImpactSamples         int64   `json:"impact_samples"`
}

// DepthLevel is one price level of the book depth profile, per side.
type DepthLevel struct {
	ID              uint    `gorm:"primaryKey" json:"-"`
	RunID           string  `gorm:"index" json:"run_id"`
	Side            string  `json:"side"` // "bid" or "ask"
	Level           int     `json:"level"`
	CurrentQuantity float64 `json:"current_quantity"`
	AvgQuantity     float64 `json:"avg_quantity"`
}

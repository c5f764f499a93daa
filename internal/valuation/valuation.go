// Package valuation derives current value and unrealized gain/loss from
// position snapshots. All functions are pure.
package valuation

import "github.com/ndewijer/Investment-Ledger-Backend/internal/model"

// CurrentValue is the position valued at its last traded price.
func CurrentValue(p model.Position) float64 {
	return p.Quantity * p.LastTradedPrice
}

// InvestedValue is the cost basis of the units currently held.
func InvestedValue(p model.Position) float64 {
	return p.Quantity * p.AverageCost
}

// GainLoss is the unrealized gain (positive) or loss (negative).
func GainLoss(p model.Position) float64 {
	return CurrentValue(p) - InvestedValue(p)
}

// GainLossPercent is GainLoss relative to InvestedValue, in percent.
// It is 0 when nothing is invested.
func GainLossPercent(p model.Position) float64 {
	return percent(GainLoss(p), InvestedValue(p))
}

// Value attaches the derived valuation fields to p.
func Value(p model.Position) model.PositionValuation {
	current := CurrentValue(p)
	invested := InvestedValue(p)
	gain := current - invested

	return model.PositionValuation{
		Position:        p,
		CurrentValue:    current,
		InvestedValue:   invested,
		GainLoss:        gain,
		GainLossPercent: percent(gain, invested),
	}
}

// ValueAll is Value over a slice. It always returns a non-nil slice.
func ValueAll(positions []model.Position) []model.PositionValuation {
	result := make([]model.PositionValuation, len(positions))
	for i, p := range positions {
		result[i] = Value(p)
	}
	return result
}

// Summarize aggregates an owner's positions. transactionCount is the number
// of the owner's journal entries and is reported as-is.
func Summarize(positions []model.Position, transactionCount int) model.PortfolioSummary {
	var totalValue, totalInvested float64
	for _, p := range positions {
		totalValue += CurrentValue(p)
		totalInvested += InvestedValue(p)
	}
	gain := totalValue - totalInvested

	return model.PortfolioSummary{
		TotalValue:       totalValue,
		TotalInvested:    totalInvested,
		TotalGainLoss:    gain,
		GainLossPercent:  percent(gain, totalInvested),
		PositionCount:    len(positions),
		TransactionCount: transactionCount,
	}
}

func percent(gain, invested float64) float64 {
	if invested > 0 {
		return gain / invested * 100
	}
	return 0
}

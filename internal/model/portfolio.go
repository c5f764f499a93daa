package model

// PortfolioSummary represents the aggregate valuation of all of an owner's
// positions. GainLossPercent is zero when nothing is invested.
type PortfolioSummary struct {
	TotalValue       float64 `json:"totalValue"`       // Sum of quantity * last traded price
	TotalInvested    float64 `json:"totalInvested"`    // Sum of quantity * average cost
	TotalGainLoss    float64 `json:"totalGainLoss"`    // Unrealized gain/loss
	GainLossPercent  float64 `json:"gainLossPercent"`  // TotalGainLoss relative to TotalInvested
	PositionCount    int     `json:"positionCount"`    // Number of positions, including empty ones
	TransactionCount int     `json:"transactionCount"` // Number of journal entries
}

// Discrepancy is the result of replaying a position's journal and comparing
// the outcome with the stored position.
type Discrepancy struct {
	PositionID          string  `json:"positionId"`
	OwnerID             string  `json:"ownerId"`
	Symbol              string  `json:"symbol"`
	StoredQuantity      float64 `json:"storedQuantity"`
	ReplayedQuantity    float64 `json:"replayedQuantity"`
	StoredAverageCost   float64 `json:"storedAverageCost"`
	ReplayedAverageCost float64 `json:"replayedAverageCost"`
	EntryCount          int     `json:"entryCount"`
	Consistent          bool    `json:"consistent"`
	ReplayError         string  `json:"replayError,omitempty"`
}

package model

import "time"

// AssetKind classifies a position. It is informational only and has no
// effect on valuation.
type AssetKind string

const (
	AssetKindStock      AssetKind = "STOCK"
	AssetKindBond       AssetKind = "BOND"
	AssetKindMutualFund AssetKind = "MUTUAL_FUND"
	AssetKindETF        AssetKind = "ETF"
)

// Valid reports whether k is one of the supported asset kinds.
func (k AssetKind) Valid() bool {
	switch k {
	case AssetKindStock, AssetKindBond, AssetKindMutualFund, AssetKindETF:
		return true
	}
	return false
}

// Position is an owner's current holding in a single symbol.
// Quantity is never negative. AverageCost is the quantity-weighted mean
// price paid per unit and is treated as zero by valuation when Quantity is zero.
type Position struct {
	ID              string    `json:"id"`
	OwnerID         string    `json:"ownerId"`
	Symbol          string    `json:"symbol"`
	Name            string    `json:"name"`
	AssetKind       AssetKind `json:"assetKind"`
	Quantity        float64   `json:"quantity"`
	AverageCost     float64   `json:"averageCost"`
	LastTradedPrice float64   `json:"lastTradedPrice"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// PositionValuation is a position together with its derived valuation.
// Used for API responses.
type PositionValuation struct {
	Position
	CurrentValue    float64 `json:"currentValue"`
	InvestedValue   float64 `json:"investedValue"`
	GainLoss        float64 `json:"gainLoss"`
	GainLossPercent float64 `json:"gainLossPercent"`
}

// PositionPatch lists the fields that may be corrected administratively.
// A nil field is left unchanged.
type PositionPatch struct {
	Symbol          *string
	Name            *string
	Quantity        *float64
	LastTradedPrice *float64
}

// Empty reports whether the patch changes nothing.
func (p PositionPatch) Empty() bool {
	return p.Symbol == nil && p.Name == nil && p.Quantity == nil && p.LastTradedPrice == nil
}

package request

// CreatePositionRequest represents the request body for opening a position.
// The opening BUY of Quantity units at Price is journaled automatically.
type CreatePositionRequest struct {
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	AssetKind string  `json:"assetKind"`
	Quantity  float64 `json:"quantity"`
	Price     float64 `json:"price"`
}

// UpdatePositionRequest carries an administrative correction. Omitted fields
// are left unchanged.
type UpdatePositionRequest struct {
	Symbol          *string  `json:"symbol,omitempty"`
	Name            *string  `json:"name,omitempty"`
	Quantity        *float64 `json:"quantity,omitempty"`
	LastTradedPrice *float64 `json:"lastTradedPrice,omitempty"`
}

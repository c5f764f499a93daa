package request

type CreateTransactionRequest struct {
	PositionID   string  `json:"positionId"`
	Kind         string  `json:"kind"`
	Quantity     float64 `json:"quantity"`
	PricePerUnit float64 `json:"pricePerUnit"`
	Notes        string  `json:"notes,omitempty"`
}

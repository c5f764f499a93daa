package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ndewijer/Investment-Ledger-Backend/internal/api/request"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/ledger"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/model"
)

// ValidateCreatePosition validates a position creation request.
//
// Required fields:
//   - symbol: Must not be blank
//   - assetKind: Must be one of: STOCK, BOND, MUTUAL_FUND, ETF
//   - quantity: Must be positive
//   - price: Must be positive
//
// Optional fields:
//   - name: At most 100 characters
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateCreatePosition(req request.CreatePositionRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Symbol) == "" {
		errors["symbol"] = "symbol is required"
	}

	if utf8.RuneCountInString(strings.TrimSpace(req.Name)) > ledger.MaxNameLength {
		errors["name"] = fmt.Sprintf("name must be %d characters or less", ledger.MaxNameLength)
	}

	if strings.TrimSpace(req.AssetKind) == "" {
		errors["assetKind"] = "assetKind is required"
	} else if !model.AssetKind(req.AssetKind).Valid() {
		errors["assetKind"] = fmt.Sprintf("invalid assetKind: %s", req.AssetKind)
	}

	if !(req.Quantity > 0) {
		errors["quantity"] = "quantity must be positive"
	}

	if !(req.Price > 0) {
		errors["price"] = "price must be positive"
	}

	return newError(errors)
}

// ValidateUpdatePosition validates an administrative correction.
// At least one field must be provided; each provided field must satisfy its own rule.
func ValidateUpdatePosition(req request.UpdatePositionRequest) error {
	errors := make(map[string]string)

	if req.Symbol == nil && req.Name == nil && req.Quantity == nil && req.LastTradedPrice == nil {
		errors["request"] = "at least one field must be provided"
	}

	if req.Symbol != nil && strings.TrimSpace(*req.Symbol) == "" {
		errors["symbol"] = "symbol cannot be empty"
	}

	if req.Name != nil && utf8.RuneCountInString(strings.TrimSpace(*req.Name)) > ledger.MaxNameLength {
		errors["name"] = fmt.Sprintf("name must be %d characters or less", ledger.MaxNameLength)
	}

	if req.Quantity != nil && *req.Quantity < 0 {
		errors["quantity"] = "quantity cannot be negative"
	}

	if req.LastTradedPrice != nil && !(*req.LastTradedPrice > 0) {
		errors["lastTradedPrice"] = "lastTradedPrice must be positive"
	}

	return newError(errors)
}

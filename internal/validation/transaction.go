package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ndewijer/Investment-Ledger-Backend/internal/api/request"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/ledger"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/model"
)

// ValidateCreateTransaction validates a transaction request.
// Kinds are matched case-insensitively.
//
// Required fields:
//   - positionId: Must be a valid UUID
//   - kind: Must be BUY or SELL
//   - quantity: Must be positive
//   - pricePerUnit: Must be positive
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateCreateTransaction(req request.CreateTransactionRequest) error {
	errors := make(map[string]string)

	if err := ValidateUUID(req.PositionID); err != nil {
		errors["positionId"] = err.Error()
	}

	if strings.TrimSpace(req.Kind) == "" {
		errors["kind"] = "kind is required"
	} else if !model.TransactionKind(strings.ToUpper(req.Kind)).Valid() {
		errors["kind"] = fmt.Sprintf("invalid kind: %s", req.Kind)
	}

	if !(req.Quantity > 0) {
		errors["quantity"] = "quantity must be positive"
	}

	if !(req.PricePerUnit > 0) {
		errors["pricePerUnit"] = "pricePerUnit must be positive"
	}

	if utf8.RuneCountInString(req.Notes) > ledger.MaxNotesLength {
		errors["notes"] = fmt.Sprintf("notes must be %d characters or less", ledger.MaxNotesLength)
	}

	return newError(errors)
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Investment-Ledger-Backend/internal/api/request"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/api/response"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/model"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/service"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/validation"
)

// TransactionHandler handles HTTP requests for transaction endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the services. Trades go through the PositionService
// because they change the position they are applied to.
type TransactionHandler struct {
	positionService    *service.PositionService
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler with the provided service dependencies.
func NewTransactionHandler(positionService *service.PositionService, transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		positionService:    positionService,
		transactionService: transactionService,
	}
}

// Transactions handles GET requests to page through the caller's journal, newest first.
//
// Endpoint: GET /api/transaction?offset=0&limit=100&positionId={uuid}
// Response: 200 OK with array of TransactionResponse
// Error: 400 Bad Request if offset, limit or positionId is malformed
// Error: 404 Not Found if positionId is not held by the caller
func (h *TransactionHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}

	filter, fields := parseTransactionFilter(r)
	if len(fields) > 0 {
		response.RespondError(w, http.StatusBadRequest, "invalid query parameters", (&validation.Error{Fields: fields}).Error())
		return
	}

	transactions, err := h.transactionService.ListTransactions(r.Context(), ownerID, filter)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveTransactions)
		return
	}

	response.RespondJSON(w, http.StatusOK, transactions)
}

func parseTransactionFilter(r *http.Request) (model.TransactionFilter, map[string]string) {
	var filter model.TransactionFilter
	fields := make(map[string]string)
	q := r.URL.Query()

	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			fields["offset"] = "offset must be a non-negative integer"
		}
		filter.Offset = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			fields["limit"] = "limit must be a non-negative integer"
		}
		filter.Limit = n
	}
	if v := q.Get("positionId"); v != "" {
		if err := validation.ValidateUUID(v); err != nil {
			fields["positionId"] = err.Error()
		}
		filter.PositionID = v
	}

	return filter, fields
}

// GetTransaction handles GET requests to retrieve a single journal entry.
//
// Endpoint: GET /api/transaction/{uuid}
// Response: 200 OK with TransactionResponse
// Error: 404 Not Found if transaction not found
func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}

	transaction, err := h.transactionService.GetTransaction(r.Context(), ownerID, chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveTransaction)
		return
	}

	response.RespondJSON(w, http.StatusOK, transaction)
}

// CreateTransaction handles POST requests to apply a BUY or SELL to a position.
//
// Endpoint: POST /api/transaction
// Request Body: CreateTransactionRequest (positionId, kind, quantity, pricePerUnit, notes)
// Response: 201 Created with TransactionResponse
// Error: 400 Bad Request if validation fails or the sell exceeds the holding
// Error: 404 Not Found if the caller holds no such position
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}

	req, err := parseJSON[request.CreateTransactionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateTransaction(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	transaction, err := h.positionService.ApplyTransaction(r.Context(), ownerID, req)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToCreateTransaction)
		return
	}

	response.RespondJSON(w, http.StatusCreated, transaction)
}

// DeleteTransaction handles DELETE requests to remove a journal entry. The
// owning position is rebuilt from the remaining entries.
//
// Endpoint: DELETE /api/transaction/{uuid}
// Response: 204 No Content
// Error: 400 Bad Request if the remaining journal would oversell
// Error: 404 Not Found if transaction not found
func (h *TransactionHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}

	if err := h.transactionService.DeleteTransaction(r.Context(), ownerID, chi.URLParam(r, "uuid")); err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToDeleteTransaction)
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// ExportTransactions handles GET requests to download the caller's whole journal as CSV.
//
// Endpoint: GET /api/transaction/export
// Response: 200 OK with text/csv attachment, oldest entry first
func (h *TransactionHandler) ExportTransactions(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}

	body, err := h.transactionService.ExportTransactions(r.Context(), ownerID)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToExportTransactions)
		return
	}

	response.RespondCSV(w, "transactions.csv", body)
}

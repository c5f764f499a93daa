package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Investment-Ledger-Backend/internal/api/request"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/api/response"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/service"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/validation"
)

// PositionHandler handles HTTP requests for position endpoints.
type PositionHandler struct {
	positionService *service.PositionService
	auditService    *service.AuditService
}

// NewPositionHandler creates a new PositionHandler with the provided service dependencies.
func NewPositionHandler(positionService *service.PositionService, auditService *service.AuditService) *PositionHandler {
	return &PositionHandler{
		positionService: positionService,
		auditService:    auditService,
	}
}

// Positions handles GET requests to list the caller's positions with their valuation.
//
// Endpoint: GET /api/position
// Response: 200 OK with array of PositionValuation ordered by symbol
func (h *PositionHandler) Positions(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}

	positions, err := h.positionService.ListPositions(r.Context(), ownerID)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrievePositions)
		return
	}

	response.RespondJSON(w, http.StatusOK, positions)
}

// GetPosition handles GET requests to retrieve a single position.
//
// Endpoint: GET /api/position/{uuid}
// Response: 200 OK with PositionValuation
// Error: 404 Not Found if the caller holds no such position
func (h *PositionHandler) GetPosition(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}

	position, err := h.positionService.GetPosition(r.Context(), ownerID, chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrievePosition)
		return
	}

	response.RespondJSON(w, http.StatusOK, position)
}

// CreatePosition handles POST requests to open a position. The opening
// quantity and price are journaled as a BUY.
//
// Endpoint: POST /api/position
// Request Body: CreatePositionRequest (symbol, name, assetKind, quantity, price)
// Response: 201 Created with PositionValuation
// Error: 400 Bad Request if validation fails
// Error: 409 Conflict if the caller already holds the symbol
func (h *PositionHandler) CreatePosition(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}

	req, err := parseJSON[request.CreatePositionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreatePosition(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	position, err := h.positionService.OpenPosition(r.Context(), ownerID, req)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToCreatePosition)
		return
	}

	response.RespondJSON(w, http.StatusCreated, position)
}

// UpdatePosition handles PUT requests carrying an administrative correction.
// The correction is not journaled.
//
// Endpoint: PUT /api/position/{uuid}
// Request Body: UpdatePositionRequest (all fields optional, at least one required)
// Response: 200 OK with PositionValuation
// Error: 400 Bad Request if validation fails
// Error: 404 Not Found if the caller holds no such position
// Error: 409 Conflict if the new symbol is already held
func (h *PositionHandler) UpdatePosition(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}

	req, err := parseJSON[request.UpdatePositionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateUpdatePosition(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	position, err := h.positionService.UpdatePosition(r.Context(), ownerID, chi.URLParam(r, "uuid"), req)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToUpdatePosition)
		return
	}

	response.RespondJSON(w, http.StatusOK, position)
}

// DeletePosition handles DELETE requests to close a position and drop its journal.
//
// Endpoint: DELETE /api/position/{uuid}
// Response: 204 No Content
// Error: 404 Not Found if the caller holds no such position
func (h *PositionHandler) DeletePosition(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}

	if err := h.positionService.ClosePosition(r.Context(), ownerID, chi.URLParam(r, "uuid")); err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToDeletePosition)
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// AuditPosition handles GET requests to compare a position with its replayed journal.
//
// Endpoint: GET /api/position/{uuid}/audit
// Response: 200 OK with Discrepancy
// Error: 404 Not Found if the caller holds no such position
func (h *PositionHandler) AuditPosition(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}

	report, err := h.auditService.ReconcilePosition(r.Context(), ownerID, chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToReconcile)
		return
	}

	response.RespondJSON(w, http.StatusOK, report)
}

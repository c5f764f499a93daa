package handlers

import (
	"net/http"

	"github.com/ndewijer/Investment-Ledger-Backend/internal/api/response"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/service"
)

// PortfolioHandler handles HTTP requests for portfolio endpoints.
type PortfolioHandler struct {
	portfolioService *service.PortfolioService
}

// NewPortfolioHandler creates a new PortfolioHandler with the provided service dependency.
func NewPortfolioHandler(portfolioService *service.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: portfolioService,
	}
}

// PortfolioSummary handles GET requests for the caller's aggregated valuation.
//
// Endpoint: GET /api/portfolio/summary
// Response: 200 OK with PortfolioSummary
// Error: 500 Internal Server Error if the summary cannot be computed
func (h *PortfolioHandler) PortfolioSummary(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}

	summary, err := h.portfolioService.GetSummary(r.Context(), ownerID)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToGetPortfolioSummary)
		return
	}

	response.RespondJSON(w, http.StatusOK, summary)
}

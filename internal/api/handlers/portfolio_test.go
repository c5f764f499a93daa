package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ndewijer/Investment-Ledger-Backend/internal/model"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/testutil"
)

func TestPortfolioHandler_PortfolioSummary(t *testing.T) {
	t.Run("returns the caller's summary", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)
		handler := NewPortfolioHandler(svc.Portfolio)
		owner := testutil.MakeID()

		p := testutil.NewPosition(owner).WithHolding(10, 100).WithLastTradedPrice(120).Build(t, db)
		testutil.NewTransaction(p).Build(t, db)
		testutil.NewPosition(testutil.MakeID()).Build(t, db)

		req := testutil.AsOwner(httptest.NewRequest(http.MethodGet, "/api/portfolio/summary", nil), owner)
		w := httptest.NewRecorder()

		handler.PortfolioSummary(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response model.PortfolioSummary
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response.TotalValue != 1200 {
			t.Errorf("Expected totalValue 1200, got %f", response.TotalValue)
		}
		if response.TotalGainLoss != 200 {
			t.Errorf("Expected totalGainLoss 200, got %f", response.TotalGainLoss)
		}
		if response.GainLossPercent != 20 {
			t.Errorf("Expected gainLossPercent 20, got %f", response.GainLossPercent)
		}
		if response.PositionCount != 1 || response.TransactionCount != 1 {
			t.Errorf("Expected 1 position and 1 transaction, got %d and %d", response.PositionCount, response.TransactionCount)
		}
	})

	t.Run("returns 500 on database error", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)
		handler := NewPortfolioHandler(svc.Portfolio)
		db.Close()

		req := testutil.AsOwner(httptest.NewRequest(http.MethodGet, "/api/portfolio/summary", nil), testutil.MakeID())
		w := httptest.NewRecorder()

		handler.PortfolioSummary(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Errorf("Expected 500, got %d: %s", w.Code, w.Body.String())
		}
	})
}

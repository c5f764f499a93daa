package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ndewijer/Investment-Ledger-Backend/internal/api/request"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/model"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/testutil"
)

func setupPositionHandler(t *testing.T) (*PositionHandler, *sql.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestServices(t, db)
	return NewPositionHandler(svc.Positions, svc.Audit), db
}

func withParam(req *http.Request, id string) *http.Request {
	return testutil.WithURLParams(req, map[string]string{"uuid": id})
}

func TestPositionHandler_Positions(t *testing.T) {
	t.Run("returns empty array when no positions exist", func(t *testing.T) {
		handler, _ := setupPositionHandler(t)

		req := testutil.AsOwner(httptest.NewRequest(http.MethodGet, "/api/position", nil), testutil.MakeID())
		w := httptest.NewRecorder()

		handler.Positions(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response []model.PositionValuation
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response == nil {
			t.Error("Expected non-nil array, got nil")
		}
		if len(response) != 0 {
			t.Errorf("Expected empty array, got %d positions", len(response))
		}
	})

	t.Run("returns only the caller's positions", func(t *testing.T) {
		handler, db := setupPositionHandler(t)
		owner := testutil.MakeID()

		mine := testutil.NewPosition(owner).WithHolding(2, 100).WithLastTradedPrice(150).Build(t, db)
		testutil.NewPosition(testutil.MakeID()).Build(t, db)

		req := testutil.AsOwner(httptest.NewRequest(http.MethodGet, "/api/position", nil), owner)
		w := httptest.NewRecorder()

		handler.Positions(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response []model.PositionValuation
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if len(response) != 1 {
			t.Fatalf("Expected 1 position, got %d", len(response))
		}
		if response[0].ID != mine.ID {
			t.Errorf("Expected position %s, got %s", mine.ID, response[0].ID)
		}
		if response[0].GainLoss != 100 {
			t.Errorf("Expected gainLoss 100, got %f", response[0].GainLoss)
		}
		if response[0].GainLossPercent != 50 {
			t.Errorf("Expected gainLossPercent 50, got %f", response[0].GainLossPercent)
		}
	})

	t.Run("returns 401 without owner", func(t *testing.T) {
		handler, _ := setupPositionHandler(t)

		req := httptest.NewRequest(http.MethodGet, "/api/position", nil)
		w := httptest.NewRecorder()

		handler.Positions(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", w.Code)
		}
	})

	t.Run("returns 500 on database error", func(t *testing.T) {
		handler, db := setupPositionHandler(t)
		db.Close()

		req := testutil.AsOwner(httptest.NewRequest(http.MethodGet, "/api/position", nil), testutil.MakeID())
		w := httptest.NewRecorder()

		handler.Positions(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Errorf("Expected 500, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestPositionHandler_GetPosition(t *testing.T) {
	t.Run("returns position by ID", func(t *testing.T) {
		handler, db := setupPositionHandler(t)
		owner := testutil.MakeID()
		p := testutil.NewPosition(owner).WithSymbol("VWRL").Build(t, db)

		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/position/"+p.ID, map[string]string{"uuid": p.ID})
		w := httptest.NewRecorder()

		handler.GetPosition(w, testutil.AsOwner(req, owner))

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response model.PositionValuation
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response.Symbol != "VWRL" {
			t.Errorf("Expected symbol VWRL, got %s", response.Symbol)
		}
	})

	t.Run("returns 404 for another owner's position", func(t *testing.T) {
		handler, db := setupPositionHandler(t)
		p := testutil.NewPosition(testutil.MakeID()).Build(t, db)

		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/position/"+p.ID, map[string]string{"uuid": p.ID})
		w := httptest.NewRecorder()

		handler.GetPosition(w, testutil.AsOwner(req, testutil.MakeID()))

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestPositionHandler_CreatePosition(t *testing.T) {
	valid := request.CreatePositionRequest{
		Symbol:    "aapl",
		Name:      "Apple Inc.",
		AssetKind: "STOCK",
		Quantity:  10,
		Price:     100,
	}

	t.Run("creates position successfully", func(t *testing.T) {
		handler, _ := setupPositionHandler(t)
		owner := testutil.MakeID()

		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/position", valid, nil)
		w := httptest.NewRecorder()

		handler.CreatePosition(w, testutil.AsOwner(req, owner))

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var response model.PositionValuation
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response.ID == "" {
			t.Error("Expected position ID to be set")
		}
		if response.OwnerID != owner {
			t.Errorf("Expected ownerId %s, got %s", owner, response.OwnerID)
		}
		if response.Symbol != "AAPL" {
			t.Errorf("Expected symbol AAPL, got %s", response.Symbol)
		}
		if response.AverageCost != 100 {
			t.Errorf("Expected averageCost 100, got %f", response.AverageCost)
		}
		if response.CurrentValue != 1000 {
			t.Errorf("Expected currentValue 1000, got %f", response.CurrentValue)
		}
	})

	t.Run("returns 409 on duplicate symbol", func(t *testing.T) {
		handler, db := setupPositionHandler(t)
		owner := testutil.MakeID()
		testutil.NewPosition(owner).WithSymbol("AAPL").Build(t, db)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/position", valid, nil)
		w := httptest.NewRecorder()

		handler.CreatePosition(w, testutil.AsOwner(req, owner))

		if w.Code != http.StatusConflict {
			t.Errorf("Expected 409, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 400 on invalid JSON", func(t *testing.T) {
		handler, _ := setupPositionHandler(t)

		req := testutil.NewRequestWithBody(http.MethodPost, "/api/position", "invalid json")
		w := httptest.NewRecorder()

		handler.CreatePosition(w, testutil.AsOwner(req, testutil.MakeID()))

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 400 on invalid asset kind", func(t *testing.T) {
		handler, _ := setupPositionHandler(t)
		body := valid
		body.AssetKind = "CRYPTO"

		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/position", body, nil)
		w := httptest.NewRecorder()

		handler.CreatePosition(w, testutil.AsOwner(req, testutil.MakeID()))

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestPositionHandler_UpdatePosition(t *testing.T) {
	t.Run("updates fields successfully", func(t *testing.T) {
		handler, db := setupPositionHandler(t)
		owner := testutil.MakeID()
		p := testutil.NewPosition(owner).WithHolding(10, 100).Build(t, db)

		body := `{"name": "Renamed", "lastTradedPrice": 110}`
		req := testutil.NewRequestWithBody(http.MethodPut, "/api/position/"+p.ID, body)
		req = testutil.AsOwner(req, owner)
		w := httptest.NewRecorder()

		handler.UpdatePosition(w, withParam(req, p.ID))

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response model.PositionValuation
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response.Name != "Renamed" {
			t.Errorf("Expected name Renamed, got %s", response.Name)
		}
		if response.LastTradedPrice != 110 {
			t.Errorf("Expected lastTradedPrice 110, got %f", response.LastTradedPrice)
		}
		if response.AverageCost != 100 {
			t.Errorf("Expected averageCost untouched, got %f", response.AverageCost)
		}
	})

	t.Run("returns 400 on empty body", func(t *testing.T) {
		handler, db := setupPositionHandler(t)
		owner := testutil.MakeID()
		p := testutil.NewPosition(owner).Build(t, db)

		req := testutil.AsOwner(testutil.NewRequestWithBody(http.MethodPut, "/api/position/"+p.ID, `{}`), owner)
		w := httptest.NewRecorder()

		handler.UpdatePosition(w, withParam(req, p.ID))

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 404 when position not found", func(t *testing.T) {
		handler, _ := setupPositionHandler(t)
		id := testutil.MakeID()

		req := testutil.AsOwner(testutil.NewRequestWithBody(http.MethodPut, "/api/position/"+id, `{"quantity": 1}`), testutil.MakeID())
		w := httptest.NewRecorder()

		handler.UpdatePosition(w, withParam(req, id))

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestPositionHandler_DeletePosition(t *testing.T) {
	t.Run("deletes position successfully", func(t *testing.T) {
		handler, db := setupPositionHandler(t)
		owner := testutil.MakeID()
		p := testutil.NewPosition(owner).Build(t, db)
		testutil.NewTransaction(p).Build(t, db)

		req := testutil.NewRequestWithURLParams(http.MethodDelete, "/api/position/"+p.ID, map[string]string{"uuid": p.ID})
		w := httptest.NewRecorder()

		handler.DeletePosition(w, testutil.AsOwner(req, owner))

		if w.Code != http.StatusNoContent {
			t.Errorf("Expected 204, got %d: %s", w.Code, w.Body.String())
		}

		var count int
		//nolint:errcheck // Test assertion - scan failure would leave count at zero
		db.QueryRow("SELECT COUNT(*) FROM position WHERE id = ?", p.ID).Scan(&count)
		if count != 0 {
			t.Error("Expected position to be deleted")
		}
	})

	t.Run("returns 404 for another owner's position", func(t *testing.T) {
		handler, db := setupPositionHandler(t)
		p := testutil.NewPosition(testutil.MakeID()).Build(t, db)

		req := testutil.NewRequestWithURLParams(http.MethodDelete, "/api/position/"+p.ID, map[string]string{"uuid": p.ID})
		w := httptest.NewRecorder()

		handler.DeletePosition(w, testutil.AsOwner(req, testutil.MakeID()))

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestPositionHandler_AuditPosition(t *testing.T) {
	handler, db := setupPositionHandler(t)
	owner := testutil.MakeID()
	p := testutil.NewPosition(owner).WithHolding(10, 100).Build(t, db)
	testutil.NewTransaction(p).WithTrade(10, 100).Build(t, db)

	req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/position/"+p.ID+"/audit", map[string]string{"uuid": p.ID})
	w := httptest.NewRecorder()

	handler.AuditPosition(w, testutil.AsOwner(req, owner))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var response model.Discrepancy
	//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
	json.NewDecoder(w.Body).Decode(&response)

	if !response.Consistent {
		t.Errorf("Expected consistent position, got %+v", response)
	}
}

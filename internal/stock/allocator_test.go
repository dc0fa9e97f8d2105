package stock

import (
	"testing"
	"time"

	"github.com/solystore/pointshop-backend/pkg/collections/models"
	pkgerrors "github.com/solystore/pointshop-backend/pkg/errors"
)

func fixture() []models.StockUnit {
	return []models.StockUnit{
		{ID: "s1", ProductID: "p1", Payload: "KEY-1", Status: models.StockAvailable},
		{ID: "s2", ProductID: "p2", Payload: "KEY-2", Status: models.StockAvailable},
		{ID: "s3", ProductID: "p1", Payload: "KEY-3", Status: models.StockConsumed, UsedBy: "u9"},
		{ID: "s4", ProductID: "p1", Payload: "KEY-4", Status: models.StockAvailable},
		{ID: "s5", ProductID: "p1", Payload: "KEY-5", Status: models.StockAvailable},
	}
}

func TestCountAvailable(t *testing.T) {
	stocks := fixture()

	if got := CountAvailable(stocks, "p1"); got != 3 {
		t.Fatalf("p1 available = %d, want 3", got)
	}
	if got := CountAvailable(stocks, "p2"); got != 1 {
		t.Fatalf("p2 available = %d, want 1", got)
	}
	if got := CountAvailable(stocks, "missing"); got != 0 {
		t.Fatalf("missing available = %d, want 0", got)
	}
}

func TestReservePicksEarliestUnits(t *testing.T) {
	stocks := fixture()
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	reserved, err := Reserve(stocks, "p1", "u1", 2, now)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if len(reserved) != 2 {
		t.Fatalf("reserved %d units, want 2", len(reserved))
	}
	if reserved[0].ID != "s1" || reserved[1].ID != "s4" {
		t.Fatalf("reserved %s,%s, want s1,s4", reserved[0].ID, reserved[1].ID)
	}
	for _, unit := range reserved {
		if unit.Status != models.StockConsumed {
			t.Fatalf("unit %s status = %d, want consumed", unit.ID, unit.Status)
		}
		if unit.UsedBy != "u1" {
			t.Fatalf("unit %s usedBy = %q, want u1", unit.ID, unit.UsedBy)
		}
		if unit.UsedAt == nil || !unit.UsedAt.Equal(now) {
			t.Fatalf("unit %s usedAt = %v, want %v", unit.ID, unit.UsedAt, now)
		}
	}

	// Snapshot mutated in place for the selected units only.
	if stocks[0].Status != models.StockConsumed || stocks[3].Status != models.StockConsumed {
		t.Fatal("selected units not consumed in snapshot")
	}
	if stocks[4].Status != models.StockAvailable {
		t.Fatal("unselected unit was consumed")
	}
	if stocks[1].Status != models.StockAvailable {
		t.Fatal("other product's unit was consumed")
	}
}

func TestReserveAllOrNothing(t *testing.T) {
	stocks := fixture()

	_, err := Reserve(stocks, "p1", "u1", 4, time.Now())
	if pkgerrors.CodeOf(err) != pkgerrors.CodeInsufficientStock {
		t.Fatalf("code = %s, want %s", pkgerrors.CodeOf(err), pkgerrors.CodeInsufficientStock)
	}
	for i, unit := range fixture() {
		if stocks[i] != unit {
			t.Fatalf("unit %s changed on failed reserve", unit.ID)
		}
	}
}

func TestReserveConsumedUnitsNeverReused(t *testing.T) {
	stocks := fixture()
	now := time.Now().UTC()

	if _, err := Reserve(stocks, "p1", "u1", 3, now); err != nil {
		t.Fatalf("first reserve: %v", err)
	}
	if _, err := Reserve(stocks, "p1", "u2", 1, now); pkgerrors.CodeOf(err) != pkgerrors.CodeInsufficientStock {
		t.Fatalf("code = %s, want %s", pkgerrors.CodeOf(err), pkgerrors.CodeInsufficientStock)
	}
}

func TestReserveRejectsNonPositiveQuantity(t *testing.T) {
	if _, err := Reserve(fixture(), "p1", "u1", 0, time.Now()); pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("code = %s, want %s", pkgerrors.CodeOf(err), pkgerrors.CodeValidation)
	}
}

// Package stock selects and consumes stock units inside a purchase
// transaction. Like the ledger it mutates a loaded snapshot only; the
// coordinator persists the result.
package stock

import (
	"time"

	"github.com/solystore/pointshop-backend/pkg/collections/models"
	pkgerrors "github.com/solystore/pointshop-backend/pkg/errors"
)

// CountAvailable reports how many units of a product can still be sold.
func CountAvailable(stocks []models.StockUnit, productID string) int {
	count := 0
	for i := range stocks {
		if stocks[i].ProductID == productID && stocks[i].Available() {
			count++
		}
	}
	return count
}

// Reserve consumes quantity available units of the product, in collection
// order so allocation is reproducible for a given snapshot. Either every
// unit is marked consumed and attributed to the buyer, or the snapshot is
// left untouched and the call fails.
func Reserve(stocks []models.StockUnit, productID, userID string, quantity int, now time.Time) ([]models.StockUnit, error) {
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	selected := make([]int, 0, quantity)
	for i := range stocks {
		if stocks[i].ProductID == productID && stocks[i].Available() {
			selected = append(selected, i)
			if len(selected) == quantity {
				break
			}
		}
	}
	if len(selected) < quantity {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
			WithDetails(map[string]any{"available": CountAvailable(stocks, productID), "requested": quantity})
	}

	usedAt := now
	reserved := make([]models.StockUnit, 0, quantity)
	for _, idx := range selected {
		stocks[idx].Status = models.StockConsumed
		stocks[idx].UsedBy = userID
		stocks[idx].UsedAt = &usedAt
		reserved = append(reserved, stocks[idx])
	}
	return reserved, nil
}

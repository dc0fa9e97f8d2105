package models

import "time"

// StockStatus tracks unit consumption. The transition is 0 to 1 only and
// never reverses.
type StockStatus int

const (
	StockAvailable StockStatus = 0
	StockConsumed  StockStatus = 1
)

// StockUnit is one sellable unit of a product. Payload is the opaque value
// handed to the buyer, typically an activation code or URL.
type StockUnit struct {
	ID        string      `json:"id"`
	ProductID string      `json:"id_product"`
	Payload   string      `json:"stock"`
	Status    StockStatus `json:"status"`
	UsedBy    string      `json:"usedBy,omitempty"`
	UsedAt    *time.Time  `json:"usedAt,omitempty"`
	CreatedAt time.Time   `json:"timestamp"`
}

// Available reports whether the unit can still be allocated.
func (s StockUnit) Available() bool {
	return s.Status == StockAvailable
}

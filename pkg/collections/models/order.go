package models

import "time"

// OrderStockRef records one stock unit delivered by an order.
type OrderStockRef struct {
	ID      string `json:"id"`
	Payload string `json:"stock"`
}

// Order is the immutable audit record appended by a successful purchase.
// Total always equals UnitPrice * Quantity and StockRefs carries exactly
// Quantity entries.
type Order struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	Username    string          `json:"username"`
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	UnitPrice   int             `json:"productPrice"`
	Quantity    int             `json:"quantity"`
	StockRefs   []OrderStockRef `json:"stocks"`
	Total       int             `json:"total"`
	CreatedAt   time.Time       `json:"timestamp"`
}

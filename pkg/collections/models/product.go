package models

import "time"

// ProductStatus gates whether a product can be ordered.
type ProductStatus int

const (
	ProductAvailable   ProductStatus = 0
	ProductUnavailable ProductStatus = 1
)

type Product struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	ImageURL  string        `json:"image_url"`
	Price     int           `json:"price"`
	Status    ProductStatus `json:"status"`
	CreatedAt time.Time     `json:"timestamp"`
}

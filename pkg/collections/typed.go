package collections

import "github.com/solystore/pointshop-backend/pkg/collections/models"

// Typed accessors so services can depend on a narrow storage interface
// instead of the concrete store.

func (s *Store) LoadUsers() ([]models.User, error) {
	return Load[models.User](s, Users)
}

func (s *Store) ReplaceUsers(records []models.User) error {
	return Replace(s, Users, records)
}

func (s *Store) LoadProducts() ([]models.Product, error) {
	return Load[models.Product](s, Products)
}

func (s *Store) ReplaceProducts(records []models.Product) error {
	return Replace(s, Products, records)
}

func (s *Store) LoadStocks() ([]models.StockUnit, error) {
	return Load[models.StockUnit](s, Stocks)
}

func (s *Store) ReplaceStocks(records []models.StockUnit) error {
	return Replace(s, Stocks, records)
}

func (s *Store) LoadOrders() ([]models.Order, error) {
	return Load[models.Order](s, Orders)
}

func (s *Store) ReplaceOrders(records []models.Order) error {
	return Replace(s, Orders, records)
}

func (s *Store) LoadTopupCodes() ([]models.TopupCode, error) {
	return Load[models.TopupCode](s, TopupCodes)
}

func (s *Store) ReplaceTopupCodes(records []models.TopupCode) error {
	return Replace(s, TopupCodes, records)
}

func (s *Store) LoadTopupHistory() ([]models.TopupHistoryEntry, error) {
	return Load[models.TopupHistoryEntry](s, TopupHistory)
}

func (s *Store) ReplaceTopupHistory(records []models.TopupHistoryEntry) error {
	return Replace(s, TopupHistory, records)
}

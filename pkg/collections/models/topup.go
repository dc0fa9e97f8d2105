package models

import "time"

// TopupCodeStatus tracks one-shot redemption. 0 to 1 only.
type TopupCodeStatus int

const (
	TopupCodeUnused TopupCodeStatus = 0
	TopupCodeUsed   TopupCodeStatus = 1
)

// TopupCode is a redeemable voucher worth Amount points.
type TopupCode struct {
	ID        string          `json:"id"`
	Code      string          `json:"code"`
	Amount    int             `json:"amount"`
	Status    TopupCodeStatus `json:"status"`
	UsedBy    string          `json:"usedBy,omitempty"`
	UsedAt    *time.Time      `json:"usedAt,omitempty"`
	CreatedAt time.Time       `json:"timestamp"`
}

// TopupHistoryEntry is the immutable audit record appended by a successful
// redemption.
type TopupHistoryEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Code      string    `json:"code"`
	Amount    int       `json:"amount"`
	CreatedAt time.Time `json:"timestamp"`
}

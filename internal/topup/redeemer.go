package topup

import (
	"time"

	"github.com/solystore/pointshop-backend/pkg/collections/models"
	pkgerrors "github.com/solystore/pointshop-backend/pkg/errors"
)

// RedeemCode consumes a top-up code in the loaded snapshot and returns the
// amount to credit. A code flips 0 to 1 exactly once; the caller commits
// the matching credit in the same transaction.
func RedeemCode(codes []models.TopupCode, code, userID string, now time.Time) (int, error) {
	idx := -1
	for i := range codes {
		if codes[i].Code == code {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0, pkgerrors.New(pkgerrors.CodeNotFound, "top-up code not found")
	}
	if codes[idx].Status == models.TopupCodeUsed {
		return 0, pkgerrors.New(pkgerrors.CodeAlreadyRedeemed, "top-up code already used")
	}

	usedAt := now
	codes[idx].Status = models.TopupCodeUsed
	codes[idx].UsedBy = userID
	codes[idx].UsedAt = &usedAt
	return codes[idx].Amount, nil
}

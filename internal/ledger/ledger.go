// Package ledger implements point-balance arithmetic over an in-memory
// users snapshot. It performs no I/O; callers load the snapshot under the
// appropriate locks and persist it after all mutations succeed.
package ledger

import (
	"github.com/solystore/pointshop-backend/pkg/collections/models"
	pkgerrors "github.com/solystore/pointshop-backend/pkg/errors"
)

// Balance returns the current point balance for the user.
func Balance(users []models.User, userID string) (int, error) {
	idx := indexOf(users, userID)
	if idx < 0 {
		return 0, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return users[idx].Points, nil
}

// Debit reduces the user's balance by amount. Nothing changes unless the
// full amount is covered.
func Debit(users []models.User, userID string, amount int) error {
	if amount < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "debit amount must not be negative")
	}
	idx := indexOf(users, userID)
	if idx < 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	if users[idx].Points < amount {
		return pkgerrors.New(pkgerrors.CodeInsufficientPoints, "insufficient points").
			WithDetails(map[string]any{"balance": users[idx].Points, "required": amount})
	}
	users[idx].Points -= amount
	return nil
}

// Credit increases the user's balance by amount.
func Credit(users []models.User, userID string, amount int) error {
	if amount < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "credit amount must not be negative")
	}
	idx := indexOf(users, userID)
	if idx < 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	users[idx].Points += amount
	return nil
}

func indexOf(users []models.User, userID string) int {
	for i := range users {
		if users[i].ID == userID {
			return i
		}
	}
	return -1
}

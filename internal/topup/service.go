// Package topup coordinates the redemption transaction (code, balance,
// history) and the admin-side voucher lifecycle.
package topup

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/solystore/pointshop-backend/internal/ledger"
	"github.com/solystore/pointshop-backend/internal/locks"
	"github.com/solystore/pointshop-backend/pkg/collections"
	"github.com/solystore/pointshop-backend/pkg/collections/models"
	"github.com/solystore/pointshop-backend/pkg/config"
	pkgerrors "github.com/solystore/pointshop-backend/pkg/errors"
	"github.com/solystore/pointshop-backend/pkg/logger"
	"github.com/solystore/pointshop-backend/pkg/metrics"
)

const flowTopup = "topup"

// RedeemResult reports the credited amount and the balance after commit.
type RedeemResult struct {
	Amount     int `json:"amount"`
	NewBalance int `json:"points"`
}

// Service executes top-up transactions and admin code management.
type Service interface {
	Redeem(ctx context.Context, userID, code string) (*RedeemResult, error)
	Balance(ctx context.Context, userID string) (int, error)
	History(ctx context.Context, userID string) ([]models.TopupHistoryEntry, error)
	GenerateCodes(ctx context.Context, amount, quantity int) ([]models.TopupCode, error)
	ListCodes(ctx context.Context) ([]models.TopupCode, error)
}

// Storage is the slice of the collection store the top-up flows touch.
// *collections.Store satisfies it.
type Storage interface {
	LoadUsers() ([]models.User, error)
	LoadTopupCodes() ([]models.TopupCode, error)
	LoadTopupHistory() ([]models.TopupHistoryEntry, error)
	ReplaceUsers([]models.User) error
	ReplaceTopupCodes([]models.TopupCode) error
	ReplaceTopupHistory([]models.TopupHistoryEntry) error
}

type service struct {
	store   Storage
	locks   *locks.Manager
	metrics *metrics.TransactionMetrics
	logg    *logger.Logger
	cfg     config.TopupConfig
	now     func() time.Time
}

// NewService builds the top-up service.
func NewService(store Storage, lockManager *locks.Manager, txMetrics *metrics.TransactionMetrics, logg *logger.Logger, cfg config.TopupConfig) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("collection storage required")
	}
	if lockManager == nil {
		return nil, fmt.Errorf("lock manager required")
	}
	if cfg.CodeLength <= 0 {
		return nil, fmt.Errorf("code length must be positive")
	}
	if cfg.MaxPerBatch <= 0 {
		return nil, fmt.Errorf("max codes per batch must be positive")
	}
	return &service{
		store:   store,
		locks:   lockManager,
		metrics: txMetrics,
		logg:    logg,
		cfg:     cfg,
		now:     time.Now,
	}, nil
}

// Redeem runs the redemption transaction: the code flip and the matching
// credit commit together or not at all.
func (s *service) Redeem(ctx context.Context, userID, code string) (*RedeemResult, error) {
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "code is required")
	}

	start := s.now()
	result, err := s.runRedeem(ctx, userID, code)
	s.metrics.ObserveDuration(flowTopup, s.now().Sub(start))
	if err != nil {
		s.metrics.IncAbort(flowTopup, string(pkgerrors.CodeOf(err)))
		return nil, err
	}
	s.metrics.IncCommit(flowTopup)
	return result, nil
}

func (s *service) runRedeem(ctx context.Context, userID, code string) (*RedeemResult, error) {
	release, err := s.locks.Acquire(ctx, collections.Users, collections.TopupCodes, collections.TopupHistory)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock acquisition interrupted")
	}
	defer release()

	users, err := s.store.LoadUsers()
	if err != nil {
		return nil, err
	}
	codes, err := s.store.LoadTopupCodes()
	if err != nil {
		return nil, err
	}
	history, err := s.store.LoadTopupHistory()
	if err != nil {
		return nil, err
	}

	userIdx := -1
	for i := range users {
		if users[i].ID == userID {
			userIdx = i
			break
		}
	}
	if userIdx < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}

	now := s.now().UTC()
	amount, err := RedeemCode(codes, code, userID, now)
	if err != nil {
		return nil, err
	}
	if err := ledger.Credit(users, userID, amount); err != nil {
		return nil, err
	}

	history = append(history, models.TopupHistoryEntry{
		ID:        uuid.NewString(),
		UserID:    userID,
		Username:  users[userIdx].Username,
		Code:      code,
		Amount:    amount,
		CreatedAt: now,
	})

	if err := s.persist(ctx, users, codes, history); err != nil {
		return nil, err
	}
	return &RedeemResult{Amount: amount, NewBalance: users[userIdx].Points}, nil
}

func (s *service) persist(ctx context.Context, users []models.User, codes []models.TopupCode, history []models.TopupHistoryEntry) error {
	var err error
	persisted := make([]string, 0, 3)

	if perr := s.store.ReplaceTopupCodes(codes); perr != nil {
		err = multierr.Append(err, perr)
	} else {
		persisted = append(persisted, collections.TopupCodes)
	}
	if err == nil {
		if perr := s.store.ReplaceUsers(users); perr != nil {
			err = multierr.Append(err, perr)
		} else {
			persisted = append(persisted, collections.Users)
		}
	}
	if err == nil {
		if perr := s.store.ReplaceTopupHistory(history); perr != nil {
			err = multierr.Append(err, perr)
		} else {
			persisted = append(persisted, collections.TopupHistory)
		}
	}

	if err != nil {
		if s.logg != nil {
			ctx = s.logg.WithFields(ctx, map[string]any{
				"flow":      flowTopup,
				"persisted": persisted,
			})
			s.logg.Error(ctx, "transaction persist failed, manual reconciliation required", err)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store unavailable")
	}
	return nil
}

// Balance reads the user's current point balance. Read-only; no locks.
func (s *service) Balance(ctx context.Context, userID string) (int, error) {
	users, err := s.store.LoadUsers()
	if err != nil {
		return 0, err
	}
	return ledger.Balance(users, userID)
}

// History lists the user's redemptions, newest first.
func (s *service) History(ctx context.Context, userID string) ([]models.TopupHistoryEntry, error) {
	history, err := s.store.LoadTopupHistory()
	if err != nil {
		return nil, err
	}

	mine := make([]models.TopupHistoryEntry, 0)
	for _, entry := range history {
		if entry.UserID == userID {
			mine = append(mine, entry)
		}
	}
	sort.SliceStable(mine, func(i, j int) bool {
		return mine[i].CreatedAt.After(mine[j].CreatedAt)
	})
	return mine, nil
}

// GenerateCodes mints a batch of unused vouchers worth amount points each.
func (s *service) GenerateCodes(ctx context.Context, amount, quantity int) ([]models.TopupCode, error) {
	if amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if quantity < 1 || quantity > s.cfg.MaxPerBatch {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("quantity must be between 1 and %d", s.cfg.MaxPerBatch))
	}

	release, err := s.locks.Acquire(ctx, collections.TopupCodes)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock acquisition interrupted")
	}
	defer release()

	codes, err := s.store.LoadTopupCodes()
	if err != nil {
		return nil, err
	}

	existing := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		existing[c.Code] = struct{}{}
	}

	now := s.now().UTC()
	batch := make([]models.TopupCode, 0, quantity)
	for len(batch) < quantity {
		value, err := newCode(s.cfg.CodeLength)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate code")
		}
		if _, dup := existing[value]; dup {
			continue
		}
		existing[value] = struct{}{}
		batch = append(batch, models.TopupCode{
			ID:        uuid.NewString(),
			Code:      value,
			Amount:    amount,
			Status:    models.TopupCodeUnused,
			CreatedAt: now,
		})
	}

	if err := s.store.ReplaceTopupCodes(append(codes, batch...)); err != nil {
		return nil, err
	}
	return batch, nil
}

// ListCodes returns every voucher, used or not. Admin surface.
func (s *service) ListCodes(ctx context.Context) ([]models.TopupCode, error) {
	return s.store.LoadTopupCodes()
}

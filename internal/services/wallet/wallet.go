// Package wallet serves the admin views of earnings and platform activity.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/learning-platform/internal/models"
	"github.com/magabrotheeeer/learning-platform/internal/storage"
)

// TransactionsLimit is how many wallet movements the overview shows.
const TransactionsLimit = 50

// ErrNoAdmin is returned when no admin profile exists to own the wallet.
var ErrNoAdmin = errors.New("no admin account")

// Repository is the persistence behind the admin views.
type Repository interface {
	PrimaryAdminID(ctx context.Context) (uuid.UUID, error)
	GetWallet(ctx context.Context, adminID uuid.UUID) (*models.Wallet, error)
	ListWalletTransactions(ctx context.Context, adminID uuid.UUID, limit int) ([]models.WalletTransaction, error)
	PaymentStats(ctx context.Context) (*models.PaymentStats, error)
	DashboardCounts(ctx context.Context, now time.Time) (*models.DashboardCounts, error)
	ListStudents(ctx context.Context) ([]models.Profile, error)
	ListStudentEntitlements(ctx context.Context) ([]models.Entitlement, error)
}

// Service builds the admin views.
type Service struct {
	repo    Repository
	adminID uuid.UUID
	log     *slog.Logger
	now     func() time.Time
}

// New creates the service. A zero adminID selects the oldest admin profile.
func New(repo Repository, adminID uuid.UUID, log *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		adminID: adminID,
		log:     log,
		now:     time.Now,
	}
}

// Overview returns the primary wallet, its latest movements and payment totals.
func (s *Service) Overview(ctx context.Context) (*models.WalletOverview, error) {
	const op = "wallet.Overview"

	adminID := s.adminID
	if adminID == uuid.Nil {
		id, err := s.repo.PrimaryAdminID(ctx)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNoAdmin
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		adminID = id
	}

	w, err := s.repo.GetWallet(ctx, adminID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		// not credited yet
		w = &models.Wallet{AdminID: adminID, Balance: decimal.Zero, TotalEarnings: decimal.Zero}
	case err != nil:
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	txs, err := s.repo.ListWalletTransactions(ctx, adminID, TransactionsLimit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	stats, err := s.repo.PaymentStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.WalletOverview{Wallet: *w, Transactions: txs, Stats: *stats}, nil
}

// Dashboard returns the headline counters.
func (s *Service) Dashboard(ctx context.Context) (*models.DashboardCounts, error) {
	const op = "wallet.Dashboard"
	c, err := s.repo.DashboardCounts(ctx, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// Students returns every student with their entitlement history.
func (s *Service) Students(ctx context.Context) ([]models.StudentOverview, error) {
	const op = "wallet.Students"
	students, err := s.repo.ListStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ents, err := s.repo.ListStudentEntitlements(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	byUser := make(map[uuid.UUID][]models.Entitlement, len(students))
	for _, e := range ents {
		byUser[e.UserID] = append(byUser[e.UserID], e)
	}
	res := make([]models.StudentOverview, 0, len(students))
	for _, p := range students {
		list := byUser[p.ID]
		if list == nil {
			list = []models.Entitlement{}
		}
		res = append(res, models.StudentOverview{Profile: p, Entitlements: list})
	}
	return res, nil
}

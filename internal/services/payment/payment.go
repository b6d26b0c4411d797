// Package payment grants entitlements for package purchases and keeps the
// payment and wallet ledgers.
//
// The entitlement grant is the primary effect of a checkout. Ledger writes
// that follow it are best-effort: their failures never revoke access and are
// reported through Result.Warnings instead.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/learning-platform/internal/lib/month"
	"github.com/magabrotheeeer/learning-platform/internal/lib/sl"
	"github.com/magabrotheeeer/learning-platform/internal/models"
	"github.com/magabrotheeeer/learning-platform/internal/rabbitmq"
	"github.com/magabrotheeeer/learning-platform/internal/storage"
)

var (
	ErrUnauthorized           = errors.New("user not authenticated")
	ErrPackageNotFound        = errors.New("package not found or inactive")
	ErrEntitlementWriteFailed = errors.New("failed to create entitlement")
	ErrUnexpected             = errors.New("unexpected error")
)

// Outcome tags a successful checkout.
type Outcome string

const (
	OutcomeGranted                  Outcome = "granted"
	OutcomeGrantedWithLedgerWarning Outcome = "granted_with_ledger_warning"
)

// Error messages stored on failed payment rows.
const (
	failedPackageNotFound = "Package not found or inactive"
	failedUnexpected      = "Unexpected error"
)

// HistoryLimit caps the billing history returned to a user.
const HistoryLimit = 50

// Repository is the persistence used by checkout.
type Repository interface {
	GetActivePackage(ctx context.Context, id uuid.UUID) (*models.Package, error)
	GrantEntitlement(ctx context.Context, userID, packageID uuid.UUID, start, end time.Time) (*models.Entitlement, int64, error)
	CreatePayment(ctx context.Context, p models.Payment) (uuid.UUID, error)
	AttachWalletTransaction(ctx context.Context, paymentID, walletTransactionID uuid.UUID) error
	PrimaryAdminID(ctx context.Context) (uuid.UUID, error)
	CreditWallet(ctx context.Context, adminID uuid.UUID, amount decimal.Decimal) (*models.WalletCredit, error)
	CreateWalletTransaction(ctx context.Context, t models.WalletTransaction) (uuid.UUID, error)
	ListPaymentsByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Payment, error)
}

// TxnGenerator issues transaction identifiers.
type TxnGenerator interface {
	New() (string, error)
}

// EventPublisher sends domain events to the broker.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// Recorder counts checkout outcomes.
type Recorder interface {
	PaymentProcessed(outcome string)
}

// Result describes a granted purchase.
type Result struct {
	TransactionID string
	Outcome       Outcome
	Warnings      []string
	Entitlement   *models.Entitlement
	Package       *models.Package
}

// PurchaseCompleted is published after every granted purchase.
type PurchaseCompleted struct {
	TransactionID string          `json:"transaction_id"`
	UserID        uuid.UUID       `json:"user_id"`
	PackageID     uuid.UUID       `json:"package_id"`
	PackageName   string          `json:"package_name"`
	EntitlementID uuid.UUID       `json:"entitlement_id"`
	Amount        decimal.Decimal `json:"amount"`
	StartDate     time.Time       `json:"start_date"`
	EndDate       time.Time       `json:"end_date"`
	Outcome       Outcome         `json:"outcome"`
}

// Service processes checkouts.
type Service struct {
	repo      Repository
	txn       TxnGenerator
	publisher EventPublisher
	metrics   Recorder
	adminID   uuid.UUID
	log       *slog.Logger
	now       func() time.Time
}

// Option customizes the Service.
type Option func(*Service)

// WithPublisher enables purchase events.
func WithPublisher(p EventPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithMetrics records outcomes.
func WithMetrics(r Recorder) Option {
	return func(s *Service) { s.metrics = r }
}

// WithPrimaryAdmin fixes the wallet credited by paid purchases. Without it
// the oldest admin profile is used.
func WithPrimaryAdmin(id uuid.UUID) Option {
	return func(s *Service) { s.adminID = id }
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates the checkout service.
func New(repo Repository, txn TxnGenerator, log *slog.Logger, opts ...Option) *Service {
	s := &Service{
		repo: repo,
		txn:  txn,
		log:  log,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProcessPayment buys packageID for callerID.
//
// The grant happens before any ledger write. A failed attempt still leaves a
// failed payment row. The returned error is one of the package sentinels.
func (s *Service) ProcessPayment(ctx context.Context, callerID, packageID uuid.UUID) (res *Result, err error) {
	const op = "payment.ProcessPayment"
	log := s.log.With(
		slog.String("op", op),
		slog.String("user_id", callerID.String()),
		slog.String("package_id", packageID.String()),
	)

	defer func() {
		if r := recover(); r != nil {
			log.Error("checkout panicked", slog.Any("panic", r))
			res, err = nil, ErrUnexpected
		}
		s.record(res, err)
	}()

	if callerID == uuid.Nil {
		return nil, ErrUnauthorized
	}

	txnID, err := s.txn.New()
	if err != nil {
		log.Error("failed to generate transaction id", sl.Err(err))
		return nil, ErrUnexpected
	}
	log = log.With(slog.String("transaction_id", txnID))

	pkg, err := s.repo.GetActivePackage(ctx, packageID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("package not found or inactive")
			s.recordFailure(ctx, log, callerID, packageID, decimal.Zero, txnID, failedPackageNotFound)
			return nil, ErrPackageNotFound
		}
		log.Error("failed to load package", sl.Err(err))
		s.recordFailure(ctx, log, callerID, packageID, decimal.Zero, txnID, failedUnexpected)
		return nil, ErrUnexpected
	}

	start := s.now().UTC()
	end := month.EndDate(start, pkg.DurationMonths)

	ent, superseded, err := s.repo.GrantEntitlement(ctx, callerID, pkg.ID, start, end)
	if err != nil {
		log.Error("failed to grant entitlement", sl.Err(err))
		s.recordFailure(ctx, log, callerID, pkg.ID, pkg.Price, txnID, err.Error())
		return nil, ErrEntitlementWriteFailed
	}
	log.Info("entitlement granted",
		slog.String("entitlement_id", ent.ID.String()),
		slog.Int64("superseded", superseded),
		slog.Time("end_date", end),
	)

	res = &Result{
		TransactionID: txnID,
		Entitlement:   ent,
		Package:       pkg,
	}

	paymentID, err := s.repo.CreatePayment(ctx, models.Payment{
		UserID:        callerID,
		PackageID:     pkg.ID,
		UserPackageID: uuid.NullUUID{UUID: ent.ID, Valid: true},
		Amount:        pkg.Price,
		Status:        models.PaymentCompleted,
		TransactionID: txnID,
		PaymentMethod: models.PaymentMethodMockCard,
	})
	if err != nil {
		log.Error("failed to record completed payment", sl.Err(err))
		res.Warnings = append(res.Warnings, "payment record was not saved")
	}

	if pkg.Price.IsPositive() && paymentID != uuid.Nil {
		res.Warnings = append(res.Warnings, s.creditWallet(ctx, log, paymentID, pkg)...)
	}

	res.Outcome = OutcomeGranted
	if len(res.Warnings) > 0 {
		res.Outcome = OutcomeGrantedWithLedgerWarning
	}

	s.publish(ctx, log, callerID, res)
	return res, nil
}

// creditWallet credits the primary admin and links the ledger rows.
// It runs only once the completed payment row exists.
func (s *Service) creditWallet(ctx context.Context, log *slog.Logger, paymentID uuid.UUID, pkg *models.Package) []string {
	adminID, err := s.primaryAdmin(ctx)
	if err != nil {
		log.Error("no primary admin for wallet credit", sl.Err(err))
		return []string{"wallet was not credited"}
	}

	credit, err := s.repo.CreditWallet(ctx, adminID, pkg.Price)
	if err != nil {
		log.Error("failed to credit wallet", slog.String("admin_id", adminID.String()), sl.Err(err))
		return []string{"wallet was not credited"}
	}

	wtID, err := s.repo.CreateWalletTransaction(ctx, models.WalletTransaction{
		AdminID:         adminID,
		PaymentID:       uuid.NullUUID{UUID: paymentID, Valid: true},
		TransactionType: models.WalletTransactionCredit,
		Amount:          credit.Amount,
		BalanceBefore:   credit.BalanceBefore,
		BalanceAfter:    credit.BalanceAfter,
		Description:     "Payment from user for " + pkg.Name,
	})
	if err != nil {
		log.Error("failed to record wallet transaction", sl.Err(err))
		return []string{"wallet transaction was not recorded"}
	}

	if err := s.repo.AttachWalletTransaction(ctx, paymentID, wtID); err != nil {
		log.Error("failed to link wallet transaction to payment", sl.Err(err))
		return []string{"wallet transaction was not linked to the payment"}
	}
	return nil
}

func (s *Service) primaryAdmin(ctx context.Context) (uuid.UUID, error) {
	if s.adminID != uuid.Nil {
		return s.adminID, nil
	}
	return s.repo.PrimaryAdminID(ctx)
}

func (s *Service) recordFailure(ctx context.Context, log *slog.Logger, userID, packageID uuid.UUID,
	amount decimal.Decimal, txnID, message string) {
	_, err := s.repo.CreatePayment(ctx, models.Payment{
		UserID:        userID,
		PackageID:     packageID,
		Amount:        amount,
		Status:        models.PaymentFailed,
		TransactionID: txnID,
		PaymentMethod: models.PaymentMethodMockCard,
		ErrorMessage:  &message,
	})
	if err != nil {
		log.Error("failed to record failed payment", sl.Err(err))
	}
}

func (s *Service) publish(ctx context.Context, log *slog.Logger, userID uuid.UUID, res *Result) {
	if s.publisher == nil {
		return
	}
	event := PurchaseCompleted{
		TransactionID: res.TransactionID,
		UserID:        userID,
		PackageID:     res.Package.ID,
		PackageName:   res.Package.Name,
		EntitlementID: res.Entitlement.ID,
		Amount:        res.Package.Price,
		StartDate:     res.Entitlement.StartDate,
		EndDate:       res.Entitlement.EndDate,
		Outcome:       res.Outcome,
	}
	if err := s.publisher.Publish(ctx, rabbitmq.RoutingKeyPurchaseCompleted, event); err != nil {
		log.Warn("failed to publish purchase event", sl.Err(err))
	}
}

func (s *Service) record(res *Result, err error) {
	if s.metrics == nil {
		return
	}
	switch {
	case err == nil && res != nil:
		s.metrics.PaymentProcessed(string(res.Outcome))
	case errors.Is(err, ErrUnauthorized):
		s.metrics.PaymentProcessed("unauthorized")
	case errors.Is(err, ErrPackageNotFound):
		s.metrics.PaymentProcessed("package_not_found")
	case errors.Is(err, ErrEntitlementWriteFailed):
		s.metrics.PaymentProcessed("entitlement_write_failed")
	default:
		s.metrics.PaymentProcessed("unexpected")
	}
}

// History returns the caller's latest payments.
func (s *Service) History(ctx context.Context, userID uuid.UUID) ([]models.Payment, error) {
	const op = "payment.History"
	payments, err := s.repo.ListPaymentsByUser(ctx, userID, HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return payments, nil
}

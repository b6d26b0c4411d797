package payment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/learning-platform/internal/models"
	"github.com/magabrotheeeer/learning-platform/internal/rabbitmq"
	"github.com/magabrotheeeer/learning-platform/internal/storage"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetActivePackage(ctx context.Context, id uuid.UUID) (*models.Package, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Package), args.Error(1)
}

func (m *MockRepository) GrantEntitlement(ctx context.Context, userID, packageID uuid.UUID, start, end time.Time) (*models.Entitlement, int64, error) {
	args := m.Called(ctx, userID, packageID, start, end)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).(*models.Entitlement), args.Get(1).(int64), args.Error(2)
}

func (m *MockRepository) CreatePayment(ctx context.Context, p models.Payment) (uuid.UUID, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockRepository) AttachWalletTransaction(ctx context.Context, paymentID, walletTransactionID uuid.UUID) error {
	args := m.Called(ctx, paymentID, walletTransactionID)
	return args.Error(0)
}

func (m *MockRepository) PrimaryAdminID(ctx context.Context) (uuid.UUID, error) {
	args := m.Called(ctx)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockRepository) CreditWallet(ctx context.Context, adminID uuid.UUID, amount decimal.Decimal) (*models.WalletCredit, error) {
	args := m.Called(ctx, adminID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WalletCredit), args.Error(1)
}

func (m *MockRepository) CreateWalletTransaction(ctx context.Context, t models.WalletTransaction) (uuid.UUID, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockRepository) ListPaymentsByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Payment, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Payment), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, message any) error {
	args := m.Called(ctx, routingKey, message)
	return args.Error(0)
}

type fixedTxn struct {
	id  string
	err error
}

func (f fixedTxn) New() (string, error) { return f.id, f.err }

type countingRecorder struct {
	outcomes []string
}

func (c *countingRecorder) PaymentProcessed(outcome string) {
	c.outcomes = append(c.outcomes, outcome)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

const testTxn = "TXN-1706659200000-ABCDEFGHI"

var (
	fixedNow = time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	userID   = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	adminID  = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

func paidPackage(price int64, months int) *models.Package {
	return &models.Package{
		ID:             uuid.MustParse("33333333-3333-3333-3333-333333333333"),
		Name:           "1-Month Package",
		Price:          decimal.NewFromInt(price),
		DurationMonths: months,
		IsActive:       true,
	}
}

func newService(repo *MockRepository, opts ...Option) *Service {
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return New(repo, fixedTxn{id: testTxn}, newNoopLogger(), opts...)
}

func failedPayment(pkgID uuid.UUID, amount decimal.Decimal, msg string) any {
	return mock.MatchedBy(func(p models.Payment) bool {
		return p.Status == models.PaymentFailed &&
			p.UserID == userID &&
			p.PackageID == pkgID &&
			p.Amount.Equal(amount) &&
			p.TransactionID == testTxn &&
			p.ErrorMessage != nil && *p.ErrorMessage == msg &&
			!p.UserPackageID.Valid
	})
}

func completedPayment(pkg *models.Package, entID uuid.UUID) any {
	return mock.MatchedBy(func(p models.Payment) bool {
		return p.Status == models.PaymentCompleted &&
			p.Amount.Equal(pkg.Price) &&
			p.UserPackageID.Valid && p.UserPackageID.UUID == entID &&
			p.PaymentMethod == models.PaymentMethodMockCard &&
			p.ErrorMessage == nil
	})
}

func TestService_ProcessPayment_PaidPackageCreditsWallet(t *testing.T) {
	pkg := paidPackage(500, 1)
	ent := &models.Entitlement{ID: uuid.New(), UserID: userID, PackageID: pkg.ID, IsActive: true}
	paymentID, wtID := uuid.New(), uuid.New()

	repo := new(MockRepository)
	repo.On("GetActivePackage", mock.Anything, pkg.ID).Return(pkg, nil).Once()
	repo.On("GrantEntitlement", mock.Anything, userID, pkg.ID, fixedNow,
		time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)).Return(ent, int64(1), nil).Once()
	repo.On("CreatePayment", mock.Anything, completedPayment(pkg, ent.ID)).Return(paymentID, nil).Once()
	repo.On("PrimaryAdminID", mock.Anything).Return(adminID, nil).Once()
	repo.On("CreditWallet", mock.Anything, adminID, pkg.Price).Return(&models.WalletCredit{
		AdminID:       adminID,
		Amount:        pkg.Price,
		BalanceBefore: decimal.NewFromInt(1000),
		BalanceAfter:  decimal.NewFromInt(1500),
		TotalEarnings: decimal.NewFromInt(5500),
	}, nil).Once()
	repo.On("CreateWalletTransaction", mock.Anything, mock.MatchedBy(func(wt models.WalletTransaction) bool {
		return wt.AdminID == adminID &&
			wt.PaymentID.Valid && wt.PaymentID.UUID == paymentID &&
			wt.TransactionType == models.WalletTransactionCredit &&
			wt.Amount.Equal(decimal.NewFromInt(500)) &&
			wt.BalanceBefore.Equal(decimal.NewFromInt(1000)) &&
			wt.BalanceAfter.Equal(decimal.NewFromInt(1500)) &&
			wt.Description == "Payment from user for 1-Month Package"
	})).Return(wtID, nil).Once()
	repo.On("AttachWalletTransaction", mock.Anything, paymentID, wtID).Return(nil).Once()

	rec := &countingRecorder{}
	res, err := newService(repo, WithMetrics(rec)).ProcessPayment(context.Background(), userID, pkg.ID)

	require.NoError(t, err)
	assert.Equal(t, testTxn, res.TransactionID)
	assert.Equal(t, OutcomeGranted, res.Outcome)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, ent, res.Entitlement)
	assert.Equal(t, []string{"granted"}, rec.outcomes)
	repo.AssertExpectations(t)
}

func TestService_ProcessPayment_TrialEndsAfterThreeDays(t *testing.T) {
	pkg := paidPackage(0, 0)
	ent := &models.Entitlement{ID: uuid.New()}

	repo := new(MockRepository)
	repo.On("GetActivePackage", mock.Anything, pkg.ID).Return(pkg, nil).Once()
	repo.On("GrantEntitlement", mock.Anything, userID, pkg.ID, fixedNow, fixedNow.Add(72*time.Hour)).
		Return(ent, int64(0), nil).Once()
	repo.On("CreatePayment", mock.Anything, completedPayment(pkg, ent.ID)).Return(uuid.New(), nil).Once()

	res, err := newService(repo).ProcessPayment(context.Background(), userID, pkg.ID)

	require.NoError(t, err)
	assert.Equal(t, OutcomeGranted, res.Outcome)
	repo.AssertNotCalled(t, "CreditWallet", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestService_ProcessPayment_NonLeapYearClampsToFebruary28(t *testing.T) {
	pkg := paidPackage(999, 1)
	now := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	ent := &models.Entitlement{ID: uuid.New()}

	repo := new(MockRepository)
	repo.On("GetActivePackage", mock.Anything, pkg.ID).Return(pkg, nil).Once()
	repo.On("GrantEntitlement", mock.Anything, userID, pkg.ID, now,
		time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)).Return(ent, int64(0), nil).Once()
	repo.On("CreatePayment", mock.Anything, mock.Anything).Return(uuid.New(), nil).Once()

	s := New(repo, fixedTxn{id: testTxn}, newNoopLogger(),
		WithClock(func() time.Time { return now }), WithPrimaryAdmin(adminID))
	repo.On("CreditWallet", mock.Anything, adminID, pkg.Price).Return(nil, errors.New("db down")).Once()

	res, err := s.ProcessPayment(context.Background(), userID, pkg.ID)

	require.NoError(t, err)
	assert.Equal(t, OutcomeGrantedWithLedgerWarning, res.Outcome)
	assert.Equal(t, []string{"wallet was not credited"}, res.Warnings)
	repo.AssertNotCalled(t, "PrimaryAdminID", mock.Anything)
	repo.AssertExpectations(t)
}

func TestService_ProcessPayment_Failures(t *testing.T) {
	pkg := paidPackage(999, 1)

	tests := []struct {
		name        string
		caller      uuid.UUID
		txn         fixedTxn
		setupMocks  func(*MockRepository)
		expectedErr error
		outcome     string
	}{
		{
			name:        "no session",
			caller:      uuid.Nil,
			txn:         fixedTxn{id: testTxn},
			setupMocks:  func(*MockRepository) {},
			expectedErr: ErrUnauthorized,
			outcome:     "unauthorized",
		},
		{
			name:        "transaction id generation fails",
			caller:      userID,
			txn:         fixedTxn{err: errors.New("entropy exhausted")},
			setupMocks:  func(*MockRepository) {},
			expectedErr: ErrUnexpected,
			outcome:     "unexpected",
		},
		{
			name:   "inactive package records failed payment with zero amount",
			caller: userID,
			txn:    fixedTxn{id: testTxn},
			setupMocks: func(r *MockRepository) {
				r.On("GetActivePackage", mock.Anything, pkg.ID).Return(nil, storage.ErrNotFound).Once()
				r.On("CreatePayment", mock.Anything, failedPayment(pkg.ID, decimal.Zero, "Package not found or inactive")).
					Return(uuid.New(), nil).Once()
			},
			expectedErr: ErrPackageNotFound,
			outcome:     "package_not_found",
		},
		{
			name:   "package lookup error",
			caller: userID,
			txn:    fixedTxn{id: testTxn},
			setupMocks: func(r *MockRepository) {
				r.On("GetActivePackage", mock.Anything, pkg.ID).Return(nil, errors.New("timeout")).Once()
				r.On("CreatePayment", mock.Anything, failedPayment(pkg.ID, decimal.Zero, "Unexpected error")).
					Return(uuid.New(), nil).Once()
			},
			expectedErr: ErrUnexpected,
			outcome:     "unexpected",
		},
		{
			name:   "entitlement write fails",
			caller: userID,
			txn:    fixedTxn{id: testTxn},
			setupMocks: func(r *MockRepository) {
				r.On("GetActivePackage", mock.Anything, pkg.ID).Return(pkg, nil).Once()
				r.On("GrantEntitlement", mock.Anything, userID, pkg.ID, mock.Anything, mock.Anything).
					Return(nil, int64(0), errors.New("insert: deadlock detected")).Once()
				r.On("CreatePayment", mock.Anything, failedPayment(pkg.ID, pkg.Price, "insert: deadlock detected")).
					Return(uuid.Nil, errors.New("still down")).Once()
			},
			expectedErr: ErrEntitlementWriteFailed,
			outcome:     "entitlement_write_failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			tt.setupMocks(repo)
			rec := &countingRecorder{}
			s := New(repo, tt.txn, newNoopLogger(), WithMetrics(rec), WithClock(func() time.Time { return fixedNow }))

			res, err := s.ProcessPayment(context.Background(), tt.caller, pkg.ID)

			assert.Nil(t, res)
			assert.ErrorIs(t, err, tt.expectedErr)
			assert.Equal(t, []string{tt.outcome}, rec.outcomes)
			repo.AssertExpectations(t)
		})
	}
}

func TestService_ProcessPayment_PaymentRowFailureSkipsWallet(t *testing.T) {
	pkg := paidPackage(500, 3)
	ent := &models.Entitlement{ID: uuid.New()}

	repo := new(MockRepository)
	repo.On("GetActivePackage", mock.Anything, pkg.ID).Return(pkg, nil).Once()
	repo.On("GrantEntitlement", mock.Anything, userID, pkg.ID, mock.Anything, mock.Anything).Return(ent, int64(0), nil).Once()
	repo.On("CreatePayment", mock.Anything, mock.Anything).Return(uuid.Nil, errors.New("constraint")).Once()

	res, err := newService(repo, WithPrimaryAdmin(adminID)).ProcessPayment(context.Background(), userID, pkg.ID)

	require.NoError(t, err)
	assert.Equal(t, OutcomeGrantedWithLedgerWarning, res.Outcome)
	assert.Equal(t, []string{"payment record was not saved"}, res.Warnings)
	assert.Equal(t, ent, res.Entitlement)
	repo.AssertNotCalled(t, "CreditWallet", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "CreateWalletTransaction", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "AttachWalletTransaction", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestService_ProcessPayment_AttachFailureIsWarning(t *testing.T) {
	pkg := paidPackage(500, 1)
	ent := &models.Entitlement{ID: uuid.New()}
	paymentID, wtID := uuid.New(), uuid.New()

	repo := new(MockRepository)
	repo.On("GetActivePackage", mock.Anything, pkg.ID).Return(pkg, nil).Once()
	repo.On("GrantEntitlement", mock.Anything, userID, pkg.ID, mock.Anything, mock.Anything).Return(ent, int64(0), nil).Once()
	repo.On("CreatePayment", mock.Anything, mock.Anything).Return(paymentID, nil).Once()
	repo.On("CreditWallet", mock.Anything, adminID, pkg.Price).Return(&models.WalletCredit{Amount: pkg.Price}, nil).Once()
	repo.On("CreateWalletTransaction", mock.Anything, mock.Anything).Return(wtID, nil).Once()
	repo.On("AttachWalletTransaction", mock.Anything, paymentID, wtID).Return(storage.ErrNotFound).Once()

	res, err := newService(repo, WithPrimaryAdmin(adminID)).ProcessPayment(context.Background(), userID, pkg.ID)

	require.NoError(t, err)
	assert.Equal(t, OutcomeGrantedWithLedgerWarning, res.Outcome)
	assert.Len(t, res.Warnings, 1)
	repo.AssertExpectations(t)
}

func TestService_ProcessPayment_NoAdminIsWarning(t *testing.T) {
	pkg := paidPackage(500, 1)

	repo := new(MockRepository)
	repo.On("GetActivePackage", mock.Anything, pkg.ID).Return(pkg, nil).Once()
	repo.On("GrantEntitlement", mock.Anything, userID, pkg.ID, mock.Anything, mock.Anything).
		Return(&models.Entitlement{ID: uuid.New()}, int64(0), nil).Once()
	repo.On("CreatePayment", mock.Anything, mock.Anything).Return(uuid.New(), nil).Once()
	repo.On("PrimaryAdminID", mock.Anything).Return(uuid.Nil, storage.ErrNotFound).Once()

	res, err := newService(repo).ProcessPayment(context.Background(), userID, pkg.ID)

	require.NoError(t, err)
	assert.Equal(t, OutcomeGrantedWithLedgerWarning, res.Outcome)
	repo.AssertExpectations(t)
}

func TestService_ProcessPayment_PublishesEvent(t *testing.T) {
	pkg := paidPackage(0, 1)
	ent := &models.Entitlement{ID: uuid.New(), StartDate: fixedNow, EndDate: fixedNow.AddDate(0, 1, 0)}

	repo := new(MockRepository)
	repo.On("GetActivePackage", mock.Anything, pkg.ID).Return(pkg, nil).Once()
	repo.On("GrantEntitlement", mock.Anything, userID, pkg.ID, mock.Anything, mock.Anything).Return(ent, int64(0), nil).Once()
	repo.On("CreatePayment", mock.Anything, mock.Anything).Return(uuid.New(), nil).Once()

	pub := new(MockPublisher)
	pub.On("Publish", mock.Anything, rabbitmq.RoutingKeyPurchaseCompleted, mock.MatchedBy(func(e PurchaseCompleted) bool {
		return e.TransactionID == testTxn && e.UserID == userID && e.EntitlementID == ent.ID && e.Outcome == OutcomeGranted
	})).Return(errors.New("broker unavailable")).Once()

	res, err := newService(repo, WithPublisher(pub)).ProcessPayment(context.Background(), userID, pkg.ID)

	require.NoError(t, err)
	assert.Equal(t, OutcomeGranted, res.Outcome)
	pub.AssertExpectations(t)
}

func TestService_ProcessPayment_PanicIsUnexpected(t *testing.T) {
	pkg := paidPackage(500, 1)
	repo := new(MockRepository)
	// a nil entitlement with no error panics on dereference
	repo.On("GetActivePackage", mock.Anything, pkg.ID).Return(pkg, nil).Once()
	repo.On("GrantEntitlement", mock.Anything, userID, pkg.ID, mock.Anything, mock.Anything).
		Return((*models.Entitlement)(nil), int64(0), nil).Once()

	res, err := newService(repo).ProcessPayment(context.Background(), userID, pkg.ID)

	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrUnexpected)
}

func TestService_History(t *testing.T) {
	repo := new(MockRepository)
	repo.On("ListPaymentsByUser", mock.Anything, userID, HistoryLimit).
		Return([]models.Payment{{TransactionID: testTxn}}, nil).Once()
	repo.On("ListPaymentsByUser", mock.Anything, adminID, HistoryLimit).
		Return(nil, errors.New("boom")).Once()

	s := newService(repo)
	payments, err := s.History(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, payments, 1)

	_, err = s.History(context.Background(), adminID)
	assert.Error(t, err)
}

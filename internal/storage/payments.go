package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/learning-platform/internal/models"
)

// CreatePayment appends a row to the payment ledger and returns its id.
func (s *Storage) CreatePayment(ctx context.Context, p models.Payment) (uuid.UUID, error) {
	const op = "storage.CreatePayment"
	select {
	case <-ctx.Done():
		return uuid.Nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	method := p.PaymentMethod
	if method == "" {
		method = models.PaymentMethodMockCard
	}
	query := `INSERT INTO payments (user_id, package_id, user_package_id, amount, status,
				transaction_id, payment_method, error_message)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING id`
	var id uuid.UUID
	err := s.DB.QueryRowContext(ctx, query,
		p.UserID, p.PackageID, p.UserPackageID, p.Amount, p.Status,
		p.TransactionID, method, nullString(p.ErrorMessage)).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return id, nil
}

// AttachWalletTransaction stores the back-reference from a payment to the
// wallet transaction it produced. It is the only update a payment row receives.
func (s *Storage) AttachWalletTransaction(ctx context.Context, paymentID, walletTransactionID uuid.UUID) error {
	const op = "storage.AttachWalletTransaction"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE payments SET wallet_transaction_id = $1 WHERE id = $2`,
		walletTransactionID, paymentID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return affectedOne(op, res)
}

// ListPaymentsByUser returns the billing history of userID, newest first.
func (s *Storage) ListPaymentsByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Payment, error) {
	const op = "storage.ListPaymentsByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT pm.id, pm.user_id, pm.package_id, pm.user_package_id, pm.amount, pm.status,
				pm.transaction_id, pm.payment_method, pm.error_message, pm.wallet_transaction_id,
				pm.created_at, COALESCE(p.name, '')
			  FROM payments pm
			  LEFT JOIN packages p ON p.id = pm.package_id
			  WHERE pm.user_id = $1
			  ORDER BY pm.created_at DESC
			  LIMIT $2`
	rows, err := s.DB.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	res := []models.Payment{}
	for rows.Next() {
		var p models.Payment
		var errMsg sql.NullString
		if err := rows.Scan(&p.ID, &p.UserID, &p.PackageID, &p.UserPackageID, &p.Amount, &p.Status,
			&p.TransactionID, &p.PaymentMethod, &errMsg, &p.WalletTransactionID,
			&p.CreatedAt, &p.PackageName); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		p.ErrorMessage = stringPtr(errMsg)
		res = append(res, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// PaymentStats counts completed payments and sums their amounts.
func (s *Storage) PaymentStats(ctx context.Context) (*models.PaymentStats, error) {
	const op = "storage.PaymentStats"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var st models.PaymentStats
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(amount), 0) FROM payments WHERE status = 'completed'`).
		Scan(&st.CompletedCount, &st.Revenue)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &st, nil
}

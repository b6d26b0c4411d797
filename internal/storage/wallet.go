package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/learning-platform/internal/models"
)

// CreditWallet adds amount to the balance and total earnings of adminID's
// wallet in one statement, creating the wallet on first use. The balance
// before the credit is derived from the returned balance, so concurrent
// credits never lose an increment.
func (s *Storage) CreditWallet(ctx context.Context, adminID uuid.UUID, amount decimal.Decimal) (*models.WalletCredit, error) {
	const op = "storage.CreditWallet"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO admin_wallet (admin_id, balance, total_earnings, updated_at)
			  VALUES ($1, $2, $2, NOW())
			  ON CONFLICT (admin_id) DO UPDATE
			  SET balance = admin_wallet.balance + EXCLUDED.balance,
			      total_earnings = admin_wallet.total_earnings + EXCLUDED.total_earnings,
			      updated_at = NOW()
			  RETURNING balance, total_earnings`
	c := models.WalletCredit{AdminID: adminID, Amount: amount}
	if err := s.DB.QueryRowContext(ctx, query, adminID, amount).Scan(&c.BalanceAfter, &c.TotalEarnings); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	c.BalanceBefore = c.BalanceAfter.Sub(amount)
	return &c, nil
}

// CreateWalletTransaction appends a snapshot to the wallet ledger.
func (s *Storage) CreateWalletTransaction(ctx context.Context, t models.WalletTransaction) (uuid.UUID, error) {
	const op = "storage.CreateWalletTransaction"
	select {
	case <-ctx.Done():
		return uuid.Nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	txType := t.TransactionType
	if txType == "" {
		txType = models.WalletTransactionCredit
	}
	query := `INSERT INTO wallet_transactions (admin_id, payment_id, transaction_type, amount,
				balance_before, balance_after, description)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id`
	var id uuid.UUID
	err := s.DB.QueryRowContext(ctx, query, t.AdminID, t.PaymentID, txType, t.Amount,
		t.BalanceBefore, t.BalanceAfter, t.Description).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return id, nil
}

// GetWallet returns the wallet of adminID or ErrNotFound before its first credit.
func (s *Storage) GetWallet(ctx context.Context, adminID uuid.UUID) (*models.Wallet, error) {
	const op = "storage.GetWallet"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var w models.Wallet
	err := s.DB.QueryRowContext(ctx,
		`SELECT admin_id, balance, total_earnings, updated_at FROM admin_wallet WHERE admin_id = $1`, adminID).
		Scan(&w.AdminID, &w.Balance, &w.TotalEarnings, &w.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return &w, nil
}

// ListWalletTransactions returns the latest wallet movements of adminID
// together with the payment, payer and package they came from.
func (s *Storage) ListWalletTransactions(ctx context.Context, adminID uuid.UUID, limit int) ([]models.WalletTransaction, error) {
	const op = "storage.ListWalletTransactions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT wt.id, wt.admin_id, wt.payment_id, wt.transaction_type, wt.amount,
				wt.balance_before, wt.balance_after, wt.description, wt.created_at,
				COALESCE(pm.transaction_id, ''), COALESCE(pr.email, ''), COALESCE(p.name, '')
			  FROM wallet_transactions wt
			  LEFT JOIN payments pm ON pm.id = wt.payment_id
			  LEFT JOIN profiles pr ON pr.id = pm.user_id
			  LEFT JOIN packages p ON p.id = pm.package_id
			  WHERE wt.admin_id = $1
			  ORDER BY wt.created_at DESC
			  LIMIT $2`
	rows, err := s.DB.QueryContext(ctx, query, adminID, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	res := []models.WalletTransaction{}
	for rows.Next() {
		var t models.WalletTransaction
		if err := rows.Scan(&t.ID, &t.AdminID, &t.PaymentID, &t.TransactionType, &t.Amount,
			&t.BalanceBefore, &t.BalanceAfter, &t.Description, &t.CreatedAt,
			&t.TransactionRef, &t.UserEmail, &t.PackageName); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletTransactionCredit is the only transaction type written by checkout.
const WalletTransactionCredit = "credit"

// Wallet is the operator's running balance.
type Wallet struct {
	AdminID       uuid.UUID       `json:"admin_id"`
	Balance       decimal.Decimal `json:"balance"`
	TotalEarnings decimal.Decimal `json:"total_earnings"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// WalletCredit is the outcome of an atomic wallet increment.
type WalletCredit struct {
	AdminID       uuid.UUID
	Amount        decimal.Decimal
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	TotalEarnings decimal.Decimal
}

// WalletTransaction is an immutable snapshot of one wallet movement.
type WalletTransaction struct {
	ID              uuid.UUID       `json:"id"`
	AdminID         uuid.UUID       `json:"admin_id"`
	PaymentID       uuid.NullUUID   `json:"payment_id" swaggertype:"string"`
	TransactionType string          `json:"transaction_type"`
	Amount          decimal.Decimal `json:"amount"`
	BalanceBefore   decimal.Decimal `json:"balance_before"`
	BalanceAfter    decimal.Decimal `json:"balance_after"`
	Description     string          `json:"description"`
	CreatedAt       time.Time       `json:"created_at"`
	// Filled by the admin overview.
	TransactionRef string `json:"transaction_ref,omitempty"`
	UserEmail      string `json:"user_email,omitempty"`
	PackageName    string `json:"package_name,omitempty"`
}

// WalletOverview is what the admin wallet page shows.
type WalletOverview struct {
	Wallet       Wallet              `json:"wallet"`
	Transactions []WalletTransaction `json:"transactions"`
	Stats        PaymentStats        `json:"stats"`
}

// DashboardCounts are the headline numbers of the admin dashboard.
type DashboardCounts struct {
	Students           int64 `json:"students"`
	Subjects           int64 `json:"subjects"`
	Videos             int64 `json:"videos"`
	Quizzes            int64 `json:"quizzes"`
	ActiveEntitlements int64 `json:"active_entitlements"`
}

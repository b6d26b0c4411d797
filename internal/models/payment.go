package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment statuses.
const (
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)

// PaymentMethodMockCard is the only method the checkout supports.
const PaymentMethodMockCard = "mock_card"

// Payment is an append-only ledger row written once per processing attempt.
type Payment struct {
	ID                  uuid.UUID       `json:"id"`
	UserID              uuid.UUID       `json:"user_id"`
	PackageID           uuid.UUID       `json:"package_id"`
	UserPackageID       uuid.NullUUID   `json:"user_package_id" swaggertype:"string"`
	Amount              decimal.Decimal `json:"amount"`
	Status              string          `json:"status"`
	TransactionID       string          `json:"transaction_id"`
	PaymentMethod       string          `json:"payment_method"`
	ErrorMessage        *string         `json:"error_message,omitempty"`
	WalletTransactionID uuid.NullUUID   `json:"wallet_transaction_id" swaggertype:"string"`
	CreatedAt           time.Time       `json:"created_at"`
	// PackageName is filled by history queries.
	PackageName string `json:"package_name,omitempty"`
}

// PaymentStats summarizes completed payments.
type PaymentStats struct {
	CompletedCount int64           `json:"completed_count"`
	Revenue        decimal.Decimal `json:"revenue"`
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Holding is one purchase lot in the portfolio ledger.
type Holding struct {
	ID             uuid.UUID       `json:"id" yaml:"id"`
	Symbol         string          `json:"symbol" yaml:"symbol"`
	Quantity       decimal.Decimal `json:"quantity" yaml:"quantity"`
	CostBasisPrice decimal.Decimal `json:"cost_basis_price" yaml:"cost_basis_price"`
	CostBasisValue decimal.Decimal `json:"cost_basis_value" yaml:"cost_basis_value"`
	CreatedAt      time.Time       `json:"created_at" yaml:"created_at"`
}

// ValueAt returns the lot's value at the given price.
func (h Holding) ValueAt(price decimal.Decimal) decimal.Decimal {
	return h.Quantity.Mul(price)
}

// PnLAt returns the lot's profit or loss at the given price.
func (h Holding) PnLAt(price decimal.Decimal) decimal.Decimal {
	return h.ValueAt(price).Sub(h.CostBasisValue)
}

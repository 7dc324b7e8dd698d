package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionKind identifies the token movement recorded by an audit entry.
type TransactionKind string

const (
	TransactionKindBuy       TransactionKind = "BUY"
	TransactionKindStake     TransactionKind = "STAKE"
	TransactionKindUnstake   TransactionKind = "UNSTAKE"
	TransactionKindAffiliate TransactionKind = "AFFILIATE"
)

// TransactionStatus is the lifecycle state of a ledger entry. Entries are
// append-only; the only permitted mutation is PENDING moving to a terminal
// state.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusConfirmed TransactionStatus = "CONFIRMED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// Transaction is an append-only audit record of a completed token
// operation. TxRef carries the external reference id returned by the
// transfer executor (a synthetic id in simulated mode).
type Transaction struct {
	ID            uuid.UUID         `json:"id"`
	WalletAddress string            `json:"wallet_address"`
	Kind          TransactionKind   `json:"transaction_type"`
	Amount        decimal.Decimal   `json:"amount"`
	Currency      string            `json:"currency"`
	TxRef         string            `json:"tx_hash,omitempty"`
	Status        TransactionStatus `json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
}

// IsTerminal reports whether the entry reached a final state.
func (t *Transaction) IsTerminal() bool {
	return t.Status == TransactionStatusConfirmed || t.Status == TransactionStatusFailed
}

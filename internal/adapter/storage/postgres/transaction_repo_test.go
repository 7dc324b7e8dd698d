package postgres

import (
	"context"
	"testing"
	"time"

	"tokensale-platform/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransaction(wallet string) *domain.Transaction {
	return &domain.Transaction{
		ID:            uuid.New(),
		WalletAddress: wallet,
		Kind:          domain.TransactionKindStake,
		Amount:        decimal.RequireFromString("25"),
		Currency:      "CFD",
		TxRef:         "",
		Status:        domain.TransactionStatusConfirmed,
		CreatedAt:     time.Now().UTC().Truncate(time.Microsecond),
	}
}

func transactionTestColumns() []string {
	return []string{"id", "wallet_address", "transaction_type", "amount", "currency", "tx_hash", "status", "created_at"}
}

func TestTransactionRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := newTestTransaction("0xabc123")

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO transactions").
		WithArgs(txn.ID, txn.WalletAddress, txn.Kind, txn.Amount, txn.Currency,
			txn.TxRef, txn.Status, txn.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, txn)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_ListByWallet(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	first := newTestTransaction("0xabc123")
	second := newTestTransaction("0xabc123")
	second.Kind = domain.TransactionKindBuy
	second.TxRef = "SIM-ref"

	rows := pgxmock.NewRows(transactionTestColumns()).
		AddRow(first.ID, first.WalletAddress, first.Kind, first.Amount, first.Currency,
			first.TxRef, first.Status, first.CreatedAt).
		AddRow(second.ID, second.WalletAddress, second.Kind, second.Amount, second.Currency,
			second.TxRef, second.Status, second.CreatedAt)

	mock.ExpectQuery("FROM transactions WHERE wallet_address").
		WithArgs("0xabc123", 50).
		WillReturnRows(rows)

	txns, err := repo.ListByWallet(context.Background(), "0xabc123", 50)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, domain.TransactionKindStake, txns[0].Kind)
	assert.Equal(t, "SIM-ref", txns[1].TxRef)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_UpdateStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	id := uuid.New()

	mock.ExpectExec("UPDATE transactions SET status").
		WithArgs(domain.TransactionStatusFailed, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = repo.UpdateStatus(context.Background(), id, domain.TransactionStatusFailed)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_UpdateStatus_NotPending(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	id := uuid.New()

	// Terminal entries never match the PENDING guard.
	mock.ExpectExec("UPDATE transactions SET status").
		WithArgs(domain.TransactionStatusConfirmed, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.UpdateStatus(context.Background(), id, domain.TransactionStatusConfirmed)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "pending transaction not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

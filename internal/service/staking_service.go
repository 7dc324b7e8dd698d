package service

import (
	"context"
	"fmt"
	"time"

	"tokensale-platform/internal/core/domain"
	"tokensale-platform/internal/core/ports"
	"tokensale-platform/pkg/apperror"
	"tokensale-platform/pkg/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	configKeyICOPhase = "ico_phase"

	// supplyShareScale is the rounding applied to the percentage-of-supply
	// figure.
	supplyShareScale = 6
)

// StakingServiceImpl implements ports.StakingService with pessimistic
// locking: every balance mutation runs inside one database transaction
// holding the wallet's token row FOR UPDATE, so concurrent operations on
// the same wallet serialize while distinct wallets proceed in parallel.
type StakingServiceImpl struct {
	tokenRepo   ports.TokenRepository
	accountRepo ports.AccountRepository
	txnRepo     ports.TransactionRepository
	configRepo  ports.ConfigRepository
	transactor  ports.DBTransactor
	oracle      ports.BalanceOracle
	executor    ports.TransferExecutor
	metrics     *metrics.Metrics
	lockPeriod  time.Duration
	totalSupply decimal.Decimal
	// oracleTimeout bounds the opportunistic on-chain balance refresh; it
	// never extends a request beyond its own deadline.
	oracleTimeout time.Duration
	log           zerolog.Logger
}

// NewStakingService creates a new StakingServiceImpl.
func NewStakingService(
	tokenRepo ports.TokenRepository,
	accountRepo ports.AccountRepository,
	txnRepo ports.TransactionRepository,
	configRepo ports.ConfigRepository,
	transactor ports.DBTransactor,
	oracle ports.BalanceOracle,
	executor ports.TransferExecutor,
	m *metrics.Metrics,
	lockPeriod time.Duration,
	totalSupply decimal.Decimal,
	oracleTimeout time.Duration,
	log zerolog.Logger,
) *StakingServiceImpl {
	return &StakingServiceImpl{
		tokenRepo:     tokenRepo,
		accountRepo:   accountRepo,
		txnRepo:       txnRepo,
		configRepo:    configRepo,
		transactor:    transactor,
		oracle:        oracle,
		executor:      executor,
		metrics:       m,
		lockPeriod:    lockPeriod,
		totalSupply:   totalSupply,
		oracleTimeout: oracleTimeout,
		log:           log,
	}
}

// Stake moves amount from liquid into staked. The first stake anchors the
// lock period; topping up an existing stake never resets it.
func (s *StakingServiceImpl) Stake(ctx context.Context, wallet string, amount decimal.Decimal) (balance *domain.TokenBalance, err error) {
	defer func() { s.metrics.ObserveStakingOp("stake", err) }()

	if !amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}
	wallet = domain.NormalizeAddress(wallet)

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Lock & get token row
	record, err := s.tokenRepo.GetByWalletForUpdate(ctx, dbTx, wallet)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock token row: %w", err))
	}
	if record == nil {
		return nil, apperror.ErrNotFound("Token balance")
	}

	// Business rule: sufficient liquid tokens
	if record.Liquid.LessThan(amount) {
		return nil, apperror.ErrInsufficientBalance()
	}

	now := time.Now().UTC()
	record.Liquid = record.Liquid.Sub(amount)
	record.Staked = record.Staked.Add(amount)
	if record.StakeStart == nil {
		record.StakeStart = &now
	}

	if err := s.tokenRepo.UpdateBalances(ctx, dbTx, wallet, record.Liquid, record.Staked, record.StakeStart); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update balances: %w", err))
	}

	txn := &domain.Transaction{
		ID:            uuid.New(),
		WalletAddress: wallet,
		Kind:          domain.TransactionKindStake,
		Amount:        amount,
		Currency:      "CFD",
		Status:        domain.TransactionStatusConfirmed,
		CreatedAt:     now,
	}
	if err := s.txnRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create transaction: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("wallet", wallet).
		Str("amount", amount.String()).
		Str("staked", record.Staked.String()).
		Msg("tokens staked")

	return record, nil
}

// Unstake moves amount from staked back into liquid, subject to the
// minimum lock period counted from the first stake. Draining the stake to
// exactly zero clears the lock anchor.
func (s *StakingServiceImpl) Unstake(ctx context.Context, wallet string, amount decimal.Decimal) (balance *domain.TokenBalance, err error) {
	defer func() { s.metrics.ObserveStakingOp("unstake", err) }()

	if !amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}
	wallet = domain.NormalizeAddress(wallet)

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	record, err := s.tokenRepo.GetByWalletForUpdate(ctx, dbTx, wallet)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock token row: %w", err))
	}
	if record == nil {
		return nil, apperror.ErrNotFound("Token balance")
	}

	if record.Staked.LessThan(amount) {
		return nil, apperror.ErrInsufficientStaked()
	}

	now := time.Now().UTC()
	if !record.LockElapsed(now, s.lockPeriod) {
		return nil, apperror.ErrLockPeriodActive()
	}

	record.Staked = record.Staked.Sub(amount)
	record.Liquid = record.Liquid.Add(amount)
	if record.Staked.IsZero() {
		record.StakeStart = nil
	}

	if err := s.tokenRepo.UpdateBalances(ctx, dbTx, wallet, record.Liquid, record.Staked, record.StakeStart); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update balances: %w", err))
	}

	txn := &domain.Transaction{
		ID:            uuid.New(),
		WalletAddress: wallet,
		Kind:          domain.TransactionKindUnstake,
		Amount:        amount,
		Currency:      "CFD",
		Status:        domain.TransactionStatusConfirmed,
		CreatedAt:     now,
	}
	if err := s.txnRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create transaction: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("wallet", wallet).
		Str("amount", amount.String()).
		Str("staked", record.Staked.String()).
		Msg("tokens unstaked")

	return record, nil
}

// Buy converts a payment amount into tokens at the current ICO phase
// price, submits the token transfer and credits the liquid balance. A
// previously unseen wallet gets its account and balance created.
func (s *StakingServiceImpl) Buy(ctx context.Context, req ports.BuyRequest) (result *ports.BuyResult, err error) {
	defer func() { s.metrics.ObserveStakingOp("buy", err) }()

	if !req.Amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}
	wallet := domain.NormalizeAddress(req.WalletAddress)

	price, err := s.currentPhasePrice(ctx)
	if err != nil {
		return nil, err
	}
	tokens := req.Amount.DivRound(price, 18)

	if err := s.ensureAccountExists(ctx, wallet); err != nil {
		return nil, err
	}

	// Submit the transfer before touching local state: a failed transfer
	// must not credit tokens.
	txRef, err := s.executor.Transfer(ctx, wallet, tokens)
	if err != nil {
		return nil, apperror.ErrChainUnavailable(fmt.Errorf("token transfer: %w", err))
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	record, err := s.tokenRepo.GetByWalletForUpdate(ctx, dbTx, wallet)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock token row: %w", err))
	}
	if record == nil {
		return nil, apperror.ErrNotFound("Token balance")
	}

	now := time.Now().UTC()
	record.Liquid = record.Liquid.Add(tokens)

	if err := s.tokenRepo.UpdateBalances(ctx, dbTx, wallet, record.Liquid, record.Staked, record.StakeStart); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update balances: %w", err))
	}

	txn := &domain.Transaction{
		ID:            uuid.New(),
		WalletAddress: wallet,
		Kind:          domain.TransactionKindBuy,
		Amount:        req.Amount,
		Currency:      req.Currency,
		TxRef:         txRef,
		Status:        domain.TransactionStatusConfirmed,
		CreatedAt:     now,
	}
	if err := s.txnRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create transaction: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("wallet", wallet).
		Str("paid", req.Amount.String()).
		Str("currency", req.Currency).
		Str("tokens", tokens.String()).
		Str("tx_ref", txRef).
		Msg("token purchase processed")

	return &ports.BuyResult{
		TokensReceived: tokens,
		TxRef:          txRef,
		Balance:        record,
	}, nil
}

// Balance returns the wallet's token record, creating an empty one on
// first query. The liquid figure is opportunistically refreshed from the
// on-chain oracle under a short timeout; on oracle failure the stored
// value is served.
func (s *StakingServiceImpl) Balance(ctx context.Context, wallet string) (*domain.TokenBalance, error) {
	wallet = domain.NormalizeAddress(wallet)

	account, err := s.accountRepo.GetByWallet(ctx, wallet)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrNotFound("Account")
	}

	record, err := s.getOrCreateBalance(ctx, wallet)
	if err != nil {
		return nil, err
	}

	if s.oracle != nil {
		oracleCtx, cancel := context.WithTimeout(ctx, s.oracleTimeout)
		defer cancel()

		onChain, err := s.oracle.QueryBalance(oracleCtx, wallet)
		if err != nil {
			s.log.Warn().Err(err).Str("wallet", wallet).Msg("balance oracle unavailable, serving stored value")
		} else if !onChain.Equal(record.Liquid) {
			if err := s.tokenRepo.SetLiquid(ctx, wallet, onChain); err != nil {
				s.log.Warn().Err(err).Str("wallet", wallet).Msg("failed to persist refreshed balance")
			} else {
				record.Liquid = onChain
			}
		}
	}

	return record, nil
}

// StakedInfo returns the wallet's staking state; an unknown wallet gets a
// zero-value record rather than an error.
func (s *StakingServiceImpl) StakedInfo(ctx context.Context, wallet string) (*domain.TokenBalance, error) {
	wallet = domain.NormalizeAddress(wallet)

	record, err := s.tokenRepo.GetByWallet(ctx, wallet)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load token balance: %w", err))
	}
	if record == nil {
		return domain.NewTokenBalance(wallet), nil
	}
	return record, nil
}

// PercentageOfSupply computes the wallet's total holdings against the
// configured total supply, rounded to six places.
func (s *StakingServiceImpl) PercentageOfSupply(ctx context.Context, wallet string) (*ports.SupplyShare, error) {
	record, err := s.StakedInfo(ctx, wallet)
	if err != nil {
		return nil, err
	}

	total := record.Total()
	share := &ports.SupplyShare{
		Percentage:  decimal.Zero,
		TotalTokens: total,
		TotalSupply: s.totalSupply,
	}
	if s.totalSupply.IsPositive() {
		share.Percentage = total.Div(s.totalSupply).Mul(decimal.NewFromInt(100)).Round(supplyShareScale)
	}
	return share, nil
}

// History returns the wallet's most recent ledger entries, newest first.
func (s *StakingServiceImpl) History(ctx context.Context, wallet string, limit int) ([]domain.Transaction, error) {
	wallet = domain.NormalizeAddress(wallet)
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	txns, err := s.txnRepo.ListByWallet(ctx, wallet, limit)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list transactions: %w", err))
	}
	return txns, nil
}

// currentPhasePrice resolves the active ICO phase and its token price
// from the config store.
func (s *StakingServiceImpl) currentPhasePrice(ctx context.Context) (decimal.Decimal, error) {
	phase, err := s.configRepo.Get(ctx, configKeyICOPhase)
	if err != nil {
		return decimal.Zero, apperror.InternalError(fmt.Errorf("load ico phase: %w", err))
	}
	if phase == nil {
		return decimal.Zero, apperror.InternalError(fmt.Errorf("config %q missing", configKeyICOPhase))
	}

	priceKey := fmt.Sprintf("ico_phase%s_price", phase.Value)
	entry, err := s.configRepo.Get(ctx, priceKey)
	if err != nil {
		return decimal.Zero, apperror.InternalError(fmt.Errorf("load phase price: %w", err))
	}
	if entry == nil {
		return decimal.Zero, apperror.InternalError(fmt.Errorf("config %q missing", priceKey))
	}

	price, err := decimal.NewFromString(entry.Value)
	if err != nil || !price.IsPositive() {
		return decimal.Zero, apperror.InternalError(fmt.Errorf("invalid phase price %q", entry.Value))
	}
	return price, nil
}

// ensureAccountExists creates the account and token row for a wallet
// buying tokens before ever connecting.
func (s *StakingServiceImpl) ensureAccountExists(ctx context.Context, wallet string) error {
	account, err := s.accountRepo.GetByWallet(ctx, wallet)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("load account: %w", err))
	}
	if account != nil {
		return nil
	}

	if err := s.accountRepo.Create(ctx, domain.NewAccount(wallet)); err != nil {
		return apperror.InternalError(fmt.Errorf("create account: %w", err))
	}
	if err := s.tokenRepo.Create(ctx, domain.NewTokenBalance(wallet)); err != nil {
		return apperror.InternalError(fmt.Errorf("create token balance: %w", err))
	}
	return nil
}

// getOrCreateBalance fetches the wallet's token row, creating an empty
// one when absent.
func (s *StakingServiceImpl) getOrCreateBalance(ctx context.Context, wallet string) (*domain.TokenBalance, error) {
	record, err := s.tokenRepo.GetByWallet(ctx, wallet)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load token balance: %w", err))
	}
	if record != nil {
		return record, nil
	}

	record = domain.NewTokenBalance(wallet)
	if err := s.tokenRepo.Create(ctx, record); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create token balance: %w", err))
	}
	return record, nil
}

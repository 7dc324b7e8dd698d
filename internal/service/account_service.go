package service

import (
	"context"
	"fmt"
	"time"

	"tokensale-platform/internal/core/domain"
	"tokensale-platform/internal/core/ports"
	"tokensale-platform/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// AccountServiceImpl implements ports.AccountService.
type AccountServiceImpl struct {
	accountRepo ports.AccountRepository
	tokenRepo   ports.TokenRepository
	txnRepo     ports.TransactionRepository
	transactor  ports.DBTransactor
	verifier    ports.SignatureVerifier
	sessionSvc  ports.SessionTokenService
	executor    ports.TransferExecutor
	// bootstrapAdmin is promoted to admin on first connect. Empty disables
	// bootstrapping.
	bootstrapAdmin string
	commission     decimal.Decimal
	logger         zerolog.Logger
}

// NewAccountService creates a new AccountServiceImpl.
func NewAccountService(
	accountRepo ports.AccountRepository,
	tokenRepo ports.TokenRepository,
	txnRepo ports.TransactionRepository,
	transactor ports.DBTransactor,
	verifier ports.SignatureVerifier,
	sessionSvc ports.SessionTokenService,
	executor ports.TransferExecutor,
	bootstrapAdmin string,
	commission decimal.Decimal,
	logger zerolog.Logger,
) *AccountServiceImpl {
	return &AccountServiceImpl{
		accountRepo:    accountRepo,
		tokenRepo:      tokenRepo,
		txnRepo:        txnRepo,
		transactor:     transactor,
		verifier:       verifier,
		sessionSvc:     sessionSvc,
		executor:       executor,
		bootstrapAdmin: domain.NormalizeAddress(bootstrapAdmin),
		commission:     commission,
		logger:         logger,
	}
}

// ConnectOrLoad authenticates a signed connect message and returns the
// account plus a fresh session token. A previously unseen wallet gets an
// account and an empty token balance created on the spot; repeated
// connects only refresh last_login.
func (s *AccountServiceImpl) ConnectOrLoad(ctx context.Context, req ports.ConnectRequest) (*ports.ConnectResult, error) {
	if err := s.verifier.Verify(req.WalletAddress, req.Message, req.Signature); err != nil {
		return nil, err
	}

	wallet := domain.NormalizeAddress(req.WalletAddress)
	now := time.Now().UTC()

	account, err := s.accountRepo.GetByWallet(ctx, wallet)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load account: %w", err))
	}

	if account == nil {
		account = domain.NewAccount(wallet)
		account.IsAdmin = s.bootstrapAdmin != "" && wallet == s.bootstrapAdmin
		account.LastLogin = &now

		if err := s.accountRepo.Create(ctx, account); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("create account: %w", err))
		}

		s.logger.Info().Str("wallet", wallet).Bool("is_admin", account.IsAdmin).Msg("account created")
	} else {
		account.LastLogin = &now
		if err := s.accountRepo.UpdateLastLogin(ctx, wallet, now); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("update last login: %w", err))
		}
	}

	// Conflict-free insert: completes a first connect, repairs an account
	// whose token row never landed, and is safe when two first connects
	// for the same wallet race.
	if err := s.tokenRepo.Create(ctx, domain.NewTokenBalance(wallet)); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create token balance: %w", err))
	}

	token, expiry, err := s.sessionSvc.Generate(wallet, account.IsAdmin)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate session token: %w", err))
	}

	return &ports.ConnectResult{
		Account:      account,
		IsAdmin:      account.IsAdmin,
		SessionToken: token,
		TokenExpiry:  expiry,
	}, nil
}

// Verify looks up an existing account without signature proof.
func (s *AccountServiceImpl) Verify(ctx context.Context, wallet string) (*domain.Account, error) {
	wallet = domain.NormalizeAddress(wallet)

	account, err := s.accountRepo.GetByWallet(ctx, wallet)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrNotFound("Account")
	}
	return account, nil
}

// UpdateProfile applies the non-nil fields of the request to the account.
func (s *AccountServiceImpl) UpdateProfile(ctx context.Context, req ports.ProfileUpdateRequest) (*domain.Account, error) {
	account, err := s.Verify(ctx, req.WalletAddress)
	if err != nil {
		return nil, err
	}

	if req.Username != nil {
		account.Username = req.Username
	}
	if req.Email != nil {
		account.Email = req.Email
	}
	if req.PreferredLanguage != nil {
		if !domain.IsSupportedLanguage(*req.PreferredLanguage) {
			return nil, apperror.Validation(fmt.Sprintf("unsupported language %q", *req.PreferredLanguage))
		}
		account.PreferredLanguage = *req.PreferredLanguage
	}

	if err := s.accountRepo.UpdateProfile(ctx, account); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update profile: %w", err))
	}
	return account, nil
}

// RegisterAffiliate records the referrer of a newly connected wallet and
// pays out the flat commission. A referred wallet that has never
// connected gets its account created on the spot. A wallet can be
// referred at most once; repeat calls report AlreadyReferred and move no
// funds.
func (s *AccountServiceImpl) RegisterAffiliate(ctx context.Context, referrer, newWallet string) (*ports.AffiliateResult, error) {
	referrer = domain.NormalizeAddress(referrer)
	newWallet = domain.NormalizeAddress(newWallet)

	if referrer == newWallet {
		return nil, apperror.Validation("wallet cannot refer itself")
	}

	referrerAccount, err := s.accountRepo.GetByWallet(ctx, referrer)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load referrer: %w", err))
	}
	if referrerAccount == nil {
		return nil, apperror.ErrNotFound("Referrer account")
	}

	referred, err := s.ensureAccount(ctx, newWallet)
	if err != nil {
		return nil, err
	}

	if referred.ReferredBy != nil {
		return &ports.AffiliateResult{
			Referrer:        *referred.ReferredBy,
			NewWallet:       newWallet,
			Commission:      decimal.Zero,
			AlreadyReferred: true,
		}, nil
	}

	// The commission payout happens before any local write: a failed
	// transfer must leave both accounts untouched so the registration can
	// be retried.
	txRef, err := s.executor.Transfer(ctx, referrer, s.commission)
	if err != nil {
		return nil, apperror.ErrChainUnavailable(fmt.Errorf("pay commission: %w", err))
	}

	tx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer tx.Rollback(ctx)

	if err := s.accountRepo.SetReferrer(ctx, tx, newWallet, referrer); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("set referrer: %w", err))
	}

	if err := s.accountRepo.AddAffiliateEarnings(ctx, tx, referrer, s.commission); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("credit earnings: %w", err))
	}

	txn := &domain.Transaction{
		ID:            uuid.New(),
		WalletAddress: referrer,
		Kind:          domain.TransactionKindAffiliate,
		Amount:        s.commission,
		Currency:      "MATIC",
		TxRef:         txRef,
		Status:        domain.TransactionStatusConfirmed,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.txnRepo.Create(ctx, tx, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("record commission: %w", err))
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.logger.Info().
		Str("referrer", referrer).
		Str("new_wallet", newWallet).
		Str("commission", s.commission.String()).
		Str("tx_ref", txRef).
		Msg("affiliate commission paid")

	return &ports.AffiliateResult{
		Referrer:   referrer,
		NewWallet:  newWallet,
		Commission: s.commission,
		TxRef:      txRef,
	}, nil
}

// ensureAccount loads the wallet's account, creating it together with an
// empty token balance when the wallet has never connected.
func (s *AccountServiceImpl) ensureAccount(ctx context.Context, wallet string) (*domain.Account, error) {
	account, err := s.accountRepo.GetByWallet(ctx, wallet)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load account: %w", err))
	}
	if account != nil {
		return account, nil
	}

	account = domain.NewAccount(wallet)
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create account: %w", err))
	}
	if err := s.tokenRepo.Create(ctx, domain.NewTokenBalance(wallet)); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create token balance: %w", err))
	}
	return account, nil
}

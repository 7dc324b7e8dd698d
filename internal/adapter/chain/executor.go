package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"time"

	"tokensale-platform/internal/core/domain"
	"tokensale-platform/pkg/metrics"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// SimulatedExecutor implements ports.TransferExecutor without touching a
// chain. Used in ICO simulation mode and in tests; the synthetic
// reference id makes simulated transfers recognizable in the ledger.
type SimulatedExecutor struct {
	log zerolog.Logger
}

// NewSimulatedExecutor creates the simulated executor.
func NewSimulatedExecutor(log zerolog.Logger) *SimulatedExecutor {
	return &SimulatedExecutor{log: log}
}

// Transfer always succeeds with a synthetic reference.
func (e *SimulatedExecutor) Transfer(_ context.Context, toWallet string, amount decimal.Decimal) (string, error) {
	ref := "SIM-" + uuid.NewString()
	e.log.Debug().
		Str("to", toWallet).
		Str("amount", amount.String()).
		Str("tx_ref", ref).
		Msg("simulated token transfer")
	return ref, nil
}

const (
	transferMaxAttempts = 3
	transferBackoff     = 2 * time.Second
)

// OnChainExecutor implements ports.TransferExecutor by submitting an
// ERC-20 transfer signed with the treasury key and waiting for the
// receipt. Submission is retried a bounded number of times with linear
// backoff; a mined-but-reverted transfer is not retried.
type OnChainExecutor struct {
	client  *ethclient.Client
	bound   *bind.BoundContract
	key     *ecdsa.PrivateKey
	chainID *big.Int
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// NewOnChainExecutor dials the RPC endpoint, parses the treasury key and
// binds the token contract.
func NewOnChainExecutor(ctx context.Context, rpcURL, tokenContract, treasuryKeyHex string, m *metrics.Metrics, log zerolog.Logger) (*OnChainExecutor, error) {
	if !common.IsHexAddress(tokenContract) {
		return nil, fmt.Errorf("invalid token contract address %q", tokenContract)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(treasuryKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parsing treasury key: %w", err)
	}

	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dialing chain rpc: %w", err)
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("reading chain id: %w", err)
	}

	parsed, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("parsing erc20 abi: %w", err)
	}

	return &OnChainExecutor{
		client:  client,
		bound:   bind.NewBoundContract(common.HexToAddress(tokenContract), parsed, client, client, client),
		key:     key,
		chainID: chainID,
		metrics: m,
		log:     log,
	}, nil
}

// Transfer submits transfer(to, amount) and waits for it to be mined.
func (e *OnChainExecutor) Transfer(ctx context.Context, toWallet string, amount decimal.Decimal) (ref string, err error) {
	defer func() { e.metrics.ObserveChainCall("transfer", err) }()

	toWallet = domain.NormalizeAddress(toWallet)
	if !common.IsHexAddress(toWallet) {
		return "", fmt.Errorf("invalid destination address %q", toWallet)
	}

	to := common.HexToAddress(toWallet)
	value := amount.Shift(tokenDecimals).BigInt()

	var lastErr error
	for attempt := 1; attempt <= transferMaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt-1) * transferBackoff):
			}
		}

		auth, err := bind.NewKeyedTransactorWithChainID(e.key, e.chainID)
		if err != nil {
			return "", fmt.Errorf("building transactor: %w", err)
		}
		auth.Context = ctx

		tx, err := e.bound.Transact(auth, "transfer", to, value)
		if err != nil {
			lastErr = err
			e.log.Warn().Err(err).Int("attempt", attempt).Msg("token transfer submission failed")
			continue
		}

		receipt, err := bind.WaitMined(ctx, e.client, tx)
		if err != nil {
			lastErr = err
			e.log.Warn().Err(err).Str("tx_hash", tx.Hash().Hex()).Msg("waiting for transfer receipt failed")
			continue
		}
		if receipt.Status == 0 {
			// Reverted on-chain; retrying would revert again.
			return "", fmt.Errorf("transfer reverted: %s", tx.Hash().Hex())
		}

		return tx.Hash().Hex(), nil
	}

	return "", fmt.Errorf("transfer failed after %d attempts: %w", transferMaxAttempts, lastErr)
}

// Close releases the underlying RPC connection.
func (e *OnChainExecutor) Close() {
	e.client.Close()
}

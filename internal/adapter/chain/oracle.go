// Package chain holds the on-chain boundary: the ERC-20 balance oracle
// and the token transfer executors. Everything else in the system treats
// the chain as unreliable; failures here degrade, they do not crash.
package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"tokensale-platform/internal/core/domain"
	"tokensale-platform/pkg/metrics"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// erc20ABI is the fragment of the ERC-20 interface this adapter touches.
const erc20ABI = `[
	{"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"type":"function"},
	{"constant":false,"inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"type":"function"}
]`

// tokenDecimals is the CFD token's fixed decimal count.
const tokenDecimals = 18

// ERC20Oracle implements ports.BalanceOracle against a deployed ERC-20
// token contract.
type ERC20Oracle struct {
	client   *ethclient.Client
	contract common.Address
	abi      abi.ABI
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

// NewERC20Oracle dials the RPC endpoint and prepares the contract binding.
func NewERC20Oracle(ctx context.Context, rpcURL, tokenContract string, m *metrics.Metrics, log zerolog.Logger) (*ERC20Oracle, error) {
	if !common.IsHexAddress(tokenContract) {
		return nil, fmt.Errorf("invalid token contract address %q", tokenContract)
	}

	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dialing chain rpc: %w", err)
	}

	parsed, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("parsing erc20 abi: %w", err)
	}

	return &ERC20Oracle{
		client:   client,
		contract: common.HexToAddress(tokenContract),
		abi:      parsed,
		metrics:  m,
		log:      log,
	}, nil
}

// QueryBalance reads balanceOf(wallet) and converts from the token's
// 18-decimal fixed point. The caller owns the deadline.
func (o *ERC20Oracle) QueryBalance(ctx context.Context, wallet string) (balance decimal.Decimal, err error) {
	defer func() { o.metrics.ObserveChainCall("balance_of", err) }()

	wallet = domain.NormalizeAddress(wallet)
	if !common.IsHexAddress(wallet) {
		return decimal.Zero, fmt.Errorf("invalid wallet address %q", wallet)
	}

	data, err := o.abi.Pack("balanceOf", common.HexToAddress(wallet))
	if err != nil {
		return decimal.Zero, fmt.Errorf("packing balanceOf: %w", err)
	}

	raw, err := o.client.CallContract(ctx, ethereum.CallMsg{
		To:   &o.contract,
		Data: data,
	}, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("calling balanceOf: %w", err)
	}

	out, err := o.abi.Unpack("balanceOf", raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unpacking balanceOf: %w", err)
	}
	value, ok := out[0].(*big.Int)
	if !ok {
		return decimal.Zero, fmt.Errorf("unexpected balanceOf result type %T", out[0])
	}

	return decimal.NewFromBigInt(value, -tokenDecimals), nil
}

// Close releases the underlying RPC connection.
func (o *ERC20Oracle) Close() {
	o.client.Close()
}

package handler

import (
	"tokensale-platform/internal/adapter/http/dto"
	"tokensale-platform/internal/adapter/http/middleware"
	"tokensale-platform/internal/core/ports"
	"tokensale-platform/pkg/apperror"
	"tokensale-platform/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// TokenHandler handles the token balance and staking endpoints.
type TokenHandler struct {
	stakingSvc ports.StakingService
	accountSvc ports.AccountService
}

// NewTokenHandler creates a new TokenHandler.
func NewTokenHandler(stakingSvc ports.StakingService, accountSvc ports.AccountService) *TokenHandler {
	return &TokenHandler{stakingSvc: stakingSvc, accountSvc: accountSvc}
}

// Balance handles GET /api/tokens/balance.
func (h *TokenHandler) Balance(c *gin.Context) {
	balance, err := h.stakingSvc.Balance(c.Request.Context(), middleware.SessionWallet(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toBalanceResponse(balance))
}

// Staked handles GET /api/tokens/staked.
func (h *TokenHandler) Staked(c *gin.Context) {
	balance, err := h.stakingSvc.StakedInfo(c.Request.Context(), middleware.SessionWallet(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toBalanceResponse(balance))
}

// Percentage handles GET /api/tokens/percentage.
func (h *TokenHandler) Percentage(c *gin.Context) {
	share, err := h.stakingSvc.PercentageOfSupply(c.Request.Context(), middleware.SessionWallet(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.SupplyShareResponse{
		Percentage:  share.Percentage.String(),
		TotalTokens: share.TotalTokens.String(),
		TotalSupply: share.TotalSupply.String(),
	})
}

// Transactions handles GET /api/tokens/transactions.
func (h *TokenHandler) Transactions(c *gin.Context) {
	txns, err := h.stakingSvc.History(c.Request.Context(), middleware.SessionWallet(c), 50)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toTransactionResponses(txns))
}

// Stake handles POST /api/tokens/stake.
func (h *TokenHandler) Stake(c *gin.Context) {
	amount, ok := bindAmount(c)
	if !ok {
		return
	}

	balance, err := h.stakingSvc.Stake(c.Request.Context(), middleware.SessionWallet(c), amount)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toBalanceResponse(balance))
}

// Unstake handles POST /api/tokens/unstake.
func (h *TokenHandler) Unstake(c *gin.Context) {
	amount, ok := bindAmount(c)
	if !ok {
		return
	}

	balance, err := h.stakingSvc.Unstake(c.Request.Context(), middleware.SessionWallet(c), amount)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toBalanceResponse(balance))
}

// Buy handles POST /api/tokens/buy.
func (h *TokenHandler) Buy(c *gin.Context) {
	var req dto.BuyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}

	result, err := h.stakingSvc.Buy(c.Request.Context(), ports.BuyRequest{
		WalletAddress: middleware.SessionWallet(c),
		Amount:        amount,
		Currency:      req.Currency,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BuyResponse{
		TokensReceived: result.TokensReceived.String(),
		TxRef:          result.TxRef,
		Balance:        toBalanceResponse(result.Balance),
	})
}

// Affiliate handles POST /api/tokens/affiliate.
func (h *TokenHandler) Affiliate(c *gin.Context) {
	var req dto.AffiliateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	result, err := h.accountSvc.RegisterAffiliate(c.Request.Context(), req.Referrer, req.NewWallet)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{
		"referrer":         result.Referrer,
		"new_wallet":       result.NewWallet,
		"commission":       result.Commission.String(),
		"tx_hash":          result.TxRef,
		"already_referred": result.AlreadyReferred,
	})
}

// bindAmount parses the shared stake/unstake request body. A false
// return means the error response was already written.
func bindAmount(c *gin.Context) (decimal.Decimal, bool) {
	var req dto.StakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return decimal.Zero, false
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		response.Error(c, apperror.ErrInvalidAmount())
		return decimal.Zero, false
	}
	return amount, true
}

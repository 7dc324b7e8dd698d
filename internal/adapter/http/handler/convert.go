package handler

import (
	"time"

	"tokensale-platform/internal/adapter/http/dto"
	"tokensale-platform/internal/core/domain"
)

func toAccountResponse(a *domain.Account) dto.AccountResponse {
	resp := dto.AccountResponse{
		WalletAddress:     a.WalletAddress,
		Username:          a.Username,
		Email:             a.Email,
		PreferredLanguage: a.PreferredLanguage,
		RegistrationDate:  a.RegistrationDate.UTC().Format(time.RFC3339),
		IsAdmin:           a.IsAdmin,
		ReferralCode:      a.ReferralCode,
		ReferredBy:        a.ReferredBy,
		AffiliateEarnings: a.AffiliateEarnings.String(),
	}
	if a.LastLogin != nil {
		s := a.LastLogin.UTC().Format(time.RFC3339)
		resp.LastLogin = &s
	}
	return resp
}

func toBalanceResponse(b *domain.TokenBalance) *dto.BalanceResponse {
	resp := &dto.BalanceResponse{
		WalletAddress: b.WalletAddress,
		Liquid:        b.Liquid.String(),
		Staked:        b.Staked.String(),
		Total:         b.Total().String(),
	}
	if b.StakeStart != nil {
		s := b.StakeStart.UTC().Format(time.RFC3339)
		resp.StakeStart = &s
	}
	return resp
}

func toTransactionResponses(txns []domain.Transaction) []dto.TransactionResponse {
	out := make([]dto.TransactionResponse, 0, len(txns))
	for _, t := range txns {
		out = append(out, dto.TransactionResponse{
			ID:              t.ID.String(),
			TransactionType: string(t.Kind),
			Amount:          t.Amount.String(),
			Currency:        t.Currency,
			TxRef:           t.TxRef,
			Status:          string(t.Status),
			CreatedAt:       t.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}

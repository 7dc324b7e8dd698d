package dto

// ConnectRequest is the request body for wallet connection. The
// signature is the hex-encoded 65-byte personal-message signature over
// Message.
type ConnectRequest struct {
	WalletAddress string `json:"wallet_address" binding:"required,eth_addr"`
	Message       string `json:"message" binding:"required,max=1024"`
	Signature     string `json:"signature" binding:"required,max=256"`
}

// ConnectResponse is the response body for a successful connect.
type ConnectResponse struct {
	WalletAddress string `json:"wallet_address"`
	IsAdmin       bool   `json:"is_admin"`
	SessionToken  string `json:"session_token"`
	TokenExpiry   int64  `json:"token_expiry"` // Unix timestamp
	ReferralCode  string `json:"referral_code"`
}

// ProfileUpdateRequest is the request body for profile updates. All
// fields are optional; absent fields are left untouched.
type ProfileUpdateRequest struct {
	Username          *string `json:"username,omitempty" binding:"omitempty,min=1,max=50"`
	Email             *string `json:"email,omitempty" binding:"omitempty,email,max=254"`
	PreferredLanguage *string `json:"preferred_language,omitempty" binding:"omitempty,len=2"`
}

// AffiliateRequest is the request body for registering a referral.
type AffiliateRequest struct {
	Referrer  string `json:"referrer" binding:"required,eth_addr"`
	NewWallet string `json:"new_wallet" binding:"required,eth_addr"`
}

// StakeRequest is the request body for stake and unstake operations.
// Amount is a decimal string to preserve precision.
type StakeRequest struct {
	Amount string `json:"amount" binding:"required,max=40"`
}

// BuyRequest is the request body for a token purchase.
type BuyRequest struct {
	Amount   string `json:"amount" binding:"required,max=40"`
	Currency string `json:"currency" binding:"omitempty,min=3,max=5"`
}

// BuyResponse is the response body for a completed purchase.
type BuyResponse struct {
	TokensReceived string           `json:"tokens_received"`
	TxRef          string           `json:"tx_hash"`
	Balance        *BalanceResponse `json:"balance"`
}

// BalanceResponse is the response body for balance queries.
type BalanceResponse struct {
	WalletAddress string  `json:"wallet_address"`
	Liquid        string  `json:"token_amount"`
	Staked        string  `json:"staked_amount"`
	Total         string  `json:"total"`
	StakeStart    *string `json:"staking_start_date,omitempty"`
}

// SupplyShareResponse is the response for the percentage-of-supply query.
type SupplyShareResponse struct {
	Percentage  string `json:"percentage"`
	TotalTokens string `json:"total_tokens"`
	TotalSupply string `json:"total_supply"`
}

// ContentUpdateRequest is the request body for a content upsert.
type ContentUpdateRequest struct {
	PageID       string `json:"page_id" binding:"required,safe_id,max=50"`
	SectionID    string `json:"section_id" binding:"required,safe_id,max=50"`
	ContentType  string `json:"content_type" binding:"required,max=20"`
	ContentValue string `json:"content_value" binding:"required,max=10000"`
	LanguageCode string `json:"language_code" binding:"required,len=2"`
}

// ConfigUpdateRequest is the request body for a config upsert.
type ConfigUpdateRequest struct {
	Key   string `json:"key" binding:"required,safe_id,max=100"`
	Value string `json:"value" binding:"required,max=1000"`
}

// SubscribeRequest is the request body for a newsletter subscription.
type SubscribeRequest struct {
	Email    string `json:"email" binding:"required,email,max=254"`
	Language string `json:"language" binding:"omitempty,len=2"`
}

// UnsubscribeRequest is the request body for a newsletter unsubscribe.
type UnsubscribeRequest struct {
	Email string `json:"email" binding:"required,email,max=254"`
}

// AccountResponse is the serialized account for profile and admin views.
type AccountResponse struct {
	WalletAddress     string  `json:"wallet_address"`
	Username          *string `json:"username"`
	Email             *string `json:"email"`
	PreferredLanguage string  `json:"preferred_language"`
	RegistrationDate  string  `json:"registration_date"`
	LastLogin         *string `json:"last_login"`
	IsAdmin           bool    `json:"is_admin"`
	ReferralCode      string  `json:"referral_code"`
	ReferredBy        *string `json:"referred_by,omitempty"`
	AffiliateEarnings string  `json:"affiliate_earnings"`
}

// TransactionResponse is one serialized ledger entry.
type TransactionResponse struct {
	ID              string `json:"id"`
	TransactionType string `json:"transaction_type"`
	Amount          string `json:"amount"`
	Currency        string `json:"currency"`
	TxRef           string `json:"tx_hash,omitempty"`
	Status          string `json:"status"`
	CreatedAt       string `json:"created_at"`
}

// StatusResponse is the version banner served on /api/status.
type StatusResponse struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Status  string `json:"status"`
}

package integration

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tokensale-platform/internal/adapter/chain"
	httpHandler "tokensale-platform/internal/adapter/http/handler"
	redisStorage "tokensale-platform/internal/adapter/storage/redis"
	"tokensale-platform/internal/core/domain"
	"tokensale-platform/internal/core/ports"
	"tokensale-platform/internal/service"
	"tokensale-platform/pkg/logger"
	"tokensale-platform/pkg/metrics"

	"github.com/alicebob/miniredis/v2"
	"github.com/ethereum/go-ethereum/crypto"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testApp wires the full stack behind a httptest server: real handlers,
// middleware, services and Redis stores (miniredis), with in-memory
// Postgres repos. Signatures are real secp256k1 signatures.
type testApp struct {
	server *httptest.Server
	redis  *miniredis.Miniredis

	accounts    *inMemoryAccountRepo
	tokens      *inMemoryTokenRepo
	txns        *inMemoryTransactionRepo
	configs     *inMemoryConfigRepo
	contents    *inMemoryContentRepo
	newsletters *inMemoryNewsletterRepo

	adminKey  *ecdsa.PrivateKey
	adminAddr string
}

func newTestApp(t *testing.T) *testApp {
	return buildTestApp(t, false)
}

func buildTestApp(t *testing.T, rateLimited bool) *testApp {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})

	log := logger.New("debug", false)

	accounts := newInMemoryAccountRepo()
	tokens := newInMemoryTokenRepo()
	txns := newInMemoryTransactionRepo()
	configs := newInMemoryConfigRepo()
	contents := newInMemoryContentRepo()
	newsletters := newInMemoryNewsletterRepo()
	transactor := newSerializingTransactor()

	seedConfigs(t, configs)

	adminKey, adminAddr := newTestWallet(t)

	verifier := service.NewEthSignatureVerifier()
	sessionSvc := service.NewJWTSessionService("integration-test-secret-32bytes!", time.Hour, "tokensale-test")
	executor := chain.NewSimulatedExecutor(log)
	totalSupply := decimal.NewFromInt(21_000_000)

	accountSvc := service.NewAccountService(
		accounts, tokens, txns, transactor, verifier, sessionSvc, executor,
		adminAddr, decimal.RequireFromString("0.001"), log,
	)
	stakingSvc := service.NewStakingService(
		tokens, accounts, txns, configs, transactor, nil, executor,
		metrics.New(), 0, totalSupply, 2*time.Second, log,
	)
	adminSvc := service.NewAdminService(accounts, tokens, newsletters, contents, totalSupply)
	contentSvc := service.NewContentService(contents, adminSvc)
	configSvc := service.NewConfigService(configs, redisStorage.NewConfigCache(rdb), adminSvc, log)
	newsletterSvc := service.NewNewsletterService(newsletters, adminSvc)

	var rateLimitStore *redisStorage.RateLimitStore
	if rateLimited {
		rateLimitStore = redisStorage.NewRateLimitStore(rdb)
	}

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AccountSvc:     accountSvc,
		StakingSvc:     stakingSvc,
		AdminSvc:       adminSvc,
		ContentSvc:     contentSvc,
		ConfigSvc:      configSvc,
		NewsletterSvc:  newsletterSvc,
		SessionSvc:     sessionSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{redisStorage.NewHealthCheck(rdb)},
		Logger:         log,
	})

	return &testApp{
		server:      httptest.NewServer(router),
		redis:       mr,
		accounts:    accounts,
		tokens:      tokens,
		txns:        txns,
		configs:     configs,
		contents:    contents,
		newsletters: newsletters,
		adminKey:    adminKey,
		adminAddr:   adminAddr,
	}
}

func (a *testApp) close() {
	a.server.Close()
	a.redis.Close()
}

func seedConfigs(t *testing.T, configs *inMemoryConfigRepo) {
	t.Helper()
	for key, value := range map[string]string{
		"ico_phase":             "1",
		"ico_phase1_price":      "0.02",
		"ico_phase2_price":      "0.10",
		"total_supply":          "21000000",
		"default_language":      "pt",
		"private_treasury_note": "do-not-serve",
	} {
		_, err := configs.Upsert(t.Context(), &domain.ConfigEntry{Key: key, Value: value})
		require.NoError(t, err)
	}
}

// --- Wallet helpers ---

func newTestWallet(t *testing.T) (*ecdsa.PrivateKey, string) {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return key, strings.ToLower(crypto.PubkeyToAddress(key.PublicKey).Hex())
}

// signMessage produces the hex personal-message signature a browser
// wallet would emit, V encoded as 27/28.
func signMessage(t *testing.T, key *ecdsa.PrivateKey, message string) string {
	t.Helper()
	prefixed := fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(message), message)
	sig, err := crypto.Sign(crypto.Keccak256([]byte(prefixed)), key)
	require.NoError(t, err)
	sig[64] += 27
	return "0x" + hex.EncodeToString(sig)
}

// connect performs the signed connect flow and returns the session token.
func (a *testApp) connect(t *testing.T, key *ecdsa.PrivateKey, addr string) string {
	t.Helper()
	message := "Login to tokensale-platform"
	resp := a.request(t, http.MethodPost, "/api/auth/connect", "", map[string]string{
		"wallet_address": addr,
		"message":        message,
		"signature":      signMessage(t, key, message),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := decodeData(t, resp)
	token, _ := data["session_token"].(string)
	require.NotEmpty(t, token)
	return token
}

// --- HTTP helpers ---

func (a *testApp) request(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, a.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

// decodeData asserts the success envelope and returns its data object.
func decodeData(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var envelope struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.True(t, envelope.Success)
	return envelope.Data
}

// decodeList returns the data array of a success envelope.
func decodeList(t *testing.T, resp *http.Response) []map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var envelope struct {
		Success bool             `json:"success"`
		Data    []map[string]any `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.True(t, envelope.Success)
	return envelope.Data
}

// decodeError returns the error_code of an error envelope.
func decodeError(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	var envelope struct {
		Success   bool   `json:"success"`
		ErrorCode string `json:"error_code"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.False(t, envelope.Success)
	return envelope.ErrorCode
}

// --- Integration Tests ---

func TestIntegration_StatusAndHealth(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp := app.request(t, http.MethodGet, "/api/status", "", nil)
	data := decodeData(t, resp)
	assert.Equal(t, "tokensale-platform", data["service"])
	assert.Equal(t, "operational", data["status"])

	resp2, err := http.Get(app.server.URL + "/health")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)

	var health map[string]any
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&health))
	assert.Equal(t, "healthy", health["status"])
}

func TestIntegration_ConnectFlow(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	key, addr := newTestWallet(t)

	message := "Login to tokensale-platform"
	resp := app.request(t, http.MethodPost, "/api/auth/connect", "", map[string]string{
		"wallet_address": addr,
		"message":        message,
		"signature":      signMessage(t, key, message),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := decodeData(t, resp)
	assert.Equal(t, addr, data["wallet_address"])
	assert.Equal(t, false, data["is_admin"])
	assert.NotEmpty(t, data["session_token"])
	token := data["session_token"].(string)

	// Repeated connect is idempotent and hands out a fresh token.
	token2 := app.connect(t, key, addr)
	assert.NotEmpty(t, token2)

	// The account is now visible without signature proof.
	resp = app.request(t, http.MethodGet, "/api/auth/verify?wallet_address="+addr, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	verified := decodeData(t, resp)
	assert.Equal(t, addr, verified["wallet_address"])

	// Profile update requires the session token.
	resp = app.request(t, http.MethodPut, "/api/auth/profile", "", map[string]string{"username": "alice"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = app.request(t, http.MethodPut, "/api/auth/profile", token, map[string]string{
		"username":           "alice",
		"preferred_language": "en",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	profile := decodeData(t, resp)
	assert.Equal(t, "alice", profile["username"])
	assert.Equal(t, "en", profile["preferred_language"])
}

func TestIntegration_ConnectRejectsWrongSigner(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	_, addr := newTestWallet(t)
	otherKey, _ := newTestWallet(t)

	message := "Login to tokensale-platform"
	resp := app.request(t, http.MethodPost, "/api/auth/connect", "", map[string]string{
		"wallet_address": addr,
		"message":        message,
		"signature":      signMessage(t, otherKey, message),
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "AUTH_001", decodeError(t, resp))

	// The failed connect must not have created an account.
	account, err := app.accounts.GetByWallet(t.Context(), addr)
	require.NoError(t, err)
	assert.Nil(t, account)
}

func TestIntegration_BuyStakeUnstakeFlow(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	key, addr := newTestWallet(t)
	token := app.connect(t, key, addr)

	// Buy 1 USDT at the phase-1 price of 0.02 -> 50 tokens.
	resp := app.request(t, http.MethodPost, "/api/tokens/buy", token, map[string]string{
		"amount":   "1",
		"currency": "USDT",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	bought := decodeData(t, resp)
	assert.Equal(t, "50", bought["tokens_received"])
	assert.NotEmpty(t, bought["tx_hash"])

	// Stake 20 of them.
	resp = app.request(t, http.MethodPost, "/api/tokens/stake", token, map[string]string{"amount": "20"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	staked := decodeData(t, resp)
	assert.Equal(t, "30", staked["token_amount"])
	assert.Equal(t, "20", staked["staked_amount"])
	assert.NotEmpty(t, staked["staking_start_date"])

	// Unstake 5 (no lock period configured in tests).
	resp = app.request(t, http.MethodPost, "/api/tokens/unstake", token, map[string]string{"amount": "5"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	unstaked := decodeData(t, resp)
	assert.Equal(t, "35", unstaked["token_amount"])
	assert.Equal(t, "15", unstaked["staked_amount"])

	resp = app.request(t, http.MethodGet, "/api/tokens/balance", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	balance := decodeData(t, resp)
	assert.Equal(t, "50", balance["total"])

	resp = app.request(t, http.MethodGet, "/api/tokens/percentage", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	share := decodeData(t, resp)
	assert.Equal(t, "50", share["total_tokens"])
	assert.Equal(t, "21000000", share["total_supply"])

	// The ledger recorded all three operations, newest first.
	resp = app.request(t, http.MethodGet, "/api/tokens/transactions", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	history := decodeList(t, resp)
	require.Len(t, history, 3)
	assert.Equal(t, "UNSTAKE", history[0]["transaction_type"])
	for _, entry := range history {
		assert.Equal(t, "CONFIRMED", entry["status"])
	}
}

func TestIntegration_StakeInsufficientBalance(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	key, addr := newTestWallet(t)
	token := app.connect(t, key, addr)

	resp := app.request(t, http.MethodPost, "/api/tokens/stake", token, map[string]string{"amount": "10"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "STK_001", decodeError(t, resp))
}

func TestIntegration_AffiliateFlow(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	referrerKey, referrerAddr := newTestWallet(t)
	app.connect(t, referrerKey, referrerAddr)

	// The referred wallet never connects: registration creates its account
	// on the spot.
	_, newAddr := newTestWallet(t)

	resp := app.request(t, http.MethodPost, "/api/tokens/affiliate", "", map[string]string{
		"referrer":   referrerAddr,
		"new_wallet": newAddr,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result := decodeData(t, resp)
	assert.Equal(t, "0.001", result["commission"])
	assert.Equal(t, false, result["already_referred"])

	referred, err := app.accounts.GetByWallet(t.Context(), newAddr)
	require.NoError(t, err)
	require.NotNil(t, referred)
	require.NotNil(t, referred.ReferredBy)
	assert.Equal(t, referrerAddr, *referred.ReferredBy)

	// A second registration pays nothing.
	resp = app.request(t, http.MethodPost, "/api/tokens/affiliate", "", map[string]string{
		"referrer":   referrerAddr,
		"new_wallet": newAddr,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	repeat := decodeData(t, resp)
	assert.Equal(t, true, repeat["already_referred"])
	assert.Equal(t, "0", repeat["commission"])

	referrer, err := app.accounts.GetByWallet(t.Context(), referrerAddr)
	require.NoError(t, err)
	assert.Equal(t, "0.001", referrer.AffiliateEarnings.String())
}

func TestIntegration_AdminSurface(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	adminToken := app.connect(t, app.adminKey, app.adminAddr)
	userKey, userAddr := newTestWallet(t)
	userToken := app.connect(t, userKey, userAddr)

	// Admin dashboard works for the bootstrap admin only.
	resp := app.request(t, http.MethodGet, "/api/admin/dashboard", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	dashboard := decodeData(t, resp)
	assert.EqualValues(t, 2, dashboard["total_users"])

	resp = app.request(t, http.MethodGet, "/api/admin/dashboard", userToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "AUTH_003", decodeError(t, resp))

	// Config writes are admin-gated; private keys never reach the public
	// endpoint.
	resp = app.request(t, http.MethodPost, "/api/config/admin/update", adminToken, map[string]string{
		"key":   "ico_phase",
		"value": "2",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = app.request(t, http.MethodGet, "/api/config/get", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	public := decodeData(t, resp)
	assert.Equal(t, "2", public["ico_phase"])
	assert.NotContains(t, public, "private_treasury_note")

	resp = app.request(t, http.MethodPost, "/api/config/admin/update", userToken, map[string]string{
		"key":   "ico_phase",
		"value": "1",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// Content writes follow the same gate.
	resp = app.request(t, http.MethodPost, "/api/content/admin/update", adminToken, map[string]string{
		"page_id":       "home",
		"section_id":    "hero",
		"content_type":  "text",
		"content_value": "Welcome",
		"language_code": "en",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = app.request(t, http.MethodGet, "/api/content/home/en", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := decodeData(t, resp)
	sections := page["sections"].(map[string]any)
	require.Contains(t, sections, "hero")
}

func TestIntegration_Newsletter(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp := app.request(t, http.MethodPost, "/api/newsletter/subscribe", "", map[string]string{
		"email":    "reader@example.com",
		"language": "en",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sub := decodeData(t, resp)
	assert.Equal(t, true, sub["subscribed"])
	assert.Equal(t, false, sub["reactivated"])

	// Duplicate active subscription is rejected.
	resp = app.request(t, http.MethodPost, "/api/newsletter/subscribe", "", map[string]string{
		"email": "reader@example.com",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "NLT_001", decodeError(t, resp))

	resp = app.request(t, http.MethodPost, "/api/newsletter/unsubscribe", "", map[string]string{
		"email": "reader@example.com",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Subscribing again reactivates the soft-deleted record.
	resp = app.request(t, http.MethodPost, "/api/newsletter/subscribe", "", map[string]string{
		"email": "reader@example.com",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resub := decodeData(t, resp)
	assert.Equal(t, true, resub["reactivated"])

	// The subscriber list is admin-only.
	adminToken := app.connect(t, app.adminKey, app.adminAddr)
	resp = app.request(t, http.MethodGet, "/api/newsletter/admin/list", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	subs := decodeList(t, resp)
	require.Len(t, subs, 1)
	assert.Equal(t, "reader@example.com", subs[0]["email"])
}

func TestIntegration_RateLimit(t *testing.T) {
	app := buildTestApp(t, true)
	defer app.close()

	// The newsletter endpoints allow five requests per window per client.
	for i := 0; i < 5; i++ {
		resp := app.request(t, http.MethodPost, "/api/newsletter/subscribe", "", map[string]string{
			"email": fmt.Sprintf("reader%d@example.com", i),
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	resp := app.request(t, http.MethodPost, "/api/newsletter/subscribe", "", map[string]string{
		"email": "one-too-many@example.com",
	})
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
	assert.Equal(t, "RATE_001", decodeError(t, resp))
}

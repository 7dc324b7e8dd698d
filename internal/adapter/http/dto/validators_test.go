package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func validatorEngine(t *testing.T) *validator.Validate {
	t.Helper()
	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)
	return v
}

func TestValidateEthAddr(t *testing.T) {
	v := validatorEngine(t)

	type form struct {
		Wallet string `binding:"eth_addr" validate:"eth_addr"`
	}

	valid := []string{
		"0x435fe1f9fe971ba37c51b25272e9e3d12a39490d",
		"0x435FE1f9Fe971BA37c51b25272e9e3d12a39490D",
	}
	for _, addr := range valid {
		assert.NoError(t, v.Struct(form{Wallet: addr}), addr)
	}

	invalid := []string{
		"",
		"435fe1f9fe971ba37c51b25272e9e3d12a39490d",
		"0x435fe1f9",
		"0xzzzze1f9fe971ba37c51b25272e9e3d12a39490d",
	}
	for _, addr := range invalid {
		assert.Error(t, v.Struct(form{Wallet: addr}), addr)
	}
}

func TestValidateSafeID(t *testing.T) {
	v := validatorEngine(t)

	type form struct {
		ID string `binding:"safe_id" validate:"safe_id"`
	}

	assert.NoError(t, v.Struct(form{ID: "home"}))
	assert.NoError(t, v.Struct(form{ID: "hero_title-1.v2"}))
	assert.Error(t, v.Struct(form{ID: "hero title"}))
	assert.Error(t, v.Struct(form{ID: "<script>"}))
}

func TestSanitizeStruct(t *testing.T) {
	username := "  <b>alice</b>  "
	req := ProfileUpdateRequest{Username: &username}

	SanitizeStruct(&req)

	assert.Equal(t, "&lt;b&gt;alice&lt;/b&gt;", *req.Username)
}

func TestSanitizeStruct_PlainStrings(t *testing.T) {
	req := ConnectRequest{
		WalletAddress: " 0xabc ",
		Message:       "hello",
	}

	SanitizeStruct(&req)

	assert.Equal(t, "0xabc", req.WalletAddress)
	assert.Equal(t, "hello", req.Message)
}

func TestSanitizeStruct_NonStructIsNoop(t *testing.T) {
	s := "unchanged"
	SanitizeStruct(&s)
	assert.Equal(t, "unchanged", s)
}

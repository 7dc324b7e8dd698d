package service

import (
	"fmt"

	"tokensale-platform/pkg/apperror"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// EthSignatureVerifier implements ports.SignatureVerifier by recovering
// the secp256k1 signer of an EIP-191 personal message and comparing it to
// the claimed wallet address.
//
// This is a pure function of its inputs: no network I/O, no state.
type EthSignatureVerifier struct{}

// NewEthSignatureVerifier creates the verifier.
func NewEthSignatureVerifier() *EthSignatureVerifier {
	return &EthSignatureVerifier{}
}

// Verify returns nil when signature over message was produced by
// claimedAddress. Address comparison is case-insensitive: both sides are
// parsed into their 20-byte form before comparing.
//
// Malformed signatures (wrong length, invalid recovery id, recovery
// failure) are authentication failures, not internal faults.
func (v *EthSignatureVerifier) Verify(claimedAddress, message string, signature []byte) error {
	if !common.IsHexAddress(claimedAddress) {
		return apperror.Validation("invalid wallet address")
	}
	if len(signature) != crypto.SignatureLength {
		return apperror.ErrInvalidSignature(fmt.Errorf("signature length %d, want %d", len(signature), crypto.SignatureLength))
	}

	// Wallets emit V as 27/28 (legacy Ethereum convention); SigToPub wants
	// the raw recovery id 0/1.
	sig := make([]byte, crypto.SignatureLength)
	copy(sig, signature)
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}
	if sig[crypto.RecoveryIDOffset] > 1 {
		return apperror.ErrInvalidSignature(fmt.Errorf("invalid recovery id %d", signature[crypto.RecoveryIDOffset]))
	}

	pub, err := crypto.SigToPub(personalDigest(message), sig)
	if err != nil {
		return apperror.ErrInvalidSignature(err)
	}

	if crypto.PubkeyToAddress(*pub) != common.HexToAddress(claimedAddress) {
		return apperror.ErrSignatureMismatch()
	}
	return nil
}

// personalDigest computes the EIP-191 personal-message digest:
// keccak256("\x19Ethereum Signed Message:\n" + len(message) + message).
func personalDigest(message string) []byte {
	prefixed := fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(message), message)
	return crypto.Keccak256([]byte(prefixed))
}

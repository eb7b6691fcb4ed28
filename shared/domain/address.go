package domain

import (
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

type (
	WalletAddress = string
	MintAddress   = string
	Signature     = string
	Username      = string
	ProfileId     = string
)

const signatureLength = 64

// ValidateAddress reports whether s is a base58 encoded 32 byte Solana public key.
func ValidateAddress(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("address is empty")
	}
	if _, err := solana.PublicKeyFromBase58(s); err != nil {
		return fmt.Errorf("invalid solana address %q: %w", s, err)
	}
	return nil
}

func IsAddress(s string) bool {
	return ValidateAddress(s) == nil
}

// ValidateSignature reports whether s is a base58 encoded transaction signature.
func ValidateSignature(s string) error {
	raw, err := base58.Decode(s)
	if err != nil {
		return fmt.Errorf("invalid signature encoding: %w", err)
	}
	if len(raw) != signatureLength {
		return fmt.Errorf("invalid signature length %d, expected %d", len(raw), signatureLength)
	}
	return nil
}

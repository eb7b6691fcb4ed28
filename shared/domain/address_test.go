package domain

import (
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
)

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		name    string
		address string
		valid   bool
	}{
		{"system program", "11111111111111111111111111111111", true},
		{"usdc mint", "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", true},
		{"empty", "", false},
		{"not base58", "0OIl0OIl0OIl0OIl0OIl0OIl0OIl0OIl", false},
		{"too short", "abc", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAddress(tt.address)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
			assert.Equal(t, tt.valid, IsAddress(tt.address))
		})
	}
}

func TestValidateSignature(t *testing.T) {
	valid := base58.Encode(make([]byte, signatureLength))
	assert.NoError(t, ValidateSignature(valid))

	short := base58.Encode(make([]byte, 32))
	assert.Error(t, ValidateSignature(short))

	assert.Error(t, ValidateSignature("not-base58-0OIl"))
}

func TestPageNormalize(t *testing.T) {
	assert.Equal(t, Page{Page: 1, PageSize: 20}, Page{}.Normalize())
	assert.Equal(t, Page{Page: 3, PageSize: 100}, Page{Page: 3, PageSize: 500}.Normalize())
	assert.Equal(t, Page{Page: 2, PageSize: 5}, Page{Page: 2, PageSize: 5}.Normalize())
}

func TestIdentityOwns(t *testing.T) {
	id := Identity{Wallet: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"}
	assert.True(t, id.Owns("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"))
	assert.False(t, id.Owns("11111111111111111111111111111111"))
	assert.False(t, Identity{}.Owns(""))
}

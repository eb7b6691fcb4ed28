package domain

// Identity is the authenticated caller, taken from a verified bearer token.
type Identity struct {
	Wallet    WalletAddress
	ProfileId ProfileId // empty until the wallet owns a profile
}

// Owns reports whether the identity controls the given wallet.
func (i Identity) Owns(wallet WalletAddress) bool {
	return i.Wallet != "" && i.Wallet == wallet
}

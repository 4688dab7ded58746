package chain

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"
)

// DeriveAddress derives the service wallet address from a hex-encoded
// 32-byte seed. The address is the hex SHA3-256 digest of the ed25519
// public key, so the same seed always yields the same address.
func DeriveAddress(seedHex string) (string, error) {
	seed, err := hex.DecodeString(seedHex)
	if err != nil {
		return "", fmt.Errorf("decode wallet seed: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return "", fmt.Errorf("wallet seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}

	pub := ed25519.NewKeyFromSeed(seed).Public().(ed25519.PublicKey)
	digest := sha3.Sum256(pub)
	return hex.EncodeToString(digest[:]), nil
}

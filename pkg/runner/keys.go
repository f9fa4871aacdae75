package runner

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/aretw0/debot/pkg/domain"
)

// ParseSecret builds a key pair from a hex ed25519 secret: either the 32-byte
// seed or the 64-byte seed||public form. The public key is derived from the seed.
func ParseSecret(secret string) (domain.KeyPair, error) {
	raw, err := hex.DecodeString(strings.TrimSpace(secret))
	if err != nil {
		return domain.KeyPair{}, fmt.Errorf("secret key is not hex: %w", err)
	}
	switch len(raw) {
	case ed25519.SeedSize, ed25519.PrivateKeySize:
	default:
		return domain.KeyPair{}, fmt.Errorf("secret key must be %d or %d bytes, got %d", ed25519.SeedSize, ed25519.PrivateKeySize, len(raw))
	}
	seed := raw[:ed25519.SeedSize]
	pub := ed25519.NewKeyFromSeed(seed).Public().(ed25519.PublicKey)
	if len(raw) == ed25519.PrivateKeySize && !pub.Equal(ed25519.PublicKey(raw[ed25519.SeedSize:])) {
		return domain.KeyPair{}, fmt.Errorf("public half does not match the seed")
	}
	return domain.KeyPair{
		Public: hex.EncodeToString(pub),
		Secret: hex.EncodeToString(seed),
	}, nil
}

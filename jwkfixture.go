// Package jwkfixture supplies RSA JSON Web Keys for tests that mock an OpenID Connect provider's signing keys.
//
// Keys come either from the bundled jwkset.json fixture, looked up by key ID, or from a freshly generated RSA key
// pair. Every call re-reads the fixture or generates a new key. Nothing is cached.
package jwkfixture

import (
	"embed"
	"fmt"
	"github.com/MicahParks/jwkset"
	"github.com/sovietaced/oidc-jwk-fixture/keygen"
	"github.com/sovietaced/oidc-jwk-fixture/keyset"
)

const (
	// DefaultKeyID is the key ID of the default mock signing key in the bundled fixture.
	DefaultKeyID = "localhost-signer"

	// DefaultKeySetFile is the name of the bundled JWK set fixture.
	DefaultKeySetFile = "jwkset.json"
)

//go:embed jwkset.json
var bundled embed.FS

// DefaultKey returns the DefaultKeyID key from the bundled fixture.
func DefaultKey() (jwkset.JWK, error) {
	return Key(DefaultKeyID)
}

// Key returns the RSA key with the given key ID from the bundled fixture. The error wraps keyset.ErrKeyNotFound
// when no such key exists.
func Key(keyID string) (jwkset.JWK, error) {
	ks, err := LoadKeySet()
	if err != nil {
		return jwkset.JWK{}, err
	}

	jwk, err := ks.RSAKey(keyID)
	if err != nil {
		return jwkset.JWK{}, fmt.Errorf("getting key from %s: %w", DefaultKeySetFile, err)
	}

	return jwk, nil
}

// LoadKeySet parses the bundled fixture.
func LoadKeySet(options ...keyset.Option) (keyset.KeySet, error) {
	return keyset.LoadFS(bundled, DefaultKeySetFile, options...)
}

// LoadKeySetFrom parses the JWK set fixture at path.
func LoadKeySetFrom(path string, options ...keyset.Option) (keyset.KeySet, error) {
	return keyset.LoadFile(path, options...)
}

// GenerateKeyPair generates a fresh RSA key pair, by default with the test-only keygen.TestModulusBits modulus.
func GenerateKeyPair(options ...keygen.Option) (keygen.KeyPair, error) {
	return keygen.GenerateKeyPair(options...)
}

// WrapAsJWK builds a JWK with the given key ID carrying both halves of pair.
func WrapAsJWK(keyID string, pair keygen.KeyPair) (jwkset.JWK, error) {
	return keygen.WrapAsJWK(keyID, pair)
}

// GenerateJWK generates a key pair and wraps it as a JWK with the given key ID.
func GenerateJWK(keyID string, options ...keygen.Option) (jwkset.JWK, error) {
	pair, err := keygen.GenerateKeyPair(options...)
	if err != nil {
		return jwkset.JWK{}, fmt.Errorf("generating key %q: %w", keyID, err)
	}

	return keygen.WrapAsJWK(keyID, pair)
}

// GenerateKeySet generates one key per key ID and collects them into a set.
func GenerateKeySet(keyIDs ...string) (keyset.KeySet, error) {
	jwks := make([]jwkset.JWK, 0, len(keyIDs))
	for _, keyID := range keyIDs {
		jwk, err := GenerateJWK(keyID)
		if err != nil {
			return keyset.KeySet{}, err
		}
		jwks = append(jwks, jwk)
	}

	return keyset.New(jwks...)
}

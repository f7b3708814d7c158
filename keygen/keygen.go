// Package keygen generates RSA key pairs for tests and wraps them as JWKs that carry the private key.
package keygen

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"fmt"
	"github.com/MicahParks/jwkset"
	"log/slog"
)

const (
	// TestModulusBits is the default RSA modulus size. It is only acceptable for test keys and must not be used to
	// sign anything outside a test.
	TestModulusBits = 1024

	// MinModulusBits is the smallest RSA modulus size GenerateKeyPair accepts.
	MinModulusBits = 1024
)

var (
	// ErrUnsupportedAlgorithm is returned when an RSA key pair cannot be generated.
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")

	// ErrMalformedKeyPair is returned when a KeyPair was not produced by a single generation step.
	ErrMalformedKeyPair = errors.New("malformed key pair")
)

// Options are configurable options for key generation.
type Options struct {
	modulusBits int
	logger      *slog.Logger
}

// WithModulusBits specifies the RSA modulus size in bits.
func WithModulusBits(bits int) Option {
	return func(o *Options) {
		o.modulusBits = bits
	}
}

// WithLogger allows for a configurable logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.logger = logger
	}
}

func defaultOptions() *Options {
	opts := &Options{}
	WithModulusBits(TestModulusBits)(opts)
	WithLogger(slog.Default())(opts)
	return opts
}

// Option for key generation.
type Option func(*Options)

// KeyPair is an RSA key pair. Public is always the public half of Private.
type KeyPair struct {
	Public  *rsa.PublicKey
	Private *rsa.PrivateKey
}

// GenerateKeyPair generates a fresh RSA key pair.
func GenerateKeyPair(options ...Option) (KeyPair, error) {
	opts := defaultOptions()
	for _, option := range options {
		option(opts)
	}

	if opts.modulusBits < MinModulusBits {
		return KeyPair{}, fmt.Errorf("%w: RSA modulus of %d bits is below the minimum of %d", ErrUnsupportedAlgorithm, opts.modulusBits, MinModulusBits)
	}

	priv, err := rsa.GenerateKey(rand.Reader, opts.modulusBits)
	if err != nil {
		return KeyPair{}, fmt.Errorf("%w: generating %d bit RSA key: %w", ErrUnsupportedAlgorithm, opts.modulusBits, err)
	}

	opts.logger.Debug("generated RSA key pair", slog.Int("bits", opts.modulusBits))
	return KeyPair{Public: &priv.PublicKey, Private: priv}, nil
}

// WrapAsJWK builds an RS256 signing JWK with the given key ID that carries both halves of pair.
func WrapAsJWK(keyID string, pair KeyPair) (jwkset.JWK, error) {
	if pair.Private == nil {
		return jwkset.JWK{}, fmt.Errorf("%w: missing private key", ErrMalformedKeyPair)
	}

	if pair.Public != nil && !pair.Public.Equal(&pair.Private.PublicKey) {
		return jwkset.JWK{}, fmt.Errorf("%w: public key does not belong to private key", ErrMalformedKeyPair)
	}

	jwkOptions := jwkset.JWKOptions{
		Marshal: jwkset.JWKMarshalOptions{
			Private: true,
		},
		Metadata: jwkset.JWKMetadataOptions{
			ALG: jwkset.AlgRS256,
			KID: keyID,
			USE: jwkset.UseSig,
		},
	}

	jwk, err := jwkset.NewJWKFromKey(pair.Private, jwkOptions)
	if err != nil {
		return jwkset.JWK{}, fmt.Errorf("%w: creating JWK %q: %w", ErrMalformedKeyPair, keyID, err)
	}

	return jwk, nil
}

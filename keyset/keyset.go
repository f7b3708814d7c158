// Package keyset loads JSON Web Key Sets used as signing key fixtures and looks keys up by key ID.
package keyset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/MicahParks/jwkset"
	"io/fs"
	"log/slog"
	"os"
)

// Options are configurable options for loading a KeySet.
type Options struct {
	logger *slog.Logger
}

// WithLogger allows for a configurable logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.logger = logger
	}
}

func defaultOptions() *Options {
	opts := &Options{}
	WithLogger(slog.Default())(opts)
	return opts
}

// Option for loading a KeySet.
type Option func(*Options)

// jwksDocument is the JWK Set JSON structure. Keys is nil when the "keys" member is absent.
type jwksDocument struct {
	Keys []jwkset.JWKMarshal `json:"keys"`
}

// KeySet is an immutable set of JWKs where every key ID is unique. The zero value is an empty set.
type KeySet struct {
	storage jwkset.Storage
}

// New creates a KeySet from JWKs that are already in memory.
func New(jwks ...jwkset.JWK) (KeySet, error) {
	storage := jwkset.NewMemoryStorage()
	seen := make(map[string]struct{}, len(jwks))
	for _, jwk := range jwks {
		kid := jwk.Marshal().KID
		if _, exists := seen[kid]; exists {
			return KeySet{}, fmt.Errorf("%w: %q", ErrDuplicateKeyID, kid)
		}
		seen[kid] = struct{}{}

		if err := storage.KeyWrite(context.Background(), jwk); err != nil {
			return KeySet{}, fmt.Errorf("writing key %q: %w", kid, err)
		}
	}

	return KeySet{storage: storage}, nil
}

// Parse parses JWK Set JSON. Private key components are kept when present.
func Parse(data []byte, options ...Option) (KeySet, error) {
	opts := defaultOptions()
	for _, option := range options {
		option(opts)
	}

	ks, err := parse(data)
	if err != nil {
		return KeySet{}, err
	}

	opts.logger.Debug("parsed JWK set", slog.Int("keys", ks.Len()))
	return ks, nil
}

// LoadFile reads and parses the JWK Set at path.
func LoadFile(path string, options ...Option) (KeySet, error) {
	opts := defaultOptions()
	for _, option := range options {
		option(opts)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return KeySet{}, fmt.Errorf("%w: %q: %w", ErrFixtureRead, path, err)
	}

	ks, err := parse(data)
	if err != nil {
		return KeySet{}, fmt.Errorf("loading %q: %w", path, err)
	}

	opts.logger.Debug("loaded JWK set", slog.String("path", path), slog.Int("keys", ks.Len()))
	return ks, nil
}

// LoadFS reads and parses the JWK Set named name in fsys.
func LoadFS(fsys fs.FS, name string, options ...Option) (KeySet, error) {
	opts := defaultOptions()
	for _, option := range options {
		option(opts)
	}

	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return KeySet{}, fmt.Errorf("%w: %q: %w", ErrFixtureRead, name, err)
	}

	ks, err := parse(data)
	if err != nil {
		return KeySet{}, fmt.Errorf("loading %q: %w", name, err)
	}

	opts.logger.Debug("loaded JWK set", slog.String("name", name), slog.Int("keys", ks.Len()))
	return ks, nil
}

func parse(data []byte) (KeySet, error) {
	var doc jwksDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return KeySet{}, fmt.Errorf("%w: %w", ErrFixtureParse, err)
	}

	if doc.Keys == nil {
		return KeySet{}, fmt.Errorf("%w: missing \"keys\" member", ErrFixtureParse)
	}

	jwks := make([]jwkset.JWK, 0, len(doc.Keys))
	for i, marshal := range doc.Keys {
		jwk, err := jwkset.NewJWKFromMarshal(marshal, jwkset.JWKMarshalOptions{Private: true}, jwkset.JWKValidateOptions{})
		if err != nil {
			return KeySet{}, fmt.Errorf("%w: key %d (kid %q): %w", ErrFixtureParse, i, marshal.KID, err)
		}
		jwks = append(jwks, jwk)
	}

	ks, err := New(jwks...)
	if err != nil {
		return KeySet{}, fmt.Errorf("%w: %w", ErrFixtureParse, err)
	}

	return ks, nil
}

// Key returns the key with the given key ID.
func (ks KeySet) Key(kid string) (jwkset.JWK, error) {
	if ks.storage == nil {
		return jwkset.JWK{}, fmt.Errorf("%w: kid %q", ErrKeyNotFound, kid)
	}

	jwk, err := ks.storage.KeyRead(context.Background(), kid)
	if err != nil {
		if errors.Is(err, jwkset.ErrKeyNotFound) {
			return jwkset.JWK{}, fmt.Errorf("%w: kid %q", ErrKeyNotFound, kid)
		}
		return jwkset.JWK{}, fmt.Errorf("reading key %q: %w", kid, err)
	}

	return jwk, nil
}

// RSAKey returns the key with the given key ID and fails if it is not an RSA key.
func (ks KeySet) RSAKey(kid string) (jwkset.JWK, error) {
	jwk, err := ks.Key(kid)
	if err != nil {
		return jwkset.JWK{}, err
	}

	if kty := jwk.Marshal().KTY; kty != jwkset.KtyRSA {
		return jwkset.JWK{}, fmt.Errorf("%w: kid %q has kty %q, want %q", ErrUnexpectedKeyType, kid, kty, jwkset.KtyRSA)
	}

	return jwk, nil
}

// Keys returns every key in the set in document order.
func (ks KeySet) Keys() []jwkset.JWK {
	if ks.storage == nil {
		return nil
	}

	// Memory storage never fails to read.
	jwks, _ := ks.storage.KeyReadAll(context.Background())
	return jwks
}

// Len returns the number of keys in the set.
func (ks KeySet) Len() int {
	return len(ks.Keys())
}

// PublicJSON renders the set without private key material, as a JWKS endpoint would serve it.
// Symmetric keys have no public form and are left out.
func (ks KeySet) PublicJSON() (json.RawMessage, error) {
	raw, err := ks.Storage().JSONPublic(context.Background())
	if err != nil {
		return nil, fmt.Errorf("marshalling public JWK set: %w", err)
	}

	return raw, nil
}

// PrivateJSON renders the set including private key material.
func (ks KeySet) PrivateJSON() (json.RawMessage, error) {
	raw, err := ks.Storage().JSONPrivate(context.Background())
	if err != nil {
		return nil, fmt.Errorf("marshalling private JWK set: %w", err)
	}

	return raw, nil
}

// Storage returns a copy of the set as a jwkset.Storage. Writes to it do not affect ks.
func (ks KeySet) Storage() jwkset.Storage {
	storage := jwkset.NewMemoryStorage()
	for _, jwk := range ks.Keys() {
		// Memory storage never fails to write.
		_ = storage.KeyWrite(context.Background(), jwk)
	}

	return storage
}

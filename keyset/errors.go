package keyset

import (
	"errors"
	"fmt"
)

var (
	// ErrFixture is wrapped by every error caused by a fixture that could not be loaded.
	ErrFixture = errors.New("unexpected fixture error")

	// ErrFixtureRead is returned when a fixture cannot be located or read.
	ErrFixtureRead = fmt.Errorf("%w: reading JWK set", ErrFixture)

	// ErrFixtureParse is returned when fixture content is not a valid JWK set.
	ErrFixtureParse = fmt.Errorf("%w: parsing JWK set", ErrFixture)

	// ErrKeyNotFound is returned when no key in a set has the requested key ID.
	ErrKeyNotFound = errors.New("key not found")

	// ErrDuplicateKeyID is returned when two keys in a set share a key ID.
	ErrDuplicateKeyID = errors.New("duplicate key ID")

	// ErrUnexpectedKeyType is returned when a key exists but is not of the requested type.
	ErrUnexpectedKeyType = errors.New("unexpected key type")
)

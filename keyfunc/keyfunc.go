package keyfunc

import (
	"context"
	"github.com/golang-jwt/jwt/v5"
)

// Provider is a pluggable provider of JWT verifying key functions built from fixture key material.
type Provider interface {
	// GetKeyfunc gets a JWT verifying key function for the keys the provider holds.
	GetKeyfunc(ctx context.Context) (jwt.Keyfunc, error)
}

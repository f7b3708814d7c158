package fixture

import (
	"context"
	"fmt"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sovietaced/oidc-jwk-fixture/keyset"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"log/slog"
)

const tracerName = "github.com/sovietaced/oidc-jwk-fixture/keyfunc/fixture"

// Options are configurable options for the KeyfuncProvider.
type Options struct {
	tracerProvider trace.TracerProvider
	logger         *slog.Logger
}

// WithTracerProvider allows for a configurable tracer provider.
func WithTracerProvider(tracerProvider trace.TracerProvider) Option {
	return func(o *Options) {
		o.tracerProvider = tracerProvider
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
	WithTracerProvider(otel.GetTracerProvider())(opts)
	WithLogger(slog.Default())(opts)
	return opts
}

// Option for the KeyfuncProvider.
type Option func(*Options)

// KeyfuncProvider implements keyfunc.Provider over the public half of a fixture key set. Only public key material
// reaches the generated key function, the same view a JWKS endpoint serving the set would expose.
type KeyfuncProvider struct {
	ks     keyset.KeySet
	tracer trace.Tracer
	logger *slog.Logger
}

// NewKeyfuncProvider creates a new KeyfuncProvider for ks.
func NewKeyfuncProvider(ks keyset.KeySet, options ...Option) (*KeyfuncProvider, error) {
	opts := defaultOptions()
	for _, option := range options {
		option(opts)
	}

	if ks.Len() == 0 {
		return nil, fmt.Errorf("creating keyfunc provider: %w", keyset.ErrKeyNotFound)
	}

	return &KeyfuncProvider{
		ks:     ks,
		tracer: opts.tracerProvider.Tracer(tracerName),
		logger: opts.logger,
	}, nil
}

// GetKeyfunc builds a jwt.Keyfunc from the public JWK set. A new key function is built on every call.
func (kp *KeyfuncProvider) GetKeyfunc(ctx context.Context) (jwt.Keyfunc, error) {
	ctx, span := kp.tracer.Start(ctx, "fixture.GetKeyfunc")
	defer span.End()

	kf, err := kp.newKeyfunc()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("jwks.keys", kp.ks.Len()))
	kp.logger.DebugContext(ctx, "built keyfunc from fixture JWK set", slog.Int("keys", kp.ks.Len()))
	return kf, nil
}

func (kp *KeyfuncProvider) newKeyfunc() (jwt.Keyfunc, error) {
	jwkJson, err := kp.ks.PublicJSON()
	if err != nil {
		return nil, fmt.Errorf("rendering public jwk set: %w", err)
	}

	kf, err := keyfunc.NewJWKSetJSON(jwkJson)
	if err != nil {
		return nil, fmt.Errorf("failed to create keyfunc from jwk json: %w", err)
	}

	return kf.Keyfunc, nil
}

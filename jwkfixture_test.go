package jwkfixture

import (
	"crypto/rsa"
	"encoding/json"
	"github.com/MicahParks/jwkset"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sovietaced/oidc-jwk-fixture/keygen"
	"github.com/sovietaced/oidc-jwk-fixture/keyset"
	"github.com/stretchr/testify/require"
	"os"
	"testing"
)

func TestDefaultKey(t *testing.T) {

	t.Run("get default key", func(t *testing.T) {
		jwk, err := DefaultKey()
		require.NoError(t, err)

		expected := bundledKey(t, DefaultKeyID)
		marshal := jwk.Marshal()
		require.Equal(t, DefaultKeyID, marshal.KID)
		require.Equal(t, jwkset.KtyRSA, marshal.KTY)
		require.Equal(t, expected.N, marshal.N)
		require.Equal(t, expected.E, marshal.E)

		_, ok := jwk.Key().(*rsa.PrivateKey)
		require.True(t, ok)
	})

	t.Run("get key by id", func(t *testing.T) {
		jwk, err := Key("localhost-signer")
		require.NoError(t, err)
		require.Equal(t, "localhost-signer", jwk.Marshal().KID)
	})

	t.Run("get key with unknown id", func(t *testing.T) {
		jwk, err := Key("unknown")
		require.ErrorIs(t, err, keyset.ErrKeyNotFound)
		require.NotEqual(t, "localhost-signer", jwk.Marshal().KID)
		require.Empty(t, jwk.Marshal().KID)
	})

	t.Run("default key signs tokens", func(t *testing.T) {
		jwk, err := DefaultKey()
		require.NoError(t, err)
		priv := jwk.Key().(*rsa.PrivateKey)

		token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{"sub": "test"})
		token.Header["kid"] = DefaultKeyID
		tokenString, err := token.SignedString(priv)
		require.NoError(t, err)

		_, err = jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			return &priv.PublicKey, nil
		})
		require.NoError(t, err)
	})
}

func TestLoadKeySet(t *testing.T) {

	t.Run("load bundled key set", func(t *testing.T) {
		ks, err := LoadKeySet()
		require.NoError(t, err)
		require.Equal(t, 1, ks.Len())
	})

	t.Run("load key set from path", func(t *testing.T) {
		ks, err := LoadKeySetFrom("keyset/testdata/jwkset.json")
		require.NoError(t, err)
		require.Equal(t, 2, ks.Len())

		_, err = ks.RSAKey("alternate-signer")
		require.NoError(t, err)
	})

	t.Run("load key set from path is idempotent", func(t *testing.T) {
		first, err := LoadKeySetFrom("keyset/testdata/jwkset.json")
		require.NoError(t, err)
		second, err := LoadKeySetFrom("keyset/testdata/jwkset.json")
		require.NoError(t, err)

		firstJSON, err := first.PrivateJSON()
		require.NoError(t, err)
		secondJSON, err := second.PrivateJSON()
		require.NoError(t, err)
		require.JSONEq(t, string(firstJSON), string(secondJSON))
	})

	t.Run("load key set from missing path", func(t *testing.T) {
		_, err := LoadKeySetFrom("keyset/testdata/missing.json")
		require.ErrorIs(t, err, keyset.ErrFixtureRead)
	})

	t.Run("load key set from invalid path", func(t *testing.T) {
		_, err := LoadKeySetFrom("keyset/testdata/invalid.json")
		require.ErrorIs(t, err, keyset.ErrFixtureParse)
	})
}

func TestGenerateJWK(t *testing.T) {

	t.Run("generate and wrap key pair", func(t *testing.T) {
		pair, err := GenerateKeyPair()
		require.NoError(t, err)

		jwk, err := WrapAsJWK("generated", pair)
		require.NoError(t, err)
		require.Equal(t, "generated", jwk.Marshal().KID)

		token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{"sub": "test"})
		tokenString, err := token.SignedString(jwk.Key())
		require.NoError(t, err)

		_, err = jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			return pair.Public, nil
		})
		require.NoError(t, err)
	})

	t.Run("generate jwk", func(t *testing.T) {
		jwk, err := GenerateJWK("generated", keygen.WithModulusBits(2048))
		require.NoError(t, err)
		require.Equal(t, 2048, jwk.Key().(*rsa.PrivateKey).N.BitLen())
	})

	t.Run("generate jwk with unsupported modulus", func(t *testing.T) {
		_, err := GenerateJWK("generated", keygen.WithModulusBits(256))
		require.ErrorIs(t, err, keygen.ErrUnsupportedAlgorithm)
		require.ErrorContains(t, err, `generating key "generated"`)
	})

	t.Run("generate key set", func(t *testing.T) {
		ks, err := GenerateKeySet("one", "two")
		require.NoError(t, err)
		require.Equal(t, 2, ks.Len())

		one, err := ks.RSAKey("one")
		require.NoError(t, err)
		two, err := ks.RSAKey("two")
		require.NoError(t, err)
		require.NotEqual(t, one.Marshal().N, two.Marshal().N)
	})

	t.Run("generate key set with duplicate ids", func(t *testing.T) {
		_, err := GenerateKeySet("one", "one")
		require.ErrorIs(t, err, keyset.ErrDuplicateKeyID)
	})
}

func bundledKey(t *testing.T, kid string) jwkset.JWKMarshal {
	b, err := os.ReadFile(DefaultKeySetFile)
	require.NoError(t, err)

	var doc struct {
		Keys []jwkset.JWKMarshal `json:"keys"`
	}
	require.NoError(t, json.Unmarshal(b, &doc))
	for _, key := range doc.Keys {
		if key.KID == kid {
			return key
		}
	}

	t.Fatalf("no key %q in %s", kid, DefaultKeySetFile)
	return jwkset.JWKMarshal{}
}

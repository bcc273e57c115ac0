package auth

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/breakeven/breakeven/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

func signHS256(t *testing.T, secret, issuer, subject string, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, supabaseClaims{
		Email: "someone@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestSupabaseVerifier_Verify_HS256(t *testing.T) {
	cfg := config.Supabase{URL: "https://project.supabase.co", JWTSecret: "test-secret"}
	verifier := NewSupabaseVerifier(cfg)

	t.Run("should accept a valid token and extract the identity", func(t *testing.T) {
		// given
		tokenString := signHS256(t, "test-secret", "https://project.supabase.co/auth/v1", "uid-123", time.Now().Add(time.Hour))

		// when
		identity, err := verifier.Verify(ctx, tokenString)

		// then
		require.NoError(t, err)
		assert.Equal(t, "uid-123", identity.Uid)
		assert.Equal(t, "someone@example.com", identity.Email)
	})

	t.Run("should reject a token signed with a different secret", func(t *testing.T) {
		tokenString := signHS256(t, "wrong-secret", "https://project.supabase.co/auth/v1", "uid-123", time.Now().Add(time.Hour))

		_, err := verifier.Verify(ctx, tokenString)

		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("should reject an expired token", func(t *testing.T) {
		tokenString := signHS256(t, "test-secret", "https://project.supabase.co/auth/v1", "uid-123", time.Now().Add(-time.Minute))

		_, err := verifier.Verify(ctx, tokenString)

		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("should reject a token from another issuer", func(t *testing.T) {
		tokenString := signHS256(t, "test-secret", "https://other.supabase.co/auth/v1", "uid-123", time.Now().Add(time.Hour))

		_, err := verifier.Verify(ctx, tokenString)

		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("should reject a token without a subject", func(t *testing.T) {
		tokenString := signHS256(t, "test-secret", "https://project.supabase.co/auth/v1", "", time.Now().Add(time.Hour))

		_, err := verifier.Verify(ctx, tokenString)

		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("should reject garbage", func(t *testing.T) {
		_, err := verifier.Verify(ctx, "not.a.token")

		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestSupabaseVerifier_Verify_ES256(t *testing.T) {
	// given: a project serving its JWKS over HTTP
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	keySet := jwks{Keys: []jwk{{
		Kty: "EC",
		Kid: "key-1",
		Crv: "P-256",
		X:   base64.RawURLEncoding.EncodeToString(key.PublicKey.X.FillBytes(make([]byte, 32))),
		Y:   base64.RawURLEncoding.EncodeToString(key.PublicKey.Y.FillBytes(make([]byte, 32))),
	}}}

	jwksRequests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/v1/.well-known/jwks.json", r.URL.Path)
		jwksRequests++
		require.NoError(t, json.NewEncoder(w).Encode(keySet))
	}))
	defer server.Close()

	verifier := NewSupabaseVerifier(config.Supabase{URL: server.URL})

	signES256 := func(t *testing.T, kid, subject string) string {
		t.Helper()
		token := jwt.NewWithClaims(jwt.SigningMethodES256, supabaseClaims{
			Email: "someone@example.com",
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    server.URL + "/auth/v1",
				Subject:   subject,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		token.Header["kid"] = kid
		signed, err := token.SignedString(key)
		require.NoError(t, err)
		return signed
	}

	t.Run("should verify against the fetched key set", func(t *testing.T) {
		// when
		identity, err := verifier.Verify(ctx, signES256(t, "key-1", "uid-456"))

		// then
		require.NoError(t, err)
		assert.Equal(t, "uid-456", identity.Uid)
	})

	t.Run("should reuse the cached key set", func(t *testing.T) {
		before := jwksRequests

		_, err := verifier.Verify(ctx, signES256(t, "key-1", "uid-456"))

		require.NoError(t, err)
		assert.Equal(t, before, jwksRequests)
	})

	t.Run("should reject an unknown key id", func(t *testing.T) {
		_, err := verifier.Verify(ctx, signES256(t, "key-2", "uid-456"))

		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("should refetch after the cache is cleared", func(t *testing.T) {
		// given
		verifier.ClearKeyCache()
		before := jwksRequests

		// when
		_, err := verifier.Verify(ctx, signES256(t, "key-1", "uid-456"))

		// then
		require.NoError(t, err)
		assert.Equal(t, before+1, jwksRequests)
	})
}

package auth

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/breakeven/breakeven/internal/config"
	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"
)

var ErrInvalidToken = errors.New("invalid token")

// jwksCacheDuration is how long a fetched key set is reused before the
// verifier goes back to Supabase for a fresh one.
const jwksCacheDuration = time.Hour

// Identity is the subject extracted from a verified Supabase access token.
type Identity struct {
	Uid   string
	Email string
}

type supabaseClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Crv string `json:"crv"`
	X   string `json:"x"`
	Y   string `json:"y"`
}

type jwks struct {
	Keys []jwk `json:"keys"`
}

// SupabaseVerifier validates Supabase-issued JWTs. HS256 tokens are checked
// against the project's shared secret; ES256 tokens against the project JWKS.
// The key set is cached process-wide for jwksCacheDuration.
type SupabaseVerifier struct {
	cfg        config.Supabase
	httpClient *http.Client

	mu        sync.Mutex
	keys      *jwks
	fetchedAt time.Time
}

func NewSupabaseVerifier(cfg config.Supabase) *SupabaseVerifier {
	return &SupabaseVerifier{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Verify checks the token signature, issuer, and expiry, and returns the
// caller's identity.
func (v *SupabaseVerifier) Verify(ctx context.Context, tokenString string) (Identity, error) {
	claims := &supabaseClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		switch token.Method.(type) {
		case *jwt.SigningMethodHMAC:
			if v.cfg.JWTSecret == "" {
				return nil, fmt.Errorf("JWT secret not configured")
			}
			return []byte(v.cfg.JWTSecret), nil
		case *jwt.SigningMethodECDSA:
			kid, _ := token.Header["kid"].(string)
			return v.publicKeyFor(ctx, kid)
		default:
			return nil, fmt.Errorf("unsupported algorithm: %v", token.Header["alg"])
		}
	})
	if err != nil || !token.Valid {
		log.Debugf("token verification failed: %v", err)
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	expectedIssuer := v.cfg.URL + "/auth/v1"
	if claims.Issuer != expectedIssuer {
		return Identity{}, fmt.Errorf("%w: invalid issuer", ErrInvalidToken)
	}
	if claims.Subject == "" {
		return Identity{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return Identity{Uid: claims.Subject, Email: claims.Email}, nil
}

// ClearKeyCache drops the cached JWKS. Used by tests and key-rotation recovery.
func (v *SupabaseVerifier) ClearKeyCache() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.keys = nil
	v.fetchedAt = time.Time{}
}

func (v *SupabaseVerifier) publicKeyFor(ctx context.Context, kid string) (*ecdsa.PublicKey, error) {
	keys, err := v.fetchJWKS(ctx)
	if err != nil {
		return nil, err
	}
	for _, key := range keys.Keys {
		if key.Kid == kid {
			return ecdsaKey(key)
		}
	}
	return nil, fmt.Errorf("no matching key found for kid: %s", kid)
}

func (v *SupabaseVerifier) fetchJWKS(ctx context.Context) (*jwks, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.keys != nil && time.Since(v.fetchedAt) < jwksCacheDuration {
		return v.keys, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.cfg.URL+"/auth/v1/.well-known/jwks.json", nil)
	if err != nil {
		return nil, err
	}
	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch JWKS: status %d", resp.StatusCode)
	}

	var keys jwks
	if err := json.NewDecoder(resp.Body).Decode(&keys); err != nil {
		return nil, fmt.Errorf("failed to decode JWKS: %w", err)
	}

	v.keys = &keys
	v.fetchedAt = time.Now()
	log.Debugf("fetched Supabase JWKS with %d keys", len(keys.Keys))
	return v.keys, nil
}

// ecdsaKey builds an ECDSA public key from a P-256 JWK.
func ecdsaKey(key jwk) (*ecdsa.PublicKey, error) {
	if key.Kty != "EC" || key.Crv != "P-256" {
		return nil, fmt.Errorf("unsupported key type %s/%s", key.Kty, key.Crv)
	}
	xBytes, err := base64.RawURLEncoding.DecodeString(key.X)
	if err != nil {
		return nil, fmt.Errorf("invalid JWK x coordinate: %w", err)
	}
	yBytes, err := base64.RawURLEncoding.DecodeString(key.Y)
	if err != nil {
		return nil, fmt.Errorf("invalid JWK y coordinate: %w", err)
	}
	return &ecdsa.PublicKey{
		Curve: elliptic.P256(),
		X:     new(big.Int).SetBytes(xBytes),
		Y:     new(big.Int).SetBytes(yBytes),
	}, nil
}

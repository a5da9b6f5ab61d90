package jwt

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/listora/listora/pkg/auth"
)

const testKID = "test-key-1"

var testKeyPair *rsa.PrivateKey

func init() {
	var err error
	testKeyPair, err = rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		panic(fmt.Sprintf("generating test RSA key: %v", err))
	}
}

// jwksHandler serves the test public key as a JWKS document and counts
// fetches.
func jwksHandler(fetchCount *atomic.Int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if fetchCount != nil {
			fetchCount.Add(1)
		}

		pubKey := testKeyPair.PublicKey
		jwks := map[string]interface{}{
			"keys": []map[string]string{
				{
					"kty": "RSA",
					"kid": testKID,
					"use": "sig",
					"n":   base64.RawURLEncoding.EncodeToString(pubKey.N.Bytes()),
					"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pubKey.E)).Bytes()),
				},
			},
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(jwks)
	}
}

func signedToken(t *testing.T, claims jwtlib.MapClaims) string {
	t.Helper()
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodRS256, claims)
	token.Header["kid"] = testKID

	tokenStr, err := token.SignedString(testKeyPair)
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}
	return tokenStr
}

func newTestAuthenticator(t *testing.T, override func(*Config), fetchCount *atomic.Int32) *Authenticator {
	t.Helper()

	server := httptest.NewServer(jwksHandler(fetchCount))
	t.Cleanup(server.Close)

	cfg := Config{
		Issuer:   "https://auth.example.com",
		Audience: "listora-api",
		JWKSURL:  server.URL + "/.well-known/jwks.json",
		CacheTTL: 1 * time.Hour,
	}
	if override != nil {
		override(&cfg)
	}

	return New(cfg)
}

func baseClaims() jwtlib.MapClaims {
	return jwtlib.MapClaims{
		"sub": "user-123",
		"iss": "https://auth.example.com",
		"aud": "listora-api",
		"exp": time.Now().Add(1 * time.Hour).Unix(),
		"iat": time.Now().Unix(),
	}
}

func authRequest(token string) *http.Request {
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}

func TestJWT_ValidToken(t *testing.T) {
	authn := newTestAuthenticator(t, nil, nil)

	result := authn.Authenticate(context.Background(), authRequest(signedToken(t, baseClaims())))

	if result.Decision != auth.Yes {
		t.Fatalf("Decision = %d, want Yes; err=%v", result.Decision, result.Err)
	}
	if result.Identity == nil || result.Identity.Subject != "user-123" {
		t.Errorf("Identity = %+v", result.Identity)
	}
}

func TestJWT_RejectedTokens(t *testing.T) {
	authn := newTestAuthenticator(t, nil, nil)

	expired := baseClaims()
	expired["exp"] = time.Now().Add(-1 * time.Hour).Unix()
	expired["iat"] = time.Now().Add(-2 * time.Hour).Unix()

	wrongAud := baseClaims()
	wrongAud["aud"] = "other-api"

	wrongIss := baseClaims()
	wrongIss["iss"] = "https://evil.example.com"

	noSub := baseClaims()
	delete(noSub, "sub")

	tests := []struct {
		name   string
		claims jwtlib.MapClaims
	}{
		{"expired", expired},
		{"wrong audience", wrongAud},
		{"wrong issuer", wrongIss},
		{"missing sub", noSub},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := authn.Authenticate(context.Background(), authRequest(signedToken(t, tt.claims)))
			if result.Decision != auth.No {
				t.Fatalf("Decision = %d, want No", result.Decision)
			}
		})
	}
}

func TestJWT_MalformedTokens(t *testing.T) {
	authn := newTestAuthenticator(t, nil, nil)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-jwt"},
		{"empty bearer", ""},
		{"partial jwt", "eyJhbGciOiJSUzI1NiJ9.invalidpayload"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := authn.Authenticate(context.Background(), authRequest(tt.token))
			if result.Decision != auth.No {
				t.Fatalf("Decision = %d, want No", result.Decision)
			}
		})
	}
}

func TestJWT_NoBearerAbstains(t *testing.T) {
	authn := newTestAuthenticator(t, nil, nil)

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"basic auth", "Basic dXNlcjpwYXNz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			if result := authn.Authenticate(context.Background(), r); result.Decision != auth.Abstain {
				t.Fatalf("Decision = %d, want Abstain", result.Decision)
			}
		})
	}
}

func TestJWT_TenantAndScopes(t *testing.T) {
	authn := newTestAuthenticator(t, nil, nil)

	claims := baseClaims()
	claims["tenant_id"] = "org-456"
	claims["scope"] = "drafts:read drafts:write"

	result := authn.Authenticate(context.Background(), authRequest(signedToken(t, claims)))

	if result.Decision != auth.Yes {
		t.Fatalf("Decision = %d, want Yes; err=%v", result.Decision, result.Err)
	}
	if result.Identity.TenantID() != "org-456" {
		t.Errorf("TenantID = %q", result.Identity.TenantID())
	}
	want := []string{"drafts:read", "drafts:write"}
	if len(result.Identity.Scopes) != 2 || result.Identity.Scopes[0] != want[0] || result.Identity.Scopes[1] != want[1] {
		t.Errorf("Scopes = %v, want %v", result.Identity.Scopes, want)
	}
}

func TestJWT_ScopesArrayClaim(t *testing.T) {
	authn := newTestAuthenticator(t, nil, nil)

	claims := baseClaims()
	claims["scope"] = []interface{}{"drafts:read", "drafts:write"}

	result := authn.Authenticate(context.Background(), authRequest(signedToken(t, claims)))

	if result.Decision != auth.Yes {
		t.Fatalf("Decision = %d, want Yes; err=%v", result.Decision, result.Err)
	}
	if len(result.Identity.Scopes) != 2 {
		t.Errorf("Scopes = %v", result.Identity.Scopes)
	}
}

func TestJWT_CustomClaims(t *testing.T) {
	authn := newTestAuthenticator(t, func(cfg *Config) {
		cfg.UserClaim = "email"
		cfg.TenantClaim = "org_id"
		cfg.ScopesClaim = "permissions"
	}, nil)

	claims := baseClaims()
	delete(claims, "sub")
	claims["email"] = "alice@example.com"
	claims["org_id"] = "org-custom"
	claims["permissions"] = "read write"

	result := authn.Authenticate(context.Background(), authRequest(signedToken(t, claims)))

	if result.Decision != auth.Yes {
		t.Fatalf("Decision = %d, want Yes; err=%v", result.Decision, result.Err)
	}
	if result.Identity.Subject != "alice@example.com" {
		t.Errorf("Subject = %q", result.Identity.Subject)
	}
	if result.Identity.TenantID() != "org-custom" {
		t.Errorf("TenantID = %q", result.Identity.TenantID())
	}
	if len(result.Identity.Scopes) != 2 {
		t.Errorf("Scopes = %v", result.Identity.Scopes)
	}
}

func TestJWT_OptionalValidation(t *testing.T) {
	t.Run("no issuer check", func(t *testing.T) {
		authn := newTestAuthenticator(t, func(cfg *Config) { cfg.Issuer = "" }, nil)

		claims := baseClaims()
		claims["iss"] = "https://any-issuer.example.com"

		result := authn.Authenticate(context.Background(), authRequest(signedToken(t, claims)))
		if result.Decision != auth.Yes {
			t.Fatalf("Decision = %d, want Yes; err=%v", result.Decision, result.Err)
		}
	})

	t.Run("no audience check", func(t *testing.T) {
		authn := newTestAuthenticator(t, func(cfg *Config) { cfg.Audience = "" }, nil)

		claims := baseClaims()
		claims["aud"] = "any-api"

		result := authn.Authenticate(context.Background(), authRequest(signedToken(t, claims)))
		if result.Decision != auth.Yes {
			t.Fatalf("Decision = %d, want Yes; err=%v", result.Decision, result.Err)
		}
	})
}

func TestJWT_JWKSCaching(t *testing.T) {
	var fetchCount atomic.Int32
	authn := newTestAuthenticator(t, nil, &fetchCount)

	token := signedToken(t, baseClaims())
	for i := range 5 {
		result := authn.Authenticate(context.Background(), authRequest(token))
		if result.Decision != auth.Yes {
			t.Fatalf("request %d: Decision = %d, want Yes; err=%v", i, result.Decision, result.Err)
		}
	}

	if count := fetchCount.Load(); count != 1 {
		t.Errorf("JWKS fetch count = %d, want 1", count)
	}
}

package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type jwksFixture struct {
	key     *rsa.PrivateKey
	kid     string
	server  *httptest.Server
	fetches atomic.Int32
}

func newJWKSFixture(t *testing.T) *jwksFixture {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	f := &jwksFixture{key: key, kid: "ins_test"}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		f.fetches.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"keys": []map[string]string{{
				"kid": f.kid,
				"kty": "RSA",
				"use": "sig",
				"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
			}},
		})
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *jwksFixture) sign(t *testing.T, claims jwt.MapClaims, kid string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if kid != "" {
		token.Header["kid"] = kid
	}
	signed, err := token.SignedString(f.key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub": "user_2abc",
		"sid": "sess_123",
		"azp": "https://railmiles.example",
		"iss": "https://clerk.railmiles.example",
		"exp": time.Now().Add(time.Hour).Unix(),
		"iat": time.Now().Unix(),
	}
}

func TestClerkVerifier_ValidToken(t *testing.T) {
	f := newJWKSFixture(t)
	v, err := NewVerifier(Config{
		Mode:              ModeClerk,
		JWKSURL:           f.server.URL,
		Issuer:            "https://clerk.railmiles.example",
		AuthorizedParties: []string{"https://railmiles.example"},
	})
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}

	token := f.sign(t, validClaims(), f.kid)
	for i := 0; i < 3; i++ {
		user, err := v.Verify(context.Background(), token)
		if err != nil {
			t.Fatalf("Verify: %v", err)
		}
		if user.UserID != "user_2abc" || user.SessionID != "sess_123" || user.ExpiresAt == 0 {
			t.Fatalf("unexpected user: %+v", user)
		}
	}
	if got := f.fetches.Load(); got != 1 {
		t.Fatalf("expected the JWKS to be fetched once, got %d", got)
	}
}

func TestClerkVerifier_Rejects(t *testing.T) {
	f := newJWKSFixture(t)
	v, err := NewVerifier(Config{
		Mode:              ModeClerk,
		JWKSURL:           f.server.URL,
		Issuer:            "https://clerk.railmiles.example",
		AuthorizedParties: []string{"https://railmiles.example"},
	})
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}

	expired := validClaims()
	expired["exp"] = time.Now().Add(-time.Hour).Unix()

	wrongIssuer := validClaims()
	wrongIssuer["iss"] = "https://evil.example"

	wrongParty := validClaims()
	wrongParty["azp"] = "https://evil.example"

	noSubject := validClaims()
	delete(noSubject, "sub")

	noExpiry := validClaims()
	delete(noExpiry, "exp")

	cases := map[string]string{
		"expired":      f.sign(t, expired, f.kid),
		"wrong issuer": f.sign(t, wrongIssuer, f.kid),
		"wrong party":  f.sign(t, wrongParty, f.kid),
		"no subject":   f.sign(t, noSubject, f.kid),
		"no expiry":    f.sign(t, noExpiry, f.kid),
		"missing kid":  f.sign(t, validClaims(), ""),
		"unknown kid":  f.sign(t, validClaims(), "ins_other"),
		"garbage":      "not-a-jwt",
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := v.Verify(context.Background(), token); err == nil {
				t.Fatalf("expected verification to fail")
			}
		})
	}
}

func TestClerkVerifier_RejectsHMAC(t *testing.T) {
	f := newJWKSFixture(t)
	v, _ := NewVerifier(Config{Mode: ModeClerk, JWKSURL: f.server.URL})

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims())
	token.Header["kid"] = f.kid
	signed, err := token.SignedString([]byte("shared-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := v.Verify(context.Background(), signed); err == nil {
		t.Fatalf("expected HS256 token to be rejected")
	}
}

package services

import (
	"strings"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/family-todo/internal/config"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/models"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/session"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(now time.Time) *AuthService {
	s := NewAuthService(nil, &config.Config{
		JWTSecret:         "test-secret-that-is-long-enough-32b",
		JWTAccessExpiry:   15 * time.Minute,
		JWTRefreshExpiry:  24 * time.Hour,
		PasswordMinLength: 6,
	}, session.NewBroker(), LogMailer{})
	s.now = func() time.Time { return now }
	return s
}

func TestVerifyAcceptsIssuedAccessToken(t *testing.T) {
	now := time.Now()
	s := newTestService(now)
	want := session.User{ID: uuid.New(), Email: "mum@example.com", SessionID: uuid.New()}

	token, err := s.signAccessToken(want, now, now.Add(s.cfg.JWTAccessExpiry))
	if err != nil {
		t.Fatalf("signAccessToken: %v", err)
	}

	got, err := s.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	issued := time.Now().Add(-time.Hour)
	s := newTestService(issued)
	u := session.User{ID: uuid.New(), SessionID: uuid.New()}

	token, err := s.signAccessToken(u, issued, issued.Add(15*time.Minute))
	if err != nil {
		t.Fatalf("signAccessToken: %v", err)
	}

	s.now = time.Now
	if _, err := s.Verify(token); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	now := time.Now()
	s := newTestService(now)

	claims := jwt.MapClaims{"sub": uuid.NewString(), "exp": now.Add(time.Minute).Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("someone-elses-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := s.Verify(token); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsTokenWithoutSubject(t *testing.T) {
	now := time.Now()
	s := newTestService(now)

	claims := jwt.MapClaims{"email": "x@example.com", "exp": now.Add(time.Minute).Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := s.Verify(token); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestSignUpValidatesInputBeforeTouchingDatabase(t *testing.T) {
	s := newTestService(time.Now())

	tests := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{"missing at", "mum.example.com", "secret1", ErrInvalidEmail},
		{"empty local part", "@example.com", "secret1", ErrInvalidEmail},
		{"short password", "mum@example.com", "abc", ErrWeakPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.SignUp(t.Context(), tt.email, tt.password, "/")
			if err == nil || !strings.Contains(err.Error(), tt.want.Error()) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestHashTokenIsStableHex(t *testing.T) {
	a := hashToken("abc")
	if a != hashToken("abc") {
		t.Error("expected stable hash")
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}
	if a == hashToken("abd") {
		t.Error("expected different hashes for different tokens")
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := normalizeEmail("  Mum@Example.COM "); got != "mum@example.com" {
		t.Errorf("expected mum@example.com, got %q", got)
	}
}

func TestCanResendConfirmation(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	confirmedAt := time.Now()

	cases := []struct {
		name     string
		user     models.User
		password string
		want     bool
	}{
		{"unconfirmed, same password", models.User{Password: string(hash)}, "secret1", true},
		{"unconfirmed, other password", models.User{Password: string(hash)}, "guess12", false},
		{"confirmed", models.User{Password: string(hash), EmailConfirmedAt: &confirmedAt}, "secret1", false},
	}
	for _, tc := range cases {
		if got := canResendConfirmation(&tc.user, tc.password); got != tc.want {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

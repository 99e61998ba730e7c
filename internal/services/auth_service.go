package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/family-todo/internal/config"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/models"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/session"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotConfirmed  = errors.New("email not confirmed")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidEmail       = errors.New("a valid email address is required")
	ErrWeakPassword       = errors.New("password is too short")
)

type AuthService struct {
	db     *gorm.DB
	cfg    *config.Config
	broker *session.Broker
	mailer Mailer
	now    func() time.Time
}

func NewAuthService(db *gorm.DB, cfg *config.Config, broker *session.Broker, mailer Mailer) *AuthService {
	return &AuthService{
		db:     db,
		cfg:    cfg,
		broker: broker,
		mailer: mailer,
		now:    time.Now,
	}
}

// SignUp creates an unconfirmed account and mails a confirmation link that
// lands on redirectURL. It does not sign the user in. Signing up again with
// the same password before confirming sends a fresh link, so a lost or
// undelivered email does not lock the address.
func (s *AuthService) SignUp(ctx context.Context, email, password, redirectURL string) error {
	email = normalizeEmail(email)
	if !validEmail(email) {
		return ErrInvalidEmail
	}
	if len(password) < s.cfg.PasswordMinLength {
		return fmt.Errorf("%w: use at least %d characters", ErrWeakPassword, s.cfg.PasswordMinLength)
	}

	db := s.db.WithContext(ctx)
	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	switch {
	case err == nil:
		if !canResendConfirmation(&existing, password) {
			return ErrEmailTaken
		}
		return s.resendConfirmation(ctx, &existing, redirectURL)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("failed to look up user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:       uuid.New(),
		Email:    email,
		Password: string(hash),
	}
	displayName := strings.Split(email, "@")[0]

	var rawToken string
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		if err := tx.Create(&models.Profile{ID: user.ID, DisplayName: &displayName}).Error; err != nil {
			return fmt.Errorf("failed to create profile: %w", err)
		}
		var err error
		rawToken, err = s.createConfirmation(tx, user.ID, redirectURL)
		return err
	})
	if err != nil {
		return err
	}

	if err := s.sendConfirmation(ctx, &user, rawToken); err != nil {
		return err
	}
	slog.Info("user signed up", "user_id", user.ID.String())
	return nil
}

// canResendConfirmation allows a repeated sign-up only for an unconfirmed
// account and only with the password it was created with.
func canResendConfirmation(user *models.User, password string) bool {
	if user.Confirmed() {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) == nil
}

// resendConfirmation retires the user's unused links and mails a new one.
func (s *AuthService) resendConfirmation(ctx context.Context, user *models.User, redirectURL string) error {
	var rawToken string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.EmailConfirmation{}).
			Where("user_id = ? AND used_at IS NULL", user.ID).
			Update("used_at", s.now()).Error; err != nil {
			return fmt.Errorf("failed to retire confirmations: %w", err)
		}
		var err error
		rawToken, err = s.createConfirmation(tx, user.ID, redirectURL)
		return err
	})
	if err != nil {
		return err
	}

	if err := s.sendConfirmation(ctx, user, rawToken); err != nil {
		return err
	}
	slog.Info("confirmation resent", "user_id", user.ID.String())
	return nil
}

func (s *AuthService) createConfirmation(tx *gorm.DB, userID uuid.UUID, redirectURL string) (string, error) {
	rawToken, err := randomToken()
	if err != nil {
		return "", err
	}
	confirmation := models.EmailConfirmation{
		ID:          uuid.New(),
		UserID:      userID,
		TokenHash:   hashToken(rawToken),
		RedirectURL: redirectURL,
		ExpiresAt:   s.now().Add(s.cfg.ConfirmationExpiry),
	}
	if err := tx.Create(&confirmation).Error; err != nil {
		return "", fmt.Errorf("failed to store confirmation: %w", err)
	}
	return rawToken, nil
}

func (s *AuthService) sendConfirmation(ctx context.Context, user *models.User, rawToken string) error {
	link := s.cfg.PublicURL + "/auth/confirm?token=" + url.QueryEscape(rawToken)
	if err := s.mailer.SendConfirmation(ctx, user.Email, link); err != nil {
		slog.ErrorContext(ctx, "confirmation email failed", "error", err, "user_id", user.ID.String())
		return fmt.Errorf("failed to send confirmation email: %w", err)
	}
	return nil
}

// ConfirmEmail consumes a confirmation token and returns the redirect URL
// chosen at sign-up.
func (s *AuthService) ConfirmEmail(ctx context.Context, rawToken string) (string, error) {
	if rawToken == "" {
		return "", ErrInvalidToken
	}

	db := s.db.WithContext(ctx)
	var confirmation models.EmailConfirmation
	if err := db.Where("token_hash = ? AND used_at IS NULL", hashToken(rawToken)).First(&confirmation).Error; err != nil {
		return "", ErrInvalidToken
	}
	if s.now().After(confirmation.ExpiresAt) {
		return "", ErrInvalidToken
	}

	now := s.now()
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&confirmation).Update("used_at", now).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).
			Where("id = ? AND email_confirmed_at IS NULL", confirmation.UserID).
			Update("email_confirmed_at", now).Error
	})
	if err != nil {
		return "", fmt.Errorf("failed to confirm email: %w", err)
	}

	return confirmation.RedirectURL, nil
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (*session.Tokens, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.Confirmed() {
		return nil, ErrEmailNotConfirmed
	}

	tokens, err := s.issue(ctx, &user, uuid.New())
	if err != nil {
		return nil, err
	}
	s.broker.Publish(session.Event{Kind: session.SignedIn, User: tokens.User})
	return tokens, nil
}

// Refresh rotates a refresh token. The session id survives rotation.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*session.Tokens, error) {
	db := s.db.WithContext(ctx)

	var stored models.RefreshToken
	if err := db.Where("token_hash = ? AND revoked = false", hashToken(refreshToken)).First(&stored).Error; err != nil {
		return nil, ErrInvalidToken
	}

	if err := db.Model(&stored).Update("revoked", true).Error; err != nil {
		return nil, fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	if s.now().After(stored.ExpiresAt) {
		return nil, ErrInvalidToken
	}

	var user models.User
	if err := db.First(&user, "id = ?", stored.UserID).Error; err != nil {
		return nil, ErrInvalidToken
	}

	tokens, err := s.issue(ctx, &user, stored.SessionID)
	if err != nil {
		return nil, err
	}
	s.broker.Publish(session.Event{Kind: session.TokenRefreshed, User: tokens.User})
	return tokens, nil
}

// SignOut revokes every refresh token of the session the token belongs to.
// Unknown tokens are not an error.
func (s *AuthService) SignOut(ctx context.Context, refreshToken string) error {
	db := s.db.WithContext(ctx)

	var stored models.RefreshToken
	if err := db.Where("token_hash = ?", hashToken(refreshToken)).First(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	if err := db.Model(&models.RefreshToken{}).
		Where("session_id = ?", stored.SessionID).
		Update("revoked", true).Error; err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	s.broker.Publish(session.Event{
		Kind: session.SignedOut,
		User: session.User{ID: stored.UserID, SessionID: stored.SessionID},
	})
	return nil
}

// Verify checks an access token's signature and expiry.
func (s *AuthService) Verify(accessToken string) (session.User, error) {
	token, err := jwt.Parse(accessToken, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return session.User{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return session.User{}, ErrInvalidToken
	}
	u, err := session.UserFromClaims(claims)
	if err != nil {
		return session.User{}, ErrInvalidToken
	}
	return u, nil
}

func (s *AuthService) issue(ctx context.Context, user *models.User, sessionID uuid.UUID) (*session.Tokens, error) {
	now := s.now()
	identity := session.User{ID: user.ID, Email: user.Email, SessionID: sessionID}

	accessExpiry := now.Add(s.cfg.JWTAccessExpiry)
	accessToken, err := s.signAccessToken(identity, now, accessExpiry)
	if err != nil {
		return nil, err
	}

	rawRefresh, err := randomToken()
	if err != nil {
		return nil, err
	}
	refreshExpiry := now.Add(s.cfg.JWTRefreshExpiry)
	record := models.RefreshToken{
		ID:        uuid.New(),
		SessionID: sessionID,
		UserID:    user.ID,
		TokenHash: hashToken(rawRefresh),
		ExpiresAt: refreshExpiry,
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &session.Tokens{
		AccessToken:      accessToken,
		RefreshToken:     rawRefresh,
		AccessExpiresAt:  accessExpiry,
		RefreshExpiresAt: refreshExpiry,
		User:             identity,
	}, nil
}

func (s *AuthService) signAccessToken(u session.User, issuedAt, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":   u.ID.String(),
		"email": u.Email,
		"sid":   u.SessionID.String(),
		"iat":   issuedAt.Unix(),
		"exp":   expiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func randomToken() (string, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(rawBytes), nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t\r\n")
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront-service/apperrors"
	"storefront-service/clients"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthOptions selects where admin credentials are checked. With Remote set
// the remote API issues the token; otherwise the local admin account is used.
type AuthOptions struct {
	Remote            bool
	LocalEmail        string
	LocalPasswordHash string // bcrypt
}

func (o AuthOptions) localConfigured() bool {
	return o.LocalEmail != "" && o.LocalPasswordHash != ""
}

// AuthService manages the admin login of a session.
type AuthService struct {
	api    AuthAPI
	tokens TokenStore
	opts   AuthOptions
	log    *zap.Logger
	now    func() time.Time
}

func NewAuthService(api AuthAPI, tokens TokenStore, opts AuthOptions, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{api: api, tokens: tokens, opts: opts, log: log, now: time.Now}
}

// Login checks the credentials and stores a token for the session. Remote
// non-2xx answers and local mismatches are both reported as invalid credentials.
func (s *AuthService) Login(ctx context.Context, sessionID, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return apperrors.Validationf("email and password required")
	}

	var (
		token string
		err   error
	)
	if s.opts.Remote && s.api != nil {
		token, err = s.remoteLogin(ctx, email, password)
	} else {
		token, err = s.localLogin(email, password)
	}
	if err != nil {
		return err
	}

	if err := s.tokens.Set(ctx, sessionID, token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	s.log.Info("admin logged in", zap.String("session_id", sessionID))
	return nil
}

func (s *AuthService) remoteLogin(ctx context.Context, email, password string) (string, error) {
	token, err := s.api.Login(ctx, email, password)
	if err != nil {
		var se *clients.StatusError
		if errors.As(err, &se) {
			return "", apperrors.Wrap(apperrors.ErrInvalidCredentials, err)
		}
		return "", apperrors.Wrap(apperrors.ErrUpstream, fmt.Errorf("login: %w", err))
	}
	return token, nil
}

// localLogin verifies against the configured admin account and issues an
// opaque session token.
func (s *AuthService) localLogin(email, password string) (string, error) {
	if !s.opts.localConfigured() {
		return "", apperrors.Wrap(apperrors.ErrInvalidCredentials, errors.New("no local admin account configured"))
	}
	if !strings.EqualFold(email, s.opts.LocalEmail) {
		return "", apperrors.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.opts.LocalPasswordHash), []byte(password)); err != nil {
		return "", apperrors.ErrInvalidCredentials
	}
	return uuid.NewString(), nil
}

func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.tokens.Clear(ctx, sessionID)
}

// Token returns the session's token, dropping it when it is a JWT that has expired.
func (s *AuthService) Token(ctx context.Context, sessionID string) string {
	token := s.tokens.Get(ctx, sessionID)
	if token == "" {
		return ""
	}
	if tokenExpired(token, s.now()) {
		s.log.Info("admin token expired", zap.String("session_id", sessionID))
		_ = s.tokens.Clear(ctx, sessionID)
		return ""
	}
	return token
}

func (s *AuthService) IsLoggedIn(ctx context.Context, sessionID string) bool {
	return s.Token(ctx, sessionID) != ""
}

// tokenExpired inspects the exp claim without verifying the signature; the
// remote API remains the authority. Opaque tokens never expire here.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	return !claims.VerifyExpiresAt(now.Unix(), false)
}

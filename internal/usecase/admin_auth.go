package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/xavierca1/nesthome-leads/internal/entity"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultSessionTTL = 24 * time.Hour
	sessionTokenBytes = 32
)

// AdminAuthUseCase guards the admin surface with one shared secret.
type AdminAuthUseCase struct {
	Sessions    SessionStore
	Credentials CredentialStore
	TTL         time.Duration
	Now         func() time.Time
	Logger      *slog.Logger
}

func NewAdminAuthUseCase(sessions SessionStore, credentials CredentialStore, ttl time.Duration) *AdminAuthUseCase {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &AdminAuthUseCase{
		Sessions:    sessions,
		Credentials: credentials,
		TTL:         ttl,
		Now:         time.Now,
		Logger:      slog.Default(),
	}
}

// EnsureCredential seeds the stored hash on first boot. An existing hash is left alone.
func (uc *AdminAuthUseCase) EnsureCredential(ctx context.Context, initialPassword string) error {
	hash, err := uc.Credentials.PasswordHash(ctx)
	if err != nil {
		return fmt.Errorf("load admin credential: %w", err)
	}
	if hash != nil {
		return nil
	}
	if initialPassword == "" {
		return ErrNotConfigured
	}

	hash, err = bcrypt.GenerateFromPassword([]byte(initialPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	if err := uc.Credentials.SetPasswordHash(ctx, hash); err != nil {
		return fmt.Errorf("store admin credential: %w", err)
	}

	uc.Logger.Info("admin credential initialised")
	return nil
}

func (uc *AdminAuthUseCase) Login(ctx context.Context, password string) (*entity.Session, error) {
	if err := uc.checkPassword(ctx, password); err != nil {
		return nil, err
	}

	token, err := newSessionToken()
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}

	session := entity.NewSession(token, uc.Now(), uc.TTL)
	if err := uc.Sessions.Save(ctx, session); err != nil {
		return nil, &TechnicalError{Code: "SESSION_STORE_ERROR", Message: "failed to create session", Err: err}
	}
	return session, nil
}

func (uc *AdminAuthUseCase) Verify(ctx context.Context, token string) error {
	if token == "" {
		return ErrUnauthorized
	}

	session, err := uc.Sessions.Find(ctx, token)
	if err != nil {
		return fmt.Errorf("find session: %w", err)
	}
	if session == nil {
		return ErrUnauthorized
	}
	if session.Expired(uc.Now()) {
		_ = uc.Sessions.Delete(ctx, token)
		return ErrUnauthorized
	}
	return nil
}

func (uc *AdminAuthUseCase) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return uc.Sessions.Delete(ctx, token)
}

func (uc *AdminAuthUseCase) ChangePassword(ctx context.Context, token, current, next string) error {
	if err := uc.Verify(ctx, token); err != nil {
		return err
	}
	if errs := validateNewPassword(next); len(errs) > 0 {
		return newValidationError(errs)
	}
	if err := uc.checkPassword(ctx, current); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	if err := uc.Credentials.SetPasswordHash(ctx, hash); err != nil {
		return &TechnicalError{Code: "CREDENTIAL_STORE_ERROR", Message: "failed to change password", Err: err}
	}

	uc.Logger.Info("admin password changed")
	return nil
}

func (uc *AdminAuthUseCase) checkPassword(ctx context.Context, password string) error {
	hash, err := uc.Credentials.PasswordHash(ctx)
	if err != nil {
		return fmt.Errorf("load admin credential: %w", err)
	}
	if hash == nil {
		return ErrNotConfigured
	}

	err = bcrypt.CompareHashAndPassword(hash, []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrInvalidCredentials
	}
	if err != nil {
		return fmt.Errorf("compare admin password: %w", err)
	}
	return nil
}

func newSessionToken() (string, error) {
	b := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

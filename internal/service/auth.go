package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"fileforge/internal/mail"
	"fileforge/internal/model"
	"fileforge/internal/repository"
)

// OTPExpiry is how long an emailed verification code stays usable.
const OTPExpiry = 24 * time.Hour

// SessionMeta carries request attributes recorded on the session.
type SessionMeta struct {
	IPAddress string
	UserAgent string
}

// AuthService owns signup, email verification and session management.
type AuthService interface {
	// Signup registers an unverified account and emails a one-time code.
	Signup(ctx context.Context, email, name, password string) (*model.User, error)

	// VerifyEmail consumes a one-time code. A code verifies exactly once;
	// replaying it returns ErrInvalidCode.
	VerifyEmail(ctx context.Context, email, code string) (*model.User, error)

	// ResendCode issues a fresh verification code for an unverified account.
	ResendCode(ctx context.Context, email string) error

	// Login checks credentials and opens a session, returning the plain
	// session token for the cookie.
	Login(ctx context.Context, email, password string, meta SessionMeta) (*model.User, string, error)

	// Logout revokes the session behind the token. Unknown tokens are a no-op.
	Logout(ctx context.Context, token string) error

	// Authenticate resolves a session token to its user and refreshes the
	// session's activity timestamp.
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

type authService struct {
	users      repository.UserRepository
	sessions   repository.SessionRepository
	mailer     mail.Mailer
	bcryptCost int
	now        func() time.Time
}

// NewAuthService constructs an AuthService. bcryptCost of 0 selects the
// library default.
func NewAuthService(users repository.UserRepository, sessions repository.SessionRepository, mailer mail.Mailer, bcryptCost int) AuthService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &authService{
		users:      users,
		sessions:   sessions,
		mailer:     mailer,
		bcryptCost: bcryptCost,
		now:        time.Now,
	}
}

var _ AuthService = (*authService)(nil)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Signup(ctx context.Context, email, name, password string) (*model.User, error) {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: email", ErrInvalidCredentials)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidCredentials)
	}
	if existing, err := s.users.FindByEmail(ctx, email); err == nil && existing != nil {
		return nil, ErrEmailTaken
	} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, err
	}
	code, err := model.GenerateOTP()
	if err != nil {
		return nil, err
	}
	expires := s.now().UTC().Add(OTPExpiry)
	user := &model.User{
		ID:                        uuid.New().String(),
		Email:                     email,
		Name:                      strings.TrimSpace(name),
		PasswordHash:              string(hash),
		Active:                    true,
		VerificationCode:          code,
		VerificationCodeExpiresAt: &expires,
		CreatedAt:                 s.now().UTC(),
	}
	stored, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	if err := s.mailer.SendVerificationCode(ctx, stored.Email, code); err != nil {
		// The account exists; the user can request a resend.
		slog.Error("send_verification_failed", "email", stored.Email, "error", err)
	}
	return stored, nil
}

func (s *authService) VerifyEmail(ctx context.Context, email, code string) (*model.User, error) {
	email = normalizeEmail(email)
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCode
		}
		return nil, err
	}
	if user.Verified {
		return nil, ErrAlreadyVerified
	}
	if user.VerificationCode == "" || user.VerificationCode != strings.TrimSpace(code) {
		return nil, ErrInvalidCode
	}
	now := s.now().UTC()
	if user.VerificationCodeExpiresAt == nil || now.After(*user.VerificationCodeExpiresAt) {
		return nil, ErrCodeExpired
	}

	user.Verified = true
	user.VerifiedAt = &now
	user.VerificationCode = ""
	user.VerificationCodeExpiresAt = nil
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) ResendCode(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Do not reveal whether the address is registered.
			return nil
		}
		return err
	}
	if user.Verified {
		return ErrAlreadyVerified
	}
	code, err := model.GenerateOTP()
	if err != nil {
		return err
	}
	expires := s.now().UTC().Add(OTPExpiry)
	user.VerificationCode = code
	user.VerificationCodeExpiresAt = &expires
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	return s.mailer.SendVerificationCode(ctx, user.Email, code)
}

func (s *authService) Login(ctx context.Context, email, password string, meta SessionMeta) (*model.User, string, error) {
	email = normalizeEmail(email)
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}
	if !user.Active {
		return nil, "", ErrAccountDisabled
	}
	if !user.Verified {
		return nil, "", ErrNotVerified
	}

	plain, hash, err := model.GenerateSessionToken()
	if err != nil {
		return nil, "", err
	}
	now := s.now().UTC()
	session := &model.Session{
		ID:           uuid.New().String(),
		UserID:       user.ID,
		TokenHash:    hash,
		ExpiresAt:    now.Add(model.SessionExpiry),
		LastActiveAt: now,
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
		CreatedAt:    now,
	}
	if _, err := s.sessions.Create(ctx, session); err != nil {
		return nil, "", err
	}

	user.LastLoginAt = &now
	if err := s.users.Update(ctx, user); err != nil {
		slog.Warn("last_login_update_failed", "user_id", user.ID, "error", err)
	}
	return user, plain, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	err := s.sessions.Revoke(ctx, model.HashSessionToken(token))
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	return err
}

func (s *authService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, ErrSessionInvalid
	}
	hash := model.HashSessionToken(token)
	session, err := s.sessions.FindByTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionInvalid
		}
		return nil, err
	}
	now := s.now().UTC()
	if !session.Valid(now) {
		return nil, ErrSessionInvalid
	}
	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionInvalid
		}
		return nil, err
	}
	if !user.Active {
		return nil, ErrAccountDisabled
	}
	if err := s.sessions.Refresh(ctx, hash); err != nil {
		slog.Warn("session_refresh_failed", "session_id", session.ID, "error", err)
	}
	return user, nil
}

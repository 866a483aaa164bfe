package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"fileforge/internal/model"
	repoMocks "fileforge/internal/repository/mocks"
)

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) SendVerificationCode(ctx context.Context, email, code string) error {
	args := m.Called(ctx, email, code)
	return args.Error(0)
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestAuthService_Signup(t *testing.T) {
	ctx := context.Background()

	t.Run("creates unverified account and emails code", func(t *testing.T) {
		mUsers := new(repoMocks.MockUserRepository)
		mMail := new(mockMailer)
		svc := NewAuthService(mUsers, new(repoMocks.MockSessionRepository), mMail, bcrypt.MinCost)

		mUsers.On("FindByEmail", ctx, "new@example.com").Return(nil, sql.ErrNoRows)
		mUsers.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
			return u.Email == "new@example.com" &&
				!u.Verified &&
				u.Active &&
				len(u.VerificationCode) == 6 &&
				u.VerificationCodeExpiresAt != nil
		})).Return(func(ctx context.Context, u *model.User) *model.User { return u }, nil)
		mMail.On("SendVerificationCode", ctx, "new@example.com", mock.AnythingOfType("string")).Return(nil)

		user, err := svc.Signup(ctx, "  NEW@Example.com ", "Ada", "password123")
		require.NoError(t, err)
		assert.False(t, user.Verified)
		assert.NotEqual(t, "password123", user.PasswordHash)
		mMail.AssertExpectations(t)
	})

	t.Run("duplicate email", func(t *testing.T) {
		mUsers := new(repoMocks.MockUserRepository)
		svc := NewAuthService(mUsers, new(repoMocks.MockSessionRepository), new(mockMailer), bcrypt.MinCost)
		mUsers.On("FindByEmail", ctx, "dup@example.com").Return(&model.User{ID: "u1"}, nil)

		_, err := svc.Signup(ctx, "dup@example.com", "", "password123")
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("short password", func(t *testing.T) {
		svc := NewAuthService(new(repoMocks.MockUserRepository), new(repoMocks.MockSessionRepository), new(mockMailer), bcrypt.MinCost)
		_, err := svc.Signup(ctx, "a@example.com", "", "short")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthService_VerifyEmail(t *testing.T) {
	ctx := context.Background()
	future := time.Now().Add(time.Hour)
	past := time.Now().Add(-time.Hour)

	newUser := func(code string, expires *time.Time, verified bool) *model.User {
		return &model.User{
			ID:                        "u1",
			Email:                     "a@example.com",
			Verified:                  verified,
			VerificationCode:          code,
			VerificationCodeExpiresAt: expires,
			Active:                    true,
		}
	}

	t.Run("verifies once and clears the code", func(t *testing.T) {
		mUsers := new(repoMocks.MockUserRepository)
		svc := NewAuthService(mUsers, new(repoMocks.MockSessionRepository), new(mockMailer), bcrypt.MinCost)

		mUsers.On("FindByEmail", ctx, "a@example.com").Return(newUser("123456", &future, false), nil)
		mUsers.On("Update", ctx, mock.MatchedBy(func(u *model.User) bool {
			return u.Verified && u.VerificationCode == "" && u.VerificationCodeExpiresAt == nil
		})).Return(nil)

		user, err := svc.VerifyEmail(ctx, "a@example.com", "123456")
		require.NoError(t, err)
		assert.True(t, user.Verified)
		mUsers.AssertExpectations(t)
	})

	t.Run("wrong code", func(t *testing.T) {
		mUsers := new(repoMocks.MockUserRepository)
		mUsers.On("FindByEmail", ctx, "a@example.com").Return(newUser("123456", &future, false), nil)
		svc := NewAuthService(mUsers, new(repoMocks.MockSessionRepository), new(mockMailer), bcrypt.MinCost)

		_, err := svc.VerifyEmail(ctx, "a@example.com", "000000")
		assert.ErrorIs(t, err, ErrInvalidCode)
	})

	t.Run("expired code", func(t *testing.T) {
		mUsers := new(repoMocks.MockUserRepository)
		mUsers.On("FindByEmail", ctx, "a@example.com").Return(newUser("123456", &past, false), nil)
		svc := NewAuthService(mUsers, new(repoMocks.MockSessionRepository), new(mockMailer), bcrypt.MinCost)

		_, err := svc.VerifyEmail(ctx, "a@example.com", "123456")
		assert.ErrorIs(t, err, ErrCodeExpired)
	})

	t.Run("replay after verification", func(t *testing.T) {
		mUsers := new(repoMocks.MockUserRepository)
		mUsers.On("FindByEmail", ctx, "a@example.com").Return(newUser("", nil, true), nil)
		svc := NewAuthService(mUsers, new(repoMocks.MockSessionRepository), new(mockMailer), bcrypt.MinCost)

		_, err := svc.VerifyEmail(ctx, "a@example.com", "123456")
		assert.ErrorIs(t, err, ErrAlreadyVerified)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	newUser := func(mut func(*model.User)) *model.User {
		u := &model.User{
			ID:           "u1",
			Email:        "a@example.com",
			PasswordHash: hashPassword(t, "password123"),
			Verified:     true,
			Active:       true,
		}
		if mut != nil {
			mut(u)
		}
		return u
	}

	t.Run("opens a session", func(t *testing.T) {
		mUsers := new(repoMocks.MockUserRepository)
		mSessions := new(repoMocks.MockSessionRepository)
		svc := NewAuthService(mUsers, mSessions, new(mockMailer), bcrypt.MinCost)

		mUsers.On("FindByEmail", ctx, "a@example.com").Return(newUser(nil), nil)
		mSessions.On("Create", ctx, mock.MatchedBy(func(s *model.Session) bool {
			return s.UserID == "u1" && s.TokenHash != "" && s.IPAddress == "10.0.0.1"
		})).Return(func(ctx context.Context, s *model.Session) *model.Session { return s }, nil)
		mUsers.On("Update", ctx, mock.Anything).Return(nil)

		user, token, err := svc.Login(ctx, "a@example.com", "password123", SessionMeta{IPAddress: "10.0.0.1"})
		require.NoError(t, err)
		assert.Equal(t, "u1", user.ID)
		assert.NotEmpty(t, token)
		mSessions.AssertExpectations(t)
	})

	t.Run("wrong password", func(t *testing.T) {
		mUsers := new(repoMocks.MockUserRepository)
		mUsers.On("FindByEmail", ctx, "a@example.com").Return(newUser(nil), nil)
		svc := NewAuthService(mUsers, new(repoMocks.MockSessionRepository), new(mockMailer), bcrypt.MinCost)

		_, _, err := svc.Login(ctx, "a@example.com", "nope", SessionMeta{})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		mUsers := new(repoMocks.MockUserRepository)
		mUsers.On("FindByEmail", ctx, "ghost@example.com").Return(nil, sql.ErrNoRows)
		svc := NewAuthService(mUsers, new(repoMocks.MockSessionRepository), new(mockMailer), bcrypt.MinCost)

		_, _, err := svc.Login(ctx, "ghost@example.com", "password123", SessionMeta{})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unverified account", func(t *testing.T) {
		mUsers := new(repoMocks.MockUserRepository)
		mUsers.On("FindByEmail", ctx, "a@example.com").
			Return(newUser(func(u *model.User) { u.Verified = false }), nil)
		svc := NewAuthService(mUsers, new(repoMocks.MockSessionRepository), new(mockMailer), bcrypt.MinCost)

		_, _, err := svc.Login(ctx, "a@example.com", "password123", SessionMeta{})
		assert.ErrorIs(t, err, ErrNotVerified)
	})

	t.Run("disabled account", func(t *testing.T) {
		mUsers := new(repoMocks.MockUserRepository)
		mUsers.On("FindByEmail", ctx, "a@example.com").
			Return(newUser(func(u *model.User) { u.Active = false }), nil)
		svc := NewAuthService(mUsers, new(repoMocks.MockSessionRepository), new(mockMailer), bcrypt.MinCost)

		_, _, err := svc.Login(ctx, "a@example.com", "password123", SessionMeta{})
		assert.ErrorIs(t, err, ErrAccountDisabled)
	})
}

func TestAuthService_Authenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves a live session and refreshes it", func(t *testing.T) {
		plain, hash, err := model.GenerateSessionToken()
		require.NoError(t, err)

		mUsers := new(repoMocks.MockUserRepository)
		mSessions := new(repoMocks.MockSessionRepository)
		svc := NewAuthService(mUsers, mSessions, new(mockMailer), bcrypt.MinCost)

		mSessions.On("FindByTokenHash", ctx, hash).Return(&model.Session{
			ID:        "s1",
			UserID:    "u1",
			TokenHash: hash,
			ExpiresAt: time.Now().Add(time.Hour),
		}, nil)
		mUsers.On("FindByID", ctx, "u1").Return(&model.User{ID: "u1", Active: true, Verified: true}, nil)
		mSessions.On("Refresh", ctx, hash).Return(nil)

		user, err := svc.Authenticate(ctx, plain)
		require.NoError(t, err)
		assert.Equal(t, "u1", user.ID)
		mSessions.AssertExpectations(t)
	})

	t.Run("expired session", func(t *testing.T) {
		plain, hash, err := model.GenerateSessionToken()
		require.NoError(t, err)

		mSessions := new(repoMocks.MockSessionRepository)
		mSessions.On("FindByTokenHash", ctx, hash).Return(&model.Session{
			ID:        "s1",
			UserID:    "u1",
			ExpiresAt: time.Now().Add(-time.Minute),
		}, nil)
		svc := NewAuthService(new(repoMocks.MockUserRepository), mSessions, new(mockMailer), bcrypt.MinCost)

		_, err = svc.Authenticate(ctx, plain)
		assert.ErrorIs(t, err, ErrSessionInvalid)
	})

	t.Run("revoked session", func(t *testing.T) {
		plain, hash, err := model.GenerateSessionToken()
		require.NoError(t, err)

		mSessions := new(repoMocks.MockSessionRepository)
		mSessions.On("FindByTokenHash", ctx, hash).Return(&model.Session{
			ID:        "s1",
			UserID:    "u1",
			ExpiresAt: time.Now().Add(time.Hour),
			Revoked:   true,
		}, nil)
		svc := NewAuthService(new(repoMocks.MockUserRepository), mSessions, new(mockMailer), bcrypt.MinCost)

		_, err = svc.Authenticate(ctx, plain)
		assert.ErrorIs(t, err, ErrSessionInvalid)
	})

	t.Run("empty token", func(t *testing.T) {
		svc := NewAuthService(new(repoMocks.MockUserRepository), new(repoMocks.MockSessionRepository), new(mockMailer), bcrypt.MinCost)
		_, err := svc.Authenticate(ctx, "")
		assert.ErrorIs(t, err, ErrSessionInvalid)
	})
}

package identity_test

import (
	"context"
	"time"

	identity "github.com/goliatone/go-identity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockCredentialStore implements identity.CredentialStore
type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) GetByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	return userArg(args.Get(0)), args.Error(1)
}

func (m *MockCredentialStore) GetByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	return userArg(args.Get(0)), args.Error(1)
}

func (m *MockCredentialStore) GetByUsername(ctx context.Context, username string) (*identity.User, error) {
	args := m.Called(ctx, username)
	return userArg(args.Get(0)), args.Error(1)
}

func (m *MockCredentialStore) GetByIdentifier(ctx context.Context, identifier string) (*identity.User, error) {
	args := m.Called(ctx, identifier)
	return userArg(args.Get(0)), args.Error(1)
}

func (m *MockCredentialStore) GetByResetToken(ctx context.Context, token string) (*identity.User, error) {
	args := m.Called(ctx, token)
	return userArg(args.Get(0)), args.Error(1)
}

func (m *MockCredentialStore) Insert(ctx context.Context, user *identity.User) (*identity.User, error) {
	args := m.Called(ctx, user)
	return userArg(args.Get(0)), args.Error(1)
}

func (m *MockCredentialStore) UpdateEmail(ctx context.Context, id uuid.UUID, email string) (*identity.User, error) {
	args := m.Called(ctx, id, email)
	return userArg(args.Get(0)), args.Error(1)
}

func (m *MockCredentialStore) UpdateUsername(ctx context.Context, id uuid.UUID, username string) (*identity.User, error) {
	args := m.Called(ctx, id, username)
	return userArg(args.Get(0)), args.Error(1)
}

func (m *MockCredentialStore) SetResetToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error {
	args := m.Called(ctx, id, token, expiresAt)
	return args.Error(0)
}

func (m *MockCredentialStore) ConsumeResetToken(ctx context.Context, id uuid.UUID, token, passwordHash string) error {
	args := m.Called(ctx, id, token, passwordHash)
	return args.Error(0)
}

func (m *MockCredentialStore) TrackAttemptedLogin(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockCredentialStore) TrackSuccessfulLogin(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func userArg(v any) *identity.User {
	if v == nil {
		return nil
	}
	return v.(*identity.User)
}

// FailingSession always errors on writes, for exercising transient paths.
type FailingSession struct {
	UserID string
	Err    error
}

func (s *FailingSession) GetUser(ctx context.Context) (string, bool) {
	return s.UserID, s.UserID != ""
}

func (s *FailingSession) SetUser(ctx context.Context, userID string) error {
	return s.Err
}

func (s *FailingSession) ClearUser(ctx context.Context) error {
	return s.Err
}

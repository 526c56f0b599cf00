package auth_test

import (
	"context"
	"testing"
	"time"

	"planner/internal/auth"
	"planner/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*model.User), args.Error(1)
}

func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*model.User), args.Error(1)
}

func (m *MockUserStore) UpdatePassword(ctx context.Context, id uuid.UUID, hashedPassword string) error {
	args := m.Called(ctx, id, hashedPassword)
	return args.Error(0)
}

type captureSender struct {
	email, token string
}

func (c *captureSender) SendReset(ctx context.Context, email, token string) error {
	c.email, c.token = email, token
	return nil
}

func newService(store *MockUserStore, sender auth.ResetSender) (*auth.Service, *auth.Tokens) {
	tokens := auth.NewTokens("test-secret", time.Hour)
	return auth.NewService(store, tokens, sender), tokens
}

func TestSignUp_Success(t *testing.T) {
	// Arrange
	store := new(MockUserStore)
	svc, _ := newService(store, nil)
	store.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, nil)
	store.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

	// Act
	session, err := svc.SignUp(context.Background(), " Test@Example.com ", "password123")

	// Assert
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "test@example.com", session.User.Email)
	userID, err := svc.CurrentUser(session.Token)
	assert.NoError(t, err)
	assert.Equal(t, session.User.ID, userID)
	store.AssertExpectations(t)
}

func TestSignUp_Rejections(t *testing.T) {
	store := new(MockUserStore)
	svc, _ := newService(store, nil)
	store.On("FindByEmail", mock.Anything, "taken@example.com").Return(&model.User{ID: uuid.New()}, nil)

	_, err := svc.SignUp(context.Background(), "not-an-email", "password123")
	assert.ErrorIs(t, err, auth.ErrInvalidEmail)

	_, err = svc.SignUp(context.Background(), "a@example.com", "123")
	assert.ErrorIs(t, err, auth.ErrWeakPassword)

	_, err = svc.SignUp(context.Background(), "taken@example.com", "password123")
	assert.ErrorIs(t, err, auth.ErrUserExists)
}

func TestSignIn(t *testing.T) {
	// Arrange
	store := new(MockUserStore)
	svc, _ := newService(store, nil)
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &model.User{ID: uuid.New(), Email: "test@example.com", HashedPassword: string(hash)}
	store.On("FindByEmail", mock.Anything, "test@example.com").Return(user, nil)
	store.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, nil)

	// Act
	session, err := svc.SignIn(context.Background(), "test@example.com", "password123")
	_, wrongErr := svc.SignIn(context.Background(), "test@example.com", "wrong")
	_, missingErr := svc.SignIn(context.Background(), "nobody@example.com", "password123")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.User.ID)
	assert.ErrorIs(t, wrongErr, auth.ErrInvalidCredentials)
	assert.ErrorIs(t, missingErr, auth.ErrInvalidCredentials)
}

func TestPasswordResetFlow(t *testing.T) {
	// Arrange
	store := new(MockUserStore)
	sender := &captureSender{}
	svc, _ := newService(store, sender)
	user := &model.User{ID: uuid.New(), Email: "test@example.com"}
	store.On("FindByEmail", mock.Anything, "test@example.com").Return(user, nil)
	store.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, nil)
	store.On("UpdatePassword", mock.Anything, user.ID, mock.AnythingOfType("string")).Return(nil)

	// Act
	require.NoError(t, svc.RequestPasswordReset(context.Background(), "test@example.com"))
	require.NoError(t, svc.RequestPasswordReset(context.Background(), "ghost@example.com"))
	err := svc.ResetPassword(context.Background(), sender.token, "brand-new-pass")

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, "test@example.com", sender.email)
	_, err = svc.CurrentUser(sender.token)
	assert.Error(t, err, "reset token must not open a session")
	store.AssertExpectations(t)
}

func TestResetPassword_RejectsSessionToken(t *testing.T) {
	store := new(MockUserStore)
	svc, tokens := newService(store, nil)
	sessionToken, err := tokens.GenerateToken(uuid.NewString())
	require.NoError(t, err)

	err = svc.ResetPassword(context.Background(), sessionToken, "brand-new-pass")

	assert.ErrorIs(t, err, auth.ErrInvalidClaims)
	store.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

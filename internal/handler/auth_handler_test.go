package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"planner/internal/auth"
	"planner/internal/handler"
	"planner/internal/middleware"
	"planner/internal/model"
	"planner/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*model.User), args.Error(1)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hashedPassword string) error {
	args := m.Called(ctx, id, hashedPassword)
	return args.Error(0)
}

// stubSessions records session starts and stops without a backend.
type stubSessions struct {
	mu      sync.Mutex
	started []uuid.UUID
	stopped []uuid.UUID
}

func (s *stubSessions) Get(ctx context.Context, userID uuid.UUID) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = append(s.started, userID)
	return nil, errors.New("no backend in this test")
}

func (s *stubSessions) Stop(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = append(s.stopped, userID)
}

type captureSender struct {
	token string
}

func (c *captureSender) SendReset(ctx context.Context, email, token string) error {
	c.token = token
	return nil
}

func setupAuthTest() (*gin.Engine, *MockUserRepository, *stubSessions, *captureSender) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	mockRepo := new(MockUserRepository)
	sessions := &stubSessions{}
	sender := &captureSender{}
	svc := auth.NewService(mockRepo, auth.NewTokens(testSecret, time.Hour), sender)
	h := handler.NewAuthHandler(svc, sessions, nil)

	r.POST("/auth/signup", h.SignUp)
	r.POST("/auth/signin", h.SignIn)
	r.POST("/auth/password-reset", h.RequestPasswordReset)
	r.POST("/auth/password-reset/confirm", h.ConfirmPasswordReset)
	protected := r.Group("/", middleware.JWTAuthMiddleware(testSecret))
	protected.POST("/auth/signout", h.SignOut)
	return r, mockRepo, sessions, sender
}

func postJSON(router http.Handler, path string, body any, token string) *httptest.ResponseRecorder {
	jsonBody, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestSignUp_Success(t *testing.T) {
	// Arrange
	router, mockRepo, _, _ := setupAuthTest()
	mockRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, nil)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

	// Act
	resp := postJSON(router, "/auth/signup", handler.CredentialsRequest{
		Email:    "Test@Example.com",
		Password: "password123",
	}, "")

	// Assert
	assert.Equal(t, http.StatusCreated, resp.Code)

	var response handler.AuthResponse
	err := json.Unmarshal(resp.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.NotEmpty(t, response.Token)
	assert.Equal(t, "test@example.com", response.User.Email)

	mockRepo.AssertExpectations(t)
}

func TestSignUp_UserAlreadyExists(t *testing.T) {
	router, mockRepo, _, _ := setupAuthTest()
	existingUser := &model.User{ID: uuid.New(), Email: "existing@example.com", HashedPassword: "hashed_password"}
	mockRepo.On("FindByEmail", mock.Anything, "existing@example.com").Return(existingUser, nil)

	resp := postJSON(router, "/auth/signup", handler.CredentialsRequest{
		Email:    "existing@example.com",
		Password: "password123",
	}, "")

	assert.Equal(t, http.StatusConflict, resp.Code)
	var response map[string]string
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &response))
	assert.Equal(t, "User already exists", response["error"])
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSignUp_WeakPassword(t *testing.T) {
	router, _, _, _ := setupAuthTest()

	resp := postJSON(router, "/auth/signup", handler.CredentialsRequest{Email: "a@b.co", Password: "123"}, "")

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestSignIn_SuccessStartsSession(t *testing.T) {
	// Arrange
	router, mockRepo, sessions, _ := setupAuthTest()
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	testUser := &model.User{ID: uuid.New(), Email: "test@example.com", HashedPassword: string(hashedPassword)}
	mockRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(testUser, nil)

	// Act
	resp := postJSON(router, "/auth/signin", handler.CredentialsRequest{
		Email:    "test@example.com",
		Password: "password123",
	}, "")

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)
	var response handler.AuthResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &response))
	assert.NotEmpty(t, response.Token)
	assert.Equal(t, testUser.ID, response.User.ID)
	assert.Equal(t, []uuid.UUID{testUser.ID}, sessions.started)
}

func TestSignIn_InvalidCredentials(t *testing.T) {
	router, mockRepo, sessions, _ := setupAuthTest()
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("correct_password"), bcrypt.DefaultCost)
	testUser := &model.User{ID: uuid.New(), Email: "test@example.com", HashedPassword: string(hashedPassword)}
	mockRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(testUser, nil)

	resp := postJSON(router, "/auth/signin", handler.CredentialsRequest{
		Email:    "test@example.com",
		Password: "wrong_password",
	}, "")

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	var response map[string]string
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &response))
	assert.Equal(t, "Invalid email or password", response["error"])
	assert.Empty(t, sessions.started)
}

func TestSignIn_UserNotFound(t *testing.T) {
	router, mockRepo, _, _ := setupAuthTest()
	mockRepo.On("FindByEmail", mock.Anything, "nonexistent@example.com").Return(nil, nil)

	resp := postJSON(router, "/auth/signin", handler.CredentialsRequest{
		Email:    "nonexistent@example.com",
		Password: "password123",
	}, "")

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	mockRepo.AssertExpectations(t)
}

func TestSignOut_StopsSession(t *testing.T) {
	router, _, sessions, _ := setupAuthTest()
	userID := uuid.New()
	token, err := auth.NewTokens(testSecret, time.Hour).GenerateToken(userID.String())
	require.NoError(t, err)

	resp := postJSON(router, "/auth/signout", nil, token)

	assert.Equal(t, http.StatusNoContent, resp.Code)
	assert.Equal(t, []uuid.UUID{userID}, sessions.stopped)
}

func TestPasswordReset_RequestAndConfirm(t *testing.T) {
	// Arrange
	router, mockRepo, _, sender := setupAuthTest()
	user := &model.User{ID: uuid.New(), Email: "test@example.com"}
	mockRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(user, nil)
	mockRepo.On("UpdatePassword", mock.Anything, user.ID, mock.AnythingOfType("string")).Return(nil)

	// Act
	resp := postJSON(router, "/auth/password-reset", handler.PasswordResetRequest{Email: "test@example.com"}, "")
	require.Equal(t, http.StatusAccepted, resp.Code)
	require.NotEmpty(t, sender.token)

	resp = postJSON(router, "/auth/password-reset/confirm", handler.PasswordResetConfirmRequest{
		Token:    sender.token,
		Password: "new-password",
	}, "")

	// Assert
	assert.Equal(t, http.StatusNoContent, resp.Code)
	mockRepo.AssertExpectations(t)
}

func TestPasswordReset_SessionTokenRejected(t *testing.T) {
	router, _, _, _ := setupAuthTest()
	token, err := auth.NewTokens(testSecret, time.Hour).GenerateToken(uuid.NewString())
	require.NoError(t, err)

	resp := postJSON(router, "/auth/password-reset/confirm", handler.PasswordResetConfirmRequest{
		Token:    token,
		Password: "new-password",
	}, "")

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

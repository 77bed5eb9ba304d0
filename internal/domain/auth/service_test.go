package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"leadcrm/internal/domain"
	"leadcrm/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) List(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.User), args.Error(1)
}

type mockJWTService struct {
	mock.Mock
}

func (m *mockJWTService) GenerateToken(userID int64, username, role string) (string, error) {
	args := m.Called(userID, username, role)
	return args.String(0), args.Error(1)
}

func TestService_Register_Success(t *testing.T) {
	userRepo := new(mockUserRepo)
	jwtSvc := new(mockJWTService)

	userRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Username == "jane" && !u.IsStaff && u.PasswordHash != "secret-pass"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.User).ID = 10
	}).Return(nil)
	jwtSvc.On("GenerateToken", int64(10), "jane", domain.RoleUser).Return("fake-jwt-token", nil)

	svc := NewService(userRepo, jwtSvc)
	res, err := svc.Register(context.Background(), RegisterRequest{
		Username: " jane ",
		Email:    "jane@example.com",
		Password: "secret-pass",
	})

	require.NoError(t, err)
	assert.Equal(t, "fake-jwt-token", res.AccessToken)
	assert.Equal(t, int64(10), res.User.ID)
	userRepo.AssertExpectations(t)
	jwtSvc.AssertExpectations(t)
}

func TestService_Register_UsernameTaken(t *testing.T) {
	userRepo := new(mockUserRepo)
	userRepo.On("Create", mock.Anything, mock.Anything).Return(repository.ErrUsernameTaken)

	svc := NewService(userRepo, new(mockJWTService))
	_, err := svc.Register(context.Background(), RegisterRequest{Username: "jane", Password: "x"})

	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestService_Login(t *testing.T) {
	hash, err := HashPassword("correct")
	require.NoError(t, err)
	staff := &domain.User{ID: 3, Username: "boss", PasswordHash: hash, IsStaff: true}

	userRepo := new(mockUserRepo)
	userRepo.On("GetByUsername", mock.Anything, "boss").Return(staff, nil)
	userRepo.On("GetByUsername", mock.Anything, "ghost").Return(nil, gorm.ErrRecordNotFound)
	jwtSvc := new(mockJWTService)
	jwtSvc.On("GenerateToken", int64(3), "boss", domain.RoleStaff).Return("staff-token", nil)

	svc := NewService(userRepo, jwtSvc)

	res, err := svc.Login(context.Background(), LoginRequest{Username: "boss", Password: "correct"})
	require.NoError(t, err)
	assert.Equal(t, "staff-token", res.AccessToken)

	_, err = svc.Login(context.Background(), LoginRequest{Username: "boss", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), LoginRequest{Username: "ghost", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestHandler_LoginAndMe(t *testing.T) {
	gin.SetMode(gin.TestMode)

	hash, err := HashPassword("pw")
	require.NoError(t, err)
	user := &domain.User{ID: 8, Username: "agent", FirstName: "Ann", PasswordHash: hash}

	userRepo := new(mockUserRepo)
	userRepo.On("GetByUsername", mock.Anything, "agent").Return(user, nil)
	userRepo.On("GetByID", mock.Anything, int64(8)).Return(user, nil)
	userRepo.On("List", mock.Anything).Return([]domain.User{*user}, nil)
	jwtSvc := new(mockJWTService)
	jwtSvc.On("GenerateToken", int64(8), "agent", domain.RoleUser).Return("tok", nil)

	h := NewHandler(NewService(userRepo, jwtSvc))
	router := gin.New()
	api := router.Group("/api/v1")
	RegisterPublicRoutes(api, h)
	protected := api.Group("")
	protected.Use(func(c *gin.Context) { c.Set("user_id", int64(8)); c.Next() })
	RegisterProtectedRoutes(protected, h)

	body, _ := json.Marshal(LoginRequest{Username: "agent", Password: "pw"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"access_token":"tok"`)
	assert.NotContains(t, w.Body.String(), "password")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"agent"`)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/users", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Ann"`)

	body, _ = json.Marshal(LoginRequest{Username: "agent", Password: "nope"})
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_CREDENTIALS")
}

package services

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/MelnykAndriy/GUI-lab-backend/config"
	"github.com/MelnykAndriy/GUI-lab-backend/errors"
	"github.com/MelnykAndriy/GUI-lab-backend/models"
	"github.com/MelnykAndriy/GUI-lab-backend/services/jwt"
)

func newAuthFixture() (*fakeAuthRepo, AuthService) {
	authRepo := &fakeAuthRepo{users: map[uint]*models.User{}}
	svc := NewAuthService(authRepo, &config.Config{JWTSecret: "test-secret", BaseUrl: "http://localhost:8080"})
	return authRepo, svc
}

func registerRequest() *models.RegisterRequest {
	return &models.RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "sup3rsecret",
		Gender:   models.GenderFemale,
		Dob:      "1995-04-23",
	}
}

func TestRegisterUser(t *testing.T) {
	authRepo, svc := newAuthFixture()

	resp, apiErr := svc.RegisterUser(registerRequest())
	require.Nil(t, apiErr)
	require.NotEmpty(t, resp.Token)
	require.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "alice@example.com", resp.User.Email)
	assert.Equal(t, "1995-04-23", resp.User.Profile.Dob)

	// the issued pair is usable right away
	claims, err := jwt.ValidateAndGetClaims(resp.Token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, "access", claims["type"])
	userID, err := jwt.ValidateRefreshToken(resp.RefreshToken, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, userID)

	stored := authRepo.users[resp.User.ID]
	require.NotNil(t, stored)
	assert.NotEmpty(t, stored.HashedPassword)
	assert.NoError(t, stored.VerifyPassword("sup3rsecret"))
}

func TestRegisterUserDuplicateEmail(t *testing.T) {
	authRepo, svc := newAuthFixture()
	authRepo.emailExistsErr = errors.New("email already exists", http.StatusBadRequest)

	_, apiErr := svc.RegisterUser(registerRequest())
	require.NotNil(t, apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Email already exists", apiErr.Message)
}

func TestRegisterUserShortPassword(t *testing.T) {
	_, svc := newAuthFixture()

	request := registerRequest()
	request.Password = "abc"
	_, apiErr := svc.RegisterUser(request)
	require.NotNil(t, apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestRegisterUserBadDob(t *testing.T) {
	_, svc := newAuthFixture()

	request := registerRequest()
	request.Dob = "23/04/1995"
	_, apiErr := svc.RegisterUser(request)
	require.NotNil(t, apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestLoginUser(t *testing.T) {
	authRepo, svc := newAuthFixture()

	hashed, err := bcrypt.GenerateFromPassword([]byte("sup3rsecret"), bcrypt.DefaultCost)
	require.NoError(t, err)
	user := testUser(1, "Alice", "alice@example.com")
	user.HashedPassword = string(hashed)
	authRepo.users[1] = user

	resp, apiErr := svc.LoginUser(&models.LoginRequest{Email: "alice@example.com", Password: "sup3rsecret"})
	require.Nil(t, apiErr)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, uint(1), resp.User.ID)

	_, apiErr = svc.LoginUser(&models.LoginRequest{Email: "alice@example.com", Password: "wrong"})
	require.NotNil(t, apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)

	_, apiErr = svc.LoginUser(&models.LoginRequest{Email: "nobody@example.com", Password: "sup3rsecret"})
	require.NotNil(t, apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestRefreshAccessToken(t *testing.T) {
	authRepo, svc := newAuthFixture()
	authRepo.users[1] = testUser(1, "Alice", "alice@example.com")

	_, refresh, err := jwt.GenerateTokenPair("alice@example.com", "test-secret", 1)
	require.NoError(t, err)

	token, apiErr := svc.RefreshAccessToken(refresh)
	require.Nil(t, apiErr)
	claims, err := jwt.ValidateAndGetClaims(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, float64(1), claims["id"])

	_, apiErr = svc.RefreshAccessToken("garbage")
	require.NotNil(t, apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestEditUserProfile(t *testing.T) {
	authRepo, svc := newAuthFixture()
	authRepo.users[1] = testUser(1, "Alice", "alice@example.com")

	name := "Alicia"
	dob := "1990-01-02"
	updated, err := svc.EditUserProfile(1, &models.EditProfileRequest{Name: &name, Dob: &dob})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", updated.Name)
	assert.Equal(t, "1990-01-02", updated.Dob.Format(models.DobLayout))
	// untouched fields survive a partial update
	assert.Equal(t, "alice@example.com", updated.Email)

	bad := "unknown"
	_, err = svc.EditUserProfile(1, &models.EditProfileRequest{Gender: &bad})
	assert.Error(t, err)
}

func TestFindUserByEmailNotFound(t *testing.T) {
	_, svc := newAuthFixture()

	_, apiErr := svc.FindUserByEmail("ghost@example.com")
	require.NotNil(t, apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "User not found", apiErr.Message)
}

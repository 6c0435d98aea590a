package services

import (
	"errors"
	"log"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/MelnykAndriy/GUI-lab-backend/config"
	"github.com/MelnykAndriy/GUI-lab-backend/db"
	apiError "github.com/MelnykAndriy/GUI-lab-backend/errors"
	"github.com/MelnykAndriy/GUI-lab-backend/models"
	"github.com/MelnykAndriy/GUI-lab-backend/services/jwt"
)

// AuthService interface
type AuthService interface {
	RegisterUser(request *models.RegisterRequest) (*models.LoginResponse, *apiError.Error)
	LoginUser(loginRequest *models.LoginRequest) (*models.LoginResponse, *apiError.Error)
	RefreshAccessToken(refreshToken string) (string, *apiError.Error)
	GetUserProfile(userID uint) (*models.User, error)
	EditUserProfile(userID uint, request *models.EditProfileRequest) (*models.User, error)
	FindUserByEmail(email string) (*models.User, *apiError.Error)
}

// authService struct
type authService struct {
	Config   *config.Config
	authRepo db.AuthRepository
}

// NewAuthService instantiate an authService
func NewAuthService(authRepo db.AuthRepository, conf *config.Config) AuthService {
	return &authService{
		Config:   conf,
		authRepo: authRepo,
	}
}

func (a *authService) RegisterUser(request *models.RegisterRequest) (*models.LoginResponse, *apiError.Error) {
	if err := a.authRepo.IsEmailExist(request.Email); err != nil {
		log.Printf("RegisterUser error: %v", err)
		return nil, apiError.New("Email already exists", http.StatusBadRequest)
	}

	if err := models.ValidatePassword(request.Password); err != nil {
		return nil, apiError.New(err.Error(), http.StatusBadRequest)
	}

	dob, err := time.Parse(models.DobLayout, request.Dob)
	if err != nil {
		return nil, apiError.New("invalid date of birth", http.StatusBadRequest)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("RegisterUser error hashing password: %v", err)
		return nil, apiError.ErrInternalServerError
	}

	user := &models.User{
		Name:           request.Name,
		Email:          request.Email,
		Gender:         request.Gender,
		Dob:            dob,
		HashedPassword: string(hashedPassword),
	}

	user, err = a.authRepo.CreateUser(user)
	if err != nil {
		log.Printf("RegisterUser error creating user: %v", err)
		return nil, apiError.GetUniqueContraintError(err)
	}

	accessToken, refreshToken, err := jwt.GenerateTokenPair(user.Email, a.Config.JWTSecret, user.ID)
	if err != nil {
		log.Printf("RegisterUser error generating token pair: %v", err)
		return nil, apiError.ErrInternalServerError
	}

	return &models.LoginResponse{
		Token:        accessToken,
		RefreshToken: refreshToken,
		User:         user.Response(a.Config.BaseUrl),
	}, nil
}

// LoginUser logs in a user and returns the login response
func (a *authService) LoginUser(loginRequest *models.LoginRequest) (*models.LoginResponse, *apiError.Error) {
	foundUser, err := a.authRepo.FindUserByEmail(loginRequest.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apiError.New("invalid email or password", http.StatusUnauthorized)
		}
		log.Printf("Error finding user by email: %v", err)
		return nil, apiError.New("unable to find user", http.StatusInternalServerError)
	}

	if err := foundUser.VerifyPassword(loginRequest.Password); err != nil {
		log.Printf("Invalid password for user %s", foundUser.Email)
		return nil, apiError.ErrInvalidPassword
	}

	accessToken, refreshToken, err := jwt.GenerateTokenPair(foundUser.Email, a.Config.JWTSecret, foundUser.ID)
	if err != nil {
		log.Printf("Error generating token pair for user %s: %v", foundUser.Email, err)
		return nil, apiError.ErrInternalServerError
	}

	return &models.LoginResponse{
		Token:        accessToken,
		RefreshToken: refreshToken,
		User:         foundUser.Response(a.Config.BaseUrl),
	}, nil
}

// RefreshAccessToken exchanges a valid refresh token for a fresh access token.
func (a *authService) RefreshAccessToken(refreshToken string) (string, *apiError.Error) {
	userID, err := jwt.ValidateRefreshToken(refreshToken, a.Config.JWTSecret)
	if err != nil {
		return "", apiError.New("invalid refresh token", http.StatusUnauthorized)
	}

	user, err := a.authRepo.FindUserByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apiError.New("user not found", http.StatusUnauthorized)
		}
		log.Printf("Error finding user %d for refresh: %v", userID, err)
		return "", apiError.ErrInternalServerError
	}

	accessToken, _, err := jwt.GenerateTokenPair(user.Email, a.Config.JWTSecret, user.ID)
	if err != nil {
		log.Printf("Error generating access token for user %s: %v", user.Email, err)
		return "", apiError.ErrInternalServerError
	}
	return accessToken, nil
}

func (a *authService) GetUserProfile(userID uint) (*models.User, error) {
	user, err := a.authRepo.FindUserByID(userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (a *authService) EditUserProfile(userID uint, request *models.EditProfileRequest) (*models.User, error) {
	user, err := a.authRepo.FindUserByID(userID)
	if err != nil {
		return nil, err
	}

	if request.Name != nil {
		user.Name = *request.Name
	}
	if request.Gender != nil {
		switch *request.Gender {
		case models.GenderMale, models.GenderFemale, models.GenderOther:
			user.Gender = *request.Gender
		default:
			return nil, apiError.New("invalid gender", http.StatusBadRequest)
		}
	}
	if request.Dob != nil {
		dob, err := time.Parse(models.DobLayout, *request.Dob)
		if err != nil {
			return nil, apiError.New("invalid date of birth", http.StatusBadRequest)
		}
		user.Dob = dob
	}
	if request.AvatarColor != nil {
		user.AvatarColor = *request.AvatarColor
	}

	if err := a.authRepo.UpdateUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (a *authService) FindUserByEmail(email string) (*models.User, *apiError.Error) {
	user, err := a.authRepo.FindUserByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apiError.New("User not found", http.StatusNotFound)
		}
		log.Printf("Error finding user by email: %v", err)
		return nil, apiError.ErrInternalServerError
	}
	return user, nil
}

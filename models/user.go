package models

import (
	"strings"
	"time"

	goval "github.com/go-passwd/validator"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// Gender choices accepted on registration and profile edits
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// DobLayout is the wire format for dates of birth.
const DobLayout = "2006-01-02"

// User represents a registered account together with its display profile.
type User struct {
	Model
	Name           string    `json:"name" conform:"trim" validate:"required,min=2"`
	Email          string    `json:"email" gorm:"unique;not null" conform:"trim,lower" validate:"required,email"`
	Password       string    `json:"password,omitempty" gorm:"-" validate:"omitempty,min=6"`
	HashedPassword string    `json:"-"`
	Gender         string    `json:"gender" validate:"required,oneof=male female other"`
	Dob            time.Time `json:"dob"`
	AvatarURL      string    `json:"avatar_url"`
	AvatarColor    string    `json:"avatar_color"`
}

// Blacklist holds access tokens invalidated by logout
type Blacklist struct {
	Model
	Token string `gorm:"type:text;not null" json:"token"`
}

// ProfileData is the nested profile block of a user response.
type ProfileData struct {
	Name        string    `json:"name"`
	Gender      string    `json:"gender"`
	Dob         string    `json:"dob"`
	CreatedAt   time.Time `json:"createdAt"`
	AvatarURL   string    `json:"avatarUrl"`
	AvatarColor string    `json:"avatarColor,omitempty"`
}

// UserResponse is the public shape of a user.
type UserResponse struct {
	ID      uint        `json:"id"`
	Email   string      `json:"email"`
	Profile ProfileData `json:"profile"`
}

// Response shapes a user for output. baseURL is passed explicitly so the
// avatar link can be made absolute without relying on request-scoped state.
func (u *User) Response(baseURL string) UserResponse {
	avatarURL := u.AvatarURL
	if avatarURL != "" && !strings.HasPrefix(avatarURL, "http://") && !strings.HasPrefix(avatarURL, "https://") {
		avatarURL = strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(avatarURL, "/")
	}
	return UserResponse{
		ID:    u.ID,
		Email: u.Email,
		Profile: ProfileData{
			Name:        u.Name,
			Gender:      u.Gender,
			Dob:         u.Dob.Format(DobLayout),
			CreatedAt:   u.CreatedAt,
			AvatarURL:   avatarURL,
			AvatarColor: u.AvatarColor,
		},
	}
}

// VerifyPassword verifies the collected password with the user's hashed password
func (u *User) VerifyPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password))
}

type RegisterRequest struct {
	Name     string `json:"name" conform:"trim" binding:"required,min=2"`
	Email    string `json:"email" conform:"trim,lower" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Gender   string `json:"gender" binding:"required,oneof=male female other"`
	Dob      string `json:"dob" binding:"required,datetime=2006-01-02"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// EditProfileRequest carries a partial profile update; nil fields are left
// untouched.
type EditProfileRequest struct {
	Name        *string `json:"name" conform:"trim"`
	Gender      *string `json:"gender"`
	Dob         *string `json:"dob"`
	AvatarColor *string `json:"avatarColor"`
}

type LoginResponse struct {
	Token        string       `json:"token"`
	RefreshToken string       `json:"refreshToken,omitempty"`
	User         UserResponse `json:"user"`
}

func ValidatePassword(password string) error {
	passwordValidator := goval.New(goval.MinLength(6, errors.New("password cant be less than 6 characters")),
		goval.MaxLength(72, errors.New("password cant be more than 72 characters")))
	return passwordValidator.Validate(password)
}

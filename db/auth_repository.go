package db

import (
	"log"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/MelnykAndriy/GUI-lab-backend/models"
)

type AuthRepository interface {
	CreateUser(user *models.User) (*models.User, error)
	IsEmailExist(email string) error
	FindUserByEmail(email string) (*models.User, error)
	FindUserByID(id uint) (*models.User, error)
	UpdateUser(user *models.User) error
	UpdateUserAvatar(userID uint, avatarURL string) error
	AddToBlackList(blacklist *models.Blacklist) error
	IsTokenInBlacklist(token string) bool
}

type authRepo struct {
	DB *gorm.DB
}

func NewAuthRepo(db *GormDB) AuthRepository {
	return &authRepo{db.DB}
}

func (a *authRepo) CreateUser(user *models.User) (*models.User, error) {
	if user == nil {
		log.Println("CreateUser error: user is nil")
		return nil, errors.New("user is nil")
	}

	if err := a.DB.Create(user).Error; err != nil {
		log.Printf("CreateUser error: %v", err)
		return nil, err
	}
	return user, nil
}

// IsEmailExist returns an error when the email is already taken.
func (a *authRepo) IsEmailExist(email string) error {
	var count int64
	err := a.DB.Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	if err != nil {
		return errors.Wrap(err, "gorm count error")
	}
	if count > 0 {
		return errors.New("email already in use")
	}
	return nil
}

func (a *authRepo) FindUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := a.DB.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (a *authRepo) FindUserByID(id uint) (*models.User, error) {
	var user models.User
	err := a.DB.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (a *authRepo) UpdateUser(user *models.User) error {
	return a.DB.Save(user).Error
}

func (a *authRepo) UpdateUserAvatar(userID uint, avatarURL string) error {
	return a.DB.Model(&models.User{}).Where("id = ?", userID).
		Update("avatar_url", avatarURL).Error
}

func (a *authRepo) AddToBlackList(blacklist *models.Blacklist) error {
	return a.DB.Create(blacklist).Error
}

func (a *authRepo) IsTokenInBlacklist(token string) bool {
	var count int64
	if err := a.DB.Model(&models.Blacklist{}).Where("token = ?", token).Count(&count).Error; err != nil {
		log.Printf("IsTokenInBlacklist error: %v", err)
		return false
	}
	return count > 0
}

package server

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/leebenson/conform"

	errs "github.com/MelnykAndriy/GUI-lab-backend/errors"
	"github.com/MelnykAndriy/GUI-lab-backend/models"
	"github.com/MelnykAndriy/GUI-lab-backend/server/response"
)

// Avatar upload constraints, matching the profile picture rules of the web
// client.
const (
	MaxAvatarSize   = 2 * 1024 * 1024 // 2MB
	AvatarDimension = 512
)

var allowedAvatarExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

func (s *Server) handleRegister() gin.HandlerFunc {
	return func(c *gin.Context) {
		var request models.RegisterRequest
		if err := decode(c, &request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "Invalid input", "details": validationDetails(err)})
			return
		}
		if err := conform.Strings(&request); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}

		loginResponse, apiErr := s.AuthService.RegisterUser(&request)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}

		// Send welcome email; a mail failure never interrupts registration.
		subject := "Welcome to Our Platform!"
		if _, err := s.Mail.SendWelcomeMessage(request.Email, subject); err != nil {
			log.Printf("Error sending welcome email: %v", err)
		}

		response.JSON(c, "Signup successful", http.StatusCreated, loginResponse, nil)
	}
}

func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var loginRequest models.LoginRequest
		if err := decode(c, &loginRequest); err != nil {
			response.JSON(c, "", errs.ErrBadRequest.Status, nil, err)
			return
		}
		userResponse, err := s.AuthService.LoginUser(&loginRequest)
		if err != nil {
			response.JSON(c, "", err.Status, nil, err)
			return
		}
		response.JSON(c, "login successful", http.StatusOK, userResponse, nil)
	}
}

func (s *Server) handleTokenRefresh() gin.HandlerFunc {
	return func(c *gin.Context) {
		var request models.RefreshRequest
		if err := decode(c, &request); err != nil {
			response.JSON(c, "", errs.ErrBadRequest.Status, nil, err)
			return
		}
		token, apiErr := s.AuthService.RefreshAccessToken(request.Refresh)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "token refreshed", http.StatusOK, gin.H{"token": token}, nil)
	}
}

// Logout invalidates the access token and adds it to the blacklist
func (s *Server) handleLogout() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, exists := c.Get("access_token")
		if !exists {
			log.Println("Access token not found in context")
			respondAndAbort(c, "Access token not found in context", http.StatusInternalServerError, nil, errs.New("Internal server error", http.StatusInternalServerError))
			return
		}

		accessToken, ok := token.(string)
		if !ok {
			log.Println("Access token is not a string")
			respondAndAbort(c, "Access token is not a string", http.StatusInternalServerError, nil, errs.New("Internal server error", http.StatusInternalServerError))
			return
		}

		blackListEntry := &models.Blacklist{
			Token: accessToken,
		}
		if err := s.AuthRepository.AddToBlackList(blackListEntry); err != nil {
			log.Printf("Error adding access token to blacklist: %v", err)
			respondAndAbort(c, "Logout failed", http.StatusInternalServerError, nil, errs.New("Internal server error", http.StatusInternalServerError))
			return
		}

		response.JSON(c, "Logout successful", http.StatusOK, nil, nil)
	}
}

func (s *Server) handleShowProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, apiErr := currentUser(c)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}

		response.JSON(c, "User profile retrieved successfully", http.StatusOK, user.Response(s.Config.BaseUrl), nil)
	}
}

// Handler for updating user profile
func (s *Server) handleEditUserProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, apiErr := currentUser(c)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}

		var request models.EditProfileRequest
		if err := decode(c, &request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "Invalid input", "details": validationDetails(err)})
			return
		}
		if err := conform.Strings(&request); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}

		updated, err := s.AuthService.EditUserProfile(user.ID, &request)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}

		response.JSON(c, "User details updated successfully", http.StatusOK, updated.Response(s.Config.BaseUrl), nil)
	}
}

func (s *Server) handleUploadAvatar() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, apiErr := currentUser(c)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}

		file, header, err := c.Request.FormFile("avatar")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "No file uploaded"})
			return
		}
		defer file.Close()

		if header.Size > MaxAvatarSize {
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "File too large"})
			return
		}
		ext := strings.ToLower(filepath.Ext(header.Filename))
		if !allowedAvatarExts[ext] {
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "Invalid file format"})
			return
		}

		img, err := imaging.Decode(file, imaging.AutoOrientation(true))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "Invalid file format"})
			return
		}
		// Normalize oversized uploads before they hit disk.
		img = imaging.Fit(img, AvatarDimension, AvatarDimension, imaging.Lanczos)

		uploadDir := filepath.Join(s.Config.UploadDir, "avatars")
		if err := os.MkdirAll(uploadDir, os.ModePerm); err != nil {
			log.Printf("Error creating avatar directory: %v", err)
			response.JSON(c, "", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
			return
		}

		filename := fmt.Sprintf("avatar_%d%s", user.ID, ext)
		if err := imaging.Save(img, filepath.Join(uploadDir, filename)); err != nil {
			log.Printf("Error saving avatar: %v", err)
			response.JSON(c, "", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
			return
		}

		avatarURL := "/uploads/avatars/" + filename
		if err := s.AuthRepository.UpdateUserAvatar(user.ID, avatarURL); err != nil {
			log.Printf("Error updating avatar url: %v", err)
			response.JSON(c, "", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
			return
		}

		c.JSON(http.StatusOK, gin.H{"avatarUrl": avatarURL})
	}
}

func (s *Server) handleGetUserByEmail() gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.Param("email")
		user, apiErr := s.AuthService.FindUserByEmail(email)
		if apiErr != nil {
			c.JSON(apiErr.Status, gin.H{"code": apiErr.Status, "message": apiErr.Message})
			return
		}
		response.JSON(c, "User retrieved successfully", http.StatusOK, user.Response(s.Config.BaseUrl), nil)
	}
}

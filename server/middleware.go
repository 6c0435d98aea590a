package server

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"gorm.io/gorm"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"

	errs "github.com/MelnykAndriy/GUI-lab-backend/errors"
	"github.com/MelnykAndriy/GUI-lab-backend/models"
	"github.com/MelnykAndriy/GUI-lab-backend/server/response"
	"github.com/MelnykAndriy/GUI-lab-backend/services/jwt"
)

func (s *Server) Authorize() gin.HandlerFunc {
	return func(c *gin.Context) {
		accessToken := getTokenFromHeader(c)
		if accessToken == "" {
			respondAndAbort(c, "", http.StatusUnauthorized, nil, errs.New("Unauthorized", http.StatusUnauthorized))
			return
		}

		if s.AuthRepository.IsTokenInBlacklist(accessToken) {
			respondAndAbort(c, "Access token is blacklisted", http.StatusUnauthorized, nil, errs.New("Unauthorized", http.StatusUnauthorized))
			return
		}

		secret := s.Config.JWTSecret
		accessClaims, err := jwt.ValidateAndGetClaims(accessToken, secret)
		if err != nil {
			respondAndAbort(c, "", http.StatusUnauthorized, nil, errs.New("Unauthorized", http.StatusUnauthorized))
			return
		}

		userIDValue := accessClaims["id"]
		var userID uint
		switch v := userIDValue.(type) {
		case float64:
			userID = uint(v)
		default:
			respondAndAbort(c, "", http.StatusBadRequest, nil, errs.New("Invalid userID format", http.StatusBadRequest))
			return
		}

		user, err := s.AuthRepository.FindUserByID(userID)
		if err != nil {
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				respondAndAbort(c, "user not found", http.StatusUnauthorized, nil, errs.New(err.Error(), http.StatusUnauthorized))
				return
			default:
				respondAndAbort(c, "unable to find entity", http.StatusInternalServerError, nil, errs.New("internal server error", http.StatusInternalServerError))
				return
			}
		}

		c.Set("user", user)
		c.Set("userID", userID)
		c.Set("access_token", accessToken)
		c.Set("email", user.Email)
		c.Next()
	}
}

func limitRateForAuth(store ratelimit.Store) gin.HandlerFunc {
	mw := ratelimit.RateLimiter(store, &ratelimit.Options{
		ErrorHandler:   errs.ErrorHandler,
		KeyFunc:        keyFunc,
		BeforeResponse: nil,
	})
	return mw
}

// keyFunc keys auth-endpoint rate limiting by the email in the request body
// so one caller can't lock others out. The body is restored for the handler.
func keyFunc(c *gin.Context) string {
	buf, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return c.ClientIP()
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(buf))

	var body struct {
		Email string `json:"email"`
	}
	if err := decode(c, &body); err != nil || body.Email == "" {
		c.Request.Body = io.NopCloser(bytes.NewBuffer(buf))
		return c.ClientIP()
	}

	c.Request.Body = io.NopCloser(bytes.NewBuffer(buf))
	return body.Email
}

// respondAndAbort calls response.JSON and aborts the Context
func respondAndAbort(c *gin.Context, message string, status int, data interface{}, e *errs.Error) {
	response.JSON(c, message, status, data, e)
	c.Abort()
}

// getTokenFromHeader returns the token string in the authorization header
func getTokenFromHeader(c *gin.Context) string {
	authHeader := c.Request.Header.Get("Authorization")
	if len(authHeader) > 8 {
		return authHeader[7:]
	}
	return ""
}

func decode(c *gin.Context, v interface{}) error {
	return c.ShouldBindJSON(v)
}

// currentUser pulls the authenticated user the Authorize middleware stored.
func currentUser(c *gin.Context) (*models.User, *errs.Error) {
	userI, exists := c.Get("user")
	if !exists {
		return nil, errs.New("Unauthorized", http.StatusUnauthorized)
	}
	user, ok := userI.(*models.User)
	if !ok {
		return nil, errs.New("internal server error", http.StatusInternalServerError)
	}
	return user, nil
}

package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	apiError "github.com/MelnykAndriy/GUI-lab-backend/errors"
)

// JSON writes a uniform envelope. Errors come out as {code, message} with the
// status taken from the api error when one is provided.
func JSON(c *gin.Context, message string, status int, data interface{}, err error) {
	if err != nil {
		var e *apiError.Error
		if errors.As(err, &e) {
			if message == "" {
				message = e.Message
			}
			c.JSON(e.Status, gin.H{"code": e.Status, "message": message})
			return
		}
		if message == "" {
			message = err.Error()
		}
		c.JSON(status, gin.H{"code": status, "message": message})
		return
	}

	body := gin.H{"message": message}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

// HandleErrors picks the right status for errors bubbling out of services.
func HandleErrors(c *gin.Context, err error) {
	var e *apiError.Error
	switch {
	case errors.As(err, &e):
		JSON(c, "", e.Status, nil, e)
	case errors.Is(err, gorm.ErrRecordNotFound):
		JSON(c, "", http.StatusNotFound, nil, apiError.ErrNotFound)
	default:
		JSON(c, "", http.StatusInternalServerError, nil, apiError.ErrInternalServerError)
	}
}

package server

import (
	"fmt"
	"os"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func (s *Server) setupRouter() *gin.Engine {
	ginMode := os.Getenv("GIN_MODE")
	if ginMode == "test" {
		r := gin.New()
		s.defineRoutes(r)
		return r
	}

	r := gin.New()

	// LoggerWithFormatter middleware will write the logs to gin.DefaultWriter
	// By default gin.DefaultWriter = os.Stdout
	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
			param.ClientIP,
			param.TimeStamp.Format(time.RFC1123),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.Latency,
			param.Request.UserAgent(),
			param.ErrorMessage,
		)
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.MaxMultipartMemory = 8 << 20
	r.Static("/uploads", s.Config.UploadDir)
	s.defineRoutes(r)

	return r
}

func (s *Server) defineRoutes(router *gin.Engine) {
	store := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{Rate: time.Minute, Limit: 20})
	limitRate := limitRateForAuth(store)

	apirouter := router.Group("/api/v1")
	apirouter.POST("/auth/register", limitRate, s.handleRegister())
	apirouter.POST("/auth/login", limitRate, s.handleLogin())
	apirouter.POST("/auth/token/refresh", s.handleTokenRefresh())

	authorized := apirouter.Group("/")
	authorized.Use(s.Authorize())
	authorized.GET("/logout", s.handleLogout())
	authorized.GET("/me", s.handleShowProfile())
	authorized.PUT("/me", s.handleEditUserProfile())
	authorized.POST("/me/avatar", s.handleUploadAvatar())
	authorized.GET("/users/search/:email", s.handleGetUserByEmail())
	authorized.POST("/messages", s.handleSendMessage())
	authorized.GET("/messages/:userId", s.handleGetChatMessages())
	authorized.POST("/messages/:userId/read", s.handleMarkMessagesRead())
	authorized.GET("/chats", s.handleGetRecentChats())
}

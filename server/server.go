package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MelnykAndriy/GUI-lab-backend/config"
	"github.com/MelnykAndriy/GUI-lab-backend/db"
	"github.com/MelnykAndriy/GUI-lab-backend/mailingservices"
	"github.com/MelnykAndriy/GUI-lab-backend/services"
)

type Server struct {
	Config            *config.Config
	Mail              *mailingservices.Mailgun
	AuthRepository    db.AuthRepository
	MessageRepository db.MessageRepository
	AuthService       services.AuthService
	ChatService       services.ChatService
	DB                db.GormDB
}

// Start runs the HTTP server until an interrupt arrives, then drains
// in-flight requests.
func (s *Server) Start() {
	r := s.setupRouter()

	port := s.Config.Port
	if port == 0 {
		port = 8080
	}
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: r,
	}

	go func() {
		log.Printf("Server started on :%d", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}
	log.Println("Server exiting")
}

package main

import (
	"log"

	"github.com/MelnykAndriy/GUI-lab-backend/config"
	"github.com/MelnykAndriy/GUI-lab-backend/db"
	"github.com/MelnykAndriy/GUI-lab-backend/mailingservices"
	"github.com/MelnykAndriy/GUI-lab-backend/server"
	"github.com/MelnykAndriy/GUI-lab-backend/services"
)

func main() {
	conf, err := config.Load()
	if err != nil {
		log.Fatalf("unable to load config: %v", err)
	}

	mailgunClient := &mailingservices.Mailgun{}
	mailgunClient.Init()

	gormDB := db.GetDB(conf)
	authRepo := db.NewAuthRepo(gormDB)
	msgRepo := db.NewMessageRepo(gormDB)

	authService := services.NewAuthService(authRepo, conf)
	replier := services.NewAutoReplier(msgRepo, services.ParseBotEmails(conf.BotEmails), 0)
	chatService := services.NewChatService(msgRepo, authRepo, replier, conf)

	s := &server.Server{
		Config:            conf,
		Mail:              mailgunClient,
		AuthRepository:    authRepo,
		MessageRepository: msgRepo,
		AuthService:       authService,
		ChatService:       chatService,
		DB:                *gormDB,
	}
	s.Start()
}

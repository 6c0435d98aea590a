package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Debug            bool   `envconfig:"debug"`
	Port             int    `envconfig:"port" default:"8080"`
	Env              string `envconfig:"env"`
	BaseUrl          string `envconfig:"base_url"`
	PostgresHost     string `envconfig:"postgres_host"`
	PostgresPort     int    `envconfig:"postgres_port" default:"5432"`
	PostgresUser     string `envconfig:"postgres_user"`
	PostgresPassword string `envconfig:"postgres_password"`
	PostgresDB       string `envconfig:"postgres_db"`
	JWTSecret        string `envconfig:"jwt_secret"`
	MailgunApiKey    string `envconfig:"mg_public_api_key"`
	MgDomain         string `envconfig:"mg_domain"`
	MgEmailFrom      string `envconfig:"email_from"`
	UploadDir        string `envconfig:"upload_dir" default:"uploads"`
	BotEmails        string `envconfig:"bot_emails"`
}

func Load() (*Config, error) {
	env := os.Getenv("GIN_MODE")
	if env != "release" {
		if err := godotenv.Load("./.env"); err != nil {
			log.Printf("couldn't load env vars: %v", err)
		}
	}

	c := &Config{}
	err := envconfig.Process("guilab", c)
	if err != nil {
		return nil, err
	}
	return c, nil
}

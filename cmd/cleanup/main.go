package main

import (
	"context"
	"flag"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"fieldjobs/internal/config"
	"fieldjobs/internal/database"
	"fieldjobs/internal/domain/notification"
	"fieldjobs/internal/logging"
)

func main() {
	keep := flag.Duration("keep", 30*24*time.Hour, "keep read notifications newer than this")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logrus.Fatalf("logging: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	svc := notification.NewService(notification.NewRepository(db), nil, nil, log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	if _, err := svc.Cleanup(ctx, *keep); err != nil {
		log.Fatalf("cleanup notifications failed: %v", err)
	}
}

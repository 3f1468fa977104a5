package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/prattle-chat/prattle/internal/server"
	"github.com/prattle-chat/prattle/internal/server/config"
)

func main() {

	// Best effort: a missing .env file is fine.
	_ = godotenv.Load()

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}

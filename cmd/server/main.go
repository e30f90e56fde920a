package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/photogallery/internal/server"
	"github.com/dmitrijs2005/photogallery/internal/server/config"
	"github.com/joho/godotenv"
)

func main() {
	// a missing .env is normal outside development
	_ = godotenv.Load()

	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}

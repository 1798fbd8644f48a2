package main

import (
	"context"
	"log"

	"github.com/shestoi/catalog-browser/services/feed/internal/app"
	"github.com/shestoi/catalog-browser/services/feed/internal/config"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application, err := app.Build(cfg)
	if err != nil {
		log.Fatalf("Failed to build app: %v", err)
	}

	if err := application.Run(context.Background()); err != nil {
		log.Fatalf("Feed error: %v", err)
	}
}

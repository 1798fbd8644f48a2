package main

import (
	"context"
	"log"
	"os"

	"github.com/shestoi/catalog-browser/services/browser/internal/app"
	"github.com/shestoi/catalog-browser/services/browser/internal/config"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Терминальный фронтенд читает команды из stdin и печатает каталог в stdout
	application, err := app.Build(cfg, os.Stdin, os.Stdout)
	if err != nil {
		log.Fatalf("Failed to build app: %v", err)
	}

	if err := application.Run(context.Background()); err != nil {
		log.Fatalf("Browser error: %v", err)
	}
}

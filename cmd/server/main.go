package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"beadify/internal/app"
	"beadify/internal/config"
	"beadify/internal/logging"
)

// main загружает конфигурацию и каталог, настраивает маршруты
// и запускает HTTP-сервер приложения.
func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// 1. Конфигурация и логгер
	cfg, err := config.LoadOptional(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.Setup(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("logging: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Загружаем каталог; без него работать нельзя
	repo, err := app.LoadCatalog(ctx, cfg.Catalog, logger)
	if err != nil {
		logger.Error("catalog load failed", "error", err)
		os.Exit(1)
	}

	// 3. Обработчики с общим кэшем подбора
	h := app.NewHandler(cfg, repo, logger)

	if err := app.Serve(ctx, cfg.Server.Addr, h.Routes(cfg.Server.StaticDir), logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

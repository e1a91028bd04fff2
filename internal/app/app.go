// Package app собирает зависимости из конфигурации для бинарников beadify.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"beadify/internal/catalog"
	"beadify/internal/config"
	"beadify/internal/db"
	"beadify/internal/handlers"
	imagepkg "beadify/internal/image"
	"beadify/internal/matcher"
)

// LoadCatalog загружает каталог из PostgreSQL, если задан DSN, иначе из CSV.
func LoadCatalog(ctx context.Context, cfg config.CatalogConfig, logger *slog.Logger) (*catalog.Repository, error) {
	var (
		repo   *catalog.Repository
		err    error
		source string
	)
	if cfg.DSN != "" {
		source = "postgres"
		repo, err = db.LoadCatalog(ctx, cfg.DSN)
	} else {
		source = cfg.Path
		repo, err = catalog.LoadFile(cfg.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("load catalog from %s: %w", source, err)
	}
	logger.Info("catalog loaded", "source", source, "entries", repo.Len(), "available", repo.AvailableCount())
	return repo, nil
}

// MatchOptions переводит настройки подбора в matcher.Options.
func MatchOptions(cfg config.MatchingConfig) matcher.Options {
	return matcher.Options{K: cfg.K, AvailableOnly: cfg.AvailableOnly}
}

// MosaicSettings переводит настройки схемы в image.Settings.
func MosaicSettings(cfg config.MosaicConfig) imagepkg.Settings {
	s := imagepkg.DefaultSettings()
	s.GridWidth = cfg.GridWidth
	s.GridHeight = cfg.GridHeight
	s.MedianKernel = cfg.MedianKernel
	if cfg.CellSize > 0 {
		s.CellSize = cfg.CellSize
	}
	if cfg.Labels != nil {
		s.Labels = *cfg.Labels
	}
	if cfg.Outline != nil {
		s.Outline = *cfg.Outline
	}
	if cfg.BeadPitchMM > 0 {
		s.BeadPitchMM = cfg.BeadPitchMM
	}
	if cfg.MaxRenderPixels > 0 {
		s.MaxPixels = cfg.MaxRenderPixels
	}
	if cfg.MaxSourcePixels > 0 {
		s.MaxSourcePixels = cfg.MaxSourcePixels
	}
	return s
}

// NewHandler собирает HTTP-обработчики с общим кэшем подбора.
func NewHandler(cfg *config.AppConfig, repo *catalog.Repository, logger *slog.Logger) *handlers.Handler {
	return handlers.New(handlers.Options{
		Cache:     matcher.NewCache(repo, cfg.Matching.CacheTTL),
		Match:     MatchOptions(cfg.Matching),
		Mosaic:    MosaicSettings(cfg.Mosaic),
		Workers:   cfg.Matching.Workers,
		MaxUpload: cfg.Server.MaxUpload,
		Logger:    logger,
	})
}

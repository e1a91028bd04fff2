package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig зеркалит config.yaml.
type AppConfig struct {
	Catalog  CatalogConfig  `yaml:"catalog"`
	Matching MatchingConfig `yaml:"matching"`
	Mosaic   MosaicConfig   `yaml:"mosaic"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
}

// CatalogConfig задаёт источник каталога: CSV-файл или PostgreSQL.
type CatalogConfig struct {
	Path string `yaml:"path"` // CSV с колонками hex, coco, mard, available
	DSN  string `yaml:"dsn"`  // Строка подключения PostgreSQL, поддерживает ${VAR}
}

// MatchingConfig задаёт параметры подбора.
type MatchingConfig struct {
	K             int           `yaml:"k"`
	AvailableOnly bool          `yaml:"available_only"`
	Workers       int           `yaml:"workers"`   // 0 — по числу CPU
	CacheTTL      time.Duration `yaml:"cache_ttl"` // 0 — без устаревания
}

// MosaicConfig задаёт параметры построения схемы.
type MosaicConfig struct {
	GridWidth    int     `yaml:"grid_width"`
	GridHeight   int     `yaml:"grid_height"`
	CellSize     int     `yaml:"cell_size"`
	MedianKernel int     `yaml:"median_kernel"`
	Labels       *bool   `yaml:"labels"`
	Outline      *bool   `yaml:"outline"`
	BeadPitchMM  float64 `yaml:"bead_pitch_mm"`

	MaxRenderPixels int64 `yaml:"max_render_pixels"` // предел размера отрисованной схемы
	MaxSourcePixels int64 `yaml:"max_source_pixels"` // предел размера загружаемой картинки
}

// ServerConfig настраивает HTTP-сервер.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
	MaxUpload int64  `yaml:"max_upload"` // байт
}

// LogConfig настраивает логирование.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// DefaultGridWidth задаёт ширину схемы в бусинах, если сетка не указана.
const DefaultGridWidth = 100

// Default возвращает конфигурацию со значениями по умолчанию.
func Default() *AppConfig {
	cfg := &AppConfig{}
	cfg.applyDefaults()
	return cfg
}

// Load читает YAML файл, подставляет ENV переменные и возвращает готовую структуру.
func Load(path string) (*AppConfig, error) {
	// 1. Читаем файл целиком
	rawBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// 2. Подставляем переменные окружения
	contentWithEnv := os.ExpandEnv(string(rawBytes))

	// 3. Парсим YAML в структуру
	var cfg AppConfig
	if err := yaml.Unmarshal([]byte(contentWithEnv), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	// 4. Заполняем пропуски и валидируем
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// LoadOptional работает как Load, но при отсутствии файла возвращает значения по умолчанию.
func LoadOptional(path string) (*AppConfig, error) {
	if path == "" {
		return Default(), nil
	}
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

func (c *AppConfig) applyDefaults() {
	if c.Catalog.Path == "" && c.Catalog.DSN == "" {
		c.Catalog.Path = "colors.csv"
	}
	if c.Matching.K == 0 {
		c.Matching.K = 5
	}
	if c.Mosaic.GridWidth == 0 && c.Mosaic.GridHeight == 0 {
		c.Mosaic.GridWidth = DefaultGridWidth
	}
	if c.Mosaic.MaxRenderPixels == 0 {
		c.Mosaic.MaxRenderPixels = 16 << 20
	}
	if c.Mosaic.MaxSourcePixels == 0 {
		c.Mosaic.MaxSourcePixels = 32 << 20
	}
	if c.Mosaic.CellSize == 0 {
		c.Mosaic.CellSize = 20
	}
	if c.Mosaic.Labels == nil {
		c.Mosaic.Labels = boolPtr(true)
	}
	if c.Mosaic.Outline == nil {
		c.Mosaic.Outline = boolPtr(true)
	}
	if c.Mosaic.BeadPitchMM == 0 {
		c.Mosaic.BeadPitchMM = 5.0
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.StaticDir == "" {
		c.Server.StaticDir = "static"
	}
	if c.Server.MaxUpload == 0 {
		c.Server.MaxUpload = 20 << 20
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate проверяет значения, которые нельзя исправить молча.
func (c *AppConfig) Validate() error {
	if c.Matching.K < 0 {
		return fmt.Errorf("matching.k must be positive, got %d", c.Matching.K)
	}
	if c.Matching.Workers < 0 {
		return fmt.Errorf("matching.workers must not be negative")
	}
	if c.Mosaic.GridWidth < 0 || c.Mosaic.GridHeight < 0 {
		return fmt.Errorf("mosaic grid must not be negative")
	}
	if c.Mosaic.MaxRenderPixels < 0 || c.Mosaic.MaxSourcePixels < 0 {
		return fmt.Errorf("mosaic pixel limits must not be negative")
	}
	if c.Mosaic.CellSize < 0 {
		return fmt.Errorf("mosaic.cell_size must not be negative")
	}
	if c.Mosaic.MedianKernel > 1 && c.Mosaic.MedianKernel%2 == 0 {
		return fmt.Errorf("mosaic.median_kernel must be odd, got %d", c.Mosaic.MedianKernel)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

func boolPtr(b bool) *bool { return &b }

package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"beadify/internal/app"
	"beadify/internal/catalog"
	"beadify/internal/config"
	"beadify/internal/logging"
	"beadify/internal/matcher"
)

// cliContext хранит общее состояние команд: конфигурация, логгер и каталог.
type cliContext struct {
	configPath string
	flags      rootFlags

	cfg    *config.AppConfig
	logger *slog.Logger
	repo   *catalog.Repository
}

type rootFlags struct {
	catalogPath   string
	dsn           string
	k             int
	availableOnly bool
	logLevel      string
}

// RootCommand создаёт корневую команду со всеми подкомандами.
func RootCommand() *cobra.Command {
	ctx := &cliContext{}

	rootCmd := &cobra.Command{
		Use:           "beadify",
		Short:         "Match colors and images against a bead catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&ctx.configPath, "config", "config.yaml", "path to config file")
	pf.StringVar(&ctx.flags.catalogPath, "catalog", "", "catalog CSV file (overrides config)")
	pf.StringVar(&ctx.flags.dsn, "dsn", "", "PostgreSQL DSN to load the catalog from (overrides config)")
	pf.IntVarP(&ctx.flags.k, "k", "k", matcher.DefaultK, "number of matches per color")
	pf.BoolVar(&ctx.flags.availableOnly, "available-only", false, "only match beads that are in stock")
	pf.StringVar(&ctx.flags.logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return ctx.initialize(cmd)
	}

	rootCmd.AddCommand(
		matchCommand(ctx),
		mosaicCommand(ctx),
		serveCommand(ctx),
	)
	return rootCmd
}

// initialize читает конфиг, применяет флаги поверх него и загружает каталог.
func (c *cliContext) initialize(cmd *cobra.Command) error {
	// 1. Конфигурация
	cfg, err := config.LoadOptional(c.configPath)
	if err != nil {
		return err
	}

	// 2. Флаги командной строки важнее конфига
	flags := cmd.Flags()
	if flags.Changed("catalog") {
		cfg.Catalog.Path = c.flags.catalogPath
		cfg.Catalog.DSN = ""
	}
	if flags.Changed("dsn") {
		cfg.Catalog.DSN = c.flags.dsn
	}
	if flags.Changed("k") {
		cfg.Matching.K = c.flags.k
	}
	if flags.Changed("available-only") {
		cfg.Matching.AvailableOnly = c.flags.availableOnly
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = c.flags.logLevel
	}
	if cfg.Matching.K <= 0 {
		return fmt.Errorf("k must be positive, got %d", cfg.Matching.K)
	}
	c.cfg = cfg

	// 3. Логгер
	logger, err := logging.Setup(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	c.logger = logger

	// 4. Каталог; без него ни одна команда не работает
	repo, err := app.LoadCatalog(cmd.Context(), cfg.Catalog, logger)
	if err != nil {
		return err
	}
	c.repo = repo
	return nil
}

func (c *cliContext) matchOptions() matcher.Options {
	return app.MatchOptions(c.cfg.Matching)
}

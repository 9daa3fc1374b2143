package main

import (
	"fmt"
	"os"
	"path/filepath"

	"data-admin/pkg/config"
	"data-admin/pkg/handlers"
	"data-admin/pkg/logging"
	"data-admin/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/go-logr/logr"
	"github.com/mandelsoft/vfs/pkg/osfs"
	"github.com/mandelsoft/vfs/pkg/projectionfs"
	"github.com/spf13/cobra"
)

func main() {
	cfg := config.Load()
	if err := newRootCmd(&cfg).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "data-admin",
		Short:         "Serve a REST API for the data files of a static site",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(*cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.SiteRoot, "site-root", cfg.SiteRoot, "root directory of the site project")
	flags.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "data directory relative to the site root (default: data_dir from _config.yml, else _data)")
	flags.StringVar(&cfg.AppURL, "app-url", cfg.AppURL, "externally visible base URL used for api_url")
	flags.StringVar(&cfg.ListenAddr, "addr", cfg.ListenAddr, "address to listen on")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: error, info or debug")
	flags.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: text or json")
	return cmd
}

func run(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}

	r, err := newEngine(cfg, log)
	if err != nil {
		return err
	}

	log.Info("listening", "addr", cfg.ListenAddr, "site", cfg.SiteRoot)
	return r.Run(cfg.ListenAddr)
}

func newEngine(cfg config.Config, log logr.Logger) (*gin.Engine, error) {
	root, err := filepath.Abs(cfg.SiteRoot)
	if err != nil {
		return nil, fmt.Errorf("resolving site root: %w", err)
	}
	siteFS, err := projectionfs.New(osfs.New(), root)
	if err != nil {
		return nil, fmt.Errorf("opening site root %s: %w", root, err)
	}

	site, err := services.LoadSiteConfig(siteFS)
	if err != nil {
		return nil, fmt.Errorf("loading site config: %w", err)
	}
	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = site.DataDir
	}

	store := services.NewDataStore(siteFS, dataDir, cfg.AppURL, log.WithName("store"))
	log.Info("serving data files", "dir", store.DataDir())

	api := handlers.NewAPI(store, site, log.WithName("api"))
	return handlers.NewRouter(api, log.WithName("http")), nil
}

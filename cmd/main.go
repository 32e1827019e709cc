package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/undertone/internal/repositories"
	"github.com/desertthunder/undertone/internal/services"
	"github.com/desertthunder/undertone/internal/shared"
	"github.com/urfave/cli/v3"
)

const (
	configPath = "config.toml"
	envPath    = ".env"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	loadedConfig, err := shared.LoadConfig(configPath)
	switch {
	case err == nil:
		config = loadedConfig
	case !errors.Is(err, shared.ErrMissingConfig):
		logger.Warn("failed to load config, using defaults", "error", err)
	}
	if err := shared.ApplyEnv(config, envPath); err != nil {
		logger.Warn("ignoring environment overrides", "error", err)
	}
	shared.SetLogLevel(logger, shared.ParseLogLevel(config.Log.Level))

	jar, persistent := cookieJar(config, logger)
	httpClient := services.NewHTTPClient(jar, time.Duration(config.API.TimeoutSeconds)*time.Second)

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		HTTPClient: httpClient,
		Jar:        persistent,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "undertone",
		Usage:    "Rate, discover and save music from the Undertone catalog",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}

// cookieJar opens the SQLite-backed jar so the backend session survives between
// invocations. It falls back to an in-memory jar when persistence is off or unavailable.
func cookieJar(config *shared.Config, logger *log.Logger) (http.CookieJar, *repositories.PersistentJar) {
	memory, _ := cookiejar.New(nil)
	if !config.Session.PersistCookies {
		return memory, nil
	}

	origin, err := url.Parse(config.API.BaseURL)
	if err != nil {
		logger.Warn("invalid base url, cookies will not persist", "error", err)
		return memory, nil
	}

	db, err := shared.OpenDatabase(config.Database)
	if err != nil {
		logger.Warn("failed to open database, cookies will not persist", "error", err)
		return memory, nil
	}

	jar, err := repositories.NewPersistentJar(repositories.NewCookieRepository(db), logger, origin)
	if err != nil {
		logger.Warn("failed to load stored cookies", "error", err)
		db.Close()
		return memory, nil
	}
	return jar, jar
}

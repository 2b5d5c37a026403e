// Burger builder E2E runner.
//
// Runs every burger builder scenario in headless Chrome against a running
// application, with the backend replaced by route mocks, and prints a
// per-scenario report. Exits non-zero when any scenario fails.
//
// Usage:
//
//	go run ./cmd/burger-e2e -base-url http://localhost:4000
//	go run ./cmd/burger-e2e -serve                      # serve the bundled app
//	go run ./cmd/burger-e2e -config suite.yaml -run 'Order Processing'
//	go run ./cmd/burger-e2e -serve -count 50          # flake hunt
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thesyncim/burger-e2e/cmd/burger-app/server"
	"github.com/thesyncim/burger-e2e/internal/logging"
	"github.com/thesyncim/burger-e2e/pkg/browser"
	"github.com/thesyncim/burger-e2e/pkg/burger"
	"github.com/thesyncim/burger-e2e/pkg/fixture"
	"github.com/thesyncim/burger-e2e/pkg/scenario"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (defaults apply when empty)")
	baseURL := flag.String("base-url", "", "Application origin, overrides base_url")
	apiBase := flag.String("api-base", "", "API base the application calls, overrides api_base")
	run := flag.String("run", "", "Only run scenarios whose full name matches this regexp")
	headless := flag.Bool("headless", true, "Run Chrome headless, overrides headless")
	bin := flag.String("bin", "", "Chrome binary, overrides browser_bin")
	controlURL := flag.String("control-url", "", "DevTools URL of a running Chrome, overrides control_url")
	fixturesDir := flag.String("fixtures", "", "Directory overriding the embedded fixtures, overrides fixtures_dir")
	serve := flag.Bool("serve", false, "Serve the bundled burger app on a random port and test it")
	count := flag.Int("count", 1, "Run the suite this many times, stopping on interrupt")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	cfg := scenario.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = scenario.LoadConfig(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "burger-e2e: %v\n", err)
			os.Exit(2)
		}
	}

	// Flags override the file only when given explicitly.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "base-url":
			cfg.BaseURL = *baseURL
		case "api-base":
			cfg.APIBase = *apiBase
		case "run":
			cfg.Run = *run
		case "headless":
			cfg.Headless = *headless
		case "bin":
			cfg.BrowserBin = *bin
		case "control-url":
			cfg.ControlURL = *controlURL
		case "fixtures":
			cfg.FixturesDir = *fixturesDir
		}
	})

	logger, closeLog, err := logging.New(os.Stderr, *logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "burger-e2e: %v\n", err)
		os.Exit(2)
	}

	if *count < 1 {
		fmt.Fprintf(os.Stderr, "burger-e2e: -count must be at least 1, got %d\n", *count)
		os.Exit(2)
	}

	code := runSuite(cfg, *serve, *count, logger)
	closeLog()
	os.Exit(code)
}

func runSuite(cfg scenario.Config, serve bool, count int, logger *slog.Logger) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fixtures := fixture.Embedded()
	if cfg.FixturesDir != "" {
		fixtures = fixture.Dir(cfg.FixturesDir)
	}

	if serve {
		srvCfg := server.DefaultConfig()
		srvCfg.APIBase = cfg.APIBase
		srvCfg.Logger = logger.With("component", "burger-app")
		srv, err := server.NewServer(srvCfg)
		if err != nil {
			logger.Error("failed to create app server", "error", err)
			return 1
		}
		if _, err := srv.Start(); err != nil {
			logger.Error("failed to start app server", "error", err)
			return 1
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
		cfg.BaseURL = srv.URL()
	}

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		return 2
	}

	suite, err := burger.NewSuite(cfg.APIBase, fixtures)
	if err != nil {
		logger.Error("failed to build suite", "error", err)
		return 1
	}

	client, err := browser.New(browser.Config{
		Headless:   cfg.Headless,
		Bin:        cfg.BrowserBin,
		ControlURL: cfg.ControlURL,
	})
	if err != nil {
		logger.Error("failed to start browser", "error", err)
		return 1
	}
	defer client.Close()

	opts := append(cfg.Options(), scenario.WithFixtures(fixtures), scenario.WithLogger(logger))
	runner, err := scenario.NewRunner(client, opts...)
	if err != nil {
		logger.Error("failed to create runner", "error", err)
		return 1
	}

	logger.Info("running suite", "suite", suite.Name, "base_url", cfg.BaseURL, "api_base", cfg.APIBase, "count", count)

	failedRuns := 0
	for i := 1; i <= count; i++ {
		if ctx.Err() != nil {
			logger.Warn("interrupted", "completed_runs", i-1)
			break
		}
		report := runner.Run(ctx, suite)
		report.Print(os.Stdout)
		if !report.Passed() {
			failedRuns++
		}
		if count > 1 {
			logger.Info("run finished", "run", i, "of", count, "passed", report.Passed(), "failed_runs", failedRuns)
		}
	}

	if failedRuns > 0 {
		return 1
	}
	return 0
}

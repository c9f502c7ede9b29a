package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dd0wney/cluso-patchbay/pkg/config"
	"github.com/dd0wney/cluso-patchbay/pkg/console"
	"github.com/dd0wney/cluso-patchbay/pkg/engine"
	"github.com/dd0wney/cluso-patchbay/pkg/logging"
)

func main() {
	configPath := flag.String("config", "", "YAML config file")
	envFile := flag.String("env", ".env", "dotenv file with PATCHBAY_* overrides")
	flag.Parse()

	cfg, err := config.Load(*configPath, *envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewJSONLogger(os.Stderr, cfg.Level())
	logging.SetDefaultLogger(logger)

	app, err := console.NewApp(cfg, logger, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to start engine: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("shutdown", logging.Error(err))
		}
	}()

	if cfg.MetricsAddr != "" {
		srv := serveMetrics(app, logger)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}

	printBanner()
	fmt.Printf("Validation mode: %s\n", app.Engine.Validator().Mode())
	fmt.Println("Type 'help' for available commands, 'exit' to quit")
	fmt.Println()

	run(app, bufio.NewScanner(os.Stdin))
}

func serveMetrics(app *console.App, logger logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", app.Metrics.Handler())
	app.Health.Mount(mux)
	srv := &http.Server{
		Addr:              app.Config.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", logging.Error(err))
		}
	}()
	logger.Info("serving metrics and health probes", logging.String("addr", app.Config.MetricsAddr))
	return srv
}

func printBanner() {
	fmt.Println(`
╔═══════════════════════════════════════╗
║                                       ║
║        Patchbay audio graph REPL      ║
║                                       ║
╚═══════════════════════════════════════╝`)
}

func run(app *console.App, scanner *bufio.Scanner) {
	for {
		fmt.Print("patchbay> ")

		if !scanner.Scan() {
			fmt.Println()
			return
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "clear" {
			fmt.Print("\033[H\033[2J")
			continue
		}

		err := app.Execute(input)
		if errors.Is(err, console.ErrQuit) {
			fmt.Println("👋 Goodbye!")
			return
		}
		if err != nil {
			fmt.Printf("❌ %v\n", err)
			if engine.IsUnknownNode(err) {
				fmt.Println("   (type 'nodes' to list node ids)")
			}
		}
		fmt.Println()
	}
}

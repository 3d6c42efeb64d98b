package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/kayz/dobby/internal/config"
	"github.com/kayz/dobby/internal/logger"
)

var (
	logLevel    string
	configPath  string
	metricsAddr string

	cfg        *config.Config
	logCloser  io.Closer
	metricsSrv *http.Server
)

var rootCmd = &cobra.Command{
	Use:   "dobby",
	Short: "Dobby research assistant",
	Long: `Dobby is a terminal assistant that routes each message to the right
capability: multi-query web research, follow-up answers, page summaries,
code generation, address analysis and memory recall.

Modes:
  dobby            Interactive chat (default)
  dobby route      Show the routing decision for one message
  dobby research   Run the web research pipeline once
  dobby read       Summarize a web page
  dobby mcp        Serve the tools over MCP (stdio)`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage:       true,
	RunE:               runChat,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "",
		"Log level: trace, debug, info, warn, error, fatal, panic (default from config)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Config file (default <exe dir>/.dobby.yaml)")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "",
		"Serve Prometheus metrics on this address, e.g. :9090")
}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	if configPath != "" {
		cfg, err = config.LoadFromPath(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cfg.Logging.Format != "" {
		logger.SetFormat(cfg.Logging.Format)
	}
	if cfg.Logging.File != "" {
		if logCloser, err = logger.OpenFile(cfg.Logging.File); err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
	}

	levelName := cfg.Logging.Level
	if logLevel != "" {
		levelName = logLevel
	}
	if levelName != "" {
		level, err := logger.ParseLevel(levelName)
		if err != nil {
			return err
		}
		logger.SetLevel(level)
	}

	addr := cfg.Metrics.Addr
	if metricsAddr != "" {
		addr = metricsAddr
	}
	if addr != "" {
		startMetrics(addr)
	}
	return nil
}

func startMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsSrv = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("[Metrics] Serving on %s/metrics", addr)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("[Metrics] Server error: %v", err)
		}
	}()
}

func teardown(cmd *cobra.Command, args []string) error {
	if metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(ctx)
	}
	if logCloser != nil {
		return logCloser.Close()
	}
	return nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

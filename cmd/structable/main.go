package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/structable/structable/internal/batch"
	"github.com/structable/structable/internal/config"
	"github.com/structable/structable/internal/export"
	"github.com/structable/structable/internal/geometry"
	"github.com/structable/structable/internal/logger"
	"github.com/structable/structable/internal/mcp"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// batchConfig maps the flag-level thresholds onto the extraction pipeline.
func batchConfig(cfg *config.Config) batch.Config {
	bc := batch.DefaultConfig()

	bc.Lattice.Reconciler.Tolerance = cfg.Tolerance
	bc.Lattice.Reconciler.MinLength = cfg.MinLineLength
	bc.Lattice.Tolerance = cfg.Tolerance

	bc.Stream.RowGapFactor = cfg.RowGapFactor
	bc.Stream.ColGapFactor = cfg.ColGapFactor
	bc.Stream.Tolerance = cfg.Tolerance

	return bc
}

// runCLI performs a one-shot extraction and writes the result to the
// configured output.
func runCLI(ctx context.Context, cfg *config.Config) error {
	log := logger.L()

	feed, err := geometry.OpenFeed(cfg.Input)
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	defer func() {
		if c, ok := feed.(io.Closer); ok {
			_ = c.Close()
		}
	}()

	dispatcher := batch.NewDispatcher(feed, batchConfig(cfg), log)
	resp, err := dispatcher.Run(ctx, batch.Request{
		Pages:    batch.PageSelector{Expression: cfg.Pages},
		Method:   batch.Method(cfg.Method),
		Parallel: cfg.Parallel,
		Fallback: cfg.Fallback,
		Workers:  cfg.Workers,
	})
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	for _, status := range resp.Statuses {
		switch status.Status {
		case batch.StatusInsufficientStructure:
			log.Warn("no table structure found", "page", status.Page)
		case batch.StatusError:
			log.Error("page failed", "page", status.Page, "detail", status.Detail)
		}
	}
	log.Info("extraction complete", "tables", len(resp.Tables), "pages", len(resp.Statuses))

	out := os.Stdout
	if cfg.Output != "" {
		f, err := os.Create(cfg.Output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	switch cfg.Format {
	case "csv":
		return export.WriteCSV(out, resp.Tables)
	default:
		return export.WriteJSON(out, resp.Tables)
	}
}

// runStdioMode serves extraction over MCP until the parent closes stdin.
func runStdioMode(ctx context.Context, cfg *config.Config) error {
	server, err := mcp.NewServer(cfg, logger.L())
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.Run(ctx)
	}()

	select {
	case <-signalCh:
		cancel()
		return <-serverErrCh
	case err := <-serverErrCh:
		return err
	}
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Logs go to stderr so stdio-mode MCP framing and CLI stdout output
	// stay clean.
	logger.Init(cfg.LogLevel)
	log := logger.L()

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}

	if cfg.IsDebug() {
		log.Debug("starting", "config", cfg.String())
	}

	ctx := context.Background()

	if cfg.IsStdioMode() {
		err = runStdioMode(ctx, cfg)
	} else {
		err = runCLI(ctx, cfg)
	}
	if err != nil {
		log.Error("fatal", "error", err)
		os.Exit(1)
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("structable - table structure recovery\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}

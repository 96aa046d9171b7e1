package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gatherworks/gather/internal/config"
	"github.com/gatherworks/gather/internal/mcptools"
	"github.com/gatherworks/gather/internal/pipeline"
)

// CLI flags parsed from command line.
type cliFlags struct {
	Root      string
	Task      string
	Budget    int
	IndexPath string
	ConfigDir string
	Export    string
	Verbose   bool
	ServeMCP  bool
	Version   bool
}

// version is set by goreleaser at build time.
var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var flags cliFlags

	fs := flag.NewFlagSet("gather", flag.ContinueOnError)
	fs.StringVar(&flags.Root, "root", ".", "path to the project to scan")
	fs.StringVar(&flags.Task, "task", "", "task description used for ranking and semantic search")
	fs.IntVar(&flags.Budget, "budget", 0, "total token budget, overrides gather.yml")
	fs.StringVar(&flags.IndexPath, "index", "", "semantic index file to load or create")
	fs.StringVar(&flags.ConfigDir, "config", "", "directory containing gather.yml (defaults to root)")
	fs.StringVar(&flags.Export, "export", "", "print the import graph instead of context: mermaid or json")
	fs.BoolVar(&flags.Verbose, "verbose", false, "enable debug logging")
	fs.BoolVar(&flags.ServeMCP, "serve-mcp", false, "run as an MCP server on stdio")
	fs.BoolVar(&flags.Version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if flags.Version {
		fmt.Println(version)
		return nil
	}

	configDir := flags.ConfigDir
	if configDir == "" {
		configDir = flags.Root
	}
	cfg, err := config.Load(configDir)
	if err != nil {
		return err
	}

	logger := newLogger(flags.Verbose || cfg.Verbose)
	p, err := pipeline.New(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if flags.ServeMCP {
		server := mcptools.NewServer(mcptools.NewContextService(p))
		return mcptools.RunStdio(ctx, server)
	}

	if flags.Export != "" {
		out, err := p.ExportGraph(ctx, flags.Root, flags.Export)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	}

	if flags.Task == "" {
		return fmt.Errorf("-task is required (or use -serve-mcp)")
	}

	indexPath := flags.IndexPath
	if indexPath == "" {
		indexPath = cfg.IndexPath
	}

	result, err := p.Build(ctx, pipeline.Options{
		Root:      flags.Root,
		Task:      flags.Task,
		Budget:    flags.Budget,
		IndexPath: indexPath,
	})
	if err != nil {
		return err
	}

	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	fmt.Println(result.Context)
	return nil
}

// newLogger writes structured logs to stderr so stdout stays clean for
// the assembled context.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if !verbose {
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

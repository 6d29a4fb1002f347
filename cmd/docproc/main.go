// Package main is the docproc CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/lecturebuddies/docproc/internal/cli"
	"github.com/lecturebuddies/docproc/internal/config"
	"github.com/lecturebuddies/docproc/internal/extract"
	"github.com/lecturebuddies/docproc/internal/ocr"
	"github.com/lecturebuddies/docproc/internal/server"
	"github.com/lecturebuddies/docproc/internal/session"
	"github.com/lecturebuddies/docproc/internal/summary"
	"github.com/lecturebuddies/docproc/internal/watcher"
	"github.com/lecturebuddies/docproc/pkg/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/docproc/config.yaml"

// loadConfig loads config from path. When path is the default, config.yaml in the
// current directory wins if present, and a missing default file means built-in
// defaults. Returns the config and the path that was actually loaded, or "" when
// running on defaults.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			return config.Default(), "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	if err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load .env: %v\n", err)
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "extract":
		runExtract()
	case "summarize":
		runSummarize()
	case "formats":
		for _, ext := range extract.SupportedExtensions() {
			fmt.Println(ext)
		}
	case "version", "--version", "-v":
		fmt.Printf("docproc version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// newOCREngine builds the configured OCR engine. The in-process engine needs the
// gosseract build tag; without it the command engine is used.
func newOCREngine(cfg config.OCRConfig, logger *zap.Logger) ocr.Engine {
	if cfg.Engine == config.EngineGosseract {
		engine, err := ocr.NewGosseractEngine(cfg.Language)
		if err == nil {
			return engine
		}
		logger.Warn("gosseract engine unavailable, falling back to tesseract command", zap.Error(err))
	}
	command := ocr.ResolveCommand(cfg.Command)
	logger.Debug("using tesseract command", zap.String("command", command), zap.String("language", cfg.Language))
	return ocr.NewCommandEngine(command, ocr.WithLanguage(cfg.Language), ocr.WithLogger(logger))
}

func newExtractor(cfg *config.Config, logger *zap.Logger) *extract.Extractor {
	return extract.NewExtractor(
		newOCREngine(cfg.OCR, logger),
		extract.WithLogger(logger),
		extract.WithOCRTimeout(cfg.OCR.Timeout),
		extract.WithUploadDir(cfg.Upload.Dir),
	)
}

// setup loads config and creates the logger shared by every subcommand.
func setup(configPath string, debugFlag bool) (*config.Config, string, *zap.Logger) {
	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug || debugFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	return cfg, resolved, logger
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (file events, per-document extraction)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, logger := setup(*configPath, *debug)
	defer logger.Sync()
	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", cfg.Debug || *debug),
	)

	store := session.NewStore(cfg.Session.Capacity, cfg.Session.TTL, session.WithStoreLogger(logger))
	inbox := session.NewInbox(newExtractor(cfg, logger), store,
		session.WithInboxLogger(logger),
		session.WithSummaryLength(cfg.Summary.MaxLength),
	)

	watchSvc := watcher.New(cfg.Watch.Directories, cfg.Watch.RecursiveOrDefault(), inbox, watcher.WithLogger(logger))
	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if err := watchSvc.Start(watchCtx); err != nil {
		logger.Fatal("Failed to start watcher", zap.Error(err))
	}
	go watchSvc.SyncExistingFiles()

	srv := server.NewServer(inbox, cfg, logger, watchSvc, resolvedConfigPath)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// argsReorder moves flags (and their values) ahead of the file arguments so
// fs.Parse sees them; Go's flag package stops at the first non-flag argument.
// Files keep their relative order. Everything after "--" is a file; the "--"
// is kept so fs.Parse stops there.
func argsReorder(fs *flag.FlagSet, args []string) []string {
	flags := make([]string, 0, len(args))
	files := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			flags = append(flags, a)
			files = append(files, args[i+1:]...)
			break
		}
		if len(a) < 2 || a[0] != '-' {
			files = append(files, a)
			continue
		}
		flags = append(flags, a)
		if takesValue(fs, a) && i+1 < len(args) {
			i++
			flags = append(flags, args[i])
		}
	}
	return append(flags, files...)
}

// takesValue reports whether arg names a non-boolean flag of fs given without
// an inline "=value".
func takesValue(fs *flag.FlagSet, arg string) bool {
	name := strings.TrimLeft(arg, "-")
	if strings.Contains(name, "=") {
		return false
	}
	f := fs.Lookup(name)
	if f == nil {
		return false
	}
	if bf, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && bf.IsBoolFlag() {
		return false
	}
	return true
}

type fileExtractor interface {
	Extract(ctx context.Context, path string) extract.Result
}

// extractAll extracts paths with at most concurrency extractions in flight and
// returns the results in input order.
func extractAll(ctx context.Context, ex fileExtractor, paths []string, concurrency int) []cli.FileResult {
	if concurrency <= 0 {
		concurrency = 1
	}
	results := make([]cli.FileResult, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			results[i] = cli.FileResult{Path: path, Result: ex.Extract(ctx, path)}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func runExtract() {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	output := fs.String("output", "text", "output format: text or json")
	concurrency := fs.Int("concurrency", runtime.NumCPU(), "files extracted in parallel")
	preview := fs.Int("preview", 0, "truncate text output to this many characters (0 = full)")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(argsReorder(fs, os.Args[2:]))

	if fs.NArg() < 1 {
		fmt.Println("Usage: docproc extract [flags] <file>...")
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	cfg, _, logger := setup(*configPath, *debug)
	defer logger.Sync()

	results := extractAll(context.Background(), newExtractor(cfg, logger), fs.Args(), *concurrency)
	if err := cli.WriteResults(os.Stdout, results, format, *preview); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
	if cli.AnyFailed(results) {
		os.Exit(1)
	}
}

func runSummarize() {
	fs := flag.NewFlagSet("summarize", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	maxLength := fs.Int("max-length", 0, "summary length bound in characters (default from config, 500)")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(argsReorder(fs, os.Args[2:]))

	if fs.NArg() != 1 {
		fmt.Println("Usage: docproc summarize [flags] <file>")
		os.Exit(1)
	}
	cfg, _, logger := setup(*configPath, *debug)
	defer logger.Sync()

	res := newExtractor(cfg, logger).Extract(context.Background(), fs.Arg(0))
	if !res.HasText() {
		fmt.Fprintln(os.Stderr, res.String())
		os.Exit(1)
	}
	bound := *maxLength
	if bound <= 0 {
		bound = cfg.Summary.MaxLength
	}
	fmt.Println(summary.Summarize(res.Text, bound))
}

func printUsage() {
	fmt.Println(`docproc - Extract normalized text from study material

Usage:
  docproc server [flags]                Start the HTTP server and inbox watcher
  docproc extract [flags] <file>...     Extract text from files
  docproc summarize [flags] <file>      Print a sentence-bounded summary of a file
  docproc formats                       List supported file extensions
  docproc version                       Show version
  docproc help                          Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/docproc/config.yaml)
  --debug            Enable debug logging

Extract Flags:
  --config string     Config file path
  --output string     Output format: text or json (default: text)
  --concurrency int   Files extracted in parallel (default: number of CPUs)
  --preview int       Truncate text output to this many characters (default: full text)

Summarize Flags:
  --config string     Config file path
  --max-length int    Summary bound in characters (default from config, 500)

Environment:
  TESSERACT_CMD       Path to the tesseract binary (also read from .env)

Examples:
  docproc server
  docproc extract lecture.pdf notes.docx whiteboard.png
  docproc extract --output json *.pdf
  docproc summarize --max-length 300 chapter1.docx`)
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	freeplans "github.com/claude/freeplans"
	"github.com/claude/freeplans/internal/config"
	"github.com/claude/freeplans/internal/docpipe"
	"github.com/claude/freeplans/internal/importer"
	"github.com/claude/freeplans/internal/ingest/program"
	"github.com/claude/freeplans/internal/storage"
	"github.com/claude/freeplans/internal/vocab"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	docsPath := flag.String("path", "", "directory of program documents (required)")
	dryRun := flag.Bool("dry-run", false, "parse and report without storing anything")
	serverURL := flag.String("server", "", "import into a remote FreePlans server instead of the local database")
	apiKey := flag.String("api-key", os.Getenv("FREEPLANS_AUTH_API_KEY"), "API key for -server")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("freeplans-import", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *docsPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: freeplans-import -path /path/to/programs [-config config.yaml | -server URL -api-key KEY] [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	info, err := os.Stat(*docsPath)
	if err != nil || !info.IsDir() {
		log.Error("path does not exist or is not a directory", "path", *docsPath)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Parser settings come from the config file when there is one. A remote
	// import without a config parses dry runs with the defaults.
	opts := program.DefaultOptions()
	docsCfg := docpipe.Config{Logger: log}
	var cfg *config.Config
	if *serverURL == "" || fileExists(*configPath) {
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		opts = cfg.Parser
		docsCfg = cfg.Documents.Pipeline(log)
	}

	v := vocab.Default()
	engine := program.New(opts, v, vocab.NewFuzzyCanonicalizer(v))
	parser := program.NewProvider(nil, engine, docpipe.New(docsCfg), log)

	var ingester importer.Ingester
	switch {
	case *dryRun:
		log.Info("DRY RUN mode: documents are parsed but not stored")
	case *serverURL != "":
		if *apiKey == "" {
			fmt.Fprintf(os.Stderr, "Error: -api-key is required with -server\n")
			os.Exit(1)
		}
		ingester = importer.NewClient(*serverURL, *apiKey)
		log.Info("importing into remote server", "server", *serverURL)
	default:
		dsn := cfg.Database.DSN()
		if err := storage.RunMigrations(dsn, freeplans.Migrations()); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("migrations applied")

		db, err := storage.New(ctx, dsn)
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		log.Info("database connected")

		ingester = program.NewProvider(db, engine, docpipe.New(docsCfg), log).WithSource(program.SourceBatch)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Error("failed to get home directory", "error", err)
		os.Exit(1)
	}
	state, err := importer.OpenStateDB(filepath.Join(homeDir, ".freeplans-import"))
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	imp := importer.New(ingester, parser, state, log, *dryRun, storage.DevUserID)
	stats, err := imp.Import(ctx, *docsPath)
	printStats(log, stats)
	if err != nil {
		log.Error("import failed", "error", err)
		os.Exit(1)
	}
	log.Info("import complete")
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func printStats(log *slog.Logger, stats *importer.Stats) {
	log.Info("import stats",
		"files_total", stats.FilesTotal,
		"files_imported", stats.FilesImported,
		"files_duplicated", stats.FilesDuplicated,
		"files_skipped", stats.FilesSkipped,
		"files_unsupported", stats.FilesUnsupported,
		"files_errored", stats.FilesErrored,
		"exercises_found", stats.ExercisesFound,
	)
	if len(stats.Fallbacks) > 0 {
		log.Warn("documents that produced the fallback template", "files", stats.Fallbacks)
	}
}

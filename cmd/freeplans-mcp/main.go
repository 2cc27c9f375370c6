package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/claude/freeplans/internal/config"
	"github.com/claude/freeplans/internal/ingest/program"
	planmcp "github.com/claude/freeplans/internal/mcp"
	"github.com/claude/freeplans/internal/storage"
	"github.com/claude/freeplans/internal/vocab"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file (local database mode)")
	serverURL := flag.String("server", "", "read templates from a remote FreePlans server instead of the database")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("freeplans-mcp", Version)
		return
	}

	// stdout is the MCP transport.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	opts := program.DefaultOptions()
	var ds planmcp.DataSource

	if *serverURL != "" {
		ds = planmcp.NewHTTPClient(*serverURL)
		log.Info("using remote server", "server", *serverURL)
	} else {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		opts = cfg.Parser

		db, err := storage.New(context.Background(), cfg.Database.DSN())
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		ds = db
	}

	v := vocab.Default()
	engine := program.New(opts, v, vocab.NewFuzzyCanonicalizer(v))

	s := planmcp.New(ds, engine, Version, log)
	if err := server.ServeStdio(s); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}

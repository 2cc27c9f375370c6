// Command freeplans-parse extracts a workout template from one document and
// prints it as JSON. Nothing is stored.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/claude/freeplans/internal/config"
	"github.com/claude/freeplans/internal/docpipe"
	"github.com/claude/freeplans/internal/ingest/program"
	"github.com/claude/freeplans/internal/vocab"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "", "optional config file for parser settings")
	showText := flag.Bool("text", false, "print the extracted document text instead of the template")
	showResult := flag.Bool("result", false, "print the raw extraction result instead of the template")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("freeplans-parse", Version)
		return
	}

	// stdout carries the JSON, so logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage: freeplans-parse [-config config.yaml] [-text | -result] <document>\n")
		flag.PrintDefaults()
		os.Exit(1)
	}
	path := flag.Arg(0)

	opts := program.DefaultOptions()
	docsCfg := docpipe.Config{Logger: log}
	if *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		opts = cfg.Parser
		docsCfg = cfg.Documents.Pipeline(log)
	}

	f, err := os.Open(path)
	if err != nil {
		log.Error("failed to open document", "error", err)
		os.Exit(1)
	}
	defer f.Close()

	v := vocab.Default()
	engine := program.New(opts, v, vocab.NewFuzzyCanonicalizer(v))
	docs := docpipe.New(docsCfg)
	name := filepath.Base(path)
	ctx := context.Background()

	var out any
	if *showText || *showResult {
		doc, err := docs.Extract(ctx, name, f)
		if err != nil {
			log.Error("text extraction failed", "file", path, "error", err)
			os.Exit(1)
		}
		if *showText {
			fmt.Println(doc.Text)
			return
		}
		out = engine.Extract(doc.Text, name)
	} else {
		// Unreadable documents still produce the fallback template here.
		tpl, _, err := program.NewProvider(nil, engine, docs, log).ParseDocument(ctx, name, f)
		if err != nil {
			log.Error("parse failed", "file", path, "error", err)
			os.Exit(1)
		}
		out = tpl
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Error("encoding output", "error", err)
		os.Exit(1)
	}
}

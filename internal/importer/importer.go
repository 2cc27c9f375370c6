// Package importer walks a directory of workout program documents and
// imports each one, skipping files that were already imported unchanged.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/claude/freeplans/internal/docpipe"
	"github.com/claude/freeplans/internal/ingest"
	"github.com/claude/freeplans/internal/models"
)

// Ingester stores one document and reports what was extracted.
type Ingester interface {
	IngestDocument(ctx context.Context, name string, r io.Reader, userID int) (*ingest.Result, *models.WorkoutTemplate, error)
}

// Parser extracts a template without storing it. Used for dry runs.
type Parser interface {
	ParseDocument(ctx context.Context, name string, r io.Reader) (*models.WorkoutTemplate, *docpipe.Document, error)
}

// Stats tracks import progress.
type Stats struct {
	FilesTotal       int
	FilesImported    int
	FilesDuplicated  int
	FilesSkipped     int
	FilesUnsupported int
	FilesErrored     int

	ExercisesFound int
	Fallbacks      []string
}

// Importer reads program documents from a directory and ingests them.
type Importer struct {
	ingester Ingester
	parser   Parser
	state    *StateDB
	log      *slog.Logger
	dryRun   bool
	userID   int
	stats    Stats
}

// New creates a new Importer. state may be nil to import every file.
// In dry-run mode only parser is used and nothing is stored.
func New(ingester Ingester, parser Parser, state *StateDB, log *slog.Logger, dryRun bool, userID int) *Importer {
	return &Importer{
		ingester: ingester,
		parser:   parser,
		state:    state,
		log:      log,
		dryRun:   dryRun,
		userID:   userID,
	}
}

// Import processes all supported documents under dir.
func (imp *Importer) Import(ctx context.Context, dir string) (*Stats, error) {
	if imp.dryRun && imp.parser == nil {
		return &imp.stats, errors.New("dry run needs a parser")
	}
	if !imp.dryRun && imp.ingester == nil {
		return &imp.stats, errors.New("import needs an ingester")
	}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			imp.log.Warn("walk failed", "path", path, "error", err)
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") || !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = path
		}
		return imp.importFile(ctx, path, filepath.ToSlash(rel))
	})
	if err != nil {
		return &imp.stats, fmt.Errorf("walking %s: %w", dir, err)
	}
	return &imp.stats, nil
}

// importFile handles one file. Only context errors are returned; anything
// else is counted and logged so the walk continues.
func (imp *Importer) importFile(ctx context.Context, path, relPath string) error {
	if !Supported(relPath) {
		imp.stats.FilesUnsupported++
		imp.log.Debug("skipping unsupported file", "file", relPath)
		return nil
	}
	imp.stats.FilesTotal++

	info, err := os.Stat(path)
	if err != nil {
		imp.log.Warn("stat failed", "file", relPath, "error", err)
		imp.stats.FilesErrored++
		return nil
	}

	var hash string
	if imp.state != nil {
		hash, err = HashFile(path)
		if err != nil {
			imp.log.Warn("hash failed", "file", relPath, "error", err)
			imp.stats.FilesErrored++
			return nil
		}
		imported, err := imp.state.IsImported(relPath, info.Size(), hash)
		if err != nil {
			imp.log.Warn("state check failed", "file", relPath, "error", err)
			imp.stats.FilesErrored++
			return nil
		}
		if imported {
			imp.stats.FilesSkipped++
			return nil
		}
	}

	f, err := os.Open(path)
	if err != nil {
		imp.log.Warn("open failed", "file", relPath, "error", err)
		imp.stats.FilesErrored++
		return nil
	}
	defer f.Close()

	if imp.dryRun {
		tpl, _, err := imp.parser.ParseDocument(ctx, relPath, f)
		if err != nil {
			return imp.fileError(ctx, relPath, err)
		}
		imp.record(relPath, tpl.Method, tpl.ExerciseCount())
		imp.stats.FilesImported++
		imp.log.Info("parsed",
			"file", relPath,
			"template", tpl.Name,
			"days", len(tpl.Schedule),
			"exercises", tpl.ExerciseCount(),
			"method", tpl.Method,
			"confidence", tpl.Confidence,
			"warnings", len(tpl.Warnings),
		)
		return nil
	}

	res, _, err := imp.ingester.IngestDocument(ctx, relPath, f, imp.userID)
	if err != nil {
		return imp.fileError(ctx, relPath, err)
	}
	imp.record(relPath, res.Method, res.ExercisesFound)
	if res.Inserted {
		imp.stats.FilesImported++
	} else {
		imp.stats.FilesDuplicated++
	}

	if imp.state != nil {
		if err := imp.state.MarkImported(relPath, info.Size(), hash, res.TemplateID); err != nil {
			imp.log.Warn("state update failed", "file", relPath, "error", err)
		}
	}
	return nil
}

func (imp *Importer) record(relPath, method string, exercises int) {
	imp.stats.ExercisesFound += exercises
	if method == models.MethodFallback {
		imp.stats.Fallbacks = append(imp.stats.Fallbacks, relPath)
	}
}

func (imp *Importer) fileError(ctx context.Context, relPath string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	imp.log.Warn("import failed", "file", relPath, "error", err)
	imp.stats.FilesErrored++
	return nil
}

// Supported reports whether a file name has an extension the document
// pipeline understands. Files without an extension are not imported.
func Supported(name string) bool {
	if filepath.Ext(name) == "" {
		return false
	}
	_, err := docpipe.DetectFormat(name)
	return err == nil
}

package program

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/claude/freeplans/internal/docpipe"
	"github.com/claude/freeplans/internal/ingest"
	"github.com/claude/freeplans/internal/models"
	"github.com/claude/freeplans/internal/storage"
)

// Import log statuses.
const (
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusError   = "error"
)

// Import sources recorded on import logs.
const (
	SourceAPI   = "api"
	SourceBatch = "batch"
)

// Store persists templates and import logs. *storage.DB implements it.
type Store interface {
	InsertTemplate(ctx context.Context, userID int, tpl *models.WorkoutTemplate) (bool, error)
	InsertImportLog(ctx context.Context, log storage.ImportLog) (int64, error)
	UpdateImportLog(ctx context.Context, id int64, log storage.ImportLog) error
}

// TextExtractor turns a document into text. *docpipe.Pipeline implements it.
type TextExtractor interface {
	Extract(ctx context.Context, name string, r io.Reader) (*docpipe.Document, error)
}

// Provider imports workout program documents.
type Provider struct {
	store  Store
	engine *Engine
	docs   TextExtractor
	log    *slog.Logger
	source string
}

// NewProvider creates a new program ingest provider. store may be nil for
// parse-only use.
func NewProvider(store Store, engine *Engine, docs TextExtractor, log *slog.Logger) *Provider {
	return &Provider{store: store, engine: engine, docs: docs, log: log, source: SourceAPI}
}

// WithSource returns a copy of p that records source on its import logs.
func (p *Provider) WithSource(source string) *Provider {
	cp := *p
	cp.source = source
	return &cp
}

// Engine returns the parser used by the provider.
func (p *Provider) Engine() *Engine {
	return p.engine
}

// ParseDocument extracts the text of a document and parses it without
// storing anything. A document whose text cannot be read yields the
// fallback program; only context cancellation is returned as an error.
func (p *Provider) ParseDocument(ctx context.Context, name string, r io.Reader) (*models.WorkoutTemplate, *docpipe.Document, error) {
	doc, err := p.docs.Extract(ctx, name, r)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nil, ctxErr
		}
		p.log.Warn("document extraction failed, using fallback", "document", name, "error", err)
		res := p.engine.ExtractFailed(name, err)
		return p.engine.Assemble(res, "", name), nil, nil
	}
	return p.engine.Parse(doc.Text, name), doc, nil
}

// IngestDocument parses a document and stores the resulting template.
func (p *Provider) IngestDocument(ctx context.Context, name string, r io.Reader, userID int) (*ingest.Result, *models.WorkoutTemplate, error) {
	return p.ingest(ctx, name, userID, func() (*models.WorkoutTemplate, *docpipe.Document, error) {
		return p.ParseDocument(ctx, name, r)
	})
}

// IngestText parses already extracted text and stores the resulting template.
func (p *Provider) IngestText(ctx context.Context, title, text string, userID int) (*ingest.Result, *models.WorkoutTemplate, error) {
	return p.ingest(ctx, title, userID, func() (*models.WorkoutTemplate, *docpipe.Document, error) {
		return p.engine.Parse(text, title), nil, nil
	})
}

func (p *Provider) ingest(ctx context.Context, name string, userID int,
	parse func() (*models.WorkoutTemplate, *docpipe.Document, error)) (*ingest.Result, *models.WorkoutTemplate, error) {
	if p.store == nil {
		return nil, nil, errors.New("provider has no store")
	}
	start := time.Now()

	logID, logErr := p.store.InsertImportLog(ctx, storage.ImportLog{
		UserID:       userID,
		Source:       p.source,
		DocumentName: name,
		Status:       StatusRunning,
	})
	if logErr != nil {
		p.log.Error("failed to create import log", "error", logErr)
	}

	tpl, doc, err := parse()
	var result *ingest.Result
	if err == nil {
		result, err = p.save(ctx, tpl, userID)
	}

	if logErr == nil {
		// The import outcome is recorded even when the request was canceled.
		p.finishLog(context.WithoutCancel(ctx), logID, userID, name, tpl, doc, time.Since(start), err)
	}
	if err != nil {
		return nil, nil, err
	}

	p.log.Info("program imported",
		"document", name,
		"template_id", tpl.ID,
		"inserted", result.Inserted,
		"days", result.DaysFound,
		"exercises", result.ExercisesFound,
		"method", result.Method,
		"confidence", result.Confidence,
		"warnings", len(result.Warnings),
	)
	return result, tpl, nil
}

func (p *Provider) save(ctx context.Context, tpl *models.WorkoutTemplate, userID int) (*ingest.Result, error) {
	if err := ValidateTemplate(tpl); err != nil {
		return nil, fmt.Errorf("validating template: %w", err)
	}
	inserted, err := p.store.InsertTemplate(ctx, userID, tpl)
	if err != nil {
		return nil, fmt.Errorf("storing template: %w", err)
	}
	result := Summarize(tpl)
	result.Inserted = inserted
	if !inserted {
		result.Message = "This document was already imported; the stored template is unchanged."
	}
	return result, nil
}

func (p *Provider) finishLog(ctx context.Context, logID int64, userID int, name string,
	tpl *models.WorkoutTemplate, doc *docpipe.Document, elapsed time.Duration, ingestErr error) {
	ms := int(elapsed.Milliseconds())
	entry := storage.ImportLog{
		UserID:       userID,
		Source:       p.source,
		DocumentName: name,
		Status:       StatusSuccess,
		DurationMs:   &ms,
	}
	if tpl != nil {
		id := tpl.ID
		entry.TemplateID = &id
		entry.DaysFound = len(tpl.Schedule)
		entry.ExercisesFound = tpl.ExerciseCount()
		entry.Confidence = tpl.Confidence
		entry.Method = tpl.Method
	}
	if ingestErr != nil {
		msg := ingestErr.Error()
		entry.Status = StatusError
		entry.ErrorMessage = &msg
	}

	meta := map[string]any{}
	if doc != nil {
		meta["format"] = doc.Format
		meta["document_title"] = doc.Title
		if doc.Pages > 0 {
			meta["pages"] = doc.Pages
		}
	}
	if tpl != nil {
		meta["warnings"] = tpl.Warnings
	}
	if raw, err := json.Marshal(meta); err == nil {
		rm := json.RawMessage(raw)
		entry.Metadata = &rm
	}

	if err := p.store.UpdateImportLog(ctx, logID, entry); err != nil {
		p.log.Error("failed to update import log", "error", err, "log_id", logID)
	}
}

// Summarize reports a template as an ingest result.
func Summarize(tpl *models.WorkoutTemplate) *ingest.Result {
	r := &ingest.Result{
		TemplateID:     tpl.ID,
		TemplateName:   tpl.Name,
		DaysFound:      len(tpl.Schedule),
		ExercisesFound: tpl.ExerciseCount(),
		Confidence:     tpl.Confidence,
		Method:         tpl.Method,
		Format:         string(tpl.Format),
		Warnings:       tpl.Warnings,
	}
	if tpl.Method == models.MethodFallback {
		r.Message = "No exercises could be read from the document; a generic starter program was used."
	}
	return r
}

package importer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claude/freeplans/internal/docpipe"
	"github.com/claude/freeplans/internal/ingest"
	"github.com/claude/freeplans/internal/models"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

type fakeIngester struct {
	calls []string
	seen  map[string]bool
	fail  map[string]error
}

func (f *fakeIngester) IngestDocument(_ context.Context, name string, r io.Reader, _ int) (*ingest.Result, *models.WorkoutTemplate, error) {
	if err := f.fail[name]; err != nil {
		return nil, nil, err
	}
	body, _ := io.ReadAll(r)
	f.calls = append(f.calls, name)
	if f.seen == nil {
		f.seen = map[string]bool{}
	}
	inserted := !f.seen[string(body)]
	f.seen[string(body)] = true

	method := models.MethodSectionParse
	if strings.Contains(name, "notes") {
		method = models.MethodFallback
	}
	return &ingest.Result{
		TemplateID:     uuid.NewSHA1(uuid.NameSpaceURL, body),
		Inserted:       inserted,
		ExercisesFound: 3,
		Method:         method,
	}, nil, nil
}

type fakeParser struct{ calls []string }

func (f *fakeParser) ParseDocument(_ context.Context, name string, _ io.Reader) (*models.WorkoutTemplate, *docpipe.Document, error) {
	f.calls = append(f.calls, name)
	return &models.WorkoutTemplate{
		Name:     "Plan",
		Method:   models.MethodSectionParse,
		Schedule: []models.TemplateDay{{Exercises: []models.TemplateExercise{{Name: "Squat"}}}},
	}, nil, nil
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("plan.pdf"))
	assert.True(t, Supported("sub/PLAN.DOCX"))
	assert.True(t, Supported("notes.md"))
	assert.False(t, Supported("README"))
	assert.False(t, Supported("photo.jpg"))
}

func TestStateDB(t *testing.T) {
	state, err := OpenStateDB(t.TempDir())
	require.NoError(t, err)
	defer state.Close()

	ok, err := state.IsImported("a/plan.pdf", 10, "abc")
	require.NoError(t, err)
	assert.False(t, ok)

	id := uuid.New()
	require.NoError(t, state.MarkImported("a/plan.pdf", 10, "abc", id))

	ok, err = state.IsImported("a/plan.pdf", 10, "abc")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = state.IsImported("a/plan.pdf", 10, "changed")
	require.NoError(t, err)
	assert.False(t, ok, "a changed hash must be re-imported")

	got, found, err := state.TemplateFor("a/plan.pdf")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, id, got)

	_, found, err = state.TemplateFor("missing.pdf")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestHashFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "hello")
	got, err := HashFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", got)
}

func TestImport(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ppl.txt", "Day 1\nBench Press 4x8")
	writeFile(t, dir, "block/upper.md", "Upper\nRow 3x10")
	writeFile(t, dir, "block/notes.pdf", "not really a pdf")
	writeFile(t, dir, "copy.txt", "Day 1\nBench Press 4x8")
	writeFile(t, dir, "photo.jpg", "jpeg")
	writeFile(t, dir, ".hidden/secret.txt", "skip me")

	state, err := OpenStateDB(t.TempDir())
	require.NoError(t, err)
	defer state.Close()

	ing := &fakeIngester{}
	stats, err := New(ing, nil, state, discard(), false, 1).Import(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"block/notes.pdf", "block/upper.md", "copy.txt", "ppl.txt"}, ing.calls)
	assert.Equal(t, 4, stats.FilesTotal)
	assert.Equal(t, 3, stats.FilesImported)
	assert.Equal(t, 1, stats.FilesDuplicated)
	assert.Equal(t, 1, stats.FilesUnsupported)
	assert.Equal(t, 12, stats.ExercisesFound)
	assert.Equal(t, []string{"block/notes.pdf"}, stats.Fallbacks)

	// A second run skips everything already recorded in the state DB.
	ing.calls = nil
	stats, err = New(ing, nil, state, discard(), false, 1).Import(context.Background(), dir)
	require.NoError(t, err)
	assert.Empty(t, ing.calls)
	assert.Equal(t, 4, stats.FilesSkipped)

	// Changing a file makes it eligible again.
	writeFile(t, dir, "ppl.txt", "Day 1\nBench Press 5x5")
	_, err = New(ing, nil, state, discard(), false, 1).Import(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"ppl.txt"}, ing.calls)
}

func TestImportErrorsContinue(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "a")
	writeFile(t, dir, "b.txt", "b")

	state, err := OpenStateDB(t.TempDir())
	require.NoError(t, err)
	defer state.Close()

	ing := &fakeIngester{fail: map[string]error{"a.txt": errors.New("db down")}}
	stats, err := New(ing, nil, state, discard(), false, 1).Import(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesErrored)
	assert.Equal(t, 1, stats.FilesImported)

	ok, err := state.IsImported("a.txt", 1, mustHash(t, filepath.Join(dir, "a.txt")))
	require.NoError(t, err)
	assert.False(t, ok, "failed files must not be marked imported")
}

func mustHash(t *testing.T, path string) string {
	t.Helper()
	h, err := HashFile(path)
	require.NoError(t, err)
	return h
}

func TestImportDryRun(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ppl.txt", "Day 1\nBench Press 4x8")

	state, err := OpenStateDB(t.TempDir())
	require.NoError(t, err)
	defer state.Close()

	p := &fakeParser{}
	stats, err := New(nil, p, state, discard(), true, 1).Import(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"ppl.txt"}, p.calls)
	assert.Equal(t, 1, stats.FilesImported)
	assert.Equal(t, 1, stats.ExercisesFound)

	ok, err := state.IsImported("ppl.txt", int64(len("Day 1\nBench Press 4x8")), mustHash(t, filepath.Join(dir, "ppl.txt")))
	require.NoError(t, err)
	assert.False(t, ok, "dry run must not touch the state DB")
}

func TestImportRequiresCollaborator(t *testing.T) {
	_, err := New(nil, nil, nil, discard(), true, 1).Import(context.Background(), t.TempDir())
	assert.Error(t, err)
	_, err = New(nil, nil, nil, discard(), false, 1).Import(context.Background(), t.TempDir())
	assert.Error(t, err)
}

func TestImportCanceled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "a")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ing := &fakeIngester{}
	_, err := New(ing, nil, nil, discard(), false, 1).Import(ctx, dir)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, ing.calls)
}

func TestClientIngestDocument(t *testing.T) {
	id := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/programs/import", r.URL.Path)
		assert.Equal(t, "week 1.pdf", r.URL.Query().Get("name"))
		assert.Equal(t, "secret", r.Header.Get("X-API-Key"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "document", string(body))
		json.NewEncoder(w).Encode(map[string]any{
			"result":   ingest.Result{TemplateID: id, Inserted: true, Method: models.MethodSectionParse},
			"template": models.WorkoutTemplate{ID: id, Name: "Week 1"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "secret")
	res, tpl, err := c.IngestDocument(context.Background(), "week 1.pdf", strings.NewReader("document"), 0)
	require.NoError(t, err)
	assert.Equal(t, id, res.TemplateID)
	assert.True(t, res.Inserted)
	require.NotNil(t, tpl)
	assert.Equal(t, "Week 1", tpl.Name)
}

func TestClientRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"result": ingest.Result{Inserted: true}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k")
	c.backoff = time.Millisecond
	res, _, err := c.IngestDocument(context.Background(), "a.txt", strings.NewReader("x"), 0)
	require.NoError(t, err)
	assert.True(t, res.Inserted)
	assert.EqualValues(t, 3, hits.Load())
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, `{"error":"invalid API key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "wrong")
	c.backoff = time.Millisecond
	_, _, err := c.IngestDocument(context.Background(), "a.txt", strings.NewReader("x"), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.EqualValues(t, 1, hits.Load())
}

// Package docpipe turns workout program documents into line-oriented text.
//
// Supported formats:
//   - .pdf   text operators of every page (pdfcpu), one line per text line
//   - .docx  word/document.xml, table rows as tab-separated cells
//   - .xlsx  every sheet (excelize), rows as tab-separated cells
//   - .csv   rows as tab-separated cells
//   - .html  sanitized (bluemonday) and converted to markdown
//   - .md, .txt passthrough
//
// Layout is preserved where the source has it: table-like sources keep their
// columns so downstream parsers can split them again.
package docpipe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
)

// Format identifies a document type.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDocx Format = "docx"
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
	FormatHTML Format = "html"
	FormatMD   Format = "md"
	FormatTXT  Format = "txt"
)

// DefaultMaxFileSize bounds the bytes read from one document.
const DefaultMaxFileSize = 20 << 20

var (
	// ErrUnsupportedFormat is returned for unknown extensions.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrTooLarge is returned when a document exceeds Config.MaxFileSize.
	ErrTooLarge = errors.New("document too large")
)

// Document is the result of extracting text from a file.
type Document struct {
	Name   string `json:"name"`
	Format Format `json:"format"`
	Title  string `json:"title,omitempty"`
	Text   string `json:"text"`
	Pages  int    `json:"pages,omitempty"`
}

// Config configures the pipeline.
type Config struct {
	// MaxFileSize is the maximum document size in bytes (default 20 MB).
	MaxFileSize int64 `yaml:"max_file_size"`

	Logger *slog.Logger `yaml:"-"`
}

func (c *Config) defaults() {
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = DefaultMaxFileSize
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Pipeline is the document extraction engine. It is safe for concurrent use.
type Pipeline struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Pipeline with the given configuration.
func New(cfg Config) *Pipeline {
	cfg.defaults()
	return &Pipeline{cfg: cfg, logger: cfg.Logger}
}

// Detect returns the document format based on the file extension.
func (p *Pipeline) Detect(name string) (Format, error) {
	return DetectFormat(name)
}

// DetectFormat maps a file name to its format. A name without an extension
// is treated as plain text.
func DetectFormat(name string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDocx, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv", ".tsv":
		return FormatCSV, nil
	case ".html", ".htm":
		return FormatHTML, nil
	case ".md", ".markdown":
		return FormatMD, nil
	case ".txt", ".text", "":
		return FormatTXT, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Extract reads a document and returns its text.
func (p *Pipeline) Extract(ctx context.Context, name string, r io.Reader) (*Document, error) {
	format, err := p.Detect(name)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(r, p.cfg.MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	if int64(len(data)) > p.cfg.MaxFileSize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, name, p.cfg.MaxFileSize)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.logger.Debug("extracting document", "name", name, "format", format, "bytes", len(data))

	doc := &Document{Name: name, Format: format}
	switch format {
	case FormatPDF:
		doc.Title, doc.Text, doc.Pages, err = extractPDF(ctx, data)
	case FormatDocx:
		doc.Title, doc.Text, err = extractDocx(data)
	case FormatXLSX:
		doc.Text, err = extractXLSX(data)
	case FormatCSV:
		doc.Text, err = extractCSV(data)
	case FormatHTML:
		doc.Title, doc.Text, err = extractHTML(data)
	default:
		doc.Text = normalizeText(string(data))
	}
	if err != nil {
		return nil, fmt.Errorf("extract %s (%s): %w", name, format, err)
	}
	if doc.Title == "" {
		doc.Title = firstLine(doc.Text)
	}
	return doc, nil
}

// SupportedFormats returns all supported format extensions.
func SupportedFormats() []string {
	return []string{"pdf", "docx", "xlsx", "csv", "html", "md", "txt"}
}

// normalizeText unifies line endings and trims trailing whitespace per line.
func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.TrimPrefix(s, "\uFEFF")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func firstLine(text string) string {
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			if len(l) > 200 {
				l = l[:200]
			}
			return l
		}
	}
	return ""
}

func joinRows(rows [][]string) string {
	var sb bytes.Buffer
	for _, row := range rows {
		cells := make([]string, 0, len(row))
		for _, c := range row {
			cells = append(cells, strings.Join(strings.Fields(c), " "))
		}
		line := strings.TrimRight(strings.Join(cells, "\t"), "\t")
		if strings.TrimSpace(line) == "" {
			sb.WriteByte('\n')
			continue
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return normalizeText(sb.String())
}

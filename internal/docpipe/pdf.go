package docpipe

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// extractPDF returns the text of every page, pages separated by a blank line.
func extractPDF(ctx context.Context, data []byte) (title, text string, pages int, err error) {
	conf := model.NewDefaultConfiguration()
	pdf, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return "", "", 0, fmt.Errorf("pdfcpu read: %w", err)
	}

	var sb strings.Builder
	for pageNr := 1; pageNr <= pdf.PageCount; pageNr++ {
		if err := ctx.Err(); err != nil {
			return "", "", 0, err
		}
		page := pageText(pdf, pageNr)
		if page == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(page)
	}
	if sb.Len() == 0 {
		return "", "", pdf.PageCount, fmt.Errorf("no text content found in PDF")
	}
	text = normalizeText(sb.String())
	return firstLine(text), text, pdf.PageCount, nil
}

func pageText(pdf *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(pdf, pageNr)
	if err != nil || r == nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return streamText(data)
}

// streamText interprets the text operators of a content stream. Vertical
// moves start a new line; horizontal moves within a line become a double
// space so that table columns stay separable.
func streamText(data []byte) string {
	var (
		sb       strings.Builder
		operands []any
		lastY    = math.NaN()
	)
	newline := func() {
		if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n") {
			sb.WriteByte('\n')
		}
	}
	gap := func() {
		s := sb.String()
		if sb.Len() > 0 && !strings.HasSuffix(s, "\n") && !strings.HasSuffix(s, "  ") {
			sb.WriteString("  ")
		}
	}
	show := func(v any) {
		switch t := v.(type) {
		case string:
			sb.WriteString(t)
		case []any:
			for _, el := range t {
				switch x := el.(type) {
				case string:
					sb.WriteString(x)
				case float64:
					// Large negative kerning is a word gap.
					if x < -250 {
						sb.WriteByte(' ')
					}
				}
			}
		}
	}

	lx := &lexer{data: data}
	for {
		tok, ok := lx.next()
		if !ok {
			break
		}
		op, isOp := tok.(operator)
		if !isOp {
			operands = append(operands, tok)
			continue
		}
		switch op {
		case "Tj":
			if n := len(operands); n > 0 {
				show(operands[n-1])
			}
		case "TJ":
			if n := len(operands); n > 0 {
				show(operands[n-1])
			}
		case "'", `"`:
			newline()
			if n := len(operands); n > 0 {
				show(operands[n-1])
			}
		case "T*":
			newline()
		case "Td", "TD":
			if n := len(operands); n >= 2 {
				tx, _ := operands[n-2].(float64)
				ty, _ := operands[n-1].(float64)
				switch {
				case ty != 0:
					newline()
				case tx != 0:
					gap()
				}
			}
		case "Tm":
			if n := len(operands); n >= 6 {
				y, _ := operands[n-1].(float64)
				if !math.IsNaN(lastY) && y != lastY {
					newline()
				} else if !math.IsNaN(lastY) {
					gap()
				}
				lastY = y
			}
		case "ET":
			gap()
		}
		operands = operands[:0]
	}
	return cleanPDFLines(sb.String())
}

// cleanPDFLines drops unprintable runes and trims each line.
func cleanPDFLines(text string) string {
	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, l := range lines {
		l = strings.Map(func(r rune) rune {
			if r == '\t' || unicode.IsPrint(r) {
				return r
			}
			return -1
		}, l)
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

type operator string

// lexer tokenizes the subset of PDF content stream syntax text extraction needs.
type lexer struct {
	data []byte
	pos  int
}

func (l *lexer) next() (any, bool) {
	l.skipSpace()
	if l.pos >= len(l.data) {
		return nil, false
	}
	c := l.data[l.pos]
	switch {
	case c == '(':
		return l.literal(), true
	case c == '<' && l.peek(1) == '<':
		l.pos += 2
		return operator("<<"), true
	case c == '>' && l.peek(1) == '>':
		l.pos += 2
		return operator(">>"), true
	case c == '<':
		return l.hex(), true
	case c == '[':
		l.pos++
		var arr []any
		for {
			l.skipSpace()
			if l.pos >= len(l.data) {
				return arr, true
			}
			if l.data[l.pos] == ']' {
				l.pos++
				return arr, true
			}
			tok, ok := l.next()
			if !ok {
				return arr, true
			}
			arr = append(arr, tok)
		}
	case c == '/':
		start := l.pos
		l.pos++
		for l.pos < len(l.data) && !isDelim(l.data[l.pos]) {
			l.pos++
		}
		return "/" + string(l.data[start+1:l.pos]), true
	case c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9'):
		start := l.pos
		l.pos++
		for l.pos < len(l.data) && !isDelim(l.data[l.pos]) {
			l.pos++
		}
		f, err := strconv.ParseFloat(string(l.data[start:l.pos]), 64)
		if err != nil {
			return operator(l.data[start:l.pos]), true
		}
		return f, true
	case c == '%':
		for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
			l.pos++
		}
		return l.next()
	case isDelim(c):
		l.pos++
		return operator(string(c)), true
	default:
		start := l.pos
		for l.pos < len(l.data) && !isDelim(l.data[l.pos]) {
			l.pos++
		}
		return operator(l.data[start:l.pos]), true
	}
}

func (l *lexer) peek(n int) byte {
	if l.pos+n < len(l.data) {
		return l.data[l.pos+n]
	}
	return 0
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.data) && isSpace(l.data[l.pos]) {
		l.pos++
	}
}

// literal reads a (string) with nesting and escapes.
func (l *lexer) literal() string {
	var sb strings.Builder
	depth := 0
	l.pos++
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		switch c {
		case '(':
			depth++
			sb.WriteByte(c)
		case ')':
			if depth == 0 {
				return sb.String()
			}
			depth--
			sb.WriteByte(c)
		case '\\':
			if l.pos >= len(l.data) {
				return sb.String()
			}
			e := l.data[l.pos]
			l.pos++
			switch e {
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case 'b', 'f':
			case '\n', '\r':
				// line continuation
			default:
				if e >= '0' && e <= '7' {
					val := int(e - '0')
					for i := 0; i < 2 && l.pos < len(l.data) && l.data[l.pos] >= '0' && l.data[l.pos] <= '7'; i++ {
						val = val*8 + int(l.data[l.pos]-'0')
						l.pos++
					}
					sb.WriteRune(rune(byte(val)))
				} else {
					sb.WriteByte(e)
				}
			}
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// hex reads a <hex string>. Two-byte strings are decoded as UTF-16BE.
func (l *lexer) hex() string {
	l.pos++
	start := l.pos
	for l.pos < len(l.data) && l.data[l.pos] != '>' {
		l.pos++
	}
	raw := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, string(l.data[start:l.pos]))
	l.pos++
	if len(raw)%2 == 1 {
		raw += "0"
	}
	b := make([]byte, 0, len(raw)/2)
	for i := 0; i+1 < len(raw); i += 2 {
		v, err := strconv.ParseUint(raw[i:i+2], 16, 8)
		if err != nil {
			return ""
		}
		b = append(b, byte(v))
	}
	if len(b) >= 2 && b[0] == 0xFE && b[1] == 0xFF || (len(b)%2 == 0 && len(b) > 0 && b[0] == 0) {
		var sb strings.Builder
		for i := 0; i+1 < len(b); i += 2 {
			r := rune(b[i])<<8 | rune(b[i+1])
			if r == 0xFEFF {
				continue
			}
			sb.WriteRune(r)
		}
		return sb.String()
	}
	return string(b)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == 0
}

func isDelim(c byte) bool {
	return isSpace(c) || strings.IndexByte("()<>[]{}/%", c) >= 0
}

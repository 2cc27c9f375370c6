package docpipe

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// extractDocx reads word/document.xml. Paragraphs become lines and each
// table row becomes one line of tab-separated cells.
func extractDocx(data []byte) (string, string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", "", fmt.Errorf("open zip: %w", err)
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", "", fmt.Errorf("word/document.xml not found in archive")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", "", fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	return parseDocumentXML(rc)
}

func parseDocumentXML(r io.Reader) (string, string, error) {
	decoder := xml.NewDecoder(r)
	var (
		out       strings.Builder
		para      strings.Builder
		cells     []string
		cell      []string
		title     string
		style     string
		inText    bool
		tableDeep int
	)

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", "", fmt.Errorf("decode document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tableDeep++
			case "tr":
				cells = cells[:0]
			case "tc":
				cell = cell[:0]
			case "p":
				para.Reset()
				style = ""
			case "pStyle":
				for _, a := range t.Attr {
					if a.Name.Local == "val" {
						style = a.Value
					}
				}
			case "t":
				inText = true
			case "tab":
				para.WriteByte('\t')
			case "br", "cr":
				para.WriteByte('\n')
			}

		case xml.CharData:
			if inText {
				para.Write(t)
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				text := strings.TrimSpace(para.String())
				if tableDeep > 0 {
					if text != "" {
						cell = append(cell, text)
					}
					continue
				}
				if title == "" && text != "" && isHeadingStyle(style) {
					title = text
				}
				out.WriteString(text)
				out.WriteByte('\n')
			case "tc":
				cells = append(cells, strings.Join(cell, " "))
			case "tr":
				out.WriteString(strings.Join(cells, "\t"))
				out.WriteByte('\n')
				cells = cells[:0]
			case "tbl":
				tableDeep--
				out.WriteByte('\n')
			}
		}
	}
	return title, normalizeText(out.String()), nil
}

func isHeadingStyle(style string) bool {
	s := strings.ToLower(style)
	return s == "title" || strings.HasPrefix(s, "heading")
}

package docpipe

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"sync"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"
)

var titleRe = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)

// Policies and converters are built once; both are safe for concurrent use.
var (
	sanitizer = sync.OnceValue(func() *bluemonday.Policy {
		return bluemonday.UGCPolicy()
	})
	mdConverter = sync.OnceValue(func() *converter.Converter {
		return converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		)
	})
)

// extractHTML strips scripts, styles and unsafe markup, then converts the
// rest to markdown so headings, lists and tables keep their shape.
func extractHTML(data []byte) (string, string, error) {
	title := ""
	if m := titleRe.FindSubmatch(data); m != nil {
		title = strings.TrimSpace(html.UnescapeString(string(m[1])))
	}

	clean := sanitizer().SanitizeBytes(data)
	md, err := mdConverter().ConvertString(string(clean))
	if err != nil {
		return "", "", fmt.Errorf("convert html: %w", err)
	}
	return title, normalizeText(md), nil
}

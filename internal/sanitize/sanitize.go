// Package sanitize turns model replies, which are Markdown, into safe output
// for each surface.
package sanitize

import (
	"bytes"
	"html"
	"html/template"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	blockBreaks = regexp.MustCompile(`<br\s*/?>|</?p>|</?div>|</?pre>|</?h[1-6]>|</?li>|</?ul>|</?ol>|</?blockquote>`)
	blankLines  = regexp.MustCompile(`\n\s*\n+`)
)

// Policy renders Markdown and strips anything unsafe from the result.
type Policy struct {
	markdown goldmark.Markdown
	html     *bluemonday.Policy
	strict   *bluemonday.Policy
}

// NewPolicy creates a Policy that allows user-generated-content markup in
// HTML output.
func NewPolicy() *Policy {
	return &Policy{
		markdown: goldmark.New(goldmark.WithExtensions(extension.GFM)),
		html:     bluemonday.UGCPolicy(),
		strict:   bluemonday.StrictPolicy(),
	}
}

// HTML renders text as sanitized HTML for the web page. Raw HTML in text is
// dropped. If Markdown conversion fails the text is escaped as is.
func (p *Policy) HTML(text string) template.HTML {
	rendered, err := p.convert(text)
	if err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(p.html.Sanitize(rendered))
}

// PlainText strips Markdown and HTML from text, keeping paragraph breaks.
func (p *Policy) PlainText(text string) string {
	if text == "" {
		return ""
	}

	rendered, err := p.convert(text)
	if err != nil {
		return text
	}

	rendered = blockBreaks.ReplaceAllString(rendered, "\n")
	stripped := p.strict.Sanitize(rendered)
	stripped = blankLines.ReplaceAllString(stripped, "\n\n")

	return strings.TrimSpace(html.UnescapeString(stripped))
}

func (p *Policy) convert(text string) (string, error) {
	var buf bytes.Buffer
	if err := p.markdown.Convert([]byte(text), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

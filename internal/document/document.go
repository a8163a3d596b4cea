// Package document loads PDF papers into immutable page text.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNoText is returned when a PDF parses but yields no extractable text.
var ErrNoText = errors.New("document: no extractable text")

// Document is the ordered page text of one paper.
type Document struct {
	source string
	pages  []string
	text   string
}

// New builds a Document from already extracted pages.
func New(source string, pages []string) Document {
	pages = append([]string(nil), pages...)
	return Document{source: source, pages: pages, text: join(pages)}
}

// Source is the path or name the document was loaded from.
func (d Document) Source() string { return d.source }

// NumPages returns the number of pages.
func (d Document) NumPages() int { return len(d.pages) }

// Pages returns a copy of the page texts.
func (d Document) Pages() []string { return append([]string(nil), d.pages...) }

// Text is all pages joined, one newline after each.
func (d Document) Text() string { return d.text }

func join(pages []string) string {
	var b strings.Builder
	for _, p := range pages {
		b.WriteString(p)
		b.WriteString("\n")
	}
	return b.String()
}

// Load reads and parses the PDF at path.
func Load(path string) (Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read pdf: %w", err)
	}
	return Parse(path, content)
}

// Parse extracts per-page plain text from PDF bytes. Pages without content
// streams or that fail to extract are kept as empty strings so page numbering
// is preserved.
func Parse(source string, content []byte) (Document, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return Document{}, fmt.Errorf("parse pdf %s: %w", source, err)
	}

	numPages := reader.NumPage()
	pages := make([]string, 0, numPages)
	var total int
	for pageNum := 1; pageNum <= numPages; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() || page.V.Key("Contents").Kind() == pdf.Null {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			pages = append(pages, "")
			continue
		}
		total += len(strings.TrimSpace(text))
		pages = append(pages, text)
	}
	if total == 0 {
		return Document{}, fmt.Errorf("%w: %s", ErrNoText, source)
	}
	return Document{source: source, pages: pages, text: join(pages)}, nil
}

var figureRef = regexp.MustCompile(`(?i)\bfig(?:ure|\.)?\s*(\d{1,3})\b`)

// HighestFigure returns the largest figure number referenced in text, or 0.
func HighestFigure(text string) int {
	highest := 0
	for _, m := range figureRef.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err == nil && n > highest {
			highest = n
		}
	}
	return highest
}

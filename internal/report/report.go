// Package report writes analysis results as plain-text files.
package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"paper-analyzer/internal/analysis"
	"paper-analyzer/internal/llm"
)

// ErrIO marks an output file or directory that could not be written or read.
var ErrIO = errors.New("report: output file error")

// File names inside a paper's output directory.
const (
	MetadataFile   = "metadata.txt"
	BackgroundFile = "background.txt"
	FiguresFile    = "figures_analysis.txt"
)

const separator = "=================================================="

// Metadata is the content of metadata.txt.
type Metadata struct {
	Title    string
	Authors  string
	Abstract string
	Figures  int
}

// Dir is the output directory for pdfPath: root/<pdf base name without extension>.
func Dir(root, pdfPath string) string {
	base := filepath.Base(pdfPath)
	return filepath.Join(root, strings.TrimSuffix(base, filepath.Ext(base)))
}

// EnsureDir creates dir and its parents.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

// WriteMetadata overwrites path with one "Key: value" line per field.
func WriteMetadata(path string, m Metadata) error {
	var b bytes.Buffer
	fmt.Fprintf(&b, "Title: %s\n", m.Title)
	fmt.Fprintf(&b, "Authors: %s\n", m.Authors)
	fmt.Fprintf(&b, "Number of Figures: %d\n", m.Figures)
	fmt.Fprintf(&b, "Abstract: %s\n", m.Abstract)
	return writeFile(path, b.Bytes(), os.O_TRUNC)
}

// WriteBackground overwrites path with the raw background answer.
func WriteBackground(path string, resp llm.Response) error {
	return writeFile(path, []byte(responseText(resp)), os.O_TRUNC)
}

// WriteFigures appends the figure report to path. Figures are written in
// ascending index order, information before connection, and the initial
// analysis before the expanded one. expanded may be nil.
func WriteFigures(path string, answers, expanded []analysis.FigureAnswer) error {
	byIndex := make(map[int]analysis.FigureAnswer, len(expanded))
	for _, e := range expanded {
		byIndex[e.Index] = e
	}
	sorted := append([]analysis.FigureAnswer(nil), answers...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	var b bytes.Buffer
	b.WriteString("=== Figure Analysis Results ===\n\n")
	for _, a := range sorted {
		fmt.Fprintf(&b, "### Figure %d ###\n\n", a.Number())
		fmt.Fprintf(&b, "Information:\n%s\n\n", responseText(a.Information))
		fmt.Fprintf(&b, "Connection:\n%s\n\n", responseText(a.Connection))
		if e, ok := byIndex[a.Index]; ok {
			fmt.Fprintf(&b, "Expanded Information:\n%s\n\n", responseText(e.Information))
			fmt.Fprintf(&b, "Expanded Connection:\n%s\n\n", responseText(e.Connection))
		}
		b.WriteString(separator + "\n\n")
	}
	return writeFile(path, b.Bytes(), os.O_APPEND)
}

func responseText(r llm.Response) string {
	switch v := r.(type) {
	case llm.Raw:
		return v.Text
	case llm.Structured:
		var out bytes.Buffer
		if err := json.Indent(&out, []byte(v.Text), "", "  "); err != nil {
			return v.Text
		}
		return out.String()
	default:
		return ""
	}
}

func writeFile(path string, data []byte, mode int) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|mode, 0o644)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("%w: write %s: %w", ErrIO, path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", ErrIO, path, err)
	}
	return nil
}

// Files is the text of a paper's output directory. Missing files are empty.
type Files struct {
	Metadata   string
	Background string
	Figures    string
}

// Read loads the report files from dir.
func Read(dir string) (Files, error) {
	var f Files
	for name, dst := range map[string]*string{
		MetadataFile:   &f.Metadata,
		BackgroundFile: &f.Background,
		FiguresFile:    &f.Figures,
	} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Files{}, fmt.Errorf("%w: read %s: %w", ErrIO, name, err)
		}
		*dst = string(data)
	}
	return f, nil
}

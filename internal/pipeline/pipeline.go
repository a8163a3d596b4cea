// Package pipeline runs a complete paper analysis: metadata, background and
// per-figure answers, written to an output directory.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"paper-analyzer/internal/analysis"
	"paper-analyzer/internal/document"
	"paper-analyzer/internal/llm"
	"paper-analyzer/internal/prompt"
	"paper-analyzer/internal/report"
)

// Result summarizes one analysis run.
type Result struct {
	Dir        string
	Details    analysis.PaperDetails
	Figures    int
	Background llm.Response
	Answers    []analysis.FigureAnswer
	Expanded   []analysis.FigureAnswer
	Calls      int64
}

// Analyzer wires the executor, the fan-out processor and the report writer.
type Analyzer struct {
	Exec       *analysis.Executor
	Figures    *analysis.FigureProcessor
	OutputRoot string
	Expand     bool
	Log        *slog.Logger

	// Load reads a PDF from disk. Defaults to document.Load.
	Load func(path string) (document.Document, error)
}

// Run analyzes the PDF at pdfPath and writes the report under
// OutputRoot/<pdf name>.
func (a *Analyzer) Run(ctx context.Context, pdfPath string) (*Result, error) {
	load := a.Load
	if load == nil {
		load = document.Load
	}
	doc, err := load(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", pdfPath, err)
	}
	return a.Analyze(ctx, doc, report.Dir(a.OutputRoot, pdfPath))
}

// Analyze runs every step for an already loaded document and writes the
// report files into dir. figures_analysis.txt is only written when every
// figure succeeded.
func (a *Analyzer) Analyze(ctx context.Context, doc document.Document, dir string) (*Result, error) {
	log := a.logger().With("source", doc.Source())
	start := a.Exec.Calls()

	if err := report.EnsureDir(dir); err != nil {
		return nil, err
	}

	countResp, err := a.Exec.Query(ctx, doc, prompt.FigureCount, nil, analysis.CountSchema)
	if err != nil {
		return nil, fmt.Errorf("count figures: %w", err)
	}
	count, ok := llm.As[analysis.FiguresCount](countResp)
	if !ok {
		return nil, fmt.Errorf("count figures: %w", llm.ErrStructuredOutput)
	}
	total := count.TotalFigures
	if seen := document.HighestFigure(doc.Text()); seen != total {
		log.Warn("figure count differs from references in text", "model", total, "text", seen)
	}

	detailsResp, err := a.Exec.Query(ctx, doc, prompt.ExtractDetails, nil, analysis.DetailsSchema)
	if err != nil {
		return nil, fmt.Errorf("extract details: %w", err)
	}
	details, ok := llm.As[analysis.PaperDetails](detailsResp)
	if !ok {
		return nil, fmt.Errorf("extract details: %w", llm.ErrStructuredOutput)
	}
	err = report.WriteMetadata(filepath.Join(dir, report.MetadataFile), report.Metadata{
		Title:    details.Title,
		Authors:  details.Authors,
		Abstract: details.Abstract,
		Figures:  total,
	})
	if err != nil {
		return nil, err
	}
	log.Info("metadata written", "title", details.Title, "figures", total)

	background, err := a.Exec.Query(ctx, doc, prompt.Background, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("background: %w", err)
	}
	if err := report.WriteBackground(filepath.Join(dir, report.BackgroundFile), background); err != nil {
		return nil, err
	}

	answers, err := a.Figures.Process(ctx, doc, total)
	if err != nil {
		return nil, err
	}
	var expanded []analysis.FigureAnswer
	if a.Expand {
		expanded, err = a.Figures.Expand(ctx, doc, answers)
		if err != nil {
			return nil, err
		}
	}
	if err := report.WriteFigures(filepath.Join(dir, report.FiguresFile), answers, expanded); err != nil {
		return nil, err
	}

	res := &Result{
		Dir:        dir,
		Details:    *details,
		Figures:    total,
		Background: background,
		Answers:    answers,
		Expanded:   expanded,
		Calls:      a.Exec.Calls() - start,
	}
	log.Info("analysis complete", "dir", dir, "figures", total, "calls", res.Calls)
	return res, nil
}

// Ask answers a free-form question about doc and expands the answer. Nothing
// is written to disk.
func (a *Analyzer) Ask(ctx context.Context, doc document.Document, question string) (llm.Response, error) {
	return a.Exec.QueryAndExpand(ctx, doc, prompt.CustomQuery, prompt.Vars{prompt.VarQuestion: question}, nil)
}

func (a *Analyzer) logger() *slog.Logger {
	if a.Log != nil {
		return a.Log
	}
	return slog.Default()
}

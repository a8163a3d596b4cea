package analysis

import "paper-analyzer/internal/llm"

// PaperDetails is the structured metadata extracted from a paper.
type PaperDetails struct {
	Title    string `json:"title" jsonschema_description:"Title of the paper" validate:"required"`
	Abstract string `json:"abstract" jsonschema_description:"Abstract of the paper"`
	Authors  string `json:"authors" jsonschema_description:"Authors of the paper"`
}

// FiguresCount is the structured answer to the figure-count prompt.
type FiguresCount struct {
	TotalFigures int `json:"total_figures" jsonschema_description:"Total number of figures in the paper" validate:"min=0,max=999"`
}

var (
	DetailsSchema = llm.SchemaFor[PaperDetails]("paper_details", "Title, abstract and authors of an academic paper")
	CountSchema   = llm.SchemaFor[FiguresCount]("figures_count", "Total number of figures in an academic paper")
)

// FigureAnswer holds both answers for the figure at Index (0-based).
type FigureAnswer struct {
	Index       int
	Information llm.Response
	Connection  llm.Response
}

// Number is the 1-based figure number used in prompts and reports.
func (a FigureAnswer) Number() int { return a.Index + 1 }

// AnswerText is the text fed back into the model when an answer is expanded.
// Structured answers are passed on as their JSON.
func AnswerText(r llm.Response) string {
	switch v := r.(type) {
	case llm.Raw:
		return v.Text
	case llm.Structured:
		return v.Text
	default:
		return ""
	}
}

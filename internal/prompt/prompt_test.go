package prompt

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderDeterministic(t *testing.T) {
	vars := Vars{VarText: "paper body", VarFigureNumber: 3}

	first, err := Render(FigureInfo, vars)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Render(FigureInfo, vars)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Contains(t, first, "what figure 3 is about")
	assert.Contains(t, first, "Text: paper body")
}

func TestRenderMissingVariable(t *testing.T) {
	tests := []struct {
		name string
		tmpl *Template
		vars Vars
	}{
		{"figure number missing", FigureConnection, Vars{VarText: "x"}},
		{"text missing", FigureCount, Vars{}},
		{"nil vars", Background, nil},
		{"answer missing", ExpandAnswer, Vars{VarText: "x"}},
		{"question missing", CustomQuery, Vars{VarText: "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Render(tt.tmpl, tt.vars)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrTemplate), "got %v", err)
			assert.Empty(t, out)
		})
	}
}

func TestBuiltInTemplatesRender(t *testing.T) {
	vars := Vars{VarText: "T", VarFigureNumber: 1, VarAnswer: "A", VarQuestion: "Q"}
	for _, tmpl := range []*Template{FigureInfo, FigureCount, FigureConnection, ExpandAnswer, ExtractDetails, Background, CustomQuery} {
		t.Run(tmpl.Name(), func(t *testing.T) {
			out, err := Render(tmpl, vars)
			require.NoError(t, err)
			assert.NotContains(t, out, "{{")
			assert.True(t, strings.Contains(out, "T"))
		})
	}
}

func TestNewParseError(t *testing.T) {
	_, err := New("broken", "Figure {{.FigureNumber")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTemplate))

	assert.Panics(t, func() { MustNew("broken", "{{end}}") })
}

func TestRenderNilTemplate(t *testing.T) {
	_, err := Render(nil, Vars{})
	assert.True(t, errors.Is(err, ErrTemplate))
}

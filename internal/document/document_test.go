package document

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentText(t *testing.T) {
	pages := []string{"page one", "page two"}
	doc := New("paper.pdf", pages)

	assert.Equal(t, "paper.pdf", doc.Source())
	assert.Equal(t, 2, doc.NumPages())
	assert.Equal(t, "page one\npage two\n", doc.Text())

	// Mutating the inputs or the returned slice must not change the document.
	pages[0] = "changed"
	got := doc.Pages()
	got[1] = "changed"
	assert.Equal(t, []string{"page one", "page two"}, doc.Pages())
}

func TestHighestFigure(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"none", "no references here", 0},
		{"single", "As shown in Figure 1, the model converges.", 1},
		{"highest wins", "Figure 2 ... Fig. 7 ... figure 3 ... FIG 5", 7},
		{"abbreviated", "see Fig.12 for details", 12},
		{"word boundary", "configure 9 nodes", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HighestFigure(tt.text))
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.pdf"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseRejectsNonPDF(t *testing.T) {
	_, err := Parse("notes.pdf", []byte("this is not a pdf"))
	require.Error(t, err)
}

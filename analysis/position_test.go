package analysis_test

import (
	"testing"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rubble"
	"rubble/analysis"
)

func TestLineRangeWhole(t *testing.T) {
	t.Parallel()

	assert.True(t, analysis.LineRange{}.Whole())
	assert.False(t, analysis.LineRange{Start: 1, End: 5}.Whole())
}

func TestVisible(t *testing.T) {
	t.Parallel()

	span := rubble.Span{
		Start: lexer.Position{Line: 5, Column: 1},
		End:   lexer.Position{Line: 8, Column: 4},
	}

	tests := []struct {
		name string
		rng  analysis.LineRange
		want bool
	}{
		{name: "whole document", rng: analysis.LineRange{}, want: true},
		{name: "fully inside", rng: analysis.LineRange{Start: 1, End: 20}, want: true},
		{name: "overlaps top", rng: analysis.LineRange{Start: 1, End: 5}, want: true},
		{name: "overlaps bottom", rng: analysis.LineRange{Start: 8, End: 12}, want: true},
		{name: "strictly inside the span", rng: analysis.LineRange{Start: 6, End: 7}, want: true},
		{name: "above", rng: analysis.LineRange{Start: 1, End: 4}, want: false},
		{name: "below", rng: analysis.LineRange{Start: 9, End: 20}, want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, analysis.Visible(span, tt.rng))
		})
	}
}

func TestPositionToLexer(t *testing.T) {
	t.Parallel()

	pos := analysis.PositionToLexer(0, 0)
	assert.Equal(t, 1, pos.Line)
	assert.Equal(t, 1, pos.Column)

	pos = analysis.PositionToLexer(9, 41)
	assert.Equal(t, 10, pos.Line)
	assert.Equal(t, 42, pos.Column)
}

func TestNodeAtPosition(t *testing.T) {
	t.Parallel()

	src := `def fetch(id)
  find(id)
rescue
  nil
end
`

	f := analysis.NewAnalyzer().Analyze("test.rbl", []byte(src))
	require.NoError(t, f.ParseError)

	// On the rescue keyword (line 3, column 1).
	node := analysis.NodeAtPosition(f, lexer.Position{Line: 3, Column: 1})
	require.NotNil(t, node)

	if _, ok := node.(*rubble.RescueClause); !ok {
		t.Fatalf("node = %T, want *rubble.RescueClause", node)
	}

	// Inside the call argument (line 2, column 8): the innermost node wins.
	node = analysis.NodeAtPosition(f, lexer.Position{Line: 2, Column: 8})
	require.NotNil(t, node)

	ref, ok := node.(*rubble.LocalVarRef)
	require.True(t, ok, "node = %T, want *rubble.LocalVarRef", node)
	assert.Equal(t, "id", ref.Name)

	// Far past the program.
	node = analysis.NodeAtPosition(f, lexer.Position{Line: 40, Column: 1})
	assert.Nil(t, node)
}

package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rubble/analysis"
)

func TestAnalyzeValidFile(t *testing.T) {
	t.Parallel()

	src := `
def greet(name)
  { name:, greeting: "hi" }
end
`

	f := analysis.NewAnalyzer().Analyze("greet.rbl", []byte(src))

	require.NoError(t, f.ParseError)
	require.NotNil(t, f.Program)
	assert.Equal(t, "greet.rbl", f.Path)
	assert.Empty(t, f.Diagnostics)
}

func TestAnalyzeParseError(t *testing.T) {
	t.Parallel()

	f := analysis.NewAnalyzer().Analyze("broken.rbl", []byte("def m\n  x"))

	require.Error(t, f.ParseError)
	assert.Nil(t, f.Program)

	require.Len(t, f.Diagnostics, 1)
	d := f.Diagnostics[0]
	assert.Equal(t, analysis.SeverityError, d.Severity)
	assert.Equal(t, "parse-error", d.Code)
	assert.Equal(t, "rubble", d.Source)
	assert.NotZero(t, d.Span.Start.Line, "parse diagnostics carry a position")
}

func TestAnalyzeLexError(t *testing.T) {
	t.Parallel()

	f := analysis.NewAnalyzer().Analyze("bad.rbl", []byte(`s = "unterminated`))

	require.Error(t, f.ParseError)
	require.Len(t, f.Diagnostics, 1)
	assert.Equal(t, analysis.SeverityError, f.Diagnostics[0].Severity)
}

func TestAnalyzerWithCustomRules(t *testing.T) {
	t.Parallel()

	ran := false
	rule := &analysis.Rule{
		Name:     "probe",
		Doc:      "records that it ran",
		Severity: analysis.SeverityHint,
		Run: func(f *analysis.AnalyzedFile) {
			ran = true

			f.Diagnostics = append(f.Diagnostics, analysis.Diagnostic{
				Severity: analysis.SeverityHint,
				Message:  "probe",
				Code:     "probe",
				Source:   "rubble",
			})
		},
	}

	f := analysis.NewAnalyzerWithRules([]*analysis.Rule{rule}).Analyze("x.rbl", []byte("a = 1"))

	assert.True(t, ran)
	require.Len(t, f.Diagnostics, 1)
	assert.Equal(t, "probe", f.Diagnostics[0].Code)
}

func TestRulesSkippedOnParseError(t *testing.T) {
	t.Parallel()

	rule := &analysis.Rule{
		Name:     "never",
		Doc:      "must not run without a tree",
		Severity: analysis.SeverityHint,
		Run: func(_ *analysis.AnalyzedFile) {
			t.Error("rule ran on a file that failed to parse")
		},
	}

	f := analysis.NewAnalyzerWithRules([]*analysis.Rule{rule}).Analyze("x.rbl", []byte("def"))

	require.Error(t, f.ParseError)
}

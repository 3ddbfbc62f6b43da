package analysis

import (
	"github.com/alecthomas/participle/v2/lexer"

	"rubble"
)

// Analyzer runs syntactic checks on rubble files.
type Analyzer struct {
	rules []*Rule
}

// NewAnalyzer creates an analyzer with the default rules.
func NewAnalyzer() *Analyzer {
	return &Analyzer{rules: DefaultRules()}
}

// NewAnalyzerWithRules creates an analyzer with custom rules.
func NewAnalyzerWithRules(rules []*Rule) *Analyzer {
	return &Analyzer{rules: rules}
}

// Analyze parses and analyzes a rubble file.
func (a *Analyzer) Analyze(path string, content []byte) *AnalyzedFile {
	result := &AnalyzedFile{
		Path:        path,
		Diagnostics: []Diagnostic{},
	}

	program, err := rubble.ParseString(path, string(content))
	if err != nil {
		result.ParseError = err
		result.Diagnostics = append(result.Diagnostics, parseErrorToDiagnostic(err))

		return result
	}

	result.Program = program

	for _, rule := range a.rules {
		rule.Run(result)
	}

	return result
}

// parseErrorToDiagnostic converts a parse or lex error to a diagnostic.
func parseErrorToDiagnostic(err error) Diagnostic {
	span := rubble.Span{}
	msg := err.Error()

	// Lexer and parser errors both carry a position.
	type positionedError interface {
		Position() lexer.Position
	}

	if pe, ok := err.(positionedError); ok { //nolint:errorlint // position probe, not error matching
		pos := pe.Position()
		span = rubble.Span{Start: pos, End: pos}
	}

	type messageError interface {
		Message() string
	}

	if me, ok := err.(messageError); ok { //nolint:errorlint // message probe, not error matching
		msg = me.Message()
	}

	return Diagnostic{
		Span:     span,
		Severity: SeverityError,
		Message:  msg,
		Code:     "parse-error",
		Source:   "rubble",
	}
}

// Package analysis provides syntactic analysis for rubble source files.
package analysis

import (
	"rubble"
)

// AnalyzedFile holds the parse result and diagnostics for one file.
type AnalyzedFile struct {
	// Path is the file path (URI in LSP terms).
	Path string

	// Program is the parsed syntax tree. Nil if parsing failed.
	Program *rubble.Program

	// ParseError holds the parse error if parsing failed.
	ParseError error

	// Diagnostics contains all errors and warnings found during analysis.
	Diagnostics []Diagnostic
}

// Diagnostic is a single finding with a source location.
type Diagnostic struct {
	Span     rubble.Span
	Severity DiagnosticSeverity
	Message  string
	Code     string
	Source   string
}

// DiagnosticSeverity mirrors LSP severities without depending on the
// protocol package.
type DiagnosticSeverity int

// Severity levels.
const (
	SeverityError DiagnosticSeverity = iota
	SeverityWarning
	SeverityInformation
	SeverityHint
)

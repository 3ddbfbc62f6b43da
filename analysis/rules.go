package analysis

import (
	"rubble"
)

// Rule represents a syntactic analysis check.
// Inspired by go/analysis.Analyzer pattern.
type Rule struct {
	// Name is a short identifier for the rule (used in diagnostic codes).
	Name string

	// Doc is a brief description of what the rule checks.
	Doc string

	// Severity is the default severity for diagnostics from this rule.
	Severity DiagnosticSeverity

	// Run executes the rule and appends any diagnostics to the file.
	Run func(f *AnalyzedFile)
}

// DefaultRules returns all built-in analysis rules.
func DefaultRules() []*Rule {
	return []*Rule{
		// Error-level checks.
		duplicateHashKeyRule,

		// Warning-level checks.
		unreachableRescueRule,
		duplicateMethodRule,

		// Hint-level checks.
		emptyRescueRule,
	}
}

// ----------------------------------------------------------------------------
// Rule: duplicate-hash-key
// ----------------------------------------------------------------------------

var duplicateHashKeyRule = &Rule{
	Name:     "duplicate-hash-key",
	Doc:      "Reports hash literals that repeat a label key.",
	Severity: SeverityError,
	Run:      checkDuplicateHashKeys,
}

func checkDuplicateHashKeys(f *AnalyzedFile) {
	if f.Program == nil {
		return
	}

	d := rubble.NewDispatcher()
	d.Register(rubble.KindHashLit, func(n rubble.Node) {
		hash := n.(*rubble.HashLit) //nolint:forcetypeassert // kind-dispatched

		seen := make(map[string]bool, len(hash.Entries))

		for _, entry := range hash.Entries {
			if entry.Key == "" {
				continue
			}

			if seen[entry.Key] {
				f.Diagnostics = append(f.Diagnostics, Diagnostic{
					Span:     entry.Span(),
					Severity: SeverityError,
					Message:  "duplicate hash key: " + entry.Key,
					Code:     "duplicate-hash-key",
					Source:   "rubble",
				})
			}

			seen[entry.Key] = true
		}
	})
	d.Walk(f.Program)
}

// ----------------------------------------------------------------------------
// Rule: unreachable-rescue
// ----------------------------------------------------------------------------

var unreachableRescueRule = &Rule{
	Name:     "unreachable-rescue",
	Doc:      "Reports rescue clauses that follow a bare rescue and can never run.",
	Severity: SeverityWarning,
	Run:      checkUnreachableRescues,
}

func checkUnreachableRescues(f *AnalyzedFile) {
	if f.Program == nil {
		return
	}

	check := func(rescues []*rubble.RescueClause) {
		for i, clause := range rescues {
			if !clause.Bare() || i == len(rescues)-1 {
				continue
			}

			for _, unreachable := range rescues[i+1:] {
				f.Diagnostics = append(f.Diagnostics, Diagnostic{
					Span:     unreachable.Span(),
					Severity: SeverityWarning,
					Message:  "unreachable rescue: an earlier bare rescue already catches StandardError",
					Code:     "unreachable-rescue",
					Source:   "rubble",
				})
			}

			break
		}
	}

	d := rubble.NewDispatcher()
	d.Register(rubble.KindBeginBlock, func(n rubble.Node) {
		check(n.(*rubble.BeginBlock).Rescues) //nolint:forcetypeassert // kind-dispatched
	})
	d.Register(rubble.KindMethodDef, func(n rubble.Node) {
		check(n.(*rubble.MethodDef).Rescues) //nolint:forcetypeassert // kind-dispatched
	})
	d.Walk(f.Program)
}

// ----------------------------------------------------------------------------
// Rule: duplicate-method
// ----------------------------------------------------------------------------

var duplicateMethodRule = &Rule{
	Name:     "duplicate-method",
	Doc:      "Reports methods defined more than once in a file.",
	Severity: SeverityWarning,
	Run:      checkDuplicateMethods,
}

func checkDuplicateMethods(f *AnalyzedFile) {
	if f.Program == nil {
		return
	}

	seen := make(map[string]bool)

	d := rubble.NewDispatcher()
	d.Register(rubble.KindMethodDef, func(n rubble.Node) {
		def := n.(*rubble.MethodDef) //nolint:forcetypeassert // kind-dispatched

		if seen[def.Name] {
			f.Diagnostics = append(f.Diagnostics, Diagnostic{
				Span:     rubble.Span{Start: def.NamePos, End: def.NamePos},
				Severity: SeverityWarning,
				Message:  "method redefined: " + def.Name,
				Code:     "duplicate-method",
				Source:   "rubble",
			})
		}

		seen[def.Name] = true
	})
	d.Walk(f.Program)
}

// ----------------------------------------------------------------------------
// Rule: empty-rescue
// ----------------------------------------------------------------------------

var emptyRescueRule = &Rule{
	Name:     "empty-rescue",
	Doc:      "Reports rescue clauses with no body, which swallow errors silently.",
	Severity: SeverityHint,
	Run:      checkEmptyRescues,
}

func checkEmptyRescues(f *AnalyzedFile) {
	if f.Program == nil {
		return
	}

	d := rubble.NewDispatcher()
	d.Register(rubble.KindRescueClause, func(n rubble.Node) {
		clause := n.(*rubble.RescueClause) //nolint:forcetypeassert // kind-dispatched

		if len(clause.Body) == 0 {
			f.Diagnostics = append(f.Diagnostics, Diagnostic{
				Span:     clause.Span(),
				Severity: SeverityHint,
				Message:  "empty rescue body swallows the error",
				Code:     "empty-rescue",
				Source:   "rubble",
			})
		}
	})
	d.Walk(f.Program)
}

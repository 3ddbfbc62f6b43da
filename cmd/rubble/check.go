package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"rubble/analysis"
)

var errNoRubbleFiles = errors.New("no .rbl files found")

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Parse and analyze rubble scripts",
		ArgsUsage: "[files or directories...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "output diagnostics as JSON",
			},
		},
		Action: runCheck,
	}
}

// checkDiagnostic is the JSON shape of one reported diagnostic.
type checkDiagnostic struct {
	Path     string `json:"path"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Severity string `json:"severity"`
	Code     string `json:"code,omitempty"`
	Message  string `json:"message"`
}

func runCheck(_ context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) == 0 {
		args = []string{"."}
	}

	files, err := collectFiles(args)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return errNoRubbleFiles
	}

	analyzer := analysis.NewAnalyzer()
	styles := stylesFor(os.Stdout)

	var (
		all    []checkDiagnostic
		failed bool
	)

	for _, file := range files {
		data, err := os.ReadFile(file) //#nosec G304 -- paths come from user args
		if err != nil {
			return err
		}

		analyzed := analyzer.Analyze(file, data)

		for _, d := range analyzed.Diagnostics {
			if d.Severity == analysis.SeverityError {
				failed = true
			}

			all = append(all, checkDiagnostic{
				Path:     file,
				Line:     d.Span.Start.Line,
				Column:   d.Span.Start.Column,
				Severity: severityName(d.Severity),
				Code:     d.Code,
				Message:  d.Message,
			})
		}
	}

	if cmd.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		if err := enc.Encode(all); err != nil {
			return err
		}
	} else {
		printDiagnostics(styles, all)
	}

	if failed {
		return cli.Exit("", 1)
	}

	return nil
}

func printDiagnostics(styles *Styles, diags []checkDiagnostic) {
	for _, d := range diags {
		badge := styles.Info.Render(d.Severity)

		switch d.Severity {
		case "error":
			badge = styles.Error.Render(d.Severity)
		case "warning":
			badge = styles.Warning.Render(d.Severity)
		case "hint":
			badge = styles.Hint.Render(d.Severity)
		}

		loc := styles.Path.Render(fmt.Sprintf("%s:%d:%d", d.Path, d.Line, d.Column))
		msg := d.Message

		if d.Code != "" {
			msg += " " + styles.Dim.Render("["+d.Code+"]")
		}

		fmt.Printf("%s: %s: %s\n", loc, badge, msg)
	}
}

func severityName(sev analysis.DiagnosticSeverity) string {
	switch sev {
	case analysis.SeverityError:
		return "error"
	case analysis.SeverityWarning:
		return "warning"
	case analysis.SeverityInformation:
		return "info"
	case analysis.SeverityHint:
		return "hint"
	default:
		return "error"
	}
}

func collectFiles(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}

		if info.IsDir() {
			// Walk directory for .rbl files
			err := filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}

				if !d.IsDir() && strings.HasSuffix(path, ".rbl") {
					files = append(files, path)
				}

				return nil
			})
			if err != nil {
				return nil, err
			}
		} else {
			files = append(files, arg)
		}
	}

	return files, nil
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"rubble"
	"rubble/analysis"
	"rubble/hints"
)

func hintsCommand() *cli.Command {
	return &cli.Command{
		Name:      "hints",
		Usage:     "Print the inlay hints for rubble scripts",
		ArgsUsage: "[files or directories...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "output hints as JSON",
			},
			&cli.IntFlag{
				Name:  "start-line",
				Usage: "first line of the window (1-based, inclusive)",
			},
			&cli.IntFlag{
				Name:  "end-line",
				Usage: "last line of the window (1-based, inclusive)",
			},
			&cli.StringSliceFlag{
				Name:  "enable",
				Usage: "enable a feature by name (overrides config)",
			},
			&cli.StringSliceFlag{
				Name:  "disable",
				Usage: "disable a feature by name (overrides config)",
			},
		},
		Action: runHints,
	}
}

// fileHint is the JSON shape of one computed hint. Positions are 1-based
// for human consumption.
type fileHint struct {
	Path    string `json:"path"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Label   string `json:"label"`
	Tooltip string `json:"tooltip,omitempty"`
}

func runHints(_ context.Context, cmd *cli.Command) error {
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

	rng := analysis.LineRange{
		Start: int(cmd.Int("start-line")),
		End:   int(cmd.Int("end-line")),
	}

	styles := stylesFor(os.Stdout)

	var all []fileHint

	for _, file := range files {
		flags, err := loadFlags(file, cmd)
		if err != nil {
			return err
		}

		computed, err := fileHints(file, rng, flags)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}

		all = append(all, computed...)
	}

	if cmd.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		return enc.Encode(all)
	}

	for _, h := range all {
		loc := styles.Path.Render(fmt.Sprintf("%s:%d:%d", h.Path, h.Line, h.Column))
		line := fmt.Sprintf("%s: %s", loc, styles.Label.Render(h.Label))

		if h.Tooltip != "" {
			line += " " + styles.Dim.Render("("+h.Tooltip+")")
		}

		fmt.Println(line)
	}

	return nil
}

// loadFlags resolves the feature flags for a file: nearest config file,
// falling back to defaults, then CLI overrides on top.
func loadFlags(file string, cmd *cli.Command) (*rubble.Config, error) {
	cfg, err := rubble.LoadConfig(filepath.Dir(file))
	if err != nil {
		if !errors.Is(err, rubble.ErrConfigNotFound) {
			return nil, err
		}

		cfg = rubble.DefaultConfig()
	}

	for _, name := range cmd.StringSlice("enable") {
		cfg.Set(name, true)
	}

	for _, name := range cmd.StringSlice("disable") {
		cfg.Set(name, false)
	}

	return cfg, nil
}

// fileHints parses one file and computes its hints over the given window.
func fileHints(path string, rng analysis.LineRange, flags *rubble.Config) ([]fileHint, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- paths come from user args
	if err != nil {
		return nil, err
	}

	program, err := rubble.ParseString(path, string(data))
	if err != nil {
		return nil, err
	}

	dispatcher := rubble.NewDispatcher()
	collector := hints.New(dispatcher, rng, flags)
	dispatcher.Walk(program)

	computed := collector.Hints()
	result := make([]fileHint, 0, len(computed))

	for _, h := range computed {
		result = append(result, fileHint{
			Path:    path,
			Line:    int(h.Position.Line) + 1,
			Column:  int(h.Position.Character) + 1,
			Label:   h.Label,
			Tooltip: h.Tooltip,
		})
	}

	return result, nil
}

package main

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/thebtf/focusforge/internal/config"
	"github.com/thebtf/focusforge/internal/journal"
	"github.com/thebtf/focusforge/internal/summary"
	"github.com/thebtf/focusforge/internal/taxonomy"
	"github.com/thebtf/focusforge/pkg/models"
)

// computeInput is the document read by compute.
type computeInput struct {
	Analysis *models.AnalysisResult `json:"analysis"`
	Session  models.Session         `json:"session"`
	Events   []models.Event         `json:"events"`
}

func newComputeCmd() *cobra.Command {
	var (
		format       string
		taxonomyPath string
	)

	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Summarize a session read from stdin",
		Long: `compute reads {"session": ..., "events": [...], "analysis": ...} from stdin
and writes the computed summary as JSON or as a markdown journal entry.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "markdown" {
				return fmt.Errorf("unknown format %q (want json or markdown)", format)
			}
			return runCompute(cmd.InOrStdin(), cmd.OutOrStdout(), format, taxonomyPath)
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json or markdown")
	cmd.Flags().StringVar(&taxonomyPath, "taxonomy", "", "Taxonomy YAML file (default: configured or embedded)")
	return cmd
}

func runCompute(in io.Reader, out io.Writer, format, taxonomyPath string) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	var input computeInput
	if err := json.Unmarshal(data, &input); err != nil {
		return fmt.Errorf("decode input: %w", err)
	}
	for i, ev := range input.Events {
		if err := ev.Validate(); err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
	}

	cfg := config.Get()
	if taxonomyPath == "" {
		taxonomyPath = cfg.TaxonomyPath
	}
	tax, err := taxonomy.Load(taxonomyPath)
	if err != nil {
		return err
	}
	engine := summary.NewEngine(tax.WithInternalDomains(cfg.InternalDomains...), engineOptions(cfg))
	sum := engine.Compute(input.Session, input.Events, input.Analysis)

	if format == "markdown" {
		_, err = io.WriteString(out, journal.Render(sum))
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(sum)
}

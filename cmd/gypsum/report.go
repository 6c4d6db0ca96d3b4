package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/agenthands/gypsum/internal/core"
)

var (
	reportAnalysis     string
	reportOut          string
	reportFormats      []string
	reportPropertyName string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render the Damage Diagnosis Report from the analysis artifact",
	Example: `  gypsum report --analysis runs/demo/analytical_reasoning.json --out runs/demo
  gypsum report --analysis runs/demo/analytical_reasoning.json --out runs/demo \
    --format markdown --format pdf --property-name "12 Example Street"`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVar(&reportAnalysis, "analysis", "", "path to analytical_reasoning.json")
	reportCmd.Flags().StringVar(&reportOut, "out", "", "output directory for run artifacts")
	reportCmd.Flags().StringSliceVar(&reportFormats, "format", nil,
		"report formats: markdown|md, text|txt, pdf, xlsx|excel, all (repeatable)")
	reportCmd.Flags().StringVar(&reportPropertyName, "property-name", "", "property name shown on the report")
	_ = reportCmd.MarkFlagRequired("analysis")
	_ = reportCmd.MarkFlagRequired("out")
}

func runReport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := stageInto(reportOut, reportAnalysis, core.AnalysisFile); err != nil {
		return err
	}

	p := core.NewPipeline(cfg, nil, nil)
	res, err := p.Report(cmd.Context(), reportOut, reportPropertyName, reportFormats)
	if err != nil {
		return err
	}

	formats := make([]string, 0, len(res.Files))
	for format := range res.Files {
		formats = append(formats, format)
	}
	slices.Sort(formats)
	for _, format := range formats {
		fmt.Printf("Wrote %s report: %s\n", format, res.Files[format])
	}
	return nil
}

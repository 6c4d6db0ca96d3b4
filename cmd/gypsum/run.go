package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agenthands/gypsum/internal/core"
	"github.com/agenthands/gypsum/internal/llm"
)

var (
	runInspection   string
	runThermal      string
	runOut          string
	runPropertyName string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline from PDFs to report",
	Long: `Run executes all five stages in order against one run directory:
extract, facts, merge, reason, report. Artifacts from each stage are left
on disk, so individual stages can be re-run afterwards.`,
	Example: `  gypsum run --inspection inspection.pdf --thermal thermal.pdf --out runs/demo \
    --property-name "12 Example Street"`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runInspection, "inspection", "", "visual inspection report PDF")
	runCmd.Flags().StringVar(&runThermal, "thermal", "", "thermal imaging report PDF")
	runCmd.Flags().StringVar(&runOut, "out", "", "output directory for run artifacts")
	runCmd.Flags().StringVar(&runPropertyName, "property-name", "", "property name shown on the report")
	_ = runCmd.MarkFlagRequired("inspection")
	_ = runCmd.MarkFlagRequired("thermal")
	_ = runCmd.MarkFlagRequired("out")
}

func runRun(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	llmClient, err := llm.NewClient(cmd.Context(), cfg.LLM)
	if err != nil {
		return err
	}

	p := core.NewPipeline(cfg, llmClient, nil)
	p.Progress = func(stage, status, detail string) {
		if detail != "" {
			fmt.Printf("[%s] %s: %s\n", stage, status, detail)
			return
		}
		fmt.Printf("[%s] %s\n", stage, status)
	}

	res, err := p.Run(cmd.Context(), runOut, runInspection, runThermal, runPropertyName, nil)
	if err != nil {
		return err
	}

	fmt.Printf("Report written to %s (%d areas, %d conflicts)\n",
		runOut, res.Merge.Areas, res.Merge.Conflicts)
	return nil
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agenthands/gypsum/internal/core"
)

var (
	mergeInspectionFacts string
	mergeThermalFacts    string
	mergeOut             string
	mergeThreshold       float64
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge facts by area and detect cross-source conflicts",
	Long: `Merge groups inspection and thermal facts by normalized area name,
deduplicates near-identical statements, and flags contradictions between
the two sources. This stage is fully deterministic: no LLM is involved,
and conflicts are surfaced, never resolved.`,
	Example: `  gypsum merge --inspection-facts runs/demo/inspection_facts.json \
    --thermal-facts runs/demo/thermal_facts.json --out runs/demo`,
	RunE: runMerge,
}

func init() {
	rootCmd.AddCommand(mergeCmd)

	mergeCmd.Flags().StringVar(&mergeInspectionFacts, "inspection-facts", "", "path to inspection_facts.json")
	mergeCmd.Flags().StringVar(&mergeThermalFacts, "thermal-facts", "", "path to thermal_facts.json")
	mergeCmd.Flags().StringVar(&mergeOut, "out", "", "output directory for run artifacts")
	mergeCmd.Flags().Float64Var(&mergeThreshold, "similarity-threshold", 0.92, "dedupe similarity threshold (0..1)")
	_ = mergeCmd.MarkFlagRequired("inspection-facts")
	_ = mergeCmd.MarkFlagRequired("thermal-facts")
	_ = mergeCmd.MarkFlagRequired("out")
}

func runMerge(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("similarity-threshold") {
		cfg.Merge.SimilarityThreshold = mergeThreshold
	}

	if err := stageInto(mergeOut, mergeInspectionFacts, core.InspectionFactsFile); err != nil {
		return err
	}
	if err := stageInto(mergeOut, mergeThermalFacts, core.ThermalFactsFile); err != nil {
		return err
	}

	p := core.NewPipeline(cfg, nil, nil)
	res, err := p.Merge(cmd.Context(), mergeOut)
	if err != nil {
		return err
	}

	fmt.Printf("Merged %d areas with %d conflicts into %s\n", res.Areas, res.Conflicts, mergeOut)
	return nil
}

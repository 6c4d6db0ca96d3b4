package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agenthands/gypsum/internal/core"
	"github.com/agenthands/gypsum/internal/llm"
)

var (
	reasonMerged string
	reasonOut    string
)

var reasonCmd = &cobra.Command{
	Use:     "reason",
	Short:   "Analyze merged area data for root cause and severity with the LLM",
	Example: `  gypsum reason --merged runs/demo/merged_area_data.json --out runs/demo`,
	RunE:    runReason,
}

func init() {
	rootCmd.AddCommand(reasonCmd)

	reasonCmd.Flags().StringVar(&reasonMerged, "merged", "", "path to merged_area_data.json")
	reasonCmd.Flags().StringVar(&reasonOut, "out", "", "output directory for run artifacts")
	_ = reasonCmd.MarkFlagRequired("merged")
	_ = reasonCmd.MarkFlagRequired("out")
}

func runReason(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	llmClient, err := llm.NewClient(cmd.Context(), cfg.LLM)
	if err != nil {
		return err
	}
	if err := stageInto(reasonOut, reasonMerged, core.MergedFile); err != nil {
		return err
	}

	p := core.NewPipeline(cfg, llmClient, nil)
	res, err := p.Reason(cmd.Context(), reasonOut)
	if err != nil {
		return err
	}

	fmt.Printf("Analyzed %d areas into %s\n", res.AreasAnalyzed, reasonOut)
	return nil
}

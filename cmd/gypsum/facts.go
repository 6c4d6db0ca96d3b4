package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agenthands/gypsum/internal/core"
	"github.com/agenthands/gypsum/internal/llm"
)

var (
	factsInput string
	factsOut   string
)

var factsCmd = &cobra.Command{
	Use:     "facts",
	Short:   "Extract structured facts from the page content with the LLM",
	Example: `  gypsum facts --input runs/demo/input_layer_output.json --out runs/demo`,
	RunE:    runFacts,
}

func init() {
	rootCmd.AddCommand(factsCmd)

	factsCmd.Flags().StringVar(&factsInput, "input", "", "path to input_layer_output.json")
	factsCmd.Flags().StringVar(&factsOut, "out", "", "output directory for run artifacts")
	_ = factsCmd.MarkFlagRequired("input")
	_ = factsCmd.MarkFlagRequired("out")
}

func runFacts(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	llmClient, err := llm.NewClient(cmd.Context(), cfg.LLM)
	if err != nil {
		return err
	}
	if err := stageInto(factsOut, factsInput, core.InputFile); err != nil {
		return err
	}

	p := core.NewPipeline(cfg, llmClient, nil)
	res, err := p.Facts(cmd.Context(), factsOut)
	if err != nil {
		return err
	}

	fmt.Printf("Extracted %d inspection facts and %d thermal facts into %s\n",
		res.InspectionFacts, res.ThermalFacts, factsOut)
	return nil
}

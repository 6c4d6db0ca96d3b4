// Package main implements the gypsum CLI. Every pipeline stage is a
// subcommand, plus serve for the web UI and run for the full pipeline.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/agenthands/gypsum/internal/config"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "gypsum",
	Short: "Damage diagnosis reports from inspection and thermal PDFs",
	Long: `Gypsum turns a visual inspection report and a thermal imaging report
into a structured Damage Diagnosis Report.

The pipeline runs five stages, each writing a JSON artifact into the run
directory: extract (PDF text, page images, OCR), facts (LLM fact
extraction), merge (deterministic area merge and conflict detection),
reason (LLM root cause and severity analysis), and report (markdown,
text, PDF, XLSX). Each stage reads its predecessor's artifact, so stages
can be re-run independently.`,
	SilenceUsage: true,
}

// Execute runs the root command with signal-aware context cancellation.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initEnv)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"path to config.toml (falls back to CONFIG_PATH, then config/config.toml)")
}

// initEnv installs the JSON logger and loads .env before any command runs.
func initEnv() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	if err := godotenv.Load(); err != nil {
		slog.Debug("cli.env.not_loaded", "error", err)
	}
}

// loadConfig resolves configuration from the --config flag, the
// CONFIG_PATH env var, or config/config.toml when present, falling back
// to built-in defaults. Environment overrides are applied on top.
func loadConfig() (*config.Config, error) {
	path := configFile
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		if _, err := os.Stat("config/config.toml"); err == nil {
			path = "config/config.toml"
		}
	}

	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// stageInto places a predecessor artifact into the stage directory under
// its canonical name, so the stage can find it there.
func stageInto(dir, src, name string) error {
	dst := filepath.Join(dir, name)
	same, err := samePath(src, dst)
	if err != nil {
		return err
	}
	if same {
		return nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", dst, err)
	}
	return nil
}

func samePath(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	return absA == absB, nil
}

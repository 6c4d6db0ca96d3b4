package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/agenthands/gypsum/internal/llm"
	"github.com/agenthands/gypsum/internal/server"
	"github.com/agenthands/gypsum/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web UI and run API",
	Long: `Serve starts the gin server with the embedded web UI, the run API,
and the SQLite run registry. The listen port comes from the PORT
environment variable (default 8080).`,
	Run: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	llmClient, err := llm.NewClient(cmd.Context(), cfg.LLM)
	if err != nil {
		log.Fatalf("Failed to initialize LLM client: %v", err)
	}

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		log.Fatalf("Failed to open run registry: %v", err)
	}
	defer st.Close()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := server.NewServer(cfg, llmClient, st, slog.Default())
	r := srv.SetupRouter()

	log.Printf("Starting server on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}

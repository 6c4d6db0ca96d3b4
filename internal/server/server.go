// Package server exposes the report pipeline over HTTP. Each run owns a
// directory under the data dir holding the uploaded PDFs and every stage
// artifact, and a registry row tracking stage and status. Stages can be
// driven one at a time or as a single background pipeline run.
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agenthands/gypsum/internal/config"
	"github.com/agenthands/gypsum/internal/core"
	"github.com/agenthands/gypsum/internal/llm"
	"github.com/agenthands/gypsum/internal/store"
)

// Uploaded source documents keep fixed names inside the run directory, so
// stage handlers can locate them without extra bookkeeping.
const (
	InspectionUpload = "inspection.pdf"
	ThermalUpload    = "thermal.pdf"
)

type Server struct {
	Config *config.Config
	Store  *store.Store

	// NewPipeline builds the pipeline used to serve one request, with its
	// progress hook bound to that run's event log. Tests swap this in to
	// inject fake ingestion and LLM clients.
	NewPipeline func(progress core.ProgressFunc) *core.Pipeline

	log *slog.Logger
}

func NewServer(cfg *config.Config, llmClient llm.LLMClient, st *store.Store, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		Config: cfg,
		Store:  st,
		log:    log,
	}
	s.NewPipeline = func(progress core.ProgressFunc) *core.Pipeline {
		p := core.NewPipeline(cfg, llmClient, log)
		p.Progress = progress
		return p
	}
	return s
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.GET("/", s.Index)

	api := r.Group("/api")
	api.POST("/runs", s.CreateRun)
	api.GET("/runs", s.ListRuns)
	api.GET("/runs/:id", s.GetRun)
	api.POST("/runs/:id/extract", s.StageHandler(core.StageExtract))
	api.POST("/runs/:id/facts", s.StageHandler(core.StageFacts))
	api.POST("/runs/:id/merge", s.StageHandler(core.StageMerge))
	api.POST("/runs/:id/reason", s.StageHandler(core.StageReason))
	api.POST("/runs/:id/report", s.StageHandler(core.StageReport))
	api.POST("/runs/:id/pipeline", s.RunPipeline)
	api.GET("/runs/:id/artifacts/*path", s.GetArtifact)

	return r
}

// CreateRun accepts a multipart upload with the two source PDFs and an
// optional property name, provisions the run directory, and registers the
// run.
func (s *Server) CreateRun(c *gin.Context) {
	inspection, err := c.FormFile("inspection")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing inspection PDF"})
		return
	}
	thermal, err := c.FormFile("thermal")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing thermal PDF"})
		return
	}

	id := uuid.New().String()
	rootDir := filepath.Join(s.Config.Server.DataDir, "runs", id)
	if err := os.MkdirAll(rootDir, 0o755); err != nil {
		s.log.Error("server.run.mkdir_failed", "run", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create run directory"})
		return
	}
	if err := c.SaveUploadedFile(inspection, filepath.Join(rootDir, InspectionUpload)); err != nil {
		s.log.Error("server.run.save_failed", "run", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store inspection PDF"})
		return
	}
	if err := c.SaveUploadedFile(thermal, filepath.Join(rootDir, ThermalUpload)); err != nil {
		s.log.Error("server.run.save_failed", "run", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store thermal PDF"})
		return
	}

	run := &store.Run{
		ID:           id,
		PropertyName: c.PostForm("property_name"),
		RootDir:      rootDir,
	}
	if run.PropertyName == "" {
		run.PropertyName = s.Config.Report.PropertyName
	}
	if err := s.Store.CreateRun(c.Request.Context(), run); err != nil {
		s.log.Error("server.run.create_failed", "run", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register run"})
		return
	}

	c.JSON(http.StatusCreated, run)
}

func (s *Server) ListRuns(c *gin.Context) {
	runs, err := s.Store.ListRuns(c.Request.Context())
	if err != nil {
		s.log.Error("server.runs.list_failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list runs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// GetRun reports the run row, its full event log, and the files currently
// present in the run directory. The UI polls this endpoint.
func (s *Server) GetRun(c *gin.Context) {
	run := s.loadRun(c)
	if run == nil {
		return
	}
	events, err := s.Store.ListEvents(c.Request.Context(), run.ID)
	if err != nil {
		s.log.Error("server.events.list_failed", "run", run.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list run events"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"run":       run,
		"events":    events,
		"artifacts": listArtifacts(run.RootDir),
	})
}

// StageHandler runs a single pipeline stage synchronously against the
// run directory and returns its result.
func (s *Server) StageHandler(stage string) gin.HandlerFunc {
	return func(c *gin.Context) {
		run := s.loadRun(c)
		if run == nil {
			return
		}
		result, err := s.runStage(c.Request.Context(), run, stage)
		if err != nil {
			s.log.Error("server.stage.failed", "run", run.ID, "stage", stage, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"run_id": run.ID, "stage": stage, "result": result})
	}
}

// RunPipeline starts the full pipeline in the background and returns
// immediately. Clients poll GET /api/runs/:id for progress.
func (s *Server) RunPipeline(c *gin.Context) {
	run := s.loadRun(c)
	if run == nil {
		return
	}
	if err := s.Store.SetRunStage(c.Request.Context(), run.ID, core.StageExtract, store.StatusRunning); err != nil {
		s.log.Error("server.run.update_failed", "run", run.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update run"})
		return
	}

	go s.executePipeline(run)

	c.JSON(http.StatusAccepted, gin.H{"run_id": run.ID, "status": store.StatusRunning})
}

// GetArtifact serves one file from the run directory. The requested path
// is confined to that directory, so ".." cannot escape it.
func (s *Server) GetArtifact(c *gin.Context) {
	run := s.loadRun(c)
	if run == nil {
		return
	}

	rel := strings.TrimPrefix(c.Param("path"), "/")
	clean := filepath.Clean(filepath.FromSlash(rel))
	if clean == "." || clean == ".." || filepath.IsAbs(clean) ||
		strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid artifact path"})
		return
	}

	full := filepath.Join(run.RootDir, clean)
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		c.JSON(http.StatusNotFound, gin.H{"error": "Artifact not found"})
		return
	}
	c.File(full)
}

func (s *Server) loadRun(c *gin.Context) *store.Run {
	run, err := s.Store.GetRun(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Run not found"})
		return nil
	}
	if err != nil {
		s.log.Error("server.run.load_failed", "run", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load run"})
		return nil
	}
	return run
}

func (s *Server) runStage(ctx context.Context, run *store.Run, stage string) (any, error) {
	p := s.NewPipeline(s.recordProgress(run.ID))

	var result any
	var err error
	switch stage {
	case core.StageExtract:
		result, err = p.Extract(ctx, run.RootDir,
			filepath.Join(run.RootDir, InspectionUpload),
			filepath.Join(run.RootDir, ThermalUpload))
	case core.StageFacts:
		result, err = p.Facts(ctx, run.RootDir)
	case core.StageMerge:
		result, err = p.Merge(ctx, run.RootDir)
	case core.StageReason:
		result, err = p.Reason(ctx, run.RootDir)
	case core.StageReport:
		result, err = p.Report(ctx, run.RootDir, run.PropertyName, s.Config.Report.Formats)
	default:
		err = fmt.Errorf("unknown stage %q", stage)
	}

	// Registry writes use a fresh context so a canceled request still
	// records the outcome.
	if err != nil {
		if ferr := s.Store.FinishRun(context.Background(), run.ID, store.StatusFailed, err.Error()); ferr != nil {
			s.log.Warn("server.run.update_failed", "run", run.ID, "error", ferr)
		}
		return nil, err
	}
	if uerr := s.Store.SetRunStage(context.Background(), run.ID, stage, store.StatusDone); uerr != nil {
		s.log.Warn("server.run.update_failed", "run", run.ID, "error", uerr)
	}
	return result, nil
}

func (s *Server) executePipeline(run *store.Run) {
	ctx := context.Background()
	p := s.NewPipeline(s.recordProgress(run.ID))

	_, err := p.Run(ctx, run.RootDir,
		filepath.Join(run.RootDir, InspectionUpload),
		filepath.Join(run.RootDir, ThermalUpload),
		run.PropertyName, s.Config.Report.Formats)
	if err != nil {
		s.log.Error("server.pipeline.failed", "run", run.ID, "error", err)
		if ferr := s.Store.FinishRun(ctx, run.ID, store.StatusFailed, err.Error()); ferr != nil {
			s.log.Warn("server.run.update_failed", "run", run.ID, "error", ferr)
		}
		return
	}
	if ferr := s.Store.FinishRun(ctx, run.ID, store.StatusDone, ""); ferr != nil {
		s.log.Warn("server.run.update_failed", "run", run.ID, "error", ferr)
	}
}

// recordProgress mirrors pipeline progress into the registry: every
// notification lands in the event log, and "running" transitions update
// the run's current stage.
func (s *Server) recordProgress(runID string) core.ProgressFunc {
	return func(stage, status, detail string) {
		ctx := context.Background()
		if status == core.ProgressRunning {
			if err := s.Store.SetRunStage(ctx, runID, stage, store.StatusRunning); err != nil {
				s.log.Warn("server.run.update_failed", "run", runID, "error", err)
			}
		}
		ev := &store.RunEvent{RunID: runID, Stage: stage, Status: status, Detail: detail}
		if err := s.Store.AppendEvent(ctx, ev); err != nil {
			s.log.Warn("server.event.append_failed", "run", runID, "error", err)
		}
	}
}

// listArtifacts returns run-relative paths of every file below the run
// directory, sorted for stable output.
func listArtifacts(rootDir string) []string {
	paths := []string{}
	filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		rel, rerr := filepath.Rel(rootDir, path)
		if rerr != nil {
			return nil
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	sort.Strings(paths)
	return paths
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"gopkg.in/yaml.v3"

	"github.com/heimdex/reeldate/internal/catalog"
	"github.com/heimdex/reeldate/internal/config"
	"github.com/heimdex/reeldate/internal/discrepancy"
	"github.com/heimdex/reeldate/internal/logging"
	"github.com/heimdex/reeldate/internal/pipeline"
)

const maxOptionsBytes = 64 * 1024

func NewRouter(cfg ServerConfig) *chi.Mux {
	cfg.Logger = logging.OrDiscard(cfg.Logger)
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(LoopbackGuard())
	r.Use(CORSAllowlist())

	r.Get("/health", healthHandler(cfg))

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Repository, cfg.Logger))

		r.Get("/status", statusHandler(cfg))
		r.Get("/clips", listClipsHandler(cfg))
		r.Get("/bins", listBinsHandler(cfg))
		r.Get("/prefixes", prefixesHandler(cfg))
		r.Post("/import", importHandler(cfg))
		r.Get("/project", getProjectHandler(cfg))
		r.Put("/project", putProjectHandler(cfg))
		r.Post("/stamp", operationHandler(cfg, catalog.RunOpStamp))
		r.Post("/restore", operationHandler(cfg, catalog.RunOpRestore))
		r.Post("/organize", operationHandler(cfg, catalog.RunOpOrganize))
		r.Post("/analyze", analyzeHandler(cfg))
		r.Get("/runs", listRunsHandler(cfg))
		r.Get("/runs/{id}", getRunHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: cfg.Version,
			UptimeS: uptime,
		})
	}
}

func statusHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		count, err := cfg.CatalogService.CountClips(ctx)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to count clips", "INTERNAL_ERROR")
			return
		}
		project, err := cfg.CatalogService.ProjectSettings(ctx)
		if err != nil {
			cfg.Logger.Warn("project settings unreadable", "error", err)
		}

		resp := StatusResponse{ClipsCount: count, Project: project}

		runs, _ := cfg.CatalogService.ListRuns(ctx, 10)
		if len(runs) > 0 {
			last := RunToResponse(runs[0])
			resp.LastRun = &last
		}
		for _, run := range runs {
			if run.Status == catalog.RunStatusFailed {
				resp.LastError = run.Error
				break
			}
		}

		WriteJSON(w, http.StatusOK, resp)
	}
}

func listClipsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clips, err := cfg.CatalogService.ListClips(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list clips", "INTERNAL_ERROR")
			return
		}
		if clips == nil {
			clips = []catalog.ClipDetail{}
		}
		WriteJSON(w, http.StatusOK, ClipsResponse{Clips: clips})
	}
}

func listBinsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bins, err := cfg.CatalogService.Bins(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list bins", "INTERNAL_ERROR")
			return
		}
		WriteJSON(w, http.StatusOK, BinsResponse{Bins: bins})
	}
}

func prefixesHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runner, ok := newRunner(w, cfg, cfg.Options)
		if !ok {
			return
		}
		prefixes, err := runner.Prefixes(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		all := append([]string{config.AllPrefixes}, prefixes...)
		WriteJSON(w, http.StatusOK, PrefixesResponse{Prefixes: all})
	}
}

func importHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ImportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		if req.Path == "" {
			WriteError(w, http.StatusBadRequest, "path is required", "BAD_REQUEST")
			return
		}

		var result catalog.ImportResult
		run, err := cfg.CatalogService.Track(r.Context(), catalog.RunOpImport, false, func(ctx context.Context) (any, error) {
			var err error
			result, err = cfg.CatalogService.Import(ctx, req.Path)
			return result, err
		})
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		WriteJSON(w, http.StatusOK, ImportResponse{RunID: run.ID, ImportResult: result})
	}
}

func getProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		settings, err := cfg.CatalogService.ProjectSettings(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		WriteJSON(w, http.StatusOK, settings)
	}
}

func putProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req catalog.ProjectSettings
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if err := cfg.CatalogService.SetProjectSettings(r.Context(), req); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}
		WriteJSON(w, http.StatusOK, req)
	}
}

// operation runs one pipeline operation and returns its stats and summary.
type operation func(ctx context.Context, runner *pipeline.Runner) (any, string, error)

var operations = map[string]operation{
	catalog.RunOpStamp: func(ctx context.Context, runner *pipeline.Runner) (any, string, error) {
		stats, err := runner.Stamp(ctx)
		if stats == nil {
			return nil, "", err
		}
		return stats, stats.StampSummary(), err
	},
	catalog.RunOpRestore: func(ctx context.Context, runner *pipeline.Runner) (any, string, error) {
		stats, err := runner.Restore(ctx)
		if stats == nil {
			return nil, "", err
		}
		return stats, stats.RestoreSummary(), err
	},
	catalog.RunOpOrganize: func(ctx context.Context, runner *pipeline.Runner) (any, string, error) {
		stats, err := runner.Organize(ctx)
		if stats == nil {
			return nil, "", err
		}
		return stats, stats.Summary(), err
	},
}

func operationHandler(cfg ServerConfig, op string) http.HandlerFunc {
	exec := operations[op]
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := decodeOptions(r, cfg.Options)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "invalid options: "+err.Error(), "BAD_REQUEST")
			return
		}
		runner, ok := newRunner(w, cfg, opts)
		if !ok {
			return
		}

		var (
			stats   any
			summary string
		)
		run, err := cfg.CatalogService.Track(r.Context(), op, opts.DryRun, func(ctx context.Context) (any, error) {
			var err error
			stats, summary, err = exec(ctx, runner)
			return stats, err
		})
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}

		WriteJSON(w, http.StatusOK, OperationResponse{RunID: run.ID, Stats: stats, Summary: summary})
	}
}

func analyzeHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := decodeOptions(r, cfg.Options)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "invalid options: "+err.Error(), "BAD_REQUEST")
			return
		}
		runner, ok := newRunner(w, cfg, opts)
		if !ok {
			return
		}

		var resp AnalysisResponse
		run, err := cfg.CatalogService.Track(r.Context(), catalog.RunOpAnalyze, true, func(ctx context.Context) (any, error) {
			reports, err := runner.Analyze(ctx)
			if err != nil {
				return nil, err
			}
			var text bytes.Buffer
			if err := discrepancy.Render(&text, reports); err != nil {
				return nil, err
			}
			resp.Text = text.String()
			resp.Reports = make([]ReportResponse, len(reports))
			for i, rep := range reports {
				resp.Reports[i] = ReportToResponse(rep)
			}
			return resp.Reports, nil
		})
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}

		resp.RunID = run.ID
		WriteJSON(w, http.StatusOK, resp)
	}
}

func listRunsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runs, err := cfg.CatalogService.ListRuns(r.Context(), 50)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list runs", "INTERNAL_ERROR")
			return
		}

		resp := RunsResponse{Runs: make([]RunResponse, len(runs))}
		for i, run := range runs {
			resp.Runs[i] = RunToResponse(run)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func getRunHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			WriteError(w, http.StatusBadRequest, "run id required", "BAD_REQUEST")
			return
		}

		run, err := cfg.CatalogService.GetRun(r.Context(), id)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		if run == nil {
			WriteError(w, http.StatusNotFound, "run not found", "NOT_FOUND")
			return
		}

		WriteJSON(w, http.StatusOK, RunToResponse(run))
	}
}

// decodeOptions overlays the request body on base. The body uses the
// options file's field names; JSON is accepted since it is valid YAML.
func decodeOptions(r *http.Request, base config.Options) (config.Options, error) {
	opts := base
	if r.Body == nil {
		return opts, nil
	}
	if err := yaml.NewDecoder(io.LimitReader(r.Body, maxOptionsBytes)).Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
		return base, err
	}
	return opts, nil
}

// newRunner builds a runner and writes the error response when it cannot.
func newRunner(w http.ResponseWriter, cfg ServerConfig, opts config.Options) (*pipeline.Runner, bool) {
	runner, err := pipeline.NewRunner(cfg.Catalog, cfg.Stater, opts, cfg.Logger)
	switch {
	case errors.Is(err, pipeline.ErrNoCatalog):
		WriteError(w, http.StatusServiceUnavailable, err.Error(), "CATALOG_UNAVAILABLE")
		return nil, false
	case err != nil:
		WriteError(w, http.StatusBadRequest, err.Error(), "INVALID_OPTIONS")
		return nil, false
	}
	return runner, true
}

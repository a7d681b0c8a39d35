package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/lead-research-agent/internal/config"
	"github.com/kirillkom/lead-research-agent/internal/core/domain"
	"github.com/kirillkom/lead-research-agent/internal/core/ports"
	"github.com/kirillkom/lead-research-agent/internal/observability/metrics"
)

const serviceName = "api"

type Router struct {
	cfg        config.Config
	researcher ports.Researcher
	scheduler  ports.RunScheduler
	runs       ports.RunRepository
	exporter   ports.TableExporter
	metrics    *metrics.HTTPServerMetrics
}

// NewRouter wires the HTTP surface. The scheduler may be nil when no queue is
// configured; the async endpoint then reports the feature as unavailable.
func NewRouter(
	cfg config.Config,
	researcher ports.Researcher,
	scheduler ports.RunScheduler,
	runs ports.RunRepository,
	exporter ports.TableExporter,
	serverMetrics *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		cfg:        cfg,
		researcher: researcher,
		scheduler:  scheduler,
		runs:       runs,
		exporter:   exporter,
		metrics:    serverMetrics,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/research/companies", rt.researchCompanies)
	mux.HandleFunc("/v1/research/people", rt.researchPeople)
	mux.HandleFunc("/v1/research/jobs", rt.scheduleJob)
	mux.HandleFunc("/v1/research/runs", rt.listRuns)
	mux.HandleFunc("/v1/research/runs/", rt.runSubresource)
	mux.HandleFunc("/v1/openapi.json", rt.openapiDocument)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	if rt.cfg.APIMaxInFlightRequests > 0 {
		handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlightRequests, 50*time.Millisecond)
	}
	if rt.cfg.APIRateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	persistence := "memory"
	if rt.cfg.PostgresDSN != "" {
		persistence = "postgres"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": serviceName,
		"capabilities": map[string]any{
			"strategy_generation": rt.cfg.ChatAPIKey != "",
			"search":              rt.cfg.SerperAPIKey != "",
			"persistence":         persistence,
			"async_jobs":          rt.scheduler != nil,
		},
	})
}

func (rt *Router) researchCompanies(w http.ResponseWriter, r *http.Request) {
	rt.research(w, r, domain.KindCompanies)
}

func (rt *Router) researchPeople(w http.ResponseWriter, r *http.Request) {
	rt.research(w, r, domain.KindPeople)
}

func (rt *Router) research(w http.ResponseWriter, r *http.Request, kind domain.ResearchKind) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	start := time.Now()
	aggregate, err := rt.researcher.Research(r.Context(), kind, req.Query)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordResearchRun(serviceName, string(kind), "success", aggregate.TotalFound, time.Since(start))
	}
	writeJSON(w, http.StatusOK, aggregate)
}

func (rt *Router) scheduleJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if rt.scheduler == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "async research jobs are not configured"})
		return
	}

	var req struct {
		Kind  string `json:"kind"`
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	run, err := rt.scheduler.Schedule(r.Context(), domain.ResearchKind(req.Kind), req.Query)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, run)
}

func (rt *Router) listRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	runs, err := rt.runs.List(r.Context(), rt.cfg.RunListLimit)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	if runs == nil {
		runs = []*domain.ResearchRun{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs, "total": len(runs)})
}

func (rt *Router) runSubresource(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/v1/research/runs/")
	if rest == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "run id is required"})
		return
	}
	if id, ok := strings.CutSuffix(rest, "/export"); ok {
		rt.exportRun(w, r, id)
		return
	}
	rt.getRun(w, r, rest)
}

func (rt *Router) getRun(w http.ResponseWriter, r *http.Request, id string) {
	run, err := rt.runs.GetByID(r.Context(), id)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (rt *Router) exportRun(w http.ResponseWriter, r *http.Request, id string) {
	run, err := rt.runs.GetByID(r.Context(), id)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	if run.Result == nil || run.Result.Table == nil {
		if rt.metrics != nil {
			rt.metrics.RecordExport(serviceName, "empty")
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "run has no exportable results"})
		return
	}

	data, err := rt.exporter.Export(run.Result.Table)
	if err != nil {
		if rt.metrics != nil {
			rt.metrics.RecordExport(serviceName, "error")
		}
		rt.writeError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordExport(serviceName, "success")
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="research-run-`+id+`.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (rt *Router) writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

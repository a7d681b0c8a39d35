package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kirillkom/lead-research-agent/internal/config"
	"github.com/kirillkom/lead-research-agent/internal/core/domain"
)

type fakeResearcher struct {
	err       error
	lastKind  domain.ResearchKind
	lastQuery string
}

func (f *fakeResearcher) Research(_ context.Context, kind domain.ResearchKind, query string) (*domain.ResultAggregate, error) {
	f.lastKind = kind
	f.lastQuery = query
	if f.err != nil {
		return nil, f.err
	}
	return &domain.ResultAggregate{
		Kind:       kind,
		Entities:   []*domain.Entity{{Name: "Acme", Confidence: 80}},
		TotalFound: 1,
		Summary:    "Found 1 results using 2 search strategies",
	}, nil
}

type fakeScheduler struct {
	err error
}

func (f *fakeScheduler) Schedule(_ context.Context, kind domain.ResearchKind, query string) (*domain.ResearchRun, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.ResearchRun{
		ID:        "run-1",
		Kind:      kind,
		Query:     query,
		Status:    domain.RunPending,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}, nil
}

type fakeRunRepo struct {
	runs map[string]*domain.ResearchRun
}

func (f *fakeRunRepo) Create(context.Context, *domain.ResearchRun) error { return nil }

func (f *fakeRunRepo) GetByID(_ context.Context, id string) (*domain.ResearchRun, error) {
	run, ok := f.runs[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrRunNotFound, "fakeRunRepo.GetByID", errors.New(id))
	}
	return run, nil
}

func (f *fakeRunRepo) List(context.Context, int) ([]*domain.ResearchRun, error) {
	out := make([]*domain.ResearchRun, 0, len(f.runs))
	for _, run := range f.runs {
		out = append(out, run)
	}
	return out, nil
}

func (f *fakeRunRepo) SaveResult(context.Context, string, domain.RunStatus, *domain.ResultAggregate, string) error {
	return nil
}

type fakeExporter struct {
	err error
}

func (f *fakeExporter) Export(*domain.Table) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("PK\x03\x04workbook"), nil
}

type testDeps struct {
	researcher *fakeResearcher
	scheduler  *fakeScheduler
	repo       *fakeRunRepo
	exporter   *fakeExporter
}

func newTestDeps() *testDeps {
	return &testDeps{
		researcher: &fakeResearcher{},
		scheduler:  &fakeScheduler{},
		repo:       &fakeRunRepo{runs: map[string]*domain.ResearchRun{}},
		exporter:   &fakeExporter{},
	}
}

func (d *testDeps) handler(cfg config.Config) http.Handler {
	return NewRouter(cfg, d.researcher, d.scheduler, d.repo, d.exporter, nil).Handler()
}

func newTestHandler(cfg config.Config) http.Handler {
	return newTestDeps().handler(cfg)
}

func TestHealthzReturnsOK(t *testing.T) {
	handler := newTestHandler(config.Config{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if res.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected request id header to be set")
	}

	var resp struct {
		Status       string         `json:"status"`
		Capabilities map[string]any `json:"capabilities"`
	}
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode health response: %v", err)
	}
	if resp.Status != "ok" {
		t.Fatalf("expected ok status, got %q", resp.Status)
	}
	if resp.Capabilities["persistence"] != "memory" {
		t.Fatalf("expected memory persistence capability, got %v", resp.Capabilities["persistence"])
	}
}

func TestResearchCompaniesReturnsAggregate(t *testing.T) {
	deps := newTestDeps()
	handler := deps.handler(config.Config{})

	body := bytes.NewBufferString(`{"query": "find saas companies using intercom"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/research/companies", body)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if deps.researcher.lastKind != domain.KindCompanies {
		t.Fatalf("expected companies kind, got %q", deps.researcher.lastKind)
	}
	if deps.researcher.lastQuery != "find saas companies using intercom" {
		t.Fatalf("unexpected query forwarded: %q", deps.researcher.lastQuery)
	}

	var aggregate domain.ResultAggregate
	if err := json.NewDecoder(res.Body).Decode(&aggregate); err != nil {
		t.Fatalf("decode aggregate: %v", err)
	}
	if aggregate.TotalFound != 1 {
		t.Fatalf("expected total_found 1, got %d", aggregate.TotalFound)
	}
}

func TestResearchPeopleMapsErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid input", domain.WrapError(domain.ErrInvalidInput, "research", errors.New("empty query")), http.StatusBadRequest},
		{"temporary", domain.WrapError(domain.ErrTemporary, "research", errors.New("backend down")), http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := newTestDeps()
			deps.researcher.err = tt.err
			handler := deps.handler(config.Config{})

			req := httptest.NewRequest(http.MethodPost, "/v1/research/people", bytes.NewBufferString(`{"query": "qa people"}`))
			res := httptest.NewRecorder()
			handler.ServeHTTP(res, req)

			if res.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, res.Code)
			}
			var resp map[string]string
			if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if resp["error"] == "" {
				t.Fatalf("expected error message in body")
			}
		})
	}
}

func TestResearchRejectsInvalidJSONAndMethod(t *testing.T) {
	handler := newTestHandler(config.Config{})

	req := httptest.NewRequest(http.MethodPost, "/v1/research/companies", strings.NewReader("{not json"))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid json, got %d", res.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/research/companies", nil)
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for GET, got %d", res.Code)
	}
}

func TestScheduleJobReturnsAcceptedRun(t *testing.T) {
	handler := newTestHandler(config.Config{})

	body := bytes.NewBufferString(`{"kind": "people", "query": "find qa specialists"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/research/jobs", body)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", res.Code, res.Body.String())
	}

	var run domain.ResearchRun
	if err := json.NewDecoder(res.Body).Decode(&run); err != nil {
		t.Fatalf("decode run: %v", err)
	}
	if run.ID == "" || run.Status != domain.RunPending {
		t.Fatalf("expected pending run with id, got %+v", run)
	}
}

func TestScheduleJobWithoutSchedulerReturns503(t *testing.T) {
	deps := newTestDeps()
	router := NewRouter(config.Config{}, deps.researcher, nil, deps.repo, deps.exporter, nil)
	handler := router.Handler()

	req := httptest.NewRequest(http.MethodPost, "/v1/research/jobs", bytes.NewBufferString(`{"kind": "companies", "query": "q"}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without scheduler, got %d", res.Code)
	}
}

func TestGetRunAndNotFound(t *testing.T) {
	deps := newTestDeps()
	deps.repo.runs["run-9"] = &domain.ResearchRun{ID: "run-9", Kind: domain.KindCompanies, Status: domain.RunCompleted}
	handler := deps.handler(config.Config{})

	req := httptest.NewRequest(http.MethodGet, "/v1/research/runs/run-9", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/research/runs/missing", nil)
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown run, got %d", res.Code)
	}
}

func TestListRunsReturnsEnvelope(t *testing.T) {
	deps := newTestDeps()
	deps.repo.runs["run-1"] = &domain.ResearchRun{ID: "run-1", Status: domain.RunCompleted}
	deps.repo.runs["run-2"] = &domain.ResearchRun{ID: "run-2", Status: domain.RunPending}
	handler := deps.handler(config.Config{RunListLimit: 10})

	req := httptest.NewRequest(http.MethodGet, "/v1/research/runs", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}

	var resp struct {
		Runs  []domain.ResearchRun `json:"runs"`
		Total int                  `json:"total"`
	}
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if resp.Total != 2 || len(resp.Runs) != 2 {
		t.Fatalf("expected 2 runs, got total=%d len=%d", resp.Total, len(resp.Runs))
	}
}

func TestExportRunStreamsWorkbook(t *testing.T) {
	deps := newTestDeps()
	deps.repo.runs["run-3"] = &domain.ResearchRun{
		ID:     "run-3",
		Status: domain.RunCompleted,
		Result: &domain.ResultAggregate{
			Table: &domain.Table{Columns: []string{"Company"}, Rows: []map[string]string{{"Company": "Acme"}}, Total: 1},
		},
	}
	handler := deps.handler(config.Config{})

	req := httptest.NewRequest(http.MethodGet, "/v1/research/runs/run-3/export", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if got := res.Header().Get("Content-Type"); got != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Fatalf("unexpected content type %q", got)
	}
	if disposition := res.Header().Get("Content-Disposition"); !strings.Contains(disposition, "research-run-run-3.xlsx") {
		t.Fatalf("unexpected content disposition %q", disposition)
	}
	if res.Body.Len() == 0 {
		t.Fatalf("expected workbook bytes in body")
	}
}

func TestExportRunWithoutTableReturns404(t *testing.T) {
	deps := newTestDeps()
	deps.repo.runs["run-4"] = &domain.ResearchRun{ID: "run-4", Status: domain.RunPending}
	handler := deps.handler(config.Config{})

	req := httptest.NewRequest(http.MethodGet, "/v1/research/runs/run-4/export", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for run without table, got %d", res.Code)
	}
}

func TestOpenAPIDocumentListsResearchPaths(t *testing.T) {
	handler := newTestHandler(config.Config{})

	req := httptest.NewRequest(http.MethodGet, "/v1/openapi.json", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}

	var doc struct {
		OpenAPI string         `json:"openapi"`
		Paths   map[string]any `json:"paths"`
	}
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		t.Fatalf("decode document: %v", err)
	}
	if doc.OpenAPI == "" {
		t.Fatalf("expected openapi version field")
	}
	for _, path := range []string{"/v1/research/companies", "/v1/research/people", "/v1/research/jobs", "/v1/research/runs/{run_id}/export"} {
		if _, ok := doc.Paths[path]; !ok {
			t.Fatalf("expected path %q in api document", path)
		}
	}
}

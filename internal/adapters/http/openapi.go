package httpadapter

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

var (
	openapiOnce sync.Once
	openapiJSON []byte
	openapiErr  error
)

func (rt *Router) openapiDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	openapiOnce.Do(func() {
		openapiJSON, openapiErr = json.Marshal(buildOpenAPIDocument())
	})
	if openapiErr != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to render api document"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(openapiJSON)
}

func buildOpenAPIDocument() *openapi3.T {
	researchRequest := openapi3.NewObjectSchema().
		WithProperty("query", openapi3.NewStringSchema().
			WithMinLength(1).
			WithMaxLength(1000))
	researchRequest.Required = []string{"query"}

	jobRequest := openapi3.NewObjectSchema().
		WithProperty("kind", openapi3.NewStringSchema().WithEnum("companies", "people")).
		WithProperty("query", openapi3.NewStringSchema().
			WithMinLength(1).
			WithMaxLength(1000))
	jobRequest.Required = []string{"kind", "query"}

	aggregateSchema := openapi3.NewObjectSchema().
		WithProperty("kind", openapi3.NewStringSchema()).
		WithProperty("entities", openapi3.NewArraySchema().WithItems(openapi3.NewObjectSchema())).
		WithProperty("total_found", openapi3.NewIntegerSchema()).
		WithProperty("criteria_matched", openapi3.NewIntegerSchema()).
		WithProperty("search_summary", openapi3.NewStringSchema()).
		WithProperty("reasoning", openapi3.NewStringSchema()).
		WithProperty("execution_time", openapi3.NewFloat64Schema()).
		WithProperty("search_events", openapi3.NewArraySchema().WithItems(openapi3.NewObjectSchema())).
		WithProperty("table_data", openapi3.NewObjectSchema())

	runSchema := openapi3.NewObjectSchema().
		WithProperty("id", openapi3.NewStringSchema()).
		WithProperty("kind", openapi3.NewStringSchema()).
		WithProperty("query", openapi3.NewStringSchema()).
		WithProperty("status", openapi3.NewStringSchema().WithEnum("pending", "running", "completed", "failed")).
		WithProperty("result", aggregateSchema).
		WithProperty("error", openapi3.NewStringSchema()).
		WithProperty("created_at", openapi3.NewDateTimeSchema()).
		WithProperty("updated_at", openapi3.NewDateTimeSchema())

	errorSchema := openapi3.NewObjectSchema().
		WithProperty("error", openapi3.NewStringSchema())

	runIDParam := &openapi3.ParameterRef{
		Value: openapi3.NewPathParameter("run_id").WithSchema(openapi3.NewStringSchema()),
	}

	researchOp := func(summary, operationID string) *openapi3.Operation {
		return &openapi3.Operation{
			Summary:     summary,
			OperationID: operationID,
			RequestBody: &openapi3.RequestBodyRef{
				Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchema(researchRequest),
			},
			Responses: openapi3.NewResponses(
				openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{
					Value: openapi3.NewResponse().
						WithDescription("Completed research result").
						WithJSONSchema(aggregateSchema),
				}),
				openapi3.WithStatus(http.StatusBadRequest, &openapi3.ResponseRef{
					Value: openapi3.NewResponse().
						WithDescription("Invalid research request").
						WithJSONSchema(errorSchema),
				}),
			),
		}
	}

	return &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       "Lead Research Agent API",
			Description: "Turns free-text lead research requests into ranked company and people results.",
			Version:     "1.0.0",
		},
		Paths: openapi3.NewPaths(
			openapi3.WithPath("/v1/research/companies", &openapi3.PathItem{
				Post: researchOp("Run a synchronous company research request", "researchCompanies"),
			}),
			openapi3.WithPath("/v1/research/people", &openapi3.PathItem{
				Post: researchOp("Run a synchronous people research request", "researchPeople"),
			}),
			openapi3.WithPath("/v1/research/jobs", &openapi3.PathItem{
				Post: &openapi3.Operation{
					Summary:     "Schedule an asynchronous research run",
					OperationID: "scheduleResearchJob",
					RequestBody: &openapi3.RequestBodyRef{
						Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchema(jobRequest),
					},
					Responses: openapi3.NewResponses(
						openapi3.WithStatus(http.StatusAccepted, &openapi3.ResponseRef{
							Value: openapi3.NewResponse().
								WithDescription("Accepted research run").
								WithJSONSchema(runSchema),
						}),
					),
				},
			}),
			openapi3.WithPath("/v1/research/runs", &openapi3.PathItem{
				Get: &openapi3.Operation{
					Summary:     "List recent research runs",
					OperationID: "listResearchRuns",
					Responses: openapi3.NewResponses(
						openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{
							Value: openapi3.NewResponse().
								WithDescription("Recent runs ordered newest first").
								WithJSONSchema(openapi3.NewObjectSchema().
									WithProperty("runs", openapi3.NewArraySchema().WithItems(runSchema)).
									WithProperty("total", openapi3.NewIntegerSchema())),
						}),
					),
				},
			}),
			openapi3.WithPath("/v1/research/runs/{run_id}", &openapi3.PathItem{
				Get: &openapi3.Operation{
					Summary:     "Fetch a single research run",
					OperationID: "getResearchRun",
					Parameters:  openapi3.Parameters{runIDParam},
					Responses: openapi3.NewResponses(
						openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{
							Value: openapi3.NewResponse().
								WithDescription("Stored research run").
								WithJSONSchema(runSchema),
						}),
						openapi3.WithStatus(http.StatusNotFound, &openapi3.ResponseRef{
							Value: openapi3.NewResponse().
								WithDescription("Unknown run").
								WithJSONSchema(errorSchema),
						}),
					),
				},
			}),
			openapi3.WithPath("/v1/research/runs/{run_id}/export", &openapi3.PathItem{
				Get: &openapi3.Operation{
					Summary:     "Download the run result as an XLSX workbook",
					OperationID: "exportResearchRun",
					Parameters:  openapi3.Parameters{runIDParam},
					Responses: openapi3.NewResponses(
						openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{
							Value: openapi3.NewResponse().
								WithDescription("XLSX workbook attachment"),
						}),
						openapi3.WithStatus(http.StatusNotFound, &openapi3.ResponseRef{
							Value: openapi3.NewResponse().
								WithDescription("Unknown run or empty result").
								WithJSONSchema(errorSchema),
						}),
					),
				},
			}),
		),
	}
}

package openaichat

import (
	"encoding/json"
	"fmt"

	"github.com/kirillkom/lead-research-agent/internal/core/domain"
)

const systemPrompt = `You are a web research planner. You design web search queries ` +
	`that surface evidence of companies or professionals using specific software tools. ` +
	`Respond only with a JSON array, no prose.`

const companyGuidance = `Design 4-6 search strategies to find companies matching the criteria.

Effective angles:
- Vendor customer pages and case studies ("<tool> customers", "<tool> case study")
- Industry directories and curated company lists
- Job postings that mention the tool in the company stack
- Technology lookup sites (builtwith, stackshare)

Each strategy is an object with the fields:
  "strategy_name": short label,
  "search_query": the exact query string to run,
  "reasoning": why this query finds matching companies,
  "target_source": what kind of pages the query targets,
  "expected_results": what a good hit looks like.`

const peopleGuidance = `Design 5-8 search strategies to find individual professionals using the tools.

Effective angles:
- LinkedIn profile x-ray searches (site:linkedin.com/in/ with tool names)
- Skills and certification mentions
- Role plus tool combinations ("customer success" + tool)
- Experience statements ("experience with <tool>")

Each strategy is an object with the fields:
  "strategy_name": short label,
  "search_query": the exact query string to run,
  "reasoning": why this query finds matching people,
  "target_source": what kind of pages the query targets,
  "expected_results": what a good hit looks like.`

func buildStrategyPrompt(kind domain.ResearchKind, criteria domain.Criteria, rawQuery string) (string, error) {
	criteriaJSON, err := json.MarshalIndent(criteria, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal criteria: %w", err)
	}

	guidance := companyGuidance
	if kind == domain.KindPeople {
		guidance = peopleGuidance
	}

	return fmt.Sprintf("%s\n\nOriginal request: %s\n\nStructured criteria:\n%s\n\nReturn the JSON array now.",
		guidance, rawQuery, criteriaJSON), nil
}

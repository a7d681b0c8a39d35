package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kirillkom/lead-research-agent/internal/core/domain"
	"github.com/kirillkom/lead-research-agent/internal/core/ports"
)

const maxStrategies = 12

// StrategyProvider produces the search strategies for a run. A language model
// backend is optional: when it is absent or fails, deterministic criteria-based
// fallbacks keep the pipeline running. Generate never returns an empty slice.
type StrategyProvider struct {
	generator ports.StrategyGenerator
	logger    *slog.Logger
}

// NewStrategyProvider accepts a nil generator, which disables model-backed
// strategy generation and routes every run through the fallbacks.
func NewStrategyProvider(generator ports.StrategyGenerator, logger *slog.Logger) *StrategyProvider {
	return &StrategyProvider{generator: generator, logger: logger}
}

func (p *StrategyProvider) Generate(ctx context.Context, kind domain.ResearchKind, criteria domain.Criteria, rawQuery string) []domain.Strategy {
	if p.generator != nil {
		strategies, err := p.generator.GenerateStrategies(ctx, kind, criteria, rawQuery)
		if err != nil {
			p.logger.Warn("strategy_generation_failed", "kind", kind, "error", err)
		} else if valid := sanitizeStrategies(strategies); len(valid) > 0 {
			return valid
		} else {
			p.logger.Warn("strategy_generation_empty", "kind", kind)
		}
	}
	if kind == domain.KindPeople {
		return peopleFallbackStrategies(criteria)
	}
	return companyFallbackStrategies(criteria)
}

// sanitizeStrategies drops entries without a query, fills in missing names and
// clamps the list to the strategy budget.
func sanitizeStrategies(strategies []domain.Strategy) []domain.Strategy {
	valid := make([]domain.Strategy, 0, len(strategies))
	for _, s := range strategies {
		if strings.TrimSpace(s.Query) == "" {
			continue
		}
		if strings.TrimSpace(s.Name) == "" {
			s.Name = fmt.Sprintf("Strategy %d", len(valid)+1)
		}
		valid = append(valid, s)
		if len(valid) == maxStrategies {
			break
		}
	}
	return valid
}

func companyFallbackStrategies(criteria domain.Criteria) []domain.Strategy {
	industry := criteria.Industry
	if industry == "" {
		industry = "technology"
	}

	var strategies []domain.Strategy
	tools := criteria.RequiredTools
	if len(tools) > 2 {
		tools = tools[:2]
	}
	for _, tool := range tools {
		strategies = append(strategies, domain.Strategy{
			Name:            fmt.Sprintf("%s customer directory", tool),
			Query:           fmt.Sprintf("%q OR %q %s company", tool+" customers", tool+" case studies", industry),
			Reasoning:       fmt.Sprintf("Vendor customer pages and case studies name companies that use %s", tool),
			TargetHint:      "vendor case study and customer pages",
			ExpectationHint: "company mentions with tool usage evidence",
		})
	}
	strategies = append(strategies, domain.Strategy{
		Name:            "Industry company directory",
		Query:           fmt.Sprintf("%s companies directory list", industry),
		Reasoning:       "Directory listings surface many candidate companies at once",
		TargetHint:      "business directories and curated lists",
		ExpectationHint: "company names with brief descriptions",
	})
	return strategies
}

func peopleFallbackStrategies(criteria domain.Criteria) []domain.Strategy {
	tools := criteria.RequiredTools
	if len(tools) == 0 {
		tools = []string{"intercom", "klaus"}
	}
	first := tools[0]
	second := first
	if len(tools) > 1 {
		second = tools[1]
	}

	strategies := []domain.Strategy{
		{
			Name:            "LinkedIn skills combination",
			Query:           fmt.Sprintf(`site:linkedin.com/in/ %q %q`, first, second),
			Reasoning:       "Profiles listing both tools as skills indicate hands-on usage",
			TargetHint:      "LinkedIn profiles",
			ExpectationHint: "professionals listing the tools as skills",
		},
		{
			Name:            "Customer success professionals",
			Query:           fmt.Sprintf(`site:linkedin.com/in/ "customer success" %q`, first),
			Reasoning:       "Customer success roles commonly operate support tooling day to day",
			TargetHint:      "LinkedIn profiles",
			ExpectationHint: "customer success roles mentioning the tool",
		},
		{
			Name:            "Support manager profiles",
			Query:           fmt.Sprintf(`site:linkedin.com/in/ "support manager" %q`, first),
			Reasoning:       "Support managers select and administer the tool stack",
			TargetHint:      "LinkedIn profiles",
			ExpectationHint: "support leadership with tool experience",
		},
		{
			Name:            "Experience mentions",
			Query:           fmt.Sprintf(`site:linkedin.com/in/ "experience with %s"`, first),
			Reasoning:       "Explicit experience statements are strong usage evidence",
			TargetHint:      "LinkedIn profiles",
			ExpectationHint: "profiles describing direct tool experience",
		},
		{
			Name:            "Implementation specialists",
			Query:           fmt.Sprintf(`site:linkedin.com/in/ %q implementation`, first),
			Reasoning:       "Implementation work requires deep familiarity with the tool",
			TargetHint:      "LinkedIn profiles",
			ExpectationHint: "specialists who deployed the tool",
		},
	}

	for _, tool := range tools {
		if tool == "klaus" {
			strategies = append(strategies, domain.Strategy{
				Name:            "Quality assurance reviewers",
				Query:           `site:linkedin.com/in/ "klaus" OR "zendesk qa" quality`,
				Reasoning:       "Conversation review tooling is operated by QA specialists",
				TargetHint:      "LinkedIn profiles",
				ExpectationHint: "QA specialists using conversation review tools",
			})
			break
		}
	}
	if len(tools) > 1 {
		strategies = append(strategies, domain.Strategy{
			Name:            "Tool stack combination",
			Query:           fmt.Sprintf(`site:linkedin.com/in/ %q AND %q`, first, second),
			Reasoning:       "Requiring both tools narrows results to the exact stack",
			TargetHint:      "LinkedIn profiles",
			ExpectationHint: "professionals using the full tool stack",
		})
	}
	return strategies
}

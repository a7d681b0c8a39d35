package extraction

import (
	"regexp"
	"strings"

	"github.com/kirillkom/lead-research-agent/internal/core/domain"
	"github.com/kirillkom/lead-research-agent/internal/core/lookup"
)

const (
	personBaseConfidence = 50
	personMinConfidence  = 40
	personMaxResults     = 20

	profileURLMarker = "linkedin.com/in/"
)

var (
	personNameRe = regexp.MustCompile(`^([^|\x{2013}-]+)`)

	jobTitleRes = []*regexp.Regexp{
		regexp.MustCompile(`\|\s*(.+?)\s+at\s+`),
		regexp.MustCompile(`-\s*(.+?)\s+at\s+`),
		regexp.MustCompile(`\|\s*(.+?)\s+@\s+`),
	}
	jobTitleSnippetRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:works as|working as|currently)\s+(.+?)\s+at`),
		regexp.MustCompile(`(?i)(?:title|position):\s*(.+?)(?:\.|,|at)`),
		regexp.MustCompile(`(?i)(?:i am|i'm)\s+(?:a|an)?\s*(.+?)\s+at`),
	}

	employerRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\s+at\s+([^|\x{2013}-]+?)(?:\s*\||$)`),
		regexp.MustCompile(`(?i)\s+@\s+([^|\x{2013}-]+?)(?:\s*\||$)`),
		regexp.MustCompile(`(?i)works at\s+([^.]+?)(?:\.|,|$)`),
		regexp.MustCompile(`(?i)employed at\s+([^.]+?)(?:\.|,|$)`),
	}

	personLocationRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)located in\s+([^.]+?)(?:\.|,|$)`),
		regexp.MustCompile(`(?i)based in\s+([^.]+?)(?:\.|,|$)`),
		regexp.MustCompile(`(?i)from\s+([^.]+?)(?:\.|,|$)`),
	}
)

// PersonExtractor mines individual-profile entities from raw search results.
// Only results the executor already filtered down to profile URLs reach it.
type PersonExtractor struct {
	tables *lookup.Tables
}

func NewPersonExtractor(tables *lookup.Tables) *PersonExtractor {
	return &PersonExtractor{tables: tables}
}

func (e *PersonExtractor) Kind() domain.ResearchKind { return domain.KindPeople }

// KeepResult keeps only individual-profile URLs; organizational and
// aggregate pages are discarded before extraction.
func (e *PersonExtractor) KeepResult(url string) bool {
	return strings.Contains(strings.ToLower(url), profileURLMarker)
}

func (e *PersonExtractor) MaxResults() int { return personMaxResults }

func (e *PersonExtractor) CanonicalKey(ent *domain.Entity) string {
	return strings.ToLower(ent.SourceURL)
}

func (e *PersonExtractor) Extract(result domain.RawResult, criteria domain.Criteria) *domain.Entity {
	if !e.KeepResult(result.URL) {
		return nil
	}

	name := extractPersonName(result.Title)
	if name == "" {
		return nil
	}

	text := searchText(result.Title, result.Snippet)
	tools := detectTools(e.tables.PersonTools, text)
	indicators := e.extractExperienceIndicators(text)

	confidence, reasons := e.score(result.Snippet, criteria, tools)
	if confidence < personMinConfidence {
		return nil
	}

	title := extractJobTitle(result.Title, result.Snippet)
	if title == "" {
		title = "Unknown Title"
	}
	employer := extractEmployer(result.Title + " " + result.Snippet)
	if employer == "" {
		employer = "Unknown Company"
	}

	return &domain.Entity{
		Kind:         domain.KindPeople,
		Name:         name,
		SourceURL:    result.URL,
		Description:  truncate(result.Snippet, 200),
		Tools:        tools,
		Confidence:   confidence,
		MatchReasons: reasons,
		SearchSource: searchSource(result, "LinkedIn Search"),
		Person: &domain.PersonDetails{
			Title:                title,
			Company:              employer,
			Location:             extractPersonLocation(result.Snippet),
			ExperienceIndicators: indicators,
		},
	}
}

func extractPersonName(title string) string {
	m := personNameRe.FindStringSubmatch(title)
	if m == nil {
		return ""
	}
	name := strings.TrimSpace(parentheticalRe.ReplaceAllString(strings.TrimSpace(m[1]), ""))
	low := strings.ToLower(name)
	if len(name) < 3 || strings.Contains(low, "linkedin") || strings.Contains(low, "profile") {
		return ""
	}
	return name
}

func extractJobTitle(title, snippet string) string {
	for _, titleRe := range jobTitleRes {
		if m := titleRe.FindStringSubmatch(title); m != nil {
			if jobTitle := strings.TrimSpace(m[1]); len(jobTitle) > 2 {
				return jobTitle
			}
		}
	}
	for _, snippetRe := range jobTitleSnippetRes {
		if m := snippetRe.FindStringSubmatch(snippet); m != nil {
			if jobTitle := strings.TrimSpace(m[1]); len(jobTitle) > 2 {
				return jobTitle
			}
		}
	}
	return ""
}

func extractEmployer(text string) string {
	for _, employerRe := range employerRes {
		if m := employerRe.FindStringSubmatch(text); m != nil {
			employer := strings.TrimSpace(parentheticalRe.ReplaceAllString(strings.TrimSpace(m[1]), ""))
			if len(employer) > 2 {
				return employer
			}
		}
	}
	return ""
}

func extractPersonLocation(snippet string) string {
	for _, locationRe := range personLocationRes {
		if m := locationRe.FindStringSubmatch(snippet); m != nil {
			if location := strings.TrimSpace(m[1]); len(location) > 2 {
				return location
			}
		}
	}
	return ""
}

func (e *PersonExtractor) extractExperienceIndicators(text string) []string {
	var indicators []string
	for _, entry := range e.tables.Seniority {
		if containsAny(text, entry.Terms) {
			indicators = append(indicators, entry.Level)
		}
	}
	for _, term := range e.tables.SkillTerms {
		if strings.Contains(text, term) {
			indicators = append(indicators, strings.ToUpper(term[:1])+term[1:]+" professional")
		}
	}
	return indicators
}

func (e *PersonExtractor) score(snippet string, criteria domain.Criteria, tools []string) (int, []string) {
	confidence := personBaseConfidence
	reasons := []string{}

	matched := matchRequiredTools(tools, criteria.RequiredTools)
	if len(matched) > 0 {
		if len(matched) >= len(criteria.RequiredTools) {
			confidence += 30
			reasons = append(reasons, "Uses all required tools: "+strings.Join(matched, ", "))
		} else {
			confidence += 15 * len(matched)
			reasons = append(reasons, "Uses some required tools: "+strings.Join(matched, ", "))
		}
	}

	if len(snippet) > 100 {
		confidence += 10
		reasons = append(reasons, "Detailed profile text")
	}

	low := strings.ToLower(snippet)
	if containsAny(low, e.tables.RoleKeywords) {
		confidence += 15
		reasons = append(reasons, "Relevant job role for tool usage")
	}

	if strings.Contains(low, "experienced") || strings.Contains(low, "expert") {
		confidence += 10
		reasons = append(reasons, "Shows tool expertise")
	}

	return capScore(confidence), reasons
}

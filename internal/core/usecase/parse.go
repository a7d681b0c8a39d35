package usecase

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kirillkom/lead-research-agent/internal/core/domain"
	"github.com/kirillkom/lead-research-agent/internal/core/lookup"
)

var (
	employeeRangeQueryRes = []*regexp.Regexp{
		regexp.MustCompile(`(\d+)\s*-\s*(\d+)\s*employees?`),
		regexp.MustCompile(`range of\s+(\d+)\s*-\s*(\d+)`),
	}
)

// CriteriaParser turns a raw query string into structured criteria. It is
// deterministic and total: unrecognized text leaves fields unset, and the
// strategy generator compensates because it also receives the raw query.
type CriteriaParser struct {
	tables *lookup.Tables
}

func NewCriteriaParser(tables *lookup.Tables) *CriteriaParser {
	return &CriteriaParser{tables: tables}
}

func (p *CriteriaParser) Parse(kind domain.ResearchKind, query string) domain.Criteria {
	if kind == domain.KindPeople {
		return p.parsePeopleQuery(query)
	}
	return p.parseCompanyQuery(query)
}

func (p *CriteriaParser) parseCompanyQuery(query string) domain.Criteria {
	criteria := domain.Criteria{StrictMatching: true}
	low := strings.ToLower(query)

	switch {
	case strings.Contains(low, "b2c"), strings.Contains(low, "consumer"):
		criteria.CompanyType = "B2C"
	case strings.Contains(low, "b2b"), strings.Contains(low, "business"):
		criteria.CompanyType = "B2B"
	}

	for _, industry := range p.tables.Industries {
		if containsAnyTerm(low, industry.Keywords...) {
			criteria.Industry = industry.Name
			break
		}
	}

	for _, tool := range p.tables.QueryTools {
		if strings.Contains(low, tool) {
			criteria.RequiredTools = append(criteria.RequiredTools, tool)
		}
	}

	for _, city := range p.tables.Cities {
		if strings.Contains(low, city) {
			criteria.Location = titleWords(city)
			break
		}
	}

	for _, rangeRe := range employeeRangeQueryRes {
		if m := rangeRe.FindStringSubmatch(low); m != nil {
			criteria.EmployeeRangeMin, _ = strconv.Atoi(m[1])
			criteria.EmployeeRangeMax, _ = strconv.Atoi(m[2])
			break
		}
	}

	for _, example := range p.tables.CompanyExamples {
		if strings.Contains(low, example) {
			criteria.CompanyExamples = append(criteria.CompanyExamples, capitalize(example))
		}
	}

	return criteria
}

func (p *CriteriaParser) parsePeopleQuery(query string) domain.Criteria {
	criteria := domain.Criteria{StrictMatching: true}
	low := strings.ToLower(query)

	if strings.Contains(low, "intercom") {
		criteria.RequiredTools = append(criteria.RequiredTools, "intercom")
	}
	hasKlaus := strings.Contains(low, "klaus") ||
		strings.Contains(low, "zendeskqa") ||
		strings.Contains(low, "zendesk qa")
	if hasKlaus {
		criteria.RequiredTools = append(criteria.RequiredTools, "klaus")
	}
	if strings.Contains(low, "zendesk") && !hasKlaus {
		criteria.RequiredTools = append(criteria.RequiredTools, "zendesk")
	}

	for _, title := range p.tables.JobTitles {
		if strings.Contains(low, title) {
			criteria.JobTitles = append(criteria.JobTitles, title)
		}
	}

	switch {
	case containsAnyTerm(low, "senior", "sr.", "lead"):
		criteria.ExperienceLevel = "senior"
	case containsAnyTerm(low, "junior", "jr.", "entry"):
		criteria.ExperienceLevel = "junior"
	case containsAnyTerm(low, "manager", "director", "head"):
		criteria.ExperienceLevel = "executive"
	}

	return criteria
}

func containsAnyTerm(text string, terms ...string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

package extraction

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/kirillkom/lead-research-agent/internal/core/domain"
	"github.com/kirillkom/lead-research-agent/internal/core/lookup"
)

const (
	companyBaseConfidence = 40
	companyMinConfidence  = 30
	companyMaxResults     = 15

	foundedYearMin = 1990

	employeeCountMin = 5
	employeeCountMax = 500000
)

var (
	// Individual-profile and review pages never describe the organization
	// itself; they are skipped before any extraction rule runs.
	companySkipSubstrings = []string{
		"linkedin.com/in/",
		"twitter.com/",
		"facebook.com/",
		"indeed.com/cmp/",
		"glassdoor.com/reviews/",
	}

	// Bare GitHub account roots (user or organization alike) are skipped:
	// their titles do not carry a usable company name. Deeper GitHub paths
	// such as repositories stay eligible.
	githubAccountRootRe = regexp.MustCompile(`^https?://(www\.)?github\.com/[^/?#]+/?$`)

	linkedinCompanySlugRe = regexp.MustCompile(`linkedin\.com/company/([^/?]+)`)
	crunchbaseSlugRe      = regexp.MustCompile(`crunchbase\.com/organization/([^/?]+)`)
	angelSlugRe           = regexp.MustCompile(`angel\.co/company/([^/?]+)`)

	titleTailRe     = regexp.MustCompile(`\s*[|\x{2013}-].*$`)
	parentheticalRe = regexp.MustCompile(`\s*\(.*\)$`)

	// Range pattern checked first so "50-200 employees" averages the bounds
	// instead of matching the single-count rule on the upper bound.
	employeeRangeRe  = regexp.MustCompile(`(\d{1,3}(?:,\d{3})*)\s*-\s*(\d{1,3}(?:,\d{3})*)\s*employees?`)
	employeeCountRes = []*regexp.Regexp{
		regexp.MustCompile(`(\d{1,3}(?:,\d{3})*)\s*employees?`),
		regexp.MustCompile(`team\s+of\s+(\d{1,3}(?:,\d{3})*)`),
		regexp.MustCompile(`(\d{1,3}(?:,\d{3})*)\s*people`),
	}

	foundedRes = []*regexp.Regexp{
		regexp.MustCompile(`founded\s+in\s+(\d{4})`),
		regexp.MustCompile(`established\s+(\d{4})`),
		regexp.MustCompile(`since\s+(\d{4})`),
	}

	directoryDomainLabels = []string{"linkedin", "crunchbase", "angel", "github"}
)

// CompanyExtractor mines organization entities from raw search results.
type CompanyExtractor struct {
	tables    *lookup.Tables
	suffixRes []*regexp.Regexp
}

func NewCompanyExtractor(tables *lookup.Tables) *CompanyExtractor {
	suffixRes := make([]*regexp.Regexp, 0, len(tables.LegalSuffixes))
	for _, suffix := range tables.LegalSuffixes {
		suffixRes = append(suffixRes, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(suffix)+`\.?\s*$`))
	}
	return &CompanyExtractor{tables: tables, suffixRes: suffixRes}
}

func (e *CompanyExtractor) Kind() domain.ResearchKind { return domain.KindCompanies }

// KeepResult accepts everything at the executor stage; skip rules for the
// company variant need the title text, so they run inside Extract.
func (e *CompanyExtractor) KeepResult(string) bool { return true }

func (e *CompanyExtractor) MaxResults() int { return companyMaxResults }

func (e *CompanyExtractor) CanonicalKey(ent *domain.Entity) string {
	key := strings.ToLower(strings.TrimSpace(ent.Name))
	if len(key) < 3 {
		return ""
	}
	return key
}

func (e *CompanyExtractor) Extract(result domain.RawResult, criteria domain.Criteria) *domain.Entity {
	if e.shouldSkip(result) {
		return nil
	}

	name := e.extractName(result)
	if len(name) < 3 {
		return nil
	}

	text := searchText(result.Title, result.Snippet)
	snippet := strings.ToLower(result.Snippet)

	industry := e.extractIndustry(text, criteria)
	employeeCount := extractEmployeeCount(text)
	tools := detectTools(e.tables.CompanyTools, text)
	location := e.extractLocation(snippet)
	founded := extractFoundedYear(snippet)
	companyType := e.extractCompanyType(text, criteria)

	confidence, reasons := e.score(result, criteria, tools, employeeCount, industry)
	if confidence < companyMinConfidence {
		return nil
	}

	if industry == "" {
		industry = "Technology"
	}

	return &domain.Entity{
		Kind:         domain.KindCompanies,
		Name:         name,
		SourceURL:    result.URL,
		Description:  describeCompany(result.Snippet),
		Tools:        tools,
		Confidence:   confidence,
		MatchReasons: reasons,
		SearchSource: searchSource(result, "Web Search"),
		Company: &domain.CompanyDetails{
			Industry:      industry,
			CompanyType:   companyType,
			EmployeeCount: employeeCount,
			EmployeeRange: formatEmployeeRange(employeeCount),
			Location:      location,
			Founded:       founded,
		},
	}
}

func (e *CompanyExtractor) shouldSkip(result domain.RawResult) bool {
	lowURL := strings.ToLower(result.URL)
	for _, pattern := range companySkipSubstrings {
		if strings.Contains(lowURL, pattern) {
			return true
		}
	}
	if githubAccountRootRe.MatchString(lowURL) {
		return true
	}
	return containsAny(strings.ToLower(result.Title), e.tables.PersonalIndicators)
}

// extractName runs the cascade: directory URL slug, cleaned title, domain
// fallback for generic or too-short titles.
func (e *CompanyExtractor) extractName(result domain.RawResult) string {
	for _, slugRe := range []*regexp.Regexp{linkedinCompanySlugRe, crunchbaseSlugRe, angelSlugRe} {
		if m := slugRe.FindStringSubmatch(result.URL); m != nil {
			return titleCaseSlug(m[1])
		}
	}

	name := strings.TrimSpace(titleTailRe.ReplaceAllString(result.Title, ""))
	name = strings.TrimSpace(parentheticalRe.ReplaceAllString(name, ""))
	for _, suffixRe := range e.suffixRes {
		name = strings.TrimSpace(suffixRe.ReplaceAllString(name, ""))
	}

	if containsAny(strings.ToLower(name), e.tables.GenericTitleTerms) || len(name) < 4 {
		if label := registrableLabel(result.URL, directoryDomainLabels); label != "" {
			return titleCaseSlug(label)
		}
	}
	return name
}

func (e *CompanyExtractor) extractIndustry(text string, criteria domain.Criteria) string {
	if criteria.Industry != "" {
		return titleCaseSlug(criteria.Industry)
	}
	for _, entry := range e.tables.Industries {
		if containsAny(text, entry.Keywords) {
			return entry.Name
		}
	}
	return ""
}

func (e *CompanyExtractor) extractLocation(snippet string) string {
	for _, city := range e.tables.Cities {
		if strings.Contains(snippet, city) {
			return titleCaseSlug(city)
		}
	}
	return ""
}

func (e *CompanyExtractor) extractCompanyType(text string, criteria domain.Criteria) string {
	if criteria.CompanyType != "" {
		return criteria.CompanyType
	}
	if containsAny(text, e.tables.ConsumerTerms) {
		return "B2C"
	}
	if containsAny(text, e.tables.BusinessTerms) {
		return "B2B"
	}
	return ""
}

func (e *CompanyExtractor) score(
	result domain.RawResult,
	criteria domain.Criteria,
	tools []string,
	employeeCount int,
	industry string,
) (int, []string) {
	confidence := companyBaseConfidence
	reasons := []string{}

	lowURL := strings.ToLower(result.URL)
	switch {
	case strings.Contains(lowURL, "crunchbase.com"):
		confidence += 20
		reasons = append(reasons, "Found in Crunchbase database")
	case strings.Contains(lowURL, "linkedin.com/company"):
		confidence += 15
		reasons = append(reasons, "Official LinkedIn company page")
	case strings.Contains(lowURL, "angel.co"), strings.Contains(lowURL, "wellfound.com"):
		confidence += 12
		reasons = append(reasons, "Listed on startup job platform")
	}

	if len(criteria.RequiredTools) > 0 && len(tools) > 0 {
		matched := matchRequiredTools(tools, criteria.RequiredTools)
		if len(matched) > 0 {
			confidence += len(matched) * 10
			reasons = append(reasons, "Uses required tools: "+strings.Join(matched, ", "))
		}
	}

	if employeeCount > 0 && criteria.HasEmployeeRange() {
		minEmp := criteria.EmployeeRangeMin
		maxEmp := criteria.EmployeeRangeMax
		if maxEmp == 0 {
			maxEmp = 1000000
		}
		switch {
		case employeeCount >= minEmp && employeeCount <= maxEmp:
			confidence += 15
			reasons = append(reasons, fmt.Sprintf("Employee count (%d) matches range", employeeCount))
		case float64(employeeCount) >= float64(minEmp)*0.7 && float64(employeeCount) <= float64(maxEmp)*1.3:
			confidence += 8
			reasons = append(reasons, fmt.Sprintf("Employee count (%d) close to range", employeeCount))
		}
	}

	if criteria.Industry != "" && industry != "" &&
		strings.Contains(strings.ToLower(industry), strings.ToLower(criteria.Industry)) {
		confidence += 12
		reasons = append(reasons, "Industry matches: "+industry)
	}

	strategy := strings.ToLower(result.StrategyName)
	switch {
	case strings.Contains(strategy, "customer"), strings.Contains(strategy, "case study"):
		confidence += 10
		reasons = append(reasons, "Found in customer showcase")
	case strings.Contains(strategy, "directory"):
		confidence += 8
		reasons = append(reasons, "Listed in industry directory")
	}

	return capScore(confidence), reasons
}

func matchRequiredTools(detected, required []string) []string {
	var matched []string
	for _, tool := range detected {
		for _, req := range required {
			if strings.Contains(strings.ToLower(tool), strings.ToLower(req)) {
				matched = append(matched, tool)
				break
			}
		}
	}
	return matched
}

func extractEmployeeCount(text string) int {
	if m := employeeRangeRe.FindStringSubmatch(text); m != nil {
		lo, loErr := parseCommaInt(m[1])
		hi, hiErr := parseCommaInt(m[2])
		if loErr == nil && hiErr == nil {
			return (lo + hi) / 2
		}
	}
	for _, countRe := range employeeCountRes {
		if m := countRe.FindStringSubmatch(text); m != nil {
			count, err := parseCommaInt(m[1])
			if err == nil && count >= employeeCountMin && count <= employeeCountMax {
				return count
			}
		}
	}
	return 0
}

func parseCommaInt(s string) (int, error) {
	return strconv.Atoi(strings.ReplaceAll(s, ",", ""))
}

func formatEmployeeRange(count int) string {
	switch {
	case count <= 0:
		return "Unknown"
	case count < 50:
		return "1-50"
	case count < 200:
		return "50-200"
	case count < 500:
		return "200-500"
	case count < 1000:
		return "500-1000"
	case count < 5000:
		return "1000-5000"
	default:
		return "5000+"
	}
}

func extractFoundedYear(snippet string) string {
	for _, foundedRe := range foundedRes {
		if m := foundedRe.FindStringSubmatch(snippet); m != nil {
			year, err := strconv.Atoi(m[1])
			if err == nil && year >= foundedYearMin && year <= time.Now().Year() {
				return m[1]
			}
		}
	}
	return ""
}

func describeCompany(snippet string) string {
	if snippet == "" {
		return "Company found through web search."
	}
	return truncate(snippet, 300)
}

func searchSource(result domain.RawResult, fallback string) string {
	if result.StrategyName != "" {
		return result.StrategyName
	}
	return fallback
}

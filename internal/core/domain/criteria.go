package domain

// ResearchKind selects which extraction variant a run targets.
type ResearchKind string

const (
	KindCompanies ResearchKind = "companies"
	KindPeople    ResearchKind = "people"
)

func (k ResearchKind) Valid() bool {
	return k == KindCompanies || k == KindPeople
}

// Criteria is the structured form of a raw research query. It is built once
// per run by the criteria parser and never mutated afterwards. Unrecognized
// query text simply leaves fields unset; the strategy generator also receives
// the raw query and compensates for anything the parser misses.
type Criteria struct {
	Industry         string   `json:"industry,omitempty"`
	CompanyType      string   `json:"company_type,omitempty"`
	EmployeeRangeMin int      `json:"employee_range_min,omitempty"`
	EmployeeRangeMax int      `json:"employee_range_max,omitempty"`
	RequiredTools    []string `json:"required_tools,omitempty"`
	Location         string   `json:"location,omitempty"`
	CompanyExamples  []string `json:"company_examples,omitempty"`
	JobTitles        []string `json:"job_titles,omitempty"`
	ExperienceLevel  string   `json:"experience_level,omitempty"`
	StrictMatching   bool     `json:"strict_matching"`
}

func (c Criteria) HasEmployeeRange() bool {
	return c.EmployeeRangeMin > 0 || c.EmployeeRangeMax > 0
}

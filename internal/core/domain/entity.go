package domain

// Entity is a structured record mined from one search result. The Kind tag
// says which of the two detail variants is populated.
type Entity struct {
	Kind         ResearchKind `json:"kind"`
	Name         string       `json:"name"`
	SourceURL    string       `json:"source_url"`
	Description  string       `json:"description"`
	Tools        []string     `json:"tools_detected"`
	Confidence   int          `json:"confidence_score"`
	MatchReasons []string     `json:"match_reasons"`
	SearchSource string       `json:"search_source"`

	Company *CompanyDetails `json:"company,omitempty"`
	Person  *PersonDetails  `json:"person,omitempty"`
}

// CompanyDetails holds the organization-variant attributes.
type CompanyDetails struct {
	Industry      string `json:"industry"`
	CompanyType   string `json:"company_type,omitempty"`
	EmployeeCount int    `json:"employee_count,omitempty"`
	EmployeeRange string `json:"employee_range"`
	Location      string `json:"location,omitempty"`
	Founded       string `json:"founded,omitempty"`
}

// PersonDetails holds the person-variant attributes.
type PersonDetails struct {
	Title                string   `json:"title"`
	Company              string   `json:"company"`
	Location             string   `json:"location,omitempty"`
	ExperienceIndicators []string `json:"experience_indicators"`
}

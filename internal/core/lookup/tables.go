// Package lookup holds the fixed vocabularies the criteria parser and the
// entity extractors match against: tool variation tables, industry and city
// gazetteers, title-cleanup terms. The data is embedded at build time and
// parsed once; callers must treat every table as read-only.
package lookup

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed tables.yaml
var tablesYAML []byte

// ToolEntry maps one canonical tool tag to the text variations that count as
// a mention of it. Checking order follows table order so detection output is
// deterministic.
type ToolEntry struct {
	Tool       string   `yaml:"tool"`
	Variations []string `yaml:"variations"`
}

type IndustryEntry struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

type SeniorityEntry struct {
	Level string   `yaml:"level"`
	Terms []string `yaml:"terms"`
}

// Tables is the full immutable lookup state.
type Tables struct {
	CompanyTools       []ToolEntry      `yaml:"company_tools"`
	PersonTools        []ToolEntry      `yaml:"person_tools"`
	Industries         []IndustryEntry  `yaml:"industries"`
	Cities             []string         `yaml:"cities"`
	GenericTitleTerms  []string         `yaml:"generic_title_terms"`
	LegalSuffixes      []string         `yaml:"legal_suffixes"`
	PersonalIndicators []string         `yaml:"personal_indicators"`
	ConsumerTerms      []string         `yaml:"consumer_terms"`
	BusinessTerms      []string         `yaml:"business_terms"`
	Seniority          []SeniorityEntry `yaml:"seniority"`
	SkillTerms         []string         `yaml:"skill_terms"`
	RoleKeywords       []string         `yaml:"role_keywords"`
	QueryTools         []string         `yaml:"query_tools"`
	CompanyExamples    []string         `yaml:"company_examples"`
	JobTitles          []string         `yaml:"job_titles"`
}

var defaultTables = mustLoad()

// Default returns the embedded lookup tables.
func Default() *Tables {
	return defaultTables
}

func mustLoad() *Tables {
	t, err := Parse(tablesYAML)
	if err != nil {
		panic(fmt.Sprintf("lookup: embedded tables: %v", err))
	}
	return t
}

// Parse decodes a tables document. Exposed for tests that exercise alternate
// vocabularies.
func Parse(data []byte) (*Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("unmarshal tables: %w", err)
	}
	if len(t.CompanyTools) == 0 || len(t.PersonTools) == 0 {
		return nil, fmt.Errorf("tables: tool vocabularies must not be empty")
	}
	return &t, nil
}

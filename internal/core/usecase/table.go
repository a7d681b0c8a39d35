package usecase

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kirillkom/lead-research-agent/internal/core/domain"
)

var (
	companyColumns = []string{"Company", "Industry", "Employees", "Tools", "Source", "Confidence", "Website"}
	personColumns  = []string{"Name", "Title", "Company", "Tools", "Experience", "Confidence", "LinkedIn"}
)

// buildTable projects ranked entities into the flat tabular shape used by
// exports and table-oriented clients. Returns nil when there is nothing to
// show.
func buildTable(kind domain.ResearchKind, entities []*domain.Entity) *domain.Table {
	if len(entities) == 0 {
		return nil
	}
	if kind == domain.KindPeople {
		return buildPersonTable(entities)
	}
	return buildCompanyTable(entities)
}

func buildCompanyTable(entities []*domain.Entity) *domain.Table {
	rows := make([]map[string]string, 0, len(entities))
	for _, e := range entities {
		details := e.Company
		if details == nil {
			details = &domain.CompanyDetails{}
		}
		employees := details.EmployeeRange
		if details.EmployeeCount > 0 {
			employees = strconv.Itoa(details.EmployeeCount)
		}
		rows = append(rows, map[string]string{
			"Company":    e.Name,
			"Industry":   orNA(details.Industry),
			"Employees":  orNA(employees),
			"Tools":      orNA(strings.Join(e.Tools, ", ")),
			"Source":     orNA(e.SearchSource),
			"Confidence": fmt.Sprintf("%d%%", e.Confidence),
			"Website":    e.SourceURL,
		})
	}
	return &domain.Table{
		Columns: companyColumns,
		Rows:    rows,
		Total:   len(rows),
		Summary: fmt.Sprintf("Discovered %d companies matching the criteria", len(rows)),
	}
}

func buildPersonTable(entities []*domain.Entity) *domain.Table {
	rows := make([]map[string]string, 0, len(entities))
	for _, e := range entities {
		details := e.Person
		if details == nil {
			details = &domain.PersonDetails{}
		}
		experience := details.ExperienceIndicators
		if len(experience) > 2 {
			experience = experience[:2]
		}
		rows = append(rows, map[string]string{
			"Name":       e.Name,
			"Title":      orNA(details.Title),
			"Company":    orNA(details.Company),
			"Tools":      orNA(strings.Join(e.Tools, ", ")),
			"Experience": orNA(strings.Join(experience, ", ")),
			"Confidence": fmt.Sprintf("%d%%", e.Confidence),
			"LinkedIn":   e.SourceURL,
		})
	}
	return &domain.Table{
		Columns: personColumns,
		Rows:    rows,
		Total:   len(rows),
		Summary: fmt.Sprintf("Found %d professionals using the specified tools", len(rows)),
	}
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

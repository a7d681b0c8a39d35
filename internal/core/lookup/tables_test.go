package lookup

import (
	"strings"
	"testing"
)

func TestDefaultTablesLoaded(t *testing.T) {
	tables := Default()

	if len(tables.CompanyTools) == 0 || len(tables.PersonTools) == 0 {
		t.Fatalf("expected embedded tool vocabularies to be present")
	}
	if len(tables.Industries) == 0 || len(tables.Cities) == 0 {
		t.Fatalf("expected industry and city gazetteers to be present")
	}

	found := false
	for _, entry := range tables.CompanyTools {
		if entry.Tool == "intercom" {
			found = true
			if len(entry.Variations) == 0 {
				t.Fatalf("expected variations for intercom")
			}
		}
	}
	if !found {
		t.Fatalf("expected intercom in the company tool table")
	}
}

func TestParseRejectsBadDocuments(t *testing.T) {
	if _, err := Parse([]byte("company_tools: [")); err == nil {
		t.Fatalf("expected error for malformed yaml")
	}

	empty := []byte("company_tools: []\nperson_tools: []\n")
	if _, err := Parse(empty); err == nil || !strings.Contains(err.Error(), "must not be empty") {
		t.Fatalf("expected empty-vocabulary error, got %v", err)
	}
}

func TestParseAlternateVocabulary(t *testing.T) {
	doc := []byte(`
company_tools:
  - tool: intercom
    variations: ["intercom.io"]
person_tools:
  - tool: klaus
    variations: ["klaus", "zendesk qa"]
`)
	tables, err := Parse(doc)
	if err != nil {
		t.Fatalf("parse alternate vocabulary: %v", err)
	}
	if tables.PersonTools[0].Variations[1] != "zendesk qa" {
		t.Fatalf("unexpected variations: %v", tables.PersonTools[0].Variations)
	}
}

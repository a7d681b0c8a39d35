package usecase

import (
	"testing"

	"github.com/kirillkom/lead-research-agent/internal/core/domain"
)

func TestFinalizeEntitiesKeepsOrderOnEqualConfidence(t *testing.T) {
	extractor := &extractorFake{kind: domain.KindCompanies, maxResults: 10}
	entities := []*domain.Entity{
		{Kind: domain.KindCompanies, Name: "Alpha", Confidence: 60},
		{Kind: domain.KindCompanies, Name: "Beta", Confidence: 60},
		{Kind: domain.KindCompanies, Name: "Gamma", Confidence: 90},
		{Kind: domain.KindCompanies, Name: "Delta", Confidence: 60},
	}

	ranked := finalizeEntities(entities, extractor)

	wantNames := []string{"Gamma", "Alpha", "Beta", "Delta"}
	if len(ranked) != len(wantNames) {
		t.Fatalf("ranked = %d entities, want %d", len(ranked), len(wantNames))
	}
	for i, name := range wantNames {
		if ranked[i].Name != name {
			t.Fatalf("ranked[%d] = %s, want %s (equal scores must keep discovery order)", i, ranked[i].Name, name)
		}
	}
}

func TestFinalizeEntitiesDeduplicatesBeforeRanking(t *testing.T) {
	extractor := &extractorFake{kind: domain.KindCompanies, maxResults: 10}
	entities := []*domain.Entity{
		{Kind: domain.KindCompanies, Name: "Alpha", Confidence: 50, SourceURL: "https://alpha.com/a"},
		{Kind: domain.KindCompanies, Name: "alpha", Confidence: 95, SourceURL: "https://alpha.com/b"},
		{Kind: domain.KindCompanies, Name: "", Confidence: 99},
	}

	ranked := finalizeEntities(entities, extractor)

	if len(ranked) != 1 {
		t.Fatalf("ranked = %d entities, want 1", len(ranked))
	}
	if ranked[0].SourceURL != "https://alpha.com/a" {
		t.Fatalf("kept %s, want the first occurrence", ranked[0].SourceURL)
	}
}

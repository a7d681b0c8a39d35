package domain

// Strategy is one candidate search query plus the metadata explaining why it
// was chosen and what it is expected to find. Strategies execute in list
// order; they are otherwise independent of each other.
type Strategy struct {
	Name            string `json:"strategy_name"`
	Query           string `json:"search_query"`
	Reasoning       string `json:"reasoning"`
	TargetHint      string `json:"target_source,omitempty"`
	ExpectationHint string `json:"expected_results,omitempty"`
}

// SearchHit is one (title, url, snippet) triple returned by the search
// backend for a single query.
type SearchHit struct {
	Title   string
	URL     string
	Snippet string
}

// RawResult is a search hit tagged with the provenance of the strategy that
// produced it. It lives only between strategy execution and extraction.
type RawResult struct {
	SearchHit

	StrategyName      string
	StrategyReasoning string
	TargetHint        string
	ExpectationHint   string
}

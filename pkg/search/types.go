package search

import "time"

type Config struct {
	// IndexPath keeps the index on disk; empty means memory only.
	IndexPath           string
	DefaultAnalyzer     string
	DefaultSearchFields []string
	QueryTimeout        time.Duration
	BatchSize           int
}

type Doc struct {
	ID     string
	Type   string
	Fields map[string]any
}

type SearchRequest struct {
	// Keyword is matched against SearchFields (or the engine defaults).
	Keyword      string
	SearchFields []string
	// MustTerms are exact keyword-field filters; several values of one field are OR-ed.
	MustTerms map[string][]string
	Type      string
	From      int
	Size      int
	SortBy    []string
}

type Hit struct {
	ID     string
	Score  float64
	Fields map[string]any
}

type SearchResult struct {
	Total uint64
	Took  time.Duration
	Hits  []Hit
}

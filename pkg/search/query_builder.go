package search

import (
	"strings"

	"github.com/blevesearch/bleve/v2"
	q "github.com/blevesearch/bleve/v2/search/query"
)

func buildQuery(req SearchRequest, defaultFields []string) q.Query {
	var must []q.Query

	if kw := strings.TrimSpace(req.Keyword); kw != "" {
		fields := req.SearchFields
		if len(fields) == 0 {
			fields = defaultFields
		}
		if len(fields) == 0 {
			must = append(must, bleve.NewMatchQuery(kw))
		} else {
			should := make([]q.Query, 0, len(fields))
			for _, f := range fields {
				mq := bleve.NewMatchQuery(kw)
				mq.SetField(f)
				should = append(should, mq)
			}
			must = append(must, bleve.NewDisjunctionQuery(should...))
		}
	}

	for f, vs := range req.MustTerms {
		if len(vs) == 0 {
			continue
		}
		terms := make([]q.Query, 0, len(vs))
		for _, v := range vs {
			tq := bleve.NewTermQuery(v)
			tq.SetField(f)
			terms = append(terms, tq)
		}
		if len(terms) == 1 {
			must = append(must, terms[0])
		} else {
			must = append(must, bleve.NewDisjunctionQuery(terms...))
		}
	}

	if req.Type != "" {
		tq := bleve.NewTermQuery(req.Type)
		tq.SetField("type")
		must = append(must, tq)
	}

	if len(must) == 0 {
		return bleve.NewMatchAllQuery()
	}
	return bleve.NewConjunctionQuery(must...)
}

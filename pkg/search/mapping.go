package search

import (
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
)

// DocTypeAlert is the document type of indexed crime alerts.
const DocTypeAlert = "alert"

// AlertSearchFields are the free-text fields matched by keyword searches.
var AlertSearchFields = []string{"description", "location", "originReport"}

func BuildIndexMapping(defaultAnalyzer string) *mapping.IndexMappingImpl {
	if defaultAnalyzer == "" {
		defaultAnalyzer = standard.Name
	}
	idx := mapping.NewIndexMapping()
	idx.DefaultAnalyzer = defaultAnalyzer
	idx.TypeField = "type"

	text := mapping.NewTextFieldMapping()
	text.Store = true
	text.Index = true
	text.Analyzer = defaultAnalyzer
	text.IncludeInAll = true

	kw := mapping.NewTextFieldMapping()
	kw.Store = true
	kw.Index = true
	kw.Analyzer = keyword.Name

	dt := mapping.NewDateTimeFieldMapping()
	dt.Store = true
	dt.Index = true

	alert := mapping.NewDocumentMapping()
	alert.Dynamic = false
	alert.AddFieldMappingsAt("description", text)
	alert.AddFieldMappingsAt("location", text)
	alert.AddFieldMappingsAt("originReport", text)
	alert.AddFieldMappingsAt("status", kw)
	alert.AddFieldMappingsAt("reporter", kw)
	alert.AddFieldMappingsAt("audience", kw)
	alert.AddFieldMappingsAt("type", kw)
	alert.AddFieldMappingsAt("createdAt", dt)
	idx.AddDocumentMapping(DocTypeAlert, alert)

	def := mapping.NewDocumentMapping()
	def.Dynamic = false
	idx.DefaultMapping = def
	return idx
}

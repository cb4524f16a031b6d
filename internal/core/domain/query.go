package domain

import (
	"encoding/json"
	"maps"
	"time"
)

// QueryType is the retrieval class of a natural-language query.
type QueryType string

// Query classes.
const (
	QueryStructured QueryType = "structured"
	QueryDocument   QueryType = "document"
	QueryHybrid     QueryType = "hybrid"
)

// String returns the string representation.
func (t QueryType) String() string {
	return string(t)
}

// WantsStructured reports whether the class includes SQL retrieval.
func (t QueryType) WantsStructured() bool {
	return t == QueryStructured || t == QueryHybrid
}

// WantsDocuments reports whether the class includes document retrieval.
func (t QueryType) WantsDocuments() bool {
	return t == QueryDocument || t == QueryHybrid
}

// StructuredShape names one of the canned SQL query shapes.
type StructuredShape string

// Canned shapes, in selection priority order.
const (
	ShapeCount        StructuredShape = "count"
	ShapeGroupAverage StructuredShape = "group_average"
	ShapeSample       StructuredShape = "sample"
)

// StructuredResult is the outcome of a canned SQL query.
type StructuredResult struct {
	Shape   StructuredShape  `json:"shape"`
	SQL     string           `json:"sql"`
	Rows    []map[string]any `json:"rows"`
	Mapping TermMapping      `json:"mapping,omitempty"`
}

// Result keys used in QueryResults.Errors.
const (
	ResultStructured = "structured"
	ResultDocuments  = "documents"
)

// QueryResults holds the merged output of the retrieval paths.
// Documents is nil when the document path did not run or failed, and
// non-nil, possibly empty, when it ran. Errors records a path that failed
// while the other succeeded.
type QueryResults struct {
	Structured *StructuredResult `json:"structured,omitempty"`
	Documents  []Hit             `json:"documents"`
	Errors     map[string]string `json:"errors,omitempty"`
}

// MarshalJSON writes documents as a list whenever the document path ran,
// including when it found nothing, and omits the key otherwise.
func (r QueryResults) MarshalJSON() ([]byte, error) {
	type plain QueryResults
	out := struct {
		plain
		Documents *[]Hit `json:"documents,omitempty"`
	}{plain: plain(r)}
	if r.Documents != nil {
		out.Documents = &r.Documents
	}
	return json.Marshal(out)
}

// Metrics describes how a result was produced.
type Metrics struct {
	// Time is the retrieval time in seconds, rounded to milliseconds.
	Time float64 `json:"time"`

	// CacheHit is true when the envelope was served from the cache.
	CacheHit bool `json:"cache_hit"`
}

// QueryResult is the envelope returned for a query.
// A failed query carries only Error; every other field is empty.
type QueryResult struct {
	Query   string        `json:"query,omitempty"`
	Type    QueryType     `json:"type,omitempty"`
	Results *QueryResults `json:"results,omitempty"`
	Metrics *Metrics      `json:"metrics,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// NewErrorResult builds the error envelope.
func NewErrorResult(err error) *QueryResult {
	return &QueryResult{Error: err.Error()}
}

// Failed reports whether r is an error envelope.
func (r *QueryResult) Failed() bool {
	return r.Error != ""
}

// Clone returns a copy that can be modified without touching r.
// Row maps and hit slices are shared read-only.
func (r *QueryResult) Clone() *QueryResult {
	c := *r
	if r.Results != nil {
		res := *r.Results
		res.Errors = maps.Clone(r.Results.Errors)
		c.Results = &res
	}
	if r.Metrics != nil {
		m := *r.Metrics
		c.Metrics = &m
	}
	return &c
}

// HistoryEntry records one answered query.
type HistoryEntry struct {
	Query   string    `json:"query"`
	Elapsed float64   `json:"elapsed"`
	Type    QueryType `json:"type"`
	At      time.Time `json:"at"`
}

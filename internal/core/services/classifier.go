package services

import (
	"strings"

	"github.com/custodia-labs/hybridq/internal/core/domain"
)

// Term lists used by the classification rules. Matching is by substring
// of the lowercased query.
var (
	documentTerms = []string{"resume", "cv", "document", "skill", "skills", "mention", "review"}

	// hybridAggregationTerms pair with a document term to make a query hybrid.
	hybridAggregationTerms = []string{"how many", "count", "average", "where", "list", "show", "top"}

	structuredTerms = []string{"how many", "count", "average", "sum", "max", "min", "group", "top", "where", "list"}
)

// ClassificationRule maps a predicate over the lowercased query to a class.
type ClassificationRule struct {
	Name    string
	Matches func(q string) bool
	Type    domain.QueryType
}

// DefaultClassificationRules is the ordered rule table. The first matching
// rule wins; a query that matches none is hybrid.
var DefaultClassificationRules = []ClassificationRule{
	{
		Name: "documents with aggregation",
		Matches: func(q string) bool {
			return containsAny(q, documentTerms) && containsAny(q, hybridAggregationTerms)
		},
		Type: domain.QueryHybrid,
	},
	{
		Name:    "documents",
		Matches: func(q string) bool { return containsAny(q, documentTerms) },
		Type:    domain.QueryDocument,
	},
	{
		Name:    "aggregation",
		Matches: func(q string) bool { return containsAny(q, structuredTerms) },
		Type:    domain.QueryStructured,
	},
}

// Classifier assigns a retrieval class to query text. It is pure and safe
// for concurrent use.
type Classifier struct {
	rules    []ClassificationRule
	fallback domain.QueryType
}

// NewClassifier creates a classifier using DefaultClassificationRules.
func NewClassifier() *Classifier {
	return NewClassifierWithRules(DefaultClassificationRules, domain.QueryHybrid)
}

// NewClassifierWithRules creates a classifier with a custom rule table.
func NewClassifierWithRules(rules []ClassificationRule, fallback domain.QueryType) *Classifier {
	return &Classifier{rules: rules, fallback: fallback}
}

// Classify returns the class of the first matching rule, or the fallback.
func (c *Classifier) Classify(query string) domain.QueryType {
	q := strings.ToLower(query)
	for _, rule := range c.rules {
		if rule.Matches(q) {
			return rule.Type
		}
	}
	return c.fallback
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

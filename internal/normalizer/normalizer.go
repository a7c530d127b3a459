package normalizer

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/rpaixao/a11y-analyzer/internal/model"
)

// ErrMalformedOutput is returned when the tool output is not a JSON object.
var ErrMalformedOutput = errors.New("malformed tool output")

// Result is the normalized portion of a report produced from one raw tool
// document.
type Result struct {
	Metrics          model.Metrics
	Issues           []model.Issue
	IssuesBySeverity map[string]int
}

// Normalize maps the audit tool's raw JSON document into the canonical
// report shape. The tool's schema drifts across versions, so every field is
// extracted defensively: missing or malformed sub-fields default rather
// than fail. Only a top-level document that is not a JSON object is an
// error.
func Normalize(raw []byte) (*Result, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: top-level value is not an object", ErrMalformedOutput)
	}

	issues := parseViolations(violationsOf(doc))

	return &Result{
		Metrics:          parseMetrics(categoriesOf(doc)),
		Issues:           issues,
		IssuesBySeverity: model.CountBySeverity(issues),
	}, nil
}

// categoriesOf finds the lighthouse category map, preferring the wrapped
// "lighthouse" document and falling back to a top-level "categories" key.
func categoriesOf(doc map[string]interface{}) map[string]interface{} {
	if lh, ok := asMap(doc["lighthouse"]); ok {
		if categories, ok := asMap(lh["categories"]); ok {
			return categories
		}
	}
	categories, _ := asMap(doc["categories"])
	return categories
}

// violationsOf finds the axe violations list, preferring the wrapped "axe"
// document and falling back to a top-level "violations" key.
func violationsOf(doc map[string]interface{}) []interface{} {
	if axe, ok := asMap(doc["axe"]); ok {
		if violations, ok := doc2list(axe["violations"]); ok {
			return violations
		}
	}
	violations, _ := doc2list(doc["violations"])
	return violations
}

func parseMetrics(categories map[string]interface{}) model.Metrics {
	return model.Metrics{
		Performance:   scoreFor(categories, "performance"),
		Accessibility: scoreFor(categories, "accessibility"),
		BestPractices: scoreFor(categories, "best-practices", "bestPractices"),
		SEO:           scoreFor(categories, "seo"),
	}
}

// scoreFor extracts a category's score fraction and scales it to 0-100,
// rounding half away from zero. Missing, null or non-numeric scores are 0.
func scoreFor(categories map[string]interface{}, keys ...string) int {
	for _, key := range keys {
		category, ok := asMap(categories[key])
		if !ok {
			continue
		}
		score, ok := category["score"].(float64)
		if !ok {
			continue
		}
		return int(math.Round(score * 100))
	}
	return 0
}

func parseViolations(violations []interface{}) []model.Issue {
	issues := []model.Issue{}
	for _, entry := range violations {
		violation, ok := asMap(entry)
		if !ok {
			continue
		}

		impact := toStr(violation["impact"])
		if !model.KnownSeverity(impact) {
			impact = model.SeverityUnknown
		}

		issues = append(issues, model.Issue{
			RuleID:           toStr(violation["id"]),
			Title:            toStr(violation["help"]),
			Description:      toStr(violation["description"]),
			Impact:           impact,
			WCAGCriteria:     joinTags(violation["tags"]),
			AffectedElements: affectedElements(violation["nodes"]),
			Recommendation:   toStr(violation["helpUrl"]),
		})
	}
	return issues
}

// affectedElements collects each node's html snippet, preserving order.
func affectedElements(raw interface{}) []string {
	elements := []string{}
	nodes, _ := doc2list(raw)
	for _, entry := range nodes {
		node, ok := asMap(entry)
		if !ok {
			continue
		}
		if html := toStr(node["html"]); html != "" {
			elements = append(elements, html)
		}
	}
	return elements
}

func joinTags(raw interface{}) string {
	tags, _ := doc2list(raw)
	var parts []string
	for _, tag := range tags {
		if s := toStr(tag); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

func asMap(value interface{}) (map[string]interface{}, bool) {
	m, ok := value.(map[string]interface{})
	return m, ok
}

func doc2list(value interface{}) ([]interface{}, bool) {
	list, ok := value.([]interface{})
	return list, ok
}

func toStr(value interface{}) string {
	if value == nil {
		return ""
	}
	str, ok := value.(string)
	if !ok {
		return fmt.Sprintf("%v", value)
	}
	return str
}

package model

import (
	"strings"
	"time"
)

// Status of a stored report. The core only ever persists completed reports;
// failed scans surface as errors and are never written.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Severity values recognized on an Issue. Anything else coming out of the
// audit tool is normalized to SeverityUnknown.
const (
	SeverityCritical = "critical"
	SeveritySerious  = "serious"
	SeverityModerate = "moderate"
	SeverityMinor    = "minor"
	SeverityUnknown  = "unknown"
)

// TrackedSeverities are the severities counted in a report's histogram, in
// display order. SeverityUnknown is deliberately excluded.
var TrackedSeverities = []string{SeverityCritical, SeveritySerious, SeverityModerate, SeverityMinor}

// KnownSeverity reports whether s is one of the four tracked severities.
func KnownSeverity(s string) bool {
	switch s {
	case SeverityCritical, SeveritySerious, SeverityModerate, SeverityMinor:
		return true
	}
	return false
}

// Metrics holds the four category scores of a scan, each on a 0-100 scale.
type Metrics struct {
	Performance   int `json:"performance"`
	Accessibility int `json:"accessibility"`
	BestPractices int `json:"bestPractices"`
	SEO           int `json:"seo"`
}

// Issue is one normalized accessibility violation. Text fields are always
// present, defaulted to "" when the tool omitted them.
type Issue struct {
	RuleID           string   `json:"ruleId"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Impact           string   `json:"impact"`
	WCAGCriteria     string   `json:"wcagCriteria"`
	AffectedElements []string `json:"affectedElements"`
	Recommendation   string   `json:"recommendation"`
}

// Report is the durable artifact of one scan. It is created once by the
// orchestrator and immutable afterwards except for deletion.
type Report struct {
	ID               string         `json:"id"`
	URL              string         `json:"url"`
	OriginalInput    string         `json:"originalInput"`
	Status           string         `json:"status"`
	CreatedAt        time.Time      `json:"createdAt"`
	Metrics          Metrics        `json:"metrics"`
	Issues           []Issue        `json:"issues"`
	IssuesBySeverity map[string]int `json:"issuesBySeverity"`
}

// Score is the headline number shown for a report: its accessibility metric.
func (r *Report) Score() int {
	return r.Metrics.Accessibility
}

// CountBySeverity buckets issues into the four tracked severities. Issues
// with an unknown impact are kept on the report but counted nowhere.
func CountBySeverity(issues []Issue) map[string]int {
	counts := make(map[string]int, len(TrackedSeverities))
	for _, sev := range TrackedSeverities {
		counts[sev] = 0
	}
	for _, issue := range issues {
		if KnownSeverity(issue.Impact) {
			counts[issue.Impact]++
		}
	}
	return counts
}

// RecentScan is the lightweight projection served by the recent-scans view.
type RecentScan struct {
	ID            string    `json:"id"`
	URL           string    `json:"url"`
	DisplayURL    string    `json:"displayUrl"`
	OriginalInput string    `json:"originalInput"`
	Score         int       `json:"score"`
	CreatedAt     time.Time `json:"createdAt"`
	Status        string    `json:"status"`
}

// DisplayURL strips the scheme prefix from a canonical URL for presentation.
func DisplayURL(url string) string {
	for _, prefix := range []string{"https://", "http://"} {
		if strings.HasPrefix(url, prefix) {
			return strings.TrimPrefix(url, prefix)
		}
	}
	return url
}

package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rpaixao/a11y-analyzer/internal/model"
)

// Pagination bounds enforced server-side regardless of what callers ask for.
const (
	MaxListLimit   = 100
	MaxRecentLimit = 20
)

// InsertReport persists a report and its issues in one transaction. Two
// reports can never share an id.
func (c *Connection) InsertReport(report *model.Report) error {
	tx, err := c.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO reports(id, url, original_input, status, created_at, performance, accessibility, best_practices, seo)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.ID, report.URL, report.OriginalInput, report.Status, report.CreatedAt.UnixNano(),
		report.Metrics.Performance, report.Metrics.Accessibility, report.Metrics.BestPractices, report.Metrics.SEO)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: %s", ErrDuplicateID, report.ID)
		}
		return fmt.Errorf("failed to insert report: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO issues(report_id, seq, rule_id, title, description, impact, wcag_criteria, affected_elements, recommendation)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for seq, issue := range report.Issues {
		elements, err := json.Marshal(issue.AffectedElements)
		if err != nil {
			return fmt.Errorf("failed to encode affected elements: %w", err)
		}
		_, err = stmt.Exec(report.ID, seq, issue.RuleID, issue.Title, issue.Description,
			issue.Impact, issue.WCAGCriteria, string(elements), issue.Recommendation)
		if err != nil {
			return fmt.Errorf("failed to insert issue: %w", err)
		}
	}

	return tx.Commit()
}

// GetReportByID retrieves one report with its issues and severity histogram.
func (c *Connection) GetReportByID(id string) (*model.Report, error) {
	return c.getReport("SELECT id, url, original_input, status, created_at, performance, accessibility, best_practices, seo FROM reports WHERE id = ?", id)
}

// GetReportByURL retrieves the most recently created report for an exact
// canonical URL. When duplicates exist the latest created_at wins.
func (c *Connection) GetReportByURL(url string) (*model.Report, error) {
	return c.getReport(`SELECT id, url, original_input, status, created_at, performance, accessibility, best_practices, seo
        FROM reports WHERE url = ? ORDER BY created_at DESC, rowid DESC LIMIT 1`, url)
}

func (c *Connection) getReport(query string, arg interface{}) (*model.Report, error) {
	var report model.Report
	var createdAt int64
	err := c.QueryRow(query, arg).Scan(&report.ID, &report.URL, &report.OriginalInput, &report.Status, &createdAt,
		&report.Metrics.Performance, &report.Metrics.Accessibility, &report.Metrics.BestPractices, &report.Metrics.SEO)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query report: %w", err)
	}
	report.CreatedAt = time.Unix(0, createdAt)

	issues, err := c.getIssues(report.ID)
	if err != nil {
		return nil, err
	}
	report.Issues = issues
	report.IssuesBySeverity = model.CountBySeverity(issues)

	return &report, nil
}

func (c *Connection) getIssues(reportID string) ([]model.Issue, error) {
	rows, err := c.Query(`SELECT rule_id, title, description, impact, wcag_criteria, affected_elements, recommendation
        FROM issues WHERE report_id = ? ORDER BY seq`, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to query issues: %w", err)
	}
	defer rows.Close()

	issues := []model.Issue{}
	for rows.Next() {
		var issue model.Issue
		var elements string
		if err := rows.Scan(&issue.RuleID, &issue.Title, &issue.Description, &issue.Impact,
			&issue.WCAGCriteria, &elements, &issue.Recommendation); err != nil {
			return nil, err
		}
		issue.AffectedElements = []string{}
		if elements != "" {
			if err := json.Unmarshal([]byte(elements), &issue.AffectedElements); err != nil {
				issue.AffectedElements = []string{}
			}
		}
		if issue.AffectedElements == nil {
			issue.AffectedElements = []string{}
		}
		issues = append(issues, issue)
	}
	return issues, rows.Err()
}

// ListReports returns reports newest first. limit is clamped to [1,100] and
// skip to >= 0.
func (c *Connection) ListReports(skip, limit int) ([]model.Report, error) {
	if skip < 0 {
		skip = 0
	}
	if limit < 1 {
		limit = 1
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	rows, err := c.Query(`SELECT id FROM reports ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?`, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	reports := []model.Report{}
	for _, id := range ids {
		report, err := c.GetReportByID(id)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *report)
	}
	return reports, nil
}

// RecentScans returns a lightweight newest-first projection for the
// dashboard. limit is clamped to [1,20].
func (c *Connection) RecentScans(limit int) ([]model.RecentScan, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}

	rows, err := c.Query(`SELECT id, url, original_input, status, created_at, accessibility
        FROM reports ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent scans: %w", err)
	}
	defer rows.Close()

	scans := []model.RecentScan{}
	for rows.Next() {
		var scan model.RecentScan
		var createdAt int64
		if err := rows.Scan(&scan.ID, &scan.URL, &scan.OriginalInput, &scan.Status, &createdAt, &scan.Score); err != nil {
			return nil, err
		}
		scan.CreatedAt = time.Unix(0, createdAt)
		scan.DisplayURL = model.DisplayURL(scan.URL)
		scans = append(scans, scan)
	}
	return scans, rows.Err()
}

// DeleteReportsByIDs removes the given reports and returns how many rows
// were actually deleted. Unknown ids are not an error, so the operation is
// idempotent and safe to retry.
func (c *Connection) DeleteReportsByIDs(ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	tx, err := c.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM issues WHERE report_id IN ("+placeholders+")", args...); err != nil {
		return 0, fmt.Errorf("failed to delete issues: %w", err)
	}
	result, err := tx.Exec("DELETE FROM reports WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete reports: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(deleted), tx.Commit()
}

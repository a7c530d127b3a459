package db

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rpaixao/a11y-analyzer/internal/model"
)

func newTestConnection(t *testing.T) *Connection {
	t.Helper()
	conn, err := NewConnection(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func testReport(url string, createdAt time.Time) *model.Report {
	issues := []model.Issue{
		{
			RuleID:           "image-alt",
			Title:            "Images must have alternate text",
			Description:      "Ensures img elements have alternate text",
			Impact:           model.SeverityCritical,
			WCAGCriteria:     "wcag2a, wcag111",
			AffectedElements: []string{"<img src='logo.png'>"},
			Recommendation:   "https://dequeuniversity.com/rules/axe/image-alt",
		},
		{
			RuleID:           "color-contrast",
			Title:            "Elements must have sufficient color contrast",
			Description:      "Ensures the contrast ratio meets WCAG thresholds",
			Impact:           model.SeveritySerious,
			WCAGCriteria:     "wcag2aa",
			AffectedElements: []string{},
			Recommendation:   "",
		},
	}
	return &model.Report{
		ID:               uuid.NewString(),
		URL:              url,
		OriginalInput:    model.DisplayURL(url),
		Status:           model.StatusCompleted,
		CreatedAt:        createdAt,
		Metrics:          model.Metrics{Performance: 85, Accessibility: 75, BestPractices: 90, SEO: 88},
		Issues:           issues,
		IssuesBySeverity: model.CountBySeverity(issues),
	}
}

func TestReportRepository(t *testing.T) {
	t.Run("TestInsertAndGetByID", func(t *testing.T) {
		conn := newTestConnection(t)
		report := testReport("https://example.com", time.Now())

		if err := conn.InsertReport(report); err != nil {
			t.Fatalf("InsertReport failed: %v", err)
		}

		loaded, err := conn.GetReportByID(report.ID)
		if err != nil {
			t.Fatalf("GetReportByID failed: %v", err)
		}
		if loaded.URL != report.URL || loaded.OriginalInput != report.OriginalInput {
			t.Errorf("loaded report fields differ: %+v", loaded)
		}
		if loaded.Metrics != report.Metrics {
			t.Errorf("metrics = %+v, want %+v", loaded.Metrics, report.Metrics)
		}
		if len(loaded.Issues) != 2 || loaded.Issues[0].RuleID != "image-alt" {
			t.Errorf("issues lost order or content: %+v", loaded.Issues)
		}
		if len(loaded.Issues[0].AffectedElements) != 1 {
			t.Errorf("affectedElements not round-tripped: %v", loaded.Issues[0].AffectedElements)
		}

		total := 0
		for _, count := range loaded.IssuesBySeverity {
			total += count
		}
		if total != len(loaded.Issues) {
			t.Errorf("severity histogram sum %d != issue count %d", total, len(loaded.Issues))
		}
	})

	t.Run("TestDuplicateIDRejected", func(t *testing.T) {
		conn := newTestConnection(t)
		report := testReport("https://example.com", time.Now())

		if err := conn.InsertReport(report); err != nil {
			t.Fatalf("first insert failed: %v", err)
		}
		if err := conn.InsertReport(report); !errors.Is(err, ErrDuplicateID) {
			t.Errorf("expected ErrDuplicateID, got %v", err)
		}
	})

	t.Run("TestGetByIDNotFound", func(t *testing.T) {
		conn := newTestConnection(t)
		if _, err := conn.GetReportByID("missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("TestGetByURLMostRecentWins", func(t *testing.T) {
		conn := newTestConnection(t)
		base := time.Now()

		older := testReport("https://example.com", base.Add(-time.Hour))
		newer := testReport("https://example.com", base)
		for _, report := range []*model.Report{newer, older} {
			if err := conn.InsertReport(report); err != nil {
				t.Fatalf("InsertReport failed: %v", err)
			}
		}

		loaded, err := conn.GetReportByURL("https://example.com")
		if err != nil {
			t.Fatalf("GetReportByURL failed: %v", err)
		}
		if loaded.ID != newer.ID {
			t.Errorf("expected most recent report %s, got %s", newer.ID, loaded.ID)
		}

		if _, err := conn.GetReportByURL("https://other.example"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound for unknown url, got %v", err)
		}
	})

	t.Run("TestListNewestFirstWithClamping", func(t *testing.T) {
		conn := newTestConnection(t)
		base := time.Now()
		for i := 0; i < 15; i++ {
			report := testReport(fmt.Sprintf("https://site-%d.example", i), base.Add(time.Duration(i)*time.Minute))
			if err := conn.InsertReport(report); err != nil {
				t.Fatalf("InsertReport failed: %v", err)
			}
		}

		page, err := conn.ListReports(0, 10)
		if err != nil {
			t.Fatalf("ListReports failed: %v", err)
		}
		if len(page) != 10 {
			t.Fatalf("expected 10 reports, got %d", len(page))
		}
		if page[0].URL != "https://site-14.example" {
			t.Errorf("expected newest first, got %s", page[0].URL)
		}
		for i := 1; i < len(page); i++ {
			if page[i].CreatedAt.After(page[i-1].CreatedAt) {
				t.Errorf("reports not ordered newest first at index %d", i)
			}
		}

		oversized, err := conn.ListReports(0, 200)
		if err != nil {
			t.Fatalf("ListReports failed: %v", err)
		}
		capped, err := conn.ListReports(0, MaxListLimit)
		if err != nil {
			t.Fatalf("ListReports failed: %v", err)
		}
		if len(oversized) != len(capped) {
			t.Errorf("limit=200 returned %d, limit=100 returned %d, clamping broken", len(oversized), len(capped))
		}

		if _, err := conn.ListReports(-5, 0); err != nil {
			t.Errorf("negative skip and zero limit should be clamped, got error: %v", err)
		}

		skipped, err := conn.ListReports(10, 10)
		if err != nil {
			t.Fatalf("ListReports failed: %v", err)
		}
		if len(skipped) != 5 {
			t.Errorf("expected 5 remaining reports after skip=10, got %d", len(skipped))
		}
	})

	t.Run("TestRecentScansProjection", func(t *testing.T) {
		conn := newTestConnection(t)
		base := time.Now()
		for i := 0; i < 25; i++ {
			report := testReport(fmt.Sprintf("https://site-%d.example", i), base.Add(time.Duration(i)*time.Minute))
			if err := conn.InsertReport(report); err != nil {
				t.Fatalf("InsertReport failed: %v", err)
			}
		}

		scans, err := conn.RecentScans(50)
		if err != nil {
			t.Fatalf("RecentScans failed: %v", err)
		}
		if len(scans) != MaxRecentLimit {
			t.Fatalf("expected limit clamped to %d, got %d", MaxRecentLimit, len(scans))
		}

		first := scans[0]
		if first.URL != "https://site-24.example" {
			t.Errorf("expected newest first, got %s", first.URL)
		}
		if first.DisplayURL != "site-24.example" {
			t.Errorf("displayUrl should strip the scheme, got %q", first.DisplayURL)
		}
		if first.Score != 75 {
			t.Errorf("score should be the accessibility metric, got %d", first.Score)
		}
		if first.Status != model.StatusCompleted {
			t.Errorf("status = %q", first.Status)
		}
	})

	t.Run("TestDeleteByIDs", func(t *testing.T) {
		conn := newTestConnection(t)
		kept := testReport("https://kept.example", time.Now())
		doomed := testReport("https://doomed.example", time.Now())
		for _, report := range []*model.Report{kept, doomed} {
			if err := conn.InsertReport(report); err != nil {
				t.Fatalf("InsertReport failed: %v", err)
			}
		}

		deleted, err := conn.DeleteReportsByIDs(nil)
		if err != nil || deleted != 0 {
			t.Errorf("empty id set: deleted=%d err=%v, want 0 and nil", deleted, err)
		}

		deleted, err = conn.DeleteReportsByIDs([]string{"no-such-id"})
		if err != nil || deleted != 0 {
			t.Errorf("unknown id set: deleted=%d err=%v, want 0 and nil", deleted, err)
		}

		deleted, err = conn.DeleteReportsByIDs([]string{doomed.ID, "no-such-id"})
		if err != nil {
			t.Fatalf("DeleteReportsByIDs failed: %v", err)
		}
		if deleted != 1 {
			t.Errorf("expected 1 deletion, got %d", deleted)
		}

		// Retrying is a no-op.
		deleted, err = conn.DeleteReportsByIDs([]string{doomed.ID})
		if err != nil || deleted != 0 {
			t.Errorf("retry: deleted=%d err=%v, want 0 and nil", deleted, err)
		}

		if _, err := conn.GetReportByID(doomed.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("deleted report still retrievable: %v", err)
		}
		if _, err := conn.GetReportByID(kept.ID); err != nil {
			t.Errorf("unrelated report lost: %v", err)
		}

		var orphans int
		if err := conn.QueryRow("SELECT COUNT(*) FROM issues WHERE report_id = ?", doomed.ID).Scan(&orphans); err != nil {
			t.Fatalf("issue count query failed: %v", err)
		}
		if orphans != 0 {
			t.Errorf("expected no orphaned issues, found %d", orphans)
		}
	})
}

func TestClearAllData(t *testing.T) {
	conn := newTestConnection(t)

	if err := conn.InsertReport(testReport("https://example.com", time.Now())); err != nil {
		t.Fatalf("InsertReport failed: %v", err)
	}
	if err := conn.CreateUser("ana@example.com", "hash"); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if err := conn.ClearAllData(); err != nil {
		t.Fatalf("ClearAllData failed: %v", err)
	}

	for _, table := range []string{"reports", "issues", "users"} {
		var count int
		if err := conn.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
			t.Fatalf("count query for %s failed: %v", table, err)
		}
		if count != 0 {
			t.Errorf("table %s still has %d rows after reset", table, count)
		}
	}
}

func TestUsers(t *testing.T) {
	conn := newTestConnection(t)

	if err := conn.CreateUser("ana@example.com", "hash-1"); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if err := conn.CreateUser("ana@example.com", "hash-2"); !errors.Is(err, ErrUserExists) {
		t.Errorf("expected ErrUserExists, got %v", err)
	}

	hash, err := conn.GetUserHash("ana@example.com")
	if err != nil || hash != "hash-1" {
		t.Errorf("GetUserHash = %q, %v", hash, err)
	}
	if _, err := conn.GetUserHash("nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

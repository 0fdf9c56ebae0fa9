package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/akolanti/GoSummary/internal/domain/summaryModel"
)

func newPostgresStoreWithMock(t *testing.T) (*SQLSummaryStore, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return newSQLSummaryStore(db, postgresDialect), mock, func() { _ = db.Close() }
}

func TestPostgresStoreSummaryIgnoresConflict(t *testing.T) {
	s, mock, done := newPostgresStoreWithMock(t)
	defer done()

	mock.ExpectExec("INSERT INTO summaries .* ON CONFLICT \\(id\\) DO NOTHING").
		WithArgs("abc", sqlmock.AnyArg(), "summary", nil).
		WillReturnResult(sqlmock.NewResult(0, 0))

	id, created, err := s.StoreSummary(context.Background(), summaryModel.StoredSummaryRecord{ID: "abc", Summary: "summary"})
	if err != nil {
		t.Fatalf("StoreSummary() error = %v", err)
	}
	if id != "abc" || created {
		t.Fatalf("expected abc reported as existing, got %s created=%v", id, created)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPostgresFeedbackReturnsNotFoundWhenNoRowsAffected(t *testing.T) {
	s, mock, done := newPostgresStoreWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE summaries SET feedback").
		WithArgs("missing", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.StoreSummaryFeedback(context.Background(), summaryModel.FeedbackRecord{User: "u", DocumentID: "missing"})
	if !summaryModel.IsKind(err, summaryModel.ErrSummaryNotFound) {
		t.Fatalf("expected ErrSummaryNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPostgresGetSummaryReturnsNotFound(t *testing.T) {
	s, mock, done := newPostgresStoreWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT metadata, summary, original_document, feedback FROM summaries").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := s.GetSummary(context.Background(), "missing")
	if !summaryModel.IsKind(err, summaryModel.ErrSummaryNotFound) {
		t.Fatalf("expected ErrSummaryNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPostgresGetSummaryDecodesRow(t *testing.T) {
	s, mock, done := newPostgresStoreWithMock(t)
	defer done()

	rows := sqlmock.NewRows([]string{"metadata", "summary", "original_document", "feedback"}).
		AddRow([]byte(`{"loader":"text/plain"}`), "summary", nil, []byte(`{"user":"u1","feedback":"good"}`))
	mock.ExpectQuery("SELECT metadata, summary").WithArgs("abc").WillReturnRows(rows)

	record, err := s.GetSummary(context.Background(), "abc")
	if err != nil {
		t.Fatalf("GetSummary() error = %v", err)
	}
	if record.Metadata["loader"] != "text/plain" {
		t.Errorf("unexpected metadata %v", record.Metadata)
	}
	if record.OriginalDocument != nil {
		t.Errorf("expected null document")
	}
	if record.Feedback == nil || record.Feedback.User != "u1" || *record.Feedback.Feedback != "good" {
		t.Errorf("unexpected feedback %+v", record.Feedback)
	}
}

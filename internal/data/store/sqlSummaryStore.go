package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/akolanti/GoSummary/internal/config"
	"github.com/akolanti/GoSummary/internal/domain/summaryModel"
	"github.com/akolanti/GoSummary/pkg/logger_i"
)

type sqlDialect struct {
	name           string
	driver         string
	schema         string
	insertIfAbsent string
	updateFeedback string
	selectByID     string
}

var postgresDialect = sqlDialect{
	name:   "postgres",
	driver: "pgx",
	schema: `
CREATE TABLE IF NOT EXISTS summaries (
	id TEXT PRIMARY KEY,
	metadata JSONB NOT NULL,
	summary TEXT NOT NULL,
	original_document BYTEA,
	feedback JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`,
	insertIfAbsent: `INSERT INTO summaries (id, metadata, summary, original_document) VALUES ($1, $2, $3, $4) ON CONFLICT (id) DO NOTHING`,
	updateFeedback: `UPDATE summaries SET feedback = $2 WHERE id = $1`,
	selectByID:     `SELECT metadata, summary, original_document, feedback FROM summaries WHERE id = $1`,
}

var sqliteDialect = sqlDialect{
	name:   "sqlite",
	driver: "sqlite",
	schema: `
CREATE TABLE IF NOT EXISTS summaries (
	id TEXT PRIMARY KEY,
	metadata TEXT NOT NULL,
	summary TEXT NOT NULL,
	original_document BLOB,
	feedback TEXT,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`,
	insertIfAbsent: `INSERT OR IGNORE INTO summaries (id, metadata, summary, original_document) VALUES (?, ?, ?, ?)`,
	updateFeedback: `UPDATE summaries SET feedback = ? WHERE id = ?`,
	selectByID:     `SELECT metadata, summary, original_document, feedback FROM summaries WHERE id = ?`,
}

// SQLSummaryStore serves both the postgres and the sqlite backends; the primary key arbitrates duplicate inserts.
type SQLSummaryStore struct {
	db      *sql.DB
	dialect sqlDialect
	logger  *logger_i.Logger
}

func OpenPostgresSummaryStore(ctx context.Context, dsn string) (*SQLSummaryStore, error) {
	db, err := sql.Open(postgresDialect.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	return openSQLStore(ctx, db, postgresDialect)
}

func OpenSQLiteSummaryStore(ctx context.Context, path string) (*SQLSummaryStore, error) {
	// modernc.org/sqlite takes each pragma as its own _pragma parameter
	db, err := sql.Open(sqliteDialect.driver, path+"?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(1)
	return openSQLStore(ctx, db, sqliteDialect)
}

func openSQLStore(ctx context.Context, db *sql.DB, dialect sqlDialect) (*SQLSummaryStore, error) {
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	s := newSQLSummaryStore(db, dialect)
	if err := s.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func newSQLSummaryStore(db *sql.DB, dialect sqlDialect) *SQLSummaryStore {
	return &SQLSummaryStore{
		db:      db,
		dialect: dialect,
		logger:  logger_i.NewLogger("SummaryStore " + dialect.name),
	}
}

func (s *SQLSummaryStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.schema); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}
	return nil
}

func (s *SQLSummaryStore) StoreSummary(ctx context.Context, record summaryModel.StoredSummaryRecord) (string, bool, error) {
	log := s.logger.WithTrace(ctx, config.TRACE_ID_KEY).With("summaryId", record.ID)
	metadata, err := json.Marshal(record.Metadata)
	if err != nil {
		return "", false, fmt.Errorf("encode metadata: %w", err)
	}

	var document any
	if record.OriginalDocument != nil {
		document = record.OriginalDocument
	}

	res, err := s.db.ExecContext(ctx, s.dialect.insertIfAbsent, record.ID, string(metadata), record.Summary, document)
	if err != nil {
		return "", false, summaryModel.WrapError(summaryModel.ErrTemporary, "insert summary", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return "", false, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		log.Debug("summary already stored")
		return record.ID, false, nil
	}
	log.Debug("saved summary")
	return record.ID, true, nil
}

func (s *SQLSummaryStore) StoreSummaryFeedback(ctx context.Context, feedback summaryModel.FeedbackRecord) error {
	payload, err := json.Marshal(feedback.ToFeedback())
	if err != nil {
		return fmt.Errorf("encode feedback: %w", err)
	}

	var res sql.Result
	if s.dialect.name == sqliteDialect.name {
		res, err = s.db.ExecContext(ctx, s.dialect.updateFeedback, string(payload), feedback.DocumentID)
	} else {
		res, err = s.db.ExecContext(ctx, s.dialect.updateFeedback, feedback.DocumentID, string(payload))
	}
	if err != nil {
		return summaryModel.WrapError(summaryModel.ErrTemporary, "update feedback", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return summaryModel.NotFound(feedback.DocumentID)
	}
	return nil
}

func (s *SQLSummaryStore) GetSummary(ctx context.Context, id string) (summaryModel.StoredSummaryRecord, error) {
	record := summaryModel.StoredSummaryRecord{ID: id}
	var metadata, document, feedback []byte

	err := s.db.QueryRowContext(ctx, s.dialect.selectByID, id).Scan(&metadata, &record.Summary, &document, &feedback)
	if errors.Is(err, sql.ErrNoRows) {
		return summaryModel.StoredSummaryRecord{}, summaryModel.NotFound(id)
	}
	if err != nil {
		return summaryModel.StoredSummaryRecord{}, summaryModel.WrapError(summaryModel.ErrTemporary, "select summary", err)
	}

	if err = json.Unmarshal(metadata, &record.Metadata); err != nil {
		return summaryModel.StoredSummaryRecord{}, fmt.Errorf("decode metadata: %w", err)
	}
	record.OriginalDocument = document
	if feedback != nil {
		var f summaryModel.Feedback
		if err = json.Unmarshal(feedback, &f); err != nil {
			return summaryModel.StoredSummaryRecord{}, fmt.Errorf("decode feedback: %w", err)
		}
		record.Feedback = &f
	}
	return record, nil
}

func (s *SQLSummaryStore) Close(ctx context.Context) error {
	return s.db.Close()
}

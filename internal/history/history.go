// Package history keeps an append-only SQLite record of completed audits so
// results can be listed per page and compared over time.
package history

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/raysh454/seoaudit/internal/logging"
	"github.com/raysh454/seoaudit/internal/model"
	"github.com/raysh454/seoaudit/internal/utils"
)

//go:embed schema.sql
var schemaFS embed.FS

var (
	ErrNotFound        = errors.New("audit not found in history")
	ErrAlreadyRecorded = errors.New("audit already recorded")
)

// Entry is the summary row of a recorded audit.
type Entry struct {
	JobID           string                `json:"job_id"`
	SiteKey         string                `json:"site_key"`
	URL             string                `json:"url"`
	FinalURL        string                `json:"final_url"`
	Scores          model.Scores          `json:"scores"`
	ConfidenceLevel model.ConfidenceLevel `json:"confidence_level"`
	ScoringVersion  string                `json:"scoring_version"`
	ReceivedAt      time.Time             `json:"received_at"`
}

// Store is the SQLite backed history.
type Store struct {
	db     *sql.DB
	logger logging.Logger
	owned  bool
}

// Open opens (creating if needed) the history database at path.
func Open(path string, logger logging.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("history path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA journal_mode = WAL; PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history pragmas: %w", err)
	}

	s, err := New(db, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.owned = true
	return s, nil
}

// New runs the schema on db and returns a Store using it. The caller keeps
// ownership of db.
func New(db *sql.DB, logger logging.Logger) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	if logger == nil {
		logger = logging.Nop()
	}

	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return nil, fmt.Errorf("failed to read schema.sql: %w", err)
	}
	if _, err := db.Exec(string(schemaSQL)); err != nil {
		return nil, fmt.Errorf("failed to execute schema: %w", err)
	}

	return &Store{db: db, logger: logger.With(logging.Field{Key: "component", Value: "history"})}, nil
}

// Save records result. A job can only be recorded once; a second Save of the
// same job returns ErrAlreadyRecorded.
func (s *Store) Save(ctx context.Context, result *model.AuditResult) (*Entry, error) {
	if result == nil {
		return nil, fmt.Errorf("save: nil result")
	}
	if result.JobID == "" {
		return nil, fmt.Errorf("save: result has no job id")
	}
	siteKey, err := utils.SiteKey(firstNonEmpty(result.URL, result.FinalURL))
	if err != nil {
		return nil, fmt.Errorf("save: site key: %w", err)
	}

	received := result.ReceivedAt
	if received.IsZero() {
		received = time.Now()
	}
	received = received.UTC()

	stored := result.Clone()
	stored.ReceivedAt = received
	blob, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("save: encode result: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO audits (job_id, site_key, url, final_url, overall, technical, content, ai,
		                    confidence_level, scoring_version, received_at, result_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(job_id) DO NOTHING`,
		stored.JobID, siteKey, stored.URL, stored.FinalURL,
		stored.Scores.Overall, stored.Scores.Technical, stored.Scores.Content, stored.Scores.AI,
		string(stored.Confidence.Level), stored.ScoringVersion, received.UnixNano(), string(blob))
	if err != nil {
		return nil, fmt.Errorf("save: insert: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrAlreadyRecorded
	}

	s.logger.Info("recorded audit",
		logging.Field{Key: "job_id", Value: stored.JobID},
		logging.Field{Key: "site_key", Value: siteKey},
		logging.Field{Key: "overall", Value: stored.Scores.Overall})

	return entryOf(stored, siteKey), nil
}

// Get returns the full recorded result of jobID.
func (s *Store) Get(ctx context.Context, jobID string) (*model.AuditResult, error) {
	var blob string
	err := s.db.QueryRowContext(ctx, `SELECT result_json FROM audits WHERE job_id = ?`, jobID).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", jobID, err)
	}

	var res model.AuditResult
	if err := json.Unmarshal([]byte(blob), &res); err != nil {
		return nil, fmt.Errorf("get %s: decode: %w", jobID, err)
	}
	return &res, nil
}

// List returns entries newest first. An empty site lists every page;
// otherwise site is reduced to its site key first. limit <= 0 means no limit.
func (s *Store) List(ctx context.Context, site string, limit int) ([]Entry, error) {
	query := `SELECT job_id, site_key, url, final_url, overall, technical, content, ai,
	                 confidence_level, scoring_version, received_at
	          FROM audits`
	var args []any
	if strings.TrimSpace(site) != "" {
		key, err := utils.SiteKey(site)
		if err != nil {
			return nil, fmt.Errorf("list: site key: %w", err)
		}
		query += ` WHERE site_key = ?`
		args = append(args, key)
	}
	query += ` ORDER BY received_at DESC, job_id`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var (
			e        Entry
			level    string
			received int64
		)
		if err := rows.Scan(&e.JobID, &e.SiteKey, &e.URL, &e.FinalURL,
			&e.Scores.Overall, &e.Scores.Technical, &e.Scores.Content, &e.Scores.AI,
			&level, &e.ScoringVersion, &received); err != nil {
			return nil, fmt.Errorf("list: scan: %w", err)
		}
		e.ConfidenceLevel = model.ConfidenceLevel(level)
		e.ReceivedAt = time.Unix(0, received).UTC()
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return out, nil
}

// Latest returns up to n full results for site, newest first.
func (s *Store) Latest(ctx context.Context, site string, n int) ([]*model.AuditResult, error) {
	if strings.TrimSpace(site) == "" {
		return nil, fmt.Errorf("latest: site is required")
	}
	if n <= 0 {
		n = 1
	}
	entries, err := s.List(ctx, site, n)
	if err != nil {
		return nil, err
	}
	out := make([]*model.AuditResult, 0, len(entries))
	for _, e := range entries {
		res, err := s.Get(ctx, e.JobID)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

// Close closes the database if the Store opened it.
func (s *Store) Close() error {
	if s.owned && s.db != nil {
		return s.db.Close()
	}
	return nil
}

func entryOf(r *model.AuditResult, siteKey string) *Entry {
	return &Entry{
		JobID:           r.JobID,
		SiteKey:         siteKey,
		URL:             r.URL,
		FinalURL:        r.FinalURL,
		Scores:          r.Scores,
		ConfidenceLevel: r.Confidence.Level,
		ScoringVersion:  r.ScoringVersion,
		ReceivedAt:      r.ReceivedAt,
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/venuepulse/sentiment-engine/internal/models"
)

const mentionsSchema = `
CREATE TABLE IF NOT EXISTS mentions (
	source_id        TEXT PRIMARY KEY,
	id               TEXT NOT NULL,
	entity_name      TEXT NOT NULL,
	text             TEXT NOT NULL,
	created_at       INTEGER NOT NULL,
	score            REAL NOT NULL,
	confidence       REAL NOT NULL,
	label            TEXT NOT NULL,
	per_model_scores TEXT,
	emotions         TEXT,
	topic_tags       TEXT,
	is_derived       INTEGER NOT NULL DEFAULT 0,
	source_url       TEXT
);
CREATE INDEX IF NOT EXISTS idx_mentions_entity_created ON mentions(entity_name, created_at);
`

// SQLiteStore is the durable MentionStore. Timestamps are stored as
// Unix nanoseconds in UTC.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(mentionsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Upsert(ctx context.Context, mention models.Mention) error {
	perModel, err := json.Marshal(mention.Sentiment.PerModelScores)
	if err != nil {
		return fmt.Errorf("marshalling per-model scores: %w", err)
	}
	emotions, err := json.Marshal(mention.Emotions)
	if err != nil {
		return fmt.Errorf("marshalling emotions: %w", err)
	}
	tags, err := json.Marshal(mention.TopicTags)
	if err != nil {
		return fmt.Errorf("marshalling topic tags: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO mentions
			(source_id, id, entity_name, text, created_at, score, confidence, label,
			 per_model_scores, emotions, topic_tags, is_derived, source_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_id) DO UPDATE SET
			id = excluded.id,
			entity_name = excluded.entity_name,
			text = excluded.text,
			created_at = excluded.created_at,
			score = excluded.score,
			confidence = excluded.confidence,
			label = excluded.label,
			per_model_scores = excluded.per_model_scores,
			emotions = excluded.emotions,
			topic_tags = excluded.topic_tags,
			is_derived = excluded.is_derived,
			source_url = excluded.source_url
	`, mention.SourceID, mention.ID, mention.EntityName, mention.Text,
		mention.CreatedAt.UTC().UnixNano(),
		mention.Sentiment.Score, mention.Sentiment.Confidence, mention.Sentiment.Label,
		string(perModel), string(emotions), string(tags),
		mention.IsDerived, mention.SourceURL)

	if err != nil {
		return fmt.Errorf("saving mention: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Query(ctx context.Context, filter Filter) ([]models.Mention, error) {
	query := `
		SELECT source_id, id, entity_name, text, created_at, score, confidence, label,
		       per_model_scores, emotions, topic_tags, is_derived, source_url
		FROM mentions`

	var clauses []string
	var args []interface{}
	if len(filter.Entities) > 0 {
		placeholders := strings.Repeat("?,", len(filter.Entities))
		clauses = append(clauses, fmt.Sprintf("entity_name IN (%s)", placeholders[:len(placeholders)-1]))
		for _, entity := range filter.Entities {
			args = append(args, entity)
		}
	}
	if !filter.Since.IsZero() {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, filter.Since.UTC().UnixNano())
	}
	if !filter.Until.IsZero() {
		clauses = append(clauses, "created_at <= ?")
		args = append(args, filter.Until.UTC().UnixNano())
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at, source_id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying mentions: %w", err)
	}
	defer rows.Close()

	mentions := make([]models.Mention, 0)
	for rows.Next() {
		m, err := scanMention(rows)
		if err != nil {
			return nil, err
		}
		mentions = append(mentions, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating mentions: %w", err)
	}
	return mentions, nil
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM mentions").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting mentions: %w", err)
	}
	return count, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanMention(rows *sql.Rows) (models.Mention, error) {
	var m models.Mention
	var createdAt int64
	var perModel, emotions, tags sql.NullString
	var sourceURL sql.NullString

	if err := rows.Scan(&m.SourceID, &m.ID, &m.EntityName, &m.Text, &createdAt,
		&m.Sentiment.Score, &m.Sentiment.Confidence, &m.Sentiment.Label,
		&perModel, &emotions, &tags, &m.IsDerived, &sourceURL); err != nil {
		return models.Mention{}, fmt.Errorf("scanning mention: %w", err)
	}

	m.CreatedAt = unixNano(createdAt)
	m.SourceURL = sourceURL.String

	if perModel.Valid && perModel.String != "null" {
		if err := json.Unmarshal([]byte(perModel.String), &m.Sentiment.PerModelScores); err != nil {
			return models.Mention{}, fmt.Errorf("unmarshalling per-model scores: %w", err)
		}
	}
	if emotions.Valid && emotions.String != "null" {
		if err := json.Unmarshal([]byte(emotions.String), &m.Emotions); err != nil {
			return models.Mention{}, fmt.Errorf("unmarshalling emotions: %w", err)
		}
	}
	if tags.Valid && tags.String != "null" {
		if err := json.Unmarshal([]byte(tags.String), &m.TopicTags); err != nil {
			return models.Mention{}, fmt.Errorf("unmarshalling topic tags: %w", err)
		}
	}

	return m, nil
}

func unixNano(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

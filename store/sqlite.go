package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/charisk/newswire/internal/errors"
	"github.com/charisk/newswire/model"
	"github.com/charisk/newswire/services"
)

// SQLite is a modernc.org/sqlite-backed NewsStore for single-node deploys
// that don't want to run Postgres.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (and creates, if needed) the database file at path.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	// modernc's driver serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent writers.
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("pinging sqlite: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close closes the database file.
func (s *SQLite) Close() error {
	return s.db.Close()
}

const sqliteNewsSchema = `
CREATE TABLE IF NOT EXISTS news (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	image_url   TEXT NOT NULL DEFAULT '',
	credit      TEXT NOT NULL DEFAULT '',
	reporter    TEXT NOT NULL DEFAULT '',
	language    TEXT NOT NULL DEFAULT 'en',
	region      TEXT NOT NULL DEFAULT 'Global',
	category    TEXT NOT NULL DEFAULT '',
	date        TIMESTAMP NOT NULL,
	message_id  INTEGER NOT NULL DEFAULT 0
)`

// EnsureSchema creates the news table when it does not exist yet.
func (s *SQLite) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteNewsSchema); err != nil {
		return fmt.Errorf("creating news table: %w", err)
	}
	return nil
}

func (s *SQLite) FetchAll(ctx context.Context) ([]model.News, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+newsColumns+" FROM news ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("fetching all news: %w", err)
	}
	return scanNewsRows(rows)
}

func (s *SQLite) FetchByIDs(ctx context.Context, ids []int64) ([]model.News, error) {
	if len(ids) == 0 {
		return []model.News{}, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+newsColumns+" FROM news WHERE id IN ("+strings.Join(placeholders, ",")+")",
		args...)
	if err != nil {
		return nil, fmt.Errorf("fetching news by ids: %w", err)
	}
	return scanNewsRows(rows)
}

func (s *SQLite) GetByID(ctx context.Context, id int64) (model.News, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+newsColumns+" FROM news WHERE id = ?", id)
	if err != nil {
		return model.News{}, fmt.Errorf("fetching news %d: %w", id, err)
	}
	items, err := scanNewsRows(rows)
	if err != nil {
		return model.News{}, err
	}
	if len(items) == 0 {
		return model.News{}, errors.NewNewsNotFoundError(id)
	}
	return items[0], nil
}

func (s *SQLite) SearchCandidates(ctx context.Context, term string) ([]model.News, error) {
	pattern := "%" + strings.ToLower(term) + "%"
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+newsColumns+` FROM news
		 WHERE LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(category) LIKE ?
		 ORDER BY id`, pattern, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("prefiltering news candidates: %w", err)
	}
	return scanNewsRows(rows)
}

func (s *SQLite) RecentByLanguage(ctx context.Context, lang string, limit int) ([]model.News, error) {
	if limit <= 0 {
		limit = defaultFilterLimit
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+newsColumns+" FROM news WHERE language = ? ORDER BY date DESC LIMIT ?",
		lang, limit)
	if err != nil {
		return nil, fmt.Errorf("fetching recent news: %w", err)
	}
	return scanNewsRows(rows)
}

func (s *SQLite) FilterByLanguage(ctx context.Context, lang string) ([]model.News, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+newsColumns+" FROM news WHERE language = ? ORDER BY date DESC", lang)
	if err != nil {
		return nil, fmt.Errorf("filtering news by language: %w", err)
	}
	return scanNewsRows(rows)
}

func (s *SQLite) Filter(ctx context.Context, filter services.NewsFilter) ([]model.News, error) {
	conditions := make([]string, 0, 5)
	args := make([]any, 0, 6)

	if filter.Topic != "" {
		conditions = append(conditions, "LOWER(title) LIKE ?")
		args = append(args, "%"+strings.ToLower(filter.Topic)+"%")
	}
	if filter.Nation != "" {
		conditions = append(conditions, "LOWER(description) LIKE ?")
		args = append(args, "%"+strings.ToLower(filter.Nation)+"%")
	}
	if filter.Author != "" {
		conditions = append(conditions, "LOWER(reporter) LIKE ?")
		args = append(args, "%"+strings.ToLower(filter.Author)+"%")
	}
	if filter.Language != "" {
		conditions = append(conditions, "language = ?")
		args = append(args, filter.Language)
	}
	if filter.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, filter.Category)
	}

	query := "SELECT " + newsColumns + " FROM news"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultFilterLimit
	}
	query += " ORDER BY date DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("filtering news: %w", err)
	}
	return scanNewsRows(rows)
}

func (s *SQLite) Create(ctx context.Context, n *model.News) error {
	if n.Date.IsZero() {
		n.Date = time.Now().UTC()
	}
	n.Region = model.ParseRegion(string(n.Region))
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO news (title, description, image_url, credit, reporter, language, region, category, date, message_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.Title, n.Description, n.ImageURL, n.Credit, n.Reporter,
		n.Language, string(n.Region), n.Category, n.Date, n.MessageID)
	if err != nil {
		return fmt.Errorf("inserting news: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading inserted news id: %w", err)
	}
	n.ID = id
	return nil
}

func (s *SQLite) Update(ctx context.Context, n model.News) error {
	n.Region = model.ParseRegion(string(n.Region))
	res, err := s.db.ExecContext(ctx,
		`UPDATE news
		 SET title = ?, description = ?, image_url = ?, credit = ?, reporter = ?,
		     language = ?, region = ?, category = ?, date = ?, message_id = ?
		 WHERE id = ?`,
		n.Title, n.Description, n.ImageURL, n.Credit, n.Reporter,
		n.Language, string(n.Region), n.Category, n.Date, n.MessageID, n.ID)
	if err != nil {
		return fmt.Errorf("updating news %d: %w", n.ID, err)
	}
	return requireRowAffected(res, n.ID)
}

func (s *SQLite) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM news WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting news %d: %w", id, err)
	}
	return requireRowAffected(res, id)
}

var _ services.NewsStore = (*SQLite)(nil)

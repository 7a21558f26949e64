package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/charisk/newswire/internal/errors"
	"github.com/charisk/newswire/model"
	"github.com/charisk/newswire/services"
)

// Postgres is the lib/pq-backed NewsStore.
type Postgres struct {
	db *sql.DB
}

// NewPostgres opens a connection pool against dsn and verifies it with a
// bounded ping.
func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return &Postgres{db: db}, nil
}

// Close releases the connection pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}

const newsSchema = `
CREATE TABLE IF NOT EXISTS news (
	id          BIGSERIAL PRIMARY KEY,
	title       VARCHAR(255) NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	image_url   VARCHAR(500) NOT NULL DEFAULT '',
	credit      VARCHAR(100) NOT NULL DEFAULT '',
	reporter    VARCHAR(100) NOT NULL DEFAULT '',
	language    VARCHAR(10) NOT NULL DEFAULT 'en',
	region      VARCHAR(10) NOT NULL DEFAULT 'Global',
	category    TEXT NOT NULL DEFAULT '',
	date        TIMESTAMPTZ NOT NULL DEFAULT now(),
	message_id  BIGINT NOT NULL DEFAULT 0
)`

// EnsureSchema creates the news table when it does not exist yet.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, newsSchema); err != nil {
		return fmt.Errorf("creating news table: %w", err)
	}
	return nil
}

const newsColumns = "id, title, description, image_url, credit, reporter, language, region, category, date, message_id"

func scanNewsRows(rows *sql.Rows) ([]model.News, error) {
	defer rows.Close()
	var items []model.News
	for rows.Next() {
		var n model.News
		var region string
		if err := rows.Scan(&n.ID, &n.Title, &n.Description, &n.ImageURL, &n.Credit,
			&n.Reporter, &n.Language, &region, &n.Category, &n.Date, &n.MessageID); err != nil {
			return nil, fmt.Errorf("scanning news row: %w", err)
		}
		n.Region = model.ParseRegion(region)
		items = append(items, n)
	}
	return items, rows.Err()
}

func (p *Postgres) FetchAll(ctx context.Context) ([]model.News, error) {
	rows, err := p.db.QueryContext(ctx, "SELECT "+newsColumns+" FROM news ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("fetching all news: %w", err)
	}
	return scanNewsRows(rows)
}

func (p *Postgres) FetchByIDs(ctx context.Context, ids []int64) ([]model.News, error) {
	if len(ids) == 0 {
		return []model.News{}, nil
	}
	rows, err := p.db.QueryContext(ctx,
		"SELECT "+newsColumns+" FROM news WHERE id = ANY($1)", pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("fetching news by ids: %w", err)
	}
	return scanNewsRows(rows)
}

func (p *Postgres) GetByID(ctx context.Context, id int64) (model.News, error) {
	rows, err := p.db.QueryContext(ctx,
		"SELECT "+newsColumns+" FROM news WHERE id = $1", id)
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

func (p *Postgres) SearchCandidates(ctx context.Context, term string) ([]model.News, error) {
	pattern := "%" + term + "%"
	rows, err := p.db.QueryContext(ctx,
		"SELECT "+newsColumns+` FROM news
		 WHERE title ILIKE $1 OR description ILIKE $1 OR category ILIKE $1
		 ORDER BY id`, pattern)
	if err != nil {
		return nil, fmt.Errorf("prefiltering news candidates: %w", err)
	}
	return scanNewsRows(rows)
}

func (p *Postgres) RecentByLanguage(ctx context.Context, lang string, limit int) ([]model.News, error) {
	if limit <= 0 {
		limit = defaultFilterLimit
	}
	rows, err := p.db.QueryContext(ctx,
		"SELECT "+newsColumns+" FROM news WHERE language = $1 ORDER BY date DESC LIMIT $2",
		lang, limit)
	if err != nil {
		return nil, fmt.Errorf("fetching recent news: %w", err)
	}
	return scanNewsRows(rows)
}

func (p *Postgres) FilterByLanguage(ctx context.Context, lang string) ([]model.News, error) {
	rows, err := p.db.QueryContext(ctx,
		"SELECT "+newsColumns+" FROM news WHERE language = $1 ORDER BY date DESC", lang)
	if err != nil {
		return nil, fmt.Errorf("filtering news by language: %w", err)
	}
	return scanNewsRows(rows)
}

func (p *Postgres) Filter(ctx context.Context, filter services.NewsFilter) ([]model.News, error) {
	conditions := make([]string, 0, 5)
	args := make([]any, 0, 5)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Topic != "" {
		conditions = append(conditions, "title ILIKE "+arg("%"+filter.Topic+"%"))
	}
	if filter.Nation != "" {
		conditions = append(conditions, "description ILIKE "+arg("%"+filter.Nation+"%"))
	}
	if filter.Author != "" {
		conditions = append(conditions, "reporter ILIKE "+arg("%"+filter.Author+"%"))
	}
	if filter.Language != "" {
		conditions = append(conditions, "language = "+arg(filter.Language))
	}
	if filter.Category != "" {
		conditions = append(conditions, "category = "+arg(filter.Category))
	}

	query := "SELECT " + newsColumns + " FROM news"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultFilterLimit
	}
	query += " ORDER BY date DESC LIMIT " + arg(limit)

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("filtering news: %w", err)
	}
	return scanNewsRows(rows)
}

func (p *Postgres) Create(ctx context.Context, n *model.News) error {
	if n.Date.IsZero() {
		n.Date = time.Now().UTC()
	}
	n.Region = model.ParseRegion(string(n.Region))
	err := p.db.QueryRowContext(ctx,
		`INSERT INTO news (title, description, image_url, credit, reporter, language, region, category, date, message_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id`,
		n.Title, n.Description, n.ImageURL, n.Credit, n.Reporter,
		n.Language, string(n.Region), n.Category, n.Date, n.MessageID,
	).Scan(&n.ID)
	if err != nil {
		return fmt.Errorf("inserting news: %w", err)
	}
	return nil
}

func (p *Postgres) Update(ctx context.Context, n model.News) error {
	n.Region = model.ParseRegion(string(n.Region))
	res, err := p.db.ExecContext(ctx,
		`UPDATE news
		 SET title = $1, description = $2, image_url = $3, credit = $4, reporter = $5,
		     language = $6, region = $7, category = $8, date = $9, message_id = $10
		 WHERE id = $11`,
		n.Title, n.Description, n.ImageURL, n.Credit, n.Reporter,
		n.Language, string(n.Region), n.Category, n.Date, n.MessageID, n.ID)
	if err != nil {
		return fmt.Errorf("updating news %d: %w", n.ID, err)
	}
	return requireRowAffected(res, n.ID)
}

func (p *Postgres) Delete(ctx context.Context, id int64) error {
	res, err := p.db.ExecContext(ctx, "DELETE FROM news WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deleting news %d: %w", id, err)
	}
	return requireRowAffected(res, id)
}

func requireRowAffected(res sql.Result, id int64) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if affected == 0 {
		return errors.NewNewsNotFoundError(id)
	}
	return nil
}

var _ services.NewsStore = (*Postgres)(nil)

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Vodeneev/footodds/internal/pkg/config"
	"github.com/Vodeneev/footodds/internal/pkg/models"
	_ "github.com/lib/pq"
)

var _ Store = (*PostgresStore)(nil)

// PostgresStore keeps every scraped record in the odds table.
type PostgresStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewPostgresStore connects, pings and creates the schema when missing.
func NewPostgresStore(cfg *config.PostgresConfig) (*PostgresStore, error) {
	if cfg == nil || strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	s := NewPostgresStoreWithDB(db)
	if err := s.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	slog.Info("PostgreSQL odds storage initialized")
	return s, nil
}

// NewPostgresStoreWithDB wraps an open handle. The schema is not touched.
func NewPostgresStoreWithDB(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

func (s *PostgresStore) initSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS odds (
		id SERIAL PRIMARY KEY,
		bookmaker VARCHAR(100) NOT NULL,
		match_name VARCHAR(500) NOT NULL,
		home_team VARCHAR(200) NOT NULL,
		away_team VARCHAR(200) NOT NULL,
		home_odds DECIMAL(10, 4) NOT NULL,
		draw_odds DECIMAL(10, 4),
		away_odds DECIMAL(10, 4) NOT NULL,
		league VARCHAR(200) NOT NULL,
		url TEXT NOT NULL DEFAULT '',
		timestamp TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_odds_bookmaker ON odds(bookmaker);
	CREATE INDEX IF NOT EXISTS idx_odds_timestamp ON odds(timestamp);
	CREATE INDEX IF NOT EXISTS idx_odds_match_name ON odds(match_name);
	`
	_, err := s.db.ExecContext(ctx, query)
	return err
}

const insertOddsQuery = `
	INSERT INTO odds (bookmaker, match_name, home_team, away_team, home_odds, draw_odds, away_odds, league, url, timestamp)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

// Save inserts all records in one transaction.
func (s *PostgresStore) Save(ctx context.Context, records []models.OddsRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insertOddsQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		var draw sql.NullFloat64
		if r.DrawOdds != nil {
			draw = sql.NullFloat64{Float64: *r.DrawOdds, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			r.Bookmaker, r.MatchName, r.HomeTeam, r.AwayTeam,
			r.HomeOdds, draw, r.AwayOdds, r.League, r.URL, r.Timestamp,
		); err != nil {
			return fmt.Errorf("failed to insert odds for %s: %w", r.MatchName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit odds: %w", err)
	}
	slog.Debug("Saved odds records", "count", len(records))
	return nil
}

const selectOddsColumns = `SELECT bookmaker, match_name, home_team, away_team, home_odds, draw_odds, away_odds, league, url, timestamp FROM odds`

// Query builds a WHERE clause from the non-zero filter fields.
func (s *PostgresStore) Query(ctx context.Context, filter Filter) ([]models.OddsRecord, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.Bookmaker != "" {
		add("LOWER(bookmaker) = LOWER($%d)", filter.Bookmaker)
	}
	if filter.League != "" {
		add("league = $%d", filter.League)
	}
	if filter.MatchContains != "" {
		add("match_name ILIKE $%d", "%"+filter.MatchContains+"%")
	}
	if !filter.Since.IsZero() {
		add("timestamp >= $%d", filter.Since)
	}

	query := selectOddsColumns
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, filter.limit())
	query += fmt.Sprintf(" ORDER BY timestamp DESC LIMIT $%d", len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query odds: %w", err)
	}
	defer rows.Close()

	var out []models.OddsRecord
	for rows.Next() {
		var (
			r    models.OddsRecord
			draw sql.NullFloat64
		)
		if err := rows.Scan(&r.Bookmaker, &r.MatchName, &r.HomeTeam, &r.AwayTeam,
			&r.HomeOdds, &draw, &r.AwayOdds, &r.League, &r.URL, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan odds row: %w", err)
		}
		if draw.Valid {
			d := draw.Float64
			r.DrawOdds = &d
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read odds rows: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) MatchOdds(ctx context.Context, name string) ([]models.OddsRecord, error) {
	return s.Query(ctx, Filter{MatchContains: name})
}

func (s *PostgresStore) Statistics(ctx context.Context) (Statistics, error) {
	var st Statistics
	now := s.now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(DISTINCT bookmaker),
		       COUNT(DISTINCT match_name),
		       COUNT(*) FILTER (WHERE timestamp >= $1)
		FROM odds`, startOfDay).Scan(&st.TotalOdds, &st.TotalBookmakers, &st.TotalMatches, &st.OddsToday)
	if err != nil {
		return Statistics{}, fmt.Errorf("failed to read statistics: %w", err)
	}
	return st, nil
}

func (s *PostgresStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

package source

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kamusis/acco/internal/directory"
)

// SQLSource pages profiles out of a SQLite catalog database.
type SQLSource struct {
	db       *sql.DB
	pageSize int
}

// OpenSQLite opens (creating if needed) the catalog database at path.
func OpenSQLite(path string, pageSize int) (*SQLSource, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	conn, err := sql.Open("sqlite3", fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_timeout=5000", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite doesn't support multiple writers.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(time.Hour)

	s := &SQLSource{db: conn, pageSize: pageSize}
	if err := s.EnsureSchema(context.Background()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// Close releases the database.
func (s *SQLSource) Close() error {
	return s.db.Close()
}

// EnsureSchema creates the profiles table if it does not exist.
func (s *SQLSource) EnsureSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS profiles (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT UNIQUE NOT NULL,
			name TEXT NOT NULL,
			designation TEXT NOT NULL DEFAULT '',
			location TEXT NOT NULL DEFAULT '',
			experience TEXT NOT NULL DEFAULT '',
			specializations TEXT NOT NULL DEFAULT '[]',
			rating REAL NOT NULL DEFAULT 0,
			reviews INTEGER NOT NULL DEFAULT 0,
			price TEXT NOT NULL DEFAULT '',
			image TEXT NOT NULL DEFAULT '',
			location_code TEXT NOT NULL DEFAULT '',
			expertise TEXT NOT NULL DEFAULT '',
			experience_bracket TEXT NOT NULL DEFAULT '',
			rating_floor INTEGER NOT NULL DEFAULT 0,
			price_bracket TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_profiles_location ON profiles(location_code)`,
	}
	for _, q := range queries {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

// Insert stores profiles in order, ignoring ids already present. It returns
// the number of new rows.
func (s *SQLSource) Insert(ctx context.Context, profiles []directory.Profile) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO profiles
		(id, name, designation, location, experience, specializations, rating, reviews, price, image,
		 location_code, expertise, experience_bracket, rating_floor, price_bracket)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	var added int
	for _, p := range profiles {
		p = p.Clone()
		p.Normalize()
		if err := p.Validate(); err != nil {
			return 0, err
		}
		specs, err := json.Marshal(p.Specializations)
		if err != nil {
			return 0, err
		}
		res, err := stmt.ExecContext(ctx,
			p.ID, p.Name, p.Designation, p.Location, p.Experience, string(specs), p.Rating, p.Reviews, p.Price, p.Image,
			p.Attrs.Location, p.Attrs.ExpertiseString(), string(p.Attrs.Experience), p.Attrs.RatingFloor, string(p.Attrs.Price))
		if err != nil {
			return 0, fmt.Errorf("failed to insert %q: %w", p.Name, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return added, nil
}

// Count returns the number of stored profiles.
func (s *SQLSource) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&n)
	return n, err
}

// FetchPage implements PageSource.
func (s *SQLSource) FetchPage(ctx context.Context, cursor string) (Page, error) {
	off, err := offsetCursor(cursor)
	if err != nil {
		return Page{}, err
	}

	// One extra row tells us whether another page exists.
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, designation, location, experience, specializations,
		rating, reviews, price, image, location_code, expertise, experience_bracket, rating_floor, price_bracket
		FROM profiles ORDER BY seq LIMIT ? OFFSET ?`, s.pageSize+1, off)
	if err != nil {
		return Page{}, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	var out []directory.Profile
	for rows.Next() {
		var (
			p                   directory.Profile
			specs, expertise    string
			experience, bracket string
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Designation, &p.Location, &p.Experience, &specs,
			&p.Rating, &p.Reviews, &p.Price, &p.Image, &p.Attrs.Location, &expertise, &experience,
			&p.Attrs.RatingFloor, &bracket); err != nil {
			return Page{}, fmt.Errorf("failed to scan profile: %w", err)
		}
		if err := json.Unmarshal([]byte(specs), &p.Specializations); err != nil {
			return Page{}, fmt.Errorf("invalid specializations for %q: %w", p.Name, err)
		}
		p.Attrs.Expertise = directory.SplitExpertise(expertise)
		p.Attrs.Experience = directory.ExperienceBracket(experience)
		p.Attrs.Price = directory.PriceBracket(bracket)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return Page{}, err
	}

	next := ""
	if len(out) > s.pageSize {
		out = out[:s.pageSize]
		next = strconv.Itoa(off + s.pageSize)
	}
	return Page{Profiles: out, Next: next}, nil
}

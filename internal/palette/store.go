package palette

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"texel/internal/object"
)

var ErrNotFound = errors.New("palette not found")

const (
	DriverSQLite   = "sqlite3"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

var driverAliases = map[string]string{
	"sqlite":     DriverSQLite,
	"sqlite3":    DriverSQLite,
	"mysql":      DriverMySQL,
	"postgres":   DriverPostgres,
	"postgresql": DriverPostgres,
	"pq":         DriverPostgres,
}

const createTable = `CREATE TABLE IF NOT EXISTS palette_colors (
	palette VARCHAR(128) NOT NULL,
	idx INTEGER NOT NULL,
	r REAL NOT NULL,
	g REAL NOT NULL,
	b REAL NOT NULL,
	PRIMARY KEY (palette, idx)
)`

// Store keeps named palettes in a SQL database.
type Store struct {
	db     *sql.DB
	driver string
}

func OpenStore(ctx context.Context, driver, dsn string) (*Store, error) {
	name, ok := driverAliases[strings.ToLower(driver)]
	if !ok {
		return nil, fmt.Errorf("unsupported palette store driver '%s'", driver)
	}
	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open palette store: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to palette store: %w", err)
	}
	slog.Debug("palette store opened", slog.String("driver", name))
	return &Store{db: db, driver: name}, nil
}

// rebind turns '?' placeholders into the driver's native form.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("failed to create palette table: %w", err)
	}
	return nil
}

// Save replaces every colour stored under p.Name.
func (s *Store) Save(ctx context.Context, p *Palette) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, s.rebind("DELETE FROM palette_colors WHERE palette = ?"), p.Name); err != nil {
		return fmt.Errorf("failed to clear palette '%s': %w", p.Name, err)
	}
	insert := s.rebind("INSERT INTO palette_colors (palette, idx, r, g, b) VALUES (?, ?, ?, ?, ?)")
	for i, c := range p.Colors {
		if _, err = tx.ExecContext(ctx, insert, p.Name, i, c.X, c.Y, c.Z); err != nil {
			return fmt.Errorf("failed to store colour %d of '%s': %w", i, p.Name, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit palette '%s': %w", p.Name, err)
	}
	slog.Info("palette saved", slog.String("palette", p.Name), slog.Int("colors", len(p.Colors)))
	return nil
}

func (s *Store) Load(ctx context.Context, name string) (*Palette, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind("SELECT r, g, b FROM palette_colors WHERE palette = ? ORDER BY idx"), name)
	if err != nil {
		return nil, fmt.Errorf("failed to query palette '%s': %w", name, err)
	}
	defer rows.Close()

	p := &Palette{Name: name}
	for rows.Next() {
		var r, g, b float64
		if err := rows.Scan(&r, &g, &b); err != nil {
			return nil, fmt.Errorf("failed to read palette '%s': %w", name, err)
		}
		p.Colors = append(p.Colors, object.New(float32(r), float32(g), float32(b)))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(p.Colors) == 0 {
		return nil, fmt.Errorf("%w: '%s'", ErrNotFound, name)
	}
	return p, nil
}

func (s *Store) Names(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT palette FROM palette_colors ORDER BY palette")
	if err != nil {
		return nil, fmt.Errorf("failed to list palettes: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}

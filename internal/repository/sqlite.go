package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"ivfit-app/internal/domain"

	_ "github.com/mattn/go-sqlite3"
)

const DefaultSQLiteDSN = ":memory:"

// SQLiteStore keeps readings in a SQLite database. With the default DSN the
// database lives in memory and disappears with the process.
type SQLiteStore struct {
	db  *sql.DB
	dsn string
}

func NewSQLiteStore(dsn string) *SQLiteStore {
	if dsn == "" {
		dsn = DefaultSQLiteDSN
	}
	return &SQLiteStore{dsn: dsn}
}

func (s *SQLiteStore) Init() error {
	var err error

	s.db, err = sql.Open("sqlite3", s.dsn)
	if err != nil {
		return fmt.Errorf("error opening database: %w", err)
	}

	// every connection to :memory: is a separate database
	s.db.SetMaxOpenConns(1)

	if err = s.db.Ping(); err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS readings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		current REAL NOT NULL,
		voltage REAL NOT NULL
	);`

	_, err = s.db.Exec(createTableSQL)
	if err != nil {
		return fmt.Errorf("error creating table: %w", err)
	}

	log.Println("SQLiteStore initialized.")
	return nil
}

func (s *SQLiteStore) Append(ctx context.Context, reading domain.Reading) error {
	_, err := s.db.ExecContext(ctx, "INSERT INTO readings(current, voltage) VALUES(?, ?)", reading.Current, reading.Voltage)
	if err != nil {
		return fmt.Errorf("error inserting reading: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM readings")
	if err != nil {
		return fmt.Errorf("error clearing readings: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Snapshot(ctx context.Context) ([]domain.Reading, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT current, voltage FROM readings ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("error querying database: %w", err)
	}
	defer rows.Close()

	readings := make([]domain.Reading, 0)

	for rows.Next() {
		var r domain.Reading

		if err := rows.Scan(&r.Current, &r.Voltage); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		readings = append(readings, r)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return readings, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

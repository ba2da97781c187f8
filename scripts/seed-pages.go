// Command seed-pages loads page id/title/URL rows into the pages table
// used by the top-pages resolver.
//
// Input is a CSV file with columns: id,title,url (no header). Rows are
// upserted, so re-running with an updated export is safe.
//
// Usage:
//
//	go run scripts/seed-pages.go -database-url "$DATABASE_URL" -file pages.csv
package main

import (
	"database/sql"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	_ "github.com/lib/pq"
)

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		file        = flag.String("file", "", "CSV file with id,title,url rows")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}
	if *file == "" {
		fmt.Fprintln(os.Stderr, "-file is required")
		os.Exit(1)
	}

	f, err := os.Open(*file)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open file:", err)
		os.Exit(1)
	}
	defer f.Close()

	db, err := sql.Open("postgres", *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open database:", err)
		os.Exit(1)
	}
	defer db.Close()
	db.SetConnMaxLifetime(time.Minute)

	if err := ensureSchema(db); err != nil {
		fmt.Fprintln(os.Stderr, "ensure schema:", err)
		os.Exit(1)
	}

	count, err := seed(db, f)
	if err != nil {
		fmt.Fprintln(os.Stderr, "seed:", err)
		os.Exit(1)
	}

	fmt.Printf("seeded %d pages\n", count)
}

func ensureSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS pages (
			id    bigint PRIMARY KEY,
			title text NOT NULL DEFAULT '',
			url   text NOT NULL DEFAULT ''
		)`)
	return err
}

func seed(db *sql.DB, r io.Reader) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO pages (id, title, url)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title, url = EXCLUDED.url`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 3

	count := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("row %d: %w", count+1, err)
		}

		id, err := strconv.ParseInt(record[0], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("row %d: bad id %q: %w", count+1, record[0], err)
		}

		if _, err := stmt.Exec(id, record[1], record[2]); err != nil {
			return 0, fmt.Errorf("row %d: %w", count+1, err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return count, nil
}

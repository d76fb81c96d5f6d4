package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"piweather/internal/db"
	"piweather/internal/repository"
)

func main() {
	dbPath := os.Getenv("SQLITE_PATH")
	if dbPath == "" {
		fmt.Fprintln(os.Stderr, "SQLITE_PATH must be set")
		os.Exit(1)
	}
	dbPath = filepath.Clean(dbPath)

	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <command>\n  migrate  apply pending schema migrations\n  count    print the number of stored readings\n", os.Args[0])
		os.Exit(1)
	}

	// db.Open applies pending migrations.
	conn, err := db.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "db open: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := db.Close(conn); closeErr != nil {
			slog.Error("db close", "err", closeErr)
		}
	}()

	switch os.Args[1] {
	case "migrate":
		fmt.Println("migrations applied")
	case "count":
		if err := printCount(conn); err != nil {
			fmt.Fprintf(os.Stderr, "count: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
}

func printCount(conn *sql.DB) error {
	n, err := repository.CountReadings(conn)
	if err != nil {
		return err
	}
	fmt.Println(n)
	return nil
}

package converters

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/clarita-9850/dmxload/converters/common"

	_ "modernc.org/sqlite"
)

var ErrInterrupted = errors.New("operation interrupted by user")

var (
	// BatchSize defines the number of rows to insert before committing a transaction.
	BatchSize = 1000
)

// ImportOptions defines configuration for the import process.
type ImportOptions struct {
	LogErrors bool // If true, errors are logged to a table instead of aborting.
	Verbose   bool // If true, enables detailed logging.
}

// ImportToSQLite stages the provider's tables into a SQLite database written to writer.
// If writer is a regular *os.File, the database is built in place so partial data survives;
// otherwise it is built in a temporary file and copied.
func ImportToSQLite(ctx context.Context, provider common.RowProvider, writer io.Writer, opts *ImportOptions) error {
	var dbPath string
	useTemp := true
	verbose := opts != nil && opts.Verbose

	if f, ok := writer.(*os.File); ok {
		stat, err := f.Stat()
		if err == nil && stat.Mode().IsRegular() {
			dbPath = f.Name()
			useTemp = false
			if verbose {
				log.Printf("[DMXLOAD] Staging into file: %s", dbPath)
			}
		}
	}

	if useTemp {
		tmpFile, err := os.CreateTemp("", "dmxload-*.db")
		if err != nil {
			return fmt.Errorf("failed to create temp file: %w", err)
		}
		dbPath = tmpFile.Name()
		tmpFile.Close()
		defer os.Remove(dbPath)

		if verbose {
			log.Printf("[DMXLOAD] Created temp file: %s", dbPath)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// One connection avoids locking issues and keeps tx.Stmt cheap
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA page_size = 65536; PRAGMA cache_size = -2000;"); err != nil {
		db.Close()
		return fmt.Errorf("failed to set PRAGMAs: %w", err)
	}

	err = populateDB(ctx, db, provider, opts)
	db.Close()

	if useTemp {
		if err != nil {
			return err
		}

		f, err := os.Open(dbPath)
		if err != nil {
			return fmt.Errorf("failed to open temp file for reading: %w", err)
		}
		defer f.Close()

		if _, err := io.Copy(writer, f); err != nil {
			return fmt.Errorf("failed to write to output: %w", err)
		}
	}

	if err == nil && verbose {
		log.Printf("[DMXLOAD] Staging completed successfully.")
	}
	return err
}

// populateDB creates one table per provider table and inserts its rows in batches.
func populateDB(ctx context.Context, db *sql.DB, provider common.RowProvider, opts *ImportOptions) error {
	logErrors := opts != nil && opts.LogErrors
	verbose := opts != nil && opts.Verbose

	if logErrors {
		_, err := db.Exec(`CREATE TABLE IF NOT EXISTS _dmxload_errors (
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
			message TEXT,
			table_name TEXT,
			row_data TEXT
		)`)
		if err != nil {
			return fmt.Errorf("failed to create error log table: %w", err)
		}
	}

	for _, tableName := range provider.GetTableNames() {
		if err := populateTable(ctx, db, provider, tableName, logErrors, verbose); err != nil {
			return err
		}
	}
	return nil
}

func populateTable(ctx context.Context, db *sql.DB, provider common.RowProvider, tableName string, logErrors, verbose bool) error {
	headers := provider.GetHeaders(tableName)
	if len(headers) == 0 {
		return nil
	}

	var colTypes []string
	if typed, ok := provider.(common.ColumnTyper); ok {
		colTypes = typed.GetColumnTypes(tableName)
	}
	if verbose {
		log.Printf("[DMXLOAD] Creating table: %s with columns: %v", tableName, headers)
	}
	if _, err := db.Exec(common.GenCreateTableSQLWithTypes(tableName, headers, colTypes)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", tableName, err)
	}

	insertSQL, err := common.GenPreparedStmt(tableName, headers)
	if err != nil {
		return fmt.Errorf("failed to generate insert statement for table %s: %w", tableName, err)
	}
	mainStmt, err := db.Prepare(insertSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement for table %s: %w", tableName, err)
	}
	defer mainStmt.Close()

	var mainLogStmt *sql.Stmt
	if logErrors {
		mainLogStmt, err = db.Prepare(`INSERT INTO _dmxload_errors (message, table_name, row_data) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare log statement: %w", err)
		}
		defer mainLogStmt.Close()
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	stmt := tx.Stmt(mainStmt)
	var logStmt *sql.Stmt
	if logErrors {
		logStmt = tx.Stmt(mainLogStmt)
	}

	rowCount := 0
	padded := make([]interface{}, len(headers))

	err = provider.ScanRows(ctx, tableName, func(row []interface{}, rowErr error) error {
		if rowErr != nil {
			if logErrors {
				if _, err := logStmt.Exec(rowErr.Error(), tableName, fmt.Sprintf("%v", row)); err != nil {
					return fmt.Errorf("failed to log error: %w", err)
				}
				return nil
			}
			return rowErr
		}

		// Match the header count: missing cells are NULL, extra cells dropped
		n := copy(padded, row)
		clear(padded[n:])

		if _, err := stmt.Exec(padded...); err != nil {
			if logErrors {
				if _, err := logStmt.Exec(err.Error(), tableName, fmt.Sprintf("%v", padded)); err != nil {
					return fmt.Errorf("failed to log insert error: %w", err)
				}
				return nil
			}
			return fmt.Errorf("failed to insert row in table %s: %w", tableName, err)
		}

		rowCount++
		if rowCount%BatchSize == 0 {
			stmt.Close()
			if logStmt != nil {
				logStmt.Close()
			}
			if err := tx.Commit(); err != nil {
				return fmt.Errorf("failed to commit transaction for table %s: %w", tableName, err)
			}

			next, err := db.Begin()
			if err != nil {
				return fmt.Errorf("failed to begin transaction: %w", err)
			}
			tx = next
			stmt = tx.Stmt(mainStmt)
			if logErrors {
				logStmt = tx.Stmt(mainLogStmt)
			}
		}
		return nil
	})

	stmt.Close()
	if logStmt != nil {
		logStmt.Close()
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			if verbose {
				log.Printf("[DMXLOAD] Interrupted. Committing partial transaction for table %s...", tableName)
			}
			if commitErr := tx.Commit(); commitErr != nil {
				log.Printf("[DMXLOAD] Failed to commit on stop: %v", commitErr)
			}
			return fmt.Errorf("%w: %v", ErrInterrupted, err)
		}
		tx.Rollback()
		return fmt.Errorf("failed to scan rows for table %s: %w", tableName, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction for table %s: %w", tableName, err)
	}
	if verbose {
		log.Printf("[DMXLOAD] Finished table %s, total rows: %d", tableName, rowCount)
	}
	return nil
}

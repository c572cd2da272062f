package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/01moynul/cinestream-golang/internal/logger"
	_ "github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
)

const (
	initialBackoff = 500 * time.Millisecond
	maxBackoff     = 8 * time.Second
)

// Querier is satisfied by both *sql.DB and *sql.Tx, so helpers can run inside or outside a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open creates the connection pool and waits for MySQL to answer, retrying with
// exponential backoff up to attempts times.
func Open(ctx context.Context, dsn string, attempts int) (*sql.DB, error) {
	// 1. --- Open the pool (lazy, no network yet) ---
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}

	// 2. --- Pool settings ---
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	// 3. --- Ping until ready ---
	if err := pingWithBackoff(ctx, db, attempts, initialBackoff); err != nil {
		db.Close()
		return nil, err
	}

	logger.Get().Info("Database connection pool established")
	return db, nil
}

type pinger interface {
	PingContext(ctx context.Context) error
}

func pingWithBackoff(ctx context.Context, db pinger, attempts int, delay time.Duration) error {
	if attempts < 1 {
		attempts = 1
	}
	log := logger.Get()

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		log.WithError(err).WithFields(logrus.Fields{
			"attempt": attempt,
			"retryIn": delay.String(),
		}).Warn("Database not ready, retrying")

		select {
		case <-ctx.Done():
			return fmt.Errorf("connect to database: %w", ctx.Err())
		case <-time.After(delay):
		}

		delay *= 2
		if delay > maxBackoff {
			delay = maxBackoff
		}
	}
	return fmt.Errorf("connect to database after %d attempts: %w", attempts, err)
}

// WithTx runs fn inside a transaction. The transaction is committed only when fn returns nil.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

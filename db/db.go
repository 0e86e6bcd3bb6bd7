package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"studylab-api/config"
	"studylab-api/logger"

	_ "github.com/lib/pq"
)

// Connect opens a Postgres pool. A failed ping is returned alongside the
// still-usable pool so callers can decide whether to run degraded.
func Connect(cfg config.DatabaseConfig) (*sql.DB, error) {
	connStr, err := withTimeouts(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid database url: %w", err)
	}

	logger.Log.WithField("connection", redact(connStr)).Info("Attempting to connect to the database")

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to open database connection")
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()
	if err = db.PingContext(ctx); err != nil {
		logger.Log.WithError(err).Error("Failed to ping database")
		return db, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Log.Info("Database connection established successfully")
	return db, nil
}

// withTimeouts adds connect_timeout and statement_timeout to a URL-style DSN.
// lib/pq forwards unknown keys such as statement_timeout as session parameters.
func withTimeouts(cfg config.DatabaseConfig) (string, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	if cfg.ConnectTimeout > 0 && q.Get("connect_timeout") == "" {
		q.Set("connect_timeout", strconv.Itoa(int(cfg.ConnectTimeout.Seconds())))
	}
	if cfg.StatementTimeout > 0 && q.Get("statement_timeout") == "" {
		q.Set("statement_timeout", strconv.FormatInt(cfg.StatementTimeout.Milliseconds(), 10))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func redact(connStr string) string {
	u, err := url.Parse(connStr)
	if err != nil {
		return "<unparseable>"
	}
	return u.Redacted()
}

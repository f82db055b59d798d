package repository

import (
	"context"
	"errors"
	"fmt"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Global error declarations.
var (
	ErrRuleNotFound  = errors.New("rule not found in datasource")
	ErrPriceNotFound = errors.New("no closing price in datasource")
)

type rulesRepository interface {
	GetRule(ctx context.Context, id int32) (ruleRow, error)
}
type companiesRepository interface {
	ListCompanies(ctx context.Context) ([]companyRow, error)
}
type valuationsRepository interface {
	GetValuationSeries(ctx context.Context, arg valuationSeriesParams) ([]valuationRow, error)
	GetClosingPrice(ctx context.Context, arg closingPriceParams) (priceRow, error)
}

// Database struct that holds the database connection and queries.
type Database struct {
	rules      rulesRepository
	companies  companiesRepository
	valuations valuationsRepository
	conn       *pgxpool.Pool
}

// NewDatabase creates a new Database instance and verifies connectivity.
func NewDatabase(dbURL string) (Database, error) {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return Database{}, fmt.Errorf("parse config: %w", err)
	}
	// Register shopspring decimal
	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	conn, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return Database{}, err
	}
	// Ensure the connection is established.
	if err := conn.Ping(context.Background()); err != nil {
		return Database{}, err
	}

	queries := newQueries(conn)
	return Database{
		rules:      queries,
		companies:  queries,
		valuations: queries,
		conn:       conn}, nil
}

// Close releases the underlying connection pool.
func (db *Database) Close() {
	if db.conn != nil {
		db.conn.Close()
	}
}

package database

import (
	"database/sql"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Djamyahia/pharmarecon/config"
)

// Package-level singleton so every caller shares one connection pool.
var instance *Datasource
var once sync.Once

type Datasource struct {
	Conn *sql.DB
}

func NewDataSource(configuration *config.Configuration) (IDataSource, error) {
	con, err := GetDBConnection(configuration)
	if err != nil {
		return nil, err
	}
	return con, nil
}

// GetDBConnection provides a global access point to the instance and
// initializes it if it's not already.
func GetDBConnection(configuration *config.Configuration) (*Datasource, error) {
	var err error
	once.Do(func() {
		con, errConn := ConnectDB(configuration.DataSource.Dns)
		if errConn != nil {
			err = errConn
			return
		}
		instance = &Datasource{Conn: con}
	})
	if err != nil {
		return nil, err
	}
	return instance, nil
}

func ConnectDB(dns string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dns)
	if err != nil {
		return nil, errors.Wrap(err, "opening database connection")
	}

	// The database container may still be warming up at process start, so
	// retry the first ping with exponential backoff.
	ping := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5)
	err = backoff.Retry(func() error {
		return db.Ping()
	}, ping)
	if err != nil {
		logrus.WithError(err).Error("database connection failed")
		return nil, errors.Wrap(err, "pinging database")
	}

	if err := createCatalogTable(db); err != nil {
		return nil, err
	}
	if err := createInventoryTable(db); err != nil {
		return nil, err
	}
	if err := createReconciliationSessionTable(db); err != nil {
		return nil, err
	}
	return db, nil
}

func createCatalogTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS catalog_entries (
			id SERIAL PRIMARY KEY,
			entry_id TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			form TEXT NOT NULL DEFAULT '',
			dosage TEXT NOT NULL DEFAULT '',
			packaging TEXT NOT NULL DEFAULT '',
			manufacturer TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	return errors.Wrap(err, "creating catalog_entries table")
}

func createInventoryTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS inventory_items (
			id SERIAL PRIMARY KEY,
			entry_id TEXT NOT NULL REFERENCES catalog_entries(entry_id),
			session_id TEXT NOT NULL,
			quantity BIGINT NOT NULL,
			unit_price NUMERIC(20, 4) NOT NULL,
			expiry_date DATE,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	return errors.Wrap(err, "creating inventory_items table")
}

func createReconciliationSessionTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS reconciliation_sessions (
			id SERIAL PRIMARY KEY,
			session_id TEXT NOT NULL UNIQUE,
			status TEXT NOT NULL,
			total_rows INTEGER NOT NULL,
			matched_rows INTEGER NOT NULL,
			pending_rows INTEGER NOT NULL,
			started_at TIMESTAMP NOT NULL,
			completed_at TIMESTAMP
		)
	`)
	return errors.Wrap(err, "creating reconciliation_sessions table")
}

// SetConnMaxLifetime tunes pool recycling; exposed for operational overrides.
func (d *Datasource) SetConnMaxLifetime(lifetime time.Duration) {
	d.Conn.SetConnMaxLifetime(lifetime)
}

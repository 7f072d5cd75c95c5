package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"
)

const (
	maxOpenConns    = 15
	maxIdleConns    = 5
	connMaxLifetime = 5 * time.Minute
	connMaxIdleTime = 5 * time.Minute
)

const schema = `
CREATE TABLE IF NOT EXISTS job_advert (
	id                SERIAL PRIMARY KEY,
	title             VARCHAR(255) NOT NULL,
	company_name      TEXT NOT NULL,
	position          VARCHAR(255) NOT NULL,
	location          VARCHAR(100) NOT NULL,
	job_type          VARCHAR(100) NOT NULL,
	deadline          DATE NOT NULL,
	intro             TEXT NOT NULL,
	responsibilities  TEXT NOT NULL,
	candidate_profile TEXT NOT NULL,
	qualifications    TEXT NOT NULL,
	whats_on_offer    TEXT NOT NULL,
	application_email TEXT NOT NULL,
	apply_link        VARCHAR(255) NOT NULL,
	logo_url          VARCHAR(255),
	created_at        TIMESTAMP NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS job_advert_deadline_idx ON job_advert (deadline);
CREATE INDEX IF NOT EXISTS job_advert_created_at_idx ON job_advert (created_at);
`

// GetDbConn tries to establish a connection to postgres and return the connection handler
func GetDbConn(databaseUser string, databasePassword string, databaseHost string, databasePort string, databaseName string, sslMode string) (*sql.DB, error) {
	databaseURL := fmt.Sprintf("postgres://%v:%v@%v:%v/%v?sslmode=%s",
		databaseUser,
		databasePassword,
		databaseHost,
		databasePort,
		databaseName,
		sslMode,
	)
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	err = db.Ping()
	if err != nil {
		db.Close()
		return nil, err
	}
	ConfigurePool(db)
	return db, nil
}

// ConfigurePool recycles idle and long lived connections so the pool never
// hands out a connection the server side already dropped.
func ConfigurePool(db *sql.DB) {
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetConnMaxIdleTime(connMaxIdleTime)
}

// Migrate creates the job_advert table and its indexes when missing.
func Migrate(conn *sql.DB) error {
	if _, err := conn.Exec(schema); err != nil {
		return errors.Wrap(err, "unable to create job_advert schema")
	}
	return nil
}

// CloseDbConn closes db conn
func CloseDbConn(conn *sql.DB) {
	conn.Close()
}

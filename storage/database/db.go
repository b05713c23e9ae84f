// Package database opens the configured storage engine and hands out its repositories.
package database

import (
	"database/sql"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/trezcool/goose"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ahmedtelkodsh/geniussmart/assets"
	"github.com/ahmedtelkodsh/geniussmart/core"
	"github.com/ahmedtelkodsh/geniussmart/core/request"
	gormrepos "github.com/ahmedtelkodsh/geniussmart/storage/database/gorm"
	inmemdb "github.com/ahmedtelkodsh/geniussmart/storage/database/inmem"
	sqlxrepos "github.com/ahmedtelkodsh/geniussmart/storage/database/sqlx"
)

// Engines
const (
	EnginePostgres = "postgres"
	EngineSQLite   = "sqlite"
	EngineMemory   = "memory"
)

func open(dbName string, conf *core.Config) (*sql.DB, error) {
	sslMode := "require"
	if conf.Database.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   EnginePostgres,
		User:     url.UserPassword(conf.Database.User, conf.Database.Password),
		Host:     conf.Database.Address(),
		Path:     dbName,
		RawQuery: q.Encode(),
	}
	return sql.Open(EnginePostgres, u.String())
}

// Open opens the postgres database.
func Open(conf *core.Config) (*sql.DB, error) {
	return open(conf.Database.Name, conf)
}

// OpenSQLite opens the sqlite file through gorm.
func OpenSQLite(conf *core.Config) (*gorm.DB, error) {
	gconf := &gorm.Config{DisableForeignKeyConstraintWhenMigrating: true}
	if !conf.Debug {
		gconf.Logger = logger.Default.LogMode(logger.Silent)
	}
	db, err := gorm.Open(sqlite.Open(conf.Database.SQLitePath), gconf)
	if err != nil {
		return nil, errors.Wrapf(err, "opening sqlite database %s", conf.Database.SQLitePath)
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sql.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

func createDB(db *sql.DB, conf *core.Config) error {
	var exists bool
	if err := db.QueryRow("SELECT true FROM pg_database WHERE datname = $1", conf.Database.Name).Scan(&exists); err != nil && err != sql.ErrNoRows {
		return errors.Wrap(err, "checking DB")
	}

	if !exists {
		// identifiers cannot be bound
		if _, err := db.Exec(fmt.Sprintf("CREATE DATABASE %q", conf.Database.Name)); err != nil {
			return errors.Wrap(err, "creating database")
		}
	}
	return nil
}

// CreateIfNotExist creates the postgres database, connecting to the maintenance database as the app user.
func CreateIfNotExist(conf *core.Config) error {
	db, err := open("postgres", conf)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func() { _ = db.Close() }()

	if err = ping(db); err != nil {
		return errors.Wrap(err, "pinging database")
	}
	return createDB(db, conf)
}

// Migrate applies the embedded postgres migrations.
func Migrate(db *sql.DB) error {
	if err := goose.RunFS("up", db, assets.FS, "migrations"); err != nil {
		return errors.Wrap(err, "migrating database")
	}
	return nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// NewRequestRepository opens the configured engine, bringing its schema up to date, and returns its request repository.
// The returned Closer releases the underlying connections.
func NewRequestRepository(conf *core.Config) (request.Repository, io.Closer, error) {
	switch conf.Database.Engine {
	case EngineMemory:
		return inmemdb.NewRequestRepository(inmemdb.Open()), closerFunc(func() error { return nil }), nil

	case EngineSQLite:
		db, err := OpenSQLite(conf)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, errors.Wrap(err, "getting sqlite connection pool")
		}
		repo, err := gormrepos.NewRequestRepository(db)
		if err != nil {
			_ = sqlDB.Close()
			return nil, nil, err
		}
		return repo, sqlDB, nil

	case EnginePostgres:
		db, err := Open(conf)
		if err != nil {
			return nil, nil, errors.Wrap(err, "opening database")
		}
		if err = ping(db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		if err = Migrate(db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return sqlxrepos.NewRequestRepository(sqlx.NewDb(db, EnginePostgres)), db, nil
	}
	return nil, nil, core.NewArgumentError("unknown database engine: " + conf.Database.Engine)
}

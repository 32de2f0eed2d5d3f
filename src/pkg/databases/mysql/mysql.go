package mysql

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"booking-service/src/pkg/log"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/viper"
)

//go:embed schema.sql
var schema string

type DBInterface interface {
	GetDB() (*sqlx.DB, error)
}

type connection struct {
	db *sqlx.DB
}

func (c *connection) GetDB() (*sqlx.DB, error) {
	if c.db == nil {
		return nil, fmt.Errorf("mysql connection is not initialised")
	}
	return c.db, nil
}

// Wrap adapts an existing handle, e.g. one backed by sqlmock.
func Wrap(db *sqlx.DB) DBInterface {
	return &connection{db: db}
}

func InitConnection(v *viper.Viper, log log.Log) (DBInterface, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&loc=UTC&multiStatements=true",
		v.GetString("database.mysql.username"),
		v.GetString("database.mysql.password"),
		v.GetString("database.mysql.host"),
		v.GetInt("database.mysql.port"),
		v.GetString("database.mysql.name"),
	)
	db, err := sqlx.Connect("mysql", dsn)
	if err != nil {
		return &connection{}, err
	}
	db.SetMaxOpenConns(v.GetInt("database.mysql.pool.max_open"))
	db.SetMaxIdleConns(v.GetInt("database.mysql.pool.max_idle"))
	db.SetConnMaxLifetime(time.Duration(v.GetInt("database.mysql.pool.lifetime_seconds")) * time.Second)
	log.Info("mysql", "connected to database", "InitConnection", v.GetString("database.mysql.host"))
	return &connection{db: db}, nil
}

// Migrate applies the embedded schema. Every statement is idempotent.
func Migrate(ctx context.Context, db DBInterface) error {
	conn, err := db.GetDB()
	if err != nil {
		return err
	}
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

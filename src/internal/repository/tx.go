package repository

import (
	"context"
	"fmt"

	"booking-service/src/pkg/databases/mysql"

	"github.com/jmoiron/sqlx"
)

type txKey struct{}

type SQLTransactor struct {
	DB mysql.DBInterface
}

func NewTransactor(db mysql.DBInterface) *SQLTransactor {
	return &SQLTransactor{DB: db}
}

func (t *SQLTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}
	db, err := t.DB.GetDB()
	if err != nil {
		return err
	}
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// executor returns the transaction bound to ctx, or the pool.
func executor(ctx context.Context, db mysql.DBInterface) (sqlx.ExtContext, error) {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx, nil
	}
	return db.GetDB()
}

func inTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*sqlx.Tx)
	return ok
}

// forUpdate appends a row lock only when there is a transaction to hold it.
func forUpdate(ctx context.Context, query string) string {
	if inTx(ctx) {
		return query + " FOR UPDATE"
	}
	return query
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"booking-service/src/internal/entity"
	"booking-service/src/pkg/databases/mysql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type CoinSQLRepository struct {
	DB mysql.DBInterface
}

func NewCoinRepository(db mysql.DBInterface) *CoinSQLRepository {
	return &CoinSQLRepository{DB: db}
}

func (r *CoinSQLRepository) FindOrCreate(ctx context.Context, userID string) (*entity.UserCoins, error) {
	db, err := executor(ctx, r.DB)
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, `INSERT IGNORE INTO user_coins (user_id, balance, total_earned, total_spent, updated_at)
		VALUES (?, 0, 0, 0, ?)`, userID, time.Now().UTC()); err != nil {
		return nil, err
	}
	var c entity.UserCoins
	query := forUpdate(ctx, `SELECT user_id, balance, total_earned, total_spent, updated_at FROM user_coins WHERE user_id = ?`)
	if err := sqlx.GetContext(ctx, db, &c, query, userID); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CoinSQLRepository) FindBookingTransaction(ctx context.Context, userID, bookingID string, txType entity.CoinTransactionType) (*entity.CoinTransaction, error) {
	db, err := executor(ctx, r.DB)
	if err != nil {
		return nil, err
	}
	var tx entity.CoinTransaction
	err = sqlx.GetContext(ctx, db, &tx, `SELECT id, user_id, type, amount, booking_id, note, created_at
		FROM coin_transactions WHERE user_id = ? AND booking_id = ? AND type = ? LIMIT 1`, userID, bookingID, string(txType))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *CoinSQLRepository) Apply(ctx context.Context, tx *entity.CoinTransaction) (int64, error) {
	if !inTx(ctx) {
		var balance int64
		err := NewTransactor(r.DB).WithinTx(ctx, func(ctx context.Context) error {
			var err error
			balance, err = r.Apply(ctx, tx)
			return err
		})
		return balance, err
	}
	if _, err := r.FindOrCreate(ctx, tx.UserID); err != nil {
		return 0, err
	}
	db, err := executor(ctx, r.DB)
	if err != nil {
		return 0, err
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}
	var earned, spent int64
	switch tx.Type {
	case entity.CoinEarn:
		earned = tx.Amount
	case entity.CoinSpend:
		spent = tx.Amount
	case entity.CoinRefund:
		spent = -tx.Amount
	}
	delta := tx.Signed()
	res, err := db.ExecContext(ctx, `UPDATE user_coins
		SET balance = balance + ?, total_earned = total_earned + ?, total_spent = total_spent + ?, updated_at = ?
		WHERE user_id = ? AND balance + ? >= 0`, delta, earned, spent, tx.CreatedAt, tx.UserID, delta)
	if err != nil {
		return 0, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, ErrInsufficientCoins
	}
	if _, err := sqlx.NamedExecContext(ctx, db, `INSERT INTO coin_transactions (id, user_id, type, amount, booking_id, note, created_at)
		VALUES (:id, :user_id, :type, :amount, :booking_id, :note, :created_at)`, tx); err != nil {
		return 0, err
	}
	var balance int64
	if err := sqlx.GetContext(ctx, db, &balance, `SELECT balance FROM user_coins WHERE user_id = ?`, tx.UserID); err != nil {
		return 0, err
	}
	return balance, nil
}

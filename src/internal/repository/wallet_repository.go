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

type WalletSQLRepository struct {
	DB mysql.DBInterface
}

func NewWalletRepository(db mysql.DBInterface) *WalletSQLRepository {
	return &WalletSQLRepository{DB: db}
}

const walletColumns = `id, owner_id, owner_type, balance, created_at, updated_at`

func (r *WalletSQLRepository) FindOrCreate(ctx context.Context, ownerID string, ownerType entity.OwnerType) (*entity.Wallet, error) {
	db, err := executor(ctx, r.DB)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	// INSERT IGNORE keeps lazy creation race-free under the (owner_id, owner_type) unique key.
	if _, err := db.ExecContext(ctx, `INSERT IGNORE INTO wallets (id, owner_id, owner_type, balance, created_at, updated_at)
		VALUES (?, ?, ?, 0, ?, ?)`, uuid.NewString(), ownerID, string(ownerType), now, now); err != nil {
		return nil, err
	}
	var w entity.Wallet
	query := forUpdate(ctx, `SELECT `+walletColumns+` FROM wallets WHERE owner_id = ? AND owner_type = ?`)
	if err := sqlx.GetContext(ctx, db, &w, query, ownerID, string(ownerType)); err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WalletSQLRepository) Transactions(ctx context.Context, walletID string) ([]entity.WalletTransaction, error) {
	db, err := executor(ctx, r.DB)
	if err != nil {
		return nil, err
	}
	txs := []entity.WalletTransaction{}
	err = sqlx.SelectContext(ctx, db, &txs, `SELECT id, wallet_id, type, kind, amount, note, booking_id, withdrawal_id, created_at
		FROM wallet_transactions WHERE wallet_id = ? ORDER BY created_at, id`, walletID)
	return txs, err
}

func (r *WalletSQLRepository) FindBookingTransaction(ctx context.Context, walletID, bookingID string, kind entity.TransactionKind) (*entity.WalletTransaction, error) {
	db, err := executor(ctx, r.DB)
	if err != nil {
		return nil, err
	}
	var tx entity.WalletTransaction
	err = sqlx.GetContext(ctx, db, &tx, `SELECT id, wallet_id, type, kind, amount, note, booking_id, withdrawal_id, created_at
		FROM wallet_transactions WHERE wallet_id = ? AND booking_id = ? AND kind = ? LIMIT 1`, walletID, bookingID, string(kind))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// Apply is a compare-and-swap on the balance: the guard in the WHERE clause rejects any
// debit that would take the balance below zero without touching the row.
func (r *WalletSQLRepository) Apply(ctx context.Context, walletID string, tx *entity.WalletTransaction) (float64, error) {
	if !inTx(ctx) {
		var balance float64
		err := NewTransactor(r.DB).WithinTx(ctx, func(ctx context.Context) error {
			var err error
			balance, err = r.Apply(ctx, walletID, tx)
			return err
		})
		return balance, err
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
	tx.WalletID = walletID
	delta := tx.Signed()

	res, err := db.ExecContext(ctx, `UPDATE wallets SET balance = balance + ?, updated_at = ?
		WHERE id = ? AND balance + ? >= 0`, delta, tx.CreatedAt, walletID, delta)
	if err != nil {
		return 0, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists int
		if err := sqlx.GetContext(ctx, db, &exists, `SELECT COUNT(*) FROM wallets WHERE id = ?`, walletID); err != nil {
			return 0, err
		}
		if exists == 0 {
			return 0, ErrNotFound
		}
		return 0, ErrInsufficientBalance
	}
	if _, err := sqlx.NamedExecContext(ctx, db, `INSERT INTO wallet_transactions
		(id, wallet_id, type, kind, amount, note, booking_id, withdrawal_id, created_at)
		VALUES (:id, :wallet_id, :type, :kind, :amount, :note, :booking_id, :withdrawal_id, :created_at)`, tx); err != nil {
		return 0, err
	}
	var balance float64
	if err := sqlx.GetContext(ctx, db, &balance, `SELECT balance FROM wallets WHERE id = ?`, walletID); err != nil {
		return 0, err
	}
	return balance, nil
}

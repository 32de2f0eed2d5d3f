package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"booking-service/src/internal/entity"
	"booking-service/src/pkg/databases/mysql"

	"github.com/jmoiron/sqlx"
)

type WithdrawalSQLRepository struct {
	DB mysql.DBInterface
}

func NewWithdrawalRepository(db mysql.DBInterface) *WithdrawalSQLRepository {
	return &WithdrawalSQLRepository{DB: db}
}

const withdrawalColumns = `id, worker_id, amount, status, COALESCE(rejection_reason, '') AS rejection_reason, created_at, updated_at`

func (r *WithdrawalSQLRepository) Create(ctx context.Context, req *entity.WithdrawalRequest) error {
	db, err := executor(ctx, r.DB)
	if err != nil {
		return err
	}
	_, err = sqlx.NamedExecContext(ctx, db, `INSERT INTO withdrawal_requests (id, worker_id, amount, status, rejection_reason, created_at, updated_at)
		VALUES (:id, :worker_id, :amount, :status, :rejection_reason, :created_at, :updated_at)`, req)
	return err
}

func (r *WithdrawalSQLRepository) get(ctx context.Context, query string, args ...interface{}) (*entity.WithdrawalRequest, error) {
	db, err := executor(ctx, r.DB)
	if err != nil {
		return nil, err
	}
	var w entity.WithdrawalRequest
	err = sqlx.GetContext(ctx, db, &w, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WithdrawalSQLRepository) FindByID(ctx context.Context, id string) (*entity.WithdrawalRequest, error) {
	return r.get(ctx, forUpdate(ctx, `SELECT `+withdrawalColumns+` FROM withdrawal_requests WHERE id = ?`), id)
}

func (r *WithdrawalSQLRepository) FindPendingByWorker(ctx context.Context, workerID string) (*entity.WithdrawalRequest, error) {
	return r.get(ctx, forUpdate(ctx, `SELECT `+withdrawalColumns+` FROM withdrawal_requests WHERE worker_id = ? AND status = ? LIMIT 1`),
		workerID, string(entity.WithdrawalPending))
}

func (r *WithdrawalSQLRepository) Transition(ctx context.Context, id string, from, to entity.WithdrawalStatus, reason string) error {
	db, err := executor(ctx, r.DB)
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `UPDATE withdrawal_requests SET status = ?, rejection_reason = ?, updated_at = ?
		WHERE id = ? AND status = ?`, string(to), nullString(reason), time.Now().UTC(), id, string(from))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrStaleState
	}
	return nil
}

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

type CouponSQLRepository struct {
	DB mysql.DBInterface
}

func NewCouponRepository(db mysql.DBInterface) *CouponSQLRepository {
	return &CouponSQLRepository{DB: db}
}

func (r *CouponSQLRepository) FindByCode(ctx context.Context, code string) (*entity.Coupon, error) {
	db, err := executor(ctx, r.DB)
	if err != nil {
		return nil, err
	}
	var c entity.Coupon
	query := forUpdate(ctx, `SELECT id, code, type, value, min_order_value, max_discount, usage_limit, usage_count,
		user_usage_limit, valid_from, valid_until, is_active FROM coupons WHERE code = ?`)
	err = sqlx.GetContext(ctx, db, &c, query, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CouponSQLRepository) CountUserUsage(ctx context.Context, couponID, userID string) (int, error) {
	db, err := executor(ctx, r.DB)
	if err != nil {
		return 0, err
	}
	var n int
	err = sqlx.GetContext(ctx, db, &n, `SELECT COUNT(*) FROM coupon_usages WHERE coupon_id = ? AND user_id = ?`, couponID, userID)
	return n, err
}

// Redeem must run inside a transaction; the coupon row lock taken by the guarded UPDATE
// serializes concurrent redemptions of the same code, which makes the per-user count stable.
func (r *CouponSQLRepository) Redeem(ctx context.Context, usage *entity.CouponUsage) error {
	if !inTx(ctx) {
		return NewTransactor(r.DB).WithinTx(ctx, func(ctx context.Context) error {
			return r.Redeem(ctx, usage)
		})
	}
	db, err := executor(ctx, r.DB)
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `UPDATE coupons SET usage_count = usage_count + 1
		WHERE id = ? AND (usage_limit IS NULL OR usage_count < usage_limit)
		AND (user_usage_limit = 0 OR user_usage_limit > (
			SELECT COUNT(*) FROM coupon_usages WHERE coupon_id = ? AND user_id = ?))`,
		usage.CouponID, usage.CouponID, usage.UserID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCouponExhausted
	}
	if usage.ID == "" {
		usage.ID = uuid.NewString()
	}
	if usage.CreatedAt.IsZero() {
		usage.CreatedAt = time.Now().UTC()
	}
	_, err = sqlx.NamedExecContext(ctx, db, `INSERT INTO coupon_usages (id, coupon_id, user_id, booking_id, discount_amount, created_at)
		VALUES (:id, :coupon_id, :user_id, :booking_id, :discount_amount, :created_at)`, usage)
	return err
}

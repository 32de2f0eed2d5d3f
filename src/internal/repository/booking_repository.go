package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"booking-service/src/internal/entity"
	"booking-service/src/pkg/databases/mysql"

	"github.com/jmoiron/sqlx"
)

type BookingSQLRepository struct {
	DB mysql.DBInterface
}

func NewBookingRepository(db mysql.DBInterface) *BookingSQLRepository {
	return &BookingSQLRepository{DB: db}
}

type bookingRow struct {
	ID                  string         `db:"id"`
	BulkGroupID         sql.NullString `db:"bulk_group_id"`
	CustomerID          string         `db:"customer_id"`
	WorkerID            sql.NullString `db:"worker_id"`
	ServiceID           string         `db:"service_id"`
	ServiceName         string         `db:"service_name"`
	CategoryID          string         `db:"category_id"`
	ScheduledDate       time.Time      `db:"scheduled_date"`
	ScheduledTime       string         `db:"scheduled_time"`
	Address             []byte         `db:"address"`
	Notes               sql.NullString `db:"notes"`
	BasePrice           float64        `db:"base_price"`
	PlatformFee         float64        `db:"platform_fee"`
	TravelCharge        float64        `db:"travel_charge"`
	Distance            float64        `db:"distance"`
	CouponCode          sql.NullString `db:"coupon_code"`
	CouponDiscount      float64        `db:"coupon_discount"`
	CoinsUsed           int64          `db:"coins_used"`
	CoinDiscount        float64        `db:"coin_discount"`
	WalletAmountUsed    float64        `db:"wallet_amount_used"`
	FinalPrice          float64        `db:"final_price"`
	AmountPaid          float64        `db:"amount_paid"`
	PaymentStatus       string         `db:"payment_status"`
	PaymentMethod       sql.NullString `db:"payment_method"`
	PaymentID           sql.NullString `db:"payment_id"`
	PaymentLinkID       sql.NullString `db:"payment_link_id"`
	Status              string         `db:"status"`
	StartOTP            sql.NullString `db:"start_otp"`
	StartOTPExpiry      sql.NullTime   `db:"start_otp_expiry"`
	CompletionOTP       sql.NullString `db:"completion_otp"`
	CompletionOTPExpiry sql.NullTime   `db:"completion_otp_expiry"`
	WorkProofPhotos     []byte         `db:"work_proof_photos"`
	CancellationReason  sql.NullString `db:"cancellation_reason"`
	RejectionReason     sql.NullString `db:"rejection_reason"`
	RescheduleRequest   []byte         `db:"reschedule_request"`
	LoyaltyCredited     bool           `db:"loyalty_credited"`
	StartedAt           sql.NullTime   `db:"started_at"`
	CompletedAt         sql.NullTime   `db:"completed_at"`
	CreatedAt           time.Time      `db:"created_at"`
	UpdatedAt           time.Time      `db:"updated_at"`
}

const bookingColumns = `id, bulk_group_id, customer_id, worker_id, service_id, service_name, category_id,
	scheduled_date, scheduled_time, address, notes, base_price, platform_fee, travel_charge, distance,
	coupon_code, coupon_discount, coins_used, coin_discount, wallet_amount_used, final_price, amount_paid,
	payment_status, payment_method, payment_id, payment_link_id, status, start_otp, start_otp_expiry,
	completion_otp, completion_otp_expiry, work_proof_photos, cancellation_reason, rejection_reason,
	reschedule_request, loyalty_credited, started_at, completed_at, created_at, updated_at`

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func toBookingRow(b *entity.Booking) (*bookingRow, error) {
	addr, err := json.Marshal(b.Address)
	if err != nil {
		return nil, err
	}
	row := &bookingRow{
		ID:                  b.ID,
		BulkGroupID:         nullString(b.BulkGroupID),
		CustomerID:          b.CustomerID,
		ServiceID:           b.ServiceID,
		ServiceName:         b.ServiceName,
		CategoryID:          b.CategoryID,
		ScheduledDate:       b.ScheduledDate,
		ScheduledTime:       b.ScheduledTime,
		Address:             addr,
		Notes:               nullString(b.Notes),
		BasePrice:           b.Price.BasePrice,
		PlatformFee:         b.Price.PlatformFee,
		TravelCharge:        b.Price.TravelCharge,
		Distance:            b.Price.Distance,
		CouponCode:          nullString(b.Price.CouponCode),
		CouponDiscount:      b.Price.CouponDiscount,
		CoinsUsed:           b.Price.CoinsUsed,
		CoinDiscount:        b.Price.CoinDiscount,
		WalletAmountUsed:    b.Price.WalletAmountUsed,
		FinalPrice:          b.Price.FinalPrice,
		AmountPaid:          b.Price.AmountPaid,
		PaymentStatus:       string(b.PaymentStatus),
		PaymentMethod:       nullString(b.PaymentMethod),
		PaymentID:           nullString(b.PaymentID),
		PaymentLinkID:       nullString(b.PaymentLinkID),
		Status:              string(b.Status),
		StartOTP:            nullString(b.StartOTP),
		StartOTPExpiry:      nullTime(b.StartOTPExpiry),
		CompletionOTP:       nullString(b.CompletionOTP),
		CompletionOTPExpiry: nullTime(b.CompletionOTPExpiry),
		CancellationReason:  nullString(b.CancellationReason),
		RejectionReason:     nullString(b.RejectionReason),
		LoyaltyCredited:     b.LoyaltyCredited,
		StartedAt:           nullTime(b.StartedAt),
		CompletedAt:         nullTime(b.CompletedAt),
		CreatedAt:           b.CreatedAt,
		UpdatedAt:           b.UpdatedAt,
	}
	if b.WorkerID != nil {
		row.WorkerID = nullString(*b.WorkerID)
	}
	if len(b.WorkProofPhotos) > 0 {
		if row.WorkProofPhotos, err = json.Marshal(b.WorkProofPhotos); err != nil {
			return nil, err
		}
	}
	if b.RescheduleRequest != nil {
		if row.RescheduleRequest, err = json.Marshal(b.RescheduleRequest); err != nil {
			return nil, err
		}
	}
	return row, nil
}

func (row *bookingRow) toEntity() (*entity.Booking, error) {
	b := &entity.Booking{
		ID:            row.ID,
		BulkGroupID:   row.BulkGroupID.String,
		CustomerID:    row.CustomerID,
		ServiceID:     row.ServiceID,
		ServiceName:   row.ServiceName,
		CategoryID:    row.CategoryID,
		ScheduledDate: row.ScheduledDate,
		ScheduledTime: row.ScheduledTime,
		Notes:         row.Notes.String,
		Price: entity.PriceBreakdown{
			BasePrice:        row.BasePrice,
			PlatformFee:      row.PlatformFee,
			TravelCharge:     row.TravelCharge,
			Distance:         row.Distance,
			CouponCode:       row.CouponCode.String,
			CouponDiscount:   row.CouponDiscount,
			CoinsUsed:        row.CoinsUsed,
			CoinDiscount:     row.CoinDiscount,
			WalletAmountUsed: row.WalletAmountUsed,
			FinalPrice:       row.FinalPrice,
			AmountPaid:       row.AmountPaid,
		},
		PaymentStatus:       entity.PaymentStatus(row.PaymentStatus),
		PaymentMethod:       row.PaymentMethod.String,
		PaymentID:           row.PaymentID.String,
		PaymentLinkID:       row.PaymentLinkID.String,
		Status:              entity.BookingStatus(row.Status),
		StartOTP:            row.StartOTP.String,
		StartOTPExpiry:      timePtr(row.StartOTPExpiry),
		CompletionOTP:       row.CompletionOTP.String,
		CompletionOTPExpiry: timePtr(row.CompletionOTPExpiry),
		CancellationReason:  row.CancellationReason.String,
		RejectionReason:     row.RejectionReason.String,
		LoyaltyCredited:     row.LoyaltyCredited,
		StartedAt:           timePtr(row.StartedAt),
		CompletedAt:         timePtr(row.CompletedAt),
		CreatedAt:           row.CreatedAt,
		UpdatedAt:           row.UpdatedAt,
	}
	if row.WorkerID.Valid {
		w := row.WorkerID.String
		b.WorkerID = &w
	}
	if err := json.Unmarshal(row.Address, &b.Address); err != nil {
		return nil, fmt.Errorf("decode address: %w", err)
	}
	if len(row.WorkProofPhotos) > 0 {
		if err := json.Unmarshal(row.WorkProofPhotos, &b.WorkProofPhotos); err != nil {
			return nil, fmt.Errorf("decode work proof photos: %w", err)
		}
	}
	if len(row.RescheduleRequest) > 0 {
		b.RescheduleRequest = new(entity.RescheduleRequest)
		if err := json.Unmarshal(row.RescheduleRequest, b.RescheduleRequest); err != nil {
			return nil, fmt.Errorf("decode reschedule request: %w", err)
		}
	}
	return b, nil
}

func (r *BookingSQLRepository) Create(ctx context.Context, b *entity.Booking) error {
	db, err := executor(ctx, r.DB)
	if err != nil {
		return err
	}
	row, err := toBookingRow(b)
	if err != nil {
		return err
	}
	cols := strings.Split(strings.Join(strings.Fields(bookingColumns), ""), ",")
	named := make([]string, len(cols))
	for i, c := range cols {
		named[i] = ":" + c
	}
	query := `INSERT INTO bookings (` + strings.Join(cols, ", ") + `) VALUES (` + strings.Join(named, ", ") + `)`
	_, err = sqlx.NamedExecContext(ctx, db, query, row)
	return err
}

func (r *BookingSQLRepository) find(ctx context.Context, id string, lock bool) (*entity.Booking, error) {
	db, err := executor(ctx, r.DB)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	if lock {
		query = forUpdate(ctx, query)
	}
	var row bookingRow
	if err := sqlx.GetContext(ctx, db, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return row.toEntity()
}

func (r *BookingSQLRepository) FindByID(ctx context.Context, id string) (*entity.Booking, error) {
	return r.find(ctx, id, false)
}

func (r *BookingSQLRepository) FindByIDForUpdate(ctx context.Context, id string) (*entity.Booking, error) {
	return r.find(ctx, id, true)
}

func (r *BookingSQLRepository) Update(ctx context.Context, b *entity.Booking) error {
	db, err := executor(ctx, r.DB)
	if err != nil {
		return err
	}
	row, err := toBookingRow(b)
	if err != nil {
		return err
	}
	query := `UPDATE bookings SET
		worker_id = :worker_id, scheduled_date = :scheduled_date, scheduled_time = :scheduled_time,
		base_price = :base_price, platform_fee = :platform_fee, travel_charge = :travel_charge,
		distance = :distance, coupon_code = :coupon_code, coupon_discount = :coupon_discount,
		coins_used = :coins_used, coin_discount = :coin_discount, wallet_amount_used = :wallet_amount_used,
		final_price = :final_price, amount_paid = :amount_paid, payment_status = :payment_status,
		payment_method = :payment_method, payment_id = :payment_id, payment_link_id = :payment_link_id,
		status = :status, start_otp = :start_otp, start_otp_expiry = :start_otp_expiry,
		completion_otp = :completion_otp, completion_otp_expiry = :completion_otp_expiry,
		work_proof_photos = :work_proof_photos, cancellation_reason = :cancellation_reason,
		rejection_reason = :rejection_reason, reschedule_request = :reschedule_request,
		loyalty_credited = :loyalty_credited, started_at = :started_at, completed_at = :completed_at,
		updated_at = :updated_at
		WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, db, query, row)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *BookingSQLRepository) List(ctx context.Context, f entity.BookingFilter) ([]entity.Booking, error) {
	db, err := executor(ctx, r.DB)
	if err != nil {
		return nil, err
	}
	where := []string{"1=1"}
	args := []interface{}{}
	add := func(clause string, v interface{}) {
		where = append(where, clause)
		args = append(args, v)
	}
	if f.CustomerID != "" {
		add("customer_id = ?", f.CustomerID)
	}
	if f.WorkerID != "" {
		add("worker_id = ?", f.WorkerID)
	}
	if f.Status != "" {
		add("status = ?", string(f.Status))
	}
	if f.PaymentStatus != "" {
		add("payment_status = ?", string(f.PaymentStatus))
	}
	if f.BulkGroupID != "" {
		add("bulk_group_id = ?", f.BulkGroupID)
	}
	if f.From != nil {
		add("scheduled_date >= ?", *f.From)
	}
	if f.To != nil {
		add("scheduled_date <= ?", *f.To)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, f.Offset)

	var rows []bookingRow
	if err := sqlx.SelectContext(ctx, db, &rows, query, args...); err != nil {
		return nil, err
	}
	out := make([]entity.Booking, 0, len(rows))
	for i := range rows {
		b, err := rows[i].toEntity()
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, nil
}

func (r *BookingSQLRepository) CountWorkerBookingsOnDate(ctx context.Context, workerID string, day time.Time, statuses []entity.BookingStatus, excludeID string) (int, error) {
	db, err := executor(ctx, r.DB)
	if err != nil {
		return 0, err
	}
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}
	query, args, err := sqlx.In(`SELECT COUNT(*) FROM bookings
		WHERE worker_id = ? AND scheduled_date = ? AND status IN (?) AND id <> ?`,
		workerID, day.UTC().Format("2006-01-02"), names, excludeID)
	if err != nil {
		return 0, err
	}
	var n int
	if err := sqlx.GetContext(ctx, db, &n, query, args...); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *BookingSQLRepository) AppendAudit(ctx context.Context, a *entity.StatusAudit) error {
	db, err := executor(ctx, r.DB)
	if err != nil {
		return err
	}
	_, err = sqlx.NamedExecContext(ctx, db, `INSERT INTO booking_status_audits
		(id, booking_id, from_status, to_status, actor_id, actor_role, reason, privileged, created_at)
		VALUES (:id, :booking_id, :from_status, :to_status, :actor_id, :actor_role, :reason, :privileged, :created_at)`, a)
	return err
}

func (r *BookingSQLRepository) Audits(ctx context.Context, bookingID string) ([]entity.StatusAudit, error) {
	db, err := executor(ctx, r.DB)
	if err != nil {
		return nil, err
	}
	var out []entity.StatusAudit
	err = sqlx.SelectContext(ctx, db, &out, `SELECT id, booking_id, from_status, to_status, actor_id, actor_role,
		COALESCE(reason, '') AS reason, privileged, created_at
		FROM booking_status_audits WHERE booking_id = ? ORDER BY created_at`, bookingID)
	return out, err
}

type ServiceSQLRepository struct {
	DB mysql.DBInterface
}

func NewServiceRepository(db mysql.DBInterface) *ServiceSQLRepository {
	return &ServiceSQLRepository{DB: db}
}

func (r *ServiceSQLRepository) FindByID(ctx context.Context, id string) (*entity.Service, error) {
	db, err := executor(ctx, r.DB)
	if err != nil {
		return nil, err
	}
	var svc entity.Service
	err = sqlx.GetContext(ctx, db, &svc, `SELECT id, name, category_id, base_price, is_active FROM services WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &svc, nil
}

package repository

import (
	"context"

	"booking-service/src/internal/entity"
	"booking-service/src/pkg/databases/mysql"

	"github.com/jmoiron/sqlx"
)

type ConfigSQLRepository struct {
	DB mysql.DBInterface
}

func NewConfigRepository(db mysql.DBInterface) *ConfigSQLRepository {
	return &ConfigSQLRepository{DB: db}
}

// FeeConfig lazily creates the singleton row with zero defaults.
func (r *ConfigSQLRepository) FeeConfig(ctx context.Context) (entity.FeeConfig, error) {
	var cfg entity.FeeConfig
	db, err := executor(ctx, r.DB)
	if err != nil {
		return cfg, err
	}
	if _, err := db.ExecContext(ctx, `INSERT IGNORE INTO fee_config (id, platform_fee, travel_charge_per_km, is_active) VALUES (1, 0, 0, 0)`); err != nil {
		return cfg, err
	}
	err = sqlx.GetContext(ctx, db, &cfg, `SELECT platform_fee, travel_charge_per_km, is_active FROM fee_config WHERE id = 1`)
	return cfg, err
}

func (r *ConfigSQLRepository) CoinConfig(ctx context.Context) (entity.CoinConfig, error) {
	var cfg entity.CoinConfig
	db, err := executor(ctx, r.DB)
	if err != nil {
		return cfg, err
	}
	if _, err := db.ExecContext(ctx, `INSERT IGNORE INTO coin_config (id, coin_to_rupee_rate, max_usage_percentage, completion_reward) VALUES (1, 1, 0, 0)`); err != nil {
		return cfg, err
	}
	err = sqlx.GetContext(ctx, db, &cfg, `SELECT coin_to_rupee_rate, max_usage_percentage, completion_reward FROM coin_config WHERE id = 1`)
	return cfg, err
}

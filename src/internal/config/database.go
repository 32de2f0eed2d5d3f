package config

import (
	"context"
	"fmt"

	"booking-service/src/internal/entity"
	"booking-service/src/internal/repository"
	"booking-service/src/internal/repository/memory"
	"booking-service/src/pkg/databases/mysql"
	"booking-service/src/pkg/log"

	"github.com/spf13/viper"
)

func NewDatabase(viper *viper.Viper, log log.Log) (mysql.DBInterface, error) {
	db, err := mysql.InitConnection(viper, log)
	if err != nil {
		log.Error("database init", err.Error(), "config", "")
		return nil, err
	}
	return db, nil
}

// NewRepositories picks the persistence backend from database.driver.
func NewRepositories(ctx context.Context, viper *viper.Viper, log log.Log) (repository.Repositories, error) {
	switch driver := viper.GetString("database.driver"); driver {
	case "mysql":
		db, err := NewDatabase(viper, log)
		if err != nil {
			return repository.Repositories{}, err
		}
		if viper.GetBool("database.mysql.auto_migrate") {
			if err := mysql.Migrate(ctx, db); err != nil {
				return repository.Repositories{}, fmt.Errorf("migrate: %w", err)
			}
		}
		return repository.NewMySQL(db), nil
	case "memory", "":
		store := memory.NewStore()
		if err := seedMemory(viper, store); err != nil {
			return repository.Repositories{}, err
		}
		log.Info("database init", "using in-memory store", "config", driver)
		return store.Repositories(), nil
	default:
		return repository.Repositories{}, fmt.Errorf("unknown database driver %q", driver)
	}
}

type seedService struct {
	ID         string  `mapstructure:"id"`
	Name       string  `mapstructure:"name"`
	CategoryID string  `mapstructure:"category_id"`
	BasePrice  float64 `mapstructure:"base_price"`
}

func seedMemory(viper *viper.Viper, store *memory.Store) error {
	var services []seedService
	if err := viper.UnmarshalKey("database.memory.services", &services); err != nil {
		return fmt.Errorf("read memory seed: %w", err)
	}
	for _, s := range services {
		store.PutService(entity.Service{ID: s.ID, Name: s.Name, CategoryID: s.CategoryID, BasePrice: s.BasePrice, IsActive: true})
	}
	if viper.IsSet("database.memory.fees") {
		store.SetFeeConfig(entity.FeeConfig{
			PlatformFee:       viper.GetFloat64("database.memory.fees.platform_fee"),
			TravelChargePerKm: viper.GetFloat64("database.memory.fees.travel_charge_per_km"),
			IsActive:          true,
		})
	}
	if viper.IsSet("database.memory.coins") {
		store.SetCoinConfig(entity.CoinConfig{
			CoinToRupeeRate:    viper.GetFloat64("database.memory.coins.rate"),
			MaxUsagePercentage: viper.GetFloat64("database.memory.coins.max_usage_percentage"),
			CompletionReward:   viper.GetInt64("database.memory.coins.completion_reward"),
		})
	}
	return nil
}

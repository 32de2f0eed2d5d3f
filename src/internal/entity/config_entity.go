package entity

// FeeConfig is read once per operation and never mutated by the core.
type FeeConfig struct {
	PlatformFee       float64 `db:"platform_fee" json:"platformFee"`
	TravelChargePerKm float64 `db:"travel_charge_per_km" json:"travelChargePerKm"`
	IsActive          bool    `db:"is_active" json:"isActive"`
}

type CoinConfig struct {
	CoinToRupeeRate    float64 `db:"coin_to_rupee_rate" json:"coinToRupeeRate"`
	MaxUsagePercentage float64 `db:"max_usage_percentage" json:"maxUsagePercentage"`
	// CompletionReward is credited once when a booking first completes.
	CompletionReward int64 `db:"completion_reward" json:"completionReward"`
}

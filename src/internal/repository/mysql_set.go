package repository

import "booking-service/src/pkg/databases/mysql"

// NewMySQL wires every repository to the same connection so they share transactions.
func NewMySQL(db mysql.DBInterface) Repositories {
	return Repositories{
		Tx:          NewTransactor(db),
		Bookings:    NewBookingRepository(db),
		Services:    NewServiceRepository(db),
		Wallets:     NewWalletRepository(db),
		Coupons:     NewCouponRepository(db),
		Coins:       NewCoinRepository(db),
		Withdrawals: NewWithdrawalRepository(db),
		Configs:     NewConfigRepository(db),
	}
}

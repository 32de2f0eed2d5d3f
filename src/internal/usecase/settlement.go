package usecase

import (
	"context"
	"errors"
	"fmt"

	"booking-service/src/internal/entity"
	"booking-service/src/internal/repository"
	"booking-service/src/pkg/log"
	"booking-service/src/pkg/metrics"
	"booking-service/src/pkg/utils"
)

// SettlementEngine moves money between ledgers for a booking. Callers hold the booking
// lock and an open transaction; every method is safe to repeat.
type SettlementEngine struct {
	Log     log.Log
	Wallets repository.WalletRepository
	Coins   repository.CoinRepository
}

// committed lists the states in which the assigned worker can no longer be replaced.
func committed(s entity.BookingStatus) bool {
	return s == entity.StatusAccepted || s == entity.StatusInProgress || s == entity.StatusCompleted
}

// CreditWorker pays the assigned worker the booking's final price once it is fully paid and
// the worker has accepted. It reports whether a credit was written.
func (s *SettlementEngine) CreditWorker(ctx context.Context, b *entity.Booking) (bool, error) {
	if b.PaymentStatus != entity.PaymentPaid || !b.HasWorker() || !committed(b.Status) || b.Price.FinalPrice <= 0 {
		return false, nil
	}
	wallet, err := s.Wallets.FindOrCreate(ctx, *b.WorkerID, entity.OwnerWorker)
	if err != nil {
		return false, err
	}
	done, err := s.hasTx(ctx, wallet.ID, b.ID, entity.KindEarning)
	if err != nil || done {
		if done {
			metrics.Settlements.WithLabelValues("duplicate").Inc()
		}
		return false, err
	}
	tx := &entity.WalletTransaction{
		Type:      entity.TxCredit,
		Kind:      entity.KindEarning,
		Amount:    b.Price.FinalPrice,
		Note:      "Earnings for booking " + b.ID,
		BookingID: &b.ID,
	}
	if _, err := s.Wallets.Apply(ctx, wallet.ID, tx); err != nil {
		return false, err
	}
	metrics.Settlements.WithLabelValues("credited").Inc()
	s.Log.Info("settlement", fmt.Sprintf("credited %.2f", tx.Amount), "CreditWorker", b.ID)
	return true, nil
}

// Refund undoes every financial effect of a booking being cancelled: the worker's earning
// is reversed, the customer gets the wallet and external portions back as separate
// transactions and spent coins are returned. It reports the money returned to the customer.
func (s *SettlementEngine) Refund(ctx context.Context, b *entity.Booking) (float64, error) {
	if b.HasWorker() {
		if err := s.ReverseEarning(ctx, b, *b.WorkerID); err != nil {
			return 0, err
		}
	}

	var refunded float64
	if b.PaymentStatus == entity.PaymentPaid || b.PaymentStatus == entity.PaymentPartial {
		wallet, err := s.Wallets.FindOrCreate(ctx, b.CustomerID, entity.OwnerCustomer)
		if err != nil {
			return 0, err
		}
		portions := []struct {
			kind   entity.TransactionKind
			amount float64
			note   string
		}{
			{entity.KindRefundWallet, b.Price.WalletAmountUsed, "Refund of wallet payment for booking "},
			{entity.KindRefundExternal, b.Price.ExternalPaid(), "Refund of external payment for booking "},
		}
		for _, p := range portions {
			amount := utils.RoundMoney(p.amount)
			if amount <= 0 {
				continue
			}
			done, err := s.hasTx(ctx, wallet.ID, b.ID, p.kind)
			if err != nil {
				return 0, err
			}
			if done {
				continue
			}
			tx := &entity.WalletTransaction{
				Type:      entity.TxCredit,
				Kind:      p.kind,
				Amount:    amount,
				Note:      p.note + b.ID,
				BookingID: &b.ID,
			}
			if _, err := s.Wallets.Apply(ctx, wallet.ID, tx); err != nil {
				return 0, err
			}
			metrics.Refunds.WithLabelValues(string(p.kind)).Inc()
			refunded += amount
		}
		if refunded > 0 {
			b.PaymentStatus = entity.PaymentRefunded
		}
	}

	if err := s.refundCoins(ctx, b); err != nil {
		return 0, err
	}
	return refunded, nil
}

// ReverseEarning takes back what workerID was credited for b, once.
func (s *SettlementEngine) ReverseEarning(ctx context.Context, b *entity.Booking, workerID string) error {
	wallet, err := s.Wallets.FindOrCreate(ctx, workerID, entity.OwnerWorker)
	if err != nil {
		return err
	}
	earning, err := s.Wallets.FindBookingTransaction(ctx, wallet.ID, b.ID, entity.KindEarning)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	done, err := s.hasTx(ctx, wallet.ID, b.ID, entity.KindEarningReversal)
	if err != nil || done {
		return err
	}
	tx := &entity.WalletTransaction{
		Type:      entity.TxDebit,
		Kind:      entity.KindEarningReversal,
		Amount:    earning.Amount,
		Note:      "Reversal of earnings for booking " + b.ID,
		BookingID: &b.ID,
	}
	if _, err := s.Wallets.Apply(ctx, wallet.ID, tx); err != nil {
		if errors.Is(err, repository.ErrInsufficientBalance) {
			return conflict("Worker wallet balance is insufficient to reverse earnings for this booking")
		}
		return err
	}
	return nil
}

func (s *SettlementEngine) refundCoins(ctx context.Context, b *entity.Booking) error {
	if b.Price.CoinsUsed <= 0 {
		return nil
	}
	_, err := s.Coins.FindBookingTransaction(ctx, b.CustomerID, b.ID, entity.CoinRefund)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	tx := &entity.CoinTransaction{
		UserID:    b.CustomerID,
		Type:      entity.CoinRefund,
		Amount:    b.Price.CoinsUsed,
		BookingID: &b.ID,
		Note:      "Refund for cancelled booking " + b.ID,
	}
	_, err = s.Coins.Apply(ctx, tx)
	return err
}

// CreditLoyalty grants the completion reward the first time a booking completes. The flag
// is saved with the status in the same transaction.
func (s *SettlementEngine) CreditLoyalty(ctx context.Context, b *entity.Booking, reward int64) error {
	if b.LoyaltyCredited {
		return nil
	}
	b.LoyaltyCredited = true
	if reward <= 0 {
		return nil
	}
	tx := &entity.CoinTransaction{
		UserID:    b.CustomerID,
		Type:      entity.CoinEarn,
		Amount:    reward,
		BookingID: &b.ID,
		Note:      "Reward for completed booking " + b.ID,
	}
	_, err := s.Coins.Apply(ctx, tx)
	return err
}

func (s *SettlementEngine) hasTx(ctx context.Context, walletID, bookingID string, kind entity.TransactionKind) (bool, error) {
	_, err := s.Wallets.FindBookingTransaction(ctx, walletID, bookingID, kind)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	return false, err
}

package usecase

import (
	"context"
	"errors"
	"fmt"

	"booking-service/src/internal/entity"
	"booking-service/src/internal/model"
	"booking-service/src/internal/repository"
	"booking-service/src/pkg/token"
	"booking-service/src/pkg/utils"

	"github.com/google/uuid"
)

type PayoutUseCase struct {
	*Core
}

func NewPayoutUseCase(core *Core) *PayoutUseCase {
	return &PayoutUseCase{Core: core}
}

func payoutKey(workerID string) string { return "payout:" + workerID }

// RequestPayout reserves the amount immediately; a worker holds at most one pending request.
func (c *PayoutUseCase) RequestPayout(ctx context.Context, request *model.PayoutRequest) utils.Result {
	if err := validate(c.Validate, request); err != nil {
		return fail(c.Log, "RequestPayout-validation", request, err)
	}
	if request.Actor.Role != token.RoleWorker {
		return fail(c.Log, "RequestPayout", request, forbidden("only workers can request payouts"))
	}
	amount := utils.RoundMoney(request.Amount)
	unlock, err := c.Locker.Lock(ctx, payoutKey(request.Actor.ID))
	if err != nil {
		return fail(c.Log, "RequestPayout", request, err)
	}
	defer unlock()

	var withdrawal *entity.WithdrawalRequest
	err = c.Repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		_, err := c.Repos.Withdrawals.FindPendingByWorker(ctx, request.Actor.ID)
		if err == nil {
			return conflict("A withdrawal request is already pending")
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		wallet, err := c.Repos.Wallets.FindOrCreate(ctx, request.Actor.ID, entity.OwnerWorker)
		if err != nil {
			return err
		}
		if wallet.Balance < amount {
			return conflict("Insufficient wallet balance")
		}
		now := c.now()
		withdrawal = &entity.WithdrawalRequest{
			ID:        uuid.NewString(),
			WorkerID:  request.Actor.ID,
			Amount:    amount,
			Status:    entity.WithdrawalPending,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := c.Repos.Withdrawals.Create(ctx, withdrawal); err != nil {
			return err
		}
		_, err = c.Repos.Wallets.Apply(ctx, wallet.ID, &entity.WalletTransaction{
			Type:         entity.TxDebit,
			Kind:         entity.KindWithdrawal,
			Amount:       amount,
			Note:         "Withdrawal request " + withdrawal.ID,
			WithdrawalID: &withdrawal.ID,
		})
		if errors.Is(err, repository.ErrInsufficientBalance) {
			return conflict("Insufficient wallet balance")
		}
		return err
	})
	if err != nil {
		return fail(c.Log, "RequestPayout", request, err)
	}
	c.Log.Info("RequestPayout", fmt.Sprintf("payout of %.2f requested", amount), "withdrawalID", withdrawal.ID)
	return utils.Result{Data: withdrawal}
}

// DecidePayout approves or rejects a pending request. Rejection puts the reserved amount
// back under the same request id; approval leaves the debit standing.
func (c *PayoutUseCase) DecidePayout(ctx context.Context, request *model.PayoutDecisionRequest) utils.Result {
	if err := validate(c.Validate, request); err != nil {
		return fail(c.Log, "DecidePayout-validation", request, err)
	}
	if request.Actor.Role != token.RoleAdmin {
		return fail(c.Log, "DecidePayout", request, forbidden("only admins can decide payouts"))
	}
	var (
		withdrawal *entity.WithdrawalRequest
		batch      []*model.Notification
	)
	err := c.Repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		w, err := c.Repos.Withdrawals.FindByID(ctx, request.WithdrawalID)
		if err != nil {
			return lookup(err, "withdrawal", request.WithdrawalID)
		}
		to, reason := entity.WithdrawalApproved, ""
		if !request.Approve {
			to, reason = entity.WithdrawalRejected, request.Reason
		}
		if err := c.Repos.Withdrawals.Transition(ctx, w.ID, entity.WithdrawalPending, to, reason); err != nil {
			if errors.Is(err, repository.ErrStaleState) {
				return conflict("Withdrawal request is already %s", w.Status)
			}
			return err
		}
		w.Status, w.RejectionReason, w.UpdatedAt = to, reason, c.now()
		withdrawal = w

		msg := fmt.Sprintf("Your withdrawal of %.2f has been approved", w.Amount)
		if to == entity.WithdrawalRejected {
			wallet, err := c.Repos.Wallets.FindOrCreate(ctx, w.WorkerID, entity.OwnerWorker)
			if err != nil {
				return err
			}
			if _, err := c.Repos.Wallets.Apply(ctx, wallet.ID, &entity.WalletTransaction{
				Type:         entity.TxCredit,
				Kind:         entity.KindWithdrawalReversal,
				Amount:       w.Amount,
				Note:         "Withdrawal rejected: " + reason,
				WithdrawalID: &w.ID,
			}); err != nil {
				return err
			}
			msg = fmt.Sprintf("Your withdrawal of %.2f was rejected: %s", w.Amount, reason)
		}
		batch = append(batch, &model.Notification{
			RecipientID:    w.WorkerID,
			RecipientModel: model.RecipientWorker,
			Title:          "Withdrawal " + string(to),
			Message:        msg,
			Type:           model.NotifyPayout,
			Data:           map[string]string{"withdrawalId": w.ID},
		})
		return nil
	})
	if err != nil {
		return fail(c.Log, "DecidePayout", request, err)
	}
	c.notify(ctx, batch)
	c.Log.Info("DecidePayout", "withdrawal "+string(withdrawal.Status), "withdrawalID", withdrawal.ID)
	return utils.Result{Data: withdrawal}
}

// Wallet returns the caller's wallet with its transaction log, plus coins for customers.
func (c *PayoutUseCase) Wallet(ctx context.Context, actor model.Actor) utils.Result {
	ownerType := entity.OwnerCustomer
	switch actor.Role {
	case token.RoleWorker:
		ownerType = entity.OwnerWorker
	case token.RoleCustomer:
	default:
		return fail(c.Log, "Wallet", actor, forbidden("only customers and workers have wallets"))
	}
	wallet, err := c.Repos.Wallets.FindOrCreate(ctx, actor.ID, ownerType)
	if err != nil {
		return fail(c.Log, "Wallet", actor, err)
	}
	if wallet.Transactions, err = c.Repos.Wallets.Transactions(ctx, wallet.ID); err != nil {
		return fail(c.Log, "Wallet", actor, err)
	}
	resp := &model.WalletResponse{Wallet: wallet}
	if ownerType == entity.OwnerCustomer {
		if resp.Coins, err = c.Repos.Coins.FindOrCreate(ctx, actor.ID); err != nil {
			return fail(c.Log, "Wallet", actor, err)
		}
	}
	return utils.Result{Data: resp}
}

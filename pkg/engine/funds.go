package engine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/sparkdex/sparkbook/pkg/types"
)

// Deposit credits the attached funds to the caller's free balance.
func (e *Engine) Deposit(caller types.Identity, attached types.Funds) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if attached.Amount == 0 {
		return nil
	}
	if err := e.ledger.Deposit(caller, attached.Asset, attached.Amount); err != nil {
		return err
	}

	j := newJournal()
	j.touchBalance(caller, attached.Asset)
	e.commit(j)

	e.log.Debug("deposit",
		zap.String("owner", caller.String()),
		zap.String("asset", attached.Asset.Hex()),
		zap.Uint64("amount", attached.Amount),
	)
	return nil
}

// Withdraw debits the caller's free balance and returns the released funds.
// Fails with ErrInsufficientBalance if the free balance does not cover the
// amount.
func (e *Engine) Withdraw(caller types.Identity, asset types.AssetID, amount uint64) (types.Funds, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ledger.Withdraw(caller, asset, amount); err != nil {
		return types.NoFunds, fmt.Errorf("withdraw %d of %s: %w", amount, asset.Hex(), err)
	}

	j := newJournal()
	j.touchBalance(caller, asset)
	e.commit(j)

	e.log.Debug("withdraw",
		zap.String("owner", caller.String()),
		zap.String("asset", asset.Hex()),
		zap.Uint64("amount", amount),
	)
	return types.Funds{Asset: asset, Amount: amount}, nil
}

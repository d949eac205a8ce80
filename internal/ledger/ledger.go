// Package ledger applies and reverses wallet transactions against a
// member's running balance. Balance changes are visible to subsequent
// reads as soon as the call returns; there is no async settlement.
package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"despesas/internal/core"
	"despesas/internal/store"
)

// Apply validates tx, adjusts the owning member's wallet balance and
// appends the transaction to history. The member must exist: an unknown
// MemberID fails with NotFoundError rather than silently creating
// balance out of thin air.
//
// Callers composing multi-entity mutations pass a transaction-scoped
// store so the balance change rolls back together with the rest.
func Apply(ctx context.Context, st store.Store, tx core.WalletTransaction) (core.WalletTransaction, error) {
	if err := tx.Validate(); err != nil {
		return core.WalletTransaction{}, err
	}

	member, err := st.GetMember(ctx, tx.MemberID)
	if err != nil {
		return core.WalletTransaction{}, fmt.Errorf("resolve member: %w", err)
	}

	member.WalletBalance.Cents += balanceDelta(tx)
	if err := st.UpdateMember(ctx, member); err != nil {
		return core.WalletTransaction{}, fmt.Errorf("update balance: %w", err)
	}

	stored, err := st.AddWalletTransaction(ctx, tx)
	if err != nil {
		return core.WalletTransaction{}, fmt.Errorf("append transaction: %w", err)
	}

	slog.DebugContext(ctx, "Wallet transaction applied",
		"transaction_id", stored.ID,
		"member_id", member.ID,
		"type", string(stored.Type),
		"amount_cents", stored.Amount.Cents,
		"balance_cents", member.WalletBalance.Cents)

	return stored, nil
}

// Reverse restores the balance by the inverse delta and removes the
// transaction record. Used when an expense or a recurring payment is
// retracted.
func Reverse(ctx context.Context, st store.Store, transactionID string) error {
	tx, err := st.GetWalletTransaction(ctx, transactionID)
	if err != nil {
		return fmt.Errorf("resolve transaction: %w", err)
	}

	member, err := st.GetMember(ctx, tx.MemberID)
	if err != nil {
		return fmt.Errorf("resolve member: %w", err)
	}

	member.WalletBalance.Cents -= balanceDelta(tx)
	if err := st.UpdateMember(ctx, member); err != nil {
		return fmt.Errorf("restore balance: %w", err)
	}

	if err := st.RemoveWalletTransaction(ctx, transactionID); err != nil {
		return fmt.Errorf("remove transaction: %w", err)
	}

	slog.DebugContext(ctx, "Wallet transaction reversed",
		"transaction_id", transactionID,
		"member_id", member.ID,
		"balance_cents", member.WalletBalance.Cents)

	return nil
}

// balanceDelta maps a transaction to its signed balance effect. Income
// credits the wallet; expense and transfer move money out of it.
func balanceDelta(tx core.WalletTransaction) int64 {
	if tx.Type == core.TransactionIncome {
		return tx.Amount.Cents
	}
	return -tx.Amount.Cents
}

package http

import (
	"net/http"

	"despesas/internal/core"
	"despesas/internal/ledger"
	"despesas/internal/store"
)

func (s *Server) handleListWalletTransactions(w http.ResponseWriter, r *http.Request) {
	memberID := r.PathValue("memberID")
	if _, err := s.store.GetMember(r.Context(), memberID); err != nil {
		writeError(w, r, err)
		return
	}

	txs, err := s.store.ListWalletTransactions(r.Context(), memberID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	views := make([]walletTransactionView, 0, len(txs))
	for _, t := range txs {
		views = append(views, newWalletTransactionView(t))
	}
	writeJSON(w, http.StatusOK, views)
}

// handleCreateWalletTransaction records a wallet movement and applies
// it to the member's balance atomically.
func (s *Server) handleCreateWalletTransaction(w http.ResponseWriter, r *http.Request) {
	var req walletTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	tx, err := req.toCore(r.PathValue("memberID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	// Balance update and history append commit together or not at all.
	var stored core.WalletTransaction
	err = s.store.RunInTransaction(r.Context(), func(txStore store.Store) error {
		var applyErr error
		stored, applyErr = ledger.Apply(r.Context(), txStore, tx)
		return applyErr
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newWalletTransactionView(stored))
}

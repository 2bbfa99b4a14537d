package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

type createTransactionRequest struct {
	WalletID    uuid.UUID  `json:"wallet_id"`
	CategoryID  uuid.UUID  `json:"category_id"`
	Kind        string     `json:"kind"`
	Amount      core.Money `json:"amount"`
	OccurredAt  *time.Time `json:"occurred_at"`
	Description string     `json:"description"`
}

// kind cannot change once booked.
type updateTransactionRequest struct {
	WalletID    *uuid.UUID  `json:"wallet_id"`
	CategoryID  *uuid.UUID  `json:"category_id"`
	Amount      *core.Money `json:"amount"`
	OccurredAt  *time.Time  `json:"occurred_at"`
	Description *string     `json:"description"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	filter, err := parseTransactionFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	txs, err := s.svc.Transactions.List(r.Context(), actor, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req createTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	kind, err := parseKind(req.Kind)
	if err != nil {
		writeError(w, r, err)
		return
	}
	in := services.CreateTransactionInput{
		WalletID:    req.WalletID,
		CategoryID:  req.CategoryID,
		Kind:        kind,
		Amount:      req.Amount,
		Description: sanitizeInput(req.Description),
	}
	if req.OccurredAt != nil {
		in.OccurredAt = *req.OccurredAt
	}
	tx, err := s.svc.Transactions.Create(r.Context(), actor, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	tx, err := s.svc.Transactions.Get(r.Context(), actor, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req updateTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	tx, err := s.svc.Transactions.Update(r.Context(), actor, id, services.UpdateTransactionInput{
		WalletID:    req.WalletID,
		CategoryID:  req.CategoryID,
		Amount:      req.Amount,
		OccurredAt:  req.OccurredAt,
		Description: sanitizePtr(req.Description),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.Transactions.SoftDelete(r.Context(), actor, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

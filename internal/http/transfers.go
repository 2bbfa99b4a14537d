package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

type createTransferRequest struct {
	SourceWalletID      uuid.UUID  `json:"source_wallet_id"`
	DestinationWalletID uuid.UUID  `json:"destination_wallet_id"`
	Amount              core.Money `json:"amount"`
	OccurredAt          *time.Time `json:"occurred_at"`
	Description         string     `json:"description"`
}

type updateTransferRequest struct {
	SourceWalletID      *uuid.UUID  `json:"source_wallet_id"`
	DestinationWalletID *uuid.UUID  `json:"destination_wallet_id"`
	Amount              *core.Money `json:"amount"`
	OccurredAt          *time.Time  `json:"occurred_at"`
	Description         *string     `json:"description"`
}

func (s *Server) handleListTransfers(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	transfers, err := s.svc.Transfers.List(r.Context(), actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, transfers)
}

func (s *Server) handleCreateTransfer(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req createTransferRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in := services.CreateTransferInput{
		SourceWalletID:      req.SourceWalletID,
		DestinationWalletID: req.DestinationWalletID,
		Amount:              req.Amount,
		Description:         sanitizeInput(req.Description),
	}
	if req.OccurredAt != nil {
		in.OccurredAt = *req.OccurredAt
	}
	transfer, err := s.svc.Transfers.Create(r.Context(), actor, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, transfer)
}

func (s *Server) handleGetTransfer(w http.ResponseWriter, r *http.Request) {
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
	transfer, err := s.svc.Transfers.Get(r.Context(), actor, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, transfer)
}

func (s *Server) handleUpdateTransfer(w http.ResponseWriter, r *http.Request) {
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
	var req updateTransferRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	transfer, err := s.svc.Transfers.Update(r.Context(), actor, id, services.UpdateTransferInput{
		SourceWalletID:      req.SourceWalletID,
		DestinationWalletID: req.DestinationWalletID,
		Amount:              req.Amount,
		OccurredAt:          req.OccurredAt,
		Description:         sanitizePtr(req.Description),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, transfer)
}

func (s *Server) handleDeleteTransfer(w http.ResponseWriter, r *http.Request) {
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
	if err := s.svc.Transfers.SoftDelete(r.Context(), actor, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
